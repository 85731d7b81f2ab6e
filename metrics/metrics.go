package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// SubmissionsTotal counts processed submissions by outcome.
	SubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grievance",
		Subsystem: "intake",
		Name:      "submissions_total",
		Help:      "Total number of complaint submissions processed, labeled by result.",
	}, []string{"result"})

	// SubmissionDurationSeconds is end-to-end time per submission, measured
	// inside the orchestrator (image store through final row update).
	SubmissionDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "grievance",
		Subsystem: "intake",
		Name:      "submission_duration_seconds",
		Help:      "End-to-end time to process a complaint submission.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60},
	}, []string{"result"})

	// TranslationFallbackTotal counts normalizations that degraded to the
	// untranslated text, labeled by reason.
	TranslationFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grievance",
		Subsystem: "intake",
		Name:      "translation_fallback_total",
		Help:      "Total number of description normalizations that fell back to the original text.",
	}, []string{"reason"})

	// DetectionFailureTotal counts classifier calls that degraded to a
	// not-detected result because of a service error.
	DetectionFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "grievance",
		Subsystem: "intake",
		Name:      "detection_failure_total",
		Help:      "Total number of image classification calls that failed and degraded to not-detected.",
	})

	// EventPublishErrorTotal counts failed publishes of verified-complaint events.
	EventPublishErrorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "grievance",
		Subsystem: "intake",
		Name:      "event_publish_error_total",
		Help:      "Total number of verified-complaint event publish errors.",
	})
)

// Register registers intake metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			SubmissionsTotal,
			SubmissionDurationSeconds,
			TranslationFallbackTotal,
			DetectionFailureTotal,
			EventPublishErrorTotal,
		)
	})
}
