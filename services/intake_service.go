package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"

	"grievance-processor/metrics"
	"grievance-processor/models"
	"grievance-processor/translator"
)

// Detector verifies that a stored image depicts a real reported issue.
// Implementations degrade to a not-detected result instead of failing.
type Detector interface {
	Detect(ctx context.Context, imagePath string) models.ClassificationResult
}

// Normalizer translates and case-folds a description for keyword matching.
// Implementations degrade to the lower-cased original instead of failing.
type Normalizer interface {
	Normalize(ctx context.Context, text string) translator.Result
}

// TriageEngine derives category, priority and score from a normalized
// description and a classification result.
type TriageEngine interface {
	Evaluate(normalized string, cls models.ClassificationResult) models.TriageResult
}

// ComplaintStore is the persistence surface the orchestrator needs.
type ComplaintStore interface {
	InsertPending(ctx context.Context, c *models.Complaint) (int64, error)
	UpdateVerified(ctx context.Context, id int64, triage models.TriageResult, cls models.ClassificationResult) error
	UpdateRejected(ctx context.Context, id int64, cls models.ClassificationResult) error
	MarkPendingReview(ctx context.Context, id int64) error
}

// EventPublisher publishes verified-complaint events. May be nil-backed via
// a disabled implementation; publish failures never fail a submission.
type EventPublisher interface {
	Publish(message interface{}) error
}

// SubmissionRequest carries one validated complaint submission. The image
// bytes are fully read before the orchestrator runs.
type SubmissionRequest struct {
	FullName      string
	PhoneNumber   string
	Language      string
	Description   string
	Location      string
	WardZone      string
	ImageFilename string
	ImageData     []byte
}

// SubmissionOutcome is the result of a fully processed submission.
type SubmissionOutcome struct {
	ID       int64
	Status   string
	Category string
	Priority string
	Score    float64
}

// IntakeService orchestrates the submission pipeline: store image, insert
// pending row, classify, triage, finalize.
type IntakeService struct {
	store     ComplaintStore
	detector  Detector
	normalize Normalizer
	engine    TriageEngine
	publisher EventPublisher
	uploadDir string
}

// NewIntakeService creates the orchestrator. publisher may be nil when
// eventing is disabled.
func NewIntakeService(store ComplaintStore, det Detector, norm Normalizer, engine TriageEngine, publisher EventPublisher, uploadDir string) *IntakeService {
	return &IntakeService{
		store:     store,
		detector:  det,
		normalize: norm,
		engine:    engine,
		publisher: publisher,
		uploadDir: uploadDir,
	}
}

// Submit processes one complaint submission end to end. An error return
// means the submission failed; the pending row, if already inserted, is
// left in whatever state it last reached.
func (s *IntakeService) Submit(ctx context.Context, req *SubmissionRequest) (*SubmissionOutcome, error) {
	start := time.Now()
	outcome, err := s.submit(ctx, req)

	result := "error"
	if err == nil {
		result = outcome.Status
	}
	metrics.SubmissionsTotal.WithLabelValues(result).Inc()
	metrics.SubmissionDurationSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())

	return outcome, err
}

func (s *IntakeService) submit(ctx context.Context, req *SubmissionRequest) (*SubmissionOutcome, error) {
	imagePath, err := s.storeImage(req.ImageFilename, req.ImageData)
	if err != nil {
		return nil, err
	}

	// The pending row is inserted before any external call so a record
	// survives even if classification or triage fails.
	id, err := s.store.InsertPending(ctx, &models.Complaint{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Language:    req.Language,
		Description: req.Description,
		Location:    req.Location,
		WardZone:    req.WardZone,
		ImagePath:   imagePath,
	})
	if err != nil {
		return nil, err
	}

	log.Infof("Complaint %d received from ward %q, image at %s", id, req.WardZone, imagePath)

	cls := s.detector.Detect(ctx, imagePath)
	if !cls.Detected {
		if err := s.store.UpdateRejected(ctx, id, cls); err != nil {
			return nil, err
		}
		log.Infof("Complaint %d rejected by classifier (label=%q)", id, cls.Label)
		return &SubmissionOutcome{ID: id, Status: models.StatusRejected}, nil
	}

	normalized := s.normalize.Normalize(ctx, req.Description)
	if normalized.Degraded {
		log.Warnf("Complaint %d normalized without translation (%s)", id, normalized.Reason)
	}

	triage := s.engine.Evaluate(normalized.Text, cls)

	if err := s.store.UpdateVerified(ctx, id, triage, cls); err != nil {
		if reviewErr := s.store.MarkPendingReview(ctx, id); reviewErr != nil {
			log.Errorf("Failed to mark complaint %d for review: %v", id, reviewErr)
		}
		return nil, err
	}

	log.Infof("Complaint %d verified: category=%q priority=%s score=%.1f",
		id, triage.Category, triage.Priority, triage.Score)

	s.publishVerified(id, req.WardZone, triage)

	return &SubmissionOutcome{
		ID:       id,
		Status:   models.StatusVerified,
		Category: triage.Category,
		Priority: triage.Priority,
		Score:    triage.Score,
	}, nil
}

// storeImage writes the uploaded bytes under the upload directory, creating
// it if absent. The original filename is preserved; identical names
// overwrite silently.
func (s *IntakeService) storeImage(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	imagePath := filepath.Join(s.uploadDir, filepath.Base(filename))
	if err := os.WriteFile(imagePath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return imagePath, nil
}

func (s *IntakeService) publishVerified(id int64, wardZone string, triage models.TriageResult) {
	if s.publisher == nil {
		return
	}

	event := models.ComplaintEvent{
		ID:        id,
		Category:  triage.Category,
		Priority:  triage.Priority,
		Score:     triage.Score,
		WardZone:  wardZone,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.Publish(event); err != nil {
		log.Errorf("Failed to publish event for complaint %d: %v", id, err)
		metrics.EventPublishErrorTotal.Inc()
	}
}
