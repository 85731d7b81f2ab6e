// Package triage assigns a civic department category and an urgency-based
// priority to a complaint from its normalized description and the image
// classification result. Evaluation is a pure function of its inputs.
package triage

import (
	"math"
	"strings"

	"grievance-processor/models"
)

// CategoryGeneral is assigned when no keyword rule matches.
const CategoryGeneral = "General"

// CategoryRule maps a department category to the keywords that select it.
// Keyword lists are bilingual on purpose: translation may fail and leave
// transliterated local-language tokens in the text, and categorization must
// still work in that degraded mode.
type CategoryRule struct {
	Name     string
	Keywords []string
}

// Config parametrizes the engine. Rules are evaluated in order,
// first match wins.
type Config struct {
	Rules       []CategoryRule
	DangerWords []string
	// UrgencyWeight is added to the score once per distinct danger word present.
	UrgencyWeight float64
	// RescueLabel reassigns an uncategorized complaint to RescueCategory when
	// the classifier reported this label. It never overrides a keyword match.
	RescueLabel    string
	RescueCategory string
}

// DefaultConfig returns the keyword tables currently agreed with the
// municipality. Precedence order matters: a description matching several
// tables gets the earliest category.
func DefaultConfig() Config {
	return Config{
		Rules: []CategoryRule{
			{Name: "Roads & Infrastructure", Keywords: []string{"pothole", "khadda", "road", "rasta"}},
			{Name: "Sanitation & Waste", Keywords: []string{"garbage", "waste", "trash", "kachra", "gutter"}},
			{Name: "Electricity/Power", Keywords: []string{"light", "electricity", "wire", "current", "pole"}},
			{Name: "Water Supply", Keywords: []string{"leak", "water", "pipe", "pipeline", "pani"}},
		},
		DangerWords:    []string{"danger", "urgent", "accident", "emergency", "fell", "deadly"},
		UrgencyWeight:  3,
		RescueLabel:    "pothole",
		RescueCategory: "Roads & Infrastructure",
	}
}

// Engine evaluates complaints against a fixed configuration.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate computes category, score and priority for a normalized (translated,
// lower-cased) description. It accepts any well-formed classification result,
// including the "none" and "error" sentinels, and always returns a complete
// result.
func (e *Engine) Evaluate(normalized string, cls models.ClassificationResult) models.TriageResult {
	category := e.categorize(normalized, cls)

	urgency := 0.0
	for _, word := range e.cfg.DangerWords {
		if strings.Contains(normalized, word) {
			urgency += e.cfg.UrgencyWeight
		}
	}

	// Confidence is in [0,1] so the classifier contributes at most 5 points;
	// urgency is uncapped so textual danger cues dominate the classifier.
	score := roundScore(cls.Confidence*5 + urgency)

	return models.TriageResult{
		Category:       category,
		Priority:       priorityFor(score),
		Score:          score,
		NormalizedDesc: normalized,
	}
}

func (e *Engine) categorize(normalized string, cls models.ClassificationResult) string {
	for _, rule := range e.cfg.Rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(normalized, keyword) {
				return rule.Name
			}
		}
	}
	// The classifier can rescue a vague description, but never overrides
	// a keyword match.
	if e.cfg.RescueLabel != "" && cls.Label == e.cfg.RescueLabel {
		return e.cfg.RescueCategory
	}
	return CategoryGeneral
}

// priorityFor buckets a score. Boundaries are exclusive at the lower edge:
// exactly 7.0 is Medium, exactly 4.0 is Low.
func priorityFor(score float64) string {
	switch {
	case score > 7:
		return models.PriorityHigh
	case score > 4:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func roundScore(score float64) float64 {
	return math.Round(score*10) / 10
}
