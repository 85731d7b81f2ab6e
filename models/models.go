package models

import "time"

// Complaint statuses. Transitions are monotonic: a complaint starts as
// pending and moves to exactly one of the terminal statuses.
const (
	StatusPending       = "pending"
	StatusVerified      = "verified"
	StatusRejected      = "rejected"
	StatusPendingReview = "pending_review"
)

// Complaint priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Complaint is a persisted grievance submission.
type Complaint struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	FullName       string    `json:"full_name"`
	PhoneNumber    string    `json:"phone_number"`
	Language       string    `json:"language"`
	Description    string    `json:"description"`
	NormalizedDesc string    `json:"normalized_desc,omitempty"`
	Location       string    `json:"location"`
	WardZone       string    `json:"ward_zone"`
	ImagePath      string    `json:"image_path"`
	Status         string    `json:"status"`
	Category       string    `json:"category,omitempty"`
	Priority       string    `json:"priority"`
	Score          float64   `json:"score"`
	AILabel        string    `json:"ai_label,omitempty"`
	AIConfidence   float64   `json:"ai_confidence"`
}

// ClassificationResult is the normalized output of the image classifier.
// Label is "none" when nothing was detected and "error" when the service
// call failed. Confidence is 0.0 in both cases.
type ClassificationResult struct {
	Detected   bool    `json:"detected"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// TriageResult is the output of the triage engine for one complaint.
type TriageResult struct {
	Category       string  `json:"category"`
	Priority       string  `json:"priority"`
	Score          float64 `json:"score"`
	NormalizedDesc string  `json:"normalized_desc"`
}

// SubmitResponse is the JSON body returned by the submit endpoint.
type SubmitResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ID       int64  `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// ComplaintEvent is published to RabbitMQ when a complaint is verified,
// for downstream department routing.
type ComplaintEvent struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"`
	Score     float64   `json:"score"`
	WardZone  string    `json:"ward_zone"`
	Timestamp time.Time `json:"timestamp"`
}
