package types

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackType distinguishes the four feedback submission shapes.
type FeedbackType string

// Feedback types.
const (
	FeedbackBinary   FeedbackType = "binary"
	FeedbackDetailed FeedbackType = "detailed"
	FeedbackOutcome  FeedbackType = "outcome"
	FeedbackImplicit FeedbackType = "implicit"
)

// FeedbackStatus is the processing lifecycle of a feedback record. A record
// is immutable once processed, except for status and outcome tracking.
type FeedbackStatus string

// Feedback statuses. Processed marks a record consumed by a learning
// run; incorporated marks it folded into a deployed profile.
const (
	FeedbackPending      FeedbackStatus = "pending"
	FeedbackProcessed    FeedbackStatus = "processed"
	FeedbackIncorporated FeedbackStatus = "incorporated"
)

// Feedback is one user feedback submission on a prediction. Validation tags
// cover the boundary checks shared by every type; type-specific rules live in
// the learning pipeline's validator.
type Feedback struct {
	ID           uuid.UUID    `json:"id"`
	UserID       string       `json:"user_id" validate:"required"`
	TeamID       string       `json:"team_id,omitempty"`
	PredictionID uuid.UUID    `json:"prediction_id,omitempty"`
	SessionID    string       `json:"session_id,omitempty"`
	ProspectID   string       `json:"prospect_id,omitempty"`
	Type         FeedbackType `json:"type" validate:"required,oneof=binary detailed outcome implicit"`

	OverallRating float64            `json:"overall_rating,omitempty" validate:"omitempty,gte=0,lte=10"`
	IsRelevant    *bool              `json:"is_relevant,omitempty"`
	FactorRatings map[string]float64 `json:"factor_ratings,omitempty"`
	Text          string             `json:"text,omitempty"`

	// Correction flags extracted from structured input or the NLP pass,
	// e.g. "wrong_industry", "wrong_role".
	CorrectionFlags []string `json:"correction_flags,omitempty"`

	// Snapshot of the analysis this feedback refers to.
	Industry      string  `json:"industry,omitempty"`
	Role          string  `json:"role,omitempty"`
	OriginalScore float64 `json:"original_score,omitempty"`

	ConfidenceScore float64        `json:"confidence_score,omitempty"` // 0-1
	Status          FeedbackStatus `json:"status"`
	LearningWeight  float64        `json:"learning_weight,omitempty"`
	SubmittedAt     time.Time      `json:"submitted_at"`
}

// HasContextRef reports whether the record links to any analysis context.
// Feedback without one cannot be attributed and is rejected by validation.
func (f Feedback) HasContextRef() bool {
	return f.SessionID != "" || f.ProspectID != "" || f.PredictionID != uuid.Nil
}

// ImplicitSignals captures passive interaction data used for implicit
// feedback scoring.
type ImplicitSignals struct {
	DwellSeconds   float64  `json:"dwell_seconds,omitempty"`
	ScrollDepth    float64  `json:"scroll_depth,omitempty"` // 0-1
	ActionsTaken   []string `json:"actions_taken,omitempty"`
	Revisited      bool     `json:"revisited,omitempty"`
	ProspectID     string   `json:"prospect_id,omitempty"`
	Industry       string   `json:"industry,omitempty"`
	Role           string   `json:"role,omitempty"`
}

// PipelineStage is the state of a learning pipeline run.
type PipelineStage string

// Pipeline stages, in order. Monitoring is the terminal success stage.
const (
	StageCollecting PipelineStage = "collecting"
	StageProcessing PipelineStage = "processing"
	StageValidating PipelineStage = "validating"
	StageDeploying  PipelineStage = "deploying"
	StageMonitoring PipelineStage = "monitoring"
)

// PipelineRun is the audit record for one learning pipeline execution.
// Terminal states: IsSuccessful (deployed) or RequiresManualReview (failed).
type PipelineRun struct {
	ID                   uuid.UUID     `json:"id"`
	UserID               string        `json:"user_id,omitempty"`
	TeamID               string        `json:"team_id,omitempty"`
	BatchKey             string        `json:"batch_key"`
	Stage                PipelineStage `json:"stage"`
	FeedbackCount        int           `json:"feedback_count"`
	ValidCount           int           `json:"valid_count"`
	RejectedCount        int           `json:"rejected_count"`
	PatternsDiscovered   int           `json:"patterns_discovered"`
	PatternsUpdated      int           `json:"patterns_updated"`
	IsSuccessful         bool          `json:"is_successful"`
	RequiresManualReview bool          `json:"requires_manual_review"`
	Errors               []string      `json:"errors,omitempty"`
	StartedAt            time.Time     `json:"started_at"`
	CompletedAt          *time.Time    `json:"completed_at,omitempty"`
}
