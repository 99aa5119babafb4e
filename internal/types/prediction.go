package types

import (
	"time"

	"github.com/google/uuid"
)

// Decision is the outcome of a scoring request.
type Decision string

// Decision values.
const (
	DecisionContact Decision = "contact"
	DecisionSkip    Decision = "skip"
)

// ScoreBreakdown holds every component that fed the final score. Components
// are clamped to their documented ranges before combination.
type ScoreBreakdown struct {
	PatternScore    float64 `json:"pattern_score"`
	SimilarityScore float64 `json:"similarity_score"`
	ContentScore    float64 `json:"content_score"`
	ExperienceScore float64 `json:"experience_score"`
	RedFlagPenalty  float64 `json:"red_flag_penalty"` // <= 0, capped at -3.0
	FinalScore      float64 `json:"final_score"`
}

// Reasoning is the structured explanation attached to a prediction. Every
// entry is derived deterministically from a threshold crossing.
type Reasoning struct {
	PrimaryFactors    []string `json:"primary_factors,omitempty"`
	ConcerningSignals []string `json:"concerning_signals,omitempty"`
	ContentQuality    string   `json:"content_quality,omitempty"`
	ExperienceMatch   string   `json:"experience_match,omitempty"`
	SimilarProspects  []string `json:"similar_prospects,omitempty"`
}

// LearningMetadata records what training data was available at prediction
// time, for later accuracy validation.
type LearningMetadata struct {
	PatternsUsed          int    `json:"patterns_used"`
	SimilarProspectsFound int    `json:"similar_prospects_found"`
	DataQuality           string `json:"data_quality"` // trained | bootstrap | fallback
	ModelVersion          string `json:"model_version"`
}

// Prediction is created once per scoring call and never mutated afterwards;
// outcome and feedback records reference it by ID.
type Prediction struct {
	ID         uuid.UUID        `json:"id"`
	ProspectID string           `json:"prospect_id"`
	UserID     string           `json:"user_id,omitempty"`
	Decision   Decision         `json:"predicted_decision"`
	Confidence float64          `json:"confidence"` // 0-100
	Reasoning  Reasoning        `json:"reasoning"`
	Scores     ScoreBreakdown   `json:"score_breakdown"`
	Learning   LearningMetadata `json:"learning_metadata"`
	CreatedAt  time.Time        `json:"created_at"`
}

// PatternOperator is the comparison a stored pattern applies.
type PatternOperator string

// Pattern operators.
const (
	OpLessThan         PatternOperator = "less_than"
	OpGreaterThan      PatternOperator = "greater_than"
	OpGreaterThanEqual PatternOperator = "greater_than_equal"
)

// DecisionPattern is a learned trigger condition: a single-field comparison
// against a prospect's derived metrics, with an expected outcome.
type DecisionPattern struct {
	ID              string          `json:"id"`
	Field           string          `json:"field"` // see patterns.Metrics
	Operator        PatternOperator `json:"operator"`
	Threshold       float64         `json:"threshold"`
	ExpectedOutcome Decision        `json:"expected_outcome"`
	Confidence      float64         `json:"confidence"`     // 0-1
	MatchStrength   float64         `json:"match_strength"` // 0-1
}

// PatternMatch is a pattern whose condition was satisfied by a prospect.
type PatternMatch struct {
	Pattern      DecisionPattern `json:"pattern"`
	Value        float64         `json:"value"`        // the metric that matched
	Contribution float64         `json:"contribution"` // signed score contribution
}

// LabeledDecision is a past decision used for similarity retrieval.
type LabeledDecision struct {
	ProspectID      string    `json:"prospect_id"`
	Name            string    `json:"name,omitempty"`
	Industry        string    `json:"industry,omitempty"`
	Role            string    `json:"role,omitempty"`
	Company         string    `json:"company,omitempty"`
	YearsExperience float64   `json:"years_experience"`
	ContentTopics   []string  `json:"content_topics,omitempty"`
	Decision        Decision  `json:"decision"`
	Confidence      float64   `json:"confidence"`
	DecidedAt       time.Time `json:"decided_at"`
}

// SimilarProspect is a retrieval result: a past labeled decision above the
// similarity threshold.
type SimilarProspect struct {
	ProspectID      string   `json:"prospect_id"`
	Name            string   `json:"name,omitempty"`
	Similarity      float64  `json:"similarity"` // 0-1
	Decision        Decision `json:"decision"`
	Confidence      float64  `json:"confidence"`
	MatchingFactors []string `json:"matching_factors,omitempty"`
}
