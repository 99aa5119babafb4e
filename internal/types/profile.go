package types

import "time"

// IndustryWeight is a learned per-industry preference.
type IndustryWeight struct {
	Weight     float64 `json:"weight"`     // signed, typically [-1, 1]
	Confidence float64 `json:"confidence"` // 0-1, grows with sample size
	SampleSize int     `json:"sample_size"`
}

// RolePreference tracks how often prospects in a role were rated positively.
type RolePreference struct {
	PositiveRate float64 `json:"positive_rate"` // 0-1
	SampleCount  int     `json:"sample_count"`
}

// ContentPreference is a learned per-topic content weight.
type ContentPreference struct {
	Weight     float64 `json:"weight"`
	SampleSize int     `json:"sample_size"`
}

// AccuracyPoint is one day of the accuracy trend time series.
type AccuracyPoint struct {
	Date     time.Time `json:"date"`
	Accuracy float64   `json:"accuracy"` // 0-1, share of predictions within tolerance
	Samples  int       `json:"samples"`
}

// AccuracyTrendDays is how much of the accuracy time series is retained.
const AccuracyTrendDays = 90

// FeedbackForFullConfidence is the feedback count at which learning
// confidence saturates at 1.0.
const FeedbackForFullConfidence = 50

// PreferenceProfile is a user's learned scoring preferences. Created on first
// feedback, updated incrementally after each processed batch, deleted only by
// an explicit data-deletion request (handled outside the core).
type PreferenceProfile struct {
	UserID             string                       `json:"user_id"`
	TeamID             string                       `json:"team_id,omitempty"`
	IndustryWeights    map[string]IndustryWeight    `json:"industry_weights,omitempty"`
	RolePreferences    map[string]RolePreference    `json:"role_preferences,omitempty"`
	ContentPreferences map[string]ContentPreference `json:"content_preferences,omitempty"`
	SuccessPatterns    []string                     `json:"success_patterns,omitempty"`
	FailurePatterns    []string                     `json:"failure_patterns,omitempty"`
	LearningConfidence float64                      `json:"learning_confidence"` // 0-1
	TotalFeedbackCount int                          `json:"total_feedback_count"`
	// AverageRating is the running mean of overall ratings this user has
	// submitted, used for team-level outlier detection.
	AverageRating float64         `json:"average_rating,omitempty"`
	RatingSamples int             `json:"rating_samples,omitempty"`
	AccuracyTrend []AccuracyPoint `json:"accuracy_trend,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ConsensusPattern is a factor preference shared by a minimum share of team
// members.
type ConsensusPattern struct {
	Factor    string  `json:"factor"`
	Weight    float64 `json:"weight"`
	Agreement float64 `json:"agreement"` // share of members agreeing, 0-1
	Members   int     `json:"members"`
}

// DiversePerspective records a factor where members legitimately disagree;
// these are kept visible rather than averaged away.
type DiversePerspective struct {
	Factor        string             `json:"factor"`
	Variance      float64            `json:"variance"`
	MemberWeights map[string]float64 `json:"member_weights,omitempty"`
}

// TeamProfile aggregates member preference profiles. Only created or updated
// when the team has at least two members.
type TeamProfile struct {
	TeamID              string               `json:"team_id"`
	MemberCount         int                  `json:"member_count"`
	ConsensusPatterns   []ConsensusPattern   `json:"consensus_patterns,omitempty"`
	DiversePerspectives []DiversePerspective `json:"diverse_perspectives,omitempty"`
	ExpertiseAreas      map[string]string    `json:"expertise_areas,omitempty"` // member -> strongest factor
	OutlierMembers      []string             `json:"outlier_members,omitempty"`
	AverageAccuracy     float64              `json:"average_accuracy"`
	UpdatedAt           time.Time            `json:"updated_at"`
}
