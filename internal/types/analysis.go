package types

import "time"

// AnalysisMethod records which path produced an assessment, for downstream
// explanation strings.
type AnalysisMethod string

// Analysis method values.
const (
	MethodAI       AnalysisMethod = "ai"
	MethodKeywords AnalysisMethod = "keywords"
)

// ContentAnalysis is the per-post result of content quality analysis.
// All scores are on a 1-10 scale and clamped before storage.
type ContentAnalysis struct {
	PostID          string    `json:"post_id"`
	ContentHash     string    `json:"content_hash"`
	Authenticity    float64   `json:"authenticity"`
	Expertise       float64   `json:"expertise"`
	Specificity     float64   `json:"specificity"`
	Professionalism float64   `json:"professionalism"`
	RedFlags        []string  `json:"red_flags,omitempty"`
	Reasoning       string    `json:"reasoning,omitempty"`
	AIProvider      string    `json:"ai_provider,omitempty"`
	ModelVersion    string    `json:"model_version,omitempty"`
	Cached          bool      `json:"cached"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
}

// OverallScore is the mean of the four quality dimensions.
func (c ContentAnalysis) OverallScore() float64 {
	return (c.Authenticity + c.Expertise + c.Specificity + c.Professionalism) / 4
}

// MaxStoredRedFlags caps the red-flag count kept in a stored summary so a
// pathological profile cannot accumulate an unbounded penalty.
const MaxStoredRedFlags = 10

// ContentSummary is the per-prospect rollup of content analyses.
// ContentHash fingerprints the post set the summary was computed from,
// so an edited post invalidates the stored rollup even when the post
// count is unchanged.
type ContentSummary struct {
	ProspectID         string         `json:"prospect_id"`
	PostCount          int            `json:"post_count"`
	ContentHash        string         `json:"content_hash,omitempty"`
	AvgAuthenticity    float64        `json:"avg_authenticity"`
	AvgExpertise       float64        `json:"avg_expertise"`
	AvgSpecificity     float64        `json:"avg_specificity"`
	AvgProfessionalism float64        `json:"avg_professionalism"`
	OverallQuality     string         `json:"overall_quality"`
	AIGeneratedCount   int            `json:"ai_generated_count"`
	RedFlagCount       int            `json:"red_flag_count"`
	AnalysisMethod     AnalysisMethod `json:"analysis_method"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// AIContentPercent reports the share of posts flagged as AI-generated.
func (s ContentSummary) AIContentPercent() float64 {
	if s.PostCount == 0 {
		return 0
	}
	return float64(s.AIGeneratedCount) / float64(s.PostCount) * 100
}

// RoleRelevance is one entry of an experience assessment's breakdown.
type RoleRelevance struct {
	Title     string  `json:"title"`
	Company   string  `json:"company,omitempty"`
	Relevance float64 `json:"relevance"` // 0.0-1.0
	Years     float64 `json:"years"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// MaxCountedYears caps the total weighted experience figure.
const MaxCountedYears = 20.0

// ExperienceAssessment is the weighted "years of relevant experience" result.
type ExperienceAssessment struct {
	YearsInIndustry   float64         `json:"years_in_industry"` // capped at MaxCountedYears
	RelevancyScore    float64         `json:"relevancy_score"`   // 0-1
	CareerConsistency float64         `json:"career_consistency"`
	RoleBreakdown     []RoleRelevance `json:"role_breakdown,omitempty"`
	AnalysisMethod    AnalysisMethod  `json:"analysis_method"`
}

// Clamp forces a value into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
