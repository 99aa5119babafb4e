// Package feedback turns free-text user feedback into typed signals:
// sentiment from keyword-category counting, tagged signals from a
// declarative regex detector table, optionally enriched by an AI
// extraction pass that augments but never replaces the deterministic
// output.
package feedback

// Sentiment is the overall polarity read from the feedback text itself.
type Sentiment string

// Sentiment values.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Signal categories.
const (
	CategoryContentAuthenticity = "content_authenticity"
	CategoryNetworkQuality      = "network_quality"
	CategoryAuthority           = "authority"
	CategoryLinguisticQuality   = "linguistic_quality"
	CategoryProfessionalDepth   = "professional_depth"
	CategoryRoleCorrection      = "role_correction"
	CategoryCompanyCorrection   = "company_correction"
	CategoryPreference          = "preference"
)

// Polarity of a signal.
type Polarity string

// Polarity values.
const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Signal is one tagged extraction from the feedback text.
type Signal struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Polarity Polarity `json:"polarity"`
	Detail   string   `json:"detail,omitempty"`
	// Source is "pattern" or "ai".
	Source string `json:"source"`
}

// ExtractedSignals is the full extraction result for one feedback text.
type ExtractedSignals struct {
	Sentiment Sentiment `json:"sentiment"`
	// IsRelevant is the relevance verdict derived from the text. It
	// overrides any caller-supplied flag.
	IsRelevant *bool    `json:"is_relevant,omitempty"`
	Signals    []Signal `json:"signals,omitempty"`
	// CorrectionFlags mirror correction-category signals in the compact
	// form the learning pipeline consumes, e.g. "wrong_role".
	CorrectionFlags []string `json:"correction_flags,omitempty"`
}
