// Package content scores post content for authenticity, expertise,
// specificity and professionalism via an AI rubric, with content-hash
// caching and a pure keyword fallback for quota failures.
package content

import "time"

// MaxFallbackRedFlags caps the red flags a single fallback analysis can
// emit.
const MaxFallbackRedFlags = 5

// Config holds the analyzer's cache, batching, and fallback settings.
type Config struct {
	// Provider tags cache keys and result provenance.
	Provider string `json:"provider"`

	// CacheTTL bounds how long a per-post analysis is reused.
	CacheTTL time.Duration `json:"cache_ttl"`

	// BatchSize is the number of posts submitted in one AI call.
	BatchSize int `json:"batch_size"`

	// Fallback keyword tables.
	RedFlagTerms      []string `json:"red_flag_terms,omitempty"`
	ProfessionalTerms []string `json:"professional_terms,omitempty"`

	// Fallback score shaping.
	ProfessionalCredit float64 `json:"professional_credit"`
	RedFlagPenalty     float64 `json:"red_flag_penalty"`
	LongPostWords      int     `json:"long_post_words"`
	LongPostBonus      float64 `json:"long_post_bonus"`
	MediumPostWords    int     `json:"medium_post_words"`
	MediumPostBonus    float64 `json:"medium_post_bonus"`
}

// DefaultConfig returns the tuned configuration for the business
// brokerage / M&A domain.
func DefaultConfig() Config {
	return Config{
		Provider:  "gemini",
		CacheTTL:  12 * time.Hour,
		BatchSize: 5,
		RedFlagTerms: []string{
			"get rich quick", "passive income", "financial freedom",
			"dm me to learn", "link in bio", "secret formula",
			"10x your", "crush it", "hustle harder", "drop a comment",
		},
		ProfessionalTerms: []string{
			"due diligence", "business valuation", "deal structure",
			"letter of intent", "asset sale", "stock sale", "ebitda",
			"sell-side", "buy-side", "closing", "earnout", "exit planning",
		},
		ProfessionalCredit: 0.8,
		RedFlagPenalty:     1.5,
		LongPostWords:      80,
		LongPostBonus:      1.5,
		MediumPostWords:    40,
		MediumPostBonus:    0.75,
	}
}
