// Package experience converts a job history into a weighted years-of-
// relevant-experience figure, via AI-assisted per-role relevance scoring
// with a keyword fallback that is always available and does no I/O.
package experience

// Config holds the fallback keyword tiers and caps.
type Config struct {
	// Excluded roles short-circuit to zero contribution regardless of any
	// other keyword matches.
	ExcludedTerms []string `json:"excluded_terms,omitempty"`

	// Relevance tiers, checked in order; the first match wins.
	DirectTerms []string `json:"direct_terms,omitempty"` // weight 1.0
	HighTerms   []string `json:"high_terms,omitempty"`   // weight 0.8
	MediumTerms []string `json:"medium_terms,omitempty"` // weight 0.5
	LowTerms    []string `json:"low_terms,omitempty"`    // weight 0.2

	DirectWeight float64 `json:"direct_weight"`
	HighWeight   float64 `json:"high_weight"`
	MediumWeight float64 `json:"medium_weight"`
	LowWeight    float64 `json:"low_weight"`

	// RoleCapYears caps any single role's counted duration; TotalCapYears
	// caps the summed figure.
	RoleCapYears  float64 `json:"role_cap_years"`
	TotalCapYears float64 `json:"total_cap_years"`
}

// DefaultConfig returns the tuned fallback configuration for the business
// brokerage / M&A domain.
func DefaultConfig() Config {
	return Config{
		ExcludedTerms: []string{
			"retail", "food service", "barista", "server", "cashier",
			"software engineer", "web developer", "life coach",
			"multi-level marketing", "network marketing",
		},
		DirectTerms: []string{
			"business broker", "business brokerage", "m&a advisor",
			"mergers and acquisitions", "business intermediary",
			"exit planning", "business valuation",
		},
		HighTerms: []string{
			"private equity", "investment banking", "investment banker",
			"corporate development", "transaction advisory",
		},
		MediumTerms: []string{
			"commercial banking", "commercial real estate", "cpa",
			"wealth management", "due diligence", "franchise",
		},
		LowTerms: []string{
			"sales", "business development", "consultant", "entrepreneur",
		},
		DirectWeight:  1.0,
		HighWeight:    0.8,
		MediumWeight:  0.5,
		LowWeight:     0.2,
		RoleCapYears:  15,
		TotalCapYears: 20,
	}
}
