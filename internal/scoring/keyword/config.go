// Package keyword implements the pure-function heuristic scorer: keyword
// tiers, experience buckets, credibility signals, and red-flag patterns, all
// combined into a 0-10 relevance score. No I/O and no AI calls happen here;
// every tuned constant and term list is injected through Config so product
// can re-tune without code changes.
package keyword

// Config holds the term tables and tuned weights for the rule scorer.
// DefaultConfig carries the product-tuned values; tests and callers may
// override any of them.
type Config struct {
	// Keyword tiers. Matching is case-insensitive substring on normalized
	// text; per-term contribution is dampened by log(frequency+1) so keyword
	// stuffing cannot dominate.
	DirectTerms   []string `json:"direct_terms,omitempty"`
	RelatedTerms  []string `json:"related_terms,omitempty"`
	GenericTerms  []string `json:"generic_terms,omitempty"`
	RedFlagTerms  []string `json:"red_flag_terms,omitempty"`
	PersonalTerms []string `json:"personal_terms,omitempty"`

	// Per-tier weights applied to the dampened frequency.
	DirectWeight   float64 `json:"direct_weight"`
	RelatedWeight  float64 `json:"related_weight"`
	GenericWeight  float64 `json:"generic_weight"`
	PersonalWeight float64 `json:"personal_weight"` // negative

	// Roles matching these are excluded from experience scoring regardless
	// of any other keyword matches.
	ExcludedRoleTerms []string `json:"excluded_role_terms,omitempty"`

	// Experience buckets. Years are weighted (direct 1.0, related 0.5) with
	// overlapping ranges merged before bucketing.
	GoldYears       float64 `json:"gold_years"`        // >= => gold standard
	GoodYears       float64 `json:"good_years"`        // >= => good
	MinimumYears    float64 `json:"minimum_years"`     // >= => minimum viable
	GoldScore       float64 `json:"gold_score"`        // bucket component scores (0-10)
	GoodScore       float64 `json:"good_score"`
	MinimumScore    float64 `json:"minimum_score"`
	BelowScore      float64 `json:"below_score"`
	GoldBonus       float64 `json:"gold_bonus"` // added to the final score
	GoodBonus       float64 `json:"good_bonus"`
	BelowPenalty    float64 `json:"below_penalty"` // subtracted from the final score

	// Credibility signals, additive, capped at 10.
	LicenseTerms        []string `json:"license_terms,omitempty"`
	PrestigiousEmployers []string `json:"prestigious_employers,omitempty"`
	AcademicTerms       []string `json:"academic_terms,omitempty"`
	AdvisoryTerms       []string `json:"advisory_terms,omitempty"`
	DegreeTerms         []string `json:"degree_terms,omitempty"`
	LicenseCredit       float64  `json:"license_credit"`
	EmployerCredit      float64  `json:"employer_credit"`
	AcademicCredit      float64  `json:"academic_credit"`
	AdvisoryCredit      float64  `json:"advisory_credit"`
	DegreeCredit        float64  `json:"degree_credit"`

	// Red-flag scoring. The keyword hit count is capped; the structural
	// patterns contribute fixed amounts.
	FounderTerms        []string `json:"founder_terms,omitempty"`
	MaxKeywordFlags     float64  `json:"max_keyword_flags"`
	SerialFounderFlag   float64  `json:"serial_founder_flag"`
	RecentPivotFlag     float64  `json:"recent_pivot_flag"`
	SerialFounderRoles  int      `json:"serial_founder_roles"`  // >= roles overall
	SerialFounderRecent int      `json:"serial_founder_recent"` // >= started within window
	SerialFounderWindow float64  `json:"serial_founder_window"` // years
	PivotWindow         float64  `json:"pivot_window"`          // years

	// Linear combination weights (sum to 1.0) and red-flag handling.
	ExperienceWeight   float64 `json:"experience_weight"`
	CredibilityWeight  float64 `json:"credibility_weight"`
	KeywordWeight      float64 `json:"keyword_weight"`
	EngagementWeight   float64 `json:"engagement_weight"`
	CompletenessWeight float64 `json:"completeness_weight"`
	ContentMixWeight   float64 `json:"content_mix_weight"`
	FlagPenalty        float64 `json:"flag_penalty"`     // per red-flag point
	FlagPenaltyCap     float64 `json:"flag_penalty_cap"` // max subtraction

	// Score caps applied after the additive combination, tiered by the
	// red-flag score.
	CapThreeFlags float64 `json:"cap_three_flags"` // redFlagScore >= 3
	CapTwoFlags   float64 `json:"cap_two_flags"`   // >= 2
	CapOneFlag    float64 `json:"cap_one_flag"`    // >= 1
}

// DefaultConfig returns the tuned rule-scorer configuration for the business
// brokerage / M&A prospecting domain.
func DefaultConfig() Config {
	return Config{
		DirectTerms: []string{
			"business broker", "business brokerage", "m&a advisor", "m&a advisory",
			"mergers and acquisitions", "business intermediary", "exit planning",
			"exit strategy", "business valuation", "sell-side advisory",
			"buy-side advisory", "deal sourcing", "business acquisition",
		},
		RelatedTerms: []string{
			"private equity", "investment banking", "investment banker",
			"corporate development", "commercial banking", "due diligence",
			"franchise sales", "commercial real estate", "wealth management",
			"succession planning", "cpa", "transaction advisory",
		},
		GenericTerms: []string{
			"entrepreneur", "consultant", "business development", "sales leader",
			"small business", "management", "strategy", "negotiation",
		},
		RedFlagTerms: []string{
			"get rich quick", "passive income", "financial freedom", "dropshipping",
			"crypto signals", "forex signals", "guru", "dm me to learn",
			"link in bio", "10x your", "secret formula", "make money online",
		},
		PersonalTerms: []string{
			"follow me", "subscribe to", "my course", "join my", "coaching program",
			"free webinar", "masterclass",
		},
		DirectWeight:   2.0,
		RelatedWeight:  1.0,
		GenericWeight:  0.2,
		PersonalWeight: -0.5,

		ExcludedRoleTerms: []string{
			"retail", "food service", "barista", "server", "cashier",
			"software engineer", "web developer", "life coach",
			"multi-level marketing", "network marketing",
		},

		GoldYears:    10,
		GoodYears:    5,
		MinimumYears: 3,
		GoldScore:    10,
		GoodScore:    7.5,
		MinimumScore: 5.5,
		BelowScore:   2.0,
		GoldBonus:    1.5,
		GoodBonus:    0.75,
		BelowPenalty: 1.0,

		LicenseTerms: []string{
			"licensed business broker", "certified business intermediary", "cbi",
			"series 7", "series 79", "licensed", "cpa license",
		},
		PrestigiousEmployers: []string{
			"goldman sachs", "morgan stanley", "jp morgan", "jpmorgan",
			"mckinsey", "bain", "boston consulting", "deloitte", "kpmg",
			"ernst & young", "pwc", "lazard", "evercore",
		},
		AcademicTerms:  []string{"professor", "adjunct", "lecturer", "faculty"},
		AdvisoryTerms:  []string{"advisory board", "board advisor", "board member", "board of directors"},
		DegreeTerms:    []string{"mba", "ph.d", "phd", "j.d.", "cfa"},
		LicenseCredit:  2.5,
		EmployerCredit: 2.0,
		AcademicCredit: 1.5,
		AdvisoryCredit: 1.5,
		DegreeCredit:   1.0,

		FounderTerms:        []string{"founder", "co-founder", "cofounder"},
		MaxKeywordFlags:     5,
		SerialFounderFlag:   2.0,
		RecentPivotFlag:     1.5,
		SerialFounderRoles:  3,
		SerialFounderRecent: 2,
		SerialFounderWindow: 5,
		PivotWindow:         3,

		ExperienceWeight:   0.35,
		CredibilityWeight:  0.20,
		KeywordWeight:      0.20,
		EngagementWeight:   0.08,
		CompletenessWeight: 0.09,
		ContentMixWeight:   0.08,
		FlagPenalty:        0.4,
		FlagPenaltyCap:     2.0,

		CapThreeFlags: 6.0,
		CapTwoFlags:   7.5,
		CapOneFlag:    8.5,
	}
}
