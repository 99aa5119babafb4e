package experience

import (
	"math"
	"strings"
	"time"

	"github.com/jonathan/prospect-scorer/internal/scoring/keyword"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// FallbackAssess is the keyword-tier path. Pure function of the experience
// list, the config, and the clock: same input always produces the same
// assessment, and YearsInIndustry is always within [0, TotalCapYears].
func FallbackAssess(exps []types.Experience, cfg *Config, now time.Time) types.ExperienceAssessment {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}

	var ranges []keyword.WeightedRange
	breakdown := make([]types.RoleRelevance, 0, len(exps))
	totalYears := 0.0

	for _, e := range exps {
		weight, label := fallbackWeight(e.Text(), cfg)
		years := math.Min(e.Duration(now), cfg.RoleCapYears)
		totalYears += years

		breakdown = append(breakdown, types.RoleRelevance{
			Title:     e.Title,
			Company:   e.Company,
			Relevance: math.Max(weight, 0),
			Years:     years,
			Reasoning: label,
		})

		if weight <= 0 || years == 0 {
			continue
		}
		start, ok := e.StartDate.Time()
		if !ok {
			continue
		}
		end := now
		if t, ok := e.EndDate.Time(); ok {
			end = t
		}
		if cap := start.Add(time.Duration(cfg.RoleCapYears * 365.25 * 24 * float64(time.Hour))); end.After(cap) {
			end = cap
		}
		ranges = append(ranges, keyword.WeightedRange{Start: start, End: end, Weight: weight})
	}

	weighted := math.Min(keyword.MergeWeightedYears(ranges), cfg.TotalCapYears)

	relevancy := 0.0
	if totalYears > 0 {
		relevancy = types.Clamp(weighted/totalYears, 0, 1)
	}

	return types.ExperienceAssessment{
		YearsInIndustry:   weighted,
		RelevancyScore:    relevancy,
		CareerConsistency: consistency(exps, now),
		RoleBreakdown:     breakdown,
		AnalysisMethod:    types.MethodKeywords,
	}
}

// fallbackWeight classifies a role. Exclusion is checked first and
// short-circuits to zero contribution.
func fallbackWeight(text string, cfg *Config) (float64, string) {
	lower := strings.ToLower(text)
	for _, term := range cfg.ExcludedTerms {
		if strings.Contains(lower, term) {
			return -1, "excluded category: " + term
		}
	}
	for _, term := range cfg.DirectTerms {
		if strings.Contains(lower, term) {
			return cfg.DirectWeight, "direct domain: " + term
		}
	}
	for _, term := range cfg.HighTerms {
		if strings.Contains(lower, term) {
			return cfg.HighWeight, "high relevance: " + term
		}
	}
	for _, term := range cfg.MediumTerms {
		if strings.Contains(lower, term) {
			return cfg.MediumWeight, "medium relevance: " + term
		}
	}
	for _, term := range cfg.LowTerms {
		if strings.Contains(lower, term) {
			return cfg.LowWeight, "low relevance: " + term
		}
	}
	return 0, "unrelated"
}

// consistency measures how much of the overall career span is covered by
// dated roles: frequent long gaps pull it toward zero.
func consistency(exps []types.Experience, now time.Time) float64 {
	var earliest time.Time
	covered := 0.0
	found := false
	for _, e := range exps {
		start, ok := e.StartDate.Time()
		if !ok {
			continue
		}
		if !found || start.Before(earliest) {
			earliest = start
			found = true
		}
		covered += e.Duration(now)
	}
	if !found {
		return 0
	}
	span := now.Sub(earliest).Hours() / (24 * 365.25)
	if span <= 0 {
		return 0
	}
	return types.Clamp(covered/span, 0, 1)
}
