package keyword

import (
	"strings"
	"time"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// Experience tier names used in results and recommendations.
const (
	TierGold    = "gold_standard"
	TierGood    = "good"
	TierMinimum = "minimum_viable"
	TierBelow   = "below_minimum"
)

// roleWeight classifies one role. Returns -1 for excluded roles, 1.0 for
// direct-domain, 0.5 for related, 0 otherwise. Exclusion wins regardless of
// any other keyword matches in the role text.
func roleWeight(text string, cfg *Config) float64 {
	lower := strings.ToLower(text)
	for _, term := range cfg.ExcludedRoleTerms {
		if strings.Contains(lower, term) {
			return -1
		}
	}
	for _, term := range cfg.DirectTerms {
		if strings.Contains(lower, term) {
			return 1.0
		}
	}
	for _, term := range cfg.RelatedTerms {
		if strings.Contains(lower, term) {
			return 0.5
		}
	}
	return 0
}

// relevantYears computes weighted years of relevant experience with
// overlapping ranges merged per the max tier weight.
func relevantYears(exps []types.Experience, cfg *Config, now time.Time) float64 {
	var ranges []WeightedRange
	for _, e := range exps {
		w := roleWeight(e.Text(), cfg)
		if w <= 0 {
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
		ranges = append(ranges, WeightedRange{Start: start, End: end, Weight: w})
	}
	return MergeWeightedYears(ranges)
}

// experienceBucket maps weighted years onto the discrete tiers.
func experienceBucket(years float64, cfg *Config) (score float64, tier string, bonus float64) {
	switch {
	case years >= cfg.GoldYears:
		return cfg.GoldScore, TierGold, cfg.GoldBonus
	case years >= cfg.GoodYears:
		return cfg.GoodScore, TierGood, cfg.GoodBonus
	case years >= cfg.MinimumYears:
		return cfg.MinimumScore, TierMinimum, 0
	default:
		return cfg.BelowScore, TierBelow, -cfg.BelowPenalty
	}
}

// isSerialFounder detects the serial-founder pattern: enough founder-titled
// roles overall, with enough of them started inside the recent window.
func isSerialFounder(exps []types.Experience, cfg *Config, now time.Time) bool {
	founderRoles, recentFounders := 0, 0
	windowStart := now.AddDate(-int(cfg.SerialFounderWindow), 0, 0)
	for _, e := range exps {
		title := strings.ToLower(e.Title)
		matched := false
		for _, term := range cfg.FounderTerms {
			if strings.Contains(title, term) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		founderRoles++
		if start, ok := e.StartDate.Time(); ok && start.After(windowStart) {
			recentFounders++
		}
	}
	return founderRoles >= cfg.SerialFounderRoles && recentFounders >= cfg.SerialFounderRecent
}

// isRecentPivot detects a career pivot: relevant experience exists but all
// of it started inside the pivot window, with nothing older to back it up.
func isRecentPivot(exps []types.Experience, cfg *Config, now time.Time) bool {
	var earliest time.Time
	found := false
	for _, e := range exps {
		if roleWeight(e.Text(), cfg) <= 0 {
			continue
		}
		start, ok := e.StartDate.Time()
		if !ok {
			continue
		}
		if !found || start.Before(earliest) {
			earliest = start
			found = true
		}
	}
	if !found {
		return false
	}
	age := now.Sub(earliest).Hours() / (24 * 365.25)
	return age < cfg.PivotWindow
}
