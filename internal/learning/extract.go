package learning

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/prospect-scorer/internal/scoring/patterns"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// TopPatternCount bounds the success/failure factor lists.
const TopPatternCount = 5

// IndustryAggregate is the rating-weighted running average for one
// industry within a batch.
type IndustryAggregate struct {
	WeightedSum float64
	WeightTotal float64
	Samples     int
}

// Mean returns the rating-weighted average rating for the industry.
func (a IndustryAggregate) Mean() float64 {
	if a.WeightTotal == 0 {
		return 0
	}
	return a.WeightedSum / a.WeightTotal
}

// RoleAggregate tracks positive vs total responses for one role.
type RoleAggregate struct {
	Positive int
	Total    int
}

// ExtractedPatterns is the aggregate a batch of validated feedback
// produces before the profile merge.
type ExtractedPatterns struct {
	Industries map[string]IndustryAggregate
	Roles      map[string]RoleAggregate
	// SuccessFactors and FailureFactors are frequency-ranked, top
	// TopPatternCount each.
	SuccessFactors []string
	FailureFactors []string
}

// ExtractPatterns aggregates validated feedback into per-industry and
// per-role averages and ranked factor lists. Ratings weight the
// averages; records without a learning weight count at 1.
func ExtractPatterns(batch []types.Feedback) ExtractedPatterns {
	out := ExtractedPatterns{
		Industries: make(map[string]IndustryAggregate),
		Roles:      make(map[string]RoleAggregate),
	}

	successFreq := make(map[string]int)
	failureFreq := make(map[string]int)

	for _, fb := range batch {
		weight := fb.LearningWeight
		if weight <= 0 {
			weight = 1
		}
		rating, hasRating := effectiveRating(fb)

		if fb.Industry != "" && hasRating {
			key := strings.ToLower(fb.Industry)
			agg := out.Industries[key]
			agg.WeightedSum += rating * weight
			agg.WeightTotal += weight
			agg.Samples++
			out.Industries[key] = agg
		}

		if fb.Role != "" {
			key := strings.ToLower(fb.Role)
			agg := out.Roles[key]
			agg.Total++
			if isPositive(fb) {
				agg.Positive++
			}
			out.Roles[key] = agg
		}

		for _, flag := range fb.CorrectionFlags {
			failureFreq[flag]++
		}
		if isPositive(fb) && len(fb.FactorRatings) > 0 {
			for factor, r := range fb.FactorRatings {
				if r >= 7 {
					successFreq[factor]++
				}
			}
		}
	}

	out.SuccessFactors = topByFrequency(successFreq, TopPatternCount)
	out.FailureFactors = topByFrequency(failureFreq, TopPatternCount)
	return out
}

// metricPatterns maps recurring feedback factors onto single-field
// comparisons over the derived prospect metrics the matcher evaluates.
// Factors without a metric equivalent never become stored patterns.
var metricPatterns = map[string]types.DecisionPattern{
	"experience":           {Field: patterns.FieldYearsExperience, Operator: types.OpGreaterThanEqual, Threshold: 5, ExpectedOutcome: types.DecisionContact, MatchStrength: 0.5},
	"deep_deal_experience": {Field: patterns.FieldYearsExperience, Operator: types.OpGreaterThanEqual, Threshold: 5, ExpectedOutcome: types.DecisionContact, MatchStrength: 0.5},
	"authenticity":         {Field: patterns.FieldAuthenticity, Operator: types.OpGreaterThanEqual, Threshold: 7, ExpectedOutcome: types.DecisionContact, MatchStrength: 0.5},
	"authentic_voice":      {Field: patterns.FieldAuthenticity, Operator: types.OpGreaterThanEqual, Threshold: 7, ExpectedOutcome: types.DecisionContact, MatchStrength: 0.5},
	"ai_generated_content": {Field: patterns.FieldAIContentPercent, Operator: types.OpGreaterThan, Threshold: 50, ExpectedOutcome: types.DecisionSkip, MatchStrength: 1},
	"engagement_bait":      {Field: patterns.FieldRedFlagCount, Operator: types.OpGreaterThan, Threshold: 2, ExpectedOutcome: types.DecisionSkip, MatchStrength: 1},
}

// DerivePatterns converts a batch's ranked success and failure factors
// into storable decision patterns, keyed per user so redeploys refresh
// rather than duplicate. Confidence carries the profile's learning
// confidence at deploy time.
func DerivePatterns(userID string, pats ExtractedPatterns, confidence float64) []types.DecisionPattern {
	if confidence <= 0 {
		return nil
	}
	var out []types.DecisionPattern
	emit := func(factors []string, outcome types.Decision) {
		for _, factor := range factors {
			tmpl, ok := metricPatterns[factor]
			if !ok || tmpl.ExpectedOutcome != outcome {
				continue
			}
			tmpl.ID = userID + ":" + factor
			tmpl.Confidence = confidence
			out = append(out, tmpl)
		}
	}
	emit(pats.SuccessFactors, types.DecisionContact)
	emit(pats.FailureFactors, types.DecisionSkip)
	return out
}

// labeledDecision converts outcome-bearing feedback into the record
// similarity retrieval searches over. Feedback without a prospect
// reference or an effective rating carries no label.
func labeledDecision(fb types.Feedback, now time.Time) (types.LabeledDecision, bool) {
	rating, ok := effectiveRating(fb)
	if !ok || fb.ProspectID == "" {
		return types.LabeledDecision{}, false
	}
	decision := types.DecisionSkip
	if isPositive(fb) {
		decision = types.DecisionContact
	}
	decidedAt := fb.SubmittedAt
	if decidedAt.IsZero() {
		decidedAt = now
	}
	return types.LabeledDecision{
		ProspectID: fb.ProspectID,
		Industry:   fb.Industry,
		Role:       fb.Role,
		Decision:   decision,
		Confidence: math.Abs(rating-5) / 5,
		DecidedAt:  decidedAt,
	}, true
}

// effectiveRating maps every feedback shape onto the 0-10 rating scale.
func effectiveRating(fb types.Feedback) (float64, bool) {
	if fb.OverallRating > 0 {
		return fb.OverallRating, true
	}
	if fb.IsRelevant != nil {
		if *fb.IsRelevant {
			return 8, true
		}
		return 2, true
	}
	return 0, false
}

func isPositive(fb types.Feedback) bool {
	rating, ok := effectiveRating(fb)
	return ok && rating >= 6
}

func topByFrequency(freq map[string]int, limit int) []string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(freq))
	for name, count := range freq {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}
