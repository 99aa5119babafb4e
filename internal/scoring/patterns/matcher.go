package patterns

import (
	"github.com/jonathan/prospect-scorer/internal/types"
)

// Metric field names a stored pattern may reference.
const (
	FieldAuthenticity     = "authenticity"
	FieldYearsExperience  = "years_experience"
	FieldRedFlagCount     = "red_flag_count"
	FieldAIContentPercent = "ai_content_percent"
)

// Metrics are the derived prospect values patterns are evaluated against.
type Metrics struct {
	Authenticity     float64
	YearsExperience  float64
	RedFlagCount     float64
	AIContentPercent float64
}

// Value returns the named metric. Unknown fields report ok=false, which
// skips the pattern rather than matching it against zero.
func (m Metrics) Value(field string) (float64, bool) {
	switch field {
	case FieldAuthenticity:
		return m.Authenticity, true
	case FieldYearsExperience:
		return m.YearsExperience, true
	case FieldRedFlagCount:
		return m.RedFlagCount, true
	case FieldAIContentPercent:
		return m.AIContentPercent, true
	}
	return 0, false
}

// Evaluate runs every pattern against the metrics. A pattern matches iff
// its single-field comparison holds; each match contributes
// confidence x matchStrength, signed by the expected outcome. Returns
// the matches and the summed contribution.
func Evaluate(pats []types.DecisionPattern, m Metrics) ([]types.PatternMatch, float64) {
	var matches []types.PatternMatch
	total := 0.0
	for _, p := range pats {
		value, ok := m.Value(p.Field)
		if !ok || !holds(p.Operator, value, p.Threshold) {
			continue
		}
		contribution := p.Confidence * p.MatchStrength
		if p.ExpectedOutcome != types.DecisionContact {
			contribution = -contribution
		}
		total += contribution
		matches = append(matches, types.PatternMatch{
			Pattern:      p,
			Value:        value,
			Contribution: contribution,
		})
	}
	return matches, total
}

func holds(op types.PatternOperator, value, threshold float64) bool {
	switch op {
	case types.OpLessThan:
		return value < threshold
	case types.OpGreaterThan:
		return value > threshold
	case types.OpGreaterThanEqual:
		return value >= threshold
	}
	return false
}
