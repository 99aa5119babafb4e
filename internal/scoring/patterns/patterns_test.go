package patterns

import (
	"testing"

	"github.com/jonathan/prospect-scorer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, StringSimilarity("Business Brokerage", "business brokerage"))
	assert.Equal(t, 0.0, StringSimilarity("", ""))

	// One edit over ten runes.
	assert.InDelta(t, 0.9, StringSimilarity("m&a adviser", "m&a advisor"), 0.01)
	assert.Less(t, StringSimilarity("retail", "private equity"), 0.3)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("abc", "abc"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 1, levenshtein("broker", "brokers"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}

func TestSimilarity_MissingFactorsExcluded(t *testing.T) {
	cfg := DefaultConfig()

	a := Profile{Industry: "Business Brokerage", YearsExperience: 10}
	b := Profile{Industry: "Business Brokerage", YearsExperience: 10}

	// Role, company and content are missing on both sides: the score must
	// come from the present factors alone, not be dragged down by zeros.
	sim, factors := Similarity(a, b, &cfg)
	assert.InDelta(t, 1.0, sim, 0.001)
	assert.ElementsMatch(t, []string{"industry", "experience"}, factors)
}

func TestSimilarity_NoDataAtAll(t *testing.T) {
	cfg := DefaultConfig()
	sim, factors := Similarity(Profile{}, Profile{}, &cfg)
	assert.Equal(t, 0.0, sim)
	assert.Empty(t, factors)
}

func TestSimilarity_ExperienceGap(t *testing.T) {
	cfg := DefaultConfig()
	near, _ := Similarity(
		Profile{YearsExperience: 10},
		Profile{YearsExperience: 11},
		&cfg,
	)
	far, _ := Similarity(
		Profile{YearsExperience: 2},
		Profile{YearsExperience: 18},
		&cfg,
	)
	assert.Greater(t, near, 0.85)
	assert.Equal(t, 0.0, far, "gap beyond the spread floors at zero")
}

func TestTopicOverlap(t *testing.T) {
	assert.Equal(t, 1.0, topicOverlap([]string{"valuation", "Exit Planning"}, []string{"exit planning", "valuation"}))
	assert.InDelta(t, 1.0/3.0, topicOverlap([]string{"a", "b"}, []string{"b", "c"}), 0.001)
	assert.Equal(t, 0.0, topicOverlap([]string{"a"}, []string{"b"}))
}

func TestEvaluate(t *testing.T) {
	pats := []types.DecisionPattern{
		{
			ID: "p1", Field: FieldAuthenticity, Operator: types.OpGreaterThanEqual,
			Threshold: 7, ExpectedOutcome: types.DecisionContact,
			Confidence: 0.8, MatchStrength: 0.5,
		},
		{
			ID: "p2", Field: FieldRedFlagCount, Operator: types.OpGreaterThan,
			Threshold: 2, ExpectedOutcome: types.DecisionSkip,
			Confidence: 0.9, MatchStrength: 1.0,
		},
		{
			ID: "p3", Field: FieldYearsExperience, Operator: types.OpLessThan,
			Threshold: 3, ExpectedOutcome: types.DecisionSkip,
			Confidence: 0.7, MatchStrength: 1.0,
		},
	}

	m := Metrics{Authenticity: 8, YearsExperience: 12, RedFlagCount: 3}
	matches, total := Evaluate(pats, m)

	require.Len(t, matches, 2)
	assert.Equal(t, "p1", matches[0].Pattern.ID)
	assert.InDelta(t, 0.4, matches[0].Contribution, 0.001)
	assert.Equal(t, "p2", matches[1].Pattern.ID)
	assert.InDelta(t, -0.9, matches[1].Contribution, 0.001)
	assert.InDelta(t, -0.5, total, 0.001)
}

func TestEvaluate_BoundaryOperators(t *testing.T) {
	gte := []types.DecisionPattern{{
		Field: FieldYearsExperience, Operator: types.OpGreaterThanEqual,
		Threshold: 10, ExpectedOutcome: types.DecisionContact, Confidence: 1, MatchStrength: 1,
	}}
	matches, _ := Evaluate(gte, Metrics{YearsExperience: 10})
	assert.Len(t, matches, 1, "greater_than_equal includes the boundary")

	gt := []types.DecisionPattern{{
		Field: FieldYearsExperience, Operator: types.OpGreaterThan,
		Threshold: 10, ExpectedOutcome: types.DecisionContact, Confidence: 1, MatchStrength: 1,
	}}
	matches, _ = Evaluate(gt, Metrics{YearsExperience: 10})
	assert.Empty(t, matches, "greater_than excludes the boundary")
}

func TestEvaluate_UnknownFieldSkipped(t *testing.T) {
	pats := []types.DecisionPattern{{
		Field: "nonexistent", Operator: types.OpGreaterThan,
		Threshold: -1, ExpectedOutcome: types.DecisionContact, Confidence: 1, MatchStrength: 1,
	}}
	matches, total := Evaluate(pats, Metrics{})
	assert.Empty(t, matches)
	assert.Equal(t, 0.0, total)
}

func TestRankSimilar(t *testing.T) {
	cfg := DefaultConfig()
	profile := Profile{
		Industry:        "Business Brokerage",
		Role:            "Business Broker",
		YearsExperience: 12,
	}
	decisions := []types.LabeledDecision{
		{
			ProspectID: "d-close", Industry: "Business Brokerage",
			Role: "Business Broker", YearsExperience: 11,
			Decision: types.DecisionContact, Confidence: 90,
		},
		{
			ProspectID: "d-mid", Industry: "Business Brokerage",
			Role: "Marketing Director", YearsExperience: 12,
			Decision: types.DecisionSkip, Confidence: 70,
		},
		{
			ProspectID: "d-far", Industry: "Retail",
			Role: "Store Manager", YearsExperience: 2,
			Decision: types.DecisionSkip, Confidence: 80,
		},
	}

	similar := RankSimilar(profile, decisions, &cfg)

	require.NotEmpty(t, similar)
	assert.Equal(t, "d-close", similar[0].ProspectID)
	assert.Greater(t, similar[0].Similarity, 0.9)
	for _, s := range similar {
		assert.GreaterOrEqual(t, s.Similarity, cfg.Threshold)
		assert.NotEqual(t, "d-far", s.ProspectID)
	}
	// Sorted descending.
	for i := 1; i < len(similar); i++ {
		assert.GreaterOrEqual(t, similar[i-1].Similarity, similar[i].Similarity)
	}
}

func TestRankSimilar_TopK(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopK = 2
	profile := Profile{Industry: "Business Brokerage"}
	var decisions []types.LabeledDecision
	for i := 0; i < 5; i++ {
		decisions = append(decisions, types.LabeledDecision{
			ProspectID: "d", Industry: "Business Brokerage", Decision: types.DecisionContact,
		})
	}
	similar := RankSimilar(profile, decisions, &cfg)
	assert.Len(t, similar, 2)
}
