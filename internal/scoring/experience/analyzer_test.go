package experience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/prospect-scorer/internal/llm"
	"github.com/jonathan/prospect-scorer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// MockLLMClient implements llm.Client for testing.
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "[]", nil
}

func (m *MockLLMClient) GetModel(llm.ModelTier) string { return "mock-model" }
func (m *MockLLMClient) Close() error                  { return nil }

func date(y, m int) types.FlexDate {
	return types.NewFlexDate(time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC))
}

func fixedAnalyzer(client llm.Client) *Analyzer {
	a := NewAnalyzer(client, DefaultConfig(), nil)
	a.now = func() time.Time { return testNow }
	return a
}

func TestFallbackAssess_PureAndBounded(t *testing.T) {
	cfg := DefaultConfig()
	exps := []types.Experience{
		{Title: "Business Broker", StartDate: date(2010, 1), EndDate: date(2020, 1)},
		{Title: "Private Equity Associate", StartDate: date(2020, 1), EndDate: date(2024, 1)},
		{Title: "Barista", StartDate: date(2005, 1), EndDate: date(2008, 1)},
	}

	first := FallbackAssess(exps, &cfg, testNow)
	second := FallbackAssess(exps, &cfg, testNow)

	assert.Equal(t, first, second, "fallback must be a pure function")
	assert.GreaterOrEqual(t, first.YearsInIndustry, 0.0)
	assert.LessOrEqual(t, first.YearsInIndustry, cfg.TotalCapYears)
	assert.Equal(t, types.MethodKeywords, first.AnalysisMethod)

	// 10y direct (1.0) + 4y high (0.8) = 13.2 weighted; barista excluded.
	assert.InDelta(t, 13.2, first.YearsInIndustry, 0.2)
}

func TestFallbackAssess_TotalCap(t *testing.T) {
	cfg := DefaultConfig()
	exps := []types.Experience{
		{Title: "Business Broker", StartDate: date(1995, 1), EndDate: date(2025, 1)},
	}
	got := FallbackAssess(exps, &cfg, testNow)
	// 30 calendar years, capped at 15 per role before the 20 total cap.
	assert.LessOrEqual(t, got.YearsInIndustry, cfg.TotalCapYears)
	assert.InDelta(t, 15.0, got.YearsInIndustry, 0.2)
}

func TestFallbackAssess_ExcludedShortCircuits(t *testing.T) {
	cfg := DefaultConfig()
	// Direct keyword present but category excluded: contributes zero.
	exps := []types.Experience{
		{Title: "Retail business broker", StartDate: date(2010, 1), EndDate: date(2020, 1)},
	}
	got := FallbackAssess(exps, &cfg, testNow)
	assert.Equal(t, 0.0, got.YearsInIndustry)
}

func TestFallbackAssess_MissingDatesSkipped(t *testing.T) {
	cfg := DefaultConfig()
	exps := []types.Experience{
		{Title: "Business Broker"}, // no dates at all
		{Title: "M&A Advisor", StartDate: date(2020, 1), EndDate: date(2024, 1)},
	}
	got := FallbackAssess(exps, &cfg, testNow)
	assert.InDelta(t, 4.0, got.YearsInIndustry, 0.1)
}

func TestAnalyze_AIPath(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return `[{"index": 0, "relevance": 1.0, "reasoning": "direct brokerage"}, {"index": 1, "relevance": 0.0, "reasoning": "unrelated"}]`, nil
		},
	}
	a := fixedAnalyzer(client)

	exps := []types.Experience{
		{Title: "Business Broker", StartDate: date(2016, 1), EndDate: date(2024, 1)},
		{Title: "Dog Walker", StartDate: date(2010, 1), EndDate: date(2014, 1)},
	}
	got := a.Analyze(context.Background(), exps)

	assert.Equal(t, types.MethodAI, got.AnalysisMethod)
	assert.InDelta(t, 8.0, got.YearsInIndustry, 0.1)
	require.Len(t, got.RoleBreakdown, 2)
	assert.Equal(t, 1.0, got.RoleBreakdown[0].Relevance)
	assert.Equal(t, "direct brokerage", got.RoleBreakdown[0].Reasoning)
}

func TestAnalyze_AIRelevanceClamped(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return `[{"index": 0, "relevance": 7.5, "reasoning": "overeager model"}]`, nil
		},
	}
	a := fixedAnalyzer(client)
	exps := []types.Experience{
		{Title: "Business Broker", StartDate: date(2020, 1), EndDate: date(2024, 1)},
	}
	got := a.Analyze(context.Background(), exps)
	assert.Equal(t, 1.0, got.RoleBreakdown[0].Relevance)
	assert.InDelta(t, 4.0, got.YearsInIndustry, 0.1)
}

func TestAnalyze_AIFailureFallsBack(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	a := fixedAnalyzer(client)
	exps := []types.Experience{
		{Title: "Business Broker", StartDate: date(2016, 1), EndDate: date(2024, 1)},
	}
	got := a.Analyze(context.Background(), exps)
	assert.Equal(t, types.MethodKeywords, got.AnalysisMethod)
	assert.InDelta(t, 8.0, got.YearsInIndustry, 0.1)
}

func TestAnalyze_MalformedAIResponseFallsBack(t *testing.T) {
	client := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
			return `{"not": "an array"}`, nil
		},
	}
	a := fixedAnalyzer(client)
	exps := []types.Experience{
		{Title: "Business Broker", StartDate: date(2016, 1), EndDate: date(2024, 1)},
	}
	got := a.Analyze(context.Background(), exps)
	assert.Equal(t, types.MethodKeywords, got.AnalysisMethod)
}

func TestAnalyze_NilClientUsesKeywords(t *testing.T) {
	a := fixedAnalyzer(nil)
	got := a.Analyze(context.Background(), []types.Experience{
		{Title: "M&A Advisor", StartDate: date(2020, 1), EndDate: date(2023, 1)},
	})
	assert.Equal(t, types.MethodKeywords, got.AnalysisMethod)
}

func TestConsistency(t *testing.T) {
	continuous := []types.Experience{
		{Title: "A", StartDate: date(2016, 1), EndDate: date(2021, 1)},
		{Title: "B", StartDate: date(2021, 1), EndDate: date(2026, 1)},
	}
	assert.InDelta(t, 1.0, consistency(continuous, testNow), 0.05)

	gappy := []types.Experience{
		{Title: "A", StartDate: date(2006, 1), EndDate: date(2008, 1)},
		{Title: "B", StartDate: date(2024, 1), EndDate: date(2026, 1)},
	}
	assert.Less(t, consistency(gappy, testNow), 0.3)

	assert.Equal(t, 0.0, consistency(nil, testNow))
}
