package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prospect-scorer/internal/background"
	"github.com/jonathan/prospect-scorer/internal/cache"
	"github.com/jonathan/prospect-scorer/internal/llm"
	"github.com/jonathan/prospect-scorer/internal/scoring/content"
	"github.com/jonathan/prospect-scorer/internal/scoring/patterns"
	"github.com/jonathan/prospect-scorer/internal/types"
)

type fakePatternStore struct {
	patterns []types.DecisionPattern
	err      error
	panics   bool
}

func (f *fakePatternStore) ActivePatterns(context.Context, string) ([]types.DecisionPattern, error) {
	if f.panics {
		panic("pattern store exploded")
	}
	return f.patterns, f.err
}

type fakeDecisionStore struct {
	decisions []types.LabeledDecision
	err       error
}

func (f *fakeDecisionStore) RecentDecisions(context.Context, string, int) ([]types.LabeledDecision, error) {
	return f.decisions, f.err
}

type fakePredictionStore struct {
	mu    sync.Mutex
	saved []*types.Prediction
	err   error
}

func (f *fakePredictionStore) SavePrediction(_ context.Context, p *types.Prediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, p)
	return f.err
}

func (f *fakePredictionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type blockingClient struct{}

func (blockingClient) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return "", errors.New("not used")
}

// GenerateJSON blocks until the context expires whenever the prompt
// carries the slow marker, and answers promptly otherwise.
func (blockingClient) GenerateJSON(ctx context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if strings.Contains(prompt, "SLOWPOST") {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return `[{"index": 0, "authenticity": 8, "expertise": 8, "specificity": 8, "professionalism": 8, "red_flags": [], "reasoning": "ok"}]`, nil
}

func (blockingClient) GetModel(llm.ModelTier) string { return "mock" }
func (blockingClient) Close() error                  { return nil }

func date(y, m int) types.FlexDate {
	return types.NewFlexDate(time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC))
}

func strongProspect(id string) *types.Prospect {
	return &types.Prospect{
		ID:       id,
		Name:     "Dana Reeves",
		Industry: "Business Brokerage",
		Role:     "Business Broker",
		Company:  "Sunbelt Business Advisors",
		Experience: []types.Experience{
			{Title: "Business Broker", StartDate: date(2008, 1), EndDate: date(2024, 1)},
		},
		RecentPosts: []types.Post{
			{ID: "1", Content: "Walked a seller through due diligence and business valuation. Deal structure and exit planning take months of closing work for a clean asset sale."},
		},
	}
}

func weakProspect(id string) *types.Prospect {
	return &types.Prospect{
		ID: id,
		Experience: []types.Experience{
			{Title: "Barista", StartDate: date(2022, 1)},
		},
		RecentPosts: []types.Post{
			{ID: "1", Content: "Get rich quick with passive income! Financial freedom is real, dm me to learn the secret formula. Link in bio."},
		},
	}
}

// fallbackEngine runs with nil analyzers and nil stores: pure keyword
// paths, cold start.
func fallbackEngine() *Engine {
	return NewEngine(nil, nil, nil, nil, nil, nil, patterns.DefaultConfig(), DefaultConfig(), nil)
}

func TestPredict_BootstrapWeightsOnColdStart(t *testing.T) {
	e := fallbackEngine()
	pred := e.Predict(context.Background(), strongProspect("p-1"), "u-1")

	require.NotNil(t, pred)
	assert.Equal(t, "bootstrap", pred.Learning.DataQuality)
	assert.Equal(t, 0, pred.Learning.PatternsUsed)
	assert.Equal(t, 0, pred.Learning.SimilarProspectsFound)

	cfg := DefaultConfig()
	want := cfg.BootstrapContent*pred.Scores.ContentScore +
		cfg.BootstrapExperience*pred.Scores.ExperienceScore +
		pred.Scores.RedFlagPenalty
	assert.InDelta(t, want, pred.Scores.FinalScore, 0.001,
		"cold start must use only content and experience weights")
}

func TestPredict_OnePatternFlipsToTrainedWeights(t *testing.T) {
	// A single always-matching pattern must switch the formula.
	store := &fakePatternStore{patterns: []types.DecisionPattern{{
		ID: "p1", Field: patterns.FieldYearsExperience, Operator: types.OpGreaterThanEqual,
		Threshold: 0, ExpectedOutcome: types.DecisionContact, Confidence: 0.8, MatchStrength: 1,
	}}}
	e := NewEngine(nil, nil, store, nil, nil, nil, patterns.DefaultConfig(), DefaultConfig(), nil)

	pred := e.Predict(context.Background(), strongProspect("p-1"), "u-1")

	assert.Equal(t, "trained", pred.Learning.DataQuality)
	assert.Equal(t, 1, pred.Learning.PatternsUsed)

	cfg := DefaultConfig()
	want := cfg.Trained.Pattern*pred.Scores.PatternScore +
		cfg.Trained.Similarity*pred.Scores.SimilarityScore +
		cfg.Trained.Content*pred.Scores.ContentScore +
		cfg.Trained.Experience*pred.Scores.ExperienceScore +
		pred.Scores.RedFlagPenalty
	assert.InDelta(t, want, pred.Scores.FinalScore, 0.001)
	assert.Greater(t, pred.Scores.PatternScore, 0.0)
}

func TestPredict_DecisionAndConfidence(t *testing.T) {
	e := fallbackEngine()

	strong := e.Predict(context.Background(), strongProspect("p-strong"), "u-1")
	assert.Equal(t, types.DecisionContact, strong.Decision)
	wantConf := strong.Scores.FinalScore * 20
	if wantConf < 0 {
		wantConf = -wantConf
	}
	if wantConf > 100 {
		wantConf = 100
	}
	assert.InDelta(t, wantConf, strong.Confidence, 0.001)

	weak := e.Predict(context.Background(), weakProspect("p-weak"), "u-1")
	assert.Equal(t, types.DecisionSkip, weak.Decision)
	assert.Less(t, weak.Scores.FinalScore, 0.0)
}

func TestPredict_RedFlagPenaltyCapped(t *testing.T) {
	e := fallbackEngine()
	p := weakProspect("p-flags")
	// Pile on flagged posts so the uncapped penalty would exceed 3.
	p.RecentPosts = append(p.RecentPosts,
		types.Post{ID: "2", Content: "Passive income secret formula, link in bio. Get rich quick."},
		types.Post{ID: "3", Content: "Financial freedom! DM me to learn. 10x your hustle."},
	)

	pred := e.Predict(context.Background(), p, "u-1")
	assert.Equal(t, -3.0, pred.Scores.RedFlagPenalty)
}

func TestPredict_SimilarityLookupFailureYieldsEmptyList(t *testing.T) {
	decisions := &fakeDecisionStore{err: errors.New("store down")}
	e := NewEngine(nil, nil, nil, decisions, nil, nil, patterns.DefaultConfig(), DefaultConfig(), nil)

	pred := e.Predict(context.Background(), strongProspect("p-1"), "u-1")
	require.NotNil(t, pred)
	assert.Equal(t, 0, pred.Learning.SimilarProspectsFound)
	assert.Equal(t, "bootstrap", pred.Learning.DataQuality)
}

func TestPredict_SimilarProspectsFeedReasoning(t *testing.T) {
	decisions := &fakeDecisionStore{decisions: []types.LabeledDecision{
		{
			ProspectID: "d-1", Industry: "Business Brokerage", Role: "Business Broker",
			Company: "Sunbelt Business Advisors", Decision: types.DecisionContact, Confidence: 90,
		},
	}}
	e := NewEngine(nil, nil, nil, decisions, nil, nil, patterns.DefaultConfig(), DefaultConfig(), nil)

	pred := e.Predict(context.Background(), strongProspect("p-1"), "u-1")
	assert.Equal(t, 1, pred.Learning.SimilarProspectsFound)
	assert.Equal(t, "trained", pred.Learning.DataQuality)
	require.Len(t, pred.Reasoning.SimilarProspects, 1)
	assert.Contains(t, pred.Reasoning.SimilarProspects[0], "d-1")
	assert.Contains(t, pred.Reasoning.SimilarProspects[0], "contacted")
}

func TestPredict_PanicReturnsFallbackPrediction(t *testing.T) {
	e := NewEngine(nil, nil, &fakePatternStore{panics: true}, nil, nil, nil,
		patterns.DefaultConfig(), DefaultConfig(), nil)

	pred := e.Predict(context.Background(), strongProspect("p-1"), "u-1")

	require.NotNil(t, pred)
	assert.Equal(t, types.DecisionSkip, pred.Decision)
	assert.Equal(t, 20.0, pred.Confidence)
	assert.Equal(t, []string{"insufficient data"}, pred.Reasoning.ConcerningSignals)
	assert.Empty(t, pred.Reasoning.PrimaryFactors)
	assert.Equal(t, "fallback", pred.Learning.DataQuality)
}

func TestPredict_PersistsFireAndForget(t *testing.T) {
	store := &fakePredictionStore{}
	runner := background.NewRunner(nil, time.Second)
	e := NewEngine(nil, nil, nil, nil, store, runner, patterns.DefaultConfig(), DefaultConfig(), nil)

	pred := e.Predict(context.Background(), strongProspect("p-1"), "u-1")
	runner.Wait()
	require.Equal(t, 1, store.count())
	assert.Equal(t, pred.ID, store.saved[0].ID)
}

func TestPredict_PersistFailureNotSurfaced(t *testing.T) {
	store := &fakePredictionStore{err: errors.New("db down")}
	runner := background.NewRunner(nil, time.Second)
	e := NewEngine(nil, nil, nil, nil, store, runner, patterns.DefaultConfig(), DefaultConfig(), nil)

	pred := e.Predict(context.Background(), strongProspect("p-1"), "u-1")
	runner.Wait()
	require.NotNil(t, pred)
	assert.Equal(t, int64(1), runner.Failures())
}

func TestPredictBatch_OneTimeoutDoesNotFailTheBatch(t *testing.T) {
	analyzer := content.NewAnalyzer(blockingClient{}, cache.NewMemory(), content.DefaultConfig(), nil)
	cfg := DefaultConfig()
	cfg.UnitTimeout = 200 * time.Millisecond

	e := NewEngine(analyzer, nil, nil, nil, nil, nil, patterns.DefaultConfig(), cfg, nil)

	prospects := make([]*types.Prospect, 10)
	for i := 0; i < 9; i++ {
		prospects[i] = strongProspect("p-ok")
		prospects[i].RecentPosts = []types.Post{{ID: "1", Content: "Deal structure and due diligence."}}
	}
	slow := strongProspect("p-slow")
	slow.RecentPosts = []types.Post{{ID: "1", Content: "SLOWPOST content that hangs the provider."}}
	prospects[9] = slow

	start := time.Now()
	results := e.PredictBatch(context.Background(), prospects, "u-1")
	elapsed := time.Since(start)

	require.Len(t, results, 10)
	for _, r := range results {
		require.NotNil(t, r)
	}
	// The slow unit resolved via its timeout and neutral fallback rather
	// than hanging the whole batch.
	assert.Less(t, elapsed, 5*time.Second)
	assert.Equal(t, "p-slow", results[9].ProspectID)
}

func TestPredict_ReasoningThresholds(t *testing.T) {
	e := fallbackEngine()

	strong := e.Predict(context.Background(), strongProspect("p-1"), "u-1")
	joined := strings.Join(strong.Reasoning.PrimaryFactors, " | ")
	assert.Contains(t, joined, "gold standard")
	assert.NotEmpty(t, strong.Reasoning.ExperienceMatch)
	assert.Contains(t, strong.Reasoning.ExperienceMatch, "keywords")

	weak := e.Predict(context.Background(), weakProspect("p-2"), "u-1")
	assert.NotEmpty(t, weak.Reasoning.ConcerningSignals)
	signals := strings.Join(weak.Reasoning.ConcerningSignals, " | ")
	assert.Contains(t, signals, "red flags")
}
