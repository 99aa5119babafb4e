package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/jonathan/prospect-scorer/internal/cache"
	"github.com/jonathan/prospect-scorer/internal/llm"
	"github.com/jonathan/prospect-scorer/internal/types"
)

type countingClient struct {
	calls        int
	generateJSON func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

func (c *countingClient) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return "", errors.New("not used")
}

func (c *countingClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	c.calls++
	return c.generateJSON(ctx, prompt, tier)
}

func (c *countingClient) GetModel(llm.ModelTier) string { return "gemini-2.5-flash" }
func (c *countingClient) Close() error                  { return nil }

func goodBatchResponse(n int) string {
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += `{"index": ` + string(rune('0'+i)) + `, "authenticity": 8, "expertise": 7, "specificity": 6, "professionalism": 9, "red_flags": [], "reasoning": "solid"}`
	}
	return out + "]"
}

func testPosts() []types.Post {
	return []types.Post{
		{ID: "1", Content: "Closed a main street deal. Business valuation and due diligence done right."},
		{ID: "2", Content: "Thoughts on exit planning and deal structure for retiring owners."},
	}
}

func TestAnalyze_CacheIdempotence(t *testing.T) {
	client := &countingClient{
		generateJSON: func(context.Context, string, llm.ModelTier) (string, error) {
			return goodBatchResponse(2), nil
		},
	}
	a := NewAnalyzer(client, cache.NewMemory(), DefaultConfig(), nil)
	posts := testPosts()

	first := a.Analyze(context.Background(), posts, "p-1", false)
	require.Len(t, first, 2)
	assert.Equal(t, 1, client.calls)
	assert.False(t, first[0].Cached)

	second := a.Analyze(context.Background(), posts, "p-1", false)
	assert.Equal(t, 1, client.calls, "second call must be served entirely from cache")
	assert.True(t, second[0].Cached)
	assert.True(t, second[1].Cached)
	assert.Equal(t, first[0].Authenticity, second[0].Authenticity)
	assert.Equal(t, first[0].ContentHash, second[0].ContentHash)
}

func TestSummary_ServedFromCacheUntilStale(t *testing.T) {
	client := &countingClient{
		generateJSON: func(context.Context, string, llm.ModelTier) (string, error) {
			return goodBatchResponse(2), nil
		},
	}
	a := NewAnalyzer(client, cache.NewMemory(), DefaultConfig(), nil)
	posts := testPosts()

	first := a.Summary(context.Background(), posts, "p-1", false)
	assert.Equal(t, 2, first.PostCount)
	assert.Equal(t, 1, client.calls)

	second := a.Summary(context.Background(), posts, "p-1", false)
	assert.Equal(t, 1, client.calls, "fresh summary must be served from cache")
	assert.Equal(t, first.AvgAuthenticity, second.AvgAuthenticity)

	// A changed post set invalidates the stored summary.
	grown := append(posts, types.Post{ID: "3", Content: "New post on seller financing terms."})
	client.generateJSON = func(context.Context, string, llm.ModelTier) (string, error) {
		return goodBatchResponse(1), nil
	}
	third := a.Summary(context.Background(), grown, "p-1", false)
	assert.Equal(t, 3, third.PostCount)
	assert.Equal(t, 2, client.calls, "only the new post goes to the AI")
}

func TestSummary_EditedPostInvalidates(t *testing.T) {
	client := &countingClient{
		generateJSON: func(context.Context, string, llm.ModelTier) (string, error) {
			return goodBatchResponse(2), nil
		},
	}
	a := NewAnalyzer(client, cache.NewMemory(), DefaultConfig(), nil)
	posts := testPosts()

	first := a.Summary(context.Background(), posts, "p-1", false)
	assert.Equal(t, 1, client.calls)

	// Same post count, different content: the stored rollup is stale.
	edited := testPosts()
	edited[1].Content = "Completely rewritten take on earnout structures."
	client.generateJSON = func(context.Context, string, llm.ModelTier) (string, error) {
		return goodBatchResponse(1), nil
	}
	second := a.Summary(context.Background(), edited, "p-1", false)
	assert.Equal(t, 2, second.PostCount)
	assert.Equal(t, 2, client.calls, "only the edited post goes to the AI")
	assert.NotEqual(t, first.ContentHash, second.ContentHash)
}

func TestSummary_ForceRefreshRecomputes(t *testing.T) {
	client := &countingClient{
		generateJSON: func(context.Context, string, llm.ModelTier) (string, error) {
			return goodBatchResponse(2), nil
		},
	}
	a := NewAnalyzer(client, cache.NewMemory(), DefaultConfig(), nil)
	posts := testPosts()

	a.Summary(context.Background(), posts, "p-1", false)
	a.Summary(context.Background(), posts, "p-1", true)
	assert.Equal(t, 2, client.calls)
}

func TestAnalyze_ForceRefreshBypassesCache(t *testing.T) {
	client := &countingClient{
		generateJSON: func(context.Context, string, llm.ModelTier) (string, error) {
			return goodBatchResponse(2), nil
		},
	}
	a := NewAnalyzer(client, cache.NewMemory(), DefaultConfig(), nil)
	posts := testPosts()

	a.Analyze(context.Background(), posts, "p-1", false)
	a.Analyze(context.Background(), posts, "p-1", true)
	assert.Equal(t, 2, client.calls)
}

func TestAnalyze_QuotaErrorUsesKeywordFallback(t *testing.T) {
	client := &countingClient{
		generateJSON: func(context.Context, string, llm.ModelTier) (string, error) {
			return "", &googleapi.Error{Code: 429, Message: "quota exceeded"}
		},
	}
	a := NewAnalyzer(client, cache.NewMemory(), DefaultConfig(), nil)
	posts := []types.Post{
		{ID: "1", Content: "Get rich quick with passive income. DM me to learn the secret formula."},
		{ID: "2", Content: "Walked a seller through due diligence and deal structure this week."},
	}

	results := a.Analyze(context.Background(), posts, "p-quota", false)

	require.Len(t, results, 2)
	assert.Equal(t, 1, client.calls, "quota failure must not trigger per-post retries")
	assert.Empty(t, results[0].AIProvider, "fallback results carry no provider")
	assert.NotEmpty(t, results[0].RedFlags)
	assert.Greater(t, results[1].Expertise, results[0].Expertise)
}

func TestAnalyze_FallbackResultsNotCached(t *testing.T) {
	client := &countingClient{
		generateJSON: func(context.Context, string, llm.ModelTier) (string, error) {
			return "", &googleapi.Error{Code: 429, Message: "quota exceeded"}
		},
	}
	a := NewAnalyzer(client, cache.NewMemory(), DefaultConfig(), nil)
	posts := testPosts()

	degraded := a.Analyze(context.Background(), posts, "p-recover", false)
	assert.Empty(t, degraded[0].AIProvider)

	// Once the quota recovers, the same posts are re-scored by the AI
	// instead of being served degraded from the cache.
	client.generateJSON = func(context.Context, string, llm.ModelTier) (string, error) {
		return goodBatchResponse(2), nil
	}
	recovered := a.Analyze(context.Background(), posts, "p-recover", false)
	assert.Equal(t, 2, client.calls)
	assert.NotEmpty(t, recovered[0].AIProvider)
	assert.False(t, recovered[0].Cached)
}

func TestAnalyze_BatchFailureFallsBackPerPost(t *testing.T) {
	calls := 0
	client := &countingClient{
		generateJSON: func(context.Context, string, llm.ModelTier) (string, error) {
			calls++
			if calls == 1 {
				return "", &googleapi.Error{Code: 500, Message: "backend error"}
			}
			return `{"authenticity": 7, "expertise": 7, "specificity": 7, "professionalism": 7, "red_flags": [], "reasoning": "ok"}`, nil
		},
	}
	a := NewAnalyzer(client, cache.NewMemory(), DefaultConfig(), nil)

	results := a.Analyze(context.Background(), testPosts(), "p-batch", false)
	require.Len(t, results, 2)
	assert.Equal(t, 3, client.calls, "one batch attempt plus one call per post")
	assert.Equal(t, 7.0, results[0].Authenticity)
	assert.Equal(t, 7.0, results[1].Authenticity)
}

func TestAnalyze_SinglePostFailureIsolated(t *testing.T) {
	calls := 0
	client := &countingClient{
		generateJSON: func(context.Context, string, llm.ModelTier) (string, error) {
			calls++
			switch calls {
			case 1:
				return "", &googleapi.Error{Code: 500}
			case 2:
				return `{"authenticity": 9, "expertise": 9, "specificity": 9, "professionalism": 9, "red_flags": [], "reasoning": "ok"}`, nil
			default:
				return "not json at all", nil
			}
		},
	}
	a := NewAnalyzer(client, cache.NewMemory(), DefaultConfig(), nil)

	results := a.Analyze(context.Background(), testPosts(), "p-iso", false)
	require.Len(t, results, 2)
	assert.Equal(t, 9.0, results[0].Authenticity)
	// The unparseable second post comes back neutral, not as an error.
	assert.Equal(t, 5.0, results[1].Authenticity)
	assert.Equal(t, "analysis unavailable, neutral default", results[1].Reasoning)
}

func TestAnalyze_ScoresClamped(t *testing.T) {
	client := &countingClient{
		generateJSON: func(context.Context, string, llm.ModelTier) (string, error) {
			return `[{"index": 0, "authenticity": 42, "expertise": -3, "specificity": 5, "professionalism": 11}]`, nil
		},
	}
	a := NewAnalyzer(client, nil, DefaultConfig(), nil)

	results := a.Analyze(context.Background(), testPosts()[:1], "p-clamp", false)
	require.Len(t, results, 1)
	assert.Equal(t, 10.0, results[0].Authenticity)
	assert.Equal(t, 1.0, results[0].Expertise)
	assert.Equal(t, 10.0, results[0].Professionalism)
}

func TestAnalyze_NilClientUsesFallback(t *testing.T) {
	a := NewAnalyzer(nil, cache.NewMemory(), DefaultConfig(), nil)
	results := a.Analyze(context.Background(), testPosts(), "p-nil", false)
	require.Len(t, results, 2)
	assert.Empty(t, results[0].AIProvider)
	assert.NotZero(t, results[0].Authenticity)
}

func TestFallbackAnalysis_Pure(t *testing.T) {
	cfg := DefaultConfig()
	post := types.Post{ID: "1", Content: "Financial freedom via passive income. Link in bio."}

	first := FallbackAnalysis(post, &cfg)
	second := FallbackAnalysis(post, &cfg)
	assert.Equal(t, first, second)

	for _, v := range []float64{first.Authenticity, first.Expertise, first.Specificity, first.Professionalism} {
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, 10.0)
	}
	assert.LessOrEqual(t, len(first.RedFlags), MaxFallbackRedFlags)
	assert.Len(t, first.RedFlags, 3)
}

func TestHash_NormalizesWhitespaceAndCase(t *testing.T) {
	assert.Equal(t, Hash("Deal  Structure\nmatters"), Hash("deal structure matters"))
	assert.NotEqual(t, Hash("deal structure"), Hash("deal structures"))
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	analyses := []types.ContentAnalysis{
		{Authenticity: 8, Expertise: 8, Specificity: 8, Professionalism: 8, AIProvider: "gemini"},
		{Authenticity: 6, Expertise: 6, Specificity: 6, Professionalism: 6, AIProvider: "gemini",
			RedFlags: []string{"ai-generated boilerplate"}},
	}

	s := Summarize("p-1", analyses, now)
	assert.Equal(t, 2, s.PostCount)
	assert.InDelta(t, 7.0, s.AvgAuthenticity, 0.01)
	assert.Equal(t, "good", s.OverallQuality)
	assert.Equal(t, 1, s.AIGeneratedCount)
	assert.Equal(t, 1, s.RedFlagCount)
	assert.Equal(t, types.MethodAI, s.AnalysisMethod)
	assert.InDelta(t, 50.0, s.AIContentPercent(), 0.01)
}

func TestSummarize_FallbackOnlyRecordsKeywordMethod(t *testing.T) {
	now := time.Now()
	s := Summarize("p-1", []types.ContentAnalysis{
		{Authenticity: 4, Expertise: 4, Specificity: 4, Professionalism: 4},
	}, now)
	assert.Equal(t, types.MethodKeywords, s.AnalysisMethod)
	assert.Equal(t, "poor", s.OverallQuality)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize("p-1", nil, time.Now())
	assert.Equal(t, "unknown", s.OverallQuality)
	assert.Equal(t, 0, s.PostCount)
}

func TestSummarize_RedFlagCountCapped(t *testing.T) {
	var analyses []types.ContentAnalysis
	for i := 0; i < 4; i++ {
		analyses = append(analyses, types.ContentAnalysis{
			Authenticity: 5, Expertise: 5, Specificity: 5, Professionalism: 5,
			RedFlags: []string{"a", "b", "c", "d"},
		})
	}
	s := Summarize("p-1", analyses, time.Now())
	assert.Equal(t, types.MaxStoredRedFlags, s.RedFlagCount)
}
