package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/prospect-scorer/internal/cache"
	"github.com/jonathan/prospect-scorer/internal/llm"
	"github.com/jonathan/prospect-scorer/internal/prompts"
	"github.com/jonathan/prospect-scorer/internal/schemas"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// Hash returns the cache key component for a post's content: a sha256 of
// the whitespace-normalized, lowercased text. Identical content always
// maps to the same hash.
func Hash(content string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(content)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Analyzer scores posts via the AI rubric with content-hash caching.
// Analyze never returns an error: every failure mode resolves to the
// keyword fallback or a neutral result.
type Analyzer struct {
	client llm.Client
	store  cache.Store
	cfg    Config
	log    *zap.Logger
	now    func() time.Time
}

// NewAnalyzer builds an Analyzer. A nil client forces the keyword
// fallback for every miss; a nil store disables caching.
func NewAnalyzer(client llm.Client, store cache.Store, cfg Config, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{client: client, store: store, cfg: cfg, log: log, now: time.Now}
}

func (a *Analyzer) cacheKey(hash string) string {
	return "content:" + a.cfg.Provider + ":" + hash
}

func (a *Analyzer) summaryKey(prospectID string) string {
	return "summary:" + a.cfg.Provider + ":" + prospectID
}

// Summary returns the prospect's rollup content summary, served from the
// cache unless forceRefresh or the stored post set no longer matches.
// A miss recomputes from per-post analyses and writes back.
func (a *Analyzer) Summary(ctx context.Context, posts []types.Post, prospectID string, forceRefresh bool) types.ContentSummary {
	setHash := postSetHash(posts)
	if a.store != nil && !forceRefresh {
		var cached types.ContentSummary
		ok, err := cache.GetJSON(ctx, a.store, a.summaryKey(prospectID), &cached)
		if err != nil {
			a.log.Warn("summary cache read failed", zap.String("prospect_id", prospectID), zap.Error(err))
		}
		if ok && cached.ContentHash == setHash {
			return cached
		}
	}

	analyses := a.Analyze(ctx, posts, prospectID, forceRefresh)
	summary := Summarize(prospectID, analyses, a.now())
	summary.ContentHash = setHash

	// Fallback-only rollups are recomputed next call, not stored.
	if a.store != nil && summary.AnalysisMethod == types.MethodAI {
		if err := cache.SetJSON(ctx, a.store, a.summaryKey(prospectID), summary, a.cfg.CacheTTL); err != nil {
			a.log.Warn("summary cache write failed", zap.String("prospect_id", prospectID), zap.Error(err))
		}
	}
	return summary
}

// postSetHash fingerprints an ordered post set by hashing the per-post
// content hashes.
func postSetHash(posts []types.Post) string {
	hashes := make([]string, len(posts))
	for i, p := range posts {
		hashes[i] = Hash(p.Content)
	}
	return Hash(strings.Join(hashes, " "))
}

// Analyze returns one analysis per post, in input order. Cached entries
// are served unless forceRefresh; misses go to the AI in batches, with
// quota errors switching the remainder to the keyword fallback.
func (a *Analyzer) Analyze(ctx context.Context, posts []types.Post, prospectID string, forceRefresh bool) []types.ContentAnalysis {
	results := make([]types.ContentAnalysis, len(posts))
	var misses []int

	for i, post := range posts {
		hash := Hash(post.Content)
		if a.store != nil && !forceRefresh {
			var cached types.ContentAnalysis
			ok, err := cache.GetJSON(ctx, a.store, a.cacheKey(hash), &cached)
			if err != nil {
				a.log.Warn("content cache read failed", zap.String("prospect_id", prospectID), zap.Error(err))
			}
			if ok {
				cached.Cached = true
				results[i] = cached
				continue
			}
		}
		misses = append(misses, i)
	}

	if len(misses) == 0 {
		return results
	}

	if a.client == nil {
		for _, i := range misses {
			r := FallbackAnalysis(posts[i], &a.cfg)
			r.AnalyzedAt = a.now()
			results[i] = r
		}
		return results
	}

	batchSize := a.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}
	quotaHit := false
	for start := 0; start < len(misses); start += batchSize {
		end := start + batchSize
		if end > len(misses) {
			end = len(misses)
		}
		chunk := misses[start:end]

		if quotaHit {
			for _, i := range chunk {
				r := FallbackAnalysis(posts[i], &a.cfg)
				r.AnalyzedAt = a.now()
				results[i] = r
			}
			continue
		}

		analyses, err := a.analyzeBatch(ctx, posts, chunk)
		if err != nil {
			if llm.IsQuota(err) {
				a.log.Warn("content analysis quota exhausted, switching to keyword fallback",
					zap.String("prospect_id", prospectID), zap.Error(err))
				quotaHit = true
				for _, i := range chunk {
					r := FallbackAnalysis(posts[i], &a.cfg)
					r.AnalyzedAt = a.now()
					results[i] = r
				}
				continue
			}
			a.log.Warn("batch content analysis failed, retrying per post",
				zap.String("prospect_id", prospectID), zap.Int("posts", len(chunk)), zap.Error(err))
			for _, i := range chunk {
				results[i] = a.analyzeOne(ctx, posts[i])
			}
			continue
		}
		for pos, i := range chunk {
			results[i] = analyses[pos]
		}
	}

	if a.store != nil {
		for _, i := range misses {
			r := results[i]
			// Fallback and neutral results carry no provider and are
			// not cached; the next call re-scores them.
			if r.AIProvider == "" {
				continue
			}
			if err := cache.SetJSON(ctx, a.store, a.cacheKey(r.ContentHash), r, a.cfg.CacheTTL); err != nil {
				a.log.Warn("content cache write failed", zap.String("post_id", r.PostID), zap.Error(err))
			}
		}
	}
	return results
}

type batchItem struct {
	Index           int      `json:"index"`
	Authenticity    float64  `json:"authenticity"`
	Expertise       float64  `json:"expertise"`
	Specificity     float64  `json:"specificity"`
	Professionalism float64  `json:"professionalism"`
	RedFlags        []string `json:"red_flags"`
	Reasoning       string   `json:"reasoning"`
}

// analyzeBatch submits the chunk in one call. The returned slice is in
// chunk order; items the model omitted come back neutral.
func (a *Analyzer) analyzeBatch(ctx context.Context, posts []types.Post, chunk []int) ([]types.ContentAnalysis, error) {
	payload := make([]map[string]any, len(chunk))
	for pos, i := range chunk {
		payload[pos] = map[string]any{"index": pos, "content": posts[i].Content}
	}
	postsJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode posts: %w", err)
	}

	template := prompts.MustGet("scoring.json", "content-quality-batch")
	prompt := prompts.Format(template, map[string]string{"Posts": string(postsJSON)})

	resp, err := a.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.ContentAnalysisBatch, resp); err != nil {
		return nil, fmt.Errorf("content batch response rejected: %w", err)
	}
	var items []batchItem
	if err := json.Unmarshal([]byte(resp), &items); err != nil {
		return nil, fmt.Errorf("failed to parse content batch response: %w", err)
	}

	byIndex := make(map[int]batchItem, len(items))
	for _, item := range items {
		byIndex[item.Index] = item
	}

	now := a.now()
	out := make([]types.ContentAnalysis, len(chunk))
	for pos, i := range chunk {
		item, ok := byIndex[pos]
		if !ok {
			out[pos] = NeutralAnalysis(posts[i], now)
			continue
		}
		out[pos] = a.fromItem(posts[i], item, now)
	}
	return out, nil
}

// analyzeOne scores a single post. Any failure resolves to the neutral
// result so the rest of the batch is unaffected.
func (a *Analyzer) analyzeOne(ctx context.Context, post types.Post) types.ContentAnalysis {
	template := prompts.MustGet("scoring.json", "content-quality")
	prompt := prompts.Format(template, map[string]string{"Content": post.Content})

	resp, err := a.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		if llm.IsQuota(err) {
			r := FallbackAnalysis(post, &a.cfg)
			r.AnalyzedAt = a.now()
			return r
		}
		a.log.Warn("single post analysis failed, using neutral result",
			zap.String("post_id", post.ID), zap.Error(err))
		return NeutralAnalysis(post, a.now())
	}

	var item batchItem
	if err := json.Unmarshal([]byte(resp), &item); err != nil {
		a.log.Warn("unparseable single post response, using neutral result",
			zap.String("post_id", post.ID), zap.Error(err))
		return NeutralAnalysis(post, a.now())
	}
	return a.fromItem(post, item, a.now())
}

func (a *Analyzer) fromItem(post types.Post, item batchItem, now time.Time) types.ContentAnalysis {
	flags := item.RedFlags
	if len(flags) > types.MaxStoredRedFlags {
		flags = flags[:types.MaxStoredRedFlags]
	}
	return types.ContentAnalysis{
		PostID:          post.ID,
		ContentHash:     Hash(post.Content),
		Authenticity:    types.Clamp(item.Authenticity, 1, 10),
		Expertise:       types.Clamp(item.Expertise, 1, 10),
		Specificity:     types.Clamp(item.Specificity, 1, 10),
		Professionalism: types.Clamp(item.Professionalism, 1, 10),
		RedFlags:        flags,
		Reasoning:       item.Reasoning,
		AIProvider:      a.cfg.Provider,
		ModelVersion:    a.client.GetModel(llm.TierStandard),
		AnalyzedAt:      now,
	}
}

// Summarize rolls per-post analyses into the prospect-level summary.
func Summarize(prospectID string, analyses []types.ContentAnalysis, now time.Time) types.ContentSummary {
	s := types.ContentSummary{
		ProspectID:     prospectID,
		PostCount:      len(analyses),
		AnalysisMethod: types.MethodAI,
		UpdatedAt:      now,
	}
	if len(analyses) == 0 {
		s.OverallQuality = "unknown"
		return s
	}

	aiBacked := 0
	for _, a := range analyses {
		s.AvgAuthenticity += a.Authenticity
		s.AvgExpertise += a.Expertise
		s.AvgSpecificity += a.Specificity
		s.AvgProfessionalism += a.Professionalism
		s.RedFlagCount += len(a.RedFlags)
		if a.AIProvider != "" {
			aiBacked++
		}
		for _, flag := range a.RedFlags {
			lower := strings.ToLower(flag)
			if strings.Contains(lower, "ai-generated") || strings.Contains(lower, "ai generated") || strings.Contains(lower, "ai boilerplate") {
				s.AIGeneratedCount++
				break
			}
		}
	}
	n := float64(len(analyses))
	s.AvgAuthenticity /= n
	s.AvgExpertise /= n
	s.AvgSpecificity /= n
	s.AvgProfessionalism /= n
	if s.RedFlagCount > types.MaxStoredRedFlags {
		s.RedFlagCount = types.MaxStoredRedFlags
	}
	if aiBacked == 0 {
		s.AnalysisMethod = types.MethodKeywords
	}

	overall := (s.AvgAuthenticity + s.AvgExpertise + s.AvgSpecificity + s.AvgProfessionalism) / 4
	switch {
	case overall >= 7.5:
		s.OverallQuality = "excellent"
	case overall >= 6:
		s.OverallQuality = "good"
	case overall >= 4.5:
		s.OverallQuality = "moderate"
	default:
		s.OverallQuality = "poor"
	}
	return s
}
