package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/prospect-scorer/internal/background"
	"github.com/jonathan/prospect-scorer/internal/scoring/content"
	"github.com/jonathan/prospect-scorer/internal/scoring/experience"
	"github.com/jonathan/prospect-scorer/internal/scoring/patterns"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// PatternStore supplies the learned trigger-condition patterns for a
// user.
type PatternStore interface {
	ActivePatterns(ctx context.Context, userID string) ([]types.DecisionPattern, error)
}

// DecisionStore supplies the recent labeled decisions scanned for
// similar prospects.
type DecisionStore interface {
	RecentDecisions(ctx context.Context, userID string, limit int) ([]types.LabeledDecision, error)
}

// PredictionStore persists predictions. Writes are fire-and-forget.
type PredictionStore interface {
	SavePrediction(ctx context.Context, p *types.Prediction) error
}

// Engine orchestrates one prediction: parallel sub-analyses, learned
// pattern evaluation, weighted combination, decision and reasoning.
// Predict never returns an error; every failure mode resolves to a
// documented fallback.
type Engine struct {
	content     *content.Analyzer
	experience  *experience.Analyzer
	patterns    PatternStore
	decisions   DecisionStore
	predictions PredictionStore
	runner      *background.Runner
	simCfg      patterns.Config
	cfg         Config
	log         *zap.Logger
	now         func() time.Time
}

// NewEngine wires the engine. Nil stores disable their signal: a nil
// pattern or decision store behaves like cold start, a nil prediction
// store skips persistence.
func NewEngine(
	contentAnalyzer *content.Analyzer,
	experienceAnalyzer *experience.Analyzer,
	patternStore PatternStore,
	decisionStore DecisionStore,
	predictionStore PredictionStore,
	runner *background.Runner,
	simCfg patterns.Config,
	cfg Config,
	log *zap.Logger,
) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		content:     contentAnalyzer,
		experience:  experienceAnalyzer,
		patterns:    patternStore,
		decisions:   decisionStore,
		predictions: predictionStore,
		runner:      runner,
		simCfg:      simCfg,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// analysisState carries the settled results of the parallel stage.
type analysisState struct {
	summary    types.ContentSummary
	assessment types.ExperienceAssessment
	similar    []types.SimilarProspect
}

// Predict scores one prospect. Any unrecovered panic in the flow
// resolves to the fallback prediction instead of propagating.
func (e *Engine) Predict(ctx context.Context, p *types.Prospect, userID string) (pred *types.Prediction) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("prediction pipeline panicked, returning fallback",
				zap.String("prospect_id", p.ID), zap.Any("panic", rec))
			pred = e.fallbackPrediction(p, userID)
		}
	}()

	state := e.analyze(ctx, p, userID)

	matches := e.matchPatterns(ctx, userID, state)

	breakdown, bootstrap := e.combine(state, matches)
	decision := types.DecisionSkip
	if breakdown.FinalScore >= 0 {
		decision = types.DecisionContact
	}
	confidence := breakdown.FinalScore * 20
	if confidence < 0 {
		confidence = -confidence
	}
	if confidence > 100 {
		confidence = 100
	}

	dataQuality := "trained"
	if bootstrap {
		dataQuality = "bootstrap"
	}

	pred = &types.Prediction{
		ID:         uuid.New(),
		ProspectID: p.ID,
		UserID:     userID,
		Decision:   decision,
		Confidence: confidence,
		Reasoning:  e.reason(state, matches, breakdown),
		Scores:     breakdown,
		Learning: types.LearningMetadata{
			PatternsUsed:          len(matches),
			SimilarProspectsFound: len(state.similar),
			DataQuality:           dataQuality,
			ModelVersion:          e.cfg.ModelVersion,
		},
		CreatedAt: e.now(),
	}

	e.persist(pred)
	return pred
}

// PredictBatch scores prospects with bounded fan-out. Always returns
// one prediction per prospect, in input order; a unit that exceeds the
// per-prospect timeout resolves through the fallback paths rather than
// failing the batch.
func (e *Engine) PredictBatch(ctx context.Context, prospects []*types.Prospect, userID string) []*types.Prediction {
	results := make([]*types.Prediction, len(prospects))

	width := e.cfg.BatchWidth
	if width <= 0 {
		width = 5
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(width)
	for i, p := range prospects {
		i, p := i, p
		g.Go(func() error {
			unitCtx := gctx
			var cancel context.CancelFunc
			if e.cfg.UnitTimeout > 0 {
				unitCtx, cancel = context.WithTimeout(gctx, e.cfg.UnitTimeout)
				defer cancel()
			}
			results[i] = e.Predict(unitCtx, p, userID)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// analyze runs content analysis, experience assessment and similar-
// prospect retrieval concurrently, settling all three before returning.
// A failure in any one resolves to its fallback without cancelling the
// others.
func (e *Engine) analyze(ctx context.Context, p *types.Prospect, userID string) analysisState {
	var state analysisState
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				e.log.Error("content analysis panicked, using keyword fallback",
					zap.String("prospect_id", p.ID), zap.Any("panic", rec))
				state.summary = content.Summarize(p.ID, fallbackAnalyses(p.RecentPosts, e.now()), e.now())
			}
		}()
		if e.content != nil {
			state.summary = e.content.Summary(ctx, p.RecentPosts, p.ID, false)
		} else {
			state.summary = content.Summarize(p.ID, fallbackAnalyses(p.RecentPosts, e.now()), e.now())
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				e.log.Error("experience analysis panicked, using keyword fallback",
					zap.String("prospect_id", p.ID), zap.Any("panic", rec))
				state.assessment = experience.FallbackAssess(p.Experience, nil, e.now())
			}
		}()
		if e.experience != nil {
			state.assessment = e.experience.Analyze(ctx, p.Experience)
		} else {
			state.assessment = experience.FallbackAssess(p.Experience, nil, e.now())
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				e.log.Error("similarity retrieval panicked, continuing without it",
					zap.String("prospect_id", p.ID), zap.Any("panic", rec))
				state.similar = nil
			}
		}()
		state.similar = e.findSimilar(ctx, p, userID)
	}()

	wg.Wait()
	return state
}

func fallbackAnalyses(posts []types.Post, now time.Time) []types.ContentAnalysis {
	cfg := content.DefaultConfig()
	out := make([]types.ContentAnalysis, len(posts))
	for i, post := range posts {
		r := content.FallbackAnalysis(post, &cfg)
		r.AnalyzedAt = now
		out[i] = r
	}
	return out
}

// findSimilar retrieves and ranks similar past decisions. A store error
// yields an empty list, never a failed prediction.
func (e *Engine) findSimilar(ctx context.Context, p *types.Prospect, userID string) []types.SimilarProspect {
	if e.decisions == nil {
		return nil
	}
	recent, err := e.decisions.RecentDecisions(ctx, userID, e.simCfg.RecentLimit)
	if err != nil {
		e.log.Warn("similar prospect lookup failed, continuing without it",
			zap.String("prospect_id", p.ID), zap.Error(err))
		return nil
	}
	profile := patterns.Profile{
		Industry: p.Industry,
		Role:     p.Role,
		Company:  p.Company,
	}
	return patterns.RankSimilar(profile, recent, &e.simCfg)
}

// matchPatterns evaluates learned patterns against the prospect's
// derived metrics. It runs after the parallel stage because the metrics
// depend on the settled content analysis.
func (e *Engine) matchPatterns(ctx context.Context, userID string, state analysisState) []types.PatternMatch {
	if e.patterns == nil {
		return nil
	}
	pats, err := e.patterns.ActivePatterns(ctx, userID)
	if err != nil {
		e.log.Warn("pattern lookup failed, continuing without patterns", zap.Error(err))
		return nil
	}
	metrics := patterns.Metrics{
		Authenticity:     state.summary.AvgAuthenticity,
		YearsExperience:  state.assessment.YearsInIndustry,
		RedFlagCount:     float64(state.summary.RedFlagCount),
		AIContentPercent: state.summary.AIContentPercent(),
	}
	matches, _ := patterns.Evaluate(pats, metrics)
	return matches
}

// combine produces the score breakdown. Reports whether the bootstrap
// weights were used.
func (e *Engine) combine(state analysisState, matches []types.PatternMatch) (types.ScoreBreakdown, bool) {
	var b types.ScoreBreakdown

	// Pattern component: summed signed contributions, scaled and clamped.
	raw := 0.0
	for _, m := range matches {
		raw += m.Contribution
	}
	b.PatternScore = types.Clamp(raw*e.cfg.PatternScale, -5, 5)

	// Similarity component: confidence-weighted signed average.
	if len(state.similar) > 0 {
		sum := 0.0
		for _, s := range state.similar {
			signed := s.Similarity * s.Confidence / 100
			if s.Decision != types.DecisionContact {
				signed = -signed
			}
			sum += signed
		}
		b.SimilarityScore = types.Clamp(sum/float64(len(state.similar))*e.cfg.SimilarityScale, -5, 5)
	}

	// Content component: mean quality centered on the midpoint.
	if state.summary.PostCount > 0 {
		overall := (state.summary.AvgAuthenticity + state.summary.AvgExpertise +
			state.summary.AvgSpecificity + state.summary.AvgProfessionalism) / 4
		b.ContentScore = types.Clamp(overall-e.cfg.ContentMidpoint, -5, 5)
	}

	// Experience component: capped years mapped into the signed band.
	years := state.assessment.YearsInIndustry
	if years > types.MaxCountedYears {
		years = types.MaxCountedYears
	}
	b.ExperienceScore = types.Clamp(years/types.MaxCountedYears*10-5, -5, 5)

	penalty := float64(state.summary.RedFlagCount) * e.cfg.RedFlagUnitPenalty
	if penalty > e.cfg.RedFlagPenaltyCap {
		penalty = e.cfg.RedFlagPenaltyCap
	}
	b.RedFlagPenalty = -penalty

	bootstrap := len(matches) == 0 && len(state.similar) == 0
	if bootstrap {
		b.FinalScore = e.cfg.BootstrapContent*b.ContentScore +
			e.cfg.BootstrapExperience*b.ExperienceScore +
			b.RedFlagPenalty
	} else {
		b.FinalScore = e.cfg.Trained.Pattern*b.PatternScore +
			e.cfg.Trained.Similarity*b.SimilarityScore +
			e.cfg.Trained.Content*b.ContentScore +
			e.cfg.Trained.Experience*b.ExperienceScore +
			b.RedFlagPenalty
	}
	return b, bootstrap
}

// fallbackPrediction is the documented last-resort result: skip with
// low confidence and an explicit insufficient-data signal.
func (e *Engine) fallbackPrediction(p *types.Prospect, userID string) *types.Prediction {
	pred := &types.Prediction{
		ID:         uuid.New(),
		ProspectID: p.ID,
		UserID:     userID,
		Decision:   types.DecisionSkip,
		Confidence: 20,
		Reasoning: types.Reasoning{
			ConcerningSignals: []string{"insufficient data"},
		},
		Learning: types.LearningMetadata{
			DataQuality:  "fallback",
			ModelVersion: e.cfg.ModelVersion,
		},
		CreatedAt: e.now(),
	}
	e.persist(pred)
	return pred
}

// persist stores the prediction off the request path. Failures are
// logged by the runner, never surfaced.
func (e *Engine) persist(pred *types.Prediction) {
	if e.predictions == nil {
		return
	}
	store := e.predictions
	if e.runner == nil {
		if err := store.SavePrediction(context.Background(), pred); err != nil {
			e.log.Warn("prediction persist failed", zap.String("prediction_id", pred.ID.String()), zap.Error(err))
		}
		return
	}
	e.runner.Go("persist-prediction", func(ctx context.Context) error {
		return store.SavePrediction(ctx, pred)
	})
}
