package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/prospect-scorer/internal/feedback"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// Store is the persistence surface the pipeline needs. Get operations
// report "not found" as (nil, nil), distinct from an error.
type Store interface {
	PendingFeedback(ctx context.Context, userID string, limit int) ([]types.Feedback, error)
	MarkFeedbackProcessed(ctx context.Context, ids []uuid.UUID) error
	MarkFeedbackIncorporated(ctx context.Context, ids []uuid.UUID) error
	GetProfile(ctx context.Context, userID string) (*types.PreferenceProfile, error)
	SaveProfile(ctx context.Context, profile *types.PreferenceProfile) error
	SavePattern(ctx context.Context, userID string, p types.DecisionPattern) error
	SaveDecision(ctx context.Context, userID string, d types.LabeledDecision) error
	TeamMemberProfiles(ctx context.Context, teamID string) ([]*types.PreferenceProfile, error)
	SaveTeamProfile(ctx context.Context, team *types.TeamProfile) error
	SaveRun(ctx context.Context, run *types.PipelineRun) error
}

// ProfileInvalidator drops cached copies of a user's profile after a
// deploy, so the next scoring request reads the updated preferences.
type ProfileInvalidator interface {
	InvalidateProfile(ctx context.Context, userID string)
}

// Config bounds one pipeline run.
type Config struct {
	BatchLimit int `json:"batch_limit"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{BatchLimit: 100}
}

// Pipeline executes learning runs. Runs for the same (user, team) key
// are deduplicated: concurrent triggers share one execution and its
// result.
type Pipeline struct {
	store       Store
	extractor   *feedback.Extractor
	validator   *Validator
	invalidator ProfileInvalidator
	cfg         Config
	log         *zap.Logger
	inflight    singleflight.Group
	now         func() time.Time
}

// NewPipeline wires the pipeline. A nil extractor skips the NLP
// enrichment stage.
func NewPipeline(store Store, extractor *feedback.Extractor, cfg Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		store:     store,
		extractor: extractor,
		validator: NewValidator(),
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// SetProfileInvalidator registers the cache hook called after each
// profile deploy.
func (p *Pipeline) SetProfileInvalidator(inv ProfileInvalidator) {
	p.invalidator = inv
}

// Run executes one learning run for the user (and team, when set).
// Concurrent calls with the same key converge on a single execution.
// The returned run always records a terminal state; an unexpected
// failure marks it for manual review instead of propagating.
func (p *Pipeline) Run(ctx context.Context, userID, teamID string) (*types.PipelineRun, error) {
	key := userID + "|" + teamID
	result, err, shared := p.inflight.Do(key, func() (any, error) {
		return p.run(ctx, userID, teamID, key)
	})
	if shared {
		p.log.Debug("learning run deduplicated", zap.String("key", key))
	}
	if err != nil {
		return nil, err
	}
	return result.(*types.PipelineRun), nil
}

func (p *Pipeline) run(ctx context.Context, userID, teamID, key string) (*types.PipelineRun, error) {
	run := &types.PipelineRun{
		ID:        uuid.New(),
		UserID:    userID,
		TeamID:    teamID,
		BatchKey:  key,
		Stage:     types.StageCollecting,
		StartedAt: p.now(),
	}

	if err := p.execute(ctx, run, userID, teamID); err != nil {
		run.RequiresManualReview = true
		run.Errors = append(run.Errors, fmt.Sprintf("%s stage: %v", run.Stage, err))
		p.log.Error("learning run failed, flagged for manual review",
			zap.String("key", key), zap.String("stage", string(run.Stage)), zap.Error(err))
	} else {
		run.Stage = types.StageMonitoring
		run.IsSuccessful = true
	}

	completed := p.now()
	run.CompletedAt = &completed
	if err := p.store.SaveRun(ctx, run); err != nil {
		p.log.Warn("failed to persist pipeline run", zap.String("key", key), zap.Error(err))
	}
	return run, nil
}

// execute advances the run through collecting, processing, validating
// and deploying. The caller handles the terminal transition.
func (p *Pipeline) execute(ctx context.Context, run *types.PipelineRun, userID, teamID string) error {
	run.Stage = types.StageCollecting
	batch, err := p.store.PendingFeedback(ctx, userID, p.cfg.BatchLimit)
	if err != nil {
		return fmt.Errorf("failed to collect feedback: %w", err)
	}
	run.FeedbackCount = len(batch)
	if len(batch) == 0 {
		return nil
	}

	run.Stage = types.StageProcessing
	p.enrich(ctx, batch)

	run.Stage = types.StageValidating
	valid, rejected := p.validator.ValidateBatch(batch)
	run.ValidCount = len(valid)
	run.RejectedCount = len(rejected)
	for _, r := range rejected {
		p.log.Debug("feedback item rejected",
			zap.String("feedback_id", r.Feedback.ID.String()), zap.String("reason", r.Reason))
	}
	if len(valid) == 0 {
		// Rejected-only batches are still consumed, or they would be
		// re-collected and re-rejected on every run.
		if err := p.store.MarkFeedbackProcessed(ctx, feedbackIDs(batch)); err != nil {
			return fmt.Errorf("failed to mark feedback processed: %w", err)
		}
		return nil
	}

	run.Stage = types.StageDeploying
	pats := ExtractPatterns(valid)
	run.PatternsDiscovered = len(pats.SuccessFactors) + len(pats.FailureFactors)

	profile, err := p.store.GetProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	before := 0
	if profile != nil {
		before = len(profile.IndustryWeights) + len(profile.RolePreferences)
	}
	profile = UpdateProfile(profile, userID, teamID, pats, valid, p.now())
	run.PatternsUpdated = len(profile.IndustryWeights) + len(profile.RolePreferences) - before
	if run.PatternsUpdated < 0 {
		run.PatternsUpdated = 0
	}
	if err := p.store.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	if p.invalidator != nil {
		p.invalidator.InvalidateProfile(ctx, userID)
	}

	// Deploy the batch's training data: metric patterns for the
	// matcher and labeled decisions for similarity retrieval.
	for _, pat := range DerivePatterns(userID, pats, profile.LearningConfidence) {
		if err := p.store.SavePattern(ctx, userID, pat); err != nil {
			return fmt.Errorf("failed to save pattern %s: %w", pat.ID, err)
		}
	}
	for _, fb := range valid {
		d, ok := labeledDecision(fb, p.now())
		if !ok {
			continue
		}
		if err := p.store.SaveDecision(ctx, userID, d); err != nil {
			return fmt.Errorf("failed to save decision for %s: %w", d.ProspectID, err)
		}
	}

	if teamID != "" {
		if err := p.aggregateTeam(ctx, teamID); err != nil {
			return err
		}
	}

	if err := p.store.MarkFeedbackProcessed(ctx, feedbackIDs(batch)); err != nil {
		return fmt.Errorf("failed to mark feedback processed: %w", err)
	}
	if err := p.store.MarkFeedbackIncorporated(ctx, feedbackIDs(valid)); err != nil {
		return fmt.Errorf("failed to mark feedback incorporated: %w", err)
	}
	return nil
}

func feedbackIDs(batch []types.Feedback) []uuid.UUID {
	ids := make([]uuid.UUID, len(batch))
	for i, fb := range batch {
		ids[i] = fb.ID
	}
	return ids
}

// enrich runs the NLP extractor over free-text records, overriding the
// caller-supplied relevance flag with the text-derived verdict and
// merging correction flags.
func (p *Pipeline) enrich(ctx context.Context, batch []types.Feedback) {
	if p.extractor == nil {
		return
	}
	for i := range batch {
		if batch[i].Text == "" {
			continue
		}
		extracted := p.extractor.ExtractSignals(ctx, &batch[i])
		if extracted.IsRelevant != nil {
			batch[i].IsRelevant = extracted.IsRelevant
		}
		for _, flag := range extracted.CorrectionFlags {
			if !contains(batch[i].CorrectionFlags, flag) {
				batch[i].CorrectionFlags = append(batch[i].CorrectionFlags, flag)
			}
		}
	}
}

func (p *Pipeline) aggregateTeam(ctx context.Context, teamID string) error {
	members, err := p.store.TeamMemberProfiles(ctx, teamID)
	if err != nil {
		return fmt.Errorf("failed to load team members: %w", err)
	}
	team := AggregateTeam(teamID, members, p.now())
	if team == nil {
		return nil
	}
	if err := p.store.SaveTeamProfile(ctx, team); err != nil {
		return fmt.Errorf("failed to save team profile: %w", err)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
