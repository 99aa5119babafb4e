// Package adaptation applies a user's learned preference profile to a
// raw score at request time: independent additive adjustments, weighted
// by learning confidence, clamped to a fixed band. Profiles are cached
// in a layered store for low latency.
package adaptation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/prospect-scorer/internal/cache"
	"github.com/jonathan/prospect-scorer/internal/types"
)

// MinLearningConfidence is the floor below which personalization never
// activates: the original score passes through unchanged.
const MinLearningConfidence = 0.1

// MaxAdjustment is the band the summed adjustment is clamped to.
const MaxAdjustment = 3.0

// ProfileStore loads preference profiles. Not found is (nil, nil).
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*types.PreferenceProfile, error)
}

// Factors are the scoring factors adaptation can adjust against.
type Factors struct {
	Industry      string   `json:"industry,omitempty"`
	Role          string   `json:"role,omitempty"`
	ContentTopics []string `json:"content_topics,omitempty"`
	// SignalText is the free text scanned for success/failure pattern
	// keyword matches, typically the prospect's headline and post text.
	SignalText string `json:"signal_text,omitempty"`
}

// Result is the adaptation outcome.
type Result struct {
	AdaptedScore float64  `json:"adapted_score"`
	Adjustment   float64  `json:"adjustment"`
	Reasons      []string `json:"reasons,omitempty"`
	Confidence   float64  `json:"confidence"` // the profile's learning confidence
}

// Config holds the per-factor scales and sample floors.
type Config struct {
	IndustryScale   float64       `json:"industry_scale"`
	RoleScale       float64       `json:"role_scale"`
	ContentScale    float64       `json:"content_scale"`
	PatternStep     float64       `json:"pattern_step"`
	MinIndustry     int           `json:"min_industry_samples"`
	MinRole         int           `json:"min_role_samples"`
	MinContent      int           `json:"min_content_samples"`
	ProfileLocalTTL time.Duration `json:"profile_local_ttl"`
}

// DefaultConfig returns the tuned adaptation configuration.
func DefaultConfig() Config {
	return Config{
		IndustryScale:   1.5,
		RoleScale:       1.5,
		ContentScale:    1.0,
		PatternStep:     0.5,
		MinIndustry:     3,
		MinRole:         3,
		MinContent:      2,
		ProfileLocalTTL: 5 * time.Minute,
	}
}

// Service adapts scores per user. Construct one per process and inject
// the store and cache so tests can use doubles.
type Service struct {
	profiles ProfileStore
	store    cache.Store
	cfg      Config
	log      *zap.Logger
}

// NewService builds the adaptation service. A nil cache store disables
// profile caching.
func NewService(profiles ProfileStore, store cache.Store, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{profiles: profiles, store: store, cfg: cfg, log: log}
}

func profileKey(userID string) string { return "profile:" + userID }

// Adapt adjusts originalScore by the user's learned preferences. With
// no profile or thin learning data the original score is returned
// unchanged with an explicit reason.
func (s *Service) Adapt(ctx context.Context, userID string, originalScore float64, factors Factors) Result {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		s.log.Warn("profile load failed, returning score unadapted",
			zap.String("user_id", userID), zap.Error(err))
		return Result{AdaptedScore: originalScore, Reasons: []string{"profile unavailable"}}
	}
	if profile == nil || profile.LearningConfidence < MinLearningConfidence {
		confidence := 0.0
		if profile != nil {
			confidence = profile.LearningConfidence
		}
		return Result{
			AdaptedScore: originalScore,
			Reasons:      []string{"insufficient learning data"},
			Confidence:   confidence,
		}
	}

	adjustment, reasons := s.computeAdjustment(profile, factors)
	adjustment *= profile.LearningConfidence
	adjustment = types.Clamp(adjustment, -MaxAdjustment, MaxAdjustment)

	return Result{
		AdaptedScore: types.Clamp(originalScore+adjustment, 0, 10),
		Adjustment:   adjustment,
		Reasons:      reasons,
		Confidence:   profile.LearningConfidence,
	}
}

// computeAdjustment sums the independent per-factor adjustments. Each
// factor needs its minimum sample size before contributing.
func (s *Service) computeAdjustment(profile *types.PreferenceProfile, factors Factors) (float64, []string) {
	total := 0.0
	var reasons []string

	if factors.Industry != "" {
		if w, ok := profile.IndustryWeights[strings.ToLower(factors.Industry)]; ok && w.SampleSize >= s.cfg.MinIndustry {
			adj := w.Weight * s.cfg.IndustryScale
			total += adj
			reasons = append(reasons, fmt.Sprintf("industry %q preference %+.2f (%d samples)",
				factors.Industry, adj, w.SampleSize))
		}
	}

	if factors.Role != "" {
		if r, ok := profile.RolePreferences[strings.ToLower(factors.Role)]; ok && r.SampleCount >= s.cfg.MinRole {
			adj := (r.PositiveRate - 0.5) * 2 * s.cfg.RoleScale
			total += adj
			reasons = append(reasons, fmt.Sprintf("role %q preference %+.2f (%d samples)",
				factors.Role, adj, r.SampleCount))
		}
	}

	matched, sum := 0, 0.0
	for _, topic := range factors.ContentTopics {
		if p, ok := profile.ContentPreferences[strings.ToLower(topic)]; ok && p.SampleSize >= s.cfg.MinContent {
			matched++
			sum += p.Weight
		}
	}
	if matched > 0 {
		adj := sum / float64(matched) * s.cfg.ContentScale
		total += adj
		reasons = append(reasons, fmt.Sprintf("content topics %+.2f (%d matched)", adj, matched))
	}

	if factors.SignalText != "" {
		lower := strings.ToLower(factors.SignalText)
		for _, pat := range profile.SuccessPatterns {
			if strings.Contains(lower, strings.ReplaceAll(pat, "_", " ")) {
				total += s.cfg.PatternStep
				reasons = append(reasons, fmt.Sprintf("matches success pattern %q", pat))
			}
		}
		for _, pat := range profile.FailurePatterns {
			if strings.Contains(lower, strings.ReplaceAll(pat, "_", " ")) {
				total -= s.cfg.PatternStep
				reasons = append(reasons, fmt.Sprintf("matches failure pattern %q", pat))
			}
		}
	}

	return total, reasons
}

// loadProfile reads through the cache. Cache failures fall through to
// the store.
func (s *Service) loadProfile(ctx context.Context, userID string) (*types.PreferenceProfile, error) {
	if s.store != nil {
		var cached types.PreferenceProfile
		if ok, _ := cache.GetJSON(ctx, s.store, profileKey(userID), &cached); ok {
			return &cached, nil
		}
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil || profile == nil {
		return profile, err
	}
	if s.store != nil {
		if err := cache.SetJSON(ctx, s.store, profileKey(userID), profile, s.cfg.ProfileLocalTTL); err != nil {
			s.log.Warn("profile cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return profile, nil
}

// InvalidateProfile drops the cached profile after a preference update.
func (s *Service) InvalidateProfile(ctx context.Context, userID string) {
	if s.store == nil {
		return
	}
	if err := s.store.Invalidate(ctx, profileKey(userID), "profile-updated"); err != nil {
		s.log.Warn("profile cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
