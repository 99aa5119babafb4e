// Package patterns matches prospects against learned trigger-condition
// patterns and retrieves similar past decisions, producing the two
// training-data signals the scoring engine combines.
package patterns

import (
	"sort"
	"strings"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// Profile is the comparable view of a prospect used for similarity.
// Empty strings and zero years mean "no data", which excludes the factor
// from the weighted average rather than scoring it zero.
type Profile struct {
	Industry        string
	Role            string
	Company         string
	YearsExperience float64
	ContentTopics   []string
}

// Weights holds the per-factor similarity weights.
type Weights struct {
	Industry   float64 `json:"industry"`
	Role       float64 `json:"role"`
	Company    float64 `json:"company"`
	Experience float64 `json:"experience"`
	Content    float64 `json:"content"`
}

// Config controls similarity retrieval.
type Config struct {
	Weights Weights `json:"weights"`

	// Threshold is the minimum similarity for a past decision to count.
	Threshold float64 `json:"threshold"`
	// RecentLimit bounds how many recent decisions are scanned.
	RecentLimit int `json:"recent_limit"`
	// TopK bounds how many similar prospects are returned.
	TopK int `json:"top_k"`
	// ExperienceSpreadYears is the year gap at which experience
	// similarity reaches zero.
	ExperienceSpreadYears float64 `json:"experience_spread_years"`
	// FactorFloor is the per-factor similarity above which the factor is
	// reported as a matching factor.
	FactorFloor float64 `json:"factor_floor"`
}

// DefaultConfig returns the tuned retrieval configuration.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Industry:   0.25,
			Role:       0.25,
			Company:    0.15,
			Experience: 0.20,
			Content:    0.15,
		},
		Threshold:             0.6,
		RecentLimit:           100,
		TopK:                  5,
		ExperienceSpreadYears: 10,
		FactorFloor:           0.7,
	}
}

type factor struct {
	name   string
	weight float64
	score  float64
	ok     bool
}

// Similarity computes the weighted similarity of two profiles in [0,1].
// Factors where either side lacks data are excluded from the weighted
// average: missing data must not read as dissimilarity. Returns the
// score and the factor names that individually cleared the floor.
func Similarity(a, b Profile, cfg *Config) (float64, []string) {
	factors := []factor{
		stringFactor("industry", cfg.Weights.Industry, a.Industry, b.Industry),
		stringFactor("role", cfg.Weights.Role, a.Role, b.Role),
		stringFactor("company", cfg.Weights.Company, a.Company, b.Company),
	}

	if a.YearsExperience > 0 && b.YearsExperience > 0 {
		gap := a.YearsExperience - b.YearsExperience
		if gap < 0 {
			gap = -gap
		}
		score := 1 - gap/cfg.ExperienceSpreadYears
		factors = append(factors, factor{"experience", cfg.Weights.Experience, types.Clamp(score, 0, 1), true})
	}

	if len(a.ContentTopics) > 0 && len(b.ContentTopics) > 0 {
		factors = append(factors, factor{"content", cfg.Weights.Content, topicOverlap(a.ContentTopics, b.ContentTopics), true})
	}

	total, weightSum := 0.0, 0.0
	var matching []string
	for _, f := range factors {
		if !f.ok {
			continue
		}
		total += f.weight * f.score
		weightSum += f.weight
		if f.score >= cfg.FactorFloor {
			matching = append(matching, f.name)
		}
	}
	if weightSum == 0 {
		return 0, nil
	}
	return total / weightSum, matching
}

func stringFactor(name string, weight float64, a, b string) factor {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return factor{name: name, weight: weight}
	}
	return factor{name: name, weight: weight, score: StringSimilarity(a, b), ok: true}
}

// topicOverlap is the Jaccard index of the two lowercased topic sets.
func topicOverlap(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	inter := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// RankSimilar scores every labeled decision against the profile, keeps
// those above the threshold, and returns the top-K sorted descending.
func RankSimilar(profile Profile, decisions []types.LabeledDecision, cfg *Config) []types.SimilarProspect {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}

	var out []types.SimilarProspect
	for _, d := range decisions {
		sim, factors := Similarity(profile, Profile{
			Industry:        d.Industry,
			Role:            d.Role,
			Company:         d.Company,
			YearsExperience: d.YearsExperience,
			ContentTopics:   d.ContentTopics,
		}, cfg)
		if sim < cfg.Threshold {
			continue
		}
		out = append(out, types.SimilarProspect{
			ProspectID:      d.ProspectID,
			Name:            d.Name,
			Similarity:      sim,
			Decision:        d.Decision,
			Confidence:      d.Confidence,
			MatchingFactors: factors,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if cfg.TopK > 0 && len(out) > cfg.TopK {
		out = out[:cfg.TopK]
	}
	return out
}
