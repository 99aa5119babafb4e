package content

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// FallbackAnalysis scores a single post from keyword hits and length
// alone. Pure function of the post text and config: no I/O, same input
// always yields the same result (AnalyzedAt aside, which the caller
// stamps).
func FallbackAnalysis(post types.Post, cfg *Config) types.ContentAnalysis {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	lower := strings.ToLower(post.Content)
	wordCount := len(strings.Fields(lower))

	var flags []string
	flagHits := 0
	for _, term := range cfg.RedFlagTerms {
		if strings.Contains(lower, term) {
			flagHits++
			if len(flags) < MaxFallbackRedFlags {
				flags = append(flags, term)
			}
		}
	}
	proHits := 0
	for _, term := range cfg.ProfessionalTerms {
		if strings.Contains(lower, term) {
			proHits++
		}
	}

	lengthBonus := 0.0
	switch {
	case wordCount >= cfg.LongPostWords:
		lengthBonus = cfg.LongPostBonus
	case wordCount >= cfg.MediumPostWords:
		lengthBonus = cfg.MediumPostBonus
	}

	credit := float64(proHits) * cfg.ProfessionalCredit
	penalty := float64(flagHits) * cfg.RedFlagPenalty

	return types.ContentAnalysis{
		PostID:          post.ID,
		ContentHash:     Hash(post.Content),
		Authenticity:    types.Clamp(5+credit-penalty, 1, 10),
		Expertise:       types.Clamp(4+credit+lengthBonus-penalty, 1, 10),
		Specificity:     types.Clamp(3.5+credit+lengthBonus, 1, 10),
		Professionalism: types.Clamp(6+credit*0.5-penalty, 1, 10),
		RedFlags:        flags,
		Reasoning: fmt.Sprintf("keyword heuristic: %d professional terms, %d red flags, %d words",
			proHits, flagHits, wordCount),
	}
}

// NeutralAnalysis is the default result used when a single post's AI
// analysis fails in a way that must not disturb the rest of the batch.
func NeutralAnalysis(post types.Post, now time.Time) types.ContentAnalysis {
	return types.ContentAnalysis{
		PostID:          post.ID,
		ContentHash:     Hash(post.Content),
		Authenticity:    5,
		Expertise:       5,
		Specificity:     5,
		Professionalism: 5,
		Reasoning:       "analysis unavailable, neutral default",
		AnalyzedAt:      now,
	}
}
