package keyword

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// Components holds every sub-score that fed the final value.
type Components struct {
	Keyword        float64 `json:"keyword"`
	Experience     float64 `json:"experience"`
	Credibility    float64 `json:"credibility"`
	Engagement     float64 `json:"engagement"`
	Completeness   float64 `json:"completeness"`
	ContentMix     float64 `json:"content_mix"`
	RedFlagPenalty float64 `json:"red_flag_penalty"`
	YearsRelevant  float64 `json:"years_relevant"`
	ExperienceTier string  `json:"experience_tier"`
}

// Result is the full rule-scorer output.
type Result struct {
	FinalScore         float64    `json:"final_score"` // 0-10
	Components         Components `json:"components"`
	RedFlagScore       float64    `json:"red_flag_score"`
	RedFlags           []string   `json:"red_flags,omitempty"`
	CredibilitySignals []string   `json:"credibility_signals,omitempty"`
	Recommendations    []string   `json:"recommendations,omitempty"`
}

// Score evaluates a prospect against the rule configuration. Pure function:
// same prospect, config, and clock always produce the same result.
func Score(p *types.Prospect, cfg *Config, now time.Time) Result {
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}

	text := profileText(p)

	kwScore := keywordTiers(text, cfg)
	years := relevantYears(p.Experience, cfg, now)
	expScore, tier, bonus := experienceBucket(years, cfg)
	credScore, credSignals := credibility(p, cfg)
	flagScore, flags := redFlags(p, text, cfg, now)

	engagement := types.Clamp(float64(len(p.RecentPosts))*2, 0, 10)
	completeness := completeness(p)
	mix := contentMix(p.RecentPosts)

	penalty := math.Min(flagScore*cfg.FlagPenalty, cfg.FlagPenaltyCap)

	final := cfg.ExperienceWeight*expScore +
		cfg.CredibilityWeight*credScore +
		cfg.KeywordWeight*kwScore +
		cfg.EngagementWeight*engagement +
		cfg.CompletenessWeight*completeness +
		cfg.ContentMixWeight*mix
	final += bonus
	final -= penalty
	final = types.Clamp(final, 0, 10)

	// Red flags cap the achievable score in tiers. The cap is applied after
	// the additive combination so strong components cannot buy flags off.
	switch {
	case flagScore >= 3:
		final = math.Min(final, cfg.CapThreeFlags)
	case flagScore >= 2:
		final = math.Min(final, cfg.CapTwoFlags)
	case flagScore >= 1:
		final = math.Min(final, cfg.CapOneFlag)
	}

	res := Result{
		FinalScore: final,
		Components: Components{
			Keyword:        kwScore,
			Experience:     expScore,
			Credibility:    credScore,
			Engagement:     engagement,
			Completeness:   completeness,
			ContentMix:     mix,
			RedFlagPenalty: -penalty,
			YearsRelevant:  years,
			ExperienceTier: tier,
		},
		RedFlagScore:       flagScore,
		RedFlags:           flags,
		CredibilitySignals: credSignals,
	}
	res.Recommendations = recommendations(&res, cfg)
	return res
}

// profileText is the searchable text of a profile: headline plus post
// content. Experience text is scored separately by the experience tiers.
func profileText(p *types.Prospect) string {
	var b strings.Builder
	b.WriteString(p.Headline)
	for _, post := range p.RecentPosts {
		b.WriteString(" ")
		b.WriteString(post.Content)
	}
	return strings.ToLower(b.String())
}

// keywordTiers computes the frequency-weighted, log-dampened keyword score.
// Dampening keeps keyword stuffing from dominating: each term contributes
// weight * log(frequency+1), not weight * frequency.
func keywordTiers(lower string, cfg *Config) float64 {
	score := tierScore(lower, cfg.DirectTerms, cfg.DirectWeight) +
		tierScore(lower, cfg.RelatedTerms, cfg.RelatedWeight) +
		tierScore(lower, cfg.GenericTerms, cfg.GenericWeight) +
		tierScore(lower, cfg.PersonalTerms, cfg.PersonalWeight)
	return types.Clamp(score, 0, 10)
}

func tierScore(lower string, terms []string, weight float64) float64 {
	score := 0.0
	for _, term := range terms {
		if freq := strings.Count(lower, term); freq > 0 {
			score += weight * math.Log(float64(freq)+1)
		}
	}
	return score
}

// redFlags combines keyword hits (capped) with the structural patterns.
func redFlags(p *types.Prospect, lower string, cfg *Config, now time.Time) (float64, []string) {
	var labels []string

	hits := 0.0
	for _, term := range cfg.RedFlagTerms {
		if freq := strings.Count(lower, term); freq > 0 {
			hits += float64(freq)
			labels = append(labels, "red-flag keyword: "+term)
		}
	}
	score := math.Min(hits, cfg.MaxKeywordFlags)

	if isSerialFounder(p.Experience, cfg, now) {
		score += cfg.SerialFounderFlag
		labels = append(labels, "serial founder pattern")
	}
	if isRecentPivot(p.Experience, cfg, now) {
		score += cfg.RecentPivotFlag
		labels = append(labels, "recent career pivot")
	}

	return score, labels
}

func completeness(p *types.Prospect) float64 {
	fields := []bool{
		p.Name != "",
		p.Headline != "",
		p.Company != "",
		p.Location != "",
		p.Industry != "",
		p.Role != "",
		len(p.Experience) > 0,
		len(p.RecentPosts) > 0,
	}
	filled := 0
	for _, ok := range fields {
		if ok {
			filled++
		}
	}
	return float64(filled) / float64(len(fields)) * 10
}

// contentMix rewards variety in post length rather than a wall of identical
// short updates.
func contentMix(posts []types.Post) float64 {
	if len(posts) == 0 {
		return 0
	}
	var short, medium, long bool
	for _, post := range posts {
		switch n := len(post.Content); {
		case n > 800:
			long = true
		case n > 280:
			medium = true
		default:
			short = true
		}
	}
	kinds := 0
	for _, ok := range []bool{short, medium, long} {
		if ok {
			kinds++
		}
	}
	return float64(kinds) * 10 / 3
}

// recommendations derives the human-readable summary deterministically from
// the component values. No free text.
func recommendations(r *Result, cfg *Config) []string {
	var recs []string

	switch r.Components.ExperienceTier {
	case TierGold:
		recs = append(recs, fmt.Sprintf("Gold standard experience: %.1f weighted years in the industry", r.Components.YearsRelevant))
	case TierGood:
		recs = append(recs, fmt.Sprintf("Good experience depth: %.1f weighted years", r.Components.YearsRelevant))
	case TierMinimum:
		recs = append(recs, fmt.Sprintf("Minimum viable experience: %.1f weighted years", r.Components.YearsRelevant))
	default:
		recs = append(recs, fmt.Sprintf("Limited relevant experience: %.1f weighted years", r.Components.YearsRelevant))
	}

	for _, flag := range r.RedFlags {
		switch flag {
		case "serial founder pattern":
			recs = append(recs, "Serial founder pattern detected; verify operating depth before outreach")
		case "recent career pivot":
			recs = append(recs, "Recent career pivot into the industry; verify commitment")
		}
	}

	switch {
	case r.RedFlagScore >= 3:
		recs = append(recs, fmt.Sprintf("Multiple red flags (%.1f); score capped at %.1f", r.RedFlagScore, cfg.CapThreeFlags))
	case r.RedFlagScore >= 2:
		recs = append(recs, fmt.Sprintf("Red flags present (%.1f); score capped at %.1f", r.RedFlagScore, cfg.CapTwoFlags))
	case r.RedFlagScore >= 1:
		recs = append(recs, fmt.Sprintf("Red flag present (%.1f); score capped at %.1f", r.RedFlagScore, cfg.CapOneFlag))
	}

	if len(r.CredibilitySignals) >= 2 {
		recs = append(recs, "Strong credibility signals: "+strings.Join(r.CredibilitySignals, ", "))
	}

	return recs
}
