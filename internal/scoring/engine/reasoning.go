package engine

import (
	"fmt"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// reason derives the structured explanation from the settled component
// values. Every bullet corresponds to a specific threshold crossing.
func (e *Engine) reason(state analysisState, matches []types.PatternMatch, b types.ScoreBreakdown) types.Reasoning {
	var r types.Reasoning

	years := state.assessment.YearsInIndustry
	switch {
	case years >= 10:
		r.PrimaryFactors = append(r.PrimaryFactors,
			fmt.Sprintf("%.1f years of relevant experience (gold standard)", years))
	case years >= 5:
		r.PrimaryFactors = append(r.PrimaryFactors,
			fmt.Sprintf("%.1f years of relevant experience", years))
	case years < 3 && len(state.assessment.RoleBreakdown) > 0:
		r.ConcerningSignals = append(r.ConcerningSignals,
			fmt.Sprintf("under 3 years of relevant experience (%.1f)", years))
	}

	if state.summary.PostCount > 0 {
		overall := (state.summary.AvgAuthenticity + state.summary.AvgExpertise +
			state.summary.AvgSpecificity + state.summary.AvgProfessionalism) / 4
		if overall >= 7 {
			r.PrimaryFactors = append(r.PrimaryFactors, "strong content quality")
		} else if overall < 4.5 {
			r.ConcerningSignals = append(r.ConcerningSignals, "weak content quality")
		}
		r.ContentQuality = fmt.Sprintf("%s (%d posts, avg authenticity %.1f)",
			state.summary.OverallQuality, state.summary.PostCount, state.summary.AvgAuthenticity)
	}

	if state.summary.RedFlagCount > 0 {
		r.ConcerningSignals = append(r.ConcerningSignals,
			fmt.Sprintf("%d red flags in recent content", state.summary.RedFlagCount))
	}

	if b.PatternScore >= 1 {
		r.PrimaryFactors = append(r.PrimaryFactors,
			fmt.Sprintf("%d learned patterns favor contact", len(matches)))
	} else if b.PatternScore <= -1 {
		r.ConcerningSignals = append(r.ConcerningSignals,
			fmt.Sprintf("%d learned patterns favor skip", len(matches)))
	}

	if b.SimilarityScore >= 1 {
		r.PrimaryFactors = append(r.PrimaryFactors, "similar prospects were contacted")
	} else if b.SimilarityScore <= -1 {
		r.ConcerningSignals = append(r.ConcerningSignals, "similar prospects were skipped")
	}

	r.ExperienceMatch = fmt.Sprintf("%.1f relevant years via %s analysis",
		years, state.assessment.AnalysisMethod)

	for _, s := range state.similar {
		verdict := "skipped"
		if s.Decision == types.DecisionContact {
			verdict = "contacted"
		}
		r.SimilarProspects = append(r.SimilarProspects,
			fmt.Sprintf("%s (%.0f%% similar, %s)", s.ProspectID, s.Similarity*100, verdict))
	}

	return r
}
