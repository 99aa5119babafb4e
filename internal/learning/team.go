package learning

import (
	"sort"
	"time"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// Team aggregation thresholds.
const (
	// MinTeamMembers is the member count below which no team profile is
	// produced at all.
	MinTeamMembers = 2
	// ConsensusAgreement is the minimum share of members that must have
	// enough samples on a factor before it becomes a team pattern.
	ConsensusAgreement = 0.5
	// MinMemberSamples is the per-member sample floor for a factor to
	// count toward consensus.
	MinMemberSamples = 3
	// OutlierDeviation flags members whose average rating strays this
	// far from the team average.
	OutlierDeviation = 2.5
	// diverseVariance is the member-weight variance above which a factor
	// is recorded as a diverse perspective instead of a consensus.
	diverseVariance = 0.15
)

// AggregateTeam merges member preference profiles into a team profile.
// Returns nil when fewer than MinTeamMembers members exist. Factors
// where members legitimately disagree are kept as diverse perspectives,
// not averaged away.
func AggregateTeam(teamID string, members []*types.PreferenceProfile, now time.Time) *types.TeamProfile {
	if len(members) < MinTeamMembers {
		return nil
	}

	team := &types.TeamProfile{
		TeamID:         teamID,
		MemberCount:    len(members),
		ExpertiseAreas: make(map[string]string),
		UpdatedAt:      now,
	}

	factors := make(map[string]struct{})
	for _, m := range members {
		for industry := range m.IndustryWeights {
			factors[industry] = struct{}{}
		}
	}
	ordered := make([]string, 0, len(factors))
	for f := range factors {
		ordered = append(ordered, f)
	}
	sort.Strings(ordered)

	for _, factor := range ordered {
		weights := make(map[string]float64)
		for _, m := range members {
			w, ok := m.IndustryWeights[factor]
			if !ok || w.SampleSize < MinMemberSamples {
				continue
			}
			weights[m.UserID] = w.Weight
		}
		agreement := float64(len(weights)) / float64(len(members))
		if agreement < ConsensusAgreement {
			continue
		}

		mean, variance := meanVariance(weights)
		if variance > diverseVariance {
			team.DiversePerspectives = append(team.DiversePerspectives, types.DiversePerspective{
				Factor:        factor,
				Variance:      variance,
				MemberWeights: weights,
			})
			continue
		}
		team.ConsensusPatterns = append(team.ConsensusPatterns, types.ConsensusPattern{
			Factor:    factor,
			Weight:    mean,
			Agreement: agreement,
			Members:   len(weights),
		})
	}

	team.OutlierMembers = findOutliers(members)
	fillExpertise(team, members)
	team.AverageAccuracy = averageAccuracy(members)
	return team
}

func meanVariance(weights map[string]float64) (mean, variance float64) {
	if len(weights) == 0 {
		return 0, 0
	}
	for _, w := range weights {
		mean += w
	}
	mean /= float64(len(weights))
	for _, w := range weights {
		d := w - mean
		variance += d * d
	}
	variance /= float64(len(weights))
	return mean, variance
}

// findOutliers flags members whose average rating deviates more than
// OutlierDeviation from the team mean.
func findOutliers(members []*types.PreferenceProfile) []string {
	teamSum, rated := 0.0, 0
	for _, m := range members {
		if m.RatingSamples > 0 {
			teamSum += m.AverageRating
			rated++
		}
	}
	if rated < MinTeamMembers {
		return nil
	}
	teamAvg := teamSum / float64(rated)

	var outliers []string
	for _, m := range members {
		if m.RatingSamples == 0 {
			continue
		}
		dev := m.AverageRating - teamAvg
		if dev < 0 {
			dev = -dev
		}
		if dev > OutlierDeviation {
			outliers = append(outliers, m.UserID)
		}
	}
	sort.Strings(outliers)
	return outliers
}

// fillExpertise assigns each member their highest-confidence factor.
func fillExpertise(team *types.TeamProfile, members []*types.PreferenceProfile) {
	for _, m := range members {
		best, bestConf := "", 0.0
		factors := make([]string, 0, len(m.IndustryWeights))
		for f := range m.IndustryWeights {
			factors = append(factors, f)
		}
		sort.Strings(factors)
		for _, f := range factors {
			if w := m.IndustryWeights[f]; w.Confidence > bestConf {
				best, bestConf = f, w.Confidence
			}
		}
		if best != "" {
			team.ExpertiseAreas[m.UserID] = best
		}
	}
}

// averageAccuracy means each member's most recent accuracy point.
func averageAccuracy(members []*types.PreferenceProfile) float64 {
	sum, counted := 0.0, 0
	for _, m := range members {
		if len(m.AccuracyTrend) == 0 {
			continue
		}
		sum += m.AccuracyTrend[len(m.AccuracyTrend)-1].Accuracy
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}
