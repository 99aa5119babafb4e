package learning

import (
	"math"
	"sort"
	"time"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// AccuracyTolerance is the rating-vs-original-score band counted as an
// accurate prediction in the trend series.
const AccuracyTolerance = 2.0

// samplesForFullWeightConfidence is the per-factor sample size at which
// an industry weight's confidence saturates.
const samplesForFullWeightConfidence = 20

// UpdateProfile merges a batch's extracted patterns into the profile.
// A nil profile starts a fresh one. Per-factor confidence is
// sample-size weighted and never decreases within one batch;
// LearningConfidence is totalFeedback/50 capped at 1.
func UpdateProfile(profile *types.PreferenceProfile, userID, teamID string, pats ExtractedPatterns, batch []types.Feedback, now time.Time) *types.PreferenceProfile {
	if profile == nil {
		profile = &types.PreferenceProfile{
			UserID:    userID,
			TeamID:    teamID,
			CreatedAt: now,
		}
	}
	if profile.IndustryWeights == nil {
		profile.IndustryWeights = make(map[string]types.IndustryWeight)
	}
	if profile.RolePreferences == nil {
		profile.RolePreferences = make(map[string]types.RolePreference)
	}
	if profile.ContentPreferences == nil {
		profile.ContentPreferences = make(map[string]types.ContentPreference)
	}

	for industry, agg := range pats.Industries {
		existing := profile.IndustryWeights[industry]
		// Rating 0-10 maps onto a signed weight in [-1, 1].
		newWeight := (agg.Mean() - 5) / 5
		totalSamples := existing.SampleSize + agg.Samples
		merged := newWeight
		if existing.SampleSize > 0 {
			merged = (existing.Weight*float64(existing.SampleSize) + newWeight*float64(agg.Samples)) / float64(totalSamples)
		}
		confidence := math.Min(1, float64(totalSamples)/samplesForFullWeightConfidence)
		if confidence < existing.Confidence {
			confidence = existing.Confidence
		}
		profile.IndustryWeights[industry] = types.IndustryWeight{
			Weight:     merged,
			Confidence: confidence,
			SampleSize: totalSamples,
		}
	}

	for role, agg := range pats.Roles {
		existing := profile.RolePreferences[role]
		total := existing.SampleCount + agg.Total
		positives := existing.PositiveRate*float64(existing.SampleCount) + float64(agg.Positive)
		profile.RolePreferences[role] = types.RolePreference{
			PositiveRate: positives / float64(total),
			SampleCount:  total,
		}
	}

	mergeContentPreferences(profile, batch)

	profile.SuccessPatterns = mergePatternList(pats.SuccessFactors, profile.SuccessPatterns)
	profile.FailurePatterns = mergePatternList(pats.FailureFactors, profile.FailurePatterns)

	for _, fb := range batch {
		if rating, ok := effectiveRating(fb); ok {
			profile.AverageRating = (profile.AverageRating*float64(profile.RatingSamples) + rating) / float64(profile.RatingSamples+1)
			profile.RatingSamples++
		}
	}

	profile.TotalFeedbackCount += len(batch)
	profile.LearningConfidence = math.Min(1, float64(profile.TotalFeedbackCount)/types.FeedbackForFullConfidence)
	profile.AccuracyTrend = appendAccuracy(profile.AccuracyTrend, batch, now)
	profile.UpdatedAt = now
	return profile
}

// mergeContentPreferences folds content-tagged factor ratings into the
// per-topic weights.
func mergeContentPreferences(profile *types.PreferenceProfile, batch []types.Feedback) {
	for _, fb := range batch {
		for factor, rating := range fb.FactorRatings {
			if len(factor) < 8 || factor[:8] != "content_" {
				continue
			}
			topic := factor[8:]
			existing := profile.ContentPreferences[topic]
			newWeight := (rating - 5) / 5
			total := existing.SampleSize + 1
			merged := (existing.Weight*float64(existing.SampleSize) + newWeight) / float64(total)
			profile.ContentPreferences[topic] = types.ContentPreference{Weight: merged, SampleSize: total}
		}
	}
}

// mergePatternList prefers the fresh batch's factors, backfills with
// the existing list, and caps at TopPatternCount.
func mergePatternList(fresh, existing []string) []string {
	seen := make(map[string]struct{}, len(fresh))
	out := make([]string, 0, TopPatternCount)
	for _, p := range fresh {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if len(out) == TopPatternCount {
			return out
		}
	}
	for _, p := range existing {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if len(out) == TopPatternCount {
			return out
		}
	}
	return out
}

// appendAccuracy folds the batch into the daily accuracy series: each
// day gets one point measuring how often the original score landed
// within the tolerance band of the user's rating. Points older than
// AccuracyTrendDays are dropped.
func appendAccuracy(trend []types.AccuracyPoint, batch []types.Feedback, now time.Time) []types.AccuracyPoint {
	type dayAgg struct {
		within  int
		samples int
	}
	days := make(map[time.Time]dayAgg)
	for _, fb := range batch {
		rating, ok := effectiveRating(fb)
		if !ok || fb.OriginalScore == 0 {
			continue
		}
		day := fb.SubmittedAt
		if day.IsZero() {
			day = now
		}
		day = day.UTC().Truncate(24 * time.Hour)
		agg := days[day]
		agg.samples++
		if math.Abs(rating-fb.OriginalScore) <= AccuracyTolerance {
			agg.within++
		}
		days[day] = agg
	}

	byDay := make(map[time.Time]types.AccuracyPoint, len(trend))
	for _, p := range trend {
		byDay[p.Date] = p
	}
	for day, agg := range days {
		existing := byDay[day]
		samples := existing.Samples + agg.samples
		within := existing.Accuracy*float64(existing.Samples) + float64(agg.within)
		byDay[day] = types.AccuracyPoint{
			Date:     day,
			Accuracy: within / float64(samples),
			Samples:  samples,
		}
	}

	cutoff := now.AddDate(0, 0, -types.AccuracyTrendDays)
	out := make([]types.AccuracyPoint, 0, len(byDay))
	for _, p := range byDay {
		if p.Date.Before(cutoff) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
