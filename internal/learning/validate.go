// Package learning batches feedback through the pipeline stages:
// validation, pattern extraction, preference-profile merge, and optional
// team aggregation. Runs for the same key are deduplicated so concurrent
// triggers converge on one execution.
package learning

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// FactorRatingTolerance is how far the mean factor rating may drift
// from the overall rating before the item is rejected as inconsistent.
const FactorRatingTolerance = 3.0

// RejectedItem pairs a rejected feedback record with the reason, for
// the run's audit trail.
type RejectedItem struct {
	Feedback types.Feedback
	Reason   string
}

// Validator applies the boundary struct checks plus the domain rules.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds the feedback validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidateBatch partitions a batch into valid and rejected items.
// Rejection is per item: a bad record never fails the batch.
func (v *Validator) ValidateBatch(batch []types.Feedback) (valid []types.Feedback, rejected []RejectedItem) {
	for _, fb := range batch {
		if err := v.ValidateItem(fb); err != nil {
			rejected = append(rejected, RejectedItem{Feedback: fb, Reason: err.Error()})
			continue
		}
		valid = append(valid, fb)
	}
	return valid, rejected
}

// ValidateItem checks one feedback record. Errors name the failed rule.
func (v *Validator) ValidateItem(fb types.Feedback) error {
	if err := v.validate.Struct(fb); err != nil {
		return fmt.Errorf("malformed feedback: %w", err)
	}

	if !fb.HasContextRef() {
		return fmt.Errorf("missing contextual reference: feedback needs a session, prospect, or prediction id")
	}

	if fb.ConfidenceScore < 0 || fb.ConfidenceScore > 1 {
		return fmt.Errorf("confidence score %.2f out of range [0,1]", fb.ConfidenceScore)
	}

	switch fb.Type {
	case types.FeedbackBinary:
		if fb.IsRelevant == nil {
			return fmt.Errorf("binary feedback requires a relevance indicator")
		}
	case types.FeedbackDetailed:
		if fb.OverallRating == 0 && len(fb.FactorRatings) == 0 {
			return fmt.Errorf("detailed feedback requires a rating or factor ratings")
		}
	case types.FeedbackOutcome:
		if fb.OverallRating == 0 && fb.IsRelevant == nil {
			return fmt.Errorf("outcome feedback requires a rating or relevance indicator")
		}
	case types.FeedbackImplicit:
		// Implicit records carry no explicit rating.
	}

	if fb.OverallRating > 0 && len(fb.FactorRatings) > 0 {
		sum := 0.0
		for _, r := range fb.FactorRatings {
			sum += r
		}
		mean := sum / float64(len(fb.FactorRatings))
		if math.Abs(mean-fb.OverallRating) > FactorRatingTolerance {
			return fmt.Errorf("factor ratings (mean %.1f) inconsistent with overall rating %.1f", mean, fb.OverallRating)
		}
	}

	return nil
}
