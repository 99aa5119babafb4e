package adaptation

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// ImplicitConfidenceThreshold is the aggregate confidence an implicit
// interaction must reach before it produces a preference update. One-off
// noisy interactions stay below it.
const ImplicitConfidenceThreshold = 0.5

// implicitDetector is one row of the fixed implicit-signal battery.
type implicitDetector struct {
	name       string
	value      float64 // signed
	confidence float64
	matches    func(types.ImplicitSignals) bool
}

var implicitDetectors = []implicitDetector{
	{"long_dwell", 1, 0.3, func(s types.ImplicitSignals) bool { return s.DwellSeconds >= 60 }},
	{"bounce", -1, 0.2, func(s types.ImplicitSignals) bool { return s.DwellSeconds > 0 && s.DwellSeconds < 10 }},
	{"deep_scroll", 0.5, 0.2, func(s types.ImplicitSignals) bool { return s.ScrollDepth >= 0.8 }},
	{"saved_or_contacted", 2, 0.6, func(s types.ImplicitSignals) bool {
		return hasAction(s, "saved") || hasAction(s, "contacted")
	}},
	{"dismissed", -2, 0.6, func(s types.ImplicitSignals) bool { return hasAction(s, "dismissed") }},
	{"revisited", 1, 0.4, func(s types.ImplicitSignals) bool { return s.Revisited }},
}

func hasAction(s types.ImplicitSignals, action string) bool {
	for _, a := range s.ActionsTaken {
		if a == action {
			return true
		}
	}
	return false
}

// ImplicitScore converts passive interaction data into a signed
// confidence-weighted score. The score is the confidence-weighted mean
// of matched detector values; the confidence is the summed detector
// confidence capped at 1.
func ImplicitScore(signals types.ImplicitSignals) (score, confidence float64) {
	weighted, confSum := 0.0, 0.0
	for _, d := range implicitDetectors {
		if !d.matches(signals) {
			continue
		}
		weighted += d.value * d.confidence
		confSum += d.confidence
	}
	if confSum == 0 {
		return 0, 0
	}
	score = weighted / confSum
	confidence = confSum
	if confidence > 1 {
		confidence = 1
	}
	return score, confidence
}

// FeedbackFromImplicit converts an implicit interaction into a feedback
// record for the learning pipeline, or reports false when the aggregate
// confidence is below the threshold and the interaction must be
// discarded.
func FeedbackFromImplicit(userID string, signals types.ImplicitSignals, now time.Time) (*types.Feedback, bool) {
	score, confidence := ImplicitScore(signals)
	if confidence <= ImplicitConfidenceThreshold {
		return nil, false
	}

	relevant := score > 0
	return &types.Feedback{
		ID:         uuid.New(),
		UserID:     userID,
		ProspectID: signals.ProspectID,
		Type:       types.FeedbackImplicit,
		IsRelevant: &relevant,
		// Signed [-2, 2] score mapped onto the 0-10 rating scale.
		OverallRating:   types.Clamp(5+score*2.5, 0, 10),
		Industry:        signals.Industry,
		Role:            signals.Role,
		ConfidenceScore: confidence,
		LearningWeight:  confidence,
		Status:          types.FeedbackPending,
		SubmittedAt:     now,
	}, true
}
