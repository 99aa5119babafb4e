// Package engine composes keyword, content, experience, pattern and
// similarity signals into a single contact/skip prediction with
// confidence and structured reasoning.
package engine

import "time"

// Weights are the trained-mode component weights. They apply only when
// at least one pattern matched or one similar prospect was found.
type Weights struct {
	Pattern    float64 `json:"pattern"`
	Similarity float64 `json:"similarity"`
	Content    float64 `json:"content"`
	Experience float64 `json:"experience"`
}

// Config holds the combination weights, bootstrap weights, scaling, and
// batch fan-out settings.
type Config struct {
	Trained Weights `json:"trained"`

	// Bootstrap weights apply on cold start, when neither patterns nor
	// similar prospects exist. Pattern and similarity weights are
	// discarded entirely so a zero training signal cannot drag every
	// cold-start prospect to skip.
	BootstrapContent    float64 `json:"bootstrap_content"`
	BootstrapExperience float64 `json:"bootstrap_experience"`

	// Component scaling into the signed [-5, 5] band.
	PatternScale    float64 `json:"pattern_scale"`
	SimilarityScale float64 `json:"similarity_scale"`
	ContentMidpoint float64 `json:"content_midpoint"`

	// Red-flag penalty: per-flag unit, capped.
	RedFlagUnitPenalty float64 `json:"red_flag_unit_penalty"`
	RedFlagPenaltyCap  float64 `json:"red_flag_penalty_cap"`

	// Batch prediction fan-out.
	BatchWidth  int           `json:"batch_width"`
	UnitTimeout time.Duration `json:"unit_timeout"`

	ModelVersion string `json:"model_version"`
}

// DefaultConfig returns the tuned engine configuration.
func DefaultConfig() Config {
	return Config{
		Trained: Weights{
			Pattern:    0.25,
			Similarity: 0.20,
			Content:    0.25,
			Experience: 0.30,
		},
		BootstrapContent:    0.40,
		BootstrapExperience: 0.60,
		PatternScale:        2.0,
		SimilarityScale:     5.0,
		ContentMidpoint:     5.5,
		RedFlagUnitPenalty:  1.0,
		RedFlagPenaltyCap:   3.0,
		BatchWidth:          5,
		UnitTimeout:         20 * time.Second,
		ModelVersion:        "graham-v2",
	}
}
