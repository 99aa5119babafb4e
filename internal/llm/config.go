// Package llm provides the LLM client abstraction used by every AI-assisted
// analyzer, with centralized model configuration, retry policy, and the
// quota/temporary/permanent error taxonomy that drives fallback selection.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model.
type ModelTier string

const (
	// TierLite is for simple tasks: classification, signal extraction.
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: content quality rubrics,
	// per-role relevance scoring.
	TierStandard ModelTier = "standard"
)

// Provider represents an LLM provider.
type Provider string

// Provider constants define supported LLM providers.
const (
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini Provider = "gemini"
)

// Config holds the model configuration for the application.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string

	// RequestTimeout bounds each individual provider call.
	RequestTimeout time.Duration
	// MaxRetries is the bounded retry count for temporary errors before the
	// caller falls back. Quota and permanent errors are never retried.
	MaxRetries int
	// RetryBaseDelay is the first backoff step; it doubles per attempt.
	RetryBaseDelay time.Duration
}

// DefaultConfig returns the default configuration (currently Gemini).
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		RequestTimeout: 30 * time.Second,
		MaxRetries:     2,
		RetryBaseDelay: 500 * time.Millisecond,
	}
}

// GetModel returns the model name for a given tier, falling back to any
// configured tier rather than failing.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}
