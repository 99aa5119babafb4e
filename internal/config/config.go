// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the CLI configuration loadable from a JSON file. All fields
// are optional; missing values use defaults or must be provided via CLI
// flags.
type Config struct {
	// Identity
	UserID string `json:"user_id,omitempty"` // Acting user for scoring and feedback
	TeamID string `json:"team_id,omitempty"` // Optional team for shared learning

	// Services
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	Provider    string `json:"provider,omitempty"`     // AI provider label used in cache keys
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Limits
	BatchWidth    int `json:"batch_width,omitempty"`    // Concurrent prospects per scoring batch
	FeedbackBatch int `json:"feedback_batch,omitempty"` // Feedback records per learning run
	RateLimit     int `json:"rate_limit,omitempty"`     // Requests per window per endpoint
	RateWindowMin int `json:"rate_window_min,omitempty"`

	// Behavior
	Verbose      bool `json:"verbose,omitempty"`       // Print formatted result boxes
	ForceRefresh bool `json:"force_refresh,omitempty"` // Bypass the analysis cache
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks numeric ranges. Required fields are enforced by CLI
// flag validation after merging.
func (c *Config) Validate() error {
	if c.BatchWidth < 0 {
		return fmt.Errorf("config error: 'batch_width' must be non-negative")
	}
	if c.FeedbackBatch < 0 {
		return fmt.Errorf("config error: 'feedback_batch' must be non-negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config error: 'rate_limit' must be non-negative")
	}
	if c.RateWindowMin < 0 {
		return fmt.Errorf("config error: 'rate_window_min' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. Config file values act as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.UserID == "" {
		result.UserID = defaults.UserID
	}
	if result.TeamID == "" {
		result.TeamID = defaults.TeamID
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.BatchWidth == 0 {
		result.BatchWidth = defaults.BatchWidth
	}
	if result.FeedbackBatch == 0 {
		result.FeedbackBatch = defaults.FeedbackBatch
	}
	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}
	if result.RateWindowMin == 0 {
		result.RateWindowMin = defaults.RateWindowMin
	}

	// Bool fields cannot distinguish unset from false, so CLI flags win.

	return result
}
