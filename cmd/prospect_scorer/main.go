// Package main provides the prospect scoring CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/prospect-scorer/internal/config"
	"github.com/jonathan/prospect-scorer/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "prospect_scorer",
	Short: "LinkedIn prospect scoring with feedback-driven learning",
	Long:  "Prospect Scorer evaluates LinkedIn prospects against business brokerage fit criteria, learns from user feedback, and personalizes scores per user.",
}

var (
	rootConfigPath string
	rootJSONLogs   bool
	rootDebug      bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().BoolVar(&rootJSONLogs, "json-logs", false, "Emit structured JSON logs")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
}

// loadMergedConfig loads the optional config file and merges it over the
// built-in defaults. Flag values are applied by each command afterwards.
func loadMergedConfig() (config.Config, error) {
	defaults := config.Config{
		Provider:      "gemini",
		BatchWidth:    5,
		FeedbackBatch: 100,
		RateLimit:     60,
		RateWindowMin: 10,
	}

	if rootConfigPath == "" {
		return defaults, nil
	}
	cfg, err := config.LoadConfig(rootConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg.MergeWithDefaults(defaults), nil
}

func newLogger() (*zap.Logger, error) {
	return logger.New(rootJSONLogs, rootDebug)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
