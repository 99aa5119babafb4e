package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/prospect-scorer/internal/adaptation"
	"github.com/jonathan/prospect-scorer/internal/cache"
	"github.com/jonathan/prospect-scorer/internal/db"
	"github.com/jonathan/prospect-scorer/internal/feedback"
	"github.com/jonathan/prospect-scorer/internal/learning"
	"github.com/jonathan/prospect-scorer/internal/llm"
	"github.com/jonathan/prospect-scorer/internal/observability"
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Run the learning pipeline over pending feedback",
	Long:  "Process a user's pending feedback batch: extract signals, validate, update the preference profile, and aggregate team insights when a team is set.",
	RunE:  runLearn,
}

var (
	learnUserID        string
	learnTeamID        string
	learnAPIKey        string
	learnDatabaseURL   string
	learnBatch         int
	learnHistory       int
	learnRetentionDays int
)

func init() {
	learnCmd.Flags().StringVar(&learnUserID, "user", "", "User whose feedback to process (required)")
	learnCmd.Flags().StringVar(&learnTeamID, "team", "", "Team to aggregate after the user update")
	learnCmd.Flags().StringVar(&learnAPIKey, "api-key", "", "Gemini API key for NLP signal extraction (optional)")
	learnCmd.Flags().StringVar(&learnDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	learnCmd.Flags().IntVar(&learnBatch, "batch", 0, "Max feedback records per run")
	learnCmd.Flags().IntVar(&learnHistory, "history", 0, "Print the last N runs instead of running the pipeline")
	learnCmd.Flags().IntVar(&learnRetentionDays, "retention-days", 0, "Prune run records older than N days after a successful run")

	rootCmd.AddCommand(learnCmd)
}

func runLearn(_ *cobra.Command, _ []string) error {
	if learnUserID == "" {
		return fmt.Errorf("--user is required")
	}

	cfg, err := loadMergedConfig()
	if err != nil {
		return err
	}
	if learnTeamID == "" {
		learnTeamID = cfg.TeamID
	}
	if learnBatch == 0 {
		learnBatch = cfg.FeedbackBatch
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	dbURL := learnDatabaseURL
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	store, err := db.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	if learnHistory > 0 {
		runs, err := store.RecentRuns(ctx, learnUserID, learnHistory)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stdout, "No learning runs recorded")
			return nil
		}
		printer := observability.NewPrinter(os.Stdout)
		for i := range runs {
			printer.PrintPipelineRun(&runs[i])
		}
		return nil
	}

	// NLP enrichment is optional: without an API key the pipeline still
	// runs on pattern-based extraction alone.
	var extractor *feedback.Extractor
	apiKey := learnAPIKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey != "" {
		client, err := llm.NewClient(ctx, nil, apiKey, log)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
		extractor = feedback.NewExtractor(client, log)
	} else {
		extractor = feedback.NewExtractor(nil, log)
	}

	pipeline := learning.NewPipeline(store, extractor, learning.Config{BatchLimit: learnBatch}, log)

	// Deploys drop the cached profile so the next score reads the
	// updated preferences.
	profileCache := cache.NewLayered(cache.NewMemory(), nil, 5*time.Minute, time.Hour, log)
	pipeline.SetProfileInvalidator(adaptation.NewService(store, profileCache, adaptation.DefaultConfig(), log))

	run, err := pipeline.Run(ctx, learnUserID, learnTeamID)
	if err != nil {
		return fmt.Errorf("learning run failed: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintPipelineRun(run)

	if run.RequiresManualReview {
		return fmt.Errorf("learning run requires manual review (run %s)", run.ID)
	}

	if learnRetentionDays > 0 {
		pruned, err := store.PruneOldRuns(ctx, time.Now().AddDate(0, 0, -learnRetentionDays))
		if err != nil {
			log.Warn("failed to prune old runs", zap.Error(err))
		} else if pruned > 0 {
			log.Info("pruned old pipeline runs", zap.Int64("runs", pruned))
		}
	}
	return nil
}
