package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scorer/internal/adaptation"
	"github.com/jonathan/prospect-scorer/internal/background"
	"github.com/jonathan/prospect-scorer/internal/cache"
	"github.com/jonathan/prospect-scorer/internal/db"
	"github.com/jonathan/prospect-scorer/internal/llm"
	"github.com/jonathan/prospect-scorer/internal/observability"
	"github.com/jonathan/prospect-scorer/internal/ratelimit"
	"github.com/jonathan/prospect-scorer/internal/scoring/content"
	"github.com/jonathan/prospect-scorer/internal/scoring/engine"
	"github.com/jonathan/prospect-scorer/internal/scoring/experience"
	"github.com/jonathan/prospect-scorer/internal/scoring/keyword"
	"github.com/jonathan/prospect-scorer/internal/scoring/patterns"
	"github.com/jonathan/prospect-scorer/internal/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score prospects from a JSON file",
	Long:  "Score one or more prospects from a JSON file (a single prospect object or an array). Results are printed as JSON and persisted when a database is configured.",
	RunE:  runScore,
}

var (
	scoreInputFile    string
	scoreUserID       string
	scoreAPIKey       string
	scoreDatabaseURL  string
	scoreKeywordsOnly bool
	scoreForceRefresh bool
	scoreAdapt        bool
	scoreVerbose      bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreInputFile, "in", "i", "", "Path to prospect JSON file (required)")
	scoreCmd.Flags().StringVar(&scoreUserID, "user", "", "Acting user ID")
	scoreCmd.Flags().StringVar(&scoreAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	scoreCmd.Flags().StringVar(&scoreDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	scoreCmd.Flags().BoolVar(&scoreKeywordsOnly, "keywords-only", false, "Offline rule-based scoring, no AI or database")
	scoreCmd.Flags().BoolVar(&scoreForceRefresh, "force-refresh", false, "Bypass the analysis cache")
	scoreCmd.Flags().BoolVar(&scoreAdapt, "adapt", false, "Apply the user's learned preference profile to the score")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print formatted result boxes")

	rootCmd.AddCommand(scoreCmd)
}

// loadProspects reads either a single prospect object or an array.
func loadProspects(path string) ([]*types.Prospect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prospect file: %w", err)
	}

	var batch []*types.Prospect
	if err := json.Unmarshal(data, &batch); err == nil {
		return batch, nil
	}

	var single types.Prospect
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("failed to parse prospect JSON: %w", err)
	}
	return []*types.Prospect{&single}, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}

func runScore(_ *cobra.Command, _ []string) error {
	if scoreInputFile == "" {
		return fmt.Errorf("--in is required")
	}

	cfg, err := loadMergedConfig()
	if err != nil {
		return err
	}
	if scoreUserID == "" {
		scoreUserID = cfg.UserID
	}

	prospects, err := loadProspects(scoreInputFile)
	if err != nil {
		return err
	}
	if len(prospects) == 0 {
		return fmt.Errorf("no prospects in input file")
	}

	// Offline mode: deterministic keyword scoring only.
	if scoreKeywordsOnly {
		kwCfg := keyword.DefaultConfig()
		now := time.Now()
		results := make([]keyword.Result, len(prospects))
		for i, p := range prospects {
			results[i] = keyword.Score(p, &kwCfg, now)
		}
		return printJSON(results)
	}

	apiKey := scoreAPIKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY, use --api-key, or pass --keywords-only)")
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	client, err := llm.NewClient(ctx, nil, apiKey, log)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	// Optional database: without one, scoring runs cold-start and
	// predictions are not persisted.
	var store *db.Store
	dbURL := scoreDatabaseURL
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL != "" {
		store, err = db.Connect(ctx, dbURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer store.Close()
	}

	limiter := ratelimit.New()
	analysisCache := cache.NewLayered(cache.NewMemory(), nil, 5*time.Minute, time.Hour, log)

	contentCfg := content.DefaultConfig()
	contentCfg.Provider = cfg.Provider
	contentAnalyzer := content.NewAnalyzer(client, analysisCache, contentCfg, log)
	experienceAnalyzer := experience.NewAnalyzer(client, experience.DefaultConfig(), log)

	runner := background.NewRunner(log, 30*time.Second)
	defer runner.Wait()

	engCfg := engine.DefaultConfig()
	engCfg.BatchWidth = cfg.BatchWidth

	var eng *engine.Engine
	if store != nil {
		eng = engine.NewEngine(contentAnalyzer, experienceAnalyzer, store, store, store, runner, patterns.DefaultConfig(), engCfg, log)
	} else {
		eng = engine.NewEngine(contentAnalyzer, experienceAnalyzer, nil, nil, nil, runner, patterns.DefaultConfig(), engCfg, log)
	}

	var adapter *adaptation.Service
	if scoreAdapt && store != nil && scoreUserID != "" {
		adapter = adaptation.NewService(store, analysisCache, adaptation.DefaultConfig(), log)
	}

	printer := observability.NewPrinter(os.Stderr)

	// The limiter guards the expensive AI path per batch invocation.
	allowed := prospects[:0]
	for _, p := range prospects {
		res := limiter.Check(scoreUserID, "score", cfg.RateLimit, cfg.RateWindowMin)
		if !res.Allowed {
			fmt.Fprintf(os.Stderr, "Rate limit reached, skipping %s (resets %s)\n",
				p.ID, res.ResetTime.Format(time.RFC3339))
			continue
		}
		allowed = append(allowed, p)
	}

	predictions := eng.PredictBatch(ctx, allowed, scoreUserID)

	type scored struct {
		Prediction *types.Prediction  `json:"prediction"`
		Adapted    *adaptation.Result `json:"adapted,omitempty"`
	}
	results := make([]scored, 0, len(predictions))
	for i, pred := range predictions {
		row := scored{Prediction: pred}
		if adapter != nil {
			p := allowed[i]
			// Engine scores land in [-5, 5]; adaptation works on 0-10.
			res := adapter.Adapt(ctx, scoreUserID, ratingScaleScore(pred), adaptation.Factors{
				Industry:   p.Industry,
				Role:       p.Role,
				SignalText: p.Headline,
			})
			row.Adapted = &res
			if scoreVerbose {
				printer.PrintAdaptation(ratingScaleScore(pred), res)
			}
		}
		if scoreVerbose {
			printer.PrintPrediction(pred)
		}
		results = append(results, row)
	}

	return printJSON(results)
}
