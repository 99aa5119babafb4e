package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scorer/internal/db"
	"github.com/jonathan/prospect-scorer/internal/learning"
	"github.com/jonathan/prospect-scorer/internal/types"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Submit feedback on a prediction",
	Long:  "Submit binary, detailed, or outcome feedback on a scored prospect. The record is validated and queued for the next learning run.",
	RunE:  runFeedback,
}

var (
	fbUserID       string
	fbTeamID       string
	fbProspectID   string
	fbPredictionID string
	fbSessionID    string
	fbType         string
	fbRating       float64
	fbRelevant     string
	fbText         string
	fbFactors      []string
	fbDatabaseURL  string
)

func init() {
	feedbackCmd.Flags().StringVar(&fbUserID, "user", "", "Submitting user ID (required)")
	feedbackCmd.Flags().StringVar(&fbTeamID, "team", "", "Team ID for shared learning")
	feedbackCmd.Flags().StringVar(&fbProspectID, "prospect", "", "Prospect the feedback refers to")
	feedbackCmd.Flags().StringVar(&fbPredictionID, "prediction", "", "Prediction UUID the feedback refers to")
	feedbackCmd.Flags().StringVar(&fbSessionID, "session", "", "Scoring session the feedback refers to")
	feedbackCmd.Flags().StringVar(&fbType, "type", "binary", "Feedback type: binary, detailed, or outcome")
	feedbackCmd.Flags().Float64Var(&fbRating, "rating", 0, "Overall rating 0-10")
	feedbackCmd.Flags().StringVar(&fbRelevant, "relevant", "", "Whether the prospect was relevant: true or false")
	feedbackCmd.Flags().StringVar(&fbText, "text", "", "Free-text feedback")
	feedbackCmd.Flags().StringSliceVar(&fbFactors, "factor", nil, "Factor rating as name=value, repeatable")
	feedbackCmd.Flags().StringVar(&fbDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")

	rootCmd.AddCommand(feedbackCmd)
}

// ratingScaleScore maps the engine's [-5, 5] final score onto the 0-10
// scale ratings and adaptation use.
func ratingScaleScore(p *types.Prediction) float64 {
	return types.Clamp(p.Scores.FinalScore+5, 0, 10)
}

func parseFactorRatings(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	ratings := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --factor %q, expected name=value", pair)
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --factor value in %q: %w", pair, err)
		}
		ratings[strings.TrimSpace(name)] = f
	}
	return ratings, nil
}

func runFeedback(_ *cobra.Command, _ []string) error {
	if fbUserID == "" {
		return fmt.Errorf("--user is required")
	}

	cfg, err := loadMergedConfig()
	if err != nil {
		return err
	}
	if fbTeamID == "" {
		fbTeamID = cfg.TeamID
	}

	fb := &types.Feedback{
		ID:          uuid.New(),
		UserID:      fbUserID,
		TeamID:      fbTeamID,
		ProspectID:  fbProspectID,
		SessionID:   fbSessionID,
		Type:        types.FeedbackType(fbType),
		Text:        fbText,
		Status:      types.FeedbackPending,
		SubmittedAt: time.Now(),
	}

	if fbPredictionID != "" {
		id, err := uuid.Parse(fbPredictionID)
		if err != nil {
			return fmt.Errorf("invalid --prediction: %w", err)
		}
		fb.PredictionID = id
	}
	if fbRating != 0 {
		fb.OverallRating = fbRating
	}
	if fbRelevant != "" {
		relevant, err := strconv.ParseBool(fbRelevant)
		if err != nil {
			return fmt.Errorf("invalid --relevant: %w", err)
		}
		fb.IsRelevant = &relevant
	}
	if fb.FactorRatings, err = parseFactorRatings(fbFactors); err != nil {
		return err
	}

	// Reject malformed feedback before it reaches the queue.
	if err := learning.NewValidator().ValidateItem(*fb); err != nil {
		return fmt.Errorf("feedback rejected: %w", err)
	}

	dbURL := fbDatabaseURL
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := db.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	// A linked prediction supplies the original score the accuracy
	// trend compares ratings against.
	if fb.PredictionID != uuid.Nil {
		pred, err := store.GetPrediction(ctx, fb.PredictionID)
		if err != nil {
			return err
		}
		if pred == nil {
			return fmt.Errorf("prediction %s not found", fb.PredictionID)
		}
		fb.OriginalScore = ratingScaleScore(pred)
		if fb.ProspectID == "" {
			fb.ProspectID = pred.ProspectID
		}
	}

	if err := store.SaveFeedback(ctx, fb); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Feedback %s queued for learning\n", fb.ID)
	return nil
}
