package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// ActivePatterns returns the user's active decision patterns.
func (s *Store) ActivePatterns(ctx context.Context, userID string) ([]types.DecisionPattern, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT pattern FROM decision_patterns WHERE user_id = $1 AND active ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load patterns: %w", err)
	}
	defer rows.Close()

	var patterns []types.DecisionPattern
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		var p types.DecisionPattern
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

// SavePattern upserts a decision pattern by its ID.
func (s *Store) SavePattern(ctx context.Context, userID string, p types.DecisionPattern) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pattern: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO decision_patterns (id, user_id, pattern)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET pattern = $3, active = TRUE`,
		p.ID, userID, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to save pattern %s: %w", p.ID, err)
	}
	return nil
}

// RecentDecisions returns the user's most recent labeled decisions,
// newest first.
func (s *Store) RecentDecisions(ctx context.Context, userID string, limit int) ([]types.LabeledDecision, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT decision FROM labeled_decisions
		 WHERE user_id = $1 ORDER BY decided_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load decisions: %w", err)
	}
	defer rows.Close()

	var decisions []types.LabeledDecision
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		var d types.LabeledDecision
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("failed to decode decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// SaveDecision upserts a labeled decision. A later decision on the same
// prospect replaces the earlier one.
func (s *Store) SaveDecision(ctx context.Context, userID string, d types.LabeledDecision) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO labeled_decisions (user_id, prospect_id, decision, decided_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, prospect_id) DO UPDATE SET decision = $3, decided_at = $4`,
		userID, d.ProspectID, raw, d.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save decision for %s: %w", d.ProspectID, err)
	}
	return nil
}

// SavePrediction stores a prediction record. Predictions are immutable,
// so conflicts on the ID are ignored.
func (s *Store) SavePrediction(ctx context.Context, p *types.Prediction) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO predictions (id, user_id, prospect_id, prediction, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		p.ID, p.UserID, p.ProspectID, raw, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction %s: %w", p.ID, err)
	}
	return nil
}

// GetPrediction loads a stored prediction, or (nil, nil) when unknown.
func (s *Store) GetPrediction(ctx context.Context, id uuid.UUID) (*types.Prediction, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT prediction FROM predictions WHERE id = $1`, id,
	).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	var p types.Prediction
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}
	return &p, nil
}
