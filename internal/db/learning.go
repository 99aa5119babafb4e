package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/prospect-scorer/internal/types"
)

// SaveFeedback stores a new feedback record.
func (s *Store) SaveFeedback(ctx context.Context, fb *types.Feedback) error {
	raw, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO feedback (id, user_id, team_id, status, record, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		fb.ID, fb.UserID, fb.TeamID, fb.Status, raw, fb.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save feedback %s: %w", fb.ID, err)
	}
	return nil
}

// PendingFeedback returns up to limit unprocessed feedback records for a
// user, oldest first.
func (s *Store) PendingFeedback(ctx context.Context, userID string, limit int) ([]types.Feedback, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT record FROM feedback
		 WHERE user_id = $1 AND status = $2
		 ORDER BY submitted_at ASC LIMIT $3`,
		userID, types.FeedbackPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending feedback: %w", err)
	}
	defer rows.Close()

	var batch []types.Feedback
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		var fb types.Feedback
		if err := json.Unmarshal(raw, &fb); err != nil {
			return nil, fmt.Errorf("failed to decode feedback: %w", err)
		}
		batch = append(batch, fb)
	}
	return batch, rows.Err()
}

// MarkFeedbackProcessed transitions records to processed.
func (s *Store) MarkFeedbackProcessed(ctx context.Context, ids []uuid.UUID) error {
	return s.setFeedbackStatus(ctx, ids, types.FeedbackProcessed)
}

// MarkFeedbackIncorporated transitions records to incorporated once the
// profile update they fed has deployed.
func (s *Store) MarkFeedbackIncorporated(ctx context.Context, ids []uuid.UUID) error {
	return s.setFeedbackStatus(ctx, ids, types.FeedbackIncorporated)
}

func (s *Store) setFeedbackStatus(ctx context.Context, ids []uuid.UUID, status types.FeedbackStatus) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE feedback SET status = $1 WHERE id = ANY($2)`,
		status, ids,
	)
	if err != nil {
		return fmt.Errorf("failed to mark feedback %s: %w", status, err)
	}
	return nil
}

// GetProfile loads a user's preference profile, or (nil, nil) when the
// user has no profile yet.
func (s *Store) GetProfile(ctx context.Context, userID string) (*types.PreferenceProfile, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT profile FROM preference_profiles WHERE user_id = $1`,
		userID,
	).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile types.PreferenceProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile upserts a user's preference profile.
func (s *Store) SaveProfile(ctx context.Context, profile *types.PreferenceProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO preference_profiles (user_id, team_id, profile, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET team_id = $2, profile = $3, updated_at = $4`,
		profile.UserID, profile.TeamID, raw, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile for %s: %w", profile.UserID, err)
	}
	return nil
}

// TeamMemberProfiles returns the preference profiles of every member of
// a team.
func (s *Store) TeamMemberProfiles(ctx context.Context, teamID string) ([]*types.PreferenceProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT profile FROM preference_profiles WHERE team_id = $1`,
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load team profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*types.PreferenceProfile
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		var p types.PreferenceProfile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

// SaveTeamProfile upserts the aggregated team profile.
func (s *Store) SaveTeamProfile(ctx context.Context, team *types.TeamProfile) error {
	raw, err := json.Marshal(team)
	if err != nil {
		return fmt.Errorf("failed to marshal team profile: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO team_profiles (team_id, profile, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (team_id) DO UPDATE SET profile = $2, updated_at = $3`,
		team.TeamID, raw, team.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save team profile for %s: %w", team.TeamID, err)
	}
	return nil
}

// SaveRun stores the audit record of a pipeline run. Runs are written
// once at completion.
func (s *Store) SaveRun(ctx context.Context, run *types.PipelineRun) error {
	raw, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, user_id, team_id, run, started_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET run = $4`,
		run.ID, run.UserID, run.TeamID, raw, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns the latest pipeline runs for a user.
func (s *Store) RecentRuns(ctx context.Context, userID string, limit int) ([]types.PipelineRun, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run FROM pipeline_runs
		 WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []types.PipelineRun
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		var r types.PipelineRun
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("failed to decode run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PruneOldRuns deletes run records older than the retention window.
func (s *Store) PruneOldRuns(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM pipeline_runs WHERE started_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
