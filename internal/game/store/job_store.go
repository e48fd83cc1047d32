package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lexiduel/vocab-services/internal/game/models"
)

// JobStore is the persistent delayed-task queue. Scheduled jobs outlive a
// hub restart, only the runner that claims a due job executes it.
type JobStore struct {
	db *pgxpool.Pool
}

func NewJobStore(db *pgxpool.Pool) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) Schedule(ctx context.Context, kind string, sessionID int64, runAt time.Time) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO scheduled_jobs (kind, session_id, run_at, created_at)
        VALUES ($1, $2, $3, now())
    `, kind, sessionID, runAt)
	if err != nil {
		return fmt.Errorf("failed to schedule %s job: %w", kind, err)
	}

	return nil
}

// ClaimDue removes and returns every job whose run_at has passed. The
// delete-returning makes the claim atomic across competing runners.
func (s *JobStore) ClaimDue(ctx context.Context, now time.Time) ([]*models.ScheduledJob, error) {
	rows, err := s.db.Query(ctx, `
        DELETE FROM scheduled_jobs
        WHERE run_at <= $1
        RETURNING id, kind, session_id, run_at, created_at
    `, now)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ScheduledJob
	for rows.Next() {
		j := &models.ScheduledJob{}
		if err := rows.Scan(&j.ID, &j.Kind, &j.SessionID, &j.RunAt, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read job rows: %w", err)
	}

	return jobs, nil
}
