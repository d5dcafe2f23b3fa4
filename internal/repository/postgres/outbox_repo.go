package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratosmfi/backend/internal/jobs"
)

type OutboxRepository struct {
	pool *pgxpool.Pool
}

func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// ClaimPending grabs due pending jobs with SKIP LOCKED so concurrent
// workers never process the same job, bumping attempts as part of the
// claim.
func (r *OutboxRepository) ClaimPending(ctx context.Context, limit int32) ([]jobs.OutboxJob, error) {
	if limit <= 0 {
		limit = 10
	}
	q := `
UPDATE outbox_jobs
SET attempts = attempts + 1
WHERE id IN (
  SELECT id FROM outbox_jobs
  WHERE status = 'pending' AND available_at <= NOW()
  ORDER BY id
  LIMIT $1
  FOR UPDATE SKIP LOCKED
)
RETURNING id, topic, payload, status, attempts, last_error, available_at
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]jobs.OutboxJob, 0)
	for rows.Next() {
		var job jobs.OutboxJob
		if err := rows.Scan(&job.ID, &job.Topic, &job.Payload, &job.Status, &job.Attempts, &job.LastError, &job.AvailableAt); err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OutboxRepository) MarkDone(ctx context.Context, jobID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE outbox_jobs SET status = 'done', last_error = '' WHERE id = $1`, jobID)
	return err
}

func (r *OutboxRepository) MarkRetry(ctx context.Context, jobID int64, nextAvailableAt time.Time, lastError string) error {
	q := `UPDATE outbox_jobs SET status = 'pending', available_at = $2, last_error = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, jobID, nextAvailableAt, lastError)
	return err
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, jobID int64, lastError string) error {
	_, err := r.pool.Exec(ctx, `UPDATE outbox_jobs SET status = 'failed', last_error = $2 WHERE id = $1`, jobID, lastError)
	return err
}
