package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratosmfi/backend/internal/jobs"
)

// MaintenanceRepository holds the bulk purge and reconciliation
// statements used by admin resets and the background sweep.
type MaintenanceRepository struct {
	pool *pgxpool.Pool
}

func NewMaintenanceRepository(pool *pgxpool.Pool) *MaintenanceRepository {
	return &MaintenanceRepository{pool: pool}
}

func (r *MaintenanceRepository) DeleteAllBorrowers(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM borrowers`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteAllLoans removes payments before loans so the counts reported
// back reflect both tables even though the FK would cascade anyway.
func (r *MaintenanceRepository) DeleteAllLoans(ctx context.Context) (int64, int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	pTag, err := tx.Exec(ctx, `DELETE FROM payments`)
	if err != nil {
		return 0, 0, err
	}
	lTag, err := tx.Exec(ctx, `DELETE FROM loans`)
	if err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return lTag.RowsAffected(), pTag.RowsAffected(), nil
}

// ReconcileLoanStatuses flips any active loan whose schedule is fully
// collected to completed. A safety net behind the transactional
// completion in the payment path.
func (r *MaintenanceRepository) ReconcileLoanStatuses(ctx context.Context) (int64, error) {
	q := `
UPDATE loans l
SET status = 'completed', updated_at = NOW()
FROM loan_plans p
WHERE p.id = l.plan_id
  AND l.status = 'active'
  AND (SELECT COUNT(*) FROM payments pm WHERE pm.loan_id = l.id) >= p.duration_months
`
	tag, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *MaintenanceRepository) GetCompletionDetails(ctx context.Context, loanID string) (*jobs.CompletionDetails, error) {
	q := `
SELECT b.full_name, COALESCE(SUM(pm.amount), 0)::bigint, l.updated_at
FROM loans l
JOIN borrowers b ON b.id = l.borrower_id
LEFT JOIN payments pm ON pm.loan_id = l.id
WHERE l.id = $1
GROUP BY b.full_name, l.updated_at
`
	out := &jobs.CompletionDetails{}
	err := r.pool.QueryRow(ctx, q, loanID).Scan(&out.BorrowerName, &out.TotalCollected, &out.CompletedAt)
	if err != nil {
		return nil, err
	}
	return out, nil
}
