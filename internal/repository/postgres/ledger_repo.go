package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratosmfi/backend/internal/domain/ledger"
)

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) GetLoanTerms(ctx context.Context, loanID string) (*ledger.LoanTerms, error) {
	q := `
SELECT l.id, l.borrower_id, l.status, l.installment_amount, p.duration_months, l.start_date
FROM loans l
JOIN loan_plans p ON p.id = l.plan_id
WHERE l.id = $1
`
	out := &ledger.LoanTerms{}
	err := r.pool.QueryRow(ctx, q, loanID).Scan(
		&out.LoanID, &out.BorrowerID, &out.Status, &out.InstallmentAmount, &out.DurationMonths, &out.StartDate,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LedgerRepository) CountPayments(ctx context.Context, loanID string) (int32, error) {
	var n int32
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)::int FROM payments WHERE loan_id = $1`, loanID).Scan(&n)
	return n, err
}

// InsertInstallment writes one installment in a single transaction:
// the loan row is locked, the next installment number is assigned from
// the payment count, and when the schedule fills up the loan flips to
// completed and a completion job is enqueued. The unique index on
// (loan_id, installment_number) makes a racing duplicate fail instead
// of double-numbering.
func (r *LedgerRepository) InsertInstallment(ctx context.Context, in ledger.RecordPaymentInput) (*ledger.RecordResult, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	qTerms := `
SELECT l.id, l.borrower_id, l.status, l.installment_amount, p.duration_months, l.start_date
FROM loans l
JOIN loan_plans p ON p.id = l.plan_id
WHERE l.id = $1
FOR UPDATE OF l
`
	terms := ledger.LoanTerms{}
	err = tx.QueryRow(ctx, qTerms, in.LoanID).Scan(
		&terms.LoanID, &terms.BorrowerID, &terms.Status, &terms.InstallmentAmount, &terms.DurationMonths, &terms.StartDate,
	)
	if err != nil {
		return nil, err
	}
	if terms.Status != "active" {
		return nil, ledger.ErrLoanNotActive
	}

	var paid int32
	if err := tx.QueryRow(ctx, `SELECT COUNT(*)::int FROM payments WHERE loan_id = $1`, in.LoanID).Scan(&paid); err != nil {
		return nil, err
	}
	if paid >= terms.DurationMonths {
		return nil, ledger.ErrScheduleExhausted
	}

	amount := terms.InstallmentAmount
	if in.AmountOverride != nil {
		amount = *in.AmountOverride
	}
	number := paid + 1

	qInsert := `
INSERT INTO payments (loan_id, collector_id, amount, installment_number, notes)
VALUES ($1,$2,$3,$4,$5)
RETURNING seq, id, loan_id, collector_id, amount, installment_number, notes, collected_at
`
	p := ledger.Payment{}
	err = tx.QueryRow(ctx, qInsert, in.LoanID, in.CollectorID, amount, number, in.Notes).Scan(
		&p.Seq, &p.ID, &p.LoanID, &p.CollectorID, &p.Amount, &p.InstallmentNumber, &p.Notes, &p.CollectedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ledger.ErrInstallmentConflict
		}
		return nil, err
	}

	res := &ledger.RecordResult{Payment: p}
	if number >= terms.DurationMonths {
		qComplete := `UPDATE loans SET status = 'completed', updated_at = NOW() WHERE id = $1 AND status = 'active'`
		if _, err := tx.Exec(ctx, qComplete, in.LoanID); err != nil {
			return nil, err
		}
		payload, _ := json.Marshal(map[string]any{
			"loan_id":     in.LoanID,
			"borrower_id": terms.BorrowerID,
			"payment_id":  p.ID,
		})
		qJob := `INSERT INTO outbox_jobs (topic, payload, available_at) VALUES ($1, $2::jsonb, $3)`
		if _, err := tx.Exec(ctx, qJob, "loan_completed", payload, time.Now().UTC()); err != nil {
			return nil, err
		}
		res.Completed = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *LedgerRepository) ListPayments(ctx context.Context, loanID string) ([]ledger.Payment, error) {
	q := `
SELECT seq, id, loan_id, collector_id, amount, installment_number, notes, collected_at
FROM payments
WHERE loan_id = $1
ORDER BY installment_number
`
	rows, err := r.pool.Query(ctx, q, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Payment, 0)
	for rows.Next() {
		var p ledger.Payment
		if err := rows.Scan(&p.Seq, &p.ID, &p.LoanID, &p.CollectorID, &p.Amount, &p.InstallmentNumber, &p.Notes, &p.CollectedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LedgerRepository) GetReceipt(ctx context.Context, paymentID string) (*ledger.Receipt, error) {
	q := `
SELECT pm.seq, pm.id, pm.loan_id, pm.collector_id, pm.amount, pm.installment_number, pm.notes, pm.collected_at,
       b.full_name, b.nic_number, COALESCE(pr.full_name, ''), pl.name
FROM payments pm
JOIN loans l ON l.id = pm.loan_id
JOIN borrowers b ON b.id = l.borrower_id
JOIN loan_plans pl ON pl.id = l.plan_id
LEFT JOIN profiles pr ON pr.id = pm.collector_id
WHERE pm.id = $1
`
	out := &ledger.Receipt{}
	err := r.pool.QueryRow(ctx, q, paymentID).Scan(
		&out.Seq, &out.ID, &out.LoanID, &out.CollectorID, &out.Amount, &out.InstallmentNumber, &out.Notes, &out.CollectedAt,
		&out.BorrowerName, &out.BorrowerNIC, &out.CollectorName, &out.PlanName,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
