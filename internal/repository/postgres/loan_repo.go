package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratosmfi/backend/internal/domain/loan"
)

type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, borrower_id, plan_id, principal_amount, installment_amount,
       start_date, end_date, status, created_at, updated_at`

func (r *LoanRepository) Create(ctx context.Context, in loan.CreateInput) (*loan.Entity, error) {
	q := `
INSERT INTO loans (borrower_id, plan_id, principal_amount, installment_amount, start_date, end_date)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING ` + loanColumns
	out := &loan.Entity{}
	err := r.pool.QueryRow(ctx, q,
		in.BorrowerID, in.PlanID, in.PrincipalAmount, in.InstallmentAmount, in.StartDate, in.EndDate,
	).Scan(
		&out.ID, &out.BorrowerID, &out.PlanID, &out.PrincipalAmount, &out.InstallmentAmount,
		&out.StartDate, &out.EndDate, &out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		// The partial unique index on active loans is the authoritative
		// guard when two issuances race past the service-level check.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "loans_one_active_per_borrower" {
			return nil, loan.ErrActiveLoanExists
		}
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*loan.Entity, error) {
	q := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	out := &loan.Entity{}
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.BorrowerID, &out.PlanID, &out.PrincipalAmount, &out.InstallmentAmount,
		&out.StartDate, &out.EndDate, &out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) List(ctx context.Context, f loan.ListFilter) ([]loan.ListItem, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`
SELECT l.id, l.borrower_id, l.plan_id, l.principal_amount, l.installment_amount,
       l.start_date, l.end_date, l.status, l.created_at, l.updated_at,
       b.full_name, p.name
FROM loans l
JOIN borrowers b ON b.id = l.borrower_id
JOIN loan_plans p ON p.id = l.plan_id
WHERE 1=1`)

	args := []any{}
	argPos := 1
	if strings.TrimSpace(f.BorrowerID) != "" {
		builder.WriteString(" AND l.borrower_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.BorrowerID)
		argPos++
	}
	if strings.TrimSpace(f.Status) != "" {
		builder.WriteString(" AND l.status = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Status)
		argPos++
	}
	if strings.TrimSpace(f.CollectorID) != "" {
		builder.WriteString(" AND b.assigned_collector_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.CollectorID)
		argPos++
	}
	builder.WriteString(" ORDER BY l.created_at DESC")
	builder.WriteString(" LIMIT $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Limit)
	argPos++
	builder.WriteString(" OFFSET $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Offset)

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loan.ListItem, 0)
	for rows.Next() {
		var item loan.ListItem
		if err := rows.Scan(
			&item.ID, &item.BorrowerID, &item.PlanID, &item.PrincipalAmount, &item.InstallmentAmount,
			&item.StartDate, &item.EndDate, &item.Status, &item.CreatedAt, &item.UpdatedAt,
			&item.BorrowerName, &item.PlanName,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) CountByBorrower(ctx context.Context, borrowerID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)::bigint FROM loans WHERE borrower_id = $1`, borrowerID).Scan(&n)
	return n, err
}

func (r *LoanRepository) CountActiveByBorrower(ctx context.Context, borrowerID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)::bigint FROM loans WHERE borrower_id = $1 AND status = 'active'`, borrowerID).Scan(&n)
	return n, err
}

func (r *LoanRepository) MarkDefaulted(ctx context.Context, loanID string) error {
	q := `UPDATE loans SET status = 'defaulted', updated_at = NOW() WHERE id = $1 AND status = 'active'`
	tag, err := r.pool.Exec(ctx, q, loanID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return loan.ErrLoanNotActive
	}
	return nil
}
