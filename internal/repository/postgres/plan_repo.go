package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratosmfi/backend/internal/domain/plan"
)

type PlanRepository struct {
	pool *pgxpool.Pool
}

func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

func (r *PlanRepository) Create(ctx context.Context, in plan.CreateInput, totalPayable, installment int64) (*plan.Entity, error) {
	q := `
INSERT INTO loan_plans (name, principal_amount, duration_months, interest_rate_pct, total_payable, installment_amount)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, name, principal_amount, duration_months, interest_rate_pct, total_payable, installment_amount, created_at
`
	out := &plan.Entity{}
	err := r.pool.QueryRow(ctx, q,
		in.Name, in.PrincipalAmount, in.DurationMonths, in.InterestRatePct, totalPayable, installment,
	).Scan(
		&out.ID, &out.Name, &out.PrincipalAmount, &out.DurationMonths,
		&out.InterestRatePct, &out.TotalPayable, &out.InstallmentAmount, &out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id int64) (*plan.Entity, error) {
	q := `
SELECT id, name, principal_amount, duration_months, interest_rate_pct, total_payable, installment_amount, created_at
FROM loan_plans WHERE id = $1
`
	out := &plan.Entity{}
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.Name, &out.PrincipalAmount, &out.DurationMonths,
		&out.InterestRatePct, &out.TotalPayable, &out.InstallmentAmount, &out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PlanRepository) List(ctx context.Context) ([]plan.Entity, error) {
	q := `
SELECT id, name, principal_amount, duration_months, interest_rate_pct, total_payable, installment_amount, created_at
FROM loan_plans
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]plan.Entity, 0)
	for rows.Next() {
		var item plan.Entity
		if err := rows.Scan(
			&item.ID, &item.Name, &item.PrincipalAmount, &item.DurationMonths,
			&item.InterestRatePct, &item.TotalPayable, &item.InstallmentAmount, &item.CreatedAt,
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

func (r *PlanRepository) CountLoans(ctx context.Context, planID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)::bigint FROM loans WHERE plan_id = $1`, planID).Scan(&n)
	return n, err
}

func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM loan_plans WHERE id = $1`, id)
	return err
}
