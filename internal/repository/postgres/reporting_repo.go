package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratosmfi/backend/internal/domain/reporting"
)

type ReportingRepository struct {
	pool *pgxpool.Pool
}

func NewReportingRepository(pool *pgxpool.Pool) *ReportingRepository {
	return &ReportingRepository{pool: pool}
}

func (r *ReportingRepository) LoanAggregates(ctx context.Context, collectorID string) (*reporting.LoanAggregates, error) {
	q := `
SELECT
  COUNT(*) FILTER (WHERE l.status = 'active')::bigint AS active_loans,
  COALESCE(SUM(l.principal_amount) FILTER (WHERE l.status = 'active'), 0)::bigint AS outstanding,
  COALESCE(SUM(l.installment_amount) FILTER (WHERE l.status = 'active'), 0)::bigint AS expected_month
FROM loans l
JOIN borrowers b ON b.id = l.borrower_id
`
	args := []any{}
	if strings.TrimSpace(collectorID) != "" {
		q += `WHERE b.assigned_collector_id = $1`
		args = append(args, collectorID)
	}

	out := &reporting.LoanAggregates{}
	err := r.pool.QueryRow(ctx, q, args...).Scan(&out.ActiveLoans, &out.OutstandingPrincipal, &out.ExpectedThisMonth)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportingRepository) PaymentAggregates(ctx context.Context, collectorID string, dayStart, monthStart time.Time) (*reporting.PaymentAggregates, error) {
	q := `
SELECT
  COALESCE(SUM(pm.amount), 0)::bigint AS total_collected,
  COALESCE(SUM(pm.amount) FILTER (WHERE pm.collected_at >= $1), 0)::bigint AS collected_today,
  COALESCE(SUM(pm.amount) FILTER (WHERE pm.collected_at >= $2), 0)::bigint AS collected_month
FROM payments pm
`
	args := []any{dayStart, monthStart}
	if strings.TrimSpace(collectorID) != "" {
		q += `WHERE pm.collector_id = $3`
		args = append(args, collectorID)
	}

	out := &reporting.PaymentAggregates{}
	err := r.pool.QueryRow(ctx, q, args...).Scan(&out.TotalCollected, &out.CollectedToday, &out.CollectedThisMonth)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReportingRepository) MonthlyCollected(ctx context.Context, collectorID string, from time.Time) ([]reporting.MonthBucket, error) {
	builder := strings.Builder{}
	builder.WriteString(`
SELECT
  EXTRACT(YEAR FROM date_trunc('month', pm.collected_at))::int AS yr,
  EXTRACT(MONTH FROM date_trunc('month', pm.collected_at))::int AS mo,
  COALESCE(SUM(pm.amount), 0)::bigint AS collected
FROM payments pm
WHERE pm.collected_at >= $1`)
	args := []any{from}
	if strings.TrimSpace(collectorID) != "" {
		builder.WriteString(" AND pm.collector_id = $2")
		args = append(args, collectorID)
	}
	builder.WriteString(" GROUP BY 1, 2 ORDER BY 1, 2")

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reporting.MonthBucket, 0)
	for rows.Next() {
		var b reporting.MonthBucket
		if err := rows.Scan(&b.Year, &b.Month, &b.Collected); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
