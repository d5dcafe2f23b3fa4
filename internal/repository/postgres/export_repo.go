package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratosmfi/backend/internal/export"
)

type ExportRepository struct {
	pool *pgxpool.Pool
}

func NewExportRepository(pool *pgxpool.Pool) *ExportRepository {
	return &ExportRepository{pool: pool}
}

func (r *ExportRepository) BorrowerRows(ctx context.Context) (*export.Dataset, error) {
	q := `
SELECT b.full_name, b.nic_number, b.phone, b.address,
       b.guarantor_name, b.guarantor_phone, b.status,
       COALESCE(p.full_name, ''), b.created_at
FROM borrowers b
LEFT JOIN profiles p ON p.id = b.assigned_collector_id
ORDER BY b.created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ds := &export.Dataset{
		Type:    "borrowers",
		Headers: []string{"full_name", "nic_number", "phone", "address", "guarantor_name", "guarantor_phone", "status", "assigned_collector", "created_at"},
	}
	for rows.Next() {
		var fullName, nic, phone, address, gName, gPhone, status, collector string
		var createdAt time.Time
		if err := rows.Scan(&fullName, &nic, &phone, &address, &gName, &gPhone, &status, &collector, &createdAt); err != nil {
			return nil, err
		}
		ds.Rows = append(ds.Rows, []string{
			fullName, nic, phone, address, gName, gPhone, status, collector,
			createdAt.UTC().Format(time.RFC3339),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (r *ExportRepository) LoanRows(ctx context.Context) (*export.Dataset, error) {
	q := `
SELECT b.full_name, b.nic_number, p.name, l.principal_amount, l.installment_amount,
       p.duration_months, l.start_date, l.end_date, l.status,
       COALESCE(paid.collected, 0)::bigint
FROM loans l
JOIN borrowers b ON b.id = l.borrower_id
JOIN loan_plans p ON p.id = l.plan_id
LEFT JOIN (
  SELECT loan_id, SUM(amount) AS collected FROM payments GROUP BY loan_id
) paid ON paid.loan_id = l.id
ORDER BY l.created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ds := &export.Dataset{
		Type:    "loans",
		Headers: []string{"borrower_name", "borrower_nic", "plan_name", "principal_amount", "installment_amount", "duration_months", "start_date", "end_date", "status", "total_collected"},
	}
	for rows.Next() {
		var borrowerName, borrowerNIC, planName, status string
		var principal, installment, collected int64
		var duration int32
		var startDate, endDate time.Time
		if err := rows.Scan(&borrowerName, &borrowerNIC, &planName, &principal, &installment, &duration, &startDate, &endDate, &status, &collected); err != nil {
			return nil, err
		}
		ds.Rows = append(ds.Rows, []string{
			borrowerName, borrowerNIC, planName,
			strconv.FormatInt(principal, 10),
			strconv.FormatInt(installment, 10),
			strconv.FormatInt(int64(duration), 10),
			startDate.Format("2006-01-02"),
			endDate.Format("2006-01-02"),
			status,
			strconv.FormatInt(collected, 10),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (r *ExportRepository) PaymentRows(ctx context.Context) (*export.Dataset, error) {
	q := `
SELECT pm.collected_at, b.full_name, b.nic_number, pm.amount, pm.installment_number,
       COALESCE(pr.full_name, ''), pm.notes
FROM payments pm
JOIN loans l ON l.id = pm.loan_id
JOIN borrowers b ON b.id = l.borrower_id
LEFT JOIN profiles pr ON pr.id = pm.collector_id
ORDER BY pm.collected_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ds := &export.Dataset{
		Type:    "payments",
		Headers: []string{"collected_at", "borrower_name", "borrower_nic", "amount", "installment_number", "collector_name", "notes"},
	}
	for rows.Next() {
		var collectedAt time.Time
		var borrowerName, borrowerNIC, collectorName, notes string
		var amount int64
		var number int32
		if err := rows.Scan(&collectedAt, &borrowerName, &borrowerNIC, &amount, &number, &collectorName, &notes); err != nil {
			return nil, err
		}
		ds.Rows = append(ds.Rows, []string{
			collectedAt.UTC().Format(time.RFC3339),
			borrowerName, borrowerNIC,
			strconv.FormatInt(amount, 10),
			strconv.FormatInt(int64(number), 10),
			collectorName, notes,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ds, nil
}
