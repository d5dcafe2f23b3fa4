package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratosmfi/backend/internal/ws"
)

type WSRepository struct {
	pool *pgxpool.Pool
}

func NewWSRepository(pool *pgxpool.Pool) *WSRepository {
	return &WSRepository{pool: pool}
}

func (r *WSRepository) ListPaymentEventsSince(ctx context.Context, lastSeq int64, limit int32) ([]ws.RealtimeEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `
SELECT
  pm.seq,
  pm.id,
  pm.loan_id,
  b.full_name,
  COALESCE(pm.collector_id::text, ''),
  pm.amount,
  pm.installment_number,
  l.status = 'completed',
  pm.collected_at
FROM payments pm
JOIN loans l ON l.id = pm.loan_id
JOIN borrowers b ON b.id = l.borrower_id
WHERE pm.seq > $1
ORDER BY pm.seq ASC
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, lastSeq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ws.RealtimeEvent, 0)
	for rows.Next() {
		var ev ws.RealtimeEvent
		if err := rows.Scan(
			&ev.Seq, &ev.PaymentID, &ev.LoanID, &ev.BorrowerName, &ev.CollectorID,
			&ev.Amount, &ev.InstallmentNumber, &ev.LoanCompleted, &ev.CollectedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
