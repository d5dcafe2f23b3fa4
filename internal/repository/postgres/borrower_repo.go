package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stratosmfi/backend/internal/domain/borrower"
)

type BorrowerRepository struct {
	pool *pgxpool.Pool
}

func NewBorrowerRepository(pool *pgxpool.Pool) *BorrowerRepository {
	return &BorrowerRepository{pool: pool}
}

const borrowerColumns = `id, full_name, nic_number, phone, address,
       guarantor_name, guarantor_phone, guarantor_nic,
       status, assigned_collector_id, created_at, updated_at`

func scanBorrower(row interface{ Scan(dest ...any) error }, out *borrower.Entity) error {
	return row.Scan(
		&out.ID, &out.FullName, &out.NICNumber, &out.Phone, &out.Address,
		&out.GuarantorName, &out.GuarantorPhone, &out.GuarantorNIC,
		&out.Status, &out.AssignedCollectorID, &out.CreatedAt, &out.UpdatedAt,
	)
}

func (r *BorrowerRepository) Create(ctx context.Context, in borrower.CreateInput) (*borrower.Entity, error) {
	q := `
INSERT INTO borrowers (
  full_name, nic_number, phone, address,
  guarantor_name, guarantor_phone, guarantor_nic
) VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING ` + borrowerColumns
	out := &borrower.Entity{}
	err := scanBorrower(r.pool.QueryRow(ctx, q,
		in.FullName, in.NICNumber, in.Phone, in.Address,
		in.GuarantorName, in.GuarantorPhone, in.GuarantorNIC,
	), out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BorrowerRepository) GetByID(ctx context.Context, id string) (*borrower.Entity, error) {
	q := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE id = $1`
	out := &borrower.Entity{}
	if err := scanBorrower(r.pool.QueryRow(ctx, q, id), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BorrowerRepository) List(ctx context.Context, f borrower.ListFilter) ([]borrower.Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + borrowerColumns + ` FROM borrowers WHERE 1=1`)

	args := []any{}
	argPos := 1
	if strings.TrimSpace(f.Status) != "" {
		builder.WriteString(" AND status = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Status)
		argPos++
	}
	if strings.TrimSpace(f.CollectorID) != "" {
		builder.WriteString(" AND assigned_collector_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.CollectorID)
		argPos++
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		builder.WriteString(" AND (full_name ILIKE $")
		builder.WriteString(strconv.Itoa(argPos))
		builder.WriteString(" OR nic_number ILIKE $")
		builder.WriteString(strconv.Itoa(argPos))
		builder.WriteString(" OR phone ILIKE $")
		builder.WriteString(strconv.Itoa(argPos))
		builder.WriteString(")")
		args = append(args, "%"+s+"%")
		argPos++
	}
	builder.WriteString(" ORDER BY created_at DESC")
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

	out := make([]borrower.Entity, 0)
	for rows.Next() {
		var item borrower.Entity
		if err := scanBorrower(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BorrowerRepository) UpdateStatus(ctx context.Context, id, status string) error {
	q := `UPDATE borrowers SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, status)
	return err
}

func (r *BorrowerRepository) AssignCollector(ctx context.Context, id string, collectorID *string) error {
	q := `UPDATE borrowers SET assigned_collector_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, collectorID)
	return err
}
