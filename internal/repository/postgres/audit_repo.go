package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	admindomain "github.com/stratosmfi/backend/internal/domain/admin"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Log(ctx context.Context, in admindomain.AuditLogInput) error {
	q := `
INSERT INTO audit_log (admin_profile_id, action, target_type, target_id, payload)
VALUES (NULLIF($1, '')::uuid, $2, $3, $4, COALESCE($5::jsonb, '{}'::jsonb))
`
	_, err := r.pool.Exec(ctx, q, in.AdminProfileID, in.Action, in.TargetType, in.TargetID, in.Payload)
	return err
}
