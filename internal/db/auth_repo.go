package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Profile struct {
	ID           string
	Role         string
	FullName     string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Session struct {
	ID               string
	ProfileID        string
	RefreshTokenHash string
	UserAgent        string
	IPAddress        string
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type AuthRepository struct {
	pool *pgxpool.Pool
}

func NewAuthRepository(pool *pgxpool.Pool) *AuthRepository {
	return &AuthRepository{pool: pool}
}

func (r *AuthRepository) CreateProfile(ctx context.Context, role, fullName, email, phone, passwordHash string) (*Profile, error) {
	q := `
INSERT INTO profiles (role, full_name, email, phone, password_hash)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, role, full_name, email, phone, password_hash, created_at, updated_at
`
	p := &Profile{}
	err := r.pool.QueryRow(ctx, q, role, fullName, email, phone, passwordHash).
		Scan(&p.ID, &p.Role, &p.FullName, &p.Email, &p.Phone, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *AuthRepository) GetProfileByID(ctx context.Context, profileID string) (*Profile, error) {
	q := `SELECT id, role, full_name, email, phone, password_hash, created_at, updated_at FROM profiles WHERE id = $1`
	p := &Profile{}
	err := r.pool.QueryRow(ctx, q, profileID).
		Scan(&p.ID, &p.Role, &p.FullName, &p.Email, &p.Phone, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *AuthRepository) GetProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	q := `SELECT id, role, full_name, email, phone, password_hash, created_at, updated_at FROM profiles WHERE email = $1`
	p := &Profile{}
	err := r.pool.QueryRow(ctx, q, email).
		Scan(&p.ID, &p.Role, &p.FullName, &p.Email, &p.Phone, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *AuthRepository) ListProfilesByRole(ctx context.Context, role string) ([]Profile, error) {
	q := `
SELECT id, role, full_name, email, phone, password_hash, created_at, updated_at
FROM profiles
WHERE role = $1
ORDER BY full_name
`
	rows, err := r.pool.Query(ctx, q, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Profile, 0)
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Role, &p.FullName, &p.Email, &p.Phone, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AuthRepository) DeleteProfilesByRole(ctx context.Context, role string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE role = $1`, role)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *AuthRepository) CreateSession(ctx context.Context, profileID, refreshHash, userAgent, ipAddress string, expiresAt time.Time) (*Session, error) {
	q := `
INSERT INTO auth_sessions (profile_id, refresh_token_hash, user_agent, ip_address, expires_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, profile_id, refresh_token_hash, user_agent, ip_address, expires_at, revoked_at, created_at, updated_at
`
	s := &Session{}
	err := r.pool.QueryRow(ctx, q, profileID, refreshHash, userAgent, ipAddress, expiresAt).
		Scan(&s.ID, &s.ProfileID, &s.RefreshTokenHash, &s.UserAgent, &s.IPAddress, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *AuthRepository) GetSessionByID(ctx context.Context, sessionID string) (*Session, error) {
	q := `
SELECT id, profile_id, refresh_token_hash, user_agent, ip_address, expires_at, revoked_at, created_at, updated_at
FROM auth_sessions
WHERE id = $1
`
	s := &Session{}
	err := r.pool.QueryRow(ctx, q, sessionID).
		Scan(&s.ID, &s.ProfileID, &s.RefreshTokenHash, &s.UserAgent, &s.IPAddress, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *AuthRepository) RevokeSession(ctx context.Context, sessionID string) error {
	q := `UPDATE auth_sessions SET revoked_at = NOW(), updated_at = NOW() WHERE id = $1 AND revoked_at IS NULL`
	_, err := r.pool.Exec(ctx, q, sessionID)
	return err
}

func (r *AuthRepository) UpdateSessionRefreshHash(ctx context.Context, sessionID, refreshHash string) error {
	q := `UPDATE auth_sessions SET refresh_token_hash = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, sessionID, refreshHash)
	return err
}
