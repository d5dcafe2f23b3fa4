package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stratosmfi/backend/internal/db"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Repository interface {
	CreateProfile(ctx context.Context, role, fullName, email, phone, passwordHash string) (*db.Profile, error)
	GetProfileByID(ctx context.Context, profileID string) (*db.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*db.Profile, error)
	CreateSession(ctx context.Context, profileID, refreshHash, userAgent, ipAddress string, expiresAt time.Time) (*db.Session, error)
	GetSessionByID(ctx context.Context, sessionID string) (*db.Session, error)
	RevokeSession(ctx context.Context, sessionID string) error
	UpdateSessionRefreshHash(ctx context.Context, sessionID, refreshHash string) error
}

type Service struct {
	repo       Repository
	jwt        *JWTManager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
	Profile      *db.Profile
}

func NewService(repo Repository, jwt *JWTManager, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{repo: repo, jwt: jwt, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// HashPassword is used by both login bootstrap and collector provisioning.
func HashPassword(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *Service) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*AuthTokens, error) {
	profile, err := s.repo.GetProfileByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	bundle, err := s.createSessionAndTokens(ctx, profile, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	return &AuthTokens{AccessToken: bundle.AccessToken, RefreshToken: bundle.RefreshToken, SessionID: bundle.SessionID, Profile: profile}, nil
}

type sessionBundle struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
}

func (s *Service) Refresh(ctx context.Context, refreshToken, userAgent, ipAddress string) (*AuthTokens, error) {
	claims, err := s.jwt.Parse(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Type != "refresh" {
		return nil, errors.New("invalid token type")
	}

	session, err := s.repo.GetSessionByID(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.RevokedAt != nil {
		return nil, errors.New("session revoked")
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		return nil, errors.New("session expired")
	}
	if session.RefreshTokenHash != hashToken(refreshToken) {
		return nil, errors.New("refresh token mismatch")
	}

	if err := s.repo.RevokeSession(ctx, session.ID); err != nil {
		return nil, err
	}

	profile, err := s.repo.GetProfileByID(ctx, session.ProfileID)
	if err != nil {
		return nil, err
	}

	bundle, err := s.createSessionAndTokens(ctx, profile, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	return &AuthTokens{AccessToken: bundle.AccessToken, RefreshToken: bundle.RefreshToken, SessionID: bundle.SessionID, Profile: profile}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.Parse(refreshToken)
	if err != nil {
		return nil
	}
	if claims.Type != "refresh" || claims.SessionID == "" {
		return nil
	}
	return s.repo.RevokeSession(ctx, claims.SessionID)
}

func (s *Service) Me(ctx context.Context, profileID string) (*db.Profile, error) {
	return s.repo.GetProfileByID(ctx, profileID)
}

// EnsureBootstrapAdmin seeds the first admin account when the configured
// email does not exist yet. A no-op when either value is empty.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.repo.GetProfileByEmail(ctx, email); err == nil {
		return nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.repo.CreateProfile(ctx, RoleAdmin, "Administrator", email, "", hash)
	return err
}

func (s *Service) createSessionAndTokens(ctx context.Context, profile *db.Profile, userAgent, ipAddress string) (*sessionBundle, error) {
	expiresAt := time.Now().UTC().Add(s.refreshTTL)
	sessionSeed := uuid.NewString()
	session, err := s.repo.CreateSession(ctx, profile.ID, hashToken(sessionSeed), userAgent, ipAddress, expiresAt)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwt.Mint(profile.ID, session.ID, profile.Role, "access", s.accessTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwt.Mint(profile.ID, session.ID, profile.Role, "refresh", s.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSessionRefreshHash(ctx, session.ID, hashToken(refreshToken)); err != nil {
		return nil, err
	}

	return &sessionBundle{AccessToken: accessToken, RefreshToken: refreshToken, SessionID: session.ID}, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func ClientIP(r *http.Request) string {
	xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
