package admin

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/stratosmfi/backend/internal/auth"
	"github.com/stratosmfi/backend/internal/db"
)

var (
	ErrMissingFields = errors.New("full name, email and password are required")
	ErrUnknownTarget = errors.New("unknown reset target")
)

type ProfileRepository interface {
	CreateProfile(ctx context.Context, role, fullName, email, phone, passwordHash string) (*db.Profile, error)
	ListProfilesByRole(ctx context.Context, role string) ([]db.Profile, error)
	DeleteProfilesByRole(ctx context.Context, role string) (int64, error)
}

type PurgeRepository interface {
	DeleteAllBorrowers(ctx context.Context) (int64, error)
	// DeleteAllLoans removes payments first, then loans; returns
	// (loans, payments) deleted.
	DeleteAllLoans(ctx context.Context) (int64, int64, error)
}

type LoanDefaulter interface {
	MarkDefaulted(ctx context.Context, loanID string) error
}

type AuditRepository interface {
	Log(ctx context.Context, in AuditLogInput) error
}

type AuditLogInput struct {
	AdminProfileID string
	Action         string
	TargetType     string
	TargetID       string
	Payload        []byte
}

type ProvisionCollectorInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

// Service carries the administrative escape hatches: collector
// provisioning, bulk purges, and the manual default transition. Every
// action lands in the audit log.
type Service struct {
	profiles  ProfileRepository
	purges    PurgeRepository
	defaulter LoanDefaulter
	audit     AuditRepository
}

func NewService(profiles ProfileRepository, purges PurgeRepository, defaulter LoanDefaulter, audit AuditRepository) *Service {
	return &Service{profiles: profiles, purges: purges, defaulter: defaulter, audit: audit}
}

func (s *Service) ProvisionCollector(ctx context.Context, adminID string, in ProvisionCollectorInput) (*db.Profile, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FullName == "" || in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.profiles.CreateProfile(ctx, auth.RoleCollector, in.FullName, in.Email, strings.TrimSpace(in.Phone), hash)
	if err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]any{"full_name": created.FullName, "email": created.Email})
	_ = s.audit.Log(ctx, AuditLogInput{
		AdminProfileID: adminID,
		Action:         "collector_provisioned",
		TargetType:     "profile",
		TargetID:       created.ID,
		Payload:        payload,
	})
	return created, nil
}

func (s *Service) ListCollectors(ctx context.Context) ([]db.Profile, error) {
	return s.profiles.ListProfilesByRole(ctx, auth.RoleCollector)
}

func (s *Service) MarkLoanDefaulted(ctx context.Context, adminID, loanID string) error {
	if err := s.defaulter.MarkDefaulted(ctx, loanID); err != nil {
		return err
	}
	_ = s.audit.Log(ctx, AuditLogInput{
		AdminProfileID: adminID,
		Action:         "loan_defaulted",
		TargetType:     "loan",
		TargetID:       loanID,
	})
	return nil
}

// Reset purges a whole entity class. Targets: borrowers, loans
// (payments included), collectors.
func (s *Service) Reset(ctx context.Context, adminID, target string) (map[string]int64, error) {
	counts := map[string]int64{}
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "borrowers":
		n, err := s.purges.DeleteAllBorrowers(ctx)
		if err != nil {
			return nil, err
		}
		counts["borrowers"] = n
	case "loans":
		loans, payments, err := s.purges.DeleteAllLoans(ctx)
		if err != nil {
			return nil, err
		}
		counts["loans"] = loans
		counts["payments"] = payments
	case "collectors":
		n, err := s.profiles.DeleteProfilesByRole(ctx, auth.RoleCollector)
		if err != nil {
			return nil, err
		}
		counts["collectors"] = n
	default:
		return nil, ErrUnknownTarget
	}

	payload, _ := json.Marshal(counts)
	_ = s.audit.Log(ctx, AuditLogInput{
		AdminProfileID: adminID,
		Action:         "data_reset",
		TargetType:     target,
		Payload:        payload,
	})
	return counts, nil
}
