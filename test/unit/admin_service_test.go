package unit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stratosmfi/backend/internal/db"
	admindomain "github.com/stratosmfi/backend/internal/domain/admin"
)

type profileRepoMock struct {
	profiles []db.Profile
}

func (m *profileRepoMock) CreateProfile(_ context.Context, role, fullName, email, phone, passwordHash string) (*db.Profile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			return nil, errors.New("duplicate email")
		}
	}
	p := db.Profile{
		ID:           fmt.Sprintf("u-%d", len(m.profiles)+1),
		Role:         role,
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
	}
	m.profiles = append(m.profiles, p)
	return &p, nil
}

func (m *profileRepoMock) ListProfilesByRole(_ context.Context, role string) ([]db.Profile, error) {
	out := make([]db.Profile, 0)
	for _, p := range m.profiles {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *profileRepoMock) DeleteProfilesByRole(_ context.Context, role string) (int64, error) {
	kept := m.profiles[:0]
	var n int64
	for _, p := range m.profiles {
		if p.Role == role {
			n++
			continue
		}
		kept = append(kept, p)
	}
	m.profiles = kept
	return n, nil
}

type purgeRepoMock struct {
	borrowers int64
	loans     int64
	payments  int64
}

func (m *purgeRepoMock) DeleteAllBorrowers(_ context.Context) (int64, error) {
	n := m.borrowers
	m.borrowers = 0
	return n, nil
}

func (m *purgeRepoMock) DeleteAllLoans(_ context.Context) (int64, int64, error) {
	l, p := m.loans, m.payments
	m.loans, m.payments = 0, 0
	return l, p, nil
}

type defaulterMock struct {
	loanID string
}

func (m *defaulterMock) MarkDefaulted(_ context.Context, loanID string) error {
	m.loanID = loanID
	return nil
}

type auditRepoMock struct {
	actions []string
}

func (m *auditRepoMock) Log(_ context.Context, in admindomain.AuditLogInput) error {
	m.actions = append(m.actions, in.Action)
	return nil
}

func TestProvisionCollector(t *testing.T) {
	profiles := &profileRepoMock{}
	audit := &auditRepoMock{}
	svc := admindomain.NewService(profiles, &purgeRepoMock{}, &defaulterMock{}, audit)

	created, err := svc.ProvisionCollector(context.Background(), "admin-1", admindomain.ProvisionCollectorInput{
		FullName: "Ruwan Jayasuriya",
		Email:    "Ruwan@Stratos.LK",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if created.Role != "collector" {
		t.Fatalf("expected collector role, got %s", created.Role)
	}
	if created.Email != "ruwan@stratos.lk" {
		t.Fatalf("expected normalized email, got %s", created.Email)
	}
	if created.PasswordHash == "s3cret-pass" || created.PasswordHash == "" {
		t.Fatalf("expected hashed password")
	}
	if len(audit.actions) != 1 || audit.actions[0] != "collector_provisioned" {
		t.Fatalf("expected audit entry, got %v", audit.actions)
	}
}

func TestProvisionCollectorRequiresFields(t *testing.T) {
	svc := admindomain.NewService(&profileRepoMock{}, &purgeRepoMock{}, &defaulterMock{}, &auditRepoMock{})

	_, err := svc.ProvisionCollector(context.Background(), "admin-1", admindomain.ProvisionCollectorInput{Email: "x@y.lk"})
	if !errors.Is(err, admindomain.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestResetLoansReportsBothCounts(t *testing.T) {
	purges := &purgeRepoMock{loans: 3, payments: 17}
	audit := &auditRepoMock{}
	svc := admindomain.NewService(&profileRepoMock{}, purges, &defaulterMock{}, audit)

	counts, err := svc.Reset(context.Background(), "admin-1", "loans")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if counts["loans"] != 3 || counts["payments"] != 17 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "data_reset" {
		t.Fatalf("expected audit entry, got %v", audit.actions)
	}
}

func TestResetUnknownTarget(t *testing.T) {
	svc := admindomain.NewService(&profileRepoMock{}, &purgeRepoMock{}, &defaulterMock{}, &auditRepoMock{})

	if _, err := svc.Reset(context.Background(), "admin-1", "everything"); !errors.Is(err, admindomain.ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestMarkLoanDefaultedAudits(t *testing.T) {
	defaulter := &defaulterMock{}
	audit := &auditRepoMock{}
	svc := admindomain.NewService(&profileRepoMock{}, &purgeRepoMock{}, defaulter, audit)

	if err := svc.MarkLoanDefaulted(context.Background(), "admin-1", "l-9"); err != nil {
		t.Fatalf("mark defaulted: %v", err)
	}
	if defaulter.loanID != "l-9" {
		t.Fatalf("expected loan l-9 defaulted, got %s", defaulter.loanID)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "loan_defaulted" {
		t.Fatalf("expected audit entry, got %v", audit.actions)
	}
}
