package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stratosmfi/backend/internal/auth"
	"github.com/stratosmfi/backend/internal/config"
	"github.com/stratosmfi/backend/internal/db"
	borrowerdomain "github.com/stratosmfi/backend/internal/domain/borrower"
	ledgerdomain "github.com/stratosmfi/backend/internal/domain/ledger"
	loandomain "github.com/stratosmfi/backend/internal/domain/loan"
	"github.com/stratosmfi/backend/internal/domain/reporting"
	"github.com/stratosmfi/backend/internal/http/handlers"
	"github.com/stratosmfi/backend/internal/server"
)

type fakeAuthRepo struct {
	profiles map[string]*db.Profile
	sessions map[string]*db.Session
	nextID   int
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{profiles: map[string]*db.Profile{}, sessions: map[string]*db.Session{}}
}

func (r *fakeAuthRepo) CreateProfile(_ context.Context, role, fullName, email, phone, passwordHash string) (*db.Profile, error) {
	r.nextID++
	p := &db.Profile{ID: fmt.Sprintf("u-%d", r.nextID), Role: role, FullName: fullName, Email: email, Phone: phone, PasswordHash: passwordHash}
	r.profiles[p.ID] = p
	return p, nil
}

func (r *fakeAuthRepo) GetProfileByID(_ context.Context, profileID string) (*db.Profile, error) {
	if p, ok := r.profiles[profileID]; ok {
		return p, nil
	}
	return nil, errors.New("profile not found")
}

func (r *fakeAuthRepo) GetProfileByEmail(_ context.Context, email string) (*db.Profile, error) {
	for _, p := range r.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, errors.New("profile not found")
}

func (r *fakeAuthRepo) CreateSession(_ context.Context, profileID, refreshHash, userAgent, ipAddress string, expiresAt time.Time) (*db.Session, error) {
	r.nextID++
	s := &db.Session{ID: fmt.Sprintf("s-%d", r.nextID), ProfileID: profileID, RefreshTokenHash: refreshHash, UserAgent: userAgent, IPAddress: ipAddress, ExpiresAt: expiresAt}
	r.sessions[s.ID] = s
	return s, nil
}

func (r *fakeAuthRepo) GetSessionByID(_ context.Context, sessionID string) (*db.Session, error) {
	if s, ok := r.sessions[sessionID]; ok {
		return s, nil
	}
	return nil, errors.New("session not found")
}

func (r *fakeAuthRepo) RevokeSession(_ context.Context, sessionID string) error {
	if s, ok := r.sessions[sessionID]; ok {
		now := time.Now().UTC()
		s.RevokedAt = &now
	}
	return nil
}

func (r *fakeAuthRepo) UpdateSessionRefreshHash(_ context.Context, sessionID, refreshHash string) error {
	if s, ok := r.sessions[sessionID]; ok {
		s.RefreshTokenHash = refreshHash
	}
	return nil
}

type fakeBorrowerService struct {
	items []borrowerdomain.Entity
}

func (s *fakeBorrowerService) Register(_ context.Context, in borrowerdomain.CreateInput) (*borrowerdomain.Entity, error) {
	e := borrowerdomain.Entity{ID: fmt.Sprintf("b-%d", len(s.items)+1), FullName: in.FullName, NICNumber: in.NICNumber, Status: borrowerdomain.StatusActive}
	s.items = append(s.items, e)
	return &e, nil
}

func (s *fakeBorrowerService) Get(_ context.Context, id string) (*borrowerdomain.Entity, error) {
	for _, item := range s.items {
		if item.ID == id {
			cp := item
			return &cp, nil
		}
	}
	return nil, errors.New("borrower not found")
}

func (s *fakeBorrowerService) List(_ context.Context, _ borrowerdomain.ListFilter) ([]borrowerdomain.Entity, error) {
	return s.items, nil
}

func (s *fakeBorrowerService) UpdateStatus(_ context.Context, _, _ string) error { return nil }

func (s *fakeBorrowerService) AssignCollector(_ context.Context, _ string, _ *string) error {
	return nil
}

type fakeLoanService struct {
	issueErr error
	loan     *loandomain.Entity
}

func (s *fakeLoanService) Issue(_ context.Context, borrowerID string, planID int64) (*loandomain.Entity, error) {
	if s.issueErr != nil {
		return nil, s.issueErr
	}
	return s.loan, nil
}

func (s *fakeLoanService) Get(_ context.Context, _ string) (*loandomain.Entity, error) {
	if s.loan == nil {
		return nil, errors.New("loan not found")
	}
	return s.loan, nil
}

func (s *fakeLoanService) List(_ context.Context, _ loandomain.ListFilter) ([]loandomain.ListItem, error) {
	if s.loan == nil {
		return []loandomain.ListItem{}, nil
	}
	return []loandomain.ListItem{{Entity: *s.loan}}, nil
}

type fakeLedgerService struct {
	recordErr error
	result    *ledgerdomain.RecordResult
	receipt   *ledgerdomain.Receipt
}

func (s *fakeLedgerService) RecordPayment(_ context.Context, in ledgerdomain.RecordPaymentInput) (*ledgerdomain.RecordResult, error) {
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	return s.result, nil
}

func (s *fakeLedgerService) Receipt(_ context.Context, _ string) (*ledgerdomain.Receipt, error) {
	if s.receipt == nil {
		return nil, errors.New("payment not found")
	}
	return s.receipt, nil
}

func (s *fakeLedgerService) Schedule(_ context.Context, _ string) ([]ledgerdomain.ScheduleEntry, error) {
	return []ledgerdomain.ScheduleEntry{}, nil
}

func (s *fakeLedgerService) Progress(_ context.Context, loanID string) (*ledgerdomain.Progress, error) {
	return &ledgerdomain.Progress{LoanID: loanID}, nil
}

func (s *fakeLedgerService) Payments(_ context.Context, _ string) ([]ledgerdomain.Payment, error) {
	return []ledgerdomain.Payment{}, nil
}

type fakeReportingService struct {
	summary reporting.Summary
}

func (s *fakeReportingService) Summary(_ context.Context, _ string) (*reporting.Summary, error) {
	cp := s.summary
	return &cp, nil
}

func (s *fakeReportingService) MonthlyTrend(_ context.Context, _ string) ([]reporting.TrendPoint, error) {
	return []reporting.TrendPoint{}, nil
}

type routerFixture struct {
	router   *gin.Engine
	authRepo *fakeAuthRepo
	loans    *fakeLoanService
	ledger   *fakeLedgerService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authRepo := newFakeAuthRepo()
	jwtManager := auth.NewJWTManager("issuer", "aud", "super-secret")
	authSvc := auth.NewService(authRepo, jwtManager, 15*time.Minute, 24*time.Hour)
	authHandler := handlers.NewAuthHandler(authSvc, auth.CookieConfig{}, 15*time.Minute, 24*time.Hour)

	borrowers := &fakeBorrowerService{}
	loans := &fakeLoanService{}
	ledger := &fakeLedgerService{}
	reports := &fakeReportingService{}

	r := server.NewRouter(config.Config{Env: "test"}, slog.Default(), server.Dependencies{
		Pinger:            fakePinger{},
		AuthHandler:       authHandler,
		BorrowerHandler:   handlers.NewBorrowerHandler(borrowers),
		LoanHandler:       handlers.NewLoanHandler(loans, ledger),
		CollectionHandler: handlers.NewCollectionHandler(ledger, borrowers, loans, reports),
		ReportingHandler:  handlers.NewReportingHandler(reports),
		JWTManager:        jwtManager,
	})

	return &routerFixture{router: r, authRepo: authRepo, loans: loans, ledger: ledger}
}

// loginAs seeds a profile with the given role and returns its access
// cookie.
func (f *routerFixture) loginAs(t *testing.T, role, email string) *http.Cookie {
	t.Helper()

	hash, err := auth.HashPassword("pass-1234")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := f.authRepo.CreateProfile(context.Background(), role, "Test User", email, "", hash); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	body := fmt.Sprintf(`{"email":%q,"password":"pass-1234"}`, email)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("login as %s: expected 200, got %d", role, w.Code)
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.AccessCookieName {
			return c
		}
	}
	t.Fatalf("missing access cookie")
	return nil
}
