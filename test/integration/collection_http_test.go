package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stratosmfi/backend/internal/auth"
	ledgerdomain "github.com/stratosmfi/backend/internal/domain/ledger"
	loandomain "github.com/stratosmfi/backend/internal/domain/loan"
)

func TestCollectionRoutes(t *testing.T) {
	f := newRouterFixture(t)

	collectorID := "c-1"
	f.loans.loan = &loandomain.Entity{
		ID:                "l-1",
		BorrowerID:        "b-1",
		PlanID:            1,
		PrincipalAmount:   20000,
		InstallmentAmount: 2000,
		StartDate:         time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:            loandomain.StatusActive,
	}
	f.ledger.result = &ledgerdomain.RecordResult{
		Payment: ledgerdomain.Payment{
			ID:                "p-1",
			LoanID:            "l-1",
			CollectorID:       &collectorID,
			Amount:            2000,
			InstallmentNumber: 1,
			Notes:             "Mobile collection",
			CollectedAt:       time.Now().UTC(),
		},
	}
	f.ledger.receipt = &ledgerdomain.Receipt{
		Payment:      f.ledger.result.Payment,
		BorrowerName: "Nimal Perera",
		BorrowerNIC:  "901234567V",
		PlanName:     "Standard 12M",
	}

	cookie := f.loginAs(t, auth.RoleCollector, "collector@stratos.lk")

	t.Run("record payment", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/loans/l-1/payments", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
		}
		var resp struct {
			Payment       ledgerdomain.Payment `json:"payment"`
			LoanCompleted bool                 `json:"loan_completed"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Payment.ID != "p-1" || resp.Payment.InstallmentNumber != 1 {
			t.Fatalf("unexpected payment in response: %+v", resp.Payment)
		}
		if resp.LoanCompleted {
			t.Fatalf("loan should not be completed")
		}
	})

	t.Run("schedule exhausted maps to conflict", func(t *testing.T) {
		f.ledger.recordErr = ledgerdomain.ErrScheduleExhausted
		defer func() { f.ledger.recordErr = nil }()

		req := httptest.NewRequest(http.MethodPost, "/v1/loans/l-1/payments", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("installment number race maps to conflict", func(t *testing.T) {
		f.ledger.recordErr = ledgerdomain.ErrInstallmentConflict
		defer func() { f.ledger.recordErr = nil }()

		req := httptest.NewRequest(http.MethodPost, "/v1/loans/l-1/payments", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("receipt", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/payments/p-1/receipt", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var receipt ledgerdomain.Receipt
		if err := json.Unmarshal(w.Body.Bytes(), &receipt); err != nil {
			t.Fatalf("decode receipt: %v", err)
		}
		if receipt.BorrowerName != "Nimal Perera" || receipt.PlanName != "Standard 12M" {
			t.Fatalf("unexpected receipt: %+v", receipt)
		}
	})

	t.Run("collector portfolio", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/collector/loans", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp struct {
			Items []loandomain.ListItem `json:"items"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode loans: %v", err)
		}
		if len(resp.Items) != 1 || resp.Items[0].ID != "l-1" {
			t.Fatalf("unexpected portfolio: %+v", resp.Items)
		}
	})

	t.Run("collector blocked from admin surface", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/loans", strings.NewReader(`{"borrower_id":"b-1","plan_id":1}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("unauthenticated request rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/loans/l-1/payments", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestLoanIssuanceRoutes(t *testing.T) {
	f := newRouterFixture(t)
	f.loans.loan = &loandomain.Entity{
		ID:         "l-9",
		BorrowerID: "b-1",
		PlanID:     1,
		Status:     loandomain.StatusActive,
	}

	adminCookie := f.loginAs(t, auth.RoleAdmin, "admin@stratos.lk")

	t.Run("issue", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/loans", strings.NewReader(`{"borrower_id":"b-1","plan_id":1}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(adminCookie)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
		}
	})

	t.Run("duplicate active loan maps to conflict", func(t *testing.T) {
		f.loans.issueErr = loandomain.ErrActiveLoanExists
		defer func() { f.loans.issueErr = nil }()

		req := httptest.NewRequest(http.MethodPost, "/v1/loans", strings.NewReader(`{"borrower_id":"b-1","plan_id":1}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(adminCookie)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("loan detail includes progress", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/loans/l-9", nil)
		req.AddCookie(adminCookie)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp struct {
			Loan     loandomain.Entity     `json:"loan"`
			Progress ledgerdomain.Progress `json:"progress"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode detail: %v", err)
		}
		if resp.Loan.ID != "l-9" || resp.Progress.LoanID != "l-9" {
			t.Fatalf("unexpected detail: %+v", resp)
		}
	})
}

func TestAuthRoutes(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.loginAs(t, auth.RoleAdmin, "admin@stratos.lk")

	t.Run("me", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp struct {
			User struct {
				Email string `json:"email"`
				Role  string `json:"role"`
			} `json:"user"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode me: %v", err)
		}
		if resp.User.Email != "admin@stratos.lk" || resp.User.Role != auth.RoleAdmin {
			t.Fatalf("unexpected identity: %+v", resp.User)
		}
	})

	t.Run("bad password rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"admin@stratos.lk","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}
