package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stratosmfi/backend/internal/db"
	borrowerdomain "github.com/stratosmfi/backend/internal/domain/borrower"
	ledgerdomain "github.com/stratosmfi/backend/internal/domain/ledger"
	loandomain "github.com/stratosmfi/backend/internal/domain/loan"
	plandomain "github.com/stratosmfi/backend/internal/domain/plan"
	"github.com/stratosmfi/backend/internal/repository/postgres"
	"github.com/stratosmfi/backend/test/integration/testutil"
)

// seedPortfolio creates a collector profile, one borrower, one plan and
// one active loan so the write paths can be exercised end to end.
type portfolio struct {
	collectorID string
	borrowerID  string
	planID      int64
	loanID      string
	months      int32
}

func seedPortfolio(t *testing.T, ctx context.Context, authRepo *db.AuthRepository, borrowers *postgres.BorrowerRepository, plans *postgres.PlanRepository, loans *postgres.LoanRepository) portfolio {
	t.Helper()

	collector, err := authRepo.CreateProfile(ctx, "collector", "Field Collector", "field@stratos.lk", "", "x")
	if err != nil {
		t.Fatalf("create collector: %v", err)
	}
	b, err := borrowers.Create(ctx, borrowerdomain.CreateInput{FullName: "Nimal Perera", NICNumber: "901234567V"})
	if err != nil {
		t.Fatalf("create borrower: %v", err)
	}
	// 20% flat over 3 months: total 6300, installment 2100.
	p, err := plans.Create(ctx, plandomain.CreateInput{Name: "Short 3M", PrincipalAmount: 6000, DurationMonths: 3, InterestRatePct: 20}, 6300, 2100)
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	l, err := loans.Create(ctx, loandomain.CreateInput{
		BorrowerID:        b.ID,
		PlanID:            p.ID,
		PrincipalAmount:   6000,
		InstallmentAmount: 2100,
		StartDate:         start,
		EndDate:           start.AddDate(0, 3, 0),
	})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}
	return portfolio{collectorID: collector.ID, borrowerID: b.ID, planID: p.ID, loanID: l.ID, months: 3}
}

func TestRepositoriesAgainstDatabase(t *testing.T) {
	pool := testutil.NewTestPool(t)
	t.Cleanup(pool.Close)
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	authRepo := db.NewAuthRepository(pool)
	borrowers := postgres.NewBorrowerRepository(pool)
	plans := postgres.NewPlanRepository(pool)
	loans := postgres.NewLoanRepository(pool)
	ledger := postgres.NewLedgerRepository(pool)
	maintenance := postgres.NewMaintenanceRepository(pool)
	outbox := postgres.NewOutboxRepository(pool)
	reports := postgres.NewReportingRepository(pool)

	pf := seedPortfolio(t, ctx, authRepo, borrowers, plans, loans)

	t.Run("second active loan rejected by index", func(t *testing.T) {
		start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		_, err := loans.Create(ctx, loandomain.CreateInput{
			BorrowerID:        pf.borrowerID,
			PlanID:            pf.planID,
			PrincipalAmount:   6000,
			InstallmentAmount: 2100,
			StartDate:         start,
			EndDate:           start.AddDate(0, 3, 0),
		})
		if !errors.Is(err, loandomain.ErrActiveLoanExists) {
			t.Fatalf("expected ErrActiveLoanExists, got %v", err)
		}
	})

	t.Run("outstanding principal sums loan principal only", func(t *testing.T) {
		agg, err := reports.LoanAggregates(ctx, "")
		if err != nil {
			t.Fatalf("loan aggregates: %v", err)
		}
		if agg.ActiveLoans != 1 {
			t.Fatalf("expected 1 active loan, got %d", agg.ActiveLoans)
		}
		// The plan's total payable includes interest; the KPI does not.
		if agg.OutstandingPrincipal != 6000 {
			t.Fatalf("expected outstanding principal 6000, got %d", agg.OutstandingPrincipal)
		}
		if agg.ExpectedThisMonth != 2100 {
			t.Fatalf("expected monthly expectation 2100, got %d", agg.ExpectedThisMonth)
		}
	})

	t.Run("installments number sequentially and complete the loan", func(t *testing.T) {
		in := ledgerdomain.RecordPaymentInput{LoanID: pf.loanID, CollectorID: pf.collectorID, Notes: "Mobile collection"}

		for i := int32(1); i <= pf.months; i++ {
			res, err := ledger.InsertInstallment(ctx, in)
			if err != nil {
				t.Fatalf("installment %d: %v", i, err)
			}
			if res.Payment.InstallmentNumber != i {
				t.Fatalf("expected installment %d, got %d", i, res.Payment.InstallmentNumber)
			}
			if res.Completed != (i == pf.months) {
				t.Fatalf("unexpected completion flag at installment %d", i)
			}
		}

		if _, err := ledger.InsertInstallment(ctx, in); !errors.Is(err, ledgerdomain.ErrLoanNotActive) {
			t.Fatalf("expected ErrLoanNotActive after completion, got %v", err)
		}

		got, err := loans.GetByID(ctx, pf.loanID)
		if err != nil {
			t.Fatalf("get loan: %v", err)
		}
		if got.Status != loandomain.StatusCompleted {
			t.Fatalf("expected completed loan, got %s", got.Status)
		}
	})

	t.Run("completion enqueues an outbox job", func(t *testing.T) {
		claimed, err := outbox.ClaimPending(ctx, 10)
		if err != nil {
			t.Fatalf("claim pending: %v", err)
		}
		if len(claimed) != 1 || claimed[0].Topic != "loan_completed" {
			t.Fatalf("expected one loan_completed job, got %+v", claimed)
		}
		if err := outbox.MarkDone(ctx, claimed[0].ID); err != nil {
			t.Fatalf("mark done: %v", err)
		}
	})

	t.Run("completion details cover the full collected amount", func(t *testing.T) {
		details, err := maintenance.GetCompletionDetails(ctx, pf.loanID)
		if err != nil {
			t.Fatalf("completion details: %v", err)
		}
		if details.BorrowerName != "Nimal Perera" || details.TotalCollected != 6300 {
			t.Fatalf("unexpected details: %+v", details)
		}
	})

	t.Run("receipt joins borrower plan and collector", func(t *testing.T) {
		payments, err := ledger.ListPayments(ctx, pf.loanID)
		if err != nil {
			t.Fatalf("list payments: %v", err)
		}
		if len(payments) != int(pf.months) {
			t.Fatalf("expected %d payments, got %d", pf.months, len(payments))
		}

		receipt, err := ledger.GetReceipt(ctx, payments[0].ID)
		if err != nil {
			t.Fatalf("get receipt: %v", err)
		}
		if receipt.BorrowerName != "Nimal Perera" || receipt.CollectorName != "Field Collector" || receipt.PlanName != "Short 3M" {
			t.Fatalf("unexpected receipt: %+v", receipt)
		}
	})

	t.Run("reconcile sweep is a no-op after transactional completion", func(t *testing.T) {
		n, err := maintenance.ReconcileLoanStatuses(ctx)
		if err != nil {
			t.Fatalf("reconcile: %v", err)
		}
		if n != 0 {
			t.Fatalf("expected no rows reconciled, got %d", n)
		}
	})

	t.Run("plan with loans cannot be deleted blindly", func(t *testing.T) {
		n, err := plans.CountLoans(ctx, pf.planID)
		if err != nil {
			t.Fatalf("count loans: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected one loan on plan, got %d", n)
		}
	})

	t.Run("purge reports loan and payment counts", func(t *testing.T) {
		loansDeleted, paymentsDeleted, err := maintenance.DeleteAllLoans(ctx)
		if err != nil {
			t.Fatalf("delete loans: %v", err)
		}
		if loansDeleted != 1 || paymentsDeleted != int64(pf.months) {
			t.Fatalf("unexpected purge counts: loans=%d payments=%d", loansDeleted, paymentsDeleted)
		}
	})
}
