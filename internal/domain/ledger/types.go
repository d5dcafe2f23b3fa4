package ledger

import (
	"context"
	"time"
)

const (
	InstallmentPaid    = "paid"
	InstallmentPending = "pending"
	InstallmentLate    = "late"
)

type Payment struct {
	ID                string    `json:"id"`
	Seq               int64     `json:"-"`
	LoanID            string    `json:"loan_id"`
	CollectorID       *string   `json:"collector_id"`
	Amount            int64     `json:"amount"`
	InstallmentNumber int32     `json:"installment_number"`
	Notes             string    `json:"notes"`
	CollectedAt       time.Time `json:"collected_at"`
}

// Receipt carries the joined fields a payment receipt is built from.
type Receipt struct {
	Payment
	BorrowerName  string `json:"borrower_name"`
	BorrowerNIC   string `json:"borrower_nic"`
	CollectorName string `json:"collector_name"`
	PlanName      string `json:"plan_name"`
}

// LoanTerms is the slice of loan+plan state the ledger operates on.
type LoanTerms struct {
	LoanID            string
	BorrowerID        string
	Status            string
	InstallmentAmount int64
	DurationMonths    int32
	StartDate         time.Time
}

type RecordPaymentInput struct {
	LoanID         string
	CollectorID    string
	AmountOverride *int64
	Notes          string
}

// RecordResult reports the payment written and whether it completed
// the loan.
type RecordResult struct {
	Payment   Payment
	Completed bool
}

type ScheduleEntry struct {
	Installment int32      `json:"installment"`
	DueDate     time.Time  `json:"due_date"`
	Amount      int64      `json:"amount"`
	Status      string     `json:"status"`
	PaidAt      *time.Time `json:"paid_at"`
	CollectorID *string    `json:"collector_id"`
}

// Progress summarizes how far along a loan's repayment is.
type Progress struct {
	LoanID          string `json:"loan_id"`
	PaidCount       int32  `json:"paid_count"`
	DurationMonths  int32  `json:"duration_months"`
	NextInstallment int32  `json:"next_installment"`
	NextAmount      int64  `json:"next_amount"`
	Complete        bool   `json:"complete"`
}

type Repository interface {
	GetLoanTerms(ctx context.Context, loanID string) (*LoanTerms, error)
	CountPayments(ctx context.Context, loanID string) (int32, error)
	// InsertInstallment runs the whole write transactionally: lock the
	// loan row, assign the next installment number, insert the payment,
	// flip the loan to completed when the schedule is filled, and
	// enqueue the completion outbox job in the same transaction.
	InsertInstallment(ctx context.Context, in RecordPaymentInput) (*RecordResult, error)
	ListPayments(ctx context.Context, loanID string) ([]Payment, error)
	GetReceipt(ctx context.Context, paymentID string) (*Receipt, error)
}
