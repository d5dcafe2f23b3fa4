package ledger

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrLoanNotActive       = errors.New("loan is not active")
	ErrScheduleExhausted   = errors.New("all installments are already collected")
	ErrInstallmentConflict = errors.New("installment number already taken")
	ErrInvalidAmount       = errors.New("payment amount must be positive")
	ErrMissingLoanID       = errors.New("missing loan id")
	ErrMissingCollectorID  = errors.New("missing collector id")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// RecordPayment collects the next installment of an active loan. The
// repository performs the insert and any completion transition in one
// transaction; duplicate installment numbers are ruled out by the
// (loan_id, installment_number) unique index even under concurrent
// collectors.
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput) (*RecordResult, error) {
	if strings.TrimSpace(in.LoanID) == "" {
		return nil, ErrMissingLoanID
	}
	if strings.TrimSpace(in.CollectorID) == "" {
		return nil, ErrMissingCollectorID
	}
	if in.AmountOverride != nil && *in.AmountOverride <= 0 {
		return nil, ErrInvalidAmount
	}
	in.Notes = strings.TrimSpace(in.Notes)
	return s.repo.InsertInstallment(ctx, in)
}

// Progress derives the repayment position of a loan from its payment
// count. Purely read-side; the same snapshot always yields the same
// answer.
func (s *Service) Progress(ctx context.Context, loanID string) (*Progress, error) {
	terms, err := s.repo.GetLoanTerms(ctx, loanID)
	if err != nil {
		return nil, err
	}
	paid, err := s.repo.CountPayments(ctx, loanID)
	if err != nil {
		return nil, err
	}

	out := &Progress{
		LoanID:         terms.LoanID,
		PaidCount:      paid,
		DurationMonths: terms.DurationMonths,
		Complete:       paid >= terms.DurationMonths,
	}
	if !out.Complete {
		out.NextInstallment = paid + 1
		out.NextAmount = terms.InstallmentAmount
	}
	return out, nil
}

// Schedule reconstructs the full repayment schedule: one entry per
// installment with its due date and whether it has been collected.
// An unpaid installment whose due date has passed is reported late.
func (s *Service) Schedule(ctx context.Context, loanID string) ([]ScheduleEntry, error) {
	terms, err := s.repo.GetLoanTerms(ctx, loanID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, loanID)
	if err != nil {
		return nil, err
	}

	byNumber := make(map[int32]Payment, len(payments))
	for _, p := range payments {
		byNumber[p.InstallmentNumber] = p
	}

	today := s.now()
	entries := make([]ScheduleEntry, 0, terms.DurationMonths)
	for i := int32(1); i <= terms.DurationMonths; i++ {
		entry := ScheduleEntry{
			Installment: i,
			DueDate:     terms.StartDate.AddDate(0, int(i), 0),
			Amount:      terms.InstallmentAmount,
			Status:      InstallmentPending,
		}
		if p, ok := byNumber[i]; ok {
			entry.Status = InstallmentPaid
			paidAt := p.CollectedAt
			entry.PaidAt = &paidAt
			entry.CollectorID = p.CollectorID
			entry.Amount = p.Amount
		} else if today.After(entry.DueDate) {
			entry.Status = InstallmentLate
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) Payments(ctx context.Context, loanID string) ([]Payment, error) {
	return s.repo.ListPayments(ctx, loanID)
}

func (s *Service) Receipt(ctx context.Context, paymentID string) (*Receipt, error) {
	return s.repo.GetReceipt(ctx, paymentID)
}
