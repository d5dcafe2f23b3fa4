package loan

import (
	"context"
	"time"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusDefaulted = "defaulted"
)

// FirstLoanPrincipalCap is the largest principal a borrower with no
// loan history may be issued, in whole rupees.
const FirstLoanPrincipalCap int64 = 20000

type Entity struct {
	ID                string    `json:"id"`
	BorrowerID        string    `json:"borrower_id"`
	PlanID            int64     `json:"plan_id"`
	PrincipalAmount   int64     `json:"principal_amount"`
	InstallmentAmount int64     `json:"installment_amount"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CreateInput struct {
	BorrowerID        string
	PlanID            int64
	PrincipalAmount   int64
	InstallmentAmount int64
	StartDate         time.Time
	EndDate           time.Time
}

// ListItem is the joined row shown on loan listings.
type ListItem struct {
	Entity
	BorrowerName string `json:"borrower_name"`
	PlanName     string `json:"plan_name"`
}

type ListFilter struct {
	BorrowerID  string
	Status      string
	CollectorID string
	Limit       int32
	Offset      int32
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]ListItem, error)
	CountByBorrower(ctx context.Context, borrowerID string) (int64, error)
	CountActiveByBorrower(ctx context.Context, borrowerID string) (int64, error)
	MarkDefaulted(ctx context.Context, loanID string) error
}
