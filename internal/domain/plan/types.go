package plan

import (
	"context"
	"time"
)

type Entity struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	PrincipalAmount   int64     `json:"principal_amount"`
	DurationMonths    int32     `json:"duration_months"`
	InterestRatePct   float64   `json:"interest_rate_pct"`
	TotalPayable      int64     `json:"total_payable"`
	InstallmentAmount int64     `json:"installment_amount"`
	CreatedAt         time.Time `json:"created_at"`
}

type CreateInput struct {
	Name            string
	PrincipalAmount int64
	DurationMonths  int32
	InterestRatePct float64
}

type Repository interface {
	Create(ctx context.Context, in CreateInput, totalPayable, installment int64) (*Entity, error)
	GetByID(ctx context.Context, id int64) (*Entity, error)
	List(ctx context.Context) ([]Entity, error)
	CountLoans(ctx context.Context, planID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}
