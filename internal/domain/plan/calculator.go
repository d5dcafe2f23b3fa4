package plan

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidDuration  = errors.New("duration must be a positive number of months")
	ErrInvalidRate      = errors.New("interest rate must not be negative")
)

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// Terms is the derived repayment arithmetic of a flat-rate plan.
type Terms struct {
	TotalPayable      int64
	InstallmentAmount int64
}

// ComputeTerms turns (principal, annual flat rate percent, duration in
// months) into the total payable and the fixed monthly installment.
//
//	total = principal * (1 + rate/100 * months/12)
//	installment = ceil(total / months)
//
// The installment is rounded up to whole rupees so the schedule never
// under-collects; the final installment over-collects by at most
// months-1 rupees.
func ComputeTerms(principal int64, annualRatePct float64, durationMonths int32) (Terms, error) {
	if principal <= 0 {
		return Terms{}, ErrInvalidPrincipal
	}
	if durationMonths <= 0 {
		return Terms{}, ErrInvalidDuration
	}
	rate := decimal.NewFromFloat(annualRatePct)
	if rate.IsNegative() {
		return Terms{}, ErrInvalidRate
	}

	p := decimal.NewFromInt(principal)
	months := decimal.NewFromInt(int64(durationMonths))

	interest := p.Mul(rate).Div(hundred).Mul(months).Div(monthsInYear)
	total := p.Add(interest).Ceil()
	installment := total.Div(months).Ceil()

	return Terms{
		TotalPayable:      total.IntPart(),
		InstallmentAmount: installment.IntPart(),
	}, nil
}
