package reporting

import (
	"context"
	"time"
)

const trendMonths = 6

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

// Summary folds loan and payment state into the dashboard KPIs. An
// empty collectorID means the whole book. Collection efficiency is
// collected-this-month over expected-this-month as a percentage,
// capped at 100 and defined as 0 when nothing is expected.
func (s *Service) Summary(ctx context.Context, collectorID string) (*Summary, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	loans, err := s.repo.LoanAggregates(ctx, collectorID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.PaymentAggregates(ctx, collectorID, dayStart, monthStart)
	if err != nil {
		return nil, err
	}

	out := &Summary{
		TotalCollected:       payments.TotalCollected,
		CollectedToday:       payments.CollectedToday,
		CollectedThisMonth:   payments.CollectedThisMonth,
		ActiveLoans:          loans.ActiveLoans,
		OutstandingPrincipal: loans.OutstandingPrincipal,
		ExpectedThisMonth:    loans.ExpectedThisMonth,
	}
	if loans.ExpectedThisMonth > 0 {
		eff := float64(payments.CollectedThisMonth) / float64(loans.ExpectedThisMonth) * 100
		if eff > 100 {
			eff = 100
		}
		out.CollectionEfficiency = eff
	}
	return out, nil
}

// MonthlyTrend returns the last six calendar months of collections,
// oldest first, with zero-filled gaps. Buckets are keyed by
// (year, month) so a January never aliases a January from another
// year.
func (s *Service) MonthlyTrend(ctx context.Context, collectorID string) ([]TrendPoint, error) {
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trendMonths - 1), 0)

	buckets, err := s.repo.MonthlyCollected(ctx, collectorID, first)
	if err != nil {
		return nil, err
	}

	byKey := make(map[[2]int]int64, len(buckets))
	for _, b := range buckets {
		byKey[[2]int{b.Year, b.Month}] = b.Collected
	}

	points := make([]TrendPoint, 0, trendMonths)
	for i := 0; i < trendMonths; i++ {
		m := first.AddDate(0, i, 0)
		points = append(points, TrendPoint{
			Year:      m.Year(),
			Month:     int(m.Month()),
			Label:     m.Month().String()[:3],
			Collected: byKey[[2]int{m.Year(), int(m.Month())}],
		})
	}
	return points, nil
}
