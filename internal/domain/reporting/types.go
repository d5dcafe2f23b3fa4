package reporting

import (
	"context"
	"time"
)

// Summary is the dashboard KPI block, optionally scoped to one
// collector's portfolio.
type Summary struct {
	TotalCollected        int64   `json:"total_collected"`
	CollectedToday        int64   `json:"collected_today"`
	CollectedThisMonth    int64   `json:"collected_this_month"`
	ActiveLoans           int64   `json:"active_loans"`
	OutstandingPrincipal  int64   `json:"outstanding_principal"`
	ExpectedThisMonth     int64   `json:"expected_this_month"`
	CollectionEfficiency  float64 `json:"collection_efficiency"`
}

type TrendPoint struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Label     string `json:"label"`
	Collected int64  `json:"collected"`
}

// LoanAggregates are the folds over the loans table.
type LoanAggregates struct {
	ActiveLoans          int64
	OutstandingPrincipal int64
	ExpectedThisMonth    int64
}

// PaymentAggregates are the folds over the payments table.
type PaymentAggregates struct {
	TotalCollected     int64
	CollectedToday     int64
	CollectedThisMonth int64
}

// MonthBucket is one (year, month) collected sum from the store.
type MonthBucket struct {
	Year      int
	Month     int
	Collected int64
}

type Repository interface {
	LoanAggregates(ctx context.Context, collectorID string) (*LoanAggregates, error)
	PaymentAggregates(ctx context.Context, collectorID string, dayStart, monthStart time.Time) (*PaymentAggregates, error)
	MonthlyCollected(ctx context.Context, collectorID string, from time.Time) ([]MonthBucket, error)
}
