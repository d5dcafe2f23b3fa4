package loan

import (
	"context"
	"errors"
	"strings"
	"time"

	borrowerdomain "github.com/stratosmfi/backend/internal/domain/borrower"
	plandomain "github.com/stratosmfi/backend/internal/domain/plan"
)

var (
	ErrActiveLoanExists  = errors.New("borrower already has an active loan")
	ErrFirstLoanLimit    = errors.New("first-time borrowers are limited to a principal of 20000")
	ErrBorrowerInactive  = errors.New("borrower is not active")
	ErrLoanNotActive     = errors.New("loan is not active")
	ErrMissingBorrowerID = errors.New("missing borrower id")
)

type BorrowerRepository interface {
	GetByID(ctx context.Context, id string) (*borrowerdomain.Entity, error)
}

type PlanRepository interface {
	GetByID(ctx context.Context, id int64) (*plandomain.Entity, error)
}

type Service struct {
	borrowerRepo BorrowerRepository
	planRepo     PlanRepository
	loanRepo     Repository
	now          func() time.Time
}

func NewService(borrowerRepo BorrowerRepository, planRepo PlanRepository, loanRepo Repository) *Service {
	return &Service{
		borrowerRepo: borrowerRepo,
		planRepo:     planRepo,
		loanRepo:     loanRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Issue instantiates a plan for a borrower after the issuance policy
// passes: the borrower holds no active loan, and first-time borrowers
// stay under the principal cap. The partial unique index on active
// loans closes the check-then-insert race; a violation surfaces as
// ErrActiveLoanExists from the repository.
func (s *Service) Issue(ctx context.Context, borrowerID string, planID int64) (*Entity, error) {
	if strings.TrimSpace(borrowerID) == "" {
		return nil, ErrMissingBorrowerID
	}

	b, err := s.borrowerRepo.GetByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if b.Status != borrowerdomain.StatusActive {
		return nil, ErrBorrowerInactive
	}

	p, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	active, err := s.loanRepo.CountActiveByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, ErrActiveLoanExists
	}

	total, err := s.loanRepo.CountByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if total == 0 && p.PrincipalAmount > FirstLoanPrincipalCap {
		return nil, ErrFirstLoanLimit
	}

	start := s.now().Truncate(24 * time.Hour)
	return s.loanRepo.Create(ctx, CreateInput{
		BorrowerID:        borrowerID,
		PlanID:            p.ID,
		PrincipalAmount:   p.PrincipalAmount,
		InstallmentAmount: p.InstallmentAmount,
		StartDate:         start,
		EndDate:           start.AddDate(0, int(p.DurationMonths), 0),
	})
}

func (s *Service) Get(ctx context.Context, loanID string) (*Entity, error) {
	return s.loanRepo.GetByID(ctx, loanID)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]ListItem, error) {
	return s.loanRepo.List(ctx, f)
}

// MarkDefaulted is the administrative transition out of active; the
// repository refuses it for completed or defaulted loans.
func (s *Service) MarkDefaulted(ctx context.Context, loanID string) error {
	if strings.TrimSpace(loanID) == "" {
		return errors.New("missing loan id")
	}
	return s.loanRepo.MarkDefaulted(ctx, loanID)
}
