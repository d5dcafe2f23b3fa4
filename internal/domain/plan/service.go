package plan

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrMissingName = errors.New("plan name is required")
	ErrPlanInUse   = errors.New("plan is referenced by existing loans")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Entity, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrMissingName
	}
	terms, err := ComputeTerms(in.PrincipalAmount, in.InterestRatePct, in.DurationMonths)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in, terms.TotalPayable, terms.InstallmentAmount)
}

func (s *Service) Get(ctx context.Context, id int64) (*Entity, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Entity, error) {
	return s.repo.List(ctx)
}

// Delete removes an unreferenced plan. Plans become immutable once a
// loan points at them; the FK RESTRICT backs this check up.
func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.repo.CountLoans(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrPlanInUse
	}
	return s.repo.Delete(ctx, id)
}
