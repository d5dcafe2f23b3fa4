package borrower

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrMissingFields = errors.New("full name and NIC number are required")
	ErrInvalidStatus = errors.New("status must be active or inactive")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, in CreateInput) (*Entity, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.NICNumber = strings.TrimSpace(in.NICNumber)
	if in.FullName == "" || in.NICNumber == "" {
		return nil, ErrMissingFields
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Get(ctx context.Context, id string) (*Entity, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != StatusActive && status != StatusInactive {
		return ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// AssignCollector links a borrower to the field collector responsible
// for them; a nil collectorID clears the assignment.
func (s *Service) AssignCollector(ctx context.Context, id string, collectorID *string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("missing borrower id")
	}
	return s.repo.AssignCollector(ctx, id, collectorID)
}
