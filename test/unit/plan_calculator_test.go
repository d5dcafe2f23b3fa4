package unit

import (
	"errors"
	"testing"

	plandomain "github.com/stratosmfi/backend/internal/domain/plan"
)

func TestComputeTermsFlatRate(t *testing.T) {
	terms, err := plandomain.ComputeTerms(20000, 20, 12)
	if err != nil {
		t.Fatalf("compute terms: %v", err)
	}
	if terms.TotalPayable != 24000 {
		t.Fatalf("expected total 24000, got %d", terms.TotalPayable)
	}
	if terms.InstallmentAmount != 2000 {
		t.Fatalf("expected installment 2000, got %d", terms.InstallmentAmount)
	}
}

func TestComputeTermsPartialYear(t *testing.T) {
	terms, err := plandomain.ComputeTerms(10000, 15, 6)
	if err != nil {
		t.Fatalf("compute terms: %v", err)
	}
	if terms.TotalPayable != 10750 {
		t.Fatalf("expected total 10750, got %d", terms.TotalPayable)
	}
	if terms.InstallmentAmount != 1792 {
		t.Fatalf("expected installment 1792, got %d", terms.InstallmentAmount)
	}
}

func TestComputeTermsRoundsUp(t *testing.T) {
	terms, err := plandomain.ComputeTerms(1000, 7.5, 5)
	if err != nil {
		t.Fatalf("compute terms: %v", err)
	}
	if terms.TotalPayable != 1032 {
		t.Fatalf("expected total 1032, got %d", terms.TotalPayable)
	}
	if terms.InstallmentAmount != 207 {
		t.Fatalf("expected installment 207, got %d", terms.InstallmentAmount)
	}
}

func TestComputeTermsZeroRate(t *testing.T) {
	terms, err := plandomain.ComputeTerms(12000, 0, 12)
	if err != nil {
		t.Fatalf("compute terms: %v", err)
	}
	if terms.TotalPayable != 12000 || terms.InstallmentAmount != 1000 {
		t.Fatalf("unexpected terms: %+v", terms)
	}
}

func TestComputeTermsRejectsInvalidInput(t *testing.T) {
	if _, err := plandomain.ComputeTerms(0, 20, 12); !errors.Is(err, plandomain.ErrInvalidPrincipal) {
		t.Fatalf("expected ErrInvalidPrincipal, got %v", err)
	}
	if _, err := plandomain.ComputeTerms(1000, 20, 0); !errors.Is(err, plandomain.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if _, err := plandomain.ComputeTerms(1000, -5, 12); !errors.Is(err, plandomain.ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}
