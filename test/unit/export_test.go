package unit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stratosmfi/backend/internal/export"
	"github.com/xuri/excelize/v2"
)

type exportRepoMock struct{}

func (m *exportRepoMock) BorrowerRows(_ context.Context) (*export.Dataset, error) {
	return &export.Dataset{
		Type:    "borrowers",
		Headers: []string{"full_name", "nic_number"},
		Rows:    [][]string{{"Nimal Perera", "901234567V"}, {"Kamala Silva", "887654321V"}},
	}, nil
}

func (m *exportRepoMock) LoanRows(_ context.Context) (*export.Dataset, error) {
	return &export.Dataset{Type: "loans", Headers: []string{"borrower_name"}}, nil
}

func (m *exportRepoMock) PaymentRows(_ context.Context) (*export.Dataset, error) {
	return &export.Dataset{Type: "payments", Headers: []string{"amount"}}, nil
}

func TestExportCSVFilenameAndContent(t *testing.T) {
	svc := export.NewService(&exportRepoMock{})

	file, err := svc.Build(context.Background(), "borrowers", "csv")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := fmt.Sprintf("borrowers_export_%s.csv", time.Now().UTC().Format("2006-01-02"))
	if file.Name != want {
		t.Fatalf("expected filename %s, got %s", want, file.Name)
	}
	if file.ContentType != "text/csv" {
		t.Fatalf("unexpected content type %s", file.ContentType)
	}

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "full_name,nic_number" {
		t.Fatalf("unexpected header line %q", lines[0])
	}
	if !strings.Contains(lines[1], "Nimal Perera") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}

func TestExportXLSXRoundTrips(t *testing.T) {
	svc := export.NewService(&exportRepoMock{})

	file, err := svc.Build(context.Background(), "borrowers", "xlsx")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.HasSuffix(file.Name, ".xlsx") {
		t.Fatalf("expected .xlsx filename, got %s", file.Name)
	}

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows(book.GetSheetName(0))
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "full_name" || rows[1][0] != "Nimal Perera" {
		t.Fatalf("unexpected sheet contents: %v", rows)
	}
}

func TestExportRejectsUnknownInputs(t *testing.T) {
	svc := export.NewService(&exportRepoMock{})

	if _, err := svc.Build(context.Background(), "collectors", "csv"); !errors.Is(err, export.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if _, err := svc.Build(context.Background(), "loans", "pdf"); !errors.Is(err, export.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
