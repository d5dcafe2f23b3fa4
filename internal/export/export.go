package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var (
	ErrUnknownType   = errors.New("unknown export type")
	ErrUnknownFormat = errors.New("unknown export format")
)

// Dataset is a flattened table ready for serialization.
type Dataset struct {
	Type    string
	Headers []string
	Rows    [][]string
}

type Repository interface {
	BorrowerRows(ctx context.Context) (*Dataset, error)
	LoanRows(ctx context.Context) (*Dataset, error)
	PaymentRows(ctx context.Context) (*Dataset, error)
}

// File is a rendered export ready to hand to the HTTP layer.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

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

// Build renders one dataset in the requested format. Filenames follow
// the {type}_export_{YYYY-MM-DD} convention.
func (s *Service) Build(ctx context.Context, exportType, format string) (*File, error) {
	var (
		ds  *Dataset
		err error
	)
	switch strings.ToLower(strings.TrimSpace(exportType)) {
	case "borrowers":
		ds, err = s.repo.BorrowerRows(ctx)
	case "loans":
		ds, err = s.repo.LoanRows(ctx)
	case "payments":
		ds, err = s.repo.PaymentRows(ctx)
	default:
		return nil, ErrUnknownType
	}
	if err != nil {
		return nil, err
	}

	stamp := s.now().Format("2006-01-02")
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		data, err := renderCSV(ds)
		if err != nil {
			return nil, err
		}
		return &File{
			Name:        fmt.Sprintf("%s_export_%s.csv", ds.Type, stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case FormatXLSX:
		data, err := renderXLSX(ds)
		if err != nil {
			return nil, err
		}
		return &File{
			Name:        fmt.Sprintf("%s_export_%s.xlsx", ds.Type, stamp),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return nil, ErrUnknownFormat
	}
}

func renderCSV(ds *Dataset) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(ds.Headers); err != nil {
		return nil, err
	}
	for _, row := range ds.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(ds *Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := make([]any, len(ds.Headers))
	for i, h := range ds.Headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}
	for i, row := range ds.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
