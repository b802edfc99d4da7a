package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/leadlens/leadlens/internal/metrics"
	"github.com/leadlens/leadlens/internal/model"
)

// DefaultExportMaxRows caps an export when no explicit limit is configured.
const DefaultExportMaxRows = 10000

const exportSheet = "Companies"

var exportHeader = []string{
	"Company Name", "Phone", "Email", "Website",
	"Country", "Keywords", "Email Status", "Created At",
}

// Export is a generated workbook ready to stream to the client.
type Export struct {
	Filename string
	Content  []byte
}

// ExportService renders a user's companies as an Excel workbook.
type ExportService struct {
	store   CompanyStore
	metrics metrics.Recorder
	maxRows int
}

// NewExportService creates a new ExportService. maxRows caps the
// number of exported companies; values below 1 fall back to the
// default cap.
func NewExportService(store CompanyStore, recorder metrics.Recorder, maxRows int) *ExportService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if maxRows < 1 {
		maxRows = DefaultExportMaxRows
	}
	return &ExportService{store: store, metrics: recorder, maxRows: maxRows}
}

// Generate builds a workbook of the user's companies matching the
// filter, newest first, capped at the configured row limit.
func (s *ExportService) Generate(ctx context.Context, userID string, filter model.CompanyFilter) (*Export, error) {
	companies, _, err := s.store.ListCompanies(ctx, userID, filter, 1, s.maxRows)
	if err != nil {
		return nil, err
	}

	buf, err := buildWorkbook(companies)
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	s.metrics.IncExportGenerated()

	return &Export{
		Filename: fmt.Sprintf("companies_%s.xlsx", time.Now().UTC().Format("2006-01-02")),
		Content:  buf.Bytes(),
	}, nil
}

func buildWorkbook(companies []model.Company) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return nil, err
	}

	for i, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return nil, err
		}
	}
	endCell, err := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", endCell, headerStyle); err != nil {
		return nil, err
	}

	for rowIdx, c := range companies {
		values := []any{
			c.CompanyName,
			deref(c.Phone),
			deref(c.Email),
			deref(c.Website),
			c.Country,
			c.Keywords,
			string(c.EmailStatus),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "H", 24); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}
