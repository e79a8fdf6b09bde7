package service

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

// exportHeaders is the ERP line-level extract layout
var exportHeaders = []string{
	"LINE_ID",
	"REPORT_ID",
	"STATUS",
	"EMPLOYEE_NAME",
	"EXPENSE_DATE",
	"GL_SEGMENT1",
	"CATEGORY",
	"DESCRIPTION",
	"CURRENCY",
	"CLAIM_AMOUNT",
	"EXCHANGE_RATE",
	"TAX_AMOUNT",
}

// glCodeMissing is exported when a line references a deleted category
const glCodeMissing = "ERROR"

// ExportFilter narrows the extract by report creation date and status.
// Dates are YYYY-MM-DD, inclusive on both ends; empty means unbounded.
// An empty or "ALL" status matches every report.
type ExportFilter struct {
	From   string
	To     string
	Status string
}

// ExportLine is one claim item flattened for the ERP
type ExportLine struct {
	LineID       string `json:"line_id"`
	ReportID     string `json:"report_id"`
	Status       string `json:"status"`
	EmployeeName string `json:"employee_name"`
	ExpenseDate  string `json:"expense_date"`
	GLSegment    string `json:"gl_segment1"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	Currency     string `json:"currency"`
	ClaimAmount  string `json:"claim_amount"`
	ExchangeRate string `json:"exchange_rate"`
	TaxAmount    string `json:"tax_amount"`
}

// ExportService produces the line-level ERP extract in CSV and XLSX
// form. Formatting only; no financial posting happens here.
type ExportService struct {
	reports    ReportStore
	categories CategoryStore
	logger     *zap.Logger
}

// NewExportService creates a new export service
func NewExportService(reports ReportStore, categories CategoryStore, logger *zap.Logger) *ExportService {
	return &ExportService{reports: reports, categories: categories, logger: logger}
}

// Lines flattens the filtered reports into one row per claim item
func (s *ExportService) Lines(filter ExportFilter) ([]ExportLine, error) {
	reports, err := s.reports.List()
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]entity.ExpenseCategory, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	lines := make([]ExportLine, 0)
	for _, report := range reports {
		if !matchesFilter(report, filter) {
			continue
		}
		for _, item := range report.Items {
			glCode, name := glCodeMissing, glCodeMissing
			if category, ok := byID[item.CategoryID]; ok {
				glCode, name = category.GLCode, category.Name
			}
			lines = append(lines, ExportLine{
				LineID:       item.ID,
				ReportID:     report.ID,
				Status:       report.Status.String(),
				EmployeeName: report.UserName,
				ExpenseDate:  item.Date,
				GLSegment:    glCode,
				Category:     name,
				Description:  item.Description,
				Currency:     report.ClaimCurrency,
				ClaimAmount:  item.ClaimAmount.StringFixed(2),
				ExchangeRate: item.ExchangeRate.String(),
				TaxAmount:    item.TaxAmount.StringFixed(2),
			})
		}
	}

	s.logger.Info("Export extract built",
		zap.Int("lines", len(lines)),
		zap.String("from", filter.From),
		zap.String("to", filter.To),
		zap.String("status", filter.Status))
	return lines, nil
}

func matchesFilter(report entity.ExpenseReport, filter ExportFilter) bool {
	date := report.CreatedAt.Format("2006-01-02")
	if filter.From != "" && date < filter.From {
		return false
	}
	if filter.To != "" && date > filter.To {
		return false
	}
	if filter.Status != "" && filter.Status != "ALL" && report.Status.String() != filter.Status {
		return false
	}
	return true
}

// WriteCSV renders the extract as CSV
func (s *ExportService) WriteCSV(w io.Writer, lines []ExportLine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, line := range lines {
		if err := cw.Write(line.record()); err != nil {
			return fmt.Errorf("write csv line: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders the extract as an XLSX workbook
func (s *ExportService) WriteXLSX(w io.Writer, lines []ExportLine) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Export"
	f.SetSheetName("Sheet1", sheet)

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, line := range lines {
		record := line.record()
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write xlsx line: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func (l ExportLine) record() []string {
	return []string{
		l.LineID,
		l.ReportID,
		l.Status,
		l.EmployeeName,
		l.ExpenseDate,
		l.GLSegment,
		l.Category,
		l.Description,
		l.Currency,
		l.ClaimAmount,
		l.ExchangeRate,
		l.TaxAmount,
	}
}
