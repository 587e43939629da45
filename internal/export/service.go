// Package export renders extracted invoice records as XLSX, CSV and
// schema-validated JSON for downstream reporting tools.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
)

// Service turns invoice records into export bytes. It is stateless.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var invoiceHeaders = []string{
	"Order Number",
	"Order Date",
	"Format",
	"Language",
	"Currency",
	"Subtotal",
	"Shipping",
	"Tax",
	"Total",
	"Items",
	"Score",
	"Valid",
}

var itemHeaders = []string{
	"Order Number",
	"ASIN",
	"Description",
	"Quantity",
	"Unit Price",
	"Total Price",
	"Currency",
	"Confidence",
}

// WriteXLSX returns a workbook with an Invoices sheet (one row per
// record) and a Line Items sheet.
func (s *Service) WriteXLSX(records []*entity.InvoiceRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const invoiceSheet = "Invoices"
	const itemSheet = "Line Items"

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(itemSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	writeCell := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for i, h := range invoiceHeaders {
		writeCell(invoiceSheet, i+1, 1, h)
	}
	for i, h := range itemHeaders {
		writeCell(itemSheet, i+1, 1, h)
	}

	itemRow := 2
	for ri, rec := range records {
		row := ri + 2
		for ci, v := range invoiceRow(rec) {
			writeCell(invoiceSheet, ci+1, row, v)
		}
		for _, it := range rec.Items {
			values := []any{
				rec.OrderNumber,
				it.ASIN,
				truncate(it.Description, 140),
				it.Quantity,
				it.UnitPrice.StringFixed(2),
				it.TotalPrice.StringFixed(2),
				it.Currency,
				it.Confidence,
			}
			for ci, v := range values {
				writeCell(itemSheet, ci+1, itemRow, v)
			}
			itemRow++
		}
	}

	_ = f.SetColWidth(invoiceSheet, "A", "A", 22)
	_ = f.SetColWidth(invoiceSheet, "B", "B", 12)
	_ = f.SetColWidth(invoiceSheet, "E", "I", 12)
	_ = f.SetColWidth(itemSheet, "A", "B", 22)
	_ = f.SetColWidth(itemSheet, "C", "C", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"invoices", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteCSV returns one CSV row per invoice, same shape as the XLSX
// Invoices sheet.
func (s *Service) WriteCSV(records []*entity.InvoiceRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(invoiceHeaders); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for _, rec := range records {
		row := invoiceRow(rec)
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprintf("%v", v)
		}
		if err := w.Write(cells); err != nil {
			return nil, fmt.Errorf("csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}

	s.logger.Info("export.csv.ok", "invoices", len(records))
	return buf.Bytes(), nil
}

func invoiceRow(rec *entity.InvoiceRecord) []any {
	date := ""
	if rec.OrderDate != nil {
		date = rec.OrderDate.Format("2006-01-02")
	}
	score, valid := 0, false
	if rec.Validation != nil {
		score, valid = rec.Validation.Score, rec.Validation.IsValid
	}
	return []any{
		rec.OrderNumber,
		date,
		string(rec.Format),
		string(rec.Language),
		rec.Currency,
		optAmount(rec.Subtotal),
		optAmount(rec.Shipping),
		optAmount(rec.Tax),
		optAmount(rec.Total),
		strconv.Itoa(len(rec.Items)),
		strconv.Itoa(score),
		strconv.FormatBool(valid),
	}
}

func optAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
