// Package parser turns normalized invoice text into InvoiceRecords.
// One parser exists per supported (format, language) pair; a static
// registry selects the variant and an English generic parser backstops
// every unknown combination.
package parser

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/validate"
)

// Parser extracts the fields of one invoice. The individual field
// extractors return zero values on absence and never fail; only
// Extract as a whole can fail, and it fails with a CategorizedError.
type Parser interface {
	Format() constants.InvoiceFormat
	Language() constants.Language

	ExtractOrderNumber(text string) string
	ExtractOrderDate(text string) *time.Time
	ExtractItems(text string) []entity.LineItem
	ExtractSubtotal(text string) *decimal.Decimal
	ExtractShipping(text string) *decimal.Decimal
	ExtractTax(text string) *decimal.Decimal
	ExtractTotal(text string) *decimal.Decimal

	Extract(text string) (*entity.InvoiceRecord, error)
}

// preparer is the optional format-specific preprocessing hook; business
// parsers reassemble wrapped price-table rows before scanning.
type preparer interface {
	prepare(text string) string
}

// Deps carries the collaborators every parser shares.
type Deps struct {
	Log    *slog.Logger
	Engine *validate.Engine
	Policy validate.Policy
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Policy.OCRMergeThreshold.IsZero() {
		d.Policy = validate.DefaultPolicy()
	}
	if d.Engine == nil {
		d.Engine = validate.NewEngine(d.Policy, d.Log)
	}
	return d
}
