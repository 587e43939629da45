// Package recovery categorizes pipeline failures and salvages partial
// invoice data when the normal extraction path has already failed. It
// works on lightly normalized text and deliberately bypasses format
// and language dispatch: the dispatching pipeline is the thing that
// broke.
package recovery

import (
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/money"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/preprocess"
)

// usableFloor is the per-field confidence both critical fields (order
// number, order date) need before a partial result counts as usable.
const usableFloor = 0.5

// suggestions maps each error category to its canned remediation.
var suggestions = map[constants.ErrorCategory]string{
	constants.FileAccessError:      "check that the file exists and the process can read it",
	constants.PDFParsingError:      "re-run text extraction; the PDF may be image-only or damaged",
	constants.FieldExtractionError: "review the invoice layout manually; partial data may be usable",
	constants.ValidationWarning:    "review the flagged amounts before trusting the totals",
	constants.UnknownError:         "retry the extraction and use any extracted data that is present",
}

// categoryPatterns route an error message into the taxonomy. First
// match wins; anything unmatched is an unknown (recoverable) error.
var categoryPatterns = []struct {
	re       *regexp.Regexp
	category constants.ErrorCategory
}{
	{regexp.MustCompile(`(?i)no such file|file not found|permission denied|access denied|cannot open`), constants.FileAccessError},
	{regexp.MustCompile(`(?i)pdf|empty invoice text|encoding|corrupt`), constants.PDFParsingError},
	{regexp.MustCompile(`(?i)extract|field|parse|no recognizable`), constants.FieldExtractionError},
	{regexp.MustCompile(`(?i)validation`), constants.ValidationWarning},
}

// Categorize maps err onto the fixed taxonomy. An error that already
// is a CategorizedError keeps its category and only gains the canned
// suggestion.
func Categorize(err error, context string) *entity.CategorizedError {
	var catErr *entity.CategorizedError
	if errors.As(err, &catErr) {
		if catErr.Suggestion == "" {
			catErr.Suggestion = suggestions[catErr.Type]
		}
		if catErr.Context == "" {
			catErr.Context = context
		}
		return catErr
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	category := constants.UnknownError
	for _, cp := range categoryPatterns {
		if cp.re.MatchString(msg) {
			category = cp.category
			break
		}
	}

	out := entity.NewCategorizedError(category, msg, context, err)
	out.Suggestion = suggestions[category]
	return out
}

// Defensive generic patterns: order number, a handful of date shapes
// across the supported locales, and a labeled total.
var (
	orderNumberRe = regexp.MustCompile(`\b(\d{3}-\d{7}-\d{7})\b`)

	datePatterns = []struct {
		re      *regexp.Regexp
		dayIdx  int
		monIdx  int
		yearIdx int
	}{
		{regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`), 1, 2, 3},
		{regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`), 3, 2, 1},
		{regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`), 1, 2, 3},
		{regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`), 3, 2, 1},
	}

	totalRe = regexp.MustCompile(`(?i)(?:grand\s+total|order\s+total|gesamtsumme|gesamtbetrag|montant\s+total|importe\s+total|totale\s+ordine|注文合計|合計|\btotal\b)[^0-9]{0,40}(\d[\d.,' ]*\d|\d)`)
)

// Recoverer performs best-effort partial extraction after a hard
// parser failure.
type Recoverer struct {
	norm *preprocess.Normalizer
	log  *slog.Logger
}

func NewRecoverer(log *slog.Logger) *Recoverer {
	if log == nil {
		log = slog.Default()
	}
	return &Recoverer{norm: preprocess.NewNormalizer(), log: log}
}

// ExtractPartial re-runs a minimal subset of field extraction directly
// against the raw text. Each recovered field gets confidence 1.0, each
// missing one 0.0 plus a field error entry; the result is usable iff
// both critical fields were recovered.
func (r *Recoverer) ExtractPartial(raw string, cause error) *entity.InvoiceRecord {
	text := r.norm.Normalize(raw)

	meta := &entity.ExtractionMetadata{
		Mode:              entity.RecoveryModePartial,
		Confidence:        map[string]float64{},
		Errors:            []entity.FieldError{},
		RecoveryAttempted: true,
	}
	rec := &entity.InvoiceRecord{
		Vendor:   entity.VendorAmazon,
		Items:    []entity.LineItem{},
		Metadata: meta,
	}

	mark := func(field string, found bool) {
		if found {
			meta.Confidence[field] = 1.0
			return
		}
		meta.Confidence[field] = 0.0
		meta.Errors = append(meta.Errors, entity.FieldError{
			Field: field,
			Type:  entity.FieldNotFound,
		})
	}

	if m := orderNumberRe.FindStringSubmatch(text); m != nil {
		rec.OrderNumber = m[1]
	}
	mark("order_number", rec.OrderNumber != "")

	rec.OrderDate = findDate(text)
	mark("order_date", rec.OrderDate != nil)

	if m := totalRe.FindStringSubmatch(text); m != nil {
		if d, err := money.Parse(m[1], money.AutoDetect); err == nil && d.IsPositive() {
			rec.Total = &d
		}
	}
	mark("total", rec.Total != nil)

	rec.Currency = money.DetectCurrency(text)
	mark("currency", rec.Currency != "")

	sum := 0.0
	for _, c := range meta.Confidence {
		sum += c
	}
	meta.Confidence["overall"] = sum / 4
	meta.Usable = meta.Confidence["order_number"] >= usableFloor &&
		meta.Confidence["order_date"] >= usableFloor

	r.log.Info("recovery.partial.done",
		"order_number", rec.OrderNumber,
		"usable", meta.Usable,
		"overall_confidence", meta.Confidence["overall"],
		"cause", causeMessage(cause))
	return rec
}

func findDate(text string) *time.Time {
	for _, dp := range datePatterns {
		m := dp.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		year, mon, day := atoi(m[dp.yearIdx]), atoi(m[dp.monIdx]), atoi(m[dp.dayIdx])
		if year < 1995 || year > 2100 || mon < 1 || mon > 12 || day < 1 || day > 31 {
			continue
		}
		ts := time.Date(year, time.Month(mon), day, 0, 0, 0, 0, time.UTC)
		if ts.Day() != day || int(ts.Month()) != mon {
			continue
		}
		return &ts
	}
	return nil
}

// Suggestions ranks the remediation actions for a categorized failure.
// High-confidence partial data comes first; unrecoverable categories
// get infrastructure remediation; unknown errors always keep a generic
// use-what-was-extracted action.
func Suggestions(catErr *entity.CategorizedError, partial *entity.InvoiceRecord) []entity.Suggestion {
	var out []entity.Suggestion
	priority := 1
	add := func(action string) {
		out = append(out, entity.Suggestion{Action: action, Priority: priority})
		priority++
	}

	overall := 0.0
	if partial != nil && partial.Metadata != nil {
		overall = partial.Metadata.Confidence["overall"]
	}
	if catErr.Recoverable && overall >= usableFloor {
		add("use_partial_data")
	}

	switch catErr.Type {
	case constants.FileAccessError:
		add("check_permissions")
		add("verify_path")
	case constants.PDFParsingError:
		add("retry_text_extraction")
	case constants.FieldExtractionError:
		add("review_invoice_layout")
	}

	if catErr.Type == constants.UnknownError {
		add("use_extracted_data")
	}
	if len(out) == 0 {
		add("manual_review")
	}
	return out
}

func causeMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
