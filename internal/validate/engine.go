// Package validate checks extracted invoice records for numeric
// consistency and structural completeness.
package validate

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
)

// Score penalties. Score starts at 100 with a floor of 0.
const (
	criticalPenalty = 25
	warningPenalty  = 10
)

// Engine validates one InvoiceRecord at a time. It is stateless and
// safe for concurrent use.
type Engine struct {
	policy Policy
	log    *slog.Logger
}

func NewEngine(policy Policy, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{policy: policy, log: log}
}

// Validate runs every check and produces the combined result. IsValid
// is false iff a critical finding exists.
func (e *Engine) Validate(rec *entity.InvoiceRecord) entity.ValidationResult {
	res := entity.ValidationResult{
		Errors:   []entity.ValidationIssue{},
		Warnings: []entity.ValidationIssue{},
	}

	e.checkSubtotal(rec, &res)
	e.checkPriceSanity(rec, &res)
	e.checkLineItems(rec, &res)
	e.checkRequiredFields(rec, &res)

	score := 100 - criticalPenalty*len(res.Errors) - warningPenalty*len(res.Warnings)
	if score < 0 {
		score = 0
	}
	res.Score = score
	res.IsValid = len(res.Errors) == 0

	e.log.Debug("validate.done",
		"order_number", rec.OrderNumber,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
		"score", res.Score,
		"is_valid", res.IsValid)
	return res
}

// checkSubtotal reconciles the line-item sum against the declared
// subtotal using the tiered tolerances. Business layouts declare the
// net subtotal while each line total is VAT-inclusive, so they
// reconcile on the net side.
func (e *Engine) checkSubtotal(rec *entity.InvoiceRecord, res *entity.ValidationResult) {
	if rec.Subtotal == nil || len(rec.Items) == 0 {
		return
	}

	sum := rec.ItemTotal()
	if rec.Format == constants.BusinessExVat {
		sum = rec.NetItemTotal()
	}
	diff := sum.Sub(*rec.Subtotal).Abs().Round(2)

	switch {
	case diff.Cmp(e.policy.PassTolerance) <= 0:
		return
	case diff.Cmp(e.policy.WarnTolerance) <= 0:
		res.Warnings = append(res.Warnings, entity.ValidationIssue{
			Type:     constants.CheckMinorDiscrepancy,
			Severity: constants.SeverityWarning,
			Message:  fmt.Sprintf("line items sum to %s but subtotal is %s", sum.StringFixed(2), rec.Subtotal.StringFixed(2)),
			Details:  map[string]any{"discrepancy": diff.InexactFloat64()},
		})
	default:
		details := map[string]any{"discrepancy": diff.InexactFloat64()}
		if looksLikeDigitMerge(diff) {
			details["ocr_merge_suspected"] = true
		}
		res.Errors = append(res.Errors, entity.ValidationIssue{
			Type:     constants.CheckItemSubtotalMismatch,
			Severity: constants.SeverityCritical,
			Message:  fmt.Sprintf("line items sum to %s but subtotal is %s", sum.StringFixed(2), rec.Subtotal.StringFixed(2)),
			Details:  details,
		})
	}
}

// looksLikeDigitMerge reports whether a discrepancy magnitude matches
// the damage a merged leading digit leaves behind: a clean multiple of
// 1000 once rounding noise is ignored.
func looksLikeDigitMerge(diff decimal.Decimal) bool {
	thousand := decimal.New(1000, 0)
	if diff.Cmp(thousand) < 0 {
		return false
	}
	rem := diff.Mod(thousand)
	half := decimal.New(500, 0)
	if rem.Cmp(half) > 0 {
		rem = thousand.Sub(rem)
	}
	return rem.Cmp(decimal.New(1, 0)) <= 0
}

// checkPriceSanity flags implausible single-item prices. The bounds are
// scaled to the record's currency minor unit.
func (e *Engine) checkPriceSanity(rec *entity.InvoiceRecord, res *entity.ValidationResult) {
	pol := e.policy.ForCurrency(rec.Currency)
	for i, it := range rec.Items {
		switch {
		case it.UnitPrice.Cmp(pol.CorruptedPrice) > 0:
			res.Errors = append(res.Errors, entity.ValidationIssue{
				Type:     constants.CheckCorruptedPrice,
				Severity: constants.SeverityCritical,
				Message:  fmt.Sprintf("item %d price %s exceeds the corruption bound", i+1, it.UnitPrice.StringFixed(2)),
				Details:  map[string]any{"item": i, "unit_price": it.UnitPrice.InexactFloat64()},
			})
		case it.UnitPrice.Cmp(pol.SuspiciousPrice) > 0:
			res.Warnings = append(res.Warnings, entity.ValidationIssue{
				Type:     constants.CheckSuspiciousPrice,
				Severity: constants.SeverityWarning,
				Message:  fmt.Sprintf("item %d price %s is suspiciously high", i+1, it.UnitPrice.StringFixed(2)),
				Details:  map[string]any{"item": i, "unit_price": it.UnitPrice.InexactFloat64()},
			})
		}
	}
}

// checkLineItems verifies unit price times quantity tracks the line
// total within the pass tolerance. Business layouts are exempt: their
// unit price is net while the line total is gross, and the VAT rate is
// not carried on the item.
func (e *Engine) checkLineItems(rec *entity.InvoiceRecord, res *entity.ValidationResult) {
	if rec.Format == constants.BusinessExVat {
		return
	}
	for i, it := range rec.Items {
		if it.Quantity < 1 || it.UnitPrice.IsZero() || it.TotalPrice.IsZero() {
			continue
		}
		expected := it.UnitPrice.Mul(decimal.New(int64(it.Quantity), 0))
		if expected.Sub(it.TotalPrice).Abs().Cmp(e.policy.PassTolerance) > 0 {
			res.Warnings = append(res.Warnings, entity.ValidationIssue{
				Type:     constants.CheckItemPriceInconsistent,
				Severity: constants.SeverityWarning,
				Message:  fmt.Sprintf("item %d total %s does not match unit price %s x %d", i+1, it.TotalPrice.StringFixed(2), it.UnitPrice.StringFixed(2), it.Quantity),
				Details:  map[string]any{"item": i},
			})
		}
	}
}

// checkRequiredFields tracks missing critical fields as recoverable
// warnings; absence feeds the score, not immediate invalidation.
func (e *Engine) checkRequiredFields(rec *entity.InvoiceRecord, res *entity.ValidationResult) {
	if rec.OrderNumber == "" {
		res.Warnings = append(res.Warnings, entity.ValidationIssue{
			Type:     constants.CheckMissingOrderNumber,
			Severity: constants.SeverityWarning,
			Message:  "no order number found",
		})
	}
	if rec.OrderDate == nil {
		res.Warnings = append(res.Warnings, entity.ValidationIssue{
			Type:     constants.CheckMissingOrderDate,
			Severity: constants.SeverityWarning,
			Message:  "no order date found",
		})
	}
}
