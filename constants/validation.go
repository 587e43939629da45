package constants

// ValidationSeverity classifies a single validation finding.
type ValidationSeverity string

const (
	SeverityCritical ValidationSeverity = "critical"
	SeverityWarning  ValidationSeverity = "warning"
)

// Validation finding types. Stable values: downstream tooling matches on
// these strings to route invoices for manual review.
const (
	CheckItemSubtotalMismatch  = "item_subtotal_mismatch"
	CheckMinorDiscrepancy      = "minor_discrepancy"
	CheckSuspiciousPrice       = "suspicious_price"
	CheckCorruptedPrice        = "corrupted_price"
	CheckItemPriceInconsistent = "item_price_inconsistent"
	CheckMissingOrderNumber    = "missing_order_number"
	CheckMissingOrderDate      = "missing_order_date"
)
