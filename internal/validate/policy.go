package validate

import "github.com/shopspring/decimal"

// Policy holds the tuned thresholds of the validation engine and the
// OCR digit-merge guard. The values are empirically calibrated, not
// derived business rules, so they are injected rather than hard-coded
// at the call sites.
type Policy struct {
	// PassTolerance: item/subtotal gaps up to this amount pass silently.
	PassTolerance decimal.Decimal
	// WarnTolerance: gaps up to this amount are a minor discrepancy
	// warning; anything above is a critical mismatch.
	WarnTolerance decimal.Decimal
	// SuspiciousPrice: a unit price above this draws a warning.
	SuspiciousPrice decimal.Decimal
	// CorruptedPrice: a unit price above this is a critical error.
	CorruptedPrice decimal.Decimal
	// OCRMergeThreshold: a matched unit price at or above this is
	// treated as a quantity digit merged into the price token.
	OCRMergeThreshold decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		PassTolerance:     decimal.New(10, -2),
		WarnTolerance:     decimal.New(100, -2),
		SuspiciousPrice:   decimal.New(1000, 0),
		CorruptedPrice:    decimal.New(10000, 0),
		OCRMergeThreshold: decimal.New(1000, 0),
	}
}

// zeroDecimalCurrencies have no minor unit, so a routine price carries
// two more digits than its euro or dollar equivalent.
var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {},
	"KRW": {},
}

var zeroDecimalScale = decimal.New(100, 0)

// ForCurrency returns the policy with the price-magnitude thresholds
// scaled to the currency's minor unit: ¥4,980 is an everyday price, not
// a corruption signal. The reconciliation tolerances bound rounding
// error and stay unscaled.
func (p Policy) ForCurrency(code string) Policy {
	if _, ok := zeroDecimalCurrencies[code]; !ok {
		return p
	}
	p.SuspiciousPrice = p.SuspiciousPrice.Mul(zeroDecimalScale)
	p.CorruptedPrice = p.CorruptedPrice.Mul(zeroDecimalScale)
	p.OCRMergeThreshold = p.OCRMergeThreshold.Mul(zeroDecimalScale)
	return p
}

// PolicyFromFloats builds a Policy from configuration values, falling
// back to the default for non-positive entries.
func PolicyFromFloats(pass, warn, suspicious, corrupted, ocrMerge float64) Policy {
	p := DefaultPolicy()
	if pass > 0 {
		p.PassTolerance = decimal.NewFromFloat(pass)
	}
	if warn > 0 {
		p.WarnTolerance = decimal.NewFromFloat(warn)
	}
	if suspicious > 0 {
		p.SuspiciousPrice = decimal.NewFromFloat(suspicious)
	}
	if corrupted > 0 {
		p.CorruptedPrice = decimal.NewFromFloat(corrupted)
	}
	if ocrMerge > 0 {
		p.OCRMergeThreshold = decimal.NewFromFloat(ocrMerge)
	}
	return p
}
