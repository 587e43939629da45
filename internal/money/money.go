// Package money parses amounts written in the number conventions of the
// supported invoice locales into exact decimals.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Convention describes how a locale writes monetary amounts.
type Convention int

const (
	// AutoDetect infers the decimal separator from the token itself.
	AutoDetect Convention = iota
	// DotDecimal covers 1,234.56 (en, en-GB, en-CA, en-AU).
	DotDecimal
	// CommaDecimal covers 1.234,56 and 1 234,56 (de, fr, es, it).
	CommaDecimal
	// ApostropheThousand covers 1'176.45 (de-CH).
	ApostropheThousand
	// IntegerYen covers ¥1,234 (ja, no decimal places).
	IntegerYen
)

var symbolStripper = strings.NewReplacer(
	"€", "", "$", "", "£", "", "¥", "", "円", "",
	"EUR", "", "USD", "", "GBP", "", "JPY", "", "CHF", "",
	"CAD", "", "AUD", "",
	" ", "", " ", "", " ", "", "\t", "",
)

// Parse converts an amount token to a decimal. The token may carry a
// currency symbol or code, grouping separators, and surrounding
// whitespace. Malformed input returns an error, never a panic.
func Parse(s string, conv Convention) (decimal.Decimal, error) {
	cleaned := symbolStripper.Replace(strings.TrimSpace(s))

	negative := false
	cleaned = strings.TrimPrefix(cleaned, "+")
	for _, p := range []string{"-", "−", "–"} {
		if strings.HasPrefix(cleaned, p) {
			negative = true
			cleaned = strings.TrimPrefix(cleaned, p)
			break
		}
	}

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("money: empty amount %q", s)
	}

	normalized, err := normalize(cleaned, conv)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: %w", err)
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: bad amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// normalize rewrites the digit string into decimal.NewFromString form
// (dot decimal separator, no grouping).
func normalize(s string, conv Convention) (string, error) {
	switch conv {
	case DotDecimal:
		return strings.ReplaceAll(s, ",", ""), nil
	case CommaDecimal:
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1), nil
	case ApostropheThousand:
		s = strings.ReplaceAll(s, "'", "")
		s = strings.ReplaceAll(s, "’", "")
		// Swiss invoices occasionally fall back to a decimal comma.
		if strings.Contains(s, ",") && !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
		return s, nil
	case IntegerYen:
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, ".", "")
		return s, nil
	case AutoDetect:
		return autoNormalize(s), nil
	default:
		return "", fmt.Errorf("unknown convention %d", conv)
	}
}

// autoNormalize decides the decimal separator by position: whichever of
// '.' and ',' appears last is the decimal separator, unless it is
// followed by exactly three digits and the token has no other separator,
// in which case it is grouping.
func autoNormalize(s string) string {
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	switch {
	case lastDot < 0 && lastComma < 0:
		return s
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
			return s
		}
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case lastComma >= 0:
		if grouping(s, lastComma, strings.Count(s, ",")) {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	default:
		if grouping(s, lastDot, strings.Count(s, ".")) {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	}
}

// grouping reports whether the single separator at pos reads as a
// thousands separator rather than a decimal one.
func grouping(s string, pos, count int) bool {
	if count > 1 {
		return true
	}
	return len(s)-pos-1 == 3
}

// DetectCurrency maps the first recognizable currency marker in s to an
// ISO-4217 code. The dollar sign is ambiguous across en variants and
// defaults to USD; locale parsers override it with their own code.
func DetectCurrency(s string) string {
	switch {
	case strings.Contains(s, "€") || strings.Contains(s, "EUR"):
		return "EUR"
	case strings.Contains(s, "CHF"):
		return "CHF"
	case strings.Contains(s, "£") || strings.Contains(s, "GBP"):
		return "GBP"
	case strings.Contains(s, "¥") || strings.Contains(s, "円") || strings.Contains(s, "JPY"):
		return "JPY"
	case strings.Contains(s, "CAD"):
		return "CAD"
	case strings.Contains(s, "AUD"):
		return "AUD"
	case strings.Contains(s, "$") || strings.Contains(s, "USD"):
		return "USD"
	default:
		return ""
	}
}
