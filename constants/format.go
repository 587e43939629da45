package constants

import "strings"

// InvoiceFormat is the structural layout family of an invoice, independent
// of its language.
type InvoiceFormat string

// Stable values (these exact strings appear in exports and stored results).
const (
	ConsumerStandard       InvoiceFormat = "consumer_standard"
	ConsumerEUVatInclusive InvoiceFormat = "consumer_eu_vat_inclusive"
	BusinessExVat          InvoiceFormat = "business_ex_vat"
	FormatUnknown          InvoiceFormat = "unknown"
)

var allFormats = []InvoiceFormat{
	ConsumerStandard,
	ConsumerEUVatInclusive,
	BusinessExVat,
	FormatUnknown,
}

// Formats returns every known format as a string slice.
func Formats() []string {
	result := make([]string, len(allFormats))
	for i, f := range allFormats {
		result[i] = string(f)
	}
	return result
}

// CanonicalFormat maps free-form input to a known format value.
func CanonicalFormat(input string) (InvoiceFormat, bool) {
	if input == "" {
		return FormatUnknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]InvoiceFormat{
		"consumer":      ConsumerStandard,
		"standard":      ConsumerStandard,
		"eu":            ConsumerEUVatInclusive,
		"vat_inclusive": ConsumerEUVatInclusive,
		"business":      BusinessExVat,
		"ex_vat":        BusinessExVat,
		"b2b":           BusinessExVat,
	}

	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	for _, f := range allFormats {
		if normalized == string(f) {
			return f, true
		}
	}

	return FormatUnknown, false
}
