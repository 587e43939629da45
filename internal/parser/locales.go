package parser

import "regexp"

// Amount sub-patterns per number convention. They capture the digit
// string only; currency markers stay outside the group.
const (
	amtComma = `\d+(?:[. ]\d{3})*,\d{2}`
	amtDot   = `\d+(?:,\d{3})*\.\d{2}`
	amtSwiss = `\d+(?:['’]\d{3})*[.,]\d{2}`
	amtYen   = `\d{1,3}(?:,\d{3})*`
)

// labelAmt compiles a labeled-amount pattern: the label, up to 40
// non-digit runes (so a VAT rate or another number can never be skipped
// over), then the amount. Case-insensitive; the skip may cross a line
// break because some layouts put the value on the following line.
func labelAmt(label, amt string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:` + label + `)[^0-9]{0,40}(` + amt + `)`)
}

// rateLabelAmt tolerates a VAT rate between the label and the amount,
// for lines like "inkl. MwSt 19%: 3,19 €".
func rateLabelAmt(label, amt string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:` + label + `)[^\n]{0,30}?\d{1,2}\s?%[^0-9]{0,10}(` + amt + `)`)
}
