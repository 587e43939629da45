package parser

import (
	"regexp"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/money"
)

var enOrderNumber = []*regexp.Regexp{
	regexp.MustCompile(`(?i)order\s*(?:number|no\.?|#|id)?\s*[:#]?\s*(\d{3}-\d{7}-\d{7})`),
}

var enQuantity = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:qty|quantity)\b[^0-9]{0,10}(\d{1,3})\b`),
	regexp.MustCompile(`(?i)^\s*(\d{1,3})\s+of\b`),
}

// tablesEN is the generic English (amazon.com) parser and the safety
// net every unknown (format, language) pair falls back to.
func tablesEN() tables {
	return tables{
		format:         constants.ConsumerStandard,
		language:       constants.LangEN,
		currency:       "USD",
		detectCurrency: true,
		conv:           money.DotDecimal,
		orderNumber:    enOrderNumber,
		dates: []datePattern{
			namedMonthDate(`(?i)\b(`+enMonthAlt+`)\.?\s+(\d{1,2}),?\s+(\d{4})`, enMonths, 2, 1, 3),
			namedMonthDate(`(?i)\b(\d{1,2})\s+(`+enMonthAlt+`)\.?\s+(\d{4})`, enMonths, 1, 2, 3),
			numericDate(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`, 2, 1, 3),
		},
		subtotal: []*regexp.Regexp{
			labelAmt(`items?\s+subtotal|sub-?total`, amtDot),
		},
		shipping: []*regexp.Regexp{
			labelAmt(`shipping\s*(?:&|and)?\s*handling|shipping|delivery`, amtDot),
		},
		tax: []*regexp.Regexp{
			labelAmt(`estimated\s+tax|sales\s+tax|\btax\b|\bvat\b`, amtDot),
			rateLabelAmt(`\btax\b|\bvat\b`, amtDot),
		},
		total: []*regexp.Regexp{
			labelAmt(`grand\s+total|order\s+total`, amtDot),
			regexp.MustCompile(`(?im)^total\b[^0-9]{0,20}(` + amtDot + `)`),
		},
		quantity: enQuantity,
		amountRe: regexp.MustCompile(`(?:US\$|\$)\s?` + amtDot),
	}
}

func tablesENGB() tables {
	t := tablesEN()
	t.language = constants.LangENGB
	t.currency = "GBP"
	t.detectCurrency = false
	t.dates = []datePattern{
		namedMonthDate(`(?i)\b(\d{1,2})\s+(`+enMonthAlt+`)\.?\s+(\d{4})`, enMonths, 1, 2, 3),
		numericDate(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`, 1, 2, 3),
	}
	t.shipping = []*regexp.Regexp{
		labelAmt(`postage\s*(?:&|and)?\s*packing|delivery|shipping`, amtDot),
	}
	t.tax = []*regexp.Regexp{
		labelAmt(`\bvat\b`, amtDot),
		rateLabelAmt(`\bvat\b`, amtDot),
	}
	t.amountRe = regexp.MustCompile(`£\s?` + amtDot)
	return t
}

func tablesENCA() tables {
	t := tablesEN()
	t.language = constants.LangENCA
	t.currency = "CAD"
	t.detectCurrency = false
	t.dates = append([]datePattern{
		numericDate(`\b(\d{4})-(\d{2})-(\d{2})\b`, 3, 2, 1),
	}, t.dates...)
	t.tax = []*regexp.Regexp{
		labelAmt(`gst/hst|\bgst\b|\bhst\b|estimated\s+tax|\btax\b`, amtDot),
		rateLabelAmt(`gst/hst|\bgst\b|\bhst\b`, amtDot),
	}
	t.amountRe = regexp.MustCompile(`(?:CAD\s?|C\$|\$)\s?` + amtDot)
	return t
}

func tablesENAU() tables {
	t := tablesENGB()
	t.language = constants.LangENAU
	t.currency = "AUD"
	t.tax = []*regexp.Regexp{
		labelAmt(`gst\s+included|\bgst\b`, amtDot),
		rateLabelAmt(`\bgst\b`, amtDot),
	}
	t.amountRe = regexp.MustCompile(`(?:AUD\s?|A\$|\$)\s?` + amtDot)
	return t
}
