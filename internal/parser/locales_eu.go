package parser

import (
	"regexp"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/money"
)

// euroAmountRe matches one euro-marked amount cell; merged table cells
// yield several matches on one physical line.
var euroAmountRe = regexp.MustCompile(`€\s?` + amtComma + `|` + amtComma + `\s?(?:€|EUR)`)

func tablesConsumerDE() tables {
	return tables{
		format:   constants.ConsumerEUVatInclusive,
		language: constants.LangDE,
		currency: "EUR",
		conv:     money.CommaDecimal,
		orderNumber: []*regexp.Regexp{
			regexp.MustCompile(`(?i)bestell(?:ung)?s?-?(?:nummer|nr\.?)?\s*[:#]?\s*(\d{3}-\d{7}-\d{7})`),
		},
		dates: []datePattern{
			numericDate(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`, 1, 2, 3),
			namedMonthDate(`(?i)\b(\d{1,2})\.?\s*(`+deMonthAlt+`)\s+(\d{4})`, deMonths, 1, 2, 3),
		},
		subtotal: []*regexp.Regexp{
			labelAmt(`zwischensumme`, amtComma),
		},
		shipping: []*regexp.Regexp{
			labelAmt(`versandkosten|verpackung\s+(?:und|&)\s+versand`, amtComma),
		},
		tax: []*regexp.Regexp{
			rateLabelAmt(`mwst|ust|mehrwertsteuer`, amtComma),
			labelAmt(`mwst|ust|mehrwertsteuer`, amtComma),
		},
		total: []*regexp.Regexp{
			labelAmt(`gesamtsumme|gesamtbetrag|rechnungsbetrag`, amtComma),
			regexp.MustCompile(`(?im)^summe\b[^0-9]{0,20}(` + amtComma + `)`),
		},
		quantity: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:menge|anzahl)\b[^0-9]{0,10}(\d{1,3})\b`),
		},
		amountRe: euroAmountRe,
	}
}

func tablesBusinessDE() tables {
	t := tablesConsumerDE()
	t.format = constants.BusinessExVat
	t.business = true
	t.subtotal = []*regexp.Regexp{
		labelAmt(`zwischensumme|nettobetrag|summe\s+netto`, amtComma),
	}
	t.total = []*regexp.Regexp{
		labelAmt(`gesamtsumme|gesamtbetrag|rechnungsbetrag|bruttobetrag`, amtComma),
	}
	return t
}

// tablesDECH covers amazon invoices for Switzerland: German wording,
// Swiss franc amounts with apostrophe grouping.
func tablesDECH() tables {
	t := tablesConsumerDE()
	t.format = constants.ConsumerStandard
	t.language = constants.LangDECH
	t.currency = "CHF"
	t.conv = money.ApostropheThousand
	t.subtotal = []*regexp.Regexp{
		labelAmt(`zwischensumme`, amtSwiss),
	}
	t.shipping = []*regexp.Regexp{
		labelAmt(`versandkosten`, amtSwiss),
	}
	t.tax = []*regexp.Regexp{
		rateLabelAmt(`mwst|mehrwertsteuer`, amtSwiss),
		labelAmt(`mwst|mehrwertsteuer`, amtSwiss),
	}
	t.total = []*regexp.Regexp{
		labelAmt(`gesamtsumme|gesamtbetrag|rechnungsbetrag`, amtSwiss),
	}
	t.amountRe = regexp.MustCompile(`(?:CHF|Fr\.)\s?` + amtSwiss + `|` + amtSwiss + `\s?CHF`)
	return t
}

func tablesConsumerFR() tables {
	return tables{
		format:   constants.ConsumerEUVatInclusive,
		language: constants.LangFR,
		currency: "EUR",
		conv:     money.CommaDecimal,
		orderNumber: []*regexp.Regexp{
			regexp.MustCompile(`(?i)commande\s*(?:n[°o]\.?)?\s*[:#]?\s*(\d{3}-\d{7}-\d{7})`),
			regexp.MustCompile(`(?i)n[°o]\s*de\s*commande\s*[:#]?\s*(\d{3}-\d{7}-\d{7})`),
		},
		dates: []datePattern{
			namedMonthDate(`(?i)\b(\d{1,2})(?:er)?\s+(`+frMonthAlt+`)\s+(\d{4})`, frMonths, 1, 2, 3),
			numericDate(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`, 1, 2, 3),
		},
		subtotal: []*regexp.Regexp{
			labelAmt(`sous[- ]total`, amtComma),
		},
		shipping: []*regexp.Regexp{
			labelAmt(`frais\s+de\s+(?:port|livraison|exp[ée]dition)|livraison`, amtComma),
		},
		tax: []*regexp.Regexp{
			rateLabelAmt(`\btva\b`, amtComma),
			labelAmt(`\btva\b`, amtComma),
		},
		total: []*regexp.Regexp{
			labelAmt(`montant\s+total|total\s+g[ée]n[ée]ral|total\s+ttc`, amtComma),
			regexp.MustCompile(`(?im)^total\b[^0-9]{0,20}(` + amtComma + `)`),
		},
		quantity: []*regexp.Regexp{
			regexp.MustCompile(`(?i)quantit[ée]s?\b[^0-9]{0,10}(\d{1,3})\b`),
		},
		amountRe: euroAmountRe,
	}
}

func tablesBusinessFR() tables {
	t := tablesConsumerFR()
	t.format = constants.BusinessExVat
	t.business = true
	t.subtotal = []*regexp.Regexp{
		labelAmt(`sous[- ]total|montant\s+ht|total\s+ht`, amtComma),
	}
	t.total = []*regexp.Regexp{
		labelAmt(`montant\s+total|total\s+ttc`, amtComma),
		regexp.MustCompile(`(?im)^total\b[^0-9]{0,20}(` + amtComma + `)`),
	}
	return t
}

func tablesES() tables {
	return tables{
		format:   constants.ConsumerEUVatInclusive,
		language: constants.LangES,
		currency: "EUR",
		conv:     money.CommaDecimal,
		orderNumber: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:n[úu]mero\s+de\s+)?pedido\s*(?:n[°o]\.?)?\s*[:#]?\s*(\d{3}-\d{7}-\d{7})`),
		},
		dates: []datePattern{
			namedMonthDate(`(?i)\b(\d{1,2})\s+de\s+(`+esMonthAlt+`)\s+de\s+(\d{4})`, esMonths, 1, 2, 3),
			numericDate(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`, 1, 2, 3),
		},
		subtotal: []*regexp.Regexp{
			labelAmt(`subtotal`, amtComma),
		},
		shipping: []*regexp.Regexp{
			labelAmt(`gastos\s+de\s+env[íi]o|env[íi]o`, amtComma),
		},
		tax: []*regexp.Regexp{
			rateLabelAmt(`\biva\b`, amtComma),
			labelAmt(`\biva\b`, amtComma),
		},
		total: []*regexp.Regexp{
			labelAmt(`importe\s+total|total\s+del\s+pedido`, amtComma),
			regexp.MustCompile(`(?im)^total\b[^0-9]{0,20}(` + amtComma + `)`),
		},
		quantity: []*regexp.Regexp{
			regexp.MustCompile(`(?i)cantidad\b[^0-9]{0,10}(\d{1,3})\b`),
		},
		amountRe: euroAmountRe,
	}
}

func tablesIT() tables {
	return tables{
		format:   constants.ConsumerEUVatInclusive,
		language: constants.LangIT,
		currency: "EUR",
		conv:     money.CommaDecimal,
		orderNumber: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:numero\s+)?ordine\s*(?:n\.?)?\s*[:#]?\s*(\d{3}-\d{7}-\d{7})`),
		},
		dates: []datePattern{
			namedMonthDate(`(?i)\b(\d{1,2})\s+(`+itMonthAlt+`)\s+(\d{4})`, itMonths, 1, 2, 3),
			numericDate(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`, 1, 2, 3),
		},
		subtotal: []*regexp.Regexp{
			labelAmt(`subtotale`, amtComma),
		},
		shipping: []*regexp.Regexp{
			labelAmt(`spese\s+di\s+spedizione|spedizione`, amtComma),
		},
		tax: []*regexp.Regexp{
			rateLabelAmt(`\biva\b`, amtComma),
			labelAmt(`\biva\b`, amtComma),
		},
		total: []*regexp.Regexp{
			labelAmt(`totale\s+ordine|importo\s+totale`, amtComma),
			regexp.MustCompile(`(?im)^totale\b[^0-9]{0,20}(` + amtComma + `)`),
		},
		quantity: []*regexp.Regexp{
			regexp.MustCompile(`(?i)quantit[àa]\b[^0-9]{0,10}(\d{1,3})\b`),
		},
		amountRe: euroAmountRe,
	}
}
