// Package language detects the language and region variant of invoice
// text by weighted keyword and pattern scoring.
package language

import (
	"log/slog"
	"regexp"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
)

// Signal weights. Core commercial terminology outweighs supporting
// boilerplate so a legal footer in another language cannot flip the
// winner.
const (
	coreTermWeight = 15
	supportWeight  = 8
	currencyWeight = 15
	dateWeight     = 10

	// referenceMax is the score of a clearly in-language invoice;
	// confidence = min(1, total/referenceMax).
	referenceMax = 100.0

	// fallbackFloor: a winner below this confidence yields the English
	// generic parser instead.
	fallbackFloor = 0.5
)

type localeSignals struct {
	lang     constants.Language
	core     []string
	support  []string
	currency []*regexp.Regexp
	dates    []*regexp.Regexp
}

// locales lists the supported languages in tie-break order: the plain
// variants come before their regional specializations.
var locales = []localeSignals{
	{
		lang: constants.LangEN,
		core: []string{
			"order number", "order placed", "order total", "grand total",
			"order details", "items ordered", "amazon.com",
		},
		support: []string{
			"payment method", "billing address", "shipping address",
			"thank you for your order", "sold by",
		},
		currency: []*regexp.Regexp{
			regexp.MustCompile(`\$\d{1,3}(?:,\d{3})*\.\d{2}`),
		},
		dates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},\s+\d{4}`),
			regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		},
	},
	{
		lang: constants.LangENGB,
		core: []string{
			"order number", "order total", "grand total", "vat invoice",
			"dispatched", "amazon.co.uk",
		},
		support: []string{
			"postage", "vat number", "united kingdom", "delivery address",
		},
		currency: []*regexp.Regexp{
			regexp.MustCompile(`£\d{1,3}(?:,\d{3})*\.\d{2}`),
		},
		dates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\d{1,2}\s+(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{4}`),
		},
	},
	{
		lang: constants.LangENCA,
		core: []string{
			"order number", "order total", "grand total", "amazon.ca",
		},
		support: []string{
			"gst/hst", "canada", "estimated gst/hst",
		},
		currency: []*regexp.Regexp{
			regexp.MustCompile(`(?:CAD|C\$)\s?\d{1,3}(?:,\d{3})*\.\d{2}`),
		},
		dates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},\s+\d{4}`),
			regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		},
	},
	{
		lang: constants.LangENAU,
		core: []string{
			"order number", "order total", "tax invoice", "amazon.com.au",
		},
		support: []string{
			"gst included", "australia", "abn:",
		},
		currency: []*regexp.Regexp{
			regexp.MustCompile(`(?:AUD|A\$)\s?\d{1,3}(?:,\d{3})*\.\d{2}`),
		},
		dates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\d{1,2}\s+(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{4}`),
		},
	},
	{
		lang: constants.LangDE,
		core: []string{
			"bestellnummer", "bestellung", "rechnung", "zwischensumme",
			"gesamtsumme", "versandkosten", "amazon.de",
		},
		support: []string{
			"vielen dank", "mehrwertsteuer", "lieferadresse",
			"zahlungsart", "einzelpreis", "menge",
		},
		currency: []*regexp.Regexp{
			regexp.MustCompile(`\d{1,3}(?:\.\d{3})*,\d{2}\s?€`),
		},
		dates: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{4}\b`),
			regexp.MustCompile(`(?i)\d{1,2}\.\s?(januar|februar|märz|april|mai|juni|juli|august|september|oktober|november|dezember)\s+\d{4}`),
		},
	},
	{
		lang: constants.LangDECH,
		core: []string{
			"bestellnummer", "rechnung", "zwischensumme", "gesamtsumme",
			"schweiz",
		},
		support: []string{
			"mwst-nr", "mehrwertsteuernummer", "lieferung in die schweiz",
		},
		currency: []*regexp.Regexp{
			regexp.MustCompile(`(?:CHF|Fr\.)\s?\d{1,3}(?:['’]\d{3})*\.\d{2}`),
			regexp.MustCompile(`\d{1,3}(?:['’]\d{3})*\.\d{2}\s?(?:CHF|Fr\.)`),
			regexp.MustCompile(`\d{1,3}(?:['’]\d{3})+\.\d{2}`),
		},
		dates: []*regexp.Regexp{
			regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{4}\b`),
		},
	},
	{
		lang: constants.LangFR,
		core: []string{
			"commande", "numéro de commande", "sous-total", "expédition",
			"livraison", "facture", "amazon.fr",
		},
		support: []string{
			"merci pour votre commande", "adresse de livraison",
			"mode de paiement", "quantité", "prix unitaire", "tva",
		},
		currency: []*regexp.Regexp{
			regexp.MustCompile(`\d{1,3}(?:[ \x{00a0}]\d{3})*,\d{2}\s?€`),
		},
		dates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\d{1,2}\s+(janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)\s+\d{4}`),
		},
	},
	{
		lang: constants.LangES,
		core: []string{
			"pedido", "número de pedido", "envío", "factura",
			"importe total", "amazon.es",
		},
		support: []string{
			"gracias por su compra", "dirección de envío", "forma de pago",
			"cantidad", "precio unitario", "iva incluido",
		},
		currency: []*regexp.Regexp{
			regexp.MustCompile(`\d{1,3}(?:\.\d{3})*,\d{2}\s?€`),
		},
		dates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\d{1,2}\s+de\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)\s+de\s+\d{4}`),
		},
	},
	{
		lang: constants.LangIT,
		core: []string{
			"ordine", "numero ordine", "spedizione", "fattura",
			"totale ordine", "subtotale", "amazon.it",
		},
		support: []string{
			"grazie", "indirizzo di spedizione", "metodo di pagamento",
			"quantità", "prezzo unitario", "iva inclusa",
		},
		currency: []*regexp.Regexp{
			regexp.MustCompile(`\d{1,3}(?:\.\d{3})*,\d{2}\s?€`),
		},
		dates: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\d{1,2}\s+(gennaio|febbraio|marzo|aprile|maggio|giugno|luglio|agosto|settembre|ottobre|novembre|dicembre)\s+\d{4}`),
		},
	},
	{
		lang: constants.LangJA,
		core: []string{
			"注文番号", "注文日", "小計", "合計", "請求書", "amazon.co.jp",
		},
		support: []string{
			"配送料", "お届け先", "支払い方法", "数量", "単価",
		},
		currency: []*regexp.Regexp{
			regexp.MustCompile(`[¥￥]\s?\d{1,3}(?:,\d{3})*`),
			regexp.MustCompile(`\d{1,3}(?:,\d{3})*\s?円`),
		},
		dates: []*regexp.Regexp{
			regexp.MustCompile(`\d{4}年\d{1,2}月\d{1,2}日`),
		},
	},
}

type termCredit struct {
	lang   constants.Language
	weight int
}

// The automaton matches every locale's terms in one pass; terms shared
// between locales credit each of them.
var (
	termList    []string
	termCredits [][]termCredit
	termMatcher *ahocorasick.Matcher
)

func init() {
	index := make(map[string]int)
	add := func(term string, lang constants.Language, weight int) {
		term = strings.ToLower(term)
		i, ok := index[term]
		if !ok {
			i = len(termList)
			index[term] = i
			termList = append(termList, term)
			termCredits = append(termCredits, nil)
		}
		termCredits[i] = append(termCredits[i], termCredit{lang: lang, weight: weight})
	}

	for _, loc := range locales {
		for _, t := range loc.core {
			add(t, loc.lang, coreTermWeight)
		}
		for _, t := range loc.support {
			add(t, loc.lang, supportWeight)
		}
	}
	termMatcher = ahocorasick.NewStringMatcher(termList)
}

// Detector scores invoice text against every supported locale.
type Detector struct {
	log *slog.Logger
}

func NewDetector(log *slog.Logger) *Detector {
	if log == nil {
		log = slog.Default()
	}
	return &Detector{log: log}
}

// Detect returns the best-scoring locale. A winner below the fallback
// floor is replaced by English so a parser always exists; that is a
// documented fallback, not a failure.
func (d *Detector) Detect(text string) entity.LanguageDetectionResult {
	scores := make(map[constants.Language]int, len(locales))

	lower := strings.ToLower(text)
	for _, hit := range termMatcher.Match([]byte(lower)) {
		if hit >= len(termCredits) {
			continue
		}
		for _, c := range termCredits[hit] {
			scores[c.lang] += c.weight
		}
	}

	for _, loc := range locales {
		for _, re := range loc.currency {
			if re.MatchString(text) {
				scores[loc.lang] += currencyWeight
			}
		}
		for _, re := range loc.dates {
			if re.MatchString(text) {
				scores[loc.lang] += dateWeight
			}
		}
	}

	best := constants.LangEN
	bestScore := 0
	for _, loc := range locales {
		if s := scores[loc.lang]; s > bestScore {
			best = loc.lang
			bestScore = s
		}
	}

	conf := float64(bestScore) / referenceMax
	if conf > 1 {
		conf = 1
	}

	result := entity.LanguageDetectionResult{Language: best, Confidence: conf}
	if conf < fallbackFloor {
		result.Language = constants.LangEN
	}

	d.log.Debug("language.detect",
		"language", string(result.Language),
		"score", bestScore,
		"confidence", conf)
	return result
}
