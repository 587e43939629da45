package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/money"
)

// tables holds the locale-specific pattern set a parser runs on. All
// tables are built once at registry construction and never mutated, so
// parsers are safe for concurrent use.
type tables struct {
	format   constants.InvoiceFormat
	language constants.Language

	// business selects the ex-VAT column as the reported unit price;
	// consumer layouts report the VAT-inclusive one.
	business bool

	currency       string
	detectCurrency bool
	conv           money.Convention

	orderNumber []*regexp.Regexp
	dates       []datePattern
	subtotal    []*regexp.Regexp
	shipping    []*regexp.Regexp
	tax         []*regexp.Regexp
	total       []*regexp.Regexp
	quantity    []*regexp.Regexp

	// amountRe matches one currency-marked amount token; merged table
	// cells yield several matches on one physical line.
	amountRe *regexp.Regexp

	// itemWindow bounds how many lines after an item anchor are
	// scanned for its price columns.
	itemWindow int
}

var (
	asinRe = regexp.MustCompile(`(?i)\bASIN\s*[::]?\s*([A-Z0-9]{10})\b`)
	rateRe = regexp.MustCompile(`\b(\d{1,2})\s?%`)

	// orderNumberBare matches the marketplace order number shape on its
	// own; it backstops every locale's labeled patterns.
	orderNumberBare = regexp.MustCompile(`\b(\d{3}-\d{7}-\d{7})\b`)

	// summaryStopRe marks the start of the totals block in any
	// supported language; an item's line window never crosses it.
	summaryStopRe = regexp.MustCompile(`(?i)zwischensumme|sub-?total|sous[- ]total|subtotale|小計|gesamtsumme|gesamtbetrag|grand\s+total|order\s+total|importe\s+total|totale\s+ordine|合計|versandkosten|shipping|postage|livraison|env[íi]o|spedizione|配送料|送料`)
)

const defaultItemWindow = 8

// base supplies the shared field extractors and the Extract
// orchestration; locale parsers embed it and contribute their tables.
type base struct {
	t    tables
	deps Deps
}

func newBase(t tables, deps Deps) base {
	if t.itemWindow == 0 {
		t.itemWindow = defaultItemWindow
	}
	return base{t: t, deps: deps}
}

func (b *base) Format() constants.InvoiceFormat { return b.t.format }
func (b *base) Language() constants.Language    { return b.t.language }

// run is the shared Extract implementation. It dispatches the field
// extractors through the interface so locale overrides take effect.
func (b *base) run(p Parser, text string) (*entity.InvoiceRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, entity.NewCategorizedError(constants.PDFParsingError,
			"empty invoice text", string(b.t.language), nil)
	}

	if pp, ok := p.(preparer); ok {
		text = pp.prepare(text)
	}

	rec := &entity.InvoiceRecord{
		OrderNumber: p.ExtractOrderNumber(text),
		OrderDate:   p.ExtractOrderDate(text),
		Vendor:      entity.VendorAmazon,
		Items:       p.ExtractItems(text),
		Subtotal:    p.ExtractSubtotal(text),
		Shipping:    p.ExtractShipping(text),
		Tax:         p.ExtractTax(text),
		Total:       p.ExtractTotal(text),
		Format:      p.Format(),
		Language:    p.Language(),
	}
	rec.Currency = b.currencyFor(text, rec.Items)

	if rec.OrderNumber == "" && rec.OrderDate == nil && len(rec.Items) == 0 && rec.Total == nil {
		return nil, entity.NewCategorizedError(constants.FieldExtractionError,
			"no recognizable invoice fields", string(b.t.language), nil)
	}

	result := b.deps.Engine.Validate(rec)
	rec.Validation = &result

	b.deps.Log.Info("parser.extract.ok",
		"language", string(b.t.language),
		"format", string(b.t.format),
		"order_number", rec.OrderNumber,
		"items", len(rec.Items),
		"is_valid", result.IsValid)
	return rec, nil
}

func (b *base) ExtractOrderNumber(text string) string {
	for _, re := range b.t.orderNumber {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	if m := orderNumberBare.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func (b *base) ExtractOrderDate(text string) *time.Time {
	for _, dp := range b.t.dates {
		m := dp.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if ts, ok := dp.build(m); ok {
			return &ts
		}
	}
	return nil
}

func (b *base) ExtractSubtotal(text string) *decimal.Decimal {
	return b.findAmount(b.t.subtotal, text)
}

func (b *base) ExtractShipping(text string) *decimal.Decimal {
	return b.findAmount(b.t.shipping, text)
}

func (b *base) ExtractTax(text string) *decimal.Decimal {
	return b.findAmount(b.t.tax, text)
}

func (b *base) ExtractTotal(text string) *decimal.Decimal {
	return b.findAmount(b.t.total, text)
}

func (b *base) findAmount(res []*regexp.Regexp, text string) *decimal.Decimal {
	for _, re := range res {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if d, err := money.Parse(m[1], b.t.conv); err == nil {
			return &d
		}
	}
	return nil
}

func (b *base) currencyFor(text string, items []entity.LineItem) string {
	if b.t.detectCurrency {
		if c := money.DetectCurrency(text); c != "" {
			return c
		}
	}
	if len(items) > 0 && items[0].Currency != "" {
		return items[0].Currency
	}
	return b.t.currency
}

// amountToken is one parsed price cell from an item's line window.
type amountToken struct {
	value decimal.Decimal
	raw   string
	line  int
}

// ExtractItems anchors on item identifier tokens and scans a bounded
// window of following lines for the price columns. Repeated identical
// rows stay separate items: collapsing them would hide extraction
// defects from the validation engine.
func (b *base) ExtractItems(text string) []entity.LineItem {
	lines := strings.Split(text, "\n")

	var anchors []int
	for i, line := range lines {
		if asinRe.MatchString(line) {
			anchors = append(anchors, i)
		}
	}

	var items []entity.LineItem
	for i, anchor := range anchors {
		end := len(lines)
		if i+1 < len(anchors) {
			end = anchors[i+1]
		}
		if end > anchor+1+b.t.itemWindow {
			end = anchor + 1 + b.t.itemWindow
		}
		if it := b.scanItem(lines, anchor, end); it != nil {
			items = append(items, *it)
		}
	}
	return items
}

// scanItem reads one item's window: the anchor line plus the lines up
// to end. The window carries up to four price columns (ex-VAT unit, VAT
// rate, inc-VAT unit, inc-VAT line total) spread over one or more
// physical lines.
func (b *base) scanItem(lines []string, anchor, end int) *entity.LineItem {
	m := asinRe.FindStringSubmatch(lines[anchor])
	asin := m[1]

	var toks []amountToken
	var rate *int
	qty := 0
	desc := ""

	for j := anchor; j < end; j++ {
		line := lines[j]
		if j > anchor && summaryStopRe.MatchString(line) {
			break
		}

		raws := b.t.amountRe.FindAllString(line, -1)
		for _, raw := range raws {
			v, err := money.Parse(raw, b.t.conv)
			if err != nil || !v.IsPositive() {
				continue
			}
			toks = append(toks, amountToken{value: v, raw: raw, line: j})
		}
		// Reassembled business rows carry the VAT rate on the same
		// physical line as the amounts.
		if rate == nil {
			if rm := rateRe.FindStringSubmatch(line); rm != nil {
				if r := atoiSafe(rm[1]); r > 0 {
					rate = &r
				}
				if len(raws) == 0 {
					continue
				}
			}
		}
		if len(raws) > 0 {
			continue
		}
		if qty == 0 {
			if q := b.matchQuantity(line); q > 0 {
				qty = q
				continue
			}
		}
		if desc == "" && j > anchor && strings.TrimSpace(line) != "" {
			desc = strings.TrimSpace(line)
		}
	}

	if desc == "" {
		desc = b.anchorRemainder(lines, anchor)
	}

	unit, total, conf := b.selectPrices(toks, rate)
	if unit.IsZero() {
		return nil
	}
	unit, total, conf = b.guardMerge(unit, total, toks, conf)

	if qty == 0 {
		qty = inferQuantity(unit, total)
	}

	return &entity.LineItem{
		ASIN:        asin,
		Description: desc,
		Quantity:    qty,
		UnitPrice:   unit,
		TotalPrice:  total,
		Currency:    b.t.currency,
		Confidence:  conf,
	}
}

// anchorRemainder recovers a description from the anchor line itself or
// the line above it when the window held only price columns.
func (b *base) anchorRemainder(lines []string, anchor int) string {
	rest := strings.TrimSpace(asinRe.ReplaceAllString(lines[anchor], ""))
	rest = strings.Trim(rest, "-–|,;: ")
	if rest != "" {
		return rest
	}
	if anchor > 0 {
		prev := strings.TrimSpace(lines[anchor-1])
		if prev != "" && !b.t.amountRe.MatchString(prev) {
			return prev
		}
	}
	return ""
}

func (b *base) matchQuantity(line string) int {
	for _, re := range b.t.quantity {
		if m := re.FindStringSubmatch(line); m != nil {
			if q := atoiSafe(m[1]); q > 0 {
				return q
			}
		}
	}
	return 0
}

// selectPrices implements the format-dependent column choice. Consumer
// invoices report the VAT-inclusive unit price and line total (the last
// two columns); business invoices report the ex-VAT unit price (the
// first column) with the VAT-inclusive total kept alongside.
func (b *base) selectPrices(toks []amountToken, rate *int) (unit, total decimal.Decimal, conf float64) {
	conf = 1.0
	n := len(toks)
	switch {
	case n == 0:
		return decimal.Zero, decimal.Zero, conf
	case n == 1:
		return toks[0].value, toks[0].value, conf
	case b.t.business:
		ex := toks[0].value
		incTotal := toks[n-1].value
		if rate != nil && n >= 3 {
			// Cross-check the ex-VAT cell against the inc-VAT unit; a
			// merged digit in the ex-VAT column shows up as a gross
			// mismatch, and the derived value is the safer choice.
			incUnit := toks[n-2].value
			factor := vatFactor(*rate)
			if ex.Mul(factor).Sub(incUnit).Abs().Cmp(centTolerance) > 0 {
				derived := incUnit.Div(factor).Round(2)
				if derived.Cmp(ex) < 0 {
					ex = derived
					conf = 0.5
				}
			}
		}
		return ex, incTotal, conf
	default:
		return toks[n-2].value, toks[n-1].value, conf
	}
}

var centTolerance = decimal.New(2, -2)

func vatFactor(rate int) decimal.Decimal {
	return decimal.New(1, 0).Add(decimal.New(int64(rate), -2))
}

// guardMerge contains OCR digit-merge corruption: an implausibly large
// unit price is replaced by a plausible secondary column from the same
// window, or by the token with its merged leading digits stripped. The
// replacement is always smaller, never larger, and the item keeps a
// reduced confidence so downstream review can see it. The threshold is
// scaled to the table's currency so zero-decimal amounts like ¥4,980
// pass untouched.
func (b *base) guardMerge(unit, total decimal.Decimal, toks []amountToken, conf float64) (decimal.Decimal, decimal.Decimal, float64) {
	th := b.deps.Policy.ForCurrency(b.t.currency).OCRMergeThreshold
	if unit.Cmp(th) < 0 {
		return unit, total, conf
	}

	var chosen decimal.Decimal
	found := false

	for _, tk := range toks {
		if tk.value.Cmp(th) < 0 && isDigitSuffix(unit, tk.value) {
			chosen, found = tk.value, true
			break
		}
	}
	if !found {
		for _, tk := range toks {
			if tk.value.Cmp(th) < 0 {
				chosen, found = tk.value, true
				break
			}
		}
	}
	if !found {
		if stripped, ok := stripMergedDigits(unit, th); ok {
			chosen, found = stripped, true
		}
	}
	if !found {
		// Nothing safe to fall back to; validation flags the price.
		return unit, total, 0.3
	}

	unit = chosen
	if total.Cmp(th) >= 0 {
		total = unit
	}
	return unit, total, 0.5
}

// isDigitSuffix reports whether small's digit string is a proper suffix
// of big's, the signature of a leading quantity digit merged into the
// price token.
func isDigitSuffix(big, small decimal.Decimal) bool {
	bs := digitsOnly(big.StringFixed(2))
	ss := digitsOnly(small.StringFixed(2))
	return len(ss) < len(bs) && strings.HasSuffix(bs, ss)
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// stripMergedDigits removes one or two merged leading digits until the
// value drops under the threshold.
func stripMergedDigits(d decimal.Decimal, th decimal.Decimal) (decimal.Decimal, bool) {
	s := d.StringFixed(2)
	intLen := strings.IndexByte(s, '.')
	for cut := 1; cut <= 2 && cut < intLen; cut++ {
		v, err := decimal.NewFromString(s[cut:])
		if err != nil {
			continue
		}
		if v.IsPositive() && v.Cmp(th) < 0 {
			return v, true
		}
	}
	return decimal.Zero, false
}

// inferQuantity derives the quantity from a line total that is a clean
// integer multiple of the unit price.
func inferQuantity(unit, total decimal.Decimal) int {
	if !unit.IsPositive() || !total.IsPositive() || total.Cmp(unit) <= 0 {
		return 1
	}
	q := total.Div(unit)
	rounded := q.Round(0)
	if q.Sub(rounded).Abs().Cmp(decimal.New(1, -2)) > 0 {
		return 1
	}
	n := int(rounded.IntPart())
	if n < 2 || n > 99 {
		return 1
	}
	return n
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
