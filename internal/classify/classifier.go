// Package classify labels invoice text with its structural layout
// family: consumer, EU VAT-inclusive consumer, or business ex-VAT.
package classify

import (
	"log/slog"
	"regexp"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
)

type signal struct {
	re     *regexp.Regexp
	weight int
}

type signature struct {
	format constants.InvoiceFormat
	// refMax normalizes the raw score into a confidence; it is the
	// score of a clear representative of the format, not the table sum.
	refMax  int
	signals []signal
}

// minFormatScore is the floor below which the layout is reported
// Unknown and parsing falls back to the generic parser.
const minFormatScore = 15

// signatures are evaluated in order; earlier entries win score ties.
// Business markers come first: a business invoice still carries most
// consumer wording, but never the other way around.
var signatures = []signature{
	{
		format: constants.BusinessExVat,
		refMax: 50,
		signals: []signal{
			// The ex-VAT dual-price table header is the defining
			// structural feature and outweighs the consumer summary
			// block that business invoices also carry.
			{regexp.MustCompile(`(?i)nettopreis|preis\s*\(?\s*ohne\s+(USt|MwSt)|\(netto\)|netto-?betrag`), 50},
			{regexp.MustCompile(`(?i)prix\s+(unitaire\s+)?HT|hors\s+taxes?|montant\s+HT`), 50},
			{regexp.MustCompile(`(?i)excl\.?\s*VAT|ex[- ]VAT|VAT\s+excl|price\s*\(excl`), 50},
			{regexp.MustCompile(`(?i)IVA\s+esclusa|sin\s+IVA|base\s+imponible`), 50},
			{regexp.MustCompile(`(?i)amazon\s+business`), 15},
			{regexp.MustCompile(`(?i)USt[-\s]?IdNr|VAT\s+(registration\s+)?n(o|umber)|TVA\s+intracommunautaire|partita\s+IVA`), 10},
			{regexp.MustCompile(`(?i)gesch(ä|ae)ftskunde|business\s+account`), 8},
		},
	},
	{
		format: constants.ConsumerEUVatInclusive,
		refMax: 50,
		signals: []signal{
			{regexp.MustCompile(`(?i)inkl\.?\s*(MwSt|USt)|inklusive\s+Mehrwertsteuer`), 25},
			{regexp.MustCompile(`(?i)TVA\s+incluse|\bTTC\b`), 25},
			{regexp.MustCompile(`(?i)IVA\s+(inclusa|incluida)`), 25},
			{regexp.MustCompile(`(?i)incl\.?\s*VAT|VAT\s+included|including\s+VAT`), 25},
			{regexp.MustCompile(`(?i)alle\s+preise\s+(sind\s+)?inkl`), 15},
			// VAT rate on its own table line, the four-column consumer layout
			{regexp.MustCompile(`(?m)^\d{1,2}\s?%$`), 10},
		},
	},
	{
		format: constants.ConsumerStandard,
		refMax: 50,
		signals: []signal{
			{regexp.MustCompile(`(?i)order\s+total|grand\s+total|gesamtsumme|gesamtbetrag|total\s+g(é|e)n(é|e)ral|importe\s+total|totale\s+ordine|注文合計`), 15},
			{regexp.MustCompile(`(?i)zwischensumme|sub-?total|sous[- ]total|subtotale|小計`), 15},
			{regexp.MustCompile(`(?i)versandkosten|shipping\s*&?\s*handling|frais\s+de\s+(port|livraison)|gastos\s+de\s+env(í|i)o|spese\s+di\s+spedizione|配送料|送料`), 10},
			{regexp.MustCompile(`(?i)bestellnummer|order\s+(number|#)|commande\s+n|n(ú|u)mero\s+de\s+pedido|numero\s+ordine|注文番号`), 10},
			{regexp.MustCompile(`(?i)thank\s+you\s+for\s+your\s+order|vielen\s+dank\s+f(ü|u)r\s+(ihre|deine)\s+bestellung|merci\s+pour\s+votre\s+commande`), 8},
		},
	},
}

// Classifier scores invoice text against per-format signatures.
type Classifier struct {
	log *slog.Logger
}

func NewClassifier(log *slog.Logger) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{log: log}
}

// Classify returns the best-matching format. Confidence is the winning
// score normalized against the signature's reference, clamped to [0,1];
// it is a match strength, not a probability.
func (c *Classifier) Classify(text string) entity.FormatClassification {
	best := entity.FormatClassification{Format: constants.FormatUnknown}
	bestScore := 0

	for _, sig := range signatures {
		score := 0
		for _, s := range sig.signals {
			if s.re.MatchString(text) {
				score += s.weight
			}
		}
		if score > bestScore {
			bestScore = score
			best = entity.FormatClassification{
				Format:     sig.format,
				Confidence: confidence(score, sig.refMax),
			}
		}
	}

	if bestScore < minFormatScore {
		best = entity.FormatClassification{
			Format:     constants.FormatUnknown,
			Confidence: best.Confidence,
		}
	}

	c.log.Debug("classify.done",
		"format", string(best.Format),
		"score", bestScore,
		"confidence", best.Confidence)
	return best
}

func confidence(score, refMax int) float64 {
	if refMax <= 0 {
		return 0
	}
	conf := float64(score) / float64(refMax)
	if conf > 1 {
		return 1
	}
	return conf
}
