package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name string
		text string
		want constants.InvoiceFormat
	}{
		{
			"german business ex vat table",
			"Rechnung\nUSt-IdNr: DE123456789\nArtikel\nPreis (ohne USt.) USt. Preis (inkl. USt.)\nZwischensumme: 55,32 €\nGesamtsumme: 66,38 €",
			constants.BusinessExVat,
		},
		{
			"french business",
			"Facture Amazon Business\nPrix unitaire HT\nTVA intracommunautaire: FR123\nSous-total: 100,00 €",
			constants.BusinessExVat,
		},
		{
			"german consumer order summary",
			"Vielen Dank für Ihre Bestellung\nBestellnummer: 302-1234567-1234567\nZwischensumme: 66,38 €\nVersandkosten: 0,00 €\nGesamtsumme: 66,38 €",
			constants.ConsumerStandard,
		},
		{
			"english consumer order summary",
			"Thank you for your order\nOrder #: 112-1234567-1234567\nSubtotal: $29.99\nShipping & Handling: $3.99\nGrand Total: $33.98",
			constants.ConsumerStandard,
		},
		{
			"eu vat inclusive invoice",
			"Facture TTC\nTVA incluse\n20%\nTotal: 66,38 €",
			constants.ConsumerEUVatInclusive,
		},
		{
			"no signal",
			"lorem ipsum dolor sit amet",
			constants.FormatUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			assert.Equal(t, tt.want, got.Format)
			if tt.want != constants.FormatUnknown {
				assert.Greater(t, got.Confidence, 0.0)
				assert.LessOrEqual(t, got.Confidence, 1.0)
			}
		})
	}
}

func TestClassifyBusinessBeatsConsumerWording(t *testing.T) {
	c := NewClassifier(nil)

	// Business invoices still carry the consumer summary block; the
	// ex-VAT table header has to win anyway.
	text := "Bestellnummer: 302-1234567-1234567\n" +
		"Preis (ohne USt.)\n" +
		"Zwischensumme: 55,32 €\n" +
		"Versandkosten: 0,00 €\n" +
		"Gesamtsumme: 66,38 €\n" +
		"USt-IdNr: DE123456789"

	got := c.Classify(text)
	assert.Equal(t, constants.BusinessExVat, got.Format)
}
