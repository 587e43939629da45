package language

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
)

func TestDetect(t *testing.T) {
	d := NewDetector(nil)

	tests := []struct {
		name string
		text string
		want constants.Language
	}{
		{
			"german consumer invoice",
			"amazon.de\nVielen Dank für Ihre Bestellung\nBestellnummer: 302-1234567-1234567\nBestellung vom 15.12.2023\nZwischensumme: 66,38 €\nVersandkosten: 0,00 €\nGesamtsumme: 66,38 €",
			constants.LangDE,
		},
		{
			"french invoice",
			"amazon.fr\nMerci pour votre commande\nNuméro de commande : 403-1234567-1234567\nCommande du 15 décembre 2023\nSous-total : 66,38 €\nLivraison : 0,00 €",
			constants.LangFR,
		},
		{
			"japanese invoice",
			"amazon.co.jp\n注文番号: 249-1234567-1234567\n注文日: 2023年12月15日\n小計: ¥1,234\n配送料: ¥0\n合計: ¥1,234",
			constants.LangJA,
		},
		{
			"uk invoice",
			"amazon.co.uk\nVAT Invoice\nOrder Number: 026-1234567-1234567\nDispatched 15 December 2023\nSubtotal: £23.50\nPostage: £0.00\nGrand Total: £23.50",
			constants.LangENGB,
		},
		{
			"swiss invoice",
			"Rechnung\nBestellnummer: 302-1234567-1234567\nLieferung in die Schweiz\nZwischensumme: 1'176.45 CHF\nGesamtsumme: 1'176.45 CHF\nMWST-Nr: CHE-123.456.789",
			constants.LangDECH,
		},
		{
			"us invoice",
			"amazon.com\nOrder Placed: December 15, 2023\nOrder Number: 112-1234567-1234567\nItems Ordered\nOrder Total: $33.98",
			constants.LangEN,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.text)
			assert.Equal(t, tt.want, got.Language)
			assert.GreaterOrEqual(t, got.Confidence, 0.5)
		})
	}
}

func TestDetectMixedLanguageFooter(t *testing.T) {
	d := NewDetector(nil)

	// English legal boilerplate under a German invoice must not flip
	// the winner.
	text := "amazon.de\nBestellnummer: 302-1234567-1234567\n" +
		"Rechnung vom 15.12.2023\n" +
		"Zwischensumme: 66,38 €\nGesamtsumme: 66,38 €\nVersandkosten: 0,00 €\n" +
		"Vielen Dank für Ihre Bestellung\n" +
		"\n" +
		"Conditions of Use and Sale. Sold by Amazon EU S.a r.l.\n" +
		"For your order details visit the website."

	got := d.Detect(text)
	assert.Equal(t, constants.LangDE, got.Language)
}

func TestDetectWeakSignalFallsBackToEnglish(t *testing.T) {
	d := NewDetector(nil)

	for _, text := range []string{
		"",
		"lorem ipsum dolor sit amet",
		"12345 67890",
	} {
		got := d.Detect(text)
		assert.Equal(t, constants.LangEN, got.Language, "text %q", text)
		assert.Less(t, got.Confidence, 0.5)
	}
}
