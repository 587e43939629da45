package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
)

const germanConsumerInvoice = `Amazon.de Rechnung
Bestellnummer: 302-1234567-1234567
Bestelldatum: 15. Dezember 2023

ASIN: B08N5WRWNW
Echo Dot (4. Generation)
155,32 €
20%
66,38 €66,38 €

Zwischensumme: 66,38 €
Versandkosten: 0,00 €
inkl. MwSt 20%: 11,06 €
Gesamtsumme: 66,38 €`

// The VAT-inclusive unit price is the reported price on consumer
// invoices. Picking the ex-VAT column instead silently reports 155.32
// for a 66.38 item, so this stays pinned to the literal numbers.
func TestConsumerColumnSelection(t *testing.T) {
	r := NewRegistry(Deps{})
	p := r.Select(constants.ConsumerEUVatInclusive, constants.LangDE)

	rec, err := p.Extract(germanConsumerInvoice)
	require.NoError(t, err)

	require.Len(t, rec.Items, 1)
	item := rec.Items[0]
	assert.Equal(t, "B08N5WRWNW", item.ASIN)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("66.38")), "unit price %s", item.UnitPrice)
	assert.True(t, item.TotalPrice.Equal(decimal.RequireFromString("66.38")), "total price %s", item.TotalPrice)
	assert.Equal(t, "302-1234567-1234567", rec.OrderNumber)
	require.NotNil(t, rec.OrderDate)
	assert.Equal(t, "2023-12-15", rec.OrderDate.Format("2006-01-02"))
	require.NotNil(t, rec.Subtotal)
	assert.True(t, rec.Subtotal.Equal(decimal.RequireFromString("66.38")))
	assert.Equal(t, "EUR", rec.Currency)
	require.NotNil(t, rec.Validation)
	assert.True(t, rec.Validation.IsValid)
}

const germanBusinessInvoice = `Amazon Business Rechnung
Bestellnummer: 028-7654321-7654321
Bestelldatum: 03.11.2023

ASIN: B09G9FPHY6
Logitech MX Master 3S
66,38 €
19%
79,00 €79,00 €

Zwischensumme: 66,38 €
Gesamtbetrag: 79,00 €`

// Business invoices report the ex-VAT unit price; the VAT-inclusive
// line total stays in TotalPrice.
func TestBusinessColumnSelection(t *testing.T) {
	r := NewRegistry(Deps{})
	p := r.Select(constants.BusinessExVat, constants.LangDE)
	assert.Equal(t, constants.BusinessExVat, p.Format())

	rec, err := p.Extract(germanBusinessInvoice)
	require.NoError(t, err)

	require.Len(t, rec.Items, 1)
	item := rec.Items[0]
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("66.38")), "unit price %s", item.UnitPrice)
	assert.True(t, item.TotalPrice.Equal(decimal.RequireFromString("79.00")), "total price %s", item.TotalPrice)

	// The net subtotal reconciles against unit price x quantity, not the
	// VAT-inclusive line totals; a consistent business invoice is valid.
	require.NotNil(t, rec.Validation)
	assert.Empty(t, rec.Validation.Errors)
	assert.Empty(t, rec.Validation.Warnings)
	assert.True(t, rec.Validation.IsValid)
}

const mergedDigitInvoice = `Amazon.de Rechnung
Bestellnummer: 304-9999999-0000001
Bestelldatum: 02.10.2023

ASIN: B07PGL2ZSL
1176,46 €
ASIN: B07PGL2ZSL
1176,46 €
ASIN: B07PGL2ZSL
3176,46 €

Zwischensumme: 891,66 €
Gesamtsumme: 891,66 €`

// A quantity digit merged into the price token ("1" + "176,46" ->
// "1176,46") must never propagate: the guard strips the merged digits
// and the reduced price always stays under the plausibility bound.
func TestOCRMergeContainment(t *testing.T) {
	r := NewRegistry(Deps{})
	p := r.Select(constants.ConsumerEUVatInclusive, constants.LangDE)

	rec, err := p.Extract(mergedDigitInvoice)
	require.NoError(t, err)

	require.Len(t, rec.Items, 3, "duplicate rows must stay separate items")
	bound := decimal.New(1000, 0)
	want := decimal.RequireFromString("176.46")
	for i, item := range rec.Items {
		assert.True(t, item.UnitPrice.Equal(want), "item %d unit price %s", i, item.UnitPrice)
		assert.True(t, item.UnitPrice.Cmp(bound) < 0, "item %d price above sanity bound", i)
		assert.Less(t, item.Confidence, 1.0, "recovered item %d must be low-confidence", i)
	}

	// The contained items sum to 529.38 against a declared subtotal of
	// 891.66; validation must surface exactly that discrepancy.
	require.NotNil(t, rec.Validation)
	require.Len(t, rec.Validation.Errors, 1)
	issue := rec.Validation.Errors[0]
	assert.Equal(t, constants.CheckItemSubtotalMismatch, issue.Type)
	assert.InDelta(t, 362.28, issue.Details["discrepancy"], 0.0001)
	assert.False(t, rec.Validation.IsValid)
}

const englishInvoice = `Amazon.com order confirmation
Order #: 113-4567890-1234567
Order placed: December 15, 2023

ASIN: B0C1J2K3L4
Kindle Paperwhite
Quantity: 2
$139.99$279.98

Items Subtotal: $279.98
Shipping & Handling: $5.99
Estimated Tax: $22.40
Grand Total: $308.37`

func TestEnglishExtraction(t *testing.T) {
	r := NewRegistry(Deps{})
	p := r.Select(constants.ConsumerStandard, constants.LangEN)

	rec, err := p.Extract(englishInvoice)
	require.NoError(t, err)

	assert.Equal(t, "113-4567890-1234567", rec.OrderNumber)
	require.NotNil(t, rec.OrderDate)
	assert.Equal(t, "2023-12-15", rec.OrderDate.Format("2006-01-02"))

	require.Len(t, rec.Items, 1)
	item := rec.Items[0]
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("139.99")))
	assert.True(t, item.TotalPrice.Equal(decimal.RequireFromString("279.98")))

	require.NotNil(t, rec.Shipping)
	assert.True(t, rec.Shipping.Equal(decimal.RequireFromString("5.99")))
	require.NotNil(t, rec.Tax)
	assert.True(t, rec.Tax.Equal(decimal.RequireFromString("22.40")))
	require.NotNil(t, rec.Total)
	assert.True(t, rec.Total.Equal(decimal.RequireFromString("308.37")))
	assert.Equal(t, "USD", rec.Currency)
}

func TestFieldExtractorsTolerateEmptyInput(t *testing.T) {
	r := NewRegistry(Deps{})
	p := r.Select(constants.ConsumerStandard, constants.LangEN)

	assert.Empty(t, p.ExtractOrderNumber(""))
	assert.Nil(t, p.ExtractOrderDate(""))
	assert.Nil(t, p.ExtractItems(""))
	assert.Nil(t, p.ExtractSubtotal(""))
	assert.Nil(t, p.ExtractShipping(""))
	assert.Nil(t, p.ExtractTax(""))
	assert.Nil(t, p.ExtractTotal(""))

	_, err := p.Extract("")
	require.Error(t, err)
}

const japaneseInvoice = `Amazon.co.jp 領収書
注文番号: 249-1234567-7654321
注文日: 2023年12月15日

ASIN: B0B1C2D3E4
Fire TV Stick
数量: 1
¥4,980

小計: ¥4,980
配送料: ¥0
注文合計: ¥4,980`

func TestJapaneseYenAmounts(t *testing.T) {
	r := NewRegistry(Deps{})
	p := r.Select(constants.ConsumerStandard, constants.LangJA)

	rec, err := p.Extract(japaneseInvoice)
	require.NoError(t, err)

	require.Len(t, rec.Items, 1)
	assert.True(t, rec.Items[0].UnitPrice.Equal(decimal.RequireFromString("4980")))
	// Yen has no minor unit: an everyday four-digit price must pass the
	// digit-merge guard untouched and at full confidence.
	assert.Equal(t, 1.0, rec.Items[0].Confidence)
	require.NotNil(t, rec.Total)
	assert.True(t, rec.Total.Equal(decimal.RequireFromString("4980")))
	assert.Equal(t, "JPY", rec.Currency)
	require.NotNil(t, rec.OrderDate)
	assert.Equal(t, "2023-12-15", rec.OrderDate.Format("2006-01-02"))
	require.NotNil(t, rec.Validation)
	assert.True(t, rec.Validation.IsValid)
	assert.Empty(t, rec.Validation.Errors)
}
