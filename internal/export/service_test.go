package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
)

func sampleRecords() []*entity.InvoiceRecord {
	date := time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)
	subtotal := decimal.RequireFromString("66.38")
	total := decimal.RequireFromString("66.38")
	return []*entity.InvoiceRecord{
		{
			OrderNumber: "302-1234567-1234567",
			OrderDate:   &date,
			Vendor:      entity.VendorAmazon,
			Items: []entity.LineItem{
				{
					ASIN:        "B08N5WRWNW",
					Description: "Echo Dot (4. Generation)",
					Quantity:    1,
					UnitPrice:   decimal.RequireFromString("66.38"),
					TotalPrice:  decimal.RequireFromString("66.38"),
					Currency:    "EUR",
					Confidence:  1.0,
				},
			},
			Subtotal:   &subtotal,
			Total:      &total,
			Currency:   "EUR",
			Format:     constants.ConsumerEUVatInclusive,
			Language:   constants.LangDE,
			Validation: &entity.ValidationResult{Score: 100, IsValid: true},
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	svc := NewService(nil)

	b, err := svc.WriteXLSX(sampleRecords())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Order Number", rows[0][0])
	assert.Equal(t, "302-1234567-1234567", rows[1][0])
	assert.Equal(t, "2023-12-15", rows[1][1])
	assert.Equal(t, "66.38", rows[1][5])

	items, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B08N5WRWNW", items[1][1])
	assert.Equal(t, "66.38", items[1][4])
}

func TestWriteCSV(t *testing.T) {
	svc := NewService(nil)

	b, err := svc.WriteCSV(sampleRecords())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, invoiceHeaders, rows[0])
	assert.Equal(t, "302-1234567-1234567", rows[1][0])
	assert.Equal(t, "true", rows[1][11])
}

func TestWriteJSONValidatesAgainstSchema(t *testing.T) {
	svc := NewService(nil)

	b, err := svc.WriteJSON(sampleRecords())
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Amazon", out[0]["vendor"])
	assert.Equal(t, "66.38", out[0]["subtotal"], "money exports as a decimal string")
}

func TestWriteJSONEmpty(t *testing.T) {
	svc := NewService(nil)
	b, err := svc.WriteJSON(nil)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(b))
}
