package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/common"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
)

func testInvoice() *entity.InvoiceRecord {
	date := time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)
	subtotal := decimal.RequireFromString("66.38")
	return &entity.InvoiceRecord{
		OrderNumber: "302-1234567-1234567",
		OrderDate:   &date,
		Vendor:      entity.VendorAmazon,
		Items: []entity.LineItem{
			{
				ASIN:        "B08N5WRWNW",
				Description: "Echo Dot",
				Quantity:    1,
				UnitPrice:   decimal.RequireFromString("66.38"),
				TotalPrice:  decimal.RequireFromString("66.38"),
				Currency:    "EUR",
				Confidence:  1.0,
			},
		},
		Subtotal:   &subtotal,
		Currency:   "EUR",
		Format:     constants.ConsumerEUVatInclusive,
		Language:   constants.LangDE,
		Validation: &entity.ValidationResult{Score: 100, IsValid: true},
	}
}

func TestSQLiteRoundtrip(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	saved := &StoredResult{ID: "inv-1", Invoice: testInvoice()}
	require.NoError(t, s.SaveResult(ctx, saved))

	got, err := s.GetResult(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", got.ID)
	assert.Equal(t, "302-1234567-1234567", got.Invoice.OrderNumber)
	require.Len(t, got.Invoice.Items, 1)
	assert.True(t, got.Invoice.Items[0].UnitPrice.Equal(decimal.RequireFromString("66.38")))
	require.NotNil(t, got.Invoice.Validation)
	assert.True(t, got.Invoice.Validation.IsValid)
}

func TestSQLiteSaveIsUpsert(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	inv := testInvoice()
	require.NoError(t, s.SaveResult(ctx, &StoredResult{ID: "inv-1", Invoice: inv}))

	inv.OrderNumber = "302-7654321-7654321"
	require.NoError(t, s.SaveResult(ctx, &StoredResult{ID: "inv-1", Invoice: inv}))

	got, err := s.GetResult(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "302-7654321-7654321", got.Invoice.OrderNumber)

	list, err := s.ListResults(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSQLiteGetMissing(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetResult(ctx, "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSaveRejectsInvalidResult(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	require.Error(t, s.SaveResult(ctx, &StoredResult{ID: "", Invoice: testInvoice()}))

	bad := testInvoice()
	bad.Currency = "euros"
	require.Error(t, s.SaveResult(ctx, &StoredResult{ID: "inv-2", Invoice: bad}))
}
