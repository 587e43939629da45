package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
)

// VendorAmazon is the only vendor this pipeline handles.
const VendorAmazon = "Amazon"

// LineItem is a single purchased position on an invoice.
//
// TotalPrice tracks UnitPrice * Quantity within rounding tolerance when
// both were extracted. Confidence drops below 1.0 when a price had to be
// recovered from a corrupted token.
type LineItem struct {
	ASIN        string          `json:"asin,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Currency    string          `json:"currency"`
	Confidence  float64         `json:"confidence"`
}

// InvoiceRecord is the structured result of extracting one invoice text.
// It is assembled once by a parser and mutated only by the validation
// engine attaching its result (and, after recovery, the extraction
// metadata).
type InvoiceRecord struct {
	OrderNumber string              `json:"order_number,omitempty"`
	OrderDate   *time.Time          `json:"order_date,omitempty"`
	Vendor      string              `json:"vendor"`
	Items       []LineItem          `json:"items"`
	Subtotal    *decimal.Decimal    `json:"subtotal,omitempty"`
	Shipping    *decimal.Decimal    `json:"shipping,omitempty"`
	Tax         *decimal.Decimal    `json:"tax,omitempty"`
	Total       *decimal.Decimal    `json:"total,omitempty"`
	Currency    string              `json:"currency,omitempty"`
	Validation  *ValidationResult   `json:"validation,omitempty"`
	Metadata    *ExtractionMetadata `json:"extraction_metadata,omitempty"`

	Format   constants.InvoiceFormat `json:"format,omitempty"`
	Language constants.Language      `json:"language,omitempty"`
}

// ItemTotal sums the line-item totals.
func (r *InvoiceRecord) ItemTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range r.Items {
		sum = sum.Add(it.TotalPrice)
	}
	return sum
}

// NetItemTotal sums unit price times quantity. On business layouts the
// unit price is the ex-VAT figure, making this the net goods total.
func (r *InvoiceRecord) NetItemTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range r.Items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.New(int64(it.Quantity), 0)))
	}
	return sum
}
