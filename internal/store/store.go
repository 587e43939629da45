// Package store persists extraction results for the collaborator ring
// (HTTP service and batch CLI). The core pipeline never touches it.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/16mlwood-afk/invoice-parser-sub002/internal/common"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
)

// StoredResult is one persisted extraction outcome, keyed by the
// caller's correlation ID.
type StoredResult struct {
	ID        string                `json:"id"`
	Invoice   *entity.InvoiceRecord `json:"invoice"`
	CreatedAt time.Time             `json:"created_at"`
}

// Store is the persistence contract shared by the Postgres and SQLite
// implementations.
type Store interface {
	SaveResult(ctx context.Context, r *StoredResult) error
	GetResult(ctx context.Context, id string) (*StoredResult, error)
	ListResults(ctx context.Context, limit int) ([]*StoredResult, error)
	Close()
}

const defaultListLimit = 100

func validateResult(r *StoredResult) error {
	if r == nil || r.Invoice == nil {
		return common.NewAppError("INVALID_RESULT", "result and invoice are required", common.ErrInvalidInput)
	}
	v := common.NewValidator()
	v.Field("id", r.ID, common.Required)
	if r.Invoice.Currency != "" {
		v.Field("currency", r.Invoice.Currency, common.CurrencyCode)
	}
	if v.HasErrors() {
		return common.NewAppError("INVALID_RESULT", v.ErrorMessage(), common.ErrInvalidInput)
	}
	return nil
}

func marshalInvoice(rec *entity.InvoiceRecord) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal invoice: %w", err)
	}
	return b, nil
}

func unmarshalInvoice(b []byte) (*entity.InvoiceRecord, error) {
	var rec entity.InvoiceRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal invoice: %w", err)
	}
	return &rec, nil
}
