package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/16mlwood-afk/invoice-parser-sub002/internal/common"
)

// SQLiteStore persists results in a local SQLite file; the batch CLI
// and tests use it.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the database at path and ensures the
// schema. ":memory:" gives an ephemeral store.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writes; one connection avoids lock
	// contention errors under the worker pool.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS invoices (
	id           TEXT PRIMARY KEY,
	order_number TEXT,
	order_date   TEXT,
	format       TEXT,
	language     TEXT,
	currency     TEXT,
	is_valid     INTEGER NOT NULL DEFAULT 0,
	score        INTEGER NOT NULL DEFAULT 0,
	payload      TEXT NOT NULL,
	created_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS invoice_items (
	invoice_id  TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	asin        TEXT,
	description TEXT,
	quantity    INTEGER NOT NULL,
	unit_price  TEXT NOT NULL,
	total_price TEXT NOT NULL,
	currency    TEXT,
	confidence  REAL NOT NULL,
	PRIMARY KEY (invoice_id, position)
);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveResult(ctx context.Context, r *StoredResult) error {
	if err := validateResult(r); err != nil {
		return err
	}
	payload, err := marshalInvoice(r.Invoice)
	if err != nil {
		return err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	orderDate := ""
	if r.Invoice.OrderDate != nil {
		orderDate = r.Invoice.OrderDate.Format("2006-01-02")
	}
	score, valid := 0, 0
	if r.Invoice.Validation != nil {
		score = r.Invoice.Validation.Score
		if r.Invoice.Validation.IsValid {
			valid = 1
		}
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO invoices (id, order_number, order_date, format, language, currency, is_valid, score, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	order_number = excluded.order_number,
	order_date   = excluded.order_date,
	format       = excluded.format,
	language     = excluded.language,
	currency     = excluded.currency,
	is_valid     = excluded.is_valid,
	score        = excluded.score,
	payload      = excluded.payload`,
		r.ID, r.Invoice.OrderNumber, orderDate, string(r.Invoice.Format),
		string(r.Invoice.Language), r.Invoice.Currency, valid, score,
		string(payload), r.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = ?`, r.ID); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for i, it := range r.Invoice.Items {
		_, err = tx.ExecContext(ctx, `
INSERT INTO invoice_items (invoice_id, position, asin, description, quantity, unit_price, total_price, currency, confidence)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, it.ASIN, it.Description, it.Quantity,
			it.UnitPrice.StringFixed(2), it.TotalPrice.StringFixed(2), it.Currency, it.Confidence)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("store.save.ok", "id", r.ID, "items", len(r.Invoice.Items))
	return nil
}

func (s *SQLiteStore) GetResult(ctx context.Context, id string) (*StoredResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, payload, created_at FROM invoices WHERE id = ?`, id)

	var (
		out     StoredResult
		payload string
		created string
	)
	if err := row.Scan(&out.ID, &payload, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewAppError("RESULT_NOT_FOUND", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("query invoice: %w", err)
	}
	inv, err := unmarshalInvoice([]byte(payload))
	if err != nil {
		return nil, err
	}
	out.Invoice = inv
	if ts, err := time.Parse(time.RFC3339, created); err == nil {
		out.CreatedAt = ts
	}
	return &out, nil
}

func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]*StoredResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload, created_at FROM invoices ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*StoredResult
	for rows.Next() {
		var (
			r       StoredResult
			payload string
			created string
		)
		if err := rows.Scan(&r.ID, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv, err := unmarshalInvoice([]byte(payload))
		if err != nil {
			return nil, err
		}
		r.Invoice = inv
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			r.CreatedAt = ts
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("store.sqlite.close", "error", err)
	}
}
