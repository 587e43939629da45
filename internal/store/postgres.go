package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/16mlwood-afk/invoice-parser-sub002/internal/common"
)

// PostgresStore persists results in Postgres, used by the HTTP
// service.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates the pgx pool with the configured limits and
// verifies connectivity.
func OpenPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("store.postgres.connecting")

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "invoiced"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("store.postgres.connected")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// EnsureSchema creates the result tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS invoices (
	id           TEXT PRIMARY KEY,
	order_number TEXT,
	order_date   DATE,
	format       TEXT,
	language     TEXT,
	currency     TEXT,
	is_valid     BOOLEAN NOT NULL DEFAULT FALSE,
	score        INTEGER NOT NULL DEFAULT 0,
	payload      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS invoice_items (
	invoice_id  TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	asin        TEXT,
	description TEXT,
	quantity    INTEGER NOT NULL,
	unit_price  NUMERIC(12,2) NOT NULL,
	total_price NUMERIC(12,2) NOT NULL,
	currency    TEXT,
	confidence  DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (invoice_id, position)
);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveResult(ctx context.Context, r *StoredResult) error {
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	score, valid := 0, false
	if r.Invoice.Validation != nil {
		score, valid = r.Invoice.Validation.Score, r.Invoice.Validation.IsValid
	}
	_, err = tx.Exec(ctx, `
INSERT INTO invoices (id, order_number, order_date, format, language, currency, is_valid, score, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
	order_number = EXCLUDED.order_number,
	order_date   = EXCLUDED.order_date,
	format       = EXCLUDED.format,
	language     = EXCLUDED.language,
	currency     = EXCLUDED.currency,
	is_valid     = EXCLUDED.is_valid,
	score        = EXCLUDED.score,
	payload      = EXCLUDED.payload`,
		r.ID, r.Invoice.OrderNumber, r.Invoice.OrderDate, string(r.Invoice.Format),
		string(r.Invoice.Language), r.Invoice.Currency, valid, score, payload, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, r.ID); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for i, it := range r.Invoice.Items {
		_, err = tx.Exec(ctx, `
INSERT INTO invoice_items (invoice_id, position, asin, description, quantity, unit_price, total_price, currency, confidence)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			r.ID, i, it.ASIN, it.Description, it.Quantity,
			it.UnitPrice.StringFixed(2), it.TotalPrice.StringFixed(2), it.Currency, it.Confidence)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Debug("store.save.ok", "id", r.ID, "items", len(r.Invoice.Items))
	return nil
}

func (s *PostgresStore) GetResult(ctx context.Context, id string) (*StoredResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, payload, created_at FROM invoices WHERE id = $1`, id)

	var (
		out     StoredResult
		payload []byte
	)
	if err := row.Scan(&out.ID, &payload, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewAppError("RESULT_NOT_FOUND", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("query invoice: %w", err)
	}
	inv, err := unmarshalInvoice(payload)
	if err != nil {
		return nil, err
	}
	out.Invoice = inv
	return &out, nil
}

func (s *PostgresStore) ListResults(ctx context.Context, limit int) ([]*StoredResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, payload, created_at FROM invoices ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var out []*StoredResult
	for rows.Next() {
		var (
			r       StoredResult
			payload []byte
		)
		if err := rows.Scan(&r.ID, &payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv, err := unmarshalInvoice(payload)
		if err != nil {
			return nil, err
		}
		r.Invoice = inv
		out = append(out, &r)
	}
	return out, rows.Err()
}

// HealthCheck pings the pool, bounded by timeout.
func (s *PostgresStore) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.logger.Info("store.postgres.closing")
	s.pool.Close()
}
