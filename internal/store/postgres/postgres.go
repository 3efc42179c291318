// Package postgres provides a catalog store backed by PostgreSQL via
// pgx. Save and SaveAll use upsert-by-SKU; SaveAll runs the whole batch
// in one transaction so the delimited feed's all-or-nothing commit maps
// onto a database-level guarantee.
package postgres

import (
	"context"
	"time"

	"github.com/agentstation/utc"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/errors"
)

// Schema is the DDL for the products table. Applied by Open when the
// table is missing.
const Schema = `
CREATE TABLE IF NOT EXISTS products (
    sku               text PRIMARY KEY,
    name              text NOT NULL,
    manufacturer      text,
    final_price       numeric(15,2),
    stock             integer,
    ean               text,
    updated_at        timestamptz NOT NULL,
    source            text NOT NULL,
    valid             boolean NOT NULL,
    validation_errors text[] NOT NULL DEFAULT '{}'
)`

const upsertSQL = `
INSERT INTO products (sku, name, manufacturer, final_price, stock, ean, updated_at, source, valid, validation_errors)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (sku) DO UPDATE SET
    name = EXCLUDED.name,
    manufacturer = EXCLUDED.manufacturer,
    final_price = EXCLUDED.final_price,
    stock = EXCLUDED.stock,
    ean = EXCLUDED.ean,
    updated_at = EXCLUDED.updated_at,
    source = EXCLUDED.source,
    valid = EXCLUDED.valid,
    validation_errors = EXCLUDED.validation_errors`

const selectSQL = `
SELECT sku, name, manufacturer, final_price, stock, ean, updated_at, source, valid, validation_errors
FROM products`

// Store is a PostgreSQL-backed catalog store.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database and ensures the products table exists.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.NewConfigError("postgres", "invalid database URL", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.NewStoreError("postgres", "open", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewStoreError("postgres", "open", err)
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, errors.NewStoreError("postgres", "open", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// FindAll implements catalog.Store, ordered by SKU.
func (s *Store) FindAll(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := s.pool.Query(ctx, selectSQL+" ORDER BY sku")
	if err != nil {
		return nil, errors.NewStoreError("postgres", "findAll", err)
	}
	defer rows.Close()

	var entries []catalog.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, errors.NewStoreError("postgres", "findAll", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("postgres", "findAll", err)
	}
	return entries, nil
}

// FindBySKU implements catalog.Store.
func (s *Store) FindBySKU(ctx context.Context, skuKey string) (catalog.Entry, error) {
	rows, err := s.pool.Query(ctx, selectSQL+" WHERE sku = $1", skuKey)
	if err != nil {
		return catalog.Entry{}, errors.NewStoreError("postgres", "findBySku", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return catalog.Entry{}, errors.NewStoreError("postgres", "findBySku", err)
		}
		return catalog.Entry{}, errors.NewNotFoundError("catalog entry", skuKey)
	}
	entry, err := scanEntry(rows)
	if err != nil {
		return catalog.Entry{}, errors.NewStoreError("postgres", "findBySku", err)
	}
	return entry, nil
}

// Save implements catalog.Store.
func (s *Store) Save(ctx context.Context, entry catalog.Entry) error {
	if _, err := s.pool.Exec(ctx, upsertSQL, upsertArgs(entry)...); err != nil {
		return errors.NewStoreError("postgres", "save", err)
	}
	return nil
}

// SaveAll implements catalog.Store. The batch commits atomically.
func (s *Store) SaveAll(ctx context.Context, entries []catalog.Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.NewStoreError("postgres", "saveAll", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	batch := &pgx.Batch{}
	for _, entry := range entries {
		batch.Queue(upsertSQL, upsertArgs(entry)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.NewStoreError("postgres", "saveAll", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.NewStoreError("postgres", "saveAll", err)
	}
	return nil
}

// upsertArgs flattens an entry into upsertSQL parameters. Optional
// fields pass through as NULL when absent.
func upsertArgs(entry catalog.Entry) []any {
	codes := make([]string, len(entry.ValidationErrors))
	for i, c := range entry.ValidationErrors {
		codes[i] = c.String()
	}

	return []any{
		entry.SKU,
		entry.Name,
		entry.Manufacturer,
		entry.FinalPrice,
		entry.Stock,
		entry.EAN,
		entry.UpdatedAt.Time,
		entry.Source.String(),
		entry.Valid,
		codes,
	}
}

// scanEntry reads one row into a catalog entry.
func scanEntry(rows pgx.Rows) (catalog.Entry, error) {
	var (
		entry     catalog.Entry
		price     *decimal.Decimal
		updatedAt time.Time
		source    string
		codes     []string
	)
	if err := rows.Scan(
		&entry.SKU,
		&entry.Name,
		&entry.Manufacturer,
		&price,
		&entry.Stock,
		&entry.EAN,
		&updatedAt,
		&source,
		&entry.Valid,
		&codes,
	); err != nil {
		return catalog.Entry{}, err
	}

	entry.FinalPrice = price
	entry.UpdatedAt = utc.Time{Time: updatedAt.UTC()}
	entry.Source = catalog.Source(source)
	entry.ValidationErrors = make([]catalog.Code, len(codes))
	for i, c := range codes {
		entry.ValidationErrors[i] = catalog.Code(c)
	}
	if len(codes) == 0 {
		entry.ValidationErrors = nil
	}
	return entry, nil
}
