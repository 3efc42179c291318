package catalog

import "context"

// Store is durable keyed storage for catalog entries. Save and SaveAll
// have upsert-by-SKU semantics. Implementations must be safe for
// concurrent readers; the import path writes from a single goroutine.
type Store interface {
	// FindAll returns every stored entry. Order is implementation
	// defined but must be deterministic.
	FindAll(ctx context.Context) ([]Entry, error)

	// FindBySKU returns the entry stored under the given normalized SKU,
	// or errors.ErrNotFound if no such entry exists.
	FindBySKU(ctx context.Context, sku string) (Entry, error)

	// Save upserts a single entry keyed by its SKU.
	Save(ctx context.Context, entry Entry) error

	// SaveAll upserts a batch of entries in input order.
	SaveAll(ctx context.Context, entries []Entry) error
}
