// Package memory provides an in-memory catalog store. It backs tests
// and the default CLI configuration, and is safe for the concurrent
// read path the query engine requires.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/errors"
)

// Store is a map-backed catalog store keyed by normalized SKU.
type Store struct {
	mu      sync.RWMutex
	entries map[string]catalog.Entry
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{entries: make(map[string]catalog.Entry)}
}

// FindAll implements catalog.Store. Entries come back sorted by SKU so
// the result is deterministic across calls.
func (s *Store) FindAll(_ context.Context) ([]catalog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]catalog.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	return all, nil
}

// FindBySKU implements catalog.Store.
func (s *Store) FindBySKU(_ context.Context, skuKey string) (catalog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[skuKey]
	if !ok {
		return catalog.Entry{}, errors.NewNotFoundError("catalog entry", skuKey)
	}
	return entry, nil
}

// Save implements catalog.Store with upsert-by-SKU semantics.
func (s *Store) Save(_ context.Context, entry catalog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.SKU] = entry
	return nil
}

// SaveAll implements catalog.Store. Later entries in the batch win on
// key collision, matching input order.
func (s *Store) SaveAll(_ context.Context, entries []catalog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		s.entries[entry.SKU] = entry
	}
	return nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
