// Package files provides a catalog store persisted as one YAML snapshot
// on disk. The whole catalog is loaded at open and rewritten on every
// save, which is plenty for catalog-sized data and keeps the file
// human-inspectable.
package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/feedsmith/feedsmith/pkg/catalog"
	"github.com/feedsmith/feedsmith/pkg/errors"
)

// snapshot is the on-disk document shape.
type snapshot struct {
	Entries []catalog.Entry `yaml:"entries"`
}

// Store is a YAML-file-backed catalog store.
type Store struct {
	path string

	mu      sync.RWMutex
	entries map[string]catalog.Entry
}

// Open loads the store from path, creating an empty catalog when the
// file does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]catalog.Entry),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.NewIOError("read", path, err)
	}

	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.NewParseError("yaml", 0, "", fmt.Sprintf("catalog file %s", path), err)
	}
	for _, entry := range snap.Entries {
		s.entries[entry.SKU] = entry
	}
	return s, nil
}

// FindAll implements catalog.Store, sorted by SKU.
func (s *Store) FindAll(_ context.Context) ([]catalog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(), nil
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

// Save implements catalog.Store and rewrites the snapshot.
func (s *Store) Save(_ context.Context, entry catalog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.SKU] = entry
	return s.persist()
}

// SaveAll implements catalog.Store with a single snapshot rewrite.
func (s *Store) SaveAll(_ context.Context, entries []catalog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		s.entries[entry.SKU] = entry
	}
	return s.persist()
}

// persist writes the snapshot atomically via a temp file rename.
// Callers hold the write lock.
func (s *Store) persist() error {
	data, err := yaml.Marshal(snapshot{Entries: s.sorted()})
	if err != nil {
		return errors.NewStoreError("files", "save", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.NewIOError("write", s.path, err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.NewIOError("write", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.NewIOError("write", s.path, err)
	}
	return nil
}

// sorted returns entries ordered by SKU. Callers hold at least a read lock.
func (s *Store) sorted() []catalog.Entry {
	all := make([]catalog.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	return all
}
