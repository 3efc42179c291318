// Package query serves the catalog read view: load everything, filter,
// sort, project. It never mutates the catalog and supports any number
// of concurrent invocations against the shared store.
package query

import (
	"context"
	"sort"
	"strings"

	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/feedsmith/feedsmith/pkg/catalog"
)

// Options controls one catalog read.
type Options struct {
	// Filter is a substring matched case-insensitively against SKU,
	// name, manufacturer and EAN. Blank means no filtering.
	Filter string

	// Sort is "field,direction". Recognized fields: price, updatedAt,
	// sku; anything else (including blank) sorts by name. Direction
	// defaults to asc.
	Sort string

	// OnlyValid drops entries that failed validation.
	OnlyValid bool
}

// DefaultOptions returns the default read: all entries, sorted by name
// ascending, invalid entries excluded.
func DefaultOptions() Options {
	return Options{OnlyValid: true}
}

// ProductView is the projection of a catalog entry served to readers.
// Fields mirror the entry one to one; no additional computation.
type ProductView struct {
	SKU              string           `json:"sku"`
	Name             string           `json:"name"`
	Manufacturer     *string          `json:"manufacturer,omitempty"`
	FinalPrice       *decimal.Decimal `json:"finalPrice,omitempty"`
	Stock            *int             `json:"stock,omitempty"`
	EAN              *string          `json:"ean,omitempty"`
	UpdatedAt        utc.Time         `json:"updatedAt"`
	Source           catalog.Source   `json:"source"`
	Valid            bool             `json:"valid"`
	ValidationErrors []catalog.Code   `json:"validationErrors"`
}

// Engine executes reads against a catalog store.
type Engine struct {
	store catalog.Store
}

// New creates a query engine over the given store.
func New(store catalog.Store) *Engine {
	return &Engine{store: store}
}

// Products loads the full catalog and applies filter, sort and
// projection per the options.
func (e *Engine) Products(ctx context.Context, opts Options) ([]ProductView, error) {
	entries, err := e.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// Caser is stateful, one per invocation.
	fold := cases.Fold()

	if opts.OnlyValid {
		kept := entries[:0:0]
		for _, entry := range entries {
			if entry.Valid {
				kept = append(kept, entry)
			}
		}
		entries = kept
	}

	if strings.TrimSpace(opts.Filter) != "" {
		needle := fold.String(opts.Filter)
		kept := entries[:0:0]
		for _, entry := range entries {
			if matches(fold, entry, needle) {
				kept = append(kept, entry)
			}
		}
		entries = kept
	}

	field, descending := parseSort(opts.Sort)
	cmp := comparator(field)
	sort.SliceStable(entries, func(i, j int) bool {
		// Descending inverts the ascending comparator wholesale, which
		// deliberately places absent values first instead of last.
		if descending {
			return cmp(fold, entries[j], entries[i]) < 0
		}
		return cmp(fold, entries[i], entries[j]) < 0
	})

	views := make([]ProductView, len(entries))
	for i, entry := range entries {
		views[i] = project(entry)
	}
	return views, nil
}

// matches reports whether the case-folded needle is a substring of any
// of the entry's searchable fields. Absent fields never match.
func matches(fold cases.Caser, entry catalog.Entry, needle string) bool {
	if strings.Contains(fold.String(entry.SKU), needle) {
		return true
	}
	if strings.Contains(fold.String(entry.Name), needle) {
		return true
	}
	if entry.Manufacturer != nil && strings.Contains(fold.String(*entry.Manufacturer), needle) {
		return true
	}
	if entry.EAN != nil && strings.Contains(fold.String(*entry.EAN), needle) {
		return true
	}
	return false
}

// parseSort splits a "field,direction" spec. Defaults: field name,
// direction ascending.
func parseSort(spec string) (field string, descending bool) {
	field = "name"
	dir := "asc"

	if strings.TrimSpace(spec) != "" {
		parts := strings.SplitN(spec, ",", 2)
		field = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			dir = strings.ToLower(strings.TrimSpace(parts[1]))
		}
	}
	return field, dir == "desc"
}

// compareFn orders two entries ascending, absent values last.
type compareFn func(fold cases.Caser, a, b catalog.Entry) int

// comparator selects the ascending comparator for a sort field.
// Unrecognized fields fall back to name.
func comparator(field string) compareFn {
	switch field {
	case "price":
		return comparePrice
	case "updatedAt":
		return func(_ cases.Caser, a, b catalog.Entry) int {
			return a.UpdatedAt.Time.Compare(b.UpdatedAt.Time)
		}
	case "sku":
		return func(fold cases.Caser, a, b catalog.Entry) int {
			return strings.Compare(fold.String(a.SKU), fold.String(b.SKU))
		}
	default:
		return func(fold cases.Caser, a, b catalog.Entry) int {
			return strings.Compare(fold.String(a.Name), fold.String(b.Name))
		}
	}
}

func comparePrice(_ cases.Caser, a, b catalog.Entry) int {
	switch {
	case a.FinalPrice == nil && b.FinalPrice == nil:
		return 0
	case a.FinalPrice == nil:
		return 1 // absent sorts last ascending
	case b.FinalPrice == nil:
		return -1
	default:
		return a.FinalPrice.Cmp(*b.FinalPrice)
	}
}

// project maps an entry to its view model.
func project(entry catalog.Entry) ProductView {
	return ProductView{
		SKU:              entry.SKU,
		Name:             entry.Name,
		Manufacturer:     entry.Manufacturer,
		FinalPrice:       entry.FinalPrice,
		Stock:            entry.Stock,
		EAN:              entry.EAN,
		UpdatedAt:        entry.UpdatedAt,
		Source:           entry.Source,
		Valid:            entry.Valid,
		ValidationErrors: entry.ValidationErrors,
	}
}
