// Package catalog defines the canonical product record and the storage
// contract shared by the importers and the query engine. Optional fields
// are pointers: nil means the value is unknown, which the hierarchical
// importer's sparse merge must distinguish from a present zero value.
package catalog

import (
	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"
)

// Source identifies the feed that produced or last touched an entry.
type Source string

// Feed sources.
const (
	SourceDelimited    Source = "DELIMITED"
	SourceHierarchical Source = "HIERARCHICAL"
)

// String returns the string representation of a Source.
func (s Source) String() string {
	return string(s)
}

// Code is a validation violation code accumulated on an entry.
type Code string

// Violation codes. Their order inside Entry.ValidationErrors is the
// fixed per-source check-evaluation order, not alphabetical.
const (
	CodeMissingName           Code = "MISSING_NAME"
	CodeMissingSKU            Code = "MISSING_SKU"
	CodeNonPositivePrice      Code = "NON_POSITIVE_PRICE"
	CodeMissingOrInvalidPrice Code = "MISSING_OR_INVALID_PRICE"
	CodeNegativeStock         Code = "NEGATIVE_STOCK"
)

// String returns the string representation of a Code.
func (c Code) String() string {
	return string(c)
}

// Entry is the canonical product record. SKU is the unique key across
// the catalog; entries are created by either importer and never deleted
// by the core.
type Entry struct {
	SKU          string           `json:"sku" yaml:"sku"`
	Name         string           `json:"name" yaml:"name"`
	Manufacturer *string          `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	FinalPrice   *decimal.Decimal `json:"finalPrice,omitempty" yaml:"final_price,omitempty"`
	Stock        *int             `json:"stock,omitempty" yaml:"stock,omitempty"`
	EAN          *string          `json:"ean,omitempty" yaml:"ean,omitempty"`
	UpdatedAt    utc.Time         `json:"updatedAt" yaml:"updated_at"`
	Source       Source           `json:"source" yaml:"source"`
	Valid        bool             `json:"valid" yaml:"valid"`

	// ValidationErrors is non-empty if and only if Valid is false.
	ValidationErrors []Code `json:"validationErrors" yaml:"validation_errors"`
}

// HasPrice reports whether a final price has ever been recorded.
func (e *Entry) HasPrice() bool {
	return e.FinalPrice != nil
}

// Shell returns a bare entry for a SKU that has no stored state yet.
// The hierarchical importer merges incoming fields into it.
func Shell(sku string) Entry {
	return Entry{SKU: sku}
}
