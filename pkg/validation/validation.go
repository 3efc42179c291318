// Package validation applies the per-source business rules to a product
// record. Validation failures are data, not errors: the record is still
// persisted, carrying its ordered violation codes, and the query layer
// filters it out by default.
package validation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/feedsmith/feedsmith/pkg/catalog"
)

// Input is the pure-function input of a validation pass: the normalized
// SKU plus the final field values that will be persisted. Absent price
// and stock are nil, never zero.
type Input struct {
	SKU   string
	Name  string
	Price *decimal.Decimal
	Stock *int
}

// Delimited evaluates the delimited-feed rule set. Checks run
// unconditionally, in this exact order, so several codes can accumulate:
// MISSING_NAME, MISSING_SKU, NON_POSITIVE_PRICE, NEGATIVE_STOCK.
func Delimited(in Input) (bool, []catalog.Code) {
	var codes []catalog.Code

	if blank(in.Name) {
		codes = append(codes, catalog.CodeMissingName)
	}
	if blank(in.SKU) {
		codes = append(codes, catalog.CodeMissingSKU)
	}
	if in.Price != nil && in.Price.Sign() <= 0 {
		codes = append(codes, catalog.CodeNonPositivePrice)
	}
	if in.Stock != nil && *in.Stock < 0 {
		codes = append(codes, catalog.CodeNegativeStock)
	}

	return len(codes) == 0, codes
}

// Hierarchical evaluates the hierarchical-feed rule set. Order:
// MISSING_SKU, MISSING_NAME, MISSING_OR_INVALID_PRICE, NEGATIVE_STOCK.
// Unlike the delimited rule set, an absent price is itself a violation.
func Hierarchical(in Input) (bool, []catalog.Code) {
	var codes []catalog.Code

	if blank(in.SKU) {
		codes = append(codes, catalog.CodeMissingSKU)
	}
	if blank(in.Name) {
		codes = append(codes, catalog.CodeMissingName)
	}
	if in.Price == nil || in.Price.Sign() <= 0 {
		codes = append(codes, catalog.CodeMissingOrInvalidPrice)
	}
	if in.Stock != nil && *in.Stock < 0 {
		codes = append(codes, catalog.CodeNegativeStock)
	}

	return len(codes) == 0, codes
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
