// Package pricing computes the tax-inclusive final price of a catalog
// entry. The two feeds carry prices differently: the delimited feed
// ships a gross amount as text, the hierarchical feed ships a net
// amount plus a VAT rate that must be combined.
package pricing

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/feedsmith/feedsmith/pkg/errors"
)

// one is reused by Derive for the (1 + vatRate) factor.
var one = decimal.NewFromInt(1)

// ParseGross parses a delimited-feed gross price. The amount is already
// tax inclusive; interior whitespace (thousands separators) is stripped
// and the value keeps whatever scale the feed provided, no forced
// rounding. A non-numeric value is an error, which the delimited
// importer treats as fatal for the whole batch.
func ParseGross(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, errors.NewParseError("delimited", 0, "grossPrice", "not a numeric amount: "+raw, err)
	}
	return d, nil
}

// Derive computes a final price from a net amount and a VAT rate:
// round_half_up(net * (1 + vatRate), 2). A final price is derivable
// only when both inputs are present; otherwise Derive returns nil and
// the hierarchical merge decides whether a previously stored price
// survives. Never an error.
func Derive(net, vatRate *decimal.Decimal) *decimal.Decimal {
	if net == nil || vatRate == nil {
		return nil
	}

	// decimal.Round rounds half away from zero, which is HALF_UP
	// at two fractional digits.
	final := net.Mul(one.Add(*vatRate)).Round(2)
	return &final
}
