// Package sku canonicalizes raw product identifiers. Every identifier
// entering the catalog, from either feed, passes through Normalize so
// that "ab-12 cd" and "AB12CD" key the same entry.
package sku

import "strings"

// Normalize canonicalizes a raw SKU: uppercase, then every rune outside
// A-Z0-9 is dropped. It is total (no error conditions) and idempotent;
// callers holding an absent raw value pass "" and get "" back.
func Normalize(raw string) string {
	upper := strings.ToUpper(raw)
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, upper)
}
