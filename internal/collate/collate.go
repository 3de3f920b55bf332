// Package collate implements the string comparison rules modimport uses for
// deduplication and sorting.
//
// The strategy is locale-independent Unicode full case folding
// (golang.org/x/text/cases.Fold) with no accent stripping. Two strings are
// equal when their folded forms are byte-identical. Ordering compares folded
// forms by byte value first and falls back to the unfolded strings, so the
// result is a total order that does not depend on the host locale.
package collate

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Key returns the folded form of s, suitable as a map key for
// case-insensitive deduplication.
func Key(s string) string {
	return cases.Fold().String(s)
}

// Equal reports whether a and b are equal under case folding.
func Equal(a, b string) bool {
	if a == b {
		return true
	}
	return Key(a) == Key(b)
}

// Compare orders a and b by folded form, breaking ties on the raw strings.
func Compare(a, b string) int {
	if c := strings.Compare(Key(a), Key(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// Dedup returns items with duplicate keys removed, keeping the first
// occurrence of each folded key and preserving input order.
func Dedup[T any](items []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := Key(key(item))
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// SortBy sorts items in place by Compare on the extracted string.
// The sort is stable so equal items keep their relative order.
func SortBy[T any](items []T, field func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return Compare(field(items[i]), field(items[j])) < 0
	})
}
