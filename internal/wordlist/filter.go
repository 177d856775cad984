// Package wordlist provides word list filtering helpers.
package wordlist

import (
	"strings"

	"github.com/verte-zerg/wordmonster/internal/model"
)

// FilterFunc returns true when a pair should be kept.
type FilterFunc func(model.WordPair) bool

// KeepComplete drops pairs with a blank English or Chinese side.
func KeepComplete(pair model.WordPair) bool {
	return strings.TrimSpace(pair.EN) != "" && strings.TrimSpace(pair.ZH) != ""
}

// Filter returns the pairs accepted by keep, preserving order.
func Filter(pairs []model.WordPair, keep FilterFunc) []model.WordPair {
	out := make([]model.WordPair, 0, len(pairs))
	for _, pair := range pairs {
		if keep(pair) {
			out = append(out, pair)
		}
	}
	return out
}
