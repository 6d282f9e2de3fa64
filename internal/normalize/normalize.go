// Package normalize canonicalizes answers and player names so that comparisons
// ignore case, accents and surrounding or repeated whitespace.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s, strips diacritics and collapses whitespace.
// Punctuation such as hyphens is kept.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	lowered := strings.ToLower(s)
	// transform chains keep state, so one is built per call.
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), lowered)
	if err != nil {
		stripped = lowered
	}
	return strings.Join(strings.Fields(stripped), " ")
}

// FirstToken returns the normalized text up to the first space.
// It is only meant for opt-in leaderboard display merging.
func FirstToken(s string) string {
	n := Normalize(s)
	if i := strings.IndexByte(n, ' '); i >= 0 {
		return n[:i]
	}
	return n
}

// Equal compares two strings after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
