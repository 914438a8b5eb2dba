// Package text provides rune-aware string helpers. Every length in this
// module is counted in Unicode code points, never bytes.
package text

import (
	"strings"
	"unicode/utf8"
)

// CountRunes counts the number of Unicode characters (runes) in the given text.
//
//	CountRunes("hello")      // 5
//	CountRunes("こんにちは") // 5
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate returns the first max runes of s. A non-positive max yields "".
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// TruncateWithEllipsis is Truncate that appends "..." when something was cut.
func TruncateWithEllipsis(s string, max int) string {
	if CountRunes(s) <= max {
		return s
	}
	return Truncate(s, max) + "..."
}

// CollapseSpace replaces every run of whitespace with a single space and trims
// the ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
