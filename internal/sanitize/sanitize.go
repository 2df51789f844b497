// Package sanitize turns user-supplied strings into plain, markup-free text.
package sanitize

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// strict drops every tag and attribute; script and style bodies are discarded with their tags.
var strict = bluemonday.StrictPolicy()

// Clean removes all markup from raw. It never fails; the worst case is an empty string.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}
	return strict.Sanitize(raw)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Name cleans a room or display name, trims surrounding whitespace and caps it at n runes.
func Name(raw string, n int) string {
	return strings.TrimSpace(Truncate(strings.TrimSpace(Clean(raw)), n))
}

// Length reports the rune length of s.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}
