// Package utils provides shared helpers for text, vectors, and logging.
package utils

import "unicode/utf8"

// Truncate returns s cut to maxLen runes with "..." appended when it was cut.
// If maxLen is 0 or negative, s is returned unchanged.
func Truncate(s string, maxLen int) string {
	cut := TruncateRunes(s, maxLen)
	if len(cut) == len(s) {
		return s
	}
	return cut + "..."
}

// TruncateRunes returns the first maxLen runes of s. Multi-byte characters are
// never split. If maxLen is 0 or negative, s is returned unchanged.
func TruncateRunes(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i]
		}
		n++
	}
	return s
}

// RuneCount is utf8.RuneCountInString, kept here so callers bounding text
// sizes use one unit everywhere.
func RuneCount(s string) int {
	return utf8.RuneCountInString(s)
}
