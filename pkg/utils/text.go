// Package utils provides shared utilities for text and logging.
package utils

// Truncate shortens s to at most maxLen runes and appends "..." when
// anything was cut. The limit counts runes, so multibyte text is never
// split mid-character. If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
