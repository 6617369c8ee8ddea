package utils

import "strings"

// Truncate shortens s to at most maxLen runes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// OneLine collapses all whitespace runs, newlines included, into single
// spaces so multi-line text fits a table cell.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
