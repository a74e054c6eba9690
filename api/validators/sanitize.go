package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims free-text form input, folds runs of whitespace and
// control characters into single spaces, and caps the result at maxLen runes.
// A maxLen of zero or less disables the cap.
func SanitizeString(input string, maxLen int) string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	cleaned := strings.Join(fields, " ")
	if maxLen <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= maxLen {
		return cleaned
	}
	return strings.TrimSpace(string(runes[:maxLen]))
}
