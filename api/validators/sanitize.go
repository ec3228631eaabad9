package validators

import "strings"

// SanitizeString trims surrounding whitespace and truncates to maxLen runes.
// Used on free-text query params before they reach a repository.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 {
		runes := []rune(trimmed)
		if len(runes) > maxLen {
			return string(runes[:maxLen])
		}
	}
	return trimmed
}
