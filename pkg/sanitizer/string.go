package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace runs
// into single spaces. Control characters count as whitespace.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeServiceName keeps the service name's case: eligibility matching is
// an exact comparison against the provider's offered set.
func NormalizeServiceName(name string) string {
	return TrimAndNormalize(name)
}

// TruncateNote cuts a note to maxLen runes after normalization. Rune-based so
// a multi-byte character is never split.
func TruncateNote(note string, maxLen int) string {
	note = TrimAndNormalize(note)
	runes := []rune(note)
	if len(runes) <= maxLen {
		return note
	}
	return string(runes[:maxLen])
}
