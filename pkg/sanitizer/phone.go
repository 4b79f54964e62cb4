package sanitizer

import (
	"regexp"
	"strings"
)

var (
	e164Regex       = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
	phoneStripRegex = regexp.MustCompile(`[\s\-().]`)
)

// NormalizePhone strips separators and validates the result against E.164.
// Returns the empty string when the input cannot be normalized; customer
// contact is optional on a booking, so callers treat "" as absent.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	phone = phoneStripRegex.ReplaceAllString(phone, "")
	if strings.HasPrefix(phone, "00") {
		phone = "+" + phone[2:]
	}

	if !e164Regex.MatchString(phone) {
		return ""
	}
	return phone
}
