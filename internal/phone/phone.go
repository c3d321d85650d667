// Package phone canonicalizes customer phone numbers into a dialable
// international format.
package phone

import "strings"

// Normalize converts a raw phone string into E.164-style form. Indian mobile
// numbers (10 digits starting 6-9) get the +91 prefix; 12-digit numbers
// already carrying the 91 country code get a leading +. Anything else keeps
// its digits behind a +, or is returned unchanged if it already starts with
// one. Empty input is returned unchanged. Normalize never fails and is
// idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}

	digits := digitsOf(raw)

	if len(digits) == 10 && strings.ContainsRune("6789", rune(digits[0])) {
		return "+91" + digits
	}
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		return "+" + digits
	}
	if !strings.HasPrefix(raw, "+") {
		return "+" + digits
	}
	return raw
}

func digitsOf(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
