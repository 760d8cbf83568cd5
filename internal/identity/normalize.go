package identity

import "strings"

// NormalizePhone strips every non-digit code point from raw (including
// invisible formatting characters) and keeps the last 10 digits. It is
// total and idempotent: garbage input yields a short key that simply
// never matches anything.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// NormalizeEmail lowercases and trims an email address so that two
// records with the same address compare equal regardless of formatting.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
