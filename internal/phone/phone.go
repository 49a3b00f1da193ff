// Package phone canonicalizes Tunisian phone numbers into the key used for
// uniqueness checks and cross-table lookups.
package phone

import "strings"

// CountryCode is the international prefix for local numbers
const CountryCode = "216"

// localLength is the digit count of a national number without prefix
const localLength = 8

// Normalize strips every non-digit and prefixes 8-digit national numbers with
// the country code. Anything else is returned as its digit string.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, CountryCode) {
		return digits
	}
	if len(digits) == localLength {
		return CountryCode + digits
	}
	return digits
}

// Display renders a normalized key as "+<digits>"
func Display(key string) string {
	if key == "" {
		return ""
	}
	return "+" + key
}

// Equal reports whether two raw inputs normalize to the same non-empty key
func Equal(a, b string) bool {
	ka := Normalize(a)
	return ka != "" && ka == Normalize(b)
}
