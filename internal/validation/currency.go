package validation

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidCurrency rejects a symbol before any network or storage I/O.
var ErrInvalidCurrency = errors.New("invalid currency")

var currencyPattern = regexp.MustCompile(`^[A-Z0-9]{2,15}$`)

// NormalizeCurrency trims surrounding whitespace, upper-cases ASCII letters
// and validates the result against ^[A-Z0-9]{2,15}$. The fold is ASCII-only
// on purpose: Unicode case mapping could turn characters like U+017F into
// plain 'S' and smuggle non-ASCII input past the pattern.
func NormalizeCurrency(raw string) (string, error) {
	candidate := asciiUpper(strings.TrimSpace(raw))
	if !currencyPattern.MatchString(candidate) {
		return "", ErrInvalidCurrency
	}
	return candidate, nil
}

func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
