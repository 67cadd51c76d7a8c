// Package email turns an address into a presentable fallback name for
// principals who register without one.
package email

import (
	"strings"
	"unicode"
)

// DeriveNameFromEmail splits the local part on common separators and
// title-cases the outer pieces: "priya.nair@example.com" yields
// ("Priya", "Nair"). When nothing usable remains both halves fall back
// to "User".
func DeriveNameFromEmail(address string) (first, last string) {
	local, _, _ := strings.Cut(address, "@")
	parts := strings.FieldsFunc(local, isSeparator)
	if len(parts) == 0 {
		return "User", "User"
	}

	first = title(parts[0])
	last = "User"
	if len(parts) > 1 {
		last = title(parts[len(parts)-1])
	}
	return first, last
}

func isSeparator(r rune) bool {
	return r == '.' || r == '_' || r == '-' || r == '+'
}

func title(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
