package id

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LoginID derives a login identifier from an owner name by taking the
// lowercased first letter of every name part.
// "Steven Thomas Williams" -> "stw"
func LoginID(owner string) string {
	var b strings.Builder
	for _, part := range strings.Fields(owner) {
		r, _ := utf8.DecodeRuneInString(part)
		if r == utf8.RuneError {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// FirstName returns the first name part of an owner name.
// "Jonas Schmedtmann" -> "Jonas"
func FirstName(owner string) string {
	parts := strings.Fields(owner)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// NormalizeLogin trims and lowercases user-typed login input.
func NormalizeLogin(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
