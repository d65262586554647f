// Package inputval validates request input at the API boundary before
// domain entities are constructed.
package inputval

import (
	"net/mail"
	"strings"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// IsValidEmail reports whether addr parses as a bare RFC 5322 address.
// Display-name forms ("Name <a@b>") are rejected.
func IsValidEmail(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return false
	}
	return parsed.Address == addr
}

// IsStrongPassword reports whether pw meets the minimum length rule.
func IsStrongPassword(pw string) bool {
	return len(pw) >= MinPasswordLength
}

// IsValidRole reports whether role is one of the two account roles.
// Comparison is case-insensitive; normalize.Role before storing.
func IsValidRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "student", "educator":
		return true
	}
	return false
}

// IsValidRating reports whether a review rating is in range.
func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
