// Package sanitizer normalizes user-supplied strings before they are
// validated and stored: display names, email addresses, phone numbers
// and vehicle registration numbers.
package sanitizer

import "strings"

// NormalizeEmail lowercases and trims an email address so uniqueness
// checks compare canonical forms.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeRegistration canonicalizes a vehicle registration number:
// trimmed, inner whitespace collapsed, uppercased.
func NormalizeRegistration(registration string) string {
	return strings.ToUpper(TrimAndNormalize(registration))
}
