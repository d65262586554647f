// Package normalize holds the small string transforms applied at the
// store boundary so documents never carry stray whitespace, mixed-case
// emails, or empty-string enum values.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are always
// stored and queried in this form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value ("student", "educator").
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CourseLevel trims a course level and maps the empty string to
// absent. Mongoose kept this rule in a pre-save hook; here it runs at
// the boundary so "" can never reach the database.
func CourseLevel(s string) string {
	return strings.TrimSpace(s)
}
