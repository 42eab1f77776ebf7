// Package pan validates and normalizes PAN identity tokens.
package pan

import (
	"regexp"
	"strings"
)

// pattern: 5 letters + 4 digits + 1 letter, e.g. ABCDE1234F
var pattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// Normalize uppercases and trims a raw PAN value
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsValid reports whether the normalized PAN matches the required pattern
func IsValid(normalized string) bool {
	return pattern.MatchString(normalized)
}
