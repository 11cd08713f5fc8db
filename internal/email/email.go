// Package email provides common email utility functions.
package email

import (
	"regexp"
	"strings"
)

// addressPattern is a local part, "@", and a domain containing a dot,
// with no whitespace anywhere.
var addressPattern = regexp.MustCompile(`(?i)^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValid reports whether addr looks like a deliverable address. The
// check is purely syntactic; surrounding whitespace is not trimmed.
func IsValid(addr string) bool {
	return addr != "" && addressPattern.MatchString(addr)
}

// Key returns the comparison key used for duplicate detection. The whole
// address is case-folded, not only the domain.
func Key(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
