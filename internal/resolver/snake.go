package resolver

import (
	"regexp"
	"strings"
)

var (
	// An uppercase letter starting a lowercase run, preceded by anything.
	titleRun = regexp.MustCompile(`(.)([A-Z][a-z]+)`)

	// An uppercase letter directly after a lowercase letter or digit.
	lowerUpper = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// ToSnake converts camelCase and PascalCase names to lower snake_case.
//
//	userName        -> user_name
//	IpAddress       -> ip_address
//	HTTPSConnection -> https_connection
//
// Names already in snake_case only get lowercased.
func ToSnake(name string) string {
	s := titleRun.ReplaceAllString(name, "${1}_${2}")
	s = lowerUpper.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// similar reports whether two snake_case names plausibly denote one field.
// Names match when they are equal once underscores are removed, or when one
// contains the other, both are longer than 3 characters, and their lengths
// differ by at most 3.
func similar(a, b string) bool {
	ca := strings.ReplaceAll(a, "_", "")
	cb := strings.ReplaceAll(b, "_", "")

	if ca == cb {
		return true
	}
	if len(ca) <= 3 || len(cb) <= 3 {
		return false
	}
	if !strings.Contains(ca, cb) && !strings.Contains(cb, ca) {
		return false
	}
	return abs(len(ca)-len(cb)) <= 3
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
