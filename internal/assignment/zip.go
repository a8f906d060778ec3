package assignment

import (
	"regexp"
	"strings"
)

// Postal code patterns tried in order. US first because most tenants are US
// agencies, then bare 4-digit codes (NL and others), then UK outward+inward
// codes.
var zipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`),
	regexp.MustCompile(`\b\d{4}\b`),
	regexp.MustCompile(`\b[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}\b`),
}

// ExtractPostalCode pulls the first recognizable postal code out of a free
// text address. Returns an empty string when nothing matches; territory
// matching then falls through to the round-robin tiers.
func ExtractPostalCode(address string) string {
	address = strings.ToUpper(strings.TrimSpace(address))
	if address == "" {
		return ""
	}

	for _, pattern := range zipPatterns {
		if match := pattern.FindString(address); match != "" {
			// The first match comes back whole, ZIP+4 suffix included; a
			// territory stored as "78701-3218" claims exactly that code.
			return strings.ReplaceAll(match, " ", "")
		}
	}

	return ""
}
