package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Escape turns a literal boundary string (usually copied verbatim out of a
// page's html) into a pattern that only matches that exact text.
//
// Every RE2 metacharacter is escaped in a single pass, so the backslashes that
// escaping introduces are never escaped a second time.
func Escape(literal string) string {
	return regexp.QuoteMeta(literal)
}

// NormalizeIdentifier lowercases an identifier and removes periods and all
// whitespace, "H.R. 1234" becomes "hr1234".
func NormalizeIdentifier(id string) string {
	id = strings.ToLower(id)
	id = strings.ReplaceAll(id, ".", "")
	id = whitespaceRegex.ReplaceAllString(id, "")
	return id
}

// NormalizeName is used when comparing column names loosely.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// IsDigits reports whether s is a non-empty run of ascii digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
