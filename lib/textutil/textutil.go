// Package textutil holds small helpers for matching scraped text
// against configured field names.
package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a field name and strips all whitespace so
// that "Kor Nm", "korNm" and "KORNM" compare equal.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return whitespaceRegex.ReplaceAllString(name, "")
}

// MatchName reports whether the normalized name contains any of the
// given matchers. Matchers are compared case-insensitively.
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, matcher := range matchers {
		if strings.Contains(name, strings.ToLower(matcher)) {
			return true
		}
	}
	return false
}
