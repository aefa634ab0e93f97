package common

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ContainsIgnoreCase reports whether substr occurs in s once both are
// lower-cased. Only case differs; "ß" does not match "ss", the same as a
// case-insensitive Mongo regex or a LOWER() LIKE in SQL. An empty substr
// matches everything.
func ContainsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	lower := cases.Lower(language.Und)
	return strings.Contains(lower.String(s), lower.String(substr))
}
