// Package sqlutil provides SQL identifier and filter helpers for gomask.
package sqlutil

import (
	"regexp"
	"strings"
)

// QuoteIdentifier wraps a MySQL table or column name in backticks,
// doubling any backtick inside it.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteIdentifierANSI wraps a name in double quotes as PostgreSQL expects.
func QuoteIdentifierANSI(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var identifierPattern = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier reports whether name is non-empty and made only of
// ASCII letters, digits and underscores. Job tables, key columns and
// target columns must all pass this check before any SQL is built.
func IsValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// InvalidIdentifierError reports a table or column name rejected by
// IsValidIdentifier.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
