package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/quarry/internal/query"
)

// Dialect supplies the backend-specific parts of a compiled fragment.
//
// Everything else (operator syntax, grouping, placeholders) is shared by
// all dialects.
type Dialect interface {
	// Name returns the dialect name used in configuration ("mysql", "sqlite").
	Name() string

	// QuoteIdentifier quotes a single table or column name.
	QuoteIdentifier(name string) string

	// QuoteString renders s as a single-quoted string literal.
	QuoteString(s string) string

	// Conjunction renders a canonical conjunction (AND, &&, OR, ||, XOR).
	Conjunction(conjunction string) (string, error)

	// RandomOrder returns the ORDER BY term for random ordering.
	RandomOrder() string

	// FieldOrder returns the ORDER BY term ranking column by the given
	// placeholder list.
	FieldOrder(column, placeholders string) string

	// Limit returns the LIMIT clause for a 0-based offset and a page size.
	Limit(offset, count int) string
}

// MySQL renders fragments with backtick identifiers and MySQL functions.
type MySQL struct{}

// Name implements Dialect.
func (MySQL) Name() string { return "mysql" }

// QuoteIdentifier implements Dialect. Backticks inside the name are doubled.
func (MySQL) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteString implements Dialect. Backslashes are escaped, since MySQL
// treats them as escape characters by default, and single quotes doubled.
func (MySQL) QuoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Conjunction implements Dialect. Every canonical conjunction is native.
func (MySQL) Conjunction(conjunction string) (string, error) {
	if !query.ValidConjunction(conjunction) {
		return "", query.InvalidArgument("conjunction", "%q is not a valid conjunction", conjunction)
	}
	return strings.ToUpper(conjunction), nil
}

// RandomOrder implements Dialect.
func (MySQL) RandomOrder() string { return "RAND()" }

// FieldOrder implements Dialect.
func (MySQL) FieldOrder(column, placeholders string) string {
	return fmt.Sprintf("FIELD(%s, %s)", column, placeholders)
}

// Limit implements Dialect: offset first.
func (MySQL) Limit(offset, count int) string {
	return fmt.Sprintf("LIMIT %d, %d", offset, count)
}

// SQLite renders fragments for SQLite.
//
// FIND_IN_SET and FIELD are not built into SQLite; the store registers
// them on every connection.
type SQLite struct{}

// Name implements Dialect.
func (SQLite) Name() string { return "sqlite" }

// QuoteIdentifier implements Dialect. Double quotes inside the name are
// doubled.
func (SQLite) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteString implements Dialect. Single quotes are doubled; backslashes
// have no special meaning.
func (SQLite) QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Conjunction implements Dialect. The symbolic aliases map to their
// keywords; XOR has no SQLite equivalent.
func (SQLite) Conjunction(conjunction string) (string, error) {
	switch strings.ToUpper(conjunction) {
	case query.ConjunctionAnd, "&&":
		return query.ConjunctionAnd, nil
	case query.ConjunctionOr, "||":
		return query.ConjunctionOr, nil
	case query.ConjunctionXor:
		return "", query.DomainError("conjunction", "XOR is not supported by sqlite")
	}
	return "", query.InvalidArgument("conjunction", "%q is not a valid conjunction", conjunction)
}

// RandomOrder implements Dialect.
func (SQLite) RandomOrder() string { return "RANDOM()" }

// FieldOrder implements Dialect.
func (SQLite) FieldOrder(column, placeholders string) string {
	return fmt.Sprintf("FIELD(%s, %s)", column, placeholders)
}

// Limit implements Dialect.
func (SQLite) Limit(offset, count int) string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", count, offset)
}

// DialectByName returns the dialect registered under name.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql":
		return MySQL{}, nil
	case "sqlite", "sqlite3":
		return SQLite{}, nil
	}
	return nil, fmt.Errorf("unknown dialect %q (expected mysql or sqlite)", name)
}
