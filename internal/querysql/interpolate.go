package querysql

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/quarry/internal/value"
)

// Number is an argument that Interpolate renders without quotes.
// It is sent to the driver as an int64 or float64.
type Number string

// Value implements driver.Valuer.
func (n Number) Value() (driver.Value, error) {
	s := strings.TrimSpace(string(n))
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", string(n), err)
	}
	return f, nil
}

// Interpolate renders a fragment with its arguments inlined, in the
// single-quoted form used by legacy MySQL queries:
//
//	(`t`.`a` IN (?,?))  [1 2]  ->  (`t`.`a` IN ('1','2'))
//
// Every argument except nil and Number is quoted with d.QuoteString.
// Placeholders inside quoted strings and identifiers are left alone. The
// output is meant for display and compatibility checks; queries sent to a
// database use the placeholders.
func Interpolate(d Dialect, f Fragment) (string, error) {
	var sb strings.Builder
	sb.Grow(len(f.SQL))

	next := 0
	var quote rune
	for _, r := range f.SQL {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '?':
			if next >= len(f.Args) {
				return "", fmt.Errorf("fragment has more placeholders than arguments (%d)", len(f.Args))
			}
			literal, err := literal(d, f.Args[next])
			if err != nil {
				return "", fmt.Errorf("argument %d: %w", next, err)
			}
			sb.WriteString(literal)
			next++
			continue
		}
		sb.WriteRune(r)
	}

	if next != len(f.Args) {
		return "", fmt.Errorf("fragment has %d placeholders but %d arguments", next, len(f.Args))
	}
	return sb.String(), nil
}

// literal renders one argument as an SQL literal.
func literal(d Dialect, arg any) (string, error) {
	switch v := arg.(type) {
	case nil:
		return "NULL", nil
	case Number:
		if _, err := v.Value(); err != nil {
			return "", err
		}
		return strings.TrimSpace(string(v)), nil
	case string:
		return d.QuoteString(v), nil
	case []byte:
		return d.QuoteString(string(v)), nil
	case time.Time:
		return d.QuoteString(v.Format(value.DateTimeLayout)), nil
	case value.Value:
		return d.QuoteString(value.Text(v)), nil
	default:
		val, err := value.From(arg)
		if err != nil {
			return "", err
		}
		return d.QuoteString(value.Text(val)), nil
	}
}
