package querysql

import (
	"strings"
)

// Select describes a single-table SELECT assembled from compiled fragments.
type Select struct {
	// Columns to project. Empty selects every column.
	Columns []string

	// Where, OrderBy and Limit are the compiled clause bodies. Empty
	// fragments are omitted.
	Where   Fragment
	OrderBy Fragment
	Limit   Fragment

	// Key is the tiebreak column appended to every ORDER BY so that pages
	// are deterministic. Empty disables it.
	Key string
}

// CompileSelect assembles a SELECT on the compiler's table.
func (c *Compiler) CompileSelect(s Select) Fragment {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	sb.WriteString(c.columnList(s.Columns))
	sb.WriteString(" FROM ")
	sb.WriteString(c.Dialect.QuoteIdentifier(c.Table))

	if !s.Where.IsEmpty() {
		sb.WriteString(" WHERE ")
		sb.WriteString(s.Where.SQL)
		args = append(args, s.Where.Args...)
	}

	orderBy := s.OrderBy.SQL
	if s.Key != "" {
		tiebreak := c.Dialect.QuoteIdentifier(s.Key) + " ASC"
		if orderBy == "" {
			orderBy = tiebreak
		} else {
			orderBy += ", " + tiebreak
		}
	}
	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
		args = append(args, s.OrderBy.Args...)
	}

	if !s.Limit.IsEmpty() {
		sb.WriteString(" ")
		sb.WriteString(s.Limit.SQL)
		args = append(args, s.Limit.Args...)
	}

	return Fragment{SQL: sb.String(), Args: args}
}

// CompileCount assembles a SELECT COUNT(*) on the compiler's table.
func (c *Compiler) CompileCount(where Fragment) Fragment {
	sql := "SELECT COUNT(*) FROM " + c.Dialect.QuoteIdentifier(c.Table)
	if where.IsEmpty() {
		return Fragment{SQL: sql}
	}
	return Fragment{SQL: sql + " WHERE " + where.SQL, Args: where.Args}
}

// columnList converts columns to a SELECT list.
func (c *Compiler) columnList(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}
	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = c.Dialect.QuoteIdentifier(column)
	}
	return strings.Join(quoted, ", ")
}
