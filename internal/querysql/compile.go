package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/value"
)

// Fragment is a piece of SQL with its positional arguments.
//
// Values are never interpolated into SQL; every value is a ? placeholder
// with its argument in Args. Raw conditions are the only exception and
// are passed through verbatim.
type Fragment struct {
	SQL  string
	Args []any
}

// IsEmpty reports whether the fragment contributes nothing.
func (f Fragment) IsEmpty() bool {
	return f.SQL == ""
}

// String returns the SQL text.
func (f Fragment) String() string {
	return f.SQL
}

// Compiler compiles expression trees into SQL fragments for one dialect.
type Compiler struct {
	// Dialect renders identifiers and backend-specific terms.
	Dialect Dialect

	// Table qualifies filter columns when a filter has no table of its own.
	Table string
}

// NewCompiler creates a compiler. A nil dialect defaults to MySQL.
func NewCompiler(dialect Dialect, table string) *Compiler {
	if dialect == nil {
		dialect = MySQL{}
	}
	return &Compiler{Dialect: dialect, Table: table}
}

// Column returns the quoted column reference, qualified by table when set.
func (c *Compiler) Column(table, column string) string {
	if table == "" {
		return c.Dialect.QuoteIdentifier(column)
	}
	return c.Dialect.QuoteIdentifier(table) + "." + c.Dialect.QuoteIdentifier(column)
}

// CompileFilter compiles a filter or group.
//
// Inactive nodes and nodes without a resolvable target compile to an empty
// fragment.
func (c *Compiler) CompileFilter(n query.Node) (Fragment, error) {
	if n == nil {
		return Fragment{}, query.InvalidArgument("filter", "can not be nil")
	}
	if !n.Active() {
		return Fragment{}, nil
	}

	switch node := n.(type) {
	case *query.Filter:
		return c.compileLeaf(node)
	case *query.Group:
		frag, err := c.join(node.Filters())
		if err != nil || frag.IsEmpty() {
			return frag, err
		}
		frag.SQL = "(" + frag.SQL + ")"
		return frag, nil
	default:
		return Fragment{}, fmt.Errorf("unsupported filter type: %T", n)
	}
}

// CompileFilters compiles root-level filters into a WHERE body. Root-level
// filters are joined like group children but not wrapped.
func (c *Compiler) CompileFilters(nodes []query.Node) (Fragment, error) {
	return c.join(nodes)
}

// join compiles nodes in order, prefixing every fragment after the first
// with the node's own conjunction.
func (c *Compiler) join(nodes []query.Node) (Fragment, error) {
	var sb strings.Builder
	var args []any

	for _, node := range nodes {
		if node == nil || !node.Active() {
			continue
		}
		frag, err := c.CompileFilter(node)
		if err != nil {
			return Fragment{}, err
		}
		if frag.IsEmpty() {
			continue
		}
		if sb.Len() > 0 {
			conjunction, err := c.Dialect.Conjunction(node.Conjunction())
			if err != nil {
				return Fragment{}, err
			}
			sb.WriteString(" " + conjunction + " ")
		}
		sb.WriteString(frag.SQL)
		args = append(args, frag.Args...)
	}

	return Fragment{SQL: sb.String(), Args: args}, nil
}

func (c *Compiler) compileLeaf(f *query.Filter) (Fragment, error) {
	if f.HasCondition() {
		return Fragment{SQL: f.Condition()}, nil
	}

	fields := f.Fields()
	if len(fields) == 0 {
		return Fragment{}, nil
	}

	table := f.Table()
	if table == "" {
		table = c.Table
	}

	parts := make([]string, 0, len(fields))
	var args []any
	for _, field := range fields {
		target := c.Column(table, field)
		if f.Function() != "" {
			target = f.Function() + "(" + target + ")"
		}
		sql, fieldArgs, err := c.predicate(f, target)
		if err != nil {
			return Fragment{}, err
		}
		parts = append(parts, sql)
		args = append(args, fieldArgs...)
	}

	if len(parts) == 1 {
		return Fragment{SQL: parts[0], Args: args}, nil
	}
	return Fragment{SQL: "(" + strings.Join(parts, " AND ") + ")", Args: args}, nil
}

// predicate renders the operator-specific shape for one target column.
func (c *Compiler) predicate(f *query.Filter, target string) (string, []any, error) {
	operator := f.Operator()

	switch operator {
	case query.OperatorIsNull, query.OperatorIsNotNull:
		return fmt.Sprintf("(%s %s)", target, operator), nil, nil

	case query.OperatorIn, query.OperatorNotIn:
		elems := value.Elements(f.Value())
		if len(elems) == 0 {
			return "", nil, query.DomainError("value", "operator %s requires at least one value", operator)
		}
		args := make([]any, len(elems))
		for i, elem := range elems {
			arg, err := value.Param(elem)
			if err != nil {
				return "", nil, query.DomainError("value", "%v", err)
			}
			args[i] = arg
		}
		return fmt.Sprintf("(%s %s (%s))", target, operator, placeholders(len(args))), args, nil

	case query.OperatorFindInSet:
		return fmt.Sprintf("FIND_IN_SET(?, %s)", target), []any{value.Text(f.Value())}, nil

	default:
		arg, err := value.Param(f.Value())
		if err != nil {
			return "", nil, query.DomainError("value", "operator %s requires a single value: %v", operator, err)
		}
		return fmt.Sprintf("(%s %s ?)", target, operator), []any{arg}, nil
	}
}

// CompileOrder compiles a single order term.
//
// Missing information is reported here rather than by the setters: an
// order may be built incrementally.
func (c *Compiler) CompileOrder(o *query.Order) (Fragment, error) {
	if o == nil {
		return Fragment{}, query.InvalidArgument("order", "can not be nil")
	}
	if !o.Active() {
		return Fragment{}, nil
	}
	if o.HasCondition() {
		return Fragment{SQL: o.Condition()}, nil
	}

	switch o.Mode() {
	case query.ModeRand:
		return Fragment{SQL: c.Dialect.RandomOrder()}, nil

	case query.ModeValues:
		if o.Property() == "" {
			return Fragment{}, query.DomainError("property", "property is required for the values mode")
		}
		values := o.Values()
		if len(values) == 0 {
			return Fragment{}, query.DomainError("values", "values are required for the values mode")
		}
		args := make([]any, len(values))
		for i, v := range values {
			args[i] = rankArg(v)
		}
		column := c.Column(o.Table(), o.Property())
		return Fragment{SQL: c.Dialect.FieldOrder(column, placeholders(len(args))), Args: args}, nil

	default:
		if o.Property() == "" {
			return Fragment{}, query.DomainError("property", "property is required for the %s mode", o.Mode())
		}
		return Fragment{SQL: c.Column(o.Table(), o.Property()) + " " + o.Mode()}, nil
	}
}

// CompileOrders compiles orders into an ORDER BY body, comma-separated.
func (c *Compiler) CompileOrders(orders []*query.Order) (Fragment, error) {
	var parts []string
	var args []any
	for _, o := range orders {
		frag, err := c.CompileOrder(o)
		if err != nil {
			return Fragment{}, err
		}
		if frag.IsEmpty() {
			continue
		}
		parts = append(parts, frag.SQL)
		args = append(args, frag.Args...)
	}
	return Fragment{SQL: strings.Join(parts, ", "), Args: args}, nil
}

// CompilePagination compiles the LIMIT clause. Without a page size the
// fragment is empty.
func (c *Compiler) CompilePagination(p *query.Pagination) Fragment {
	if p == nil || !p.Limited() {
		return Fragment{}
	}
	return Fragment{SQL: c.Dialect.Limit(p.First(), p.NumPerPage())}
}

// rankArg converts a ranking value. Numbers are kept as Number so that
// Interpolate renders them bare.
func rankArg(v value.Value) any {
	if value.IsNumeric(v) {
		return Number(strings.TrimSpace(value.Text(v)))
	}
	return value.Text(v)
}

// placeholders returns n comma-separated ? markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
