package query

import (
	"slices"
	"strings"

	"github.com/roach88/quarry/internal/value"
)

// Node is a member of a filter tree.
//
// This is a sealed interface - only *Filter and *Group implement it.
// Backend compilers switch over it exhaustively.
type Node interface {
	Expression

	// Conjunction joins this node to its preceding sibling.
	Conjunction() string
	SetConjunction(conjunction string) error

	// Clone returns a deep copy of the node.
	Clone() Node

	filterNode() // Marker method - seals interface to this package
}

// Operators with dedicated compilation rules.
const (
	OperatorEqual     = "="
	OperatorIsNull    = "IS NULL"
	OperatorIsNotNull = "IS NOT NULL"
	OperatorIn        = "IN"
	OperatorNotIn     = "NOT IN"
	OperatorFindInSet = "FIND_IN_SET"

	DefaultOperator = OperatorEqual
)

var validOperators = map[string]bool{
	"=": true, "IS": true, "!=": true, "IS NOT": true,
	"LIKE": true, "NOT LIKE": true,
	">": true, ">=": true, "<": true, "<=": true,
	"IS NULL": true, "IS NOT NULL": true,
	"%": true, "MOD": true,
	"IN": true, "NOT IN": true,
	"REGEXP": true, "NOT REGEXP": true,
	"FIND_IN_SET": true,
}

// ValidOperator reports whether s is a supported operator (any case).
func ValidOperator(s string) bool {
	return validOperators[strings.ToUpper(strings.TrimSpace(s))]
}

// Operators returns the supported operators in sorted order.
func Operators() []string {
	return sortedSet(validOperators)
}

var validFunctions = map[string]bool{
	"ABS": true,
	"ACOS": true, "ASIN": true, "ATAN": true,
	"COS": true, "COT": true, "SIN": true, "TAN": true,
	"CEIL": true, "CEILING": true, "FLOOR": true, "ROUND": true,
	"CHAR_LENGTH": true, "CHARACTER_LENGTH": true, "LENGTH": true, "OCTET_LENGTH": true,
	"CRC32": true, "MD5": true, "SHA1": true,
	"DATE": true,
	"DAY": true, "DAYNAME": true, "DAYOFMONTH": true, "DAYOFWEEK": true, "DAYOFYEAR": true, "LAST_DAY": true,
	"MONTH": true, "MONTHNAME": true,
	"WEEK": true, "WEEKDAY": true, "WEEKOFYEAR": true, "YEARWEEK": true,
	"YEAR": true,
	"QUARTER": true,
	"FROM_UNIXTIME": true,
	"HOUR": true, "MICROSECOND": true, "MINUTE": true, "SECOND": true, "TIME": true,
	"TIMESTAMP": true, "UNIX_TIMESTAMP": true,
	"DEGREES": true, "RADIANS": true,
	"EXP": true, "LOG": true, "LOG10": true, "LN": true,
	"HEX": true,
	"LCASE": true, "LOWER": true, "UCASE": true, "UPPER": true,
	"LTRIM": true, "RTRIM": true, "TRIM": true,
	"REVERSE": true,
	"SIGN": true,
	"SQRT": true,
}

// ValidFunction reports whether s is a supported SQL function (any case).
func ValidFunction(s string) bool {
	return validFunctions[strings.ToUpper(strings.TrimSpace(s))]
}

// Functions returns the supported functions in sorted order.
func Functions() []string {
	return sortedSet(validFunctions)
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Filter is a single predicate: a column compared against a value, or a
// raw condition.
//
// Compilation shapes (see package querysql):
//
//	(target = ?)                 default operators
//	(target IS NULL)             IS NULL / IS NOT NULL, value ignored
//	(target IN (?,?,?))          IN / NOT IN, value is a list
//	FIND_IN_SET(?, target)       value list joined with commas
//
// where target is table.property, optionally wrapped in Function.
type Filter struct {
	base
	value       value.Value
	function    string
	operator    string
	conjunction string
	fields      []string
}

func (*Filter) filterNode() {}

// NewFilter creates a filter with default operator "=" and conjunction "AND".
func NewFilter() *Filter {
	return &Filter{
		base:        newBase(),
		value:       value.Null{},
		operator:    DefaultOperator,
		conjunction: DefaultConjunction,
	}
}

// NewFilterFromData creates a filter and applies data.
func NewFilterFromData(data Data) (*Filter, error) {
	f := NewFilter()
	if err := f.SetData(data); err != nil {
		return nil, err
	}
	return f, nil
}

// Value returns the comparison value (value.Null when unset).
func (f *Filter) Value() value.Value {
	return f.value
}

// SetValue sets the comparison value from a Go native or value.Value.
func (f *Filter) SetValue(v any) error {
	val, err := value.From(v)
	if err != nil {
		return InvalidArgument("value", "%v", err)
	}
	f.value = val
	return nil
}

// Operator returns the upper-case operator.
func (f *Filter) Operator() string {
	return f.operator
}

// SetOperator sets the comparison operator. Any case is accepted; the
// operator is stored upper-case.
func (f *Filter) SetOperator(operator string) error {
	upper := strings.ToUpper(strings.TrimSpace(operator))
	if !validOperators[upper] {
		return InvalidArgument("operator", "%q is not a valid operator", operator)
	}
	f.operator = upper
	return nil
}

// Function returns the SQL function wrapping the column ("" when none).
func (f *Filter) Function() string {
	return f.function
}

// SetFunction sets the SQL function wrapping the column. Any case is
// accepted; an empty string clears the function.
func (f *Filter) SetFunction(function string) error {
	if strings.TrimSpace(function) == "" {
		f.function = ""
		return nil
	}
	upper := strings.ToUpper(strings.TrimSpace(function))
	if !validFunctions[upper] {
		return InvalidArgument("function", "%q is not a valid function", function)
	}
	f.function = upper
	return nil
}

// Conjunction returns the upper-case conjunction.
func (f *Filter) Conjunction() string {
	return f.conjunction
}

// SetConjunction sets how this filter joins its preceding sibling.
func (f *Filter) SetConjunction(conjunction string) error {
	c, err := normalizeConjunction(conjunction)
	if err != nil {
		return err
	}
	f.conjunction = c
	return nil
}

// Fields returns the physical columns the filter targets: the explicit
// fields when set, else the property. Empty when neither is set.
func (f *Filter) Fields() []string {
	if len(f.fields) > 0 {
		return slices.Clone(f.fields)
	}
	if f.property != "" {
		return []string{f.property}
	}
	return nil
}

// SetFields maps the property onto several physical columns. Each column
// is compared with the same operator and value, joined with AND.
func (f *Filter) SetFields(fields []string) error {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			return InvalidArgument("fields", "can not contain empty identifiers")
		}
		out = append(out, field)
	}
	f.fields = out
	return nil
}

// SetData applies recognised keys. Unknown keys are ignored.
//
// Keys: property, table, value, operator, func (alias function),
// conjunction, fields, condition, active, name. Deprecated: val, operand,
// string.
func (f *Filter) SetData(data Data) error {
	for _, key := range data.sortedKeys() {
		v := data[key]
		key = canonicalKey(key)

		if handled, err := f.setBaseData(key, v); handled {
			if err != nil {
				return err
			}
			continue
		}

		var err error
		switch key {
		case "value":
			err = f.SetValue(v)
		case "operator":
			var s string
			if s, err = asString(key, v); err == nil {
				err = f.SetOperator(s)
			}
		case "func", "function":
			if v == nil {
				f.function = ""
				continue
			}
			var s string
			if s, err = asString("function", v); err == nil {
				err = f.SetFunction(s)
			}
		case "conjunction":
			var s string
			if s, err = asString(key, v); err == nil {
				err = f.SetConjunction(s)
			}
		case "fields":
			var fields []string
			if fields, err = asStringList(key, v); err == nil {
				err = f.SetFields(fields)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Data exports the filter state with canonical keys.
func (f *Filter) Data() Data {
	d := Data{}
	f.baseData(d)
	d["value"] = value.Native(f.value)
	d["operator"] = f.operator
	d["func"] = nilIfEmpty(f.function)
	d["conjunction"] = f.conjunction
	if len(f.fields) > 0 {
		d["fields"] = slices.Clone(f.fields)
	}
	return d
}

// DefaultData returns the state of a new filter.
func (f *Filter) DefaultData() Data {
	return NewFilter().Data()
}

// Clone returns an independent copy of the filter.
func (f *Filter) Clone() Node {
	clone := *f
	clone.fields = slices.Clone(f.fields)
	if list, ok := f.value.(value.List); ok {
		clone.value = slices.Clone(list)
	}
	return &clone
}
