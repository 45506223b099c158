package value

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Value is a sealed interface over the values an expression may carry.
// Scalars are Null, String, Int, Float and Bool; List holds scalars only.
type Value interface {
	value() // Sealed - only types in this package implement it
}

// Null is the absence of a value (SQL NULL).
type Null struct{}

func (Null) value() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String is a text value.
type String string

func (String) value() {}

// Int is an integer value.
type Int int64

func (Int) value() {}

// Float is a floating point value.
type Float float64

func (Float) value() {}

// Bool is a boolean value.
type Bool bool

func (Bool) value() {}

// List is an ordered sequence of scalar values.
type List []Value

func (List) value() {}

// DateTimeLayout is the layout used when a time.Time is converted to a String.
const DateTimeLayout = "2006-01-02 15:04:05"

// From converts a Go native into a Value.
//
// Accepted inputs are nil, Value, string, bool, every integer and float kind,
// json.Number, time.Time, fmt.Stringer, and slices or arrays of those.
// Maps, structs and nested lists are rejected.
func From(v any) (Value, error) {
	return from(v, true)
}

// MustFrom is like From but panics on unsupported input. Intended for tests
// and package-level literals.
func MustFrom(v any) Value {
	val, err := From(v)
	if err != nil {
		panic(err)
	}
	return val
}

func from(v any, allowList bool) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case List:
		if !allowList {
			return nil, fmt.Errorf("nested lists are not supported")
		}
		for i, elem := range val {
			if _, isList := elem.(List); isList {
				return nil, fmt.Errorf("list index %d: nested lists are not supported", i)
			}
		}
		return val, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case []byte:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", val)
		}
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", val)
		}
		return Int(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		return fromNumber(val)
	case time.Time:
		return String(val.Format(DateTimeLayout)), nil
	case fmt.Stringer:
		return String(val.String()), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
	if !allowList {
		return nil, fmt.Errorf("nested lists are not supported")
	}

	list := make(List, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem, err := from(rv.Index(i).Interface(), false)
		if err != nil {
			return nil, fmt.Errorf("list index %d: %w", i, err)
		}
		list[i] = elem
	}
	return list, nil
}

func fromNumber(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n, err)
	}
	return Float(f), nil
}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Elements returns the elements of a List, or a one-element slice holding
// a scalar. Null yields no elements.
func Elements(v Value) []Value {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case List:
		return val
	default:
		return []Value{val}
	}
}

// Text renders a value the way it appears inside a quoted SQL literal.
// Lists are joined with commas. Booleans render as 1 and 0.
func Text(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return ""
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case Bool:
		if val {
			return "1"
		}
		return "0"
	case List:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = Text(elem)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// IsNumeric reports whether v is a number, or a String holding one.
func IsNumeric(v Value) bool {
	switch val := v.(type) {
	case Int, Float:
		return true
	case String:
		_, err := strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
		return err == nil
	default:
		return false
	}
}

// Param converts a scalar into a database/sql argument.
func Param(v Value) (any, error) {
	switch val := v.(type) {
	case nil, Null:
		return nil, nil
	case String:
		return string(val), nil
	case Int:
		return int64(val), nil
	case Float:
		return float64(val), nil
	case Bool:
		return bool(val), nil
	case List:
		return nil, fmt.Errorf("List cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported Value type for SQL parameter: %T", v)
	}
}

// Native converts a value back to plain Go types: nil, string, int64,
// float64, bool or []any.
func Native(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Native(elem)
		}
		return out
	default:
		return nil
	}
}

// Split parses a comma-separated string into a List of trimmed Strings.
// Empty segments are dropped.
func Split(s string) List {
	var list List
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		list = append(list, String(part))
	}
	return list
}
