package query

import (
	"reflect"
	"slices"
	"sort"
)

// Item is an expression that can be stored in a Collection.
type Item[T any] interface {
	Expression
	Clone() T
}

// Factory creates a new element for a collection. data is the map the
// element is about to be built from, or nil when it is built from a raw
// condition or a builder function.
type Factory[T any] func(data Data) T

// Builder fills in a freshly created element. scope is the collection the
// element will be added to.
type Builder[T Item[T]] func(expr T, scope *Collection[T]) error

// Collection is an ordered list of expressions with optional names.
//
// Elements can be added as:
//   - an existing element
//   - a Data (or map[string]any) applied to a new element
//   - a string, used as the raw condition of a new element
//   - a Builder (or plain func(T, *Collection[T]) error) called with a
//     new element
type Collection[T Item[T]] struct {
	items  []T
	create Factory[T]
}

// NewCollection creates an empty collection using create for new elements.
func NewCollection[T Item[T]](create Factory[T]) *Collection[T] {
	return &Collection[T]{create: create}
}

// New creates an element without adding it.
func (c *Collection[T]) New() T {
	return c.create(nil)
}

// Process converts input into an element without adding it.
func (c *Collection[T]) Process(input any) (T, error) {
	var zero T

	switch in := input.(type) {
	case nil:
		return zero, InvalidArgument("expression", "can not be nil")
	case T:
		if isNilPointer(in) {
			return zero, InvalidArgument("expression", "can not be nil")
		}
		return in, nil
	case Data:
		return c.fromData(in)
	case map[string]any:
		return c.fromData(Data(in))
	case string:
		expr := c.create(nil)
		if err := expr.SetData(Data{"condition": in}); err != nil {
			return zero, err
		}
		return expr, nil
	case Builder[T]:
		return c.fromBuilder(in)
	case func(T, *Collection[T]) error:
		return c.fromBuilder(in)
	}

	return zero, InvalidArgument("expression", "unsupported input type %T", input)
}

// isNilPointer reports whether v is a typed nil pointer, such as a nil
// *Filter stored in a Node.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func (c *Collection[T]) fromData(data Data) (T, error) {
	var zero T
	expr := c.create(data)
	if err := expr.SetData(data); err != nil {
		return zero, err
	}
	return expr, nil
}

func (c *Collection[T]) fromBuilder(build Builder[T]) (T, error) {
	var zero T
	expr := c.create(nil)
	if err := build(expr, c); err != nil {
		return zero, err
	}
	return expr, nil
}

// Add processes input and appends the result.
func (c *Collection[T]) Add(input any) error {
	expr, err := c.Process(input)
	if err != nil {
		return err
	}
	c.items = append(c.items, expr)
	return nil
}

// AddNamed processes input, names the result and appends it.
func (c *Collection[T]) AddNamed(name string, input any) error {
	expr, err := c.Process(input)
	if err != nil {
		return err
	}
	if name != "" {
		expr.SetName(name)
	}
	c.items = append(c.items, expr)
	return nil
}

// Append adds already-built elements.
func (c *Collection[T]) Append(exprs ...T) {
	c.items = append(c.items, exprs...)
}

// AddMany appends several inputs. A slice adds its elements in order; a
// map adds its values named after their keys, in key order.
func (c *Collection[T]) AddMany(inputs any) error {
	switch in := inputs.(type) {
	case nil:
		return nil
	case []T:
		for _, expr := range in {
			if err := c.Add(expr); err != nil {
				return err
			}
		}
	case []any:
		for _, expr := range in {
			if err := c.Add(expr); err != nil {
				return err
			}
		}
	case []Data:
		for _, data := range in {
			if err := c.Add(data); err != nil {
				return err
			}
		}
	case []map[string]any:
		for _, data := range in {
			if err := c.Add(data); err != nil {
				return err
			}
		}
	case []string:
		for _, condition := range in {
			if err := c.Add(condition); err != nil {
				return err
			}
		}
	case map[string]T:
		for _, name := range sortedNames(in) {
			if err := c.AddNamed(name, in[name]); err != nil {
				return err
			}
		}
	case map[string]any:
		for _, name := range sortedNames(in) {
			if err := c.AddNamed(name, in[name]); err != nil {
				return err
			}
		}
	case Data:
		for _, name := range sortedNames(in) {
			if err := c.AddNamed(name, in[name]); err != nil {
				return err
			}
		}
	default:
		return InvalidArgument("expressions", "unsupported collection type %T", inputs)
	}
	return nil
}

// Set replaces every element with inputs (see AddMany).
// On error the collection is left unchanged.
func (c *Collection[T]) Set(inputs any) error {
	next := &Collection[T]{create: c.create}
	if err := next.AddMany(inputs); err != nil {
		return err
	}
	c.items = next.items
	return nil
}

// All returns the elements in insertion order. The slice is a copy; the
// elements are shared.
func (c *Collection[T]) All() []T {
	return slices.Clone(c.items)
}

// Get returns the first element with the given name.
func (c *Collection[T]) Get(name string) (T, bool) {
	for _, expr := range c.items {
		if expr.Name() == name {
			return expr, true
		}
	}
	var zero T
	return zero, false
}

// Has reports whether an element with the given name exists.
func (c *Collection[T]) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Len returns the number of elements.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Reset removes every element.
func (c *Collection[T]) Reset() {
	c.items = nil
}

// Clone returns a collection holding clones of every element.
func (c *Collection[T]) Clone() *Collection[T] {
	clone := &Collection[T]{create: c.create}
	if c.items != nil {
		clone.items = make([]T, len(c.items))
		for i, expr := range c.items {
			clone.items[i] = expr.Clone()
		}
	}
	return clone
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
