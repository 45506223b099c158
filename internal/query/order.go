package query

import (
	"slices"
	"strings"

	"github.com/roach88/quarry/internal/value"
)

// Order modes, lower-case.
const (
	ModeAsc    = "asc"
	ModeDesc   = "desc"
	ModeRand   = "rand"
	ModeValues = "values"

	DefaultMode = ModeAsc
)

var validModes = map[string]bool{
	ModeAsc:    true,
	ModeDesc:   true,
	ModeRand:   true,
	ModeValues: true,
}

// Order is one sort key of a query.
//
// Requirements per mode are checked at compile time, not by the setters:
//
//	asc, desc   property
//	rand        nothing
//	values      property and a non-empty values list
type Order struct {
	base
	mode   string
	values value.List
}

// NewOrder creates an ascending order with no property.
func NewOrder() *Order {
	return &Order{
		base: newBase(),
		mode: DefaultMode,
	}
}

// NewOrderFromData creates an order and applies data.
func NewOrderFromData(data Data) (*Order, error) {
	o := NewOrder()
	if err := o.SetData(data); err != nil {
		return nil, err
	}
	return o, nil
}

// NewOrderCollection creates a collection of orders.
func NewOrderCollection() *Collection[*Order] {
	return NewCollection[*Order](func(Data) *Order {
		return NewOrder()
	})
}

// Mode returns the lower-case mode.
func (o *Order) Mode() string {
	return o.mode
}

// SetMode sets the sort mode. Any case is accepted.
func (o *Order) SetMode(mode string) error {
	lower := strings.ToLower(strings.TrimSpace(mode))
	if !validModes[lower] {
		return InvalidArgument("mode", "%q is not a valid mode", mode)
	}
	o.mode = lower
	return nil
}

// Values returns the explicit ranking used by the "values" mode.
func (o *Order) Values() value.List {
	return slices.Clone(o.values)
}

// SetValues sets the explicit ranking. A string is split on commas and
// trimmed. The result must not be empty.
func (o *Order) SetValues(values any) error {
	var list value.List
	switch v := values.(type) {
	case string:
		list = value.Split(v)
	case nil, bool:
		return InvalidArgument("values", "must be a list or a comma-separated string, got %T", values)
	default:
		val, err := value.From(values)
		if err != nil {
			return InvalidArgument("values", "%v", err)
		}
		var ok bool
		if list, ok = val.(value.List); !ok {
			return InvalidArgument("values", "must be a list or a comma-separated string, got %T", values)
		}
	}
	if len(list) == 0 {
		return InvalidArgument("values", "can not be empty")
	}
	o.values = list
	return nil
}

// SetData applies recognised keys. Unknown keys are ignored.
//
// Keys: property, table, mode (alias direction), values, condition,
// active, name. Deprecated: string.
func (o *Order) SetData(data Data) error {
	for _, key := range data.sortedKeys() {
		v := data[key]
		key = canonicalKey(key)

		if handled, err := o.setBaseData(key, v); handled {
			if err != nil {
				return err
			}
			continue
		}

		var err error
		switch key {
		case "mode", "direction":
			var s string
			if s, err = asString("mode", v); err == nil {
				err = o.SetMode(s)
			}
		case "values":
			if v == nil {
				o.values = nil
				continue
			}
			err = o.SetValues(v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Data exports the order state with canonical keys.
func (o *Order) Data() Data {
	d := Data{}
	o.baseData(d)
	d["mode"] = o.mode
	if o.values != nil {
		d["values"] = value.Native(o.values)
	} else {
		d["values"] = nil
	}
	return d
}

// Clone returns an independent copy of the order.
func (o *Order) Clone() *Order {
	clone := *o
	clone.values = slices.Clone(o.values)
	return &clone
}
