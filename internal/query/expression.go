package query

import (
	"strings"
)

// Expression is the behaviour shared by filters, groups and orders.
type Expression interface {
	// Name identifies the expression inside a collection ("" when unnamed).
	Name() string
	SetName(name string)

	// Active reports whether the expression takes part in compilation.
	Active() bool
	SetActive(active bool)

	// SetData applies recognised keys; Data exports the current state.
	SetData(data Data) error
	Data() Data
}

// Conjunctions, upper-case.
const (
	ConjunctionAnd = "AND"
	ConjunctionOr  = "OR"
	ConjunctionXor = "XOR"

	DefaultConjunction = ConjunctionAnd
)

var validConjunctions = map[string]bool{
	"AND": true, "&&": true,
	"OR": true, "||": true,
	"XOR": true,
}

// ValidConjunction reports whether s is a supported conjunction (any case).
func ValidConjunction(s string) bool {
	return validConjunctions[strings.ToUpper(s)]
}

func normalizeConjunction(s string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if !validConjunctions[upper] {
		return "", InvalidArgument("conjunction", "%q is not a valid conjunction", s)
	}
	return upper, nil
}

// base holds the fields common to filters and orders.
type base struct {
	property  string
	table     string
	condition string
	active    bool
	name      string
}

func newBase() base {
	return base{active: true}
}

// Property returns the target field identifier.
func (b *base) Property() string {
	return b.property
}

// SetProperty sets the target field. The identifier must be non-empty.
func (b *base) SetProperty(property string) error {
	property = strings.TrimSpace(property)
	if property == "" {
		return InvalidArgument("property", "can not be empty")
	}
	b.property = property
	return nil
}

// Table returns the table qualifier override ("" uses the source table).
func (b *base) Table() string {
	return b.table
}

// SetTable overrides the table qualifier. An empty string clears it.
func (b *base) SetTable(table string) {
	b.table = strings.TrimSpace(table)
}

// Condition returns the raw expression, if any.
func (b *base) Condition() string {
	return b.condition
}

// SetCondition sets a raw expression that takes precedence over the
// structured fields when compiled.
func (b *base) SetCondition(condition string) {
	b.condition = strings.TrimSpace(condition)
}

// HasCondition reports whether a raw expression is set.
func (b *base) HasCondition() bool {
	return b.condition != ""
}

// Active reports whether the expression takes part in compilation.
func (b *base) Active() bool {
	return b.active
}

// SetActive toggles the expression.
func (b *base) SetActive(active bool) {
	b.active = active
}

// Name identifies the expression inside a collection.
func (b *base) Name() string {
	return b.name
}

// SetName sets the lookup name.
func (b *base) SetName(name string) {
	b.name = name
}

// setBaseData applies the common keys. It reports whether key was handled.
// A nil property is left as is; a nil table, condition or name clears it.
func (b *base) setBaseData(key string, v any) (bool, error) {
	switch key {
	case "property":
		if v == nil {
			return true, nil
		}
		s, err := asString(key, v)
		if err != nil {
			return true, err
		}
		return true, b.SetProperty(s)
	case "table":
		if v == nil {
			b.SetTable("")
			return true, nil
		}
		s, err := asString(key, v)
		if err != nil {
			return true, err
		}
		b.SetTable(s)
		return true, nil
	case "condition":
		if v == nil {
			b.SetCondition("")
			return true, nil
		}
		s, err := asString(key, v)
		if err != nil {
			return true, err
		}
		b.SetCondition(s)
		return true, nil
	case "active":
		active, err := asBool(key, v)
		if err != nil {
			return true, err
		}
		b.SetActive(active)
		return true, nil
	case "name":
		if v == nil {
			b.SetName("")
			return true, nil
		}
		s, err := asString(key, v)
		if err != nil {
			return true, err
		}
		b.SetName(s)
		return true, nil
	}
	return false, nil
}

// baseData exports the common keys.
func (b *base) baseData(d Data) {
	d["property"] = nilIfEmpty(b.property)
	d["table"] = nilIfEmpty(b.table)
	d["condition"] = nilIfEmpty(b.condition)
	d["active"] = b.active
	d["name"] = nilIfEmpty(b.name)
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
