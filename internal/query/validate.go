package query

import (
	"fmt"
)

// ValidationResult contains portability analysis of a query.
//
// Portable expressions compile identically on every dialect. Expressions
// outside that subset still compile, but may only run on MySQL or may
// bypass quoting.
type ValidationResult struct {
	// IsPortable indicates that only portable features are used.
	IsPortable bool

	// Warnings lists non-portable features. Empty when IsPortable is true.
	Warnings []string
}

// mysqlOnlyOperators are operators without a standard SQL equivalent.
var mysqlOnlyOperators = map[string]bool{
	"REGEXP":      true,
	"NOT REGEXP":  true,
	"FIND_IN_SET": true,
	"MOD":         true,
}

// Validate checks expressions for non-portable features.
//
// Checked rules:
//  1. Raw conditions are passed through verbatim (no quoting, no dialect)
//  2. MySQL-only operators (REGEXP, FIND_IN_SET, MOD)
//  3. SQL functions wrapping a column
//  4. Non-standard conjunctions (&&, ||, XOR)
//  5. Rand and values orders (RAND(), FIELD())
//  6. Empty groups, which compile to nothing
//
// Validate is a pure function with no side effects. Inactive expressions
// are skipped.
func Validate(exprs ...Expression) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	for _, expr := range exprs {
		v.validateExpression(expr)
	}

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

// addWarning appends a warning message.
func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateExpression(e Expression) {
	if e == nil {
		v.addWarning("nil expression")
		return
	}
	if !e.Active() {
		return
	}

	switch expr := e.(type) {
	case *Filter:
		v.validateFilter(expr)
	case *Group:
		v.validateGroup(expr)
	case *Order:
		v.validateOrder(expr)
	default:
		v.addWarning("Unknown expression type: %T - portability cannot be verified", e)
	}
}

func (v *validator) validateConjunction(label, conjunction string) {
	switch conjunction {
	case "&&", "||", ConjunctionXor:
		v.addWarning("%s uses conjunction %s - not supported outside MySQL", label, conjunction)
	}
}

func (v *validator) validateFilter(f *Filter) {
	label := filterLabel(f)
	v.validateConjunction(label, f.Conjunction())

	// Rule 1: raw conditions
	if f.HasCondition() {
		v.addWarning("%s uses a raw condition - passed through without quoting", label)
		return
	}

	// Rule 2: MySQL-only operators
	if mysqlOnlyOperators[f.Operator()] {
		v.addWarning("%s uses operator %s - MySQL only", label, f.Operator())
	}

	// Rule 3: functions
	if f.Function() != "" {
		v.addWarning("%s wraps the column in %s() - availability varies by dialect", label, f.Function())
	}
}

func (v *validator) validateGroup(g *Group) {
	label := "Group"
	if g.Name() != "" {
		label = fmt.Sprintf("Group %q", g.Name())
	}
	v.validateConjunction(label, g.Conjunction())

	// Rule 6: empty groups
	active := 0
	for _, child := range g.Filters() {
		if child.Active() {
			active++
		}
		v.validateExpression(child)
	}
	if active == 0 {
		v.addWarning("%s has no active filters - compiles to nothing", label)
	}
}

func (v *validator) validateOrder(o *Order) {
	label := "Order"
	if o.Property() != "" {
		label = fmt.Sprintf("Order on '%s'", o.Property())
	}

	if o.HasCondition() {
		v.addWarning("%s uses a raw condition - passed through without quoting", label)
		return
	}

	// Rule 5: rand and values modes
	switch o.Mode() {
	case ModeRand:
		v.addWarning("%s uses random ordering - function name varies by dialect", label)
	case ModeValues:
		v.addWarning("%s uses explicit values ordering - FIELD() is MySQL only", label)
	}
}

func filterLabel(f *Filter) string {
	if f.Property() != "" {
		return fmt.Sprintf("Filter on '%s'", f.Property())
	}
	if f.Name() != "" {
		return fmt.Sprintf("Filter %q", f.Name())
	}
	return "Filter"
}
