package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/value"
)

// AssertionError is a failed expectation.
type AssertionError struct {
	Type     string // Expectation name (ids, count, sql, ...)
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// checkStep evaluates every expectation of step against its trace and
// returns the failure messages.
func checkStep(step Step, trace StepTrace) []string {
	exp := step.Expect

	if exp.Error != "" {
		if err := assertError(trace, exp.Error); err != nil {
			return []string{err.Error()}
		}
		return nil
	}
	if trace.err != nil {
		return []string{fmt.Sprintf("unexpected error: %v", trace.err)}
	}

	var errs []string
	check := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if exp.IDs != nil {
		check(assertIDs(trace, exp.IDs))
	}
	if len(exp.Contains) > 0 {
		check(assertContains(trace, exp.Contains))
	}
	if exp.Count != nil && trace.Count != *exp.Count {
		check(&AssertionError{Type: "count", Expected: fmt.Sprint(*exp.Count), Actual: fmt.Sprint(trace.Count)})
	}
	if exp.SQL != "" && trace.SQL != exp.SQL {
		check(&AssertionError{Type: "sql", Expected: fmt.Sprintf("%q", exp.SQL), Actual: fmt.Sprintf("%q", trace.SQL)})
	}
	if exp.Inline != "" && trace.Inline != exp.Inline {
		check(&AssertionError{Type: "inline", Expected: fmt.Sprintf("%q", exp.Inline), Actual: fmt.Sprintf("%q", trace.Inline)})
	}
	if len(exp.First) > 0 {
		check(assertFirst(trace, exp.First))
	}
	return errs
}

func assertError(trace StepTrace, kind string) error {
	if trace.err == nil {
		return &AssertionError{Type: "error", Expected: kind + " error", Actual: "success"}
	}
	var ok bool
	switch kind {
	case ErrorInvalidArgument:
		ok = query.IsInvalidArgument(trace.err)
	case ErrorDomain:
		ok = query.IsDomainError(trace.err)
	default:
		ok = true
	}
	if !ok {
		return &AssertionError{Type: "error", Expected: kind + " error", Actual: trace.err.Error()}
	}
	return nil
}

// assertIDs checks the page holds exactly ids, in order.
func assertIDs(trace StepTrace, ids []string) error {
	if slices.Equal(trace.IDs, ids) {
		return nil
	}
	return &AssertionError{Type: "ids", Expected: fmt.Sprint(ids), Actual: fmt.Sprint(trace.IDs)}
}

// assertContains checks every id is on the page. Order is not checked.
func assertContains(trace StepTrace, ids []string) error {
	var missing []string
	for _, id := range ids {
		if !slices.Contains(trace.IDs, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{Type: "contains", Expected: fmt.Sprintf("%v on the page", missing), Actual: fmt.Sprint(trace.IDs)}
}

// assertFirst checks the first loaded item contains every expected value
// (subset match). Extra columns are ignored.
func assertFirst(trace StepTrace, expected map[string]any) error {
	if len(trace.items) == 0 {
		return &AssertionError{Type: "first", Expected: fmt.Sprint(expected), Actual: "no items"}
	}
	first := trace.items[0]
	for key, want := range expected {
		got, ok := first[key]
		if !ok {
			return &AssertionError{Type: "first", Expected: fmt.Sprintf("column %s", key), Actual: "missing"}
		}
		if !valuesEqual(got, want) {
			return &AssertionError{Type: "first", Expected: fmt.Sprintf("%s = %v", key, want), Actual: fmt.Sprintf("%s = %v", key, got)}
		}
	}
	return nil
}

// valuesEqual compares a loaded value with an expected YAML value.
// Scalars compare by their SQL text, so 3, int64(3) and 3.0 are equal,
// and true equals 1. Lists compare element-wise.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	a, errA := value.From(actual)
	e, errE := value.From(expected)
	if errA != nil || errE != nil {
		return reflect.DeepEqual(actual, expected)
	}

	al, aIsList := a.(value.List)
	el, eIsList := e.(value.List)
	if aIsList != eIsList {
		return false
	}
	if aIsList {
		if len(al) != len(el) {
			return false
		}
		for i := range al {
			if !valuesEqual(value.Native(al[i]), value.Native(el[i])) {
				return false
			}
		}
		return true
	}

	if value.IsNumeric(a) && value.IsNumeric(e) {
		return numeric(a) == numeric(e)
	}
	return value.Text(a) == value.Text(e)
}

func numeric(v value.Value) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(value.Text(v)), 64)
	return f
}
