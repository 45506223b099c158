package query

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Data is the map form of an expression, as accepted by SetData and
// returned by Data.
type Data map[string]any

// sortedKeys returns keys in a stable order so that SetData applies them
// deterministically.
func (d Data) sortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// asString requires v to be a string.
func asString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", InvalidArgument(field, "must be a string, got %T", v)
	}
	return s, nil
}

// asBool accepts booleans and the integers 0 and 1.
func asBool(field string, v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
	case int64:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
	case float64:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
	}
	return false, InvalidArgument(field, "must be a boolean, got %T", v)
}

// asInt accepts integers, integral floats, json.Number and numeric strings.
// Booleans and nil are rejected.
func asInt(field string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		if uint64(n) <= math.MaxInt32 {
			return int(n), nil
		}
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), nil
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, nil
		}
	}
	return 0, InvalidArgument(field, "must be an integer, got %v (%T)", v, v)
}

// asStringList accepts nil, []string and []any holding strings.
func asStringList(field string, v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, InvalidArgument(field, "must contain strings, got %T", item)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, InvalidArgument(field, "must be a list of strings, got %T", v)
}

// asData accepts Data or a plain map.
func asData(field string, v any) (Data, error) {
	switch d := v.(type) {
	case Data:
		return d, nil
	case map[string]any:
		return Data(d), nil
	}
	return nil, InvalidArgument(field, "must be a map, got %T", v)
}
