package model

import (
	"fmt"
	"sort"

	"github.com/tiendc/go-deepcopy"
)

// Record is a loaded or to-be-saved item: property values keyed by column.
type Record struct {
	data map[string]any
}

// NewRecord creates a record holding a copy of data.
func NewRecord(data map[string]any) *Record {
	r := &Record{data: make(map[string]any, len(data))}
	for k, v := range data {
		r.data[k] = v
	}
	return r
}

// Get returns a value.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.data[key]
	return v, ok
}

// Set sets a value.
func (r *Record) Set(key string, v any) {
	if r.data == nil {
		r.data = map[string]any{}
	}
	r.data[key] = v
}

// Delete removes a value.
func (r *Record) Delete(key string) {
	delete(r.data, key)
}

// String returns a value formatted as text, "" when missing or nil.
func (r *Record) String(key string) string {
	v, ok := r.data[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Keys returns the keys, sorted.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.data))
	for k := range r.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Data returns a shallow copy of the values.
func (r *Record) Data() map[string]any {
	out := make(map[string]any, len(r.data))
	for k, v := range r.data {
		out[k] = v
	}
	return out
}

// Len returns the number of values.
func (r *Record) Len() int {
	return len(r.data)
}

// Clone returns a deep copy: nested maps and slices are not shared.
func (r *Record) Clone() (*Record, error) {
	var data map[string]any
	if err := deepcopy.Copy(&data, r.data); err != nil {
		return nil, fmt.Errorf("clone record: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return &Record{data: data}, nil
}
