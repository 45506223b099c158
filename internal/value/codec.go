package value

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// MarshalJSON implements json.Marshaler for List.
func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Value(l))
}

// UnmarshalJSON implements json.Unmarshaler for List.
func (l *List) UnmarshalJSON(data []byte) error {
	v, err := Decode(data)
	if err != nil {
		return err
	}
	list, ok := v.(List)
	if !ok {
		return fmt.Errorf("expected JSON array, got %T", v)
	}
	*l = list
	return nil
}

// Decode parses a JSON document into a Value.
// Integral numbers become Int, other numbers Float. Objects are rejected.
func Decode(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	if _, isObject := raw.(map[string]any); isObject {
		return nil, fmt.Errorf("JSON objects are not supported as values")
	}
	return From(raw)
}
