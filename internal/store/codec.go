package store

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/roach88/quarry/internal/metadata"
	"github.com/roach88/quarry/internal/model"
	"github.com/roach88/quarry/internal/value"
)

// columnType returns the SQLite column type storing a property.
func columnType(p *model.PropertyDescriptor) string {
	if p.Multiple {
		return "TEXT"
	}
	switch p.Type {
	case metadata.TypeInteger, metadata.TypeBoolean:
		return "INTEGER"
	case metadata.TypeNumber:
		return "REAL"
	default:
		return "TEXT"
	}
}

// encodeValue converts a record value to its column value.
func encodeValue(p *model.PropertyDescriptor, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(value.DateTimeLayout), nil
	}

	if p != nil && p.Type == metadata.TypeObject {
		if s, ok := v.(string); ok {
			return s, nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", p.Ident, err)
		}
		return string(data), nil
	}

	val, err := value.From(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", identOf(p), err)
	}
	if _, ok := val.(value.List); ok {
		return value.Text(val), nil
	}
	return value.Native(val), nil
}

// decodeValue converts a column value back to a record value.
func decodeValue(p *model.PropertyDescriptor, v any) (any, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if v == nil || p == nil {
		return v, nil
	}

	switch {
	case p.Multiple:
		if s, ok := v.(string); ok {
			return value.Native(value.Split(s)), nil
		}
	case p.Type == metadata.TypeObject:
		if s, ok := v.(string); ok && s != "" {
			var out any
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil, fmt.Errorf("decode %s: %w", p.Ident, err)
			}
			return out, nil
		}
	case p.Type == metadata.TypeBoolean:
		if n, ok := v.(int64); ok {
			return n != 0, nil
		}
	}
	return v, nil
}

func identOf(p *model.PropertyDescriptor) string {
	if p == nil {
		return "value"
	}
	return p.Ident
}
