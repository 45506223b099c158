package query

import (
	"fmt"
	"log/slog"
)

// Deprecation describes the use of a legacy data key.
type Deprecation struct {
	Key         string // legacy key, e.g. "val"
	Replacement string // current key, e.g. "value"
}

func (d Deprecation) String() string {
	return fmt.Sprintf("%q is deprecated in favour of %q", d.Key, d.Replacement)
}

// DeprecationHandler receives every deprecation raised by SetData.
// It is never an error: the legacy key is applied as if the replacement
// had been used. Set to nil to silence deprecations.
var DeprecationHandler = func(d Deprecation) {
	slog.Warn("deprecated expression key",
		"key", d.Key,
		"replacement", d.Replacement)
}

// deprecatedKeys maps legacy keys to their replacements.
var deprecatedKeys = map[string]string{
	"val":     "value",
	"operand": "conjunction",
	"string":  "condition",
}

// canonicalKey resolves a legacy key, signalling the deprecation.
// Keys that are not deprecated are returned unchanged.
func canonicalKey(key string) string {
	replacement, ok := deprecatedKeys[key]
	if !ok {
		return key
	}
	if h := DeprecationHandler; h != nil {
		h(Deprecation{Key: key, Replacement: replacement})
	}
	return replacement
}
