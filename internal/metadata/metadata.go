// Package metadata loads model descriptors.
//
// A descriptor describes one model: its table, primary key and properties.
// Descriptors are files named after the model ident ("shop/product.json")
// found in one or more search paths, written in CUE, JSON or YAML. A
// descriptor may extend others; the hierarchy is merged parents first so
// that children override.
package metadata

import (
	"sort"
	"strings"
)

// Property types understood by the store.
const (
	TypeID       = "id"
	TypeString   = "string"
	TypeText     = "text"
	TypeHTML     = "html"
	TypeURL      = "url"
	TypeEmail    = "email"
	TypePassword = "password"
	TypeNumber   = "number"
	TypeInteger  = "integer"
	TypeBoolean  = "boolean"
	TypeDate     = "date"
	TypeDateTime = "datetime"
	TypeObject   = "object"
)

// DefaultKey is the primary key property used when a descriptor sets none.
const DefaultKey = "id"

// Metadata is the merged descriptor of one model. Values returned by a
// Loader are shared and must not be modified.
type Metadata struct {
	// Ident is the normalized model ident ("shop/product").
	Ident string `json:"-"`

	// Hierarchy lists the merged idents, parents first, Ident last.
	Hierarchy []string `json:"-"`

	Label      string              `json:"label,omitempty"`
	Table      string              `json:"table,omitempty"`
	Key        string              `json:"key,omitempty"`
	Properties map[string]Property `json:"properties,omitempty"`
}

// Property describes one model property.
type Property struct {
	Type     string `json:"type,omitempty"`
	Label    string `json:"label,omitempty"`
	Required bool   `json:"required,omitempty"`

	// L10n marks a translatable property, stored in one column per language.
	L10n bool `json:"l10n,omitempty"`

	// Multiple marks a property holding a comma-separated list of values.
	Multiple bool `json:"multiple,omitempty"`

	// Fields lists the physical columns of a property spanning several.
	Fields []string `json:"fields,omitempty"`
}

// Property returns the descriptor of a property.
func (m *Metadata) Property(ident string) (Property, bool) {
	p, ok := m.Properties[ident]
	return p, ok
}

// PropertyNames returns the property idents, key first, then sorted.
func (m *Metadata) PropertyNames() []string {
	names := make([]string, 0, len(m.Properties))
	for name := range m.Properties {
		if name != m.Key {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := m.Properties[m.Key]; ok {
		names = append([]string{m.Key}, names...)
	}
	return names
}

// applyDefaults fills in the table, key and property types.
func (m *Metadata) applyDefaults() {
	if m.Table == "" {
		m.Table = defaultTable(m.Ident)
	}
	if m.Key == "" {
		m.Key = DefaultKey
	}
	if m.Properties == nil {
		m.Properties = map[string]Property{}
	}
	if _, ok := m.Properties[m.Key]; !ok {
		m.Properties[m.Key] = Property{Type: TypeID}
	}
	for name, p := range m.Properties {
		if p.Type == "" {
			p.Type = TypeString
			m.Properties[name] = p
		}
	}
}

// defaultTable derives a table name from an ident: "shop/product-category"
// becomes "shop_product_category".
func defaultTable(ident string) string {
	return strings.NewReplacer("/", "_", "-", "_").Replace(ident)
}
