// Package model binds a metadata descriptor to a translator.
//
// A Model answers the questions a Source asks about properties: is it
// translatable, does it hold several values, which columns store it.
package model

import (
	"github.com/roach88/quarry/internal/metadata"
	"github.com/roach88/quarry/internal/translation"
)

// PropertyDescriptor is the subset of a property definition used to build
// and store queries.
type PropertyDescriptor struct {
	Ident    string
	Type     string
	Label    string
	Required bool
	L10n     bool
	Multiple bool

	// Fields lists the physical columns when the property spans several.
	Fields []string
}

// Columns returns the physical columns storing the property, one per
// available language for translatable properties.
func (p *PropertyDescriptor) Columns(tr *translation.Translator) []string {
	switch {
	case len(p.Fields) > 0:
		return append([]string(nil), p.Fields...)
	case p.L10n && tr != nil:
		return tr.Idents(p.Ident)
	default:
		return []string{p.Ident}
	}
}

// Model describes one entity: its table, key and properties.
type Model struct {
	meta       *metadata.Metadata
	translator *translation.Translator
}

// New creates a model. A nil translator defaults to English only.
func New(meta *metadata.Metadata, tr *translation.Translator) *Model {
	if tr == nil {
		tr = translation.MustNew(translation.DefaultLanguage)
	}
	return &Model{meta: meta, translator: tr}
}

// Load loads ident's descriptor and creates its model.
func Load(loader *metadata.Loader, ident string, tr *translation.Translator) (*Model, error) {
	meta, err := loader.Load(ident)
	if err != nil {
		return nil, err
	}
	return New(meta, tr), nil
}

// Ident returns the model ident.
func (m *Model) Ident() string { return m.meta.Ident }

// Table returns the storage table.
func (m *Model) Table() string { return m.meta.Table }

// Key returns the primary key property.
func (m *Model) Key() string { return m.meta.Key }

// Metadata returns the underlying descriptor.
func (m *Model) Metadata() *metadata.Metadata { return m.meta }

// Translator returns the model's translator.
func (m *Model) Translator() *translation.Translator { return m.translator }

// Property returns the descriptor of a property, or false when the model
// has no such property.
func (m *Model) Property(ident string) (*PropertyDescriptor, bool) {
	p, ok := m.meta.Property(ident)
	if !ok {
		return nil, false
	}
	return &PropertyDescriptor{
		Ident:    ident,
		Type:     p.Type,
		Label:    p.Label,
		Required: p.Required,
		L10n:     p.L10n,
		Multiple: p.Multiple,
		Fields:   append([]string(nil), p.Fields...),
	}, true
}

// Properties returns the property idents, key first.
func (m *Model) Properties() []string {
	return m.meta.PropertyNames()
}

// Columns returns every physical column of the model, in property order.
func (m *Model) Columns() []string {
	var columns []string
	for _, ident := range m.Properties() {
		p, _ := m.Property(ident)
		columns = append(columns, p.Columns(m.translator)...)
	}
	return columns
}
