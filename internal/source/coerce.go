package source

import (
	"github.com/roach88/quarry/internal/query"
)

// coerceFilter adapts a filter to the model's property definitions:
// translatable properties target the current language's column, and
// multiple-valued properties match with FIND_IN_SET. Groups are coerced
// leaf by leaf. Coercion happens once, when the filter is added.
func (s *Source) coerceFilter(n query.Node) {
	if s.model == nil {
		return
	}
	switch node := n.(type) {
	case *query.Filter:
		s.coerceLeaf(node)
	case *query.Group:
		for _, child := range node.Filters() {
			s.coerceFilter(child)
		}
	}
}

func (s *Source) coerceLeaf(f *query.Filter) {
	if f.HasCondition() || f.Property() == "" {
		return
	}
	p, ok := s.model.Property(f.Property())
	if !ok {
		return
	}

	if len(p.Fields) > 0 {
		_ = f.SetFields(p.Fields)
	}
	if p.L10n {
		_ = f.SetProperty(s.model.Translator().Ident(p.Ident))
	}
	if p.Multiple {
		_ = f.SetOperator(query.OperatorFindInSet)
	}
}

// coerceOrder points orders on translatable properties at the current
// language's column.
func (s *Source) coerceOrder(o *query.Order) {
	if s.model == nil || o.HasCondition() || o.Property() == "" {
		return
	}
	p, ok := s.model.Property(o.Property())
	if !ok {
		return
	}
	if p.L10n {
		_ = o.SetProperty(s.model.Translator().Ident(p.Ident))
	}
}

// Columns returns the physical columns for the configured properties,
// resolved through the model. Nil means every column.
func (s *Source) Columns() []string {
	if len(s.properties) == 0 {
		return nil
	}
	var columns []string
	for _, ident := range s.properties {
		if s.model == nil {
			columns = append(columns, ident)
			continue
		}
		p, ok := s.model.Property(ident)
		switch {
		case !ok:
			columns = append(columns, ident)
		case len(p.Fields) > 0:
			columns = append(columns, p.Fields...)
		case p.L10n:
			columns = append(columns, s.model.Translator().Ident(ident))
		default:
			columns = append(columns, ident)
		}
	}
	return columns
}
