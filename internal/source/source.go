// Package source is the backend-agnostic query facade.
//
// A Source collects what to load (properties), which items (filters),
// in what order (orders) and which page (pagination). Backends compile that
// state to their query language and run it. A Source is a short-lived,
// per-query builder: it is not safe for concurrent use.
package source

import (
	"slices"
	"strings"

	"github.com/roach88/quarry/internal/model"
	"github.com/roach88/quarry/internal/query"
)

// Source holds the configuration of one query.
type Source struct {
	model      *model.Model
	properties []string
	filters    *query.Collection[query.Node]
	orders     *query.Collection[*query.Order]
	pagination *query.Pagination
}

// New creates an empty source. m may be nil.
func New(m *model.Model) *Source {
	return &Source{
		model:   m,
		filters: query.NewFilterCollection(),
		orders:  query.NewOrderCollection(),
	}
}

// Model returns the attached model, or nil.
func (s *Source) Model() *model.Model {
	return s.model
}

// HasModel reports whether a model is attached.
func (s *Source) HasModel() bool {
	return s.model != nil
}

// SetModel attaches a model. Expressions already added are not coerced
// again.
func (s *Source) SetModel(m *model.Model) {
	s.model = m
}

// Reset clears properties, filters, orders and pagination. The model is
// kept.
func (s *Source) Reset() {
	s.properties = nil
	s.filters.Reset()
	s.orders.Reset()
	s.pagination = nil
}

// Clone returns an independent copy. Expression trees are deep-copied;
// the model is shared.
func (s *Source) Clone() *Source {
	clone := &Source{
		model:      s.model,
		properties: slices.Clone(s.properties),
		filters:    s.filters.Clone(),
		orders:     s.orders.Clone(),
	}
	if s.pagination != nil {
		clone.pagination = s.pagination.Clone()
	}
	return clone
}

// Properties returns the properties to load. Empty means all.
func (s *Source) Properties() []string {
	return slices.Clone(s.properties)
}

// SetProperties replaces the properties to load. On error the previous
// list is kept.
func (s *Source) SetProperties(properties []string) error {
	var next []string
	for _, property := range properties {
		ident, err := propertyIdent(property)
		if err != nil {
			return err
		}
		next = append(next, ident)
	}
	s.properties = next
	return nil
}

// AddProperty appends a property to load.
func (s *Source) AddProperty(property string) error {
	property, err := propertyIdent(property)
	if err != nil {
		return err
	}
	s.properties = append(s.properties, property)
	return nil
}

// propertyIdent trims an identifier and rejects it when blank.
func propertyIdent(property string) (string, error) {
	property = strings.TrimSpace(property)
	if property == "" {
		return "", query.InvalidArgument("property", "can not be empty")
	}
	return property, nil
}

// Filters returns the root-level filters.
func (s *Source) Filters() []query.Node {
	return s.filters.All()
}

// SetFilters replaces every filter. inputs is anything Collection.AddMany
// accepts. On error the previous filters are kept.
func (s *Source) SetFilters(inputs any) error {
	next := query.NewFilterCollection()
	if err := next.AddMany(inputs); err != nil {
		return err
	}
	for _, n := range next.All() {
		s.coerceFilter(n)
	}
	s.filters = next
	return nil
}

// AddFilter appends a filter or group given as a node, a Data map, a raw
// condition string or a builder func.
func (s *Source) AddFilter(input any) error {
	n, err := s.filters.Process(input)
	if err != nil {
		return err
	}
	s.coerceFilter(n)
	s.filters.Append(n)
	return nil
}

// AddFilterValue appends a filter on property matching v. opts are applied
// after the property and value (operator, conjunction, ...).
func (s *Source) AddFilterValue(property string, v any, opts query.Data) error {
	f := query.NewFilter()
	if err := f.SetProperty(property); err != nil {
		return err
	}
	if err := f.SetValue(v); err != nil {
		return err
	}
	if opts != nil {
		if err := f.SetData(opts); err != nil {
			return err
		}
	}
	s.coerceFilter(f)
	s.filters.Append(f)
	return nil
}

// AddFilterGroup appends a group of filters. opts configure the group
// itself (conjunction, active, name).
func (s *Source) AddFilterGroup(filters any, opts query.Data) error {
	g := query.NewGroup()
	if opts != nil {
		if err := g.SetData(opts); err != nil {
			return err
		}
	}
	if err := g.SetFilters(filters); err != nil {
		return err
	}
	s.coerceFilter(g)
	s.filters.Append(g)
	return nil
}

// Orders returns the orders.
func (s *Source) Orders() []*query.Order {
	return s.orders.All()
}

// SetOrders replaces every order. On error the previous orders are kept.
func (s *Source) SetOrders(inputs any) error {
	next := query.NewOrderCollection()
	if err := next.AddMany(inputs); err != nil {
		return err
	}
	for _, o := range next.All() {
		s.coerceOrder(o)
	}
	s.orders = next
	return nil
}

// AddOrder appends an order given as an *Order, a Data map, a raw
// condition string or a builder func.
func (s *Source) AddOrder(input any) error {
	o, err := s.orders.Process(input)
	if err != nil {
		return err
	}
	s.coerceOrder(o)
	s.orders.Append(o)
	return nil
}

// AddOrderValue appends an order on property. opts may carry values for
// the values mode.
func (s *Source) AddOrderValue(property, mode string, opts query.Data) error {
	o := query.NewOrder()
	if err := o.SetProperty(property); err != nil {
		return err
	}
	if mode != "" {
		if err := o.SetMode(mode); err != nil {
			return err
		}
	}
	if opts != nil {
		if err := o.SetData(opts); err != nil {
			return err
		}
	}
	s.coerceOrder(o)
	s.orders.Append(o)
	return nil
}

// Pagination returns the pagination, creating an unlimited one on first
// access.
func (s *Source) Pagination() *query.Pagination {
	if s.pagination == nil {
		s.pagination = query.NewPagination()
	}
	return s.pagination
}

// SetPagination replaces the pagination with a *query.Pagination or one
// built from a Data map.
func (s *Source) SetPagination(input any) error {
	switch p := input.(type) {
	case *query.Pagination:
		if p == nil {
			return query.InvalidArgument("pagination", "can not be nil")
		}
		s.pagination = p
		return nil
	case query.Data:
		return s.setPaginationData(p)
	case map[string]any:
		return s.setPaginationData(query.Data(p))
	}
	return query.InvalidArgument("pagination", "must be a pagination or a map, got %T", input)
}

func (s *Source) setPaginationData(data query.Data) error {
	p, err := query.NewPaginationFromData(data)
	if err != nil {
		return err
	}
	s.pagination = p
	return nil
}

// Page returns the page number.
func (s *Source) Page() int {
	return s.Pagination().Page()
}

// SetPage sets the page number.
func (s *Source) SetPage(page int) error {
	return s.Pagination().SetPage(page)
}

// NumPerPage returns the page size.
func (s *Source) NumPerPage() int {
	return s.Pagination().NumPerPage()
}

// SetNumPerPage sets the page size.
func (s *Source) SetNumPerPage(n int) error {
	return s.Pagination().SetNumPerPage(n)
}
