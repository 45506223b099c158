package source

import (
	"sort"

	"github.com/roach88/quarry/internal/query"
)

// SetData configures the source from a map, as read from a query document.
//
// Keys: properties, filters, orders, pagination, page, num_per_page (alias
// numPerPage). Unknown keys are ignored. Keys are applied in a fixed order
// so that page and num_per_page refine pagination.
func (s *Source) SetData(data query.Data) error {
	if v, ok := data["properties"]; ok {
		properties, err := asStrings("properties", v)
		if err != nil {
			return err
		}
		if err := s.SetProperties(properties); err != nil {
			return err
		}
	}
	if v, ok := data["filters"]; ok {
		if err := s.SetFilters(v); err != nil {
			return err
		}
	}
	if v, ok := data["orders"]; ok {
		if err := s.SetOrders(v); err != nil {
			return err
		}
	}
	if v, ok := data["pagination"]; ok {
		if err := s.SetPagination(v); err != nil {
			return err
		}
	}

	paging := query.Data{}
	for _, key := range []string{"page", "num_per_page", "numPerPage"} {
		if v, ok := data[key]; ok {
			paging[key] = v
		}
	}
	if len(paging) > 0 {
		if err := s.Pagination().SetData(paging); err != nil {
			return err
		}
	}
	return nil
}

// Data exports the configuration in the form SetData accepts.
func (s *Source) Data() query.Data {
	filters := make([]any, 0, s.filters.Len())
	for _, f := range s.filters.All() {
		filters = append(filters, f.Data())
	}
	orders := make([]any, 0, s.orders.Len())
	for _, o := range s.orders.All() {
		orders = append(orders, o.Data())
	}

	d := query.Data{
		"properties": s.Properties(),
		"filters":    filters,
		"orders":     orders,
	}
	if s.pagination != nil {
		d["pagination"] = s.pagination.Data()
	}
	return d
}

// asStrings accepts []string and []any holding strings.
func asStrings(field string, v any) ([]string, error) {
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
				return nil, query.InvalidArgument(field, "must contain strings, got %T", item)
			}
			out[i] = s
		}
		return out, nil
	case map[string]any:
		// A map lists properties by key, in key order.
		keys := make([]string, 0, len(list))
		for k := range list {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys, nil
	}
	return nil, query.InvalidArgument(field, "must be a list of strings, got %T", v)
}
