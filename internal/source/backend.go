package source

import (
	"context"

	"github.com/roach88/quarry/internal/model"
	"github.com/roach88/quarry/internal/querysql"
)

// Backend is a storage-specific source. Implementations compile the
// source's state to their query language.
type Backend interface {
	// Source returns the configuration the backend queries with.
	Source() *Source

	// LoadItem loads the item with the given key value. A missing item is
	// nil, not an error.
	LoadItem(ctx context.Context, id any) (*model.Record, error)

	// LoadItems loads every item matching the filters, ordered and paged.
	LoadItems(ctx context.Context) ([]*model.Record, error)

	// SaveItem inserts item and returns its key value.
	SaveItem(ctx context.Context, item *model.Record) (any, error)

	// UpdateItem updates item. With no properties, every property is
	// written.
	UpdateItem(ctx context.Context, item *model.Record, properties ...string) error

	// DeleteItem deletes item.
	DeleteItem(ctx context.Context, item *model.Record) error
}

// Compiled holds the three SQL fragments of a source.
type Compiled struct {
	Where   querysql.Fragment
	OrderBy querysql.Fragment
	Limit   querysql.Fragment
}

// FilterSQL compiles the filters into a WHERE body.
func (s *Source) FilterSQL(c *querysql.Compiler) (querysql.Fragment, error) {
	return c.CompileFilters(s.Filters())
}

// OrderSQL compiles the orders into an ORDER BY body.
func (s *Source) OrderSQL(c *querysql.Compiler) (querysql.Fragment, error) {
	return c.CompileOrders(s.Orders())
}

// PaginationSQL compiles the LIMIT clause. Without a page size it is empty.
func (s *Source) PaginationSQL(c *querysql.Compiler) querysql.Fragment {
	return c.CompilePagination(s.pagination)
}

// Compile compiles every fragment. Any error fails the whole compilation:
// no partial query is returned.
func (s *Source) Compile(c *querysql.Compiler) (Compiled, error) {
	where, err := s.FilterSQL(c)
	if err != nil {
		return Compiled{}, err
	}
	orderBy, err := s.OrderSQL(c)
	if err != nil {
		return Compiled{}, err
	}
	return Compiled{
		Where:   where,
		OrderBy: orderBy,
		Limit:   s.PaginationSQL(c),
	}, nil
}
