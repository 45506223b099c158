package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/quarry/internal/model"
	"github.com/roach88/quarry/internal/querysql"
	"github.com/roach88/quarry/internal/source"
)

// DatabaseSource runs a source against one model's table.
//
// The embedded source is a per-query builder; a DatabaseSource is not safe
// for concurrent use. Create one per query, or Reset between queries.
type DatabaseSource struct {
	store   *Store
	source  *source.Source
	dialect querysql.Dialect
	keys    KeyGenerator
}

var _ source.Backend = (*DatabaseSource)(nil)

// SourceOption configures a DatabaseSource.
type SourceOption func(*DatabaseSource)

// WithDialect compiles fragments for d instead of SQLite. Both dialects
// execute on the store.
func WithDialect(d querysql.Dialect) SourceOption {
	return func(ds *DatabaseSource) {
		if d != nil {
			ds.dialect = d
		}
	}
}

// WithKeyGenerator sets the generator of missing key values.
func WithKeyGenerator(g KeyGenerator) SourceOption {
	return func(ds *DatabaseSource) {
		if g != nil {
			ds.keys = g
		}
	}
}

// NewDatabaseSource creates a source bound to m's table.
func NewDatabaseSource(st *Store, m *model.Model, opts ...SourceOption) (*DatabaseSource, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if m == nil {
		return nil, errors.New("model is required")
	}
	ds := &DatabaseSource{store: st, source: source.New(m), dialect: querysql.SQLite{}, keys: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(ds)
	}
	return ds, nil
}

// Source implements source.Backend.
func (ds *DatabaseSource) Source() *source.Source {
	return ds.source
}

// Model returns the model the source is bound to.
func (ds *DatabaseSource) Model() *model.Model {
	return ds.source.Model()
}

// Compiler returns a compiler for the model's table.
func (ds *DatabaseSource) Compiler() *querysql.Compiler {
	return querysql.NewCompiler(ds.dialect, ds.Model().Table())
}

// FilterSQL compiles the source's filters into a WHERE body.
func (ds *DatabaseSource) FilterSQL() (querysql.Fragment, error) {
	return ds.source.FilterSQL(ds.Compiler())
}

// OrderSQL compiles the source's orders into an ORDER BY body.
func (ds *DatabaseSource) OrderSQL() (querysql.Fragment, error) {
	return ds.source.OrderSQL(ds.Compiler())
}

// PaginationSQL compiles the source's pagination into a LIMIT clause.
func (ds *DatabaseSource) PaginationSQL() querysql.Fragment {
	return ds.source.PaginationSQL(ds.Compiler())
}

// SelectSQL compiles the full SELECT that LoadItems runs.
func (ds *DatabaseSource) SelectSQL() (querysql.Fragment, error) {
	c := ds.Compiler()
	compiled, err := ds.source.Compile(c)
	if err != nil {
		return querysql.Fragment{}, err
	}
	return c.CompileSelect(querysql.Select{
		Columns: ds.source.Columns(),
		Where:   compiled.Where,
		OrderBy: compiled.OrderBy,
		Limit:   compiled.Limit,
		Key:     ds.Model().Key(),
	}), nil
}

// LoadItems implements source.Backend.
func (ds *DatabaseSource) LoadItems(ctx context.Context) ([]*model.Record, error) {
	q, err := ds.SelectSQL()
	if err != nil {
		return nil, err
	}
	return ds.query(ctx, "select", q)
}

// CountItems returns the number of items matching the filters, ignoring
// pagination.
func (ds *DatabaseSource) CountItems(ctx context.Context) (int, error) {
	c := ds.Compiler()
	where, err := ds.source.FilterSQL(c)
	if err != nil {
		return 0, err
	}
	rows, err := ds.store.Query(ctx, "count", c.CompileCount(where))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("scan count: %w", err)
		}
	}
	return n, rows.Err()
}

// LoadItem implements source.Backend. Filters and orders are ignored; a
// missing item is nil with no error.
func (ds *DatabaseSource) LoadItem(ctx context.Context, id any) (*model.Record, error) {
	c := ds.Compiler()
	q := c.CompileSelect(querysql.Select{
		Columns: ds.source.Columns(),
		Where:   ds.keyCondition(c, id),
		Limit:   querysql.Fragment{SQL: ds.dialect.Limit(0, 1)},
	})
	items, err := ds.query(ctx, "select_one", q)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// SaveItem implements source.Backend. An item without a key value gets
// one from the key generator, which is also set on item.
func (ds *DatabaseSource) SaveItem(ctx context.Context, item *model.Record) (any, error) {
	if item == nil {
		return nil, errors.New("item is required")
	}
	m := ds.Model()
	key := m.Key()

	id, ok := item.Get(key)
	if !ok || id == nil || id == "" {
		id = ds.keys.Generate()
		item.Set(key, id)
	}

	c := ds.Compiler()
	var columns, marks []string
	var args []any
	for _, col := range ds.writableColumns(item, nil) {
		v, err := encodeValue(ds.propertyOf(col), mustGet(item, col))
		if err != nil {
			return nil, err
		}
		columns = append(columns, c.Column("", col))
		marks = append(marks, "?")
		args = append(args, v)
	}

	q := querysql.Fragment{
		SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			ds.dialect.QuoteIdentifier(m.Table()), strings.Join(columns, ", "), strings.Join(marks, ", ")),
		Args: args,
	}
	if _, err := ds.store.Exec(ctx, "insert", q); err != nil {
		return nil, err
	}
	slog.Debug("item saved", "model", m.Ident(), "id", id)
	return id, nil
}

// UpdateItem implements source.Backend. properties name model properties
// or raw columns; none means every column present on item.
func (ds *DatabaseSource) UpdateItem(ctx context.Context, item *model.Record, properties ...string) error {
	id, err := ds.itemKey(item)
	if err != nil {
		return err
	}
	m := ds.Model()
	c := ds.Compiler()

	var sets []string
	var args []any
	for _, col := range ds.writableColumns(item, properties) {
		if col == m.Key() {
			continue
		}
		v, err := encodeValue(ds.propertyOf(col), mustGet(item, col))
		if err != nil {
			return err
		}
		sets = append(sets, c.Column("", col)+" = ?")
		args = append(args, v)
	}
	if len(sets) == 0 {
		return nil
	}

	where := ds.keyCondition(c, id)
	q := querysql.Fragment{
		SQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s",
			ds.dialect.QuoteIdentifier(m.Table()), strings.Join(sets, ", "), where.SQL),
		Args: append(args, where.Args...),
	}
	res, err := ds.store.Exec(ctx, "update", q)
	if err != nil {
		return err
	}
	return ds.affected(res, id)
}

// DeleteItem implements source.Backend.
func (ds *DatabaseSource) DeleteItem(ctx context.Context, item *model.Record) error {
	id, err := ds.itemKey(item)
	if err != nil {
		return err
	}
	c := ds.Compiler()
	where := ds.keyCondition(c, id)
	q := querysql.Fragment{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s", ds.dialect.QuoteIdentifier(ds.Model().Table()), where.SQL),
		Args: where.Args,
	}
	res, err := ds.store.Exec(ctx, "delete", q)
	if err != nil {
		return err
	}
	return ds.affected(res, id)
}

func (ds *DatabaseSource) query(ctx context.Context, op string, q querysql.Fragment) ([]*model.Record, error) {
	rows, err := ds.store.Query(ctx, op, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	items := []*model.Record{}
	for rows.Next() {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		data := make(map[string]any, len(columns))
		for i, col := range columns {
			v, err := decodeValue(ds.propertyOf(col), raw[i])
			if err != nil {
				return nil, err
			}
			data[col] = v
		}
		items = append(items, model.NewRecord(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return items, nil
}

// keyCondition matches the model key against id.
func (ds *DatabaseSource) keyCondition(c *querysql.Compiler, id any) querysql.Fragment {
	return querysql.Fragment{SQL: "(" + c.Column("", ds.Model().Key()) + " = ?)", Args: []any{id}}
}

func (ds *DatabaseSource) itemKey(item *model.Record) (any, error) {
	if item == nil {
		return nil, errors.New("item is required")
	}
	id, ok := item.Get(ds.Model().Key())
	if !ok || id == nil || id == "" {
		return nil, fmt.Errorf("item has no %s value", ds.Model().Key())
	}
	return id, nil
}

func (ds *DatabaseSource) affected(res sql.Result, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", ds.Model().Ident(), id, ErrNotFound)
	}
	return nil
}

// writableColumns returns the model columns present on item, in model
// order. With properties, only their columns are considered.
func (ds *DatabaseSource) writableColumns(item *model.Record, properties []string) []string {
	m := ds.Model()
	candidates := m.Columns()
	if len(properties) > 0 {
		candidates = candidates[:0:0]
		for _, ident := range properties {
			if p, ok := m.Property(ident); ok {
				candidates = append(candidates, p.Columns(m.Translator())...)
				continue
			}
			candidates = append(candidates, ident)
		}
	}

	var out []string
	for _, col := range candidates {
		if _, ok := item.Get(col); ok {
			out = append(out, col)
		}
	}
	return out
}

// propertyOf resolves a physical column to its property, or nil.
func (ds *DatabaseSource) propertyOf(column string) *model.PropertyDescriptor {
	m := ds.Model()
	for _, ident := range m.Properties() {
		p, _ := m.Property(ident)
		for _, col := range p.Columns(m.Translator()) {
			if col == column {
				return p
			}
		}
	}
	return nil
}

func mustGet(item *model.Record, key string) any {
	v, _ := item.Get(key)
	return v
}
