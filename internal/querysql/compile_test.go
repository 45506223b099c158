package querysql

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quarry/internal/query"
)

func filter(t *testing.T, data query.Data) *query.Filter {
	t.Helper()
	f, err := query.NewFilterFromData(data)
	require.NoError(t, err)
	return f
}

func order(t *testing.T, data query.Data) *query.Order {
	t.Helper()
	o, err := query.NewOrderFromData(data)
	require.NoError(t, err)
	return o
}

func group(t *testing.T, data query.Data, children ...query.Node) *query.Group {
	t.Helper()
	g := query.NewGroup()
	require.NoError(t, g.SetData(data))
	for _, child := range children {
		require.NoError(t, g.AddFilter(child))
	}
	return g
}

func inline(t *testing.T, f Fragment) string {
	t.Helper()
	s, err := Interpolate(MySQL{}, f)
	require.NoError(t, err)
	return s
}

func TestCompileOrder_Modes(t *testing.T) {
	c := NewCompiler(MySQL{}, "")

	frag, err := c.CompileOrder(order(t, query.Data{"property": "test", "mode": "asc"}))
	require.NoError(t, err)
	assert.Equal(t, "`test` asc", frag.SQL)
	assert.Empty(t, frag.Args)

	frag, err = c.CompileOrder(order(t, query.Data{"property": "test", "mode": "DESC"}))
	require.NoError(t, err)
	assert.Equal(t, "`test` desc", frag.SQL)

	frag, err = c.CompileOrder(order(t, query.Data{"mode": "rand"}))
	require.NoError(t, err)
	assert.Equal(t, "RAND()", frag.SQL)

	frag, err = c.CompileOrder(order(t, query.Data{"property": "test", "mode": "values", "values": []int{1, 2, 3}}))
	require.NoError(t, err)
	assert.Equal(t, "FIELD(`test`, ?,?,?)", frag.SQL)
	assert.Equal(t, []any{Number("1"), Number("2"), Number("3")}, frag.Args)
	assert.Equal(t, "FIELD(`test`, 1,2,3)", inline(t, frag))

	frag, err = c.CompileOrder(order(t, query.Data{"property": "test", "mode": "values", "values": "1, 2,3"}))
	require.NoError(t, err)
	assert.Equal(t, "FIELD(`test`, 1,2,3)", inline(t, frag))
}

func TestCompileOrder_ValuesAreNotInterpolated(t *testing.T) {
	c := NewCompiler(MySQL{}, "")

	frag, err := c.CompileOrder(order(t, query.Data{"property": "status", "mode": "values", "values": []string{"new", "a') OR (1"}}))
	require.NoError(t, err)
	assert.Equal(t, "FIELD(`status`, ?,?)", frag.SQL)
	assert.Equal(t, "FIELD(`status`, 'new','a'') OR (1')", inline(t, frag))
}

func TestCompileOrder_DeferredValidation(t *testing.T) {
	c := NewCompiler(MySQL{}, "")

	// Building succeeds, compiling fails.
	o := query.NewOrder()
	require.NoError(t, o.SetMode("values"))
	_, err := c.CompileOrder(o)
	assert.True(t, query.IsDomainError(err))

	require.NoError(t, o.SetProperty("test"))
	_, err = c.CompileOrder(o)
	assert.True(t, query.IsDomainError(err), "values mode without values")

	_, err = c.CompileOrder(query.NewOrder())
	assert.True(t, query.IsDomainError(err), "asc without property")

	_, err = c.CompileOrder(nil)
	assert.True(t, query.IsInvalidArgument(err))
}

func TestCompileOrder_ConditionAndInactive(t *testing.T) {
	c := NewCompiler(MySQL{}, "")

	frag, err := c.CompileOrder(order(t, query.Data{"condition": "`foo` ASC"}))
	require.NoError(t, err)
	assert.Equal(t, "`foo` ASC", frag.SQL)

	frag, err = c.CompileOrder(order(t, query.Data{"property": "foo", "active": false}))
	require.NoError(t, err)
	assert.True(t, frag.IsEmpty())
}

func TestCompileOrder_Table(t *testing.T) {
	c := NewCompiler(MySQL{}, "products")

	frag, err := c.CompileOrder(order(t, query.Data{"property": "title"}))
	require.NoError(t, err)
	assert.Equal(t, "`title` asc", frag.SQL, "compiler table does not qualify orders")

	frag, err = c.CompileOrder(order(t, query.Data{"property": "title", "table": "p"}))
	require.NoError(t, err)
	assert.Equal(t, "`p`.`title` asc", frag.SQL)
}

func TestCompileOrders(t *testing.T) {
	c := NewCompiler(SQLite{}, "")

	frag, err := c.CompileOrders([]*query.Order{
		order(t, query.Data{"property": "a", "mode": "desc"}),
		order(t, query.Data{"property": "b", "active": false}),
		order(t, query.Data{"mode": "rand"}),
	})
	require.NoError(t, err)
	assert.Equal(t, `"a" desc, RANDOM()`, frag.SQL)

	frag, err = c.CompileOrders(nil)
	require.NoError(t, err)
	assert.True(t, frag.IsEmpty())
}

func TestCompileFilter_Operators(t *testing.T) {
	c := NewCompiler(MySQL{}, "")

	tests := []struct {
		name   string
		data   query.Data
		sql    string
		inline string
	}{
		{
			name:   "equal",
			data:   query.Data{"property": "target", "value": "foo"},
			sql:    "(`target` = ?)",
			inline: "(`target` = 'foo')",
		},
		{
			name:   "comparison",
			data:   query.Data{"property": "target", "operator": ">=", "value": 10},
			sql:    "(`target` >= ?)",
			inline: "(`target` >= '10')",
		},
		{
			name:   "like lower-case",
			data:   query.Data{"property": "target", "operator": "not like", "value": "%foo%"},
			sql:    "(`target` NOT LIKE ?)",
			inline: "(`target` NOT LIKE '%foo%')",
		},
		{
			name:   "is null ignores value",
			data:   query.Data{"property": "target", "operator": "IS NULL", "value": "ignored"},
			sql:    "(`target` IS NULL)",
			inline: "(`target` IS NULL)",
		},
		{
			name:   "is not null",
			data:   query.Data{"property": "target", "operator": "is not null"},
			sql:    "(`target` IS NOT NULL)",
			inline: "(`target` IS NOT NULL)",
		},
		{
			name:   "in",
			data:   query.Data{"property": "target", "operator": "IN", "value": []int{1, 2, 3}},
			sql:    "(`target` IN (?,?,?))",
			inline: "(`target` IN ('1','2','3'))",
		},
		{
			name:   "not in scalar",
			data:   query.Data{"property": "target", "operator": "NOT IN", "value": "x"},
			sql:    "(`target` NOT IN (?))",
			inline: "(`target` NOT IN ('x'))",
		},
		{
			name:   "find in set",
			data:   query.Data{"property": "target", "operator": "FIND_IN_SET", "value": []string{"v1", "v2"}},
			sql:    "FIND_IN_SET(?, `target`)",
			inline: "FIND_IN_SET('v1,v2', `target`)",
		},
		{
			name:   "function",
			data:   query.Data{"property": "target", "func": "md5", "value": "abc"},
			sql:    "(MD5(`target`) = ?)",
			inline: "(MD5(`target`) = 'abc')",
		},
		{
			name:   "table",
			data:   query.Data{"property": "target", "table": "t", "value": true},
			sql:    "(`t`.`target` = ?)",
			inline: "(`t`.`target` = '1')",
		},
		{
			name:   "null value",
			data:   query.Data{"property": "target", "operator": "IS"},
			sql:    "(`target` IS ?)",
			inline: "(`target` IS NULL)",
		},
		{
			name:   "condition is verbatim",
			data:   query.Data{"property": "ignored", "condition": "`a` = 1 OR `b` = '?'"},
			sql:    "`a` = 1 OR `b` = '?'",
			inline: "`a` = 1 OR `b` = '?'",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frag, err := c.CompileFilter(filter(t, tc.data))
			require.NoError(t, err)
			assert.Equal(t, tc.sql, frag.SQL)
			assert.Equal(t, tc.inline, inline(t, frag))
		})
	}
}

func TestCompileFilter_NoInterpolation(t *testing.T) {
	c := NewCompiler(MySQL{}, "users")
	attack := "x' OR '1'='1"

	frag, err := c.CompileFilter(filter(t, query.Data{"property": "name", "value": attack}))
	require.NoError(t, err)

	assert.Equal(t, "(`users`.`name` = ?)", frag.SQL)
	assert.NotContains(t, frag.SQL, attack)
	assert.Equal(t, []any{attack}, frag.Args)
	assert.Equal(t, "(`users`.`name` = 'x'' OR ''1''=''1')", inline(t, frag))
}

func TestCompileFilter_QuotesIdentifiers(t *testing.T) {
	frag, err := NewCompiler(MySQL{}, "").CompileFilter(filter(t, query.Data{"property": "we`ird", "value": 1}))
	require.NoError(t, err)
	assert.Equal(t, "(`we``ird` = ?)", frag.SQL)

	frag, err = NewCompiler(SQLite{}, "").CompileFilter(filter(t, query.Data{"property": `we"ird`, "value": 1}))
	require.NoError(t, err)
	assert.Equal(t, `("we""ird" = ?)`, frag.SQL)
}

func TestCompileFilter_MultipleFields(t *testing.T) {
	c := NewCompiler(MySQL{}, "")

	f := filter(t, query.Data{"property": "name", "operator": "LIKE", "value": "%a%"})
	require.NoError(t, f.SetFields([]string{"name_en", "name_fr"}))

	frag, err := c.CompileFilter(f)
	require.NoError(t, err)
	assert.Equal(t, "((`name_en` LIKE ?) AND (`name_fr` LIKE ?))", frag.SQL)
	assert.Equal(t, []any{"%a%", "%a%"}, frag.Args)
}

func TestCompileFilter_Empty(t *testing.T) {
	c := NewCompiler(MySQL{}, "")

	frag, err := c.CompileFilter(query.NewFilter())
	require.NoError(t, err)
	assert.True(t, frag.IsEmpty(), "no property")

	frag, err = c.CompileFilter(filter(t, query.Data{"property": "a", "active": false}))
	require.NoError(t, err)
	assert.True(t, frag.IsEmpty(), "inactive")

	_, err = c.CompileFilter(nil)
	assert.True(t, query.IsInvalidArgument(err))
}

func TestCompileFilter_DomainErrors(t *testing.T) {
	c := NewCompiler(MySQL{}, "")

	_, err := c.CompileFilter(filter(t, query.Data{"property": "a", "operator": "IN", "value": []int{}}))
	assert.True(t, query.IsDomainError(err), "IN without values")

	_, err = c.CompileFilter(filter(t, query.Data{"property": "a", "operator": "=", "value": []int{1, 2}}))
	assert.True(t, query.IsDomainError(err), "list with a scalar operator")
}

func TestCompileFilter_Group(t *testing.T) {
	c := NewCompiler(MySQL{}, "")

	g := group(t, query.Data{},
		filter(t, query.Data{"property": "a", "value": 1}),
		filter(t, query.Data{"property": "b", "value": 2, "conjunction": "or"}),
		filter(t, query.Data{"property": "c", "value": 3, "conjunction": "xor"}),
	)

	frag, err := c.CompileFilter(g)
	require.NoError(t, err)
	assert.Equal(t, "((`a` = ?) OR (`b` = ?) XOR (`c` = ?))", frag.SQL)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, frag.Args)
}

func TestCompileFilter_GroupSkipsInactiveAndEmpty(t *testing.T) {
	c := NewCompiler(MySQL{}, "")

	// The first compiled child's conjunction is never emitted.
	g := group(t, query.Data{},
		filter(t, query.Data{"property": "a", "value": 1, "active": false}),
		group(t, query.Data{}),
		filter(t, query.Data{"property": "b", "value": 2, "conjunction": "OR"}),
	)

	frag, err := c.CompileFilter(g)
	require.NoError(t, err)
	assert.Equal(t, "((`b` = ?))", frag.SQL)
}

func TestCompileFilter_EmptyGroup(t *testing.T) {
	c := NewCompiler(MySQL{}, "")

	frag, err := c.CompileFilter(query.NewGroup())
	require.NoError(t, err)
	assert.Equal(t, "", frag.SQL)

	inactiveOnly := group(t, query.Data{}, filter(t, query.Data{"property": "a", "active": false}))
	frag, err = c.CompileFilter(inactiveOnly)
	require.NoError(t, err)
	assert.Equal(t, "", frag.SQL)

	frag, err = c.CompileFilters([]query.Node{
		filter(t, query.Data{"property": "a", "value": 1}),
		query.NewGroup(),
		filter(t, query.Data{"property": "b", "value": 2}),
	})
	require.NoError(t, err)
	assert.Equal(t, "(`a` = ?) AND (`b` = ?)", frag.SQL)
	assert.NotContains(t, frag.SQL, "()")
}

func TestCompileFilters_SQLiteConjunctions(t *testing.T) {
	c := NewCompiler(SQLite{}, "")

	frag, err := c.CompileFilters([]query.Node{
		filter(t, query.Data{"property": "a", "value": 1}),
		filter(t, query.Data{"property": "b", "value": 2, "conjunction": "||"}),
		filter(t, query.Data{"property": "c", "value": 3, "conjunction": "&&"}),
	})
	require.NoError(t, err)
	assert.Equal(t, `("a" = ?) OR ("b" = ?) AND ("c" = ?)`, frag.SQL)

	_, err = c.CompileFilters([]query.Node{
		filter(t, query.Data{"property": "a", "value": 1}),
		filter(t, query.Data{"property": "b", "value": 2, "conjunction": "XOR"}),
	})
	assert.True(t, query.IsDomainError(err))
}

func TestCompilePagination(t *testing.T) {
	p, err := query.NewPaginationFromData(query.Data{"page": 3, "num_per_page": 20})
	require.NoError(t, err)

	assert.Equal(t, "LIMIT 40, 20", NewCompiler(MySQL{}, "").CompilePagination(p).SQL)
	assert.Equal(t, "LIMIT 20 OFFSET 40", NewCompiler(SQLite{}, "").CompilePagination(p).SQL)

	assert.True(t, NewCompiler(MySQL{}, "").CompilePagination(query.NewPagination()).IsEmpty())
	assert.True(t, NewCompiler(MySQL{}, "").CompilePagination(nil).IsEmpty())

	first, err := query.NewPaginationFromData(query.Data{"num_per_page": 10})
	require.NoError(t, err)
	assert.Equal(t, "LIMIT 0, 10", NewCompiler(MySQL{}, "").CompilePagination(first).SQL)
}

func TestCompileCount(t *testing.T) {
	c := NewCompiler(MySQL{}, "products")

	assert.Equal(t, "SELECT COUNT(*) FROM `products`", c.CompileCount(Fragment{}).SQL)

	frag := c.CompileCount(Fragment{SQL: "(`a` = ?)", Args: []any{1}})
	assert.Equal(t, "SELECT COUNT(*) FROM `products` WHERE (`a` = ?)", frag.SQL)
	assert.Equal(t, []any{1}, frag.Args)
}

func TestCompileSelect_DefaultsAndTiebreak(t *testing.T) {
	c := NewCompiler(SQLite{}, "products")

	assert.Equal(t, `SELECT * FROM "products"`, c.CompileSelect(Select{}).SQL)
	assert.Equal(t, `SELECT * FROM "products" ORDER BY "id" ASC`, c.CompileSelect(Select{Key: "id"}).SQL)
	assert.Equal(t,
		`SELECT * FROM "products" ORDER BY "a" desc, "id" ASC`,
		c.CompileSelect(Select{OrderBy: Fragment{SQL: `"a" desc`}, Key: "id"}).SQL)
}

func TestDialectByName(t *testing.T) {
	d, err := DialectByName("MySQL")
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	d, err = DialectByName("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = DialectByName("oracle")
	assert.Error(t, err)
}

// renderGolden formats a fragment for golden comparison.
func renderGolden(t *testing.T, f Fragment) []byte {
	t.Helper()
	return []byte(fmt.Sprintf("sql: %s\nargs: %v\ninline: %s\n", f.SQL, f.Args, inline(t, f)))
}

func goldenTree(t *testing.T) []query.Node {
	t.Helper()
	return []query.Node{
		filter(t, query.Data{"property": "status", "value": "active"}),
		group(t, query.Data{"conjunction": "OR"},
			filter(t, query.Data{"property": "price", "operator": ">=", "value": 10}),
			filter(t, query.Data{"property": "tags", "operator": "FIND_IN_SET", "value": []string{"a", "b"}, "conjunction": "OR"}),
		),
		filter(t, query.Data{"property": "deleted_at", "operator": "IS NULL"}),
	}
}

func TestCompile_GoldenSQL(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	dialects := []Dialect{MySQL{}, SQLite{}}
	for _, d := range dialects {
		t.Run("filters_"+d.Name(), func(t *testing.T) {
			c := NewCompiler(d, "products")
			frag, err := c.CompileFilters(goldenTree(t))
			require.NoError(t, err)
			g.Assert(t, "filters_"+d.Name(), renderGolden(t, frag))
		})
	}

	t.Run("select_mysql", func(t *testing.T) {
		c := NewCompiler(MySQL{}, "products")

		where, err := c.CompileFilters([]query.Node{filter(t, query.Data{"property": "status", "value": "active"})})
		require.NoError(t, err)
		orderBy, err := c.CompileOrders([]*query.Order{
			order(t, query.Data{"property": "title", "mode": "desc"}),
			order(t, query.Data{"property": "rank", "mode": "values", "values": "1,2"}),
		})
		require.NoError(t, err)
		p, err := query.NewPaginationFromData(query.Data{"page": 3, "num_per_page": 20})
		require.NoError(t, err)

		frag := c.CompileSelect(Select{
			Columns: []string{"id", "title"},
			Where:   where,
			OrderBy: orderBy,
			Limit:   c.CompilePagination(p),
			Key:     "id",
		})
		g.Assert(t, "select_mysql", renderGolden(t, frag))
	})
}
