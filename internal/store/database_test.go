package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quarry/internal/model"
	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/querysql"
)

// seedProducts saves three products keyed p1, p2, p3 and returns a fresh
// source over them.
func seedProducts(t *testing.T, opts ...SourceOption) *DatabaseSource {
	t.Helper()
	s := createTestStore(t)
	keys := &sequentialKeys{}
	ds := createProductSource(t, s, WithKeyGenerator(keys))
	ctx := context.Background()

	items := []map[string]any{
		{
			"title_en": "Red hat", "title_fr": "Chapeau rouge",
			"tags":       []string{"hat", "red"},
			"first_name": "Ada", "last_name": "Lovelace",
			"price": 19.5, "stock": 3, "active": true,
			"settings": map[string]any{"color": "red"},
		},
		{
			"title_en": "Blue shirt",
			"tags":     []string{"shirt", "blue"},
			"price":    35, "stock": 0, "active": false,
		},
		{
			"title_en": "Green hat",
			"tags":     []string{"hat", "green"},
			"price":    12, "stock": 10, "active": true,
		},
	}
	for _, data := range items {
		_, err := ds.SaveItem(ctx, model.NewRecord(data))
		require.NoError(t, err)
	}

	fresh, err := NewDatabaseSource(s, ds.Model(), opts...)
	require.NoError(t, err)
	return fresh
}

func ids(t *testing.T, items []*model.Record) []string {
	t.Helper()
	out := []string{}
	for _, item := range items {
		out = append(out, item.String("id"))
	}
	return out
}

func loadIDs(t *testing.T, ds *DatabaseSource) []string {
	t.Helper()
	items, err := ds.LoadItems(context.Background())
	require.NoError(t, err)
	return ids(t, items)
}

func TestNewDatabaseSource_RequiresStoreAndModel(t *testing.T) {
	_, err := NewDatabaseSource(nil, productModel())
	assert.Error(t, err)

	_, err = NewDatabaseSource(createTestStore(t), nil)
	assert.Error(t, err)
}

func TestLoadItems_OrderedByKeyByDefault(t *testing.T) {
	ds := seedProducts(t)

	assert.Equal(t, []string{"p1", "p2", "p3"}, loadIDs(t, ds))
}

func TestLoadItems_MultipleProperty(t *testing.T) {
	ds := seedProducts(t)

	require.NoError(t, ds.Source().AddFilterValue("tags", "hat", nil))

	assert.Equal(t, []string{"p1", "p3"}, loadIDs(t, ds))
}

func TestLoadItems_TranslatedProperty(t *testing.T) {
	ds := seedProducts(t)

	require.NoError(t, ds.Source().AddFilterValue("title", "Red hat", nil))

	assert.Equal(t, []string{"p1"}, loadIDs(t, ds))
}

func TestLoadItems_FieldsProperty(t *testing.T) {
	ds := seedProducts(t)

	require.NoError(t, ds.Source().AddFilterValue("name", "%a%", query.Data{"operator": "LIKE"}))
	assert.Equal(t, []string{"p1"}, loadIDs(t, ds))

	ds.Source().Reset()
	require.NoError(t, ds.Source().AddFilterValue("name", "Ada", nil))
	assert.Equal(t, []string{}, loadIDs(t, ds), "every field must match")
}

func TestLoadItems_OperatorsAndOrder(t *testing.T) {
	ds := seedProducts(t)
	src := ds.Source()

	require.NoError(t, src.AddFilterValue("price", 15, query.Data{"operator": ">"}))
	require.NoError(t, src.AddOrderValue("price", query.ModeDesc, nil))

	assert.Equal(t, []string{"p2", "p1"}, loadIDs(t, ds))
}

func TestLoadItems_InOperator(t *testing.T) {
	ds := seedProducts(t)

	require.NoError(t, ds.Source().AddFilterValue("id", []string{"p3", "p1"}, query.Data{"operator": "IN"}))

	assert.Equal(t, []string{"p1", "p3"}, loadIDs(t, ds))
}

func TestLoadItems_Group(t *testing.T) {
	ds := seedProducts(t)
	src := ds.Source()

	require.NoError(t, src.AddFilterValue("active", true, nil))
	require.NoError(t, src.AddFilterGroup([]any{
		query.Data{"property": "stock", "value": 5, "operator": ">"},
		query.Data{"property": "price", "value": 15, "operator": ">", "conjunction": "OR"},
	}, nil))

	// active AND (stock > 5 OR price > 15)
	assert.Equal(t, []string{"p1", "p3"}, loadIDs(t, ds))
}

func TestLoadItems_ValuesOrder(t *testing.T) {
	ds := seedProducts(t)

	require.NoError(t, ds.Source().AddOrderValue("id", query.ModeValues, query.Data{"values": []string{"p3", "p1", "p2"}}))

	assert.Equal(t, []string{"p3", "p1", "p2"}, loadIDs(t, ds))
}

func TestLoadItems_RandomOrder(t *testing.T) {
	ds := seedProducts(t)

	require.NoError(t, ds.Source().AddOrder(query.Data{"mode": query.ModeRand}))

	assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, loadIDs(t, ds))
}

func TestLoadItems_Pagination(t *testing.T) {
	ds := seedProducts(t)
	src := ds.Source()

	require.NoError(t, src.SetNumPerPage(2))
	assert.Equal(t, []string{"p1", "p2"}, loadIDs(t, ds))

	require.NoError(t, src.SetPage(2))
	assert.Equal(t, []string{"p3"}, loadIDs(t, ds))

	require.NoError(t, src.SetPage(3))
	assert.Equal(t, []string{}, loadIDs(t, ds))
}

func TestLoadItems_MySQLDialect(t *testing.T) {
	ds := seedProducts(t, WithDialect(querysql.MySQL{}))
	src := ds.Source()

	require.NoError(t, src.AddFilterValue("tags", "hat", nil))
	require.NoError(t, src.AddOrder(query.Data{"mode": query.ModeRand}))
	require.NoError(t, src.SetNumPerPage(1))
	require.NoError(t, src.SetPage(2))

	q, err := ds.SelectSQL()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM `products` WHERE FIND_IN_SET(?, `products`.`tags`) ORDER BY RAND(), `id` ASC LIMIT 1, 1",
		q.SQL)

	items, err := ds.LoadItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, []string{"p1", "p3"}, items[0].String("id"))
}

func TestLoadItems_Properties(t *testing.T) {
	ds := seedProducts(t)

	require.NoError(t, ds.Source().SetProperties([]string{"id", "title", "price"}))

	items, err := ds.LoadItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"id", "price", "title_en"}, items[0].Keys())
}

func TestLoadItems_CompileErrorFailsClosed(t *testing.T) {
	ds := seedProducts(t)

	require.NoError(t, ds.Source().AddOrderValue("price", query.ModeValues, nil))

	items, err := ds.LoadItems(context.Background())
	assert.True(t, query.IsDomainError(err))
	assert.Nil(t, items)
}

func TestCountItems(t *testing.T) {
	ds := seedProducts(t)
	ctx := context.Background()

	n, err := ds.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, ds.Source().AddFilterValue("tags", "hat", nil))
	require.NoError(t, ds.Source().SetNumPerPage(1))

	n, err = ds.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "pagination is ignored")
}

func TestLoadItem_DecodesValues(t *testing.T) {
	ds := seedProducts(t)

	item, err := ds.LoadItem(context.Background(), "p1")
	require.NoError(t, err)

	data := item.Data()
	assert.Equal(t, "Red hat", data["title_en"])
	assert.Equal(t, "Chapeau rouge", data["title_fr"])
	assert.Equal(t, []any{"hat", "red"}, data["tags"])
	assert.Equal(t, 19.5, data["price"])
	assert.Equal(t, int64(3), data["stock"])
	assert.Equal(t, true, data["active"])
	assert.Equal(t, map[string]any{"color": "red"}, data["settings"])
}

func TestLoadItem_IgnoresFilters(t *testing.T) {
	ds := seedProducts(t)

	require.NoError(t, ds.Source().AddFilterValue("tags", "shirt", nil))

	item, err := ds.LoadItem(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", item.String("id"))
}

func TestLoadItem_NotFound(t *testing.T) {
	ds := seedProducts(t)

	item, err := ds.LoadItem(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestSaveItem_GeneratesUUIDv7(t *testing.T) {
	s := createTestStore(t)
	ds := createProductSource(t, s)

	item := model.NewRecord(map[string]any{"title_en": "Scarf"})
	id, err := ds.SaveItem(context.Background(), item)
	require.NoError(t, err)

	parsed, err := uuid.Parse(id.(string))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Equal(t, id, item.String("id"), "the key is set on the item")
}

func TestSaveItem_KeepsGivenKey(t *testing.T) {
	s := createTestStore(t)
	ds := createProductSource(t, s)
	ctx := context.Background()

	id, err := ds.SaveItem(ctx, model.NewRecord(map[string]any{"id": "scarf", "title_en": "Scarf"}))
	require.NoError(t, err)
	assert.Equal(t, "scarf", id)

	_, err = ds.SaveItem(ctx, model.NewRecord(map[string]any{"id": "scarf"}))
	assert.Error(t, err, "duplicate keys are rejected")
}

func TestSaveItem_IgnoresUnknownColumns(t *testing.T) {
	s := createTestStore(t)
	ds := createProductSource(t, s)
	ctx := context.Background()

	_, err := ds.SaveItem(ctx, model.NewRecord(map[string]any{"id": "x", "unknown": 1}))
	require.NoError(t, err)

	item, err := ds.LoadItem(ctx, "x")
	require.NoError(t, err)
	_, ok := item.Get("unknown")
	assert.False(t, ok)
}

func TestUpdateItem(t *testing.T) {
	ds := seedProducts(t)
	ctx := context.Background()

	item, err := ds.LoadItem(ctx, "p1")
	require.NoError(t, err)
	item.Set("price", 25)
	item.Set("stock", 0)

	require.NoError(t, ds.UpdateItem(ctx, item, "price"))

	reloaded, err := ds.LoadItem(ctx, "p1")
	require.NoError(t, err)
	price, _ := reloaded.Get("price")
	stock, _ := reloaded.Get("stock")
	assert.Equal(t, 25.0, price)
	assert.Equal(t, int64(3), stock, "only the named properties are written")

	require.NoError(t, ds.UpdateItem(ctx, item))
	reloaded, err = ds.LoadItem(ctx, "p1")
	require.NoError(t, err)
	stock, _ = reloaded.Get("stock")
	assert.Equal(t, int64(0), stock)
}

func TestUpdateItem_TranslatedProperty(t *testing.T) {
	ds := seedProducts(t)
	ctx := context.Background()

	item := model.NewRecord(map[string]any{"id": "p2", "title_en": "Navy shirt", "title_fr": "Chemise marine"})
	require.NoError(t, ds.UpdateItem(ctx, item, "title"))

	reloaded, err := ds.LoadItem(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "Navy shirt", reloaded.String("title_en"))
	assert.Equal(t, "Chemise marine", reloaded.String("title_fr"))
}

func TestUpdateItem_Errors(t *testing.T) {
	ds := seedProducts(t)
	ctx := context.Background()

	err := ds.UpdateItem(ctx, model.NewRecord(map[string]any{"id": "missing", "price": 1}))
	assert.True(t, errors.Is(err, ErrNotFound))

	err = ds.UpdateItem(ctx, model.NewRecord(map[string]any{"price": 1}))
	assert.Error(t, err)

	err = ds.UpdateItem(ctx, nil)
	assert.Error(t, err)
}

func TestDeleteItem(t *testing.T) {
	ds := seedProducts(t)
	ctx := context.Background()

	item := model.NewRecord(map[string]any{"id": "p2"})
	require.NoError(t, ds.DeleteItem(ctx, item))

	gone, err := ds.LoadItem(ctx, "p2")
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Equal(t, []string{"p1", "p3"}, loadIDs(t, ds))

	err = ds.DeleteItem(ctx, item)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFragmentAccessors(t *testing.T) {
	ds := seedProducts(t)
	src := ds.Source()

	require.NoError(t, src.AddFilterValue("tags", "hat", nil))
	require.NoError(t, src.AddOrderValue("price", query.ModeDesc, nil))
	require.NoError(t, src.SetNumPerPage(10))

	where, err := ds.FilterSQL()
	require.NoError(t, err)
	assert.Equal(t, `FIND_IN_SET(?, "products"."tags")`, where.SQL)
	assert.Equal(t, []any{"hat"}, where.Args)

	orderBy, err := ds.OrderSQL()
	require.NoError(t, err)
	assert.Equal(t, `"price" desc`, orderBy.SQL)

	assert.Equal(t, "LIMIT 10 OFFSET 0", ds.PaginationSQL().SQL)
}
