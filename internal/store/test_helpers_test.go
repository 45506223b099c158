package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/roach88/quarry/internal/metadata"
	"github.com/roach88/quarry/internal/model"
	"github.com/roach88/quarry/internal/translation"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// productModel returns a model covering every storage shape: translated,
// multiple-valued, split over several fields, numeric, boolean and object.
func productModel() *model.Model {
	return model.New(&metadata.Metadata{
		Ident: "shop/product",
		Table: "products",
		Key:   "id",
		Properties: map[string]metadata.Property{
			"id":       {Type: metadata.TypeID},
			"title":    {Type: metadata.TypeString, L10n: true},
			"tags":     {Type: metadata.TypeString, Multiple: true},
			"name":     {Type: metadata.TypeString, Fields: []string{"first_name", "last_name"}},
			"price":    {Type: metadata.TypeNumber},
			"stock":    {Type: metadata.TypeInteger},
			"active":   {Type: metadata.TypeBoolean},
			"settings": {Type: metadata.TypeObject},
		},
	}, translation.MustNew("en", "en", "fr"))
}

// createProductSource creates the products table and a source over it.
func createProductSource(t *testing.T, s *Store, opts ...SourceOption) *DatabaseSource {
	t.Helper()
	m := productModel()
	if err := s.CreateTable(context.Background(), m); err != nil {
		t.Fatalf("CreateTable() failed: %v", err)
	}
	ds, err := NewDatabaseSource(s, m, opts...)
	if err != nil {
		t.Fatalf("NewDatabaseSource() failed: %v", err)
	}
	return ds
}

// sequentialKeys returns "p1", "p2", ... in order.
type sequentialKeys struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialKeys) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("p%d", g.n)
}
