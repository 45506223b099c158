package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ProductDescriptor is a shop/product descriptor covering every storage
// shape: translated, multiple-valued, numeric and boolean properties.
const ProductDescriptor = `label: Product
table: products
properties:
  title:
    type: string
    l10n: true
  tags:
    type: string
    multiple: true
  price:
    type: number
  stock:
    type: integer
  active:
    type: boolean
`

// WriteDescriptors writes files (relative path to content) under a fresh
// temporary directory and returns it.
func WriteDescriptors(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return dir
}

// ProductModels writes the shop/product descriptor and returns the search
// path holding it.
func ProductModels(t testing.TB) string {
	t.Helper()
	return WriteDescriptors(t, map[string]string{"shop/product.yaml": ProductDescriptor})
}
