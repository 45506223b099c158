package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Basics(t *testing.T) {
	src := map[string]any{"id": "1", "title": "Hat"}
	r := NewRecord(src)
	src["title"] = "changed"

	v, ok := r.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Hat", v, "NewRecord copies its input")

	r.Set("price", 12.5)
	assert.Equal(t, "12.5", r.String("price"))
	assert.Equal(t, "", r.String("missing"))
	assert.Equal(t, []string{"id", "price", "title"}, r.Keys())
	assert.Equal(t, 3, r.Len())

	r.Delete("price")
	_, ok = r.Get("price")
	assert.False(t, ok)

	var zero Record
	zero.Set("a", 1)
	assert.Equal(t, 1, zero.Len())
}

func TestRecord_Clone(t *testing.T) {
	r := NewRecord(map[string]any{
		"id":   "1",
		"tags": []any{"a", "b"},
		"meta": map[string]any{"color": "red"},
	})

	clone, err := r.Clone()
	require.NoError(t, err)
	assert.Equal(t, r.Data(), clone.Data())

	clone.Data()["id"] = "x"
	clone.Set("id", "2")
	tags, _ := clone.Get("tags")
	tags.([]any)[0] = "z"
	meta, _ := clone.Get("meta")
	meta.(map[string]any)["color"] = "blue"

	id, _ := r.Get("id")
	origTags, _ := r.Get("tags")
	origMeta, _ := r.Get("meta")
	assert.Equal(t, "1", id)
	assert.Equal(t, []any{"a", "b"}, origTags)
	assert.Equal(t, map[string]any{"color": "red"}, origMeta)
}
