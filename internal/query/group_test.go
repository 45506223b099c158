package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGroup_Defaults(t *testing.T) {
	g := NewGroup()
	assert.Equal(t, "AND", g.Conjunction())
	assert.True(t, g.Active())
	assert.Equal(t, 0, g.Count())
	assert.Empty(t, g.Filters())
}

func TestGroup_AddFilter(t *testing.T) {
	g := NewGroup()
	assert.Equal(t, 0, g.Count())

	require.NoError(t, g.AddFilter("1 = 1"))
	assert.Equal(t, 1, g.Count())

	f := g.Filters()[0].(*Filter)
	assert.Equal(t, "1 = 1", f.Condition())
}

func TestGroup_SetData(t *testing.T) {
	g := NewGroup()
	err := g.SetData(Data{
		"conjunction": "or",
		"active":      false,
		"name":        "visibility",
		"filters": []any{
			map[string]any{"property": "trashed", "operator": "IS NULL"},
			map[string]any{"property": "author_id", "value": 1, "conjunction": "OR"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "OR", g.Conjunction())
	assert.False(t, g.Active())
	assert.Equal(t, "visibility", g.Name())
	require.Equal(t, 2, g.Count())
	assert.Equal(t, "IS NULL", g.Filters()[0].(*Filter).Operator())
	assert.Equal(t, "OR", g.Filters()[1].Conjunction())
}

func TestGroup_SetData_ConditionsAlias(t *testing.T) {
	g := NewGroup()
	require.NoError(t, g.SetData(Data{"conditions": map[string]any{"baz": "1 = 1"}}))

	child, ok := g.Collection().Get("baz")
	require.True(t, ok)
	assert.Equal(t, "1 = 1", child.(*Filter).Condition())
}

func TestGroup_NestedGroupFromData(t *testing.T) {
	g := NewGroup()
	require.NoError(t, g.AddFilter(Data{
		"conjunction": "OR",
		"filters": []any{
			Data{"property": "a", "value": 1},
			Data{"property": "b", "value": 2},
		},
	}))

	nested, ok := g.Filters()[0].(*Group)
	require.True(t, ok, "data with filters must build a group")
	assert.Equal(t, 2, nested.Count())
	assert.Equal(t, "OR", nested.Conjunction())
}

func TestGroup_DeprecatedOperand(t *testing.T) {
	got := captureDeprecations(t)

	g := NewGroup()
	require.NoError(t, g.SetData(Data{"operand": "XOR"}))
	assert.Equal(t, "XOR", g.Conjunction())
	require.Len(t, *got, 1)
	assert.Equal(t, "operand", (*got)[0].Key)
}

func TestGroup_DeepClone(t *testing.T) {
	g := NewGroup()
	require.NoError(t, g.AddFilters([]any{
		Data{"condition": `title LIKE "Hello %"`},
		Data{"property": "trashed", "operator": "IS NULL"},
		Data{"property": "author_id", "value": 1},
		Data{"filters": []any{
			Data{"property": "x", "value": 1},
		}},
	}))

	clone := g.Clone().(*Group)
	assert.NotSame(t, g, clone)
	assert.Equal(t, g.Count(), clone.Count())

	originals := g.Filters()
	for i, dupe := range clone.Filters() {
		assert.NotSame(t, originals[i], dupe, "child %d must be copied", i)
		assert.Equal(t, originals[i].Data()["conjunction"], dupe.Data()["conjunction"])
	}

	nestedOriginal := originals[3].(*Group)
	nestedClone := clone.Filters()[3].(*Group)
	assert.NotSame(t, nestedOriginal.Filters()[0], nestedClone.Filters()[0])

	// Mutating the clone leaves the original intact.
	require.NoError(t, clone.AddFilter("2 = 2"))
	require.NoError(t, nestedClone.Filters()[0].(*Filter).SetOperator("!="))
	assert.Equal(t, 4, g.Count())
	assert.Equal(t, "=", nestedOriginal.Filters()[0].(*Filter).Operator())
}

func TestGroup_SetFilters_Replaces(t *testing.T) {
	g := NewGroup()
	require.NoError(t, g.AddFilter("1 = 1"))
	require.NoError(t, g.SetFilters([]string{"a = 1", "b = 2"}))
	assert.Equal(t, 2, g.Count())

	err := g.SetFilters([]any{"c = 3", 42})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 2, g.Count(), "failed Set must leave the group unchanged")
}

func TestGroup_DataSharesNoChildren(t *testing.T) {
	g := NewGroup()
	require.NoError(t, g.AddFilters([]any{
		Data{"property": "a", "value": 1},
		Data{"filters": []any{Data{"property": "b", "value": 2}}},
	}))

	data := g.Data()
	children, ok := data["filters"].([]any)
	require.True(t, ok)
	require.Len(t, children, 2)
	assert.IsType(t, Data{}, children[0])
	assert.IsType(t, Data{}, children[1])

	copied := NewGroup()
	require.NoError(t, copied.SetData(data))
	assert.Equal(t, data, copied.Data())

	leaf, ok := copied.Filters()[0].(*Filter)
	require.True(t, ok)
	assert.NotSame(t, g.Filters()[0], leaf)
	require.NoError(t, leaf.SetProperty("changed"))
	assert.Equal(t, "a", g.Filters()[0].(*Filter).Property())
}
