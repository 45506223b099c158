package value

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "foo", String("foo")},
		{"bytes", []byte("foo"), String("foo")},
		{"bool", true, Bool(true)},
		{"int", 42, Int(42)},
		{"int32", int32(-7), Int(-7)},
		{"uint16", uint16(7), Int(7)},
		{"float", 1.5, Float(1.5)},
		{"json integer", json.Number("12"), Int(12)},
		{"json float", json.Number("1.25"), Float(1.25)},
		{"time", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), String("2024-03-01 10:30:00")},
		{"value passthrough", String("x"), String("x")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := From(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFrom_Lists(t *testing.T) {
	got, err := From([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, List{Int(1), Int(2), Int(3)}, got)

	got, err = From([]any{"a", 2, nil})
	require.NoError(t, err)
	assert.Equal(t, List{String("a"), Int(2), Null{}}, got)

	got, err = From([2]string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, List{String("x"), String("y")}, got)
}

func TestFrom_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"map", map[string]any{"a": 1}},
		{"struct", struct{ A int }{A: 1}},
		{"nested list", []any{[]int{1}}},
		{"nested value list", List{List{Int(1)}}},
		{"overflow", uint64(1 << 63)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := From(tc.in)
			assert.Error(t, err)
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "", Text(Null{}))
	assert.Equal(t, "foo", Text(String("foo")))
	assert.Equal(t, "42", Text(Int(42)))
	assert.Equal(t, "0.5", Text(Float(0.5)))
	assert.Equal(t, "1", Text(Bool(true)))
	assert.Equal(t, "0", Text(Bool(false)))
	assert.Equal(t, "a,b,3", Text(List{String("a"), String("b"), Int(3)}))
}

func TestElements(t *testing.T) {
	assert.Nil(t, Elements(Null{}))
	assert.Equal(t, []Value{String("a")}, Elements(String("a")))
	assert.Equal(t, []Value{Int(1), Int(2)}, Elements(List{Int(1), Int(2)}))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric(Int(1)))
	assert.True(t, IsNumeric(Float(1.5)))
	assert.True(t, IsNumeric(String(" 12 ")))
	assert.False(t, IsNumeric(String("1; DROP")))
	assert.False(t, IsNumeric(Bool(true)))
	assert.False(t, IsNumeric(Null{}))
}

func TestParam(t *testing.T) {
	p, err := Param(String("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", p)

	p, err = Param(Int(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), p)

	p, err = Param(Null{})
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = Param(List{Int(1)})
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	assert.Equal(t, List{String("foo"), String("bar"), String("val")}, Split("foo, bar, val"))
	assert.Equal(t, List{String("1"), String("2"), String("3")}, Split("1,2,3"))
	assert.Nil(t, Split(" , "))
}

func TestDecode(t *testing.T) {
	v, err := Decode([]byte(`[1, "two", 3.5, true, null]`))
	require.NoError(t, err)
	assert.Equal(t, List{Int(1), String("two"), Float(3.5), Bool(true), Null{}}, v)

	v, err = Decode([]byte(`"x"`))
	require.NoError(t, err)
	assert.Equal(t, String("x"), v)

	_, err = Decode([]byte(`{"a": 1}`))
	assert.Error(t, err)

	_, err = Decode([]byte(``))
	assert.Error(t, err)
}

func TestListJSON(t *testing.T) {
	data, err := json.Marshal(List{Int(1), String("a"), Null{}})
	require.NoError(t, err)
	assert.JSONEq(t, `[1, "a", null]`, string(data))

	var l List
	require.NoError(t, json.Unmarshal([]byte(`[1, 2]`), &l))
	assert.Equal(t, List{Int(1), Int(2)}, l)
}

func TestNative(t *testing.T) {
	assert.Equal(t, []any{int64(1), "a", nil}, Native(List{Int(1), String("a"), Null{}}))
	assert.Equal(t, true, Native(Bool(true)))
}
