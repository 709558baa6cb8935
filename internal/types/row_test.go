package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRow_KeepsColumnOrder(t *testing.T) {
	r := RowFromColumns([]string{"id", "name", "email"}, []any{int64(1), []byte("Ann"), nil})

	assert.Equal(t, []string{"id", "name", "email"}, r.Columns())
	assert.Equal(t, 3, r.Len())

	name, ok := r.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Ann", name, "[]byte should be normalised to string")

	email, ok := r.Get("email")
	assert.True(t, ok)
	assert.Nil(t, email)

	r.Set("name", "Bob")
	assert.Equal(t, []string{"id", "name", "email"}, r.Columns(), "overwrite must not move the column")
}

func TestRow_Clone(t *testing.T) {
	r := RowFromColumns([]string{"id", "name"}, []any{int64(7), "Ann"})
	c := r.Clone()
	c.Set("name", "Zed")

	v, _ := r.Get("name")
	assert.Equal(t, "Ann", v)
	v, _ = c.Get("name")
	assert.Equal(t, "Zed", v)
	assert.Equal(t, map[string]any{"id": int64(7), "name": "Zed"}, c.Map())
}

func TestRow_MissingColumns(t *testing.T) {
	r := RowFromColumns([]string{"id", "name"}, []any{int64(1)})
	v, ok := r.Get("name")
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.False(t, r.Has("phone"))
}

func TestChange_String(t *testing.T) {
	c := Change{Column: "name", Old: nil, New: "Ann"}
	assert.Equal(t, "name: NULL -> Ann", c.String())
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty([]byte{}))
	assert.False(t, IsEmpty(" "))
	assert.False(t, IsEmpty(0))
	assert.False(t, IsEmpty("x"))
}

func TestToString(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{name: "nil", input: nil, expected: "NULL"},
		{name: "string", input: "abc", expected: "abc"},
		{name: "bytes", input: []byte("abc"), expected: "abc"},
		{name: "int", input: int64(42), expected: "42"},
		{name: "float", input: 1.25, expected: "1.25"},
		{name: "time", input: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), expected: "2024-01-02 03:04:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToString(tt.input))
		})
	}
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int64
	}{
		{name: "int64", input: int64(42), expected: 42},
		{name: "int", input: 100, expected: 100},
		{name: "uint32", input: uint32(7), expected: 7},
		{name: "float64 truncates", input: 42.9, expected: 42},
		{name: "string", input: "15", expected: 15},
		{name: "bytes", input: []byte("16"), expected: 16},
		{name: "garbage string", input: "x", expected: 0},
		{name: "unsupported", input: struct{}{}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToInt64(tt.input))
		})
	}
}

func TestRow_MarshalKeepsOrder(t *testing.T) {
	r := RowFromColumns([]string{"zeta", "alpha", "mid"}, []any{int64(1), "a", nil})

	js, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"a","mid":null}`, string(js))

	out, err := yaml.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, "zeta: 1\nalpha: a\nmid: null\n", string(out))
}

func TestParseDate(t *testing.T) {
	for in, want := range map[string]time.Time{
		"2024-02-29":          time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		" 2024-02-29 ":        time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		"2024-02-29 13:45:07": time.Date(2024, 2, 29, 13, 45, 7, 0, time.UTC),
		"2024-02-29T13:45:07": time.Date(2024, 2, 29, 13, 45, 7, 0, time.UTC),
	} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%q: got %s", in, got)
	}

	for _, in := range []string{"", "2023-02-29", "29/02/2024", "yesterday"} {
		_, err := ParseDate(in)
		assert.ErrorContains(t, err, "invalid date", in)
	}
}

func TestColumn_IsInteger(t *testing.T) {
	for _, typ := range []string{"int", "INTEGER", "tinyint", "bigint", "smallint", "int4", "serial"} {
		assert.True(t, Column{Type: typ}.IsInteger(), typ)
	}
	for _, typ := range []string{"", "varchar", "char", "point", "interval", "numeric", "enum"} {
		assert.False(t, Column{Type: typ}.IsInteger(), typ)
	}
}
