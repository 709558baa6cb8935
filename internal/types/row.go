// Package types contains shared types used across multiple packages to avoid import cycles.
package types

import (
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// Row is one fetched record. Column order follows the SELECT result.
type Row struct {
	values *orderedmap.OrderedMap[string, any]
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{values: orderedmap.NewOrderedMap[string, any]()}
}

// RowFromColumns builds a row from parallel column and value slices,
// normalising driver values with Normalize.
func RowFromColumns(columns []string, values []any) *Row {
	r := NewRow()
	for i, col := range columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		r.Set(col, Normalize(v))
	}
	return r
}

// Set stores a value, keeping the column's original position if it already exists.
func (r *Row) Set(column string, value any) {
	r.values.Set(column, value)
}

// Get returns the value of a column.
func (r *Row) Get(column string) (any, bool) {
	return r.values.Get(column)
}

// Has reports whether the row carries the column.
func (r *Row) Has(column string) bool {
	_, ok := r.values.Get(column)
	return ok
}

// Columns returns the column names in order.
func (r *Row) Columns() []string {
	return r.values.Keys()
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return r.values.Len()
}

// Clone returns an independent copy of the row.
func (r *Row) Clone() *Row {
	c := NewRow()
	for el := r.values.Front(); el != nil; el = el.Next() {
		c.Set(el.Key, el.Value)
	}
	return c
}

// Map returns the row as a plain map, for serialisation.
func (r *Row) Map() map[string]any {
	m := make(map[string]any, r.values.Len())
	for el := r.values.Front(); el != nil; el = el.Next() {
		m[el.Key] = el.Value
	}
	return m
}

// Change records one column rewrite.
type Change struct {
	Column string `json:"column" yaml:"column"`
	Old    any    `json:"old" yaml:"old"`
	New    any    `json:"new" yaml:"new"`
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %s -> %s", c.Column, ToString(c.Old), ToString(c.New))
}

// Column describes one table column as reported by the catalog.
type Column struct {
	Name       string
	Type       string // data type as reported by information_schema, lowercased
	Nullable   bool
	ForeignKey bool
}

var integerTypes = map[string]bool{
	"tinyint": true, "smallint": true, "mediumint": true, "int": true, "integer": true, "bigint": true,
	"int2": true, "int4": true, "int8": true, "smallserial": true, "serial": true, "bigserial": true,
}

// IsInteger reports whether the column holds whole numbers.
func (c Column) IsInteger() bool {
	return integerTypes[strings.ToLower(strings.TrimSpace(c.Type))]
}
