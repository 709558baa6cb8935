package engine

import "github.com/dbsmedya/gomask/internal/types"

// ShouldGenerate reports whether column gets a new value in row. With
// preserveNull set, NULL and empty values are left as they are.
func ShouldGenerate(row *types.Row, column string, preserveNull bool) bool {
	if !preserveNull {
		return true
	}
	v, ok := row.Get(column)
	if !ok {
		return true
	}
	return !types.IsEmpty(v)
}
