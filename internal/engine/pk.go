package engine

import "github.com/dbsmedya/gomask/internal/types"

// PrimaryKeyAliases are tried, in order, after the configured key.
var PrimaryKeyAliases = []string{"id", "ID", "Id", "pk", "primary_id", "user_id", "userId"}

// ResolvePrimaryKey finds the column identifying a row: the configured key
// first, then PrimaryKeyAliases. A column only counts when its value is
// non-empty. Zero is a valid key.
func ResolvePrimaryKey(row *types.Row, configured string) (string, any, bool) {
	if configured != "" {
		if v, ok := row.Get(configured); ok && !types.IsEmpty(v) {
			return configured, v, true
		}
	}
	for _, alias := range PrimaryKeyAliases {
		if alias == configured {
			continue
		}
		if v, ok := row.Get(alias); ok && !types.IsEmpty(v) {
			return alias, v, true
		}
	}
	return "", nil, false
}

// orderColumn picks the column iteration is ordered by: the configured key
// when the table has it, else the first alias it has.
func orderColumn(schema *Schema, configured string) string {
	if configured != "" && schema.Has(configured) {
		return configured
	}
	for _, alias := range PrimaryKeyAliases {
		if schema.Has(alias) {
			return alias
		}
	}
	return ""
}
