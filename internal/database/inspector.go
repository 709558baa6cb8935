package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/types"
)

// Inspector reads table metadata from information_schema.
type Inspector struct {
	q       Querier
	dialect Dialect
	schema  string
}

// NewInspector creates an inspector for the given schema.
func NewInspector(q Querier, dialect Dialect, schema string) *Inspector {
	return &Inspector{q: q, dialect: dialect, schema: schema}
}

// Columns returns the table's columns in ordinal order. An empty result
// means the table does not exist.
func (i *Inspector) Columns(ctx context.Context, table string) ([]types.Column, error) {
	query, args, err := i.dialect.Builder().
		Select("column_name", "data_type", "is_nullable").
		From("information_schema.columns").
		Where("table_schema = ? AND table_name = ?", i.schema, table).
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := i.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []types.Column
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, err
		}
		cols = append(cols, types.Column{
			Name:     name,
			Type:     strings.ToLower(dataType),
			Nullable: strings.EqualFold(nullable, "YES"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

// IsForeignKey reports whether the column takes part in a foreign key
// constraint on the table.
func (i *Inspector) IsForeignKey(ctx context.Context, table, column string) (bool, error) {
	var query string
	if i.dialect.Name == config.DriverPostgres {
		query = `
			SELECT COUNT(*)
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name
			 AND tc.table_schema = kcu.table_schema
			WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
			AND kcu.column_name = $3`
	} else {
		query = `
			SELECT COUNT(*)
			FROM information_schema.KEY_COLUMN_USAGE
			WHERE TABLE_SCHEMA = ?
			AND TABLE_NAME = ?
			AND COLUMN_NAME = ?
			AND REFERENCED_TABLE_NAME IS NOT NULL`
	}

	var count int
	if err := i.q.QueryRowContext(ctx, query, i.schema, table, column).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check foreign key %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}
