package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/types"
)

// Preflight check names.
const (
	CheckTableExists   = "TABLE_EXISTENCE_CHECK"
	CheckTargetColumns = "TARGET_COLUMN_CHECK"
	CheckFilterColumns = "FILTER_COLUMN_CHECK"
	CheckGenderColumn  = "GENDER_COLUMN_CHECK"
)

// PreflightError reports a schema problem found before any row is read.
type PreflightError struct {
	Check   string
	Message string
	Table   string
	Columns []string
}

func (e *PreflightError) Error() string {
	if len(e.Columns) > 0 {
		return fmt.Sprintf("%s: %s (table: %s, columns: %v)", e.Check, e.Message, e.Table, e.Columns)
	}
	return fmt.Sprintf("%s: %s (table: %s)", e.Check, e.Message, e.Table)
}

// SchemaReader loads a table's columns. *database.Inspector implements it.
type SchemaReader interface {
	Columns(ctx context.Context, table string) ([]types.Column, error)
}

// Schema is the column layout of the job's table.
type Schema struct {
	Table   string
	columns map[string]types.Column
	order   []string
}

// NewSchema indexes columns by name.
func NewSchema(table string, columns []types.Column) *Schema {
	s := &Schema{Table: table, columns: make(map[string]types.Column, len(columns))}
	for _, c := range columns {
		s.columns[c.Name] = c
		s.order = append(s.order, c.Name)
	}
	return s
}

// Has reports whether the table has the column.
func (s *Schema) Has(name string) bool {
	_, ok := s.columns[name]
	return ok
}

// Column returns the column metadata.
func (s *Schema) Column(name string) (types.Column, bool) {
	c, ok := s.columns[name]
	return c, ok
}

// Names returns the column names in ordinal order.
func (s *Schema) Names() []string {
	return s.order
}

// Preflight loads the table's columns and checks that every column the job
// references exists. A table without a key column passes; its rows are
// skipped one by one when no key value resolves.
func Preflight(ctx context.Context, reader SchemaReader, job *config.JobConfig) (*Schema, error) {
	columns, err := reader.Columns(ctx, job.Table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, &PreflightError{
			Check:   CheckTableExists,
			Message: "table not found",
			Table:   job.Table,
		}
	}
	schema := NewSchema(job.Table, columns)

	targets := job.TargetColumns()
	if g := job.Generator; g.Kind == config.KindName && !g.Name.WritesNames() {
		// Email-only jobs still read the name columns.
		targets = append(slices.Clone(job.Columns), targets...)
	}
	if missing := schema.missing(targets); len(missing) > 0 {
		return nil, &PreflightError{
			Check:   CheckTargetColumns,
			Message: "target columns not found",
			Table:   job.Table,
			Columns: missing,
		}
	}

	filterCols := make([]string, 0, len(job.Filter))
	for _, p := range job.Filter {
		filterCols = append(filterCols, p.Column)
	}
	if missing := schema.missing(filterCols); len(missing) > 0 {
		return nil, &PreflightError{
			Check:   CheckFilterColumns,
			Message: "filter columns not found",
			Table:   job.Table,
			Columns: missing,
		}
	}

	if name := job.Generator.Name; job.Generator.Kind == config.KindName && name != nil && name.GenderColumn != "" {
		if !schema.Has(name.GenderColumn) {
			return nil, &PreflightError{
				Check:   CheckGenderColumn,
				Message: "gender column not found",
				Table:   job.Table,
				Columns: []string{name.GenderColumn},
			}
		}
	}

	return schema, nil
}

func (s *Schema) missing(names []string) []string {
	var out []string
	for _, n := range names {
		if !s.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
