package engine

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/dbsmedya/gomask/internal/database"
	"github.com/dbsmedya/gomask/internal/types"
)

// RowIterator pages through the rows of one table with LIMIT/OFFSET.
//
// The offset always advances by the batch size, so rows whose filter result
// changes while the job runs (or rows inserted or deleted by concurrent
// writers) may be skipped or visited twice. A job that rewrites a column it
// also filters on should order by a stable key and expect that.
type RowIterator struct {
	q         database.Querier
	dialect   database.Dialect
	table     string
	orderBy   string
	where     squirrel.Sqlizer
	batchSize int

	offset  uint64
	total   int64
	counted bool
	fetches int
	done    bool
}

// NewRowIterator creates an iterator. orderBy may be empty, where may be nil.
func NewRowIterator(q database.Querier, dialect database.Dialect, table, orderBy string, where squirrel.Sqlizer, batchSize int) (*RowIterator, error) {
	if q == nil {
		return nil, fmt.Errorf("querier is nil")
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	return &RowIterator{
		q:         q,
		dialect:   dialect,
		table:     table,
		orderBy:   orderBy,
		where:     where,
		batchSize: batchSize,
	}, nil
}

// Count measures the number of matching rows. Once counted, iteration stops
// as soon as the offset reaches that number.
func (it *RowIterator) Count(ctx context.Context) (int64, error) {
	sb := it.dialect.Builder().
		Select("COUNT(*)").
		From(it.dialect.Quote(it.table))
	if it.where != nil {
		sb = sb.Where(it.where)
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := it.q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", it.table, err)
	}
	it.total = total
	it.counted = true
	return total, nil
}

// Next returns the next batch, or nil when the iterator is exhausted.
func (it *RowIterator) Next(ctx context.Context) ([]*types.Row, error) {
	if it.done {
		return nil, nil
	}
	if it.counted && int64(it.offset) >= it.total {
		it.done = true
		return nil, nil
	}

	query, args, err := it.selectQuery()
	if err != nil {
		return nil, err
	}

	rows, err := it.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rows of %s at offset %d: %w", it.table, it.offset, err)
	}
	defer rows.Close()

	batch, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", it.table, err)
	}

	it.fetches++
	it.offset += uint64(it.batchSize)
	if len(batch) < it.batchSize {
		it.done = true
	}
	if len(batch) == 0 {
		return nil, nil
	}
	return batch, nil
}

// Fetches is the number of SELECT statements issued so far.
func (it *RowIterator) Fetches() int {
	return it.fetches
}

func (it *RowIterator) selectQuery() (string, []any, error) {
	sb := it.dialect.Builder().
		Select("*").
		From(it.dialect.Quote(it.table))
	if it.where != nil {
		sb = sb.Where(it.where)
	}
	if it.orderBy != "" {
		sb = sb.OrderBy(it.dialect.Quote(it.orderBy))
	}
	query, args, err := sb.
		Limit(uint64(it.batchSize)).
		Offset(it.offset).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build select query: %w", err)
	}
	return query, args, nil
}

type rowScanner interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRows(rows rowScanner) ([]*types.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var batch []*types.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		batch = append(batch, types.RowFromColumns(columns, values))
	}
	return batch, rows.Err()
}
