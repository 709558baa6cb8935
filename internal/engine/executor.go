package engine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"

	"github.com/dbsmedya/gomask/internal/database"
	"github.com/dbsmedya/gomask/internal/types"
)

const rowSavepoint = "gomask_row"

// Executor writes one row's changes with a single parameterised UPDATE.
type Executor struct {
	dialect database.Dialect
	table   string
}

// NewExecutor creates an executor for table.
func NewExecutor(dialect database.Dialect, table string) *Executor {
	return &Executor{dialect: dialect, table: table}
}

// BuildUpdate renders the UPDATE for one row. Columns are set in change order.
func (e *Executor) BuildUpdate(pkColumn string, pkValue any, changes []types.Change) (string, []any, error) {
	if len(changes) == 0 {
		return "", nil, fmt.Errorf("no changes for %s=%v", pkColumn, pkValue)
	}
	ub := e.dialect.Builder().Update(e.dialect.Quote(e.table))
	for _, c := range changes {
		ub = ub.Set(e.dialect.Quote(c.Column), c.New)
	}
	query, args, err := ub.
		Where(squirrel.Eq{e.dialect.Quote(pkColumn): pkValue}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build update: %w", err)
	}
	return query, args, nil
}

// Apply executes the UPDATE on q. On dialects that abort a transaction after
// any failed statement, the row runs inside a savepoint so one bad row does
// not poison the rest of the batch.
func (e *Executor) Apply(ctx context.Context, q database.Querier, inTx bool, query string, args []any) (int64, error) {
	useSavepoint := inTx && e.dialect.Savepoints
	if useSavepoint {
		if _, err := q.ExecContext(ctx, "SAVEPOINT "+rowSavepoint); err != nil {
			return 0, fmt.Errorf("failed to create savepoint: %w", err)
		}
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		if useSavepoint && !IsFatal(err) {
			if _, rbErr := q.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+rowSavepoint); rbErr != nil {
				return 0, fmt.Errorf("failed to roll back savepoint after %v: %w", err, rbErr)
			}
		}
		return 0, err
	}

	if useSavepoint {
		if _, err := q.ExecContext(ctx, "RELEASE SAVEPOINT "+rowSavepoint); err != nil {
			return 0, fmt.Errorf("failed to release savepoint: %w", err)
		}
	}

	// Some drivers cannot report affected rows; the write still happened.
	affected, _ := res.RowsAffected()
	return affected, nil
}

// IsFatal reports whether err means the connection or transaction is gone,
// as opposed to a problem with one row.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, sql.ErrTxDone),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}
