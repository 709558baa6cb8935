package engine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/gomask/internal/database"
	"github.com/dbsmedya/gomask/internal/types"
)

func TestExecutor_BuildUpdate(t *testing.T) {
	changes := []types.Change{
		{Column: "first_name", Old: "Jane", New: "Amina"},
		{Column: "email", Old: "jane@corp.com", New: "amina.482@email.com"},
	}

	query, args, err := NewExecutor(database.MySQL(), "users").BuildUpdate("id", int64(5), changes)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `first_name` = ?, `email` = ? WHERE `id` = ?", query)
	assert.Equal(t, []any{"Amina", "amina.482@email.com", int64(5)}, args)

	query, args, err = NewExecutor(database.Postgres(), "users").BuildUpdate("id", int64(5), changes[:1])
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "first_name" = $1 WHERE "id" = $2`, query)
	assert.Equal(t, []any{"Amina", int64(5)}, args)

	_, _, err = NewExecutor(database.MySQL(), "users").BuildUpdate("id", 1, nil)
	assert.Error(t, err)
}

func TestExecutor_Apply_MySQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `users` SET `phone` = ? WHERE `id` = ?")).
		WithArgs("+2567123", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := NewExecutor(database.MySQL(), "users").
		Apply(context.Background(), db, true, "UPDATE `users` SET `phone` = ? WHERE `id` = ?", []any{"+2567123", int64(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_Apply_PostgresSavepoint(t *testing.T) {
	const update = `UPDATE "users" SET "phone" = $1 WHERE "id" = $2`

	t.Run("success releases savepoint", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("^SAVEPOINT gomask_row$").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(update)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("^RELEASE SAVEPOINT gomask_row$").WillReturnResult(sqlmock.NewResult(0, 0))

		_, err = NewExecutor(database.Postgres(), "users").Apply(context.Background(), db, true, update, []any{"x", 1})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure rolls back to savepoint", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rowErr := errors.New("value too long for type character varying(5)")
		mock.ExpectExec("^SAVEPOINT gomask_row$").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(update)).WillReturnError(rowErr)
		mock.ExpectExec("^ROLLBACK TO SAVEPOINT gomask_row$").WillReturnResult(sqlmock.NewResult(0, 0))

		_, err = NewExecutor(database.Postgres(), "users").Apply(context.Background(), db, true, update, []any{"x", 1})
		assert.ErrorIs(t, err, rowErr)
		assert.False(t, IsFatal(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("outside a transaction no savepoint", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta(update)).WillReturnResult(sqlmock.NewResult(0, 1))

		_, err = NewExecutor(database.Postgres(), "users").Apply(context.Background(), db, false, update, []any{"x", 1})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsFatal(t *testing.T) {
	fatal := []error{
		driver.ErrBadConn,
		sql.ErrConnDone,
		sql.ErrTxDone,
		mysql.ErrInvalidConn,
		context.Canceled,
		fmt.Errorf("wrapped: %w", context.DeadlineExceeded),
	}
	for _, err := range fatal {
		assert.True(t, IsFatal(err), err.Error())
	}

	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(errors.New("Duplicate entry 'x' for key 'phone'")))
	assert.False(t, IsFatal(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
}
