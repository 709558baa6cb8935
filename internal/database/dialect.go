package database

import (
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/sqlutil"
)

// Dialect captures the per-engine SQL differences the engine cares about.
type Dialect struct {
	Name        string // config driver name
	DriverName  string // database/sql driver name
	Placeholder squirrel.PlaceholderFormat
	// Savepoints is set when a failed statement aborts the surrounding
	// transaction, so each row must run inside its own savepoint.
	Savepoints bool
	quote      func(string) string
}

// MySQL returns the MySQL dialect.
func MySQL() Dialect {
	return Dialect{
		Name:        config.DriverMySQL,
		DriverName:  "mysql",
		Placeholder: squirrel.Question,
		quote:       sqlutil.QuoteIdentifier,
	}
}

// Postgres returns the PostgreSQL dialect, served by pgx's database/sql driver.
func Postgres() Dialect {
	return Dialect{
		Name:        config.DriverPostgres,
		DriverName:  "pgx",
		Placeholder: squirrel.Dollar,
		Savepoints:  true,
		quote:       sqlutil.QuoteIdentifierANSI,
	}
}

// DialectFor maps a configured driver to its dialect. Empty means mysql.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverMySQL, "":
		return MySQL(), nil
	case config.DriverPostgres:
		return Postgres(), nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// Quote quotes an identifier for this dialect.
func (d Dialect) Quote(name string) string {
	if d.quote == nil {
		return sqlutil.QuoteIdentifier(name)
	}
	return d.quote(name)
}

// Builder returns a squirrel statement builder using the dialect's placeholders.
func (d Dialect) Builder() squirrel.StatementBuilderType {
	ph := d.Placeholder
	if ph == nil {
		ph = squirrel.Question
	}
	return squirrel.StatementBuilder.PlaceholderFormat(ph)
}
