package engine

import (
	"context"
	"errors"

	"github.com/dbsmedya/gomask/internal/logger"
)

// ErrNoTargetColumns is returned when every requested column was excluded.
var ErrNoTargetColumns = errors.New("no target columns left to generate")

// ForeignKeyChecker looks up whether a column references another table.
type ForeignKeyChecker interface {
	IsForeignKey(ctx context.Context, table, column string) (bool, error)
}

// FilterForeignKeys drops foreign key columns from columns. A column whose
// lookup fails is treated as a foreign key.
func FilterForeignKeys(ctx context.Context, checker ForeignKeyChecker, table string, columns []string, log *logger.Logger) (kept, excluded []string, err error) {
	if log == nil {
		log = logger.NewNop()
	}

	for _, col := range columns {
		isFK, lookupErr := checker.IsForeignKey(ctx, table, col)
		if lookupErr != nil {
			log.Warnw("Foreign key lookup failed, excluding column",
				"column", col,
				"error", lookupErr)
			isFK = true
		}
		if isFK {
			excluded = append(excluded, col)
			continue
		}
		kept = append(kept, col)
	}

	if len(excluded) > 0 {
		log.Infow("Excluded foreign key columns", "columns", excluded)
	}
	if len(kept) == 0 {
		return nil, excluded, ErrNoTargetColumns
	}
	return kept, excluded, nil
}
