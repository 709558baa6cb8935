package engine

import (
	"fmt"
	"time"

	"github.com/dbsmedya/gomask/internal/geobounds"
	"github.com/dbsmedya/gomask/internal/types"
)

// JobResult summarises one Execute call.
type JobResult struct {
	RunID           string                 `json:"run_id" yaml:"run_id"`
	JobName         string                 `json:"job" yaml:"job"`
	Table           string                 `json:"table" yaml:"table"`
	Kind            string                 `json:"kind" yaml:"kind"`
	DryRun          bool                   `json:"dry_run" yaml:"dry_run"`
	TotalRows       int64                  `json:"total_rows" yaml:"total_rows"`
	UpdatedRows     int64                  `json:"updated_rows" yaml:"updated_rows"`
	SkippedRows     int64                  `json:"skipped_rows" yaml:"skipped_rows"`
	Batches         int                    `json:"batches" yaml:"batches"`
	Columns         []string               `json:"columns" yaml:"columns"`
	ExcludedColumns []string               `json:"excluded_columns,omitempty" yaml:"excluded_columns,omitempty"`
	Bounds          *geobounds.BoundingBox `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Errors          []RowError             `json:"errors,omitempty" yaml:"errors,omitempty"`
	StartedAt       time.Time              `json:"started_at" yaml:"started_at"`
	CompletedAt     time.Time              `json:"completed_at" yaml:"completed_at"`
	Duration        time.Duration          `json:"duration" yaml:"duration"`
}

// RowError is a failure confined to one row.
type RowError struct {
	Key     string `json:"key" yaml:"key"`
	Message string `json:"message" yaml:"message"`
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %s: %s", e.Key, e.Message)
}

// Success reports whether the job finished without row errors.
func (r *JobResult) Success() bool {
	return len(r.Errors) == 0
}

func (r *JobResult) addError(key, message string) {
	r.Errors = append(r.Errors, RowError{Key: key, Message: message})
}

func (r *JobResult) finish() {
	r.CompletedAt = time.Now()
	r.Duration = r.CompletedAt.Sub(r.StartedAt)
}

// PreviewRow shows what a run would do to one row.
type PreviewRow struct {
	Key      string         `json:"key" yaml:"key"`
	Original *types.Row     `json:"original" yaml:"original"`
	Updated  *types.Row     `json:"updated" yaml:"updated"`
	Changes  []types.Change `json:"changes" yaml:"changes"`
}

func rowKey(column string, value any) string {
	return column + "=" + types.ToString(value)
}
