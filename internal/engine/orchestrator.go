// Package engine runs generation jobs: it pages through a table, produces
// replacement values for the target columns of each row and writes them back
// with one UPDATE per row.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/database"
	"github.com/dbsmedya/gomask/internal/generator"
	"github.com/dbsmedya/gomask/internal/geobounds"
	"github.com/dbsmedya/gomask/internal/lexicon"
	"github.com/dbsmedya/gomask/internal/logger"
	"github.com/dbsmedya/gomask/internal/sqlutil"
	"github.com/dbsmedya/gomask/internal/types"
)

// DefaultPreviewLimit is used when neither the caller nor the config set one.
const DefaultPreviewLimit = 10

// Options configures an Orchestrator.
type Options struct {
	JobName string
	Job     *config.JobConfig
	// Processing is the effective processing config for the job.
	Processing config.ProcessingConfig
	Lexicons   *lexicon.Set
	// Resolver turns geo descriptions into bounds. Jobs with explicit bounds
	// do not need one.
	Resolver geobounds.Resolver
	Logger   *logger.Logger
	// Rand overrides the generator randomness. Defaults to a source seeded
	// from Processing.Seed, or a random seed when that is zero.
	Rand *rand.Rand
}

// Orchestrator runs one generation job against one database.
type Orchestrator struct {
	dbManager  *database.Manager
	jobName    string
	job        *config.JobConfig
	processing config.ProcessingConfig
	lexicons   *lexicon.Set
	resolver   geobounds.Resolver
	logger     *logger.Logger
	rng        *rand.Rand
}

// plan is everything resolved before the first row is read.
type plan struct {
	schema   *Schema
	columns  []string
	excluded []string
	gen      generator.Generator
	where    squirrel.Sqlizer
	orderBy  string
	bounds   *geobounds.BoundingBox
}

// rowOutcome is what processing one row produced.
type rowOutcome struct {
	key      string
	pkColumn string
	pkValue  any
	updated  *types.Row
	changes  []types.Change
	skip     bool
	err      error
}

// NewOrchestrator validates the job and creates an orchestrator for it.
func NewOrchestrator(dbManager *database.Manager, opts Options) (*Orchestrator, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database manager is nil")
	}
	if opts.Job == nil {
		return nil, fmt.Errorf("job config is nil")
	}
	if err := config.ValidateJob(opts.JobName, opts.Job); err != nil {
		return nil, err
	}
	if opts.Processing.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.Processing.BatchSize)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewDefault()
	}
	lex := opts.Lexicons
	if lex == nil {
		lex = lexicon.EmptySet()
	}
	rng := opts.Rand
	if rng == nil {
		rng = NewRand(opts.Processing.Seed)
	}

	return &Orchestrator{
		dbManager:  dbManager,
		jobName:    opts.JobName,
		job:        opts.Job,
		processing: opts.Processing,
		lexicons:   lex,
		resolver:   opts.Resolver,
		logger:     log.WithJob(opts.JobName).WithTable(opts.Job.Table),
		rng:        rng,
	}, nil
}

// NewRand returns a PCG source seeded with seed, or randomly when seed is zero.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// Execute runs the job. With dryRun (or the job's dry_run flag) every row is
// generated and counted but nothing is written.
//
// Row failures are collected in the result. Connection and transaction
// failures abort the job, rolling back whatever transaction is open, and are
// returned together with the partial result.
func (o *Orchestrator) Execute(ctx context.Context, dryRun bool) (*JobResult, error) {
	dryRun = dryRun || o.job.DryRun
	result := &JobResult{
		RunID:     uuid.NewString(),
		JobName:   o.jobName,
		Table:     o.job.Table,
		Kind:      o.job.Generator.Kind,
		DryRun:    dryRun,
		StartedAt: time.Now(),
	}
	defer result.finish()
	log := o.logger.WithRun(result.RunID)

	conn, err := o.dbManager.Conn(ctx)
	if err != nil {
		return result, err
	}
	defer conn.Close()

	p, err := o.prepare(ctx, conn, log, true)
	if err != nil {
		return result, err
	}
	result.Columns = p.columns
	result.ExcludedColumns = p.excluded
	result.Bounds = p.bounds

	perJob := !dryRun && o.processing.TransactionMode != config.TransactionPerBatch

	var tx *sql.Tx
	defer func() {
		if tx != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Errorw("Failed to rollback transaction", "error", rbErr)
			}
		}
	}()

	var reader database.Querier = conn
	if perJob {
		tx, err = conn.BeginTx(ctx, nil)
		if err != nil {
			return result, fmt.Errorf("failed to begin transaction: %w", err)
		}
		reader = tx
	}

	iter, err := NewRowIterator(reader, o.dbManager.Dialect, o.job.Table, p.orderBy, p.where, o.processing.BatchSize)
	if err != nil {
		return result, err
	}
	total, err := iter.Count(ctx)
	if err != nil {
		return result, err
	}

	log.Infow("Starting generation job",
		"kind", o.job.Generator.Kind,
		"columns", p.columns,
		"matching_rows", total,
		"batch_size", o.processing.BatchSize,
		"estimated_batches", EstimateBatches(total, o.processing.BatchSize),
		"transaction_mode", o.processing.TransactionMode,
		"dry_run", dryRun,
	)

	executor := NewExecutor(o.dbManager.Dialect, o.job.Table)

	for batchNum := 1; ; batchNum++ {
		select {
		case <-ctx.Done():
			log.Warnw("Job cancelled", "batches_completed", result.Batches)
			return result, fmt.Errorf("job %s cancelled: %w", o.jobName, ctx.Err())
		default:
		}

		rows, err := iter.Next(ctx)
		if err != nil {
			return result, err
		}
		if len(rows) == 0 {
			break
		}
		result.Batches++
		batchLog := log.WithBatch(batchNum)

		var writer database.Querier
		var batchTx *sql.Tx
		switch {
		case dryRun:
		case perJob:
			writer = tx
		default:
			batchTx, err = conn.BeginTx(ctx, nil)
			if err != nil {
				return result, fmt.Errorf("failed to begin batch transaction: %w", err)
			}
			writer = batchTx
		}

		before := result.UpdatedRows
		if err := o.processBatch(ctx, p, rows, writer, executor, result, batchLog); err != nil {
			if batchTx != nil {
				_ = batchTx.Rollback()
			}
			return result, err
		}
		if batchTx != nil {
			if err := batchTx.Commit(); err != nil {
				return result, fmt.Errorf("failed to commit batch %d: %w", batchNum, err)
			}
		}

		batchLog.Infow("Batch completed",
			"rows", len(rows),
			"updated", result.UpdatedRows-before,
			"total_updated", result.UpdatedRows,
			"total_skipped", result.SkippedRows,
		)

		if o.processing.SleepSeconds > 0 {
			sleepDuration := time.Duration(o.processing.SleepSeconds * float64(time.Second))
			batchLog.Debugf("Sleeping for %v before next batch", sleepDuration)
			timer := time.NewTimer(sleepDuration)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return result, fmt.Errorf("failed to commit transaction: %w", err)
		}
		tx = nil
	}

	log.Infow("Generation job completed",
		"total_rows", result.TotalRows,
		"updated_rows", result.UpdatedRows,
		"skipped_rows", result.SkippedRows,
		"errors", len(result.Errors),
		"batches", result.Batches,
		"duration", time.Since(result.StartedAt),
	)
	return result, nil
}

// processBatch generates and writes every row of one batch. A nil writer
// means dry-run. Only fatal errors are returned.
func (o *Orchestrator) processBatch(ctx context.Context, p *plan, rows []*types.Row, writer database.Querier, executor *Executor, result *JobResult, log *logger.Logger) error {
	for _, row := range rows {
		result.TotalRows++

		out := o.processRow(p, row)
		if out.err != nil {
			result.SkippedRows++
			result.addError(out.key, out.err.Error())
			if errors.Is(out.err, generator.ErrUniqueExhausted) {
				log.Warnw("Unique values exhausted, row skipped", "row", out.key, "error", out.err)
			} else {
				log.Errorw("Row generation failed", "row", out.key, "error", out.err)
			}
			continue
		}
		if out.skip {
			result.SkippedRows++
			continue
		}

		if writer == nil {
			result.UpdatedRows++
			continue
		}

		query, args, err := executor.BuildUpdate(out.pkColumn, out.pkValue, out.changes)
		if err != nil {
			result.SkippedRows++
			result.addError(out.key, err.Error())
			continue
		}
		if _, err := executor.Apply(ctx, writer, true, query, args); err != nil {
			if IsFatal(err) {
				return fmt.Errorf("update of row %s failed: %w", out.key, err)
			}
			result.SkippedRows++
			result.addError(out.key, err.Error())
			log.Errorw("Row update failed", "row", out.key, "error", err)
			continue
		}
		result.UpdatedRows++
	}
	return nil
}

// processRow resolves the key, applies the null policy and generates every
// active column. Values are produced once and serve both preview and write.
func (o *Orchestrator) processRow(p *plan, row *types.Row) rowOutcome {
	pkCol, pkVal, ok := ResolvePrimaryKey(row, o.job.PrimaryKey)
	if !ok {
		o.logger.Debugw("Row has no primary key value, skipped", "columns", row.Columns())
		return rowOutcome{key: "unknown", skip: true}
	}
	out := rowOutcome{key: rowKey(pkCol, pkVal), pkColumn: pkCol, pkValue: pkVal}

	req := generator.NewRequest(row, o.rng)
	if prep, ok := p.gen.(generator.RowPreparer); ok {
		if err := prep.PrepareRow(req); err != nil {
			if errors.Is(err, generator.ErrSkipRow) {
				out.skip = true
				return out
			}
			out.err = err
			return out
		}
	}

	updated := row.Clone()
	for _, col := range p.columns {
		if !ShouldGenerate(row, col, o.job.PreserveNull) {
			continue
		}
		column, _ := p.schema.Column(col)
		req.Column = column

		value, err := p.gen.Generate(req)
		if err != nil {
			if errors.Is(err, generator.ErrSkipRow) {
				out.skip = true
				return out
			}
			out.err = err
			return out
		}

		old, _ := row.Get(col)
		updated.Set(col, value)
		out.changes = append(out.changes, types.Change{Column: col, Old: old, New: value})
	}

	if len(out.changes) == 0 {
		out.skip = true
		return out
	}
	out.updated = updated
	return out
}

// Preview generates values for the first limit matching rows without writing
// anything or opening a transaction. limit <= 0 uses the configured preview limit.
func (o *Orchestrator) Preview(ctx context.Context, limit int) ([]PreviewRow, error) {
	if limit <= 0 {
		limit = o.processing.PreviewLimit
	}
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}

	conn, err := o.dbManager.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	p, err := o.prepare(ctx, conn, o.logger, true)
	if err != nil {
		return nil, err
	}

	iter, err := NewRowIterator(conn, o.dbManager.Dialect, o.job.Table, p.orderBy, p.where, limit)
	if err != nil {
		return nil, err
	}
	rows, err := iter.Next(ctx)
	if err != nil {
		return nil, err
	}

	previews := make([]PreviewRow, 0, len(rows))
	for _, row := range rows {
		out := o.processRow(p, row)
		if out.err != nil {
			o.logger.Warnw("Row generation failed during preview", "row", out.key, "error", out.err)
			continue
		}
		if out.skip {
			continue
		}
		previews = append(previews, PreviewRow{
			Key:      out.key,
			Original: row,
			Updated:  out.updated,
			Changes:  out.changes,
		})
	}

	o.logger.Infow("Preview generated", "rows_read", len(rows), "rows_changed", len(previews))
	return previews, nil
}

// Estimate runs the schema checks and counts the matching rows. It never
// calls the geo resolver.
func (o *Orchestrator) Estimate(ctx context.Context) (*EstimateResult, error) {
	conn, err := o.dbManager.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	p, err := o.prepare(ctx, conn, o.logger, false)
	if err != nil {
		return nil, err
	}

	iter, err := NewRowIterator(conn, o.dbManager.Dialect, o.job.Table, p.orderBy, p.where, o.processing.BatchSize)
	if err != nil {
		return nil, err
	}
	total, err := iter.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &EstimateResult{
		JobName:          o.jobName,
		Table:            o.job.Table,
		MatchingRows:     total,
		BatchSize:        o.processing.BatchSize,
		EstimatedBatches: EstimateBatches(total, o.processing.BatchSize),
		Columns:          p.columns,
		ExcludedColumns:  p.excluded,
	}, nil
}

// prepare runs preflight, the foreign key guard and bounds resolution, then
// builds the generator and the row filter. Nothing here reads table rows.
// With resolveBounds false, geo jobs get no generator.
func (o *Orchestrator) prepare(ctx context.Context, q database.Querier, log *logger.Logger, resolveBounds bool) (*plan, error) {
	inspector := database.NewInspector(q, o.dbManager.Dialect, o.dbManager.SchemaName())

	schema, err := Preflight(ctx, inspector, o.job)
	if err != nil {
		return nil, err
	}
	p := &plan{
		schema:  schema,
		columns: o.job.TargetColumns(),
		orderBy: orderColumn(schema, o.job.PrimaryKey),
	}
	if p.orderBy == "" {
		log.Warnw("Table has no key column, every row will be skipped",
			"candidates", uniqueStrings(append([]string{o.job.PrimaryKeyColumn()}, PrimaryKeyAliases...)))
	}

	if o.job.Generator.Kind == config.KindCode {
		p.columns, p.excluded, err = FilterForeignKeys(ctx, inspector, o.job.Table, p.columns, log)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w (excluded %v)", o.jobName, err, p.excluded)
		}
	}

	deps := generator.Deps{
		Lexicons:          o.lexicons,
		NameColumns:       o.job.Columns,
		UniqueMaxAttempts: o.processing.UniqueMaxAttempts,
	}
	if name := o.job.Generator.Name; name != nil && name.GenderColumn != "" {
		deps.GenderColumn, _ = schema.Column(name.GenderColumn)
	}

	buildGenerator := true
	if o.job.Generator.Kind == config.KindGeo {
		buildGenerator = resolveBounds
		if resolveBounds {
			box, err := o.resolveBounds(ctx)
			if err != nil {
				return nil, err
			}
			log.Infow("Using bounding box", "description", box.Description, "bounds", box.String())
			p.bounds = &box
			deps.Bounds = &box
			deps.LatColumn = o.job.Generator.Geo.LatColumn
			deps.LngColumn = o.job.Generator.Geo.LngColumn
		}
	}

	if buildGenerator {
		p.gen, err = generator.New(o.job.Generator, deps)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", o.jobName, err)
		}
	}

	p.where, err = o.buildWhere(p.gen)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (o *Orchestrator) resolveBounds(ctx context.Context) (geobounds.BoundingBox, error) {
	params := o.job.Generator.Geo
	if params == nil {
		return geobounds.BoundingBox{}, &geobounds.Error{Stage: geobounds.StageRequest, Message: "geo params are missing"}
	}

	resolver := o.resolver
	if b := params.Bounds; b != nil {
		resolver = geobounds.StaticResolver{Box: geobounds.BoundingBox{
			MinLat: b.MinLat,
			MaxLat: b.MaxLat,
			MinLng: b.MinLng,
			MaxLng: b.MaxLng,
		}}
	}
	if resolver == nil {
		return geobounds.BoundingBox{}, &geobounds.Error{
			Stage:       geobounds.StageRequest,
			Description: params.Description,
			Message:     "no geo resolver configured",
		}
	}
	return resolver.Resolve(ctx, params.Description)
}

// buildWhere ANDs the job's filter predicates with the generator's row scope.
func (o *Orchestrator) buildWhere(gen generator.Generator) (squirrel.Sqlizer, error) {
	quote := o.dbManager.Dialect.Quote

	var conds squirrel.And
	for _, pred := range o.job.Filter {
		cond, err := sqlutil.Condition(pred.Column, pred.Operator, pred.Value, quote)
		if err != nil {
			return nil, fmt.Errorf("invalid filter on %s: %w", pred.Column, err)
		}
		conds = append(conds, cond)
	}
	if s, ok := gen.(generator.Scoper); ok {
		if col, values, ok := s.Scope(); ok {
			conds = append(conds, squirrel.Eq{quote(col): values})
		}
	}

	if len(conds) == 0 {
		return nil, nil
	}
	return conds, nil
}
