package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/lock"
)

var (
	runJob        string
	runDryRun     bool
	runOutput     string
	runNoProgress bool
	runForce      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replace column values for a job",
	Long: `Run reads every row matching the job's filter in primary key order,
generates new values for the configured columns and writes them back.

The run follows these steps:
  1. Validate the configuration and check the table schema
  2. Drop foreign key columns from code jobs
  3. Resolve the bounding box for geo jobs (one model call)
  4. Take the job's advisory lock (skipped for dry runs)
  5. Process rows batch by batch, one UPDATE per row
  6. Commit per job or per batch (processing.transaction_mode)

Rows that fail are reported and skipped; connection failures roll back.

Example:
  gomask run --config gomask.yaml --job mask_customer_names
  gomask run --job mask_phones --dry-run --output json`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runJob, "job", "j", "",
		"Job name from configuration file (required)")
	runCmd.MarkFlagRequired("job")

	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false,
		"Generate values and report counts without writing")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", OutputText,
		"Result format (text, json, yaml)")
	runCmd.Flags().BoolVar(&runNoProgress, "no-progress", false,
		"Disable the progress spinner")
	runCmd.Flags().BoolVar(&runForce, "force", false,
		"Run even if the job lock is held by another instance (use with caution)")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if !validOutput(runOutput) {
		return fmt.Errorf("invalid --output %q: must be text, json or yaml", runOutput)
	}

	session, err := openJob(context.Background(), runJob, true)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, cancel := signalContext(context.Background(), session.log)
	defer cancel()

	// Dry runs write nothing, so they never need the lock.
	if !runForce && !runDryRun && !session.job.DryRun {
		jobLock := lock.NewJobLock(session.dbManager.DB, session.dbManager.Dialect.Name, runJob)
		if err := jobLock.AcquireOrFail(ctx); err != nil {
			if errors.Is(err, lock.ErrLockTimeout) {
				return fmt.Errorf("job '%s' is already running on another instance (use --force to override)", runJob)
			}
			return fmt.Errorf("failed to acquire job lock: %w", err)
		}
		defer jobLock.Release(context.Background())
		session.log.Infow("Acquired advisory lock for job", "job", runJob, "lock", jobLock.Name())
	} else if runForce {
		session.log.Warnw("Skipping advisory lock acquisition (--force flag used)", "job", runJob)
	}

	session.log.Infow("Starting masking job",
		"job", runJob,
		"config", GetConfigFile(),
		"dry_run", runDryRun || session.job.DryRun,
	)

	var spin *spinner.Spinner
	if !runNoProgress {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = fmt.Sprintf(" masking %s.%s", runJob, session.job.Table)
		spin.Start()
	}

	result, err := session.orch.Execute(ctx, runDryRun)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		// A job-mode transaction is all or nothing, so partial counts never landed.
		if result != nil && !result.DryRun && session.processing.TransactionMode != config.TransactionPerBatch {
			cmd.PrintErrln("Job transaction rolled back; no rows were changed.")
		} else if result != nil {
			_ = renderResult(cmd.OutOrStdout(), result, runOutput)
		}
		if errors.Is(err, context.Canceled) {
			session.log.Warn("Masking job cancelled by user")
			return nil
		}
		return fmt.Errorf("masking job failed: %w", err)
	}

	if err := renderResult(cmd.OutOrStdout(), result, runOutput); err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}

	if !result.Success() {
		return fmt.Errorf("job completed with %d row error(s)", len(result.Errors))
	}
	return nil
}
