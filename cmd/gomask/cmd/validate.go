package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/logger"
)

var (
	validateJob        string
	validateConfigOnly bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run preflight checks",
	Long: `Validate checks the configuration file and runs preflight checks
against the database for one job, or every job when --job is omitted.

Checks performed:
  - Configuration syntax and required fields
  - Generator parameters (ranges, alphabets, dates, geo columns)
  - Database connectivity
  - Table, primary key, target, filter and gender column existence
  - Foreign key columns excluded from code jobs
  - Matching row count and batch estimate

Geo jobs are not resolved; no request is sent to the model.

Example:
  gomask validate --config gomask.yaml
  gomask validate --job mask_phones`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateJob, "job", "j", "",
		"Validate a single job (default: all jobs)")
	validateCmd.Flags().BoolVar(&validateConfigOnly, "config-only", false,
		"Only validate the configuration file, without connecting")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jobNames := cfg.ListJobs()
	if validateJob != "" {
		if _, err := cfg.GetJob(validateJob); err != nil {
			return err
		}
		jobNames = []string{validateJob}
	}

	cmd.Printf("\n%s\n", headingStyle.Sprint("=== Configuration Validation ==="))
	cmd.Printf("Config file: %s\n", configFile)
	cmd.Printf("Jobs found: %d\n\n", len(cfg.Jobs))

	if err := cfg.Validate(); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, e := range verrs {
				cmd.Printf("%s %s\n", color.Red.Sprint("❌"), e.Error())
			}
		} else {
			cmd.Printf("%s %v\n", color.Red.Sprint("❌"), err)
		}
		return fmt.Errorf("configuration is invalid")
	}
	cmd.Printf("%s Configuration is valid\n\n", color.Green.Sprint("✅"))

	if validateConfigOnly {
		return nil
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()
	dbManager, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer dbManager.Close()

	session := &jobSession{cfg: cfg, log: log, dbManager: dbManager}

	hasErrors := false
	for _, jobName := range jobNames {
		cmd.Printf("--- Job: %s ---\n", jobName)

		if err := session.build(jobName, false); err != nil {
			cmd.Printf("%s %v\n\n", color.Red.Sprint("❌"), err)
			hasErrors = true
			continue
		}
		cmd.Printf("Generator: %s\n", session.job.Generator.Kind)

		est, err := session.orch.Estimate(ctx)
		if err != nil {
			cmd.Printf("%s Preflight checks failed: %v\n\n", color.Red.Sprint("❌"), err)
			hasErrors = true
			continue
		}
		renderEstimate(cmd.OutOrStdout(), est)
		if needsResolver(session.job) {
			cmd.Printf("Geo bounds resolved at run time for %q\n", session.job.Generator.Geo.Description)
		}
		cmd.Printf("%s All checks passed\n\n", color.Green.Sprint("✅"))
	}

	if hasErrors {
		return fmt.Errorf("validation failed for one or more jobs")
	}

	cmd.Println("=== Validation Complete ===")
	cmd.Println("✅ All jobs validated successfully")
	return nil
}
