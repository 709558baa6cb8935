package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomask/internal/config"
)

var listJobsCmd = &cobra.Command{
	Use:   "list-jobs",
	Short: "List all jobs defined in configuration",
	Long: `List-jobs displays all masking jobs defined in the configuration file
along with their table, columns and generator.

Example:
  gomask list-jobs --config gomask.yaml`,
	RunE: runListJobs,
}

func init() {
	rootCmd.AddCommand(listJobsCmd)
}

func runListJobs(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	jobNames := cfg.ListJobs()
	if len(jobNames) == 0 {
		cmd.Printf("No jobs defined in %s\n", configFile)
		return nil
	}

	cmd.Printf("Jobs defined in %s:\n\n", configFile)

	for i, jobName := range jobNames {
		job, err := cfg.GetJob(jobName)
		if err != nil {
			return fmt.Errorf("failed to get job %q: %w", jobName, err)
		}

		cmd.Printf("%d. %s\n", i+1, jobName)
		cmd.Printf("   Table:         %s\n", job.Table)
		cmd.Printf("   Primary Key:   %s\n", job.PrimaryKeyColumn())
		cmd.Printf("   Generator:     %s%s\n", job.Generator.Kind, uniqueSuffix(job))
		cmd.Printf("   Columns:       %s\n", strings.Join(job.TargetColumns(), ", "))

		if len(job.Filter) > 0 {
			for j, pred := range job.Filter {
				label := "Filter:"
				if j > 0 {
					label = "AND"
				}
				cmd.Printf("   %-14s %s\n", label, describePredicate(pred))
			}
		} else {
			cmd.Printf("   Filter:        (none)\n")
		}

		if job.PreserveNull {
			cmd.Printf("   Nulls:         preserved\n")
		}
		if job.DryRun {
			cmd.Printf("   Dry Run:       always\n")
		}
		if job.Processing != nil {
			cmd.Printf("   Processing:    Custom (batch_size=%d, transaction_mode=%s)\n",
				job.Processing.BatchSize, job.Processing.TransactionMode)
		}

		if i < len(jobNames)-1 {
			cmd.Println()
		}
	}

	cmd.Printf("\nTotal: %d job(s)\n", len(jobNames))
	return nil
}

func uniqueSuffix(job *config.JobConfig) string {
	if job.Generator.Unique {
		return " (unique)"
	}
	return ""
}

func describePredicate(p config.Predicate) string {
	if p.Value == nil {
		return fmt.Sprintf("%s %s", p.Column, p.Operator)
	}
	return fmt.Sprintf("%s %s %v", p.Column, p.Operator, p.Value)
}
