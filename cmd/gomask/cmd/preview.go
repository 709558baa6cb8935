package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	previewJob    string
	previewLimit  int
	previewOutput string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show generated values for the first rows without writing",
	Long: `Preview reads the first matching rows of a job and prints the current
and generated value of every target column. Nothing is written and no
transaction is opened. Geo jobs still resolve their bounding box.

Example:
  gomask preview --config gomask.yaml --job mask_customer_names --limit 5`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewJob, "job", "j", "",
		"Job name from configuration file (required)")
	previewCmd.MarkFlagRequired("job")

	previewCmd.Flags().IntVarP(&previewLimit, "limit", "n", 0,
		"Number of rows to preview (default: processing.preview_limit)")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", OutputText,
		"Output format (text, json, yaml)")

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	if !validOutput(previewOutput) {
		return fmt.Errorf("invalid --output %q: must be text, json or yaml", previewOutput)
	}
	if previewLimit < 0 {
		return fmt.Errorf("--limit must be >= 0, got %d", previewLimit)
	}

	ctx := context.Background()
	session, err := openJob(ctx, previewJob, true)
	if err != nil {
		return err
	}
	defer session.Close()

	previews, err := session.orch.Preview(ctx, previewLimit)
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	if previewOutput != OutputText {
		return writeStructured(cmd.OutOrStdout(), previewOutput, previews)
	}

	cmd.Printf("\n%s\n\n", headingStyle.Sprintf("=== Preview: %s (%s) ===", previewJob, session.job.Table))
	renderPreview(cmd.OutOrStdout(), previews)
	return nil
}
