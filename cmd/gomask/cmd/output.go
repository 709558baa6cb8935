package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/gomask/internal/engine"
	"github.com/dbsmedya/gomask/internal/types"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// maxCellWidth caps preview cells so wide values don't break the table.
const maxCellWidth = 40

var (
	headingStyle = color.New(color.FgCyan, color.OpBold)
	labelStyle   = color.New(color.FgWhite, color.OpBold)
)

func validOutput(format string) bool {
	switch format {
	case OutputText, OutputJSON, OutputYAML:
		return true
	}
	return false
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported output format %q", format)
}

func renderResult(w io.Writer, result *engine.JobResult, format string) error {
	if format != OutputText {
		return writeStructured(w, format, result)
	}

	title := "Masking Complete"
	if result.DryRun {
		title = "Dry Run Complete"
	}
	fmt.Fprintf(w, "\n%s\n", headingStyle.Sprintf("=== %s ===", title))
	field(w, "Job", result.JobName)
	field(w, "Run ID", result.RunID)
	field(w, "Table", result.Table)
	field(w, "Generator", result.Kind)
	field(w, "Columns", strings.Join(result.Columns, ", "))
	if len(result.ExcludedColumns) > 0 {
		field(w, "Excluded (FK)", color.Yellow.Sprint(strings.Join(result.ExcludedColumns, ", ")))
	}
	if result.Bounds != nil {
		field(w, "Bounds", result.Bounds.String())
	}
	field(w, "Total rows", fmt.Sprint(result.TotalRows))
	field(w, "Updated rows", fmt.Sprint(result.UpdatedRows))
	field(w, "Skipped rows", fmt.Sprint(result.SkippedRows))
	field(w, "Batches", fmt.Sprint(result.Batches))
	field(w, "Duration", result.Duration.String())

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\n%s\n", color.Red.Sprintf("Errors (%d):", len(result.Errors)))
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		return nil
	}
	fmt.Fprintf(w, "\n%s\n", color.Green.Sprint("✅ No row errors"))
	return nil
}

func renderEstimate(w io.Writer, est *engine.EstimateResult) {
	field(w, "Table", est.Table)
	field(w, "Columns", strings.Join(est.Columns, ", "))
	if len(est.ExcludedColumns) > 0 {
		field(w, "Excluded (FK)", color.Yellow.Sprint(strings.Join(est.ExcludedColumns, ", ")))
	}
	field(w, "Matching rows", fmt.Sprint(est.MatchingRows))
	field(w, "Batch size", fmt.Sprint(est.BatchSize))
	field(w, "Batches", fmt.Sprint(est.EstimatedBatches))
}

func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Sprint(runewidth.FillRight(label+":", 15)), value)
}

// renderPreview prints one table per row: column, current value, new value.
func renderPreview(w io.Writer, previews []engine.PreviewRow) {
	if len(previews) == 0 {
		fmt.Fprintln(w, "No rows would change.")
		return
	}

	for i, p := range previews {
		fmt.Fprintf(w, "%s\n", headingStyle.Sprintf("%d. %s", i+1, p.Key))

		rows := [][]string{{"COLUMN", "CURRENT", "NEW"}}
		for _, c := range p.Changes {
			rows = append(rows, []string{c.Column, cell(c.Old), cell(c.New)})
		}
		writeTable(w, rows)

		if i < len(previews)-1 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintf(w, "\nPreviewed %d row(s); nothing was written.\n", len(previews))
}

// writeTable aligns columns by display width, so CJK and accented names line up.
func writeTable(w io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, c := range row {
			if n := runewidth.StringWidth(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for r, row := range rows {
		var b strings.Builder
		b.WriteString("   ")
		for i, c := range row {
			b.WriteString(runewidth.FillRight(c, widths[i]))
			if i < len(row)-1 {
				b.WriteString("  ")
			}
		}
		line := strings.TrimRight(b.String(), " ")
		if r == 0 {
			line = labelStyle.Sprint(line)
		}
		fmt.Fprintln(w, line)
	}
}

func cell(v any) string {
	if v == nil {
		return "NULL"
	}
	return runewidth.Truncate(types.ToString(v), maxCellWidth, "...")
}
