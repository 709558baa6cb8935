package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gomask/internal/generator"
	"github.com/dbsmedya/gomask/internal/lexicon"
	"github.com/dbsmedya/gomask/internal/logger"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List lexicon groups and phone countries",
	Long: `Groups prints the groups found in the name and company lexicons with
their entry counts, plus the countries accepted by phone jobs. Use these
values in name.groups, company.classification_groups and phone.country.

Example:
  gomask groups --config gomask.yaml`,
	RunE: runGroups,
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}

func runGroups(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	set, err := lexicon.LoadSet(cfg.Lexicon.NamesDir, cfg.Lexicon.CompaniesDir, logger.NewNop())
	if err != nil {
		return fmt.Errorf("failed to load lexicons: %w", err)
	}

	w := cmd.OutOrStdout()
	printLexicon(w, "Female names", cfg.Lexicon.NamesDir, set.Female)
	printLexicon(w, "Male names", cfg.Lexicon.NamesDir, set.Male)
	printLexicon(w, "Company classifications", cfg.Lexicon.CompaniesDir, set.Classification)

	fmt.Fprintf(w, "%s\n", headingStyle.Sprint("Phone countries"))
	rows := [][]string{{"COUNTRY", "CODE"}}
	for _, country := range generator.Countries() {
		code, _ := generator.LookupCountryCode(country)
		rows = append(rows, []string{country, code})
	}
	writeTable(w, rows)
	return nil
}

func printLexicon(w io.Writer, title, dir string, lex *lexicon.Lexicon) {
	fmt.Fprintf(w, "%s (%s)\n", headingStyle.Sprint(title), dir)

	groups := lex.Groups()
	if len(groups) == 0 {
		fmt.Fprintln(w, "   (empty)")
		fmt.Fprintln(w)
		return
	}

	rows := [][]string{{"GROUP", "ENTRIES"}}
	for _, g := range groups {
		rows = append(rows, []string{g, fmt.Sprint(lex.Size([]string{g}))})
	}
	writeTable(w, rows)
	fmt.Fprintln(w)
}
