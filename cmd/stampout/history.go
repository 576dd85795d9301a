package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/stampout/internal/database"
	"github.com/nao1215/stampout/internal/report"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past redaction runs",
		Long: `History lists the runs saved in the history database, newest first,
or shows the full report of one run.

The database lives in the XDG data directory (~/.local/share/stampout on
Linux) unless db_dir is set in the settings file or STAMPOUT_DB_DIR.

Examples:
  # List the last 20 runs
  stampout history

  # Show run 12 as Markdown
  stampout history --id 12 --markdown`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().Int64P("id", "i", 0,
		"Show the full report of the run with this ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}

	format := string(report.FormatSimple)
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON { //nolint:errcheck // flag is defined above
		format = string(report.FormatJSON)
	}
	if asMarkdown, _ := cmd.Flags().GetBool("markdown"); asMarkdown { //nolint:errcheck // flag is defined above
		format = string(report.FormatMarkdown)
	}

	w, err := newReportWriter(format, cmd.OutOrStdout(), cfg.Verbose)
	if err != nil {
		return err
	}

	// Reading history never creates the database.
	if _, err := os.Stat(filepath.Join(cfg.DBDir, database.FileName)); errors.Is(err, os.ErrNotExist) {
		if id != 0 {
			return fmt.Errorf("%w: %d", database.ErrRunNotFound, id)
		}
		_, err := w.WriteHistory(nil)
		return err
	}

	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if id != 0 {
		run, err := db.GetRun(cmd.Context(), id)
		if err != nil {
			return err
		}
		_, err = w.Write(run)
		return err
	}

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	_, err = w.WriteHistory(runs)
	return err
}
