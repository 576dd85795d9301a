package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nao1215/stampout/internal/config"
	"github.com/nao1215/stampout/internal/database"
	"github.com/nao1215/stampout/internal/document"
	securelog "github.com/nao1215/stampout/internal/log"
	"github.com/nao1215/stampout/internal/model"
	"github.com/nao1215/stampout/internal/plan"
	"github.com/nao1215/stampout/internal/report"
	"github.com/nao1215/stampout/internal/strategy"
)

// settingsFlags maps flag names to settings keys. Only flags the running
// command defines are bound.
var settingsFlags = map[string]string{
	"verbose":     config.KeyVerbose,
	"log-format":  config.KeyLogFormat,
	"dry-run":     config.KeyDryRun,
	"concurrency": config.KeyConcurrency,
	"report":      config.KeyReportFormat,
	"output":      config.KeyReportFile,
	"engine":      config.KeyEngine,
}

// addRunFlags adds the flags of a redaction run.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("dry-run", "n", false,
		"List work items and anomalies without opening any document")
	cmd.Flags().IntP("concurrency", "j", config.DefaultConcurrency,
		"Number of documents processed at once")
	cmd.Flags().StringP("report", "r", config.DefaultReportFormat,
		"Report format: simple, json or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file (the terminal still gets a summary)")
	cmd.Flags().String("engine", "",
		"Document engine name (default: the only engine linked into the binary)")
	cmd.Flags().Bool("no-history", false,
		"Do not save this run to the history database")
}

// runRedactCmd executes a redaction run with the engines linked into the binary.
func runRedactCmd(cmd *cobra.Command, _ []string) error {
	return runRedact(cmd, document.Engines())
}

// runRedact executes a redaction run. linked names the available engines.
// Settings and the plan are validated before any engine is selected, so a
// plan error is always reported as such.
func runRedact(cmd *cobra.Command, linked []string) error {
	fsys := afero.NewOsFs()

	planPath, err := findPlan(cmd, fsys)
	if err != nil {
		return err
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())

	p, err := loadPlan(fsys, planPath)
	if err != nil {
		return err
	}
	logger = securelog.WithMaskedTexts(logger, p.RedactionTexts()...)

	s, err := strategy.Select(p)
	if err != nil {
		return err
	}

	var engine document.Engine
	if !cfg.DryRun {
		resolveEngine(cfg, linked)
		if err := cfg.CheckEngine(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		engine, err = document.Lookup(cfg.Engine)
		if err != nil {
			return err
		}
	}

	logger.Debug("starting run",
		"plan", planPath,
		"strategy", string(s.Kind()),
		"engine", cfg.Engine,
		"concurrency", cfg.Concurrency,
		"dryRun", cfg.DryRun,
	)

	rep, runErr := s.Run(cmd.Context(), p, strategy.Runtime{
		Fs:          fsys,
		Engine:      engine,
		Concurrency: cfg.Concurrency,
		DryRun:      cfg.DryRun,
		Logger:      logger,
	})
	if rep == nil {
		return runErr
	}
	rep.PlanPath = planPath

	if err := writeReport(cfg, cmd.OutOrStdout(), rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.History {
		if err := saveHistory(cmd.Context(), cfg.DBDir, rep, logger); err != nil {
			logger.Error("failed to save run history", "error", err)
		}
	}

	return runErr
}

// findPlan returns the plan file for the run. An explicit --plan is
// returned even when missing so that loading reports it precisely.
func findPlan(cmd *cobra.Command, fsys afero.Fs) (string, error) {
	explicit, err := cmd.Flags().GetString("plan")
	if err != nil {
		return "", err
	}
	if explicit != "" {
		return absPath(explicit)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	path := plan.FindPlanFile(fsys, "", wd)
	if path == "" {
		return "", errNoPlanFile
	}
	return path, nil
}

// loadPlan reads and validates a plan file.
// Relative paths inside the plan resolve against the working directory.
func loadPlan(fsys afero.Fs, path string) (*plan.Plan, error) {
	raw, err := plan.Load(fsys, path)
	if err != nil {
		return nil, err
	}

	p, err := plan.Validate(fsys, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", path, err)
	}
	return p, nil
}

// loadSettings resolves the application settings for cmd.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	keys := make(map[string]string, len(settingsFlags))
	for name, key := range settingsFlags {
		if cmd.Flags().Lookup(name) != nil {
			keys[name] = key
		}
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configPath,
		Flags:      cmd.Flags(),
		FlagKeys:   keys,
	})
	if err != nil {
		return nil, err
	}

	if flag := cmd.Flags().Lookup("no-history"); flag != nil && flag.Changed {
		noHistory, err := cmd.Flags().GetBool("no-history")
		if err != nil {
			return nil, err
		}
		cfg.History = !noHistory
	}

	return cfg, nil
}

// resolveEngine selects the only linked engine when none was named.
func resolveEngine(cfg *config.Config, linked []string) {
	if cfg.Engine == "" && len(linked) == 1 {
		cfg.Engine = linked[0]
	}
}

// newLogger creates the secure logger selected by the settings.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if cfg.LogFormat == config.LogFormatJSON {
		return securelog.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return securelog.NewSecureLogger(w, cfg.Verbose)
}

// newReportWriter returns the writer for format.
func newReportWriter(format string, w io.Writer, verbose bool) (report.Writer, error) {
	if report.Format(format) == report.FormatSimple {
		return report.NewSimpleWriter(w, report.WithVerbose(verbose)), nil
	}
	return report.New(format, w, getVersion())
}

// writeReport prints the report to stdout, or, when a report file is set,
// writes it to the file and a simple summary to stdout.
func writeReport(cfg *config.Config, stdout io.Writer, rep *model.RunReport) error {
	if cfg.ReportFile == "" {
		w, err := newReportWriter(cfg.ReportFormat, stdout, cfg.Verbose)
		if err != nil {
			return err
		}
		_, err = w.Write(rep)
		return err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports list document paths; keep them readable by the owner only.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	fileWriter, err := newReportWriter(cfg.ReportFormat, f, cfg.Verbose)
	if err != nil {
		return err
	}

	w := report.NewMultiWriter(report.NewSimpleWriter(stdout, report.WithVerbose(cfg.Verbose)), fileWriter)
	if _, err := w.Write(rep); err != nil {
		return err
	}
	return f.Close()
}

// saveHistory stores the run in the history database.
func saveHistory(ctx context.Context, dbDir string, rep *model.RunReport, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, rep)
	if err != nil {
		return err
	}

	logger.Debug("run saved to history", "id", id, "db", db.Path())
	return nil
}

// absPath returns path made absolute against the working directory.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}
