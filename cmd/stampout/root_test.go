package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nao1215/stampout/internal/config"
	"github.com/nao1215/stampout/internal/report"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "stampout" {
			t.Errorf("expected use 'stampout', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{"plan", "p", ""},
			{"config", "", ""},
			{"verbose", "v", "false"},
			{"log-format", "", "text"},
		}
		for _, tt := range tests {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("%s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("%s: expected default %q, got %q", tt.name, tt.defValue, flag.DefValue)
			}
		}
	})

	t.Run("has run flags", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{"dry-run", "n", "false"},
			{"concurrency", "j", "1"},
			{"report", "r", "simple"},
			{"output", "o", ""},
			{"engine", "", ""},
			{"no-history", "", "false"},
		}
		for _, tt := range tests {
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("%s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("%s: expected default %q, got %q", tt.name, tt.defValue, flag.DefValue)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{"validate": false, "init": false, "history": false, "version": false}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}

func TestExecutePrintsSingleDiagnosticLine(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "--plan", filepath.Join(t.TempDir(), "missing.json"))
	if res.code != 1 {
		t.Errorf("expected exit status 1, got %d", res.code)
	}
	if !strings.HasPrefix(res.stderr, "stampout: ") {
		t.Errorf("expected diagnostic prefix, got %q", res.stderr)
	}
	if strings.Count(strings.TrimSpace(res.stderr), "\n") != 0 {
		t.Errorf("expected a single line, got %q", res.stderr)
	}
	if res.stdout != "" {
		t.Errorf("expected no report, got %q", res.stdout)
	}
}

// TestRunWithoutPlanFile changes the working directory and cannot run in parallel.
func TestRunWithoutPlanFile(t *testing.T) {
	t.Chdir(t.TempDir())

	res := runCLI(t)
	if res.code != 1 {
		t.Errorf("expected exit status 1, got %d", res.code)
	}
	if !strings.Contains(res.stderr, errNoPlanFile.Error()) {
		t.Errorf("expected usage hint, got %q", res.stderr)
	}
}

// TestRunFindsPlanInWorkingDirectory changes the working directory and cannot run in parallel.
func TestRunFindsPlanInWorkingDirectory(t *testing.T) {
	planPath, _, _ := parentingFixture(t)
	dir := filepath.Dir(planPath)
	settings, _ := writeSettings(t, dir)
	t.Chdir(dir)

	res := runCLI(t, "--config", settings, "--dry-run", "--no-history")
	if res.code != 0 {
		t.Fatalf("expected exit status 0, got %d: %s", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "Plan:       "+planPath) {
		t.Errorf("expected plan path in report, got:\n%s", res.stdout)
	}
}

func TestRedactRun(t *testing.T) {
	t.Parallel()

	t.Run("parenting run redacts, skips anomalies and saves history", func(t *testing.T) {
		t.Parallel()

		planPath, root, out := parentingFixture(t)
		settings, dbDir := writeSettings(t, filepath.Dir(planPath))

		res := runCLI(t, "--plan", planPath, "--config", settings)
		if res.code != 0 {
			t.Fatalf("expected exit status 0, got %d: %s", res.code, res.stderr)
		}

		redacted := readFile(t, filepath.Join(out, "book", "book_r.pdf"))
		if strings.Contains(redacted, stamp) {
			t.Errorf("expected stamp to be removed, got %q", redacted)
		}
		if !strings.Contains(redacted, "Page one") || !strings.Contains(redacted, "Page two") {
			t.Errorf("expected remaining text to survive, got %q", redacted)
		}
		if _, err := os.Stat(filepath.Join(root, "A", "book.pdf")); err != nil {
			t.Errorf("expected original to be kept: %v", err)
		}

		for _, want := range []string{"[OK]", "[SKIP] " + filepath.Join(root, "B"), "[SKIP] " + filepath.Join(root, "C")} {
			if !strings.Contains(res.stdout, want) {
				t.Errorf("expected report to contain %q, got:\n%s", want, res.stdout)
			}
		}
		if got := strings.Count(res.stderr, "level=WARN"); got != 2 {
			t.Errorf("expected 2 warnings, got %d:\n%s", got, res.stderr)
		}
		if strings.Contains(res.stderr, stamp) {
			t.Errorf("expected stamp to be masked in logs, got:\n%s", res.stderr)
		}

		if _, err := os.Stat(filepath.Join(dbDir, "stampout.db")); err != nil {
			t.Errorf("expected history database: %v", err)
		}

		history := runCLI(t, "history", "--config", settings)
		if history.code != 0 {
			t.Fatalf("history failed: %s", history.stderr)
		}
		if !strings.Contains(history.stdout, "parenting") || !strings.Contains(history.stdout, root) {
			t.Errorf("expected the run in history, got:\n%s", history.stdout)
		}
	})

	t.Run("delete original", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		source := filepath.Join(dir, "in", "book.pdf")
		output := filepath.Join(dir, "book_clean.pdf")
		writeFile(t, source, stamp)
		planPath := writePlan(t, dir, map[string]any{
			"rootMode":       "single",
			"rootInputPath":  source,
			"outputPath":     output,
			"deleteOriginal": true,
			"redactionTexts": []string{stamp},
		})
		settings, _ := writeSettings(t, dir)

		res := runCLI(t, "--plan", planPath, "--config", settings, "--no-history")
		if res.code != 0 {
			t.Fatalf("expected exit status 0, got %d: %s", res.code, res.stderr)
		}
		if strings.Contains(readFile(t, output), stamp) {
			t.Error("expected stamp to be removed")
		}
		if _, err := os.Stat(source); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected original to be deleted, got %v", err)
		}
		if !strings.Contains(res.stdout, "original deleted") {
			t.Errorf("expected deletion in report, got:\n%s", res.stdout)
		}
	})

	t.Run("dry run does not write outputs", func(t *testing.T) {
		t.Parallel()

		planPath, _, out := parentingFixture(t)
		settings, dbDir := writeSettings(t, filepath.Dir(planPath))

		res := runCLI(t, "--plan", planPath, "--config", settings, "-n", "--no-history")
		if res.code != 0 {
			t.Fatalf("expected exit status 0, got %d: %s", res.code, res.stderr)
		}
		if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected no output directory, got %v", err)
		}
		if !strings.Contains(res.stdout, "[PLAN]") {
			t.Errorf("expected planned item, got:\n%s", res.stdout)
		}
		if _, err := os.Stat(dbDir); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected no history with --no-history, got %v", err)
		}
	})

	t.Run("report file gets the chosen format", func(t *testing.T) {
		t.Parallel()

		planPath, _, _ := parentingFixture(t)
		dir := filepath.Dir(planPath)
		settings, _ := writeSettings(t, dir)
		reportPath := filepath.Join(dir, "reports", "run.json")

		res := runCLI(t, "--plan", planPath, "--config", settings, "--no-history", "-r", "json", "-o", reportPath)
		if res.code != 0 {
			t.Fatalf("expected exit status 0, got %d: %s", res.code, res.stderr)
		}

		var decoded report.JSONReport
		if err := json.Unmarshal([]byte(readFile(t, reportPath)), &decoded); err != nil {
			t.Fatalf("invalid JSON report: %v", err)
		}
		if decoded.Report == nil || decoded.Report.Strategy != "parenting" {
			t.Errorf("unexpected report: %+v", decoded.Report)
		}
		if decoded.Summary.Succeeded != 1 || decoded.Summary.Skipped != 2 {
			t.Errorf("unexpected summary: %+v", decoded.Summary)
		}
		if !strings.Contains(res.stdout, "STAMPOUT REPORT") {
			t.Errorf("expected terminal summary, got:\n%s", res.stdout)
		}
	})

	t.Run("json report on stdout", func(t *testing.T) {
		t.Parallel()

		planPath, _, _ := parentingFixture(t)
		settings, _ := writeSettings(t, filepath.Dir(planPath))

		res := runCLI(t, "--plan", planPath, "--config", settings, "--no-history", "--dry-run", "--report", "json")
		if res.code != 0 {
			t.Fatalf("expected exit status 0, got %d: %s", res.code, res.stderr)
		}
		if !json.Valid([]byte(res.stdout)) {
			t.Errorf("expected JSON on stdout, got:\n%s", res.stdout)
		}
	})

	t.Run("json logs", func(t *testing.T) {
		t.Parallel()

		planPath, _, _ := parentingFixture(t)
		settings, _ := writeSettings(t, filepath.Dir(planPath), "log_format: json")

		res := runCLI(t, "--plan", planPath, "--config", settings, "--no-history", "--dry-run")
		if res.code != 0 {
			t.Fatalf("expected exit status 0, got %d: %s", res.code, res.stderr)
		}
		for _, line := range strings.Split(strings.TrimSpace(res.stderr), "\n") {
			if !json.Valid([]byte(line)) {
				t.Errorf("expected JSON log line, got %q", line)
			}
		}
	})

	t.Run("invalid plan is fatal", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		root := filepath.Join(dir, "root")
		if err := os.MkdirAll(root, 0o750); err != nil {
			t.Fatal(err)
		}
		planPath := writePlan(t, dir, map[string]any{
			"rootMode":       "multi",
			"folderMode":     "list",
			"rootInputPath":  root,
			"outputPath":     filepath.Join(dir, "out"),
			"redactionTexts": []string{},
		})
		settings, _ := writeSettings(t, dir)

		res := runCLI(t, "--plan", planPath, "--config", settings, "--no-history")
		if res.code != 1 {
			t.Errorf("expected exit status 1, got %d", res.code)
		}
		if !strings.Contains(res.stderr, "redaction") {
			t.Errorf("expected redaction set diagnostic, got %q", res.stderr)
		}
	})

	t.Run("invalid settings are fatal", func(t *testing.T) {
		t.Parallel()

		planPath, _, _ := parentingFixture(t)
		settings, _ := writeSettings(t, filepath.Dir(planPath))

		res := runCLI(t, "--plan", planPath, "--config", settings, "-j", "0")
		if res.code != 1 {
			t.Errorf("expected exit status 1, got %d", res.code)
		}
		if !strings.Contains(res.stderr, "invalid concurrency") {
			t.Errorf("expected concurrency diagnostic, got %q", res.stderr)
		}
	})

	t.Run("unknown engine is fatal", func(t *testing.T) {
		t.Parallel()

		planPath, _, _ := parentingFixture(t)
		settings, _ := writeSettings(t, filepath.Dir(planPath))

		res := runCLI(t, "--plan", planPath, "--config", settings, "--engine", "mupdf")
		if res.code != 1 {
			t.Errorf("expected exit status 1, got %d", res.code)
		}
		if !strings.Contains(res.stderr, "not registered") {
			t.Errorf("expected engine diagnostic, got %q", res.stderr)
		}
	})
}

func TestPlanErrorsPrecedeEngineSelection(t *testing.T) {
	t.Parallel()

	// Commands built here see no linked engine.
	withoutEngines := func() *cobra.Command {
		cmd := NewRootCmd()
		cmd.RunE = func(cmd *cobra.Command, _ []string) error {
			return runRedact(cmd, nil)
		}
		return cmd
	}

	t.Run("missing plan file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		settings, _ := writeSettings(t, dir)

		res := runCommand(t, withoutEngines(), "--plan", filepath.Join(dir, "missing.json"), "--config", settings)
		if res.code != 1 {
			t.Errorf("expected exit status 1, got %d", res.code)
		}
		if !strings.Contains(res.stderr, "plan file not found") {
			t.Errorf("expected plan diagnostic, got %q", res.stderr)
		}
	})

	t.Run("output collision", func(t *testing.T) {
		t.Parallel()

		planPath, _, out := parentingFixture(t)
		settings, _ := writeSettings(t, filepath.Dir(planPath))
		if err := os.MkdirAll(out, 0o750); err != nil {
			t.Fatal(err)
		}

		res := runCommand(t, withoutEngines(), "--plan", planPath, "--config", settings)
		if res.code != 1 {
			t.Errorf("expected exit status 1, got %d", res.code)
		}
		if !strings.Contains(res.stderr, "output path already exists") {
			t.Errorf("expected collision diagnostic, got %q", res.stderr)
		}
	})

	t.Run("valid plan without engine", func(t *testing.T) {
		t.Parallel()

		planPath, _, out := parentingFixture(t)
		settings, _ := writeSettings(t, filepath.Dir(planPath))

		res := runCommand(t, withoutEngines(), "--plan", planPath, "--config", settings, "--no-history")
		if res.code != 1 {
			t.Errorf("expected exit status 1, got %d", res.code)
		}
		if !strings.Contains(res.stderr, "no document engine selected") {
			t.Errorf("expected engine diagnostic, got %q", res.stderr)
		}
		if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected no output, got %v", err)
		}
	})

	t.Run("dry run needs no engine", func(t *testing.T) {
		t.Parallel()

		planPath, _, _ := parentingFixture(t)
		settings, _ := writeSettings(t, filepath.Dir(planPath))

		res := runCommand(t, withoutEngines(), "--plan", planPath, "--config", settings, "--no-history", "-n")
		if res.code != 0 {
			t.Errorf("expected exit status 0, got %d: %s", res.code, res.stderr)
		}
	})
}

func TestResolveEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		engine string
		linked []string
		want   string
	}{
		{"only linked engine", "", []string{"fake"}, "fake"},
		{"named engine wins", "mupdf", []string{"fake"}, "mupdf"},
		{"several engines", "", []string{"a", "b"}, ""},
		{"no engine", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.Engine = tt.engine
			resolveEngine(cfg, tt.linked)
			if cfg.Engine != tt.want {
				t.Errorf("expected %q, got %q", tt.want, cfg.Engine)
			}
		})
	}
}

func TestWriteReportToFileKeepsTerminalSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := newReportWriter("markdown", &buf, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := w.(*report.MarkdownWriter); !ok {
		t.Errorf("expected markdown writer, got %T", w)
	}
	if _, err := newReportWriter("xml", &buf, false); err == nil {
		t.Error("expected error for unknown format")
	}
}
