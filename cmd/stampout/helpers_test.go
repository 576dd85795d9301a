package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nao1215/stampout/internal/document"
	"github.com/nao1215/stampout/internal/document/documenttest"
)

// testEngine is the only engine linked into the test binary, so runs
// select it without --engine.
const testEngine = "fake"

func init() {
	document.Register(testEngine, documenttest.NewEngine(afero.NewOsFs()))
}

// stamp is the redaction text used by the CLI tests.
const stamp = "Licensed to Jane Roe"

// cliResult holds the outcome of one CLI invocation.
type cliResult struct {
	code   int
	stdout string
	stderr string
}

// runCLI executes the root command with args the way main does.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()

	return runCommand(t, NewRootCmd(), args...)
}

// runCommand executes cmd with args and captures its output.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) cliResult {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	code := execute(cmd, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// writeFile creates path with content, creating parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// readFile returns the content of path.
func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// writePlan writes fields as a JSON plan file and returns its path.
func writePlan(t *testing.T, dir string, fields map[string]any) string {
	t.Helper()

	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "plan.json")
	writeFile(t, path, string(data))
	return path
}

// writeSettings writes a settings file keeping history inside dir.
// It returns the settings path and the database directory.
func writeSettings(t *testing.T, dir string, extra ...string) (string, string) {
	t.Helper()

	dbDir := filepath.Join(dir, "db")
	lines := append([]string{"db_dir: " + dbDir}, extra...)
	path := filepath.Join(dir, "stampout.yaml")
	writeFile(t, path, strings.Join(lines, "\n")+"\n")
	return path, dbDir
}

// parentingFixture builds the tree of a parenting run:
//
//	root/A/book.pdf   one document carrying the stamp on its first page
//	root/B/           no document
//	root/C/one.pdf    two documents
//	root/C/two.pdf
//
// It returns the plan path and the root and output directories.
func parentingFixture(t *testing.T) (string, string, string) {
	t.Helper()

	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	out := filepath.Join(dir, "out")

	writeFile(t, filepath.Join(root, "A", "book.pdf"), "Page one "+stamp+documenttest.PageSeparator+"Page two")
	if err := os.MkdirAll(filepath.Join(root, "B"), 0o750); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "C", "one.pdf"), "one")
	writeFile(t, filepath.Join(root, "C", "two.pdf"), "two")

	planPath := writePlan(t, dir, map[string]any{
		"rootMode":       "multi",
		"folderMode":     "parenting",
		"rootInputPath":  root,
		"outputPath":     out,
		"redactionTexts": []string{stamp},
	})
	return planPath, root, out
}
