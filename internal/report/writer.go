package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/stampout/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs one run report.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RunReport) (int, error)

	// WriteHistory outputs a listing of past runs, newest first.
	// Items of the listed runs are not rendered.
	WriteHistory(runs []*model.RunReport) (int, error)
}

// Format names a report format.
type Format string

const (
	// FormatSimple is the terminal text format.
	FormatSimple Format = "simple"

	// FormatJSON is the JSON format.
	FormatJSON Format = "json"

	// FormatMarkdown is the Markdown format.
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatSimple, FormatJSON, FormatMarkdown}
}

// New returns the writer for a format name.
func New(format string, output io.Writer, version string) (Writer, error) {
	switch Format(strings.ToLower(format)) {
	case FormatSimple, "":
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewFullJSONWriter(output, version, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory outputs the history listing to all configured Writers.
func (m *MultiWriter) WriteHistory(runs []*model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(runs)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText summarizes how a run ended.
func statusText(report *model.RunReport) string {
	counts := report.Counts()
	switch {
	case report.DryRun:
		return "Dry run (nothing written)"
	case counts.Failed > 0:
		return fmt.Sprintf("Completed with %d failure(s)", counts.Failed)
	case counts.Skipped > 0:
		return fmt.Sprintf("Completed with %d skipped item(s)", counts.Skipped)
	default:
		return "Complete"
	}
}

const timeLayout = "2006-01-02 15:04:05 MST"
