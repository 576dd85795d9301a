package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/stampout/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds digests, steps and ambiguity candidates.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeItems(&sb, report)
	w.writeSummary(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

func rule(sb *strings.Builder, c string) {
	sb.WriteString(strings.Repeat(c, 70))
	sb.WriteString("\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	rule(sb, "=")
	sb.WriteString("                         STAMPOUT REPORT\n")
	rule(sb, "=")
	sb.WriteString("\n")

	if report.ID > 0 {
		fmt.Fprintf(sb, "Run:        #%d\n", report.ID)
	}
	if report.PlanPath != "" {
		fmt.Fprintf(sb, "Plan:       %s\n", report.PlanPath)
	}
	fmt.Fprintf(sb, "Strategy:   %s (rootMode=%s, folderMode=%s)\n", report.Strategy, report.RootMode, report.FolderMode)
	fmt.Fprintf(sb, "Input:      %s\n", report.RootInputPath)
	fmt.Fprintf(sb, "Output:     %s\n", report.OutputPath)
	fmt.Fprintf(sb, "Started:    %s\n", report.StartedAt.Format(timeLayout))
	fmt.Fprintf(sb, "Status:     %s\n", statusText(report))
	sb.WriteString("\n")
}

// writeItems writes one line per item in enumeration order.
func (w *SimpleWriter) writeItems(sb *strings.Builder, report *model.RunReport) {
	rule(sb, "-")
	sb.WriteString("ITEMS\n")
	rule(sb, "-")
	sb.WriteString("\n")

	if len(report.Items) == 0 {
		sb.WriteString("  No documents found\n\n")
		return
	}

	for _, item := range report.Items {
		switch item.Status {
		case model.StatusSucceeded:
			fmt.Fprintf(sb, "  [OK]   %s -> %s (%d match(es) on %d page(s))", item.Source, item.Output, item.Matches, item.PagesRedacted)
			if item.Deleted {
				sb.WriteString(", original deleted")
			}
			sb.WriteString("\n")
		case model.StatusPlanned:
			fmt.Fprintf(sb, "  [PLAN] %s -> %s\n", item.Source, item.Output)
		case model.StatusFailed:
			fmt.Fprintf(sb, "  [FAIL] %s: %s: %s\n", item.Label(), item.Anomaly, item.Message)
		default:
			fmt.Fprintf(sb, "  [SKIP] %s: %s: %s\n", item.Label(), item.Anomaly, item.Message)
		}

		if !w.verbose {
			continue
		}
		for _, c := range item.Candidates {
			fmt.Fprintf(sb, "         candidate: %s\n", c)
		}
		if item.Digest != "" {
			fmt.Fprintf(sb, "         sha3-256:  %s\n", item.Digest)
		}
		if len(item.Steps) > 0 {
			fmt.Fprintf(sb, "         steps:     %s\n", strings.Join(item.Steps, ", "))
		}
	}
	sb.WriteString("\n")
}

// writeSummary writes the totals.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	counts := report.Counts()

	rule(sb, "-")
	sb.WriteString("SUMMARY\n")
	rule(sb, "-")
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  SUCCEEDED: %d\n", counts.Succeeded)
	fmt.Fprintf(sb, "  SKIPPED:   %d\n", counts.Skipped)
	fmt.Fprintf(sb, "  FAILED:    %d\n", counts.Failed)
	if counts.Planned > 0 {
		fmt.Fprintf(sb, "  PLANNED:   %d\n", counts.Planned)
	}
	fmt.Fprintf(sb, "  MATCHES:   %d\n", counts.Matches)
	if counts.Deleted > 0 {
		fmt.Fprintf(sb, "  DELETED:   %d\n", counts.Deleted)
	}
	fmt.Fprintf(sb, "\n  Elapsed:   %s\n", report.Elapsed().Round(time.Millisecond))
	rule(sb, "=")
}

// WriteHistory outputs one line per past run.
func (w *SimpleWriter) WriteHistory(runs []*model.RunReport) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No runs recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "%-6s %-24s %-12s %5s %5s %5s  %s\n", "ID", "STARTED", "STRATEGY", "OK", "SKIP", "FAIL", "INPUT")
	for _, run := range runs {
		counts := run.Counts()
		strategy := run.Strategy
		if run.DryRun {
			strategy += "*"
		}
		fmt.Fprintf(&sb, "%-6d %-24s %-12s %5d %5d %5d  %s\n",
			run.ID,
			run.StartedAt.Format(timeLayout),
			strategy,
			counts.Succeeded,
			counts.Skipped,
			counts.Failed,
			run.RootInputPath,
		)
	}
	return w.output.Write([]byte(sb.String()))
}
