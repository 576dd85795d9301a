package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/stampout/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeDocuments(md, report)
	w.writeAnomalies(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Stampout Report")
	md.PlainText("")

	rows := [][]string{
		{"Strategy", "`" + report.Strategy + "`"},
		{"Root mode", report.RootMode},
		{"Folder mode", report.FolderMode},
		{"Input", "`" + report.RootInputPath + "`"},
		{"Output", "`" + report.OutputPath + "`"},
		{"Started", report.StartedAt.Format(timeLayout)},
		{"Status", w.getStatusText(report)},
	}
	if report.PlanPath != "" {
		rows = append([][]string{{"Plan", "`" + report.PlanPath + "`"}}, rows...)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.RunReport) string {
	counts := report.Counts()
	switch {
	case report.DryRun:
		return "📝 " + statusText(report)
	case counts.Failed > 0:
		return "❌ " + statusText(report)
	case counts.Skipped > 0:
		return "⚠️ " + statusText(report)
	default:
		return "✅ " + statusText(report)
	}
}

// writeSummary writes the totals table, a status chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	counts := report.Counts()

	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows: [][]string{
			{"✅ Succeeded", strconv.Itoa(counts.Succeeded)},
			{"⚠️ Skipped", strconv.Itoa(counts.Skipped)},
			{"❌ Failed", strconv.Itoa(counts.Failed)},
			{"📝 Planned", strconv.Itoa(counts.Planned)},
			{"**Matches redacted**", "**" + strconv.Itoa(counts.Matches) + "**"},
		},
	})
	md.PlainText("")

	if counts.Total > 0 {
		w.writePieChart(md, counts)
	}

	w.writeAlert(md, report, counts)
}

// writePieChart writes a mermaid pie chart of item statuses.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts model.Counts) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Item Status"),
		piechart.WithShowData(true),
	)

	if counts.Succeeded > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(counts.Succeeded))
	}
	if counts.Skipped > 0 {
		chart.LabelAndIntValue("Skipped", uint64(counts.Skipped))
	}
	if counts.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(counts.Failed))
	}
	if counts.Planned > 0 {
		chart.LabelAndIntValue("Planned", uint64(counts.Planned))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing how the run ended.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RunReport, counts model.Counts) {
	switch {
	case report.DryRun:
		md.Notef("Dry run: %d document(s) would be redacted. Nothing was written.", counts.Planned)
	case counts.Failed > 0:
		md.Cautionf("%d document(s) could not be redacted. Their originals were kept.", counts.Failed)
	case counts.Skipped > 0:
		md.Warningf("%d item(s) were skipped. See the anomalies below.", counts.Skipped)
	case counts.Total == 0:
		md.Important("No document was found.")
	default:
		md.Tip("Every document was redacted.")
	}
	md.PlainText("")
}

// writeDocuments writes the processed or planned documents.
func (w *MarkdownWriter) writeDocuments(md *markdown.Markdown, report *model.RunReport) {
	status := model.StatusSucceeded
	title := "Redacted Documents"
	if report.DryRun {
		status = model.StatusPlanned
		title = "Planned Documents"
	}

	md.H2(title)
	md.PlainText("")

	items := report.ItemsByStatus(status)
	if len(items) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(items))
	for i, item := range items {
		deleted := "-"
		if item.Deleted {
			deleted = "yes"
		}
		rows[i] = []string{
			cell(item.Source, 60),
			cell(item.Output, 60),
			strconv.Itoa(item.Matches),
			strconv.Itoa(item.PagesRedacted),
			deleted,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Source", "Output", "Matches", "Pages", "Original deleted"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAnomalies writes skipped and failed items.
func (w *MarkdownWriter) writeAnomalies(md *markdown.Markdown, report *model.RunReport) {
	items := append(report.ItemsByStatus(model.StatusSkipped), report.ItemsByStatus(model.StatusFailed)...)
	if len(items) == 0 {
		return
	}

	md.H2("Anomalies")
	md.PlainText("")

	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{
			cell(item.Label(), 60),
			string(item.Status),
			string(item.Anomaly),
			cell(item.Message, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Path", "Status", "Anomaly", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, item := range items {
		if len(item.Candidates) > 0 {
			md.Details(item.Label(), strings.Join(item.Candidates, "\n"))
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [stampout](https://github.com/nao1215/stampout)*")
}

// WriteHistory outputs the run listing as a Markdown table.
func (w *MarkdownWriter) WriteHistory(runs []*model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Stampout History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No runs recorded.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		counts := run.Counts()
		dry := "-"
		if run.DryRun {
			dry = "yes"
		}
		rows[i] = []string{
			strconv.FormatInt(run.ID, 10),
			run.StartedAt.Format(timeLayout),
			run.Strategy,
			dry,
			strconv.Itoa(counts.Succeeded),
			strconv.Itoa(counts.Skipped),
			strconv.Itoa(counts.Failed),
			cell(run.RootInputPath, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Strategy", "Dry run", "Succeeded", "Skipped", "Failed", "Input"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// cell escapes table separators and truncates long values.
func cell(s string, maxLen int) string {
	if s == "" {
		return "-"
	}
	return truncateString(strings.ReplaceAll(s, "|", `\|`), maxLen)
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
