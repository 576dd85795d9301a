package strategy

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/stampout/internal/document"
	"github.com/nao1215/stampout/internal/model"
	"github.com/nao1215/stampout/internal/pipeline"
	"github.com/nao1215/stampout/internal/plan"
	"github.com/spf13/afero"
)

// ErrNoEngine is returned by Run when a real run has no document engine.
var ErrNoEngine = errors.New("no document engine configured")

// Runtime carries what a strategy needs besides the plan.
type Runtime struct {
	// Fs is the filesystem documents are read from and written to.
	// Defaults to the OS filesystem.
	Fs afero.Fs

	// Engine redacts documents. It is not needed for a dry run.
	Engine document.Engine

	// Concurrency is the number of documents processed at once.
	// Defaults to 1.
	Concurrency int

	// DryRun enumerates work items and marks them planned without
	// opening any document.
	DryRun bool

	// Logger receives one warning per anomaly and the run summary.
	Logger *slog.Logger
}

func (rt Runtime) withDefaults() Runtime {
	if rt.Fs == nil {
		rt.Fs = afero.NewOsFs()
	}
	if rt.Concurrency <= 0 {
		rt.Concurrency = pipeline.DefaultConcurrency
	}
	if rt.Logger == nil {
		rt.Logger = slog.Default()
	}
	return rt
}

// run is shared by every strategy: enumerate, report anomalies, process the
// work items and merge everything back in enumeration order.
func run(ctx context.Context, s Strategy, p *plan.Plan, rt Runtime) (*model.RunReport, error) {
	rt = rt.withDefaults()
	logger := rt.Logger.With("strategy", string(s.Kind()))

	if !rt.DryRun && rt.Engine == nil {
		return nil, ErrNoEngine
	}

	report := model.NewRunReport(string(s.Kind()))
	report.RootMode = p.RootMode().String()
	report.FolderMode = p.FolderMode().String()
	report.RootInputPath = p.RootInputPath()
	report.OutputPath = p.OutputPath()
	report.DryRun = rt.DryRun

	enum, err := s.Enumerate(rt.Fs, p)
	if err != nil {
		return nil, err
	}

	for _, a := range enum.Anomalies() {
		logger.Warn("skipping",
			"path", a.Label(),
			"anomaly", string(a.Anomaly),
			"reason", a.Message,
		)
	}

	items := enum.Items()
	logger.Debug("enumerated work items",
		"items", len(items),
		"anomalies", len(enum.Entries)-len(items),
	)

	var results []*model.ItemOutcome
	var runErr error
	if rt.DryRun {
		results = make([]*model.ItemOutcome, len(items))
		for i, item := range items {
			outcome := model.NewItemOutcome(item)
			outcome.Status = model.StatusPlanned
			results[i] = outcome
		}
	} else {
		bp := pipeline.NewBatchProcessor(
			pipeline.ForPlan(p, rt.Fs, rt.Engine, logger),
			pipeline.WithConcurrency(rt.Concurrency),
			pipeline.WithBatchLogger(logger),
		)
		results, runErr = bp.ProcessBatch(ctx, items)
	}

	next := 0
	for _, entry := range enum.Entries {
		if entry.Anomaly != model.AnomalyNone {
			report.Add(entry)
			continue
		}
		report.Add(results[next])
		next++
	}
	report.Finish()

	counts := report.Counts()
	logger.Info("run complete",
		"succeeded", counts.Succeeded,
		"skipped", counts.Skipped,
		"failed", counts.Failed,
		"planned", counts.Planned,
		"elapsed", report.Elapsed(),
	)

	return report, runErr
}
