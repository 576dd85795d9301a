package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/stampout/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency processes one item at a time.
const DefaultConcurrency = 1

// BatchProcessor runs one pipeline per work item.
// It uses errgroup to manage goroutines and respect the concurrency limit.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each item.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of items processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of items processed at once.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// pipelineFactory is called once per item so that no state leaks between items.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// Concurrency returns the configured concurrency limit.
func (bp *BatchProcessor) Concurrency() int {
	return bp.concurrency
}

// ProcessBatch processes every work item and returns one outcome per item,
// in the order of items. A failed item never stops the batch; its failure is
// recorded on its outcome. The error is non-nil only when ctx is cancelled.
//
// Callers must not pass two items with the same output path.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, items []model.WorkItem) ([]*model.ItemOutcome, error) {
	bp.logger.Debug("starting batch processing",
		"total_items", len(items),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.ItemOutcome, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, item := range items {
		outcome := model.NewItemOutcome(item)
		results[i] = outcome

		g.Go(func() error {
			select {
			case <-ctx.Done():
				outcome.Fail(model.AnomalyRedactionFailed, ctx.Err())
				return ctx.Err()
			default:
			}

			bp.logger.Debug("processing document",
				"source", item.Source,
				"index", i+1,
				"total", len(items),
			)

			if err := bp.pipelineFactory().Execute(ctx, outcome); err != nil {
				bp.logger.Warn("document failed",
					"source", item.Source,
					"anomaly", string(outcome.Anomaly),
					"error", err,
				)
				return nil
			}

			bp.logger.Info("document redacted",
				"source", item.Source,
				"output", item.Output,
				"matches", outcome.Matches,
			)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Debug("batch processing complete",
		"total_items", len(items),
		"elapsed", time.Since(startTime),
	)

	return results, err
}
