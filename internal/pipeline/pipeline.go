package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/stampout/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the outcome modified by the
// previous steps.
type Step interface {
	// Do executes the step for one work item.
	// A returned error stops the pipeline and marks the item failed.
	Do(ctx context.Context, outcome *model.ItemOutcome) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// failureKinder is implemented by steps whose failures are classified
// differently from a redaction failure.
type failureKinder interface {
	FailureKind() model.AnomalyKind
}

// Pipeline orchestrates the execution of multiple steps for one work item.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in sequence for one work item.
//
// Cancellation is checked before each step. The first failing step marks the
// outcome failed and stops the pipeline; its error is returned. When every
// step succeeds the outcome is marked succeeded.
func (p *Pipeline) Execute(ctx context.Context, outcome *model.ItemOutcome) error {
	start := time.Now()
	defer func() {
		outcome.Duration = time.Since(start)
	}()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"source", outcome.Source,
				"reason", ctx.Err(),
			)
			outcome.Fail(model.AnomalyRedactionFailed, ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"source", outcome.Source,
		)

		if err := step.Do(ctx, outcome); err != nil {
			kind := model.AnomalyRedactionFailed
			if k, ok := step.(failureKinder); ok {
				kind = k.FailureKind()
			}
			outcome.Fail(kind, err)
			return err
		}

		outcome.Steps = append(outcome.Steps, step.Name())
	}

	outcome.Status = model.StatusSucceeded
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
