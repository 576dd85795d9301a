package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/stampout/internal/document"
	"github.com/nao1215/stampout/internal/model"
	"github.com/nao1215/stampout/internal/plan"
	"github.com/spf13/afero"
	"golang.org/x/crypto/sha3"
)

// Step names as recorded in ItemOutcome.Steps.
const (
	StepRedact         = "redact"
	StepDigest         = "digest"
	StepDeleteOriginal = "delete_original"
)

// RedactStep writes the redacted copy of the item's source to its output.
type RedactStep struct {
	fs      afero.Fs
	engine  document.Engine
	texts   []string
	compact bool
	logger  *slog.Logger
}

// RedactStepOption configures a RedactStep.
type RedactStepOption func(*RedactStep)

// WithCompact saves documents compacted.
func WithCompact(compact bool) RedactStepOption {
	return func(s *RedactStep) {
		s.compact = compact
	}
}

// WithRedactLogger sets a custom logger for the redact step.
func WithRedactLogger(logger *slog.Logger) RedactStepOption {
	return func(s *RedactStep) {
		s.logger = logger
	}
}

// NewRedactStep creates a redact step for the given texts.
func NewRedactStep(fsys afero.Fs, engine document.Engine, texts []string, opts ...RedactStepOption) *RedactStep {
	s := &RedactStep{
		fs:     fsys,
		engine: engine,
		texts:  texts,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RedactStep) Name() string {
	return StepRedact
}

// Do executes the redact step.
func (s *RedactStep) Do(ctx context.Context, outcome *model.ItemOutcome) error {
	res, err := document.Redact(ctx, s.fs, s.engine, document.Job{
		Source:      outcome.Source,
		Destination: outcome.Output,
		Texts:       s.texts,
		Compact:     s.compact,
	})
	if err != nil {
		return err
	}

	outcome.Matches = res.Matches
	outcome.PagesRedacted = res.PagesRedacted
	outcome.Saved = true

	if res.Matches == 0 {
		s.logger.Debug("no redaction text found", "source", outcome.Source, "pages", res.Pages)
	}
	return nil
}

// DigestStep records the SHA3-256 of the saved output.
type DigestStep struct {
	fs afero.Fs
}

// NewDigestStep creates a digest step.
func NewDigestStep(fsys afero.Fs) *DigestStep {
	return &DigestStep{fs: fsys}
}

// Name returns the step name.
func (s *DigestStep) Name() string {
	return StepDigest
}

// Do executes the digest step.
func (s *DigestStep) Do(_ context.Context, outcome *model.ItemOutcome) error {
	digest, err := FileDigest(s.fs, outcome.Output)
	if err != nil {
		return err
	}
	outcome.Digest = digest
	return nil
}

// FileDigest returns the hex-encoded SHA3-256 of a file.
func FileDigest(fsys afero.Fs, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for digest: %w", path, err)
	}
	defer f.Close()

	h := sha3.New256()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s for digest: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ErrNotSaved is returned by DeleteOriginalStep when the redacted copy was
// not saved, so the original must be kept.
var ErrNotSaved = errors.New("redacted copy was not saved")

// DeleteOriginalStep removes the item's source after its redacted copy has
// been saved.
type DeleteOriginalStep struct {
	fs afero.Fs
}

// NewDeleteOriginalStep creates a delete step.
func NewDeleteOriginalStep(fsys afero.Fs) *DeleteOriginalStep {
	return &DeleteOriginalStep{fs: fsys}
}

// Name returns the step name.
func (s *DeleteOriginalStep) Name() string {
	return StepDeleteOriginal
}

// FailureKind classifies delete failures separately from redaction failures.
func (s *DeleteOriginalStep) FailureKind() model.AnomalyKind {
	return model.AnomalyDeleteFailed
}

// Do executes the delete step.
func (s *DeleteOriginalStep) Do(_ context.Context, outcome *model.ItemOutcome) error {
	if !outcome.Saved {
		return ErrNotSaved
	}
	if outcome.Source == outcome.Output {
		return fmt.Errorf("refusing to delete %s: it is also the output", outcome.Source)
	}
	if err := s.fs.Remove(outcome.Source); err != nil {
		return fmt.Errorf("failed to delete original %s: %w", outcome.Source, err)
	}
	outcome.Deleted = true
	return nil
}

// ForPlan returns a factory building the pipeline a plan needs for each
// work item: redact, digest and, when the plan asks for it, delete_original.
func ForPlan(p *plan.Plan, fsys afero.Fs, engine document.Engine, logger *slog.Logger) func() *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	texts := p.RedactionTexts()

	return func() *Pipeline {
		pl := New(WithLogger(logger))
		pl.AddSteps(
			NewRedactStep(fsys, engine, texts,
				WithCompact(p.Compact()),
				WithRedactLogger(logger),
			),
			NewDigestStep(fsys),
		)
		if p.DeleteOriginal() {
			pl.AddStep(NewDeleteOriginalStep(fsys))
		}
		return pl
	}
}
