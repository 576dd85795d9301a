package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/stampout/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, outcome *model.ItemOutcome) error
	kind      model.AnomalyKind
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, outcome *model.ItemOutcome) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, outcome)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// kindedStep is a mockStep that classifies its own failures.
type kindedStep struct {
	mockStep
}

func (k *kindedStep) FailureKind() model.AnomalyKind {
	return k.kind
}

func newOutcome() *model.ItemOutcome {
	return model.NewItemOutcome(model.WorkItem{Source: "/in/a.pdf", Output: "/out/a.pdf", Dir: "/in"})
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	p := New()

	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.StepCount() != 0 {
		t.Errorf("expected 0 steps, got %d", p.StepCount())
	}
	if p.logger == nil {
		t.Error("expected default logger")
	}
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "step-1"}, &mockStep{name: "step-2"})
		p.AddStep(&mockStep{name: "step-3"})

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddStep(&mockStep{name: "second"})
		p.AddStep(&mockStep{name: "third"})

		names := p.StepNames()

		expected := []string{"first", "second", "third"}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order and succeeds", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)

		p := New()
		p.AddStep(&mockStep{
			name: "step-1",
			doFunc: func(_ context.Context, _ *model.ItemOutcome) error {
				executionOrder = append(executionOrder, "step-1")
				return nil
			},
		})
		p.AddStep(&mockStep{
			name: "step-2",
			doFunc: func(_ context.Context, _ *model.ItemOutcome) error {
				executionOrder = append(executionOrder, "step-2")
				return nil
			},
		})

		outcome := newOutcome()
		if err := p.Execute(context.Background(), outcome); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(executionOrder) != 2 || executionOrder[0] != "step-1" || executionOrder[1] != "step-2" {
			t.Errorf("wrong execution order: %v", executionOrder)
		}
		if outcome.Status != model.StatusSucceeded {
			t.Errorf("expected succeeded, got %s", outcome.Status)
		}
		if len(outcome.Steps) != 2 {
			t.Errorf("expected 2 recorded steps, got %v", outcome.Steps)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		second := &mockStep{name: "should-not-run"}

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.ItemOutcome) error {
				return expectedErr
			},
		})
		p.AddStep(second)

		outcome := newOutcome()
		err := p.Execute(context.Background(), outcome)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have been called")
		}
		if outcome.Status != model.StatusFailed {
			t.Errorf("expected failed, got %s", outcome.Status)
		}
		if outcome.Anomaly != model.AnomalyRedactionFailed {
			t.Errorf("expected redaction_failed, got %s", outcome.Anomaly)
		}
		if outcome.Message != "step failed" {
			t.Errorf("expected message to be recorded, got %q", outcome.Message)
		}
	})

	t.Run("step can classify its failure", func(t *testing.T) {
		t.Parallel()

		step := &kindedStep{mockStep{
			name: "delete",
			kind: model.AnomalyDeleteFailed,
			doFunc: func(_ context.Context, _ *model.ItemOutcome) error {
				return errors.New("permission denied")
			},
		}}

		p := New()
		p.AddStep(step)

		outcome := newOutcome()
		_ = p.Execute(context.Background(), outcome)

		if outcome.Anomaly != model.AnomalyDeleteFailed {
			t.Errorf("expected delete_failed, got %s", outcome.Anomaly)
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New()
		p.AddStep(step)

		outcome := newOutcome()
		err := p.Execute(ctx, outcome)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not run after cancellation")
		}
		if outcome.Status != model.StatusFailed {
			t.Errorf("expected failed, got %s", outcome.Status)
		}
	})
}
