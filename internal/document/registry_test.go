package document_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/nao1215/stampout/internal/document"
	"github.com/nao1215/stampout/internal/document/documenttest"
	"github.com/spf13/afero"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	engine := documenttest.NewEngine(afero.NewMemMapFs())
	document.Register("registry-test", engine)

	t.Run("lookup returns the registered engine", func(t *testing.T) {
		t.Parallel()

		got, err := document.Lookup("registry-test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != engine {
			t.Error("expected the registered engine")
		}
	})

	t.Run("unknown engine", func(t *testing.T) {
		t.Parallel()

		_, err := document.Lookup("no-such-engine")
		if !errors.Is(err, document.ErrEngineNotRegistered) {
			t.Errorf("expected ErrEngineNotRegistered, got %v", err)
		}
	})

	t.Run("engines lists names", func(t *testing.T) {
		t.Parallel()

		if !slices.Contains(document.Engines(), "registry-test") {
			t.Errorf("expected registry-test in %v", document.Engines())
		}
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		document.Register("registry-test", engine)
	})
}
