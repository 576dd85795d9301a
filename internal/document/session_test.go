package document_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/stampout/internal/document"
	"github.com/nao1215/stampout/internal/document/documenttest"
	"github.com/spf13/afero"
)

func writeDoc(t *testing.T, fsys afero.Fs, path string, pages ...string) {
	t.Helper()
	content := strings.Join(pages, documenttest.PageSeparator)
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestRedact(t *testing.T) {
	t.Parallel()

	t.Run("redacts every text on every page", func(t *testing.T) {
		t.Parallel()

		fsys := afero.NewMemMapFs()
		writeDoc(t, fsys, "/in/a.pdf",
			"Licensed to Bob. Chapter 1.",
			"No stamp here.",
			"WM WM Licensed to Bob",
		)
		engine := documenttest.NewEngine(fsys)

		res, err := document.Redact(context.Background(), fsys, engine, document.Job{
			Source:      "/in/a.pdf",
			Destination: "/out/a.pdf",
			Texts:       []string{"Licensed to Bob", "WM"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if res.Pages != 3 {
			t.Errorf("expected 3 pages, got %d", res.Pages)
		}
		if res.Matches != 4 {
			t.Errorf("expected 4 matches, got %d", res.Matches)
		}
		if res.PagesRedacted != 2 {
			t.Errorf("expected 2 redacted pages, got %d", res.PagesRedacted)
		}

		data, err := afero.ReadFile(fsys, "/out/a.pdf")
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		pages := documenttest.Pages(string(data))
		if strings.Contains(pages[0], "Licensed") || !strings.Contains(pages[0], "Chapter 1.") {
			t.Errorf("unexpected page 1 content: %q", pages[0])
		}
		if pages[1] != "No stamp here." {
			t.Errorf("expected page 2 untouched, got %q", pages[1])
		}
		if strings.Contains(pages[2], "WM") {
			t.Errorf("expected WM removed from page 3, got %q", pages[2])
		}

		original, _ := afero.ReadFile(fsys, "/in/a.pdf")
		if !strings.Contains(string(original), "Licensed to Bob") {
			t.Error("expected source document to be left unchanged")
		}
	})

	t.Run("applies once per page with images untouched", func(t *testing.T) {
		t.Parallel()

		fsys := afero.NewMemMapFs()
		writeDoc(t, fsys, "/a.pdf", "A B A B", "B")
		engine := documenttest.NewEngine(fsys)

		_, err := document.Redact(context.Background(), fsys, engine, document.Job{
			Source:      "/a.pdf",
			Destination: "/out/a.pdf",
			Texts:       []string{"A", "B"},
			Compact:     true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		applied := engine.Applied()
		if len(applied) != 2 {
			t.Fatalf("expected 2 apply calls, got %d", len(applied))
		}
		for _, opts := range applied {
			if opts.Images != document.ImagesUntouched {
				t.Errorf("expected images untouched, got %s", opts.Images)
			}
		}
		saved := engine.Saved()
		if len(saved) != 1 || !saved[0].Compact {
			t.Errorf("expected one compact save, got %+v", saved)
		}
	})

	t.Run("document without matches is still saved", func(t *testing.T) {
		t.Parallel()

		fsys := afero.NewMemMapFs()
		writeDoc(t, fsys, "/a.pdf", "clean")
		engine := documenttest.NewEngine(fsys)

		res, err := document.Redact(context.Background(), fsys, engine, document.Job{
			Source:      "/a.pdf",
			Destination: "/b.pdf",
			Texts:       []string{"WM"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Matches != 0 {
			t.Errorf("expected no matches, got %d", res.Matches)
		}
		if ok, _ := afero.Exists(fsys, "/b.pdf"); !ok {
			t.Error("expected output to exist")
		}
	})

	t.Run("open failure leaves nothing behind", func(t *testing.T) {
		t.Parallel()

		fsys := afero.NewMemMapFs()
		writeDoc(t, fsys, "/a.pdf", "WM")
		engine := documenttest.NewEngine(fsys)
		engine.FailOpen["/a.pdf"] = errors.New("encrypted")

		_, err := document.Redact(context.Background(), fsys, engine, document.Job{
			Source:      "/a.pdf",
			Destination: "/out/a.pdf",
			Texts:       []string{"WM"},
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if ok, _ := afero.Exists(fsys, "/out/a.pdf"); ok {
			t.Error("expected no output")
		}
	})

	t.Run("save failure closes the handle and removes the temporary file", func(t *testing.T) {
		t.Parallel()

		fsys := afero.NewMemMapFs()
		writeDoc(t, fsys, "/a.pdf", "WM")
		engine := documenttest.NewEngine(fsys)
		saveErr := errors.New("disk full")
		engine.FailSave["/a.pdf"] = saveErr

		_, err := document.Redact(context.Background(), fsys, engine, document.Job{
			Source:      "/a.pdf",
			Destination: "/out/a.pdf",
			Texts:       []string{"WM"},
		})
		if !errors.Is(err, saveErr) {
			t.Fatalf("expected save error, got %v", err)
		}
		if engine.Opened() != 1 || engine.Closed() != 1 {
			t.Errorf("expected 1 open and 1 close, got %d and %d", engine.Opened(), engine.Closed())
		}

		entries, err := afero.ReadDir(fsys, "/out")
		if err != nil {
			t.Fatalf("failed to read output dir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty output dir, got %d entries", len(entries))
		}
	})

	t.Run("existing destination is replaced", func(t *testing.T) {
		t.Parallel()

		fsys := afero.NewMemMapFs()
		writeDoc(t, fsys, "/a.pdf", "new WM")
		writeDoc(t, fsys, "/b.pdf", "old")
		engine := documenttest.NewEngine(fsys)

		if _, err := document.Redact(context.Background(), fsys, engine, document.Job{
			Source:      "/a.pdf",
			Destination: "/b.pdf",
			Texts:       []string{"WM"},
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, _ := afero.ReadFile(fsys, "/b.pdf")
		if string(data) != "new ##" {
			t.Errorf("expected %q, got %q", "new ##", string(data))
		}
	})

	t.Run("nil engine is an error", func(t *testing.T) {
		t.Parallel()

		_, err := document.Redact(context.Background(), afero.NewMemMapFs(), nil, document.Job{})
		if err == nil {
			t.Error("expected error")
		}
	})
}
