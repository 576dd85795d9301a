package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Job describes one redaction session.
type Job struct {
	// Source is the document to redact.
	Source string

	// Destination is where the redacted copy is written.
	Destination string

	// Texts are searched on every page. Marks for all texts are accumulated
	// before they are applied, once per page.
	Texts []string

	// Compact is passed to Save.
	Compact bool
}

// Result reports what a session did.
type Result struct {
	// Pages is the page count of the source document.
	Pages int

	// Matches is the number of marks applied.
	Matches int

	// PagesRedacted is the number of pages that had at least one mark.
	PagesRedacted int
}

// Redact opens job.Source with engine, redacts every occurrence of
// job.Texts, and saves the result to job.Destination.
//
// The copy is first written to a temporary file next to the destination,
// synced, and then renamed into place, so job.Destination either holds a
// complete document or is left untouched. The document handle is closed on
// every path.
func Redact(ctx context.Context, fsys afero.Fs, engine Engine, job Job) (res Result, err error) {
	if engine == nil {
		return res, errors.New("no document engine")
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	doc, err := engine.Open(job.Source)
	if err != nil {
		return res, fmt.Errorf("failed to open %s: %w", job.Source, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", job.Source, cerr)
		}
	}()

	res.Pages = doc.PageCount()
	for page := 0; page < res.Pages; page++ {
		marked, err := markPage(doc, page, job.Texts)
		if err != nil {
			return res, err
		}
		if marked == 0 {
			continue
		}
		if err := doc.ApplyRedactions(page, ApplyOptions{Images: ImagesUntouched}); err != nil {
			return res, fmt.Errorf("failed to apply redactions on page %d: %w", page+1, err)
		}
		res.Matches += marked
		res.PagesRedacted++
	}

	if err := saveAtomic(fsys, doc, job.Destination, SaveOptions{Compact: job.Compact}); err != nil {
		return res, err
	}
	return res, nil
}

// markPage adds a mark for every match of every text on page and returns
// the number of marks added.
func markPage(doc Document, page int, texts []string) (int, error) {
	marked := 0
	for _, text := range texts {
		quads, err := doc.Search(page, text)
		if err != nil {
			return marked, fmt.Errorf("failed to search page %d: %w", page+1, err)
		}
		for _, q := range quads {
			if err := doc.MarkRedaction(page, q); err != nil {
				return marked, fmt.Errorf("failed to mark page %d: %w", page+1, err)
			}
			marked++
		}
	}
	return marked, nil
}

// saveAtomic saves doc to a temporary sibling of dst, syncs it and renames
// it over dst. The temporary file is removed on failure.
func saveAtomic(fsys afero.Fs, doc Document, dst string, opts SaveOptions) (err error) {
	dir := filepath.Dir(dst)
	if err := fsys.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = fsys.Remove(tmpName)
		}
	}()

	if err := doc.Save(tmpName, opts); err != nil {
		return fmt.Errorf("failed to save %s: %w", dst, err)
	}
	if err := syncFile(fsys, tmpName); err != nil {
		return err
	}
	if err := fsys.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("failed to move redacted copy to %s: %w", dst, err)
	}
	return nil
}

func syncFile(fsys afero.Fs, name string) error {
	f, err := fsys.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s for sync: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	return f.Close()
}
