// Package documenttest provides an in-memory document engine for tests.
//
// Documents are plain text files stored in an afero.Fs. A form feed ("\f")
// separates pages. Applying a redaction replaces every byte of each marked
// match with '#', and Save writes the pages back joined by form feeds.
package documenttest

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/nao1215/stampout/internal/document"
	"github.com/spf13/afero"
)

// PageSeparator separates pages in a fake document.
const PageSeparator = "\f"

// Mask is the byte written over redacted text.
const Mask = '#'

// Engine is a fake document.Engine backed by an afero.Fs.
// It is safe for concurrent use.
type Engine struct {
	fs afero.Fs

	mu sync.Mutex

	// FailOpen makes Open fail for the listed paths.
	FailOpen map[string]error

	// FailSave makes Save fail for documents opened from the listed paths.
	FailSave map[string]error

	opened  int
	closed  int
	applied []document.ApplyOptions
	saved   []document.SaveOptions
}

// NewEngine returns an engine reading and writing documents in fsys.
func NewEngine(fsys afero.Fs) *Engine {
	return &Engine{
		fs:       fsys,
		FailOpen: make(map[string]error),
		FailSave: make(map[string]error),
	}
}

// Open implements document.Engine.
func (e *Engine) Open(path string) (document.Document, error) {
	e.mu.Lock()
	failure := e.FailOpen[path]
	e.mu.Unlock()
	if failure != nil {
		return nil, failure
	}

	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.opened++
	e.mu.Unlock()

	return &Document{
		engine: e,
		path:   path,
		pages:  strings.Split(string(data), PageSeparator),
		marks:  make(map[int][]span),
	}, nil
}

// Opened returns the number of documents opened so far.
func (e *Engine) Opened() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opened
}

// Closed returns the number of documents closed so far.
func (e *Engine) Closed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Applied returns the options of every ApplyRedactions call.
func (e *Engine) Applied() []document.ApplyOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.applied)
}

// Saved returns the options of every successful Save call.
func (e *Engine) Saved() []document.SaveOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.saved)
}

type span struct {
	start, end int
}

// Document is an open fake document.
type Document struct {
	engine *Engine
	path   string
	pages  []string
	marks  map[int][]span
	closed bool
}

var errClosed = errors.New("document is closed")

// PageCount implements document.Document.
func (d *Document) PageCount() int {
	return len(d.pages)
}

func (d *Document) checkPage(page int) error {
	if d.closed {
		return errClosed
	}
	if page < 0 || page >= len(d.pages) {
		return fmt.Errorf("page %d out of range", page)
	}
	return nil
}

// Search implements document.Document. Each quad spans the byte range of
// the match on the X axis and the page number on the Y axis.
func (d *Document) Search(page int, text string) ([]document.Quad, error) {
	if err := d.checkPage(page); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	var quads []document.Quad
	content := d.pages[page]
	offset := 0
	for {
		i := strings.Index(content[offset:], text)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(text)
		top, bottom := float64(page), float64(page+1)
		quads = append(quads, document.Quad{
			UL: document.Point{X: float64(start), Y: top},
			UR: document.Point{X: float64(end), Y: top},
			LL: document.Point{X: float64(start), Y: bottom},
			LR: document.Point{X: float64(end), Y: bottom},
		})
		offset = end
	}
	return quads, nil
}

// MarkRedaction implements document.Document.
func (d *Document) MarkRedaction(page int, quad document.Quad) error {
	if err := d.checkPage(page); err != nil {
		return err
	}
	start, end := int(quad.UL.X), int(quad.UR.X)
	if start < 0 || end > len(d.pages[page]) || start > end {
		return fmt.Errorf("quad outside page %d", page)
	}
	d.marks[page] = append(d.marks[page], span{start: start, end: end})
	return nil
}

// ApplyRedactions implements document.Document.
func (d *Document) ApplyRedactions(page int, opts document.ApplyOptions) error {
	if err := d.checkPage(page); err != nil {
		return err
	}

	b := []byte(d.pages[page])
	for _, s := range d.marks[page] {
		for i := s.start; i < s.end; i++ {
			b[i] = Mask
		}
	}
	d.pages[page] = string(b)
	delete(d.marks, page)

	d.engine.mu.Lock()
	d.engine.applied = append(d.engine.applied, opts)
	d.engine.mu.Unlock()
	return nil
}

// Save implements document.Document.
func (d *Document) Save(dst string, opts document.SaveOptions) error {
	if d.closed {
		return errClosed
	}

	d.engine.mu.Lock()
	failure := d.engine.FailSave[d.path]
	d.engine.mu.Unlock()
	if failure != nil {
		return failure
	}

	content := strings.Join(d.pages, PageSeparator)
	if err := afero.WriteFile(d.engine.fs, dst, []byte(content), 0o644); err != nil {
		return err
	}

	d.engine.mu.Lock()
	d.engine.saved = append(d.engine.saved, opts)
	d.engine.mu.Unlock()
	return nil
}

// Close implements document.Document.
func (d *Document) Close() error {
	if d.closed {
		return errClosed
	}
	d.closed = true

	d.engine.mu.Lock()
	d.engine.closed++
	d.engine.mu.Unlock()
	return nil
}

// Pages splits fake document content into pages.
func Pages(content string) []string {
	return strings.Split(content, PageSeparator)
}
