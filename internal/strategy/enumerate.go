package strategy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/monochromegane/go-gitignore"
	"github.com/nao1215/stampout/internal/model"
	"github.com/nao1215/stampout/internal/plan"
	"github.com/spf13/afero"
)

// Enumeration is the ordered result of a traversal. Each entry is either a
// pending work item (no anomaly) or a skipped anomaly.
type Enumeration struct {
	Entries []*model.ItemOutcome
}

// Items returns the pending work items in order.
func (e *Enumeration) Items() []model.WorkItem {
	items := make([]model.WorkItem, 0, len(e.Entries))
	for _, entry := range e.Entries {
		if entry.Anomaly == model.AnomalyNone {
			items = append(items, entry.WorkItem)
		}
	}
	return items
}

// Anomalies returns the anomalies in order.
func (e *Enumeration) Anomalies() []*model.ItemOutcome {
	anomalies := make([]*model.ItemOutcome, 0)
	for _, entry := range e.Entries {
		if entry.Anomaly != model.AnomalyNone {
			anomalies = append(anomalies, entry)
		}
	}
	return anomalies
}

// collector builds an Enumeration and guarantees at most one work item per
// output path.
type collector struct {
	entries []*model.ItemOutcome
	outputs map[string]string
}

func newCollector() *collector {
	return &collector{
		entries: make([]*model.ItemOutcome, 0),
		outputs: make(map[string]string),
	}
}

func (c *collector) item(item model.WorkItem) {
	if item.Output == item.Source {
		c.duplicate(item, "output path is the source document itself")
		return
	}
	if prev, ok := c.outputs[item.Output]; ok {
		c.duplicate(item, fmt.Sprintf("output path is already written from %s", prev))
		return
	}
	c.outputs[item.Output] = item.Source
	c.entries = append(c.entries, model.NewItemOutcome(item))
}

func (c *collector) duplicate(item model.WorkItem, msg string) {
	a := model.NewAnomaly(item.Dir, model.AnomalyDuplicateOutput, msg)
	a.WorkItem = item
	c.entries = append(c.entries, a)
}

func (c *collector) anomaly(dir string, kind model.AnomalyKind, msg string, candidates ...string) {
	c.entries = append(c.entries, model.NewAnomaly(dir, kind, msg, candidates...))
}

func (c *collector) enumeration() *Enumeration {
	return &Enumeration{Entries: c.entries}
}

// walker holds the per-plan filters shared by the directory strategies.
type walker struct {
	fs      afero.Fs
	plan    *plan.Plan
	ignore  gitignore.IgnoreMatcher
	outRoot string
}

func newWalker(fsys afero.Fs, p *plan.Plan) *walker {
	w := &walker{
		fs:      fsys,
		plan:    p,
		outRoot: p.OutputPath(),
	}
	if patterns := p.IgnorePatterns(); len(patterns) > 0 {
		w.ignore = gitignore.NewGitIgnoreFromReader(p.RootInputPath(), strings.NewReader(strings.Join(patterns, "\n")))
	}
	return w
}

// listing is the filtered content of one directory.
type listing struct {
	documents []string
	dirs      []string
}

// list reads the complete listing of dir before any decision is taken.
// Entries are sorted by name. Symbolic links are never followed.
func (w *walker) list(dir string) (*listing, error) {
	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return nil, err
	}

	l := &listing{}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if w.skipDir(path, entry) {
				continue
			}
			l.dirs = append(l.dirs, path)
		case entry.Mode().IsRegular():
			if !w.plan.IsDocument(entry.Name()) || w.plan.IsExcluded(entry.Name()) || w.ignored(path, false) {
				continue
			}
			l.documents = append(l.documents, path)
		}
	}
	return l, nil
}

func (w *walker) skipDir(path string, entry os.FileInfo) bool {
	return w.plan.IsExcluded(entry.Name()) || path == w.outRoot || w.ignored(path, true)
}

func (w *walker) ignored(path string, isDir bool) bool {
	return w.ignore != nil && w.ignore.Match(path, isDir)
}

// suffixedOutput returns the output of a document found by the one-document
// rule: a new directory named after the document stem, placed under the
// parent of the document's directory relative to the root, holding
// <stem><suffix><ext>. A document directly in the root goes to
// outputPath/<stem>/.
func (w *walker) suffixedOutput(source string) string {
	root := w.plan.RootInputPath()
	dir := filepath.Dir(source)
	rel := "."
	if dir != root {
		if r, err := filepath.Rel(root, filepath.Dir(dir)); err == nil {
			rel = r
		}
	}
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(w.outRoot, rel, stem, stem+w.plan.OutputSuffix()+ext)
}

// single decides on a directory that must hold exactly one document.
func (w *walker) single(c *collector, dir string, l *listing) {
	switch len(l.documents) {
	case 1:
		source := l.documents[0]
		c.item(model.WorkItem{Source: source, Output: w.suffixedOutput(source), Dir: dir})
	case 0:
		c.anomaly(dir, model.AnomalyNoDocument, "directory holds no document")
	default:
		c.anomaly(dir, model.AnomalyAmbiguous,
			fmt.Sprintf("directory holds %d documents; expected exactly one", len(l.documents)),
			l.documents...)
	}
}

func unreadable(c *collector, dir string, err error) {
	c.anomaly(dir, model.AnomalyUnreadableDir, err.Error())
}

func rootUnreadable(root string, err error) error {
	return fmt.Errorf("failed to read root input directory %s: %w", root, err)
}
