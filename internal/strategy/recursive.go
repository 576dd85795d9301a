package strategy

import (
	"context"

	"github.com/nao1215/stampout/internal/model"
	"github.com/nao1215/stampout/internal/plan"
	"github.com/spf13/afero"
)

// Recursive applies the one-document-per-directory rule at every depth,
// starting with the root itself. Directories are visited depth first in
// name order.
//
// A directory holding one document yields a work item. A directory holding
// several yields an ambiguity anomaly. A directory holding none is only an
// anomaly when it has no subdirectory to descend into; otherwise it is a
// plain container. Traversal continues below every directory either way.
type Recursive struct{}

// Kind implements Strategy.
func (Recursive) Kind() Kind { return KindRecursive }

// Enumerate implements Strategy.
func (Recursive) Enumerate(fsys afero.Fs, p *plan.Plan) (*Enumeration, error) {
	w := newWalker(fsys, p)
	root := p.RootInputPath()

	l, err := w.list(root)
	if err != nil {
		return nil, rootUnreadable(root, err)
	}

	c := newCollector()
	w.descend(c, root, l)
	return c.enumeration(), nil
}

func (w *walker) descend(c *collector, dir string, l *listing) {
	if len(l.documents) > 0 || len(l.dirs) == 0 {
		w.single(c, dir, l)
	}

	for _, sub := range l.dirs {
		child, err := w.list(sub)
		if err != nil {
			unreadable(c, sub, err)
			continue
		}
		w.descend(c, sub, child)
	}
}

// Run implements Strategy.
func (s Recursive) Run(ctx context.Context, p *plan.Plan, rt Runtime) (*model.RunReport, error) {
	return run(ctx, s, p, rt)
}

func (Recursive) sealed() {}
