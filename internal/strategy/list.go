package strategy

import (
	"context"
	"path/filepath"

	"github.com/nao1215/stampout/internal/model"
	"github.com/nao1215/stampout/internal/plan"
	"github.com/spf13/afero"
)

// List redacts every document directly under the root directory into
// outputPath/<base name>. Subdirectories are not visited, and files whose
// name is excluded are skipped.
type List struct{}

// Kind implements Strategy.
func (List) Kind() Kind { return KindList }

// Enumerate implements Strategy.
func (List) Enumerate(fsys afero.Fs, p *plan.Plan) (*Enumeration, error) {
	w := newWalker(fsys, p)
	root := p.RootInputPath()

	l, err := w.list(root)
	if err != nil {
		return nil, rootUnreadable(root, err)
	}

	c := newCollector()
	if len(l.documents) == 0 {
		c.anomaly(root, model.AnomalyNoDocument, "root directory holds no document")
	}
	for _, source := range l.documents {
		c.item(model.WorkItem{
			Source: source,
			Output: filepath.Join(p.OutputPath(), filepath.Base(source)),
			Dir:    root,
		})
	}
	return c.enumeration(), nil
}

// Run implements Strategy.
func (s List) Run(ctx context.Context, p *plan.Plan, rt Runtime) (*model.RunReport, error) {
	return run(ctx, s, p, rt)
}

func (List) sealed() {}
