package strategy

import (
	"context"

	"github.com/nao1215/stampout/internal/model"
	"github.com/nao1215/stampout/internal/plan"
	"github.com/spf13/afero"
)

// Parenting visits each immediate subdirectory of the root. A subdirectory
// holding exactly one document yields a work item whose output is
// outputPath/<stem>/<stem><suffix><ext>. Zero or several documents
// yield an anomaly. Documents directly under the root are not redacted.
type Parenting struct{}

// Kind implements Strategy.
func (Parenting) Kind() Kind { return KindParenting }

// Enumerate implements Strategy.
func (Parenting) Enumerate(fsys afero.Fs, p *plan.Plan) (*Enumeration, error) {
	w := newWalker(fsys, p)
	root := p.RootInputPath()

	top, err := w.list(root)
	if err != nil {
		return nil, rootUnreadable(root, err)
	}

	c := newCollector()
	for _, dir := range top.dirs {
		l, err := w.list(dir)
		if err != nil {
			unreadable(c, dir, err)
			continue
		}
		w.single(c, dir, l)
	}
	return c.enumeration(), nil
}

// Run implements Strategy.
func (s Parenting) Run(ctx context.Context, p *plan.Plan, rt Runtime) (*model.RunReport, error) {
	return run(ctx, s, p, rt)
}

func (Parenting) sealed() {}
