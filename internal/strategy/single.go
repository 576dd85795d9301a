package strategy

import (
	"context"
	"path/filepath"

	"github.com/nao1215/stampout/internal/model"
	"github.com/nao1215/stampout/internal/plan"
	"github.com/spf13/afero"
)

// SingleFile redacts the root input document into the output path.
type SingleFile struct{}

// Kind implements Strategy.
func (SingleFile) Kind() Kind { return KindSingleFile }

// Enumerate implements Strategy. It always yields exactly one work item.
func (SingleFile) Enumerate(_ afero.Fs, p *plan.Plan) (*Enumeration, error) {
	c := newCollector()
	c.item(model.WorkItem{
		Source: p.RootInputPath(),
		Output: p.OutputPath(),
		Dir:    filepath.Dir(p.RootInputPath()),
	})
	return c.enumeration(), nil
}

// Run implements Strategy.
func (s SingleFile) Run(ctx context.Context, p *plan.Plan, rt Runtime) (*model.RunReport, error) {
	return run(ctx, s, p, rt)
}

func (SingleFile) sealed() {}
