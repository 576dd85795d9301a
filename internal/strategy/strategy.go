package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/stampout/internal/model"
	"github.com/nao1215/stampout/internal/plan"
	"github.com/spf13/afero"
)

// Kind names a traversal strategy.
type Kind string

const (
	// KindSingleFile redacts the root input document itself.
	KindSingleFile Kind = "single_file"

	// KindList redacts every document directly under the root directory.
	KindList Kind = "list"

	// KindParenting redacts the one document held by each immediate
	// subdirectory of the root.
	KindParenting Kind = "parenting"

	// KindRecursive redacts the one document held by each directory at any
	// depth below the root.
	KindRecursive Kind = "recursive"
)

// ErrUnsupportedStrategy is the sentinel matched by *UnsupportedError.
var ErrUnsupportedStrategy = errors.New("unsupported strategy")

// UnsupportedError reports a mode pair with no strategy.
type UnsupportedError struct {
	Root   plan.RootMode
	Folder plan.FolderMode
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: rootMode %q with folderMode %q", ErrUnsupportedStrategy, e.Root, e.Folder)
}

// Is reports whether target is ErrUnsupportedStrategy.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupportedStrategy
}

// Strategy is one of SingleFile, List, Parenting or Recursive.
// The interface is sealed; no other implementation exists.
type Strategy interface {
	// Kind returns the strategy name.
	Kind() Kind

	// Enumerate lists the work items and anomalies for p in processing
	// order. It only reads directory listings.
	Enumerate(fsys afero.Fs, p *plan.Plan) (*Enumeration, error)

	// Run enumerates, processes every work item and returns the report.
	Run(ctx context.Context, p *plan.Plan, rt Runtime) (*model.RunReport, error)

	sealed()
}

// Select returns the strategy for a validated plan.
func Select(p *plan.Plan) (Strategy, error) {
	return SelectModes(p.RootMode(), p.FolderMode())
}

// SelectModes returns the strategy for a mode pair. It is a pure function.
func SelectModes(root plan.RootMode, folder plan.FolderMode) (Strategy, error) {
	switch {
	case root == plan.RootSingle && folder == plan.FolderSingle:
		return SingleFile{}, nil
	case root == plan.RootMulti && folder == plan.FolderList:
		return List{}, nil
	case root == plan.RootMulti && folder == plan.FolderParenting:
		return Parenting{}, nil
	case root == plan.RootMulti && folder == plan.FolderRecursive:
		return Recursive{}, nil
	default:
		return nil, &UnsupportedError{Root: root, Folder: folder}
	}
}
