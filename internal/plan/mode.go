package plan

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// RootMode tells whether the root input path is one document or a directory.
type RootMode int

const (
	// RootSingle means the root input path is itself the document to redact.
	RootSingle RootMode = iota

	// RootMulti means the root input path is a directory holding documents.
	RootMulti
)

// String returns the plan-file spelling of the mode.
func (m RootMode) String() string {
	switch m {
	case RootSingle:
		return "single"
	case RootMulti:
		return "multi"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m RootMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseRootMode parses a rootMode value. Matching is case-insensitive.
func ParseRootMode(s string) (RootMode, error) {
	switch foldMode(s) {
	case "single":
		return RootSingle, nil
	case "multi":
		return RootMulti, nil
	default:
		return RootSingle, fmt.Errorf("unknown root mode %q (must be 'single' or 'multi')", s)
	}
}

// FolderMode is the directory topology under a multi-document root.
type FolderMode int

const (
	// FolderSingle disables folder handling. It is the only folder mode
	// allowed with RootSingle.
	FolderSingle FolderMode = iota

	// FolderList means the root directory directly contains the documents.
	FolderList

	// FolderParenting means each immediate subdirectory of the root holds
	// exactly one document.
	FolderParenting

	// FolderRecursive means directories at any depth below the root hold one
	// document each.
	FolderRecursive
)

// String returns the plan-file spelling of the mode.
func (m FolderMode) String() string {
	switch m {
	case FolderSingle:
		return "single"
	case FolderList:
		return "list"
	case FolderParenting:
		return "parenting"
	case FolderRecursive:
		return "recursive"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m FolderMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseFolderMode parses a folderMode value. Matching is case-insensitive and
// the legacy spelling "parenting_singles" is accepted for parenting.
func ParseFolderMode(s string) (FolderMode, error) {
	switch foldMode(s) {
	case "single":
		return FolderSingle, nil
	case "list":
		return FolderList, nil
	case "parenting", "parenting_singles":
		return FolderParenting, nil
	case "recursive":
		return FolderRecursive, nil
	default:
		return FolderSingle, fmt.Errorf("unknown folder mode %q (must be 'single', 'list', 'parenting' or 'recursive')", s)
	}
}

// foldMode normalizes a mode value for comparison.
func foldMode(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
