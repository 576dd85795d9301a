package plan

import (
	"path/filepath"
	"slices"
	"strings"
)

// Plan keys recognized in a plan document.
const (
	KeyRootMode                  = "rootMode"
	KeyFolderMode                = "folderMode"
	KeyDeleteOriginal            = "deleteOriginal"
	KeyIgnoreOutputPathIntegrity = "ignoreOutputPathIntegrity"
	KeyRootInputPath             = "rootInputPath"
	KeyOutputPath                = "outputPath"
	KeyExcludedFolderNames       = "excludedFolderNames"
	KeyRedactionTexts            = "redactionTexts"
	KeyExtensions                = "extensions"
	KeyCompact                   = "compact"
	KeyOutputSuffix              = "outputSuffix"
	KeyIgnorePatterns            = "ignorePatterns"
)

// Defaults for the optional plan keys.
const (
	// DefaultOutputSuffix is appended to the stem of documents redacted by
	// the parenting and recursive strategies.
	DefaultOutputSuffix = "_r"

	// DefaultExtension is the document extension recognized when the plan
	// does not list any.
	DefaultExtension = ".pdf"
)

// Plan is a validated redaction plan. It is immutable and can only be
// obtained from Validate.
type Plan struct {
	rootMode             RootMode
	folderMode           FolderMode
	deleteOriginal       bool
	continueEvenIfExists bool
	compact              bool
	rootInputPath        string
	outputPath           string
	excludedFolderNames  []string
	excluded             map[string]struct{}
	ignorePatterns       []string
	extensions           []string
	outputSuffix         string
	redactionTexts       []string
}

// RootMode returns the root mode.
func (p *Plan) RootMode() RootMode { return p.rootMode }

// FolderMode returns the folder mode. It is FolderSingle exactly when the
// root mode is RootSingle.
func (p *Plan) FolderMode() FolderMode { return p.folderMode }

// DeleteOriginal reports whether sources are removed after a successful save.
func (p *Plan) DeleteOriginal() bool { return p.deleteOriginal }

// ContinueEvenIfExists reports whether an existing output path is tolerated.
func (p *Plan) ContinueEvenIfExists() bool { return p.continueEvenIfExists }

// Compact reports whether documents are saved compacted.
func (p *Plan) Compact() bool { return p.compact }

// RootInputPath returns the absolute, cleaned root input path.
func (p *Plan) RootInputPath() string { return p.rootInputPath }

// OutputPath returns the absolute, cleaned output path.
func (p *Plan) OutputPath() string { return p.outputPath }

// OutputSuffix returns the suffix used for parenting and recursive outputs.
func (p *Plan) OutputSuffix() string { return p.outputSuffix }

// ExcludedFolderNames returns the excluded directory names in plan order.
func (p *Plan) ExcludedFolderNames() []string { return slices.Clone(p.excludedFolderNames) }

// IgnorePatterns returns the gitignore-style patterns in plan order.
func (p *Plan) IgnorePatterns() []string { return slices.Clone(p.ignorePatterns) }

// Extensions returns the recognized document extensions, lower case with a
// leading dot.
func (p *Plan) Extensions() []string { return slices.Clone(p.extensions) }

// RedactionTexts returns the texts to redact in plan order.
func (p *Plan) RedactionTexts() []string { return slices.Clone(p.redactionTexts) }

// IsExcluded reports whether a directory or file name is excluded.
// Only the name is compared, never the full path.
func (p *Plan) IsExcluded(name string) bool {
	_, ok := p.excluded[name]
	return ok
}

// IsDocument reports whether a file name carries a recognized extension.
func (p *Plan) IsDocument(name string) bool {
	return slices.Contains(p.extensions, strings.ToLower(filepath.Ext(name)))
}

// Equal reports whether two plans are field-for-field identical.
func (p *Plan) Equal(other *Plan) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.rootMode == other.rootMode &&
		p.folderMode == other.folderMode &&
		p.deleteOriginal == other.deleteOriginal &&
		p.continueEvenIfExists == other.continueEvenIfExists &&
		p.compact == other.compact &&
		p.rootInputPath == other.rootInputPath &&
		p.outputPath == other.outputPath &&
		p.outputSuffix == other.outputSuffix &&
		slices.Equal(p.excludedFolderNames, other.excludedFolderNames) &&
		slices.Equal(p.ignorePatterns, other.ignorePatterns) &&
		slices.Equal(p.extensions, other.extensions) &&
		slices.Equal(p.redactionTexts, other.redactionTexts)
}

// Snapshot is an exported copy of a Plan for printing and serialization.
type Snapshot struct {
	RootMode             RootMode   `json:"rootMode" yaml:"rootMode"`
	FolderMode           FolderMode `json:"folderMode" yaml:"folderMode"`
	DeleteOriginal       bool       `json:"deleteOriginal" yaml:"deleteOriginal"`
	ContinueEvenIfExists bool       `json:"ignoreOutputPathIntegrity" yaml:"ignoreOutputPathIntegrity"`
	Compact              bool       `json:"compact" yaml:"compact"`
	RootInputPath        string     `json:"rootInputPath" yaml:"rootInputPath"`
	OutputPath           string     `json:"outputPath" yaml:"outputPath"`
	ExcludedFolderNames  []string   `json:"excludedFolderNames" yaml:"excludedFolderNames"`
	IgnorePatterns       []string   `json:"ignorePatterns" yaml:"ignorePatterns"`
	Extensions           []string   `json:"extensions" yaml:"extensions"`
	OutputSuffix         string     `json:"outputSuffix" yaml:"outputSuffix"`
	RedactionTextCount   int        `json:"redactionTextCount" yaml:"redactionTextCount"`
}

// Snapshot returns a serializable view of the plan. Redaction texts are
// reported by count only so that they do not leak into reports.
func (p *Plan) Snapshot() Snapshot {
	return Snapshot{
		RootMode:             p.rootMode,
		FolderMode:           p.folderMode,
		DeleteOriginal:       p.deleteOriginal,
		ContinueEvenIfExists: p.continueEvenIfExists,
		Compact:              p.compact,
		RootInputPath:        p.rootInputPath,
		OutputPath:           p.outputPath,
		ExcludedFolderNames:  p.ExcludedFolderNames(),
		IgnorePatterns:       p.IgnorePatterns(),
		Extensions:           p.Extensions(),
		OutputSuffix:         p.outputSuffix,
		RedactionTextCount:   len(p.redactionTexts),
	}
}
