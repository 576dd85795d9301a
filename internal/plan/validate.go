package plan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
)

// Option configures Validate.
type Option func(*validateOptions)

type validateOptions struct {
	baseDir string
}

// WithBaseDir sets the directory that relative plan paths are resolved
// against. It defaults to the current working directory.
func WithBaseDir(dir string) Option {
	return func(o *validateOptions) {
		o.baseDir = dir
	}
}

// Validate converts a raw plan into a *Plan.
//
// Checks run in a fixed order and stop at the first failure:
//  1. rootMode and folderMode, then presence and canonicalization of both paths
//  2. rootInputPath existence and type
//  3. outputPath collision and type, with ignoreOutputPathIntegrity
//  4. deleteOriginal and compact, excludedFolderNames and the other optional lists
//  5. redactionTexts
//
// Validate only reads filesystem metadata through fsys.
func Validate(fsys afero.Fs, raw Raw, opts ...Option) (*Plan, error) {
	if raw == nil {
		return nil, malformed("", "plan is empty")
	}

	o := validateOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		o.baseDir = wd
	}

	p := &Plan{}

	rootMode, folderMode, err := validateModes(raw)
	if err != nil {
		return nil, err
	}
	p.rootMode = rootMode
	p.folderMode = folderMode

	if p.rootInputPath, err = requiredPath(raw, KeyRootInputPath, o.baseDir); err != nil {
		return nil, err
	}
	if p.outputPath, err = requiredPath(raw, KeyOutputPath, o.baseDir); err != nil {
		return nil, err
	}

	if err := validateRootInput(fsys, p); err != nil {
		return nil, err
	}

	// The override flag is part of the collision rule.
	if p.continueEvenIfExists, err = boolField(raw, KeyIgnoreOutputPathIntegrity); err != nil {
		return nil, err
	}
	if err := validateOutput(fsys, p); err != nil {
		return nil, err
	}

	if p.deleteOriginal, err = boolField(raw, KeyDeleteOriginal); err != nil {
		return nil, err
	}
	if p.compact, err = boolField(raw, KeyCompact); err != nil {
		return nil, err
	}

	if err := validateLists(raw, p); err != nil {
		return nil, err
	}

	texts, err := redactionTexts(raw)
	if err != nil {
		return nil, err
	}
	p.redactionTexts = texts

	return p, nil
}

// validateModes applies the mode defaults: rootMode defaults to single, and
// folderMode is forced to single for a single root or defaults to list.
func validateModes(raw Raw) (RootMode, FolderMode, error) {
	rootValue, present, err := stringField(raw, KeyRootMode)
	if err != nil {
		return 0, 0, err
	}
	rootMode := RootSingle
	if present {
		if rootMode, err = ParseRootMode(rootValue); err != nil {
			return 0, 0, &Error{Kind: ErrConfigMalformed, Field: KeyRootMode, Err: err}
		}
	}

	if rootMode == RootSingle {
		return RootSingle, FolderSingle, nil
	}

	folderValue, present, err := stringField(raw, KeyFolderMode)
	if err != nil {
		return 0, 0, err
	}
	if !present {
		return RootMulti, FolderList, nil
	}
	folderMode, err := ParseFolderMode(folderValue)
	if err != nil {
		return 0, 0, &Error{Kind: ErrConfigMalformed, Field: KeyFolderMode, Err: err}
	}
	if folderMode == FolderSingle {
		return 0, 0, malformed(KeyFolderMode, "folder mode 'single' requires root mode 'single'")
	}
	return RootMulti, folderMode, nil
}

// requiredPath reads a path key and resolves it to an absolute, clean path.
func requiredPath(raw Raw, key, baseDir string) (string, error) {
	value, present, err := stringField(raw, key)
	if err != nil {
		return "", err
	}
	if !present || strings.TrimSpace(value) == "" {
		return "", malformed(key, "required key is missing")
	}
	if !filepath.IsAbs(value) {
		value = filepath.Join(baseDir, value)
	}
	return filepath.Clean(value), nil
}

func validateRootInput(fsys afero.Fs, p *Plan) error {
	info, err := fsys.Stat(p.rootInputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return invalidPath(KeyRootInputPath, p.rootInputPath, "does not exist", nil)
		}
		return invalidPath(KeyRootInputPath, p.rootInputPath, "cannot be inspected", err)
	}

	switch p.rootMode {
	case RootSingle:
		if !info.Mode().IsRegular() {
			return invalidPath(KeyRootInputPath, p.rootInputPath, "root mode 'single' requires a regular file", nil)
		}
	default:
		if !info.IsDir() {
			return invalidPath(KeyRootInputPath, p.rootInputPath, "root mode 'multi' requires a directory", nil)
		}
	}
	return nil
}

func validateOutput(fsys afero.Fs, p *Plan) error {
	if p.outputPath == p.rootInputPath && !(p.rootMode == RootMulti && p.folderMode != FolderList) {
		return invalidPath(KeyOutputPath, p.outputPath, "output path must differ from the root input path", nil)
	}

	info, err := fsys.Stat(p.outputPath)
	switch {
	case err == nil:
		if !p.continueEvenIfExists {
			return &Error{
				Kind:   ErrOutputCollision,
				Field:  KeyOutputPath,
				Path:   p.outputPath,
				Reason: "set " + KeyIgnoreOutputPathIntegrity + " to reuse it",
			}
		}
		if p.rootMode != RootSingle && info.Mode().IsRegular() {
			return invalidPath(KeyOutputPath, p.outputPath, "output of a multi-document plan must be a directory", nil)
		}
		if p.rootMode == RootSingle && info.IsDir() {
			return invalidPath(KeyOutputPath, p.outputPath, "output of a single-document plan must be a file", nil)
		}
	case errors.Is(err, fs.ErrNotExist):
		if p.rootMode == RootSingle {
			parent := filepath.Dir(p.outputPath)
			parentInfo, perr := fsys.Stat(parent)
			if perr != nil || !parentInfo.IsDir() {
				return invalidPath(KeyOutputPath, p.outputPath, "parent directory does not exist", perr)
			}
		}
	default:
		return invalidPath(KeyOutputPath, p.outputPath, "cannot be inspected", err)
	}
	return nil
}

func validateLists(raw Raw, p *Plan) error {
	excluded, _, err := stringListField(raw, KeyExcludedFolderNames)
	if err != nil {
		return err
	}
	p.excludedFolderNames = make([]string, 0, len(excluded))
	p.excluded = make(map[string]struct{}, len(excluded))
	for _, name := range excluded {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return malformed(KeyExcludedFolderNames, fmt.Sprintf("%q is not a plain directory name", name))
		}
		if _, dup := p.excluded[name]; dup {
			continue
		}
		p.excluded[name] = struct{}{}
		p.excludedFolderNames = append(p.excludedFolderNames, name)
	}

	patterns, _, err := stringListField(raw, KeyIgnorePatterns)
	if err != nil {
		return err
	}
	p.ignorePatterns = make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		p.ignorePatterns = append(p.ignorePatterns, pattern)
	}

	extensions, present, err := stringListField(raw, KeyExtensions)
	if err != nil {
		return err
	}
	if !present {
		extensions = []string{DefaultExtension}
	}
	p.extensions = make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			return malformed(KeyExtensions, "extensions must not be empty")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(p.extensions, ext) {
			p.extensions = append(p.extensions, ext)
		}
	}
	if len(p.extensions) == 0 {
		return malformed(KeyExtensions, "at least one extension is required")
	}

	suffix, present, err := stringField(raw, KeyOutputSuffix)
	if err != nil {
		return err
	}
	if !present {
		suffix = DefaultOutputSuffix
	}
	if strings.ContainsAny(suffix, `/\`) {
		return malformed(KeyOutputSuffix, "suffix must not contain path separators")
	}
	p.outputSuffix = suffix
	return nil
}

// redactionTexts reads the texts to redact. Texts are kept as written.
// Blank entries are dropped, and entries equal under NFC normalization are
// duplicates; the first spelling is kept.
func redactionTexts(raw Raw) ([]string, error) {
	values, present, err := stringListField(raw, KeyRedactionTexts)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, &Error{Kind: ErrEmptyRedactionSet, Field: KeyRedactionTexts, Reason: "required key is missing"}
	}

	texts := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		key := norm.NFC.String(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		texts = append(texts, v)
	}
	if len(texts) == 0 {
		return nil, &Error{Kind: ErrEmptyRedactionSet, Field: KeyRedactionTexts, Reason: "list is empty"}
	}
	return texts, nil
}

// lookup returns a value, treating an explicit null as absent.
func lookup(raw Raw, key string) (any, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func stringField(raw Raw, key string) (string, bool, error) {
	v, ok := lookup(raw, key)
	if !ok {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", false, malformed(key, fmt.Sprintf("expected a string, got %T", v))
	}
	return s, true, nil
}

func boolField(raw Raw, key string) (bool, error) {
	v, ok := lookup(raw, key)
	if !ok {
		return false, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, malformed(key, fmt.Sprintf("expected a boolean, got %T", v))
	}
	return b, nil
}

func stringListField(raw Raw, key string) ([]string, bool, error) {
	v, ok := lookup(raw, key)
	if !ok {
		return nil, false, nil
	}
	switch list := v.(type) {
	case []string:
		return slices.Clone(list), true, nil
	case []any:
		result := make([]string, 0, len(list))
		for i, item := range list {
			s, isString := item.(string)
			if !isString {
				return nil, false, malformed(key, fmt.Sprintf("entry %d: expected a string, got %T", i, item))
			}
			result = append(result, s)
		}
		return result, true, nil
	default:
		return nil, false, malformed(key, fmt.Sprintf("expected a list of strings, got %T", v))
	}
}
