package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultPlanFile is the plan file looked up in the working directory when
// no --plan flag is given.
const DefaultPlanFile = "plan.json"

// planFileCandidates are tried in order by FindPlanFile.
var planFileCandidates = []string{DefaultPlanFile, "plan.yaml", "plan.yml"}

// Format is the encoding of a plan document.
type Format int

const (
	// FormatJSON is the default plan encoding.
	FormatJSON Format = iota

	// FormatYAML is selected for files ending in .yaml or .yml.
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFromPath picks the plan encoding from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Raw is an unvalidated plan: the key/value structure decoded from a plan
// document. It must go through Validate before it can drive a run.
type Raw map[string]any

// Load reads and decodes the plan file at path.
// It returns an *Error of kind ErrConfigNotFound when the file does not
// exist and of kind ErrConfigMalformed when it cannot be decoded.
func Load(fsys afero.Fs, path string) (Raw, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: ErrConfigNotFound, Path: path}
		}
		return nil, &Error{Kind: ErrConfigNotFound, Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &Error{Kind: ErrConfigNotFound, Path: path, Reason: "path is a directory"}
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}

	raw, err := Decode(data, FormatFromPath(path))
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return raw, nil
}

// Decode parses a plan document. The top-level value must be an object.
func Decode(data []byte, format Format) (Raw, error) {
	var doc any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, &Error{Kind: ErrConfigMalformed, Reason: "cannot decode " + format.String(), Err: err}
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &Error{Kind: ErrConfigMalformed, Reason: "top-level value must be an object"}
	}
	return Raw(obj), nil
}

// FindPlanFile returns the plan file to use.
// An explicit path is returned as-is when it exists. Otherwise plan.json,
// plan.yaml and plan.yml are tried in dir. It returns "" when nothing is found.
func FindPlanFile(fsys afero.Fs, explicit, dir string) string {
	if explicit != "" {
		if _, err := fsys.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	for _, name := range planFileCandidates {
		candidate := filepath.Join(dir, name)
		if info, err := fsys.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
