package plan

import (
	"errors"
	"strings"
)

// Plan errors. Validate and Load return an *Error whose Kind is one of these
// sentinels, so callers can use errors.Is to branch on the failure.
var (
	// ErrConfigNotFound is returned when the plan file does not exist.
	ErrConfigNotFound = errors.New("plan file not found")

	// ErrConfigMalformed is returned when the plan cannot be parsed, when a
	// required key is missing or when a value has the wrong shape.
	ErrConfigMalformed = errors.New("malformed plan")

	// ErrPathInvalid is returned when the root input path or the output path
	// fails its existence or type check.
	ErrPathInvalid = errors.New("invalid path")

	// ErrOutputCollision is returned when the output path already exists and
	// ignoreOutputPathIntegrity is not set.
	ErrOutputCollision = errors.New("output path already exists")

	// ErrEmptyRedactionSet is returned when the plan carries no redaction text.
	ErrEmptyRedactionSet = errors.New("no redaction texts")
)

// Error describes why a plan was rejected.
type Error struct {
	// Kind is one of the package sentinel errors.
	Kind error

	// Field is the plan key at fault, if any.
	Field string

	// Path is the filesystem path at fault, if any.
	Path string

	// Reason is a short human-readable explanation.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the sentinel kind and the underlying cause to errors.Is
// and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(field, reason string) *Error {
	return &Error{Kind: ErrConfigMalformed, Field: field, Reason: reason}
}

func invalidPath(field, path, reason string, cause error) *Error {
	return &Error{Kind: ErrPathInvalid, Field: field, Path: path, Reason: reason, Err: cause}
}
