package model

import (
	"time"
)

// Status is the final state of a single work item.
type Status string

const (
	// StatusSucceeded means the document was redacted and saved.
	StatusSucceeded Status = "succeeded"

	// StatusSkipped means the item was never attempted because of an anomaly
	// detected during traversal (missing or ambiguous document, duplicate output).
	StatusSkipped Status = "skipped"

	// StatusFailed means the item was attempted but a step failed.
	StatusFailed Status = "failed"

	// StatusPlanned means the item was enumerated during a dry run and
	// intentionally not processed.
	StatusPlanned Status = "planned"
)

// AnomalyKind classifies a recoverable, per-item problem.
// Anomalies are recorded and reported but never abort a run.
type AnomalyKind string

const (
	// AnomalyNone is the zero value: the item has no anomaly.
	AnomalyNone AnomalyKind = ""

	// AnomalyNoDocument means a directory that should hold exactly one
	// document holds none.
	AnomalyNoDocument AnomalyKind = "no_document"

	// AnomalyAmbiguous means a directory that should hold exactly one
	// document holds several, so the target cannot be chosen.
	AnomalyAmbiguous AnomalyKind = "ambiguous_documents"

	// AnomalyUnreadableDir means a directory below the root could not be listed.
	AnomalyUnreadableDir AnomalyKind = "unreadable_directory"

	// AnomalyDuplicateOutput means two work items resolved to the same output
	// path. Only the first one is kept.
	AnomalyDuplicateOutput AnomalyKind = "duplicate_output"

	// AnomalyRedactionFailed means opening, redacting or saving the document failed.
	AnomalyRedactionFailed AnomalyKind = "redaction_failed"

	// AnomalyDeleteFailed means the redacted copy was saved but the original
	// could not be removed afterwards.
	AnomalyDeleteFailed AnomalyKind = "delete_failed"
)

// WorkItem is one document to redact and the path its redacted copy goes to.
type WorkItem struct {
	// Source is the absolute path of the document to redact.
	Source string `json:"source"`

	// Output is the absolute path of the redacted copy.
	Output string `json:"output"`

	// Dir is the directory the item was discovered in.
	Dir string `json:"dir"`
}

// ItemOutcome records what happened to one work item, or to one directory
// that could not produce a work item.
type ItemOutcome struct {
	WorkItem

	// Status is the final state of the item.
	Status Status `json:"status"`

	// Anomaly classifies the problem when Status is skipped or failed.
	Anomaly AnomalyKind `json:"anomaly,omitempty"`

	// Message is a human-readable description of the anomaly or failure.
	Message string `json:"message,omitempty"`

	// Candidates lists the documents found in an ambiguous directory.
	Candidates []string `json:"candidates,omitempty"`

	// Matches is the number of redaction marks applied across all pages.
	Matches int `json:"matches"`

	// PagesRedacted is the number of pages on which at least one mark was applied.
	PagesRedacted int `json:"pages_redacted"`

	// Saved reports whether the redacted copy was durably written.
	Saved bool `json:"saved"`

	// Deleted reports whether the original document was removed.
	Deleted bool `json:"deleted"`

	// Digest is the SHA3-256 of the saved output, hex encoded.
	Digest string `json:"digest,omitempty"`

	// Steps lists the pipeline steps that completed for this item.
	Steps []string `json:"steps,omitempty"`

	// Duration is the wall-clock time spent processing the item.
	Duration time.Duration `json:"duration"`
}

// NewItemOutcome creates a pending outcome for a work item.
func NewItemOutcome(item WorkItem) *ItemOutcome {
	return &ItemOutcome{
		WorkItem: item,
		Steps:    make([]string, 0),
	}
}

// NewAnomaly creates a skipped outcome describing a traversal anomaly.
func NewAnomaly(dir string, kind AnomalyKind, message string, candidates ...string) *ItemOutcome {
	return &ItemOutcome{
		WorkItem:   WorkItem{Dir: dir},
		Status:     StatusSkipped,
		Anomaly:    kind,
		Message:    message,
		Candidates: candidates,
	}
}

// Fail marks the outcome as failed with the given anomaly kind.
func (o *ItemOutcome) Fail(kind AnomalyKind, err error) {
	o.Status = StatusFailed
	o.Anomaly = kind
	if err != nil {
		o.Message = err.Error()
	}
}

// Label returns the most specific path identifying the outcome.
func (o *ItemOutcome) Label() string {
	if o.Source != "" {
		return o.Source
	}
	return o.Dir
}
