package model

import (
	"time"
)

// RunReport aggregates the outcome of every work item in one run.
type RunReport struct {
	// ID is the history database identifier. Zero until the run is saved.
	ID int64 `json:"id,omitempty"`

	// PlanPath is the plan file the run was started from.
	PlanPath string `json:"plan_path,omitempty"`

	// Strategy is the traversal strategy that produced the work items.
	Strategy string `json:"strategy"`

	// RootMode and FolderMode echo the validated plan.
	RootMode   string `json:"root_mode"`
	FolderMode string `json:"folder_mode"`

	// RootInputPath and OutputPath echo the validated plan.
	RootInputPath string `json:"root_input_path"`
	OutputPath    string `json:"output_path"`

	// DryRun is true when items were enumerated but not processed.
	DryRun bool `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Items holds outcomes in enumeration order, anomalies included.
	Items []ItemOutcome `json:"items"`
}

// Counts summarizes a RunReport.
type Counts struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Planned   int `json:"planned"`
	Matches   int `json:"matches"`
	Deleted   int `json:"deleted"`
}

// NewRunReport creates an empty report stamped with the current time.
func NewRunReport(strategy string) *RunReport {
	return &RunReport{
		Strategy:  strategy,
		StartedAt: time.Now(),
		Items:     make([]ItemOutcome, 0),
	}
}

// Add appends an outcome to the report.
func (r *RunReport) Add(outcome *ItemOutcome) {
	if outcome == nil {
		return
	}
	r.Items = append(r.Items, *outcome)
}

// Finish stamps the end time.
func (r *RunReport) Finish() {
	r.FinishedAt = time.Now()
}

// Elapsed returns the duration of the run.
func (r *RunReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Counts tallies the items by status.
func (r *RunReport) Counts() Counts {
	c := Counts{Total: len(r.Items)}
	for _, item := range r.Items {
		switch item.Status {
		case StatusSucceeded:
			c.Succeeded++
		case StatusSkipped:
			c.Skipped++
		case StatusFailed:
			c.Failed++
		case StatusPlanned:
			c.Planned++
		}
		c.Matches += item.Matches
		if item.Deleted {
			c.Deleted++
		}
	}
	return c
}

// HasAnomalies reports whether any item was skipped or failed.
func (r *RunReport) HasAnomalies() bool {
	for _, item := range r.Items {
		if item.Anomaly != AnomalyNone {
			return true
		}
	}
	return false
}

// ItemsByStatus returns the outcomes with the given status, in order.
func (r *RunReport) ItemsByStatus(status Status) []ItemOutcome {
	result := make([]ItemOutcome, 0)
	for _, item := range r.Items {
		if item.Status == status {
			result = append(result, item)
		}
	}
	return result
}

// HasFailures reports whether any item was attempted and failed.
func (r *RunReport) HasFailures() bool {
	for _, item := range r.Items {
		if item.Status == StatusFailed {
			return true
		}
	}
	return false
}
