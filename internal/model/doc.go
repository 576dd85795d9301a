// Package model defines the data structures shared by the redaction engine.
//
// This package contains the following main types:
//   - WorkItem: One concrete (source document, output path) pair to redact
//   - ItemOutcome: The result of processing or skipping one work item
//   - RunReport: The aggregated result of a whole run
//
// Models live in their own package so that the strategy, pipeline, report
// and database packages can share them without import cycles.
//
// The models are serializable to JSON for report output and history storage.
package model
