// Package pipeline processes work items through a fixed sequence of steps.
//
// Each work item gets its own Pipeline: redact the document into its output
// path, compute a digest of the saved copy, and optionally delete the
// original. A Pipeline stops at the first failing step and records the
// failure on the item's outcome, so one bad document never affects another.
//
// BatchProcessor drives many item pipelines with a concurrency limit
// (errgroup.SetLimit). With the default limit of 1 items are processed
// strictly one after another in enumeration order.
package pipeline
