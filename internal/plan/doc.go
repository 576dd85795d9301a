// Package plan turns a loosely-typed plan document into a validated,
// immutable RedactionPlan.
//
// The package has two halves:
//   - Load and Decode read a JSON or YAML plan document into a Raw map
//   - Validate checks a Raw map and returns a *Plan
//
// A *Plan can only be obtained from Validate. Its fields are unexported and
// exposed through accessors, so code holding a *Plan never sees a partially
// validated value. Validation is fail-fast and only reads filesystem
// metadata; it never writes.
package plan
