// Package document defines the contract stampout needs from a native
// document engine and drives one redaction session per document.
//
// The engine itself (text search, redaction marks, page rewriting) lives
// outside this module. An engine registers itself under a name with
// Register, in the same way database/sql drivers do, and callers pick it up
// with Lookup:
//
//	import _ "example.com/some/pdfengine" // registers "pdf"
//
//	engine, err := document.Lookup("pdf")
//
// Redact runs the whole open, search, mark, apply, save and close sequence
// for one document and guarantees that the handle is closed and that no
// partially written output is left behind on failure.
package document
