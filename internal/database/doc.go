// Package database provides SQLite-based run history for stampout.
//
// RunDB stores:
//   - One row per run (plan, strategy, modes, paths, timing)
//   - One row per enumerated item, anomalies included, in enumeration order
//
// The history answers "what happened to this document last time" without
// re-reading report files. SQLite via modernc.org/sqlite keeps the binary
// CGO-free and the database a single file under the XDG data directory.
package database
