package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/stampout/internal/model"
)

// FileName is the name of the history database inside the database directory.
const FileName = "stampout.db"

// ErrRunNotFound is returned by GetRun when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// RunDB stores the history of redaction runs in SQLite.
//
// A run is one row in runs; every enumerated item, anomalies included,
// is one row in run_items keyed by the run and its enumeration position.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *RunDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		plan_path TEXT NOT NULL DEFAULT '',
		strategy TEXT NOT NULL,
		root_mode TEXT NOT NULL,
		folder_mode TEXT NOT NULL,
		root_input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS run_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		output TEXT NOT NULL DEFAULT '',
		dir TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		anomaly TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		candidates TEXT NOT NULL DEFAULT '[]',
		matches INTEGER NOT NULL DEFAULT 0,
		pages_redacted INTEGER NOT NULL DEFAULT 0,
		saved INTEGER NOT NULL DEFAULT 0,
		deleted INTEGER NOT NULL DEFAULT 0,
		digest TEXT NOT NULL DEFAULT '',
		steps TEXT NOT NULL DEFAULT '[]',
		duration INTEGER NOT NULL DEFAULT 0,
		UNIQUE(run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_run_items_source ON run_items(source);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a report and all of its items in one transaction.
// On success the report's ID is set and returned.
func (rdb *RunDB) SaveRun(ctx context.Context, report *model.RunReport) (int64, error) {
	if report == nil {
		return 0, errors.New("report is nil")
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (plan_path, strategy, root_mode, folder_mode, root_input_path,
		output_path, dry_run, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.PlanPath,
		report.Strategy,
		report.RootMode,
		report.FolderMode,
		report.RootInputPath,
		report.OutputPath,
		report.DryRun,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO run_items (run_id, position, source, output, dir, status, anomaly,
		message, candidates, matches, pages_redacted, saved, deleted, digest, steps, duration)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range report.Items {
		candidates, err := encodeList(item.Candidates)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize candidates: %w", err)
		}
		steps, err := encodeList(item.Steps)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize steps: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			id, i,
			item.Source, item.Output, item.Dir,
			string(item.Status), string(item.Anomaly), item.Message,
			candidates,
			item.Matches, item.PagesRedacted,
			item.Saved, item.Deleted,
			item.Digest, steps,
			int64(item.Duration),
		); err != nil {
			return 0, fmt.Errorf("failed to save item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	report.ID = id
	return id, nil
}

// ListRuns returns the most recent runs first, with their items loaded.
// A limit of zero or less returns every run.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]*model.RunReport, error) {
	query := `
	SELECT id, plan_path, strategy, root_mode, folder_mode, root_input_path,
		output_path, dry_run, started_at, finished_at
	FROM runs
	ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var runs []*model.RunReport
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	_ = rows.Close()

	// Items are loaded after the runs cursor is closed: the pool holds one connection.
	for _, run := range runs {
		items, err := rdb.items(ctx, "WHERE run_id = ? ORDER BY position", run.ID)
		if err != nil {
			return nil, err
		}
		run.Items = items
	}

	return runs, nil
}

// GetRun retrieves one run and its items by ID.
// It returns ErrRunNotFound when the ID is unknown.
func (rdb *RunDB) GetRun(ctx context.Context, id int64) (*model.RunReport, error) {
	row := rdb.db.QueryRowContext(ctx, `
	SELECT id, plan_path, strategy, root_mode, folder_mode, root_input_path,
		output_path, dry_run, started_at, finished_at
	FROM runs
	WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	items, err := rdb.items(ctx, "WHERE run_id = ? ORDER BY position", id)
	if err != nil {
		return nil, err
	}
	run.Items = items

	return run, nil
}

// ItemsForSource returns every recorded outcome for a source document,
// most recent first.
func (rdb *RunDB) ItemsForSource(ctx context.Context, source string) ([]model.ItemOutcome, error) {
	return rdb.items(ctx, "WHERE source = ? ORDER BY run_id DESC, position", source)
}

// items loads run_items rows matching the given WHERE/ORDER clause.
func (rdb *RunDB) items(ctx context.Context, clause string, args ...any) ([]model.ItemOutcome, error) {
	query := `
	SELECT source, output, dir, status, anomaly, message, candidates, matches,
		pages_redacted, saved, deleted, digest, steps, duration
	FROM run_items
	` + clause

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]model.ItemOutcome, 0)
	for rows.Next() {
		var (
			item       model.ItemOutcome
			status     string
			anomaly    string
			candidates string
			steps      string
			duration   int64
		)
		if err := rows.Scan(
			&item.Source, &item.Output, &item.Dir,
			&status, &anomaly, &item.Message,
			&candidates,
			&item.Matches, &item.PagesRedacted,
			&item.Saved, &item.Deleted,
			&item.Digest, &steps, &duration,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}

		item.Status = model.Status(status)
		item.Anomaly = model.AnomalyKind(anomaly)
		item.Duration = time.Duration(duration)
		item.Candidates = decodeList(candidates)
		item.Steps = decodeList(steps)
		items = append(items, item)
	}

	return items, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.RunReport, error) {
	var (
		run        model.RunReport
		startedAt  string
		finishedAt string
	)
	err := row.Scan(
		&run.ID, &run.PlanPath, &run.Strategy,
		&run.RootMode, &run.FolderMode,
		&run.RootInputPath, &run.OutputPath,
		&run.DryRun, &startedAt, &finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.StartedAt = parseTimestamp(startedAt)
	run.FinishedAt = parseTimestamp(finishedAt)
	run.Items = make([]model.ItemOutcome, 0)
	return &run, nil
}

func encodeList(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeList returns nil for an empty or malformed list.
func decodeList(s string) []string {
	var values []string
	if err := json.Unmarshal([]byte(s), &values); err != nil || len(values) == 0 {
		return nil
	}
	return values
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
