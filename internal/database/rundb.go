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

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/querystats/internal/model"
)

// RunDBFile is the file name of the run history database.
const RunDBFile = "querystats.db"

// lockSuffix names the file that serializes database setup across processes.
const lockSuffix = ".lock"

// timestampLayout is how run timestamps are stored. It is fixed-width and
// UTC, so stored values sort chronologically as text.
const timestampLayout = "2006-01-02 15:04:05.000000"

// RunDB stores finished analysis reports.
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

// Open opens or creates the run history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error
// wrapping ErrNotFound is returned and nothing is created.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, RunDBFile)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s (use CreateIfNotExists option to create)", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Switching to WAL and creating tables need exclusive access.
	lock := flock.New(dbPath + lockSuffix)
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock database: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	dsn := dbPath + "?mode=rwc"
	if !opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rw"
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
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		generated_at TEXT NOT NULL,
		profile TEXT NOT NULL DEFAULT '',
		max_count INTEGER NOT NULL,
		max_repeat INTEGER NOT NULL,
		max_depth INTEGER NOT NULL,
		max_breadth INTEGER NOT NULL,
		searches INTEGER NOT NULL DEFAULT 0,
		nodes INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON analysis_runs(generated_at);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores a finished report. Saving a report with an existing ID
// replaces the stored one.
func (rdb *RunDB) SaveReport(ctx context.Context, report *model.Report) error {
	if report == nil {
		return errors.New("report is nil")
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO analysis_runs (
		id, generated_at, profile,
		max_count, max_repeat, max_depth, max_breadth,
		searches, nodes, report_json
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		generated_at = excluded.generated_at,
		profile = excluded.profile,
		max_count = excluded.max_count,
		max_repeat = excluded.max_repeat,
		max_depth = excluded.max_depth,
		max_breadth = excluded.max_breadth,
		searches = excluded.searches,
		nodes = excluded.nodes,
		report_json = excluded.report_json
	`

	_, err = rdb.db.ExecContext(ctx, query,
		report.ID,
		report.GeneratedAt.UTC().Format(timestampLayout),
		report.Profile,
		report.Limits.MaxCount,
		report.Limits.MaxRepeat,
		report.Limits.MaxDepth,
		report.Limits.MaxBreadth,
		report.Stats.Searches,
		report.Stats.Visits+report.Stats.Clicks,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// GetReport retrieves a report by its run ID.
// It returns nil without an error when no run has that ID.
func (rdb *RunDB) GetReport(ctx context.Context, id string) (*model.Report, error) {
	query := `
	SELECT report_json FROM analysis_runs
	WHERE id = ?
	`

	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// RunSummary describes a stored run without loading its result tree.
type RunSummary struct {
	// ID is the run ID.
	ID string

	// GeneratedAt is when the analysis finished.
	GeneratedAt time.Time

	// Profile is the profile directory that was analyzed.
	Profile string

	// Limits are the bounds the run used.
	Limits model.Limits

	// Searches is the number of distinct searches with a matching visit.
	Searches int

	// Nodes is the total number of result nodes.
	Nodes int
}

// ListRuns returns stored runs, newest first.
// A limit of 0 or less returns every run.
func (rdb *RunDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
	SELECT id, generated_at, profile, max_count, max_repeat, max_depth, max_breadth, searches, nodes
	FROM analysis_runs
	ORDER BY generated_at DESC, id DESC
	LIMIT ?
	`

	rows, err := rdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var run RunSummary
		var timestamp string

		err := rows.Scan(
			&run.ID,
			&timestamp,
			&run.Profile,
			&run.Limits.MaxCount,
			&run.Limits.MaxRepeat,
			&run.Limits.MaxDepth,
			&run.Limits.MaxBreadth,
			&run.Searches,
			&run.Nodes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.GeneratedAt = parseTimestamp(timestamp)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// timestampFormats contains the timestamp formats a stored run may carry.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",  // SQLite default datetime format
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	time.RFC3339Nano,
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
