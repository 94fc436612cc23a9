// Package statstore provides persistent storage for disk and API samples.
//
// Storage is backed by a single SQLite database file. Four tables hold
// raw disk samples, raw API samples, and their rolling summaries; raw
// tables carry an auto-increment sequence column that the retention
// pass keys on.
//
// Opening the store verifies that the target directory exists and is
// writable before touching SQLite, so a read-only or missing filesystem
// produces a *ConnectionError the caller can degrade on (skip the cycle)
// instead of a crash.
package statstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Table names. Raw tables are decimated; summary tables are append-only.
const (
	TableDiskStats   = "disk_stats"
	TableDiskSummary = "disk_stats_summary"
	TableAPIStats    = "api_stats"
	TableAPISummary  = "api_stats_summary"
)

const sentinelFile = ".db_write_test"

// Tables lists every table the store manages, in export order.
var Tables = []string{TableDiskStats, TableDiskSummary, TableAPIStats, TableAPISummary}

// TimestampLayout is the minute-resolution format used for every
// timestamp column. Records written within the same minute are
// indistinguishable; order among them is undefined.
const TimestampLayout = "2006-01-02 15:04"

// Timestamp formats t at minute resolution for storage.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ConnectionError reports that the database file could not be opened or
// its directory could not be created or written. Callers are expected to
// log it and skip persistence for the current run rather than exit.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("statstore: cannot open database at %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Store wraps the SQLite database holding all metric tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path. The parent directory is
// created if absent, and write access is verified with a sentinel file
// before SQLite is opened. Schema creation is idempotent and runs on
// every open. All failures are returned as *ConnectionError.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &ConnectionError{Path: path, Err: err}
	}

	// Confirm the directory is actually writable; MkdirAll succeeds on
	// an existing read-only directory.
	sentinel := filepath.Join(dir, sentinelFile)
	if err := os.WriteFile(sentinel, nil, 0o644); err != nil {
		return nil, &ConnectionError{Path: path, Err: err}
	}
	_ = os.Remove(sentinel)

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, &ConnectionError{Path: path, Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &ConnectionError{Path: path, Err: err}
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, &ConnectionError{Path: path, Err: err}
	}

	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// migrate creates the four metric tables if they don't exist. Safe to
// call on every process start.
func (s *Store) migrate() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS disk_stats (
			seq           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     TEXT NOT NULL,
			hostname      TEXT NOT NULL,
			label         TEXT NOT NULL,
			write_mbps    REAL NOT NULL,
			write_iops    REAL NOT NULL,
			write_lat_avg REAL NOT NULL,
			read_mbps     REAL NOT NULL,
			read_iops     REAL NOT NULL,
			read_lat_avg  REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_disk_stats_label_ts ON disk_stats(label, timestamp);

		CREATE TABLE IF NOT EXISTS disk_stats_summary (
			timestamp TEXT NOT NULL,
			hostname  TEXT NOT NULL,
			label     TEXT NOT NULL,
			metric    TEXT NOT NULL,
			avg       REAL NOT NULL,
			min       REAL NOT NULL,
			max       REAL NOT NULL,
			stddev    REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_disk_summary_ts ON disk_stats_summary(timestamp);

		CREATE TABLE IF NOT EXISTS api_stats (
			seq              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        TEXT NOT NULL,
			hostname         TEXT NOT NULL,
			api_name         TEXT NOT NULL,
			endpoint_url     TEXT NOT NULL,
			response_time_ms REAL NOT NULL,
			status_code      INTEGER NOT NULL,
			success          BOOLEAN NOT NULL,
			error_message    TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_api_stats_name_ts ON api_stats(api_name, timestamp);

		CREATE TABLE IF NOT EXISTS api_stats_summary (
			timestamp    TEXT NOT NULL,
			hostname     TEXT NOT NULL,
			api_name     TEXT NOT NULL,
			metric       TEXT NOT NULL,
			avg          REAL NOT NULL,
			min          REAL NOT NULL,
			max          REAL NOT NULL,
			stddev       REAL NOT NULL,
			success_rate REAL
		);
		CREATE INDEX IF NOT EXISTS idx_api_summary_ts ON api_stats_summary(timestamp);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Close releases database resources.
func (s *Store) Close() error {
	return s.db.Close()
}
