package database

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// timeFormat is how all timestamps are stored: RFC3339 UTC, whole seconds,
// which keeps lexicographic and chronological order identical.
const timeFormat = time.RFC3339

// DB wraps the sqlite handle. Every operation goes through an explicit *DB;
// there is no package-global connection.
type DB struct {
	conn *sql.DB
}

// Open opens the database at path and creates the schema
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	d := &DB{conn: conn}
	if err := d.EnsureSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying connection pool
func (d *DB) Close() error {
	return d.conn.Close()
}

// EnsureSchema creates all necessary database tables
func (d *DB) EnsureSchema() error {
	_, err := d.conn.Exec(`
CREATE TABLE IF NOT EXISTS store_status (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_id TEXT NOT NULL,
  timestamp_utc TEXT NOT NULL,
  status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_store_status_store ON store_status(store_id);
CREATE INDEX IF NOT EXISTS idx_store_status_ts ON store_status(timestamp_utc);

CREATE TABLE IF NOT EXISTS business_hours (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_id TEXT NOT NULL,
  day_of_week INTEGER NOT NULL,
  start_time_local TEXT,
  end_time_local TEXT
);
CREATE INDEX IF NOT EXISTS idx_business_hours_store ON business_hours(store_id);

CREATE TABLE IF NOT EXISTS store_timezones (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_id TEXT NOT NULL UNIQUE,
  timezone_str TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  report_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'Running',
  file_path TEXT,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_report_id ON reports(report_id);

CREATE TABLE IF NOT EXISTS job_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp TEXT NOT NULL,
  level TEXT NOT NULL,
  category TEXT NOT NULL,
  store_id TEXT,
  message TEXT NOT NULL,
  details TEXT
);
CREATE INDEX IF NOT EXISTS idx_job_logs_ts ON job_logs(timestamp);
`)
	return err
}
