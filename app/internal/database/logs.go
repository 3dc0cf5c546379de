package database

import (
	"time"

	"storemon/app/internal/models"
)

// LogLevel constants
const (
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// LogCategory constants
const (
	LogCategoryReport = "report"
	LogCategoryIngest = "ingest"
	LogCategorySystem = "system"
)

// InsertJobLog adds a durable diagnostic entry
func (d *DB) InsertJobLog(level, category, storeID, message, details string) error {
	_, err := d.conn.Exec(`INSERT INTO job_logs (timestamp, level, category, store_id, message, details)
		VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(timeFormat), level, category, storeID, message, details)
	return err
}

// JobLogs retrieves diagnostic entries, newest first, with optional filtering
func (d *DB) JobLogs(limit int, level, category, storeID string) ([]models.LogEntry, error) {
	query := `SELECT id, timestamp, level, category, COALESCE(store_id, ''), message, COALESCE(details, '')
		FROM job_logs WHERE 1=1`
	args := []any{}

	if level != "" {
		query += " AND level = ?"
		args = append(args, level)
	}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	if storeID != "" {
		query += " AND store_id = ?"
		args = append(args, storeID)
	}

	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.LogEntry
	for rows.Next() {
		var entry models.LogEntry
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.Level, &entry.Category, &entry.StoreID, &entry.Message, &entry.Details); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// PruneJobLogs removes old entries to keep the table size manageable (keeps last N)
func (d *DB) PruneJobLogs(keepCount int) error {
	_, err := d.conn.Exec(`DELETE FROM job_logs WHERE id NOT IN (
		SELECT id FROM job_logs ORDER BY timestamp DESC, id DESC LIMIT ?
	)`, keepCount)
	return err
}
