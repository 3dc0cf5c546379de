package database

import (
	"database/sql"
	"time"

	"storemon/app/internal/models"
)

// CreateReport persists a new report record in the Running state
func (d *DB) CreateReport(reportID string) error {
	_, err := d.conn.Exec(`INSERT INTO reports (report_id, status, created_at)
		VALUES (?, ?, ?)`,
		reportID, string(models.ReportRunning), time.Now().UTC().Format(timeFormat))
	return err
}

// GetReport fetches a report record by identifier, or nil if unknown
func (d *DB) GetReport(reportID string) (*models.Report, error) {
	var r models.Report
	var status string
	var filePath sql.NullString
	err := d.conn.QueryRow(`SELECT report_id, status, file_path, created_at
		FROM reports WHERE report_id = ?`, reportID).Scan(
		&r.ReportID, &status, &filePath, &r.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.Status = models.ReportStatus(status)
	if filePath.Valid {
		r.FilePath = filePath.String
	}
	return &r, nil
}

// CompleteReport flips a Running report to Complete, recording the artifact
// path if one was produced. The Running guard keeps the transition one-way.
func (d *DB) CompleteReport(reportID, filePath string) error {
	var path any
	if filePath != "" {
		path = filePath
	}
	_, err := d.conn.Exec(`UPDATE reports SET status = ?, file_path = ?
		WHERE report_id = ? AND status = ?`,
		string(models.ReportComplete), path, reportID, string(models.ReportRunning))
	return err
}
