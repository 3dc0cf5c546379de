package database

import (
	"database/sql"
	"time"

	"storemon/app/internal/models"
)

// InsertSample records a single status observation
func (d *DB) InsertSample(storeID string, ts time.Time, status models.Status) error {
	_, err := d.conn.Exec(`INSERT INTO store_status (store_id, timestamp_utc, status)
		VALUES (?, ?, ?)`,
		storeID, ts.UTC().Format(timeFormat), string(status))
	return err
}

// InsertSamples bulk-inserts observations inside a single transaction
func (d *DB) InsertSamples(samples []models.StatusSample) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO store_status (store_id, timestamp_utc, status) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(s.StoreID, s.TimestampUTC.UTC().Format(timeFormat), string(s.Status)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListStoreIDs returns the distinct store identifiers present in store_status
func (d *DB) ListStoreIDs() ([]string, error) {
	rows, err := d.conn.Query(`SELECT DISTINCT store_id FROM store_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LatestTimestamp returns the maximum observed sample timestamp, or nil if
// the store_status table is empty.
func (d *DB) LatestTimestamp() (*time.Time, error) {
	var raw sql.NullString
	err := d.conn.QueryRow(`SELECT MAX(timestamp_utc) FROM store_status`).Scan(&raw)
	if err != nil {
		return nil, err
	}
	if !raw.Valid {
		return nil, nil
	}

	ts, err := time.Parse(timeFormat, raw.String)
	if err != nil {
		return nil, err
	}
	ts = ts.UTC()
	return &ts, nil
}

// SamplesSince returns one store's observations at or after since, ascending
// by timestamp. Ties at an equal timestamp keep ingestion order (id ASC), so
// the later-inserted row wins by leaving the earlier one a zero-length
// interval.
func (d *DB) SamplesSince(storeID string, since time.Time) ([]models.StatusSample, error) {
	rows, err := d.conn.Query(`SELECT store_id, timestamp_utc, status FROM store_status
		WHERE store_id = ? AND timestamp_utc >= ?
		ORDER BY timestamp_utc ASC, id ASC`,
		storeID, since.UTC().Format(timeFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.StatusSample
	for rows.Next() {
		var id, raw, status string
		if err := rows.Scan(&id, &raw, &status); err != nil {
			return nil, err
		}
		ts, err := time.Parse(timeFormat, raw)
		if err != nil {
			return nil, err
		}
		samples = append(samples, models.StatusSample{
			StoreID:      id,
			TimestampUTC: ts.UTC(),
			Status:       models.Status(status),
		})
	}
	return samples, rows.Err()
}
