package database

import (
	"database/sql"

	"storemon/app/internal/models"
)

// InsertBusinessHours records one local open window for a store
func (d *DB) InsertBusinessHours(rule models.BusinessHourRule) error {
	var start, end any
	if rule.StartTimeLocal != nil {
		start = *rule.StartTimeLocal
	}
	if rule.EndTimeLocal != nil {
		end = *rule.EndTimeLocal
	}
	_, err := d.conn.Exec(`INSERT INTO business_hours (store_id, day_of_week, start_time_local, end_time_local)
		VALUES (?, ?, ?, ?)`,
		rule.StoreID, rule.DayOfWeek, start, end)
	return err
}

// BusinessHoursForStore returns all business-hour rules for a store.
// An empty result means the store is treated as always open.
func (d *DB) BusinessHoursForStore(storeID string) ([]models.BusinessHourRule, error) {
	rows, err := d.conn.Query(`SELECT store_id, day_of_week, start_time_local, end_time_local
		FROM business_hours WHERE store_id = ?`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.BusinessHourRule
	for rows.Next() {
		var r models.BusinessHourRule
		var start, end sql.NullString
		if err := rows.Scan(&r.StoreID, &r.DayOfWeek, &start, &end); err != nil {
			return nil, err
		}
		if start.Valid {
			r.StartTimeLocal = &start.String
		}
		if end.Valid {
			r.EndTimeLocal = &end.String
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// InsertTimezone records a store's timezone, replacing any previous row
func (d *DB) InsertTimezone(storeID, timezoneStr string) error {
	_, err := d.conn.Exec(`INSERT INTO store_timezones (store_id, timezone_str)
		VALUES (?, ?)
		ON CONFLICT(store_id) DO UPDATE SET timezone_str = excluded.timezone_str`,
		storeID, timezoneStr)
	return err
}

// TimezoneForStore returns the store's timezone identifier, or "" if the
// store has no store_timezones row.
func (d *DB) TimezoneForStore(storeID string) (string, error) {
	var tz string
	err := d.conn.QueryRow(`SELECT timezone_str FROM store_timezones WHERE store_id = ?`, storeID).Scan(&tz)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tz, nil
}
