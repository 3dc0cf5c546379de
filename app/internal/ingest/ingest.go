package ingest

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"storemon/app/internal/database"
	"storemon/app/internal/models"
)

// batchSize bounds how many status rows go into one insert transaction
const batchSize = 5000

// Run loads the three CSV source files from dataDir into the database:
// store_status.csv, menu_hours.csv and timezones.csv.
func Run(db *database.DB, dataDir string) error {
	start := time.Now()

	n, err := loadStoreStatus(db, filepath.Join(dataDir, "store_status.csv"))
	if err != nil {
		return fmt.Errorf("store status: %w", err)
	}
	log.Printf("%d status rows ingested", n)

	n, err = loadBusinessHours(db, filepath.Join(dataDir, "menu_hours.csv"))
	if err != nil {
		return fmt.Errorf("business hours: %w", err)
	}
	log.Printf("%d business hours rows ingested", n)

	n, err = loadTimezones(db, filepath.Join(dataDir, "timezones.csv"))
	if err != nil {
		return fmt.Errorf("timezones: %w", err)
	}
	log.Printf("%d timezone rows ingested", n)

	log.Printf("Total ingestion took %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// parseTimestamp parses source timestamps like "2023-01-25 10:05:00.123456 UTC".
// Values are truncated to whole seconds, the granularity the report works at.
func parseTimestamp(s string) (time.Time, error) {
	trimmed := s
	if len(trimmed) > 4 && trimmed[len(trimmed)-4:] == " UTC" {
		trimmed = trimmed[:len(trimmed)-4]
	}
	for _, layout := range []string{"2006-01-02 15:04:05.999999", "2006-01-02 15:04:05"} {
		if ts, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return ts.Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func loadStoreStatus(db *database.DB, path string) (int, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	storeCol, err := columnIndex(header, "store_id")
	if err != nil {
		return 0, err
	}
	tsCol, err := columnIndex(header, "timestamp_utc")
	if err != nil {
		return 0, err
	}
	statusCol, err := columnIndex(header, "status")
	if err != nil {
		return 0, err
	}

	total := 0
	batch := make([]models.StatusSample, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := db.InsertSamples(batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, row := range rows {
		status, err := models.ParseStatus(row[statusCol])
		if err != nil {
			// Closed status domain: unknown values are rejected, not
			// silently counted as downtime later.
			log.Printf("Skipping status row for store %s: %v", row[storeCol], err)
			_ = db.InsertJobLog(database.LogLevelWarn, database.LogCategoryIngest, row[storeCol], "status row skipped", err.Error())
			continue
		}
		ts, err := parseTimestamp(row[tsCol])
		if err != nil {
			log.Printf("Skipping status row for store %s: %v", row[storeCol], err)
			_ = db.InsertJobLog(database.LogLevelWarn, database.LogCategoryIngest, row[storeCol], "status row skipped", err.Error())
			continue
		}

		batch = append(batch, models.StatusSample{
			StoreID:      row[storeCol],
			TimestampUTC: ts,
			Status:       status,
		})
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

func loadBusinessHours(db *database.DB, path string) (int, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	storeCol, err := columnIndex(header, "store_id")
	if err != nil {
		return 0, err
	}
	dayCol, err := columnIndex(header, "dayOfWeek")
	if err != nil {
		return 0, err
	}
	startCol, err := columnIndex(header, "start_time_local")
	if err != nil {
		return 0, err
	}
	endCol, err := columnIndex(header, "end_time_local")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range rows {
		var day int
		if _, err := fmt.Sscanf(row[dayCol], "%d", &day); err != nil {
			log.Printf("Skipping business hours row for store %s: invalid day %q", row[storeCol], row[dayCol])
			continue
		}
		rule := models.BusinessHourRule{
			StoreID:        row[storeCol],
			DayOfWeek:      day,
			StartTimeLocal: nullable(row[startCol]),
			EndTimeLocal:   nullable(row[endCol]),
		}
		if err := db.InsertBusinessHours(rule); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func loadTimezones(db *database.DB, path string) (int, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	storeCol, err := columnIndex(header, "store_id")
	if err != nil {
		return 0, err
	}
	tzCol, err := columnIndex(header, "timezone_str")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, row := range rows {
		if err := db.InsertTimezone(row[storeCol], row[tzCol]); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// readCSV reads a whole CSV file, returning data rows and the header
func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}
	return records[1:], records[0], nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("missing column %q", name)
}

// nullable maps a blank CSV cell to a NULL local time
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
