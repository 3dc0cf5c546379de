package models

import (
	"fmt"
	"time"
)

// Status is the observed state of a store at a poll timestamp.
// It is a closed two-value type: anything else is a parse error, never
// silently counted as downtime.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus converts a raw status string into a Status
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive:
		return StatusActive, nil
	case StatusInactive:
		return StatusInactive, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// ReportStatus is the lifecycle state of a report job.
// Transitions are monotonic: Running -> Complete, never back.
type ReportStatus string

const (
	ReportRunning  ReportStatus = "Running"
	ReportComplete ReportStatus = "Complete"
)

// StatusSample is a single timestamped observation of a store's status
type StatusSample struct {
	StoreID      string    `json:"store_id"`
	TimestampUTC time.Time `json:"timestamp_utc"`
	Status       Status    `json:"status"`
}

// BusinessHourRule is one local open window for a store on a day of week.
// DayOfWeek is 0=Monday..6=Sunday. Times are "HH:MM:SS" local; a nil start
// or end means the store contributes no open window that day.
type BusinessHourRule struct {
	StoreID        string
	DayOfWeek      int
	StartTimeLocal *string
	EndTimeLocal   *string
}

// StoreTimezone maps a store to its IANA timezone identifier
type StoreTimezone struct {
	StoreID     string
	TimezoneStr string
}

// Report is a report job record
type Report struct {
	ReportID  string       `json:"report_id"`
	Status    ReportStatus `json:"status"`
	FilePath  string       `json:"file_path,omitempty"`
	CreatedAt string       `json:"created_at,omitempty"`
}

// StoreMetrics is one output row of a report: time-in-state totals over the
// three trailing windows. Hour figures are minutes, day and week figures are
// hours, all restricted to the store's business hours.
type StoreMetrics struct {
	StoreID          string `json:"store_id"`
	UptimeLastHour   int    `json:"uptime_last_hour"`
	UptimeLastDay    int    `json:"uptime_last_day"`
	UptimeLastWeek   int    `json:"uptime_last_week"`
	DowntimeLastHour int    `json:"downtime_last_hour"`
	DowntimeLastDay  int    `json:"downtime_last_day"`
	DowntimeLastWeek int    `json:"downtime_last_week"`
}

// LogEntry is a durable diagnostic row written during ingestion or a report run
type LogEntry struct {
	ID        int    `json:"id"`
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	StoreID   string `json:"store_id,omitempty"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
}
