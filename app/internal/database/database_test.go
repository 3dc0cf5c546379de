package database

import (
	"testing"
	"time"

	"storemon/app/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return parsed.UTC()
}

// --------------- EnsureSchema ---------------

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := newTestDB(t)
	// Open already ran it once; a second call must succeed
	if err := db.EnsureSchema(); err != nil {
		t.Fatalf("second EnsureSchema failed: %v", err)
	}
}

// --------------- samples ---------------

func TestLatestTimestamp_Empty(t *testing.T) {
	db := newTestDB(t)
	latest, err := db.LatestTimestamp()
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Errorf("expected nil for empty table, got %v", latest)
	}
}

func TestLatestTimestamp_ReturnsMax(t *testing.T) {
	db := newTestDB(t)
	db.InsertSample("s1", ts(t, "2023-01-24T10:00:00Z"), models.StatusActive)
	db.InsertSample("s2", ts(t, "2023-01-24T12:00:00Z"), models.StatusInactive)
	db.InsertSample("s1", ts(t, "2023-01-24T11:00:00Z"), models.StatusActive)

	latest, err := db.LatestTimestamp()
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || !latest.Equal(ts(t, "2023-01-24T12:00:00Z")) {
		t.Errorf("latest = %v, want 12:00", latest)
	}
}

func TestListStoreIDs_Distinct(t *testing.T) {
	db := newTestDB(t)
	db.InsertSample("s1", ts(t, "2023-01-24T10:00:00Z"), models.StatusActive)
	db.InsertSample("s1", ts(t, "2023-01-24T11:00:00Z"), models.StatusActive)
	db.InsertSample("s2", ts(t, "2023-01-24T10:00:00Z"), models.StatusInactive)

	ids, err := db.ListStoreIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 distinct ids, got %v", ids)
	}
}

func TestSamplesSince_OrderAndFilter(t *testing.T) {
	db := newTestDB(t)
	db.InsertSample("s1", ts(t, "2023-01-24T12:00:00Z"), models.StatusInactive)
	db.InsertSample("s1", ts(t, "2023-01-24T10:00:00Z"), models.StatusActive)
	db.InsertSample("s1", ts(t, "2023-01-24T08:00:00Z"), models.StatusActive)
	db.InsertSample("s2", ts(t, "2023-01-24T11:00:00Z"), models.StatusActive)

	samples, err := db.SamplesSince("s1", ts(t, "2023-01-24T09:00:00Z"))
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if !samples[0].TimestampUTC.Equal(ts(t, "2023-01-24T10:00:00Z")) {
		t.Errorf("first sample = %v, want 10:00", samples[0].TimestampUTC)
	}
	if samples[1].Status != models.StatusInactive {
		t.Errorf("second sample status = %q", samples[1].Status)
	}
}

func TestSamplesSince_TieBreakByIngestionOrder(t *testing.T) {
	db := newTestDB(t)
	at := ts(t, "2023-01-24T10:00:00Z")
	db.InsertSample("s1", at, models.StatusActive)
	db.InsertSample("s1", at, models.StatusInactive)

	samples, err := db.SamplesSince("s1", at.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Status != models.StatusActive || samples[1].Status != models.StatusInactive {
		t.Errorf("tie order = %q, %q; want ingestion order", samples[0].Status, samples[1].Status)
	}
}

func TestInsertSamples_Bulk(t *testing.T) {
	db := newTestDB(t)
	batch := []models.StatusSample{
		{StoreID: "s1", TimestampUTC: ts(t, "2023-01-24T10:00:00Z"), Status: models.StatusActive},
		{StoreID: "s1", TimestampUTC: ts(t, "2023-01-24T11:00:00Z"), Status: models.StatusInactive},
	}
	if err := db.InsertSamples(batch); err != nil {
		t.Fatal(err)
	}

	samples, err := db.SamplesSince("s1", ts(t, "2023-01-24T00:00:00Z"))
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Errorf("expected 2 samples, got %d", len(samples))
	}
}

// --------------- business hours / timezones ---------------

func TestBusinessHoursForStore_Empty(t *testing.T) {
	db := newTestDB(t)
	rules, err := db.BusinessHoursForStore("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 0 {
		t.Errorf("expected no rules, got %v", rules)
	}
}

func TestBusinessHours_RoundTripNullable(t *testing.T) {
	db := newTestDB(t)
	start := "09:00:00"
	err := db.InsertBusinessHours(models.BusinessHourRule{
		StoreID: "s1", DayOfWeek: 2, StartTimeLocal: &start, EndTimeLocal: nil,
	})
	if err != nil {
		t.Fatal(err)
	}

	rules, err := db.BusinessHoursForStore("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	r := rules[0]
	if r.DayOfWeek != 2 || r.StartTimeLocal == nil || *r.StartTimeLocal != "09:00:00" {
		t.Errorf("rule = %+v", r)
	}
	if r.EndTimeLocal != nil {
		t.Errorf("end should be nil, got %q", *r.EndTimeLocal)
	}
}

func TestTimezoneForStore_Missing(t *testing.T) {
	db := newTestDB(t)
	tz, err := db.TimezoneForStore("s1")
	if err != nil {
		t.Fatal(err)
	}
	if tz != "" {
		t.Errorf("expected empty string, got %q", tz)
	}
}

func TestInsertTimezone_Replaces(t *testing.T) {
	db := newTestDB(t)
	if err := db.InsertTimezone("s1", "America/Chicago"); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertTimezone("s1", "America/New_York"); err != nil {
		t.Fatal(err)
	}

	tz, err := db.TimezoneForStore("s1")
	if err != nil {
		t.Fatal(err)
	}
	if tz != "America/New_York" {
		t.Errorf("tz = %q, want America/New_York", tz)
	}
}

// --------------- reports ---------------

func TestReportLifecycle(t *testing.T) {
	db := newTestDB(t)
	if err := db.CreateReport("r1"); err != nil {
		t.Fatal(err)
	}

	rep, err := db.GetReport("r1")
	if err != nil {
		t.Fatal(err)
	}
	if rep == nil || rep.Status != models.ReportRunning {
		t.Fatalf("fresh report = %+v, want Running", rep)
	}
	if rep.FilePath != "" {
		t.Errorf("fresh report should have no file path")
	}

	if err := db.CompleteReport("r1", "/tmp/report_r1.csv"); err != nil {
		t.Fatal(err)
	}
	rep, _ = db.GetReport("r1")
	if rep.Status != models.ReportComplete || rep.FilePath != "/tmp/report_r1.csv" {
		t.Errorf("completed report = %+v", rep)
	}
}

func TestGetReport_Unknown(t *testing.T) {
	db := newTestDB(t)
	rep, err := db.GetReport("nope")
	if err != nil {
		t.Fatal(err)
	}
	if rep != nil {
		t.Errorf("expected nil for unknown id, got %+v", rep)
	}
}

func TestCompleteReport_Monotonic(t *testing.T) {
	db := newTestDB(t)
	if err := db.CreateReport("r1"); err != nil {
		t.Fatal(err)
	}
	if err := db.CompleteReport("r1", "/tmp/a.csv"); err != nil {
		t.Fatal(err)
	}
	// A second transition attempt must not change the record
	if err := db.CompleteReport("r1", "/tmp/other.csv"); err != nil {
		t.Fatal(err)
	}

	rep, _ := db.GetReport("r1")
	if rep.FilePath != "/tmp/a.csv" {
		t.Errorf("file path = %q, want the first transition's value", rep.FilePath)
	}
}

func TestCompleteReport_NoArtifact(t *testing.T) {
	db := newTestDB(t)
	if err := db.CreateReport("r1"); err != nil {
		t.Fatal(err)
	}
	if err := db.CompleteReport("r1", ""); err != nil {
		t.Fatal(err)
	}

	rep, _ := db.GetReport("r1")
	if rep.Status != models.ReportComplete || rep.FilePath != "" {
		t.Errorf("report = %+v, want Complete with empty path", rep)
	}
}

// --------------- job logs ---------------

func TestJobLogs_InsertAndFilter(t *testing.T) {
	db := newTestDB(t)
	db.InsertJobLog(LogLevelError, LogCategoryReport, "s1", "store skipped", "bad timezone")
	db.InsertJobLog(LogLevelWarn, LogCategoryIngest, "s2", "status row skipped", "")
	db.InsertJobLog(LogLevelError, LogCategorySystem, "", "report artifact missing", "/tmp/x.csv")

	logs, err := db.JobLogs(10, LogLevelError, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Errorf("expected 2 error logs, got %d", len(logs))
	}

	logs, err = db.JobLogs(10, "", LogCategoryReport, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].Message != "store skipped" {
		t.Errorf("filtered logs = %+v", logs)
	}
}

func TestPruneJobLogs(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 10; i++ {
		db.InsertJobLog(LogLevelInfo, LogCategorySystem, "", "entry", "")
	}
	if err := db.PruneJobLogs(3); err != nil {
		t.Fatal(err)
	}

	logs, err := db.JobLogs(100, "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 3 {
		t.Errorf("expected 3 logs after prune, got %d", len(logs))
	}
}
