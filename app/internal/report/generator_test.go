package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storemon/app/internal/database"
	"storemon/app/internal/models"
)

func newFileDB(t *testing.T) (string, *database.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return dbPath, db
}

func testGenerator(t *testing.T, dbPath string) *Generator {
	t.Helper()
	return NewGenerator(dbPath, filepath.Join(t.TempDir(), "reports"), "America/Chicago")
}

func readArtifact(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	return records
}

// --------------- generate ---------------

func TestGenerate_WritesArtifact(t *testing.T) {
	dbPath, db := newFileDB(t)
	mustInsertSample(t, db, "s1", snapshot.Add(-2*time.Hour), models.StatusActive)
	mustInsertSample(t, db, "s2", snapshot.Add(-3*time.Hour), models.StatusInactive)
	mustInsertSample(t, db, "s2", snapshot, models.StatusActive)

	if err := db.CreateReport("r1"); err != nil {
		t.Fatal(err)
	}

	g := testGenerator(t, dbPath)
	g.generate(db, "r1")

	rep, err := db.GetReport("r1")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != models.ReportComplete {
		t.Fatalf("status = %q, want Complete", rep.Status)
	}
	if rep.FilePath == "" {
		t.Fatal("expected an artifact path")
	}

	records := readArtifact(t, rep.FilePath)
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "store_id" || len(records[0]) != 7 {
		t.Errorf("bad header: %v", records[0])
	}

	seen := map[string]bool{}
	for _, row := range records[1:] {
		seen[row[0]] = true
	}
	if !seen["s1"] || !seen["s2"] {
		t.Errorf("store ids in artifact = %v, want s1 and s2", seen)
	}
}

func TestGenerate_EmptyDatabase_CompletesWithoutArtifact(t *testing.T) {
	dbPath, db := newFileDB(t)
	if err := db.CreateReport("r-empty"); err != nil {
		t.Fatal(err)
	}

	g := testGenerator(t, dbPath)
	g.generate(db, "r-empty")

	rep, err := db.GetReport("r-empty")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != models.ReportComplete {
		t.Errorf("status = %q, want Complete", rep.Status)
	}
	if rep.FilePath != "" {
		t.Errorf("expected no artifact, got %q", rep.FilePath)
	}
}

func TestGenerate_FailingStoreIsSkipped(t *testing.T) {
	dbPath, db := newFileDB(t)
	mustInsertSample(t, db, "good", snapshot.Add(-2*time.Hour), models.StatusActive)
	mustInsertSample(t, db, "bad", snapshot.Add(-2*time.Hour), models.StatusActive)
	if err := db.InsertTimezone("bad", "Not/AZone"); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateReport("r2"); err != nil {
		t.Fatal(err)
	}

	g := testGenerator(t, dbPath)
	g.generate(db, "r2")

	rep, err := db.GetReport("r2")
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != models.ReportComplete || rep.FilePath == "" {
		t.Fatalf("report = %+v, want Complete with artifact", rep)
	}

	records := readArtifact(t, rep.FilePath)
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[1][0] != "good" {
		t.Errorf("surviving store = %q, want good", records[1][0])
	}

	logs, err := db.JobLogs(10, database.LogLevelError, database.LogCategoryReport, "bad")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) == 0 {
		t.Error("expected a job log entry for the skipped store")
	}
}

// --------------- Trigger ---------------

func TestTrigger_ReturnsImmediatelyRunning(t *testing.T) {
	dbPath, db := newFileDB(t)
	mustInsertSample(t, db, "s1", snapshot.Add(-time.Hour), models.StatusActive)

	g := testGenerator(t, dbPath)
	reportID, err := g.Trigger(db)
	if err != nil {
		t.Fatal(err)
	}
	if reportID == "" {
		t.Fatal("expected a report id")
	}

	// The record exists right away, before the background run finishes
	rep, err := db.GetReport(reportID)
	if err != nil {
		t.Fatal(err)
	}
	if rep == nil {
		t.Fatal("report record missing after trigger")
	}

	// And it eventually flips to Complete
	deadline := time.Now().Add(5 * time.Second)
	for {
		rep, err = db.GetReport(reportID)
		if err != nil {
			t.Fatal(err)
		}
		if rep.Status == models.ReportComplete {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("report still %q after deadline", rep.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
