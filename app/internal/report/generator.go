package report

import (
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"storemon/app/internal/database"
	"storemon/app/internal/models"
)

// csvHeader lists the artifact columns. Hour figures are minutes, day and
// week figures are hours.
var csvHeader = []string{
	"store_id",
	"uptime_last_hour",
	"uptime_last_day",
	"uptime_last_week",
	"downtime_last_hour",
	"downtime_last_day",
	"downtime_last_week",
}

// Generator runs report jobs. Each job opens its own database handle, so a
// running job never shares a session with the request that triggered it.
type Generator struct {
	DBPath          string
	ReportsDir      string
	DefaultTimezone string
}

// NewGenerator creates a report generator
func NewGenerator(dbPath, reportsDir, defaultTZ string) *Generator {
	return &Generator{
		DBPath:          dbPath,
		ReportsDir:      reportsDir,
		DefaultTimezone: defaultTZ,
	}
}

// Trigger persists a Running report record and hands the computation to a
// background goroutine. It returns the fresh report identifier immediately;
// the caller never holds a reference to the task itself.
func (g *Generator) Trigger(db *database.DB) (string, error) {
	reportID := uuid.NewString()
	if err := db.CreateReport(reportID); err != nil {
		return "", err
	}
	go g.Run(reportID)
	return reportID, nil
}

// Run executes one full report generation pass on its own database handle
func (g *Generator) Run(reportID string) {
	db, err := database.Open(g.DBPath)
	if err != nil {
		log.Printf("[%s] failed to open database: %v", reportID, err)
		return
	}
	defer db.Close()

	g.generate(db, reportID)
}

func (g *Generator) generate(db *database.DB, reportID string) {
	log.Printf("[%s] starting full report generation", reportID)

	storeIDs, err := db.ListStoreIDs()
	if err != nil {
		log.Printf("[%s] failed to list stores: %v", reportID, err)
		_ = db.InsertJobLog(database.LogLevelError, database.LogCategoryReport, "", "failed to list stores", err.Error())
		return
	}

	latest, err := db.LatestTimestamp()
	if err != nil {
		log.Printf("[%s] failed to resolve snapshot timestamp: %v", reportID, err)
		_ = db.InsertJobLog(database.LogLevelError, database.LogCategoryReport, "", "failed to resolve snapshot", err.Error())
		return
	}
	if latest == nil {
		log.Printf("[%s] no data in store_status, completing with empty result", reportID)
		if err := db.CompleteReport(reportID, ""); err != nil {
			log.Printf("[%s] failed to mark report complete: %v", reportID, err)
		}
		return
	}

	// Stores are processed strictly sequentially; a failure computing one
	// store's metrics is logged and that store omitted, never fatal.
	rows := make([]models.StoreMetrics, 0, len(storeIDs))
	for _, storeID := range storeIDs {
		metrics, err := StoreMetricsFor(db, storeID, *latest, g.DefaultTimezone)
		if err != nil {
			log.Printf("[%s] failed to process store %s: %v", reportID, storeID, err)
			_ = db.InsertJobLog(database.LogLevelError, database.LogCategoryReport, storeID, "store skipped", err.Error())
			continue
		}
		rows = append(rows, *metrics)
	}

	if len(rows) == 0 {
		log.Printf("[%s] no rows produced, completing with empty result", reportID)
		if err := db.CompleteReport(reportID, ""); err != nil {
			log.Printf("[%s] failed to mark report complete: %v", reportID, err)
		}
		return
	}

	path, err := g.writeCSV(reportID, rows)
	if err != nil {
		log.Printf("[%s] failed to write report artifact: %v", reportID, err)
		_ = db.InsertJobLog(database.LogLevelError, database.LogCategoryReport, "", "failed to write artifact", err.Error())
		if err := db.CompleteReport(reportID, ""); err != nil {
			log.Printf("[%s] failed to mark report complete: %v", reportID, err)
		}
		return
	}

	if err := db.CompleteReport(reportID, path); err != nil {
		log.Printf("[%s] failed to mark report complete: %v", reportID, err)
		return
	}
	log.Printf("[%s] report saved to %s (%d stores)", reportID, path, len(rows))
}

// writeCSV persists the aggregated rows as the report's durable artifact
func (g *Generator) writeCSV(reportID string, rows []models.StoreMetrics) (string, error) {
	if err := os.MkdirAll(g.ReportsDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(g.ReportsDir, "report_"+reportID+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	w := csv.NewWriter(f)
	_ = w.Write(csvHeader)
	for _, r := range rows {
		_ = w.Write([]string{
			r.StoreID,
			strconv.Itoa(r.UptimeLastHour),
			strconv.Itoa(r.UptimeLastDay),
			strconv.Itoa(r.UptimeLastWeek),
			strconv.Itoa(r.DowntimeLastHour),
			strconv.Itoa(r.DowntimeLastDay),
			strconv.Itoa(r.DowntimeLastWeek),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
