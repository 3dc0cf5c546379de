package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"storemon/app/internal/cache"
	"storemon/app/internal/database"
	"storemon/app/internal/models"
	"storemon/app/internal/report"
)

// HandleTriggerReport creates a new report job and returns its identifier
// without waiting for the computation to finish.
func HandleTriggerReport(db *database.DB, gen *report.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		reportID, err := gen.Trigger(db)
		if err != nil {
			log.Printf("Failed to trigger report: %v", err)
			http.Error(w, "failed to create report", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"report_id": reportID})
	}
}

// HandleGetReport polls a report by identifier. An unknown id is a plain not
// found; a Running report returns its status; a Complete report returns the
// CSV artifact, or just its status when the run produced no data.
func HandleGetReport(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		reportID := strings.TrimPrefix(r.URL.Path, "/api/get_report/")
		if reportID == "" || strings.Contains(reportID, "/") {
			http.Error(w, "report id required", http.StatusBadRequest)
			return
		}

		rep := cachedReport(db, w, reportID)
		if rep == nil {
			return
		}

		if rep.Status == models.ReportRunning {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"status": string(models.ReportRunning)})
			return
		}

		if rep.FilePath == "" {
			// Completed run that had no data to report
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"status": string(models.ReportComplete)})
			return
		}

		if _, err := os.Stat(rep.FilePath); err != nil {
			// Recorded artifact absent from storage: an internal
			// inconsistency, kept distinguishable from an unknown id.
			log.Printf("Report %s artifact missing at %s", rep.ReportID, rep.FilePath)
			_ = db.InsertJobLog(database.LogLevelError, database.LogCategorySystem, "", "report artifact missing", rep.FilePath)
			http.Error(w, "report file not found on server", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=report_%s.csv", rep.ReportID))
		http.ServeFile(w, r, rep.FilePath)
	}
}

// cachedReport loads a report record, memoizing Complete (terminal) ones.
// It writes the error response itself and returns nil when there is nothing
// further to do.
func cachedReport(db *database.DB, w http.ResponseWriter, reportID string) *models.Report {
	if cached, ok := cache.ReportCache.Get(reportID); ok {
		if rep, ok := cached.(*models.Report); ok {
			return rep
		}
	}

	rep, err := db.GetReport(reportID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return nil
	}
	if rep == nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return nil
	}

	if rep.Status == models.ReportComplete {
		cache.ReportCache.Set(reportID, rep)
	}
	return rep
}

// HandleJobLogs returns durable run diagnostics with optional filtering
func HandleJobLogs(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		limit := 100
		if q := r.URL.Query().Get("limit"); q != "" {
			if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}

		logs, err := db.JobLogs(limit,
			r.URL.Query().Get("level"),
			r.URL.Query().Get("category"),
			r.URL.Query().Get("store"))
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if logs == nil {
			logs = []models.LogEntry{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(logs)
	}
}
