package handlers

import (
	"net/http"

	"storemon/app/internal/database"
	"storemon/app/internal/report"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(db *database.DB, gen *report.Generator) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/trigger_report", HandleTriggerReport(db, gen))
	mux.HandleFunc("/api/get_report/", HandleGetReport(db))
	mux.HandleFunc("/api/logs", HandleJobLogs(db))
	return mux
}
