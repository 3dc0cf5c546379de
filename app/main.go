package main

import (
	"log"
	"net/http"
	"time"

	_ "time/tzdata"

	"storemon/app/internal/config"
	"storemon/app/internal/database"
	"storemon/app/internal/handlers"
	"storemon/app/internal/ingest"
	"storemon/app/internal/report"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Bootstrap source data on first run
	if cfg.AutoIngest {
		maybeIngest(db, cfg)
	}

	gen := report.NewGenerator(cfg.DBPath, cfg.ReportsDir, cfg.DefaultTimezone)

	// Setup HTTP routes
	mux := handlers.SetupRoutes(db, gen)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// maybeIngest loads the CSV source files when the samples table is empty
func maybeIngest(db *database.DB, cfg *config.Config) {
	ids, err := db.ListStoreIDs()
	if err != nil {
		log.Printf("Warning: failed to inspect store_status: %v", err)
		return
	}
	if len(ids) > 0 {
		return
	}

	log.Printf("store_status is empty, ingesting CSV data from %s", cfg.DataDir)
	if err := ingest.Run(db, cfg.DataDir); err != nil {
		log.Printf("Warning: ingestion failed: %v", err)
	}
}
