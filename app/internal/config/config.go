package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port   string
	DBPath string

	// Report output
	ReportsDir string

	// CSV ingestion
	DataDir    string
	AutoIngest bool

	// Fallback timezone for stores without a store_timezones row
	DefaultTimezone string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenv("PORT", "4555"),
		DBPath:          getenv("DB_PATH", "./storemon.db"),
		ReportsDir:      getenv("REPORTS_DIR", "./generated_reports"),
		DataDir:         getenv("DATA_DIR", "./data"),
		AutoIngest:      envBool("AUTO_INGEST", true),
		DefaultTimezone: getenv("DEFAULT_TIMEZONE", "America/Chicago"),
	}

	return cfg, nil
}

// Helper functions
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.ToLower(getenv(k, ""))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}
