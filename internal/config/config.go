package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// Misuse-log export to Google Sheets (optional).
	SheetSyncEnabled bool
	SheetBackfill    bool
	SheetCredential  string
	SpreadsheetID    string
	SheetName        string
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBPath:    getEnv("DB_PATH", "data/redeem.db"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		SheetSyncEnabled: os.Getenv("SHEET_SYNC_ENABLED") == "true",
		SheetBackfill:    os.Getenv("SHEET_BACKFILL") == "true",
		SheetCredential:  getEnv("SHEET_CREDENTIAL_PATH", "credentials.json"),
		SpreadsheetID:    os.Getenv("SHEET_SPREADSHEET_ID"),
		SheetName:        getEnv("SHEET_NAME", "MisuseLogs"),
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "your-secret-key-change-this-in-production"
		log.Println("warning: JWT_SECRET not set, using insecure default")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
