// Package config provides centralized configuration for clanvault.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values.
type Config struct {
	DBPath           string        // Database file name, path, or libsql:// URL
	DataDir          string        // Directory holding local database files
	AuthToken        string        // Auth token appended to remote libsql URLs
	CatalogPath      string        // Optional YAML catalogue overriding the embedded one
	Workers          int           // Concurrent DDL statements per table (default 4)
	LogLevel         string        // debug, info, warn, error
	HistoryEnabled   bool          // Record each ensure run in schema_ensure_log
	StatementTimeout time.Duration // Per-statement timeout (default 30s)

	// Backup configuration
	BackupDest  string // Local directory or s3://bucket/prefix
	S3Region    string // AWS region for S3 backups
	S3Endpoint  string // Custom endpoint (MinIO, LocalStack)
	S3PathStyle bool   // Path-style addressing, required for MinIO
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() Config {
	// ignore error if file doesn't exist
	godotenv.Load()

	workers := 4
	if val := os.Getenv("CLANVAULT_WORKERS"); val != "" {
		if w, err := strconv.Atoi(val); err == nil && w > 0 {
			workers = w
		}
	}

	statementTimeout := 30
	if val := os.Getenv("CLANVAULT_STATEMENT_TIMEOUT"); val != "" {
		if t, err := strconv.Atoi(val); err == nil && t > 0 {
			statementTimeout = t
		}
	}

	return Config{
		DBPath:           getEnv("CLANVAULT_DB_PATH", "clan.db"),
		DataDir:          getEnv("CLANVAULT_DATA_DIR", "database/core"),
		AuthToken:        os.Getenv("TURSO_AUTH_TOKEN"),
		CatalogPath:      os.Getenv("CLANVAULT_CATALOG"),
		Workers:          workers,
		LogLevel:         getEnv("CLANVAULT_LOG_LEVEL", "info"),
		HistoryEnabled:   getEnvBool("CLANVAULT_HISTORY", true),
		StatementTimeout: time.Duration(statementTimeout) * time.Second,

		BackupDest:  getEnv("CLANVAULT_BACKUP_DEST", "database/backups"),
		S3Region:    getEnv("CLANVAULT_S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("CLANVAULT_S3_ENDPOINT"),
		S3PathStyle: getEnvBool("CLANVAULT_S3_PATH_STYLE", false),
	}
}

// ResolveDBPath places a bare database file name under DataDir.
// Paths with a directory component and remote URLs are returned unchanged.
func (c Config) ResolveDBPath(name string) string {
	if name == "" {
		name = c.DBPath
	}
	if strings.Contains(name, "://") || filepath.Base(name) != name {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// getEnv returns the environment variable value or a default if not set.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvBool parses a boolean environment variable, falling back to defaultVal.
func getEnvBool(key string, defaultVal bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
