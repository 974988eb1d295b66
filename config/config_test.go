package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"CLANVAULT_DB_PATH", "CLANVAULT_DATA_DIR", "CLANVAULT_WORKERS",
		"CLANVAULT_HISTORY", "CLANVAULT_STATEMENT_TIMEOUT", "CLANVAULT_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.DBPath != "clan.db" {
		t.Errorf("DBPath = %q, want clan.db", cfg.DBPath)
	}
	if cfg.DataDir != "database/core" {
		t.Errorf("DataDir = %q, want database/core", cfg.DataDir)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if !cfg.HistoryEnabled {
		t.Error("HistoryEnabled = false, want true")
	}
	if cfg.StatementTimeout != 30*time.Second {
		t.Errorf("StatementTimeout = %v, want 30s", cfg.StatementTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CLANVAULT_DB_PATH", "libsql://clan.turso.io")
	t.Setenv("CLANVAULT_WORKERS", "8")
	t.Setenv("CLANVAULT_HISTORY", "false")
	t.Setenv("CLANVAULT_STATEMENT_TIMEOUT", "5")
	t.Setenv("CLANVAULT_S3_PATH_STYLE", "true")
	t.Setenv("TURSO_AUTH_TOKEN", "secret")

	cfg := Load()

	if cfg.DBPath != "libsql://clan.turso.io" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.HistoryEnabled {
		t.Error("HistoryEnabled = true, want false")
	}
	if cfg.StatementTimeout != 5*time.Second {
		t.Errorf("StatementTimeout = %v, want 5s", cfg.StatementTimeout)
	}
	if !cfg.S3PathStyle {
		t.Error("S3PathStyle = false, want true")
	}
	if cfg.AuthToken != "secret" {
		t.Errorf("AuthToken = %q, want secret", cfg.AuthToken)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("CLANVAULT_WORKERS", "-2")
	t.Setenv("CLANVAULT_STATEMENT_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.StatementTimeout != 30*time.Second {
		t.Errorf("StatementTimeout = %v, want 30s", cfg.StatementTimeout)
	}
}

func TestResolveDBPath(t *testing.T) {
	cfg := Config{DBPath: "clan.db", DataDir: "database/core"}

	tests := []struct {
		in   string
		want string
	}{
		{"", filepath.Join("database", "core", "clan.db")},
		{"other.db", filepath.Join("database", "core", "other.db")},
		{"/tmp/x/clan.db", "/tmp/x/clan.db"},
		{"./clan.db", "./clan.db"},
		{"libsql://clan.turso.io", "libsql://clan.turso.io"},
	}

	for _, tt := range tests {
		if got := cfg.ResolveDBPath(tt.in); got != tt.want {
			t.Errorf("ResolveDBPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
