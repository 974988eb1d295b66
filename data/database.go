// Package data manages the SQLite database that backs the clan archive.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/clanvault/clanvault/tools"
)

// Driver names registered by the imported SQL drivers.
const (
	DriverSQLite = "sqlite3"
	DriverLibsql = "libsql"
)

// Database is an open handle on a local SQLite file or a remote libsql database.
type Database struct {
	Client *sqlx.DB // SQL database connection
	Target string   // File path or remote URL (without auth token)
	Remote bool     // True for libsql:// and http(s):// targets
}

// Executor is an interface that both *sqlx.DB and *sqlx.Tx implement.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// IsRemote reports whether target names a remote libsql database.
func IsRemote(target string) bool {
	for _, scheme := range []string{"libsql://", "http://", "https://", "wss://", "ws://"} {
		if strings.HasPrefix(target, scheme) {
			return true
		}
	}
	return false
}

// Open opens the database at target. Local files are created, along with
// their parent directory, when missing. authToken is only used for remote targets.
func Open(ctx context.Context, target, authToken string) (*Database, error) {
	if target == "" {
		return nil, errors.New("database target is empty")
	}
	if IsRemote(target) {
		return openRemote(ctx, target, authToken)
	}
	return openLocal(ctx, target)
}

func openLocal(ctx context.Context, path string) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("create database file: %w", err)
		}
		f.Close()
		tools.Logger.Info("blank database file created", "path", path)
	}

	client, err := sqlx.Open(DriverSQLite, "file:"+path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// sqlite allows one writer; a single connection serializes statements
	// instead of bouncing them off SQLITE_BUSY.
	client.SetMaxOpenConns(1)

	if err := client.PingContext(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping database %s: %w", path, err)
	}

	if _, err := client.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		client.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	tools.Logger.Info("database opened", "path", path)

	return &Database{Client: client, Target: path}, nil
}

func openRemote(ctx context.Context, target, authToken string) (*Database, error) {
	dsn := target
	if authToken != "" {
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("parse database url: %w", err)
		}
		q := u.Query()
		q.Set("authToken", authToken)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	client, err := sqlx.Open(DriverLibsql, dsn)
	if err != nil {
		return nil, err
	}

	if err := client.PingContext(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping database %s: %w", target, err)
	}

	tools.Logger.Info("remote database opened", "url", target)

	return &Database{Client: client, Target: target, Remote: true}, nil
}

// Close closes the database connection.
func (db *Database) Close() error {
	if db == nil || db.Client == nil {
		return tools.ErrDatabaseNotOpen
	}
	return db.Client.Close()
}
