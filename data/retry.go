package data

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/clanvault/clanvault/tools"
)

// ExecContextWithRetry runs query on exec, retrying while sqlite reports a
// lock. Retries are logged to log.
func ExecContextWithRetry(ctx context.Context, log *slog.Logger, exec Executor, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	err := tools.RetryOnLock(ctx, log, func() error {
		var err error
		result, err = exec.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
