package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Lock retry configuration.
var (
	lockRetryIntervals = []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		700 * time.Millisecond,
		1000 * time.Millisecond,
	}
	maxLockRetries = 12
)

// IsLockError reports whether err is sqlite refusing work because another
// connection holds a lock.
func IsLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// lockBackoff returns the wait before retry n, holding at the last interval.
func lockBackoff(n int) time.Duration {
	if n >= len(lockRetryIntervals) {
		return lockRetryIntervals[len(lockRetryIntervals)-1]
	}
	return lockRetryIntervals[n]
}

// RetryOnLock runs fn until it succeeds, fails with something other than a
// lock error, or maxLockRetries retries are spent. Each retry is logged to
// log (Logger when nil) so a stalled run shows which step is waiting.
func RetryOnLock(ctx context.Context, log *slog.Logger, fn func() error) error {
	if log == nil {
		log = Logger
	}

	for retry := 0; ; retry++ {
		err := fn()
		if err == nil || !IsLockError(err) {
			return err
		}
		if retry == maxLockRetries {
			return fmt.Errorf("still locked after %d retries: %w", retry, err)
		}

		wait := lockBackoff(retry)
		log.Warn("database locked, retrying", "retry", retry+1, "wait_ms", wait.Milliseconds(), "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
