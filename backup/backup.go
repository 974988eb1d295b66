package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/snappy"

	"github.com/clanvault/clanvault/data"
	"github.com/clanvault/clanvault/tools"
)

// Result describes one stored snapshot.
type Result struct {
	Object      string `json:"object"`
	RawBytes    int64  `json:"rawBytes"`
	StoredBytes int64  `json:"storedBytes"`
	DurationMs  int64  `json:"durationMs"`
}

// Snapshot writes a consistent copy of db to a new file in dir using
// VACUUM INTO and returns its path.
func Snapshot(ctx context.Context, db *data.Database, dir string, at time.Time) (string, error) {
	if db.Remote {
		return "", fmt.Errorf("snapshot %s: %w", db.Target, tools.ErrRemoteDatabase)
	}

	base := strings.TrimSuffix(filepath.Base(db.Target), filepath.Ext(db.Target))
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.db", base, at.UTC().Format("20060102T150405Z")))

	if _, err := db.Client.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", path, err)
	}
	return path, nil
}

// Compress writes src to dst in the snappy framing format.
func Compress(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	w := snappy.NewBufferedWriter(out)
	n, err := io.Copy(w, in)
	if err != nil {
		out.Close()
		return n, err
	}
	if err := w.Close(); err != nil {
		out.Close()
		return n, err
	}
	return n, out.Close()
}

// Decompress reverses Compress.
func Decompress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, snappy.NewReader(in)); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Run snapshots db, compresses the snapshot and uploads it to store.
// Temporary files are removed before returning.
func Run(ctx context.Context, db *data.Database, store ObjectStorage) (Result, error) {
	start := time.Now()

	tmp, err := os.MkdirTemp("", "clanvault-backup-")
	if err != nil {
		return Result{}, err
	}
	defer os.RemoveAll(tmp)

	snap, err := Snapshot(ctx, db, tmp, start)
	if err != nil {
		return Result{}, err
	}

	packed := snap + ".sz"
	raw, err := Compress(snap, packed)
	if err != nil {
		return Result{}, fmt.Errorf("compress snapshot: %w", err)
	}

	info, err := os.Stat(packed)
	if err != nil {
		return Result{}, err
	}

	object := filepath.Base(packed)
	if err := store.Upload(ctx, packed, object); err != nil {
		return Result{}, err
	}

	res := Result{
		Object:      object,
		RawBytes:    raw,
		StoredBytes: info.Size(),
		DurationMs:  time.Since(start).Milliseconds(),
	}
	tools.Logger.Info("backup stored",
		"object", res.Object,
		"raw_bytes", res.RawBytes,
		"stored_bytes", res.StoredBytes,
		"duration_ms", res.DurationMs)

	return res, nil
}
