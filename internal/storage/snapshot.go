package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// snapshotPayload is the on-disk snapshot format: path -> epoch millis.
type snapshotPayload struct {
	Version    int              `json:"version"`
	Timestamps map[string]int64 `json:"timestamps"`
}

const snapshotVersion = 1

// ExportSnapshot writes a zstd-compressed snapshot of the timestamp
// store to w.
func (t *TimestampDB) ExportSnapshot(w io.Writer) error {
	payload := snapshotPayload{
		Version:    snapshotVersion,
		Timestamps: make(map[string]int64),
	}
	for path, ts := range t.All() {
		payload.Timestamps[path] = ts.UnixMilli()
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}

	if err := json.NewEncoder(zw).Encode(&payload); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return zw.Close()
}

// ImportSnapshot reads a zstd-compressed snapshot from r and merges it
// in a single transaction. A snapshot entry is applied only when it is
// newer than the local timestamp, so importing a stale snapshot never
// regresses live state. Returns the number of entries applied.
func (t *TimestampDB) ImportSnapshot(r io.Reader) (int, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var payload snapshotPayload
	if err := json.NewDecoder(zr).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if payload.Version != snapshotVersion {
		return 0, fmt.Errorf("unsupported snapshot version: %d", payload.Version)
	}

	count := 0
	err = t.db.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO file_timestamps (path, modified_at) VALUES (?, ?)
			ON CONFLICT(path) DO UPDATE SET modified_at = excluded.modified_at
			WHERE excluded.modified_at > file_timestamps.modified_at
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for path, millis := range payload.Timestamps {
			res, err := stmt.Exec(path, millis)
			if err != nil {
				return err
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			count += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import snapshot: %w", err)
	}

	return count, nil
}

// ExportSnapshotFile writes a snapshot to the given file path.
func (t *TimestampDB) ExportSnapshotFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	return t.ExportSnapshot(f)
}

// ImportSnapshotFile reads a snapshot from the given file path.
func (t *TimestampDB) ImportSnapshotFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	return t.ImportSnapshot(f)
}
