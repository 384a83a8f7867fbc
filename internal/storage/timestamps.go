package storage

import (
	"database/sql"
	"fmt"
	"time"

	"cre/internal/errors"
	"cre/internal/logging"
)

// TimestampDB persists file modification timestamps so temporal scoring
// survives restarts. Read failures degrade to empty state and are logged;
// they never fail a query.
type TimestampDB struct {
	db     *DB
	logger *logging.Logger
}

// NewTimestampDB opens the timestamp store backed by the given database.
func NewTimestampDB(db *DB, logger *logging.Logger) (*TimestampDB, error) {
	t := &TimestampDB{db: db, logger: logger}
	if err := t.ensureSchema(); err != nil {
		return nil, errors.Wrap(errors.PersistenceFailure, "storage.init",
			"failed to initialize timestamp schema", err)
	}
	return t, nil
}

func (t *TimestampDB) ensureSchema() error {
	_, err := t.db.Exec(`
		CREATE TABLE IF NOT EXISTS file_timestamps (
			path        TEXT PRIMARY KEY,
			modified_at INTEGER NOT NULL
		)
	`)
	return err
}

// Get returns the recorded modification time for a path.
func (t *TimestampDB) Get(path string) (time.Time, bool) {
	var millis int64
	err := t.db.QueryRow(`
		SELECT modified_at FROM file_timestamps WHERE path = ?
	`, path).Scan(&millis)

	if err == sql.ErrNoRows {
		return time.Time{}, false
	}
	if err != nil {
		t.logger.Warn("Timestamp lookup failed, treating as unknown", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return time.Time{}, false
	}

	return time.UnixMilli(millis).UTC(), true
}

// Set records the modification time for a path.
func (t *TimestampDB) Set(path string, ts time.Time) error {
	_, err := t.db.Exec(`
		INSERT OR REPLACE INTO file_timestamps (path, modified_at) VALUES (?, ?)
	`, path, ts.UnixMilli())

	if err != nil {
		return errors.Wrap(errors.PersistenceFailure, "storage.set",
			fmt.Sprintf("failed to record timestamp for %s", path), err)
	}
	return nil
}

// All returns every recorded path and its modification time. Read
// failures yield an empty map.
func (t *TimestampDB) All() map[string]time.Time {
	rows, err := t.db.Query(`SELECT path, modified_at FROM file_timestamps`)
	if err != nil {
		t.logger.Warn("Timestamp scan failed, treating store as empty", map[string]interface{}{
			"error": err.Error(),
		})
		return map[string]time.Time{}
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var path string
		var millis int64
		if err := rows.Scan(&path, &millis); err != nil {
			t.logger.Warn("Skipping unreadable timestamp row", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		out[path] = time.UnixMilli(millis).UTC()
	}
	if err := rows.Err(); err != nil {
		t.logger.Warn("Timestamp scan ended early", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return out
}

// Len returns the number of recorded paths.
func (t *TimestampDB) Len() int {
	var n int
	if err := t.db.QueryRow(`SELECT COUNT(*) FROM file_timestamps`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close closes the underlying database.
func (t *TimestampDB) Close() error {
	return t.db.Close()
}
