package storage

import (
	"context"
	"database/sql"

	"github.com/teranos/cashngo/errors"
)

// SQLiteBackend keeps snapshots in the kv_entries table (see db/sqlite/migrations).
// Several processes may share one database file; SQLite's write lock serializes
// them and the revision column orders their writes.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend wraps a migrated database
func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// upsertSQL writes value (NULL for a clear) under the next store-wide revision
const upsertSQL = `
	INSERT INTO kv_entries (key, value, revision, updated_at)
	VALUES (?, ?, (SELECT COALESCE(MAX(revision), 0) + 1 FROM kv_entries), CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		revision = excluded.revision,
		updated_at = excluded.updated_at
	RETURNING revision`

// Get returns the stored snapshot for key
func (b *SQLiteBackend) Get(ctx context.Context, key string) (Entry, bool, error) {
	var value sql.NullString
	var entry Entry
	err := b.db.QueryRowContext(ctx,
		"SELECT value, revision FROM kv_entries WHERE key = ?", key,
	).Scan(&value, &entry.Revision)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, errors.Wrapf(err, "get %s", key)
	}
	if !value.Valid {
		return entry, false, nil
	}
	entry.Value = []byte(value.String)
	return entry, true, nil
}

// Set stores value under key and returns the revision assigned to the write
func (b *SQLiteBackend) Set(ctx context.Context, key string, value []byte) (int64, error) {
	var revision int64
	if err := b.db.QueryRowContext(ctx, upsertSQL, key, string(value)).Scan(&revision); err != nil {
		return 0, errors.Wrapf(err, "set %s", key)
	}
	return revision, nil
}

// Delete clears key, leaving a tombstone so watchers in other processes see the clear
func (b *SQLiteBackend) Delete(ctx context.Context, key string) (int64, error) {
	var revision int64
	if err := b.db.QueryRowContext(ctx, upsertSQL, key, nil).Scan(&revision); err != nil {
		return 0, errors.Wrapf(err, "delete %s", key)
	}
	return revision, nil
}

// ChangesSince lists keys written after revision, oldest first
func (b *SQLiteBackend) ChangesSince(ctx context.Context, revision int64) ([]Change, error) {
	rows, err := b.db.QueryContext(ctx,
		"SELECT key, value, revision FROM kv_entries WHERE revision > ? ORDER BY revision", revision)
	if err != nil {
		return nil, errors.Wrap(err, "query changes")
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var c Change
		var value sql.NullString
		if err := rows.Scan(&c.Key, &value, &c.Revision); err != nil {
			return nil, errors.Wrap(err, "scan change")
		}
		if value.Valid {
			c.Value = []byte(value.String)
		}
		changes = append(changes, c)
	}
	return changes, errors.Wrap(rows.Err(), "iterate changes")
}

// CurrentRevision returns the highest revision written so far
func (b *SQLiteBackend) CurrentRevision(ctx context.Context) (int64, error) {
	var revision int64
	err := b.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(revision), 0) FROM kv_entries").Scan(&revision)
	return revision, errors.Wrap(err, "current revision")
}

// Close closes the underlying database
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
