// Package sqliteadapter persists the ledgers in a local SQLite file, the
// device-local storage of a single installation.
package sqliteadapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"landmarket/internal/adapter/notify"
	"landmarket/internal/core/port"
)

// LedgerStore implements port.LedgerStore on a SQLite table. Change
// notifications are delivered in-process after each commit.
type LedgerStore struct {
	db     *sql.DB
	fanout notify.Fanout
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*LedgerStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time keeps version checks and updates serialised.
	db.SetMaxOpenConns(1)
	s, err := NewLedgerStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewLedgerStore wraps db and creates the table if missing.
func NewLedgerStore(ctx context.Context, db *sql.DB) (*LedgerStore, error) {
	s := &LedgerStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate sqlite ledger: %w", err)
	}
	return s, nil
}

func (s *LedgerStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS ledger_entries (
    key        TEXT PRIMARY KEY,
    value      BLOB    NOT NULL,
    version    INTEGER NOT NULL,
    updated_at TEXT    NOT NULL
);`)
	return err
}

// Close closes the database.
func (s *LedgerStore) Close() error {
	return s.db.Close()
}

func (s *LedgerStore) Get(ctx context.Context, key string) (port.Entry, error) {
	e := port.Entry{Key: key}
	err := s.db.QueryRowContext(ctx, `SELECT value, version FROM ledger_entries WHERE key = ?`, key).Scan(&e.Value, &e.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return port.Entry{Key: key}, nil
	}
	if err != nil {
		return port.Entry{}, err
	}
	return e, nil
}

func (s *LedgerStore) Set(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	var (
		version int64
		err     error
	)
	switch expected {
	case port.AnyVersion:
		err = s.db.QueryRowContext(ctx, `INSERT INTO ledger_entries (key, value, version, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, version = ledger_entries.version + 1, updated_at = excluded.updated_at
RETURNING version`, key, value, now).Scan(&version)
	case 0:
		err = s.db.QueryRowContext(ctx, `INSERT INTO ledger_entries (key, value, version, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT (key) DO NOTHING
RETURNING version`, key, value, now).Scan(&version)
	default:
		err = s.db.QueryRowContext(ctx, `UPDATE ledger_entries SET value = ?, version = version + 1, updated_at = ?
WHERE key = ? AND version = ?
RETURNING version`, value, now, key, expected).Scan(&version)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, port.ErrVersionConflict
	}
	if err != nil {
		return 0, err
	}

	s.fanout.Publish(port.Change{Key: key, Version: version})
	return version, nil
}

func (s *LedgerStore) Subscribe(fn func(port.Change)) func() {
	return s.fanout.Subscribe(fn)
}
