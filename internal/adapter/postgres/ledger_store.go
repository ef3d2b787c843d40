package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"landmarket/internal/adapter/notify"
	"landmarket/internal/core/port"
)

// DefaultChannel is the NOTIFY channel used when none is configured.
const DefaultChannel = "ledger_changes"

const unlistenTimeout = 5 * time.Second

// LedgerStore implements port.LedgerStore on the ledger_entries table.
// Every write issues pg_notify inside its transaction; Listen relays those
// notifications, including this process's own, to subscribers.
type LedgerStore struct {
	pool    *pgxpool.Pool
	channel string
	logger  *slog.Logger
	fanout  notify.Fanout
}

// NewLedgerStore returns a store using pool. An empty channel selects
// DefaultChannel.
func NewLedgerStore(pool *pgxpool.Pool, channel string, logger *slog.Logger) *LedgerStore {
	if channel == "" {
		channel = DefaultChannel
	}
	return &LedgerStore{pool: pool, channel: channel, logger: logger}
}

type notification struct {
	Key     string `json:"key"`
	Version int64  `json:"version"`
}

// Get returns the entry for key.
func (s *LedgerStore) Get(ctx context.Context, key string) (port.Entry, error) {
	e := port.Entry{Key: key}
	err := s.pool.QueryRow(ctx, `SELECT value, version FROM ledger_entries WHERE key = $1`, key).Scan(&e.Value, &e.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return port.Entry{Key: key}, nil
	}
	if err != nil {
		return port.Entry{}, err
	}
	return e, nil
}

// Set writes value under the version precondition and notifies listeners
// on commit.
func (s *LedgerStore) Set(ctx context.Context, key string, value []byte, expected int64) (version int64, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if err = tx.Commit(ctx); err != nil {
			version = 0
		}
	}()

	switch expected {
	case port.AnyVersion:
		err = tx.QueryRow(ctx, `INSERT INTO ledger_entries (key, value, version, updated_at)
VALUES ($1, $2, 1, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, version = ledger_entries.version + 1, updated_at = now()
RETURNING version`, key, value).Scan(&version)
	case 0:
		err = tx.QueryRow(ctx, `INSERT INTO ledger_entries (key, value, version, updated_at)
VALUES ($1, $2, 1, now())
ON CONFLICT (key) DO NOTHING
RETURNING version`, key, value).Scan(&version)
	default:
		err = tx.QueryRow(ctx, `UPDATE ledger_entries SET value = $2, version = version + 1, updated_at = now()
WHERE key = $1 AND version = $3
RETURNING version`, key, value, expected).Scan(&version)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, port.ErrVersionConflict
	}
	if err != nil {
		return 0, err
	}

	payload, err := json.Marshal(notification{Key: key, Version: version})
	if err != nil {
		return 0, err
	}
	if _, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, s.channel, string(payload)); err != nil {
		return 0, err
	}
	return version, nil
}

// Subscribe registers fn. Notifications only flow while Listen runs.
func (s *LedgerStore) Subscribe(fn func(port.Change)) func() {
	return s.fanout.Subscribe(fn)
}

// Listen holds a dedicated connection LISTENing on the store channel and
// relays notifications until ctx is done. It returns nil on cancellation.
//
// The connection is returned to the pool only after UNLISTEN succeeds, so a
// later Listen (the caller restarts it on failure) never finds a pooled
// connection still subscribed. If UNLISTEN fails the connection is taken
// out of the pool and closed.
func (s *LedgerStore) Listen(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer func() {
		unlistenCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unlistenTimeout)
		defer cancel()
		if _, err := conn.Exec(unlistenCtx, "UNLISTEN *"); err != nil {
			s.logger.Warn("unlisten failed, closing listen connection", slog.Any("error", err))
			_ = conn.Hijack().Close(unlistenCtx)
			return
		}
		conn.Release()
	}()

	if _, err = conn.Exec(ctx, "LISTEN "+pq.QuoteIdentifier(s.channel)); err != nil {
		return fmt.Errorf("listen %s: %w", s.channel, err)
	}
	s.logger.Info("listening for ledger changes", slog.String("channel", s.channel))

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		var msg notification
		if err = json.Unmarshal([]byte(n.Payload), &msg); err != nil {
			s.logger.Warn("ignoring malformed ledger notification", slog.String("payload", n.Payload), slog.Any("error", err))
			continue
		}
		s.fanout.Publish(port.Change{Key: msg.Key, Version: msg.Version})
	}
}
