// Package redisadapter stores the ledgers in Redis hashes and broadcasts
// changes over pub/sub so every process sharing the instance sees them.
package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"landmarket/internal/adapter/notify"
	"landmarket/internal/core/port"
)

const (
	fieldVersion = "v"
	fieldData    = "d"
)

// LedgerStore implements port.LedgerStore. Each key is a hash holding the
// document and its version; Set uses WATCH/MULTI for the version check.
type LedgerStore struct {
	client  redis.UniversalClient
	prefix  string
	channel string
	logger  *slog.Logger
	fanout  notify.Fanout
}

// NewLedgerStore wraps client. Keys are stored as prefix+key.
func NewLedgerStore(client redis.UniversalClient, prefix, channel string, logger *slog.Logger) *LedgerStore {
	return &LedgerStore{client: client, prefix: prefix, channel: channel, logger: logger}
}

type notification struct {
	Key     string `json:"key"`
	Version int64  `json:"version"`
}

func (s *LedgerStore) Get(ctx context.Context, key string) (port.Entry, error) {
	vals, err := s.client.HMGet(ctx, s.prefix+key, fieldVersion, fieldData).Result()
	if err != nil {
		return port.Entry{}, err
	}
	e := port.Entry{Key: key}
	if vals[0] == nil {
		return e, nil
	}
	raw, _ := vals[0].(string)
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return port.Entry{}, fmt.Errorf("parse version of %s: %w", key, err)
	}
	e.Version = version
	if d, ok := vals[1].(string); ok {
		e.Value = []byte(d)
	}
	return e, nil
}

func (s *LedgerStore) Set(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	k := s.prefix + key
	var next int64
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.HGet(ctx, k, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			cur, err = 0, nil
		}
		if err != nil {
			return err
		}
		if expected != port.AnyVersion && cur != expected {
			return port.ErrVersionConflict
		}
		next = cur + 1
		payload, err := json.Marshal(notification{Key: key, Version: next})
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, fieldVersion, next, fieldData, value)
			pipe.Publish(ctx, s.channel, payload)
			return nil
		})
		return err
	}, k)
	if errors.Is(err, redis.TxFailedErr) {
		return 0, port.ErrVersionConflict
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Subscribe registers fn. Notifications only flow while Listen runs.
func (s *LedgerStore) Subscribe(fn func(port.Change)) func() {
	return s.fanout.Subscribe(fn)
}

// Listen relays pub/sub messages to subscribers until ctx is done. It
// returns nil on cancellation.
func (s *LedgerStore) Listen(ctx context.Context) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	s.logger.Info("listening for ledger changes", slog.String("channel", s.channel))

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("redis subscription closed")
			}
			var n notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				s.logger.Warn("ignoring malformed ledger notification", slog.String("payload", msg.Payload), slog.Any("error", err))
				continue
			}
			s.fanout.Publish(port.Change{Key: n.Key, Version: n.Version})
		}
	}
}
