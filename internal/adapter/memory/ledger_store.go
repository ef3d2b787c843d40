// Package memory is an in-process LedgerStore used by tests and by the
// memory store driver.
package memory

import (
	"context"
	"slices"
	"sync"

	"landmarket/internal/adapter/notify"
	"landmarket/internal/core/port"
)

// LedgerStore keeps entries in a map. Subscribers are notified
// synchronously after each committed write.
type LedgerStore struct {
	mu      sync.Mutex
	entries map[string]port.Entry
	fanout  notify.Fanout
}

// NewLedgerStore returns an empty store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{entries: make(map[string]port.Entry)}
}

func (s *LedgerStore) Get(_ context.Context, key string) (port.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return port.Entry{Key: key}, nil
	}
	e.Value = slices.Clone(e.Value)
	return e, nil
}

func (s *LedgerStore) Set(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	cur := s.entries[key].Version
	if expected != port.AnyVersion && cur != expected {
		s.mu.Unlock()
		return 0, port.ErrVersionConflict
	}
	next := cur + 1
	s.entries[key] = port.Entry{Key: key, Value: slices.Clone(value), Version: next}
	s.mu.Unlock()

	s.fanout.Publish(port.Change{Key: key, Version: next})
	return next, nil
}

func (s *LedgerStore) Subscribe(fn func(port.Change)) func() {
	return s.fanout.Subscribe(fn)
}

// Put stores raw bytes without a version check or notification. Tests use
// it to plant malformed documents.
func (s *LedgerStore) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.entries[key].Version
	s.entries[key] = port.Entry{Key: key, Value: slices.Clone(value), Version: cur + 1}
}
