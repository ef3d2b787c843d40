package redisadapter

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landmarket/internal/core/port"
)

func newTestStore(t *testing.T) (*LedgerStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLedgerStore(client, "test:", "test:changes", logger), mr
}

func TestLedgerStoreVersions(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	e, err := s.Get(ctx, "cart:a")
	require.NoError(t, err)
	assert.Zero(t, e.Version)

	v, err := s.Set(ctx, "cart:a", []byte(`[]`), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	_, err = s.Set(ctx, "cart:a", []byte(`[1]`), 0)
	assert.ErrorIs(t, err, port.ErrVersionConflict)

	v, err = s.Set(ctx, "cart:a", []byte(`[2]`), 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)

	v, err = s.Set(ctx, "cart:a", []byte(`[3]`), port.AnyVersion)
	require.NoError(t, err)
	assert.EqualValues(t, 3, v)

	e, err = s.Get(ctx, "cart:a")
	require.NoError(t, err)
	assert.Equal(t, `[3]`, string(e.Value))
	assert.EqualValues(t, 3, e.Version)

	assert.Equal(t, "[3]", mr.HGet("test:cart:a", fieldData))
}

func TestLedgerStoreListenRelaysWrites(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen atomic.Int64
	defer s.Subscribe(func(c port.Change) {
		if c.Key == "slots" {
			seen.Store(c.Version)
		}
	})()

	done := make(chan error, 1)
	go func() { done <- s.Listen(ctx) }()

	// Writes made before the subscription is live are not replayed, so keep
	// writing until one arrives.
	require.Eventually(t, func() bool {
		if _, err := s.Set(context.Background(), "slots", []byte(`{}`), port.AnyVersion); err != nil {
			return false
		}
		return seen.Load() > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not stop after cancel")
	}
}
