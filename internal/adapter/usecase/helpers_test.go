package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"landmarket/internal/adapter/clock"
	"landmarket/internal/adapter/memory"
	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
	"landmarket/internal/core/port/mocks"
)

var ict = time.FixedZone("ICT", 7*60*60)

// monday is 2026-10-12 09:00 local time.
var monday = time.Date(2026, time.October, 12, 9, 0, 0, 0, ict)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type env struct {
	store    *memory.LedgerStore
	clock    *clock.Fixed
	access   *AccessLedger
	cart     *CartAggregator
	payments *PaymentConfirmation
	slots    *SlotLedger
	sched    *CampaignScheduler
	gateway  *mocks.MockPaymentGateway
	neg      *UnlockNegotiator
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithStore(t, memory.NewLedgerStore(), nil)
}

// newEnvWithStore builds the services on wrap(store) when wrap is not nil,
// keeping direct access to the memory store.
func newEnvWithStore(t *testing.T, store *memory.LedgerStore, wrap func(port.LedgerStore) port.LedgerStore) *env {
	t.Helper()
	var ls port.LedgerStore = store
	if wrap != nil {
		ls = wrap(store)
	}
	log := discardLogger()
	opts := Options{RetryDelay: time.Millisecond}
	e := &env{
		store:   store,
		clock:   clock.NewFixed(monday),
		gateway: mocks.NewMockPaymentGateway(t),
	}
	e.access = NewAccessLedger(ls, e.clock, log, opts)
	e.cart = NewCartAggregator(ls, e.clock, log, opts)
	e.payments = NewPaymentConfirmation(e.access, e.cart, ls, log, opts)
	e.slots = NewSlotLedger(ls, log, opts)
	e.sched = NewCampaignScheduler(e.slots, ls, e.clock, log, opts)
	e.neg = NewUnlockNegotiator(e.access, e.cart, e.payments, e.gateway, log)
	return e
}

var errDiskFull = errors.New("disk full")

// faultyStore fails writes for which fail returns true.
type faultyStore struct {
	port.LedgerStore

	mu   sync.Mutex
	fail func(key string, n int) bool
	sets map[string]int
}

func newFaultyStore(fail func(key string, n int) bool) func(port.LedgerStore) port.LedgerStore {
	return func(s port.LedgerStore) port.LedgerStore {
		return &faultyStore{LedgerStore: s, fail: fail, sets: map[string]int{}}
	}
}

func (s *faultyStore) Set(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	s.mu.Lock()
	s.sets[key]++
	n := s.sets[key]
	s.mu.Unlock()
	if s.fail(key, n) {
		return 0, errDiskFull
	}
	return s.LedgerStore.Set(ctx, key, value, expected)
}

// racingStore lets another writer bump the key between the first read and
// write, forcing one version conflict.
type racingStore struct {
	port.LedgerStore

	once sync.Once
	race func()
}

func (s *racingStore) Set(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	s.once.Do(s.race)
	return s.LedgerStore.Set(ctx, key, value, expected)
}

func fields(f ...domain.FieldKey) []domain.FieldKey { return f }
