package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"landmarket/internal/core/port"
)

// WriteMode decides how ledger writes treat concurrent writers.
type WriteMode string

const (
	// WriteCAS makes every read-modify-write conditional on the version it
	// read and retries on conflict.
	WriteCAS WriteMode = "cas"
	// WriteLastWins writes unconditionally. Two sessions racing on the same
	// key can lose an update.
	WriteLastWins WriteMode = "last-write-wins"
)

// Options tune the ledgers' storage behaviour. Mode selects conditional or
// unconditional writes. Retries and RetryDelay bound the backoff applied
// when a conditional write loses to another writer. Zero fields take the
// value from DefaultOptions.
type Options struct {
	Mode       WriteMode
	Retries    uint
	RetryDelay time.Duration
}

// DefaultOptions are used for zero fields of Options.
var DefaultOptions = Options{Mode: WriteCAS, Retries: 8, RetryDelay: 5 * time.Millisecond}

// errNoChange aborts an update without writing.
var errNoChange = errors.New("no change")

type docStore struct {
	store  port.LedgerStore
	logger *slog.Logger
	opts   Options
}

func newDocStore(store port.LedgerStore, logger *slog.Logger, opts Options) *docStore {
	if opts.Mode == "" {
		opts.Mode = DefaultOptions.Mode
	}
	if opts.Retries == 0 {
		opts.Retries = DefaultOptions.Retries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultOptions.RetryDelay
	}
	return &docStore{store: store, logger: logger, opts: opts}
}

// doc describes one JSON document in the store.
type doc[T any] struct {
	key string
	// empty builds the document used when the key is absent or unreadable.
	empty func() T
	// repair fixes shape problems after decoding and reports whether it
	// changed anything. May be nil.
	repair func(*T) bool
}

// decode turns a stored entry into T. Missing keys and malformed documents
// fall back to d.empty; malformed state is logged, never returned.
func decode[T any](ds *docStore, d doc[T], e port.Entry) T {
	if e.Version == 0 || len(e.Value) == 0 {
		return d.empty()
	}
	var v T
	if err := json.Unmarshal(e.Value, &v); err != nil {
		ds.logger.Warn("malformed ledger state, using default", slog.String("key", d.key), slog.Any("error", err))
		return d.empty()
	}
	if d.repair != nil && d.repair(&v) {
		ds.logger.Warn("repaired malformed ledger state", slog.String("key", d.key))
	}
	return v
}

// load reads d for display. Storage errors are logged and answered with the
// default document.
func load[T any](ctx context.Context, ds *docStore, d doc[T]) T {
	e, err := ds.store.Get(ctx, d.key)
	if err != nil {
		ds.logger.Error("ledger read failed, using default", slog.String("key", d.key), slog.Any("error", err))
		return d.empty()
	}
	return decode(ds, d, e)
}

// get reads d for a decision that must not be taken on a default document.
// Storage errors are returned; malformed state still falls back.
func get[T any](ctx context.Context, ds *docStore, d doc[T]) (T, error) {
	e, err := ds.store.Get(ctx, d.key)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read %s: %w", d.key, err)
	}
	return decode(ds, d, e), nil
}

// update runs a read-modify-write of d. fn mutates the decoded document;
// returning errNoChange skips the write, any other error aborts the update
// and is returned as is. Version conflicts are retried with backoff.
func update[T any](ctx context.Context, ds *docStore, d doc[T], fn func(*T) error) (T, error) {
	var (
		out     T
		lastErr error
	)
	err := retry.Do(
		func() error {
			out, lastErr = updateOnce(ctx, ds, d, fn)
			return lastErr
		},
		retry.Attempts(ds.opts.Retries),
		retry.Delay(ds.opts.RetryDelay),
		retry.MaxJitter(ds.opts.RetryDelay),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, port.ErrVersionConflict)
		}),
		retry.OnRetry(func(n uint, err error) {
			ds.logger.Debug("ledger write conflict, retrying", slog.String("key", d.key), slog.Uint64("attempt", uint64(n)))
		}),
	)
	if err == nil {
		return out, nil
	}
	var zero T
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}
	if lastErr == nil {
		lastErr = err
	}
	return zero, lastErr
}

func updateOnce[T any](ctx context.Context, ds *docStore, d doc[T], fn func(*T) error) (T, error) {
	var zero T
	e, err := ds.store.Get(ctx, d.key)
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", d.key, err)
	}
	v := decode(ds, d, e)
	if err = fn(&v); err != nil {
		if errors.Is(err, errNoChange) {
			return v, nil
		}
		return zero, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", d.key, err)
	}
	expected := e.Version
	if ds.opts.Mode == WriteLastWins {
		expected = port.AnyVersion
	}
	if _, err = ds.store.Set(ctx, d.key, data, expected); err != nil {
		if errors.Is(err, port.ErrVersionConflict) {
			return zero, err
		}
		return zero, fmt.Errorf("write %s: %w", d.key, err)
	}
	return v, nil
}
