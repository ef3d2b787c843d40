// Package gcsadapter keeps each ledger document as a JSON object in a
// Cloud Storage bucket. Object generations serve as versions, so Set is a
// conditional write.
package gcsadapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/api/googleapi"

	"landmarket/internal/adapter/notify"
	"landmarket/internal/core/port"
)

// LedgerStore implements port.LedgerStore on a bucket. Notifications are
// in-process only; other processes observe changes on their next read.
type LedgerStore struct {
	client *storage.Client
	bucket string
	prefix string
	logger *slog.Logger
	fanout notify.Fanout
}

// NewLedgerStore stores objects as bucket/prefix+key+".json".
func NewLedgerStore(client *storage.Client, bucket, prefix string, logger *slog.Logger) *LedgerStore {
	return &LedgerStore{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

func (s *LedgerStore) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.prefix + key + ".json")
}

func (s *LedgerStore) Get(ctx context.Context, key string) (port.Entry, error) {
	var e port.Entry
	err := retry.Do(
		func() error {
			r, err := s.object(key).NewReader(ctx)
			if errors.Is(err, storage.ErrObjectNotExist) {
				e = port.Entry{Key: key}
				return nil
			}
			if err != nil {
				return fmt.Errorf("open object reader: %w", err)
			}
			defer func() {
				if closeErr := r.Close(); closeErr != nil {
					s.logger.Warn("Failed to close object reader", "key", key, "error", closeErr)
				}
			}()
			data, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read object: %w", err)
			}
			e = port.Entry{Key: key, Value: data, Version: r.Attrs.Generation}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Info("Retrying ledger read after error", "attempt", n, "key", key, "error", err)
		}),
	)
	if err != nil {
		return port.Entry{}, err
	}
	return e, nil
}

func (s *LedgerStore) Set(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	obj := s.object(key)
	switch {
	case expected == 0:
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	case expected > 0:
		obj = obj.If(storage.Conditions{GenerationMatch: expected})
	}

	var (
		generation int64
		lastErr    error
	)
	err := retry.Do(
		func() error {
			w := obj.NewWriter(ctx)
			w.ContentType = "application/json"
			if _, lastErr = w.Write(value); lastErr != nil {
				_ = w.Close()
				lastErr = classify(lastErr)
				return lastErr
			}
			if lastErr = classify(w.Close()); lastErr != nil {
				return lastErr
			}
			generation = w.Attrs().Generation
			return nil
		},
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, port.ErrVersionConflict)
		}),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Info("Retrying ledger write after error", "attempt", n, "key", key, "error", err)
		}),
	)
	if errors.Is(lastErr, port.ErrVersionConflict) {
		return 0, port.ErrVersionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", key, err)
	}

	s.fanout.Publish(port.Change{Key: key, Version: generation})
	return generation, nil
}

func (s *LedgerStore) Subscribe(fn func(port.Change)) func() {
	return s.fanout.Subscribe(fn)
}

// classify maps failed preconditions to ErrVersionConflict.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		return port.ErrVersionConflict
	}
	return err
}
