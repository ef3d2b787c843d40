package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

type slotMap map[string]domain.SlotRecord

var slotsDoc = doc[slotMap]{
	key:   port.KeySlots,
	empty: func() slotMap { return slotMap{} },
	repair: func(m *slotMap) bool {
		if *m == nil {
			*m = slotMap{}
			return false
		}
		changed := false
		for k, rec := range *m {
			if rec.Sanitize() {
				(*m)[k] = rec
				changed = true
			}
		}
		return changed
	},
}

// SlotLedger counts campaign reservations per (date, channel, mode) against
// the channel capacity. All counters live in one document, so reservations
// for different campaigns contend on the same key and rely on the
// conflict retry of the write mode. A slot that was never reserved reports
// the channel's default capacity.
type SlotLedger struct {
	docs   *docStore
	logger *slog.Logger
}

var _ port.SlotUseCase = (*SlotLedger)(nil)

// NewSlotLedger returns a slot ledger persisting to store.
func NewSlotLedger(store port.LedgerStore, logger *slog.Logger, opts Options) *SlotLedger {
	return &SlotLedger{docs: newDocStore(store, logger, opts), logger: logger}
}

func checkSlotKey(key domain.SlotKey) error {
	switch {
	case key.Date == "":
		return port.ErrNoDate
	case !key.Channel.Valid():
		return fmt.Errorf("%w: %q", port.ErrUnknownChannel, key.Channel)
	case key.Mode == "":
		return port.ErrNoMode
	case !domain.ValidMode(key.Mode):
		return fmt.Errorf("%w: %q", port.ErrInvalidMode, key.Mode)
	}
	if _, err := domain.ParseDate(key.Date); err != nil {
		return fmt.Errorf("%w: %q", port.ErrInvalidDate, key.Date)
	}
	return nil
}

func (m slotMap) record(key domain.SlotKey) domain.SlotRecord {
	if rec, ok := m[key.String()]; ok {
		return rec
	}
	return domain.NewSlotRecord(key.Channel)
}

// Reserve takes one unit of the slot's capacity. A full slot fails with a
// *port.SlotFullError and is left unchanged.
func (s *SlotLedger) Reserve(ctx context.Context, key domain.SlotKey) (domain.SlotInfo, error) {
	if err := checkSlotKey(key); err != nil {
		return domain.SlotInfo{}, err
	}
	var rec domain.SlotRecord
	_, err := update(ctx, s.docs, slotsDoc, func(m *slotMap) error {
		rec = m.record(key)
		if rec.Used >= rec.Capacity {
			return &port.SlotFullError{Channel: key.Channel, Date: key.Date, Mode: key.Mode}
		}
		rec.Used++
		next := maps.Clone(*m)
		next[key.String()] = rec
		*m = next
		return nil
	})
	if err != nil {
		return domain.SlotInfo{}, err
	}
	s.logger.Debug("slot reserved", slog.String("slot", key.String()), slog.Int("left", rec.Left()))
	return rec.Info(key), nil
}

// Release gives back one unit. Used never drops below zero.
func (s *SlotLedger) Release(ctx context.Context, key domain.SlotKey) (domain.SlotInfo, error) {
	if err := checkSlotKey(key); err != nil {
		return domain.SlotInfo{}, err
	}
	var rec domain.SlotRecord
	_, err := update(ctx, s.docs, slotsDoc, func(m *slotMap) error {
		rec = m.record(key)
		if rec.Used == 0 {
			return errNoChange
		}
		rec.Used--
		next := maps.Clone(*m)
		next[key.String()] = rec
		*m = next
		return nil
	})
	if err != nil {
		return domain.SlotInfo{}, fmt.Errorf("release %s: %w", key, err)
	}
	return rec.Info(key), nil
}

// Info returns the slot's current counters. Unreserved slots report the
// channel's default capacity.
func (s *SlotLedger) Info(ctx context.Context, key domain.SlotKey) (domain.SlotInfo, error) {
	if err := checkSlotKey(key); err != nil {
		return domain.SlotInfo{}, err
	}
	m := load(ctx, s.docs, slotsDoc)
	return m.record(key).Info(key), nil
}
