package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

// AccessLedger tracks which parcel fields each actor has unlocked and the
// actor's daily unlock-all quota. Each actor has one record in the store.
// The quota resets lazily: reads report a fresh quota once the calendar
// day has moved on, but nothing is written until the next mutation, which
// then persists the reset along with its own change. Unlocked fields only
// ever grow; nothing in the ledger locks a field again.
type AccessLedger struct {
	docs   *docStore
	clock  port.Clock
	logger *slog.Logger
}

var _ port.AccessUseCase = (*AccessLedger)(nil)

// NewAccessLedger returns a ledger persisting to store.
func NewAccessLedger(store port.LedgerStore, clock port.Clock, logger *slog.Logger, opts Options) *AccessLedger {
	return &AccessLedger{docs: newDocStore(store, logger, opts), clock: clock, logger: logger}
}

func (a *AccessLedger) doc(actor, today string) doc[domain.AccessRecord] {
	return doc[domain.AccessRecord]{
		key:    port.AccessKey(actor),
		empty:  func() domain.AccessRecord { return domain.NewAccessRecord(today) },
		repair: (*domain.AccessRecord).Sanitize,
	}
}

// Read returns the record as seen today. The stored document keeps its old
// DateKey and QuotaUsed until the next write.
func (a *AccessLedger) Read(ctx context.Context, actor string) (domain.AccessRecord, error) {
	today := a.clock.Today()
	rec := load(ctx, a.docs, a.doc(actor, today))
	return rec.ForDay(today), nil
}

// RecordFieldUnlock unions fields into the parcel's unlocked set. Quota is
// untouched; unlocking fields that are already unlocked writes nothing.
func (a *AccessLedger) RecordFieldUnlock(ctx context.Context, actor, parcelID string, fields []domain.FieldKey) (domain.AccessRecord, error) {
	if parcelID == "" {
		return domain.AccessRecord{}, port.ErrNoParcel
	}
	fields, err := selection(fields)
	if err != nil {
		return domain.AccessRecord{}, err
	}

	today := a.clock.Today()
	rec, err := update(ctx, a.docs, a.doc(actor, today), func(r *domain.AccessRecord) error {
		*r = r.ForDay(today)
		if !r.Unlock(parcelID, fields) {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return domain.AccessRecord{}, fmt.Errorf("record unlock of %s: %w", parcelID, err)
	}
	a.logger.Debug("fields unlocked", slog.String("actor", actor), slog.String("parcel_id", parcelID), slog.Any("fields", fields))
	return rec, nil
}

// RedeemQuotaUnlockAll spends one unit of today's quota to unlock every
// field of the parcel. A parcel with nothing left to unlock is rejected
// with ErrAlreadyUnlocked and costs nothing.
func (a *AccessLedger) RedeemQuotaUnlockAll(ctx context.Context, actor, parcelID string) (domain.AccessRecord, error) {
	if parcelID == "" {
		return domain.AccessRecord{}, port.ErrNoParcel
	}

	today := a.clock.Today()
	rec, err := update(ctx, a.docs, a.doc(actor, today), func(r *domain.AccessRecord) error {
		*r = r.ForDay(today)
		switch {
		case !r.IsMember:
			return port.ErrNotMember
		case len(r.Remaining(parcelID)) == 0:
			return port.ErrAlreadyUnlocked
		case r.QuotaUsed >= domain.QuotaLimit:
			return port.ErrQuotaExceeded
		}
		r.Unlock(parcelID, domain.AllFieldKeys)
		r.QuotaUsed++
		return nil
	})
	if err != nil {
		return domain.AccessRecord{}, err
	}
	a.logger.Info("quota redeemed", slog.String("actor", actor), slog.String("parcel_id", parcelID), slog.Int("quota_used", rec.QuotaUsed))
	return rec, nil
}

// RemainingLockedFields returns the fields not yet unlocked for the parcel.
func (a *AccessLedger) RemainingLockedFields(ctx context.Context, actor, parcelID string) ([]domain.FieldKey, error) {
	rec, err := a.Read(ctx, actor)
	if err != nil {
		return nil, err
	}
	return rec.Remaining(parcelID), nil
}

// SetMembership grants or revokes the member capability.
func (a *AccessLedger) SetMembership(ctx context.Context, actor string, member bool) (domain.AccessRecord, error) {
	today := a.clock.Today()
	rec, err := update(ctx, a.docs, a.doc(actor, today), func(r *domain.AccessRecord) error {
		*r = r.ForDay(today)
		if r.IsMember == member {
			return errNoChange
		}
		r.IsMember = member
		return nil
	})
	if err != nil {
		return domain.AccessRecord{}, fmt.Errorf("set membership: %w", err)
	}
	return rec, nil
}

// QuotaStatus summarises today's quota.
func (a *AccessLedger) QuotaStatus(ctx context.Context, actor string) (port.QuotaStatus, error) {
	rec, err := a.Read(ctx, actor)
	if err != nil {
		return port.QuotaStatus{}, err
	}
	return port.QuotaStatus{
		DateKey:  rec.DateKey,
		IsMember: rec.IsMember,
		Used:     rec.QuotaUsed,
		Limit:    domain.QuotaLimit,
		Left:     rec.QuotaLeft(),
	}, nil
}

// selection validates a caller-supplied field set and returns it in
// canonical order.
func selection(fields []domain.FieldKey) ([]domain.FieldKey, error) {
	for _, f := range fields {
		if !f.Valid() {
			return nil, fmt.Errorf("%w: %q", port.ErrInvalidField, f)
		}
	}
	fields = domain.NormalizeFields(fields)
	if len(fields) == 0 {
		return nil, port.ErrEmptySelection
	}
	return fields, nil
}
