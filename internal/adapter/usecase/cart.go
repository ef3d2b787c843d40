package usecase

import (
	"context"
	"log/slog"

	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

// CartAggregator stages per-parcel field selections until checkout. It
// never reads or writes the access ledger.
type CartAggregator struct {
	docs   *docStore
	clock  port.Clock
	logger *slog.Logger
}

var _ port.CartUseCase = (*CartAggregator)(nil)

// NewCartAggregator returns an aggregator persisting to store.
func NewCartAggregator(store port.LedgerStore, clock port.Clock, logger *slog.Logger, opts Options) *CartAggregator {
	return &CartAggregator{docs: newDocStore(store, logger, opts), clock: clock, logger: logger}
}

func cartDoc(actor string) doc[domain.Cart] {
	return doc[domain.Cart]{
		key:   port.CartKey(actor),
		empty: func() domain.Cart { return domain.Cart{} },
		repair: func(c *domain.Cart) bool {
			out, changed := c.Sanitize()
			*c = out
			return changed
		},
	}
}

// List returns the actor's cart.
func (c *CartAggregator) List(ctx context.Context, actor string) (domain.Cart, error) {
	return load(ctx, c.docs, cartDoc(actor)), nil
}

// AddSelection merges fields into the parcel's cart item by set union,
// creating the item if needed. total is stored as given.
func (c *CartAggregator) AddSelection(ctx context.Context, actor, parcelID string, fields []domain.FieldKey, total int64) (domain.Cart, error) {
	if parcelID == "" {
		return nil, port.ErrNoParcel
	}
	fields, err := selection(fields)
	if err != nil {
		return nil, err
	}
	now := c.clock.Now().UnixMilli()
	return update(ctx, c.docs, cartDoc(actor), func(cart *domain.Cart) error {
		*cart = cart.Merge(parcelID, fields, total, now)
		return nil
	})
}

// Remove deletes the parcel's item. Removing an absent parcel is a no-op.
func (c *CartAggregator) Remove(ctx context.Context, actor, parcelID string) (domain.Cart, error) {
	return update(ctx, c.docs, cartDoc(actor), func(cart *domain.Cart) error {
		if cart.Find(parcelID) < 0 {
			return errNoChange
		}
		*cart = cart.Without(parcelID)
		return nil
	})
}

// Clear empties the cart.
func (c *CartAggregator) Clear(ctx context.Context, actor string) error {
	_, err := update(ctx, c.docs, cartDoc(actor), func(cart *domain.Cart) error {
		if len(*cart) == 0 {
			return errNoChange
		}
		*cart = domain.Cart{}
		return nil
	})
	return err
}

// RemoveCovered deletes the parcel's item when every selected field is in
// unlocked, so a later checkout cannot charge for it again. It reports
// whether an item was removed.
func (c *CartAggregator) RemoveCovered(ctx context.Context, actor, parcelID string, unlocked []domain.FieldKey) (bool, error) {
	removed := false
	_, err := update(ctx, c.docs, cartDoc(actor), func(cart *domain.Cart) error {
		removed = false
		i := cart.Find(parcelID)
		if i < 0 || !domain.IsSubset((*cart)[i].SelectedFields, unlocked) {
			return errNoChange
		}
		*cart = cart.Without(parcelID)
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
