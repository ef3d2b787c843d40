package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

// maxOrders bounds the per-actor order log. The oldest entries go first.
const maxOrders = 100

type orderLog []port.OrderRecord

func (l orderLog) find(orderID string) int {
	return slices.IndexFunc(l, func(r port.OrderRecord) bool { return r.ID == orderID })
}

func ordersDoc(actor string) doc[orderLog] {
	return doc[orderLog]{
		key:   port.OrdersKey(actor),
		empty: func() orderLog { return orderLog{} },
		repair: func(l *orderLog) bool {
			n := len(*l)
			*l = slices.DeleteFunc(*l, func(r port.OrderRecord) bool { return r.ID == "" })
			return len(*l) != n
		},
	}
}

// PaymentConfirmation applies payments the gateway has already taken. It
// unlocks the paid fields, removes cart items the payment covers and keeps
// a per-actor log of orders. An order is logged as charged as soon as the
// gateway succeeds and as confirmed once every line is applied; a
// confirmed order id is refused, a charged one may be applied again.
type PaymentConfirmation struct {
	access port.AccessUseCase
	cart   port.CartUseCase
	docs   *docStore
	logger *slog.Logger
}

var _ port.PaymentUseCase = (*PaymentConfirmation)(nil)

// NewPaymentConfirmation wires confirmation to the access ledger and cart.
// Confirmed order ids are kept in store.
func NewPaymentConfirmation(access port.AccessUseCase, cart port.CartUseCase, store port.LedgerStore, logger *slog.Logger, opts Options) *PaymentConfirmation {
	return &PaymentConfirmation{
		access: access,
		cart:   cart,
		docs:   newDocStore(store, logger, opts),
		logger: logger,
	}
}

// Confirm unlocks fields of one parcel for a paid order and drops the
// parcel's cart item if the purchase covers it. An order id that was
// already confirmed fails with ErrDuplicateOrder; an empty order id is
// never deduplicated.
func (p *PaymentConfirmation) Confirm(ctx context.Context, actor, orderID, parcelID string, fields []domain.FieldKey) (*port.Receipt, error) {
	if parcelID == "" {
		return nil, port.ErrNoParcel
	}
	fields, err := selection(fields)
	if err != nil {
		return nil, err
	}
	if p.confirmed(ctx, actor, orderID) {
		return nil, fmt.Errorf("%w: %s", port.ErrDuplicateOrder, orderID)
	}

	rec, err := p.access.RecordFieldUnlock(ctx, actor, parcelID, fields)
	if err != nil {
		return nil, err
	}
	unlocked := rec.Unlocked(parcelID)
	if _, err = p.cart.RemoveCovered(ctx, actor, parcelID, unlocked); err != nil {
		p.logger.Error("failed to drop paid cart item", slog.String("actor", actor), slog.String("parcel_id", parcelID), slog.Any("error", err))
	}
	p.remember(ctx, actor, orderID)

	p.logger.Info("payment confirmed", slog.String("actor", actor), slog.String("order_id", orderID), slog.String("parcel_id", parcelID))
	return &port.Receipt{
		OrderID:  orderID,
		ParcelID: parcelID,
		Fields:   fields,
		Amount:   domain.PriceOf(fields),
		Unlocked: unlocked,
	}, nil
}

// ConfirmCartCheckout unlocks every item of a paid cart. When all items are
// applied the cart is cleared. Otherwise only the applied items leave the
// cart, the failed ones stay for a retry with the same order id, and the
// per-parcel errors are returned joined alongside the result.
func (p *PaymentConfirmation) ConfirmCartCheckout(ctx context.Context, actor, orderID string, cart domain.Cart) (*port.CheckoutResult, error) {
	if len(cart) == 0 {
		return nil, port.ErrCartEmpty
	}
	if p.confirmed(ctx, actor, orderID) {
		return nil, fmt.Errorf("%w: %s", port.ErrDuplicateOrder, orderID)
	}

	res := &port.CheckoutResult{OrderID: orderID, Amount: cart.Total(), Applied: []string{}}
	unlocked := make(map[string][]domain.FieldKey, len(cart))
	var errs []error
	for _, it := range cart {
		rec, err := p.access.RecordFieldUnlock(ctx, actor, it.ParcelID, it.SelectedFields)
		if err != nil {
			if res.Failed == nil {
				res.Failed = map[string]string{}
			}
			res.Failed[it.ParcelID] = err.Error()
			errs = append(errs, fmt.Errorf("unlock %s: %w", it.ParcelID, err))
			continue
		}
		res.Applied = append(res.Applied, it.ParcelID)
		unlocked[it.ParcelID] = rec.Unlocked(it.ParcelID)
	}

	if len(errs) == 0 {
		if err := p.cart.Clear(ctx, actor); err != nil {
			p.logger.Error("failed to clear cart after checkout", slog.String("actor", actor), slog.Any("error", err))
		}
		p.remember(ctx, actor, orderID)
		p.logger.Info("cart checkout confirmed", slog.String("actor", actor), slog.String("order_id", orderID), slog.Int("items", len(cart)))
		return res, nil
	}

	for _, id := range res.Applied {
		if _, err := p.cart.RemoveCovered(ctx, actor, id, unlocked[id]); err != nil {
			p.logger.Error("failed to drop paid cart item", slog.String("actor", actor), slog.String("parcel_id", id), slog.Any("error", err))
		}
	}
	p.logger.Warn("cart checkout partially applied",
		slog.String("actor", actor),
		slog.String("order_id", orderID),
		slog.Int("applied", len(res.Applied)),
		slog.Int("failed", len(res.Failed)),
	)
	return res, errors.Join(errs...)
}

// RecordCharge marks order as charged and keeps its lines until the order
// is confirmed. Orders without an id are not tracked.
func (p *PaymentConfirmation) RecordCharge(ctx context.Context, order port.Order) error {
	if order.ID == "" {
		return nil
	}
	return p.track(ctx, order.Actor, port.OrderRecord{
		ID:    order.ID,
		State: port.OrderCharged,
		Lines: order.Lines,
	})
}

// LookupOrder returns the actor's record of orderID. Unlike the display
// reads it reports storage errors, because callers decide whether to charge
// on its answer.
func (p *PaymentConfirmation) LookupOrder(ctx context.Context, actor, orderID string) (*port.OrderRecord, error) {
	if orderID == "" {
		return nil, nil
	}
	l, err := get(ctx, p.docs, ordersDoc(actor))
	if err != nil {
		return nil, err
	}
	i := l.find(orderID)
	if i < 0 {
		return nil, nil
	}
	rec := l[i]
	return &rec, nil
}

func (p *PaymentConfirmation) confirmed(ctx context.Context, actor, orderID string) bool {
	if orderID == "" {
		return false
	}
	l := load(ctx, p.docs, ordersDoc(actor))
	i := l.find(orderID)
	return i >= 0 && l[i].State == port.OrderConfirmed
}

func (p *PaymentConfirmation) remember(ctx context.Context, actor, orderID string) {
	if orderID == "" {
		return
	}
	err := p.track(ctx, actor, port.OrderRecord{ID: orderID, State: port.OrderConfirmed})
	if err != nil {
		p.logger.Error("failed to record order", slog.String("actor", actor), slog.String("order_id", orderID), slog.Any("error", err))
	}
}

// track stores rec as the newest entry of the actor's order log, replacing
// any earlier entry with the same id.
func (p *PaymentConfirmation) track(ctx context.Context, actor string, rec port.OrderRecord) error {
	_, err := update(ctx, p.docs, ordersDoc(actor), func(l *orderLog) error {
		next := slices.Clone(*l)
		if i := next.find(rec.ID); i >= 0 {
			if next[i].State == rec.State {
				return errNoChange
			}
			next = slices.Delete(next, i, i+1)
		}
		next = append(next, rec)
		if len(next) > maxOrders {
			next = next[len(next)-maxOrders:]
		}
		*l = next
		return nil
	})
	return err
}
