package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

// UnlockNegotiator coordinates a single unlock interaction: it shows what is
// still locked and routes the chosen path to the cart, the gateway or the
// quota. It keeps no state of its own.
type UnlockNegotiator struct {
	access   port.AccessUseCase
	cart     port.CartUseCase
	payments port.PaymentUseCase
	gateway  port.PaymentGateway
	logger   *slog.Logger
}

var _ port.NegotiatorUseCase = (*UnlockNegotiator)(nil)

func NewUnlockNegotiator(
	access port.AccessUseCase,
	cart port.CartUseCase,
	payments port.PaymentUseCase,
	gateway port.PaymentGateway,
	logger *slog.Logger,
) *UnlockNegotiator {
	return &UnlockNegotiator{
		access:   access,
		cart:     cart,
		payments: payments,
		gateway:  gateway,
		logger:   logger,
	}
}

// Offer describes the parcel's locked fields with prices. A fully disclosed
// parcel is reported through Offer.AlreadyUnlocked, not as an error.
func (n *UnlockNegotiator) Offer(ctx context.Context, actor, parcelID string) (*port.Offer, error) {
	if parcelID == "" {
		return nil, port.ErrNoParcel
	}
	rec, err := n.access.Read(ctx, actor)
	if err != nil {
		return nil, err
	}
	cart, err := n.cart.List(ctx, actor)
	if err != nil {
		return nil, err
	}

	locked := rec.Remaining(parcelID)
	inCart := []domain.FieldKey{}
	if i := cart.Find(parcelID); i >= 0 {
		inCart = domain.IntersectFields(cart[i].SelectedFields, locked)
	}
	return &port.Offer{
		ParcelID:        parcelID,
		AlreadyUnlocked: len(locked) == 0,
		Unlocked:        rec.Unlocked(parcelID),
		Locked:          domain.PriceList(locked),
		LockedTotal:     domain.PriceOf(locked),
		InCart:          inCart,
		CanRedeem:       rec.IsMember && rec.QuotaLeft() > 0 && len(locked) > 0,
		QuotaLeft:       rec.QuotaLeft(),
	}, nil
}

// lockable narrows a selection to the fields still locked for the parcel.
func (n *UnlockNegotiator) lockable(ctx context.Context, actor, parcelID string, fields []domain.FieldKey) ([]domain.FieldKey, error) {
	if parcelID == "" {
		return nil, port.ErrNoParcel
	}
	fields, err := selection(fields)
	if err != nil {
		return nil, err
	}
	remaining, err := n.access.RemainingLockedFields(ctx, actor, parcelID)
	if err != nil {
		return nil, err
	}
	fields = domain.IntersectFields(fields, remaining)
	if len(fields) == 0 {
		return nil, port.ErrAlreadyUnlocked
	}
	return fields, nil
}

// StageToCart adds the selection to the cart. The stored total is the list
// price of everything now staged for the parcel.
func (n *UnlockNegotiator) StageToCart(ctx context.Context, actor, parcelID string, fields []domain.FieldKey) (domain.Cart, error) {
	fields, err := n.lockable(ctx, actor, parcelID, fields)
	if err != nil {
		return nil, err
	}
	cart, err := n.cart.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	staged := fields
	if i := cart.Find(parcelID); i >= 0 {
		staged = domain.UnionFields(cart[i].SelectedFields, fields)
	}
	return n.cart.AddSelection(ctx, actor, parcelID, fields, domain.PriceOf(staged))
}

// PayNow charges for the selection and unlocks it once the gateway has
// taken the money. A failed charge leaves every ledger untouched. Retrying
// an order that was charged but not applied re-applies the charged line
// without charging again; a confirmed order fails with ErrDuplicateOrder.
func (n *UnlockNegotiator) PayNow(ctx context.Context, actor, parcelID string, fields []domain.FieldKey, orderID string) (*port.Receipt, error) {
	charged, err := n.resume(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	switch len(charged) {
	case 0:
	case 1:
		return n.payments.Confirm(ctx, actor, orderID, charged[0].ParcelID, charged[0].Fields)
	default:
		return nil, fmt.Errorf("%w: %s is a cart order", port.ErrDuplicateOrder, orderID)
	}

	fields, err = n.lockable(ctx, actor, parcelID, fields)
	if err != nil {
		return nil, err
	}
	if orderID == "" {
		orderID = uuid.NewString()
	}
	amount := domain.PriceOf(fields)
	order := port.Order{
		ID:     orderID,
		Actor:  actor,
		Amount: amount,
		Lines:  []port.OrderLine{{ParcelID: parcelID, Fields: fields, Amount: amount}},
	}
	if err = n.charge(ctx, order); err != nil {
		return nil, err
	}
	return n.payments.Confirm(ctx, actor, orderID, parcelID, fields)
}

// Redeem spends one quota unit to unlock the whole parcel.
func (n *UnlockNegotiator) Redeem(ctx context.Context, actor, parcelID string) (domain.AccessRecord, error) {
	rec, err := n.access.RedeemQuotaUnlockAll(ctx, actor, parcelID)
	if err != nil {
		return domain.AccessRecord{}, err
	}
	if _, err = n.cart.RemoveCovered(ctx, actor, parcelID, rec.Unlocked(parcelID)); err != nil {
		n.logger.Error("failed to drop redeemed cart item", slog.String("actor", actor), slog.String("parcel_id", parcelID), slog.Any("error", err))
	}
	return rec, nil
}

// CheckoutCart charges the cart's list total and applies every item. When a
// previous attempt under the same order id was charged but only partly
// applied, the charged lines are applied again and nothing is charged.
func (n *UnlockNegotiator) CheckoutCart(ctx context.Context, actor, orderID string) (*port.CheckoutResult, error) {
	charged, err := n.resume(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if len(charged) > 0 {
		return n.payments.ConfirmCartCheckout(ctx, actor, orderID, linesCart(charged))
	}

	cart, err := n.cart.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, port.ErrCartEmpty
	}
	if orderID == "" {
		orderID = uuid.NewString()
	}
	order := port.Order{ID: orderID, Actor: actor, Amount: cart.Total()}
	for _, it := range cart {
		order.Lines = append(order.Lines, port.OrderLine{
			ParcelID: it.ParcelID,
			Fields:   it.SelectedFields,
			Amount:   domain.PriceOf(it.SelectedFields),
		})
	}
	if err = n.charge(ctx, order); err != nil {
		return nil, err
	}
	return n.payments.ConfirmCartCheckout(ctx, actor, orderID, cart)
}

// resume checks orderID against the actor's order log. A confirmed order is
// a duplicate. A charged one yields its lines so the caller applies them
// without charging again. Unknown or empty ids yield nothing.
func (n *UnlockNegotiator) resume(ctx context.Context, actor, orderID string) ([]port.OrderLine, error) {
	prev, err := n.payments.LookupOrder(ctx, actor, orderID)
	if err != nil {
		return nil, fmt.Errorf("look up order %s: %w", orderID, err)
	}
	if prev == nil {
		return nil, nil
	}
	if prev.State != port.OrderCharged || len(prev.Lines) == 0 {
		return nil, fmt.Errorf("%w: %s", port.ErrDuplicateOrder, orderID)
	}
	n.logger.Info("resuming charged order", slog.String("actor", actor), slog.String("order_id", orderID), slog.Int("lines", len(prev.Lines)))
	return prev.Lines, nil
}

// charge takes the money and records the order as charged. Once the gateway
// has succeeded a failure to record is only logged: the ledgers must still
// be updated for money already taken.
func (n *UnlockNegotiator) charge(ctx context.Context, order port.Order) error {
	if err := n.gateway.Charge(ctx, order); err != nil {
		return fmt.Errorf("charge order %s: %w", order.ID, err)
	}
	if err := n.payments.RecordCharge(ctx, order); err != nil {
		n.logger.Error("failed to record charged order", slog.String("actor", order.Actor), slog.String("order_id", order.ID), slog.Any("error", err))
	}
	return nil
}

func linesCart(lines []port.OrderLine) domain.Cart {
	cart := make(domain.Cart, 0, len(lines))
	for _, l := range lines {
		cart = append(cart, domain.CartItem{ParcelID: l.ParcelID, SelectedFields: l.Fields, Total: l.Amount})
	}
	return cart
}
