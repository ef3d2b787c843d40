// Package payment holds the stand-in payment gateway. Real payment
// processing is out of scope; the mock approves every order unless told to
// decline.
package payment

import (
	"context"
	"fmt"
	"log/slog"

	"landmarket/internal/core/port"
)

// MockGateway approves or declines orders without moving money.
type MockGateway struct {
	declineAll bool
	logger     *slog.Logger
}

// NewMockGateway returns a gateway. With declineAll every charge fails.
func NewMockGateway(declineAll bool, logger *slog.Logger) *MockGateway {
	return &MockGateway{declineAll: declineAll, logger: logger}
}

func (g *MockGateway) Charge(ctx context.Context, order port.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if order.Amount <= 0 {
		return fmt.Errorf("%w: non-positive amount %d", port.ErrPaymentDeclined, order.Amount)
	}
	if g.declineAll {
		g.logger.Info("mock payment declined", slog.String("order_id", order.ID), slog.String("actor", order.Actor), slog.Int64("amount", order.Amount))
		return port.ErrPaymentDeclined
	}
	g.logger.Info("mock payment approved", slog.String("order_id", order.ID), slog.String("actor", order.Actor), slog.Int64("amount", order.Amount), slog.Int("lines", len(order.Lines)))
	return nil
}
