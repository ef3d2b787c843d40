package port

import (
	"context"

	"landmarket/internal/core/domain"
)

// Order is a request to collect money for unlocking parcel fields.
type Order struct {
	ID     string
	Actor  string
	Amount int64
	Lines  []OrderLine
}

// OrderLine is the part of an order that pays for one parcel.
type OrderLine struct {
	ParcelID string            `json:"parcelId"`
	Fields   []domain.FieldKey `json:"fields"`
	Amount   int64             `json:"amount"`
}

// OrderState is how far an order has progressed.
type OrderState string

const (
	// OrderCharged means the gateway took the money but the order's lines
	// may not all be applied yet.
	OrderCharged OrderState = "charged"
	// OrderConfirmed means every line was applied.
	OrderConfirmed OrderState = "confirmed"
)

// OrderRecord is the persisted trace of an order. Lines are kept while the
// order is only charged, so a retry under the same id applies them again
// without a second charge.
type OrderRecord struct {
	ID    string      `json:"id"`
	State OrderState  `json:"state"`
	Lines []OrderLine `json:"lines,omitempty"`
}

// PaymentGateway collects payment for an order. A nil error means the
// money was taken; only then may the ledgers be changed.
type PaymentGateway interface {
	Charge(ctx context.Context, order Order) error
}
