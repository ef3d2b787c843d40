package port

import (
	"context"
	"time"

	"landmarket/internal/core/domain"
)

// AccessUseCase is the quota and field-unlock ledger.
type AccessUseCase interface {
	// Read returns the actor's record as seen today. A record from an
	// earlier day comes back with QuotaUsed 0; storage is not touched.
	Read(ctx context.Context, actor string) (domain.AccessRecord, error)
	// RecordFieldUnlock unions fields into the parcel's unlocked set. It
	// never changes quota and is idempotent.
	RecordFieldUnlock(ctx context.Context, actor, parcelID string, fields []domain.FieldKey) (domain.AccessRecord, error)
	// RedeemQuotaUnlockAll unlocks every field of the parcel for one unit of
	// today's quota. Members only.
	RedeemQuotaUnlockAll(ctx context.Context, actor, parcelID string) (domain.AccessRecord, error)
	// RemainingLockedFields returns the fields of the parcel not yet
	// unlocked, in canonical order.
	RemainingLockedFields(ctx context.Context, actor, parcelID string) ([]domain.FieldKey, error)
	// SetMembership grants or revokes the member capability.
	SetMembership(ctx context.Context, actor string, member bool) (domain.AccessRecord, error)
	// QuotaStatus summarises today's quota.
	QuotaStatus(ctx context.Context, actor string) (QuotaStatus, error)
}

// QuotaStatus is today's quota position of an actor.
type QuotaStatus struct {
	DateKey  string `json:"dateKey"`
	IsMember bool   `json:"isMember"`
	Used     int    `json:"used"`
	Limit    int    `json:"limit"`
	Left     int    `json:"left"`
}

// CartUseCase stages field selections before checkout. It never touches
// the access ledger.
type CartUseCase interface {
	List(ctx context.Context, actor string) (domain.Cart, error)
	AddSelection(ctx context.Context, actor, parcelID string, fields []domain.FieldKey, total int64) (domain.Cart, error)
	Remove(ctx context.Context, actor, parcelID string) (domain.Cart, error)
	Clear(ctx context.Context, actor string) error
	// RemoveCovered drops the parcel's item when all of its selected fields
	// are in unlocked, and reports whether it did.
	RemoveCovered(ctx context.Context, actor, parcelID string, unlocked []domain.FieldKey) (bool, error)
}

// NegotiatorUseCase coordinates one unlock interaction for a parcel.
type NegotiatorUseCase interface {
	Offer(ctx context.Context, actor, parcelID string) (*Offer, error)
	StageToCart(ctx context.Context, actor, parcelID string, fields []domain.FieldKey) (domain.Cart, error)
	PayNow(ctx context.Context, actor, parcelID string, fields []domain.FieldKey, orderID string) (*Receipt, error)
	Redeem(ctx context.Context, actor, parcelID string) (domain.AccessRecord, error)
	CheckoutCart(ctx context.Context, actor, orderID string) (*CheckoutResult, error)
}

// Offer is what the unlock picker shows for a parcel.
type Offer struct {
	ParcelID        string               `json:"parcelId"`
	AlreadyUnlocked bool                 `json:"alreadyUnlocked"`
	Unlocked        []domain.FieldKey    `json:"unlocked"`
	Locked          []domain.PricedField `json:"locked"`
	LockedTotal     int64                `json:"lockedTotal"`
	InCart          []domain.FieldKey    `json:"inCart"`
	CanRedeem       bool                 `json:"canRedeem"`
	QuotaLeft       int                  `json:"quotaLeft"`
}

// PaymentUseCase applies payments that the gateway reported successful.
type PaymentUseCase interface {
	Confirm(ctx context.Context, actor, orderID, parcelID string, fields []domain.FieldKey) (*Receipt, error)
	ConfirmCartCheckout(ctx context.Context, actor, orderID string, cart domain.Cart) (*CheckoutResult, error)
	// RecordCharge remembers that the gateway took the money for order.
	RecordCharge(ctx context.Context, order Order) error
	// LookupOrder returns the actor's record of orderID, or nil when the
	// order is unknown.
	LookupOrder(ctx context.Context, actor, orderID string) (*OrderRecord, error)
}

// Receipt describes an applied single-parcel payment.
type Receipt struct {
	OrderID  string            `json:"orderId"`
	ParcelID string            `json:"parcelId"`
	Fields   []domain.FieldKey `json:"fields"`
	Amount   int64             `json:"amount"`
	Unlocked []domain.FieldKey `json:"unlocked"`
}

// CheckoutResult reports a cart checkout per parcel. Failed parcels stay in
// the cart.
type CheckoutResult struct {
	OrderID string            `json:"orderId"`
	Amount  int64             `json:"amount"`
	Applied []string          `json:"applied"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// SlotUseCase is the capacity ledger for broadcast slots.
type SlotUseCase interface {
	Reserve(ctx context.Context, key domain.SlotKey) (domain.SlotInfo, error)
	Release(ctx context.Context, key domain.SlotKey) (domain.SlotInfo, error)
	Info(ctx context.Context, key domain.SlotKey) (domain.SlotInfo, error)
}

// SchedulerUseCase creates and publishes broadcast campaigns.
type SchedulerUseCase interface {
	NextEligibleDates(n int, from time.Time) []string
	CreateCampaign(ctx context.Context, req CreateCampaignReq) (*domain.Campaign, error)
	PublishDueCampaigns(ctx context.Context, now time.Time) ([]domain.Campaign, error)
	List(ctx context.Context) ([]domain.Campaign, error)
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	Disable(ctx context.Context, id, reason string) (*domain.Campaign, error)
	Enable(ctx context.Context, id string) (*domain.Campaign, error)
	MarkSent(ctx context.Context, id string) (*domain.Campaign, error)
	Delete(ctx context.Context, id string) error
}

// CreateCampaignReq is the input of CreateCampaign.
type CreateCampaignReq struct {
	Parcel        *domain.ParcelSnapshot
	Mode          string
	Channels      []domain.Channel
	Highlight     bool
	PriceTHB      int64
	ScheduleDate  string
	CreatedByRole domain.Role
}
