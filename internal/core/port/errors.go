package port

import (
	"errors"

	"landmarket/internal/core/domain"
)

var (
	// ErrVersionConflict is returned by LedgerStore.Set when the stored
	// version no longer matches the expected one.
	ErrVersionConflict = errors.New("version conflict")

	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrNotMember       = errors.New("member capability required")
	ErrAlreadyUnlocked = errors.New("all fields already unlocked")
	ErrEmptySelection  = errors.New("no fields selected")
	ErrInvalidField    = errors.New("invalid field")
	ErrNoParcel        = errors.New("parcel id is required")
	ErrCartEmpty       = errors.New("cart is empty")

	ErrPaymentDeclined = errors.New("payment declined")
	ErrDuplicateOrder  = errors.New("order already confirmed")

	ErrSlotFull       = errors.New("slot full")
	ErrUnknownChannel = errors.New("unknown channel")
	ErrNoMode         = errors.New("campaign mode is required")
	ErrInvalidMode    = errors.New("mode must not contain \"__\"")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")

	ErrNoLand            = errors.New("no land selected")
	ErrNoChannel         = errors.New("no channel selected")
	ErrNoDate            = errors.New("no schedule date")
	ErrDateNotEligible   = errors.New("schedule date is not a broadcast day")
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// SlotFullError reports which channel ran out of capacity. It matches
// ErrSlotFull with errors.Is.
type SlotFullError struct {
	Channel domain.Channel
	Date    string
	Mode    string
}

func (e *SlotFullError) Error() string {
	return "slot full: " + string(e.Channel) + " on " + e.Date
}

func (e *SlotFullError) Is(target error) bool {
	return target == ErrSlotFull
}

// Code renders the client-facing code, e.g. SlotFull_web.
func (e *SlotFullError) Code() string {
	return "SlotFull_" + string(e.Channel)
}
