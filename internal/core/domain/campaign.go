package domain

import (
	"slices"
	"time"
)

// Campaign is a broadcast advertisement for a parcel, scheduled onto one
// broadcast date across one or more channels. Prices are whole baht.
type Campaign struct {
	ID             string         `json:"id"`
	Parcel         ParcelSnapshot `json:"parcelSnapshot"`
	Mode           string         `json:"mode"`
	Channels       []Channel      `json:"channels"`
	Highlight      bool           `json:"highlight"`
	PriceTHB       int64          `json:"priceTHB"`
	ScheduleDate   string         `json:"scheduleDate"`
	Status         CampaignStatus `json:"status"`
	CreatedByRole  Role           `json:"createdByRole"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	PublishedAt    *time.Time     `json:"publishedAt,omitempty"`
	SentAt         *time.Time     `json:"sentAt,omitempty"`
	DisabledReason string         `json:"disabledReason,omitempty"`
}

// ParcelSnapshot freezes the listing details a campaign advertises.
type ParcelSnapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Province string `json:"province,omitempty"`
	PriceTHB int64  `json:"priceTHB,omitempty"`
}

// Role is the kind of actor that created a campaign.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
	RoleUser  Role = "user"
)

// CampaignStatus is the campaign lifecycle state.
type CampaignStatus string

const (
	StatusScheduled CampaignStatus = "scheduled"
	StatusPaid      CampaignStatus = "paid"
	StatusPublished CampaignStatus = "published"
	StatusSent      CampaignStatus = "sent"
	StatusDisabled  CampaignStatus = "disabled"
)

// transitions lists the operator and scheduler moves allowed from each
// state. sent has none; disabled can only be re-enabled.
var transitions = map[CampaignStatus][]CampaignStatus{
	StatusScheduled: {StatusPublished, StatusDisabled},
	StatusPaid:      {StatusPublished, StatusDisabled},
	StatusPublished: {StatusSent, StatusDisabled},
	StatusDisabled:  {StatusScheduled},
}

// CanTransition reports whether the status machine allows from → to.
func (s CampaignStatus) CanTransition(to CampaignStatus) bool {
	return slices.Contains(transitions[s], to)
}

// Due reports whether the scheduler should publish the status once the
// schedule date has arrived.
func (s CampaignStatus) Due() bool {
	return s == StatusScheduled || s == StatusPaid
}

// InitialStatus decides the status of a new campaign: paid when a non-admin
// creator pays a positive price, scheduled otherwise.
func InitialStatus(role Role, priceTHB int64) CampaignStatus {
	if role != RoleAdmin && priceTHB > 0 {
		return StatusPaid
	}
	return StatusScheduled
}

// NormalizeChannels removes duplicates and sorts into canonical order.
// Unknown channels are kept at the end so callers can reject them.
func NormalizeChannels(in []Channel) []Channel {
	out := make([]Channel, 0, len(in))
	for _, c := range AllChannels {
		if slices.Contains(in, c) {
			out = append(out, c)
		}
	}
	for _, c := range in {
		if !c.Valid() && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
