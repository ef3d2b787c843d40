package port

import "strings"

// Topic names the subsystem a change notification belongs to.
type Topic string

const (
	TopicAccess    Topic = "access"
	TopicCart      Topic = "cart"
	TopicSlots     Topic = "slots"
	TopicCampaigns Topic = "campaigns"
)

// Store keys. Per-actor documents are "<kind>:<actor>".
const (
	KeySlots     = "slots"
	KeyCampaigns = "campaigns"

	accessPrefix = "access:"
	cartPrefix   = "cart:"
	ordersPrefix = "orders:"
)

func AccessKey(actor string) string { return accessPrefix + actor }
func CartKey(actor string) string   { return cartPrefix + actor }
func OrdersKey(actor string) string { return ordersPrefix + actor }

// TopicOf maps a store key to its topic and, for per-actor keys, the actor.
// Keys outside the four ledgers report ok=false.
func TopicOf(key string) (topic Topic, actor string, ok bool) {
	switch {
	case key == KeySlots:
		return TopicSlots, "", true
	case key == KeyCampaigns:
		return TopicCampaigns, "", true
	case strings.HasPrefix(key, accessPrefix):
		return TopicAccess, strings.TrimPrefix(key, accessPrefix), true
	case strings.HasPrefix(key, cartPrefix):
		return TopicCart, strings.TrimPrefix(key, cartPrefix), true
	}
	return "", "", false
}

// AccessLedgerChanged fires after an actor's access record is written.
type AccessLedgerChanged struct {
	Actor   string
	Version int64
}

// CartChanged fires after an actor's cart is written.
type CartChanged struct {
	Actor   string
	Version int64
}

// SlotsChanged fires after the slot map is written.
type SlotsChanged struct {
	Version int64
}

// CampaignsChanged fires after the campaign list is written.
type CampaignsChanged struct {
	Version int64
}

// ChangeEvent is the untyped form used by streaming transports.
type ChangeEvent struct {
	Topic   Topic  `json:"topic"`
	Actor   string `json:"actor,omitempty"`
	Version int64  `json:"version"`
}
