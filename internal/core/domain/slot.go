package domain

import (
	"fmt"
	"strings"
)

// Channel is a publication outlet for broadcast campaigns.
type Channel string

const (
	ChannelWeb     Channel = "web"
	ChannelLineAds Channel = "line_ads"
)

// AllChannels lists the channels in canonical order.
var AllChannels = []Channel{ChannelWeb, ChannelLineAds}

var defaultCapacity = map[Channel]int{
	ChannelWeb:     10,
	ChannelLineAds: 5,
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	_, ok := defaultCapacity[c]
	return ok
}

// DefaultCapacity is the number of reservations per (date, mode) the channel
// accepts. Unknown channels have no capacity.
func (c Channel) DefaultCapacity() int {
	return defaultCapacity[c]
}

// keySep joins the parts of a persisted slot key. Dates and channels never
// contain it; modes are rejected when they do, so keys cannot collide.
const keySep = "__"

// ValidMode reports whether mode may be used in a slot key.
func ValidMode(mode string) bool {
	return mode != "" && !strings.Contains(mode, keySep)
}

// SlotKey identifies one capacity counter.
type SlotKey struct {
	Date    string
	Channel Channel
	Mode    string
}

// String renders the persisted map key "date__channel__mode".
func (k SlotKey) String() string {
	return k.Date + keySep + string(k.Channel) + keySep + k.Mode
}

// ParseSlotKey is the inverse of SlotKey.String.
func ParseSlotKey(s string) (SlotKey, error) {
	parts := strings.Split(s, keySep)
	if len(parts) != 3 {
		return SlotKey{}, fmt.Errorf("malformed slot key %q", s)
	}
	return SlotKey{Date: parts[0], Channel: Channel(parts[1]), Mode: parts[2]}, nil
}

// SlotRecord counts reservations against capacity. 0 <= Used <= Capacity.
type SlotRecord struct {
	Capacity int `json:"capacity"`
	Used     int `json:"used"`
}

// NewSlotRecord returns an empty record with the channel's default capacity.
func NewSlotRecord(c Channel) SlotRecord {
	return SlotRecord{Capacity: c.DefaultCapacity()}
}

// Left is the remaining capacity.
func (r SlotRecord) Left() int {
	return r.Capacity - r.Used
}

// Sanitize clamps Used into [0, Capacity] and reports whether it changed.
func (r *SlotRecord) Sanitize() bool {
	changed := false
	if r.Capacity < 0 {
		r.Capacity = 0
		changed = true
	}
	if r.Used < 0 {
		r.Used = 0
		changed = true
	}
	if r.Used > r.Capacity {
		r.Used = r.Capacity
		changed = true
	}
	return changed
}

// SlotInfo is the read-only view of a slot.
type SlotInfo struct {
	Date     string  `json:"date"`
	Channel  Channel `json:"channel"`
	Mode     string  `json:"mode"`
	Capacity int     `json:"capacity"`
	Used     int     `json:"used"`
	Left     int     `json:"left"`
}

// Info builds the view for key.
func (r SlotRecord) Info(key SlotKey) SlotInfo {
	return SlotInfo{
		Date:     key.Date,
		Channel:  key.Channel,
		Mode:     key.Mode,
		Capacity: r.Capacity,
		Used:     r.Used,
		Left:     r.Left(),
	}
}
