package domain

import (
	"maps"
	"slices"
)

// AccessRecord is the per-actor disclosure ledger: which parcel fields the
// actor has unlocked and how much of today's quota is spent.
// QuotaUsed only counts for DateKey.
type AccessRecord struct {
	DateKey        string                `json:"dateKey"`
	IsMember       bool                  `json:"isMember"`
	QuotaUsed      int                   `json:"quotaUsed"`
	UnlockedFields map[string][]FieldKey `json:"unlockedFields"`
}

// NewAccessRecord returns the default record for an actor seen for the first
// time on today.
func NewAccessRecord(today string) AccessRecord {
	return AccessRecord{
		DateKey:        today,
		UnlockedFields: map[string][]FieldKey{},
	}
}

// Clone returns a deep copy.
func (r AccessRecord) Clone() AccessRecord {
	out := r
	out.UnlockedFields = make(map[string][]FieldKey, len(r.UnlockedFields))
	for k, v := range r.UnlockedFields {
		out.UnlockedFields[k] = append([]FieldKey(nil), v...)
	}
	return out
}

// ForDay returns a copy of the record as seen on today: when DateKey is an
// earlier day the copy carries QuotaUsed 0 and DateKey today. The receiver
// is not modified.
func (r AccessRecord) ForDay(today string) AccessRecord {
	out := r.Clone()
	if out.DateKey != today {
		out.DateKey = today
		out.QuotaUsed = 0
	}
	return out
}

// Sanitize repairs shape problems in a decoded record: negative quota,
// unknown or duplicate field keys, empty parcel ids. It reports whether
// anything was changed.
func (r *AccessRecord) Sanitize() bool {
	changed := false
	if r.QuotaUsed < 0 {
		r.QuotaUsed = 0
		changed = true
	}
	if r.UnlockedFields == nil {
		r.UnlockedFields = map[string][]FieldKey{}
		return changed
	}
	for _, id := range slices.Collect(maps.Keys(r.UnlockedFields)) {
		if id == "" {
			delete(r.UnlockedFields, id)
			changed = true
			continue
		}
		norm := NormalizeFields(r.UnlockedFields[id])
		if len(norm) != len(r.UnlockedFields[id]) {
			changed = true
		}
		r.UnlockedFields[id] = norm
	}
	return changed
}

// Unlocked returns the fields of parcelID disclosed to this actor.
func (r AccessRecord) Unlocked(parcelID string) []FieldKey {
	return NormalizeFields(r.UnlockedFields[parcelID])
}

// Remaining returns AllFieldKeys minus the fields already unlocked.
func (r AccessRecord) Remaining(parcelID string) []FieldKey {
	return SubtractFields(AllFieldKeys, r.UnlockedFields[parcelID])
}

// Unlock unions fields into the parcel's unlocked set and reports whether
// the set grew.
func (r *AccessRecord) Unlock(parcelID string, fields []FieldKey) bool {
	if r.UnlockedFields == nil {
		r.UnlockedFields = map[string][]FieldKey{}
	}
	before := r.UnlockedFields[parcelID]
	after := UnionFields(before, fields)
	if len(after) == len(NormalizeFields(before)) {
		return false
	}
	r.UnlockedFields[parcelID] = after
	return true
}

// QuotaLeft is the number of unlock-all redemptions still available on the
// record's DateKey.
func (r AccessRecord) QuotaLeft() int {
	left := QuotaLimit - r.QuotaUsed
	if left < 0 {
		return 0
	}
	return left
}
