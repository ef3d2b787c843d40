package domain

import (
	"fmt"
	"slices"
)

// FieldKey names one disclosable attribute of a parcel.
type FieldKey string

const (
	FieldContactOwner FieldKey = "contactOwner"
	FieldBroker       FieldKey = "broker"
	FieldPhone        FieldKey = "phone"
	FieldLine         FieldKey = "line"
	FieldFrame        FieldKey = "frame"
	FieldChanote      FieldKey = "chanote"
)

// QuotaLimit caps the member unlock-all redemptions per local calendar day.
const QuotaLimit = 10

// AllFieldKeys lists every field in canonical display order. Field sets
// returned by this package are always sorted in this order.
var AllFieldKeys = []FieldKey{
	FieldContactOwner,
	FieldBroker,
	FieldPhone,
	FieldLine,
	FieldFrame,
	FieldChanote,
}

var fieldPrices = map[FieldKey]int64{
	FieldContactOwner: 50,
	FieldBroker:       50,
	FieldPhone:        200,
	FieldLine:         150,
	FieldFrame:        100,
	FieldChanote:      200,
}

// Price returns the fixed unit price of the field. Unknown fields cost 0.
func (f FieldKey) Price() int64 {
	return fieldPrices[f]
}

// Valid reports whether f is one of AllFieldKeys.
func (f FieldKey) Valid() bool {
	_, ok := fieldPrices[f]
	return ok
}

// ParseFields converts raw field names into a canonical field set. Duplicates
// collapse; an unknown name is an error.
func ParseFields(raw []string) ([]FieldKey, error) {
	out := make([]FieldKey, 0, len(raw))
	for _, r := range raw {
		f := FieldKey(r)
		if !f.Valid() {
			return nil, fmt.Errorf("unknown field %q", r)
		}
		out = append(out, f)
	}
	return NormalizeFields(out), nil
}

// NormalizeFields drops unknown and duplicate keys and sorts the rest into
// canonical order. It never returns nil.
func NormalizeFields(fields []FieldKey) []FieldKey {
	out := make([]FieldKey, 0, len(fields))
	for _, f := range AllFieldKeys {
		if slices.Contains(fields, f) {
			out = append(out, f)
		}
	}
	return out
}

// UnionFields returns a ∪ b in canonical order.
func UnionFields(a, b []FieldKey) []FieldKey {
	return NormalizeFields(append(slices.Clone(a), b...))
}

// SubtractFields returns a − b in canonical order.
func SubtractFields(a, b []FieldKey) []FieldKey {
	out := make([]FieldKey, 0, len(a))
	for _, f := range NormalizeFields(a) {
		if !slices.Contains(b, f) {
			out = append(out, f)
		}
	}
	return out
}

// IsSubset reports whether every field of sub is present in super.
func IsSubset(sub, super []FieldKey) bool {
	for _, f := range sub {
		if !slices.Contains(super, f) {
			return false
		}
	}
	return true
}

// PriceOf sums the unit prices of a field set. Duplicates are counted once.
func PriceOf(fields []FieldKey) int64 {
	var total int64
	for _, f := range NormalizeFields(fields) {
		total += f.Price()
	}
	return total
}

// PricedField pairs a field with its unit price for presentation.
type PricedField struct {
	Field FieldKey `json:"field"`
	Price int64    `json:"price"`
}

// PriceList returns the fields with their unit prices in canonical order.
func PriceList(fields []FieldKey) []PricedField {
	norm := NormalizeFields(fields)
	out := make([]PricedField, 0, len(norm))
	for _, f := range norm {
		out = append(out, PricedField{Field: f, Price: f.Price()})
	}
	return out
}

// IntersectFields returns a ∩ b in canonical order.
func IntersectFields(a, b []FieldKey) []FieldKey {
	out := make([]FieldKey, 0, len(a))
	for _, f := range NormalizeFields(a) {
		if slices.Contains(b, f) {
			out = append(out, f)
		}
	}
	return out
}
