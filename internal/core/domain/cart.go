package domain

// CartItem is one staged purchase: the fields of a parcel the actor wants
// to unlock. A cart holds at most one item per parcel.
type CartItem struct {
	ParcelID       string     `json:"landId"`
	SelectedFields []FieldKey `json:"selectedFields"`
	// Total is supplied by the caller when the selection is staged.
	Total int64 `json:"total"`
	// CreatedAt is epoch milliseconds of the first selection.
	CreatedAt int64 `json:"createdAt"`
}

// Cart is the ordered list of staged items.
type Cart []CartItem

// Find returns the index of the parcel's item, or -1.
func (c Cart) Find(parcelID string) int {
	for i := range c {
		if c[i].ParcelID == parcelID {
			return i
		}
	}
	return -1
}

// Merge unions fields into the parcel's item, appending a new item when the
// parcel is not staged yet. The supplied total replaces the stored one.
func (c Cart) Merge(parcelID string, fields []FieldKey, total int64, nowMillis int64) Cart {
	if i := c.Find(parcelID); i >= 0 {
		out := append(Cart(nil), c...)
		out[i].SelectedFields = UnionFields(out[i].SelectedFields, fields)
		out[i].Total = total
		return out
	}
	return append(append(Cart(nil), c...), CartItem{
		ParcelID:       parcelID,
		SelectedFields: NormalizeFields(fields),
		Total:          total,
		CreatedAt:      nowMillis,
	})
}

// Without returns the cart minus the parcel's item.
func (c Cart) Without(parcelID string) Cart {
	out := make(Cart, 0, len(c))
	for _, it := range c {
		if it.ParcelID != parcelID {
			out = append(out, it)
		}
	}
	return out
}

// Sanitize collapses duplicate parcels by union, drops items with no
// parcel id or no valid fields, and reports whether anything changed.
func (c Cart) Sanitize() (Cart, bool) {
	out := make(Cart, 0, len(c))
	changed := false
	for _, it := range c {
		fields := NormalizeFields(it.SelectedFields)
		if it.ParcelID == "" || len(fields) == 0 {
			changed = true
			continue
		}
		if len(fields) != len(it.SelectedFields) {
			changed = true
		}
		if i := out.Find(it.ParcelID); i >= 0 {
			out[i].SelectedFields = UnionFields(out[i].SelectedFields, fields)
			changed = true
			continue
		}
		it.SelectedFields = fields
		out = append(out, it)
	}
	return out, changed
}

// Total is the amount the cart is worth at list prices: the sum over items
// of the unit prices of their selected fields. Display and checkout both
// use this figure.
func (c Cart) Total() int64 {
	var total int64
	for _, it := range c {
		total += PriceOf(it.SelectedFields)
	}
	return total
}
