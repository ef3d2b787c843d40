package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_Merge(t *testing.T) {
	var c Cart
	c = c.Merge("L1", []FieldKey{FieldPhone}, 200, 1000)
	c = c.Merge("L2", []FieldKey{FieldBroker}, 50, 2000)
	merged := c.Merge("L1", []FieldKey{FieldLine, FieldPhone}, 350, 3000)

	require.Len(t, merged, 2)
	assert.Equal(t, []FieldKey{FieldPhone, FieldLine}, merged[0].SelectedFields)
	assert.Equal(t, int64(350), merged[0].Total)
	assert.Equal(t, int64(1000), merged[0].CreatedAt)
	assert.Equal(t, []FieldKey{FieldPhone}, c[0].SelectedFields, "merge does not modify the receiver")
	assert.Equal(t, int64(400), merged.Total())
}

func TestCart_Without(t *testing.T) {
	c := Cart{{ParcelID: "L1"}, {ParcelID: "L2"}}
	assert.Equal(t, Cart{{ParcelID: "L2"}}, c.Without("L1"))
	assert.Equal(t, c, c.Without("L3"))
	assert.Equal(t, -1, c.Find("L3"))
}

func TestCart_Sanitize(t *testing.T) {
	c := Cart{
		{ParcelID: "L1", SelectedFields: []FieldKey{FieldPhone}},
		{ParcelID: "L1", SelectedFields: []FieldKey{FieldFrame}},
		{ParcelID: "L2", SelectedFields: []FieldKey{"email"}},
	}
	out, changed := c.Sanitize()
	assert.True(t, changed)
	assert.Equal(t, Cart{{ParcelID: "L1", SelectedFields: []FieldKey{FieldPhone, FieldFrame}}}, out)

	_, changed = out.Sanitize()
	assert.False(t, changed)
}
