package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotKey(t *testing.T) {
	key := SlotKey{Date: "2026-10-14", Channel: ChannelLineAds, Mode: "premium"}
	assert.Equal(t, "2026-10-14__line_ads__premium", key.String())

	parsed, err := ParseSlotKey(key.String())
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	_, err = ParseSlotKey("2026-10-14__web")
	assert.Error(t, err)
}

func TestSlotRecord(t *testing.T) {
	assert.Equal(t, SlotRecord{Capacity: 10}, NewSlotRecord(ChannelWeb))
	assert.Equal(t, SlotRecord{Capacity: 5}, NewSlotRecord(ChannelLineAds))
	assert.Equal(t, 0, Channel("fax").DefaultCapacity())

	rec := SlotRecord{Capacity: 5, Used: 9}
	assert.True(t, rec.Sanitize())
	assert.Equal(t, 0, rec.Left())

	rec = SlotRecord{Capacity: 5, Used: -2}
	assert.True(t, rec.Sanitize())
	assert.Equal(t, 5, rec.Left())
	assert.False(t, rec.Sanitize())
}
