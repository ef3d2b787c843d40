package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsBroadcastDate(t *testing.T) {
	assert.True(t, IsBroadcastDate("2026-10-12"))
	assert.False(t, IsBroadcastDate("2026-10-13"))
	assert.True(t, IsBroadcastDate("2026-10-16"))
	assert.False(t, IsBroadcastDate("2026-10-18"))
	assert.False(t, IsBroadcastDate("12/10/2026"))
}

func TestBroadcastDates(t *testing.T) {
	loc := time.FixedZone("ICT", 7*60*60)
	// Sunday 00:30 local is still Saturday in UTC.
	from := time.Date(2026, time.October, 18, 0, 30, 0, 0, loc)

	var got []string
	for d := range BroadcastDates(from) {
		got = append(got, DateKey(d))
		if len(got) == 4 {
			break
		}
	}
	assert.Equal(t, []string{"2026-10-19", "2026-10-21", "2026-10-23", "2026-10-26"}, got)
}

func TestNextEligibleDates(t *testing.T) {
	wed := time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2026-10-14", "2026-10-16", "2026-10-19"}, NextEligibleDates(3, wed))
	assert.Equal(t, []string{}, NextEligibleDates(0, wed))
	assert.Equal(t, []string{}, NextEligibleDates(-2, wed))

	// month boundary
	assert.Equal(t, []string{"2026-10-30", "2026-11-02"}, NextEligibleDates(2, time.Date(2026, time.October, 29, 0, 0, 0, 0, time.UTC)))
}
