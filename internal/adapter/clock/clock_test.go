package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemTodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	c := NewSystem(loc)
	assert.Equal(t, loc, c.Now().Location())
	assert.Equal(t, c.Now().Format(time.DateOnly), c.Today())
}

func TestFixedAdvance(t *testing.T) {
	c := NewFixed(time.Date(2025, 3, 3, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, "2025-03-03", c.Today())

	c.Advance(time.Hour)
	assert.Equal(t, "2025-03-04", c.Today())

	c.Set(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-01-01", c.Today())
}
