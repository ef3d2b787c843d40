// Package clock provides port.Clock implementations.
package clock

import (
	"sync"
	"time"

	"landmarket/internal/core/domain"
)

// System reads the wall clock in a fixed location.
type System struct {
	loc *time.Location
}

// NewSystem returns a wall clock in loc; nil means time.Local.
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.Local
	}
	return &System{loc: loc}
}

func (c *System) Now() time.Time { return time.Now().In(c.loc) }
func (c *System) Today() string  { return domain.DateKey(c.Now()) }

// Fixed is a settable clock for tests and replays.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed returns a clock stopped at now.
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (c *Fixed) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Fixed) Today() string { return domain.DateKey(c.Now()) }

// Set moves the clock to t.
func (c *Fixed) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *Fixed) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
