package domain

import (
	"iter"
	"time"
)

// DateLayout is the persisted form of calendar dates (YYYY-MM-DD).
const DateLayout = time.DateOnly

// BroadcastDays are the weekdays on which scheduled campaigns may publish.
var BroadcastDays = []time.Weekday{time.Monday, time.Wednesday, time.Friday}

// DateKey formats t as a calendar date in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// IsBroadcastWeekday reports whether d is one of BroadcastDays.
func IsBroadcastWeekday(d time.Weekday) bool {
	for _, b := range BroadcastDays {
		if b == d {
			return true
		}
	}
	return false
}

// IsBroadcastDate reports whether the YYYY-MM-DD date falls on a broadcast
// day. Unparseable dates are never eligible.
func IsBroadcastDate(date string) bool {
	t, err := ParseDate(date)
	if err != nil {
		return false
	}
	return IsBroadcastWeekday(t.Weekday())
}

// BroadcastDates yields broadcast-day calendar dates in ascending order,
// starting with from's own date when it is eligible. The sequence is
// unbounded; callers stop iterating when they have enough.
func BroadcastDates(from time.Time) iter.Seq[time.Time] {
	y, m, d := from.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	return func(yield func(time.Time) bool) {
		for cur := day; ; cur = cur.AddDate(0, 0, 1) {
			if !IsBroadcastWeekday(cur.Weekday()) {
				continue
			}
			if !yield(cur) {
				return
			}
		}
	}
}

// NextEligibleDates returns the next n broadcast dates as YYYY-MM-DD strings,
// inclusive of from when eligible.
func NextEligibleDates(n int, from time.Time) []string {
	if n <= 0 {
		return []string{}
	}
	out := make([]string, 0, n)
	for d := range BroadcastDates(from) {
		out = append(out, DateKey(d))
		if len(out) == n {
			break
		}
	}
	return out
}
