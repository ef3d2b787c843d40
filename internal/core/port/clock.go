package port

import "time"

// Clock supplies the actor's local time. Today is Now formatted as
// YYYY-MM-DD in the same location.
type Clock interface {
	Now() time.Time
	Today() string
}
