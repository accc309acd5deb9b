package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Generator reads it once per sync to decide "today", the calendar window
// and the creation-time defaults of imported people.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
