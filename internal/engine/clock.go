package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The pipelines use it to determine "today" and the current birthday year.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
