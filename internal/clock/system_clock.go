package clock

import "time"

// SystemClock satisfies Clock with the real system time.
type SystemClock struct{}

// NewSystemClock creates a SystemClock.
func NewSystemClock() Clock {
	return &SystemClock{}
}

// Now returns the system time.
func (c SystemClock) Now() time.Time {
	return time.Now()
}
