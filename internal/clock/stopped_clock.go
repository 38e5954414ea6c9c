package clock

import "time"

// StoppedClock always returns the same time.
type StoppedClock struct {
	time time.Time
}

var _ Clock = (*StoppedClock)(nil)

// NewStoppedClock creates a StoppedClock fixed at the given time.
func NewStoppedClock(year int, month time.Month, day, hour, minute, second, nanosecond int, location *time.Location) *StoppedClock {
	return &StoppedClock{time: time.Date(year, month, day, hour, minute, second, nanosecond, location)}
}

// SetTime changes the fixed time.
func (c *StoppedClock) SetTime(t time.Time) {
	c.time = t
}

// Now returns the fixed time.
func (c *StoppedClock) Now() time.Time {
	return c.time
}
