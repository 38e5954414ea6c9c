// Package clock provides a Clock abstraction as an alternative to calling
// the standard time package directly, so that the stale-slot sweep and any
// other time-driven component can be tested against a fixed or stepped
// clock instead of the real one.
package clock

import "time"

// Clock yields the current time. Production code uses SystemClock; tests
// use StoppedClock or SteppingClock for deterministic behaviour.
type Clock interface {
	Now() time.Time
}
