// Package sweep implements the stale-PageSlot eviction sweep: a
// github.com/robfig/cron job that periodically resets any PageSlot that
// has sat with partial coverage for longer than a configured TTL. It's
// the concrete resolution of spec.md's "No garbage collection of stale
// slots is specified" open question, grounded on the teacher repo's
// rtcmlogger/log.Writer, which combines a cron job with a switchWriter
// for its own end-of-day housekeeping.
package sweep

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goblimey/go-tools/switchwriter"
	"github.com/robfig/cron"

	"github.com/jwen15/DM-gnss-sdr/internal/clock"
)

// Target is whatever owns the PageSlot table; receiver.Receiver
// implements it. Eviction runs under the target's own lock, not the
// Sweeper's, so a sweep and a page decode never interleave.
type Target interface {
	// EvictStaleSlots resets every PageSlot whose last touch predates
	// cutoff and returns the message_ids it reset.
	EvictStaleSlots(cutoff time.Time) []uint8
}

// Sweeper owns a cron job that periodically calls EvictStaleSlots on its
// Target.
type Sweeper struct {
	mutex   sync.Mutex
	clock   clock.Clock
	target  Target
	ttl     time.Duration
	cronjob *cron.Cron
	events  io.Writer // where eviction events are logged; may be a switchWriter.Writer.
}

// New creates a Sweeper that will evict PageSlots idle for longer than
// ttl, logging each eviction to events.
func New(target Target, ttl time.Duration, events io.Writer) *Sweeper {
	return &Sweeper{
		clock:  clock.NewSystemClock(),
		target: target,
		ttl:    ttl,
		events: events,
	}
}

// NewEventLog creates a switchWriter.Writer suitable for passing as New's
// events argument, already switched to w.
func NewEventLog(w io.Writer) io.Writer {
	sw := switchwriter.New()
	sw.SwitchTo(w)
	return sw
}

// SetClock overrides the Sweeper's clock, used by tests to drive the
// sweep deterministically.
func (s *Sweeper) SetClock(c clock.Clock) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.clock = c
}

// Start installs a cron job that runs Tick on the given schedule
// expression (robfig/cron syntax, e.g. "@every 1m").
func (s *Sweeper) Start(schedule string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cr := cron.New()
	if err := cr.AddFunc(schedule, s.Tick); err != nil {
		return fmt.Errorf("sweep: invalid schedule %q: %w", schedule, err)
	}
	cr.Start()
	s.cronjob = cr
	return nil
}

// Stop halts the cron job, if one is running.
func (s *Sweeper) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.cronjob != nil {
		s.cronjob.Stop()
		s.cronjob = nil
	}
}

// Tick runs one sweep pass: every PageSlot untouched since before
// clock.Now()-ttl is evicted.
func (s *Sweeper) Tick() {
	s.mutex.Lock()
	c, ttl := s.clock, s.ttl
	s.mutex.Unlock()

	cutoff := c.Now().Add(-ttl)
	evicted := s.target.EvictStaleSlots(cutoff)
	for _, messageID := range evicted {
		fmt.Fprintf(s.events, "evicted stale page slot message_id=%d cutoff=%s\n", messageID, cutoff.Format(time.RFC3339))
	}
}
