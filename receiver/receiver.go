// Package receiver wires the page accumulator, RS reconstruction, MT1
// parser and mask cache into the single mutex-serialized handler spec.md
// §4.5 describes as the "Receiver Front". It's the one component every
// other package in this module is built to be driven by.
package receiver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jwen15/DM-gnss-sdr/internal/clock"
	"github.com/jwen15/DM-gnss-sdr/internal/haserr"
	"github.com/jwen15/DM-gnss-sdr/internal/mask"
	"github.com/jwen15/DM-gnss-sdr/internal/mt1"
	"github.com/jwen15/DM-gnss-sdr/internal/page"
	"github.com/jwen15/DM-gnss-sdr/internal/reconstruct"
	"github.com/jwen15/DM-gnss-sdr/internal/rscodec"
)

// PageMeta carries the signal-processing front-end's per-page metadata
// that the decoded Page itself does not: the PRN that delivered it and
// the time-of-hour at the symbol that triggered delivery. Neither field
// affects accumulation or decoding; both are attached, unchanged, to the
// nav-data monitor event spec.md §4.5/§6 describes, since the Page data
// model (spec.md §3) carries no such metadata itself.
type PageMeta struct {
	PRN                  uint8
	TowAtCurrentSymbolMs uint32
}

// MonitorEvent is published on the nav-monitor port after every
// successful MT1 decode, when the monitor is enabled.
type MonitorEvent struct {
	System  string `json:"system"` // always "E" (Galileo).
	Signal  string `json:"signal"` // always "E6".
	PRN     uint8  `json:"prn"`
	Tow     uint32 `json:"tow"`
	RawBits string `json:"rawBits"` // message_size*424 bits, the reconstructed MT1 bitstring.
}

// Receiver owns the PageSlot table, the Mask Cache and the RS codec
// instance, and serializes every page through one mutex, per spec.md §5.
type Receiver struct {
	mutex sync.Mutex

	accumulator *page.Accumulator
	maskCache   *mask.Cache
	codec       *rscodec.Codec
	clock       clock.Clock
	logger      *slog.Logger

	monitorEnabled bool

	// Corrections receives every successfully decoded HAS Correction
	// Record whose active mask has Nsat>0 (spec.md §4.5/§6).
	Corrections chan *mt1.Record

	// Monitor receives a MonitorEvent per successful MT1 decode while the
	// nav-data monitor is enabled (spec.md §6).
	Monitor chan MonitorEvent
}

// New creates a Receiver with a fresh PageSlot table and Mask Cache,
// publishing corrections and monitor events on buffered channels.
func New(codec *rscodec.Codec, logger *slog.Logger) *Receiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Receiver{
		accumulator: page.NewAccumulator(),
		maskCache:   mask.NewCache(),
		codec:       codec,
		clock:       clock.NewSystemClock(),
		logger:      logger,
		Corrections: make(chan *mt1.Record, 32),
		Monitor:     make(chan MonitorEvent, 32),
	}
}

// SetClock overrides the Receiver's clock, which stamps each slot's
// LastTouched time for the stale-slot sweep.
func (r *Receiver) SetClock(c clock.Clock) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.clock = c
}

// SetEnableNavDataMonitor implements spec.md §6's
// set_enable_navdata_monitor control.
func (r *Receiver) SetEnableNavDataMonitor(enabled bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.monitorEnabled = enabled
}

// HandlePage is the single event-loop entry point: spec.md §4.3 screening
// and accumulation, followed by §4.2/§4.4 reconstruction and parsing on
// completion, all under one lock. It never returns an error: every
// failure mode is a locally recovered haserr.Error, logged and absorbed
// exactly as spec.md §7 specifies.
func (r *Receiver) HandlePage(p page.Page, meta PageMeta) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	outcome := r.accumulator.Accept(p)
	switch outcome {
	case page.Rejected:
		r.logger.Debug("page dropped by screening", "message_id", p.MessageID, "page_id", p.PageID)
		return
	case page.Duplicate:
		r.logger.Debug("duplicate page ignored", "message_id", p.MessageID, "page_id", p.PageID)
		return
	}

	r.accumulator.Touch(p.MessageID, r.clock.Now())

	if outcome != page.Complete {
		return
	}

	r.decode(p.MessageID, p.MessageSize, meta)
}

// decode runs §4.2 reconstruction and §4.4 parsing for a just-completed
// slot, publishing on success and resetting the slot on every outcome.
func (r *Receiver) decode(messageID, messageSize uint8, meta PageMeta) {
	slot := r.accumulator.Slot(messageID)

	result, err := reconstruct.Reconstruct(slot, messageSize, r.codec)
	if err != nil {
		r.logLocalError(err, messageID)
		r.accumulator.Reset(messageID)
		return
	}

	record, err := mt1.Parse(result.Bitstring, r.maskCache)
	if err != nil {
		r.logLocalError(err, messageID)
		r.accumulator.Reset(messageID)
		return
	}

	r.accumulator.Reset(messageID)

	if record.HaveMask {
		select {
		case r.Corrections <- record:
		default:
			r.logger.Warn("corrections channel full, dropping record", "mask_id", record.MaskID)
		}
	}

	if r.monitorEnabled {
		event := MonitorEvent{
			System:  "E",
			Signal:  "E6",
			PRN:     meta.PRN,
			Tow:     meta.TowAtCurrentSymbolMs,
			RawBits: result.Bitstring,
		}
		select {
		case r.Monitor <- event:
		default:
			r.logger.Warn("monitor channel full, dropping event", "prn", meta.PRN)
		}
	}
}

func (r *Receiver) logLocalError(err error, messageID uint8) {
	var hasErr *haserr.Error
	if as, ok := err.(*haserr.Error); ok {
		hasErr = as
	}
	level := slog.LevelWarn
	if hasErr != nil && hasErr.Kind == haserr.Dropped {
		level = slog.LevelDebug
	}
	r.logger.Log(context.Background(), level, "decode failed", "message_id", messageID, "error", err)
}

// EvictStaleSlots resets every PageSlot idle since before cutoff, under
// the same lock HandlePage uses. Satisfies sweep.Target.
func (r *Receiver) EvictStaleSlots(cutoff time.Time) []uint8 {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.accumulator.EvictStaleSlots(cutoff)
}
