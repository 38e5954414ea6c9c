// Package page accumulates Galileo HAS pages per message_id and detects
// when enough pages have arrived to attempt Reed-Solomon reconstruction.
package page

import "time"

// Octets is the payload size of one page, in octets (424 bits).
const Octets = 53

// MaxPageID is the largest legal page_id. page_id 0 is reserved.
const MaxPageID = 255

// MaxMessageID is one past the largest legal message_id; message_id runs
// 0..31.
const MaxMessageID = 32

// Page is one decoded HAS page as delivered by the signal-processing
// front-end.
type Page struct {
	HasStatus   uint8  `json:"hasStatus"`   // 0..3; 2 (test) and 3 (reserved) are dropped.
	MessageType uint8  `json:"messageType"` // 0..31; only type 1 (MT1) is accumulated here.
	MessageID   uint8  `json:"messageId"`   // 0..31.
	MessageSize uint8  `json:"messageSize"` // 1..32, the number of pages that make up this message.
	PageID      uint8  `json:"pageId"`      // 1..255; 0 is reserved and always dropped.
	Payload     string `json:"payload"`     // 424 ASCII '0'/'1' characters.
}

// Slot holds the accumulation state for one message_id: which page_ids
// have been received and their payloads, indexed by page_id-1.
type Slot struct {
	// Received records, for each page_id-1, whether that page has arrived.
	Received [MaxPageID]bool

	// Order lists received page_ids in arrival order, for diagnostics.
	Order []uint8

	// C holds the payload octets of every received page, indexed
	// [page_id-1][octet]. Rows for page_ids that have not been received
	// remain zero.
	C [MaxPageID][Octets]byte

	// MessageSize is the value carried by the most recent page that
	// triggered a completion check, per the spec's convention that a
	// well-behaved transmitter sends the same value on every page of one
	// message.
	MessageSize uint8

	// count is the number of bits set in Received, kept incrementally so
	// the completion check doesn't have to rescan the bitset.
	count int

	// LastTouched is the time of the most recent accepted page for this
	// slot. It plays no part in the completion predicate or decode path;
	// it exists only to support the stale-slot sweep.
	LastTouched time.Time
}

// received returns the number of page_ids currently recorded as received.
func (s *Slot) received() int {
	return s.count
}

// reset clears a slot back to empty, either after a successful decode or
// after a fatal decode precondition failure.
func (s *Slot) reset() {
	for i := range s.Received {
		s.Received[i] = false
	}
	for i := range s.C {
		for j := range s.C[i] {
			s.C[i][j] = 0
		}
	}
	s.Order = s.Order[:0]
	s.MessageSize = 0
	s.count = 0
}

// Accumulator owns one Slot per message_id and implements the page
// screening and accumulation rules.
type Accumulator struct {
	slots [MaxMessageID]Slot
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Outcome describes what happened to an incoming page.
type Outcome int

const (
	// Rejected means the page failed screening and was dropped; no state
	// changed.
	Rejected Outcome = iota
	// Duplicate means the page_id had already been received for this
	// message_id; no state changed.
	Duplicate
	// Accepted means the page was recorded but the slot is not yet
	// complete.
	Accepted
	// Complete means the page was recorded and the slot now holds exactly
	// MessageSize received pages.
	Complete
)

// Accept applies the screening and accumulation rules in order:
//   - drop if has_status is 2 (test) or 3 (reserved)
//   - drop if page_id == 0
//   - drop if message_type != 1
//   - drop if message_id >= 32
//   - drop silently (Duplicate) if page_id already received
//
// Otherwise the page is recorded and Complete is returned if the slot's
// received count now equals the page's message_size.
func (a *Accumulator) Accept(p Page) Outcome {
	if p.HasStatus == 2 || p.HasStatus == 3 {
		return Rejected
	}
	if p.PageID == 0 {
		return Rejected
	}
	if p.MessageType != 1 {
		return Rejected
	}
	if p.MessageID >= MaxMessageID {
		return Rejected
	}

	slot := &a.slots[p.MessageID]
	idx := p.PageID - 1
	if slot.Received[idx] {
		return Duplicate
	}

	slot.Received[idx] = true
	slot.Order = append(slot.Order, p.PageID)
	slot.count++
	copyPayloadOctets(slot.C[idx][:], p.Payload)
	slot.MessageSize = p.MessageSize

	if slot.received() == int(p.MessageSize) {
		return Complete
	}
	return Accepted
}

// Slot returns the accumulation state for messageID, for use by the
// reconstruction layer once Accept reports Complete.
func (a *Accumulator) Slot(messageID uint8) *Slot {
	return &a.slots[messageID]
}

// Reset clears the slot for messageID. Called after a successful decode
// or after a fatal decode precondition failure (too many erasures).
func (a *Accumulator) Reset(messageID uint8) {
	a.slots[messageID].reset()
}

// Touch stamps the slot for messageID with now. The Receiver Front calls
// this after every Accepted or Complete outcome; it has no effect on
// decode semantics and exists only to drive the stale-slot sweep.
func (a *Accumulator) Touch(messageID uint8, now time.Time) {
	a.slots[messageID].LastTouched = now
}

// StaleMessageIDs returns the message_ids of slots that hold at least one
// received page but have not been touched since before cutoff. Used by
// the stale-slot sweep to find slots that will never complete.
func (a *Accumulator) StaleMessageIDs(cutoff time.Time) []uint8 {
	var stale []uint8
	for i := range a.slots {
		s := &a.slots[i]
		if s.count > 0 && s.LastTouched.Before(cutoff) {
			stale = append(stale, uint8(i))
		}
	}
	return stale
}

// EvictStaleSlots resets every slot StaleMessageIDs reports for cutoff and
// returns their message_ids. Satisfies sweep.Target.
func (a *Accumulator) EvictStaleSlots(cutoff time.Time) []uint8 {
	stale := a.StaleMessageIDs(cutoff)
	for _, messageID := range stale {
		a.Reset(messageID)
	}
	return stale
}

// copyPayloadOctets packs a 424-character ASCII bit string into 53 octets,
// MSB first within each octet.
func copyPayloadOctets(dst []byte, payload string) {
	for i := 0; i < Octets; i++ {
		var b byte
		for bit := 0; bit < 8; bit++ {
			b <<= 1
			if payload[i*8+bit] == '1' {
				b |= 1
			}
		}
		dst[i] = b
	}
}
