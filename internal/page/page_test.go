package page

import (
	"strings"
	"testing"
	"time"
)

func makePayload(fill byte) string {
	var b strings.Builder
	for i := 0; i < Octets*8; i++ {
		if fill == 1 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// TestAcceptRejectsScreeningFailures checks invariant 2: a page with
// page_id=0 or message_type != 1 leaves the accumulator's state unchanged.
func TestAcceptRejectsScreeningFailures(t *testing.T) {
	a := NewAccumulator()

	bad := []Page{
		{HasStatus: 0, MessageType: 1, MessageID: 5, MessageSize: 2, PageID: 0, Payload: makePayload(1)},
		{HasStatus: 0, MessageType: 2, MessageID: 5, MessageSize: 2, PageID: 1, Payload: makePayload(1)},
		{HasStatus: 2, MessageType: 1, MessageID: 5, MessageSize: 2, PageID: 1, Payload: makePayload(1)},
		{HasStatus: 3, MessageType: 1, MessageID: 5, MessageSize: 2, PageID: 1, Payload: makePayload(1)},
		{HasStatus: 0, MessageType: 1, MessageID: 32, MessageSize: 2, PageID: 1, Payload: makePayload(1)},
	}

	for _, p := range bad {
		outcome := a.Accept(p)
		if outcome != Rejected {
			t.Errorf("page %+v: got outcome %v, want Rejected", p, outcome)
		}
	}

	slot := a.Slot(5)
	if slot.received() != 0 {
		t.Errorf("expected no pages accepted, got %d", slot.received())
	}
}

// TestAcceptDuplicateIsIdempotent checks invariant 3: a duplicate page
// leaves state unchanged.
func TestAcceptDuplicateIsIdempotent(t *testing.T) {
	a := NewAccumulator()
	p := Page{HasStatus: 0, MessageType: 1, MessageID: 5, MessageSize: 3, PageID: 1, Payload: makePayload(1)}

	if outcome := a.Accept(p); outcome != Accepted {
		t.Fatalf("first Accept: got %v, want Accepted", outcome)
	}

	dup := Page{HasStatus: 0, MessageType: 1, MessageID: 5, MessageSize: 3, PageID: 1, Payload: makePayload(0)}
	if outcome := a.Accept(dup); outcome != Duplicate {
		t.Fatalf("duplicate Accept: got %v, want Duplicate", outcome)
	}

	slot := a.Slot(5)
	if slot.received() != 1 {
		t.Errorf("expected exactly one received page, got %d", slot.received())
	}
	// The duplicate's all-zero payload must not have overwritten the
	// original all-one payload.
	if slot.C[0][0] != 0xFF {
		t.Errorf("duplicate page overwrote existing payload: got 0x%X want 0xFF", slot.C[0][0])
	}
}

// TestAcceptSignalsCompletion checks that Complete is returned exactly
// when the received count reaches message_size, and Reset clears the
// slot per invariant 1.
func TestAcceptSignalsCompletion(t *testing.T) {
	a := NewAccumulator()

	outcome := a.Accept(Page{MessageType: 1, MessageID: 7, MessageSize: 2, PageID: 1, Payload: makePayload(1)})
	if outcome != Accepted {
		t.Fatalf("first page: got %v, want Accepted", outcome)
	}

	outcome = a.Accept(Page{MessageType: 1, MessageID: 7, MessageSize: 2, PageID: 2, Payload: makePayload(1)})
	if outcome != Complete {
		t.Fatalf("second page: got %v, want Complete", outcome)
	}

	a.Reset(7)
	slot := a.Slot(7)
	if slot.received() != 0 {
		t.Errorf("after reset, expected 0 received pages, got %d", slot.received())
	}
	for i := range slot.C {
		for j, v := range slot.C[i] {
			if v != 0 {
				t.Fatalf("after reset, C[%d][%d] = %d, want 0", i, j, v)
			}
		}
	}
	if len(slot.Order) != 0 {
		t.Errorf("after reset, expected empty Order, got %v", slot.Order)
	}
}

// TestStaleMessageIDs checks that the sweep helper only reports slots with
// at least one received page whose last touch predates the cutoff.
func TestStaleMessageIDs(t *testing.T) {
	a := NewAccumulator()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a.Accept(Page{MessageType: 1, MessageID: 3, MessageSize: 5, PageID: 1, Payload: makePayload(1)})
	a.Touch(3, base)

	stale := a.StaleMessageIDs(base.Add(time.Minute))
	if len(stale) != 1 || stale[0] != 3 {
		t.Errorf("got %v, want [3]", stale)
	}

	stale = a.StaleMessageIDs(base.Add(-time.Minute))
	if len(stale) != 0 {
		t.Errorf("got %v, want none", stale)
	}
}
