package mask

import (
	"fmt"
	"testing"

	"github.com/kylelemons/godebug/diff"
)

// TestKind checks that Kind resolves GPS and Galileo and rejects anything
// else, per the conservative resolution of the unsupported-gnss_id open
// question.
func TestKind(t *testing.T) {
	var testData = []struct {
		GnssID uint8
		Want   GnssKind
		WantOK bool
	}{
		{0, GPS, true},
		{2, Galileo, true},
		{1, 0, false},
		{15, 0, false},
	}

	for _, td := range testData {
		got, ok := Kind(td.GnssID)
		if ok != td.WantOK || (ok && got != td.Want) {
			t.Errorf("gnss_id %d: got (%v, %v), want (%v, %v)", td.GnssID, got, ok, td.Want, td.WantOK)
		}
	}
}

// TestIODWidth checks the per-system IOD widths the orbit block relies on.
func TestIODWidth(t *testing.T) {
	if got := GPS.IODWidth(); got != 8 {
		t.Errorf("GPS IOD width: got %d want 8", got)
	}
	if got := Galileo.IODWidth(); got != 10 {
		t.Errorf("Galileo IOD width: got %d want 10", got)
	}
}

// TestSystemCounts checks popcount-derived satellite/signal counts and
// Nsat aggregation across systems.
func TestSystemCounts(t *testing.T) {
	s := System{SatelliteMask: 0b1011, SignalMask: 0b101} // 3 sats, 2 signals.
	if got := s.NumSatellites(); got != 3 {
		t.Errorf("NumSatellites: got %d want 3", got)
	}
	if got := s.NumSignals(); got != 2 {
		t.Errorf("NumSignals: got %d want 2", got)
	}

	m := Mask{Systems: []System{
		{SatelliteMask: 0b1011},
		{SatelliteMask: 0b1},
	}}
	if got := m.NumSatellitesTotal(); got != 4 {
		t.Errorf("NumSatellitesTotal: got %d want 4", got)
	}
}

// TestCellPresent checks that an unavailable cell mask is treated as
// "every cell present" while an available one is honoured exactly.
func TestCellPresent(t *testing.T) {
	available := System{
		SatelliteMask:     0b11,
		SignalMask:        0b11,
		CellMaskAvailable: true,
		CellMask:          []bool{true, false, false, true},
	}
	if !available.CellPresent(0, 0) || available.CellPresent(0, 1) {
		t.Errorf("row 0: got (%v,%v), want (true,false)", available.CellPresent(0, 0), available.CellPresent(0, 1))
	}
	if available.CellPresent(1, 0) || !available.CellPresent(1, 1) {
		t.Errorf("row 1: got (%v,%v), want (false,true)", available.CellPresent(1, 0), available.CellPresent(1, 1))
	}

	unavailable := System{SatelliteMask: 0b11, SignalMask: 0b11}
	if !unavailable.CellPresent(0, 1) {
		t.Error("unavailable cell mask must report every cell present")
	}
}

// TestCachePutGetEvict checks the Mask Cache's basic lifecycle, including
// idempotence when the same mask is stored twice (invariant 6).
func TestCachePutGetEvict(t *testing.T) {
	c := NewCache()

	if got := c.Get(3); got != nil {
		t.Fatalf("fresh cache: got %v, want nil", got)
	}

	m1 := &Mask{Systems: []System{{SatelliteMask: 0b101}}}
	c.Put(3, m1)
	if got := c.Get(3); got != m1 {
		t.Errorf("after Put: got %v, want %v", got, m1)
	}

	m2 := &Mask{Systems: []System{{SatelliteMask: 0b101}}}
	c.Put(3, m2)
	if got := c.Get(3); got.NumSatellitesTotal() != m1.NumSatellitesTotal() {
		t.Errorf(diff.Diff(describeMask(m1), describeMask(c.Get(3))))
	}

	c.Evict(3)
	if got := c.Get(3); got != nil {
		t.Errorf("after Evict: got %v, want nil", got)
	}
}

func describeMask(m *Mask) string {
	s := ""
	for _, sys := range m.Systems {
		s += fmt.Sprintf("sats=%d sigs=%d\n", sys.NumSatellites(), sys.NumSignals())
	}
	return s
}
