// Package mask holds the per-mask_id satellite/signal/cell mask state the
// MT1 body parser builds on mask_flag=1 messages and consults on
// correction-only (mask_flag=0) follow-ups.
package mask

import "math/bits"

// GnssKind tags which GNSS a mask system slot describes. It's modeled as a
// tagged variant rather than a bare integer so that system-specific widths
// (currently just the IOD width) have one place to live and the set of
// supported systems can grow without scattering width constants through
// the parser.
type GnssKind uint8

const (
	// GPS is gnss_id 0.
	GPS GnssKind = 0
	// Galileo is gnss_id 2.
	Galileo GnssKind = 2
)

// GPSIODWidth and GalileoIODWidth are the per-system IOD field widths used
// in the orbit-correction block (ICD v1.2 Table 10).
const (
	GPSIODWidth     = 8
	GalileoIODWidth = 10
)

// Kind maps a raw gnss_id nibble to a GnssKind. ok is false for any value
// outside {GPS, Galileo}; the caller treats that as Malformed per the
// conservative resolution of the unsupported-gnss_id open question.
func Kind(gnssID uint8) (GnssKind, bool) {
	switch GnssKind(gnssID) {
	case GPS:
		return GPS, true
	case Galileo:
		return Galileo, true
	default:
		return 0, false
	}
}

// IODWidth returns the bit width of this system's IOD field.
func (k GnssKind) IODWidth() uint {
	switch k {
	case GPS:
		return GPSIODWidth
	case Galileo:
		return GalileoIODWidth
	default:
		return 0
	}
}

// System is one mask entry for one GNSS constellation.
type System struct {
	GnssID       uint8 // Raw gnss_id nibble, preserved even if unsupported.
	Kind         GnssKind
	Supported    bool
	SatelliteMask uint64 // 40-bit bitmap, PRNs 1..40.
	SignalMask   uint16 // 16-bit bitmap.

	// CellMaskAvailable records whether cell_mask[i] was transmitted. When
	// false, every (satellite, signal) cell is treated as present.
	CellMaskAvailable bool

	// CellMask is a flat NumSatellites() x NumSignals() boolean buffer,
	// satellite-major then signal-minor, per the spec's guidance to use a
	// flat buffer with row/column counts rather than nested slices.
	CellMask []bool

	NavMessage uint8 // u3
}

// NumSatellites returns popcount(SatelliteMask).
func (s *System) NumSatellites() int {
	return bits.OnesCount64(s.SatelliteMask)
}

// NumSignals returns popcount(SignalMask).
func (s *System) NumSignals() int {
	return bits.OnesCount16(s.SignalMask)
}

// CellPresent reports whether the cell for the satIdx'th active satellite
// and sigIdx'th active signal (0-based, in mask order) carries a
// correction. If cell_mask was not transmitted, every cell is present.
func (s *System) CellPresent(satIdx, sigIdx int) bool {
	if !s.CellMaskAvailable {
		return true
	}
	return s.CellMask[satIdx*s.NumSignals()+sigIdx]
}

// Mask is the full per-mask_id mask, built from Nsys system slots.
type Mask struct {
	Systems []System
}

// NumSatellitesTotal returns Nsat(mask_id): the sum of popcount(satellite_mask)
// across all systems.
func (m *Mask) NumSatellitesTotal() int {
	total := 0
	for i := range m.Systems {
		total += m.Systems[i].NumSatellites()
	}
	return total
}
