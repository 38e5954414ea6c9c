package mt1

import "github.com/jwen15/DM-gnss-sdr/internal/bitreader"

// Field widths and offsets for the fixed MT1 header block, MSB first.
// toh(12) + mask_id(5) + iod_id(5) + seven single-bit flags = 29 bits.
//
// (The reference receiver reads every one of these fields, including all
// seven flags, from one fixed-width bitset addressed by offset/width pairs
// before ever touching the body cursor - see read_MT1_header in the
// original source. This implementation follows that layout.)
const (
	offsetTOH    = 0
	widthTOH     = 12
	offsetMaskID = offsetTOH + widthTOH
	widthMaskID  = 5
	offsetIODID  = offsetMaskID + widthMaskID
	widthIODID   = 5

	offsetMaskFlag          = offsetIODID + widthIODID
	offsetOrbitFlag         = offsetMaskFlag + 1
	offsetClockFullsetFlag  = offsetOrbitFlag + 1
	offsetClockSubsetFlag   = offsetClockFullsetFlag + 1
	offsetCodeBiasFlag      = offsetClockSubsetFlag + 1
	offsetPhaseBiasFlag     = offsetCodeBiasFlag + 1
	offsetURAFlag           = offsetPhaseBiasFlag + 1
)

// HeaderBits is the total width of the fixed MT1 header block; the body
// cursor starts immediately after it.
const HeaderBits = offsetURAFlag + 1

// NumberMaxTOH is the largest legal toh value (HAS_MSG_NUMBER_MAX_TOH).
// A toh above this invalidates the active mask (spec.md §4.4 sanity gate).
const NumberMaxTOH = 3599

// Header is the fixed 29-bit MT1 header.
type Header struct {
	TOH      uint16 // u12, time of hour in seconds, 0..3599 when valid.
	MaskID   uint8  // u5
	IODID    uint8  // u5
	MaskFlag bool
	OrbitCorrectionFlag bool
	ClockFullsetFlag    bool
	ClockSubsetFlag     bool
	CodeBiasFlag        bool
	PhaseBiasFlag       bool
	URAFlag             bool
}

// parseHeader reads the fixed header block from the front of buf, which
// must hold at least HeaderBits bits packed MSB first.
func parseHeader(buf []byte) Header {
	r := bitreader.NewHeaderReader(buf)
	return Header{
		TOH:                 uint16(r.ReadUint(offsetTOH, widthTOH)),
		MaskID:               uint8(r.ReadUint(offsetMaskID, widthMaskID)),
		IODID:                uint8(r.ReadUint(offsetIODID, widthIODID)),
		MaskFlag:             r.ReadBool(offsetMaskFlag),
		OrbitCorrectionFlag:  r.ReadBool(offsetOrbitFlag),
		ClockFullsetFlag:     r.ReadBool(offsetClockFullsetFlag),
		ClockSubsetFlag:      r.ReadBool(offsetClockSubsetFlag),
		CodeBiasFlag:         r.ReadBool(offsetCodeBiasFlag),
		PhaseBiasFlag:        r.ReadBool(offsetPhaseBiasFlag),
		URAFlag:              r.ReadBool(offsetURAFlag),
	}
}
