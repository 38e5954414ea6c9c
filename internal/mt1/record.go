package mt1

// Record is the decoded HAS Correction Record: the MT1 header plus every
// correction block the header's flags selected, resolved against a mask
// (either just parsed or fetched from the Mask Cache).
type Record struct {
	Header Header

	// HaveMask is false when mask_flag was 0 and the referenced mask_id
	// was not found in the cache, when the mask has no satellites, or when
	// the toh sanity gate fired; every correction block below is then
	// skipped, since it cannot be interpreted without a mask. It is also
	// cleared when the clock subset block carries Nsysprime=0: blocks
	// parsed before that one are kept, later ones are skipped.
	HaveMask bool

	// MaskID is the mask_id the correction blocks below (if any) were
	// resolved against; equals Header.MaskID.
	MaskID uint8

	// Orbit corrections, present iff OrbitCorrectionFlag && HaveMask.
	Orbit *OrbitCorrections

	// Clock full-set corrections, present iff ClockFullsetFlag && HaveMask.
	ClockFullset *ClockFullsetCorrections

	// Clock subset corrections, present iff ClockSubsetFlag && HaveMask.
	ClockSubset *ClockSubsetCorrections

	// Code bias corrections, present iff CodeBiasFlag && HaveMask.
	CodeBias *BiasCorrections

	// Phase bias corrections, present iff PhaseBiasFlag && HaveMask.
	PhaseBias *PhaseBiasCorrections

	// URA corrections, present iff URAFlag && HaveMask. The reference
	// receiver defines but never enables this block; this implementation
	// supplements it.
	URA *URACorrections
}

// OrbitCorrections holds one delta set per satellite, in mask order.
type OrbitCorrections struct {
	ValidityIntervalIndex uint8
	IOD                   []uint16 // width depends on each satellite's GnssKind.
	DeltaRadial           []int16  // i13
	DeltaAlongTrack       []int16  // i12
	DeltaCrossTrack       []int16  // i12
}

// ClockFullsetCorrections holds the full clock correction set.
type ClockFullsetCorrections struct {
	ValidityIntervalIndex uint8
	C0Multiplier          []uint8 // u2, one per system.
	IODChangeFlag         []bool  // one per satellite, mask order.
	DeltaC0               []int16 // i13, one per satellite, mask order.
}

// ClockSubsetCorrections holds the clock subset block, covering only
// Nsysprime of the Nsys systems in the active mask.
type ClockSubsetCorrections struct {
	ValidityIntervalIndex uint8
	Nsysprime             uint8
	GnssIDSub             []uint8  // one per subset system.
	C0MultiplierSub       []uint8  // one per subset system (already +1 applied).
	Submask               [][]bool // one bool per active satellite of the subset system.
	DeltaC0Sub            [][]int16
}

// BiasCorrections holds a 2-D int16 grid per (satellite, active-signal)
// cell, one row per satellite across every system in mask order. Each row
// has its own system's signal count (not every satellite has the same
// number of active signals); cells absent from the cell mask stay zero.
type BiasCorrections struct {
	Values    [][]int16 // Values[sat][signal-index]
}

// PhaseBiasCorrections is the phase-bias analogue of BiasCorrections, with
// an accompanying discontinuity indicator per cell.
type PhaseBiasCorrections struct {
	Values         [][]int16
	Discontinuity  [][]uint8 // u2 per cell.
}

// URACorrections holds the (supplemented) URA block.
type URACorrections struct {
	ValidityIntervalIndex uint8
	URA                   []uint8 // u3, one per satellite, mask order.
}
