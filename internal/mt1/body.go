package mt1

import (
	"github.com/jwen15/DM-gnss-sdr/internal/bitreader"
	"github.com/jwen15/DM-gnss-sdr/internal/haserr"
	"github.com/jwen15/DM-gnss-sdr/internal/mask"
)

// MaskReservedLength is the width of the reserved padding field that
// follows the per-system mask block (ICD v1.2 Table 8). The reference
// receiver consumes and discards it without interpreting its contents.
const MaskReservedLength = 6

// Widths in bits for body fields whose width doesn't depend on a mask
// (ICD v1.2 Tables 9-13).
const (
	widthNsys            = 4
	widthGnssIDMask       = 4
	widthSatelliteMask    = 40
	widthSignalMask       = 16
	widthNavMessage       = 3
	widthValidityIndex    = 4
	widthC0Multiplier     = 2
	widthDeltaRadial      = 13
	widthDeltaAlongTrack  = 12
	widthDeltaCrossTrack  = 12
	widthDeltaC0          = 13
	widthNsysprime        = 4
	widthGnssIDSub        = 4
	widthC0MultiplierSub  = 2
	widthDeltaC0Sub       = 13
	widthCodeBias         = 11
	widthPhaseBias        = 11
	widthPhaseDisc        = 2
	widthURA              = 3
)

// Parse reads the MT1 header and body from the 13,568-bit (or shorter,
// for message_size<32) bitstring produced by the reconstruction layer,
// resolving mask-dependent blocks against cache. Any error after the header
// has been read evicts the cache entry for the header's mask_id.
func Parse(bits string, cache *mask.Cache) (_ *Record, err error) {
	if uint(len(bits)) < HeaderBits {
		return nil, haserr.Newf(haserr.Malformed, "bitstring too short for header: %d bits", len(bits))
	}

	header := parseHeader(bitsToBytes(bits[:HeaderBits]))
	body := bitreader.NewBodyReader(bits[HeaderBits:])

	defer func() {
		if err != nil {
			cache.Evict(header.MaskID)
		}
	}()

	record := &Record{Header: header, MaskID: header.MaskID}

	var m *mask.Mask
	if header.MaskFlag {
		m, err = parseMaskBlock(body)
		if err != nil {
			return nil, err
		}
		cache.Put(header.MaskID, m)
	} else {
		m = cache.Get(header.MaskID)
	}

	haveMask := m != nil && m.NumSatellitesTotal() > 0
	record.HaveMask = haveMask

	if header.TOH > NumberMaxTOH {
		haveMask = false
		record.HaveMask = false
		cache.Evict(header.MaskID)
	}

	if !haveMask {
		return record, nil
	}

	satGnssIDs := expandSatelliteGnssIDs(m)
	nsat := len(satGnssIDs)

	if header.OrbitCorrectionFlag {
		orbit, err := parseOrbit(body, satGnssIDs, nsat)
		if err != nil {
			return nil, err
		}
		record.Orbit = orbit
	}

	if header.ClockFullsetFlag {
		cf, err := parseClockFullset(body, m, nsat)
		if err != nil {
			return nil, err
		}
		record.ClockFullset = cf
	}

	if header.ClockSubsetFlag {
		cs, err := parseClockSubset(body, m)
		if err != nil {
			return nil, err
		}
		if cs == nil {
			// Nsysprime == 0: malformed, abort remaining correction
			// blocks and evict the mask, per spec.md §4.4.
			cache.Evict(header.MaskID)
			record.HaveMask = false
			return record, nil
		}
		record.ClockSubset = cs
	}

	if header.CodeBiasFlag {
		cb, err := parseBias(body, m, widthCodeBias)
		if err != nil {
			return nil, err
		}
		record.CodeBias = &BiasCorrections{Values: cb}
	}

	if header.PhaseBiasFlag {
		pb, disc, err := parsePhaseBias(body, m)
		if err != nil {
			return nil, err
		}
		record.PhaseBias = &PhaseBiasCorrections{Values: pb, Discontinuity: disc}
	}

	if header.URAFlag {
		ura, err := parseURA(body, nsat)
		if err != nil {
			return nil, err
		}
		record.URA = ura
	}

	return record, nil
}

// parseMaskBlock reads Nsys system slots and the trailing reserved field.
// If Nsys is zero, nothing further is consumed: the block is entirely
// absent, matching the reference receiver's behaviour.
func parseMaskBlock(r *bitreader.BodyReader) (*mask.Mask, error) {
	nsys, err := r.ReadUint(widthNsys)
	if err != nil {
		return nil, malformed(err)
	}
	if nsys == 0 {
		return &mask.Mask{}, nil
	}

	m := &mask.Mask{Systems: make([]mask.System, nsys)}
	for i := range m.Systems {
		sys := &m.Systems[i]

		gnssID, err := r.ReadUint(widthGnssIDMask)
		if err != nil {
			return nil, malformed(err)
		}
		sys.GnssID = uint8(gnssID)
		sys.Kind, sys.Supported = mask.Kind(sys.GnssID)

		satMask, err := r.ReadUint(widthSatelliteMask)
		if err != nil {
			return nil, malformed(err)
		}
		sys.SatelliteMask = satMask

		sigMask, err := r.ReadUint(widthSignalMask)
		if err != nil {
			return nil, malformed(err)
		}
		sys.SignalMask = uint16(sigMask)

		avail, err := r.ReadBool()
		if err != nil {
			return nil, malformed(err)
		}
		sys.CellMaskAvailable = avail

		ns, nc := sys.NumSatellites(), sys.NumSignals()
		cells := make([]bool, ns*nc)
		for j := range cells {
			bit, err := r.ReadBool()
			if err != nil {
				return nil, malformed(err)
			}
			cells[j] = bit
		}
		sys.CellMask = cells

		nav, err := r.ReadUint(widthNavMessage)
		if err != nil {
			return nil, malformed(err)
		}
		sys.NavMessage = uint8(nav)
	}

	if err := r.Skip(MaskReservedLength); err != nil {
		return nil, malformed(err)
	}

	return m, nil
}

// expandSatelliteGnssIDs builds the per-satellite gnss_id list, in mask
// order (system-major, satellite-minor within a system), used by the
// orbit block to pick each satellite's IOD width.
func expandSatelliteGnssIDs(m *mask.Mask) []uint8 {
	var ids []uint8
	for i := range m.Systems {
		n := m.Systems[i].NumSatellites()
		for j := 0; j < n; j++ {
			ids = append(ids, m.Systems[i].GnssID)
		}
	}
	return ids
}

func parseOrbit(r *bitreader.BodyReader, satGnssIDs []uint8, nsat int) (*OrbitCorrections, error) {
	vi, err := r.ReadUint(widthValidityIndex)
	if err != nil {
		return nil, malformed(err)
	}

	out := &OrbitCorrections{
		ValidityIntervalIndex: uint8(vi),
		IOD:                   make([]uint16, nsat),
		DeltaRadial:           make([]int16, nsat),
		DeltaAlongTrack:       make([]int16, nsat),
		DeltaCrossTrack:       make([]int16, nsat),
	}

	for i := 0; i < nsat; i++ {
		kind, ok := mask.Kind(satGnssIDs[i])
		if !ok {
			return nil, haserr.Newf(haserr.Malformed, "unsupported gnss_id %d in orbit block", satGnssIDs[i])
		}
		iod, err := r.ReadUint(kind.IODWidth())
		if err != nil {
			return nil, malformed(err)
		}
		out.IOD[i] = uint16(iod)

		dr, err := r.ReadInt(widthDeltaRadial)
		if err != nil {
			return nil, malformed(err)
		}
		out.DeltaRadial[i] = int16(dr)

		da, err := r.ReadInt(widthDeltaAlongTrack)
		if err != nil {
			return nil, malformed(err)
		}
		out.DeltaAlongTrack[i] = int16(da)

		dc, err := r.ReadInt(widthDeltaCrossTrack)
		if err != nil {
			return nil, malformed(err)
		}
		out.DeltaCrossTrack[i] = int16(dc)
	}
	return out, nil
}

func parseClockFullset(r *bitreader.BodyReader, m *mask.Mask, nsat int) (*ClockFullsetCorrections, error) {
	vi, err := r.ReadUint(widthValidityIndex)
	if err != nil {
		return nil, malformed(err)
	}

	out := &ClockFullsetCorrections{
		ValidityIntervalIndex: uint8(vi),
		C0Multiplier:          make([]uint8, len(m.Systems)),
		IODChangeFlag:         make([]bool, nsat),
		DeltaC0:               make([]int16, nsat),
	}

	for i := range m.Systems {
		v, err := r.ReadUint(widthC0Multiplier)
		if err != nil {
			return nil, malformed(err)
		}
		out.C0Multiplier[i] = uint8(v)
	}

	for i := 0; i < nsat; i++ {
		flag, err := r.ReadBool()
		if err != nil {
			return nil, malformed(err)
		}
		out.IODChangeFlag[i] = flag

		dc0, err := r.ReadInt(widthDeltaC0)
		if err != nil {
			return nil, malformed(err)
		}
		out.DeltaC0[i] = int16(dc0)
	}
	return out, nil
}

// parseClockSubset returns (nil, nil) when Nsysprime is zero: that's the
// "wrong formatted data, aborting" case, distinct from a genuine parse
// error.
func parseClockSubset(r *bitreader.BodyReader, m *mask.Mask) (*ClockSubsetCorrections, error) {
	vi, err := r.ReadUint(widthValidityIndex)
	if err != nil {
		return nil, malformed(err)
	}

	nsysprime, err := r.ReadUint(widthNsysprime)
	if err != nil {
		return nil, malformed(err)
	}
	if nsysprime == 0 {
		return nil, nil
	}

	out := &ClockSubsetCorrections{
		ValidityIntervalIndex: uint8(vi),
		Nsysprime:             uint8(nsysprime),
		GnssIDSub:             make([]uint8, nsysprime),
		C0MultiplierSub:       make([]uint8, nsysprime),
		Submask:               make([][]bool, nsysprime),
		DeltaC0Sub:            make([][]int16, nsysprime),
	}

	for i := uint64(0); i < nsysprime; i++ {
		gnssID, err := r.ReadUint(widthGnssIDSub)
		if err != nil {
			return nil, malformed(err)
		}
		out.GnssIDSub[i] = uint8(gnssID)

		mult, err := r.ReadUint(widthC0MultiplierSub)
		if err != nil {
			return nil, malformed(err)
		}
		out.C0MultiplierSub[i] = uint8(mult) + 1

		// The submask runs over the i'th system of the active mask, not
		// the system identified by gnss_id_sub[i] - this mirrors the
		// reference receiver, which indexes satellite_mask by the
		// clock-subset loop counter.
		var ns int
		if int(i) < len(m.Systems) {
			ns = m.Systems[i].NumSatellites()
		}
		submask := make([]bool, ns)
		var deltas []int16
		for j := 0; j < ns; j++ {
			bit, err := r.ReadBool()
			if err != nil {
				return nil, malformed(err)
			}
			submask[j] = bit
			if bit {
				dc0, err := r.ReadInt(widthDeltaC0Sub)
				if err != nil {
					return nil, malformed(err)
				}
				deltas = append(deltas, int16(dc0))
			}
		}
		out.Submask[i] = submask
		out.DeltaC0Sub[i] = deltas
	}

	return out, nil
}

// parseBias reads a code-bias-shaped block: one validity index, then one
// reading of width bits per present (satellite, signal) cell, iterating
// systems in mask order.
func parseBias(r *bitreader.BodyReader, m *mask.Mask, width uint) ([][]int16, error) {
	if _, err := r.ReadUint(widthValidityIndex); err != nil {
		return nil, malformed(err)
	}

	var rows [][]int16
	for sysIdx := range m.Systems {
		sys := &m.Systems[sysIdx]
		ns, nc := sys.NumSatellites(), sys.NumSignals()
		for s := 0; s < ns; s++ {
			row := make([]int16, nc)
			for c := 0; c < nc; c++ {
				if sys.CellPresent(s, c) {
					v, err := r.ReadInt(width)
					if err != nil {
						return nil, malformed(err)
					}
					row[c] = int16(v)
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// parsePhaseBias is parseBias's twin, additionally reading a
// discontinuity indicator per present cell.
func parsePhaseBias(r *bitreader.BodyReader, m *mask.Mask) ([][]int16, [][]uint8, error) {
	if _, err := r.ReadUint(widthValidityIndex); err != nil {
		return nil, nil, malformed(err)
	}

	var values [][]int16
	var discontinuity [][]uint8
	for sysIdx := range m.Systems {
		sys := &m.Systems[sysIdx]
		ns, nc := sys.NumSatellites(), sys.NumSignals()
		for s := 0; s < ns; s++ {
			vRow := make([]int16, nc)
			dRow := make([]uint8, nc)
			for c := 0; c < nc; c++ {
				if sys.CellPresent(s, c) {
					v, err := r.ReadInt(widthPhaseBias)
					if err != nil {
						return nil, nil, malformed(err)
					}
					vRow[c] = int16(v)

					d, err := r.ReadUint(widthPhaseDisc)
					if err != nil {
						return nil, nil, malformed(err)
					}
					dRow[c] = uint8(d)
				}
			}
			values = append(values, vRow)
			discontinuity = append(discontinuity, dRow)
		}
	}
	return values, discontinuity, nil
}

func parseURA(r *bitreader.BodyReader, nsat int) (*URACorrections, error) {
	vi, err := r.ReadUint(widthValidityIndex)
	if err != nil {
		return nil, malformed(err)
	}

	out := &URACorrections{
		ValidityIntervalIndex: uint8(vi),
		URA:                   make([]uint8, nsat),
	}
	for i := 0; i < nsat; i++ {
		v, err := r.ReadUint(widthURA)
		if err != nil {
			return nil, malformed(err)
		}
		out.URA[i] = uint8(v)
	}
	return out, nil
}

func malformed(err error) error {
	return haserr.New(haserr.Malformed, err)
}

// bitsToBytes packs an ASCII '0'/'1' string into bytes, MSB first, padding
// the final byte with zero bits if necessary.
func bitsToBytes(bits string) []byte {
	n := (len(bits) + 7) / 8
	buf := make([]byte, n)
	for i, c := range bits {
		if c == '1' {
			buf[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return buf
}
