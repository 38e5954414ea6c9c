// Package reconstruct turns a completed page.Slot into a 32x53 information
// matrix and the concatenated MT1 bitstring, by building the erasure
// position list the (255,32) code needs and decoding each of the 53
// independent column codewords.
package reconstruct

import (
	"strings"

	"github.com/jwen15/DM-gnss-sdr/internal/haserr"
	"github.com/jwen15/DM-gnss-sdr/internal/page"
	"github.com/jwen15/DM-gnss-sdr/internal/rscodec"
)

// InfoMatrix is the 32x53 octet matrix recovered by reconstruction. Rows
// 0..messageSize-1 are meaningful; the remainder is zero.
type InfoMatrix [rscodec.DataShards][page.Octets]byte

// Result holds the reconstructed matrix and the MT1 bitstring it encodes.
type Result struct {
	Matrix    InfoMatrix
	Bitstring string // message_size*424 ASCII '0'/'1' characters.
}

// Reconstruct builds the erasure-position list from slot, checks the
// (255,32,224) code's erasure tolerance, decodes all 53 columns and
// concatenates rows 0..messageSize-1 into the MT1 bitstring.
//
// It returns a *haserr.Error of kind TooManyErasures if the erasure count
// exceeds the code's tolerance, or of kind RSFailure if the codec itself
// fails to reconstruct a column. Either way the caller must reset the
// slot; this function does not mutate slot.
func Reconstruct(slot *page.Slot, messageSize uint8, codec *rscodec.Codec) (*Result, error) {
	erasures := erasurePositions(slot, messageSize)
	if len(erasures) > rscodec.MaxErasures {
		return nil, haserr.Newf(haserr.TooManyErasures,
			"%d erasures exceeds the code's tolerance of %d", len(erasures), rscodec.MaxErasures)
	}

	var matrix InfoMatrix
	col := make([]byte, rscodec.TotalShards)
	for c := 0; c < page.Octets; c++ {
		for i := range col {
			col[i] = 0
		}
		for pid := 1; pid <= page.MaxPageID; pid++ {
			if slot.Received[pid-1] {
				col[pid-1] = slot.C[pid-1][c]
			}
		}
		if err := codec.Decode(col, erasures); err != nil {
			return nil, haserr.New(haserr.RSFailure, err)
		}
		for row := 0; row < rscodec.DataShards; row++ {
			matrix[row][c] = col[row]
		}
	}

	return &Result{Matrix: matrix, Bitstring: matrixToBitstring(&matrix, int(messageSize))}, nil
}

// erasurePositions computes, as 0-based indices (pid-1), the set
// ([1..messageSize] union [33..255]) minus the received pids. Pids in
// (messageSize, 32] are neither transmitted nor erasures: they're defined
// zero information symbols.
func erasurePositions(slot *page.Slot, messageSize uint8) []int {
	var erasures []int
	for pid := 1; pid <= int(messageSize); pid++ {
		if !slot.Received[pid-1] {
			erasures = append(erasures, pid-1)
		}
	}
	for pid := rscodec.DataShards + 1; pid <= page.MaxPageID; pid++ {
		if !slot.Received[pid-1] {
			erasures = append(erasures, pid-1)
		}
	}
	return erasures
}

// matrixToBitstring concatenates rows 0..messageSize-1 of matrix, MSB
// first within each octet, into an ASCII '0'/'1' string.
func matrixToBitstring(matrix *InfoMatrix, messageSize int) string {
	var b strings.Builder
	b.Grow(messageSize * page.Octets * 8)
	for row := 0; row < messageSize; row++ {
		for _, octet := range matrix[row] {
			for bit := 7; bit >= 0; bit-- {
				b.WriteByte('0' + (octet>>bit)&1)
			}
		}
	}
	return b.String()
}
