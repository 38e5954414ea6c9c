// Package rscodec implements the Reed-Solomon erasure-decode contract the
// reconstruction layer depends on: decode a 255-symbol codeword over
// GF(256), given a list of erasure positions, recovering the 32 information
// symbols into the front of the buffer. The algorithm itself is an external
// collaborator - this package is a thin adapter over
// github.com/klauspost/reedsolomon's erasure-coding implementation,
// configured for the (255, 32, 224) code the HAS page layout uses.
package rscodec

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// DataShards is the number of information symbols in the codeword.
const DataShards = 32

// ParityShards is the number of parity symbols in the codeword.
const ParityShards = 223

// TotalShards is the codeword length.
const TotalShards = DataShards + ParityShards

// MaxErasures is the largest number of erasures the code can tolerate.
const MaxErasures = ParityShards

// Codec erasure-decodes single-byte-per-symbol (255,32) GF(256) codewords.
// A Codec is safe for concurrent use by multiple goroutines: the underlying
// encoder holds no mutable state between calls.
type Codec struct {
	enc reedsolomon.Encoder
}

// New builds a Codec for the (255,32,224) code. It fails only if the
// underlying library rejects the shard counts, which cannot happen for the
// fixed counts this package uses - callers can safely ignore a non-nil
// error only if they control DataShards/ParityShards, which they don't.
func New() (*Codec, error) {
	enc, err := reedsolomon.New(DataShards, ParityShards)
	if err != nil {
		return nil, fmt.Errorf("rscodec: failed to construct (%d,%d) encoder: %w", DataShards, ParityShards, err)
	}
	return &Codec{enc: enc}, nil
}

// Decode erasure-decodes column in place. column must have length
// TotalShards. erasurePositions holds 0-based indices into column that were
// not received and must be reconstructed. On success, the first
// DataShards bytes of column hold the recovered information symbols; on
// failure, column's contents are undefined.
func (c *Codec) Decode(column []byte, erasurePositions []int) error {
	if len(column) != TotalShards {
		return fmt.Errorf("rscodec: column has length %d, want %d", len(column), TotalShards)
	}

	erased := make(map[int]bool, len(erasurePositions))
	for _, p := range erasurePositions {
		erased[p] = true
	}

	shards := make([][]byte, TotalShards)
	for i := range shards {
		if erased[i] {
			shards[i] = nil
			continue
		}
		shards[i] = []byte{column[i]}
	}

	if err := c.enc.Reconstruct(shards); err != nil {
		return fmt.Errorf("rscodec: reconstruct failed: %w", err)
	}

	for i, shard := range shards {
		column[i] = shard[0]
	}
	return nil
}
