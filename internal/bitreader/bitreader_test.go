package bitreader

import "testing"

// TestGetBitsAsUint64 checks the unsigned bit extraction over a small
// packed-bit buffer.
func TestGetBitsAsUint64(t *testing.T) {
	// buf is 0xB4 0x2F = 1011 0100 0010 1111
	buf := []byte{0xB4, 0x2F}

	var testData = []struct {
		Pos   uint
		Width uint
		Want  uint64
	}{
		{0, 4, 0xB},
		{4, 4, 0x4},
		{0, 8, 0xB4},
		{8, 8, 0x2F},
		{0, 16, 0xB42F},
		{6, 1, 0x0},
		{5, 1, 0x1},
	}

	for _, td := range testData {
		got := GetBitsAsUint64(buf, td.Pos, td.Width)
		if got != td.Want {
			t.Errorf("pos %d width %d: got 0x%X want 0x%X", td.Pos, td.Width, got, td.Want)
		}
	}
}

// TestGetBitsAsInt64 checks two's-complement sign extension for odd widths.
func TestGetBitsAsInt64(t *testing.T) {
	var testData = []struct {
		Description string
		Buf         []byte
		Pos         uint
		Width       uint
		Want        int64
	}{
		{"positive 13-bit", []byte{0x00, 0x01}, 3, 13, 1},
		{"minus one, 13-bit (0x1FFF)", []byte{0xFF, 0xFF}, 3, 13, -1},
		{"minimum 13-bit (0x1000)", []byte{0x10, 0x00}, 3, 13, -4096},
		{"maximum 13-bit (0x0FFF)", []byte{0x0F, 0xFF}, 3, 13, 4095},
	}

	for _, td := range testData {
		got := GetBitsAsInt64(td.Buf, td.Pos, td.Width)
		if got != td.Want {
			t.Errorf("%s: got %d want %d", td.Description, got, td.Want)
		}
	}
}

// TestHeaderReader checks reads of fixed-width header fields.
func TestHeaderReader(t *testing.T) {
	// 29-bit header: toh=12 (u12), mask_id=3 (u5), iod_id=1 (u5),
	// flags 1,0,1,0,0,1,0
	// toh:      0000 0000 1100
	// mask_id:  0 0011
	// iod_id:   0 0001
	// flags:    1010010
	// total bits: 12+5+5+7 = 29 -> pad to 32 bits (4 bytes) for this test.
	bits := "000000001100" + "00011" + "00001" + "1010010" + "000"
	buf := bitsToBytes(bits)
	r := NewHeaderReader(buf)

	if got := r.ReadUint(0, 12); got != 12 {
		t.Errorf("toh: got %d want 12", got)
	}
	if got := r.ReadUint(12, 5); got != 3 {
		t.Errorf("mask_id: got %d want 3", got)
	}
	if got := r.ReadUint(17, 5); got != 1 {
		t.Errorf("iod_id: got %d want 1", got)
	}
	if got := r.ReadBool(22); got != true {
		t.Errorf("mask_flag: got %v want true", got)
	}
	if got := r.ReadBool(23); got != false {
		t.Errorf("orbit_correction_flag: got %v want false", got)
	}
}

// TestBodyReaderSequential checks that successive reads advance the cursor
// correctly and that read_bool is equivalent to read_u(1) != 0.
func TestBodyReaderSequential(t *testing.T) {
	r := NewBodyReader("1011" + "00000001" + "1")

	u, err := r.ReadUint(4)
	if err != nil || u != 0xB {
		t.Fatalf("ReadUint(4): got %d, err %v", u, err)
	}
	u, err = r.ReadUint(8)
	if err != nil || u != 1 {
		t.Fatalf("ReadUint(8): got %d, err %v", u, err)
	}
	b, err := r.ReadBool()
	if err != nil || !b {
		t.Fatalf("ReadBool: got %v, err %v", b, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("expected no bits remaining, got %d", r.Remaining())
	}
}

// TestBodyReaderSignedWidths checks two's-complement decoding for the odd
// widths the MT1 body uses (13, 12, 11 bits).
func TestBodyReaderSignedWidths(t *testing.T) {
	var testData = []struct {
		Description string
		Bits        string
		Width       uint
		Want        int64
	}{
		{"13-bit minus one", "1111111111111", 13, -1},
		{"13-bit zero", "0000000000000", 13, 0},
		{"12-bit minimum", "100000000000", 12, -2048},
		{"11-bit maximum", "01111111111", 11, 1023},
	}

	for _, td := range testData {
		r := NewBodyReader(td.Bits)
		got, err := r.ReadInt(td.Width)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", td.Description, err)
		}
		if got != td.Want {
			t.Errorf("%s: got %d want %d", td.Description, got, td.Want)
		}
	}
}

// TestBodyReaderUnderrun checks that a read past the end of the buffer
// fails rather than silently returning a truncated value.
func TestBodyReaderUnderrun(t *testing.T) {
	r := NewBodyReader("101")
	if _, err := r.ReadUint(4); err == nil {
		t.Error("expected an underrun error, got nil")
	}
}

// bitsToBytes packs an ASCII '0'/'1' string (padded to a byte boundary by
// the caller) into a byte slice, MSB first.
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
