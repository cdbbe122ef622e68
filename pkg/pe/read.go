package pe

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

// span returns b[off:off+size] if the whole window lies inside b.
// The end offset is computed in 64 bits so a 32-bit offset near its maximum
// cannot wrap around.
func span[O constraints.Integer](b []byte, off O, size uint64) ([]byte, bool) {
	if off < 0 {
		return nil, false
	}
	start := uint64(off)
	end := start + size
	if end < start || end > uint64(len(b)) {
		return nil, false
	}
	return b[start:end], true
}

// readStruct decodes a little-endian T at off. ok is false if T does not fit
// inside b.
func readStruct[T any, O constraints.Integer](b []byte, off O) (v T, ok bool) {
	p, ok := span(b, off, uint64(binary.Size(v)))
	if !ok {
		return v, false
	}
	if _, err := binary.Decode(p, binary.LittleEndian, &v); err != nil {
		return v, false
	}
	return v, true
}
