package format

import "encoding/binary"

// Little-endian accessors. Callers bounds-check first; these slice directly.

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// PutU64 writes a uint64 value to the buffer at the specified offset in little-endian format.
func PutU64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// ReadU64 reads a uint64 value from the buffer at the specified offset in little-endian format.
func ReadU64(b []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// ReadOffset reads a uint64 field and converts it to int. Values that do not
// fit an int are returned as -1 so bounds checks reject them.
func ReadOffset(b []byte, off int) int {
	v := ReadU64(b, off)
	if v > uint64(^uint(0)>>1) {
		return -1
	}
	return int(v)
}

// PutOffset writes a non-negative int as a uint64 field.
func PutOffset(b []byte, off int, v int) {
	PutU64(b, off, uint64(v))
}
