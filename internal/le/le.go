// Package le centralizes the little-endian scalar encodings used on page
// bytes. Page slots are not naturally aligned for their payload types (a
// STRING attribute can push the following INT off an 4-byte boundary), so
// every scalar is read and written byte-wise rather than through a typed
// pointer cast, and always in little-endian order regardless of host
// architecture.
package le

import "math"

// PutInt32 stores v as 4 little-endian bytes at b[0:4].
func PutInt32(b []byte, v int32) {
	u := uint32(v)
	b[0] = byte(u)
	b[1] = byte(u >> 8)
	b[2] = byte(u >> 16)
	b[3] = byte(u >> 24)
}

// Int32 reads a 4-byte little-endian signed integer from b[0:4].
func Int32(b []byte) int32 {
	u := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return int32(u)
}

// PutFloat32 stores v's IEEE-754 bit pattern as 4 little-endian bytes.
func PutFloat32(b []byte, v float32) {
	PutInt32(b, int32(math.Float32bits(v)))
}

// Float32 reads a 4-byte little-endian IEEE-754 float.
func Float32(b []byte) float32 {
	return math.Float32frombits(uint32(Int32(b)))
}

// PutBool stores v canonically as 0x00 or 0x01 in b[0].
func PutBool(b []byte, v bool) {
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

// Bool reads b[0] with 0/non-zero semantics.
func Bool(b []byte) bool {
	return b[0] != 0
}

// PutUint16 stores v as 2 little-endian bytes at b[0:2].
func PutUint16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// Uint16 reads a 2-byte little-endian unsigned integer from b[0:2].
func Uint16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// PutUint64 stores v as 8 little-endian bytes at b[0:8].
func PutUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// Uint64 reads an 8-byte little-endian unsigned integer from b[0:8].
func Uint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
