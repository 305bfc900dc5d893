/**
 * Copyright (c) 2022, Xerra Earth Observation Institute.
 * Copyright (c) 2025, Simeon Miteff.
 *
 * See LICENSE.TXT in the root directory of this source tree.
 */

// Package wire implements the little-endian integer codec and CRC-32 framing
// used by the CORTEX host/adapter protocol.
package wire

import (
	"encoding/binary"
	"hash/crc32"
	"math"
)

// PutU16 writes v to buf[0:2] little-endian.
func PutU16(buf []byte, v uint16) {
	binary.LittleEndian.PutUint16(buf, v)
}

// U16 reads a little-endian uint16 from buf[0:2].
func U16(buf []byte) uint16 {
	return binary.LittleEndian.Uint16(buf)
}

// PutU32 writes v to buf[0:4] little-endian.
func PutU32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}

// U32 reads a little-endian uint32 from buf[0:4].
func U32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// PutU64 writes v to buf[0:8] little-endian.
func PutU64(buf []byte, v uint64) {
	binary.LittleEndian.PutUint64(buf, v)
}

// U64 reads a little-endian uint64 from buf[0:8].
func U64(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}

// PutI64 writes v to buf[0:8] little-endian.
func PutI64(buf []byte, v int64) {
	binary.LittleEndian.PutUint64(buf, uint64(v))
}

// I64 reads a little-endian int64 from buf[0:8].
func I64(buf []byte) int64 {
	return int64(binary.LittleEndian.Uint64(buf))
}

// PutF32 writes v to buf[0:4] little-endian (IEEE 754 bit pattern).
func PutF32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

// F32 reads a little-endian float32 from buf[0:4].
func F32(buf []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf))
}

// CRC32 computes the IEEE 802.3 CRC-32 (poly 0xEDB88320, reflected,
// init/final XOR 0xFFFFFFFF) over data. This is bit-for-bit the same
// algorithm as hash/crc32's IEEE table, so the standard library is the
// correct and only implementation to reach for here.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
