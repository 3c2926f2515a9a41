// Package rtpio provides zero-copy, non-owning views over RTP and RTCP wire
// data, plus the byte-order primitives those views are built on.
//
// Every accessor is defined for any buffer length: a short buffer yields a
// zero, false, or empty value for that field rather than panicking or
// returning an error. Validation is a separate, explicit step.
package rtpio

import "encoding/binary"

// ReadU16BE reads a big-endian uint16 from b, returning 0 if b is too short.
func ReadU16BE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// ReadU32BE reads a big-endian uint32 from b, returning 0 if b is too short.
func ReadU32BE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// ReadU64BE reads a big-endian uint64 from b, returning 0 if b is too short.
func ReadU64BE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// ReadU16LE reads a little-endian uint16 from b, returning 0 if b is too short.
func ReadU16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// ReadU32LE reads a little-endian uint32 from b, returning 0 if b is too short.
func ReadU32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// ReadU64LE reads a little-endian uint64 from b, returning 0 if b is too short.
func ReadU64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// WriteU16BE writes v into dst in big-endian order. dst must be at least 2 bytes.
func WriteU16BE(dst []byte, v uint16) { binary.BigEndian.PutUint16(dst, v) }

// WriteU32BE writes v into dst in big-endian order. dst must be at least 4 bytes.
func WriteU32BE(dst []byte, v uint32) { binary.BigEndian.PutUint32(dst, v) }

// WriteU64BE writes v into dst in big-endian order. dst must be at least 8 bytes.
func WriteU64BE(dst []byte, v uint64) { binary.BigEndian.PutUint64(dst, v) }

// WriteU16LE writes v into dst in little-endian order. dst must be at least 2 bytes.
func WriteU16LE(dst []byte, v uint16) { binary.LittleEndian.PutUint16(dst, v) }

// WriteU32LE writes v into dst in little-endian order. dst must be at least 4 bytes.
func WriteU32LE(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) }

// WriteU64LE writes v into dst in little-endian order. dst must be at least 8 bytes.
func WriteU64LE(dst []byte, v uint64) { binary.LittleEndian.PutUint64(dst, v) }

// ByteOrder selects the endianness used to interpret PCM samples on the wire.
type ByteOrder int

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

// VectorStream is an owned, growable byte sequence with typed push/read
// helpers that apply endian conversion per element. It plays the role the
// source's vector_stream<T> plays for building up wire buffers by hand
// (RTCP compound packets, test fixtures) without repeated binary.BigEndian
// boilerplate at each call site.
type VectorStream struct {
	buf []byte
	pos int
}

// NewVectorStream wraps buf for sequential reads, or starts empty for writes
// when buf is nil.
func NewVectorStream(buf []byte) *VectorStream {
	return &VectorStream{buf: buf}
}

// Bytes returns the accumulated buffer.
func (v *VectorStream) Bytes() []byte { return v.buf }

// Len returns the number of unread bytes remaining.
func (v *VectorStream) Len() int { return len(v.buf) - v.pos }

func (v *VectorStream) PushU16BE(x uint16) {
	var tmp [2]byte
	WriteU16BE(tmp[:], x)
	v.buf = append(v.buf, tmp[:]...)
}

func (v *VectorStream) PushU32BE(x uint32) {
	var tmp [4]byte
	WriteU32BE(tmp[:], x)
	v.buf = append(v.buf, tmp[:]...)
}

func (v *VectorStream) PushU64BE(x uint64) {
	var tmp [8]byte
	WriteU64BE(tmp[:], x)
	v.buf = append(v.buf, tmp[:]...)
}

func (v *VectorStream) PushBytes(b []byte) {
	v.buf = append(v.buf, b...)
}

// ReadU16BE reads the next two bytes, advancing the read position. It
// returns 0 once the stream is exhausted, matching the defined-on-short-read
// contract used throughout this package.
func (v *VectorStream) ReadU16BE() uint16 {
	x := ReadU16BE(v.buf[v.pos:])
	if v.Len() >= 2 {
		v.pos += 2
	}
	return x
}

func (v *VectorStream) ReadU32BE() uint32 {
	x := ReadU32BE(v.buf[v.pos:])
	if v.Len() >= 4 {
		v.pos += 4
	}
	return x
}

func (v *VectorStream) ReadU64BE() uint64 {
	x := ReadU64BE(v.buf[v.pos:])
	if v.Len() >= 8 {
		v.pos += 8
	}
	return x
}
