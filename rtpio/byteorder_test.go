package rtpio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTripBE(t *testing.T) {
	buf := make([]byte, 8)
	WriteU16BE(buf, 0xbeef)
	require.Equal(t, uint16(0xbeef), ReadU16BE(buf))

	WriteU32BE(buf, 0xdeadbeef)
	require.Equal(t, uint32(0xdeadbeef), ReadU32BE(buf))

	WriteU64BE(buf, 0x0102030405060708)
	require.Equal(t, uint64(0x0102030405060708), ReadU64BE(buf))
}

func TestReadWriteRoundTripLE(t *testing.T) {
	buf := make([]byte, 8)
	WriteU16LE(buf, 0xbeef)
	require.Equal(t, uint16(0xbeef), ReadU16LE(buf))

	WriteU32LE(buf, 0xdeadbeef)
	require.Equal(t, uint32(0xdeadbeef), ReadU32LE(buf))

	WriteU64LE(buf, 0x0102030405060708)
	require.Equal(t, uint64(0x0102030405060708), ReadU64LE(buf))
}

func TestReadShortBufferReturnsZero(t *testing.T) {
	require.Equal(t, uint16(0), ReadU16BE(nil))
	require.Equal(t, uint32(0), ReadU32BE([]byte{1, 2}))
	require.Equal(t, uint64(0), ReadU64BE([]byte{1, 2, 3}))
}

func TestVectorStreamRoundTrip(t *testing.T) {
	vs := NewVectorStream(nil)
	vs.PushU16BE(100)
	vs.PushU32BE(200000)
	vs.PushU64BE(1 << 40)
	vs.PushBytes([]byte{1, 2, 3})

	rs := NewVectorStream(vs.Bytes())
	require.Equal(t, uint16(100), rs.ReadU16BE())
	require.Equal(t, uint32(200000), rs.ReadU32BE())
	require.Equal(t, uint64(1<<40), rs.ReadU64BE())
	require.Equal(t, 3, rs.Len())
}
