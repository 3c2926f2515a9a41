package pcmring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owllab/ravennakit/pcmring"
)

func TestRingReadWithWraparound(t *testing.T) {
	r := pcmring.New(10, 2)

	input := []byte{0x0, 0x1, 0x2, 0x3}
	require.True(t, r.Write(4, input))
	assert.EqualValues(t, 6, r.GetNextTS())

	out := make([]byte, 4)

	require.True(t, r.Read(0, out, 4, false))
	assert.Equal(t, []byte{0, 0, 0, 0}, out)

	require.True(t, r.Read(2, out, 4, false))
	assert.Equal(t, []byte{0, 0, 0, 0}, out)

	require.True(t, r.Read(4, out, 4, false))
	assert.Equal(t, input, out)

	require.True(t, r.Read(6, out, 4, false))
	assert.Equal(t, []byte{0, 0, 0, 0}, out)

	require.True(t, r.Read(8, out, 4, false))
	assert.Equal(t, []byte{0, 0, 0, 0}, out)

	// Wraparound happens here: ts 10 maps to the same slot as ts 0.
	require.True(t, r.Read(10, out, 4, false))
	assert.Equal(t, []byte{0, 0, 0, 0}, out)

	require.True(t, r.Read(12, out, 4, false))
	assert.Equal(t, []byte{0, 0, 0, 0}, out)

	// ts 14 maps to the same slot as ts 4.
	require.True(t, r.Read(14, out, 4, false))
	assert.Equal(t, input, out)
}

func TestRingFillBufferInOneGo(t *testing.T) {
	r := pcmring.New(4, 2)

	input := []byte{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8}
	require.True(t, r.Write(2, input))
	assert.EqualValues(t, 6, r.GetNextTS())

	out := make([]byte, 4)
	require.True(t, r.Read(2, out, 4, false))
	assert.Equal(t, []byte{0x1, 0x2, 0x3, 0x4}, out)

	require.True(t, r.Read(0, out, 4, false))
	assert.Equal(t, []byte{0x5, 0x6, 0x7, 0x8}, out)
}

func TestRingClearUntil(t *testing.T) {
	r := pcmring.New(4, 2)

	input := []byte{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8}
	require.True(t, r.Write(2, input))
	assert.EqualValues(t, 6, r.GetNextTS())

	out := make([]byte, 8)
	require.True(t, r.Read(2, out, 8, false))
	assert.Equal(t, input, out)

	assert.False(t, r.ClearUntil(6))
	assert.True(t, r.ClearUntil(8))

	require.True(t, r.Read(2, out, 8, false))
	assert.Equal(t, []byte{0, 0, 0, 0, 0x5, 0x6, 0x7, 0x8}, out)

	require.True(t, r.Read(4, out, 8, false))
	assert.Equal(t, []byte{0x5, 0x6, 0x7, 0x8, 0, 0, 0, 0}, out)

	r.SetGroundValue(0xFF)
	assert.True(t, r.ClearUntil(10))

	require.True(t, r.Read(4, out, 8, false))
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}, out)
}

func TestRingClearUntilBoundsWorkAtCapacity(t *testing.T) {
	r := pcmring.New(480, 2)
	assert.True(t, r.ClearUntil(1000))

	r2 := pcmring.New(480, 2)
	assert.True(t, r2.ClearUntil(253366016))
}

func TestRingReadWithClearDoesNotRereadSameData(t *testing.T) {
	r := pcmring.New(4, 2)

	input := []byte{0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8}
	require.True(t, r.Write(2, input))

	out := make([]byte, 8)
	require.True(t, r.Read(2, out, 8, true))
	assert.Equal(t, input, out)

	require.True(t, r.Read(2, out, 8, true))
	assert.Equal(t, make([]byte, 8), out)
}

func TestRingWriteRejectsMisalignedOrOversizedData(t *testing.T) {
	r := pcmring.New(4, 2)
	assert.False(t, r.Write(0, []byte{0x1}))
	assert.False(t, r.Write(0, make([]byte, 10)))
}

func TestRingRedundantStreamsConvergeOnSameWrite(t *testing.T) {
	r := pcmring.New(16, 2)

	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	require.True(t, r.Write(200, payload))
	require.True(t, r.Write(200, payload))

	out := make([]byte, 4)
	require.True(t, r.Read(200, out, 4, false))
	assert.Equal(t, payload, out)
}
