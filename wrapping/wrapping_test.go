package wrapping

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestU16DiffShortestPath(t *testing.T) {
	require.Equal(t, int32(5), U16(105).Diff(U16(100)))
	require.Equal(t, int32(-5), U16(100).Diff(U16(105)))

	// wraps around 65536
	require.Equal(t, int32(1), U16(0).Diff(U16(65535)))
	require.Equal(t, int32(-1), U16(65535).Diff(U16(0)))
}

func TestU16Ordering(t *testing.T) {
	require.True(t, U16(100).Less(U16(101)))
	require.False(t, U16(101).Less(U16(100)))
	require.True(t, U16(65535).Less(U16(0)))
	require.True(t, U16(100).LessEqual(U16(100)))
}

func TestU32DiffAndAddSub(t *testing.T) {
	require.Equal(t, int64(48), U32(1048).Diff(U32(1000)))
	require.Equal(t, U32(1048), U32(1000).Add(48))
	require.Equal(t, U32(1000), U32(1048).Sub(48))

	var a U32 = 10
	require.Equal(t, int64(-20), a.Diff(U32(30)))
}

func TestSeqTrackerAdvanceReorderDuplicate(t *testing.T) {
	tr := NewSeqTracker()

	delta, ok := tr.Update(100)
	require.True(t, ok)
	require.Equal(t, int32(0), delta)

	delta, ok = tr.Update(105)
	require.True(t, ok)
	require.Equal(t, int32(5), delta)

	// reordering: seq 103 arrives after 105 was observed
	_, ok = tr.Update(103)
	require.False(t, ok)
	v, _ := tr.Value()
	require.Equal(t, U16(105), v) // tracker untouched

	// duplicate
	_, ok = tr.Update(105)
	require.False(t, ok)
}

func TestSeqTrackerWrapAround(t *testing.T) {
	tr := NewSeqTracker()
	tr.Update(65534)
	delta, ok := tr.Update(2)
	require.True(t, ok)
	require.Equal(t, int32(4), delta)
}

func TestSeqTrackerLargeBurstTreatedAsRestart(t *testing.T) {
	tr := NewSeqTracker()
	tr.Update(100)

	// A jump larger than 2^15 is, by construction of Diff's (-2^15, 2^15]
	// range, indistinguishable from a large negative delta; it reports as
	// not-advanced so the caller can decide to reinitialize the tracker.
	_, ok := tr.Update(100 + 40000)
	require.False(t, ok)

	tr.Reset()
	delta, ok := tr.Update(40100)
	require.True(t, ok)
	require.Equal(t, int32(0), delta)
}

func TestTimestampTracker(t *testing.T) {
	tr := NewTimestampTracker()
	_, ok := tr.Update(1000)
	require.True(t, ok)

	delta, ok := tr.Update(1048)
	require.True(t, ok)
	require.Equal(t, int64(48), delta)

	_, ok = tr.Update(1040)
	require.False(t, ok)
}
