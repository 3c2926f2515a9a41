package ravennakit

import (
	"net/netip"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owllab/ravennakit/audioformat"
	"github.com/owllab/ravennakit/mcast"
	"github.com/owllab/ravennakit/platform"
	"github.com/owllab/ravennakit/wrapping"
)

// fakeClock is a manually advanced platform.Clock for tests that care about
// exact elapsed time rather than wall-clock time.
type fakeClock struct{ nanos int64 }

func (c *fakeClock) NowNanos() int64 { return c.nanos }

func pcm24beFormat() audioformat.Format {
	return audioformat.Format{
		Encoding:    audioformat.PCMS24,
		ByteOrder:   audioformat.BigEndian,
		Ordering:    audioformat.Interleaved,
		SampleRate:  48000,
		NumChannels: 2,
	}
}

func mustMulticastAddr(t *testing.T, s string) netip.Addr {
	t.Helper()
	addr, err := netip.ParseAddr(s)
	require.NoError(t, err)
	return addr
}

func newTestReceiver(t *testing.T) *Receiver {
	t.Helper()
	mux := mcast.NewMultiplexer(zerolog.Nop())
	return NewReceiver(mux, platform.Default(), zerolog.Nop())
}

// rtpPacket builds a minimal 12-byte RTP header (version 2, no padding,
// extension or CSRCs) followed by payload.
func rtpPacket(seq uint16, ts uint32, ssrc uint32, payload []byte) []byte {
	buf := make([]byte, 12+len(payload))
	buf[0] = 0x80
	buf[1] = 97 // arbitrary dynamic payload type
	buf[2] = byte(seq >> 8)
	buf[3] = byte(seq)
	buf[4] = byte(ts >> 24)
	buf[5] = byte(ts >> 16)
	buf[6] = byte(ts >> 8)
	buf[7] = byte(ts)
	buf[8] = byte(ssrc >> 24)
	buf[9] = byte(ssrc >> 16)
	buf[10] = byte(ssrc >> 8)
	buf[11] = byte(ssrc)
	copy(buf[12:], payload)
	return buf
}

// framePayload returns a 2-channel, 24-bit big-endian payload of numFrames
// frames where every byte is fill, so tests can assert on exact reconstructed
// content without caring about real audio values.
func framePayload(numFrames int, fill byte) []byte {
	b := make([]byte, numFrames*6)
	for i := range b {
		b[i] = fill
	}
	return b
}

func deliverPacket(r *Receiver, sc *StreamContext, datagram []byte) {
	dst := netip.MustParseAddr("239.1.1.1")
	src := netip.MustParseAddr("10.0.0.1")
	r.onRTPPacket(sc, datagram, src, dst, time.Unix(0, 0))
}

func TestHappyPathReconstructsOrderedPayload(t *testing.T) {
	r := newTestReceiver(t)
	r.SetEnabled(true)

	stream := Stream{
		Session:          Session{Address: mustMulticastAddr(t, "239.1.1.1"), RtpPort: 5004},
		Rank:             RankPrimary,
		PacketTimeFrames: 48,
	}
	require.NoError(t, r.SetParameters(Parameters{AudioFormat: pcm24beFormat(), Streams: []Stream{stream}}))

	sc := r.streamContexts[0]
	for i := 0; i < 5; i++ {
		seq := uint16(100 + i)
		ts := uint32(1000 + i*48)
		payload := framePayload(48, byte(seq))
		deliverPacket(r, sc, rtpPacket(seq, ts, 1, payload))
	}

	out := make([]byte, 2*48*6)
	startTS := wrapping.U32(1000)
	readAt, ok := r.ReadDataRealtime(out, &startTS)
	require.True(t, ok)
	assert.EqualValues(t, 1000, readAt)

	assert.Equal(t, framePayload(48, 100), out[:288])
	assert.Equal(t, framePayload(48, 101), out[288:576])
}

func TestLossLeavesGroundFilledGapAndCountsLoss(t *testing.T) {
	r := newTestReceiver(t)
	r.SetEnabled(true)

	stream := Stream{
		Session:          Session{Address: mustMulticastAddr(t, "239.1.1.2"), RtpPort: 5004},
		Rank:             RankPrimary,
		PacketTimeFrames: 48,
	}
	require.NoError(t, r.SetParameters(Parameters{AudioFormat: pcm24beFormat(), Streams: []Stream{stream}}))

	sc := r.streamContexts[0]
	deliverPacket(r, sc, rtpPacket(100, 1000, 1, framePayload(48, 100)))
	// seq 101 never arrives.
	deliverPacket(r, sc, rtpPacket(102, 1096, 1, framePayload(48, 102)))

	out := make([]byte, 3*48*6)
	startTS := wrapping.U32(1000)
	readAt, ok := r.ReadDataRealtime(out, &startTS)
	require.True(t, ok)
	assert.EqualValues(t, 1000, readAt)

	assert.Equal(t, framePayload(48, 100), out[:288])
	assert.Equal(t, make([]byte, 288), out[288:576], "missing frames ground-fill to zero")
	assert.Equal(t, framePayload(48, 102), out[576:864])

	stats := r.GetSessionStats(RankPrimary)
	assert.EqualValues(t, 1, stats.Lost)
}

func TestLatePacketIsReportedAndNeverWritten(t *testing.T) {
	r := newTestReceiver(t)
	r.SetEnabled(true)

	stream := Stream{
		Session:          Session{Address: mustMulticastAddr(t, "239.1.1.3"), RtpPort: 5004},
		Rank:             RankPrimary,
		PacketTimeFrames: 48,
	}
	require.NoError(t, r.SetParameters(Parameters{AudioFormat: pcm24beFormat(), Streams: []Stream{stream}}))

	sc := r.streamContexts[0]

	// Establish a baseline, then force next_read_ts forward to 2000 via an
	// explicit read timestamp.
	deliverPacket(r, sc, rtpPacket(200, 1904, 1, framePayload(48, 200)))
	warmup := make([]byte, 48*6)
	at2000 := wrapping.U32(2000)
	_, ok := r.ReadDataRealtime(warmup, &at2000)
	require.True(t, ok)

	// A packet whose entire window (1500..1548) already lies behind
	// next_read_ts (2000) arrives late.
	deliverPacket(r, sc, rtpPacket(201, 1500, 1, framePayload(48, 201)))

	out := make([]byte, 48*6)
	_, ok = r.ReadDataRealtime(out, nil)
	require.True(t, ok)
	assert.Equal(t, make([]byte, 48*6), out, "late packet must never land in the ring")

	// The too-late notification is drained opportunistically on the next
	// packet arrival for that stream.
	deliverPacket(r, sc, rtpPacket(202, 3000, 1, framePayload(48, 202)))

	stats := r.GetSessionStats(RankPrimary)
	assert.EqualValues(t, 1, stats.TooLate)
}

func TestRedundantStreamsConvergeOnIdenticalPayload(t *testing.T) {
	r := newTestReceiver(t)
	r.SetEnabled(true)

	primary := Stream{
		Session:          Session{Address: mustMulticastAddr(t, "239.1.1.4"), RtpPort: 5004},
		Rank:             RankPrimary,
		PacketTimeFrames: 48,
	}
	secondary := Stream{
		Session:          Session{Address: mustMulticastAddr(t, "239.1.1.5"), RtpPort: 5004},
		Rank:             RankSecondary,
		PacketTimeFrames: 48,
	}
	require.NoError(t, r.SetParameters(Parameters{
		AudioFormat: pcm24beFormat(),
		Streams:     []Stream{primary, secondary},
	}))

	scPrimary := r.streamContexts[0]
	scSecondary := r.streamContexts[1]

	payload := framePayload(48, 77)
	// Secondary leg arrives first, primary second: the ring must converge
	// on the identical content regardless of arrival order.
	deliverPacket(r, scSecondary, rtpPacket(50, 4000, 2, payload))
	deliverPacket(r, scPrimary, rtpPacket(50, 4000, 1, payload))

	out := make([]byte, 48*6)
	at4000 := wrapping.U32(4000)
	_, ok := r.ReadDataRealtime(out, &at4000)
	require.True(t, ok)
	assert.Equal(t, payload, out)
}

func TestSetParametersSwapPublishesSuccessiveSnapshotsWithoutTearing(t *testing.T) {
	r := newTestReceiver(t)
	r.SetEnabled(true)

	streamA := Stream{
		Session:          Session{Address: mustMulticastAddr(t, "239.1.1.6"), RtpPort: 5004},
		Rank:             RankPrimary,
		PacketTimeFrames: 48,
	}
	require.NoError(t, r.SetParameters(Parameters{AudioFormat: pcm24beFormat(), Streams: []Stream{streamA}}))

	snapshotA, ok := r.audioReader.LockRealtime()
	require.True(t, ok)
	require.NotNil(t, snapshotA)
	assert.EqualValues(t, 48, snapshotA.StreamContexts[0].Info.PacketTimeFrames)

	streamB := Stream{
		Session:          Session{Address: mustMulticastAddr(t, "239.1.1.7"), RtpPort: 5004},
		Rank:             RankPrimary,
		PacketTimeFrames: 96,
	}
	require.NoError(t, r.SetParameters(Parameters{AudioFormat: pcm24beFormat(), Streams: []Stream{streamB}}))

	// The audio reader already observed generation A above, but the network
	// reader never has, so the old generation is still pending: Reclaim only
	// frees a generation once every registered reader has moved past it.
	assert.Equal(t, 1, r.shared.Pending())

	// A fresh read always returns whatever is current — a complete,
	// self-consistent snapshot of the new configuration, never a mix of old
	// and new fields.
	snapshotB, ok := r.audioReader.LockRealtime()
	require.True(t, ok)
	require.NotNil(t, snapshotB)
	assert.NotSame(t, snapshotA, snapshotB)
	assert.EqualValues(t, 96, snapshotB.StreamContexts[0].Info.PacketTimeFrames)

	// Once the network reader also catches up, the next maintenance tick
	// reclaims the retired generation.
	_, ok = r.networkReader.LockRealtime()
	require.True(t, ok)
	r.doMaintenance()
	assert.Equal(t, 0, r.shared.Pending())
}

func TestSetParametersRejectsNoOpChange(t *testing.T) {
	r := newTestReceiver(t)
	r.SetEnabled(true)

	stream := Stream{
		Session:          Session{Address: mustMulticastAddr(t, "239.1.1.8"), RtpPort: 5004},
		Rank:             RankPrimary,
		PacketTimeFrames: 48,
	}
	params := Parameters{AudioFormat: pcm24beFormat(), Streams: []Stream{stream}}

	require.NoError(t, r.SetParameters(params))
	assert.ErrorIs(t, r.SetParameters(params), ErrParametersUnchanged)
}

func TestStreamGoesInactiveAfterSilence(t *testing.T) {
	r := newTestReceiver(t)
	clock := &fakeClock{}
	r.clock = clock
	r.SetEnabled(true)

	stream := Stream{
		Session:          Session{Address: mustMulticastAddr(t, "239.1.1.9"), RtpPort: 5004},
		Rank:             RankPrimary,
		PacketTimeFrames: 48,
	}
	require.NoError(t, r.SetParameters(Parameters{AudioFormat: pcm24beFormat(), Streams: []Stream{stream}}))

	sc := r.streamContexts[0]
	deliverPacket(r, sc, rtpPacket(1, 1000, 1, framePayload(48, 1)))
	assert.Equal(t, StateOk, sc.state)

	clock.nanos += int64(receiveTimeoutMs) * int64(time.Millisecond)
	r.doMaintenance()
	assert.Equal(t, StateInactive, sc.state)
}

func TestStreamContextsGetDistinctStableIDs(t *testing.T) {
	r := newTestReceiver(t)
	r.SetEnabled(true)

	primary := Stream{
		Session:          Session{Address: mustMulticastAddr(t, "239.1.1.11"), RtpPort: 5004},
		Rank:             RankPrimary,
		PacketTimeFrames: 48,
	}
	secondary := Stream{
		Session:          Session{Address: mustMulticastAddr(t, "239.1.1.12"), RtpPort: 5004},
		Rank:             RankSecondary,
		PacketTimeFrames: 48,
	}
	require.NoError(t, r.SetParameters(Parameters{
		AudioFormat: pcm24beFormat(),
		Streams:     []Stream{primary, secondary},
	}))

	id0, id1 := r.streamContexts[0].ID, r.streamContexts[1].ID
	assert.NotEqual(t, uuid.Nil, id0)
	assert.NotEqual(t, uuid.Nil, id1)
	assert.NotEqual(t, id0, id1)

	// The ID is stable for the lifetime of a context: reading it again gives
	// the same value. It does not survive reconfiguration, since
	// SetParameters builds fresh contexts with fresh IDs.
	sc := r.streamContexts[0]
	assert.Equal(t, id0, sc.ID)
}

func TestFilterExcludesNonMatchingSource(t *testing.T) {
	r := newTestReceiver(t)
	r.SetEnabled(true)

	stream := Stream{
		Session: Session{Address: mustMulticastAddr(t, "239.1.1.10"), RtpPort: 5004},
		Filter: Filter{
			Source: netip.MustParseAddr("10.0.0.99"),
			Mode:   FilterInclude,
		},
		Rank:             RankPrimary,
		PacketTimeFrames: 48,
	}
	require.NoError(t, r.SetParameters(Parameters{AudioFormat: pcm24beFormat(), Streams: []Stream{stream}}))

	sc := r.streamContexts[0]
	deliverPacket(r, sc, rtpPacket(1, 1000, 1, framePayload(48, 1)))

	assert.Equal(t, StateIdle, sc.state, "packet from a non-matching source must be dropped before any state update")
}
