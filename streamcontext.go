package ravennakit

import (
	"github.com/google/uuid"

	"github.com/owllab/ravennakit/fifo"
	"github.com/owllab/ravennakit/platform"
	"github.com/owllab/ravennakit/streamstats"
)

// StreamContext holds the mutable per-stream state owned by the Receiver:
// current lifecycle state, arrival statistics, and the two lock-free queues
// that carry data and too-late notifications across the network/audio
// thread boundary.
type StreamContext struct {
	Info StreamInfo

	// ID is a per-stream identifier minted once at construction, for log
	// correlation. SetParameters builds fresh contexts for the new
	// configuration, so IDs do not carry over across reconfigurations.
	ID uuid.UUID

	state State

	lastPacketTimeNs int64
	haveLastPacket   bool

	stats *streamstats.PacketStats

	fifo          *fifo.Queue[IntermediatePacket]
	packetsTooOld *streamstats.TooLate
}

// StreamInfo is the immutable description of a stream a StreamContext was
// created for — the same shape as Stream, kept as a distinct name so
// StreamContext.Info doesn't read as "the input config" after the context
// has accrued its own runtime state.
type StreamInfo = Stream

// newStreamContext creates a context for stream, stamping lastPacketTimeNs
// with its creation time from clock. The first updateInterval call replaces
// that stamp with the first packet's arrival time.
func newStreamContext(stream Stream, clock platform.Clock) *StreamContext {
	return &StreamContext{
		Info:             stream,
		ID:               uuid.New(),
		state:            StateIdle,
		lastPacketTimeNs: clock.NowNanos(),
		haveLastPacket:   false,
		stats:            streamstats.New(),
	}
}

// resize (re)allocates the context's queues for a FIFO of the given packet
// capacity. Called from buildSharedContext whenever a snapshot is built.
func (sc *StreamContext) resize(capacityPackets int) {
	if sc.fifo == nil {
		sc.fifo = fifo.NewQueue[IntermediatePacket](fifo.NewSpsc(capacityPackets), capacityPackets)
	} else {
		sc.fifo.Resize(capacityPackets)
	}
	if sc.packetsTooOld == nil {
		sc.packetsTooOld = streamstats.NewTooLate(capacityPackets)
	} else {
		sc.packetsTooOld.Resize(capacityPackets)
	}
}

// updateInterval folds recvTimeNs into the context's inter-arrival tracker,
// returning the interval in milliseconds since the previous packet. The
// first call after construction has nothing to compare against and reports
// ok=false, seeding lastPacketTimeNs instead.
func (sc *StreamContext) updateInterval(recvTimeNs int64) (ms float64, ok bool) {
	if !sc.haveLastPacket {
		sc.lastPacketTimeNs = recvTimeNs
		sc.haveLastPacket = true
		return 0, false
	}
	delta := recvTimeNs - sc.lastPacketTimeNs
	sc.lastPacketTimeNs = recvTimeNs
	if delta <= 0 {
		return 0, false
	}
	return float64(delta) / 1e6, true
}
