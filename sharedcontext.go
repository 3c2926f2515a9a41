package ravennakit

import (
	"github.com/owllab/ravennakit/audioformat"
	"github.com/owllab/ravennakit/pcmring"
	"github.com/owllab/ravennakit/wrapping"
)

// bufferSizeMs is the reconstruction ring and staging buffer target size,
// matching the source's k_buffer_size_ms constant: generous enough to
// absorb jitter and reordering at any supported packet time.
const bufferSizeMs = 200

// minBufferFrames is the floor applied to the ring's frame capacity so that
// even a very low sample rate still gets a useable window.
const minBufferFrames = 1024

// receiveTimeoutMs is how long a stream may go silent before its state
// transitions to StateInactive.
const receiveTimeoutMs = 2000

// SharedContext is the immutable snapshot handed from the control thread to
// the real-time audio thread via a triple buffer. Nothing about it may be
// mutated after publication except the ring and read buffer contents,
// NextReadTS and the first-packet flag, which only the audio thread ever
// touches once it holds the snapshot.
type SharedContext struct {
	Format         audioformat.Format
	DelayFrames    uint32
	StreamContexts []*StreamContext

	Ring       *pcmring.Ring
	ReadBuffer []byte

	NextReadTS      wrapping.U32
	haveFirstPacket bool
}

// buildSharedContext constructs a new snapshot sized for params and the
// current stream contexts, matching update_shared_context's sizing formula.
func buildSharedContext(format audioformat.Format, delayFrames uint32, streamContexts []*StreamContext) (*SharedContext, uint16, error) {
	if len(streamContexts) == 0 {
		return nil, 0, errNoStreams
	}
	if !format.IsValid() {
		return nil, 0, errInvalidFormat
	}

	packetTimeFrames := streamContexts[0].Info.PacketTimeFrames
	for _, sc := range streamContexts {
		if sc.Info.PacketTimeFrames < packetTimeFrames {
			packetTimeFrames = sc.Info.PacketTimeFrames
		}
	}
	if packetTimeFrames == 0 {
		return nil, 0, errInvalidPacketTime
	}

	bytesPerFrame := format.BytesPerFrame()

	bufferSizeFrames := int(format.SampleRate) * bufferSizeMs / 1000
	if bufferSizeFrames < minBufferFrames {
		bufferSizeFrames = minBufferFrames
	}

	sc := &SharedContext{
		Format:         format,
		DelayFrames:    delayFrames,
		StreamContexts: streamContexts,
		Ring:           pcmring.New(bufferSizeFrames, bytesPerFrame),
		ReadBuffer:     make([]byte, bufferSizeFrames*bytesPerFrame),
	}

	bufferSizePackets := bufferSizeFrames / int(packetTimeFrames)
	if bufferSizePackets < 1 {
		bufferSizePackets = 1
	}
	for _, streamCtx := range streamContexts {
		streamCtx.resize(bufferSizePackets)
	}

	return sc, packetTimeFrames, nil
}
