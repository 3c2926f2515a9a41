package ravennakit

import "github.com/owllab/ravennakit/wrapping"

// ReadDataRealtime drains every stream's packet FIFO into the reconstruction
// ring, then copies len(out) bytes starting at atTimestamp (or the running
// read cursor, if atTimestamp is nil) into out. It returns the timestamp
// actually read and true, or false if no SharedContext has been published
// yet or out is larger than the pre-sized staging buffer.
//
// This is the sole entry point real-time audio callers use. It never
// allocates, blocks, or takes a mutex: synchronization with the network
// thread is exclusively via the triple-buffered SharedContext, the per-
// stream SPSC FIFOs, and the consumerActive atomic.
func (r *Receiver) ReadDataRealtime(out []byte, atTimestamp *wrapping.U32) (wrapping.U32, bool) {
	snapshot, ok := r.audioReader.LockRealtime()
	if !ok || snapshot == nil {
		return 0, false
	}

	r.doRealtimeMaintenance(snapshot)

	if len(out) > len(snapshot.ReadBuffer) {
		return 0, false
	}
	bytesPerFrame := snapshot.Format.BytesPerFrame()
	if bytesPerFrame == 0 || len(out)%bytesPerFrame != 0 {
		return 0, false
	}

	if atTimestamp != nil {
		snapshot.NextReadTS = *atTimestamp
	}

	readAt := snapshot.NextReadTS
	if !snapshot.Ring.Read(readAt, out, len(out), true) {
		return 0, false
	}

	numFrames := uint32(len(out) / bytesPerFrame)
	snapshot.NextReadTS = snapshot.NextReadTS.Add(numFrames)

	return readAt, true
}

// ReadAudioDataRealtime is the planar-float32 convenience wrapper around
// ReadDataRealtime: it reads wire-format bytes into the snapshot's staging
// buffer, then converts them into dst, one []float32 slice per channel. It
// only supports big-endian, interleaved wire formats (the only layout AES67
// prescribes), rejecting anything else rather than guessing.
func (r *Receiver) ReadAudioDataRealtime(dst [][]float32, numFrames int, atTimestamp *wrapping.U32) (wrapping.U32, bool) {
	snapshot, ok := r.audioReader.LockRealtime()
	if !ok || snapshot == nil {
		return 0, false
	}
	format := snapshot.Format

	if len(dst) != int(format.NumChannels) {
		return 0, false
	}

	bytesPerFrame := format.BytesPerFrame()
	needed := numFrames * bytesPerFrame
	if needed > len(snapshot.ReadBuffer) {
		return 0, false
	}
	staging := snapshot.ReadBuffer[:needed]

	readAt, ok := r.ReadDataRealtime(staging, atTimestamp)
	if !ok {
		return 0, false
	}

	if err := convertStagingToPlanar(staging, format, dst, numFrames); err != nil {
		return 0, false
	}

	return readAt, true
}

// doRealtimeMaintenance drains every stream's packet FIFO into the
// reconstruction ring. On the first packet observed for the snapshot, it
// seeds the ring and read cursor from that packet's timestamp. Packets that
// arrive after their playout window has already passed are reported to the
// too-late FIFO instead of (or in addition to, if only partially late) being
// written.
func (r *Receiver) doRealtimeMaintenance(snapshot *SharedContext) {
	clearFIFOs := !r.consumerActive.Swap(true)

	for _, sc := range snapshot.StreamContexts {
		if clearFIFOs {
			if sc.fifo != nil {
				sc.fifo.PopAll()
			}
			continue
		}

		for {
			packet, ok := sc.fifo.Pop()
			if !ok {
				break
			}

			if !snapshot.haveFirstPacket {
				snapshot.haveFirstPacket = true
				snapshot.Ring.SetNextTS(packet.Timestamp)
				snapshot.NextReadTS = packet.Timestamp.Sub(snapshot.DelayFrames)
			}

			packetEnd := packet.Timestamp.Add(uint32(packet.PacketTimeFrames))
			if packetEnd.LessEqual(snapshot.NextReadTS) {
				sc.packetsTooOld.Push(uint16(packet.Seq))
				continue
			}
			if packet.Timestamp.Less(snapshot.NextReadTS) {
				sc.packetsTooOld.Push(uint16(packet.Seq))
				// Falls through: the packet still carries frames beyond
				// NextReadTS that are not yet stale.
			}

			snapshot.Ring.ClearUntil(packet.Timestamp)
			snapshot.Ring.Write(packet.Timestamp, packet.Payload())
		}
	}
}
