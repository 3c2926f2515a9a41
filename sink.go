package ravennakit

import (
	"net/netip"
	"time"

	"github.com/owllab/ravennakit/rtpio"
	"github.com/owllab/ravennakit/wrapping"
)

// maxPayloadSize is the uint16 size cap on an RTP payload, matching the
// source. Payloads longer than maxPacketPayload, the storage of an
// IntermediatePacket, are dropped as well.
const maxPayloadSize = 65535

// streamSink adapts one StreamContext into an mcast.PacketSink: the narrow
// "accept a datagram" capability the reactor calls into, per the design
// note that the reader never calls back into the reactor on the hot path.
type streamSink struct {
	receiver  *Receiver
	streamCtx *StreamContext
}

func (s *streamSink) OnPacket(payload []byte, src, dst netip.AddrPort, recvTime time.Time) {
	s.receiver.onRTPPacket(s.streamCtx, payload, src.Addr(), dst.Addr(), recvTime)
}

// pendingCallback defers a user callback invocation until after the
// receiver's lock is released, so the network thread never holds a lock
// while calling into user code.
type pendingCallback func()

func (r *Receiver) onRTPPacket(sc *StreamContext, datagram []byte, srcAddr, dstAddr netip.Addr, recvTime time.Time) {
	var pending []pendingCallback

	r.mu.Lock()

	// Record that the network goroutine has observed the current snapshot,
	// so Reclaim can free generations both readers have moved past.
	r.networkReader.LockRealtime()

	if !sc.Info.Filter.IsValidSource(dstAddr, srcAddr) {
		r.mu.Unlock()
		return
	}

	header := rtpio.NewRTPHeaderView(datagram)
	if header.Validate() != rtpio.Ok {
		r.mu.Unlock()
		return
	}

	rtpPayload := header.PayloadData()
	if len(rtpPayload) == 0 || len(rtpPayload) > maxPayloadSize || len(rtpPayload) > maxPacketPayload {
		r.mu.Unlock()
		return
	}

	seq := wrapping.U16(header.SequenceNumber())
	ts := wrapping.U32(header.Timestamp())

	if !r.haveFirstTS {
		r.firstTS = ts
		r.haveFirstTS = true
	}

	if intervalMs, ok := sc.updateInterval(r.clock.NowNanos()); ok {
		sc.stats.Interval.Update(intervalMs)
	}

	if r.consumerActive.Load() {
		var packet IntermediatePacket
		packet.Timestamp = ts
		packet.Seq = seq
		packet.DataLen = uint16(len(rtpPayload))
		packet.PacketTimeFrames = sc.Info.PacketTimeFrames
		copy(packet.Data[:], rtpPayload)

		if sc.fifo != nil && sc.fifo.Push(packet) {
			r.setStatePending(sc, StateOk, &pending)
		} else {
			r.consumerActive.Store(false)
			r.setStatePending(sc, StateOkNoConsumer, &pending)
		}
	} else {
		r.setStatePending(sc, StateOkNoConsumer, &pending)
	}

	if sc.packetsTooOld != nil {
		for {
			_, ok := sc.packetsTooOld.Pop()
			if !ok {
				break
			}
			sc.stats.MarkTooLate()
		}
	}

	sc.stats.Update(seq, nil)

	if diff, advanced := r.seq.Update(seq); advanced {
		onDataReceived := r.onDataReceived
		onDataReady := r.onDataReady
		delayFrames := r.delayFrames
		packetTimeFrames := sc.Info.PacketTimeFrames
		firstTS := r.firstTS

		if onDataReceived != nil {
			capturedTS := ts
			pending = append(pending, func() { onDataReceived(capturedTS) })
		}

		readyTS := ts.Sub(delayFrames)
		if !readyTS.Less(firstTS) {
			gap := uint16(diff)
			for i := uint16(0); i < gap; i++ {
				missed := readyTS.Sub(uint32(gap-1-i) * uint32(packetTimeFrames))
				if onDataReady != nil {
					capturedMissed := missed
					pending = append(pending, func() { onDataReady(capturedMissed) })
				}
			}
		}
	}

	r.mu.Unlock()

	for _, cb := range pending {
		cb()
	}
}

// setStatePending behaves like setState but defers the user callback
// invocation by appending to pending instead of calling it inline, since
// the caller still holds r.mu.
func (r *Receiver) setStatePending(sc *StreamContext, newState State, pending *[]pendingCallback) {
	if sc.state == newState {
		return
	}
	sc.state = newState
	if r.onStateChanged != nil {
		stream := sc.Info
		callback := r.onStateChanged
		*pending = append(*pending, func() { callback(stream, newState) })
	}
}
