// Package pcmring implements the timestamp-indexed PCM reconstruction
// ring: a fixed-capacity byte buffer addressed directly by RTP media-clock
// timestamp (modulo capacity) rather than by a push/pop cursor, so that
// writes from redundant streams carrying the same timestamp converge on the
// same bytes regardless of arrival order.
package pcmring

import "github.com/owllab/ravennakit/wrapping"

// Ring is a fixed-capacity, frame-addressable circular buffer. Every
// position not written since the last clear_until reads back as
// groundValue, matching a reader that never blocks on missing data.
type Ring struct {
	buf            []byte
	capacityFrames int
	bytesPerFrame  int
	nextTS         wrapping.U32
	ground         byte
}

// New returns a Ring with the given frame capacity and frame size in bytes.
func New(capacityFrames, bytesPerFrame int) *Ring {
	r := &Ring{}
	r.Resize(capacityFrames, bytesPerFrame)
	return r
}

// Resize discards all data and ground-fills a new buffer of the given
// capacity and frame size.
func (r *Ring) Resize(capacityFrames, bytesPerFrame int) {
	r.capacityFrames = capacityFrames
	r.bytesPerFrame = bytesPerFrame
	r.buf = make([]byte, capacityFrames*bytesPerFrame)
	r.nextTS = 0
	fillGround(r.buf, r.ground)
}

// SetGroundValue changes the byte written into positions cleared from now
// on. It does not retroactively repaint already-cleared positions.
func (r *Ring) SetGroundValue(v byte) { r.ground = v }

// GetNextTS returns the exclusive upper bound of the interval the ring
// currently represents in media-clock time.
func (r *Ring) GetNextTS() wrapping.U32 { return r.nextTS }

// SetNextTS seeds the ring's write/clear watermark without writing any
// data, establishing the baseline for the first packet of a stream so that
// the following clear_until call does not silence the whole buffer.
func (r *Ring) SetNextTS(ts wrapping.U32) { r.nextTS = ts }

func (r *Ring) frameOffset(ts wrapping.U32) int {
	idx := int(uint32(ts)) % r.capacityFrames
	return idx * r.bytesPerFrame
}

// Write copies data, a whole number of frames, into the ring starting at
// ts, wrapping around the backing storage as needed. It reports false
// without copying anything if data is not frame-aligned or spans more
// frames than the ring can hold without a frame overwriting itself.
func (r *Ring) Write(ts wrapping.U32, data []byte) bool {
	if r.bytesPerFrame == 0 || len(data)%r.bytesPerFrame != 0 {
		return false
	}
	numFrames := len(data) / r.bytesPerFrame
	if numFrames > r.capacityFrames {
		return false
	}

	off := r.frameOffset(ts)
	n1 := len(r.buf) - off
	if n1 > len(data) {
		n1 = len(data)
	}
	copy(r.buf[off:off+n1], data[:n1])
	if n1 < len(data) {
		copy(r.buf[:len(data)-n1], data[n1:])
	}

	r.nextTS = ts.Add(uint32(numFrames))
	return true
}

// Read copies lenBytes, a whole number of frames, out of the ring starting
// at ts into out. If clear is true, the positions read are immediately
// overwritten with the ground value so they are not read twice. Read never
// fails: positions never written, or already cleared, simply come back as
// ground value.
func (r *Ring) Read(ts wrapping.U32, out []byte, lenBytes int, clear bool) bool {
	if r.bytesPerFrame == 0 || lenBytes%r.bytesPerFrame != 0 || lenBytes > len(out) {
		return false
	}
	numFrames := lenBytes / r.bytesPerFrame
	if numFrames > r.capacityFrames {
		return false
	}

	off := r.frameOffset(ts)
	n1 := len(r.buf) - off
	if n1 > lenBytes {
		n1 = lenBytes
	}
	copy(out[:n1], r.buf[off:off+n1])
	if n1 < lenBytes {
		copy(out[n1:lenBytes], r.buf[:lenBytes-n1])
	}

	if clear {
		fillGround(r.buf[off:off+n1], r.ground)
		if n1 < lenBytes {
			fillGround(r.buf[:lenBytes-n1], r.ground)
		}
	}

	return true
}

// ClearUntil ground-fills every frame from the ring's current watermark up
// to, but not including, ts, then advances the watermark by however much it
// cleared. It reports false and does nothing if ts is not strictly after
// the watermark. The amount of work is always bounded at capacityFrames
// frames regardless of how far in the future ts lies, so a caller passing
// an absolute, possibly wildly advanced timestamp can never make this loop
// unbounded.
func (r *Ring) ClearUntil(ts wrapping.U32) bool {
	delta := ts.Diff(r.nextTS)
	if delta <= 0 {
		return false
	}

	n := int(delta)
	if n > r.capacityFrames {
		n = r.capacityFrames
	}

	start := r.nextTS
	off := r.frameOffset(start)
	bytesToClear := n * r.bytesPerFrame

	n1 := len(r.buf) - off
	if n1 > bytesToClear {
		n1 = bytesToClear
	}
	fillGround(r.buf[off:off+n1], r.ground)
	if n1 < bytesToClear {
		fillGround(r.buf[:bytesToClear-n1], r.ground)
	}

	r.nextTS = start.Add(uint32(n))
	return true
}

func fillGround(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
