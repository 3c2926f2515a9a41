// Package wrapping implements wrap-safe arithmetic over 16- and 32-bit
// counters: RTP sequence numbers and RTP timestamps. Subtraction is modular,
// yielding the signed shortest-path delta; comparisons are defined by the
// sign of that delta rather than by raw integer order.
package wrapping

// U16 is a wrap-safe 16-bit counter, e.g. an RTP sequence number.
type U16 uint16

// Diff returns a-b interpreted as the signed shortest-path delta in
// (-2^15, 2^15].
func (a U16) Diff(b U16) int32 {
	return int32(int16(a - b))
}

// Less reports whether a comes strictly before b in wrap-aware order.
func (a U16) Less(b U16) bool { return a.Diff(b) < 0 }

// LessEqual reports whether a comes at or before b in wrap-aware order.
func (a U16) LessEqual(b U16) bool { return a.Diff(b) <= 0 }

// U32 is a wrap-safe 32-bit counter, e.g. an RTP media-clock timestamp.
type U32 uint32

// Diff returns a-b interpreted as the signed shortest-path delta in
// (-2^31, 2^31], widened to an int64 so the full range is representable.
func (a U32) Diff(b U32) int64 {
	return int64(int32(a - b))
}

func (a U32) Less(b U32) bool { return a.Diff(b) < 0 }

func (a U32) LessEqual(b U32) bool { return a.Diff(b) <= 0 }

// Add returns a advanced by n frames/ticks, wrapping around on overflow.
func (a U32) Add(n uint32) U32 { return a + U32(n) }

// Sub returns a moved back by n frames/ticks, wrapping around on underflow.
func (a U32) Sub(n uint32) U32 { return a - U32(n) }

// Diff32 computes a signed 64-bit difference between two raw uint32 wire
// values without requiring the caller to wrap them in U32 first.
func Diff32(a, b uint32) int64 {
	return U32(a).Diff(U32(b))
}
