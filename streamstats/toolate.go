package streamstats

import (
	"encoding/binary"

	"github.com/owllab/ravennakit/fifo"
)

// TooLate carries sequence numbers the real-time reader judged too late to
// play out back to the control-side counters, over an Spsc FIFO so the
// real-time thread never blocks reporting a loss.
type TooLate struct {
	q    *fifo.ByteQueue
	elem [2]byte
}

// NewTooLate returns a TooLate tracker with room for capacity outstanding
// notifications.
func NewTooLate(capacity int) *TooLate {
	return &TooLate{q: fifo.NewByteQueue(fifo.NewSpsc(capacity), capacity, 2)}
}

// Push enqueues seq from the real-time thread. It reports false if the
// FIFO is full, meaning the notification is dropped rather than blocking.
func (t *TooLate) Push(seq uint16) bool {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], seq)
	return t.q.Write(b[:])
}

// Pop dequeues the next too-late sequence number, if any, for the control
// thread.
func (t *TooLate) Pop() (seq uint16, ok bool) {
	if !t.q.Read(t.elem[:], 1) {
		return 0, false
	}
	return binary.BigEndian.Uint16(t.elem[:]), true
}

// Resize discards queued content and resizes the backing queue.
func (t *TooLate) Resize(capacity int) {
	t.q.Resize(capacity)
}
