// Package fifo implements the bounded lock-free(-ish) FIFO matrix used to
// hand packets and control messages between the network, real-time audio,
// and control goroutines without the receiver ever blocking on the real-time
// path. Five variants are provided, selected by producer/consumer
// cardinality; all five share one interface so callers (the per-stream
// packet and too-late queues) are parametric over which discipline they
// need.
package fifo

// Position describes how n elements are laid out in a circular buffer of a
// given capacity: a first segment starting at Index1 of Size1 elements, and
// — only if the range wraps past the end of the storage — a second segment
// of Size2 elements starting at index 0.
type Position struct {
	Index1 int
	Size1  int
	Size2  int
}

func (p Position) total() int { return p.Size1 + p.Size2 }

func (p *Position) update(pointer, capacity, n int) {
	p.Index1 = pointer
	p.Size1 = n
	p.Size2 = 0

	if pointer+n > capacity {
		p.Size1 = capacity - pointer
		p.Size2 = n - p.Size1
	}
}

// Lock is returned by PrepareForWrite/PrepareForRead. A zero Lock (Ok ==
// false) means there was insufficient space or data and no commit must
// follow. The caller copies into or out of the segments described by
// Position and then passes the Lock back to CommitWrite/CommitRead.
type Lock struct {
	Position Position
	Ok       bool
}

// FIFO is the common contract implemented by Single, Spsc, Mpsc, Spmc and
// Mpmc. Resize discards any queued content.
type FIFO interface {
	PrepareForWrite(n int) Lock
	PrepareForRead(n int) Lock
	CommitWrite(l Lock)
	CommitRead(l Lock)
	Size() int
	Resize(capacity int)
}
