package fifo

// ByteQueue pairs a FIFO's index bookkeeping with an owned backing array,
// the Go analogue of the source's circular_buffer<T, F> template: callers
// get Write/Read in terms of whole elements without re-deriving the
// two-segment copy dance at every call site.
type ByteQueue struct {
	buf          []byte
	elemSize     int
	f            FIFO
}

// NewByteQueue builds a queue over f backed by capacity*elemSize bytes.
// f must already be sized to capacity elements (callers typically construct
// it via the matching New<Variant>(capacity) and pass it straight in).
func NewByteQueue(f FIFO, capacity, elemSize int) *ByteQueue {
	return &ByteQueue{
		buf:      make([]byte, capacity*elemSize),
		elemSize: elemSize,
		f:        f,
	}
}

// Write copies len(src)/elemSize elements into the queue. It returns false,
// writing nothing, if there isn't room for all of them.
func (q *ByteQueue) Write(src []byte) bool {
	n := len(src) / q.elemSize
	lock := q.f.PrepareForWrite(n)
	if !lock.Ok {
		return false
	}

	pos := lock.Position
	off1 := pos.Index1 * q.elemSize
	n1 := pos.Size1 * q.elemSize
	copy(q.buf[off1:off1+n1], src[:n1])

	if pos.Size2 > 0 {
		n2 := pos.Size2 * q.elemSize
		copy(q.buf[:n2], src[n1:n1+n2])
	}

	q.f.CommitWrite(lock)
	return true
}

// Read copies n elements out of the queue into dst (which must be at least
// n*elemSize bytes). It returns false, leaving dst untouched, if fewer than
// n elements are queued.
func (q *ByteQueue) Read(dst []byte, n int) bool {
	lock := q.f.PrepareForRead(n)
	if !lock.Ok {
		return false
	}

	pos := lock.Position
	off1 := pos.Index1 * q.elemSize
	n1 := pos.Size1 * q.elemSize
	copy(dst[:n1], q.buf[off1:off1+n1])

	if pos.Size2 > 0 {
		n2 := pos.Size2 * q.elemSize
		copy(dst[n1:n1+n2], q.buf[:n2])
	}

	q.f.CommitRead(lock)
	return true
}

// Size returns the number of queued elements.
func (q *ByteQueue) Size() int { return q.f.Size() }

// Resize discards queued content and resizes the backing array.
func (q *ByteQueue) Resize(capacity int) {
	q.f.Resize(capacity)
	q.buf = make([]byte, capacity*q.elemSize)
}
