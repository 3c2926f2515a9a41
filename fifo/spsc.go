package fifo

import "sync/atomic"

// Spsc is the single-producer/single-consumer FIFO used on the real-time
// packet-handoff path: the network goroutine is the sole writer of tail_,
// the real-time audio goroutine is the sole reader of head_, and size_ is
// the only state touched by both, kept consistent with atomics so neither
// side needs a mutex.
type Spsc struct {
	head, tail int
	size       atomic.Int64
	capacity   int
}

func NewSpsc(capacity int) *Spsc {
	s := &Spsc{}
	s.Resize(capacity)
	return s
}

func (f *Spsc) PrepareForWrite(n int) Lock {
	if f.size.Load()+int64(n) > int64(f.capacity) {
		return Lock{}
	}
	var pos Position
	pos.update(f.tail, f.capacity, n)
	return Lock{Position: pos, Ok: true}
}

func (f *Spsc) PrepareForRead(n int) Lock {
	if f.size.Load() < int64(n) {
		return Lock{}
	}
	var pos Position
	pos.update(f.head, f.capacity, n)
	return Lock{Position: pos, Ok: true}
}

func (f *Spsc) CommitWrite(l Lock) {
	n := l.Position.total()
	f.tail = (f.tail + n) % f.capacity
	f.size.Add(int64(n))
}

func (f *Spsc) CommitRead(l Lock) {
	n := l.Position.total()
	f.head = (f.head + n) % f.capacity
	f.size.Add(-int64(n))
}

func (f *Spsc) Size() int { return int(f.size.Load()) }

func (f *Spsc) Resize(capacity int) {
	f.head, f.tail = 0, 0
	f.size.Store(0)
	f.capacity = capacity
}
