package fifo

import (
	"sync"
	"sync/atomic"
)

// Spmc is the single-producer/many-consumers FIFO: the mirror image of
// Mpsc. The consumer side serializes on a mutex; the producer side is
// assumed single-threaded.
type Spmc struct {
	mu         sync.Mutex
	head, tail int
	size       atomic.Int64
	capacity   int
}

func NewSpmc(capacity int) *Spmc {
	f := &Spmc{}
	f.Resize(capacity)
	return f
}

func (f *Spmc) PrepareForWrite(n int) Lock {
	if f.size.Load()+int64(n) > int64(f.capacity) {
		return Lock{}
	}
	var pos Position
	pos.update(f.tail, f.capacity, n)
	return Lock{Position: pos, Ok: true}
}

func (f *Spmc) PrepareForRead(n int) Lock {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.size.Load() < int64(n) {
		return Lock{}
	}
	var pos Position
	pos.update(f.head, f.capacity, n)
	return Lock{Position: pos, Ok: true}
}

func (f *Spmc) CommitWrite(l Lock) {
	n := l.Position.total()
	f.tail = (f.tail + n) % f.capacity
	f.size.Add(int64(n))
}

func (f *Spmc) CommitRead(l Lock) {
	f.mu.Lock()
	n := l.Position.total()
	f.head = (f.head + n) % f.capacity
	f.mu.Unlock()
	f.size.Add(-int64(n))
}

func (f *Spmc) Size() int { return int(f.size.Load()) }

func (f *Spmc) Resize(capacity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head, f.tail = 0, 0
	f.size.Store(0)
	f.capacity = capacity
}
