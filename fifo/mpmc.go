package fifo

import "sync"

// Mpmc is the fully general many-producers/many-consumers FIFO: a single
// mutex guards indices and size together, the simplest correct discipline
// when neither side can be assumed single-threaded.
type Mpmc struct {
	mu               sync.Mutex
	head, tail, size int
	capacity         int
}

func NewMpmc(capacity int) *Mpmc {
	f := &Mpmc{}
	f.Resize(capacity)
	return f
}

func (f *Mpmc) PrepareForWrite(n int) Lock {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.size+n > f.capacity {
		return Lock{}
	}
	var pos Position
	pos.update(f.tail, f.capacity, n)
	return Lock{Position: pos, Ok: true}
}

func (f *Mpmc) PrepareForRead(n int) Lock {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.size < n {
		return Lock{}
	}
	var pos Position
	pos.update(f.head, f.capacity, n)
	return Lock{Position: pos, Ok: true}
}

func (f *Mpmc) CommitWrite(l Lock) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := l.Position.total()
	f.tail = (f.tail + n) % f.capacity
	f.size += n
}

func (f *Mpmc) CommitRead(l Lock) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := l.Position.total()
	f.head = (f.head + n) % f.capacity
	f.size -= n
}

func (f *Mpmc) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size
}

func (f *Mpmc) Resize(capacity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head, f.tail, f.size = 0, 0, 0
	f.capacity = capacity
}
