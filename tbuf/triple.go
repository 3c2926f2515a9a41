// Package tbuf implements a triple-buffered hand-off between a control
// goroutine that publishes configuration snapshots and one or more
// real-time goroutines that read them: the real-time side never blocks and
// never allocates, and superseded snapshots are only freed once every
// reader has provably moved past them.
package tbuf

import (
	"sync"
	"sync/atomic"
)

type generation[T any] struct {
	value *T
	seq   uint64
}

// Triple publishes successive versions of *T. The zero value has no
// current snapshot; readers see ok=false until the first Update.
type Triple[T any] struct {
	current atomic.Pointer[generation[T]]

	mu      sync.Mutex
	nextSeq uint64
	retired []*generation[T]
	readers []*Reader[T]
}

// Reader is a single real-time consumer's handle onto a Triple. Each
// real-time goroutine should hold its own Reader so Reclaim can tell which
// generations are still potentially in use.
type Reader[T any] struct {
	owner    *Triple[T]
	lastSeen atomic.Uint64
}

// NewReader registers a new real-time reader against t. Call this from the
// control goroutine during setup, before the real-time goroutine starts
// calling LockRealtime.
func (t *Triple[T]) NewReader() *Reader[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := &Reader[T]{owner: t}
	t.readers = append(t.readers, r)
	return r
}

// LockRealtime returns the current snapshot, wait-free: it is a single
// atomic load plus an atomic store of the reader's own watermark, safe to
// call from a real-time thread. ok is false only if Update has never been
// called.
func (r *Reader[T]) LockRealtime() (value *T, ok bool) {
	g := r.owner.current.Load()
	if g == nil {
		return nil, false
	}
	r.lastSeen.Store(g.seq)
	return g.value, true
}

// Update publishes newValue as the current snapshot and retires whatever
// was current before it. The retired snapshot is not freed immediately —
// Reclaim drops it only once every registered reader has observed a newer
// generation.
func (t *Triple[T]) Update(newValue *T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.publishLocked(newValue, false)
}

// UpdateReclaimAll publishes newValue and immediately drops every retired
// snapshot, skipping the wait for readers to catch up. Callers use this
// when real-time consumption is known to be stopped, e.g. while a receiver
// is disabled.
func (t *Triple[T]) UpdateReclaimAll(newValue *T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.publishLocked(newValue, true)
}

func (t *Triple[T]) publishLocked(newValue *T, reclaimAll bool) {
	t.nextSeq++
	old := t.current.Load()
	t.current.Store(&generation[T]{value: newValue, seq: t.nextSeq})

	if reclaimAll {
		t.retired = nil
		return
	}
	if old != nil {
		t.retired = append(t.retired, old)
	}
}

// Reclaim frees every retired snapshot that every registered reader has
// already moved past. It returns the number of snapshots freed. Call this
// from a non-real-time maintenance tick.
func (t *Triple[T]) Reclaim() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.retired) == 0 {
		return 0
	}

	minSeen := t.nextSeq
	for _, r := range t.readers {
		if s := r.lastSeen.Load(); s < minSeen {
			minSeen = s
		}
	}

	kept := t.retired[:0]
	freed := 0
	for _, g := range t.retired {
		if g.seq < minSeen {
			freed++
			continue
		}
		kept = append(kept, g)
	}
	t.retired = kept
	return freed
}

// Pending reports how many retired snapshots are still awaiting reclaim.
func (t *Triple[T]) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.retired)
}
