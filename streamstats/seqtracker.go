// Package streamstats implements the per-stream statistics gathered on
// every received packet: sequence-wrap loss/reorder/duplicate counting, a
// coarse interval EMA for timing anomalies, and a too-late tracker that
// carries packets the real-time thread judged too late back to the
// control-side counters.
package streamstats

import "github.com/owllab/ravennakit/wrapping"

// Outcome classifies one packet's sequence number against the tracker's
// expectation.
type Outcome int

const (
	InOrder Outcome = iota
	Reordered
	Loss
	Duplicate
)

func (o Outcome) String() string {
	switch o {
	case InOrder:
		return "in-order"
	case Reordered:
		return "reordered"
	case Loss:
		return "loss"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// SeqCounts accumulates the running totals a SeqTracker produces.
type SeqCounts struct {
	Received  uint64
	Lost      uint64
	Reordered uint64
	Duplicate uint64
}

// SeqTracker classifies each observed sequence number relative to the
// last one seen for the same stream and keeps running totals. The delta
// is computed against the last received sequence number, not the expected
// next one: a delta of exactly 1 is in-order, a larger positive delta is a
// loss of (delta-1) packets, zero is a duplicate, and negative is a
// reorder.
type SeqTracker struct {
	initialized bool
	lastSeq     wrapping.U16
	counts      SeqCounts
}

// Update classifies seq and, for everything but a duplicate or reorder,
// advances the tracker's notion of the last sequence number seen. It
// reports the outcome and, for Loss, how many sequence numbers were
// skipped.
func (t *SeqTracker) Update(seq wrapping.U16) (Outcome, uint16) {
	t.counts.Received++

	if !t.initialized {
		t.initialized = true
		t.lastSeq = seq
		return InOrder, 0
	}

	delta := seq.Diff(t.lastSeq)
	switch {
	case delta == 1:
		t.lastSeq = seq
		return InOrder, 0
	case delta > 1:
		gap := uint16(delta - 1)
		t.counts.Lost += uint64(gap)
		t.lastSeq = seq
		return Loss, gap
	case delta == 0:
		t.counts.Duplicate++
		return Duplicate, 0
	default:
		t.counts.Reordered++
		return Reordered, 0
	}
}

// Counts returns a snapshot of the running totals.
func (t *SeqTracker) Counts() SeqCounts { return t.counts }

// Reset clears the tracker back to its initial, unsynchronized state.
func (t *SeqTracker) Reset() {
	t.initialized = false
	t.lastSeq = 0
	t.counts = SeqCounts{}
}
