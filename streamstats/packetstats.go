package streamstats

import "github.com/owllab/ravennakit/wrapping"

// PacketStats is the per-stream aggregate updated on every received packet
// and on every too-late notification drained from the real-time thread.
type PacketStats struct {
	Seq      SeqTracker
	Interval IntervalEMA
	TooLate  uint64
}

// New returns a PacketStats with the EMA initialized to its default
// constants.
func New() *PacketStats {
	return &PacketStats{Interval: *NewIntervalEMA()}
}

// Update folds in one received packet's sequence number and, if an
// inter-arrival interval is available (nil on the very first packet),
// folds that into the interval EMA too.
func (p *PacketStats) Update(seq wrapping.U16, intervalMs *float64) Outcome {
	outcome, _ := p.Seq.Update(seq)
	if intervalMs != nil {
		p.Interval.Update(*intervalMs)
	}
	return outcome
}

// MarkTooLate records one notification drained from a TooLate FIFO.
func (p *PacketStats) MarkTooLate() {
	p.TooLate++
}

// Totals is a snapshot of the counters a caller can log or export.
type Totals struct {
	SeqCounts
	TooLate      uint64
	IntervalEMA  float64
	MaxDeviation float64
}

// TotalCounts returns a snapshot of every counter.
func (p *PacketStats) TotalCounts() Totals {
	return Totals{
		SeqCounts:    p.Seq.Counts(),
		TooLate:      p.TooLate,
		IntervalEMA:  p.Interval.EMA(),
		MaxDeviation: p.Interval.MaxDeviation(),
	}
}
