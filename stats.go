package ravennakit

import "github.com/owllab/ravennakit/streamstats"

// GetSessionStats returns a snapshot of the accumulated statistics for the
// stream at rank, or a zero Totals if no stream with that rank is
// configured.
func (r *Receiver) GetSessionStats(rank Rank) streamstats.Totals {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sc := range r.streamContexts {
		if sc.Info.Rank == rank {
			return sc.stats.TotalCounts()
		}
	}
	return streamstats.Totals{}
}
