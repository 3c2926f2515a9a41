package ravennakit

import (
	"context"
	"time"
)

// maintenanceInterval is the control-thread tick rate for stale-stream
// detection and triple-buffer reclamation.
const maintenanceInterval = time.Second

// RunMaintenance runs the low-frequency control-thread maintenance loop
// until ctx is canceled: once per maintenanceInterval it checks every
// stream for silence timeout and reclaims any SharedContext generation the
// real-time thread has moved past. Callers typically run this in its own
// goroutine for the lifetime of the Receiver.
func (r *Receiver) RunMaintenance(ctx context.Context) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.doMaintenance()
		}
	}
}

func (r *Receiver) doMaintenance() {
	r.mu.Lock()
	var pending []pendingCallback
	r.doMaintenanceLocked(&pending)
	r.mu.Unlock()

	for _, cb := range pending {
		cb()
	}
}

// doMaintenanceLocked transitions any stream that has gone silent for
// receiveTimeoutMs to StateInactive and reclaims retired SharedContext
// generations. State-change callbacks are appended to pending rather than
// invoked, since the caller still holds r.mu. Called with r.mu held.
func (r *Receiver) doMaintenanceLocked(pending *[]pendingCallback) {
	now := r.clock.NowNanos()
	for _, sc := range r.streamContexts {
		if sc.state != StateOk && sc.state != StateOkNoConsumer {
			continue
		}
		if now-sc.lastPacketTimeNs >= receiveTimeoutMs*int64(time.Millisecond) {
			r.setStatePending(sc, StateInactive, pending)
		}
	}
	r.shared.Reclaim()
}
