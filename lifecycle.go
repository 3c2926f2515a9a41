package ravennakit

// startLocked subscribes every stream whose rank has a configured
// interface address. Called with r.mu held.
func (r *Receiver) startLocked() {
	if r.isRunning {
		return
	}
	if !r.enabled {
		return
	}
	r.seq.Reset()
	r.haveFirstTS = false

	for _, sc := range r.streamContexts {
		if !sc.Info.Session.Valid() {
			continue
		}
		iface, ok := r.interfaceAddresses[sc.Info.Rank]
		if !ok || iface.IsUnspecified() {
			continue
		}

		sink := &streamSink{receiver: r, streamCtx: sc}
		sub, err := r.mux.Subscribe(
			sink,
			iface,
			sc.Info.Session.RtpPort,
			sc.Info.Session.Address,
			"",
			nil,
		)
		if err != nil {
			r.log.Warn().Err(err).Str("stream_id", sc.ID.String()).Str("session", sc.Info.Session.String()).Msg("failed to subscribe stream")
			continue
		}
		r.subscriptions = append(r.subscriptions, sub)
	}

	r.isRunning = true
}

// stopLocked releases every active subscription. Called with r.mu held.
func (r *Receiver) stopLocked() {
	if !r.isRunning {
		return
	}
	r.isRunning = false
	for _, sub := range r.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			r.log.Warn().Err(err).Msg("failed to unsubscribe stream")
		}
	}
	r.subscriptions = nil
}

// updateSharedContextLocked rebuilds and publishes a new SharedContext from
// the current parameters, delay, and stream contexts. On any sizing error
// (no streams, invalid format) it publishes nothing and clears the existing
// snapshot, matching the source's "clearing shared context" behavior.
// State-change callbacks triggered by the follow-on maintenance pass are
// appended to pending rather than invoked. Called with r.mu held.
func (r *Receiver) updateSharedContextLocked(pending *[]pendingCallback) {
	if !r.enabled {
		r.shared.UpdateReclaimAll(nil)
		return
	}

	sc, _, err := buildSharedContext(r.parameters.AudioFormat, r.delayFrames, r.streamContexts)
	if err != nil {
		r.log.Error().Err(err).Msg("clearing shared context")
		r.shared.UpdateReclaimAll(nil)
		return
	}

	// A plain Update, not UpdateReclaimAll: the audio thread may still be
	// reading the previous generation through its own Reader, and a
	// reconfiguration must never tear a snapshot out from under it. The old
	// generation is freed by Reclaim once both the audio reader and the
	// network reader have observed a newer one.
	r.shared.Update(sc)
	r.doMaintenanceLocked(pending)
}

// setState transitions sc to newState, firing onStateChanged when it
// actually changes. Called with r.mu held.
func (r *Receiver) setState(sc *StreamContext, newState State) {
	if sc.state == newState {
		return
	}
	sc.state = newState
	if r.onStateChanged != nil {
		r.onStateChanged(sc.Info, newState)
	}
}
