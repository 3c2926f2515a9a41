package ravennakit

import (
	"net/netip"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/owllab/ravennakit/mcast"
	"github.com/owllab/ravennakit/platform"
	"github.com/owllab/ravennakit/tbuf"
	"github.com/owllab/ravennakit/wrapping"
)

// Receiver orchestrates one or more ranked, redundant RTP streams into a
// single reconstructed PCM timeline. It is the package's entry point,
// corresponding to the source's AudioReceiver.
//
// Receiver is safe for concurrent use by its three intended callers: the
// control goroutine (SetParameters, SetEnabled, SetDelayFrames,
// SetInterfaces, RunMaintenance), the mcast reactor goroutine (dispatch into
// onRTPPacket via the registered PacketSink), and the real-time audio
// goroutine (ReadDataRealtime / ReadAudioDataRealtime). Only the last must
// never block or allocate.
type Receiver struct {
	log zerolog.Logger
	mux *mcast.Multiplexer
	clock platform.Clock

	mu                 sync.Mutex
	parameters         Parameters
	streamContexts     []*StreamContext
	interfaceAddresses map[Rank]netip.Addr
	delayFrames        uint32
	enabled            bool
	isRunning          bool
	subscriptions      []*mcast.Subscription

	shared        *tbuf.Triple[SharedContext]
	audioReader   *tbuf.Reader[SharedContext]
	networkReader *tbuf.Reader[SharedContext]

	// consumerActive is a single receiver-wide flag (not per-stream): set
	// false the moment any stream's packet FIFO overflows, forcing every
	// stream's FIFO to be drained and discarded on the audio thread's next
	// maintenance pass before fresh data is accepted again.
	consumerActive atomic.Bool

	// seq tracks the receiver-wide monotonic stream of sequence numbers
	// across every leg of a redundant set, so on_data_received/
	// on_data_ready fire once per logical packet rather than once per
	// redundant leg. firstTS is the first packet timestamp observed since
	// the receiver last started, a baseline below which on_data_ready never fires
	// (a negative/pre-stream-start playout point has nothing to be ready).
	seq         wrapping.SeqTracker
	firstTS     wrapping.U32
	haveFirstTS bool

	onDataReceived func(packetTimestamp wrapping.U32)
	onDataReady    func(readyTimestamp wrapping.U32)
	onStateChanged func(stream Stream, state State)
}

// NewReceiver returns a disabled Receiver with no streams configured. mux is
// shared with other receivers on the same process; clock is typically
// platform.Default().
func NewReceiver(mux *mcast.Multiplexer, clock platform.Clock, log zerolog.Logger) *Receiver {
	r := &Receiver{
		log:                log.With().Str("component", "ravennakit.Receiver").Logger(),
		mux:                mux,
		clock:              clock,
		interfaceAddresses: make(map[Rank]netip.Addr),
		shared:             &tbuf.Triple[SharedContext]{},
	}
	r.audioReader = r.shared.NewReader()
	r.networkReader = r.shared.NewReader()
	// Optimistic by default: a stream is assumed consumed until the audio
	// thread's FIFO overflows, not the other way around. Otherwise no packet
	// would ever be queued before the first ReadDataRealtime call.
	r.consumerActive.Store(true)
	return r
}

// OnDataReceived registers callback to fire once per newly observed,
// monotonically increasing packet timestamp (across redundant legs).
func (r *Receiver) OnDataReceived(callback func(packetTimestamp wrapping.U32)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDataReceived = callback
}

// OnDataReady registers callback to fire once per playout-ready timestamp,
// after the configured delay, including synthetic calls for gaps.
func (r *Receiver) OnDataReady(callback func(readyTimestamp wrapping.U32)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDataReady = callback
}

// OnStateChanged registers callback to fire on every stream state
// transition.
func (r *Receiver) OnStateChanged(callback func(stream Stream, state State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onStateChanged = callback
}

// GetParameters returns the currently configured parameters.
func (r *Receiver) GetParameters() Parameters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.parameters
}

// SetParameters replaces the receiver's configuration. It returns
// ErrParametersUnchanged without doing any work if new is identical to the
// current configuration.
func (r *Receiver) SetParameters(newParameters Parameters) error {
	r.mu.Lock()

	if newParameters.Equal(r.parameters) {
		r.mu.Unlock()
		return ErrParametersUnchanged
	}
	r.parameters = newParameters

	// Deferred destruction: the old stream contexts stay reachable through
	// the currently-published SharedContext until the RT thread observes
	// the new one and tbuf.Reclaim frees the old generation.
	streamContexts := make([]*StreamContext, 0, len(newParameters.Streams))
	for _, stream := range newParameters.Streams {
		streamContexts = append(streamContexts, newStreamContext(stream, r.clock))
	}
	r.streamContexts = streamContexts

	r.stopLocked()
	var pending []pendingCallback
	r.updateSharedContextLocked(&pending)
	r.startLocked()

	r.mu.Unlock()

	for _, cb := range pending {
		cb()
	}
	return nil
}

// SetEnabled enables or disables the receiver. Disabling stops all socket
// subscriptions and clears the published shared context; enabling resumes
// from the current parameters.
func (r *Receiver) SetEnabled(enabled bool) {
	r.mu.Lock()
	if r.enabled == enabled {
		r.mu.Unlock()
		return
	}
	r.enabled = enabled
	var pending []pendingCallback
	if enabled {
		if len(r.streamContexts) > 0 {
			r.updateSharedContextLocked(&pending)
		}
		r.startLocked()
	} else {
		r.stopLocked()
		r.updateSharedContextLocked(&pending)
	}
	r.mu.Unlock()

	for _, cb := range pending {
		cb()
	}
}

// SetDelayFrames changes the playout delay, in frames, subtracted from the
// latest write timestamp to derive the read timestamp.
func (r *Receiver) SetDelayFrames(delayFrames uint32) {
	r.mu.Lock()
	if r.delayFrames == delayFrames {
		r.mu.Unlock()
		return
	}
	r.delayFrames = delayFrames
	var pending []pendingCallback
	r.updateSharedContextLocked(&pending)
	r.mu.Unlock()

	for _, cb := range pending {
		cb()
	}
}

// SetInterfaces changes which local interface address is used for each
// rank. Changing this restarts all socket subscriptions.
func (r *Receiver) SetInterfaces(interfaces map[Rank]netip.Addr) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mapsEqual(r.interfaceAddresses, interfaces) {
		return nil
	}
	for _, addr := range interfaces {
		if !addr.IsValid() || addr.IsUnspecified() || addr.IsMulticast() {
			return ErrInvalidInterface
		}
	}

	r.interfaceAddresses = interfaces
	r.stopLocked()
	r.startLocked()
	return nil
}

func mapsEqual(a, b map[Rank]netip.Addr) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// GetStateForStream returns the current lifecycle state of the stream
// matching session, if one is configured.
func (r *Receiver) GetStateForStream(session Session) (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sc := r.findStreamContextLocked(session); sc != nil {
		return sc.state, true
	}
	return 0, false
}

func (r *Receiver) findStreamContextLocked(session Session) *StreamContext {
	for _, sc := range r.streamContexts {
		if sc.Info.Session == session {
			return sc
		}
	}
	return nil
}
