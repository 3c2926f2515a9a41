package wrapping

// SeqTracker maintains a monotonic high-water mark over a U16 counter
// stream and reports the gap between consecutive advances.
//
// Update(observed) returns (delta, true) when observed is strictly after the
// tracked value, advancing the tracker to observed. It returns (_, false) on
// reordering or a duplicate (stutter), leaving the tracker untouched.
type SeqTracker struct {
	value       U16
	initialized bool
}

// NewSeqTracker returns a tracker with no observed value yet; the first call
// to Update always advances it.
func NewSeqTracker() *SeqTracker {
	return &SeqTracker{}
}

// Reset reinitializes the tracker as if it had never observed a value.
func (t *SeqTracker) Reset() {
	t.initialized = false
	t.value = 0
}

// Value returns the last tracked value and whether the tracker has observed
// anything yet.
func (t *SeqTracker) Value() (U16, bool) { return t.value, t.initialized }

func (t *SeqTracker) Update(observed U16) (delta int32, advanced bool) {
	if !t.initialized {
		t.value = observed
		t.initialized = true
		return 0, true
	}

	delta = observed.Diff(t.value)
	if delta <= 0 {
		return delta, false
	}

	t.value = observed
	return delta, true
}

// TimestampTracker is the U32 analogue of SeqTracker, for RTP timestamps.
type TimestampTracker struct {
	value       U32
	initialized bool
}

func NewTimestampTracker() *TimestampTracker {
	return &TimestampTracker{}
}

func (t *TimestampTracker) Reset() {
	t.initialized = false
	t.value = 0
}

func (t *TimestampTracker) Value() (U32, bool) { return t.value, t.initialized }

func (t *TimestampTracker) Update(observed U32) (delta int64, advanced bool) {
	if !t.initialized {
		t.value = observed
		t.initialized = true
		return 0, true
	}

	delta = observed.Diff(t.value)
	if delta <= 0 {
		return delta, false
	}

	t.value = observed
	return delta, true
}
