package ravennakit

import "errors"

// Internal sentinels distinguishing why buildSharedContext declined to
// publish a new snapshot. They never escape the package; SetParameters logs
// them and leaves the pipeline disabled (shared context cleared) rather than
// surfacing them to the caller, matching the source's
// "clearing shared context" log-and-continue behavior.
var (
	errNoStreams         = errors.New("ravennakit: no streams configured")
	errInvalidFormat     = errors.New("ravennakit: invalid audio format")
	errInvalidPacketTime = errors.New("ravennakit: stream packet_time_frames must be non-zero")
)
