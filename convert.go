package ravennakit

import (
	"fmt"

	"github.com/owllab/ravennakit/audioformat"
)

// convertStagingToPlanar converts the wire-format bytes in staging into dst,
// one []float32 slice per channel. AES67 mandates big-endian, interleaved
// wire samples, so anything else is rejected rather than silently handled —
// audioformat.ToPlanarF32 itself is general-purpose, but this call site only
// ever sees AES67 traffic.
func convertStagingToPlanar(staging []byte, format audioformat.Format, dst [][]float32, numFrames int) error {
	if format.ByteOrder != audioformat.BigEndian {
		return fmt.Errorf("ravennakit: unexpected byte order in audio format %s", format)
	}
	if format.Ordering != audioformat.Interleaved {
		return fmt.Errorf("ravennakit: unexpected channel ordering in audio format %s", format)
	}
	if int(format.NumChannels) != len(dst) {
		return fmt.Errorf("ravennakit: channel mismatch: format has %d, dst has %d", format.NumChannels, len(dst))
	}

	switch format.Encoding {
	case audioformat.PCMS16, audioformat.PCMS24, audioformat.PCMS32:
		return audioformat.ToPlanarF32(staging, format, dst, numFrames)
	default:
		return fmt.Errorf("ravennakit: unsupported encoding %s", format.Encoding)
	}
}
