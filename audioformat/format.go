package audioformat

import "fmt"

// Encoding identifies a PCM sample encoding.
type Encoding int

const (
	PCMS16 Encoding = iota
	PCMS24
	PCMS32
	PCMF32
)

func (e Encoding) String() string {
	switch e {
	case PCMS16:
		return "pcm_s16"
	case PCMS24:
		return "pcm_s24"
	case PCMS32:
		return "pcm_s32"
	case PCMF32:
		return "pcm_f32"
	default:
		return "unknown"
	}
}

// BytesPerSample returns the wire size of one sample in this encoding.
func (e Encoding) BytesPerSample() int {
	switch e {
	case PCMS16:
		return 2
	case PCMS24:
		return 3
	case PCMS32, PCMF32:
		return 4
	default:
		return 0
	}
}

// ByteOrder identifies the wire byte order of multi-byte samples.
type ByteOrder int

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

// Ordering identifies whether samples are interleaved per-frame or laid
// out one channel at a time (planar).
type Ordering int

const (
	Interleaved Ordering = iota
	Planar
)

// Format fully describes the wire layout of a PCM stream.
type Format struct {
	Encoding    Encoding
	ByteOrder   ByteOrder
	Ordering    Ordering
	SampleRate  uint32
	NumChannels uint16
}

// IsValid reports whether the format has a usable encoding, sample rate
// and channel count.
func (f Format) IsValid() bool {
	return f.Encoding.BytesPerSample() > 0 && f.SampleRate > 0 && f.NumChannels > 0
}

// BytesPerFrame returns the wire size of one frame (one sample per
// channel) in this format.
func (f Format) BytesPerFrame() int {
	return f.Encoding.BytesPerSample() * int(f.NumChannels)
}

func (f Format) String() string {
	order := "be"
	if f.ByteOrder == LittleEndian {
		order = "le"
	}
	layout := "interleaved"
	if f.Ordering == Planar {
		layout = "planar"
	}
	return fmt.Sprintf("%s/%s/%s/%dHz/%dch", f.Encoding, order, layout, f.SampleRate, f.NumChannels)
}
