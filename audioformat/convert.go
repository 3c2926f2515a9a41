package audioformat

import (
	"encoding/binary"
	"fmt"
)

func scaleFor(enc Encoding) float64 {
	switch enc {
	case PCMS16:
		return 1 << 15
	case PCMS24:
		return 1 << 23
	case PCMS32:
		return 1 << 31
	default:
		return 1
	}
}

func readSigned(wire []byte, enc Encoding, order ByteOrder) int32 {
	switch enc {
	case PCMS16:
		if order == BigEndian {
			return int32(int16(binary.BigEndian.Uint16(wire)))
		}
		return int32(int16(binary.LittleEndian.Uint16(wire)))
	case PCMS24:
		var b0, b1, b2 byte
		if order == BigEndian {
			b0, b1, b2 = wire[2], wire[1], wire[0]
		} else {
			b0, b1, b2 = wire[0], wire[1], wire[2]
		}
		v := int32(b0) | int32(b1)<<8 | int32(b2)<<16
		return v<<8 >> 8 // sign-extend the 24-bit value
	case PCMS32:
		if order == BigEndian {
			return int32(binary.BigEndian.Uint32(wire))
		}
		return int32(binary.LittleEndian.Uint32(wire))
	default:
		return 0
	}
}

func writeSigned(wire []byte, v int32, enc Encoding, order ByteOrder) {
	switch enc {
	case PCMS16:
		u := uint16(int16(v))
		if order == BigEndian {
			binary.BigEndian.PutUint16(wire, u)
		} else {
			binary.LittleEndian.PutUint16(wire, u)
		}
	case PCMS24:
		b0 := byte(v)
		b1 := byte(v >> 8)
		b2 := byte(v >> 16)
		if order == BigEndian {
			wire[0], wire[1], wire[2] = b2, b1, b0
		} else {
			wire[0], wire[1], wire[2] = b0, b1, b2
		}
	case PCMS32:
		u := uint32(v)
		if order == BigEndian {
			binary.BigEndian.PutUint32(wire, u)
		} else {
			binary.LittleEndian.PutUint32(wire, u)
		}
	}
}

func clampToFixed(f float32, scale float64) int32 {
	v := float64(f) * scale
	max := scale - 1
	min := -scale
	if v > max {
		v = max
	}
	if v < min {
		v = min
	}
	return int32(v)
}

// ToPlanarF32 decodes src, laid out per srcFmt, into dst — one []float32
// slice per channel, each at least numFrames long. It rejects formats this
// layer does not support rather than guessing: float32 wire samples,
// planar wire layout, and channel-count mismatches are all treated as
// caller bugs.
func ToPlanarF32(src []byte, srcFmt Format, dst [][]float32, numFrames int) error {
	if srcFmt.Ordering != Interleaved {
		return fmt.Errorf("audioformat: unsupported source ordering %v", srcFmt.Ordering)
	}
	if srcFmt.Encoding == PCMF32 {
		return fmt.Errorf("audioformat: float32 wire decode not supported")
	}
	if len(dst) != int(srcFmt.NumChannels) {
		return fmt.Errorf("audioformat: channel mismatch: format has %d, dst has %d", srcFmt.NumChannels, len(dst))
	}

	bps := srcFmt.Encoding.BytesPerSample()
	frameBytes := srcFmt.BytesPerFrame()
	if len(src) < numFrames*frameBytes {
		return fmt.Errorf("audioformat: source too short for %d frames", numFrames)
	}

	scale := scaleFor(srcFmt.Encoding)
	for frame := 0; frame < numFrames; frame++ {
		base := frame * frameBytes
		for ch := 0; ch < int(srcFmt.NumChannels); ch++ {
			off := base + ch*bps
			raw := readSigned(src[off:off+bps], srcFmt.Encoding, srcFmt.ByteOrder)
			dst[ch][frame] = float32(float64(raw) / scale)
		}
	}
	return nil
}

// FromPlanarF32 encodes src — one []float32 slice per channel — into dst,
// laid out per dstFmt. It is the inverse of ToPlanarF32, subject to the
// same ordering/encoding restrictions.
func FromPlanarF32(src [][]float32, dstFmt Format, dst []byte, numFrames int) error {
	if dstFmt.Ordering != Interleaved {
		return fmt.Errorf("audioformat: unsupported destination ordering %v", dstFmt.Ordering)
	}
	if dstFmt.Encoding == PCMF32 {
		return fmt.Errorf("audioformat: float32 wire encode not supported")
	}
	if len(src) != int(dstFmt.NumChannels) {
		return fmt.Errorf("audioformat: channel mismatch: format has %d, src has %d", dstFmt.NumChannels, len(src))
	}

	bps := dstFmt.Encoding.BytesPerSample()
	frameBytes := dstFmt.BytesPerFrame()
	if len(dst) < numFrames*frameBytes {
		return fmt.Errorf("audioformat: destination too short for %d frames", numFrames)
	}

	scale := scaleFor(dstFmt.Encoding)
	for frame := 0; frame < numFrames; frame++ {
		base := frame * frameBytes
		for ch := 0; ch < int(dstFmt.NumChannels); ch++ {
			off := base + ch*bps
			writeSigned(dst[off:off+bps], clampToFixed(src[ch][frame], scale), dstFmt.Encoding, dstFmt.ByteOrder)
		}
	}
	return nil
}
