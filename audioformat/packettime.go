// Package audioformat describes the wire representation of PCM audio
// carried by AES67/RAVENNA streams — encoding, byte order, channel
// ordering, and AES67 packet time — and converts between the wire layout
// and a planar float32 working format.
package audioformat

import "math"

// PacketTime represents an AES67-2023 Section 7.2 packet time as a
// numerator/denominator pair in milliseconds (e.g. 1/8 for 125us).
type PacketTime struct {
	numerator   uint8
	denominator uint8
}

// NewPacketTime returns a PacketTime of numerator/denominator milliseconds.
func NewPacketTime(numerator, denominator uint8) PacketTime {
	return PacketTime{numerator: numerator, denominator: denominator}
}

var (
	PacketTime125us = NewPacketTime(1, 8)
	PacketTime250us = NewPacketTime(1, 4)
	PacketTime333us = NewPacketTime(1, 3)
	PacketTime1ms   = NewPacketTime(1, 1)
	PacketTime4ms   = NewPacketTime(4, 1)
)

// IsValid reports whether the packet time has a sensible, non-zero
// fraction.
func (p PacketTime) IsValid() bool {
	return p.numerator != 0 && p.denominator != 0
}

// SignaledPtime returns the packet time in milliseconds as it would be
// signaled in SDP for sampleRate. Non-48kHz-family rates (44.1kHz,
// 88.2kHz, ...) are scaled by ceil(sampleRate/48000) to land on a whole
// number of 48kHz-grid packet times, per AES67's media clock convention.
func (p PacketTime) SignaledPtime(sampleRate uint32) float32 {
	if sampleRate%48000 > 0 {
		scale := sampleRate/48000 + 1
		return float32(p.numerator) * float32(scale) * 48000 / float32(sampleRate) / float32(p.denominator)
	}
	return float32(p.numerator) / float32(p.denominator)
}

// FrameCount returns the number of frames in one packet at sampleRate.
func (p PacketTime) FrameCount(sampleRate uint32) uint32 {
	return FrameCountForPtime(p.SignaledPtime(sampleRate), sampleRate)
}

// FrameCountForPtime converts a signaled packet time in milliseconds to a
// frame count at sampleRate, rounding to the nearest frame.
func FrameCountForPtime(signaledPtimeMs float32, sampleRate uint32) uint32 {
	return uint32(math.Round(float64(signaledPtimeMs) * float64(sampleRate) / 1000.0))
}
