package rtpio

// NtpTimestamp is the 64-bit NTP timestamp format used by RTCP sender
// reports: seconds and fractional seconds since the 1900 epoch.
type NtpTimestamp struct {
	Seconds  uint32
	Fraction uint32
}

// Compact extracts the middle 32 bits of a full NTP timestamp,
// the form carried in an RTCP report block's LSR field.
func (t NtpTimestamp) Compact() uint32 {
	return uint32(t.Seconds)<<16 | t.Fraction>>16
}

// NtpTimestampFromCompact reconstructs a (lossy) NtpTimestamp from a compact
// 32-bit LSR-style value: the low 16 bits of seconds and the high 16 bits of
// fraction.
func NtpTimestampFromCompact(compact uint32) NtpTimestamp {
	return NtpTimestamp{
		Seconds:  compact >> 16,
		Fraction: (compact & 0xffff) << 16,
	}
}
