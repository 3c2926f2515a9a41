package rtpio

// ValidationResult classifies the outcome of validating a view's backing
// buffer. It is returned, never raised: parse failures are data, not panics.
type ValidationResult int

const (
	Ok ValidationResult = iota
	InvalidPointer
	InvalidHeaderLength
	InvalidVersion
	InvalidSenderInfoLength
	InvalidReportBlockLength
)

func (r ValidationResult) String() string {
	switch r {
	case Ok:
		return "Ok"
	case InvalidPointer:
		return "InvalidPointer"
	case InvalidHeaderLength:
		return "InvalidHeaderLength"
	case InvalidVersion:
		return "InvalidVersion"
	case InvalidSenderInfoLength:
		return "InvalidSenderInfoLength"
	case InvalidReportBlockLength:
		return "InvalidReportBlockLength"
	default:
		return "Unknown"
	}
}

const (
	rtpHeaderBaseLength      = 12
	rtpExtensionHeaderLength = 4 // defined-by-profile (2) + length-in-words (2)
)

// RTPHeaderView is a non-owning, accessor-parsed view over an RTP packet
// (RFC 3550 section 5.1). It never mutates or copies the backing buffer.
type RTPHeaderView struct {
	data []byte
}

// NewRTPHeaderView wraps data as an RTP header view. data is not copied and
// must outlive the view.
func NewRTPHeaderView(data []byte) RTPHeaderView {
	return RTPHeaderView{data: data}
}

// Validate classifies the buffer. A zero-value view (nil data) is
// InvalidPointer, matching the source's nullptr check.
func (h RTPHeaderView) Validate() ValidationResult {
	if h.data == nil {
		return InvalidPointer
	}
	if len(h.data) < rtpHeaderBaseLength {
		return InvalidHeaderLength
	}
	if len(h.data) < rtpHeaderBaseLength+int(h.CsrcCount())*4 {
		return InvalidHeaderLength
	}
	if h.Version() > 2 {
		return InvalidVersion
	}
	return Ok
}

func (h RTPHeaderView) Version() uint8 {
	if len(h.data) < 1 {
		return 0
	}
	return (h.data[0] & 0b11000000) >> 6
}

func (h RTPHeaderView) Padding() bool {
	if len(h.data) < 1 {
		return false
	}
	return h.data[0]&0b00100000 != 0
}

func (h RTPHeaderView) Extension() bool {
	if len(h.data) < 1 {
		return false
	}
	return h.data[0]&0b00010000 != 0
}

func (h RTPHeaderView) CsrcCount() uint32 {
	if len(h.data) < 1 {
		return 0
	}
	return uint32(h.data[0] & 0b00001111)
}

func (h RTPHeaderView) MarkerBit() bool {
	if len(h.data) < 2 {
		return false
	}
	return h.data[1]&0b10000000 != 0
}

func (h RTPHeaderView) PayloadType() uint8 {
	if len(h.data) < 2 {
		return 0
	}
	return h.data[1] & 0b01111111
}

func (h RTPHeaderView) SequenceNumber() uint16 {
	if len(h.data) < 4 {
		return 0
	}
	return ReadU16BE(h.data[2:])
}

func (h RTPHeaderView) Timestamp() uint32 {
	if len(h.data) < 8 {
		return 0
	}
	return ReadU32BE(h.data[4:])
}

func (h RTPHeaderView) Ssrc() uint32 {
	if len(h.data) < 12 {
		return 0
	}
	return ReadU32BE(h.data[8:])
}

// Csrc returns the CSRC identifier at index, or 0 if index is out of range.
func (h RTPHeaderView) Csrc(index uint32) uint32 {
	if index >= h.CsrcCount() {
		return 0
	}
	offset := rtpHeaderBaseLength + int(index)*4
	if len(h.data) < offset+4 {
		return 0
	}
	return ReadU32BE(h.data[offset:])
}

// HeaderExtensionDefinedByProfile returns the profile-defined value in the
// two-byte extension header, read big-endian like every other header field
// (the value's meaning is profile-specific).
func (h RTPHeaderView) HeaderExtensionDefinedByProfile() uint16 {
	if !h.Extension() {
		return 0
	}
	offset := rtpHeaderBaseLength + int(h.CsrcCount())*4
	if len(h.data) < offset+2 {
		return 0
	}
	return ReadU16BE(h.data[offset:])
}

// HeaderExtensionData returns the profile-defined extension payload.
func (h RTPHeaderView) HeaderExtensionData() []byte {
	if !h.Extension() {
		return nil
	}
	extStart := rtpHeaderBaseLength + int(h.CsrcCount())*4
	if len(h.data) < extStart+rtpExtensionHeaderLength {
		return nil
	}
	numWords := ReadU16BE(h.data[extStart+2:])
	dataStart := extStart + rtpExtensionHeaderLength
	dataEnd := dataStart + int(numWords)*4
	if dataEnd > len(h.data) {
		return nil
	}
	return h.data[dataStart:dataEnd]
}

// HeaderTotalLength returns the byte offset of the payload, i.e. the fixed
// header plus CSRCs plus any extension.
func (h RTPHeaderView) HeaderTotalLength() int {
	extLen := 0
	if h.Extension() {
		extLen = rtpExtensionHeaderLength + len(h.HeaderExtensionData())
	}
	return rtpHeaderBaseLength + int(h.CsrcCount())*4 + extLen
}

// PayloadData returns the RTP payload, or nil if the buffer is too short to
// contain the declared header.
func (h RTPHeaderView) PayloadData() []byte {
	if h.data == nil {
		return nil
	}
	total := h.HeaderTotalLength()
	if len(h.data) < total {
		return nil
	}
	return h.data[total:]
}
