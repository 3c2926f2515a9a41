// Package ravennakit orchestrates the real-time RTP receive pipeline for a
// RAVENNA/AES67 audio stream: it subscribes one or more ranked, redundant
// RTP streams through the mcast multiplexer, reconstructs a continuous PCM
// timeline in a pcmring.Ring, and hands fixed-size frame windows to a
// real-time audio consumer via Receiver.ReadDataRealtime.
package ravennakit

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/owllab/ravennakit/audioformat"
	"github.com/owllab/ravennakit/wrapping"
)

// Errors returned by the Receiver's control API. Real-time paths never
// return these — they can't allocate a string — they set counters and
// stream state instead.
var (
	ErrInvalidInterface    = errors.New("ravennakit: invalid interface address")
	ErrNoSlotAvailable     = errors.New("ravennakit: no reader/socket slot available")
	ErrParametersUnchanged = errors.New("ravennakit: parameters unchanged")
	ErrBufferTooSmall      = errors.New("ravennakit: buffer smaller than requested read")
)

// Rank identifies a stream's position in a redundant set. Primary is 1,
// secondary 2, and so on; all ranks of one redundant set carry identical
// payload for the same RtpTimestamp and converge on the same ring.
type Rank uint8

const (
	RankPrimary   Rank = 1
	RankSecondary Rank = 2
)

// Session identifies an RTP/RTCP endpoint pair. Two sessions that share
// Address and RtpPort are duplicates for socket binding purposes — the
// multiplexer opens one socket per (Address, RtpPort), not per session.
type Session struct {
	Address netip.Addr
	RtpPort uint16
	RtcpPort uint16
}

func (s Session) Valid() bool {
	return s.Address.IsValid() && s.RtpPort != 0
}

func (s Session) String() string {
	return fmt.Sprintf("%s:%d/%d", s.Address, s.RtpPort, s.RtcpPort)
}

// FilterMode selects whether Filter.Source, when present, is required or
// forbidden.
type FilterMode int

const (
	FilterInclude FilterMode = iota
	FilterExclude
)

// Filter restricts which datagrams a Stream accepts by destination and,
// optionally, source address.
type Filter struct {
	Destination netip.Addr
	Source      netip.Addr // zero value (IsValid()==false) means "any source"
	Mode        FilterMode
}

// IsValidSource reports whether a datagram addressed to dst from src
// matches this filter.
func (f Filter) IsValidSource(dst, src netip.Addr) bool {
	if f.Destination.IsValid() && dst != f.Destination {
		return false
	}
	if !f.Source.IsValid() {
		return true
	}
	matches := src == f.Source
	if f.Mode == FilterExclude {
		return !matches
	}
	return matches
}

// Stream describes one leg of a (possibly redundant) RTP source a Receiver
// subscribes to.
type Stream struct {
	Session          Session
	Filter           Filter
	Rank             Rank
	PacketTimeFrames uint16
}

// Parameters fully describes what a Receiver reconstructs: the wire audio
// format shared by every stream, and the ordered list of streams (legs of
// one or more redundant sets) to subscribe to.
type Parameters struct {
	AudioFormat audioformat.Format
	Streams     []Stream
}

// Equal reports whether two Parameters describe the same configuration.
// SetParameters uses this to reject a no-op call with ErrParametersUnchanged
// rather than churning sockets and buffers for nothing.
func (p Parameters) Equal(other Parameters) bool {
	if p.AudioFormat != other.AudioFormat {
		return false
	}
	if len(p.Streams) != len(other.Streams) {
		return false
	}
	for i := range p.Streams {
		if p.Streams[i] != other.Streams[i] {
			return false
		}
	}
	return true
}

// State is a per-stream lifecycle state.
type State int

const (
	StateIdle State = iota
	StateWaitingForData
	StateOk
	StateOkNoConsumer
	StateInactive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaitingForData:
		return "waiting_for_data"
	case StateOk:
		return "ok"
	case StateOkNoConsumer:
		return "ok_no_consumer"
	case StateInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// maxPacketPayload bounds an IntermediatePacket's data so the per-stream
// FIFO never allocates: it is sized to the largest RTP payload a 1500-byte
// Ethernet MTU can carry after IP/UDP/RTP headers.
const maxPacketPayload = 1460

// IntermediatePacket is the datum handed from the network goroutine to the
// real-time audio thread through a per-stream SPSC queue.
type IntermediatePacket struct {
	Timestamp        wrapping.U32
	Seq              wrapping.U16
	DataLen          uint16
	PacketTimeFrames uint16
	Data             [maxPacketPayload]byte
}

// Payload returns the occupied portion of Data.
func (p *IntermediatePacket) Payload() []byte { return p.Data[:p.DataLen] }
