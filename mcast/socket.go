package mcast

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/ipv4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/owllab/ravennakit/platform"
)

// maxBurstPerWake bounds how many datagrams the reactor drains from one
// socket before yielding back to the scheduler, so one very chatty stream
// cannot starve the others sharing the multiplexer's goroutine pool.
const maxBurstPerWake = 10

const maxDatagramSize = 1500

// subscription pairs a sink with the predicate that decides whether a
// given datagram is addressed to it.
type subscription struct {
	sink   PacketSink
	filter func(src, dst netip.AddrPort) bool
}

// groupKey identifies one multicast group join on one interface.
type groupKey struct {
	group netip.Addr
	iface string
}

// socket owns one bound UDP endpoint shared by every reader subscribed to
// its (bind address, port) pair. It lives from the first subscription to
// the last, per spec.
type socket struct {
	key  Key
	log  zerolog.Logger
	conn *ipv4.PacketConn
	raw  net.PacketConn

	groups *membership[groupKey]

	mu   sync.Mutex
	subs []subscription

	closeOnce sync.Once
	closed    chan struct{}
}

func newSocket(key Key, log zerolog.Logger) (*socket, error) {
	lc := net.ListenConfig{Control: setReuseAddr}
	conn, err := lc.ListenPacket(context.Background(), "udp4", net.JoinHostPort(key.BindAddr.String(), strconv.Itoa(int(key.Port))))
	if err != nil {
		return nil, err
	}

	pconn := ipv4.NewPacketConn(conn)
	if platform.SupportsDestAddrDelivery() {
		if err := pconn.SetControlMessage(ipv4.FlagDst|ipv4.FlagInterface, true); err != nil {
			_ = conn.Close()
			return nil, err
		}
	} else {
		log.Warn().Str("bind", key.String()).Msg("kernel does not support destination-address delivery; wildcard binds cannot disambiguate interface")
	}

	s := &socket{
		key:    key,
		log:    log.With().Str("component", "mcast.socket").Str("bind", key.String()).Logger(),
		conn:   pconn,
		raw:    conn,
		groups: newMembership[groupKey](),
		closed: make(chan struct{}),
	}
	return s, nil
}

func (s *socket) addSink(sub subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
}

// idle reports whether the socket has no sinks and no group memberships,
// i.e. it is safe to close.
func (s *socket) idle() bool {
	s.mu.Lock()
	n := len(s.subs)
	s.mu.Unlock()
	return n == 0 && s.groups.total() == 0
}

// removeSink drops sink from the dispatch list and reports how many
// subscribers remain.
func (s *socket) removeSink(sink PacketSink) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.subs[:0]
	for _, sub := range s.subs {
		if sub.sink != sink {
			kept = append(kept, sub)
		}
	}
	s.subs = kept
	return len(s.subs)
}

func (s *socket) joinGroup(group netip.Addr, ifaceName string) error {
	key := groupKey{group: group, iface: ifaceName}
	if !s.groups.join(key) {
		return nil
	}

	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		s.groups.leave(key)
		return fmt.Errorf("%w: %q: %v", ErrNoInterface, ifaceName, err)
	}

	if err := s.conn.JoinGroup(iface, &net.UDPAddr{IP: group.AsSlice()}); err != nil {
		s.groups.leave(key)
		return err
	}
	return nil
}

func (s *socket) leaveGroup(group netip.Addr, ifaceName string) error {
	key := groupKey{group: group, iface: ifaceName}
	if !s.groups.leave(key) {
		return nil
	}

	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return err
	}
	return s.conn.LeaveGroup(iface, &net.UDPAddr{IP: group.AsSlice()})
}

// run is the reactor loop: it blocks waiting for readability, then drains
// up to maxBurstPerWake datagrams before returning to the blocking wait.
func (s *socket) run(g *errgroup.Group) {
	g.Go(func() error {
		buf := make([]byte, maxDatagramSize)
		for {
			if err := s.raw.SetReadDeadline(time.Time{}); err != nil {
				s.log.Debug().Err(err).Msg("failed to clear read deadline")
			}
			n, cm, src, err := s.conn.ReadFrom(buf)
			if err != nil {
				if s.isShutdown(err) {
					return nil
				}
				s.log.Warn().Err(err).Msg("read error on multicast socket")
				continue
			}
			s.dispatch(buf[:n], cm, src)

			for i := 1; i < maxBurstPerWake; i++ {
				if err := s.raw.SetReadDeadline(time.Now()); err != nil {
					break
				}
				n, cm, src, err := s.conn.ReadFrom(buf)
				if err != nil {
					if s.isShutdown(err) {
						return nil
					}
					break // no more datagrams ready right now
				}
				s.dispatch(buf[:n], cm, src)
			}
		}
	})
}

func (s *socket) isShutdown(err error) bool {
	select {
	case <-s.closed:
		return true
	default:
	}
	return errors.Is(err, net.ErrClosed)
}

func (s *socket) dispatch(payload []byte, cm *ipv4.ControlMessage, src net.Addr) {
	udpSrc, ok := src.(*net.UDPAddr)
	if !ok {
		return
	}
	srcAddr, ok := netip.AddrFromSlice(udpSrc.IP)
	if !ok {
		return
	}
	srcPort := uint16(udpSrc.Port)

	var dstAddr netip.Addr
	if cm != nil {
		if a, ok := netip.AddrFromSlice(cm.Dst); ok {
			dstAddr = a
		}
	}

	s.mu.Lock()
	subs := append([]subscription(nil), s.subs...)
	s.mu.Unlock()

	srcEndpoint := netip.AddrPortFrom(srcAddr.Unmap(), srcPort)
	dstEndpoint := netip.AddrPortFrom(dstAddr.Unmap(), s.key.Port)

	now := time.Now()
	for _, sub := range subs {
		if sub.filter != nil && !sub.filter(srcEndpoint, dstEndpoint) {
			continue
		}
		sub.sink.OnPacket(payload, srcEndpoint, dstEndpoint, now)
	}
}

func (s *socket) close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.raw.Close()
	})
	return err
}

func setReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	if err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}); err != nil {
		return err
	}
	return sockErr
}
