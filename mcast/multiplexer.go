// Package mcast implements the multicast UDP socket multiplexer: one
// reactor per (bind address, port) pair shared by every reader that needs
// it, reference-counted group membership, and destination-address-aware
// dispatch to each subscriber whose filter matches a received datagram.
package mcast

import (
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNoInterface is returned by Subscribe when ifaceName does not name a
// usable network interface.
var ErrNoInterface = errors.New("mcast: no such interface")

// Key identifies a socket by its bound local address and port.
type Key struct {
	BindAddr netip.Addr
	Port     uint16
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.BindAddr, k.Port)
}

// PacketSink receives datagrams dispatched by a Multiplexer.
type PacketSink interface {
	OnPacket(payload []byte, src, dst netip.AddrPort, recvTime time.Time)
}

// Multiplexer owns a reactor goroutine per distinct (bind address, port)
// pair and fans incoming datagrams out to every subscribed PacketSink
// whose optional filter accepts the datagram's source/destination.
type Multiplexer struct {
	log zerolog.Logger

	mu      sync.Mutex
	sockets map[Key]*socket
	g       *errgroup.Group
}

// NewMultiplexer returns an empty Multiplexer. Sockets are created lazily
// on first Subscribe.
func NewMultiplexer(log zerolog.Logger) *Multiplexer {
	return &Multiplexer{
		log:     log.With().Str("component", "mcast.Multiplexer").Logger(),
		sockets: make(map[Key]*socket),
		g:       &errgroup.Group{},
	}
}

// Subscription is returned by Subscribe and releases the subscription,
// leaving any multicast group and closing the underlying socket if this
// was the last reference to either.
type Subscription struct {
	mux       *Multiplexer
	key       Key
	sink      PacketSink
	group     netip.Addr
	ifaceName string
	hasGroup  bool
}

// Unsubscribe removes the sink from dispatch and releases its multicast
// group membership and socket reference.
func (s *Subscription) Unsubscribe() error {
	return s.mux.unsubscribe(s)
}

// Subscribe registers sink to receive datagrams arriving on
// (bindAddr, port), optionally joining a multicast group on ifaceName
// first. filter, if non-nil, is consulted for every datagram before sink
// is invoked; a nil filter accepts everything on the socket.
func (m *Multiplexer) Subscribe(
	sink PacketSink,
	bindAddr netip.Addr,
	port uint16,
	group netip.Addr,
	ifaceName string,
	filter func(src, dst netip.AddrPort) bool,
) (*Subscription, error) {
	key := Key{BindAddr: bindAddr, Port: port}

	m.mu.Lock()
	sock, ok := m.sockets[key]
	if !ok {
		var err error
		sock, err = newSocket(key, m.log)
		if err != nil {
			m.mu.Unlock()
			return nil, fmt.Errorf("mcast: opening socket %s: %w", key, err)
		}
		m.sockets[key] = sock
		sock.run(m.g)
	}
	m.mu.Unlock()

	hasGroup := group.IsValid() && group.IsMulticast()
	if hasGroup {
		if err := sock.joinGroup(group, ifaceName); err != nil {
			if sock.idle() {
				m.mu.Lock()
				delete(m.sockets, key)
				m.mu.Unlock()
				_ = sock.close()
			}
			return nil, fmt.Errorf("mcast: joining group %s on %s: %w", group, ifaceName, err)
		}
	}

	sock.addSink(subscription{sink: sink, filter: filter})

	return &Subscription{
		mux:       m,
		key:       key,
		sink:      sink,
		group:     group,
		ifaceName: ifaceName,
		hasGroup:  hasGroup,
	}, nil
}

func (m *Multiplexer) unsubscribe(s *Subscription) error {
	m.mu.Lock()
	sock, ok := m.sockets[s.key]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	remaining := sock.removeSink(s.sink)

	var groupErr error
	if s.hasGroup {
		groupErr = sock.leaveGroup(s.group, s.ifaceName)
	}

	if remaining == 0 {
		m.mu.Lock()
		delete(m.sockets, s.key)
		m.mu.Unlock()
		if err := sock.close(); err != nil {
			return err
		}
	}

	return groupErr
}

// Close shuts down every socket the multiplexer owns and waits for their
// reactor goroutines to exit.
func (m *Multiplexer) Close() error {
	m.mu.Lock()
	sockets := make([]*socket, 0, len(m.sockets))
	for k, s := range m.sockets {
		sockets = append(sockets, s)
		delete(m.sockets, k)
	}
	m.mu.Unlock()

	var firstErr error
	for _, s := range sockets {
		if err := s.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := m.g.Wait(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
