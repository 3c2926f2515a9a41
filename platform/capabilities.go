package platform

import (
	"net"
	"sync"

	"golang.org/x/net/ipv4"
)

var (
	destAddrOnce     sync.Once
	destAddrDelivery bool
)

// SupportsDestAddrDelivery reports whether the kernel can tell a UDP socket
// which local address a datagram arrived on (IP_PKTINFO on Linux,
// IP_RECVDSTADDR on BSD/Darwin). golang.org/x/net/ipv4 abstracts the
// setsockopt call itself; what varies is whether the platform honors it at
// all, so this probes once by opening a throwaway socket and asking for
// FlagDst control messages.
//
// mcast uses this to decide whether to request destination-address control
// messages on a socket; when it answers false, mcast logs a warning and
// dispatches datagrams without a destination address.
func SupportsDestAddrDelivery() bool {
	destAddrOnce.Do(func() {
		conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
		if err != nil {
			return
		}
		defer conn.Close()

		pconn := ipv4.NewPacketConn(conn)
		destAddrDelivery = pconn.SetControlMessage(ipv4.FlagDst, true) == nil
	})
	return destAddrDelivery
}
