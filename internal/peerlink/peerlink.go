// Package peerlink implements the UDP telemetry link between satellites and
// the hub. Sends are fire-and-forget: no acknowledgment, no retry, no
// delivery guarantee — the sender's periodic cadence is the retry mechanism.
package peerlink

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/net/ipv4"

	"rssimon/internal/telemetry"
)

// Handler receives one well-formed payload from the link's read loop. The
// payload is always exactly telemetry.RecordSize bytes; anything else is
// dropped before the handler runs. Handlers must not block: they run on the
// link's single delivery goroutine.
type Handler func(sender *net.UDPAddr, payload []byte)

// Link is one endpoint of the telemetry channel. The port acts as the shared
// channel number and must match across all participants.
type Link struct {
	conn  *net.UDPConn
	group *net.UDPAddr
	log   zerolog.Logger

	mu      sync.RWMutex
	peers   map[string]*net.UDPAddr
	handler Handler

	recvOnce sync.Once
}

// Dial opens a send-side link on an ephemeral local port. The group address
// is used by SendGroup when no unicast peer is registered.
func Dial(ifaceName, group string, port int, log zerolog.Logger) (*Link, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("opening UDP socket: %w", err)
	}

	groupAddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", group, port))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("resolving group address: %w", err)
	}

	if ifaceName != "" {
		iface, err := net.InterfaceByName(ifaceName)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("finding interface %s: %w", ifaceName, err)
		}
		pc := ipv4.NewPacketConn(conn)
		if err := pc.SetMulticastInterface(iface); err != nil {
			log.Warn().Err(err).Msg("Failed to set multicast interface")
		}
		if err := pc.SetMulticastTTL(1); err != nil {
			log.Warn().Err(err).Msg("Failed to set multicast TTL")
		}
	}

	if err := conn.SetWriteBuffer(4096); err != nil {
		log.Warn().Err(err).Msg("Failed to set write buffer")
	}

	return &Link{
		conn:  conn,
		group: groupAddr,
		log:   log,
		peers: make(map[string]*net.UDPAddr),
	}, nil
}

// Listen opens a receive-side link bound to the channel port. It joins the
// multicast group so group sends arrive alongside unicast ones; no peer
// pre-registration is needed to receive.
func Listen(ifaceName, group string, port int, log zerolog.Logger) (*Link, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: port})
	if err != nil {
		return nil, fmt.Errorf("listening on UDP port %d: %w", port, err)
	}

	groupAddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", group, port))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("resolving group address: %w", err)
	}

	var iface *net.Interface
	if ifaceName != "" {
		iface, err = net.InterfaceByName(ifaceName)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("finding interface %s: %w", ifaceName, err)
		}
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.JoinGroup(iface, &net.UDPAddr{IP: groupAddr.IP}); err != nil {
		log.Warn().Err(err).Str("group", group).Msg("Failed to join multicast group, unicast only")
	}

	if err := conn.SetReadBuffer(telemetry.RecordSize * 64); err != nil {
		log.Warn().Err(err).Msg("Failed to set read buffer")
	}

	return &Link{
		conn:  conn,
		group: groupAddr,
		log:   log,
		peers: make(map[string]*net.UDPAddr),
	}, nil
}

// AddPeer binds a peer's hardware address to its UDP endpoint. A peer must
// be registered before the first Send to it. The endpoint may omit the port,
// in which case the channel port is used.
func (l *Link) AddPeer(mac, endpoint string) error {
	if !telemetry.ValidAddr(mac) {
		return fmt.Errorf("peer address %q not in canonical form", mac)
	}

	if _, _, err := net.SplitHostPort(endpoint); err != nil {
		endpoint = fmt.Sprintf("%s:%d", endpoint, l.group.Port)
	}
	addr, err := net.ResolveUDPAddr("udp4", endpoint)
	if err != nil {
		return fmt.Errorf("resolving peer endpoint %s: %w", endpoint, err)
	}

	l.mu.Lock()
	l.peers[mac] = addr
	l.mu.Unlock()

	l.log.Info().Str("peer", mac).Str("endpoint", addr.String()).Msg("Peer registered")
	return nil
}

// Send transmits one payload to a registered peer, fire-and-forget.
func (l *Link) Send(mac string, payload []byte) error {
	l.mu.RLock()
	addr, ok := l.peers[mac]
	l.mu.RUnlock()
	if !ok {
		return fmt.Errorf("peer %s not registered", mac)
	}

	if _, err := l.conn.WriteToUDP(payload, addr); err != nil {
		return fmt.Errorf("writing to %s: %w", addr, err)
	}

	l.log.Debug().Str("peer", mac).Int("bytes", len(payload)).Msg("Payload sent")
	return nil
}

// SendGroup transmits one payload to the multicast group. Used when the
// hub's unicast endpoint is not configured.
func (l *Link) SendGroup(payload []byte) error {
	if _, err := l.conn.WriteToUDP(payload, l.group); err != nil {
		return fmt.Errorf("writing to group %s: %w", l.group, err)
	}

	l.log.Debug().Str("group", l.group.String()).Int("bytes", len(payload)).Msg("Payload sent to group")
	return nil
}

// OnReceive registers the single delivery handler and starts the read loop.
// Datagrams whose size is not exactly telemetry.RecordSize are dropped
// before the handler is invoked.
func (l *Link) OnReceive(h Handler) {
	l.mu.Lock()
	l.handler = h
	l.mu.Unlock()

	l.recvOnce.Do(func() {
		go l.readLoop()
	})
}

func (l *Link) readLoop() {
	buf := make([]byte, 2048)
	for {
		n, src, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			l.log.Error().Err(err).Msg("Error reading from UDP")
			continue
		}

		if n != telemetry.RecordSize {
			l.log.Debug().
				Str("src", src.String()).
				Int("bytes", n).
				Msg("Dropping payload with unexpected size")
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])

		l.mu.RLock()
		h := l.handler
		l.mu.RUnlock()
		if h != nil {
			h(src, payload)
		}
	}
}

// LocalAddr returns the link's bound UDP address.
func (l *Link) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}

// Close shuts the link down and ends the read loop.
func (l *Link) Close() error {
	return l.conn.Close()
}
