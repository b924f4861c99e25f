// Package netlink wraps a UDP socket with the stop-and-wait reliability
// scheme described by the wire protocol: at most one outstanding request per
// peer, bounded retries, and a hard timeout per attempt.
package netlink

import (
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/mwindels/turtlemesh/internal/wire"
)

// maxFrame bounds the fixed receive buffer.  It comfortably covers the
// largest DATA frame the reference chunk-size range (1..50) can produce,
// plus header and checksum.
const maxFrame = 2048

// ErrUnreachable is returned by SendReliable once retries are exhausted
// without a matching reply.
var ErrUnreachable = errors.New("netlink: peer unreachable")

// Endpoint is a single UDP socket used by exactly one goroutine at a time.
// It owns one fixed-size receive buffer, per the resource model: no
// per-request allocation is needed to receive a datagram.
type Endpoint struct {
	conn *net.UDPConn
	buf  []byte

	// OnAttempt, if set, is called once per transmission attempt inside
	// SendReliable (including the first), letting a caller track retry
	// counts without this package depending on a metrics library.
	OnAttempt func()
}

// NewEndpoint wraps an already-bound UDP connection.
func NewEndpoint(conn *net.UDPConn) *Endpoint {
	return &Endpoint{conn: conn, buf: make([]byte, maxFrame)}
}

// LocalAddr returns the endpoint's bound address.
func (e *Endpoint) LocalAddr() *net.UDPAddr {
	return e.conn.LocalAddr().(*net.UDPAddr)
}

// Close releases the underlying socket.
func (e *Endpoint) Close() error {
	return e.conn.Close()
}

// drain discards any datagrams already queued on the socket.  It must run
// before SendReliable so a reply to some earlier, already-abandoned request
// can't be mistaken for the reply to this one.
func (e *Endpoint) drain() {
	_ = e.conn.SetReadDeadline(time.Now())
	for {
		if _, _, err := e.conn.ReadFromUDP(e.buf); err != nil {
			break
		}
	}
	_ = e.conn.SetReadDeadline(time.Time{})
}

// SendReliable transmits f to peer and waits for a reply of type expect,
// retrying on timeout, malformed replies, or replies of the wrong type.
// After retries attempts with no match, it returns ErrUnreachable.
func (e *Endpoint) SendReliable(peer *net.UDPAddr, f wire.Frame, expect wire.MsgType, timeout time.Duration, retries int) (wire.Frame, *net.UDPAddr, error) {
	e.drain()
	encoded := wire.Encode(f)

	for attempt := 0; attempt < retries; attempt++ {
		if e.OnAttempt != nil {
			e.OnAttempt()
		}

		if _, err := e.conn.WriteToUDP(encoded, peer); err != nil {
			return wire.Frame{}, nil, errors.Wrap(err, "netlink: write")
		}

		if err := e.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return wire.Frame{}, nil, errors.Wrap(err, "netlink: set deadline")
		}

		n, from, err := e.conn.ReadFromUDP(e.buf)
		if err != nil {
			continue // timeout or transient read error: retry
		}

		reply, err := wire.Decode(e.buf[:n])
		if err != nil || reply.Type != expect {
			continue // malformed or unexpected type: retry per spec.md 4.B
		}

		return reply, from, nil
	}

	return wire.Frame{}, nil, ErrUnreachable
}

// Receive blocks (optionally up to timeout, or indefinitely if timeout is
// zero) for the next well-formed frame.  Malformed datagrams are dropped
// silently and do not count against the wait.
func (e *Endpoint) Receive(timeout time.Duration) (wire.Frame, *net.UDPAddr, error) {
	for {
		if timeout > 0 {
			if err := e.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				return wire.Frame{}, nil, errors.Wrap(err, "netlink: set deadline")
			}
		} else {
			if err := e.conn.SetReadDeadline(time.Time{}); err != nil {
				return wire.Frame{}, nil, errors.Wrap(err, "netlink: clear deadline")
			}
		}

		n, from, err := e.conn.ReadFromUDP(e.buf)
		if err != nil {
			return wire.Frame{}, nil, err
		}

		f, err := wire.Decode(e.buf[:n])
		if err != nil {
			continue // dropped silently, indistinguishable from loss
		}

		return f, from, nil
	}
}

// Reply sends f to peer without waiting for an acknowledgement.  Used by a
// passive endpoint (a worker, or the coordinator during registration) to
// answer a request it just received.
func (e *Endpoint) Reply(peer *net.UDPAddr, f wire.Frame) error {
	_, err := e.conn.WriteToUDP(wire.Encode(f), peer)
	return errors.Wrap(err, "netlink: reply")
}
