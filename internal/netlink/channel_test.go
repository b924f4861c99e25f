package netlink

import (
	"net"
	"testing"
	"time"

	"github.com/mwindels/turtlemesh/internal/wire"
)

func newLoopbackEndpoint(t *testing.T) *Endpoint {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewEndpoint(conn)
}

func TestSendReliableRoundTrip(t *testing.T) {
	a := newLoopbackEndpoint(t)
	b := newLoopbackEndpoint(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		f, from, err := b.Receive(time.Second)
		if err != nil {
			t.Errorf("Receive: %v", err)
			return
		}
		if f.Type != wire.MsgRegister {
			t.Errorf("got type %v, want REGISTER", f.Type)
		}
		if err := b.Reply(from, wire.Frame{Type: wire.MsgAck, NodeID: 1, Payload: wire.AckPayload{}}); err != nil {
			t.Errorf("Reply: %v", err)
		}
	}()

	reply, _, err := a.SendReliable(b.LocalAddr(), wire.Frame{Type: wire.MsgRegister, NodeID: 1, Payload: wire.RegisterPayload{}}, wire.MsgAck, 200*time.Millisecond, 5)
	if err != nil {
		t.Fatalf("SendReliable: %v", err)
	}
	if reply.Type != wire.MsgAck {
		t.Fatalf("got %v, want ACK", reply.Type)
	}

	<-done
}

func TestSendReliableUnreachable(t *testing.T) {
	a := newLoopbackEndpoint(t)

	// No listener: every attempt times out and retries are exhausted.
	unused, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	addr := unused.LocalAddr().(*net.UDPAddr)
	unused.Close()

	_, _, err = a.SendReliable(addr, wire.Frame{Type: wire.MsgRegister, NodeID: 1, Payload: wire.RegisterPayload{}}, wire.MsgAck, 20*time.Millisecond, 3)
	if err != ErrUnreachable {
		t.Fatalf("got %v, want ErrUnreachable", err)
	}
}

func TestSendReliableRetriesPastWrongType(t *testing.T) {
	a := newLoopbackEndpoint(t)
	b := newLoopbackEndpoint(t)

	attempts := 0
	go func() {
		for {
			_, from, err := b.Receive(2 * time.Second)
			if err != nil {
				return
			}
			attempts++
			if attempts == 1 {
				// Reply with the wrong type once; the sender must retry.
				b.Reply(from, wire.Frame{Type: wire.MsgRegister, NodeID: 1, Payload: wire.RegisterPayload{}})
				continue
			}
			b.Reply(from, wire.Frame{Type: wire.MsgAck, NodeID: 1, Payload: wire.AckPayload{}})
			return
		}
	}()

	reply, _, err := a.SendReliable(b.LocalAddr(), wire.Frame{Type: wire.MsgAssign, NodeID: 1, Payload: wire.AssignPayload{}}, wire.MsgAck, 100*time.Millisecond, 5)
	if err != nil {
		t.Fatalf("SendReliable: %v", err)
	}
	if reply.Type != wire.MsgAck {
		t.Fatalf("got %v, want ACK", reply.Type)
	}
}

func TestDrainDiscardsStaleDatagram(t *testing.T) {
	a := newLoopbackEndpoint(t)
	b := newLoopbackEndpoint(t)

	// Send a stale, unsolicited frame from b to a before a ever calls
	// SendReliable.
	if err := b.Reply(a.LocalAddr(), wire.Frame{Type: wire.MsgAck, NodeID: 9, Payload: wire.AckPayload{}}); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	go func() {
		f, from, err := b.Receive(time.Second)
		if err != nil {
			t.Errorf("Receive: %v", err)
			return
		}
		b.Reply(from, wire.Frame{Type: wire.MsgAck, NodeID: f.NodeID, Payload: wire.AckPayload{}})
	}()

	reply, _, err := a.SendReliable(b.LocalAddr(), wire.Frame{Type: wire.MsgRegister, NodeID: 2, Payload: wire.RegisterPayload{}}, wire.MsgAck, 200*time.Millisecond, 5)
	if err != nil {
		t.Fatalf("SendReliable: %v", err)
	}
	if reply.NodeID != 2 {
		t.Fatalf("got NodeID %d, want 2 (stale NodeID 9 frame should have been drained)", reply.NodeID)
	}
}
