// Command worker runs component C: it registers with the coordinator,
// waits for its region assignment, and then serves DATA and REQUEST frames
// for the rest of the run, per spec.md 4.C's lifecycle.
package main

import (
	"flag"
	"log"
	"net"
	"time"

	"github.com/mwindels/turtlemesh/internal/mesh"
	"github.com/mwindels/turtlemesh/internal/netlink"
	"github.com/mwindels/turtlemesh/internal/region"
	"github.com/mwindels/turtlemesh/internal/turtle"
	"github.com/mwindels/turtlemesh/internal/wire"
)

func main() {
	var (
		id          = flag.Int("id", 0, "this worker's node id, 1..N, baked in at launch per spec.md 6")
		coordAddr   = flag.String("coordinator", "127.0.0.1:8000", "coordinator's registration/routing address")
		listenAddr  = flag.String("listen", ":0", "local address to bind (ephemeral by default)")
		timeout     = flag.Duration("timeout", 200*time.Millisecond, "reliable-send timeout per attempt")
		retries     = flag.Int("retries", 5, "reliable-send retry limit")
		idleTimeout = flag.Duration("idle-timeout", 0, "if nonzero, exit after this long without an inbound frame")
	)
	flag.Parse()

	if *id < 1 {
		log.Fatalln("Improper parameters.  This program requires:\n\t-id, a positive node id baked in at launch")
	}

	coord, err := net.ResolveUDPAddr("udp", *coordAddr)
	if err != nil {
		log.Fatalf("Could not resolve coordinator address %q: %v.\n", *coordAddr, err)
	}

	local, err := net.ResolveUDPAddr("udp", *listenAddr)
	if err != nil {
		log.Fatalf("Could not resolve listen address %q: %v.\n", *listenAddr, err)
	}
	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		log.Fatalf("Could not bind %q: %v.\n", *listenAddr, err)
	}
	defer conn.Close()
	endpoint := netlink.NewEndpoint(conn)

	log.Printf("Node %d registering with coordinator at %s...\n", *id, coord)
	if _, _, err := endpoint.SendReliable(coord, wire.Frame{Type: wire.MsgRegister, NodeID: uint8(*id), Payload: wire.RegisterPayload{}}, wire.MsgAck, *timeout, *retries); err != nil {
		log.Fatalf("Could not register with coordinator: %v.\n", err)
	}

	log.Println("Registered; awaiting region assignment...")
	var (
		renderer *region.Renderer
		rgn      mesh.Region
	)
	for renderer == nil {
		f, from, err := endpoint.Receive(0)
		if err != nil {
			log.Fatalf("Receive failed while awaiting assignment: %v.\n", err)
		}
		if f.Type != wire.MsgAssign {
			continue // anything but ASSIGN is ignored before the region is known
		}

		p, ok := f.Payload.(wire.AssignPayload)
		if !ok {
			continue
		}
		rgn = mesh.Region{RX: int(p.RX), RY: int(p.RY), Tile: int(p.Width)}
		renderer = region.NewRenderer(rgn, int(p.AngleDeg))

		if err := endpoint.Reply(from, wire.Frame{Type: wire.MsgAck, NodeID: uint8(*id), Payload: wire.AckPayload{}}); err != nil {
			log.Printf("Could not ACK ASSIGN: %v.\n", err)
		}
		log.Printf("Assigned region (%d,%d) size %d, angle %d.\n", rgn.RX, rgn.RY, rgn.Tile, p.AngleDeg)
	}

	log.Println("Serving...")
	for {
		f, from, err := endpoint.Receive(*idleTimeout)
		if err != nil {
			if *idleTimeout > 0 {
				log.Printf("Idle for %s; exiting.\n", *idleTimeout)
				return
			}
			log.Fatalf("Receive failed: %v.\n", err)
		}

		switch f.Type {
		case wire.MsgAssign:
			// Idempotent replay of an earlier ASSIGN; region state is
			// already set, so just re-ACK per spec.md 4.B.
			if err := endpoint.Reply(from, wire.Frame{Type: wire.MsgAck, NodeID: uint8(*id), Payload: wire.AckPayload{}}); err != nil {
				log.Printf("Could not ACK duplicate ASSIGN: %v.\n", err)
			}

		case wire.MsgData:
			p, ok := f.Payload.(wire.DataPayload)
			if !ok {
				continue
			}
			nx, ny, nh, consumed := renderer.Draw(float64(p.X), float64(p.Y), turtle.Heading(p.Heading), p.Symbols)
			reply := wire.Frame{Type: wire.MsgHandover, NodeID: uint8(*id), Payload: wire.HandoverPayload{
				X: float32(nx), Y: float32(ny), Heading: float32(nh), Consumed: uint16(consumed),
			}}
			if err := endpoint.Reply(from, reply); err != nil {
				log.Printf("Could not reply HANDOVER: %v.\n", err)
			}

		case wire.MsgRequest:
			p, ok := f.Payload.(wire.RequestPayload)
			if !ok || int(p.Row) >= rgn.Tile {
				continue
			}
			reply := wire.Frame{Type: wire.MsgResponse, NodeID: uint8(*id), Payload: wire.ResponsePayload{Cells: renderer.Row(int(p.Row))}}
			if err := endpoint.Reply(from, reply); err != nil {
				log.Printf("Could not reply RESPONSE: %v.\n", err)
			}

		case wire.MsgRegister:
			// A replayed REGISTER after this worker already joined; ACK
			// idempotently per spec.md 4.B, coordinator-side duplicate
			// handling mirrors this.
			if err := endpoint.Reply(from, wire.Frame{Type: wire.MsgAck, NodeID: uint8(*id), Payload: wire.AckPayload{}}); err != nil {
				log.Printf("Could not ACK duplicate REGISTER: %v.\n", err)
			}

		default:
			// Anything else is dropped silently, indistinguishable from
			// loss, per spec.md 7.
		}
	}
}
