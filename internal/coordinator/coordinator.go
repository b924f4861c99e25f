// Package coordinator implements the router (component D): the
// registration barrier, region assignment, the streaming simulation loop
// that routes word slices to whichever worker currently owns the cursor,
// and final sub-grid collection.
package coordinator

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/mwindels/turtlemesh/internal/canvas"
	"github.com/mwindels/turtlemesh/internal/mesh"
	"github.com/mwindels/turtlemesh/internal/netlink"
	"github.com/mwindels/turtlemesh/internal/sensor"
	"github.com/mwindels/turtlemesh/internal/turtle"
	"github.com/mwindels/turtlemesh/internal/wire"
)

// Config bundles the knobs a deployment sets once at startup.
type Config struct {
	Layout    mesh.Layout
	NumNodes  int
	AngleDeg  int
	ChunkSize int // reference range: 1..50, see spec.md 4.D Phase 4 step 2
	Timeout   time.Duration
	Retries   int

	// SkipUnreachableData selects the Phase 4 policy from spec.md 7 for a
	// worker that goes unreachable mid-simulation: true skips the lost
	// chunk and continues (the reference choice for slow/embedded peers),
	// false aborts the run.
	SkipUnreachableData bool
}

// Cursor is the coordinator-owned turtle state (spec.md 3): mutated
// exclusively in response to a HANDOVER, frozen once Index reaches the
// word's length.
type Cursor struct {
	X, Y    float64
	Heading turtle.Heading
	Index   int
}

// Coordinator drives the three (five, counting the optional sensor seed and
// splitting registration/assignment) phases of a run. It is single
// threaded: every method here is meant to be called from the one goroutine
// running the router loop, per spec.md 5.
type Coordinator struct {
	endpoint *netlink.Endpoint
	cfg      Config
	nodes    *NodeTable
	metrics  *Metrics
}

// New builds a coordinator bound to endpoint. If metrics is nil, a fresh,
// unexposed Metrics is created so callers who don't care about the
// -metrics-addr listener don't have to wire one up themselves.
func New(endpoint *netlink.Endpoint, cfg Config, metrics *Metrics) *Coordinator {
	if metrics == nil {
		metrics = NewMetrics()
	}
	endpoint.OnAttempt = func() { metrics.SendAttempts.Inc() }

	return &Coordinator{endpoint: endpoint, cfg: cfg, nodes: NewNodeTable(), metrics: metrics}
}

// Nodes exposes the node table for inspection (used by cmd/coordinator's
// progress logging and by tests).
func (c *Coordinator) Nodes() *NodeTable {
	return c.nodes
}

// RegisterBarrier implements Phase 1: it blocks until exactly
// cfg.NumNodes distinct node ids have registered, ACKing every REGISTER
// (including replays of an already-registered id, which are idempotent).
func (c *Coordinator) RegisterBarrier() error {
	for c.nodes.Count() < c.cfg.NumNodes {
		f, from, err := c.endpoint.Receive(0)
		if err != nil {
			return errors.Wrap(err, "coordinator: registration barrier")
		}
		if f.Type != wire.MsgRegister {
			continue // anything but REGISTER is ignored while the barrier is open
		}

		id := int(f.NodeID)
		region := c.cfg.Layout.RegionForNode(id)
		if c.nodes.Register(id, from, region) {
			log.Printf("Node %d registered from %s, region (%d,%d).\n", id, from, region.RX, region.RY)
		}

		if err := c.endpoint.Reply(from, wire.Frame{Type: wire.MsgAck, Payload: wire.AckPayload{}}); err != nil {
			log.Printf("Could not ACK REGISTER from node %d: %v.\n", id, err)
		}
	}

	c.metrics.WorkersActive.Set(float64(len(c.nodes.Active())))
	return nil
}

// AssignRegions implements Phase 2: each registered node is reliably sent
// its region and turn angle. A node that fails after all retries is marked
// inactive and the run continues degraded, per spec.md 4.D Phase 2.
func (c *Coordinator) AssignRegions() {
	for id := 1; id <= c.cfg.NumNodes; id++ {
		rec, ok := c.nodes.Get(id)
		if !ok {
			continue
		}

		payload := wire.AssignPayload{
			RX: uint8(rec.Region.RX), RY: uint8(rec.Region.RY),
			Width: uint8(rec.Region.Tile), Height: uint8(rec.Region.Tile),
			AngleDeg: int8(c.cfg.AngleDeg),
		}

		c.metrics.FramesSent.Inc()
		_, _, err := c.endpoint.SendReliable(rec.Addr, wire.Frame{Type: wire.MsgAssign, NodeID: uint8(id), Payload: payload}, wire.MsgAck, c.cfg.Timeout, c.cfg.Retries)
		if err != nil {
			log.Printf("Node %d unreachable during assignment; marking inactive and continuing degraded.\n", id)
			c.nodes.Deactivate(id)
			c.metrics.Unreachable.Inc()
		}
	}

	c.metrics.WorkersActive.Set(float64(len(c.nodes.Active())))
}

// SeedOrigin implements the optional Phase 3. It asks the worker owning
// (defaultX, defaultY) for a sensor reading and, if one arrives and decodes
// cleanly, returns the remapped coordinates; any failure reverts to the
// configured defaults.
func (c *Coordinator) SeedOrigin(defaultX, defaultY float64) (float64, float64) {
	id := c.cfg.Layout.NodeForPoint(turtle.Floor(defaultX), turtle.Floor(defaultY))
	rec, ok := c.nodes.Get(id)
	if !ok || !rec.Active {
		return defaultX, defaultY
	}

	c.metrics.FramesSent.Inc()
	reply, _, err := c.endpoint.SendReliable(rec.Addr, wire.Frame{Type: wire.MsgRequest, NodeID: uint8(id), Payload: wire.RequestPayload{Row: 0}}, wire.MsgResponse, c.cfg.Timeout, c.cfg.Retries)
	if err != nil {
		log.Printf("Origin sensor seed unavailable from node %d; using configured start.\n", id)
		return defaultX, defaultY
	}

	resp, ok := reply.Payload.(wire.ResponsePayload)
	if !ok {
		return defaultX, defaultY
	}

	x, y, ok := sensor.RemapOrigin(resp.Cells, c.cfg.Layout.Width, c.cfg.Layout.Height)
	if !ok {
		return defaultX, defaultY
	}

	log.Printf("Origin seeded from node %d: (%.2f, %.2f).\n", id, x, y)
	return x, y
}

// StreamSimulation implements Phase 4: while the cursor has symbols left
// to consume, route a slice to whoever owns its current cell, apply the
// HANDOVER, and repeat. It returns the cursor's final state, either because
// the word was exhausted or because the cursor left the canvas.
func (c *Coordinator) StreamSimulation(word []byte, cursor Cursor) Cursor {
	for cursor.Index < len(word) {
		ix, iy := turtle.Floor(cursor.X), turtle.Floor(cursor.Y)
		if ix < 0 || ix >= c.cfg.Layout.Width || iy < 0 || iy >= c.cfg.Layout.Height {
			log.Printf("Cursor left the canvas at (%.2f, %.2f); ending simulation at %d/%d symbols.\n", cursor.X, cursor.Y, cursor.Index, len(word))
			break
		}

		id := c.cfg.Layout.NodeForPoint(ix, iy)
		rec, ok := c.nodes.Get(id)
		if !ok || !rec.Active {
			log.Printf("Owner node %d inactive; skipping one symbol to avoid livelock.\n", id)
			cursor.Index++
			continue
		}

		end := cursor.Index + c.cfg.ChunkSize
		if end > len(word) {
			end = len(word)
		}
		slice := word[cursor.Index:end]

		payload := wire.DataPayload{X: float32(cursor.X), Y: float32(cursor.Y), Heading: float32(cursor.Heading), Symbols: slice}
		c.metrics.FramesSent.Inc()
		reply, from, err := c.endpoint.SendReliable(rec.Addr, wire.Frame{Type: wire.MsgData, NodeID: uint8(id), Payload: payload}, wire.MsgHandover, c.cfg.Timeout, c.cfg.Retries)
		if err != nil {
			c.metrics.Unreachable.Inc()
			if c.cfg.SkipUnreachableData {
				log.Printf("Node %d unreachable mid-simulation; skipping %d symbols and continuing.\n", id, len(slice))
				cursor.Index += len(slice)
				continue
			}
			log.Fatalf("Node %d unreachable mid-simulation; aborting run.\n", id)
		}
		rec.Addr = from // the worker's reply source is authoritative from here on

		h, ok := reply.Payload.(wire.HandoverPayload)
		if !ok {
			log.Printf("Node %d sent a HANDOVER with an unexpected payload; skipping %d symbols.\n", id, len(slice))
			cursor.Index += len(slice)
			continue
		}
		c.metrics.Handovers.Inc()

		cursor.X, cursor.Y, cursor.Heading = float64(h.X), float64(h.Y), turtle.Heading(h.Heading)
		consumed := int(h.Consumed)
		if consumed == 0 {
			// The cursor stalled exactly on the boundary; break the
			// livelock by skipping one symbol (spec.md 4.D Phase 4 step 4).
			consumed = 1
		}
		cursor.Index += consumed
	}

	return cursor
}

// Collect implements Phase 5: pull every active worker's sub-grid, row by
// row, and merge it into out at the worker's region origin.
func (c *Coordinator) Collect(out *canvas.Canvas) {
	for _, rec := range c.nodes.Active() {
		for row := 0; row < rec.Region.Tile; row++ {
			c.metrics.FramesSent.Inc()
			reply, _, err := c.endpoint.SendReliable(rec.Addr, wire.Frame{Type: wire.MsgRequest, NodeID: uint8(rec.ID), Payload: wire.RequestPayload{Row: uint8(row)}}, wire.MsgResponse, c.cfg.Timeout, c.cfg.Retries)
			if err != nil {
				log.Printf("Node %d unreachable during collection; row %d of its region will show a gap.\n", rec.ID, row)
				continue
			}

			resp, ok := reply.Payload.(wire.ResponsePayload)
			if !ok {
				continue
			}
			out.PaintRow(rec.Region, row, resp.Cells)
		}
	}
}
