// Package region implements the worker side of the protocol: owning one
// sub-grid, tracing turtle commands through it, and detecting when the
// cursor has stepped outside the region's bounds.
package region

import (
	"github.com/mwindels/turtlemesh/internal/mesh"
	"github.com/mwindels/turtlemesh/internal/turtle"
)

// Symbols recognised by the drawing loop; every other byte is a no-op.
const (
	SymbolForward   = 'F'
	SymbolTurnLeft  = '+'
	SymbolTurnRight = '-'
)

// edgeEpsilon nudges a cursor that lands exactly on a region border into
// the interior, so the first step doesn't immediately hand back a
// zero-length advance (spec.md 4.C, Edge wedging).
const edgeEpsilon = 1e-3

// Renderer owns one region's sub-grid and the turn angle it was assigned.
// A cell holds 0 (unset) or 1 (drawn); this is also the byte layout RESPONSE
// frames carry directly.
type Renderer struct {
	Region   mesh.Region
	AngleDeg int

	grid [][]byte // Region.Tile x Region.Tile, grid[y][x]
}

// NewRenderer creates a zero-initialized renderer for region with the given
// turn angle, as received in an ASSIGN frame.
func NewRenderer(region mesh.Region, angleDeg int) *Renderer {
	grid := make([][]byte, region.Tile)
	for i := range grid {
		grid[i] = make([]byte, region.Tile)
	}
	return &Renderer{Region: region, AngleDeg: angleDeg, grid: grid}
}

// Row returns a copy of local row i (0 <= i < Tile), suitable for a
// RESPONSE payload.
func (r *Renderer) Row(i int) []byte {
	row := make([]byte, len(r.grid[i]))
	copy(row, r.grid[i])
	return row
}

func (r *Renderer) mark(x, y int) {
	r.grid[y-r.Region.RY][x-r.Region.RX] = 1
}

// nudge pushes a point that landed exactly on (or past, from float
// rounding) the region's border back into the interior.
func (r *Renderer) nudge(x, y float64) (float64, float64) {
	rx, ry := float64(r.Region.RX), float64(r.Region.RY)
	rw, rh := float64(r.Region.Tile), float64(r.Region.Tile)

	if x < rx {
		x = rx + edgeEpsilon
	}
	if x >= rx+rw {
		x = rx + rw - edgeEpsilon
	}
	if y < ry {
		y = ry + edgeEpsilon
	}
	if y >= ry+rh {
		y = ry + rh - edgeEpsilon
	}
	return x, y
}

// Draw walks symbols starting at (x, y, heading), marking cells as the
// turtle advances.  It stops either when it consumes every symbol, or the
// instant a forward step would leave the region — in which case that
// symbol counts as consumed (the destination cell is never marked; the next
// worker is responsible for it).  It returns the cursor state to report in
// the HANDOVER and the number of symbols consumed.
func (r *Renderer) Draw(x, y float64, heading turtle.Heading, symbols []byte) (nx, ny float64, nheading turtle.Heading, consumed int) {
	x, y = r.nudge(x, y)

	if ix, iy := turtle.Floor(x), turtle.Floor(y); r.Region.Contains(ix, iy) {
		r.mark(ix, iy)
	}

	for i, sym := range symbols {
		switch sym {
		case SymbolForward:
			stepX, stepY := turtle.Step(x, y, heading)
			ix, iy := turtle.Floor(stepX), turtle.Floor(stepY)

			if !r.Region.Contains(ix, iy) {
				return stepX, stepY, heading, i + 1
			}

			r.mark(ix, iy)
			x, y = stepX, stepY
		case SymbolTurnLeft:
			heading = heading.TurnLeft(r.AngleDeg)
		case SymbolTurnRight:
			heading = heading.TurnRight(r.AngleDeg)
		}
	}

	return x, y, heading, len(symbols)
}
