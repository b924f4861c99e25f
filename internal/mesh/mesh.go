// Package mesh describes how the shared canvas is tiled into the equal
// rectangular regions owned by each worker.
package mesh

// Layout describes a canvas of Width x Height cells tiled into square
// regions of size Tile x Tile.  Region index i maps to tile
// (i mod Columns, i div Columns).
type Layout struct {
	Width, Height int
	Tile          int
}

// Columns returns the number of region columns in the tiling.
func (l Layout) Columns() int {
	return l.Width / l.Tile
}

// Rows returns the number of region rows in the tiling.
func (l Layout) Rows() int {
	return l.Height / l.Tile
}

// RegionCount returns the total number of regions the layout produces.
func (l Layout) RegionCount() int {
	return l.Columns() * l.Rows()
}

// Region is the rectangle a single node owns: [RX, RX+Tile) x [RY, RY+Tile).
type Region struct {
	RX, RY int
	Tile   int
}

// Contains reports whether the cell (x, y) lies inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.RX && x < r.RX+r.Tile && y >= r.RY && y < r.RY+r.Tile
}

// RegionForNode returns the region a node with the given 1-based id owns,
// per spec.md 4.D: origin = ((id-1) mod C * T, (id-1) div C * T).
func (l Layout) RegionForNode(id int) Region {
	col := (id - 1) % l.Columns()
	row := (id - 1) / l.Columns()
	return Region{RX: col * l.Tile, RY: row * l.Tile, Tile: l.Tile}
}

// RegionIndex returns the region index that owns cell (x, y), clamping
// out-of-canvas coordinates to the nearest region per spec.md 4.D Phase 4
// step 1.  The index is 0-based; add 1 to get a node id.
func (l Layout) RegionIndex(x, y int) int {
	if x < 0 {
		x = 0
	}
	if x >= l.Width {
		x = l.Width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= l.Height {
		y = l.Height - 1
	}
	return (y/l.Tile)*l.Columns() + x/l.Tile
}

// NodeForPoint returns the 1-based node id that owns cell (x, y).
func (l Layout) NodeForPoint(x, y int) int {
	return l.RegionIndex(x, y) + 1
}
