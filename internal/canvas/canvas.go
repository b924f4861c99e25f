// Package canvas assembles the sub-grids collected from every worker into
// the final W x H grid and renders it as text, grounded in
// original_source/Server/server.c's closing putchar loop.
package canvas

import (
	"fmt"
	"io"

	"github.com/mwindels/turtlemesh/internal/mesh"
)

const (
	unsetGlyph = '.'
	drawnGlyph = '#'
)

// Canvas holds the merged drawn/unset marks for the whole run.
type Canvas struct {
	Width, Height int
	cells         [][]byte // cells[y][x]: 0 unset, 1 drawn
}

// New returns a zero-initialized (all-unset) canvas.
func New(width, height int) *Canvas {
	cells := make([][]byte, height)
	for y := range cells {
		cells[y] = make([]byte, width)
	}
	return &Canvas{Width: width, Height: height, cells: cells}
}

// PaintRow merges one collected row from region's local row index into the
// global canvas at the region's origin.  Only drawn cells overwrite the
// canvas; the baseline unset mark is preserved wherever the worker reports
// nothing, per spec.md 4.D Phase 5.
func (c *Canvas) PaintRow(region mesh.Region, localRow int, row []byte) {
	gy := region.RY + localRow
	for lx, mark := range row {
		if mark == 0 {
			continue
		}
		gx := region.RX + lx
		c.cells[gy][gx] = 1
	}
}

// At reports whether cell (x, y) has been drawn, for callers (such as the
// optional live preview) that need random access instead of a text dump.
func (c *Canvas) At(x, y int) bool {
	return c.cells[y][x] != 0
}

// Render writes the canvas, one character per cell and one line per row.
func (c *Canvas) Render(w io.Writer) error {
	for y := 0; y < c.Height; y++ {
		line := make([]byte, c.Width)
		for x := 0; x < c.Width; x++ {
			if c.cells[y][x] != 0 {
				line[x] = drawnGlyph
			} else {
				line[x] = unsetGlyph
			}
		}
		if _, err := fmt.Fprintln(w, string(line)); err != nil {
			return err
		}
	}
	return nil
}
