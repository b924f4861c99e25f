// Package sensor implements the optional Phase 3 origin seed: the
// coordinator may ask the worker that owns the configured start point for a
// raw sensor reading and remap it onto canvas coordinates, per spec.md 4.D
// Phase 3. Failure of any kind simply reverts to the configured start
// coordinates, so this package never returns a fatal error.
package sensor

import "encoding/binary"

// rawRange is the span of a raw 16-bit sensor sample.
const rawRange = 1 << 16

// RemapOrigin decodes a RESPONSE payload as two raw 16-bit big-endian
// sensor values and remaps each onto [0, width) and [0, height).  It
// reports ok=false if the payload is too short to hold two such values.
func RemapOrigin(cells []byte, width, height int) (x, y float64, ok bool) {
	if len(cells) < 4 {
		return 0, 0, false
	}

	rawX := binary.BigEndian.Uint16(cells[0:2])
	rawY := binary.BigEndian.Uint16(cells[2:4])

	x = float64(rawX) / rawRange * float64(width)
	y = float64(rawY) / rawRange * float64(height)
	return x, y, true
}
