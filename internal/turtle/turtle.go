// Package turtle holds the small amount of turtle-graphics math shared by
// the coordinator (which only needs to know where the cursor is) and the
// worker (which needs to actually trace a slice of the word).
package turtle

import "math"

// Heading is the turtle's facing direction in degrees.  A heading of 0
// points along the positive X axis.
type Heading float64

// TurnLeft rotates the heading counter-clockwise by angleDeg degrees.
func (h Heading) TurnLeft(angleDeg int) Heading {
	return h + Heading(angleDeg)
}

// TurnRight rotates the heading clockwise by angleDeg degrees.
func (h Heading) TurnRight(angleDeg int) Heading {
	return h - Heading(angleDeg)
}

// Step returns the point one unit ahead of (x, y) along heading.  The
// canvas convention is screen-style: y grows downward, so a heading of 0
// moves in +X and a heading of 90 moves in -Y.
func Step(x, y float64, heading Heading) (nx, ny float64) {
	rad := float64(heading) * math.Pi / 180.0
	return x + math.Cos(rad), y - math.Sin(rad)
}

// Floor returns the integer cell index a coordinate lies within.
func Floor(v float64) int {
	return int(math.Floor(v))
}
