// Package terrain provides the heightmap data source consumed by the
// terrain renderer: corner heights, region updates and grid visibility.
package terrain

import "github.com/chewxy/math32"

// SquareSize is the width of one heightmap square in world units.
const SquareSize = 8

// Rect is an inclusive rectangle of corner-height coordinates.
type Rect struct {
	X1, Z1 int
	X2, Z2 int
}

// Empty reports whether the rectangle contains no samples.
func (r Rect) Empty() bool {
	return r.X2 < r.X1 || r.Z2 < r.Z1
}

// Clamp limits the rectangle to [0, maxX] x [0, maxZ].
func (r Rect) Clamp(maxX, maxZ int) Rect {
	return Rect{
		X1: clampi(r.X1, 0, maxX),
		Z1: clampi(r.Z1, 0, maxZ),
		X2: clampi(r.X2, 0, maxX),
		Z2: clampi(r.Z2, 0, maxZ),
	}
}

// Grow returns the rectangle expanded by n on every side.
func (r Rect) Grow(n int) Rect {
	return Rect{X1: r.X1 - n, Z1: r.Z1 - n, X2: r.X2 + n, Z2: r.Z2 + n}
}

// RegionListener is notified after heights inside a rectangle changed.
type RegionListener interface {
	HeightRegionChanged(r Rect)
}

// QuadDrawer receives the grid quads that passed a visibility test.
type QuadDrawer interface {
	DrawQuad(x, z int)
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampf(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
