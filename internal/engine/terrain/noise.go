package terrain

import (
	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
)

const (
	detailFrequency = 0.004
	zoneFrequency   = 0.0007
)

// NoiseParams controls GeneratePerlin.
type NoiseParams struct {
	Seed       int64
	Amplitude  float32 // Peak height above or below the water line
	WaterLevel float32 // Subtracted from every sample so shorelines sit at 0
}

// GeneratePerlin fills h with two octaves of perlin noise: a high frequency
// layer for detail, scaled by a low frequency zone layer that separates
// plains from mountains.
func GeneratePerlin(h *Heightmap, p NoiseParams) {
	detail := perlin.NewPerlin(2, 2, 4, p.Seed)
	zone := perlin.NewPerlin(2, 3, 3, p.Seed+1)

	h.Fill(func(x, z int) float32 {
		wx := float64(x * SquareSize)
		wz := float64(z * SquareSize)

		v := float32(detail.Noise2D(wx*detailFrequency, wz*detailFrequency))
		k := clampf(float32(zone.Noise2D(wx*zoneFrequency, wz*zoneFrequency))*2+0.6, 0.1, 1)

		return v*k*p.Amplitude - p.WaterLevel
	})
}

// Crater lowers a bowl of the given radius (in squares) around (cx, cz) by
// depth world units, the way an explosion deforms the ground, and returns the
// affected rectangle.
func Crater(h *Heightmap, cx, cz, radius int, depth float32) Rect {
	r := Rect{X1: cx - radius, Z1: cz - radius, X2: cx + radius, Z2: cz + radius}
	rr := float32(radius * radius)

	h.Update(r, func(x, z int, old float32) float32 {
		dx, dz := float32(x-cx), float32(z-cz)
		d2 := dx*dx + dz*dz
		if d2 >= rr {
			return old
		}
		return old - depth*(1-math32.Sqrt(d2/rr))
	})
	return r.Clamp(h.Width(), h.Depth())
}
