package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/roam-terrain/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Projection
	FovY   float32
	Aspect float32
	Near   float32
	Far    float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:    2000,
		RotationX:   0.6,
		MinDistance: 50,
		MaxDistance: 50000,
		MinPitch:    0.05,
		MaxPitch:    1.55,
		FovY:        math32.Pi / 4,
		Aspect:      16.0 / 9.0,
		Near:        2,
		Far:         60000,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	horiz := c.Distance * math32.Cos(c.RotationX)
	return math.Vec3{
		X: c.Center.X + horiz*math32.Sin(c.RotationY),
		Y: c.Center.Y + c.Distance*math32.Sin(c.RotationX),
		Z: c.Center.Z + horiz*math32.Cos(c.RotationY),
	}
}

// Orbit rotates the camera by the given yaw and pitch deltas.
func (c *OrbitCamera) Orbit(dYaw, dPitch float32) {
	c.RotationY += dYaw
	c.RotationX = clamp(c.RotationX+dPitch, c.MinPitch, c.MaxPitch)
}

// Zoom scales the orbit distance by (1 - delta).
func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance = clamp(c.Distance*(1-delta), c.MinDistance, c.MaxDistance)
}

// View returns the current player view with the given detail budget.
func (c *OrbitCamera) View(viewRadius float32) *View {
	return NewPerspectiveView(c.Position(), c.Center, c.FovY, c.Aspect, c.Near, c.Far, viewRadius)
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
