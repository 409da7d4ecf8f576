// Package camera provides the camera snapshots that drive terrain culling
// and level of detail.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/roam-terrain/pkg/math"
)

// Type distinguishes the camera passes that keep their own tessellation.
type Type int

const (
	Normal Type = iota // Player view
	Shadow             // Shadow-map light view
	NumTypes
)

func (t Type) String() string {
	switch t {
	case Normal:
		return "normal"
	case Shadow:
		return "shadow"
	default:
		return "unknown"
	}
}

// View is an immutable per-frame camera snapshot.
type View struct {
	pos        math.Vec3
	viewRadius float32
	frustum    math.Frustum
	typ        Type
}

// NewView builds a view from a position and a view-projection matrix.
func NewView(typ Type, pos math.Vec3, viewProj math.Mat4, viewRadius float32) *View {
	return &View{
		pos:        pos,
		viewRadius: viewRadius,
		frustum:    math.FrustumFromMatrix(viewProj),
		typ:        typ,
	}
}

// NewPerspectiveView builds a player view looking from eye at target.
func NewPerspectiveView(eye, target math.Vec3, fovY, aspect, near, far, viewRadius float32) *View {
	proj := math.Perspective(fovY, aspect, near, far)
	vm := math.LookAt(eye, target, math.Vec3{Y: 1})
	return NewView(Normal, eye, proj.Mul(vm), viewRadius)
}

// NewShadowView builds an orthographic light view centered on center that
// covers a square of half-size extent, with the light placed along -lightDir.
func NewShadowView(lightDir, center math.Vec3, extent, viewRadius float32) *View {
	dir := lightDir.Normalize()
	eye := center.Sub(dir.Scale(extent * 2))

	up := math.Vec3{Y: 1}
	if math32.Abs(dir.Y) > 0.99 {
		up = math.Vec3{Z: -1}
	}
	proj := math.Ortho(-extent, extent, -extent, extent, 1, extent*4)
	vm := math.LookAt(eye, center, up)
	return NewView(Shadow, eye, proj.Mul(vm), viewRadius)
}

// Position returns the camera position in world space.
func (v *View) Position() math.Vec3 { return v.pos }

// ViewRadius returns the ground detail budget of this view.
func (v *View) ViewRadius() float32 { return v.viewRadius }

// Frustum returns the view volume.
func (v *View) Frustum() *math.Frustum { return &v.frustum }

// Type returns the camera pass.
func (v *View) Type() Type { return v.typ }
