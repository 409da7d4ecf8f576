package roam

import (
	"github.com/Faultbox/roam-terrain/internal/engine/camera"
	"github.com/Faultbox/roam-terrain/pkg/math"
)

// CameraType selects the bank a camera tessellates.
type CameraType = camera.Type

const (
	CameraNormal = camera.Normal
	CameraShadow = camera.Shadow
)

// Camera is the per-frame view the mesh drawer tessellates against.
type Camera interface {
	Position() math.Vec3
	ViewRadius() float32
	Frustum() *math.Frustum
	Type() camera.Type
}
