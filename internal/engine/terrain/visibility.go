package terrain

import (
	"github.com/Faultbox/roam-terrain/pkg/math"
)

// visibilityMargin pads the vertical extent of every quad's bounding box.
const visibilityMargin = 100

// GridVisibility tests the map, split into quads of quadSize x quadSize
// squares, against the frustum and calls qd.DrawQuad for each visible quad.
// Only quads within maxDist world units of the camera's own quad are tested.
func (h *Heightmap) GridVisibility(f *math.Frustum, camPos math.Vec3, quadSize int, maxDist float32, qd QuadDrawer) {
	if quadSize <= 0 {
		return
	}
	quadsX := h.width / quadSize
	quadsZ := h.depth / quadSize
	if quadsX == 0 || quadsZ == 0 {
		return
	}

	quadWorld := float32(quadSize * SquareSize)
	cx := int(clampf(camPos.X/quadWorld, -1, float32(quadsX)))
	cz := int(clampf(camPos.Z/quadWorld, -1, float32(quadsZ)))
	span := int(clampf(maxDist/quadWorld, 0, float32(quadsX+quadsZ))) + 1

	sx := clampi(cx-span, 0, quadsX-1)
	ex := clampi(cx+span, 0, quadsX-1)
	sz := clampi(cz-span, 0, quadsZ-1)
	ez := clampi(cz+span, 0, quadsZ-1)

	lo, hi := h.MinMaxHeight()
	lo -= visibilityMargin
	hi += visibilityMargin

	for z := sz; z <= ez; z++ {
		for x := sx; x <= ex; x++ {
			mins := math.Vec3{X: float32(x) * quadWorld, Y: lo, Z: float32(z) * quadWorld}
			maxs := math.Vec3{X: float32(x+1) * quadWorld, Y: hi, Z: float32(z+1) * quadWorld}
			if f.IntersectsAABB(mins, maxs) {
				qd.DrawQuad(x, z)
			}
		}
	}
}
