package roam

// visibilityDistance covers the whole map; culling is left to the frustum.
const visibilityDistance = 1e9

// patchInViewChecker marks the patches reported visible by the heightmap's
// grid query.
type patchInViewChecker struct {
	state *meshState
	frame int64
}

func (c *patchInViewChecker) DrawQuad(x, z int) {
	c.state.patches[z*c.state.numX+x].markVisible(c.state.typ, c.frame)
}

// updateVisibility stamps every patch inside cam's frustum with the
// current frame.
func (d *MeshDrawer) updateVisibility(ms *meshState, cam Camera) {
	checker := patchInViewChecker{state: ms, frame: ms.frame}
	d.hm.GridVisibility(cam.Frustum(), cam.Position(), PatchSize, visibilityDistance, &checker)
}
