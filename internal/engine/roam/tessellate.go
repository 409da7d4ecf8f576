package roam

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/roam-terrain/internal/engine/terrain"
	"github.com/Faultbox/roam-terrain/pkg/math"
)

const (
	// lodDistanceScale controls how fast detail falls off with distance.
	lodDistanceScale = 300
	// varianceLimitScale caps variance relative to the view radius so steep
	// cliffs far away do not tessellate fully.
	varianceLimitScale = 0.35
	// unstoredVariance is used below VarianceDepth and always splits.
	unstoredVariance = 10
)

// tessParams holds the per-call level of detail factors.
type tessParams struct {
	ctx      *TessContext
	variance []float32
	lod      float32
	limit    float32
}

// Center returns the world position used for the distance term, with the
// given height.
func (p *Patch) Center(midHeight float32) math.Vec3 {
	return math.Vec3{
		X: float32((p.worldX() + PatchSize/2) * terrain.SquareSize),
		Y: midHeight,
		Z: float32((p.worldZ() + PatchSize/2) * terrain.SquareSize),
	}
}

// Tessellate splits both trees until the variance metric is met for a
// camera at camPos. midHeight is the vertical center of the map. It returns
// false when ctx's arena ran out of nodes, leaving the patch coarser than
// requested.
//
// Tessellate may split nodes of neighbouring patches; patches sharing a
// neighbourhood must not be tessellated concurrently.
func (p *Patch) Tessellate(ctx *TessContext, camPos math.Vec3, viewRadius, midHeight float32) bool {
	dist := p.Center(midHeight).Distance(camPos)
	tp := tessParams{
		ctx:   ctx,
		lod:   1 / math32.Max(1, dist*lodDistanceScale/viewRadius),
		limit: viewRadius * varianceLimitScale,
	}

	tp.variance = p.varianceLeft
	p.tessellate(&tp, p.baseLeft, rootLeftTri[0], rootLeftTri[1], rootLeftTri[2], 1)
	tp.variance = p.varianceRight
	p.tessellate(&tp, p.baseRight, rootRightTri[0], rootRightTri[1], rootRightTri[2], 1)

	return !ctx.pool.RunOutOfNodes()
}

func (p *Patch) tessellate(tp *tessParams, ref NodeRef, left, right, apex Corner, node int) {
	dx, dz := absi(left.X-right.X), absi(left.Z-right.Z)
	if dx <= 1 && dz <= 1 {
		return
	}

	triVariance := float32(unstoredVariance)
	if node < len(tp.variance) {
		v := math32.Min(tp.variance[node], tp.limit)
		triVariance = v * PatchSize * float32(max(dx, dz)) * tp.lod
	}
	if triVariance <= 1 {
		return
	}

	tp.ctx.Split(ref)
	n := tp.ctx.Node(ref)
	if !n.IsBranch() {
		return
	}
	center := midpoint(left, right)
	p.tessellate(tp, n.LeftChild, apex, left, center, node<<1)
	p.tessellate(tp, n.RightChild, right, apex, center, node<<1+1)
}
