package roam

import "github.com/chewxy/math32"

const (
	shoreVarianceScale = 1.5
	shoreVarianceFloor = 20
	// minVarianceBlock stops the variance recursion at 4x4 sample blocks.
	minVarianceBlock = 4
)

// ComputeVariance rebuilds both variance trees from the height snapshot and
// clears the dirty flag.
func (p *Patch) ComputeVariance() {
	p.computeVariance(p.varianceLeft, rootLeftTri[0], rootLeftTri[1], rootLeftTri[2], 1)
	p.computeVariance(p.varianceRight, rootRightTri[0], rootRightTri[1], rootRightTri[2], 1)
	p.dirty = false
}

// computeVariance returns the variance of the triangle (left, right, apex)
// and everything below it, storing values for nodes within VarianceDepth.
func (p *Patch) computeVariance(out []float32, left, right, apex Corner, node int) float32 {
	center := midpoint(left, right)

	lh, rh, ch := p.height(left), p.height(right), p.height(center)
	v := math32.Abs(ch - (lh+rh)/2)

	// Shorelines keep detail regardless of how flat they are.
	if lh*rh < 0 || lh*ch < 0 || rh*ch < 0 {
		v = math32.Max(v*shoreVarianceScale, shoreVarianceFloor)
	}

	if absi(left.X-right.X) >= minVarianceBlock || absi(left.Z-right.Z) >= minVarianceBlock {
		v = math32.Max(v, p.computeVariance(out, apex, left, center, node<<1))
		v = math32.Max(v, p.computeVariance(out, right, apex, center, node<<1+1))
	}

	v = math32.Max(v, MinVariance)
	if node < len(out) {
		out[node] = v
	}
	return v
}

// Variance returns the stored variance of node in the left or right tree.
// Node 0 is unused; node 1 is the root.
func (p *Patch) Variance(right bool, node int) float32 {
	if right {
		return p.varianceRight[node]
	}
	return p.varianceLeft[node]
}

func absi(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
