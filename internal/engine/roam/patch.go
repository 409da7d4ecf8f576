package roam

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/roam-terrain/internal/engine/camera"
	"github.com/Faultbox/roam-terrain/internal/engine/terrain"
)

const (
	// PatchSize is the number of heightmap squares along a patch edge.
	PatchSize = 128
	// VarianceDepth bounds the stored variance tree to 1<<VarianceDepth nodes.
	VarianceDepth = 12
	// MinVariance replaces exact-zero variance.
	MinVariance = 0.001

	patchVerts = PatchSize + 1
)

// Corner is a patch-local sample coordinate.
type Corner struct {
	X, Z int
}

func midpoint(a, b Corner) Corner {
	return Corner{X: (a.X + b.X) >> 1, Z: (a.Z + b.Z) >> 1}
}

// Corner triples of the two root triangles.
var (
	rootLeftTri  = [3]Corner{{0, PatchSize}, {PatchSize, 0}, {0, 0}}
	rootRightTri = [3]Corner{{PatchSize, 0}, {0, PatchSize}, {PatchSize, PatchSize}}
)

// Patch is one PatchSize x PatchSize tile of the map with its two root
// triangles and the buffers derived from their trees.
type Patch struct {
	bank  *Bank
	hm    *terrain.Heightmap
	index int

	gridX, gridZ int

	baseLeft  NodeRef
	baseRight NodeRef

	varianceLeft  []float32
	varianceRight []float32

	// x, y, z per sample in world units; y is the height snapshot.
	vertices  []float32
	minHeight float32
	maxHeight float32

	indices     [2][]uint32
	border      [2][]BorderVertex
	indexFront  int
	borderFront int

	dirty       bool
	tessellated bool

	lastVisibleFrame [camera.NumTypes]int64
}

// Init binds the patch at grid position (gridX, gridZ) to its roots in bank
// and copies its heights from hm.
func (p *Patch) Init(bank *Bank, hm *terrain.Heightmap, gridX, gridZ int) {
	p.bank = bank
	p.hm = hm
	p.gridX, p.gridZ = gridX, gridZ
	p.index = gridZ*(hm.Width()/PatchSize) + gridX
	p.baseLeft = bank.RootLeft(p.index)
	p.baseRight = bank.RootRight(p.index)

	p.varianceLeft = make([]float32, 1<<VarianceDepth)
	p.varianceRight = make([]float32, 1<<VarianceDepth)

	p.vertices = make([]float32, 3*patchVerts*patchVerts)
	i := 0
	for z := 0; z < patchVerts; z++ {
		for x := 0; x < patchVerts; x++ {
			p.vertices[i] = float32((p.worldX() + x) * terrain.SquareSize)
			p.vertices[i+2] = float32((p.worldZ() + z) * terrain.SquareSize)
			i += 3
		}
	}

	p.Reset()
	p.UpdateHeightMap(terrain.Rect{X2: PatchSize, Z2: PatchSize})
}

func (p *Patch) worldX() int { return p.gridX * PatchSize }
func (p *Patch) worldZ() int { return p.gridZ * PatchSize }

// Reset drops both trees back to a single pair of linked roots. Neighbour
// links to other patches are left to the caller.
func (p *Patch) Reset() {
	*p.bank.Node(p.baseLeft) = TreeNode{Base: p.baseRight}
	*p.bank.Node(p.baseRight) = TreeNode{Base: p.baseLeft}
}

// UpdateHeightMap copies the heights of the patch-local rectangle r into the
// vertex snapshot and marks the variance stale.
func (p *Patch) UpdateHeightMap(r terrain.Rect) {
	r = r.Clamp(PatchSize, PatchSize)
	if r.Empty() {
		return
	}
	wx, wz := p.worldX(), p.worldZ()
	world := terrain.Rect{X1: wx + r.X1, Z1: wz + r.Z1, X2: wx + r.X2, Z2: wz + r.Z2}
	p.hm.ReadRegion(world, func(x, z int, h float32) {
		p.vertices[((z-wz)*patchVerts+(x-wx))*3+1] = h
	})

	lo, hi := p.vertices[1], p.vertices[1]
	for i := 4; i < len(p.vertices); i += 3 {
		lo = math32.Min(lo, p.vertices[i])
		hi = math32.Max(hi, p.vertices[i])
	}
	p.minHeight, p.maxHeight = lo, hi
	p.dirty = true
}

func (p *Patch) height(c Corner) float32 {
	return p.vertices[(c.Z*patchVerts+c.X)*3+1]
}

func (p *Patch) vertex(c Corner) (x, y, z float32) {
	i := (c.Z*patchVerts + c.X) * 3
	return p.vertices[i], p.vertices[i+1], p.vertices[i+2]
}

// GridX returns the patch column.
func (p *Patch) GridX() int { return p.gridX }

// GridZ returns the patch row.
func (p *Patch) GridZ() int { return p.gridZ }

// BaseLeft returns the root covering the patch's (0,0) corner.
func (p *Patch) BaseLeft() NodeRef { return p.baseLeft }

// BaseRight returns the root covering the patch's far corner.
func (p *Patch) BaseRight() NodeRef { return p.baseRight }

// IsDirty reports whether heights changed since the last ComputeVariance.
func (p *Patch) IsDirty() bool { return p.dirty }

// Tessellated reports whether the patch holds index buffers.
func (p *Patch) Tessellated() bool { return p.tessellated }

// MinMaxHeight returns the height range of the snapshot.
func (p *Patch) MinMaxHeight() (float32, float32) { return p.minHeight, p.maxHeight }

// Vertices returns (PatchSize+1)^2 world space x, y, z triples.
func (p *Patch) Vertices() []float32 { return p.vertices }

// markVisible records that camera t saw the patch in frame.
func (p *Patch) markVisible(t camera.Type, frame int64) {
	p.lastVisibleFrame[t] = frame
}

// IsVisible reports whether camera t saw the patch within grace frames
// before frame.
func (p *Patch) IsVisible(t camera.Type, frame int64, grace int) bool {
	last := p.lastVisibleFrame[t]
	return last > 0 && frame-last <= int64(grace)
}

// Walk calls fn for every leaf of both trees with its depth and corners
// (left, right, apex).
func (p *Patch) Walk(fn func(ref NodeRef, depth int, tri [3]Corner)) {
	p.walk(p.baseLeft, 0, rootLeftTri, fn)
	p.walk(p.baseRight, 0, rootRightTri, fn)
}

func (p *Patch) walk(ref NodeRef, depth int, tri [3]Corner, fn func(NodeRef, int, [3]Corner)) {
	n := p.bank.Node(ref)
	if n.IsLeaf() {
		fn(ref, depth, tri)
		return
	}
	left, right, apex := tri[0], tri[1], tri[2]
	center := midpoint(left, right)
	p.walk(n.LeftChild, depth+1, [3]Corner{apex, left, center}, fn)
	p.walk(n.RightChild, depth+1, [3]Corner{right, apex, center}, fn)
}

// NodeCount returns the number of nodes in both trees, roots included.
func (p *Patch) NodeCount() int {
	return p.count(p.baseLeft, false) + p.count(p.baseRight, false)
}

// LeafCount returns the number of leaves in both trees.
func (p *Patch) LeafCount() int {
	return p.count(p.baseLeft, true) + p.count(p.baseRight, true)
}

func (p *Patch) count(ref NodeRef, leavesOnly bool) int {
	n := p.bank.Node(ref)
	if n.IsLeaf() {
		return 1
	}
	c := p.count(n.LeftChild, leavesOnly) + p.count(n.RightChild, leavesOnly)
	if !leavesOnly {
		c++
	}
	return c
}
