package roam

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/roam-terrain/internal/engine/camera"
	"github.com/Faultbox/roam-terrain/internal/engine/terrain"
	"github.com/Faultbox/roam-terrain/pkg/math"
)

func newTestHeightmap(t *testing.T, patchesX, patchesZ int, fn func(x, z int) float32) *terrain.Heightmap {
	t.Helper()
	hm, err := terrain.NewHeightmap(patchesX*PatchSize, patchesZ*PatchSize, nil)
	if err != nil {
		t.Fatalf("NewHeightmap() error: %v", err)
	}
	if fn != nil {
		hm.Fill(fn)
	}
	return hm
}

func perlinHeightmap(t *testing.T, patchesX, patchesZ int) *terrain.Heightmap {
	t.Helper()
	hm := newTestHeightmap(t, patchesX, patchesZ, nil)
	terrain.GeneratePerlin(hm, terrain.NoiseParams{Seed: 56, Amplitude: 600})
	return hm
}

func spike(height float32) func(x, z int) float32 {
	return func(x, z int) float32 {
		if x == PatchSize/2 && z == PatchSize/2 {
			return height
		}
		return 0
	}
}

func hills(x, z int) float32 {
	return 100 * math32.Sin(float32(x)/10) * math32.Cos(float32(z)/13)
}

// newTestPatch builds a single patch over a one-patch heightmap, backed by a
// bank of poolSize nodes and one worker.
func newTestPatch(t *testing.T, poolSize int, fn func(x, z int) float32) (*Patch, *Bank) {
	t.Helper()
	hm := newTestHeightmap(t, 1, 1, fn)
	bank, err := NewBank(camera.Normal, 1, 1, poolSize, poolSize, nil)
	if err != nil {
		t.Fatalf("NewBank() error: %v", err)
	}
	p := &Patch{}
	p.Init(bank, hm, 0, 0)
	p.ComputeVariance()
	return p, bank
}

// retessellate resets the patch's tree and tessellates it from camPos.
func retessellate(p *Patch, bank *Bank, camPos math.Vec3, viewRadius float32) bool {
	bank.ResetAll()
	p.Reset()
	lo, hi := p.MinMaxHeight()
	return p.Tessellate(bank.Context(0), camPos, viewRadius, (lo+hi)/2)
}

// checkDiamond verifies that every leaf differs by at most one level from
// each node its links point at.
func checkDiamond(t *testing.T, bank *Bank, patches ...*Patch) {
	t.Helper()
	depth := map[NodeRef]int{}
	var visit func(ref NodeRef, d int)
	visit = func(ref NodeRef, d int) {
		depth[ref] = d
		n := bank.Node(ref)
		if n.IsBranch() {
			visit(n.LeftChild, d+1)
			visit(n.RightChild, d+1)
		}
	}
	for _, p := range patches {
		visit(p.BaseLeft(), 0)
		visit(p.BaseRight(), 0)
	}

	for ref, d := range depth {
		n := bank.Node(ref)
		if !n.IsLeaf() {
			continue
		}
		for _, nb := range []NodeRef{n.Base, n.Left, n.Right} {
			if nb == NullNode {
				continue
			}
			nd, ok := depth[nb]
			if !ok {
				t.Errorf("leaf %s links to %s outside the checked trees", ref, nb)
				continue
			}
			if nd-d > 1 || d-nd > 1 {
				t.Errorf("leaf %s at depth %d links to %s at depth %d", ref, d, nb, nd)
			}
		}
	}
}

func checkIndices(t *testing.T, p *Patch) {
	t.Helper()
	idx := p.Indices()
	if len(idx)%3 != 0 {
		t.Errorf("index count %d is not a multiple of 3", len(idx))
	}
	for _, i := range idx {
		if i >= patchVerts*patchVerts {
			t.Fatalf("index %d out of range", i)
		}
	}
}

// overheadView looks straight down on the whole map.
func overheadView(typ camera.Type, hm *terrain.Heightmap, viewRadius float32) *camera.View {
	w := float32(hm.Width() * terrain.SquareSize)
	d := float32(hm.Depth() * terrain.SquareSize)
	center := math.Vec3{X: w / 2, Z: d / 2}
	eye := math.Vec3{X: w / 2, Y: 2 * max(w, d), Z: d / 2}

	proj := math.Perspective(math32.Pi/2, 1, 1, 1e5)
	view := math.LookAt(eye, center, math.Vec3{Z: -1})
	return camera.NewView(typ, eye, proj.Mul(view), viewRadius)
}

// awayView looks away from the map and sees none of it.
func awayView(typ camera.Type, viewRadius float32) *camera.View {
	eye := math.Vec3{X: -5000, Y: 100, Z: -5000}
	proj := math.Perspective(math32.Pi/3, 1, 1, 1e4)
	view := math.LookAt(eye, math.Vec3{X: -10000, Y: 100, Z: -10000}, math.Vec3{Y: 1})
	return camera.NewView(typ, eye, proj.Mul(view), viewRadius)
}

// lowView hovers just above the terrain at (x, z) looking across the map.
func lowView(x, z, viewRadius float32) *camera.View {
	eye := math.Vec3{X: x, Y: 700, Z: z}
	return camera.NewPerspectiveView(eye, math.Vec3{X: x + 1000, Y: 0, Z: z + 1000}, math32.Pi/2, 1, 1, 1e5, viewRadius)
}
