package roam

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/roam-terrain/pkg/math"
)

// skirtDepth is how far below the patch's lowest sample a skirt reaches.
// The skirt base never rises above -skirtDepth.
const skirtDepth = 400

var (
	skirtTop    = [4]uint8{255, 255, 255, 255}
	skirtBottom = [4]uint8{255, 255, 255, 0}
)

// BorderVertex is a skirt vertex with its RGBA color.
type BorderVertex struct {
	Pos   math.Vec3
	Color [4]uint8
}

// Indices returns the triangle list of the last GenerateIndices call,
// indexing into Vertices. The slice stays valid until the call after next.
func (p *Patch) Indices() []uint32 { return p.indices[p.indexFront] }

// BorderVertices returns the skirt triangles of the last
// GenerateBorderVertices call, three vertices per triangle.
func (p *Patch) BorderVertices() []BorderVertex { return p.border[p.borderFront] }

// GenerateIndices emits one triangle per leaf into the back buffer and
// swaps it to the front once complete.
func (p *Patch) GenerateIndices() {
	back := 1 - p.indexFront
	buf := p.indices[back][:0]
	buf = p.appendIndices(buf, p.baseLeft, rootLeftTri[0], rootLeftTri[1], rootLeftTri[2])
	buf = p.appendIndices(buf, p.baseRight, rootRightTri[0], rootRightTri[1], rootRightTri[2])
	p.indices[back] = buf
	p.indexFront = back
	p.tessellated = true
}

func vertexIndex(c Corner) uint32 {
	return uint32(c.X + c.Z*patchVerts)
}

func (p *Patch) appendIndices(buf []uint32, ref NodeRef, left, right, apex Corner) []uint32 {
	n := p.bank.Node(ref)
	if n.IsLeaf() {
		return append(buf, vertexIndex(apex), vertexIndex(left), vertexIndex(right))
	}
	center := midpoint(left, right)
	buf = p.appendIndices(buf, n.LeftChild, apex, left, center)
	return p.appendIndices(buf, n.RightChild, right, apex, center)
}

// GenerateBorderVertices builds skirts along every patch edge without a
// neighbouring patch, into the back buffer, and swaps it to the front.
func (p *Patch) GenerateBorderVertices() {
	back := 1 - p.borderFront
	b := borderBuilder{
		p:    p,
		buf:  p.border[back][:0],
		base: math32.Min(p.minHeight-skirtDepth, -skirtDepth),
	}

	bl, br := p.bank.Node(p.baseLeft), p.bank.Node(p.baseRight)
	if bl.Left == NullNode {
		b.walk(p.baseLeft, rootLeftTri, 1, true)
	}
	if br.Right == NullNode {
		b.walk(p.baseRight, rootRightTri, 1, false)
	}
	if bl.Right == NullNode {
		b.walk(p.baseLeft, rootLeftTri, 1, false)
	}
	if br.Left == NullNode {
		b.walk(p.baseRight, rootRightTri, 1, true)
	}

	p.border[back] = b.buf
	p.borderFront = back
}

// ReleaseBuffers drops the index and border buffers. It reports whether the
// patch held any.
func (p *Patch) ReleaseBuffers() bool {
	if !p.tessellated {
		return false
	}
	p.indices = [2][]uint32{}
	p.border = [2][]BorderVertex{}
	p.tessellated = false
	return true
}

type borderBuilder struct {
	p    *Patch
	buf  []BorderVertex
	base float32
}

// walk follows the leaves along one patch edge. Even levels lie on the edge
// with their hypotenuse, odd levels with the leg selected by leftLeg.
func (b *borderBuilder) walk(ref NodeRef, tri [3]Corner, level int, leftLeg bool) {
	left, right, apex := tri[0], tri[1], tri[2]
	n := b.p.bank.Node(ref)

	if n.IsLeaf() {
		switch {
		case level%2 == 0:
			b.quad(left, right)
		case leftLeg:
			b.quad(apex, left)
		default:
			b.quad(right, apex)
		}
		return
	}

	center := midpoint(left, right)
	switch {
	case level%2 == 0:
		b.walk(n.LeftChild, [3]Corner{apex, left, center}, level+1, !leftLeg)
		b.walk(n.RightChild, [3]Corner{right, apex, center}, level+1, leftLeg)
	case leftLeg:
		b.walk(n.LeftChild, [3]Corner{apex, left, center}, level+1, leftLeg)
	default:
		b.walk(n.RightChild, [3]Corner{right, apex, center}, level+1, !leftLeg)
	}
}

// quad emits two triangles hanging from the edge a-b down to the skirt base.
func (b *borderBuilder) quad(a, c Corner) {
	ax, ay, az := b.p.vertex(a)
	cx, cy, cz := b.p.vertex(c)

	aTop := BorderVertex{Pos: math.Vec3{X: ax, Y: ay, Z: az}, Color: skirtTop}
	aBot := BorderVertex{Pos: math.Vec3{X: ax, Y: b.base, Z: az}, Color: skirtBottom}
	cTop := BorderVertex{Pos: math.Vec3{X: cx, Y: cy, Z: cz}, Color: skirtTop}
	cBot := BorderVertex{Pos: math.Vec3{X: cx, Y: b.base, Z: cz}, Color: skirtBottom}

	b.buf = append(b.buf, aTop, aBot, cTop, cTop, aBot, cBot)
}
