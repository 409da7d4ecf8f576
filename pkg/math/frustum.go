package math

// Plane is the set of points p with Normal·p + D = 0.
// Points with a positive signed distance are on the inner side.
type Plane struct {
	Normal Vec3
	D      float32
}

// Distance returns the signed distance of p to the plane.
// The plane must be normalized for the result to be in world units.
func (p Plane) Distance(v Vec3) float32 {
	return p.Normal.Dot(v) + p.D
}

func planeFromRow(r [4]float32) Plane {
	p := Plane{Normal: Vec3{r[0], r[1], r[2]}, D: r[3]}
	l := p.Normal.Length()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Scale(1 / l), D: p.D / l}
}

// Frustum sides, in extraction order.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
	numFrustumPlanes
)

// Frustum is a convex view volume bounded by six inward-facing planes.
type Frustum struct {
	Planes [numFrustumPlanes]Plane
}

// FrustumFromMatrix extracts the planes of a view-projection matrix
// (projection * view) using the Gribb/Hartmann method.
func FrustumFromMatrix(viewProj Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)
	combine := func(a, b [4]float32, sign float32) [4]float32 {
		return [4]float32{a[0] + sign*b[0], a[1] + sign*b[1], a[2] + sign*b[2], a[3] + sign*b[3]}
	}

	var f Frustum
	f.Planes[FrustumLeft] = planeFromRow(combine(r3, r0, 1))
	f.Planes[FrustumRight] = planeFromRow(combine(r3, r0, -1))
	f.Planes[FrustumBottom] = planeFromRow(combine(r3, r1, 1))
	f.Planes[FrustumTop] = planeFromRow(combine(r3, r1, -1))
	f.Planes[FrustumNear] = planeFromRow(combine(r3, r2, 1))
	f.Planes[FrustumFar] = planeFromRow(combine(r3, r2, -1))
	return f
}

// ContainsPoint reports whether v lies inside or on the frustum.
func (f *Frustum) ContainsPoint(v Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(v) < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB reports whether the box [mins, maxs] is at least partially
// inside the frustum. The test is conservative: boxes near a frustum corner
// may be reported visible although they are not.
func (f *Frustum) IntersectsAABB(mins, maxs Vec3) bool {
	for i := range f.Planes {
		pl := &f.Planes[i]

		// the box corner furthest along the plane normal
		p := mins
		if pl.Normal.X >= 0 {
			p.X = maxs.X
		}
		if pl.Normal.Y >= 0 {
			p.Y = maxs.Y
		}
		if pl.Normal.Z >= 0 {
			p.Z = maxs.Z
		}
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}
