package accel

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/core"
)

// Triangle is a single BVH leaf primitive: three world-space vertices, a
// face normal, and per-vertex uvs for texture lookups. Ported from the
// teacher's pkg/geometry Triangle.Hit (Möller-Trumbore), generalized to
// return a core.PrimitiveID instead of populating a mutable HitRecord.
type Triangle struct {
	V0, V1, V2 core.Vec3
	UV0, UV1, UV2 core.Vec2
	Normal     core.Vec3
	ID         core.PrimitiveID
}

// NewTriangle builds a triangle with a computed face normal.
func NewTriangle(v0, v1, v2 core.Vec3, id core.PrimitiveID) *Triangle {
	n := v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	return &Triangle{V0: v0, V1: v1, V2: v2, Normal: n, ID: id}
}

func (t *Triangle) Bounds() AABB {
	return NewAABBFromPoints(t.V0, t.V1, t.V2)
}

func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (float64, core.PrimitiveID, bool) {
	const epsilon = 1e-8
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.D.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, core.NoPrimitive, false
	}

	f := 1 / a
	s := ray.O.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, core.NoPrimitive, false
	}

	q := s.Cross(edge1)
	v := f * ray.D.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, core.NoPrimitive, false
	}

	tHit := f * edge2.Dot(q)
	if tHit < tMin || tHit > tMax {
		return 0, core.NoPrimitive, false
	}
	return tHit, t.ID, true
}

// Barycentric recomputes the (u,v,w) weights for a point already known to
// lie on the triangle's plane, used by the scene layer to interpolate uvs
// and shading normals after ClosestHit returns.
func (t *Triangle) Barycentric(p core.Vec3) (u, v, w float64) {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	ep := p.Subtract(t.V0)

	d00 := edge1.Dot(edge1)
	d01 := edge1.Dot(edge2)
	d11 := edge2.Dot(edge2)
	d20 := ep.Dot(edge1)
	d21 := ep.Dot(edge2)
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-12 {
		return 1, 0, 0
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1 - v - w
	return u, v, w
}

func (t *Triangle) UV(p core.Vec3) core.Vec2 {
	u, v, w := t.Barycentric(p)
	return core.Vec2{
		X: u*t.UV0.X + v*t.UV1.X + w*t.UV2.X,
		Y: u*t.UV0.Y + v*t.UV1.Y + w*t.UV2.Y,
	}
}
