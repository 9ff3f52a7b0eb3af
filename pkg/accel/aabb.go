package accel

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/core"
)

// AABB is an axis-aligned bounding box, ported from the teacher's slab-test
// implementation and generalized to core.Ray/core.Vec3.
type AABB struct {
	Min, Max core.Vec3
}

// NewAABBFromPoints returns an AABB bounding every point given.
func NewAABBFromPoints(points ...core.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	min, max := points[0], points[0]
	for _, p := range points[1:] {
		min.X, max.X = math.Min(min.X, p.X), math.Max(max.X, p.X)
		min.Y, max.Y = math.Min(min.Y, p.Y), math.Max(max.Y, p.Y)
		min.Z, max.Z = math.Min(min.Z, p.Z), math.Max(max.Z, p.Z)
	}
	return AABB{Min: min, Max: max}
}

// Hit tests the ray against the box's slabs over [tMin,tMax].
func (b AABB) Hit(ray core.Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		var lo, hi, o, d float64
		switch axis {
		case 0:
			lo, hi, o, d = b.Min.X, b.Max.X, ray.O.X, ray.D.X
		case 1:
			lo, hi, o, d = b.Min.Y, b.Max.Y, ray.O.Y, ray.D.Y
		default:
			lo, hi, o, d = b.Min.Z, b.Max.Z, ray.O.Z, ray.D.Z
		}
		if math.Abs(d) < 1e-8 {
			if o < lo || o > hi {
				return false
			}
			continue
		}
		invD := 1 / d
		t1, t2 := (lo-o)*invD, (hi-o)*invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: core.Vec3{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y), Z: math.Min(b.Min.Z, o.Min.Z)},
		Max: core.Vec3{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y), Z: math.Max(b.Max.Z, o.Max.Z)},
	}
}

func (b AABB) Center() core.Vec3 { return b.Min.Add(b.Max).Multiply(0.5) }

func (b AABB) Size() core.Vec3 { return b.Max.Subtract(b.Min) }

// LongestAxis returns 0/1/2 for the box's longest extent, used to pick a
// median-split axis when building the BVH.
func (b AABB) LongestAxis() int {
	s := b.Size()
	if s.X > s.Y && s.X > s.Z {
		return 0
	}
	if s.Y > s.Z {
		return 1
	}
	return 2
}
