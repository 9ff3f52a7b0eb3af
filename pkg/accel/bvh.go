// Package accel implements the acceleration structure module (spec.md §2.7):
// a bounding-volume hierarchy over closest-hit/any-hit primitive queries,
// ported from the teacher's pkg/core BVH (median-split, leaf thresholding)
// and generalized from its Shape/HitRecord pair to an opaque Primitive
// contract keyed by core.PrimitiveID.
package accel

import (
	"sort"

	"github.com/df07/lightmetrica-go/pkg/core"
)

// Primitive is the minimal geometric query surface the BVH builds over:
// a bounding box for tree construction and a ray-hit test returning the
// hit distance and a stable primitive identity.
type Primitive interface {
	Bounds() AABB
	Hit(ray core.Ray, tMin, tMax float64) (t float64, id core.PrimitiveID, hit bool)
}

const leafThreshold = 8

type node struct {
	box         AABB
	left, right *node
	prims       []Primitive
}

// BVH is a bounding-volume hierarchy supporting closest-hit and any-hit
// queries over a static set of primitives.
type BVH struct {
	root  *node
	prims map[core.PrimitiveID]Primitive
}

// NewBVH builds a BVH over prims. The input slice is not retained.
func NewBVH(prims []Primitive) *BVH {
	if len(prims) == 0 {
		return &BVH{}
	}
	cp := make([]Primitive, len(prims))
	copy(cp, prims)
	return &BVH{root: build(cp)}
}

func build(prims []Primitive) *node {
	box := prims[0].Bounds()
	for _, p := range prims[1:] {
		box = box.Union(p.Bounds())
	}
	if len(prims) <= leafThreshold {
		return &node{box: box, prims: prims}
	}
	axis := box.LongestAxis()
	sort.Slice(prims, func(i, j int) bool {
		ci, cj := prims[i].Bounds().Center(), prims[j].Bounds().Center()
		switch axis {
		case 0:
			return ci.X < cj.X
		case 1:
			return ci.Y < cj.Y
		default:
			return ci.Z < cj.Z
		}
	})
	mid := len(prims) / 2
	return &node{box: box, left: build(prims[:mid]), right: build(prims[mid:])}
}

// ClosestHit returns the nearest primitive hit along ray within [tMin,tMax].
func (b *BVH) ClosestHit(ray core.Ray, tMin, tMax float64) (float64, core.PrimitiveID, bool) {
	if b.root == nil {
		return 0, core.NoPrimitive, false
	}
	return closestHitNode(b.root, ray, tMin, tMax)
}

func closestHitNode(n *node, ray core.Ray, tMin, tMax float64) (float64, core.PrimitiveID, bool) {
	if !n.box.Hit(ray, tMin, tMax) {
		return 0, core.NoPrimitive, false
	}
	if n.prims != nil {
		bestT, bestID, found := 0.0, core.NoPrimitive, false
		closest := tMax
		for _, p := range n.prims {
			if t, id, ok := p.Hit(ray, tMin, closest); ok {
				closest, bestT, bestID, found = t, t, id, true
			}
		}
		return bestT, bestID, found
	}
	closest := tMax
	bestT, bestID, found := 0.0, core.NoPrimitive, false
	if n.left != nil {
		if t, id, ok := closestHitNode(n.left, ray, tMin, closest); ok {
			closest, bestT, bestID, found = t, t, id, true
		}
	}
	if n.right != nil {
		if t, id, ok := closestHitNode(n.right, ray, tMin, closest); ok {
			bestT, bestID, found = t, id, true
		}
	}
	return bestT, bestID, found
}

// AnyHit reports whether any primitive occludes ray within [tMin,tMax],
// short-circuiting as soon as one is found (used by shadow-ray visibility).
func (b *BVH) AnyHit(ray core.Ray, tMin, tMax float64) bool {
	if b.root == nil {
		return false
	}
	return anyHitNode(b.root, ray, tMin, tMax)
}

func anyHitNode(n *node, ray core.Ray, tMin, tMax float64) bool {
	if !n.box.Hit(ray, tMin, tMax) {
		return false
	}
	if n.prims != nil {
		for _, p := range n.prims {
			if _, _, ok := p.Hit(ray, tMin, tMax); ok {
				return true
			}
		}
		return false
	}
	if n.left != nil && anyHitNode(n.left, ray, tMin, tMax) {
		return true
	}
	if n.right != nil && anyHitNode(n.right, ray, tMin, tMax) {
		return true
	}
	return false
}
