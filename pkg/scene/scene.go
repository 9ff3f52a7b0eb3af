// Package scene implements the concrete Scene composing acceleration
// structure, materials, lights, camera, and an optional participating
// medium behind the core.Scene sampling contract (spec.md §2.8, §4.1).
// Its builder shape — accumulate primitives/lights, then Build() to
// construct the BVH — is ported from the teacher's Scene struct
// (originally pkg/scene/scene.go's Shapes/Lights/BVH/Preprocess pattern).
package scene

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/accel"
	"github.com/df07/lightmetrica-go/pkg/camera"
	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/light"
	"github.com/df07/lightmetrica-go/pkg/material"
	"github.com/df07/lightmetrica-go/pkg/medium"
	"github.com/df07/lightmetrica-go/pkg/phase"
)

// primRecord is the opaque back-reference a primitive_id resolves to: the
// triangle's geometry, its material, and the index of the area light it
// belongs to (-1 if it is not emissive). Stored by value in a slice indexed
// by core.PrimitiveID rather than a pointer-owning map, per spec.md §9's
// "opaque handles resolved through the asset catalog" rationale generalized
// to primitive identity.
type primRecord struct {
	tri      *accel.Triangle
	mat      material.Material
	lightIdx int
}

// Scene is the concrete, immutable-after-Build sampling contract
// implementation. All exported Add* methods are meant to run at
// scene-construction time only; render() shares *Scene read-only across
// workers (spec.md §5).
type Scene struct {
	Cam    *camera.Pinhole
	Medium medium.Medium // nil means vacuum
	Phase  material.Phase

	prims []primRecord
	bvh   *accel.BVH

	lights  []light.Light
	envIdx  int // index into lights of the environment light, -1 if none
	sampler *light.Sampler
}

// New creates an empty scene around the given camera. med may be nil for a
// vacuum scene; phase is the single global phase function used at every
// medium scattering event (spec.md's medium model does not vary phase
// spatially).
func New(cam *camera.Pinhole, med medium.Medium, ph material.Phase) *Scene {
	if ph == nil {
		ph = phase.NewHenyeyGreenstein(0)
	}
	return &Scene{Cam: cam, Medium: med, Phase: ph, envIdx: -1}
}

// AddTriangle registers a triangle with its shading material and returns
// the primitive_id later returned by Intersect.
func (s *Scene) AddTriangle(tri *accel.Triangle, mat material.Material) core.PrimitiveID {
	id := core.PrimitiveID(len(s.prims))
	tri.ID = id
	s.prims = append(s.prims, primRecord{tri: tri, mat: mat, lightIdx: -1})
	return id
}

// AddAreaLight wires an emissive light over triangles already added via
// AddTriangle, marking each as light-attached so IsLight/EvalContrbEndpoint
// resolve their emission.
func (s *Scene) AddAreaLight(ids []core.PrimitiveID, ke core.Vec3, twoSided bool) *light.AreaLight {
	tris := make([]light.Triangle, len(ids))
	for i, id := range ids {
		t := s.prims[id].tri
		tris[i] = light.Triangle{A: t.V0, B: t.V1, C: t.V2, N: t.Normal}
	}
	al := light.NewAreaLight(tris, ke, twoSided)
	idx := len(s.lights)
	s.lights = append(s.lights, al)
	for _, id := range ids {
		s.prims[id].lightIdx = idx
	}
	return al
}

// SetEnvironment installs the scene's single environment light.
func (s *Scene) SetEnvironment(env *light.Environment) {
	if s.envIdx >= 0 {
		s.lights[s.envIdx] = env
		return
	}
	s.envIdx = len(s.lights)
	s.lights = append(s.lights, env)
}

// Build constructs the acceleration structure over every added triangle.
// Must be called once, after all Add* calls and before rendering.
func (s *Scene) Build() {
	prims := make([]accel.Primitive, len(s.prims))
	for i, p := range s.prims {
		prims[i] = p.tri
	}
	s.bvh = accel.NewBVH(prims)
	s.sampler = light.NewUniformSampler(s.lights)
}

func (s *Scene) HasCamera() bool { return s.Cam != nil }
func (s *Scene) HasLight() bool  { return len(s.lights) > 0 }
func (s *Scene) HasAccel() bool  { return s.bvh != nil }

func (s *Scene) PrimaryRay(rp core.Vec2, _ float64) core.Ray {
	return s.Cam.PrimaryRay(rp)
}

func (s *Scene) RasterPosition(wo core.Vec3, _ float64) (core.Vec2, bool) {
	return s.Cam.RasterPosition(wo)
}

const shadowEps = 1e-4

func (s *Scene) hitToInteraction(ray core.Ray, t float64, id core.PrimitiveID) core.SceneInteraction {
	p := s.prims[id]
	pos := ray.At(t)
	n := p.tri.Normal
	if n.Dot(ray.D) > 0 {
		n = n.Negate()
	}
	return core.SceneInteraction{
		Type:        core.SurfacePoint,
		Geom:        core.Geometry{P: pos, N: n, T: p.tri.UV(pos)},
		PrimitiveID: id,
		LightIdx:    -1,
	}
}

func (s *Scene) Intersect(ray core.Ray, tmin, tmax float64) (core.SceneInteraction, bool) {
	t, id, ok := s.bvh.ClosestHit(ray, tmin, tmax)
	if ok {
		return s.hitToInteraction(ray, t, id), true
	}
	if math.IsInf(tmax, 1) && s.envIdx >= 0 {
		dir := ray.D.Normalize()
		return core.SceneInteraction{
			Type:     core.InfiniteEnvHit,
			Geom:     core.Geometry{Infinite: true, Wo: dir},
			LightIdx: s.envIdx,
		}, true
	}
	return core.SceneInteraction{}, false
}

func (s *Scene) Visible(sp1, sp2 core.SceneInteraction) bool {
	if sp1.Geom.Infinite && sp2.Geom.Infinite {
		return true
	}
	if sp2.Geom.Infinite {
		return s.visibleToInfinite(sp1.Geom.P, sp2.Geom.Wo)
	}
	if sp1.Geom.Infinite {
		return s.visibleToInfinite(sp2.Geom.P, sp1.Geom.Wo)
	}
	d := sp2.Geom.P.Subtract(sp1.Geom.P)
	dist := d.Length()
	if dist <= 2*shadowEps {
		return true
	}
	dir := d.Multiply(1 / dist)
	ray := core.NewRay(sp1.Geom.P, dir)
	return !s.bvh.AnyHit(ray, shadowEps, dist-shadowEps)
}

func (s *Scene) visibleToInfinite(from, towardInfiniteDir core.Vec3) bool {
	ray := core.NewRay(from, towardInfiniteDir)
	return !s.bvh.AnyHit(ray, shadowEps, 1e7)
}

// resolveLightIdx finds which light sp is attached to: LightIdx if the
// interaction was synthesized directly from a light sample (SampleDirectLight,
// or emission sampling in SampleRay), otherwise the light attached to sp's
// hit primitive.
func (s *Scene) resolveLightIdx(sp core.SceneInteraction) int {
	if sp.LightIdx >= 0 {
		return sp.LightIdx
	}
	if int(sp.PrimitiveID) < 0 || int(sp.PrimitiveID) >= len(s.prims) {
		return -1
	}
	return s.prims[sp.PrimitiveID].lightIdx
}

func (s *Scene) IsLight(sp core.SceneInteraction) bool {
	if sp.Geom.Infinite {
		return s.envIdx >= 0
	}
	if sp.Type != core.SurfacePoint && sp.Type != core.LightEndpoint {
		return false
	}
	return s.resolveLightIdx(sp) >= 0
}

func (s *Scene) IsSpecular(sp core.SceneInteraction, comp int) bool {
	switch sp.Type {
	case core.SurfacePoint, core.LightEndpoint:
		// A LightEndpoint sampled directly from emission (LightIdx set, no
		// attached triangle material) has no specular lobe of its own.
		if sp.Type == core.LightEndpoint && sp.LightIdx >= 0 {
			return false
		}
		if int(sp.PrimitiveID) < 0 || int(sp.PrimitiveID) >= len(s.prims) {
			return false
		}
		return s.prims[sp.PrimitiveID].mat.IsSpecular(sp.Geom, comp)
	case core.MediumPoint:
		return false
	default:
		return false
	}
}

func (s *Scene) materialAt(sp core.SceneInteraction) material.Material {
	return s.prims[sp.PrimitiveID].mat
}

func (s *Scene) SampleRay(rng core.RNG, sp core.SceneInteraction, wi core.Vec3) (core.RaySample, bool) {
	switch sp.Type {
	case core.LightEndpoint:
		idx := s.resolveLightIdx(sp)
		if idx < 0 {
			idx = s.envIdx
		}
		if idx < 0 {
			return core.RaySample{}, false
		}
		es, ok := s.lights[idx].SampleEmission(rng)
		if !ok {
			return core.RaySample{}, false
		}
		pdf := es.AreaPdf * es.DirectionPdf
		if pdf <= 0 {
			return core.RaySample{}, false
		}
		weight := es.Emission.Multiply(1 / pdf)
		newSp := core.SceneInteraction{Type: core.LightEndpoint, Geom: core.Geometry{P: es.Point, N: es.Normal, Infinite: es.Infinite}, LightIdx: idx}
		return core.RaySample{Sp: newSp, Comp: core.AnyComponent, Wo: es.Direction, Weight: weight}, true
	case core.CameraEndpoint:
		return core.RaySample{}, false // integrator special-cases the primary ray; see pkg/integrator
	case core.MediumPoint:
		samp, ok := s.Phase.SampleDirection(rng, wi)
		if !ok {
			return core.RaySample{}, false
		}
		return core.RaySample{Sp: sp, Comp: samp.Comp, Wo: samp.Wo, Weight: samp.Weight}, true
	default:
		samp, ok := s.materialAt(sp).SampleDirection(rng, sp.Geom, wi, core.TransportEL)
		if !ok {
			return core.RaySample{}, false
		}
		return core.RaySample{Sp: sp, Comp: samp.Comp, Wo: samp.Wo, Weight: samp.Weight}, true
	}
}

func (s *Scene) SampleDirection(rng core.RNG, sp core.SceneInteraction, wi core.Vec3) (core.DirectionSample, bool) {
	rs, ok := s.SampleRay(rng, sp, wi)
	if !ok {
		return core.DirectionSample{}, false
	}
	return core.DirectionSample{Wo: rs.Wo, Comp: rs.Comp, Weight: rs.Weight}, true
}

func (s *Scene) PdfDirection(sp core.SceneInteraction, comp int, wi, wo core.Vec3) float64 {
	switch sp.Type {
	case core.MediumPoint:
		return s.Phase.PdfDirection(wi, wo)
	case core.CameraEndpoint, core.LightEndpoint:
		return 0
	default:
		return s.materialAt(sp).PdfDirection(sp.Geom, wi, wo, comp, false)
	}
}

func (s *Scene) SampleDirectLight(rng core.RNG, sp core.SceneInteraction) (core.RaySample, bool) {
	idx, pmf := s.sampler.Sample(rng.U())
	if idx < 0 {
		return core.RaySample{}, false
	}
	l := s.sampler.Light(idx)
	ds, ok := l.SampleDirect(rng, sp.Geom.P)
	if !ok {
		return core.RaySample{}, false
	}
	pdf := ds.Pdf * pmf
	if pdf <= 0 {
		return core.RaySample{}, false
	}
	newSp := core.SceneInteraction{Type: core.LightEndpoint, Geom: core.Geometry{
		P: ds.Point, N: ds.Normal, Infinite: ds.Infinite, Wo: ds.Wo, Degenerated: ds.Infinite,
	}, LightIdx: idx}
	weight := ds.Emission.Multiply(1 / pdf)
	return core.RaySample{Sp: newSp, Comp: ds.Comp, Wo: ds.Wo, Weight: weight}, true
}

func (s *Scene) SampleDirectCamera(rng core.RNG, sp core.SceneInteraction, aspect float64) (core.RaySample, bool) {
	_, wo, dist, ok := s.Cam.SampleDirect(sp.Geom.P)
	if !ok {
		return core.RaySample{}, false
	}
	importance := s.Cam.EvalImportance(wo)
	if importance <= 0 {
		return core.RaySample{}, false
	}
	newSp := core.SceneInteraction{Type: core.CameraEndpoint, Geom: core.Geometry{P: s.Cam.Origin(), Degenerated: true}, LightIdx: -1}
	weight := core.Vec3{X: importance, Y: importance, Z: importance}
	return core.RaySample{Sp: newSp, Comp: core.AnyComponent, Wo: wo, Weight: weight.Multiply(1 / (dist * dist))}, true
}

func (s *Scene) PdfDirect(sp, spEndpoint core.SceneInteraction, compEndpoint int, wo core.Vec3) float64 {
	switch spEndpoint.Type {
	case core.LightEndpoint:
		idx := s.resolveLightIdx(spEndpoint)
		if idx < 0 {
			idx = s.envIdx
		}
		if idx < 0 {
			return 0
		}
		return s.lights[idx].PdfDirect(sp.Geom.P, spEndpoint.Geom.P, spEndpoint.Geom.N, spEndpoint.Geom.Infinite) * s.sampler.Pmf(idx)
	case core.CameraEndpoint:
		return 0 // pinhole lens is a Dirac delta; not samplable by direct-direction strategy
	default:
		return 0
	}
}

func (s *Scene) SampleDistance(rng core.RNG, sp core.SceneInteraction, wo core.Vec3) (core.DistanceSample, bool) {
	ray := core.NewRay(sp.Geom.P, wo)
	hit, hitOK := s.Intersect(ray, shadowEps, math.Inf(1))
	tSurf := math.Inf(1)
	if hitOK && !hit.Geom.Infinite {
		tSurf = hit.Geom.P.Subtract(sp.Geom.P).Length()
	}

	if s.Medium == nil {
		if !hitOK {
			return core.DistanceSample{}, false
		}
		return core.DistanceSample{Sp: hit, Weight: core.Vec3{X: 1, Y: 1, Z: 1}}, true
	}

	t, weight, scattered := s.Medium.SampleDistance(rng, ray, tSurf)
	if scattered {
		p := ray.At(t)
		return core.DistanceSample{
			Sp:     core.SceneInteraction{Type: core.MediumPoint, Geom: core.Geometry{P: p, Degenerated: true}, LightIdx: -1},
			Weight: weight,
		}, true
	}
	if !hitOK {
		return core.DistanceSample{}, false
	}
	return core.DistanceSample{Sp: hit, Weight: weight}, true
}

func (s *Scene) EvalTransmittance(rng core.RNG, sp1, sp2 core.SceneInteraction) core.Vec3 {
	if s.Medium == nil {
		return core.Vec3{X: 1, Y: 1, Z: 1}
	}
	if sp2.Geom.Infinite {
		ray := core.NewRay(sp1.Geom.P, sp2.Geom.Wo)
		return s.Medium.Transmittance(rng, ray, 1e7)
	}
	d := sp2.Geom.P.Subtract(sp1.Geom.P)
	dist := d.Length()
	if dist <= 1e-9 {
		return core.Vec3{X: 1, Y: 1, Z: 1}
	}
	ray := core.NewRay(sp1.Geom.P, d.Multiply(1/dist))
	return s.Medium.Transmittance(rng, ray, dist)
}

func (s *Scene) EvalContrb(sp core.SceneInteraction, comp int, wi, wo core.Vec3) core.Vec3 {
	switch sp.Type {
	case core.MediumPoint:
		return s.Phase.Eval(wi, wo)
	case core.LightEndpoint, core.CameraEndpoint:
		return s.EvalContrbEndpoint(sp, wo)
	default:
		return s.materialAt(sp).Eval(sp.Geom, wi, wo, comp, core.TransportEL, false)
	}
}

func (s *Scene) EvalContrbEndpoint(sp core.SceneInteraction, wo core.Vec3) core.Vec3 {
	if sp.Geom.Infinite {
		if s.envIdx < 0 {
			return core.Vec3{}
		}
		dir := sp.Geom.Wo
		if dir.IsZero() {
			dir = wo.Negate()
		}
		return s.lights[s.envIdx].Emit(dir)
	}
	if sp.Type == core.CameraEndpoint {
		importance := s.Cam.EvalImportance(wo)
		return core.Vec3{X: importance, Y: importance, Z: importance}
	}
	idx := s.resolveLightIdx(sp)
	if idx < 0 {
		return core.Vec3{}
	}
	if al, ok := s.lights[idx].(*light.AreaLight); ok {
		facing := wo.Dot(sp.Geom.N)
		if !al.TwoSided && facing <= 0 {
			return core.Vec3{}
		}
		return al.Ke
	}
	return core.Vec3{}
}

func (s *Scene) Reflectance(sp core.SceneInteraction, _ int) (core.Vec3, bool) {
	if sp.Type != core.SurfacePoint {
		return core.Vec3{}, false
	}
	return s.materialAt(sp).Reflectance(sp.Geom)
}

// PrimitiveNode is a leaf in the primitive hierarchy TraversePrimitiveNodes
// walks (spec.md §9's traversal design note).
type PrimitiveNode struct {
	ID  core.PrimitiveID
	Tri *accel.Triangle
}

// Transform is the accumulated affine transform along a scene-graph path
// from the root to a node. The current scene model is a single flat
// triangle soup with no nested instancing, so every node's transform is
// identity; a future instancing feature would accumulate through here.
type Transform struct {
	Translation core.Vec3
}

// TraversePrimitiveNodes performs an explicit pre-order walk over every
// primitive, yielding (node, global_transform) pairs, rather than exposing a
// function-typed visitor capability directly on the interface (spec.md §9).
func (s *Scene) TraversePrimitiveNodes(visit func(PrimitiveNode, Transform)) {
	for i, p := range s.prims {
		visit(PrimitiveNode{ID: core.PrimitiveID(i), Tri: p.tri}, Transform{})
	}
}
