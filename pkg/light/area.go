package light

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/core"
)

// Triangle is the minimal geometric record AreaLight needs: three world
// positions and a constant (per-face) normal. Meshes hand these to AreaLight
// already resolved through the asset catalog (spec.md §9).
type Triangle struct {
	A, B, C core.Vec3
	N       core.Vec3
}

func (t Triangle) area() float64 {
	return t.B.Subtract(t.A).Cross(t.C.Subtract(t.A)).Length() / 2
}

func (t Triangle) samplePoint(u core.Vec2) core.Vec3 {
	bc := core.SampleUniformTriangle(u)
	return core.BarycentricMix(t.A, t.B, t.C, bc.X, bc.Y)
}

// AreaLight uniformly samples a point over an attached triangle mesh's
// surface, weighted by triangle area, and emits a constant radiance Ke —
// ported from the teacher's quad/sphere light area-sampling approach
// (pkg/lights/quad_light.go, pkg/lights/sphere_light.go) generalized to
// arbitrary triangle soup.
type AreaLight struct {
	Triangles []Triangle
	Ke        core.Vec3
	TwoSided  bool

	totalArea float64
	cdf       []float64 // cumulative area, length == len(Triangles)
}

// NewAreaLight builds an area light over a set of triangles emitting Ke.
func NewAreaLight(tris []Triangle, ke core.Vec3, twoSided bool) *AreaLight {
	al := &AreaLight{Triangles: tris, Ke: ke, TwoSided: twoSided}
	al.cdf = make([]float64, len(tris))
	acc := 0.0
	for i, t := range tris {
		acc += t.area()
		al.cdf[i] = acc
	}
	al.totalArea = acc
	return al
}

func (al *AreaLight) pickTriangle(u float64) (Triangle, float64) {
	if al.totalArea <= 0 || len(al.Triangles) == 0 {
		return Triangle{}, 0
	}
	target := u * al.totalArea
	lo, hi := 0, len(al.cdf)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if al.cdf[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return al.Triangles[lo], al.Triangles[lo].area()
}

func (al *AreaLight) SampleDirect(rng core.RNG, refPoint core.Vec3) (DirectSample, bool) {
	if al.totalArea <= 0 {
		return DirectSample{}, false
	}
	tri, _ := al.pickTriangle(rng.U())
	p := tri.samplePoint(rng.U2())

	toRef := refPoint.Subtract(p)
	dist := toRef.Length()
	if dist <= 1e-9 {
		return DirectSample{}, false
	}
	wo := toRef.Multiply(1 / dist) // from light to refPoint

	cosLight := wo.Dot(tri.N)
	if !al.TwoSided && cosLight <= 0 {
		return DirectSample{}, false
	}
	cosLight = math.Abs(cosLight)

	pdfArea := 1 / al.totalArea
	pdfSolid := pdfArea * dist * dist / cosLight
	if pdfSolid <= 0 || math.IsInf(pdfSolid, 0) {
		return DirectSample{}, false
	}

	return DirectSample{
		Point: p, Normal: tri.N, Wo: wo, Distance: dist,
		Emission: al.Ke, Pdf: pdfSolid,
	}, true
}

func (al *AreaLight) PdfDirect(refPoint, lightPoint, lightNormal core.Vec3, _ bool) float64 {
	if al.totalArea <= 0 {
		return 0
	}
	toRef := refPoint.Subtract(lightPoint)
	dist := toRef.Length()
	if dist <= 1e-9 {
		return 0
	}
	cosLight := math.Abs(toRef.Multiply(1 / dist).Dot(lightNormal))
	if cosLight <= 0 {
		return 0
	}
	return (1 / al.totalArea) * dist * dist / cosLight
}

func (al *AreaLight) SampleEmission(rng core.RNG) (EmissionSample, bool) {
	tri, _ := al.pickTriangle(rng.U())
	if al.totalArea <= 0 {
		return EmissionSample{}, false
	}
	p := tri.samplePoint(rng.U2())
	dir := core.SampleCosineHemisphere(tri.N, rng.U2())
	areaPdf := 1 / al.totalArea
	dirPdf := core.CosineHemispherePDF(dir.Dot(tri.N))
	if dirPdf <= 0 {
		return EmissionSample{}, false
	}
	return EmissionSample{
		Point: p, Normal: tri.N, Direction: dir, Emission: al.Ke,
		AreaPdf: areaPdf, DirectionPdf: dirPdf,
	}, true
}

// Emit returns zero: an area light's emission is evaluated through the
// SceneInteraction's LightEndpoint tag (its Ke), not by direction alone.
func (al *AreaLight) Emit(core.Vec3) core.Vec3 { return core.Vec3{} }

func (al *AreaLight) IsInfinite() bool { return false }
