package material

import "github.com/df07/lightmetrica-go/pkg/core"

// Glass is a smooth dielectric with two delta components: comp 0 reflects,
// comp 1 refracts (spec.md §4.2). Sampling picks reflect with Schlick
// probability F and refract with probability 1-F; total internal reflection
// forces the reflect branch. The refraction weight is scaled by eta^2 to
// account for the radiance-transport Jacobian, applied only for
// eye-to-light transport per spec.md §9's open question.
type Glass struct {
	Ni float64 // index of refraction, e.g. 1.5
}

// NewGlass creates a glass material with the given index of refraction.
func NewGlass(ni float64) *Glass { return &Glass{Ni: ni} }

const (
	// CompGlassReflect is Glass's reflect lobe index.
	CompGlassReflect = 0
	// CompGlassRefract is Glass's refract lobe index.
	CompGlassRefract = 1
)

func (g *Glass) IsSpecular(core.Geometry, int) bool { return true }

// faceForward returns (n, eta, entering): n flipped to the same side as wi,
// and the relative IOR eta = n_incident_side / n_transmitted_side.
func (g *Glass) faceForward(geom core.Geometry, wi core.Vec3) (n core.Vec3, eta float64, entering bool) {
	entering = wi.Dot(geom.N) > 0
	if entering {
		return geom.N, 1 / g.Ni, true
	}
	return geom.N.Negate(), g.Ni, false
}

func (g *Glass) SampleDirection(rng core.RNG, geom core.Geometry, wi core.Vec3, transport core.TransportDir) (Sample, bool) {
	n, eta, _ := g.faceForward(geom, wi)
	cosI := wi.Dot(n)

	wt, totalInternal := core.Refract(wi, n, eta)
	F := core.SchlickFresnel(cosI, 1/eta)
	if totalInternal {
		F = 1
	}

	if rng.U() < F {
		wo := core.Reflect(wi, n)
		return Sample{Wo: wo, Comp: CompGlassReflect, Weight: core.Vec3{X: 1, Y: 1, Z: 1}}, true
	}

	weight := core.Vec3{X: 1, Y: 1, Z: 1}
	if transport == core.TransportEL {
		weight = weight.Multiply(eta * eta)
	}
	return Sample{Wo: wt, Comp: CompGlassRefract, Weight: weight}, true
}

func (g *Glass) PdfDirection(core.Geometry, core.Vec3, core.Vec3, int, bool) float64 { return 0 }

func (g *Glass) Eval(core.Geometry, core.Vec3, core.Vec3, int, core.TransportDir, bool) core.Vec3 {
	return core.Vec3{}
}

func (g *Glass) Reflectance(core.Geometry) (core.Vec3, bool) { return core.Vec3{}, false }

// FresnelAt returns the Schlick reflectance for an incident direction wi at
// geom, and whether the ray is undergoing total internal reflection. Exposed
// for the glass end-to-end scenario in spec.md §8 scenario 4.
func (g *Glass) FresnelAt(geom core.Geometry, wi core.Vec3) (F float64, totalInternal bool) {
	n, eta, _ := g.faceForward(geom, wi)
	cosI := wi.Dot(n)
	_, tir := core.Refract(wi, n, eta)
	if tir {
		return 1, true
	}
	return core.SchlickFresnel(cosI, 1/eta), false
}
