// Package phase implements participating-medium phase functions consumed by
// the volumetric integrator (spec.md §4.3).
package phase

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/material"
)

// HenyeyGreenstein is the classic closed-form phase function parameterized
// by asymmetry g in [-1,1]. g > 0 forward-scatters, g < 0 back-scatters,
// g == 0 is isotropic. Never specular.
type HenyeyGreenstein struct {
	G float64
}

// NewHenyeyGreenstein creates a Henyey-Greenstein phase function.
func NewHenyeyGreenstein(g float64) *HenyeyGreenstein {
	return &HenyeyGreenstein{G: math.Max(-1, math.Min(1, g))}
}

func (hg *HenyeyGreenstein) SampleDirection(rng core.RNG, wi core.Vec3) (material.Sample, bool) {
	u := rng.U2()
	cosTheta := core.SampleHenyeyGreenstein(hg.G, u.X)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y

	basis := core.NewBasis(wi)
	local := core.Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
	wo := basis.ToWorld(local)

	pdf := core.HenyeyGreensteinPDF(hg.G, cosTheta)
	if pdf <= 0 {
		return material.Sample{}, false
	}
	// The phase function is normalized to integrate to 1 over the sphere and
	// doubles as its own pdf, so f/pdf == 1 for a perfectly importance-sampled direction.
	return material.Sample{Wo: wo, Comp: 0, Weight: core.Vec3{X: 1, Y: 1, Z: 1}}, true
}

func (hg *HenyeyGreenstein) PdfDirection(wi, wo core.Vec3) float64 {
	cosTheta := wi.Dot(wo)
	return core.HenyeyGreensteinPDF(hg.G, cosTheta)
}

func (hg *HenyeyGreenstein) Eval(wi, wo core.Vec3) core.Vec3 {
	p := hg.PdfDirection(wi, wo)
	return core.Vec3{X: p, Y: p, Z: p}
}
