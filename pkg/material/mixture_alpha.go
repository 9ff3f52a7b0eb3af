package material

import (
	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/texture"
)

// MixtureWithAlpha is a three-lobe composite: Diffuse + GlossyAnisotropic +
// an Alpha pass-through lobe selected with probability 1-alpha(uv). Per
// spec.md §4.2, the marginal is defined only within a matching half-plane:
// when wi and wo are on opposite sides of the shading normal, only the Alpha
// lobe contributes; otherwise only D+G contribute (Alpha excluded).
type MixtureWithAlpha struct {
	D     *Diffuse
	G     *GlossyAnisotropic
	A     *Mask
	Alpha texture.Texture
}

// NewMixtureWithAlpha creates a diffuse+glossy+alpha composite material.
func NewMixtureWithAlpha(d *Diffuse, g *GlossyAnisotropic, alpha texture.Texture) *MixtureWithAlpha {
	return &MixtureWithAlpha{D: d, G: g, A: NewMask(), Alpha: alpha}
}

func (m *MixtureWithAlpha) selectionWeight(geom core.Geometry) (wD, wG float64) {
	kd, _ := m.D.Reflectance(geom)
	ks, _ := m.G.Reflectance(geom)
	maxKd, maxKs := kd.MaxComponent(), ks.MaxComponent()
	if maxKd+maxKs <= 0 {
		return 1, 0
	}
	wD = maxKd / (maxKd + maxKs)
	return wD, 1 - wD
}

// IsSpecular reports the per-lobe specularity: only Alpha is a delta.
func (m *MixtureWithAlpha) IsSpecular(_ core.Geometry, comp int) bool {
	return comp == CompAlpha
}

func sameHalfPlane(n, wi, wo core.Vec3) bool {
	return sign(wi.Dot(n)) == sign(wo.Dot(n))
}

func sign(x float64) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}

func (m *MixtureWithAlpha) SampleDirection(rng core.RNG, geom core.Geometry, wi core.Vec3, transport core.TransportDir) (Sample, bool) {
	a := m.Alpha.EvalAlpha(geom.T)
	if rng.U() >= a {
		s, ok := m.A.SampleDirection(rng, geom, wi, transport)
		if !ok {
			return Sample{}, false
		}
		return Sample{Wo: s.Wo, Comp: CompAlpha, Weight: s.Weight}, true
	}

	wD, wG := m.selectionWeight(geom)
	pickDiffuse := rng.U() < wD

	var s Sample
	var ok bool
	comp := CompDiffuse
	if pickDiffuse {
		s, ok = m.D.SampleDirection(rng, geom, wi, transport)
	} else {
		comp = CompGlossy
		s, ok = m.G.SampleDirection(rng, geom, wi, transport)
	}
	if !ok || !sameHalfPlane(geom.N, wi, s.Wo) {
		return Sample{}, false
	}

	marginalPdf := a * (wD*m.D.PdfDirection(geom, wi, s.Wo, CompDiffuse, false) +
		wG*m.G.PdfDirection(geom, wi, s.Wo, CompGlossy, false))
	if marginalPdf <= 0 {
		return Sample{}, false
	}
	f := m.D.Eval(geom, wi, s.Wo, CompDiffuse, transport, false).
		Add(m.G.Eval(geom, wi, s.Wo, CompGlossy, transport, false))
	cosTheta := s.Wo.Dot(geom.N)
	if cosTheta < 0 {
		cosTheta = -cosTheta // opposite-facing lobes still need |cos| here since D+G only fire same-side
	}
	return Sample{Wo: s.Wo, Comp: comp, Weight: f.Multiply(cosTheta / marginalPdf)}, true
}

func (m *MixtureWithAlpha) PdfDirection(geom core.Geometry, wi, wo core.Vec3, comp int, evalDelta bool) float64 {
	switch comp {
	case CompAlpha:
		return 0 // delta lobe; MIS bypasses direction-strategy comparison entirely
	case CompDiffuse:
		if !sameHalfPlane(geom.N, wi, wo) {
			return 0
		}
		return m.D.PdfDirection(geom, wi, wo, CompDiffuse, evalDelta)
	case CompGlossy:
		if !sameHalfPlane(geom.N, wi, wo) {
			return 0
		}
		return m.G.PdfDirection(geom, wi, wo, CompGlossy, evalDelta)
	default:
		if !sameHalfPlane(geom.N, wi, wo) {
			return 0 // only Alpha contributes here, and it's a delta
		}
		a := m.Alpha.EvalAlpha(geom.T)
		wD, wG := m.selectionWeight(geom)
		return a * (wD*m.D.PdfDirection(geom, wi, wo, CompDiffuse, evalDelta) +
			wG*m.G.PdfDirection(geom, wi, wo, CompGlossy, evalDelta))
	}
}

func (m *MixtureWithAlpha) Eval(geom core.Geometry, wi, wo core.Vec3, comp int, transport core.TransportDir, evalDelta bool) core.Vec3 {
	switch comp {
	case CompAlpha:
		return core.Vec3{}
	case CompDiffuse:
		if !sameHalfPlane(geom.N, wi, wo) {
			return core.Vec3{}
		}
		return m.D.Eval(geom, wi, wo, CompDiffuse, transport, evalDelta)
	case CompGlossy:
		if !sameHalfPlane(geom.N, wi, wo) {
			return core.Vec3{}
		}
		return m.G.Eval(geom, wi, wo, CompGlossy, transport, evalDelta)
	default:
		if !sameHalfPlane(geom.N, wi, wo) {
			return core.Vec3{} // only Alpha contributes here, and its eval is 0 unless evalDelta
		}
		return m.D.Eval(geom, wi, wo, CompDiffuse, transport, evalDelta).
			Add(m.G.Eval(geom, wi, wo, CompGlossy, transport, evalDelta))
	}
}

func (m *MixtureWithAlpha) Reflectance(geom core.Geometry) (core.Vec3, bool) {
	return m.D.Reflectance(geom)
}
