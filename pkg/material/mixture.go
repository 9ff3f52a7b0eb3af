package material

import "github.com/df07/lightmetrica-go/pkg/core"

// Component indices for the two-lobe Mixture and three-lobe MixtureWithAlpha
// composites (spec.md §4.2).
const (
	CompDiffuse = 0
	CompGlossy  = 1
	CompAlpha   = 2
)

// Mixture blends a Diffuse and a GlossyAnisotropic lobe. The lobe to sample
// from is picked with probability wD = max(Kd)/(max(Kd)+max(Ks)) (or 1 if
// both are zero); the returned sample's weight is evaluated against the
// marginal distribution across both lobes, not just the chosen one, per
// spec.md §4.2's Mixture row.
type Mixture struct {
	D *Diffuse
	G *GlossyAnisotropic
}

// NewMixture creates a diffuse+glossy mixture material.
func NewMixture(d *Diffuse, g *GlossyAnisotropic) *Mixture {
	return &Mixture{D: d, G: g}
}

// selectionWeight returns (wD, wG), the probability of choosing the diffuse
// vs glossy lobe.
func (m *Mixture) selectionWeight(geom core.Geometry) (wD, wG float64) {
	kd, _ := m.D.Reflectance(geom)
	ks, _ := m.G.Reflectance(geom)
	maxKd, maxKs := kd.MaxComponent(), ks.MaxComponent()
	if maxKd+maxKs <= 0 {
		return 1, 0
	}
	wD = maxKd / (maxKd + maxKs)
	return wD, 1 - wD
}

func (m *Mixture) IsSpecular(core.Geometry, int) bool { return false }

func (m *Mixture) SampleDirection(rng core.RNG, geom core.Geometry, wi core.Vec3, transport core.TransportDir) (Sample, bool) {
	wD, wG := m.selectionWeight(geom)
	pickDiffuse := rng.U() < wD

	var s Sample
	var ok bool
	if pickDiffuse {
		s, ok = m.D.SampleDirection(rng, geom, wi, transport)
	} else {
		s, ok = m.G.SampleDirection(rng, geom, wi, transport)
	}
	if !ok {
		return Sample{}, false
	}

	marginalPdf := wD*m.D.PdfDirection(geom, wi, s.Wo, CompDiffuse, false) +
		wG*m.G.PdfDirection(geom, wi, s.Wo, CompGlossy, false)
	if marginalPdf <= 0 {
		return Sample{}, false
	}
	f := m.D.Eval(geom, wi, s.Wo, CompDiffuse, transport, false).
		Add(m.G.Eval(geom, wi, s.Wo, CompGlossy, transport, false))
	cosTheta := s.Wo.Dot(geom.N)
	if cosTheta <= 0 {
		return Sample{}, false
	}
	comp := CompDiffuse
	if !pickDiffuse {
		comp = CompGlossy
	}
	return Sample{Wo: s.Wo, Comp: comp, Weight: f.Multiply(cosTheta / marginalPdf)}, true
}

func (m *Mixture) PdfDirection(geom core.Geometry, wi, wo core.Vec3, comp int, evalDelta bool) float64 {
	switch comp {
	case CompDiffuse:
		return m.D.PdfDirection(geom, wi, wo, CompDiffuse, evalDelta)
	case CompGlossy:
		return m.G.PdfDirection(geom, wi, wo, CompGlossy, evalDelta)
	default:
		wD, wG := m.selectionWeight(geom)
		return wD*m.D.PdfDirection(geom, wi, wo, CompDiffuse, evalDelta) +
			wG*m.G.PdfDirection(geom, wi, wo, CompGlossy, evalDelta)
	}
}

func (m *Mixture) Eval(geom core.Geometry, wi, wo core.Vec3, comp int, transport core.TransportDir, evalDelta bool) core.Vec3 {
	switch comp {
	case CompDiffuse:
		return m.D.Eval(geom, wi, wo, CompDiffuse, transport, evalDelta)
	case CompGlossy:
		return m.G.Eval(geom, wi, wo, CompGlossy, transport, evalDelta)
	default:
		return m.D.Eval(geom, wi, wo, CompDiffuse, transport, evalDelta).
			Add(m.G.Eval(geom, wi, wo, CompGlossy, transport, evalDelta))
	}
}

func (m *Mixture) Reflectance(geom core.Geometry) (core.Vec3, bool) {
	return m.D.Reflectance(geom)
}
