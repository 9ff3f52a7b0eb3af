package material

import (
	"math"
	"testing"

	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/texture"
)

func halfAlpha() *texture.Constant {
	return &texture.Constant{Color: core.Vec3{}, Alpha: 0.5}
}

func upGeom() core.Geometry {
	return core.Geometry{N: core.Vec3{X: 0, Y: 0, Z: 1}}
}

func TestDiffuseSampleMatchesPdf(t *testing.T) {
	d := NewDiffuse(core.Vec3{X: 0.8, Y: 0.2, Z: 0.2})
	geom := upGeom()
	rng := core.NewRNG(1)
	wi := core.Vec3{X: 0, Y: 0, Z: 1}

	s, ok := d.SampleDirection(rng, geom, wi, core.TransportEL)
	if !ok {
		t.Fatal("expected diffuse sample to succeed")
	}
	if s.Wo.Dot(geom.N) <= 0 {
		t.Fatalf("expected sampled direction in the upper hemisphere, got %v", s.Wo)
	}
	pdf := d.PdfDirection(geom, wi, s.Wo, CompDiffuse, false)
	if pdf <= 0 {
		t.Fatal("expected a positive pdf for a hemisphere-sampled direction")
	}
	// weight == f*cos/pdf == Kd (cosine-weighted sampling cancels cos/pdf exactly).
	f := d.Eval(geom, wi, s.Wo, CompDiffuse, core.TransportEL, false)
	cosTheta := s.Wo.Dot(geom.N)
	want := f.Multiply(cosTheta / pdf)
	if math.Abs(s.Weight.X-want.X) > 1e-9 || math.Abs(s.Weight.Y-want.Y) > 1e-9 || math.Abs(s.Weight.Z-want.Z) > 1e-9 {
		t.Fatalf("expected weight %v to equal f*cos/pdf %v", s.Weight, want)
	}
}

func TestDiffuseEvalMatchesLambertian(t *testing.T) {
	d := NewDiffuse(core.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	geom := upGeom()
	wo := core.Vec3{X: 0, Y: 0, Z: 1}
	f := d.Eval(geom, core.Vec3{}, wo, CompDiffuse, core.TransportEL, false)
	want := 0.5 / math.Pi
	if math.Abs(f.X-want) > 1e-9 {
		t.Fatalf("expected Kd/pi = %v, got %v", want, f.X)
	}
	// behind the surface, eval must be zero
	back := d.Eval(geom, core.Vec3{}, wo.Negate(), CompDiffuse, core.TransportEL, false)
	if !back.IsZero() {
		t.Fatalf("expected zero eval below the surface, got %v", back)
	}
}

func TestMirrorReflectsAboutNormal(t *testing.T) {
	m := NewMirror()
	geom := upGeom()
	wi := core.Vec3{X: 1, Y: 0, Z: 1}.Normalize()
	s, ok := m.SampleDirection(core.NewRNG(1), geom, wi, core.TransportEL)
	if !ok {
		t.Fatal("expected mirror sample to succeed for a front-facing wi")
	}
	want := core.Reflect(wi, geom.N)
	if math.Abs(s.Wo.X-want.X) > 1e-9 || math.Abs(s.Wo.Z-want.Z) > 1e-9 {
		t.Fatalf("expected reflected direction %v, got %v", want, s.Wo)
	}
	if m.PdfDirection(geom, wi, s.Wo, 0, false) != 0 {
		t.Fatal("expected mirror pdf to be zero (delta lobe)")
	}
}

func TestMirrorRejectsBackFacingIncidence(t *testing.T) {
	m := NewMirror()
	geom := upGeom()
	wi := core.Vec3{X: 0, Y: 0, Z: -1}
	if _, ok := m.SampleDirection(core.NewRNG(1), geom, wi, core.TransportEL); ok {
		t.Fatal("expected mirror to reject wi on the far side of the normal")
	}
}

func TestGlassFresnelAtNormalIncidenceIsLow(t *testing.T) {
	g := NewGlass(1.5)
	geom := upGeom()
	wi := core.Vec3{X: 0, Y: 0, Z: 1}
	F, tir := g.FresnelAt(geom, wi)
	if tir {
		t.Fatal("expected no total internal reflection entering at normal incidence")
	}
	if F > 0.1 {
		t.Fatalf("expected a low Fresnel reflectance at normal incidence, got %v", F)
	}
}

func TestGlassFresnelAtGrazingIncidenceIsHigh(t *testing.T) {
	g := NewGlass(1.5)
	geom := upGeom()
	wi := core.Vec3{X: 0.999, Y: 0, Z: 0.045}.Normalize()
	F, _ := g.FresnelAt(geom, wi)
	if F < 0.5 {
		t.Fatalf("expected a high Fresnel reflectance near grazing incidence, got %v", F)
	}
}

func TestGlassTotalInternalReflectionForcesFresnelToOne(t *testing.T) {
	g := NewGlass(1.5)
	geom := upGeom()
	// exiting the denser medium (wi below the normal) at a shallow angle
	// triggers total internal reflection past the critical angle.
	wi := core.Vec3{X: 0.999, Y: 0, Z: -0.045}.Normalize()
	F, tir := g.FresnelAt(geom, wi)
	if !tir {
		t.Fatal("expected total internal reflection at a shallow exiting angle")
	}
	if F != 1 {
		t.Fatalf("expected Fresnel forced to 1 under total internal reflection, got %v", F)
	}
}

func TestGlassSampleAlwaysReturnsAUnitDeltaWeight(t *testing.T) {
	g := NewGlass(1.5)
	geom := upGeom()
	wi := core.Vec3{X: 0, Y: 0, Z: 1}
	for seed := int64(0); seed < 20; seed++ {
		s, ok := g.SampleDirection(core.NewRNG(seed), geom, wi, core.TransportEL)
		if !ok {
			t.Fatal("expected glass to always produce a sample at normal incidence")
		}
		if s.Comp != CompGlassReflect && s.Comp != CompGlassRefract {
			t.Fatalf("expected comp to be reflect or refract, got %d", s.Comp)
		}
	}
}

func TestGlossySampleReciprocatesWithPdf(t *testing.T) {
	g := NewGlossyAnisotropic(core.Vec3{X: 1, Y: 1, Z: 1}, 0.3, 0.3)
	geom := upGeom()
	wi := core.Vec3{X: 0.3, Y: 0, Z: 1}.Normalize()
	rng := core.NewRNG(3)

	s, ok := g.SampleDirection(rng, geom, wi, core.TransportEL)
	if !ok {
		t.Fatal("expected glossy sample to succeed")
	}
	pdf := g.PdfDirection(geom, wi, s.Wo, 0, false)
	if pdf <= 0 {
		t.Fatal("expected a positive pdf for a sampled direction")
	}
	f := g.Eval(geom, wi, s.Wo, 0, core.TransportEL, false)
	cosTheta := s.Wo.Dot(geom.N)
	want := f.Multiply(cosTheta / pdf)
	if math.Abs(s.Weight.X-want.X) > 1e-6 {
		t.Fatalf("expected weight %v to equal f*cos/pdf %v", s.Weight, want)
	}
}

func TestMixtureSelectsProportionallyToAlbedo(t *testing.T) {
	// an almost-pure-diffuse mixture should pick the diffuse lobe far more
	// often than the glossy one.
	d := NewDiffuse(core.Vec3{X: 0.9, Y: 0.9, Z: 0.9})
	g := NewGlossyAnisotropic(core.Vec3{X: 0.01, Y: 0.01, Z: 0.01}, 0.2, 0.2)
	mix := NewMixture(d, g)
	geom := upGeom()
	wi := core.Vec3{X: 0, Y: 0, Z: 1}

	diffuseCount := 0
	const n = 200
	for seed := int64(0); seed < n; seed++ {
		s, ok := mix.SampleDirection(core.NewRNG(seed), geom, wi, core.TransportEL)
		if !ok {
			continue
		}
		if s.Comp == CompDiffuse {
			diffuseCount++
		}
	}
	if diffuseCount < n*3/4 {
		t.Fatalf("expected the diffuse-dominant mixture to pick diffuse most of the time, got %d/%d", diffuseCount, n)
	}
}

func TestMixtureMarginalPdfIsWeightedSumOfLobes(t *testing.T) {
	d := NewDiffuse(core.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	g := NewGlossyAnisotropic(core.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 0.3, 0.3)
	mix := NewMixture(d, g)
	geom := upGeom()
	wi := core.Vec3{X: 0, Y: 0, Z: 1}
	wo := core.Vec3{X: 0.2, Y: 0, Z: 1}.Normalize()

	wD, wG := mix.selectionWeight(geom)
	want := wD*d.PdfDirection(geom, wi, wo, CompDiffuse, false) + wG*g.PdfDirection(geom, wi, wo, CompGlossy, false)
	got := mix.PdfDirection(geom, wi, wo, core.AnyComponent, false)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected marginal pdf %v, got %v", want, got)
	}
}

func TestMixtureWithAlphaGatesLobesByHalfPlane(t *testing.T) {
	if !sameHalfPlane(core.Vec3{X: 0, Y: 0, Z: 1}, core.Vec3{X: 0, Y: 0, Z: 1}, core.Vec3{X: 0.1, Y: 0, Z: 1}) {
		t.Fatal("expected two directions on the same side of the normal to share a half-plane")
	}
	if sameHalfPlane(core.Vec3{X: 0, Y: 0, Z: 1}, core.Vec3{X: 0, Y: 0, Z: 1}, core.Vec3{X: 0.1, Y: 0, Z: -1}) {
		t.Fatal("expected directions on opposite sides of the normal to not share a half-plane")
	}
}

func TestMixtureWithAlphaDiffuseAndGlossyZeroAcrossPlane(t *testing.T) {
	d := NewDiffuse(core.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	g := NewGlossyAnisotropic(core.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 0.3, 0.3)
	mix := NewMixtureWithAlpha(d, g, halfAlpha())
	geom := upGeom()
	wi := core.Vec3{X: 0, Y: 0, Z: 1}
	woOpposite := core.Vec3{X: 0.1, Y: 0, Z: -1}.Normalize()

	if pdf := mix.PdfDirection(geom, wi, woOpposite, CompDiffuse, false); pdf != 0 {
		t.Fatalf("expected diffuse pdf to be gated to zero across the half-plane, got %v", pdf)
	}
	if pdf := mix.PdfDirection(geom, wi, woOpposite, CompGlossy, false); pdf != 0 {
		t.Fatalf("expected glossy pdf to be gated to zero across the half-plane, got %v", pdf)
	}
	if f := mix.Eval(geom, wi, woOpposite, CompDiffuse, core.TransportEL, false); !f.IsZero() {
		t.Fatalf("expected diffuse eval to be gated to zero across the half-plane, got %v", f)
	}
}

func TestMixtureWithAlphaAlphaIsSpecularOnly(t *testing.T) {
	d := NewDiffuse(core.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	g := NewGlossyAnisotropic(core.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 0.3, 0.3)
	mix := NewMixtureWithAlpha(d, g, halfAlpha())
	geom := upGeom()
	if !mix.IsSpecular(geom, CompAlpha) {
		t.Fatal("expected the alpha lobe to be specular")
	}
	if mix.IsSpecular(geom, CompDiffuse) || mix.IsSpecular(geom, CompGlossy) {
		t.Fatal("expected the diffuse and glossy lobes to be non-specular")
	}
}

func TestMaskPassesThroughUnperturbed(t *testing.T) {
	m := NewMask()
	geom := upGeom()
	wi := core.Vec3{X: 0.3, Y: 0.1, Z: 0.9}.Normalize()
	s, ok := m.SampleDirection(core.NewRNG(1), geom, wi, core.TransportEL)
	if !ok {
		t.Fatal("expected mask to always produce a sample")
	}
	if s.Wo != wi.Negate() {
		t.Fatalf("expected mask to pass straight through, wanted %v got %v", wi.Negate(), s.Wo)
	}
	if m.PdfDirection(geom, wi, s.Wo, 0, false) != 0 {
		t.Fatal("expected mask pdf to be zero (delta lobe)")
	}
}
