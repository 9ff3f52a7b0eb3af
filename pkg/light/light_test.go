package light

import (
	"math"
	"testing"

	"github.com/df07/lightmetrica-go/pkg/core"
)

func singleQuadLight(ke core.Vec3, twoSided bool) *AreaLight {
	tris := []Triangle{
		{A: core.Vec3{X: -1, Y: 0, Z: -1}, B: core.Vec3{X: 1, Y: 0, Z: -1}, C: core.Vec3{X: 1, Y: 0, Z: 1}, N: core.Vec3{X: 0, Y: 1, Z: 0}},
		{A: core.Vec3{X: -1, Y: 0, Z: -1}, B: core.Vec3{X: 1, Y: 0, Z: 1}, C: core.Vec3{X: -1, Y: 0, Z: 1}, N: core.Vec3{X: 0, Y: 1, Z: 0}},
	}
	return NewAreaLight(tris, ke, twoSided)
}

func TestAreaLightSampleDirectMatchesPdfDirect(t *testing.T) {
	al := singleQuadLight(core.Vec3{X: 1, Y: 1, Z: 1}, false)
	rng := core.NewRNG(1)
	refPoint := core.Vec3{X: 0, Y: 3, Z: 0}

	for i := 0; i < 100; i++ {
		ds, ok := al.SampleDirect(rng, refPoint)
		if !ok {
			t.Fatalf("sample %d: expected ok", i)
		}
		pdf := al.PdfDirect(refPoint, ds.Point, ds.Normal, false)
		if math.Abs(pdf-ds.Pdf) > 1e-9 {
			t.Fatalf("sample %d: SampleDirect pdf %v != PdfDirect %v", i, ds.Pdf, pdf)
		}
	}
}

func TestAreaLightOneSidedRejectsBackFace(t *testing.T) {
	al := singleQuadLight(core.Vec3{X: 1, Y: 1, Z: 1}, false)
	rng := core.NewRNG(2)
	// refPoint is below the light's plane, facing away from its normal.
	refPoint := core.Vec3{X: 0, Y: -3, Z: 0}
	for i := 0; i < 20; i++ {
		if _, ok := al.SampleDirect(rng, refPoint); ok {
			t.Fatalf("expected one-sided area light to reject a back-facing reference point")
		}
	}
}

func TestAreaLightTwoSidedAcceptsBothFaces(t *testing.T) {
	al := singleQuadLight(core.Vec3{X: 1, Y: 1, Z: 1}, true)
	rng := core.NewRNG(3)
	refPoint := core.Vec3{X: 0, Y: -3, Z: 0}
	if _, ok := al.SampleDirect(rng, refPoint); !ok {
		t.Fatal("expected two-sided area light to accept a back-facing reference point")
	}
}

func TestUniformEnvironmentSampleDirectIsInfinite(t *testing.T) {
	env := NewUniformEnvironment(core.Vec3{X: 2, Y: 2, Z: 2})
	rng := core.NewRNG(4)
	ds, ok := env.SampleDirect(rng, core.Vec3{})
	if !ok {
		t.Fatal("expected uniform environment sample to succeed")
	}
	if !ds.Infinite || !math.IsInf(ds.Distance, 1) {
		t.Fatal("expected an infinite-distance sample from an environment light")
	}
	if ds.Pdf != core.UniformSpherePDF() {
		t.Fatalf("expected uniform sphere pdf, got %v", ds.Pdf)
	}
}

func TestSamplerUniformWeightsSumToOne(t *testing.T) {
	lights := []Light{
		singleQuadLight(core.Vec3{X: 1, Y: 1, Z: 1}, false),
		NewUniformEnvironment(core.Vec3{X: 1, Y: 1, Z: 1}),
	}
	s := NewUniformSampler(lights)
	total := 0.0
	for i := 0; i < s.Count(); i++ {
		total += s.Pmf(i)
	}
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("expected sampler weights to sum to 1, got %v", total)
	}
}

func TestSamplerSampleReturnsConsistentPmf(t *testing.T) {
	lights := []Light{
		singleQuadLight(core.Vec3{X: 1, Y: 1, Z: 1}, false),
		singleQuadLight(core.Vec3{X: 2, Y: 2, Z: 2}, false),
	}
	s := NewSampler(lights, []float64{1, 3})
	idx, pmf := s.Sample(0.1) // 0.1 < 0.25 => first light
	if idx != 0 {
		t.Fatalf("expected index 0 for u=0.1, got %d", idx)
	}
	if math.Abs(pmf-0.25) > 1e-9 {
		t.Fatalf("expected pmf 0.25, got %v", pmf)
	}
	idx, pmf = s.Sample(0.9)
	if idx != 1 {
		t.Fatalf("expected index 1 for u=0.9, got %d", idx)
	}
	if math.Abs(pmf-0.75) > 1e-9 {
		t.Fatalf("expected pmf 0.75, got %v", pmf)
	}
}

func TestNewSamplerZeroWeightsFallsBackToUniform(t *testing.T) {
	lights := []Light{
		singleQuadLight(core.Vec3{X: 1, Y: 1, Z: 1}, false),
		singleQuadLight(core.Vec3{X: 1, Y: 1, Z: 1}, false),
	}
	s := NewSampler(lights, []float64{0, 0})
	if math.Abs(s.Pmf(0)-0.5) > 1e-9 || math.Abs(s.Pmf(1)-0.5) > 1e-9 {
		t.Fatal("expected zero-total weights to fall back to uniform")
	}
}
