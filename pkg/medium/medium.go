// Package medium implements participating media (spec.md §2.6, §4.3):
// distance sampling and transmittance evaluation for homogeneous and
// heterogeneous volumes. Heterogeneous media use majorant-based delta
// tracking, grounded in the original engine's Volume_Multi density/albedo
// split (original_source/src/volume/volume_multi.cpp): a scalar density
// field driving free-flight sampling and a color field driving albedo.
package medium

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/core"
)

// Medium is the participating-medium contract Scene composes into distance
// sampling and transmittance evaluation.
type Medium interface {
	// SampleDistance samples a free-flight distance along ray up to tMax.
	// ok is false when the sampled distance exceeds tMax (i.e. the ray
	// exits the medium without scattering); Weight is always the ratio
	// estimator's throughput multiplier.
	SampleDistance(rng core.RNG, ray core.Ray, tMax float64) (t float64, weight core.Vec3, ok bool)
	// Transmittance returns an unbiased transmittance estimate over
	// [0,dist] along ray; exact for homogeneous media, ratio-tracked for
	// heterogeneous ones.
	Transmittance(rng core.RNG, ray core.Ray, dist float64) core.Vec3
	// SigmaA/SigmaS at a world point, for phase-function and absorption
	// bookkeeping at a sampled scattering event.
	SigmaA(p core.Vec3) core.Vec3
	SigmaS(p core.Vec3) core.Vec3
}

// Homogeneous is a constant-density participating medium: absorption and
// scattering coefficients are uniform, so distance sampling and
// transmittance both have closed forms (spec.md §8 scenario 5).
type Homogeneous struct {
	SigmaAConst core.Vec3
	SigmaSConst core.Vec3
}

// NewHomogeneous creates a homogeneous medium with the given absorption and
// scattering coefficients.
func NewHomogeneous(sigmaA, sigmaS core.Vec3) *Homogeneous {
	return &Homogeneous{SigmaAConst: sigmaA, SigmaSConst: sigmaS}
}

func (h *Homogeneous) sigmaT() core.Vec3 { return h.SigmaAConst.Add(h.SigmaSConst) }

// channelSigmaT picks a representative (average) extinction for
// distance sampling when the coefficients are spectrally varying; matches
// the teacher's single-float RNG convention (one channel drives the walk,
// the resulting weight corrects for spectral variance via balance MIS
// across channels is out of scope for this scalar renderer).
func (h *Homogeneous) channelSigmaT() float64 {
	st := h.sigmaT()
	return (st.X + st.Y + st.Z) / 3
}

func (h *Homogeneous) SampleDistance(rng core.RNG, ray core.Ray, tMax float64) (float64, core.Vec3, bool) {
	sigmaT := h.channelSigmaT()
	if sigmaT <= 0 {
		return 0, core.Vec3{X: 1, Y: 1, Z: 1}, false
	}
	t := -math.Log(1-rng.U()) / sigmaT
	if t >= tMax {
		tr := h.Transmittance(rng, ray, tMax)
		pdfSurf := math.Exp(-sigmaT * tMax)
		if pdfSurf <= 0 {
			return 0, core.Vec3{}, false
		}
		return 0, tr.Multiply(1 / pdfSurf), false
	}
	tr := h.Transmittance(rng, ray, t)
	pdf := sigmaT * math.Exp(-sigmaT*t)
	if pdf <= 0 {
		return 0, core.Vec3{}, false
	}
	// A real scattering event's weight is Tr(t)*sigma_s/pdf(t): the phase
	// function integrates to 1 (EvalContrb/SampleRay for a MediumPoint
	// apply only Phase), so the single-scattering albedo must be folded in
	// here or absorbing media (sigma_a > 0) render too bright.
	return t, tr.MultiplyVec(h.SigmaSConst).Multiply(1 / pdf), true
}

func (h *Homogeneous) Transmittance(_ core.RNG, _ core.Ray, dist float64) core.Vec3 {
	st := h.sigmaT()
	return core.Vec3{X: math.Exp(-st.X * dist), Y: math.Exp(-st.Y * dist), Z: math.Exp(-st.Z * dist)}
}

func (h *Homogeneous) SigmaA(core.Vec3) core.Vec3 { return h.SigmaAConst }
func (h *Homogeneous) SigmaS(core.Vec3) core.Vec3 { return h.SigmaSConst }

// DensityField evaluates a spatially varying scalar extinction density at a
// world point, bounded above by MaxDensity within Bound. Grounded on the
// original engine's Volume interface (eval_scalar / max_scalar / bound).
type DensityField interface {
	Eval(p core.Vec3) float64
	MaxDensity() float64
	Bound() (min, max core.Vec3)
}

// ColorField evaluates a spatially varying single-scattering albedo.
type ColorField interface {
	Eval(p core.Vec3) core.Vec3
}

// Heterogeneous is a spatially varying medium sampled via majorant delta
// tracking (Woodcock tracking): candidate collisions are proposed at the
// rate of the field's majorant density, then stochastically accepted as
// real scattering events with probability density(p)/majorant, exactly
// mirroring Volume_Multi's max_scalar-bounded rejection scheme.
type Heterogeneous struct {
	Density DensityField
	Albedo  ColorField
}

// NewHeterogeneous creates a heterogeneous medium from separate density and
// albedo fields, matching the original engine's volumes_den/volumes_alb split.
func NewHeterogeneous(density DensityField, albedo ColorField) *Heterogeneous {
	return &Heterogeneous{Density: density, Albedo: albedo}
}

// rayAABBOverlap clips [0,tMax] to the segment of ray inside [bmin,bmax].
func rayAABBOverlap(ray core.Ray, tMax float64, bmin, bmax core.Vec3) (float64, float64, bool) {
	t0, t1 := 0.0, tMax
	for axis := 0; axis < 3; axis++ {
		var o, d, lo, hi float64
		switch axis {
		case 0:
			o, d, lo, hi = ray.O.X, ray.D.X, bmin.X, bmax.X
		case 1:
			o, d, lo, hi = ray.O.Y, ray.D.Y, bmin.Y, bmax.Y
		default:
			o, d, lo, hi = ray.O.Z, ray.D.Z, bmin.Z, bmax.Z
		}
		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / d
		tNear := (lo - o) * inv
		tFar := (hi - o) * inv
		if tNear > tFar {
			tNear, tFar = tFar, tNear
		}
		if tNear > t0 {
			t0 = tNear
		}
		if tFar < t1 {
			t1 = tFar
		}
		if t0 > t1 {
			return 0, 0, false
		}
	}
	return t0, t1, true
}

func (h *Heterogeneous) SampleDistance(rng core.RNG, ray core.Ray, tMax float64) (float64, core.Vec3, bool) {
	bmin, bmax := h.Density.Bound()
	tEnter, tExit, hit := rayAABBOverlap(ray, tMax, bmin, bmax)
	if !hit {
		return 0, core.Vec3{X: 1, Y: 1, Z: 1}, false
	}
	majorant := h.Density.MaxDensity()
	if majorant <= 0 {
		return 0, core.Vec3{X: 1, Y: 1, Z: 1}, false
	}

	t := tEnter
	for {
		step := -math.Log(1-rng.U()) / majorant
		t += step
		if t >= tExit {
			return 0, core.Vec3{X: 1, Y: 1, Z: 1}, false
		}
		p := ray.At(t)
		density := h.Density.Eval(p)
		if rng.U() < density/majorant {
			return t, h.Albedo.Eval(p), true
		}
	}
}

func (h *Heterogeneous) Transmittance(rng core.RNG, ray core.Ray, dist float64) core.Vec3 {
	bmin, bmax := h.Density.Bound()
	tEnter, tExit, hit := rayAABBOverlap(ray, dist, bmin, bmax)
	if !hit {
		return core.Vec3{X: 1, Y: 1, Z: 1}
	}
	majorant := h.Density.MaxDensity()
	if majorant <= 0 {
		return core.Vec3{X: 1, Y: 1, Z: 1}
	}
	// Ratio tracking: unbiased transmittance estimator via repeated
	// majorant-rate collisions, each multiplying by (1 - density/majorant).
	tr := 1.0
	t := tEnter
	for {
		step := -math.Log(1-rng.U()) / majorant
		t += step
		if t >= tExit {
			break
		}
		density := h.Density.Eval(ray.At(t))
		tr *= 1 - density/majorant
	}
	return core.Vec3{X: tr, Y: tr, Z: tr}
}

func (h *Heterogeneous) SigmaA(p core.Vec3) core.Vec3 {
	density := h.Density.Eval(p)
	albedo := h.Albedo.Eval(p)
	one := core.Vec3{X: 1, Y: 1, Z: 1}
	return one.Subtract(albedo).Multiply(density)
}

func (h *Heterogeneous) SigmaS(p core.Vec3) core.Vec3 {
	density := h.Density.Eval(p)
	return h.Albedo.Eval(p).Multiply(density)
}

// GaussianDensity is a simple analytic density field: a Gaussian blob
// centered at Center with standard deviation Sigma, scaled by Amplitude —
// the same shape family Volume_Multi composes ("multiple Gaussian volumes").
type GaussianDensity struct {
	Center            core.Vec3
	Sigma, Amplitude  float64
	BoundMin, BoundMax core.Vec3
}

func (g *GaussianDensity) Eval(p core.Vec3) float64 {
	d := p.Subtract(g.Center)
	r2 := d.LengthSquared()
	return g.Amplitude * math.Exp(-r2/(2*g.Sigma*g.Sigma))
}

func (g *GaussianDensity) MaxDensity() float64 { return g.Amplitude }

func (g *GaussianDensity) Bound() (core.Vec3, core.Vec3) { return g.BoundMin, g.BoundMax }

// ConstantColor is a spatially uniform albedo field.
type ConstantColor struct{ C core.Vec3 }

func (c ConstantColor) Eval(core.Vec3) core.Vec3 { return c.C }
