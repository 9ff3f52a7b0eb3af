package integrator

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/film"
)

// VolPT is a volumetric path tracer for scenes containing participating
// media (spec.md §4.5). It walks with explicit (direction, distance)
// sampling instead of PT's unified sample_ray, uses a transmittance
// estimator for NEE rather than a binary shadow ray, and never applies MIS
// between the direction and distance sampling strategies — an emissive hit
// contributes only on edges where NEE was not already applied, avoiding
// double counting without a balance-heuristic weight.
type VolPT struct {
	Scene    core.Scene
	Film     *film.Film
	Aspect   float64
	MaxVerts int
	RRProb   float64
}

func (vp *VolPT) rrProb() float64 {
	if vp.RRProb > 0 {
		return vp.RRProb
	}
	return 0.2
}

// SamplePixel runs one walk rooted at a fixed pixel raster position; used by
// the SPP scheduler.
func (vp *VolPT) SamplePixel(rng core.RNG, x, y int) {
	rp := core.Vec2{
		X: (float64(x) + rng.U()) / float64(vp.Film.Width()),
		Y: (float64(y) + rng.U()) / float64(vp.Film.Height()),
	}
	vp.walk(rng, rp)
}

// SampleImage runs one walk rooted at a uniformly random raster position;
// used by the SPI scheduler.
func (vp *VolPT) SampleImage(rng core.RNG) {
	rp := core.Vec2{X: rng.U(), Y: rng.U()}
	vp.walk(rng, rp)
}

func (vp *VolPT) walk(rng core.RNG, rasterPos core.Vec2) {
	scene := vp.Scene
	wi := core.Vec3{}
	throughput := core.Vec3{X: 1, Y: 1, Z: 1}

	primaryRay := scene.PrimaryRay(rasterPos, vp.Aspect)
	sp := core.SceneInteraction{Type: core.CameraEndpoint, Geom: core.Geometry{P: primaryRay.O}}
	direction := primaryRay.D.Normalize()

	for length := 0; length < vp.MaxVerts; length++ {
		// NEE fires at sp, the vertex we're about to leave, using its own
		// wi (unchanged since the previous iteration, so it pairs with the
		// right vertex). The camera endpoint can't receive an explicit
		// light sample. neeEnabled is reused below to gate the emissive
		// hit this segment may land on: if sp could already reach that
		// light via NEE, crediting the BSDF/phase-sampled hit too would
		// double count it, matching renderer_volpt.cpp's samplable_by_nee
		// computed at sp and reused for the emissive-hit test.
		neeEnabled := length > 0 && !sp.Geom.Infinite && !scene.IsSpecular(sp, core.AnyComponent)
		if neeEnabled {
			vp.sampleDirectLight(rng, sp, core.AnyComponent, wi, rasterPos, throughput)
		}

		if length > 0 {
			ds, ok := scene.SampleDirection(rng, sp, wi)
			if !ok || ds.Weight.IsZero() {
				return
			}
			direction = ds.Wo
			throughput = throughput.MultiplyVec(ds.Weight)
		}

		sd, ok := scene.SampleDistance(rng, sp, direction)
		if !ok {
			return
		}
		throughput = throughput.MultiplyVec(sd.Weight)
		if !throughput.IsFinite() {
			return
		}

		directHit := !sd.Sp.Geom.Infinite && scene.IsLight(sd.Sp) && !neeEnabled
		if directHit {
			spL := sd.Sp.AsType(core.LightEndpoint)
			fs := scene.EvalContrbEndpoint(spL, direction.Negate())
			vp.Film.Splat(rasterPos, throughput.MultiplyVec(fs))
		}

		if sd.Sp.Geom.Infinite {
			return
		}

		if length > 5 {
			q := math.Max(vp.rrProb(), 1-throughput.MaxComponent())
			if rng.U() < q {
				return
			}
			throughput = throughput.Multiply(1 / (1 - q))
		}

		wi = direction.Negate()
		sp = sd.Sp
	}
}

func (vp *VolPT) sampleDirectLight(rng core.RNG, sp core.SceneInteraction, comp int, wi core.Vec3, rasterPos core.Vec2, throughput core.Vec3) {
	scene := vp.Scene
	sL, ok := scene.SampleDirectLight(rng, sp)
	if !ok {
		return
	}
	tr := scene.EvalTransmittance(rng, sp, sL.Sp)
	if tr.IsZero() {
		return
	}
	fs := scene.EvalContrb(sp, comp, wi, sL.Wo.Negate())
	contribution := throughput.MultiplyVec(fs).MultiplyVec(sL.Weight).MultiplyVec(tr)
	vp.Film.Splat(rasterPos, contribution)
}
