// Package integrator implements the path-tracing algorithms (spec.md
// §4.4, §4.5) driven against the abstract core.Scene sampling contract:
// PT (Naive/NEE/MIS x Pixel/Image) and VolPT.
package integrator

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/film"
)

// Mode selects the PT integrator's estimator.
type Mode int

const (
	Naive Mode = iota
	NEE
	MIS
)

// ImageSampleMode selects how a task maps to a raster position.
type ImageSampleMode int

const (
	Pixel ImageSampleMode = iota
	Image
)

// PT is a unidirectional path tracer implementing spec.md §4.4's exact
// per-sample walk: NEE at every eligible vertex, MIS-weighted with the
// balance heuristic against the direct-hit strategy, and Russian roulette
// after the fourth bounce.
type PT struct {
	Scene     core.Scene
	Film      *film.Film
	Aspect    float64
	MaxLength int
	Mode      Mode
	ImageMode ImageSampleMode
}

// SamplePixel runs one walk rooted at a fixed pixel raster position; used by
// the SPP scheduler.
func (pt *PT) SamplePixel(rng core.RNG, x, y int) {
	rp := core.Vec2{
		X: (float64(x) + rng.U()) / float64(pt.Film.Width()),
		Y: (float64(y) + rng.U()) / float64(pt.Film.Height()),
	}
	pt.walk(rng, rp)
}

// SampleImage runs one walk rooted at a uniformly random raster position;
// used by the SPI scheduler.
func (pt *PT) SampleImage(rng core.RNG) {
	rp := core.Vec2{X: rng.U(), Y: rng.U()}
	pt.walk(rng, rp)
}

func (pt *PT) walk(rng core.RNG, initialRp core.Vec2) {
	scene := pt.Scene
	wi := core.Vec3{}
	throughput := core.Vec3{X: 1, Y: 1, Z: 1}
	rasterPos := initialRp

	// The camera endpoint's primary ray is sampled directly via
	// PrimaryRay/RasterPosition rather than through the unified SampleRay
	// call: encoding a per-task raster sub-window into SceneInteraction's
	// Geometry record (to let a generic camera-endpoint SampleRay restrict
	// its random raster pick to one pixel) would overload a field meant for
	// surface uvs, so the deterministic pinhole projection is special-cased
	// at length==0 instead.
	sp := core.SceneInteraction{Type: core.CameraEndpoint}
	primaryRay := scene.PrimaryRay(initialRp, pt.Aspect)
	sp.Geom.P = primaryRay.O

	for length := 0; length < pt.MaxLength; length++ {
		var s core.RaySample
		var ok bool
		if length == 0 {
			s = core.RaySample{Sp: sp, Comp: core.AnyComponent, Wo: primaryRay.D.Normalize(), Weight: core.Vec3{X: 1, Y: 1, Z: 1}}
			ok = true
		} else {
			s, ok = scene.SampleRay(rng, sp, wi)
		}
		if !ok || s.Weight.IsZero() {
			return
		}
		if length == 0 {
			if rp, hit := scene.RasterPosition(s.Wo, pt.Aspect); hit {
				rasterPos = rp
			}
		}

		neeEnabled := pt.Mode != Naive &&
			!scene.IsSpecular(s.Sp, s.Comp) &&
			(pt.ImageMode == Image || length > 0)

		if neeEnabled {
			pt.sampleDirectLight(rng, s, wi, length, rasterPos, throughput)
		}

		ray := s.Ray()
		hit, hitOK := scene.Intersect(ray, 1e-6, math.Inf(1))
		if !hitOK {
			return
		}
		throughput = throughput.MultiplyVec(s.Weight)
		if !throughput.IsFinite() {
			return
		}

		directHit := scene.IsLight(hit) && (pt.Mode != NEE || !neeEnabled)
		if directHit {
			spL := hit.AsType(core.LightEndpoint)
			fs := scene.EvalContrbEndpoint(spL, s.Wo.Negate())
			misw := 1.0
			if pt.Mode != Naive && neeEnabled {
				pdfDir := scene.PdfDirection(s.Sp, s.Comp, wi, s.Wo)
				pdfDirect := scene.PdfDirect(s.Sp, spL, core.AnyComponent, s.Wo.Negate())
				misw = core.BalanceHeuristic(pdfDir, pdfDirect)
			}
			pt.Film.Splat(rasterPos, throughput.Multiply(misw).MultiplyVec(fs))
		}

		if length > 3 {
			q := math.Max(0.2, 1-throughput.MaxComponent())
			if rng.U() < q {
				return
			}
			throughput = throughput.Multiply(1 / (1 - q))
		}

		wi = s.Wo.Negate()
		sp = hit
	}
}

func (pt *PT) sampleDirectLight(rng core.RNG, s core.RaySample, wi core.Vec3, length int, rasterPos core.Vec2, throughput core.Vec3) {
	scene := pt.Scene
	sL, ok := scene.SampleDirectLight(rng, s.Sp)
	if !ok {
		return
	}
	if !scene.Visible(s.Sp, sL.Sp) {
		return
	}

	rp := rasterPos
	if length == 0 {
		if r, hit := scene.RasterPosition(sL.Wo.Negate(), pt.Aspect); hit {
			rp = r
		} else {
			return
		}
	}

	directSamplable := !scene.IsSpecular(sL.Sp, sL.Comp) && !sL.Sp.Geom.Degenerated
	fs := scene.EvalContrb(s.Sp, s.Comp, wi, sL.Wo.Negate())

	misw := 1.0
	if pt.Mode != NEE && directSamplable {
		pdfDirect := scene.PdfDirect(s.Sp, sL.Sp, sL.Comp, sL.Wo)
		pdfDir := scene.PdfDirection(s.Sp, s.Comp, wi, sL.Wo.Negate())
		misw = core.BalanceHeuristic(pdfDirect, pdfDir)
	}

	pt.Film.Splat(rp, throughput.MultiplyVec(fs).MultiplyVec(sL.Weight).Multiply(misw))
}
