package light

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/texture"
)

// Environment is a directional light at infinity, sampled either uniformly
// over the sphere or importance-weighted by an equirectangular texture's
// luminance (spec.md §4.3). The sampled direction does not depend on the
// reference point or its normal.
type Environment struct {
	Tex   texture.Texture // nil means uniform emission (Emiss below)
	Emiss core.Vec3       // used when Tex is nil

	// cdf-based importance sampling over a lat/long texture, built lazily.
	rows, cols  int
	marginalCDF []float64   // length rows+1
	condCDF     [][]float64 // per-row, length cols+1
	built       bool
}

// NewUniformEnvironment creates a constant-emission environment light.
func NewUniformEnvironment(emission core.Vec3) *Environment {
	return &Environment{Emiss: emission}
}

// NewTexturedEnvironment creates a texture-importance-sampled environment
// light over an equirectangular map, built from rows x cols luminance samples.
func NewTexturedEnvironment(tex texture.Texture, rows, cols int) *Environment {
	e := &Environment{Tex: tex, rows: rows, cols: cols}
	e.build()
	return e
}

func (e *Environment) build() {
	if e.Tex == nil || e.rows <= 0 || e.cols <= 0 {
		return
	}
	e.condCDF = make([][]float64, e.rows)
	e.marginalCDF = make([]float64, e.rows+1)
	rowWeights := make([]float64, e.rows)
	for r := 0; r < e.rows; r++ {
		row := make([]float64, e.cols+1)
		v := (float64(r) + 0.5) / float64(e.rows)
		sinTheta := math.Sin(math.Pi * v)
		acc := 0.0
		for c := 0; c < e.cols; c++ {
			u := (float64(c) + 0.5) / float64(e.cols)
			lum := e.Tex.Eval(core.Vec2{X: u, Y: v}).Luminance() * sinTheta
			acc += lum
			row[c+1] = acc
		}
		e.condCDF[r] = row
		rowWeights[r] = acc
		e.marginalCDF[r+1] = e.marginalCDF[r] + acc
	}
	e.built = e.marginalCDF[e.rows] > 0
}

func sampleCDF(cdf []float64, u float64) (idx int, frac float64) {
	total := cdf[len(cdf)-1]
	if total <= 0 {
		return 0, 0
	}
	target := u * total
	lo, hi := 0, len(cdf)-2
	for lo < hi {
		mid := (lo + hi) / 2
		if cdf[mid+1] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	lower, upper := cdf[lo], cdf[lo+1]
	if upper-lower > 0 {
		frac = (target - lower) / (upper - lower)
	}
	return lo, frac
}

// directionFromUV maps equirectangular (u,v) in [0,1]^2 to a world direction.
func directionFromUV(u, v float64) core.Vec3 {
	theta := v * math.Pi
	phi := u * 2 * math.Pi
	sinTheta := math.Sin(theta)
	return core.Vec3{X: sinTheta * math.Cos(phi), Y: math.Cos(theta), Z: sinTheta * math.Sin(phi)}
}

func uvFromDirection(d core.Vec3) core.Vec2 {
	v := math.Acos(math.Max(-1, math.Min(1, d.Y))) / math.Pi
	u := math.Atan2(d.Z, d.X) / (2 * math.Pi)
	if u < 0 {
		u += 1
	}
	return core.Vec2{X: u, Y: v}
}

func (e *Environment) sampleDirectionImportance(u core.Vec2) (core.Vec3, float64) {
	r, rf := sampleCDF(e.marginalCDF, u.X)
	c, cf := sampleCDF(e.condCDF[r], u.Y)
	v := (float64(r) + rf) / float64(e.rows)
	uu := (float64(c) + cf) / float64(e.cols)
	dir := directionFromUV(uu, v)

	sinTheta := math.Sin(v * math.Pi)
	if sinTheta <= 0 {
		return dir, 0
	}
	rowTotal := e.marginalCDF[e.rows]
	rowWeight := e.marginalCDF[r+1] - e.marginalCDF[r]
	pdfV := rowWeight / rowTotal * float64(e.rows)
	condTotal := e.condCDF[r][e.cols]
	if condTotal <= 0 {
		return dir, 0
	}
	pdfU := (e.condCDF[r][c+1] - e.condCDF[r][c]) / condTotal * float64(e.cols)
	// Jacobian from (u,v) density to solid angle: 1 / (2*pi^2*sinTheta)
	pdfSolid := pdfU * pdfV / (2 * math.Pi * math.Pi * sinTheta)
	return dir, pdfSolid
}

func (e *Environment) pdfImportance(dir core.Vec3) float64 {
	if !e.built {
		return 0
	}
	uv := uvFromDirection(dir)
	r := clampIdx(int(uv.Y*float64(e.rows)), e.rows)
	c := clampIdx(int(uv.X*float64(e.cols)), e.cols)
	sinTheta := math.Sin(uv.Y * math.Pi)
	if sinTheta <= 0 {
		return 0
	}
	rowTotal := e.marginalCDF[e.rows]
	rowWeight := e.marginalCDF[r+1] - e.marginalCDF[r]
	pdfV := rowWeight / rowTotal * float64(e.rows)
	condTotal := e.condCDF[r][e.cols]
	if condTotal <= 0 {
		return 0
	}
	pdfU := (e.condCDF[r][c+1] - e.condCDF[r][c]) / condTotal * float64(e.cols)
	return pdfU * pdfV / (2 * math.Pi * math.Pi * sinTheta)
}

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (e *Environment) emissionAt(dir core.Vec3) core.Vec3 {
	if e.Tex == nil {
		return e.Emiss
	}
	return e.Tex.Eval(uvFromDirection(dir))
}

func (e *Environment) SampleDirect(rng core.RNG, refPoint core.Vec3) (DirectSample, bool) {
	var dir core.Vec3
	var pdf float64
	if e.built {
		dir, pdf = e.sampleDirectionImportance(rng.U2())
	} else {
		dir = core.SampleUniformSphere(rng.U2())
		pdf = core.UniformSpherePDF()
	}
	if pdf <= 0 {
		return DirectSample{}, false
	}
	return DirectSample{
		Point: refPoint.Add(dir.Multiply(-1e7)), Normal: dir, Infinite: true,
		Wo: dir, Distance: math.Inf(1), Emission: e.emissionAt(dir), Pdf: pdf,
	}, true
}

func (e *Environment) PdfDirect(refPoint, lightPoint, _ core.Vec3, infinite bool) float64 {
	if !infinite {
		return 0
	}
	dir := lightPoint.Subtract(refPoint).Normalize()
	if e.built {
		return e.pdfImportance(dir)
	}
	return core.UniformSpherePDF()
}

func (e *Environment) SampleEmission(rng core.RNG) (EmissionSample, bool) {
	var dir core.Vec3
	var pdf float64
	if e.built {
		dir, pdf = e.sampleDirectionImportance(rng.U2())
	} else {
		dir = core.SampleUniformSphere(rng.U2())
		pdf = core.UniformSpherePDF()
	}
	if pdf <= 0 {
		return EmissionSample{}, false
	}
	origin := dir.Multiply(-1e7)
	return EmissionSample{
		Point: origin, Normal: dir.Negate(), Infinite: true, Direction: dir.Negate(),
		Emission: e.emissionAt(dir), AreaPdf: 1, DirectionPdf: pdf,
	}, true
}

func (e *Environment) Emit(dir core.Vec3) core.Vec3 { return e.emissionAt(dir) }

func (e *Environment) IsInfinite() bool { return true }
