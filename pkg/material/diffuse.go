package material

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/texture"
)

// Diffuse is a perfectly Lambertian material: cosine-weighted hemisphere
// sampling, weight = Kd (scaled by any texture map), pdf = cos(theta)/pi.
// Ported from the teacher's Lambertian (pkg/material/lambertian.go) and
// generalized to the comp/geometry contract.
type Diffuse struct {
	Kd texture.Texture
}

// NewDiffuse creates a diffuse material with a solid albedo.
func NewDiffuse(kd core.Vec3) *Diffuse {
	return &Diffuse{Kd: texture.NewConstant(kd)}
}

func (d *Diffuse) IsSpecular(core.Geometry, int) bool { return false }

func (d *Diffuse) SampleDirection(rng core.RNG, geom core.Geometry, wi core.Vec3, _ core.TransportDir) (Sample, bool) {
	wo := core.SampleCosineHemisphere(geom.N, rng.U2())
	cosTheta := wo.Dot(geom.N)
	pdf := core.CosineHemispherePDF(cosTheta)
	if pdf <= 0 {
		return Sample{}, false
	}
	kd := d.Kd.Eval(geom.T)
	return Sample{Wo: wo, Comp: 0, Weight: kd}, true
}

func (d *Diffuse) PdfDirection(geom core.Geometry, _, wo core.Vec3, _ int, _ bool) float64 {
	return core.CosineHemispherePDF(wo.Dot(geom.N))
}

func (d *Diffuse) Eval(geom core.Geometry, _, wo core.Vec3, _ int, _ core.TransportDir, _ bool) core.Vec3 {
	if wo.Dot(geom.N) <= 0 {
		return core.Vec3{}
	}
	return d.Kd.Eval(geom.T).Multiply(1 / math.Pi)
}

func (d *Diffuse) Reflectance(geom core.Geometry) (core.Vec3, bool) {
	return d.Kd.Eval(geom.T), true
}
