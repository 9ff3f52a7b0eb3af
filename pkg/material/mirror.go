package material

import "github.com/df07/lightmetrica-go/pkg/core"

// Mirror is a perfect specular reflector: wo = reflect(wi, n), weight = 1.
// pdf and eval are zero everywhere except when evalDelta is requested, per
// spec.md §4.2's Dirac-delta convention.
type Mirror struct{}

// NewMirror creates a mirror material.
func NewMirror() *Mirror { return &Mirror{} }

func (m *Mirror) IsSpecular(core.Geometry, int) bool { return true }

func (m *Mirror) SampleDirection(_ core.RNG, geom core.Geometry, wi core.Vec3, _ core.TransportDir) (Sample, bool) {
	if wi.Dot(geom.N) <= 0 {
		return Sample{}, false
	}
	wo := core.Reflect(wi, geom.N)
	return Sample{Wo: wo, Comp: 0, Weight: core.Vec3{X: 1, Y: 1, Z: 1}}, true
}

func (m *Mirror) PdfDirection(core.Geometry, core.Vec3, core.Vec3, int, bool) float64 { return 0 }

func (m *Mirror) Eval(core.Geometry, core.Vec3, core.Vec3, int, core.TransportDir, bool) core.Vec3 {
	return core.Vec3{}
}

func (m *Mirror) Reflectance(core.Geometry) (core.Vec3, bool) { return core.Vec3{}, false }
