package material

import "github.com/df07/lightmetrica-go/pkg/core"

// Mask is an alpha pass-through lobe: the ray continues straight through the
// surface unperturbed (wo = -wi), used to fake cutout geometry from an alpha
// texture without real transmission (spec.md §4.2).
type Mask struct{}

// NewMask creates a pass-through alpha material.
func NewMask() *Mask { return &Mask{} }

func (m *Mask) IsSpecular(core.Geometry, int) bool { return true }

func (m *Mask) SampleDirection(_ core.RNG, _ core.Geometry, wi core.Vec3, _ core.TransportDir) (Sample, bool) {
	return Sample{Wo: wi.Negate(), Comp: 0, Weight: core.Vec3{X: 1, Y: 1, Z: 1}}, true
}

func (m *Mask) PdfDirection(core.Geometry, core.Vec3, core.Vec3, int, bool) float64 { return 0 }

func (m *Mask) Eval(core.Geometry, core.Vec3, core.Vec3, int, core.TransportDir, bool) core.Vec3 {
	return core.Vec3{}
}

func (m *Mask) Reflectance(core.Geometry) (core.Vec3, bool) { return core.Vec3{}, false }
