// Package material implements the polymorphic BSDF variant set consumed by
// the light-transport integrators (spec.md §4.2): Diffuse, GlossyAnisotropic,
// Mirror, Glass, Mask, Mixture, and MixtureWithAlpha.
package material

import "github.com/df07/lightmetrica-go/pkg/core"

// Sample is the result of sampling an outgoing direction from a material,
// keyed to a lobe (component) of a possibly-composite material.
type Sample struct {
	Wo     core.Vec3
	Comp   int
	Weight core.Vec3 // f * |cos theta| / pdf
}

// Material is the polymorphic BSDF contract spec.md §3 requires. comp == -1
// (core.AnyComponent) marginalizes over all of a composite material's lobes;
// any other value selects one lobe's conditional distribution, per the
// invariant that pdfs and values passed a concrete comp must be computed
// against that lobe alone.
type Material interface {
	// IsSpecular reports whether component comp is a delta (specular) lobe.
	IsSpecular(geom core.Geometry, comp int) bool

	// SampleDirection importance-samples an outgoing direction given the
	// incident direction wi and transport direction. Returns false for a
	// degenerate/absorbed sample.
	SampleDirection(rng core.RNG, geom core.Geometry, wi core.Vec3, transport core.TransportDir) (Sample, bool)

	// PdfDirection returns the density of wo under component comp's
	// conditional distribution (or the marginal, when comp is
	// core.AnyComponent). Delta lobes return 0 unless evalDelta is true.
	PdfDirection(geom core.Geometry, wi, wo core.Vec3, comp int, evalDelta bool) float64

	// Eval evaluates the BSDF value f(wi,wo) for component comp (or the
	// marginal sum, when comp is core.AnyComponent).
	Eval(geom core.Geometry, wi, wo core.Vec3, comp int, transport core.TransportDir, evalDelta bool) core.Vec3

	// Reflectance returns the diffuse albedo at geom, when the material has
	// one, for material-selection heuristics.
	Reflectance(geom core.Geometry) (core.Vec3, bool)
}

// Phase is the participating-media analogue of Material: no notion of a
// surface side, and always non-specular in this specification's variant set.
type Phase interface {
	SampleDirection(rng core.RNG, wi core.Vec3) (Sample, bool)
	PdfDirection(wi, wo core.Vec3) float64
	Eval(wi, wo core.Vec3) core.Vec3
}
