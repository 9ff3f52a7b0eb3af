// Package light implements the light endpoint distributions consumed by
// Scene (spec.md §4.3): area lights over triangle geometry and a
// direction-sampled environment light.
package light

import "github.com/df07/lightmetrica-go/pkg/core"

// DirectSample is a light sample toward a reference point: a point on the
// light, its normal, the direction from the light to the reference point,
// the light's emitted radiance, and the sampling density.
type DirectSample struct {
	Point     core.Vec3
	Normal    core.Vec3
	Infinite  bool
	Wo        core.Vec3 // direction FROM the light point TO the reference point (spec.md §4.1 convention)
	Distance  float64
	Emission  core.Vec3
	Pdf       float64 // solid-angle measure at the reference point
	Comp      int
}

// EmissionSample samples a full emission ray leaving the light's surface,
// used by SampleRay when walking from a LightEndpoint.
type EmissionSample struct {
	Point        core.Vec3
	Normal       core.Vec3
	Infinite     bool
	Direction    core.Vec3
	Emission     core.Vec3
	AreaPdf      float64
	DirectionPdf float64
}

// Light is the contract Scene composes area and environment lights through.
type Light interface {
	// SampleDirect samples a point on the light and the direction toward refPoint.
	SampleDirect(rng core.RNG, refPoint core.Vec3) (DirectSample, bool)
	// PdfDirect returns the solid-angle density of SampleDirect landing on
	// lightPoint (with lightNormal) as seen from refPoint.
	PdfDirect(refPoint, lightPoint, lightNormal core.Vec3, infinite bool) float64
	// SampleEmission samples a full (position, direction) emission event for
	// light-endpoint path tracing.
	SampleEmission(rng core.RNG) (EmissionSample, bool)
	// Emit evaluates emission for a ray that directly hit this light
	// (surface lights are evaluated by their attached material's Ke instead;
	// this is primarily used by environment lights and direct-hit MIS bookkeeping).
	Emit(dir core.Vec3) core.Vec3
	// IsInfinite reports whether the light lies at infinity (environment light).
	IsInfinite() bool
}
