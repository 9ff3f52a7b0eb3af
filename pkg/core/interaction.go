package core

// InteractionType tags what a SceneInteraction represents, per spec.md §3.
type InteractionType int

const (
	// SurfacePoint is an ordinary opaque-surface hit.
	SurfacePoint InteractionType = iota
	// MediumPoint is a scattering event inside a participating medium.
	MediumPoint
	// CameraEndpoint is a path vertex on the camera lens/aperture, evaluated
	// via importance rather than a BSDF.
	CameraEndpoint
	// LightEndpoint is a path vertex on a light's emissive surface, evaluated
	// via emission rather than a BSDF.
	LightEndpoint
	// InfiniteEnvHit is a ray that escaped to an environment light at infinity.
	InfiniteEnvHit
)

// Geometry is the geometric record carried by every SceneInteraction.
//
// Invariant: Infinite implies Wo is set and P is meaningless (there is no
// finite position for a point at infinity).
type Geometry struct {
	P           Vec3 // world-space position (meaningless when Infinite)
	N           Vec3 // shading normal
	Infinite    bool // true for InfiniteEnvHit records
	Degenerated bool // true when the surface has no well-defined tangent frame (e.g. a point light)
	T           Vec2 // surface uv
	Wo          Vec3 // outgoing/incoming direction, set only when Infinite
}

// SceneInteraction is the tagged record describing a sampled point along a
// path: a surface hit, a medium scattering event, or a camera/light/infinite
// endpoint. Integrators never touch geometry directly; they carry
// SceneInteraction values between Scene calls.
type SceneInteraction struct {
	Type        InteractionType
	Geom        Geometry
	PrimitiveID PrimitiveID
	// LightIdx identifies which light a LightEndpoint was sampled from when
	// it is not resolvable through PrimitiveID (e.g. sampled directly from
	// emission rather than hit on a specific triangle). -1 when unset.
	LightIdx int
}

// AsType returns a copy of sp re-tagged as the given interaction type. This
// is how the same geometric hit is evaluated once as a SurfacePoint during
// the walk and again as a LightEndpoint when its emission is added to the
// estimator — spec.md §9's rationale for a re-tag helper instead of a
// mutating setter.
func (sp SceneInteraction) AsType(t InteractionType) SceneInteraction {
	cp := sp
	cp.Type = t
	return cp
}

// IsEndpoint reports whether sp is explicitly tagged as a camera or light
// terminator, i.e. its outgoing direction is sampled unconditionally from
// emission/importance rather than from a BSDF.
func (sp SceneInteraction) IsEndpoint() bool {
	return sp.Type == CameraEndpoint || sp.Type == LightEndpoint
}

// RaySample is the result of sampling a new ray leaving sp (spec.md §3):
// weight = contribution / pdf.
type RaySample struct {
	Sp     SceneInteraction
	Comp   int // component index selecting a lobe of a composite material; AnyComponent to marginalize
	Wo     Vec3
	Weight Vec3
}

// Ray builds the physical ray that continues the path from this sample:
// origin at sp's position, direction Wo.
func (rs RaySample) Ray() Ray {
	return NewRay(rs.Sp.Geom.P, rs.Wo)
}

// DirectionSample is a direction-only sample (no accompanying new SceneInteraction).
type DirectionSample struct {
	Wo     Vec3
	Comp   int
	Weight Vec3
}

// DistanceSample is the result of sampling a distance along a ray, either
// landing on a medium scattering event or the next surface. Weight folds in
// any analytic transmittance division (spec.md §4.1).
type DistanceSample struct {
	Sp     SceneInteraction
	Weight Vec3
}

// Scene is the abstract sampling contract every integrator is written
// against (spec.md §4.1). Concrete scenes (pkg/scene.Scene) compose an
// acceleration structure, lights, camera, media, and materials behind this
// interface so the light-transport algorithms never see geometry directly.
//
// All pdfs are with respect to the measure documented per method; densities
// containing Dirac-delta components return a finite value only when
// evalDelta is true.
type Scene interface {
	// PrimaryRay returns the deterministic camera ray for a raster
	// coordinate rp in [0,1]^2 at the given aspect ratio.
	PrimaryRay(rp Vec2, aspect float64) Ray

	// RasterPosition is the inverse of PrimaryRay: given an outgoing camera
	// direction wo, returns the raster coordinate it came from, or false if
	// wo misses the film.
	RasterPosition(wo Vec3, aspect float64) (Vec2, bool)

	// Intersect returns the closest hit along ray in [tmin,tmax]. If the
	// scene has an environment light and tmax is +Inf, a miss returns an
	// InfiniteEnvHit interaction carrying the ray direction instead of false.
	Intersect(ray Ray, tmin, tmax float64) (SceneInteraction, bool)

	// Visible casts a shadow ray between two interactions, symmetric in
	// semantics: Visible(a,b) == Visible(b,a) whenever neither is infinite.
	Visible(sp1, sp2 SceneInteraction) bool

	// IsLight reports whether sp lies on a light-emitting primitive.
	IsLight(sp SceneInteraction) bool

	// IsSpecular reports whether component comp of sp's attached material or
	// phase function is a delta (specular) lobe.
	IsSpecular(sp SceneInteraction, comp int) bool

	// SampleRay is the unified ray-sampling entry point: when sp is a
	// terminator endpoint (camera/light), it samples a primary ray from
	// emission/importance and ignores wi; otherwise it samples a direction
	// from the material/phase function attached to sp given (sp, wi) and
	// builds a surface/medium ray from it.
	SampleRay(rng RNG, sp SceneInteraction, wi Vec3) (RaySample, bool)

	// SampleDirection is the direction-only variant of SampleRay: it never
	// produces a new SceneInteraction.
	SampleDirection(rng RNG, sp SceneInteraction, wi Vec3) (DirectionSample, bool)

	// PdfDirection returns the projected-solid-angle density of wo given wi
	// at sp when sp.Geom.Degenerated is false, or the plain solid-angle
	// density otherwise.
	PdfDirection(sp SceneInteraction, comp int, wi, wo Vec3) float64

	// SampleDirectLight samples a point on a light and the direction from
	// that point toward sp. By convention, the returned sample's Wo points
	// FROM the light endpoint TO sp; callers shade with -Wo.
	SampleDirectLight(rng RNG, sp SceneInteraction) (RaySample, bool)

	// SampleDirectCamera is the dual of SampleDirectLight, used by
	// light-tracing style estimators.
	SampleDirectCamera(rng RNG, sp SceneInteraction, aspect float64) (RaySample, bool)

	// PdfDirect returns the density of the SampleDirectLight/SampleDirectCamera
	// strategy that samples spEndpoint from sp via direction wo.
	PdfDirect(sp, spEndpoint SceneInteraction, compEndpoint int, wo Vec3) float64

	// SampleDistance samples either a medium scattering event or the next
	// surface hit along a ray leaving sp in direction wo. The returned
	// weight folds in any analytic transmittance division.
	SampleDistance(rng RNG, sp SceneInteraction, wo Vec3) (DistanceSample, bool)

	// EvalTransmittance is an unbiased transmittance estimator between two
	// interactions; stochastic (ratio-tracking) for heterogeneous media.
	EvalTransmittance(rng RNG, sp1, sp2 SceneInteraction) Vec3

	// EvalContrb evaluates the BSDF, phase function, emission, or importance
	// attached to sp, depending on sp's tag.
	EvalContrb(sp SceneInteraction, comp int, wi, wo Vec3) Vec3

	// EvalContrbEndpoint forces emission/importance evaluation even when sp
	// was not explicitly tagged as an endpoint.
	EvalContrbEndpoint(sp SceneInteraction, wo Vec3) Vec3

	// Reflectance returns the diffuse albedo at sp, when available, for
	// material-selection heuristics such as Mixture's lobe-selection weight.
	Reflectance(sp SceneInteraction, comp int) (Vec3, bool)
}
