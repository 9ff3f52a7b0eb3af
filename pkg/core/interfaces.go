package core

// Logger is the ambient logging interface every package writes progress and
// diagnostics through, exactly as the teacher repo's core.Logger.
type Logger interface {
	Printf(format string, args ...interface{})
}

// TransportDir distinguishes eye-to-light from light-to-eye transport,
// needed by materials whose Jacobian is direction-dependent (spec.md §4.2,
// the glass eta^2 factor).
type TransportDir int

const (
	// TransportEL is eye-to-light (camera) transport, e.g. the PT integrator.
	TransportEL TransportDir = iota
	// TransportLE is light-to-eye transport, e.g. light tracing / BDPT light subpaths.
	TransportLE
)

// AnyComponent marginalizes over a composite material's lobes rather than
// selecting one, per spec.md §3 ("comp == -1 means unspecified / marginalize").
const AnyComponent = -1

// PrimitiveID is an opaque handle to whatever material, light, camera, or
// medium is attached to a sampled point. Scenes hand these out; only Scene
// implementations know how to dereference one.
type PrimitiveID int

// NoPrimitive is the sentinel PrimitiveID (-1) for interactions that carry no
// attached primitive (e.g. a pure environment miss before light attachment).
const NoPrimitive PrimitiveID = -1
