// Package camera implements the camera endpoint distribution consumed by
// Scene (spec.md §4.3): a deterministic pinhole projection.
package camera

import (
	"math"

	"github.com/df07/lightmetrica-go/pkg/core"
)

// Pinhole is a deterministic perspective camera, ported from the teacher's
// pkg/renderer.Camera lower-left-corner/horizontal/vertical basis but
// generalized to a vertical field-of-view and an explicit look-at frame so
// it can serve arbitrary scene setups instead of a single fixed rig.
type Pinhole struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	forward, right, up core.Vec3
}

// NewPinhole builds a pinhole camera looking from lookFrom toward lookAt,
// with the given world-up hint, vertical field of view (degrees), and
// aspect ratio (width/height).
func NewPinhole(lookFrom, lookAt, worldUp core.Vec3, vfovDeg, aspect float64) *Pinhole {
	theta := vfovDeg * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := aspect * halfHeight

	forward := lookAt.Subtract(lookFrom).Normalize()
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward)

	horizontal := right.Multiply(2 * halfWidth)
	vertical := up.Multiply(2 * halfHeight)
	lowerLeftCorner := lookFrom.
		Add(forward).
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5))

	return &Pinhole{
		origin: lookFrom, lowerLeftCorner: lowerLeftCorner,
		horizontal: horizontal, vertical: vertical,
		forward: forward, right: right, up: up,
	}
}

// PrimaryRay returns the deterministic ray through raster coordinate rp in
// [0,1]^2, with (0,0) at the lower-left of the film.
func (p *Pinhole) PrimaryRay(rp core.Vec2) core.Ray {
	target := p.lowerLeftCorner.
		Add(p.horizontal.Multiply(rp.X)).
		Add(p.vertical.Multiply(rp.Y))
	return core.NewRay(p.origin, target.Subtract(p.origin))
}

// RasterPosition inverts PrimaryRay: given an outgoing direction wo from the
// camera origin, returns the raster coordinate it corresponds to, or false
// if wo points behind the camera or outside the film plane.
func (p *Pinhole) RasterPosition(wo core.Vec3) (core.Vec2, bool) {
	cosForward := wo.Dot(p.forward)
	if cosForward <= 0 {
		return core.Vec2{}, false
	}
	// Intersect the ray origin+t*wo with the plane containing lowerLeftCorner
	// spanned by horizontal/vertical, at the same forward distance as the
	// plane used to build lowerLeftCorner (forward magnitude 1 from origin).
	t := 1 / cosForward
	hit := p.origin.Add(wo.Multiply(t))
	rel := hit.Subtract(p.lowerLeftCorner)

	hLenSq := p.horizontal.LengthSquared()
	vLenSq := p.vertical.LengthSquared()
	if hLenSq <= 0 || vLenSq <= 0 {
		return core.Vec2{}, false
	}
	u := rel.Dot(p.horizontal) / hLenSq
	v := rel.Dot(p.vertical) / vLenSq
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return core.Vec2{}, false
	}
	return core.Vec2{X: u, Y: v}, true
}

// Origin returns the camera's lens position (pinhole apex).
func (p *Pinhole) Origin() core.Vec3 { return p.origin }

// Forward returns the camera's principal viewing direction.
func (p *Pinhole) Forward() core.Vec3 { return p.forward }

// SampleDirect samples a "direct camera" connection for light-tracing style
// estimators (Scene.SampleDirectCamera): the pinhole is a degenerate lens, so
// the only samplable point is the origin itself, weighted by pinhole
// importance (uniform in direction from the aperture's point of view is not
// physically meaningful for a true pinhole; we return an importance value of
// 1 on valid rasters per spec.md §4.3, deferring the sensor response curve
// to the film).
func (p *Pinhole) SampleDirect(refPoint core.Vec3) (raster core.Vec2, wo core.Vec3, dist float64, ok bool) {
	toRef := refPoint.Subtract(p.origin)
	dist = toRef.Length()
	if dist <= 1e-9 {
		return core.Vec2{}, core.Vec3{}, 0, false
	}
	dir := toRef.Multiply(1 / dist)
	rp, ok := p.RasterPosition(dir)
	if !ok {
		return core.Vec2{}, core.Vec3{}, 0, false
	}
	return rp, dir, dist, true
}

// EvalImportance returns the pinhole's importance response for an outgoing
// direction: 1 when the direction lands on the film, 0 otherwise.
func (p *Pinhole) EvalImportance(wo core.Vec3) float64 {
	if _, ok := p.RasterPosition(wo); ok {
		return 1
	}
	return 0
}
