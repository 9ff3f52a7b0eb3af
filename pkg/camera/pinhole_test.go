package camera

import (
	"math"
	"testing"

	"github.com/df07/lightmetrica-go/pkg/core"
)

func TestRasterPositionRoundTripsPrimaryRay(t *testing.T) {
	cam := NewPinhole(core.Vec3{X: 0, Y: 0, Z: 0}, core.Vec3{X: 0, Y: 0, Z: -1}, core.Vec3{X: 0, Y: 1, Z: 0}, 60, 16.0/9.0)

	rps := []core.Vec2{
		{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0.5, Y: 0.5}, {X: 0.25, Y: 0.75},
	}
	for _, rp := range rps {
		ray := cam.PrimaryRay(rp)
		got, ok := cam.RasterPosition(ray.D.Normalize())
		if !ok {
			t.Fatalf("RasterPosition rejected direction from PrimaryRay(%v)", rp)
		}
		if math.Abs(got.X-rp.X) > 1e-9 || math.Abs(got.Y-rp.Y) > 1e-9 {
			t.Fatalf("round trip mismatch: sent %v, got %v", rp, got)
		}
	}
}

func TestRasterPositionRejectsBehindCamera(t *testing.T) {
	cam := NewPinhole(core.Vec3{}, core.Vec3{X: 0, Y: 0, Z: -1}, core.Vec3{X: 0, Y: 1, Z: 0}, 60, 1)
	if _, ok := cam.RasterPosition(core.Vec3{X: 0, Y: 0, Z: 1}); ok {
		t.Fatal("expected a direction pointing away from the camera to be rejected")
	}
}

func TestSampleDirectMatchesEvalImportance(t *testing.T) {
	cam := NewPinhole(core.Vec3{}, core.Vec3{X: 0, Y: 0, Z: -1}, core.Vec3{X: 0, Y: 1, Z: 0}, 60, 1)
	refPoint := core.Vec3{X: 0.1, Y: -0.1, Z: -5}

	_, wo, dist, ok := cam.SampleDirect(refPoint)
	if !ok {
		t.Fatal("expected SampleDirect to succeed for a point in front of the camera")
	}
	if dist <= 0 {
		t.Fatal("expected a positive distance")
	}
	if cam.EvalImportance(wo) != 1 {
		t.Fatal("expected EvalImportance to be 1 for a direction landing on the film")
	}
}

func TestEvalImportanceZeroOffFilm(t *testing.T) {
	cam := NewPinhole(core.Vec3{}, core.Vec3{X: 0, Y: 0, Z: -1}, core.Vec3{X: 0, Y: 1, Z: 0}, 10, 1)
	if cam.EvalImportance(core.Vec3{X: 1, Y: 1, Z: -0.01}.Normalize()) != 0 {
		t.Fatal("expected a steep off-axis direction to miss a narrow-FOV film")
	}
}
