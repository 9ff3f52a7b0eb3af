package scene

import (
	"math"
	"testing"

	"github.com/df07/lightmetrica-go/pkg/accel"
	"github.com/df07/lightmetrica-go/pkg/camera"
	"github.com/df07/lightmetrica-go/pkg/core"
	"github.com/df07/lightmetrica-go/pkg/material"
	"github.com/df07/lightmetrica-go/pkg/medium"
)

func testCamera() *camera.Pinhole {
	return camera.NewPinhole(
		core.Vec3{X: 0, Y: 0, Z: 5},
		core.Vec3{X: 0, Y: 0, Z: 0},
		core.Vec3{X: 0, Y: 1, Z: 0},
		40, 1,
	)
}

func buildFloorAndLightScene() (*Scene, core.PrimitiveID, core.PrimitiveID) {
	sc := New(testCamera(), nil, nil)
	floor := accel.NewTriangle(
		core.Vec3{X: -10, Y: -1, Z: -10}, core.Vec3{X: 10, Y: -1, Z: -10}, core.Vec3{X: 0, Y: -1, Z: 10}, 0,
	)
	floorID := sc.AddTriangle(floor, material.NewDiffuse(core.Vec3{X: 0.5, Y: 0.5, Z: 0.5}))

	emitter := accel.NewTriangle(
		core.Vec3{X: -1, Y: 2, Z: -1}, core.Vec3{X: 1, Y: 2, Z: -1}, core.Vec3{X: 0, Y: 2, Z: 1}, 0,
	)
	lightID := sc.AddTriangle(emitter, material.NewDiffuse(core.Vec3{}))
	sc.AddAreaLight([]core.PrimitiveID{lightID}, core.Vec3{X: 10, Y: 10, Z: 10}, false)

	sc.Build()
	return sc, floorID, lightID
}

func TestSceneIntersectFindsClosestTriangle(t *testing.T) {
	sc, floorID, _ := buildFloorAndLightScene()
	ray := core.NewRay(core.Vec3{X: 0, Y: 5, Z: -5}, core.Vec3{X: 0, Y: -1, Z: 0})
	sp, ok := sc.Intersect(ray, 0, math.Inf(1))
	if !ok {
		t.Fatal("expected the ray to hit the floor")
	}
	if sp.PrimitiveID != floorID {
		t.Fatalf("expected to hit the floor primitive %v, got %v", floorID, sp.PrimitiveID)
	}
}

func TestSceneIsLightOnlyForAttachedTriangle(t *testing.T) {
	sc, floorID, lightID := buildFloorAndLightScene()
	floorSp, _ := sc.Intersect(core.NewRay(core.Vec3{X: 0, Y: 5, Z: -5}, core.Vec3{X: 0, Y: -1, Z: 0}), 0, math.Inf(1))
	if sc.IsLight(floorSp) {
		t.Fatal("expected the floor to not be a light")
	}
	_ = floorID

	lightSp, ok := sc.Intersect(core.NewRay(core.Vec3{X: 0, Y: 0, Z: 0}, core.Vec3{X: 0, Y: 1, Z: 0}), 0, math.Inf(1))
	if !ok || lightSp.PrimitiveID != lightID {
		t.Fatal("expected the ray to hit the emitter")
	}
	if !sc.IsLight(lightSp) {
		t.Fatal("expected the emitter to be a light")
	}
}

func TestSceneVisibleDetectsOccluder(t *testing.T) {
	sc, _, _ := buildFloorAndLightScene()
	p1 := core.SceneInteraction{Geom: core.Geometry{P: core.Vec3{X: 0, Y: 5, Z: 0}}}
	p2 := core.SceneInteraction{Geom: core.Geometry{P: core.Vec3{X: 0, Y: -5, Z: 0}}}
	if sc.Visible(p1, p2) {
		t.Fatal("expected the floor to occlude the line between the two points")
	}

	p3 := core.SceneInteraction{Geom: core.Geometry{P: core.Vec3{X: 5, Y: 5, Z: 0}}}
	p4 := core.SceneInteraction{Geom: core.Geometry{P: core.Vec3{X: 5, Y: 3, Z: 0}}}
	if !sc.Visible(p3, p4) {
		t.Fatal("expected two nearby points with nothing between them to be visible")
	}
}

func TestSampleDirectLightMatchesPdfDirect(t *testing.T) {
	sc, _, _ := buildFloorAndLightScene()
	rng := core.NewRNG(11)
	sp := core.SceneInteraction{Type: core.SurfacePoint, Geom: core.Geometry{P: core.Vec3{X: 0, Y: 0, Z: 0}, N: core.Vec3{X: 0, Y: 1, Z: 0}}}

	rs, ok := sc.SampleDirectLight(rng, sp)
	if !ok {
		t.Fatal("expected SampleDirectLight to succeed with a light in the scene")
	}
	pdf := sc.PdfDirect(sp, rs.Sp, rs.Comp, rs.Wo)
	if pdf <= 0 {
		t.Fatal("expected a positive pdf for the same light sample under PdfDirect")
	}
}

func TestSceneWithNoLightsSampleDirectLightFails(t *testing.T) {
	sc := New(testCamera(), nil, nil)
	sc.Build()
	sp := core.SceneInteraction{Geom: core.Geometry{P: core.Vec3{}}}
	if _, ok := sc.SampleDirectLight(core.NewRNG(1), sp); ok {
		t.Fatal("expected SampleDirectLight to fail with no lights registered")
	}
}

func TestSampleDistanceWithoutMediumHitsSurface(t *testing.T) {
	sc, floorID, _ := buildFloorAndLightScene()
	sp := core.SceneInteraction{Geom: core.Geometry{P: core.Vec3{X: 0, Y: 5, Z: -5}}}
	ds, ok := sc.SampleDistance(core.NewRNG(1), sp, core.Vec3{X: 0, Y: -1, Z: 0})
	if !ok {
		t.Fatal("expected SampleDistance to hit the floor in a vacuum scene")
	}
	if ds.Sp.PrimitiveID != floorID {
		t.Fatalf("expected to hit the floor, got primitive %v", ds.Sp.PrimitiveID)
	}
	if ds.Weight != (core.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Fatalf("expected unit weight in a vacuum scene, got %v", ds.Weight)
	}
}

func TestSampleDistanceWithMediumCanScatter(t *testing.T) {
	sc := New(testCamera(), medium.NewHomogeneous(core.Vec3{}, core.Vec3{X: 5, Y: 5, Z: 5}), nil)
	sc.Build()
	sp := core.SceneInteraction{Geom: core.Geometry{P: core.Vec3{X: 0, Y: 0, Z: 0}}}

	scattered := false
	for seed := int64(0); seed < 50; seed++ {
		ds, ok := sc.SampleDistance(core.NewRNG(seed), sp, core.Vec3{X: 0, Y: 0, Z: -1})
		if ok && ds.Sp.Type == core.MediumPoint {
			scattered = true
			break
		}
	}
	if !scattered {
		t.Fatal("expected a dense homogeneous medium to eventually scatter within 50 samples")
	}
}

func TestEvalContrbEndpointRespectsOneSidedAreaLight(t *testing.T) {
	sc, _, lightID := buildFloorAndLightScene()
	sp := core.SceneInteraction{Type: core.SurfacePoint, PrimitiveID: lightID, Geom: core.Geometry{N: core.Vec3{X: 0, Y: 1, Z: 0}}}
	front := sc.EvalContrbEndpoint(sp, core.Vec3{X: 0, Y: 1, Z: 0})
	if front.IsZero() {
		t.Fatal("expected emission facing the light's normal to be nonzero")
	}
	back := sc.EvalContrbEndpoint(sp, core.Vec3{X: 0, Y: -1, Z: 0})
	if !back.IsZero() {
		t.Fatal("expected a one-sided area light to emit nothing on its back face")
	}
}

func TestTraversePrimitiveNodesVisitsEveryPrimitiveWithIdentityTransform(t *testing.T) {
	sc, _, _ := buildFloorAndLightScene()
	count := 0
	sc.TraversePrimitiveNodes(func(n PrimitiveNode, tr Transform) {
		count++
		if tr.Translation != (core.Vec3{}) {
			t.Fatalf("expected an identity transform, got %v", tr.Translation)
		}
	})
	if count != 2 {
		t.Fatalf("expected 2 primitives visited, got %d", count)
	}
}
