package film

import (
	"math"
	"sync"
	"testing"

	"github.com/df07/lightmetrica-go/pkg/core"
)

func TestSplatAccumulatesIntoNearestPixel(t *testing.T) {
	f := New(4, 4)
	f.Splat(core.Vec2{X: 0.1, Y: 0.1}, core.Vec3{X: 1, Y: 1, Z: 1})
	f.Splat(core.Vec2{X: 0.1, Y: 0.1}, core.Vec3{X: 1, Y: 1, Z: 1})
	got := f.At(0, 0)
	if got != (core.Vec3{X: 2, Y: 2, Z: 2}) {
		t.Fatalf("expected accumulated (2,2,2), got %v", got)
	}
}

func TestSplatDropsNonFiniteValues(t *testing.T) {
	f := New(2, 2)
	f.Splat(core.Vec2{X: 0.5, Y: 0.5}, core.Vec3{X: math.NaN(), Y: 1, Z: 1})
	f.Splat(core.Vec2{X: 0.5, Y: 0.5}, core.Vec3{X: math.Inf(1), Y: 1, Z: 1})
	got := f.At(1, 1)
	if got != (core.Vec3{}) {
		t.Fatalf("expected NaN/Inf splats to be dropped, got %v", got)
	}
}

func TestSplatOutOfRangeIsIgnored(t *testing.T) {
	f := New(2, 2)
	f.Splat(core.Vec2{X: -0.1, Y: 0.5}, core.Vec3{X: 1, Y: 1, Z: 1})
	f.Splat(core.Vec2{X: 1.5, Y: 0.5}, core.Vec3{X: 1, Y: 1, Z: 1})
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if f.At(x, y) != (core.Vec3{}) {
				t.Fatalf("expected all pixels to remain zero, pixel (%d,%d)=%v", x, y, f.At(x, y))
			}
		}
	}
}

func TestRescaleMultipliesEveryPixel(t *testing.T) {
	f := New(2, 2)
	f.SplatPixel(0, 0, core.Vec3{X: 4, Y: 4, Z: 4})
	f.Rescale(0.5)
	if f.At(0, 0) != (core.Vec3{X: 2, Y: 2, Z: 2}) {
		t.Fatalf("expected rescaled (2,2,2), got %v", f.At(0, 0))
	}
}

func TestClearZeroesBuffer(t *testing.T) {
	f := New(2, 2)
	f.SplatPixel(1, 1, core.Vec3{X: 1, Y: 1, Z: 1})
	f.Clear()
	if f.At(1, 1) != (core.Vec3{}) {
		t.Fatal("expected Clear to zero every pixel")
	}
}

func TestSplatPixelConcurrentAccumulationIsRaceFree(t *testing.T) {
	f := New(1, 1)
	const n = 1000
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.SplatPixel(0, 0, core.Vec3{X: 1, Y: 1, Z: 1})
		}()
	}
	wg.Wait()
	got := f.At(0, 0)
	if got.X != n || got.Y != n || got.Z != n {
		t.Fatalf("expected (%d,%d,%d) after %d concurrent splats, got %v", n, n, n, n, got)
	}
}
