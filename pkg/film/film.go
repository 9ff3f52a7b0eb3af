// Package film implements the accumulation buffer module (spec.md §3, §4.7):
// a 2-D grid of radiance values with a lock-free per-channel splat,
// rescale, and clear. The compare-and-swap accumulate loop mirrors the
// teacher's "mostly lock-free" SplatQueue (pkg/renderer/splat_queue.go),
// adapted from queue-then-reduce to direct per-pixel atomic accumulation
// since spec.md's contract lets any worker splat into any pixel at any time.
package film

import (
	"math"
	"sync/atomic"

	"github.com/df07/lightmetrica-go/pkg/core"
)

// Film is a thread-safe width x height accumulation buffer.
type Film struct {
	width, height int
	r, g, b       []uint64 // atomic-accessed float64 bits, one triple per pixel
}

// New creates a zeroed film of the given dimensions.
func New(width, height int) *Film {
	n := width * height
	return &Film{width: width, height: height, r: make([]uint64, n), g: make([]uint64, n), b: make([]uint64, n)}
}

func (f *Film) Width() int  { return f.width }
func (f *Film) Height() int { return f.height }

func addFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		newVal := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(addr, old, newVal) {
			return
		}
	}
}

// Splat accumulates value into the pixel nearest rp, a fractional raster
// coordinate in [0,1]^2 with (0,0) at the lower-left. Non-finite values are
// dropped per spec.md §7's NaN/Inf discipline rather than accumulated.
func (f *Film) Splat(rp core.Vec2, value core.Vec3) {
	if !value.IsFinite() {
		return
	}
	x := int(math.Floor(rp.X * float64(f.width)))
	y := int(math.Floor(rp.Y * float64(f.height)))
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	idx := y*f.width + x
	addFloat64(&f.r[idx], value.X)
	addFloat64(&f.g[idx], value.Y)
	addFloat64(&f.b[idx], value.Z)
}

// SplatPixel accumulates directly into an integer pixel coordinate, used by
// schedulers that already know the discrete pixel (SPP mode).
func (f *Film) SplatPixel(x, y int, value core.Vec3) {
	if !value.IsFinite() {
		return
	}
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	idx := y*f.width + x
	addFloat64(&f.r[idx], value.X)
	addFloat64(&f.g[idx], value.Y)
	addFloat64(&f.b[idx], value.Z)
}

// At returns the current accumulated value at pixel (x,y).
func (f *Film) At(x, y int) core.Vec3 {
	idx := y*f.width + x
	return core.Vec3{
		X: math.Float64frombits(atomic.LoadUint64(&f.r[idx])),
		Y: math.Float64frombits(atomic.LoadUint64(&f.g[idx])),
		Z: math.Float64frombits(atomic.LoadUint64(&f.b[idx])),
	}
}

// Rescale multiplies every cell by s (e.g. 1/spp after an SPP render).
func (f *Film) Rescale(s float64) {
	for i := range f.r {
		addFloat64FromScale(&f.r[i], s)
		addFloat64FromScale(&f.g[i], s)
		addFloat64FromScale(&f.b[i], s)
	}
}

func addFloat64FromScale(addr *uint64, s float64) {
	for {
		old := atomic.LoadUint64(addr)
		newVal := math.Float64bits(math.Float64frombits(old) * s)
		if atomic.CompareAndSwapUint64(addr, old, newVal) {
			return
		}
	}
}

// Clear zeroes every cell.
func (f *Film) Clear() {
	for i := range f.r {
		atomic.StoreUint64(&f.r[i], 0)
		atomic.StoreUint64(&f.g[i], 0)
		atomic.StoreUint64(&f.b[i], 0)
	}
}

// Pixels copies out the current buffer as a flat row-major slice, for
// output encoding.
func (f *Film) Pixels() []core.Vec3 {
	out := make([]core.Vec3, f.width*f.height)
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			out[y*f.width+x] = f.At(x, y)
		}
	}
	return out
}
