// Package scheduler implements the sample-work dispatcher module (spec.md
// §4.6, §5): a fixed worker pool draining a task channel, one RNG stream per
// worker (never shared across workers), with cooperative cancellation via
// context.Context. Ported from the teacher's tile-based WorkerPool
// (pkg/renderer/worker_pool.go) and generalized from tile tasks to the two
// image-sampling strategies spec.md §4.4 names: SPP (samples-per-pixel) and
// SPI (samples-per-image).
package scheduler

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/df07/lightmetrica-go/pkg/core"
)

// Config controls worker count and RNG seeding, shared by both strategies.
// Progress is optional; when set, both strategies bump its atomic counter
// next to the one used for Result.Processed, so a monitor polling it never
// adds a lock to the sampling hot path.
type Config struct {
	Workers  int
	Seed     int64
	Progress *Progress
}

// Progress is a lock-free sample counter a caller can poll from another
// goroutine while a render is in flight, e.g. to report {processed, total}
// over a websocket without perturbing the worker loop below.
type Progress struct {
	total     uint64
	processed uint64
}

// NewProgress creates a Progress tracking total expected samples.
func NewProgress(total uint64) *Progress {
	return &Progress{total: total}
}

func (p *Progress) inc() {
	if p != nil {
		atomic.AddUint64(&p.processed, 1)
	}
}

// Processed returns the number of samples completed so far.
func (p *Progress) Processed() uint64 {
	if p == nil {
		return 0
	}
	return atomic.LoadUint64(&p.processed)
}

// Total returns the expected sample count this Progress was created with.
func (p *Progress) Total() uint64 {
	if p == nil {
		return 0
	}
	return p.total
}

func (c Config) numWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// PixelSampleFunc runs one walk rooted at fixed pixel (x,y); the integrator
// is responsible for its own film.splat calls (spec.md §4.4's algorithm
// splats zero or more times per walk, at raster positions that may differ
// from (x,y) itself under NEE). Used by the SPP strategy.
type PixelSampleFunc func(rng core.RNG, x, y int)

// ImageSampleFunc runs one walk rooted at a random raster position the
// integrator samples itself; used by the SPI strategy.
type ImageSampleFunc func(rng core.RNG)

// Result reports how many samples were actually processed, for render()'s
// { processed: u64 } return value.
type Result struct {
	Processed uint64
}

// RunSPP dispatches spp samples per pixel, one task per pixel, each task
// running spp iterations of sampleFn on its own worker's RNG stream.
// Cancellation via ctx stops dispatching new pixel tasks; tasks already
// claimed by a worker still run to completion.
func RunSPP(ctx context.Context, cfg Config, width, height, spp int, sampleFn PixelSampleFunc) Result {
	type pixelTask struct{ x, y int }

	numWorkers := cfg.numWorkers()
	tasks := make(chan pixelTask, width*height)
	var processed uint64
	var wg sync.WaitGroup

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			tasks <- pixelTask{x, y}
		}
	}
	close(tasks)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := core.NewRNG(core.WorkerSeed(cfg.Seed, workerID))
			for t := range tasks {
				if ctx.Err() != nil {
					return
				}
				for s := 0; s < spp; s++ {
					sampleFn(rng, t.x, t.y)
					atomic.AddUint64(&processed, 1)
					cfg.Progress.inc()
				}
			}
		}(w)
	}
	wg.Wait()
	return Result{Processed: atomic.LoadUint64(&processed)}
}

// RunSPI dispatches spi total samples across the image, each an independent
// task whose random raster position is sampled by sampleFn itself.
func RunSPI(ctx context.Context, cfg Config, spi int, sampleFn ImageSampleFunc) Result {
	numWorkers := cfg.numWorkers()
	tasks := make(chan struct{}, spi)
	var processed uint64
	var wg sync.WaitGroup

	for i := 0; i < spi; i++ {
		tasks <- struct{}{}
	}
	close(tasks)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := core.NewRNG(core.WorkerSeed(cfg.Seed, workerID))
			for range tasks {
				if ctx.Err() != nil {
					return
				}
				sampleFn(rng)
				atomic.AddUint64(&processed, 1)
				cfg.Progress.inc()
			}
		}(w)
	}
	wg.Wait()
	return Result{Processed: atomic.LoadUint64(&processed)}
}
