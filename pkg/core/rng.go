package core

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	mrand "math/rand"
)

// RNG is a per-worker stream of uniform floats in [0,1). Implementations are
// never shared across goroutines; the scheduler hands each worker its own
// instance (spec.md §5, "RNG state is worker-local; no cross-worker sharing").
type RNG interface {
	// U returns a uniform float64 in [0,1).
	U() float64
	// U2 returns two independent uniform float64 samples in [0,1).
	U2() Vec2
	// U3 returns three independent uniform float64 samples in [0,1).
	U3() Vec3
}

// GoRNG wraps a standard library *math/rand.Rand as an RNG.
type GoRNG struct {
	r *mrand.Rand
}

// NewRNG constructs a worker RNG stream. Passing the same seed always
// reproduces the same stream, which is why the renderer only guarantees
// reproducibility when running single-threaded with a fixed seed.
func NewRNG(seed int64) *GoRNG {
	return &GoRNG{r: mrand.New(mrand.NewSource(seed))}
}

// WorkerSeed derives worker i's seed from a user-supplied base seed.
func WorkerSeed(base int64, worker int) int64 {
	return base + int64(worker)
}

// EntropySeed draws a seed from a system entropy source, used when the user
// supplies no base seed.
func EntropySeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real OS;
		// fall back to a big.Int-backed source rather than panicking.
		n, _ := rand.Int(rand.Reader, big.NewInt(1<<62))
		if n != nil {
			return n.Int64()
		}
		return 0
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}

// U returns a uniform float64 in [0,1).
func (g *GoRNG) U() float64 { return g.r.Float64() }

// U2 returns two independent uniform float64 samples in [0,1).
func (g *GoRNG) U2() Vec2 { return Vec2{X: g.r.Float64(), Y: g.r.Float64()} }

// U3 returns three independent uniform float64 samples in [0,1).
func (g *GoRNG) U3() Vec3 { return Vec3{X: g.r.Float64(), Y: g.r.Float64(), Z: g.r.Float64()} }
