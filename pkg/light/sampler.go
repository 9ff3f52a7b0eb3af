package light

import "fmt"

// Sampler selects a light from a fixed set with per-light weights, used by
// Scene.SampleDirectLight/PdfDirect for the light-selection pmf spec.md
// §4.3's sample_direct_light multiplies into its returned density. Weights
// are fixed at construction (independent of the reference point), the
// simplest strategy spec.md's Open Questions leaves to the implementation;
// Build() defaults to uniform weights, and NewSampler accepts explicit ones
// for scenes that want power-weighted or hand-tuned selection.
type Sampler struct {
	lights  []Light
	weights []float64
}

// NewUniformSampler gives every light in lights equal selection probability.
func NewUniformSampler(lights []Light) *Sampler {
	if len(lights) == 0 {
		return &Sampler{}
	}
	w := make([]float64, len(lights))
	uniform := 1.0 / float64(len(lights))
	for i := range w {
		w[i] = uniform
	}
	return &Sampler{lights: lights, weights: w}
}

// NewSampler builds a Sampler with explicit per-light weights, normalized to
// sum to 1; a zero total falls back to uniform weights.
func NewSampler(lights []Light, weights []float64) *Sampler {
	if len(lights) != len(weights) {
		panic(fmt.Sprintf("lights length (%d) must match weights length (%d)", len(lights), len(weights)))
	}
	if len(lights) == 0 {
		return &Sampler{}
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return NewUniformSampler(lights)
	}
	norm := make([]float64, len(weights))
	for i, w := range weights {
		norm[i] = w / total
	}
	return &Sampler{lights: lights, weights: norm}
}

// Count returns the number of lights in the sampler.
func (s *Sampler) Count() int { return len(s.lights) }

// Sample selects a light index from a single uniform variate u in [0,1),
// via the sampler's cumulative weight distribution.
func (s *Sampler) Sample(u float64) (idx int, pmf float64) {
	if len(s.lights) == 0 {
		return -1, 0
	}
	var cum float64
	for i, w := range s.weights {
		cum += w
		if u <= cum {
			return i, w
		}
	}
	last := len(s.lights) - 1
	return last, s.weights[last]
}

// Pmf returns the fixed selection probability of the light at idx.
func (s *Sampler) Pmf(idx int) float64 {
	if idx < 0 || idx >= len(s.weights) {
		return 0
	}
	return s.weights[idx]
}

// Light returns the light at idx.
func (s *Sampler) Light(idx int) Light { return s.lights[idx] }
