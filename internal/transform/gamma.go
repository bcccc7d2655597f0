package transform

import (
	"fmt"
	"math"
	"math/rand"
)

// GammaSampler draws gamma exponents from a log-uniform distribution.
type GammaSampler struct {
	low  float64
	high float64
}

// NewGammaSampler validates the log-gamma range and returns a sampler.
// Both bounds must lie in [-1, 1] with low <= high.
func NewGammaSampler(low, high float64) (*GammaSampler, error) {
	if low < -1 || low > 1 || high < -1 || high > 1 {
		return nil, fmt.Errorf("gamma range [%v, %v] out of bounds [-1, 1]", low, high)
	}
	if low > high {
		return nil, fmt.Errorf("gamma range low %v exceeds high %v", low, high)
	}
	return &GammaSampler{low: low, high: high}, nil
}

// Sample returns exp(g) for g drawn uniformly from the configured range.
func (s *GammaSampler) Sample(rng *rand.Rand) float64 {
	g := s.low + rng.Float64()*(s.high-s.low)
	return math.Exp(g)
}

// Range reports the configured log-gamma bounds.
func (s *GammaSampler) Range() (low, high float64) {
	return s.low, s.high
}

// ApplyGamma remaps intensities in place: values are min-max normalized to
// [0, 1], raised to the gamma exponent, and rescaled to the original range.
// Constant volumes are left untouched since they carry no contrast.
func ApplyGamma(data []float64, gamma float64) {
	if len(data) == 0 {
		return
	}
	lo, hi := data[0], data[0]
	for _, v := range data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		return
	}
	for i, v := range data {
		normalized := (v - lo) / span
		data[i] = lo + math.Pow(normalized, gamma)*span
	}
}
