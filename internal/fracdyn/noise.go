package fracdyn

import (
	"fmt"
	"math"
	"math/rand"
)

// NoiseSeries holds one spatially correlated noise row per time index.
// A series belongs to a single run; grids of different sizes need their
// own series.
type NoiseSeries []Field

// GenerateNoise draws nt rows of nx Gaussian samples from rng and
// applies a one-sided recursive spatial correlation
//
//	corr[0] = raw[0]
//	corr[i] = c(i)*corr[i-1] + sqrt(1-c(i)^2)*raw[i],  c(i) = i^-hurst
//
// This is a causal AR-style approximation of Hurst-correlated noise,
// not a rigorous fractional-Brownian-motion sampler. The rng is
// required so runs are reproducible; ambient randomness is forbidden
// in the core.
func GenerateNoise(nx, nt int, hurst float64, rng *rand.Rand) (NoiseSeries, error) {
	if nx < 1 || nt < 0 {
		return nil, fmt.Errorf("%w: nx=%d nt=%d", ErrInvalidParameter, nx, nt)
	}
	if hurst <= 0 || hurst >= 1 || math.IsNaN(hurst) {
		return nil, fmt.Errorf("%w: hurst must lie in (0,1) exclusive, got %g", ErrInvalidParameter, hurst)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidParameter)
	}

	series := make(NoiseSeries, nt)
	for t := range series {
		raw := make(Field, nx)
		for i := range raw {
			raw[i] = rng.NormFloat64()
		}

		row := make(Field, nx)
		row[0] = raw[0]
		for i := 1; i < nx; i++ {
			c := math.Pow(float64(i), -hurst)
			row[i] = c*row[i-1] + math.Sqrt(1-c*c)*raw[i]
		}
		series[t] = row
	}
	return series, nil
}

// PerturbField returns a copy of psi with a uniform random delta of the
// given amplitude added to every sample. Used to seed the perturbed
// trajectory in sensitivity analysis.
func PerturbField(psi Field, amplitude float64, rng *rand.Rand) Field {
	out := psi.Clone()
	for i := range out {
		out[i] += amplitude * (2*rng.Float64() - 1)
	}
	return out
}
