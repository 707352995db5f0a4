package fracdyn

import (
	"context"
	"math/rand"
	"sync"
)

// Ensemble runs the same configuration under numRuns independent noise
// realizations, seeds seedStart..seedStart+numRuns-1. Runs share no
// mutable state and execute concurrently.
type Ensemble struct {
	grid      Grid
	params    Parameters
	numRuns   int
	seedStart int64
}

func NewEnsemble(g Grid, p Parameters, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{grid: g, params: p, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, psi0 Field, nSteps int, cfg EvolveConfig) ([]*Trace, error) {
	traces := make([]*Trace, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(e.seedStart + int64(idx)))
			noise, err := GenerateNoise(e.grid.N, nSteps, e.params.Hurst, rng)
			if err != nil {
				errs[idx] = err
				return
			}

			ev := NewEvolver(e.grid, e.params)
			traces[idx], errs[idx] = ev.Evolve(ctx, psi0, nSteps, noise, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return traces, nil
}
