// Package fracdyn provides the core primitives for integrating a 1-D
// stochastic-fractional diffusion-reaction equation on a periodic grid.
//
// The package defines the fundamental types for the explicit scheme:
//
//   - [Field]: sampled state psi on a periodic 1-D grid
//   - [Parameters]: model coefficients (diffusion, noise, damping, ...)
//   - [Operator]: discretized fractional-power Laplacian
//   - [Evolver]: explicit Euler time-stepper with divergence detection
//   - [Trace]: checkpointed record of one simulation run
//
// # Example
//
//	grid := fracdyn.NewGrid(128, 1.0)
//	noise := fracdyn.GenerateNoise(grid.N, steps, p.Hurst, rng)
//	ev := fracdyn.NewEvolver(grid, p)
//	trace, _ := ev.Evolve(ctx, psi0, steps, noise, fracdyn.DefaultEvolveConfig())
//
// # Thread Safety
//
// Evolver instances are NOT thread-safe. Independent runs (different
// seeds, mesh sizes, or perturbed trajectories) carry no shared mutable
// state and may execute concurrently; use [Ensemble] for seed fan-out.
package fracdyn
