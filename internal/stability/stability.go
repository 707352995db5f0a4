// Package stability classifies a discretization as stable or unstable
// by running the evolver and applying independent checks: linear-mode
// amplification, trajectory divergence, energy drift, spectral shape,
// and amplitude statistics. The aggregate verdict is the conjunction of
// the selected checks, with a confidence score equal to the fraction
// that agreed "stable".
package stability

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/fracsim/internal/fracdyn"
)

// Thresholds holds the empirical cut-offs of the individual checks.
type Thresholds struct {
	EnergyDrift        float64 `json:"energy_drift"`
	EnergyConservation float64 `json:"energy_conservation"`
	SpectralEntropy    float64 `json:"spectral_entropy"`
	Turbulence         float64 `json:"turbulence"`
	AmplitudeSlope     float64 `json:"amplitude_slope"`
	RelativeStd        float64 `json:"relative_std"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		EnergyDrift:        1e-3,
		EnergyConservation: 1e-6,
		SpectralEntropy:    10,
		Turbulence:         0.5,
		AmplitudeSlope:     1e-4,
		RelativeStd:        0.1,
	}
}

// Options configures one stability analysis.
type Options struct {
	NX                    int
	NT                    int
	DomainSize            float64
	Methods               []Method
	PerturbationAmplitude float64
	SaveInterval          int
	Seed                  int64
	BlowupThreshold       float64
	InitialField          fracdyn.Field // default 0.1*sin(2*pi*x/L)
	Thresholds            Thresholds
}

func DefaultOptions() Options {
	return Options{
		NX:                    64,
		NT:                    1000,
		DomainSize:            1.0,
		Methods:               AllMethods(),
		PerturbationAmplitude: 1e-6,
		SaveInterval:          10,
		Seed:                  42,
		BlowupThreshold:       1e6,
		Thresholds:            DefaultThresholds(),
	}
}

// Verdict is one check's result. Evidence is plain numbers so reports
// serialize losslessly.
type Verdict struct {
	Method   string             `json:"method"`
	Stable   bool               `json:"stable"`
	Evidence map[string]float64 `json:"evidence"`
}

// Report is the aggregate outcome, JSON-representable end to end.
type Report struct {
	Stable          bool               `json:"stable"`
	Confidence      float64            `json:"confidence"`
	Verdicts        []Verdict          `json:"verdicts"`
	Recommendations []string           `json:"recommendations"`
	Truncated       bool               `json:"truncated"`
	TruncatedStep   int                `json:"truncated_step,omitempty"`
	Params          fracdyn.Parameters `json:"params"`
	NX              int                `json:"nx"`
	NT              int                `json:"nt"`
	DomainSize      float64            `json:"domain_size"`
	Seed            int64              `json:"seed"`
	Warnings        []string           `json:"warnings,omitempty"`

	// Checkpoints is the primary run's scalar series (fields stripped),
	// kept JSON-friendly for export and plotting.
	Checkpoints []fracdyn.Checkpoint `json:"checkpoints"`
}

// Run executes the analysis. It is a pure synchronous call: the same
// parameters, options, and seed always produce the same report.
func Run(ctx context.Context, params fracdyn.Parameters, opts Options) (*Report, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	opts = fillDefaults(opts)

	grid := fracdyn.NewGrid(opts.NX, opts.DomainSize)
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if opts.NT < 1 {
		return nil, fmt.Errorf("%w: nt=%d", fracdyn.ErrInvalidParameter, opts.NT)
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	psi0 := opts.InitialField
	if psi0 == nil {
		psi0 = fracdyn.SineField(grid, 0.1, 1)
	} else if len(psi0) != grid.N {
		return nil, fmt.Errorf("%w: initial field %d, nx %d", fracdyn.ErrShapeMismatch, len(psi0), grid.N)
	}

	noise, err := fracdyn.GenerateNoise(grid.N, opts.NT, params.Hurst, rng)
	if err != nil {
		return nil, err
	}

	evCfg := fracdyn.EvolveConfig{
		SaveInterval:    opts.SaveInterval,
		BlowupThreshold: opts.BlowupThreshold,
		RetainFields:    true,
	}

	primary, err := fracdyn.NewEvolver(grid, params).Evolve(ctx, psi0, opts.NT, noise, evCfg)
	if err != nil {
		return nil, err
	}

	r := &run{
		params:     params,
		grid:       grid,
		primary:    primary,
		thresholds: opts.Thresholds,
	}

	if methodSelected(opts.Methods, TrajectoryDivergence) {
		// same noise realization: the separation measures sensitivity
		// to the initial perturbation alone
		perturbed0 := fracdyn.PerturbField(psi0, opts.PerturbationAmplitude, rng)
		r.perturbed, err = fracdyn.NewEvolver(grid, params).Evolve(ctx, perturbed0, opts.NT, noise, evCfg)
		if err != nil {
			return nil, err
		}
	}

	report := &Report{
		Params:        params,
		NX:            opts.NX,
		NT:            opts.NT,
		DomainSize:    opts.DomainSize,
		Seed:          opts.Seed,
		Truncated:     primary.Truncated,
		TruncatedStep: primary.TruncatedStep,
		Warnings:      params.Warnings(),
	}
	for _, cp := range primary.Checkpoints {
		cp.Field = nil
		report.Checkpoints = append(report.Checkpoints, cp)
	}

	stableCount := 0
	for _, m := range opts.Methods {
		v := checkerFor(m).evaluate(r)
		report.Verdicts = append(report.Verdicts, v)
		if v.Stable {
			stableCount++
		}
	}

	report.Stable = stableCount == len(opts.Methods)
	if len(opts.Methods) > 0 {
		report.Confidence = float64(stableCount) / float64(len(opts.Methods))
	}
	report.Recommendations = recommend(params, grid, report)

	return report, nil
}

func fillDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.NX == 0 {
		opts.NX = def.NX
	}
	if opts.NT == 0 {
		opts.NT = def.NT
	}
	if opts.DomainSize == 0 {
		opts.DomainSize = def.DomainSize
	}
	if len(opts.Methods) == 0 {
		opts.Methods = def.Methods
	}
	if opts.PerturbationAmplitude == 0 {
		opts.PerturbationAmplitude = def.PerturbationAmplitude
	}
	if opts.SaveInterval == 0 {
		opts.SaveInterval = def.SaveInterval
	}
	if opts.BlowupThreshold == 0 {
		opts.BlowupThreshold = def.BlowupThreshold
	}
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = def.Thresholds
	}
	return opts
}

func methodSelected(methods []Method, m Method) bool {
	for _, x := range methods {
		if x == m {
			return true
		}
	}
	return false
}

// recommend derives advisory text deterministically from the CFL-like
// diffusion number and the measured divergence. Advice only, never
// control flow.
func recommend(p fracdyn.Parameters, g fracdyn.Grid, report *Report) []string {
	var recs []string

	dx := g.Dx()
	cfl := p.DiffusionNumber(dx)
	if cfl > 0.5 {
		dtMax := 0.5 * math.Pow(dx, p.FractalOrder) / p.Alpha
		recs = append(recs, fmt.Sprintf("diffusion number %.3g exceeds 0.5: reduce dt below %.3g", cfl, dtMax))
	}

	for _, v := range report.Verdicts {
		if v.Method == TrajectoryDivergence.String() {
			if lam, ok := v.Evidence["lyapunov_exponent"]; ok && lam > 0 {
				recs = append(recs, fmt.Sprintf("trajectory-divergence exponent %.3g is positive: reduce dt or the noise gain beta", lam))
			}
		}
	}

	if report.Truncated {
		recs = append(recs, fmt.Sprintf("run diverged at step %d: reduce dt or increase the damping gain gamma", report.TruncatedStep))
	}

	if report.Stable && cfl < 0.05 && cfl > 0 {
		recs = append(recs, fmt.Sprintf("diffusion number %.3g is conservative: dt could grow toward %.3g", cfl, 0.5*math.Pow(dx, p.FractalOrder)/p.Alpha))
	}

	return recs
}
