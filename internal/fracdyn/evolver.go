package fracdyn

import (
	"context"
	"fmt"
)

// ForcingFunc is an external forcing term f(x, t) added to the update.
type ForcingFunc func(x, t float64) float64

// EvolveConfig controls checkpointing and divergence detection.
type EvolveConfig struct {
	SaveInterval    int
	BlowupThreshold float64
	RetainFields    bool
}

func DefaultEvolveConfig() EvolveConfig {
	return EvolveConfig{
		SaveInterval:    10,
		BlowupThreshold: 1e6,
		RetainFields:    true,
	}
}

// Checkpoint is one sampled point of a run. Field is a private copy,
// never aliased with the live working buffer.
type Checkpoint struct {
	Step   int     `json:"step"`
	Time   float64 `json:"time"`
	Field  Field   `json:"field,omitempty"`
	MaxAmp float64 `json:"max_amp"`
	L2Norm float64 `json:"l2_norm"`
}

// Trace is the checkpointed record of one run. Append-only while the
// run executes, immutable afterward. A truncated trace is valid output:
// the scheme blowing up is an analysis result, not a failure.
type Trace struct {
	Checkpoints   []Checkpoint `json:"checkpoints"`
	Steps         int          `json:"steps"`
	Dt            float64      `json:"dt"`
	Dx            float64      `json:"dx"`
	Truncated     bool         `json:"truncated"`
	TruncatedStep int          `json:"truncated_step,omitempty"`
}

// Final returns the last checkpoint.
func (tr *Trace) Final() Checkpoint {
	return tr.Checkpoints[len(tr.Checkpoints)-1]
}

// Evolver advances a field with the explicit Euler scheme
//
//	psi' = psi + dt*(alpha*Lp(psi) + beta*noise*psi - gamma*psi^3 + forcing)
//
// where Lp is the fractional-power Laplacian.
type Evolver struct {
	op      *Operator
	params  Parameters
	forcing ForcingFunc
}

func NewEvolver(g Grid, p Parameters) *Evolver {
	return &Evolver{op: NewOperator(g), params: p}
}

// SetForcing injects an external forcing term; nil means zero forcing.
func (e *Evolver) SetForcing(f ForcingFunc) { e.forcing = f }

func (e *Evolver) Grid() Grid         { return e.op.Grid() }
func (e *Evolver) Params() Parameters { return e.params }

// Step computes one explicit Euler update. The returned field is a new
// buffer; psi is read-only.
func (e *Evolver) Step(psi Field, t float64, noiseRow Field) (Field, error) {
	if len(noiseRow) != len(psi) {
		return nil, fmt.Errorf("%w: field %d, noise row %d", ErrShapeMismatch, len(psi), len(noiseRow))
	}

	diffused, err := e.op.Apply(psi, e.params.FractalOrder)
	if err != nil {
		return nil, err
	}

	p := e.params
	next := make(Field, len(psi))
	for i, v := range psi {
		rhs := p.Alpha*diffused[i] + p.Beta*noiseRow[i]*v - p.Gamma*v*v*v
		if e.forcing != nil {
			rhs += e.forcing(e.op.Grid().X(i), t)
		}
		next[i] = v + p.Dt*rhs
	}
	return next, nil
}

// Evolve iterates Step nSteps times, sampling a checkpoint every
// SaveInterval steps (and always at step 0 and the last step reached).
// It halts early when the field exceeds the blow-up threshold or turns
// non-finite; the returned trace is then flagged Truncated with the
// last valid step recorded. Cancellation through ctx also returns the
// partial trace, with ctx.Err().
func (e *Evolver) Evolve(ctx context.Context, psi0 Field, nSteps int, noise NoiseSeries, cfg EvolveConfig) (*Trace, error) {
	if err := e.params.Validate(); err != nil {
		return nil, err
	}
	if err := e.op.Grid().Validate(); err != nil {
		return nil, err
	}
	if len(psi0) != e.op.Grid().N {
		return nil, fmt.Errorf("%w: initial field %d, grid %d", ErrShapeMismatch, len(psi0), e.op.Grid().N)
	}
	if len(noise) < nSteps {
		return nil, fmt.Errorf("%w: %d noise rows for %d steps", ErrShapeMismatch, len(noise), nSteps)
	}
	if cfg.SaveInterval < 1 {
		cfg.SaveInterval = 1
	}
	if cfg.BlowupThreshold <= 0 {
		cfg.BlowupThreshold = DefaultEvolveConfig().BlowupThreshold
	}

	trace := &Trace{
		Checkpoints: make([]Checkpoint, 0, nSteps/cfg.SaveInterval+2),
		Dt:          e.params.Dt,
		Dx:          e.op.Grid().Dx(),
	}

	psi := psi0.Clone()
	t := 0.0
	trace.record(psi, 0, t, cfg)

	for i := 0; i < nSteps; i++ {
		select {
		case <-ctx.Done():
			return trace, ctx.Err()
		default:
		}

		next, err := e.Step(psi, t, noise[i])
		if err != nil {
			return trace, &StepError{Step: i, Time: t, Wrapped: err}
		}

		step := i + 1
		t = float64(step) * e.params.Dt

		if !next.IsValid() || next.MaxAbs() > cfg.BlowupThreshold {
			trace.Truncated = true
			trace.TruncatedStep = i
			// last valid field, not the blown-up one
			if trace.Final().Step != i {
				trace.record(psi, i, float64(i)*e.params.Dt, cfg)
			}
			return trace, nil
		}

		psi = next
		trace.Steps = step

		if step%cfg.SaveInterval == 0 || step == nSteps {
			trace.record(psi, step, t, cfg)
		}
	}

	return trace, nil
}

func (tr *Trace) record(psi Field, step int, t float64, cfg EvolveConfig) {
	cp := Checkpoint{
		Step:   step,
		Time:   t,
		MaxAmp: psi.MaxAbs(),
		L2Norm: psi.L2(tr.Dx),
	}
	if cfg.RetainFields {
		cp.Field = psi.Clone()
	}
	tr.Checkpoints = append(tr.Checkpoints, cp)
}
