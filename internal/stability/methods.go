package stability

import (
	"fmt"
	"math"

	"github.com/san-kum/fracsim/internal/diagnostics"
	"github.com/san-kum/fracsim/internal/fracdyn"
)

// Method identifies one stability check. The set is closed; callers
// select a subset through Options.Methods.
type Method int

const (
	LinearMode Method = iota
	TrajectoryDivergence
	EnergyDrift
	Spectral
	Statistical
)

var methodNames = map[Method]string{
	LinearMode:           "linear",
	TrajectoryDivergence: "trajectory",
	EnergyDrift:          "energy",
	Spectral:             "spectral",
	Statistical:          "statistical",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("method(%d)", int(m))
}

func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown stability method: %s", s)
}

func AllMethods() []Method {
	return []Method{LinearMode, TrajectoryDivergence, EnergyDrift, Spectral, Statistical}
}

// run bundles everything a check can look at.
type run struct {
	params     fracdyn.Parameters
	grid       fracdyn.Grid
	primary    *fracdyn.Trace
	perturbed  *fracdyn.Trace
	thresholds Thresholds
}

type checker interface {
	evaluate(r *run) Verdict
}

func checkerFor(m Method) checker {
	switch m {
	case LinearMode:
		return linearMode{}
	case TrajectoryDivergence:
		return trajectoryDivergence{}
	case EnergyDrift:
		return energyDrift{}
	case Spectral:
		return spectral{}
	default:
		return statistical{}
	}
}

// linearMode is a von-Neumann-style check of the linearized
// amplification factor over the first harmonics. It ignores the cubic
// damping and the spatial correlation of the noise, so it is an
// approximation that can disagree with the trajectory-based checks.
type linearMode struct{}

func (linearMode) evaluate(r *run) Verdict {
	p := r.params
	modes := 10
	if half := r.grid.N / 2; half < modes {
		modes = half
	}

	maxAmp, worst := 0.0, 0
	for m := 1; m <= modes; m++ {
		k := 2 * math.Pi * float64(m) / r.grid.DomainSize
		g := 1 - p.Dt*p.Alpha*math.Pow(k, p.FractalOrder) + p.Dt*p.Beta*math.Sqrt(p.Dt)
		if a := math.Abs(g); a > maxAmp {
			maxAmp, worst = a, m
		}
	}

	return Verdict{
		Method: LinearMode.String(),
		Stable: maxAmp <= 1,
		Evidence: map[string]float64{
			"max_amplification": maxAmp,
			"worst_mode":        float64(worst),
			"modes_tested":      float64(modes),
		},
	}
}

// trajectoryDivergence estimates a Lyapunov-style exponent from the
// separation between the primary and perturbed trajectories.
type trajectoryDivergence struct{}

func (trajectoryDivergence) evaluate(r *run) Verdict {
	v := Verdict{Method: TrajectoryDivergence.String(), Evidence: map[string]float64{}}
	if r.perturbed == nil {
		v.Stable = false
		v.Evidence["missing_perturbed_run"] = 1
		return v
	}

	n := len(r.primary.Checkpoints)
	if m := len(r.perturbed.Checkpoints); m < n {
		n = m
	}
	dx := r.grid.Dx()

	seps := make([]float64, n)
	times := make([]float64, n)
	for i := 0; i < n; i++ {
		a := r.primary.Checkpoints[i]
		b := r.perturbed.Checkpoints[i]
		seps[i] = a.Field.L2Distance(b.Field, dx)
		times[i] = a.Time
	}

	sum, count := 0.0, 0
	for i := 1; i < n; i++ {
		dt := times[i] - times[i-1]
		if seps[i] > 0 && seps[i-1] > 0 && dt > 0 {
			sum += math.Log(seps[i]/seps[i-1]) / dt
			count++
		}
	}

	exponent := 0.0
	if count > 0 {
		exponent = sum / float64(count)
	}

	v.Stable = exponent <= 0 && !r.primary.Truncated
	v.Evidence["lyapunov_exponent"] = exponent
	if n > 0 {
		v.Evidence["initial_separation"] = seps[0]
		v.Evidence["final_separation"] = seps[n-1]
	}
	return v
}

// energyDrift compares total energy between the first and last
// checkpoints; a stricter bound is reported separately as conservation.
type energyDrift struct{}

func (energyDrift) evaluate(r *run) Verdict {
	v := Verdict{Method: EnergyDrift.String(), Evidence: map[string]float64{}}

	first := r.primary.Checkpoints[0]
	last := r.primary.Final()
	dx := r.grid.Dx()

	e0 := diagnostics.Energy(first.Field, dx)
	e1 := diagnostics.Energy(last.Field, dx)
	elapsed := last.Time - first.Time

	rate := 0.0
	if elapsed > 0 {
		rate = (e1 - e0) / elapsed
	}

	v.Stable = math.Abs(rate) < r.thresholds.EnergyDrift
	v.Evidence["energy_initial"] = e0
	v.Evidence["energy_final"] = e1
	v.Evidence["drift_rate"] = rate
	if math.Abs(rate) < r.thresholds.EnergyConservation {
		v.Evidence["conserved"] = 1
	} else {
		v.Evidence["conserved"] = 0
	}
	return v
}

// spectral flags runs whose final spectrum has flattened out or piled
// energy into high modes.
type spectral struct{}

func (spectral) evaluate(r *run) Verdict {
	spectrum := diagnostics.PowerSpectrum(r.primary.Final().Field)
	entropy := diagnostics.SpectralEntropy(spectrum)
	turbulence := diagnostics.TurbulenceIndex(spectrum)

	return Verdict{
		Method: Spectral.String(),
		Stable: entropy < r.thresholds.SpectralEntropy && turbulence < r.thresholds.Turbulence,
		Evidence: map[string]float64{
			"spectral_entropy": entropy,
			"turbulence_index": turbulence,
		},
	}
}

// statistical tests the max-amplitude time series for a flat trend and
// low relative variance.
type statistical struct{}

func (statistical) evaluate(r *run) Verdict {
	v := Verdict{Method: Statistical.String(), Evidence: map[string]float64{}}

	cps := r.primary.Checkpoints
	n := len(cps)
	if n < 2 {
		v.Stable = !r.primary.Truncated
		return v
	}

	mean := 0.0
	for _, cp := range cps {
		mean += cp.MaxAmp
	}
	mean /= float64(n)

	variance := 0.0
	for _, cp := range cps {
		d := cp.MaxAmp - mean
		variance += d * d
	}
	variance /= float64(n)
	std := math.Sqrt(variance)

	slope := amplitudeTrend(cps)

	relStd := 0.0
	if mean != 0 {
		relStd = std / math.Abs(mean)
	}

	v.Stable = math.Abs(slope) < r.thresholds.AmplitudeSlope && relStd < r.thresholds.RelativeStd
	v.Evidence["trend_slope"] = slope
	v.Evidence["mean_amplitude"] = mean
	v.Evidence["relative_std"] = relStd
	return v
}

// amplitudeTrend is the least-squares slope of MaxAmp against time.
func amplitudeTrend(cps []fracdyn.Checkpoint) float64 {
	n := float64(len(cps))
	var sumT, sumA, sumTT, sumTA float64
	for _, cp := range cps {
		sumT += cp.Time
		sumA += cp.MaxAmp
		sumTT += cp.Time * cp.Time
		sumTA += cp.Time * cp.MaxAmp
	}
	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		return 0
	}
	return (n*sumTA - sumT*sumA) / denom
}
