package fracdyn

import (
	"fmt"
	"math"
)

const (
	DefaultAlpha        = 1.0
	DefaultBeta         = 0.1
	DefaultGamma        = 0.5
	DefaultFractalOrder = 1.5
	DefaultDt           = 0.0001
	DefaultHurst        = 0.7

	// MaxSaneOrder bounds the operator exponent for numerical sanity.
	// Larger orders are mathematically defined and only warn.
	MaxSaneOrder = 4.0
)

// Parameters holds the model coefficients. Treated as immutable: every
// call receives it by value.
type Parameters struct {
	Alpha        float64 `json:"alpha" yaml:"alpha"`                 // diffusion gain
	Beta         float64 `json:"beta" yaml:"beta"`                   // noise gain
	Gamma        float64 `json:"gamma" yaml:"gamma"`                 // cubic damping gain
	FractalOrder float64 `json:"fractal_order" yaml:"fractal_order"` // effective power = order/2
	Dt           float64 `json:"dt" yaml:"dt"`
	Hurst        float64 `json:"hurst" yaml:"hurst"`
}

func DefaultParameters() Parameters {
	return Parameters{
		Alpha:        DefaultAlpha,
		Beta:         DefaultBeta,
		Gamma:        DefaultGamma,
		FractalOrder: DefaultFractalOrder,
		Dt:           DefaultDt,
		Hurst:        DefaultHurst,
	}
}

// Validate fails fast before any simulation starts. Soft bounds (order
// outside (0, 4]) are reported by Warnings, not here.
func (p Parameters) Validate() error {
	fields := map[string]float64{
		"alpha":         p.Alpha,
		"beta":          p.Beta,
		"gamma":         p.Gamma,
		"fractal_order": p.FractalOrder,
		"dt":            p.Dt,
		"hurst":         p.Hurst,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParameter, name)
		}
	}
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParameter, p.Dt)
	}
	if p.Beta < 0 {
		return fmt.Errorf("%w: beta must be non-negative, got %g", ErrInvalidParameter, p.Beta)
	}
	if p.Gamma < 0 {
		return fmt.Errorf("%w: gamma must be non-negative, got %g", ErrInvalidParameter, p.Gamma)
	}
	if p.FractalOrder <= 0 {
		return fmt.Errorf("%w: fractal_order must be positive, got %g", ErrInvalidParameter, p.FractalOrder)
	}
	if p.Hurst <= 0 || p.Hurst >= 1 {
		return fmt.Errorf("%w: hurst must lie in (0,1) exclusive, got %g", ErrInvalidParameter, p.Hurst)
	}
	return nil
}

// Warnings lists soft parameter concerns that do not block a run.
func (p Parameters) Warnings() []string {
	var w []string
	if p.Alpha <= 0 {
		w = append(w, fmt.Sprintf("alpha=%g: non-positive diffusion gain, field will not smooth", p.Alpha))
	}
	if p.FractalOrder > MaxSaneOrder {
		w = append(w, fmt.Sprintf("fractal_order=%g exceeds %g: defined but numerically delicate", p.FractalOrder, MaxSaneOrder))
	}
	return w
}

// DiffusionNumber is the CFL-like ratio alpha*dt/dx^order that governs
// explicit-scheme stability.
func (p Parameters) DiffusionNumber(dx float64) float64 {
	return p.Alpha * p.Dt / math.Pow(dx, p.FractalOrder)
}
