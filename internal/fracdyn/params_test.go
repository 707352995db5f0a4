package fracdyn

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestParametersValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Parameters)
		valid  bool
	}{
		{"defaults", func(p *Parameters) {}, true},
		{"zero dt", func(p *Parameters) { p.Dt = 0 }, false},
		{"negative dt", func(p *Parameters) { p.Dt = -1e-4 }, false},
		{"negative beta", func(p *Parameters) { p.Beta = -0.1 }, false},
		{"negative gamma", func(p *Parameters) { p.Gamma = -0.5 }, false},
		{"zero order", func(p *Parameters) { p.FractalOrder = 0 }, false},
		{"negative order", func(p *Parameters) { p.FractalOrder = -1.5 }, false},
		{"hurst zero boundary", func(p *Parameters) { p.Hurst = 0 }, false},
		{"hurst one boundary", func(p *Parameters) { p.Hurst = 1 }, false},
		{"hurst above one", func(p *Parameters) { p.Hurst = 1.2 }, false},
		{"nan alpha", func(p *Parameters) { p.Alpha = math.NaN() }, false},
		{"inf dt", func(p *Parameters) { p.Dt = math.Inf(1) }, false},
		{"negative alpha allowed", func(p *Parameters) { p.Alpha = -1 }, true},
		{"large order allowed", func(p *Parameters) { p.FractalOrder = 6 }, true},
		{"zero beta and gamma", func(p *Parameters) { p.Beta = 0; p.Gamma = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(&p)
			err := p.Validate()
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid {
				if err == nil {
					t.Error("expected validation error")
				} else if !errors.Is(err, ErrInvalidParameter) {
					t.Errorf("error must wrap ErrInvalidParameter, got %v", err)
				}
			}
		})
	}
}

func TestParametersWarnings(t *testing.T) {
	p := DefaultParameters()
	if w := p.Warnings(); len(w) != 0 {
		t.Errorf("defaults must not warn, got %v", w)
	}

	p.Alpha = -0.5
	p.FractalOrder = 5
	w := p.Warnings()
	if len(w) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(w), w)
	}
	if !strings.Contains(w[0], "alpha") {
		t.Errorf("first warning should mention alpha: %q", w[0])
	}
	if !strings.Contains(w[1], "fractal_order") {
		t.Errorf("second warning should mention fractal_order: %q", w[1])
	}
}

func TestDiffusionNumber(t *testing.T) {
	p := Parameters{Alpha: 1.0, FractalOrder: 2.0, Dt: 1e-4}
	dx := 1.0 / 64

	got := p.DiffusionNumber(dx)
	want := 1e-4 / (dx * dx)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("got %g, want %g", got, want)
	}
}

func TestStepErrorWrapping(t *testing.T) {
	inner := ErrShapeMismatch
	err := &StepError{Step: 7, Time: 0.007, Wrapped: inner}

	if !errors.Is(err, ErrShapeMismatch) {
		t.Error("StepError must unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "step 7") {
		t.Errorf("message should name the step: %q", err.Error())
	}
}
