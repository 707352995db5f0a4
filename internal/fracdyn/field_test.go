package fracdyn

import (
	"errors"
	"math"
	"testing"
)

func TestFieldCloneIsIndependent(t *testing.T) {
	f := Field{1, 2, 3}
	c := f.Clone()
	c[0] = 99
	if f[0] != 1 {
		t.Error("clone shares backing storage")
	}
}

func TestFieldIsValid(t *testing.T) {
	if !(Field{1, -2, 0}).IsValid() {
		t.Error("finite field reported invalid")
	}
	if (Field{1, math.NaN()}).IsValid() {
		t.Error("NaN not detected")
	}
	if (Field{math.Inf(-1)}).IsValid() {
		t.Error("Inf not detected")
	}
	if !(Field{}).IsValid() {
		t.Error("empty field should be trivially valid")
	}
}

func TestFieldMaxAbs(t *testing.T) {
	if got := (Field{1, -3, 2}).MaxAbs(); got != 3 {
		t.Errorf("got %g, want 3", got)
	}
	if got := (Field{}).MaxAbs(); got != 0 {
		t.Errorf("empty field max %g", got)
	}
}

func TestFieldL2Weighting(t *testing.T) {
	f := Field{3, 4}
	// sqrt(dx * 25) with dx=0.25
	if got, want := f.L2(0.25), 2.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("got %g, want %g", got, want)
	}
}

func TestFieldL2Distance(t *testing.T) {
	a := Field{1, 1, 1}
	b := Field{1, 1, 3}
	got := a.L2Distance(b, 0.5)
	want := math.Sqrt(0.5 * 4)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("got %g, want %g", got, want)
	}
}

func TestGridValidate(t *testing.T) {
	if err := NewGrid(3, 1.0).Validate(); err != nil {
		t.Errorf("minimal grid rejected: %v", err)
	}
	if err := NewGrid(2, 1.0).Validate(); !errors.Is(err, ErrGridTooSmall) {
		t.Errorf("expected ErrGridTooSmall, got %v", err)
	}
	if err := NewGrid(8, 0).Validate(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for zero domain, got %v", err)
	}
	if err := NewGrid(8, math.NaN()).Validate(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for NaN domain, got %v", err)
	}
}

func TestGridSpacing(t *testing.T) {
	g := NewGrid(10, 2.0)
	if g.Dx() != 0.2 {
		t.Errorf("dx %g, want 0.2", g.Dx())
	}
	if g.X(5) != 1.0 {
		t.Errorf("x(5) = %g, want 1", g.X(5))
	}
}

func TestSineFieldPeriodicity(t *testing.T) {
	g := NewGrid(64, 1.0)
	f := SineField(g, 0.5, 2)

	if len(f) != 64 {
		t.Fatalf("length %d", len(f))
	}
	if math.Abs(f[0]) > 1e-15 {
		t.Errorf("sine should start at zero, got %g", f[0])
	}
	if got := f.MaxAbs(); math.Abs(got-0.5) > 1e-3 {
		t.Errorf("amplitude %g, want ~0.5", got)
	}
	// mode 2 over 64 points: a quarter period is 8 samples
	if math.Abs(f[8]-0.5) > 1e-12 {
		t.Errorf("f[8] = %g, want 0.5 at the first crest", f[8])
	}
}
