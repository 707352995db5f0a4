package fracdyn

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// plainLaplacian mirrors the periodic second-order stencil directly.
func plainLaplacian(psi Field, dx float64) Field {
	n := len(psi)
	out := make(Field, n)
	for i := 0; i < n; i++ {
		out[i] = (psi[(i-1+n)%n] - 2*psi[i] + psi[(i+1)%n]) / (dx * dx)
	}
	return out
}

func TestOperatorOrderTwoMatchesPlainLaplacian(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{3, 5, 16, 64, 257} {
		grid := NewGrid(n, 1.0)
		op := NewOperator(grid)

		psi := make(Field, n)
		for i := range psi {
			psi[i] = rng.NormFloat64()
		}

		got, err := op.Apply(psi, 2.0)
		if err != nil {
			t.Fatalf("n=%d: apply failed: %v", n, err)
		}

		want := plainLaplacian(psi, grid.Dx())
		for i := range want {
			if math.Abs(got[i]-want[i]) > 1e-9 {
				t.Fatalf("n=%d i=%d: got %g, want %g", n, i, got[i], want[i])
			}
		}
	}
}

func TestOperatorQuadraticSample(t *testing.T) {
	n := 64
	grid := NewGrid(n, 1.0)
	op := NewOperator(grid)

	psi := make(Field, n)
	for i := range psi {
		x := grid.X(i)
		psi[i] = x * x
	}

	got, err := op.Apply(psi, 2.0)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	// central difference is exact for quadratics away from the wrap
	dx := grid.Dx()
	tol := 100 * dx * dx
	for i := 2; i < n-2; i++ {
		if math.Abs(got[i]-2.0) > tol {
			t.Errorf("i=%d: laplacian of x^2 = %g, want 2 within %g", i, got[i], tol)
		}
	}
}

func TestOperatorGridTooSmall(t *testing.T) {
	op := NewOperator(NewGrid(2, 1.0))
	_, err := op.Apply(Field{1, 2}, 2.0)
	if !errors.Is(err, ErrGridTooSmall) {
		t.Errorf("expected ErrGridTooSmall, got %v", err)
	}
}

func TestOperatorInvalidOrder(t *testing.T) {
	op := NewOperator(NewGrid(8, 1.0))
	psi := make(Field, 8)

	for _, order := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := op.Apply(psi, order); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("order=%g: expected ErrInvalidParameter, got %v", order, err)
		}
	}
}

func TestOperatorFractionalSignConvention(t *testing.T) {
	n := 8
	grid := NewGrid(n, 1.0)
	op := NewOperator(grid)

	// a spike: negative laplacian at the peak, positive at the neighbors
	psi := make(Field, n)
	psi[4] = 1.0

	lap := plainLaplacian(psi, grid.Dx())
	got, err := op.Apply(psi, 1.0) // p = 0.5
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	for i := range got {
		switch {
		case lap[i] > 0 && got[i] <= 0:
			t.Errorf("i=%d: sign not preserved for positive laplacian", i)
		case lap[i] < 0 && got[i] >= 0:
			t.Errorf("i=%d: sign not preserved for negative laplacian", i)
		case lap[i] == 0 && got[i] != 0:
			t.Errorf("i=%d: zero laplacian must contribute 0, got %g", i, got[i])
		}
	}
}

func TestOperatorConstantFieldIsZero(t *testing.T) {
	grid := NewGrid(16, 1.0)
	op := NewOperator(grid)

	psi := make(Field, 16)
	for i := range psi {
		psi[i] = 3.5
	}

	for _, order := range []float64{0.5, 1.0, 2.0, 4.0} {
		got, err := op.Apply(psi, order)
		if err != nil {
			t.Fatalf("order=%g: apply failed: %v", order, err)
		}
		for i, v := range got {
			if v != 0 {
				t.Errorf("order=%g i=%d: constant field gave %g, want 0", order, i, v)
			}
		}
	}
}

func TestOperatorIteratedBranch(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 32
	grid := NewGrid(n, 1.0)
	op := NewOperator(grid)

	psi := make(Field, n)
	for i := range psi {
		psi[i] = rng.NormFloat64()
	}

	// order 4 -> p=2 -> one extra laplacian on top of the first
	got, err := op.Apply(psi, 4.0)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	want := plainLaplacian(plainLaplacian(psi, grid.Dx()), grid.Dx())

	for i := range want {
		diff := math.Abs(got[i] - want[i])
		scale := math.Max(math.Abs(want[i]), 1)
		if diff/scale > 1e-9 {
			t.Errorf("i=%d: got %g, want %g", i, got[i], want[i])
		}
	}
}

func TestOperatorDoesNotMutateInput(t *testing.T) {
	grid := NewGrid(16, 1.0)
	op := NewOperator(grid)

	psi := SineField(grid, 1.0, 1)
	before := psi.Clone()

	if _, err := op.Apply(psi, 1.5); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	for i := range psi {
		if psi[i] != before[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}
