package fracdyn

import (
	"fmt"
	"math"
)

// powerEps keeps |lap|^p continuous at zero for fractional powers.
const powerEps = 1e-10

// Operator is the discretized fractional-power Laplacian (-Delta)^(order/2)
// on a periodic grid. For order/2 < 1 it uses a pointwise Caputo-style
// signed power of the discrete Laplacian; for order/2 >= 1 it iterates
// the integer Laplacian floor(order/2)-1 extra times. The fractional
// remainder above 1 is dropped by the iterated branch — a known
// approximation kept for parity with the legacy behavior.
type Operator struct {
	grid Grid
	pool *FieldPool
}

func NewOperator(g Grid) *Operator {
	return &Operator{grid: g, pool: NewFieldPool(g.N)}
}

func (o *Operator) Grid() Grid { return o.grid }

// Apply computes the operator on psi. The result is a fresh field of
// the same length; psi is never written to.
func (o *Operator) Apply(psi Field, order float64) (Field, error) {
	n := len(psi)
	if n < 3 {
		return nil, fmt.Errorf("%w: got %d points", ErrGridTooSmall, n)
	}
	if order <= 0 || math.IsNaN(order) || math.IsInf(order, 0) {
		return nil, fmt.Errorf("%w: operator order %g", ErrInvalidParameter, order)
	}

	dx := o.grid.Dx()
	result := make(Field, n)
	laplacian(psi, dx, result)

	p := order / 2
	switch {
	case p < 1:
		for i, v := range result {
			switch {
			case v > 0:
				result[i] = math.Pow(v+powerEps, p)
			case v < 0:
				result[i] = -math.Pow(-v+powerEps, p)
			default:
				// sign(0) contributes 0
				result[i] = 0
			}
		}
	case p >= 2:
		scratch := o.pool.Get()
		src, dst := result, scratch
		for k := 0; k < int(p)-1; k++ {
			laplacian(src, dx, dst)
			src, dst = dst, src
		}
		if &src[0] != &result[0] {
			copy(result, src)
		}
		o.pool.Put(scratch)
	}
	// p in [1,2): the single Laplacian already computed stands.

	return result, nil
}

// laplacian writes the second-order central-difference Laplacian of psi
// into out. Index arithmetic wraps modulo N; periodic wrap is the only
// boundary condition supported.
func laplacian(psi Field, dx float64, out Field) {
	n := len(psi)
	inv := 1.0 / (dx * dx)
	for i := 0; i < n; i++ {
		prev := psi[(i-1+n)%n]
		next := psi[(i+1)%n]
		out[i] = (prev - 2*psi[i] + next) * inv
	}
}
