package fracdyn

import "math"

// Field is the sampled state psi on a periodic 1-D grid.
type Field []float64

func (f Field) Clone() Field {
	c := make(Field, len(f))
	copy(c, f)
	return c
}

func (f Field) IsValid() bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxAbs returns the largest absolute sample value.
func (f Field) MaxAbs() float64 {
	m := 0.0
	for _, v := range f {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// L2 is the dx-weighted L2 norm sqrt(dx * sum psi^2). The same
// weighting convention is used everywhere in this module.
func (f Field) L2(dx float64) float64 {
	sum := 0.0
	for _, v := range f {
		sum += v * v
	}
	return math.Sqrt(dx * sum)
}

// L2Distance is the dx-weighted L2 norm of f-other.
func (f Field) L2Distance(other Field, dx float64) float64 {
	sum := 0.0
	for i := range f {
		d := f[i] - other[i]
		sum += d * d
	}
	return math.Sqrt(dx * sum)
}

func (f Field) Add(other Field) Field {
	result := make(Field, len(f))
	for i := range f {
		if i < len(other) {
			result[i] = f[i] + other[i]
		} else {
			result[i] = f[i]
		}
	}
	return result
}

func (f Field) Scale(factor float64) Field {
	result := make(Field, len(f))
	for i := range f {
		result[i] = f[i] * factor
	}
	return result
}

// Grid describes the periodic 1-D domain the fields live on.
type Grid struct {
	N          int
	DomainSize float64
}

func NewGrid(n int, domainSize float64) Grid {
	return Grid{N: n, DomainSize: domainSize}
}

func (g Grid) Dx() float64 {
	return g.DomainSize / float64(g.N)
}

// X returns the coordinate of sample i.
func (g Grid) X(i int) float64 {
	return float64(i) * g.Dx()
}

// Validate checks the grid can support the three-point stencil.
func (g Grid) Validate() error {
	if g.N < 3 {
		return ErrGridTooSmall
	}
	if g.DomainSize <= 0 || math.IsNaN(g.DomainSize) || math.IsInf(g.DomainSize, 0) {
		return ErrInvalidParameter
	}
	return nil
}

// SineField samples amp*sin(2*pi*mode*x/L), the standard oscillatory
// initial condition for stability sweeps.
func SineField(g Grid, amp float64, mode int) Field {
	f := make(Field, g.N)
	for i := range f {
		f[i] = amp * math.Sin(2*math.Pi*float64(mode)*g.X(i)/g.DomainSize)
	}
	return f
}
