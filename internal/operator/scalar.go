package operator

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// Constant multiplies every state with a fixed number.
type Constant struct {
	base
	value complex128
}

func NewConstant(g *grid.Grid, value complex128) (*Constant, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: operator needs a grid", qdyn.ErrInvalidValue)
	}
	return &Constant{base: base{grid: g}, value: value}, nil
}

func (c *Constant) Value() complex128 { return c.value }

func (c *Constant) ApplyToWaveFunction(psi *tensor.Tensor, _ float64) *tensor.Tensor {
	return psi.Scale(c.value)
}

func (c *Constant) ApplyFromLeft(rho *tensor.Tensor, _ float64) *tensor.Tensor {
	return rho.Scale(c.value)
}

func (c *Constant) ApplyFromRight(rho *tensor.Tensor, _ float64) *tensor.Tensor {
	return rho.Scale(c.value)
}

// TimeDependent multiplies states with a function of time f(t). From the
// right, the complex conjugate of f(t) is used so that the Hermitian
// character of the full operator is kept.
type TimeDependent struct {
	base
	fn func(t float64) complex128
}

func NewTimeDependent(g *grid.Grid, fn func(t float64) complex128) (*TimeDependent, error) {
	if g == nil || fn == nil {
		return nil, fmt.Errorf("%w: time-dependent operator needs a grid and a function", qdyn.ErrInvalidValue)
	}
	return &TimeDependent{base: base{grid: g, timeDependent: true}, fn: fn}, nil
}

// LaserField returns the electric field E(t) = e0 shape(t) cos(omega t + phi)
// as a time-dependent operator. It is typically multiplied with a dipole
// operator.
func LaserField(g *grid.Grid, e0 float64, shape func(t float64) float64, omega, phi float64) (*TimeDependent, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: laser field needs a shape function", qdyn.ErrInvalidValue)
	}
	return NewTimeDependent(g, func(t float64) complex128 {
		return complex(e0*shape(t)*math.Cos(omega*t+phi), 0)
	})
}

func (op *TimeDependent) ApplyToWaveFunction(psi *tensor.Tensor, t float64) *tensor.Tensor {
	return psi.Scale(op.fn(t))
}

func (op *TimeDependent) ApplyFromLeft(rho *tensor.Tensor, t float64) *tensor.Tensor {
	return rho.Scale(op.fn(t))
}

func (op *TimeDependent) ApplyFromRight(rho *tensor.Tensor, t float64) *tensor.Tensor {
	return rho.Scale(cmplx.Conj(op.fn(t)))
}
