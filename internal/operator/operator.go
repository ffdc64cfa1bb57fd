// Package operator implements linear operators on a grid.
//
// Every operator is bound to one grid and can be applied to a wave function,
// or to a density operator from the left or from the right. The raw methods
// work directly on coefficient tensors in the weighted DVR and skip all
// validation; use Apply for checked application to a grid.State.
//
// Operators are immutable after construction and safe for concurrent use.
package operator

import (
	"fmt"
	"math"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

type Operator interface {
	Grid() *grid.Grid

	// TimeDependent reports whether the result of an application depends on
	// the time argument.
	TimeDependent() bool

	ApplyToWaveFunction(psi *tensor.Tensor, t float64) *tensor.Tensor
	// ApplyFromLeft returns op * rho.
	ApplyFromLeft(rho *tensor.Tensor, t float64) *tensor.Tensor
	// ApplyFromRight returns rho * op.
	ApplyFromRight(rho *tensor.Tensor, t float64) *tensor.Tensor
}

// Apply applies op to a wave function, or from the left to a density
// operator.
func Apply(op Operator, s *grid.State, t float64) (*grid.State, error) {
	if !op.Grid().Equal(s.Grid()) {
		return nil, fmt.Errorf("%w: grid of state does not match grid of operator", qdyn.ErrBadGrid)
	}

	switch {
	case s.IsWaveFunction():
		return grid.NewState(s.Grid(), op.ApplyToWaveFunction(s.Data(), t)), nil
	case s.IsDensityOperator():
		return grid.NewState(s.Grid(), op.ApplyFromLeft(s.Data(), t)), nil
	}
	return nil, fmt.Errorf("%w: cannot apply an operator to %s", qdyn.ErrBadState, s)
}

// ExpectationValue returns <psi|op|psi> for a wave function, or tr(op rho)
// for a density operator. Time-dependent operators need the time as the
// optional last argument.
func ExpectationValue(op Operator, s *grid.State, at ...float64) (complex128, error) {
	var t float64
	switch {
	case len(at) > 0:
		t = at[0]
	case op.TimeDependent():
		return 0, fmt.Errorf("%w: time-dependent operators need a time for expectation values", qdyn.ErrUnsupported)
	}

	applied, err := Apply(op, s, t)
	if err != nil {
		return 0, err
	}

	if s.IsWaveFunction() {
		return tensor.Dot(s.Data(), applied.Data()), nil
	}
	var tr complex128
	for _, v := range applied.Data().Diagonal(s.Grid().Size()) {
		tr += v
	}
	return tr, nil
}

type base struct {
	grid          *grid.Grid
	timeDependent bool
}

func (b base) Grid() *grid.Grid    { return b.grid }
func (b base) TimeDependent() bool { return b.timeDependent }

type options struct {
	cutoff    float64
	hasCutoff bool
}

// Option configures the construction of grid operators.
type Option func(*options)

// WithCutoff clips the real part of the operator's values. Potentials are
// clipped from above, FBR operators to [-cutoff, cutoff]. The imaginary part
// is never touched.
func WithCutoff(cutoff float64) Option {
	return func(o *options) {
		o.cutoff = cutoff
		o.hasCutoff = true
	}
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func clipReal(values []complex128, lower, upper float64) []complex128 {
	out := make([]complex128, len(values))
	for i, v := range values {
		re := math.Min(math.Max(real(v), lower), upper)
		out[i] = complex(re, imag(v))
	}
	return out
}

// normalizeDof normalizes a DOF index and wraps failures as invalid arguments.
func normalizeDof(g *grid.Grid, index int) (int, error) {
	if g == nil {
		return 0, fmt.Errorf("%w: operator needs a grid", qdyn.ErrInvalidValue)
	}
	return g.NormalizeIndex(index)
}

func evaluate(gen grid.Generator, points []float64) ([]complex128, error) {
	values := gen(points)
	if len(values) != len(points) {
		return nil, fmt.Errorf("%w: generator returned %d values for %d points",
			qdyn.ErrInvalidValue, len(values), len(points))
	}
	return values, nil
}
