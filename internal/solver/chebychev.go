package solver

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/wavesim/internal/expression"
	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/operator"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/special"
	"github.com/san-kum/wavesim/internal/tensor"
)

const defaultCutoff = 1e-12

type Option func(*options)

type options struct {
	cutoff float64
}

// WithCutoff sets the smallest expansion coefficient that is still summed up.
// It is roughly an upper bound of the error per step.
func WithCutoff(cutoff float64) Option {
	return func(o *options) { o.cutoff = cutoff }
}

func collect(opts []Option) (options, error) {
	o := options{cutoff: defaultCutoff}
	for _, opt := range opts {
		opt(&o)
	}
	if !(o.cutoff > 0) {
		return o, fmt.Errorf("%w: cutoff must be positive, got %g", qdyn.ErrInvalidValue, o.cutoff)
	}
	return o, nil
}

// spectrum maps [min, max] onto [-1, 1].
type spectrum struct {
	min, max float64
}

func newSpectrum(specMin, specMax float64) (spectrum, error) {
	if !(specMax > specMin) || math.IsInf(specMax-specMin, 0) {
		return spectrum{}, fmt.Errorf("%w: spectrum [%g, %g] is not monotonic", qdyn.ErrInvalidValue, specMin, specMax)
	}
	return spectrum{min: specMin, max: specMax}, nil
}

func (s spectrum) width() float64 { return s.max - s.min }

// shift is the term that centres the normalized spectrum on zero.
func (s spectrum) shift() float64 { return 2/s.width()*s.min + 1 }

// ChebychevSolver expands the propagator exp(L dt) of a time-independent
// equation dX/dt = L[X] into Chebychev polynomials. For L = -iH this is the
// real-time propagator exp(-iH dt).
//
// The expansion converges uniformly, but only if the spectrum of H lies
// inside the bounds given at construction. Loose bounds cost efficiency,
// bounds that are too tight make the propagation diverge without notice.
type ChebychevSolver struct {
	base
	expr      expression.Expression
	spectrum  spectrum
	alpha     float64
	prefactor complex128
	coeffs    []float64
}

func NewChebychevSolver(expr expression.Expression, dt, specMin, specMax float64, opts ...Option) (*ChebychevSolver, error) {
	b, err := newBase(dt)
	if err != nil {
		return nil, err
	}
	spec, err := newSpectrum(specMin, specMax)
	if err != nil {
		return nil, err
	}
	o, err := collect(opts)
	if err != nil {
		return nil, err
	}
	if expr.TimeDependent() {
		return nil, fmt.Errorf("%w: polynomial solvers require a time-independent expression", qdyn.ErrUnsupported)
	}

	s := &ChebychevSolver{
		base:      b,
		expr:      expr,
		spectrum:  spec,
		alpha:     spec.width() * dt / 2,
		prefactor: cmplx.Exp(complex(0, -(specMin+specMax)/2*dt)),
	}

	s.coeffs = []float64{special.BesselJ(0, s.alpha)}
	for n := 1; ; n++ {
		c := 2 * special.BesselJ(n, s.alpha)
		s.coeffs = append(s.coeffs, c)
		if n > 2 && math.Abs(c) < o.cutoff {
			break
		}
	}
	return s, nil
}

// Alpha is the Kosloff parameter (max - min) * dt / 2, which determines the
// order of the expansion.
func (s *ChebychevSolver) Alpha() float64 { return s.alpha }

func (s *ChebychevSolver) Order() int { return len(s.coeffs) - 1 }

func (s *ChebychevSolver) Coefficients() []float64 {
	return append([]float64(nil), s.coeffs...)
}

// Step ignores t; the expression is time-independent.
func (s *ChebychevSolver) Step(state *grid.State, _ float64) (*grid.State, error) {
	minus2 := state.Data()
	minus1, err := s.normalized(state.Grid(), minus2)
	if err != nil {
		return nil, err
	}

	result := minus2.Scale(complex(s.coeffs[0], 0)).AddScaled(complex(s.coeffs[1], 0), minus1)
	for _, c := range s.coeffs[2:] {
		next, err := s.normalized(state.Grid(), minus1)
		if err != nil {
			return nil, err
		}
		term := next.Scale(2).Add(minus2)
		result = result.AddScaled(complex(c, 0), term)
		minus2, minus1 = minus1, term
	}

	return grid.NewState(state.Grid(), result.Scale(s.prefactor)), nil
}

// normalized applies 2/(max-min) L[x] + i (2 min/(max-min) + 1) x. The
// expression carries the factor -i of the Schroedinger equation, so the
// shift carries it as well.
func (s *ChebychevSolver) normalized(g *grid.Grid, x *tensor.Tensor) (*tensor.Tensor, error) {
	lx, err := s.expr.Apply(grid.NewState(g, x), 0)
	if err != nil {
		return nil, err
	}
	return lx.Data().Scale(complex(2/s.spectrum.width(), 0)).AddScaled(complex(0, s.spectrum.shift()), x), nil
}

// RelaxationSolver propagates in imaginary time, X(t+dt) = exp(-H dt) X(t),
// with a Chebychev expansion in modified Bessel functions. Repeated steps
// damp every component by its energy, which relaxes a wave function towards
// the ground state.
//
// Density operators are multiplied from the left only, exp(-H dt) rho, so the
// unit density relaxes to exp(-H t).
type RelaxationSolver struct {
	base
	op        operator.Operator
	spectrum  spectrum
	alpha     float64
	prefactor float64
	coeffs    []float64
}

func NewRelaxationSolver(op operator.Operator, dt, specMin, specMax float64, opts ...Option) (*RelaxationSolver, error) {
	b, err := newBase(dt)
	if err != nil {
		return nil, err
	}
	spec, err := newSpectrum(specMin, specMax)
	if err != nil {
		return nil, err
	}
	o, err := collect(opts)
	if err != nil {
		return nil, err
	}
	if op.TimeDependent() {
		return nil, fmt.Errorf("%w: polynomial solvers require a time-independent operator", qdyn.ErrUnsupported)
	}

	alpha := spec.width() * dt / 2
	return &RelaxationSolver{
		base:      b,
		op:        op,
		spectrum:  spec,
		alpha:     alpha,
		prefactor: math.Exp(-specMin * dt),
		coeffs:    relaxationCoefficients(alpha, o.cutoff),
	}, nil
}

// relaxationCoefficients returns exp(-alpha) I_0(alpha), 2 exp(-alpha) I_n(alpha),
// ... up to the first n > 2 whose unscaled coefficient 2 I_n(alpha) drops below
// the cutoff.
func relaxationCoefficients(alpha, cutoff float64) []float64 {
	limit := math.Log(cutoff)
	for nmax := max(16, 2*int(math.Ceil(alpha))); ; nmax *= 2 {
		scaled := special.ScaledBesselI(nmax, alpha)
		for n := 3; n <= nmax; n++ {
			if scaled[n] <= 0 || math.Log(2*scaled[n])+alpha < limit {
				coeffs := make([]float64, n+1)
				coeffs[0] = scaled[0]
				for k := 1; k <= n; k++ {
					coeffs[k] = 2 * scaled[k]
				}
				return coeffs
			}
		}
	}
}

func (s *RelaxationSolver) Alpha() float64 { return s.alpha }

func (s *RelaxationSolver) Order() int { return len(s.coeffs) - 1 }

func (s *RelaxationSolver) Step(state *grid.State, _ float64) (*grid.State, error) {
	if !s.op.Grid().Equal(state.Grid()) {
		return nil, fmt.Errorf("%w: input state is defined on the wrong grid", qdyn.ErrBadGrid)
	}

	var apply func(*tensor.Tensor, float64) *tensor.Tensor
	switch {
	case state.IsWaveFunction():
		apply = s.op.ApplyToWaveFunction
	case state.IsDensityOperator():
		apply = s.op.ApplyFromLeft
	default:
		return nil, fmt.Errorf("%w: %v is neither a wave function nor a density operator", qdyn.ErrBadState, state)
	}

	scale := complex(-2/s.spectrum.width(), 0)
	shift := complex(s.spectrum.shift(), 0)
	normalized := func(x *tensor.Tensor) *tensor.Tensor {
		return apply(x, 0).Scale(scale).AddScaled(shift, x)
	}

	minus2 := state.Data()
	minus1 := normalized(minus2)
	result := minus2.Scale(complex(s.coeffs[0], 0)).AddScaled(complex(s.coeffs[1], 0), minus1)
	for _, c := range s.coeffs[2:] {
		term := normalized(minus1).Scale(2).Sub(minus2)
		result = result.AddScaled(complex(c, 0), term)
		minus2, minus1 = minus1, term
	}

	return grid.NewState(state.Grid(), result.Scale(complex(s.prefactor, 0))), nil
}
