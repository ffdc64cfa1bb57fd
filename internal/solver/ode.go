package solver

import (
	"errors"
	"fmt"

	"github.com/san-kum/wavesim/internal/expression"
	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/integrators"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// Method names accepted by WithMethod.
const (
	MethodRK45 = "rk45"
	MethodRK4  = "rk4"
)

type OdeOption func(*odeOptions)

type odeOptions struct {
	method     string
	rtol, atol float64
	maxSteps   int
	substeps   int
}

// WithMethod selects the integrator, MethodRK45 (default) or MethodRK4.
func WithMethod(method string) OdeOption {
	return func(o *odeOptions) { o.method = method }
}

// WithRtol sets the relative tolerance of the adaptive integrator.
func WithRtol(rtol float64) OdeOption {
	return func(o *odeOptions) { o.rtol = rtol }
}

// WithAtol sets the absolute tolerance of the adaptive integrator.
func WithAtol(atol float64) OdeOption {
	return func(o *odeOptions) { o.atol = atol }
}

// WithMaxSteps bounds the number of internal steps per solver step.
func WithMaxSteps(n int) OdeOption {
	return func(o *odeOptions) { o.maxSteps = n }
}

// WithSubsteps sets the number of fixed substeps of the RK4 method.
func WithSubsteps(n int) OdeOption {
	return func(o *odeOptions) { o.substeps = n }
}

// OdeSolver hands the equation of motion to a general-purpose Runge-Kutta
// integrator. It is slower than the Chebychev solver, but also works for
// time-dependent expressions.
type OdeSolver struct {
	base
	expr       expression.Expression
	integrator integrators.Integrator
}

func NewOdeSolver(expr expression.Expression, dt float64, opts ...OdeOption) (*OdeSolver, error) {
	b, err := newBase(dt)
	if err != nil {
		return nil, err
	}

	o := odeOptions{
		method:   MethodRK45,
		rtol:     1e-6,
		atol:     1e-6,
		maxSteps: 100000,
		substeps: 10,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var integrator integrators.Integrator
	switch o.method {
	case MethodRK45:
		integrator, err = integrators.NewRK45(
			integrators.WithTolerances(o.rtol, o.atol),
			integrators.WithMaxSteps(o.maxSteps),
		)
		if err != nil {
			return nil, err
		}
	case MethodRK4:
		if o.substeps <= 0 {
			return nil, fmt.Errorf("%w: substeps must be positive, got %d", qdyn.ErrInvalidValue, o.substeps)
		}
		integrator = integrators.NewRK4(o.substeps)
	default:
		return nil, fmt.Errorf("%w: unknown integration method %q", qdyn.ErrInvalidValue, o.method)
	}

	return &OdeSolver{base: b, expr: expr, integrator: integrator}, nil
}

func (s *OdeSolver) Step(state *grid.State, t float64) (*grid.State, error) {
	g := state.Grid()
	shape := state.Data().Shape()

	sys := integrators.SystemFunc(func(y integrators.Vector, t float64) (integrators.Vector, error) {
		dx, err := s.expr.Apply(grid.NewState(g, tensor.New(shape, y)), t)
		if err != nil {
			return nil, err
		}
		return integrators.Vector(dx.Data().Data()), nil
	})

	y0 := integrators.Vector(state.Data().Clone().Data())
	y, err := s.integrator.Integrate(sys, y0, t, t+s.dt)
	if err != nil {
		if errors.Is(err, qdyn.ErrStepTooSmall) {
			return nil, fmt.Errorf("%w: %w", qdyn.ErrExecution, err)
		}
		return nil, err
	}
	return grid.NewState(g, tensor.New(shape, y)), nil
}
