// Package expression turns operators into the right-hand side f(X, t) of the
// equations of motion dX/dt = f(X, t) that the solvers integrate.
package expression

import (
	"fmt"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/operator"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

type Expression interface {
	Grid() *grid.Grid
	TimeDependent() bool
	// Apply returns the time derivative of the state at time t.
	Apply(s *grid.State, t float64) (*grid.State, error)
}

// SchroedingerEquation is dpsi/dt = -i H psi.
type SchroedingerEquation struct {
	hamiltonian operator.Operator
}

func NewSchroedingerEquation(hamiltonian operator.Operator) *SchroedingerEquation {
	return &SchroedingerEquation{hamiltonian: hamiltonian}
}

func (e *SchroedingerEquation) Grid() *grid.Grid    { return e.hamiltonian.Grid() }
func (e *SchroedingerEquation) TimeDependent() bool { return e.hamiltonian.TimeDependent() }

func (e *SchroedingerEquation) Apply(psi *grid.State, t float64) (*grid.State, error) {
	if err := checkGrid(e.hamiltonian, psi); err != nil {
		return nil, err
	}
	if !psi.IsWaveFunction() {
		return nil, fmt.Errorf("%w: Schroedinger equation requires a wave function", qdyn.ErrBadState)
	}
	return grid.NewState(psi.Grid(), e.hamiltonian.ApplyToWaveFunction(psi.Data(), t).Scale(-1i)), nil
}

// CommutatorLiouvillian is the Liouville-von Neumann equation of a closed
// system, drho/dt = -i [H, rho].
type CommutatorLiouvillian struct {
	op operator.Operator
}

func NewCommutatorLiouvillian(op operator.Operator) *CommutatorLiouvillian {
	return &CommutatorLiouvillian{op: op}
}

func (e *CommutatorLiouvillian) Grid() *grid.Grid    { return e.op.Grid() }
func (e *CommutatorLiouvillian) TimeDependent() bool { return e.op.TimeDependent() }

func (e *CommutatorLiouvillian) Apply(rho *grid.State, t float64) (*grid.State, error) {
	if err := checkDensity(e.op, rho); err != nil {
		return nil, err
	}
	left := e.op.ApplyFromLeft(rho.Data(), t)
	right := e.op.ApplyFromRight(rho.Data(), t)
	return grid.NewState(rho.Grid(), left.Sub(right).Scale(-1i)), nil
}

// Side selects from which side a OneSidedLiouvillian applies its operator.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// OneSidedLiouvillian applies an operator to a density operator from one
// side only, drho/dt = L rho or drho/dt = rho L. Neither -i nor a
// commutator is involved; it is a building block for open-system terms.
type OneSidedLiouvillian struct {
	op   operator.Operator
	side Side
}

func NewOneSidedLiouvillian(op operator.Operator, side Side) *OneSidedLiouvillian {
	return &OneSidedLiouvillian{op: op, side: side}
}

func (e *OneSidedLiouvillian) Grid() *grid.Grid    { return e.op.Grid() }
func (e *OneSidedLiouvillian) TimeDependent() bool { return e.op.TimeDependent() }
func (e *OneSidedLiouvillian) Side() Side          { return e.side }

func (e *OneSidedLiouvillian) Apply(rho *grid.State, t float64) (*grid.State, error) {
	if err := checkDensity(e.op, rho); err != nil {
		return nil, err
	}

	var out *tensor.Tensor
	if e.side == Right {
		out = e.op.ApplyFromRight(rho.Data(), t)
	} else {
		out = e.op.ApplyFromLeft(rho.Data(), t)
	}
	return grid.NewState(rho.Grid(), out), nil
}

// Sum adds the right-hand sides of several expressions.
type Sum struct {
	exprs         []Expression
	timeDependent bool
}

func NewSum(exprs ...Expression) (*Sum, error) {
	if len(exprs) == 0 {
		return nil, fmt.Errorf("%w: need at least one expression", qdyn.ErrInvalidValue)
	}

	s := &Sum{exprs: append([]Expression(nil), exprs...)}
	for _, e := range exprs {
		if !e.Grid().Equal(exprs[0].Grid()) {
			return nil, fmt.Errorf("%w: all expressions must be defined on the same grid", qdyn.ErrBadGrid)
		}
		s.timeDependent = s.timeDependent || e.TimeDependent()
	}
	return s, nil
}

func (s *Sum) Grid() *grid.Grid    { return s.exprs[0].Grid() }
func (s *Sum) TimeDependent() bool { return s.timeDependent }

func (s *Sum) Apply(state *grid.State, t float64) (*grid.State, error) {
	out, err := s.exprs[0].Apply(state, t)
	if err != nil {
		return nil, err
	}
	for _, e := range s.exprs[1:] {
		term, err := e.Apply(state, t)
		if err != nil {
			return nil, err
		}
		if out, err = out.Add(term); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func checkGrid(op operator.Operator, s *grid.State) error {
	if !op.Grid().Equal(s.Grid()) {
		return fmt.Errorf("%w: input state is defined on the wrong grid", qdyn.ErrBadGrid)
	}
	return nil
}

func checkDensity(op operator.Operator, rho *grid.State) error {
	if err := checkGrid(op, rho); err != nil {
		return err
	}
	if !rho.IsDensityOperator() {
		return fmt.Errorf("%w: Liouvillian requires a density operator", qdyn.ErrBadState)
	}
	return nil
}
