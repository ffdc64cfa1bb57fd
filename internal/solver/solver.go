// Package solver advances wave functions and density operators in time.
//
// A Solver is constructed once for a fixed time step and maps a state at time
// t to the state at t + dt. Solvers hold no mutable state, so one instance can
// drive several independent propagations at once.
package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/qdyn"
)

type Solver interface {
	Dt() float64
	// Step returns the state at time t + Dt() given the state at time t.
	Step(s *grid.State, t float64) (*grid.State, error)
}

// StepFunc receives the states produced by Propagate. Returning an error stops
// the propagation.
type StepFunc func(t float64, s *grid.State) error

type base struct {
	dt float64
}

func newBase(dt float64) (base, error) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return base{}, fmt.Errorf("%w: time step must be positive, got %g", qdyn.ErrInvalidValue, dt)
	}
	return base{dt: dt}, nil
}

func (b base) Dt() float64 { return b.dt }

// Propagate performs numSteps steps starting from state0 at time t0 and hands
// every new state to fn. If includeFirst is set, fn first receives the
// initial state. The time passed to fn is t0 + k*dt, computed without
// accumulating rounding errors.
func Propagate(ctx context.Context, s Solver, state0 *grid.State, t0 float64, numSteps int, includeFirst bool, fn StepFunc) error {
	if numSteps < 0 {
		return fmt.Errorf("%w: negative number of steps %d", qdyn.ErrInvalidValue, numSteps)
	}

	if includeFirst {
		if err := fn(t0, state0); err != nil {
			return err
		}
	}

	state := state0
	for k := 0; k < numSteps; k++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		next, err := s.Step(state, t0+float64(k)*s.Dt())
		if err != nil {
			return err
		}
		state = next

		if err := fn(t0+float64(k+1)*s.Dt(), state); err != nil {
			return err
		}
	}
	return nil
}

// Final propagates for numSteps steps and returns the last state.
func Final(ctx context.Context, s Solver, state0 *grid.State, t0 float64, numSteps int) (*grid.State, error) {
	last := state0
	err := Propagate(ctx, s, state0, t0, numSteps, false, func(_ float64, st *grid.State) error {
		last = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}
