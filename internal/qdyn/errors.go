package qdyn

import "errors"

// Error kinds reported by the propagation engine.
var (
	// ErrInvalidValue indicates an invalid construction argument, e.g. a
	// non-positive grid size, mass or time step, or malformed spectral bounds.
	ErrInvalidValue = errors.New("qdyn: invalid value")

	// ErrBadGrid indicates that two grid-bound objects were combined although
	// they are not defined on the same grid.
	ErrBadGrid = errors.New("qdyn: grid mismatch")

	// ErrBadState indicates a state of the wrong kind (wave function vs.
	// density operator), or a state that is neither.
	ErrBadState = errors.New("qdyn: bad state")

	// ErrUnsupported indicates a call that the receiver cannot serve, such as
	// a time-dependent operator passed to a polynomial solver.
	ErrUnsupported = errors.New("qdyn: unsupported call")

	// ErrExecution indicates a failure inside a numerical kernel.
	ErrExecution = errors.New("qdyn: execution failed")

	// ErrDivideByZero is returned when a state is divided by exactly zero.
	ErrDivideByZero = errors.New("qdyn: division by zero")

	// ErrStepTooSmall indicates the adaptive time step fell below its minimum.
	ErrStepTooSmall = errors.New("qdyn: adaptive timestep below minimum")
)
