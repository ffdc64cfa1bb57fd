// Package qdyn holds the primitives shared by every layer of the wave packet
// propagation engine.
//
// The engine is organized leaves first:
//
//   - grid.Dof: one-dimensional basis/grid pair (plane waves, spherical harmonics)
//   - grid.Grid: direct product of degrees of freedom
//   - grid.State: wave function or density operator on a grid
//   - operator.Operator: Hamiltonian building blocks
//   - expression.Expression: right-hand side of dX/dt = f(X, t)
//   - solver.Solver: time steppers (Chebychev, relaxation, ODE)
//
// This package only defines the error kinds that these layers report.
// Callers match them with [errors.Is].
//
// # Thread Safety
//
// All grids, states, operators, expressions and solvers are immutable after
// construction and may be shared between goroutines. Independent propagations
// can run concurrently, see sim.Ensemble.
package qdyn
