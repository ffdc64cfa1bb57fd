package grid

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// DvrDensity returns the density of a state at the DVR grid points in
// row-major grid order.
//
// For density operators this is the matrix diagonal in the DVR. It should be
// real and non-negative; the absolute value is taken to hide rounding noise.
func DvrDensity(s *State) ([]float64, error) {
	n := s.grid.NumDofs()
	switch {
	case s.IsWaveFunction():
		data := s.data
		for i, d := range s.grid.dofs {
			data = d.ToDvr(data, i)
		}
		return absSquared(data), nil
	case s.IsDensityOperator():
		data := s.data
		for i, d := range s.grid.dofs {
			data = d.ToDvr(data, i)
			data = d.ToDvr(data, i+n)
		}
		return absDiagonal(data, s.grid.Size()), nil
	}
	return nil, fmt.Errorf("%w: input is not a valid state", qdyn.ErrBadState)
}

// FbrDensity returns the populations of the basis functions of every DOF, in
// row-major grid order.
func FbrDensity(s *State) ([]float64, error) {
	n := s.grid.NumDofs()
	switch {
	case s.IsWaveFunction():
		data := s.data
		for i, d := range s.grid.dofs {
			data = d.ToFbr(data, i, true)
		}
		return absSquared(data), nil
	case s.IsDensityOperator():
		data := s.data
		for i, d := range s.grid.dofs {
			data = d.ToFbr(data, i, true)
			data = d.ToFbr(data, i+n, false)
		}
		return absDiagonal(data, s.grid.Size()), nil
	}
	return nil, fmt.Errorf("%w: input is not a valid state", qdyn.ErrBadState)
}

// Trace returns the squared norm of a wave function, or the trace of a
// density operator.
func Trace(s *State) (float64, error) {
	switch {
	case s.IsWaveFunction():
		return s.data.SquaredNorm(), nil
	case s.IsDensityOperator():
		sum := 0.0
		for _, v := range absDiagonal(s.data, s.grid.Size()) {
			sum += v
		}
		return sum, nil
	}
	return 0, fmt.Errorf("%w: input is not a valid state", qdyn.ErrBadState)
}

// Normalize scales a wave function to unit norm, or a density operator to
// unit trace.
func Normalize(s *State) (*State, error) {
	tr, err := Trace(s)
	if err != nil {
		return nil, err
	}
	if tr == 0 {
		return nil, fmt.Errorf("%w: cannot normalize a state with zero trace", qdyn.ErrBadState)
	}
	if s.IsWaveFunction() {
		tr = math.Sqrt(tr)
	}
	return s.Div(complex(tr, 0))
}

// Population returns the population of the wave function target in s,
// |<target|psi>|^2 for a wave function or <target|rho|target> for a density
// operator, divided by the trace of target.
func Population(s, target *State) (float64, error) {
	if !target.IsWaveFunction() {
		return 0, fmt.Errorf("%w: population target must be a wave function", qdyn.ErrBadState)
	}
	if !s.grid.Equal(target.grid) {
		return 0, fmt.Errorf("%w: state and target are defined on different grids", qdyn.ErrBadGrid)
	}
	norm := target.data.SquaredNorm()
	if norm == 0 {
		return 0, fmt.Errorf("%w: population target has norm zero", qdyn.ErrBadState)
	}

	switch {
	case s.IsWaveFunction():
		overlap := tensor.Dot(target.data, s.data)
		return (real(overlap)*real(overlap) + imag(overlap)*imag(overlap)) / norm, nil
	case s.IsDensityOperator():
		t := target.data.Data()
		rho := s.data.Data()
		n := len(t)
		var sum complex128
		for i, ti := range t {
			row := rho[i*n : (i+1)*n]
			var inner complex128
			for j, tj := range t {
				inner += row[j] * tj
			}
			sum += cmplx.Conj(ti) * inner
		}
		return real(sum) / norm, nil
	}
	return 0, fmt.Errorf("%w: input is not a valid state", qdyn.ErrBadState)
}

// Orthonormalize performs a classical Gram-Schmidt orthogonalization on
// linearly independent wave functions and normalizes the result.
//
// The procedure is not numerically robust; use it only for small,
// well-conditioned sets of states.
func Orthonormalize(states []*State) ([]*State, error) {
	if len(states) == 0 {
		return nil, nil
	}

	g := states[0].grid
	for _, s := range states {
		if !s.IsWaveFunction() {
			return nil, fmt.Errorf("%w: orthonormalization needs wave functions", qdyn.ErrBadState)
		}
		if !s.grid.Equal(g) {
			return nil, fmt.Errorf("%w: cannot orthonormalize states on different grids", qdyn.ErrBadGrid)
		}
		if s.data.SquaredNorm() == 0 {
			return nil, fmt.Errorf("%w: cannot orthonormalize a state with norm zero", qdyn.ErrBadState)
		}
	}

	basis := make([]*tensor.Tensor, 0, len(states))
	for _, s := range states {
		a := s.data
		for _, b := range basis {
			a = normalized(a)
			a = a.AddScaled(-tensor.Dot(b, a), b)
		}
		basis = append(basis, normalized(a))
	}

	out := make([]*State, len(basis))
	for i, b := range basis {
		out[i] = &State{grid: g, data: b}
	}
	return out, nil
}

func normalized(t *tensor.Tensor) *tensor.Tensor {
	return t.Scale(complex(1/math.Sqrt(t.SquaredNorm()), 0))
}

func absSquared(t *tensor.Tensor) []float64 {
	out := make([]float64, t.Len())
	for i, v := range t.Data() {
		out[i] = real(v)*real(v) + imag(v)*imag(v)
	}
	return out
}

func absDiagonal(t *tensor.Tensor, n int) []float64 {
	diag := t.Diagonal(n)
	out := make([]float64, n)
	for i, v := range diag {
		out[i] = cmplx.Abs(v)
	}
	return out
}
