package grid

import (
	"fmt"

	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// State binds coefficients in the weighted DVR to a grid.
//
// A state whose tensor has the shape of the grid is a wave function, one with
// the operator shape is a density operator. Any other shape can be built but
// is rejected by every consumer. States are immutable; all arithmetic returns
// new states.
type State struct {
	grid *Grid
	data *tensor.Tensor
}

// NewState wraps data without copying; callers must not modify it afterwards.
func NewState(g *Grid, data *tensor.Tensor) *State {
	if g == nil || data == nil {
		panic("grid: state needs a grid and data")
	}
	return &State{grid: g, data: data}
}

func (s *State) Grid() *Grid { return s.grid }

// Data returns the coefficient tensor. It must be treated as read-only.
func (s *State) Data() *tensor.Tensor { return s.data }

func (s *State) IsWaveFunction() bool {
	return s.data.HasShape(s.grid.shape)
}

func (s *State) IsDensityOperator() bool {
	return s.data.HasShape(s.grid.OperatorShape())
}

func (s *State) String() string {
	kind := "invalid state"
	switch {
	case s.IsWaveFunction():
		kind = "wave function"
	case s.IsDensityOperator():
		kind = "density operator"
	}
	return fmt.Sprintf("%s of shape %v", kind, s.data.Shape())
}

func (s *State) Add(o *State) (*State, error) {
	if err := s.checkCompatible(o); err != nil {
		return nil, err
	}
	return &State{grid: s.grid, data: s.data.Add(o.data)}, nil
}

func (s *State) Sub(o *State) (*State, error) {
	if err := s.checkCompatible(o); err != nil {
		return nil, err
	}
	return &State{grid: s.grid, data: s.data.Sub(o.data)}, nil
}

func (s *State) AddScalar(c complex128) *State {
	return &State{grid: s.grid, data: s.data.AddScalar(c)}
}

func (s *State) SubScalar(c complex128) *State {
	return &State{grid: s.grid, data: s.data.AddScalar(-c)}
}

// SubFrom returns c - s.
func (s *State) SubFrom(c complex128) *State {
	return &State{grid: s.grid, data: s.data.Scale(-1).AddScalar(c)}
}

func (s *State) Mul(c complex128) *State {
	return &State{grid: s.grid, data: s.data.Scale(c)}
}

// Div divides all coefficients by c and fails for c == 0.
func (s *State) Div(c complex128) (*State, error) {
	if c == 0 {
		return nil, qdyn.ErrDivideByZero
	}
	return &State{grid: s.grid, data: s.data.Scale(1 / c)}, nil
}

func (s *State) Neg() *State {
	return &State{grid: s.grid, data: s.data.Scale(-1)}
}

func (s *State) checkCompatible(o *State) error {
	if !s.grid.Equal(o.grid) {
		return fmt.Errorf("%w: states are defined on different grids", qdyn.ErrBadGrid)
	}
	switch {
	case s.IsWaveFunction() && o.IsWaveFunction():
		return nil
	case s.IsDensityOperator() && o.IsDensityOperator():
		return nil
	}
	return fmt.Errorf("%w: cannot combine %s with %s", qdyn.ErrBadState, s, o)
}
