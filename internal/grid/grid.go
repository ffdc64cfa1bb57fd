package grid

import (
	"fmt"

	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// Grid is the direct product of one or more degrees of freedom.
//
// A wave function on the grid is a tensor of shape Shape(); a density
// operator is a tensor of shape OperatorShape(), whose first half of axes
// holds the ket indices and whose second half holds the bra indices.
type Grid struct {
	dofs  []Dof
	shape []int
}

func New(dofs ...Dof) (*Grid, error) {
	if len(dofs) == 0 {
		return nil, fmt.Errorf("%w: a grid needs at least one degree of freedom", qdyn.ErrInvalidValue)
	}

	g := &Grid{dofs: make([]Dof, len(dofs)), shape: make([]int, len(dofs))}
	for i, d := range dofs {
		if d == nil {
			return nil, fmt.Errorf("%w: degree of freedom %d is nil", qdyn.ErrInvalidValue, i)
		}
		g.dofs[i] = d
		g.shape[i] = d.Size()
	}
	return g, nil
}

func (g *Grid) Dofs() []Dof {
	c := make([]Dof, len(g.dofs))
	copy(c, g.dofs)
	return c
}

// Dof returns the degree of freedom at index i; negative indices count from
// the end.
func (g *Grid) Dof(i int) Dof {
	return g.dofs[g.mustNormalize(i)]
}

func (g *Grid) NumDofs() int { return len(g.dofs) }

// Shape is the tensor shape of a wave function.
func (g *Grid) Shape() []int {
	c := make([]int, len(g.shape))
	copy(c, g.shape)
	return c
}

// OperatorShape is the tensor shape of a density operator, Shape() twice.
func (g *Grid) OperatorShape() []int {
	return append(g.Shape(), g.shape...)
}

// Size is the total number of grid points.
func (g *Grid) Size() int {
	n := 1
	for _, d := range g.shape {
		n *= d
	}
	return n
}

// NormalizeIndex maps a DOF index in [-NumDofs, NumDofs) to [0, NumDofs).
//
// Density operators have twice as many axes as there are DOFs, so naive
// negative indexing on their tensors would address the wrong half.
func (g *Grid) NormalizeIndex(index int) (int, error) {
	n := len(g.dofs)
	if index < -n || index >= n {
		return 0, fmt.Errorf("%w: degree of freedom index %d out of range for %d dofs",
			qdyn.ErrInvalidValue, index, n)
	}
	if index < 0 {
		return index + n, nil
	}
	return index, nil
}

// Broadcast reshapes per-point data of one DOF into a tensor that can be
// multiplied elementwise onto a wave function.
func (g *Grid) Broadcast(data []complex128, dofIndex int) *tensor.Tensor {
	i := g.mustNormalize(dofIndex)
	g.mustFit(data, i)
	return tensor.Broadcast(data, len(g.dofs), i)
}

// OperatorBroadcast is like Broadcast for density operators; the data is
// placed on the ket or bra axis of the DOF.
func (g *Grid) OperatorBroadcast(data []complex128, dofIndex int, isKet bool) *tensor.Tensor {
	i := g.mustNormalize(dofIndex)
	g.mustFit(data, i)
	axis := i
	if !isKet {
		axis += len(g.dofs)
	}
	return tensor.Broadcast(data, 2*len(g.dofs), axis)
}

// Equal reports whether both grids consist of equal degrees of freedom in the
// same order.
func (g *Grid) Equal(o *Grid) bool {
	if g == o {
		return true
	}
	if g == nil || o == nil || len(g.dofs) != len(o.dofs) {
		return false
	}
	for i, d := range g.dofs {
		if !d.Equal(o.dofs[i]) {
			return false
		}
	}
	return true
}

func (g *Grid) mustNormalize(index int) int {
	i, err := g.NormalizeIndex(index)
	if err != nil {
		panic(err)
	}
	return i
}

func (g *Grid) mustFit(data []complex128, i int) {
	if len(data) != g.shape[i] {
		panic(fmt.Sprintf("grid: %d values for degree of freedom of size %d", len(data), g.shape[i]))
	}
}
