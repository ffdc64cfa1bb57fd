package grid

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// ProductWaveFunction builds psi(x_1, ..., x_n) = f_1(x_1) ... f_n(x_n) from
// one generator per DOF. The generators return plain function values at the
// DVR points. If normalize is set and the norm is non-zero, the result is
// normalized.
func ProductWaveFunction(g *Grid, generators []Generator, normalize bool) (*State, error) {
	if len(generators) != g.NumDofs() {
		return nil, fmt.Errorf("%w: %d generators for %d degrees of freedom",
			qdyn.ErrInvalidValue, len(generators), g.NumDofs())
	}

	data := tensor.Full(1, g.shape...)
	for i, gen := range generators {
		d := g.dofs[i]
		values := gen(d.DvrPoints())
		if len(values) != d.Size() {
			return nil, fmt.Errorf("%w: generator %d returned %d values for %d grid points",
				qdyn.ErrInvalidValue, i, len(values), d.Size())
		}
		weighted := d.FromDvr(tensor.New([]int{d.Size()}, values), 0)
		data = data.Mul(g.Broadcast(weighted.Data(), i))
	}

	s := &State{grid: g, data: data}
	norm := math.Sqrt(data.SquaredNorm())
	if normalize && norm > 0 {
		return s.Div(complex(norm, 0))
	}
	return s, nil
}

// RandomWaveFunction returns a wave function whose DVR values are real and
// uniformly distributed in [-maxValue, maxValue).
func RandomWaveFunction(g *Grid, rng *rand.Rand, maxValue float64) (*State, error) {
	if maxValue <= 0 {
		return nil, fmt.Errorf("%w: maximum value must be positive, got %g", qdyn.ErrInvalidValue, maxValue)
	}

	values := make([]float64, g.Size())
	for i := range values {
		values[i] = 2 * maxValue * (rng.Float64() - 0.5)
	}
	data := tensor.FromReal(g.shape, values)
	for i, d := range g.dofs {
		data = d.FromDvr(data, i)
	}
	return &State{grid: g, data: data}, nil
}

func ZeroWaveFunction(g *Grid) *State {
	return &State{grid: g, data: tensor.Zeros(g.shape...)}
}

// UnitDensity returns the identity operator as a density operator. Its trace
// is the number of grid points.
func UnitDensity(g *Grid) *State {
	n := g.Size()
	return &State{grid: g, data: tensor.Identity(n).Reshape(g.OperatorShape()...)}
}

// DirectProduct returns the density operator |ket><bra|.
func DirectProduct(ket, bra *State) (*State, error) {
	if !ket.IsWaveFunction() || !bra.IsWaveFunction() {
		return nil, fmt.Errorf("%w: density operators are built from wave functions", qdyn.ErrBadState)
	}
	if !ket.grid.Equal(bra.grid) {
		return nil, fmt.Errorf("%w: bra and ket are defined on different grids", qdyn.ErrBadGrid)
	}
	return &State{grid: ket.grid, data: tensor.Outer(ket.data, bra.data.Conj())}, nil
}

// PureDensity returns |psi><psi|.
func PureDensity(psi *State) (*State, error) {
	return DirectProduct(psi, psi)
}
