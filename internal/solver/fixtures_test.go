package solver_test

import (
	"math"
	"math/cmplx"
	"math/rand"

	. "github.com/onsi/gomega"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/operator"
	"github.com/san-kum/wavesim/internal/tensor"
)

func grid1D() *grid.Grid {
	dof, err := grid.NewPlaneWaveDof(1, 10, 6)
	Expect(err).NotTo(HaveOccurred())
	g, err := grid.New(dof)
	Expect(err).NotTo(HaveOccurred())
	return g
}

func identity(x []float64) []complex128 {
	out := make([]complex128, len(x))
	for i, v := range x {
		out[i] = complex(v, 0)
	}
	return out
}

func linearPotential(g *grid.Grid) *operator.Potential1D {
	pot, err := operator.NewPotential1D(g, 0, identity)
	Expect(err).NotTo(HaveOccurred())
	return pot
}

// potentialSpectrum pads the range of the grid points by ten percent.
func potentialSpectrum(g *grid.Grid) (float64, float64) {
	points := g.Dof(0).DvrPoints()
	lo, hi := points[0], points[len(points)-1]
	return lo - 0.1*math.Abs(lo), hi + 0.1*math.Abs(hi)
}

func randomState(g *grid.Grid, seed int64) *grid.State {
	psi, err := grid.RandomWaveFunction(g, rand.New(rand.NewSource(seed)), 1)
	Expect(err).NotTo(HaveOccurred())
	return psi
}

// evolved multiplies every grid point of psi0 by f(x).
func evolved(psi0 *grid.State, f func(x float64) complex128) *grid.State {
	points := psi0.Grid().Dof(0).DvrPoints()
	data := psi0.Data().Clone().Data()
	for i, x := range points {
		data[i] *= f(x)
	}
	return grid.NewState(psi0.Grid(), tensor.New(psi0.Data().Shape(), data))
}

func phase(t float64) func(x float64) complex128 {
	return func(x float64) complex128 { return cmplx.Exp(complex(0, -x*t)) }
}

func damping(t float64) func(x float64) complex128 {
	return func(x float64) complex128 { return complex(math.Exp(-x*t), 0) }
}

func distance(a, b *grid.State) float64 {
	return a.Data().MaxAbsDiff(b.Data())
}
