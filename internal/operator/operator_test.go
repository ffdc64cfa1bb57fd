package operator

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/special"
	"github.com/san-kum/wavesim/internal/tensor"
)

func planeWaveGrid(t *testing.T, xmin, xmax float64, n int) *grid.Grid {
	t.Helper()
	d, err := grid.NewPlaneWaveDof(xmin, xmax, n)
	require.NoError(t, err)
	g, err := grid.New(d)
	require.NoError(t, err)
	return g
}

func sphereGrid(t *testing.T, lmax, m int) *grid.Grid {
	t.Helper()
	d, err := grid.NewSphericalHarmonicsDof(lmax, m)
	require.NoError(t, err)
	g, err := grid.New(d)
	require.NoError(t, err)
	return g
}

func grid2D(t *testing.T) *grid.Grid {
	t.Helper()
	a, err := grid.NewPlaneWaveDof(1, 10, 6)
	require.NoError(t, err)
	b, err := grid.NewPlaneWaveDof(10, 17, 3)
	require.NoError(t, err)
	g, err := grid.New(a, b)
	require.NoError(t, err)
	return g
}

func randomWave(t *testing.T, g *grid.Grid, rng *rand.Rand) *grid.State {
	t.Helper()
	re, err := grid.RandomWaveFunction(g, rng, 1)
	require.NoError(t, err)
	im, err := grid.RandomWaveFunction(g, rng, 1)
	require.NoError(t, err)
	psi, err := re.Add(im.Mul(1i))
	require.NoError(t, err)
	return psi
}

func randomDensity(t *testing.T, g *grid.Grid, rng *rand.Rand) *grid.State {
	t.Helper()
	rho, err := grid.DirectProduct(randomWave(t, g, rng), randomWave(t, g, rng))
	require.NoError(t, err)
	return rho
}

// adjoint returns the conjugate transpose of a density operator tensor.
func adjoint(rho *tensor.Tensor, n int) *tensor.Tensor {
	out := make([]complex128, n*n)
	d := rho.Data()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[j*n+i] = cmplx.Conj(d[i*n+j])
		}
	}
	return tensor.New(rho.Shape(), out)
}

func quadratic(k []float64) []complex128 {
	out := make([]complex128, len(k))
	for i, v := range k {
		out[i] = complex(v*v+0.5*v, 0)
	}
	return out
}

func linear(x []float64) []complex128 {
	out := make([]complex128, len(x))
	for i, v := range x {
		out[i] = complex(v, 0)
	}
	return out
}

func TestPlaneWaveFbrScalesPlaneWaves(t *testing.T) {
	g := planeWaveGrid(t, -2, 3, 8)
	d := g.Dof(0)

	pw, err := NewPlaneWaveFbr(g, 0, quadratic)
	require.NoError(t, err)
	fbr, err := NewFbrOperator1D(g, 0, quadratic)
	require.NoError(t, err)

	for _, k := range d.FbrPoints() {
		psi := d.FromDvr(tensor.New([]int{8}, special.PlaneWave(k)(d.DvrPoints())), 0)
		want := psi.Scale(complex(k*k+0.5*k, 0))

		assert.Less(t, pw.ApplyToWaveFunction(psi, 0).MaxAbsDiff(want), 1e-12, "k=%g", k)
		assert.Less(t, fbr.ApplyToWaveFunction(psi, 0).MaxAbsDiff(want), 1e-12, "k=%g", k)
	}
}

func TestFbrOperatorsAgreeOnDensityOperators(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := grid2D(t)
	rho := randomDensity(t, g, rng).Data()

	for dof := 0; dof < 2; dof++ {
		pw, err := NewPlaneWaveFbr(g, dof, quadratic)
		require.NoError(t, err)
		fbr, err := NewFbrOperator1D(g, dof, quadratic)
		require.NoError(t, err)

		assert.Less(t, pw.ApplyFromLeft(rho, 0).MaxAbsDiff(fbr.ApplyFromLeft(rho, 0)), 1e-12)
		assert.Less(t, pw.ApplyFromRight(rho, 0).MaxAbsDiff(fbr.ApplyFromRight(rho, 0)), 1e-12)
	}
}

func TestRightApplicationIsAdjointOfLeft(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	g := planeWaveGrid(t, 0, 4, 7)
	n := g.Size()
	rho := randomDensity(t, g, rng).Data()

	kinetic, err := CartesianKineticEnergy(g, 0, 2)
	require.NoError(t, err)
	fbr, err := NewFbrOperator1D(g, 0, quadratic)
	require.NoError(t, err)
	pot, err := NewPotential1D(g, 0, linear)
	require.NoError(t, err)
	proj, err := NewProjection(randomWave(t, g, rng), randomWave(t, g, rng))
	require.NoError(t, err)

	// for Hermitian H, rho H = (H rho^†)^†
	for _, op := range []Operator{kinetic, fbr, pot, proj} {
		want := adjoint(op.ApplyFromLeft(adjoint(rho, n), 0), n)
		assert.Less(t, op.ApplyFromRight(rho, 0).MaxAbsDiff(want), 1e-12, "%T", op)
	}
}

func TestLeftApplicationMatchesWaveFunction(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	g := grid2D(t)
	ket, bra := randomWave(t, g, rng), randomWave(t, g, rng)
	rho, err := grid.DirectProduct(ket, bra)
	require.NoError(t, err)

	kinetic, err := CartesianKineticEnergy(g, -1, 0.5)
	require.NoError(t, err)
	pot, err := NewPotential1D(g, 0, linear)
	require.NoError(t, err)
	proj, err := NewProjection(randomWave(t, g, rng))
	require.NoError(t, err)

	for _, op := range []Operator{kinetic, pot, proj} {
		applied := grid.NewState(g, op.ApplyToWaveFunction(ket.Data(), 0))
		want, err := grid.DirectProduct(applied, bra)
		require.NoError(t, err)
		assert.Less(t, op.ApplyFromLeft(rho.Data(), 0).MaxAbsDiff(want.Data()), 1e-12, "%T", op)
	}
}

func TestRotationalKineticEnergy(t *testing.T) {
	g := sphereGrid(t, 6, 2)
	d := g.Dof(0).(*grid.SphericalHarmonicsDof)
	basis := d.BasisMatrix()

	op, err := RotationalKineticEnergy(g, 0, 0.25)
	require.NoError(t, err)

	for j, l := range d.FbrPoints() {
		column := make([]complex128, d.Size())
		for i := range column {
			column[i] = basis.At(i, j)
		}
		ylm := tensor.New([]int{d.Size()}, column)
		want := ylm.Scale(complex(l*(l+1)/0.5, 0))
		assert.Less(t, op.ApplyToWaveFunction(ylm, 0).MaxAbsDiff(want), 1e-10, "l=%g", l)
	}
}

func TestConstructorErrors(t *testing.T) {
	pw := planeWaveGrid(t, 0, 1, 4)
	sph := sphereGrid(t, 3, 0)

	_, err := CartesianKineticEnergy(pw, 0, 0)
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)
	_, err = CartesianKineticEnergy(sph, 0, 1)
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)
	_, err = RotationalKineticEnergy(sph, 0, -1)
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)
	_, err = RotationalKineticEnergy(pw, 0, 1)
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)
	_, err = NewPotential1D(pw, 1, linear)
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)
	_, err = NewFbrOperator1D(pw, 0, quadratic, WithCutoff(-1))
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)
	_, err = NewPotential1D(pw, 0, func(x []float64) []complex128 { return nil })
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)
	_, err = NewProjection()
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)
	_, err = NewProjection(grid.ZeroWaveFunction(pw))
	assert.ErrorIs(t, err, qdyn.ErrBadState)
	_, err = NewProjection(grid.UnitDensity(pw))
	assert.ErrorIs(t, err, qdyn.ErrBadState)
}

func TestCutoff(t *testing.T) {
	g := planeWaveGrid(t, -5, 5, 10)

	pot, err := NewPotential1D(g, 0, func(x []float64) []complex128 {
		out := make([]complex128, len(x))
		for i, v := range x {
			out[i] = complex(v, -1)
		}
		return out
	}, WithCutoff(2))
	require.NoError(t, err)

	ones := tensor.Full(1, 10)
	for i, x := range g.Dof(0).DvrPoints() {
		v := pot.ApplyToWaveFunction(ones, 0).At(i)
		assert.Equal(t, math.Min(x, 2), real(v))
		assert.Equal(t, -1.0, imag(v))
	}

	clipped, err := CartesianKineticEnergy(g, 0, 1, WithCutoff(0.5))
	require.NoError(t, err)
	d := g.Dof(0)
	for _, k := range d.FbrPoints() {
		psi := d.FromDvr(tensor.New([]int{10}, special.PlaneWave(k)(d.DvrPoints())), 0)
		want := psi.Scale(complex(math.Min(k*k/2, 0.5), 0))
		assert.Less(t, clipped.ApplyToWaveFunction(psi, 0).MaxAbsDiff(want), 1e-12)
	}
}

func TestProjection(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	g := grid2D(t)
	a, b := randomWave(t, g, rng), randomWave(t, g, rng)

	p, err := NewProjection(a, b)
	require.NoError(t, err)

	// basis states are kept, projection is idempotent
	for _, s := range []*grid.State{a, b} {
		assert.Less(t, p.ApplyToWaveFunction(s.Data(), 0).MaxAbsDiff(s.Data()), 1e-12)
	}
	psi := randomWave(t, g, rng).Data()
	once := p.ApplyToWaveFunction(psi, 0)
	assert.Less(t, p.ApplyToWaveFunction(once, 0).MaxAbsDiff(once), 1e-12)

	rho, err := grid.PureDensity(a)
	require.NoError(t, err)
	both := p.ApplyFromRight(p.ApplyFromLeft(rho.Data(), 0), 0)
	assert.Less(t, both.MaxAbsDiff(rho.Data()), 1e-12)
}

func TestTimeDependentOperators(t *testing.T) {
	g := planeWaveGrid(t, 0, 1, 3)
	ones := tensor.Full(1, 3)
	rho := tensor.Full(1, 3, 3)

	td, err := NewTimeDependent(g, func(t float64) complex128 { return complex(t, 2*t) })
	require.NoError(t, err)
	assert.True(t, td.TimeDependent())
	assert.Equal(t, complex(2, 4), td.ApplyToWaveFunction(ones, 2).At(0))
	assert.Equal(t, complex(2, 4), td.ApplyFromLeft(rho, 2).At(1, 2))
	assert.Equal(t, complex(2, -4), td.ApplyFromRight(rho, 2).At(1, 2))

	shape, err := special.SinSquare(0, 10)
	require.NoError(t, err)
	laser, err := LaserField(g, 3, shape, 2, 0.5)
	require.NoError(t, err)
	want := 3 * shape(1) * math.Cos(2+0.5)
	assert.InDelta(t, want, real(laser.ApplyToWaveFunction(ones, 1).At(2)), 1e-15)

	c, err := NewConstant(g, 2-1i)
	require.NoError(t, err)
	assert.False(t, c.TimeDependent())
	assert.Equal(t, 2-1i, c.ApplyFromRight(rho, 0).At(0, 0))
}

func TestSumAndProduct(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	g := planeWaveGrid(t, -3, 3, 8)
	psi := randomWave(t, g, rng).Data()
	rho := randomDensity(t, g, rng).Data()

	kinetic, err := CartesianKineticEnergy(g, 0, 1)
	require.NoError(t, err)
	pot, err := NewPotential1D(g, 0, linear)
	require.NoError(t, err)
	td, err := NewTimeDependent(g, func(t float64) complex128 { return complex(0, t) })
	require.NoError(t, err)

	sum, err := NewSum(kinetic, pot)
	require.NoError(t, err)
	assert.False(t, sum.TimeDependent())
	want := kinetic.ApplyToWaveFunction(psi, 0).Add(pot.ApplyToWaveFunction(psi, 0))
	assert.Less(t, sum.ApplyToWaveFunction(psi, 0).MaxAbsDiff(want), 1e-12)

	prod, err := NewProduct(pot, kinetic, td)
	require.NoError(t, err)
	assert.True(t, prod.TimeDependent())

	want = pot.ApplyToWaveFunction(kinetic.ApplyToWaveFunction(td.ApplyToWaveFunction(psi, 1), 1), 1)
	assert.Less(t, prod.ApplyToWaveFunction(psi, 1).MaxAbsDiff(want), 1e-12)

	want = pot.ApplyFromLeft(kinetic.ApplyFromLeft(td.ApplyFromLeft(rho, 1), 1), 1)
	assert.Less(t, prod.ApplyFromLeft(rho, 1).MaxAbsDiff(want), 1e-12)

	want = td.ApplyFromRight(kinetic.ApplyFromRight(pot.ApplyFromRight(rho, 1), 1), 1)
	assert.Less(t, prod.ApplyFromRight(rho, 1).MaxAbsDiff(want), 1e-12)

	neg, err := Negate(pot)
	require.NoError(t, err)
	assert.Less(t, neg.ApplyToWaveFunction(psi, 0).MaxAbsDiff(pot.ApplyToWaveFunction(psi, 0).Scale(-1)), 1e-15)

	shifted, err := AddConstant(pot, 2)
	require.NoError(t, err)
	want = pot.ApplyToWaveFunction(psi, 0).AddScaled(2, psi)
	assert.Less(t, shifted.ApplyToWaveFunction(psi, 0).MaxAbsDiff(want), 1e-12)

	_, err = NewSum()
	assert.ErrorIs(t, err, qdyn.ErrInvalidValue)
	other, err := NewPotential1D(planeWaveGrid(t, -3, 3, 9), 0, linear)
	require.NoError(t, err)
	_, err = NewSum(pot, other)
	assert.ErrorIs(t, err, qdyn.ErrBadGrid)
	_, err = NewProduct(other, pot)
	assert.ErrorIs(t, err, qdyn.ErrBadGrid)
}

func TestApply(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := grid2D(t)
	pot, err := NewPotential1D(g, 1, linear)
	require.NoError(t, err)

	psi := randomWave(t, g, rng)
	applied, err := Apply(pot, psi, 0)
	require.NoError(t, err)
	assert.True(t, applied.IsWaveFunction())

	rho := randomDensity(t, g, rng)
	applied, err = Apply(pot, rho, 0)
	require.NoError(t, err)
	assert.Less(t, applied.Data().MaxAbsDiff(pot.ApplyFromLeft(rho.Data(), 0)), 1e-15)

	_, err = Apply(pot, grid.ZeroWaveFunction(planeWaveGrid(t, 1, 10, 6)), 0)
	assert.ErrorIs(t, err, qdyn.ErrBadGrid)
	_, err = Apply(pot, grid.NewState(g, tensor.Zeros(18)), 0)
	assert.ErrorIs(t, err, qdyn.ErrBadState)
}

func TestExpectationValue(t *testing.T) {
	g := planeWaveGrid(t, -10, 10, 128)
	gauss, err := special.Gaussian(1.5, 0, 1)
	require.NoError(t, err)
	psi, err := grid.ProductWaveFunction(g, []grid.Generator{gauss}, true)
	require.NoError(t, err)

	pot, err := NewPotential1D(g, 0, linear)
	require.NoError(t, err)
	x, err := ExpectationValue(pot, psi)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, real(x), 1e-10)
	assert.InDelta(t, 0, imag(x), 1e-12)

	rho, err := grid.PureDensity(psi)
	require.NoError(t, err)
	xrho, err := ExpectationValue(pot, rho)
	require.NoError(t, err)
	assert.InDelta(t, real(x), real(xrho), 1e-12)

	td, err := NewTimeDependent(g, func(t float64) complex128 { return complex(t, 0) })
	require.NoError(t, err)
	_, err = ExpectationValue(td, psi)
	assert.ErrorIs(t, err, qdyn.ErrUnsupported)
	v, err := ExpectationValue(td, psi, 3)
	require.NoError(t, err)
	assert.InDelta(t, 3, real(v), 1e-12)
}
