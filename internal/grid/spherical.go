package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/special"
	"github.com/san-kum/wavesim/internal/tensor"
)

// SphericalHarmonicsDof is an expansion in spherical harmonics Y_lm with a
// fixed magnetic quantum number m and l = |m|..lmax.
//
// The DVR grid holds polar angles θ_i at φ = 0; the quadrature weights
// include the trivial integration over φ. The FBR grid holds the values of l.
type SphericalHarmonicsDof struct {
	points
	lmax, m int

	sqrtWeights []float64
	// fbrToWeighted[i][l] = sqrt(w_i) Y_l(θ_i)
	fbrToWeighted *mat.CDense
}

func NewSphericalHarmonicsDof(lmax, m int) (*SphericalHarmonicsDof, error) {
	am := m
	if am < 0 {
		am = -am
	}
	if lmax < am {
		return nil, fmt.Errorf("%w: maximum angular momentum %d below |m| = %d, grid would be empty",
			qdyn.ErrInvalidValue, lmax, am)
	}

	theta, weights, err := quadrature(lmax, am)
	if err != nil {
		return nil, err
	}

	n := lmax - am + 1
	fbr := make([]float64, n)
	for i := range fbr {
		fbr[i] = float64(am + i)
	}

	p, err := newPoints(theta, fbr)
	if err != nil {
		return nil, err
	}

	d := &SphericalHarmonicsDof{
		points:        p,
		lmax:          lmax,
		m:             m,
		sqrtWeights:   make([]float64, n),
		fbrToWeighted: mat.NewCDense(n, n, nil),
	}
	for i, w := range weights {
		d.sqrtWeights[i] = math.Sqrt(w)
	}

	for j := 0; j < n; j++ {
		ylm, err := special.SphericalHarmonic(am+j, m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", qdyn.ErrInvalidValue, err)
		}
		for i, v := range ylm(theta) {
			d.fbrToWeighted.Set(i, j, complex(d.sqrtWeights[i], 0)*v)
		}
	}
	return d, nil
}

func (d *SphericalHarmonicsDof) Lmax() int { return d.lmax }
func (d *SphericalHarmonicsDof) M() int    { return d.m }

// BasisMatrix returns a copy of the matrix whose columns are the basis
// functions in weighted DVR. It is orthogonal by construction.
func (d *SphericalHarmonicsDof) BasisMatrix() *mat.CDense {
	n := d.Size()
	c := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c.Set(i, j, d.fbrToWeighted.At(i, j))
		}
	}
	return c
}

// The basis functions are real at φ = 0, so the bra and ket transformations
// coincide.

func (d *SphericalHarmonicsDof) ToFbr(data *tensor.Tensor, axis int, _ bool) *tensor.Tensor {
	return data.Contract(d.fbrToWeighted, axis, true)
}

func (d *SphericalHarmonicsDof) FromFbr(data *tensor.Tensor, axis int, _ bool) *tensor.Tensor {
	return data.Contract(d.fbrToWeighted, axis, false)
}

func (d *SphericalHarmonicsDof) ToDvr(data *tensor.Tensor, axis int) *tensor.Tensor {
	return scaleAxis(data, axis, d.sqrtWeights, true)
}

func (d *SphericalHarmonicsDof) FromDvr(data *tensor.Tensor, axis int) *tensor.Tensor {
	return scaleAxis(data, axis, d.sqrtWeights, false)
}

func (d *SphericalHarmonicsDof) Equal(other Dof) bool {
	o, ok := other.(*SphericalHarmonicsDof)
	if !ok {
		return false
	}
	return o == d || (o.lmax == d.lmax && o.m == d.m)
}

// quadrature returns the Gaussian quadrature points θ_i and weights w_i for
// spherical harmonics of fixed m >= 0, such that
//
//	sum_i w_i Y_km(θ_i, 0) Y_lm(θ_i, 0) = δ_kl   for k, l <= lmax.
//
// With x = cos θ, the integrand reduces to Gegenbauer polynomials
// C_{l-m}^{m+1/2}(x) with weight function (1-x^2)^m. The eigenvalues of the
// tridiagonal matrix of x in the normalized polynomial basis are the grid
// points, and the squared first eigenvector components give the weights up to
// the weight function and a constant, both of which are fixed afterwards.
func quadrature(lmax, m int) ([]float64, []float64, error) {
	n := lmax - m + 1

	jacobi := mat.NewSymDense(n, nil)
	for i := 1; i < n; i++ {
		k, fm := float64(i), float64(m)
		off := math.Sqrt(k * (k + 2*fm) / (2*k + 2*fm - 1) / (2*k + 2*fm + 1))
		jacobi.SetSym(i-1, i, off)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(jacobi, true); !ok {
		return nil, nil, fmt.Errorf("%w: quadrature eigenproblem did not converge", qdyn.ErrExecution)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	theta := make([]float64, n)
	weights := make([]float64, n)
	for i, x := range values {
		theta[i] = math.Acos(math.Max(-1, math.Min(1, x)))
		v := vectors.At(0, i)
		weights[i] = v * v
	}

	// arccos reverses the order of the eigenvalues
	order := make([]int, n)
	floats.Argsort(theta, order)
	sorted := make([]float64, n)
	for i, j := range order {
		sorted[i] = weights[j]
	}
	weights = sorted

	ymm, err := special.SphericalHarmonic(m, m)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", qdyn.ErrInvalidValue, err)
	}
	y := ymm(theta)
	norm := 0.0
	for i, th := range theta {
		s := math.Sin(th)
		weights[i] /= math.Pow(s*s, float64(m))
		norm += weights[i] * real(y[i]) * real(y[i])
	}
	floats.Scale(1/norm, weights)

	return theta, weights, nil
}
