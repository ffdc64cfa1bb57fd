package solver

import (
	"cmp"
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/operator"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

type Eigenpair struct {
	Value float64
	State *grid.State
}

// Diagonalize returns the eigenvalues and normalized eigenstates of a
// Hermitian operator in ascending order. Time-dependent operators must be
// given the time at which they are evaluated.
//
// The complex Hermitian matrix H = A + iB is diagonalized through the real
// symmetric matrix [[A, -B], [B, A]], which has every eigenvalue of H twice.
// (u, v) and (-v, u) both map onto the same eigenvector u + iv of H, so each
// cluster of equal eigenvalues is reduced to half its size by Gram-Schmidt.
func Diagonalize(op operator.Operator, at ...float64) ([]Eigenpair, error) {
	var t float64
	switch {
	case len(at) > 1:
		return nil, fmt.Errorf("%w: expected at most one time, got %d", qdyn.ErrInvalidValue, len(at))
	case len(at) == 1:
		t = at[0]
	case op.TimeDependent():
		return nil, fmt.Errorf("%w: time-dependent operator needs a time for diagonalization", qdyn.ErrUnsupported)
	}

	g := op.Grid()
	n := g.Size()
	h := op.ApplyFromLeft(grid.UnitDensity(g).Data(), t).Data()

	sym := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			hij := (h[i*n+j] + cmplx.Conj(h[j*n+i])) / 2
			if j >= i {
				sym.SetSym(i, j, real(hij))
				sym.SetSym(n+i, n+j, real(hij))
			}
			sym.SetSym(n+i, j, imag(hij))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition did not converge", qdyn.ErrExecution)
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	candidate := func(k int) []complex128 {
		z := make([]complex128, n)
		for i := range z {
			z[i] = complex(vecs.At(i, k), vecs.At(n+i, k))
		}
		return z
	}

	scale := math.Max(1, math.Max(math.Abs(values[0]), math.Abs(values[len(values)-1])))
	tol := 1e-10 * scale

	pairs := make([]Eigenpair, 0, n)
	for start := 0; start < len(values); {
		end := start + 1
		for end < len(values) && values[end]-values[end-1] < tol {
			end++
		}

		cluster := make([][]complex128, 0, end-start)
		for k := start; k < end; k++ {
			cluster = append(cluster, candidate(k))
		}
		for _, k := range pivotedGramSchmidt(cluster, (end-start)/2) {
			pairs = append(pairs, Eigenpair{
				Value: values[start+k.index],
				State: grid.NewState(g, tensor.New(g.Shape(), k.vector)),
			})
		}
		start = end
	}

	if len(pairs) != n {
		return nil, fmt.Errorf("%w: found %d of %d eigenvectors", qdyn.ErrExecution, len(pairs), n)
	}
	slices.SortStableFunc(pairs, func(a, b Eigenpair) int { return cmp.Compare(a.Value, b.Value) })
	return pairs, nil
}

type basisVector struct {
	index  int
	vector []complex128
}

// pivotedGramSchmidt picks up to count orthonormal vectors from the span of
// the candidates, always taking the candidate with the largest component
// orthogonal to the vectors chosen so far.
func pivotedGramSchmidt(candidates [][]complex128, count int) []basisVector {
	var basis []basisVector
	used := make([]bool, len(candidates))

	for len(basis) < count {
		best, bestNorm := -1, 0.0
		var bestResidual []complex128
		for k, c := range candidates {
			if used[k] {
				continue
			}
			r := append([]complex128(nil), c...)
			for _, b := range basis {
				p := dot(b.vector, r)
				for i := range r {
					r[i] -= p * b.vector[i]
				}
			}
			if norm := math.Sqrt(real(dot(r, r))); norm > bestNorm {
				best, bestNorm, bestResidual = k, norm, r
			}
		}
		if best < 0 || bestNorm < 1e-6 {
			break
		}

		used[best] = true
		for i := range bestResidual {
			bestResidual[i] /= complex(bestNorm, 0)
		}
		basis = append(basis, basisVector{index: best, vector: bestResidual})
	}
	return basis
}

func dot(a, b []complex128) complex128 {
	var sum complex128
	for i, v := range a {
		sum += cmplx.Conj(v) * b[i]
	}
	return sum
}
