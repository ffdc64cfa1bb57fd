// Package grid defines the discretization of wave functions and density
// operators: one-dimensional degrees of freedom (DOFs), their direct product
// grid, and the immutable State that binds coefficients to a grid.
//
// Every DOF connects three representations of data along one axis:
//
//   - DVR: plain function values at the grid points
//   - weighted DVR: DVR values multiplied by the square root of the
//     quadrature weights; this is the representation every State uses
//   - FBR: expansion coefficients in the DOF's underlying basis
//
// Transforming with the weighted DVR makes plain sums over coefficients equal
// to the correct inner products, so states can be added, scaled and
// contracted without further bookkeeping.
package grid

import (
	"fmt"

	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// Generator evaluates a function on a set of grid points. Generators are
// called once when an operator or state is built, never during propagation.
type Generator func(points []float64) []complex128

// Dof is a one-dimensional basis expansion together with its grid.
//
// The transformations act on exactly one axis of a tensor of arbitrary rank
// and leave all other axes untouched. For every valid axis,
// FromFbr(ToFbr(d)) and FromDvr(ToDvr(d)) reproduce d. The isKet flag
// selects the complex conjugate transformation that is required when the
// axis holds the bra half of a density operator.
//
// The transformations are low-level plumbing. Prefer DvrDensity, FbrDensity
// and friends, which apply them to every axis of a State correctly.
type Dof interface {
	// DvrPoints returns the grid points in real space.
	DvrPoints() []float64
	// FbrPoints returns the labels of the basis functions, such as wave
	// vectors or angular momenta.
	FbrPoints() []float64
	Size() int

	ToFbr(data *tensor.Tensor, axis int, isKet bool) *tensor.Tensor
	FromFbr(data *tensor.Tensor, axis int, isKet bool) *tensor.Tensor
	ToDvr(data *tensor.Tensor, axis int) *tensor.Tensor
	FromDvr(data *tensor.Tensor, axis int) *tensor.Tensor

	// Equal reports whether other describes the same discretization.
	Equal(other Dof) bool
}

// points is the shared storage of the DVR and FBR grids.
type points struct {
	dvr []float64
	fbr []float64
}

func newPoints(dvr, fbr []float64) (points, error) {
	if len(dvr) == 0 || len(fbr) == 0 {
		return points{}, fmt.Errorf("%w: degrees of freedom may not be empty", qdyn.ErrInvalidValue)
	}
	if len(dvr) != len(fbr) {
		return points{}, fmt.Errorf("%w: DVR grid has %d points, FBR grid has %d",
			qdyn.ErrInvalidValue, len(dvr), len(fbr))
	}
	return points{dvr: dvr, fbr: fbr}, nil
}

func (p points) DvrPoints() []float64 { return cloneFloats(p.dvr) }
func (p points) FbrPoints() []float64 { return cloneFloats(p.fbr) }
func (p points) Size() int            { return len(p.dvr) }

// scaleAxis multiplies (or divides) every line along axis by the weights.
func scaleAxis(data *tensor.Tensor, axis int, weights []float64, divide bool) *tensor.Tensor {
	return data.MapAxis(axis, func(dst, src []complex128) {
		for i, v := range src {
			if divide {
				dst[i] = v / complex(weights[i], 0)
			} else {
				dst[i] = v * complex(weights[i], 0)
			}
		}
	})
}

func cloneFloats(s []float64) []float64 {
	c := make([]float64, len(s))
	copy(c, s)
	return c
}

func toComplex(s []float64) []complex128 {
	c := make([]complex128, len(s))
	for i, v := range s {
		c[i] = complex(v, 0)
	}
	return c
}
