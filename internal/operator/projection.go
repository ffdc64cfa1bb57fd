package operator

import (
	"fmt"
	"math/cmplx"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// Projection projects onto the subspace spanned by one or more wave
// functions, P = sum_i |b_i><b_i| for an orthonormal basis b_i.
type Projection struct {
	base
	basis []*tensor.Tensor
}

// NewProjection orthonormalizes the given wave functions and returns the
// projector onto their span. The states must be linearly independent.
func NewProjection(states ...*grid.State) (*Projection, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("%w: projection needs at least one state", qdyn.ErrInvalidValue)
	}

	ortho, err := grid.Orthonormalize(states)
	if err != nil {
		return nil, err
	}

	p := &Projection{base: base{grid: states[0].Grid()}, basis: make([]*tensor.Tensor, len(ortho))}
	for i, s := range ortho {
		p.basis[i] = s.Data()
	}
	return p, nil
}

func (p *Projection) ApplyToWaveFunction(psi *tensor.Tensor, _ float64) *tensor.Tensor {
	out := tensor.Zeros(psi.Shape()...)
	for _, b := range p.basis {
		out = out.AddScaled(tensor.Dot(b, psi), b)
	}
	return out
}

// ApplyFromLeft computes sum_b |b> (<b| rho), treating rho as a matrix.
func (p *Projection) ApplyFromLeft(rho *tensor.Tensor, _ float64) *tensor.Tensor {
	n := p.grid.Size()
	src := rho.Data()
	out := make([]complex128, n*n)

	coeff := make([]complex128, n)
	for _, b := range p.basis {
		bv := b.Data()
		for j := range coeff {
			coeff[j] = 0
		}
		for i, bi := range bv {
			c := cmplx.Conj(bi)
			row := src[i*n : (i+1)*n]
			for j, v := range row {
				coeff[j] += c * v
			}
		}
		for i, bi := range bv {
			row := out[i*n : (i+1)*n]
			for j, c := range coeff {
				row[j] += bi * c
			}
		}
	}
	return tensor.New(rho.Shape(), out)
}

// ApplyFromRight computes sum_b (rho |b>) <b|.
func (p *Projection) ApplyFromRight(rho *tensor.Tensor, _ float64) *tensor.Tensor {
	n := p.grid.Size()
	src := rho.Data()
	out := make([]complex128, n*n)

	coeff := make([]complex128, n)
	for _, b := range p.basis {
		bv := b.Data()
		for i := range coeff {
			var s complex128
			row := src[i*n : (i+1)*n]
			for k, v := range row {
				s += v * bv[k]
			}
			coeff[i] = s
		}
		for i, c := range coeff {
			row := out[i*n : (i+1)*n]
			for j, bj := range bv {
				row[j] += c * cmplx.Conj(bj)
			}
		}
	}
	return tensor.New(rho.Shape(), out)
}
