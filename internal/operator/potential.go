package operator

import (
	"math"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/tensor"
)

// Potential1D is a function of one coordinate and hence diagonal in the DVR.
type Potential1D struct {
	base
	wf, ket, bra *tensor.Tensor
}

// NewPotential1D evaluates gen at the DVR points of DOF dofIndex. With
// WithCutoff, the real part of the values is clipped from above.
func NewPotential1D(g *grid.Grid, dofIndex int, gen grid.Generator, opts ...Option) (*Potential1D, error) {
	idx, err := normalizeDof(g, dofIndex)
	if err != nil {
		return nil, err
	}

	values, err := evaluate(gen, g.Dof(idx).DvrPoints())
	if err != nil {
		return nil, err
	}
	if o := collect(opts); o.hasCutoff {
		values = clipReal(values, math.Inf(-1), o.cutoff)
	}

	return &Potential1D{
		base: base{grid: g},
		wf:   g.Broadcast(values, idx),
		ket:  g.OperatorBroadcast(values, idx, true),
		bra:  g.OperatorBroadcast(values, idx, false),
	}, nil
}

func (op *Potential1D) ApplyToWaveFunction(psi *tensor.Tensor, _ float64) *tensor.Tensor {
	return psi.Mul(op.wf)
}

func (op *Potential1D) ApplyFromLeft(rho *tensor.Tensor, _ float64) *tensor.Tensor {
	return rho.Mul(op.ket)
}

func (op *Potential1D) ApplyFromRight(rho *tensor.Tensor, _ float64) *tensor.Tensor {
	return rho.Mul(op.bra)
}
