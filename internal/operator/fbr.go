package operator

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// PlaneWaveFbr is diagonal in the FBR of a plane-wave DOF. It is applied by
// transforming to the FBR with an FFT, multiplying and transforming back.
type PlaneWaveFbr struct {
	base
	ketAxis, braAxis int

	// in unshifted FFT order, so the data needs no fftshift per application
	shifted []complex128
}

// NewPlaneWaveFbr evaluates gen at the wave vectors of the plane-wave DOF
// dofIndex.
func NewPlaneWaveFbr(g *grid.Grid, dofIndex int, gen grid.Generator, opts ...Option) (*PlaneWaveFbr, error) {
	idx, err := normalizeDof(g, dofIndex)
	if err != nil {
		return nil, err
	}
	d, ok := g.Dof(idx).(*grid.PlaneWaveDof)
	if !ok {
		return nil, fmt.Errorf("%w: plane-wave FBR operator needs a plane-wave DOF, got %T",
			qdyn.ErrInvalidValue, g.Dof(idx))
	}

	values, err := fbrValues(d, gen, collect(opts))
	if err != nil {
		return nil, err
	}

	return &PlaneWaveFbr{
		base:    base{grid: g},
		ketAxis: idx,
		braAxis: idx + g.NumDofs(),
		shifted: grid.IfftShift(values),
	}, nil
}

// CartesianKineticEnergy returns the operator k^2 / (2 mass).
func CartesianKineticEnergy(g *grid.Grid, dofIndex int, mass float64, opts ...Option) (*PlaneWaveFbr, error) {
	if mass <= 0 {
		return nil, fmt.Errorf("%w: particle mass must be positive, got %g", qdyn.ErrInvalidValue, mass)
	}
	return NewPlaneWaveFbr(g, dofIndex, func(k []float64) []complex128 {
		out := make([]complex128, len(k))
		for i, v := range k {
			out[i] = complex(v*v/(2*mass), 0)
		}
		return out
	}, opts...)
}

func (op *PlaneWaveFbr) ApplyToWaveFunction(psi *tensor.Tensor, _ float64) *tensor.Tensor {
	return op.apply(psi, op.ketAxis, fft.FFT, fft.IFFT)
}

func (op *PlaneWaveFbr) ApplyFromLeft(rho *tensor.Tensor, _ float64) *tensor.Tensor {
	return op.apply(rho, op.ketAxis, fft.FFT, fft.IFFT)
}

// ApplyFromRight uses the transposed transformation on the bra axis.
func (op *PlaneWaveFbr) ApplyFromRight(rho *tensor.Tensor, _ float64) *tensor.Tensor {
	return op.apply(rho, op.braAxis, fft.IFFT, fft.FFT)
}

func (op *PlaneWaveFbr) apply(data *tensor.Tensor, axis int, forward, backward func([]complex128) []complex128) *tensor.Tensor {
	return data.MapAxis(axis, func(dst, src []complex128) {
		f := forward(src)
		for i := range f {
			f[i] *= op.shifted[i]
		}
		copy(dst, backward(f))
	})
}

// FbrOperator1D is diagonal in the FBR of an arbitrary DOF. The operator is
// stored as a dense matrix in the weighted DVR and applied by contraction.
type FbrOperator1D struct {
	base
	ketAxis, braAxis int
	matrix           *mat.CDense
}

func NewFbrOperator1D(g *grid.Grid, dofIndex int, gen grid.Generator, opts ...Option) (*FbrOperator1D, error) {
	idx, err := normalizeDof(g, dofIndex)
	if err != nil {
		return nil, err
	}
	d := g.Dof(idx)

	values, err := fbrValues(d, gen, collect(opts))
	if err != nil {
		return nil, err
	}

	n := d.Size()
	diag := make([]complex128, n*n)
	for i, v := range values {
		diag[i*n+i] = v
	}
	m := d.FromFbr(tensor.New([]int{n, n}, diag), 0, true)
	m = d.FromFbr(m, 1, false)

	return &FbrOperator1D{
		base:    base{grid: g},
		ketAxis: idx,
		braAxis: idx + g.NumDofs(),
		matrix:  mat.NewCDense(n, n, m.Data()),
	}, nil
}

// RotationalKineticEnergy returns the operator l(l+1) / (2 inertia) on a
// spherical-harmonics DOF.
func RotationalKineticEnergy(g *grid.Grid, dofIndex int, inertia float64, opts ...Option) (*FbrOperator1D, error) {
	if inertia <= 0 {
		return nil, fmt.Errorf("%w: moment of inertia must be positive, got %g", qdyn.ErrInvalidValue, inertia)
	}
	idx, err := normalizeDof(g, dofIndex)
	if err != nil {
		return nil, err
	}
	if _, ok := g.Dof(idx).(*grid.SphericalHarmonicsDof); !ok {
		return nil, fmt.Errorf("%w: rotational kinetic energy needs a spherical-harmonics DOF, got %T",
			qdyn.ErrInvalidValue, g.Dof(idx))
	}

	return NewFbrOperator1D(g, idx, func(l []float64) []complex128 {
		out := make([]complex128, len(l))
		for i, v := range l {
			out[i] = complex(v*(v+1)/(2*inertia), 0)
		}
		return out
	}, opts...)
}

func (op *FbrOperator1D) ApplyToWaveFunction(psi *tensor.Tensor, _ float64) *tensor.Tensor {
	return psi.Contract(op.matrix, op.ketAxis, false)
}

func (op *FbrOperator1D) ApplyFromLeft(rho *tensor.Tensor, _ float64) *tensor.Tensor {
	return rho.Contract(op.matrix, op.ketAxis, false)
}

func (op *FbrOperator1D) ApplyFromRight(rho *tensor.Tensor, _ float64) *tensor.Tensor {
	return rho.Contract(op.matrix, op.braAxis, true)
}

func fbrValues(d grid.Dof, gen grid.Generator, o options) ([]complex128, error) {
	values, err := evaluate(gen, d.FbrPoints())
	if err != nil {
		return nil, err
	}
	if o.hasCutoff {
		if o.cutoff < 0 {
			return nil, fmt.Errorf("%w: cutoff must not be negative, got %g", qdyn.ErrInvalidValue, o.cutoff)
		}
		values = clipReal(values, -o.cutoff, o.cutoff)
	}
	return values, nil
}
