package grid

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// PlaneWaveDof is an expansion in plane waves on an equally spaced grid.
//
// The DVR grid consists of n points on [xmin, xmax), the FBR grid of the
// matching wave vectors, ordered ascending and centred at zero. The
// transformation between the two is an FFT plus a phase that accounts for
// the grid offset xmin.
type PlaneWaveDof struct {
	points
	xmin, xmax float64

	sqrtWeights []float64
	phase       []complex128
	conjPhase   []complex128
}

func NewPlaneWaveDof(xmin, xmax float64, n int) (*PlaneWaveDof, error) {
	if xmin > xmax {
		return nil, fmt.Errorf("%w: range [%g, %g] should be positive", qdyn.ErrInvalidValue, xmin, xmax)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: number of grid points must be positive, got %d", qdyn.ErrInvalidValue, n)
	}

	dx := (xmax - xmin) / float64(n)

	dvr := floats.Span(make([]float64, n+1), xmin, xmax)[:n]

	fbr := make([]float64, n)
	dk := 2 * math.Pi / (float64(n) * dx)
	for i := range fbr {
		fbr[i] = float64(i-n/2) * dk
	}

	p, err := newPoints(dvr, fbr)
	if err != nil {
		return nil, err
	}

	d := &PlaneWaveDof{
		points:      p,
		xmin:        xmin,
		xmax:        xmax,
		sqrtWeights: make([]float64, n),
		phase:       make([]complex128, n),
		conjPhase:   make([]complex128, n),
	}
	norm := math.Sqrt(float64(n))
	for i, k := range fbr {
		d.sqrtWeights[i] = math.Sqrt(dx)
		d.phase[i] = cmplx.Exp(complex(0, -k*xmin)) / complex(norm, 0)
		d.conjPhase[i] = complex(float64(n), 0) * cmplx.Conj(d.phase[i])
	}
	return d, nil
}

func (d *PlaneWaveDof) Xmin() float64 { return d.xmin }
func (d *PlaneWaveDof) Xmax() float64 { return d.xmax }

func (d *PlaneWaveDof) ToFbr(data *tensor.Tensor, axis int, isKet bool) *tensor.Tensor {
	phase, transform := d.phase, fft.FFT
	if !isKet {
		phase, transform = d.conjPhase, fft.IFFT
	}

	return data.MapAxis(axis, func(dst, src []complex128) {
		fftShift(dst, transform(src))
		for i := range dst {
			dst[i] *= phase[i]
		}
	})
}

func (d *PlaneWaveDof) FromFbr(data *tensor.Tensor, axis int, isKet bool) *tensor.Tensor {
	phase, transform := d.conjPhase, fft.IFFT
	if !isKet {
		phase, transform = d.phase, fft.FFT
	}

	buf := make([]complex128, d.Size())
	return data.MapAxis(axis, func(dst, src []complex128) {
		for i, v := range src {
			buf[i] = phase[i] * v
		}
		ifftShift(dst, buf)
		copy(dst, transform(dst))
	})
}

func (d *PlaneWaveDof) ToDvr(data *tensor.Tensor, axis int) *tensor.Tensor {
	return scaleAxis(data, axis, d.sqrtWeights, true)
}

func (d *PlaneWaveDof) FromDvr(data *tensor.Tensor, axis int) *tensor.Tensor {
	return scaleAxis(data, axis, d.sqrtWeights, false)
}

func (d *PlaneWaveDof) Equal(other Dof) bool {
	o, ok := other.(*PlaneWaveDof)
	if !ok {
		return false
	}
	return o == d || (o.xmin == d.xmin && o.xmax == d.xmax && o.Size() == d.Size())
}

// fftShift moves the zero frequency of an FFT result to the centre,
// dst[k] = src[(k - n/2) mod n].
func fftShift(dst, src []complex128) {
	n := len(src)
	for k := range dst {
		dst[k] = src[(k-n/2+n)%n]
	}
}

// ifftShift undoes fftShift, dst[k] = src[(k + n/2) mod n].
func ifftShift(dst, src []complex128) {
	n := len(src)
	for k := range dst {
		dst[k] = src[(k+n/2)%n]
	}
}

// IfftShift returns a copy of v reordered from centred (FBR) order into the
// order produced by an unshifted FFT.
func IfftShift(v []complex128) []complex128 {
	out := make([]complex128, len(v))
	ifftShift(out, v)
	return out
}
