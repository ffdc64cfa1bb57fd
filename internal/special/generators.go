package special

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/wavesim/internal/qdyn"
)

// Gaussian returns the generator
//
//	f(x) = exp(-(x-x0)^2 / (2 rms^2) + i p0 (x-x0))
//
// for a wave packet centred at x0 with mean momentum p0.
func Gaussian(x0, p0, rms float64) (func(x []float64) []complex128, error) {
	if rms <= 0 {
		return nil, fmt.Errorf("%w: rms width of Gaussian must be positive, got %g", qdyn.ErrInvalidValue, rms)
	}

	return func(x []float64) []complex128 {
		out := make([]complex128, len(x))
		for i, v := range x {
			d := v - x0
			out[i] = cmplx.Exp(complex(-d*d/(2*rms*rms), p0*d))
		}
		return out
	}, nil
}

// GaussianFWHM is like Gaussian but takes the full width at half maximum,
// rms = fwhm / sqrt(8 ln 2).
func GaussianFWHM(x0, p0, fwhm float64) (func(x []float64) []complex128, error) {
	if fwhm <= 0 {
		return nil, fmt.Errorf("%w: FWHM of Gaussian must be positive, got %g", qdyn.ErrInvalidValue, fwhm)
	}
	return Gaussian(x0, p0, fwhm/math.Sqrt(8*math.Ln2))
}

// PlaneWave returns the generator exp(i k x).
func PlaneWave(k float64) func(x []float64) []complex128 {
	return func(x []float64) []complex128 {
		out := make([]complex128, len(x))
		for i, v := range x {
			out[i] = cmplx.Exp(complex(0, k*v))
		}
		return out
	}
}
