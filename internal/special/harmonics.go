package special

import (
	"fmt"
	"math"

	"github.com/san-kum/wavesim/internal/qdyn"
)

// NormalizedLegendre evaluates the normalized associated Legendre functions
//
//	P̄_l^m(x) = sqrt((2l+1)/(4π) (l-m)!/(l+m)!) P_l^m(x),   l = m..lmax
//
// including the Condon-Shortley phase, for 0 <= m <= lmax and |x| <= 1.
// Element [l-m] of the result holds P̄_l^m(x).
func NormalizedLegendre(lmax, m int, x float64) []float64 {
	vals := make([]float64, lmax-m+1)

	pmm := math.Sqrt(1 / (4 * math.Pi))
	sinTheta := math.Sqrt(math.Max(0, (1-x)*(1+x)))
	for i := 1; i <= m; i++ {
		pmm *= -math.Sqrt(float64(2*i+1)/float64(2*i)) * sinTheta
	}
	vals[0] = pmm
	if lmax == m {
		return vals
	}

	vals[1] = x * math.Sqrt(float64(2*m+3)) * pmm
	for l := m + 2; l <= lmax; l++ {
		fl, fm := float64(l), float64(m)
		a := math.Sqrt((4*fl*fl - 1) / (fl*fl - fm*fm))
		b := math.Sqrt(((fl-1)*(fl-1) - fm*fm) / (4*(fl-1)*(fl-1) - 1))
		vals[l-m] = a * (x*vals[l-m-1] - b*vals[l-m-2])
	}
	return vals
}

// SphericalHarmonic returns a generator that evaluates Y_lm(θ, φ=0) at the
// supplied polar angles θ. For negative m, Y_{l,-|m|} = (-1)^m Y_{l,|m|}^*,
// which is real on the φ=0 half plane.
func SphericalHarmonic(l, m int) (func(theta []float64) []complex128, error) {
	if l < 0 || abs(m) > l {
		return nil, fmt.Errorf("%w: spherical harmonic requires 0 <= |m| <= l, got l=%d, m=%d", qdyn.ErrInvalidValue, l, m)
	}

	am := abs(m)
	sign := 1.0
	if m < 0 && am%2 == 1 {
		sign = -1.0
	}

	return func(theta []float64) []complex128 {
		out := make([]complex128, len(theta))
		for i, th := range theta {
			p := NormalizedLegendre(l, am, math.Cos(th))
			out[i] = complex(sign*p[l-am], 0)
		}
		return out
	}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
