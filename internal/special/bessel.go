package special

import "math"

// BesselJ returns the Bessel function of the first kind J_n(x).
func BesselJ(n int, x float64) float64 {
	return math.Jn(n, x)
}

// ScaledBesselI returns exp(-x) I_n(x) for n = 0..nmax and x >= 0, where I_n
// is the modified Bessel function of the first kind.
//
// The values are obtained by Miller's backward recurrence
// I_{k-1} = I_{k+1} + (2k/x) I_k, normalized with the generating identity
// exp(x) = I_0(x) + 2 sum_{k>0} I_k(x). The scaling keeps the result finite
// for arguments where I_n itself overflows.
func ScaledBesselI(nmax int, x float64) []float64 {
	vals := make([]float64, nmax+1)
	if x == 0 {
		vals[0] = 1
		return vals
	}

	start := nmax + 20 + int(x) + int(math.Sqrt(40*float64(nmax+int(x)+1)))

	const big, small = 1e250, 1e-250
	cur, next := 1.0, 0.0
	sum := 2 * cur
	for k := start; k > 0; k-- {
		prev := next + 2*float64(k)/x*cur
		next, cur = cur, prev

		if k-1 > 0 {
			sum += 2 * cur
		} else {
			sum += cur
		}
		if k-1 <= nmax {
			vals[k-1] = cur
		}

		if math.Abs(cur) > big {
			cur *= small
			next *= small
			sum *= small
			for i := k - 1; i <= nmax; i++ {
				vals[i] *= small
			}
		}
	}

	for i := range vals {
		vals[i] /= sum
	}
	return vals
}
