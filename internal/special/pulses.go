package special

import (
	"fmt"
	"math"

	"github.com/san-kum/wavesim/internal/qdyn"
)

// SinSquare returns the pulse shape cos^2(π (t-t0) / (2Δ)) inside
// [t0-Δ, t0+Δ] and zero outside, with Δ the half width.
func SinSquare(t0, halfWidth float64) (func(t float64) float64, error) {
	if halfWidth <= 0 {
		return nil, fmt.Errorf("%w: half width %g must be positive", qdyn.ErrInvalidValue, halfWidth)
	}

	scale := math.Pi / (2 * halfWidth)
	return func(t float64) float64 {
		dt := math.Abs(t - t0)
		if dt >= halfWidth {
			return 0
		}
		c := math.Cos(scale * dt)
		return c * c
	}, nil
}

// SoftRectangular returns a rectangular pulse of the given half width around
// t0 whose edges are switched on and off with a cosine over border. A zero
// border defaults to a tenth of the half width.
func SoftRectangular(t0, halfWidth, border float64) (func(t float64) float64, error) {
	if border == 0 {
		border = halfWidth / 10
	}
	if halfWidth <= 0 || border <= 0 {
		return nil, fmt.Errorf("%w: half width %g and border %g must be positive", qdyn.ErrInvalidValue, halfWidth, border)
	}

	scale := math.Pi / (2 * border)
	rectMin := t0 - halfWidth
	rectMax := t0 + halfWidth
	lo := rectMin - border
	hi := rectMax + border

	return func(t float64) float64 {
		switch {
		case t <= lo || t >= hi:
			return 0
		case t < rectMin:
			return math.Cos(scale * (rectMin - t))
		case t <= rectMax:
			return 1
		default:
			return math.Cos(scale * (t - rectMax))
		}
	}, nil
}
