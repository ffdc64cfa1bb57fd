package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/operator"
	"github.com/san-kum/wavesim/internal/qdyn"
)

// Probe evaluates the trace and the position and width along every DOF of a
// state. The position operators are built once per grid.
type Probe struct {
	grid  *grid.Grid
	x, x2 []operator.Operator
}

func NewProbe(g *grid.Grid) (*Probe, error) {
	p := &Probe{grid: g}
	for i := 0; i < g.NumDofs(); i++ {
		x, err := operator.NewPotential1D(g, i, power(1))
		if err != nil {
			return nil, err
		}
		x2, err := operator.NewPotential1D(g, i, power(2))
		if err != nil {
			return nil, err
		}
		p.x = append(p.x, x)
		p.x2 = append(p.x2, x2)
	}
	return p, nil
}

// Measure returns the observables of s at time t. Expectation values are
// divided by the trace, so unnormalized states give sensible positions.
func (p *Probe) Measure(t float64, s *grid.State) (Sample, error) {
	if !p.grid.Equal(s.Grid()) {
		return Sample{}, fmt.Errorf("%w: probe and state are defined on different grids", qdyn.ErrBadGrid)
	}

	tr, err := grid.Trace(s)
	if err != nil {
		return Sample{}, err
	}

	sample := Sample{
		Time:  t,
		Trace: tr,
		Mean:  make([]float64, len(p.x)),
		Width: make([]float64, len(p.x)),
	}
	if tr == 0 {
		return sample, nil
	}

	for i := range p.x {
		x, err := operator.ExpectationValue(p.x[i], s)
		if err != nil {
			return Sample{}, err
		}
		x2, err := operator.ExpectationValue(p.x2[i], s)
		if err != nil {
			return Sample{}, err
		}
		mean := real(x) / tr
		sample.Mean[i] = mean
		// rounding can make the variance slightly negative
		sample.Width[i] = math.Sqrt(math.Abs(real(x2)/tr - mean*mean))
	}
	return sample, nil
}

func power(n int) grid.Generator {
	return func(points []float64) []complex128 {
		out := make([]complex128, len(points))
		for i, v := range points {
			out[i] = complex(math.Pow(v, float64(n)), 0)
		}
		return out
	}
}
