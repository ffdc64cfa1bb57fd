package metrics

import (
	"fmt"
	"math/cmplx"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/tensor"
)

// Autocorrelation records a(t) = <psi(0)|psi(t)> for wave functions, or
// Tr(rho(0)^H rho(t)) for density operators. The reference is the first
// observed state. Value is |a| at the last observation.
type Autocorrelation struct {
	name      string
	reference *grid.State
	times     []float64
	values    []complex128
}

func NewAutocorrelation() *Autocorrelation {
	return &Autocorrelation{name: "autocorrelation"}
}

func (a *Autocorrelation) Name() string { return a.name }

func (a *Autocorrelation) Observe(t float64, s *grid.State) error {
	if a.reference == nil {
		a.reference = s
	}
	if !a.reference.Grid().Equal(s.Grid()) {
		return fmt.Errorf("%w: state changed its grid", qdyn.ErrBadGrid)
	}
	if !tensor.ShapeEqual(a.reference.Data().Shape(), s.Data().Shape()) {
		return fmt.Errorf("%w: state changed its kind", qdyn.ErrBadState)
	}

	a.times = append(a.times, t)
	a.values = append(a.values, tensor.Dot(a.reference.Data(), s.Data()))
	return nil
}

func (a *Autocorrelation) Value() float64 {
	if len(a.values) == 0 {
		return 0
	}
	return cmplx.Abs(a.values[len(a.values)-1])
}

func (a *Autocorrelation) Times() []float64 {
	return append([]float64(nil), a.times...)
}

func (a *Autocorrelation) Values() []complex128 {
	return append([]complex128(nil), a.values...)
}

func (a *Autocorrelation) Reset() {
	a.reference = nil
	a.times = nil
	a.values = nil
}
