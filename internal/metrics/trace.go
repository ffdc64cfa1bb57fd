package metrics

import (
	"math"

	"github.com/san-kum/wavesim/internal/grid"
)

// TraceDrift is the largest absolute deviation of the trace from its initial
// value. Unitary propagation keeps it at the level of the solver accuracy.
type TraceDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewTraceDrift() *TraceDrift {
	return &TraceDrift{name: "trace_drift"}
}

func (d *TraceDrift) Name() string { return d.name }

func (d *TraceDrift) Observe(_ float64, s *grid.State) error {
	tr, err := grid.Trace(s)
	if err != nil {
		return err
	}
	if d.samples == 0 {
		d.initial = tr
	}
	d.samples++
	d.maxDrift = math.Max(d.maxDrift, math.Abs(tr-d.initial))
	return nil
}

func (d *TraceDrift) Value() float64 { return d.maxDrift }

func (d *TraceDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
