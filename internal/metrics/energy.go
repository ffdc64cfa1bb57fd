package metrics

import (
	"math"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/operator"
)

// Energy is the mean of <H> / trace over all observed states.
type Energy struct {
	name        string
	hamiltonian operator.Operator
	samples     int
	totalEnergy float64
}

func NewEnergy(h operator.Operator) *Energy {
	return &Energy{name: "energy", hamiltonian: h}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(t float64, s *grid.State) error {
	energy, err := energyOf(e.hamiltonian, t, s)
	if err != nil {
		return err
	}
	e.totalEnergy += energy
	e.samples++
	return nil
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest deviation of the energy from its initial value,
// relative to the initial value unless that is zero.
type EnergyDrift struct {
	name          string
	hamiltonian   operator.Operator
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(h operator.Operator) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", hamiltonian: h}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(t float64, s *grid.State) error {
	energy, err := energyOf(e.hamiltonian, t, s)
	if err != nil {
		return err
	}

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	drift := math.Abs(energy - e.initialEnergy)
	if e.initialEnergy != 0 {
		drift /= math.Abs(e.initialEnergy)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
	return nil
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

func energyOf(h operator.Operator, t float64, s *grid.State) (float64, error) {
	tr, err := grid.Trace(s)
	if err != nil {
		return 0, err
	}
	value, err := operator.ExpectationValue(h, s, t)
	if err != nil {
		return 0, err
	}
	if tr == 0 {
		return 0, nil
	}
	return real(value) / tr, nil
}
