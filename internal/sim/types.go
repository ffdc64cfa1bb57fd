package sim

import "github.com/san-kum/wavesim/internal/grid"

// Metric accumulates a figure of merit over a run. Observe is called with
// the initial state and after every step.
type Metric interface {
	Name() string
	Observe(t float64, s *grid.State) error
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(t float64, s *grid.State)
}

type Config struct {
	T0    float64
	Steps int
	// SampleEvery records a Sample every n steps; the initial and final
	// states are always recorded. Zero means every step.
	SampleEvery int
	// KeepStates stores every sampled state in the Result.
	KeepStates bool
}

// Sample holds the observables of the state at one point in time.
type Sample struct {
	Time  float64
	Trace float64
	// Mean and Width hold <x_i> and sqrt(<x_i^2> - <x_i>^2) for every DOF.
	Mean  []float64
	Width []float64
}

type Result struct {
	Samples    []Sample
	States     []*grid.State
	Final      *grid.State
	Metrics    map[string]float64
	StepsTaken int
}

// Times returns the times of all samples.
func (r *Result) Times() []float64 {
	times := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		times[i] = s.Time
	}
	return times
}
