package integrators

// Euler is the explicit first-order method with a fixed number of substeps.
// It is mainly useful as a cheap reference in tests.
type Euler struct {
	substeps int
}

func NewEuler(substeps int) *Euler {
	return &Euler{substeps: max(substeps, 1)}
}

func (e *Euler) Step(sys System, y Vector, t, dt float64) (Vector, error) {
	dy, err := sys.Derive(y, t)
	if err != nil {
		return nil, err
	}
	return axpy(y, dt, []float64{1}, []Vector{dy}), nil
}

func (e *Euler) Integrate(sys System, y Vector, t0, t1 float64) (Vector, error) {
	return fixedSteps(e, e.substeps, sys, y, t0, t1)
}
