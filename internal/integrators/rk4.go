package integrators

// RK4 is the classical fourth-order Runge-Kutta method. Integrate divides the
// interval into a fixed number of equal substeps.
type RK4 struct {
	substeps int
}

func NewRK4(substeps int) *RK4 {
	return &RK4{substeps: max(substeps, 1)}
}

func (r *RK4) Step(sys System, y Vector, t, dt float64) (Vector, error) {
	k1, err := sys.Derive(y, t)
	if err != nil {
		return nil, err
	}

	k2, err := sys.Derive(axpy(y, dt, []float64{0.5}, []Vector{k1}), t+dt*0.5)
	if err != nil {
		return nil, err
	}

	k3, err := sys.Derive(axpy(y, dt, []float64{0.5}, []Vector{k2}), t+dt*0.5)
	if err != nil {
		return nil, err
	}

	k4, err := sys.Derive(axpy(y, dt, []float64{1}, []Vector{k3}), t+dt)
	if err != nil {
		return nil, err
	}

	return axpy(y, dt/6, []float64{1, 2, 2, 1}, []Vector{k1, k2, k3, k4}), nil
}

func (r *RK4) Integrate(sys System, y Vector, t0, t1 float64) (Vector, error) {
	return fixedSteps(r, r.substeps, sys, y, t0, t1)
}

type stepper interface {
	Step(sys System, y Vector, t, dt float64) (Vector, error)
}

func fixedSteps(s stepper, n int, sys System, y Vector, t0, t1 float64) (Vector, error) {
	dt := (t1 - t0) / float64(n)
	var err error
	for i := 0; i < n; i++ {
		if y, err = s.Step(sys, y, t0+float64(i)*dt, dt); err != nil {
			return nil, err
		}
	}
	return y, nil
}
