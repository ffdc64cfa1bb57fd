package integrators

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/wavesim/internal/qdyn"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b2 = []float64{1.0 / 5.0}
	b3 = []float64{3.0 / 40.0, 9.0 / 40.0}
	b4 = []float64{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0}
	b5 = []float64{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0}
	b6 = []float64{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0}

	c5 = []float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0}

	dc5 = []float64{
		c5[0] - 5179.0/57600.0,
		0,
		c5[2] - 7571.0/16695.0,
		c5[3] - 393.0/640.0,
		c5[4] - -92097.0/339200.0,
		c5[5] - 187.0/2100.0,
		-1.0 / 40.0,
	}
)

// RK45 is the adaptive Dormand-Prince method. The local error of a step is
// accepted if its weighted RMS norm, with weights atol + rtol * |y|, is at
// most one.
type RK45 struct {
	rtol, atol float64
	maxSteps   int
	firstStep  float64

	safety   float64
	minScale float64
	maxScale float64
}

type RK45Option func(*RK45)

// WithTolerances sets the relative and absolute tolerances.
func WithTolerances(rtol, atol float64) RK45Option {
	return func(r *RK45) {
		r.rtol = rtol
		r.atol = atol
	}
}

// WithMaxSteps bounds the number of attempted steps per Integrate call.
func WithMaxSteps(n int) RK45Option {
	return func(r *RK45) { r.maxSteps = n }
}

// WithFirstStep sets the initial trial step; by default the whole interval is
// tried first.
func WithFirstStep(dt float64) RK45Option {
	return func(r *RK45) { r.firstStep = dt }
}

func NewRK45(opts ...RK45Option) (*RK45, error) {
	r := &RK45{
		rtol:     1e-6,
		atol:     1e-6,
		maxSteps: 100000,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.rtol < 0 || r.atol < 0 || r.rtol+r.atol == 0 {
		return nil, fmt.Errorf("%w: tolerances rtol=%g atol=%g", qdyn.ErrInvalidValue, r.rtol, r.atol)
	}
	if r.maxSteps <= 0 || r.firstStep < 0 {
		return nil, fmt.Errorf("%w: max steps %d, first step %g", qdyn.ErrInvalidValue, r.maxSteps, r.firstStep)
	}
	return r, nil
}

// StepAdaptive performs one trial step and returns the new state, the
// weighted error norm and a proposal for the next step size. The step should
// be rejected if the error norm exceeds one.
func (r *RK45) StepAdaptive(sys System, y Vector, t, dt float64) (Vector, float64, float64, error) {
	k1, err := sys.Derive(y, t)
	if err != nil {
		return nil, 0, 0, err
	}
	yNew, _, errNorm, dtNew, err := r.step(sys, y, k1, t, dt)
	return yNew, errNorm, dtNew, err
}

// step also returns the derivative at the new point, which is the first
// stage of the next step.
func (r *RK45) step(sys System, y, k1 Vector, t, dt float64) (Vector, Vector, float64, float64, error) {
	k := []Vector{k1}
	for _, stage := range []struct {
		b []float64
		a float64
	}{{b2, a2}, {b3, a3}, {b4, a4}, {b5, a5}, {b6, 1}} {
		kn, err := sys.Derive(axpy(y, dt, stage.b, k), t+stage.a*dt)
		if err != nil {
			return nil, nil, 0, 0, err
		}
		k = append(k, kn)
	}

	yNew := axpy(y, dt, c5, k)

	k7, err := sys.Derive(yNew, t+dt)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	k = append(k, k7)

	errEst := axpy(make(Vector, len(y)), dt, dc5, k)
	sum := 0.0
	for i, e := range errEst {
		scale := r.atol + r.rtol*math.Max(cmplx.Abs(y[i]), cmplx.Abs(yNew[i]))
		q := cmplx.Abs(e) / scale
		sum += q * q
	}
	errNorm := 0.0
	if len(y) > 0 {
		errNorm = math.Sqrt(sum / float64(len(y)))
	}

	var dtNew float64
	switch {
	case errNorm > 1:
		dtNew = dt * math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
	case errNorm > 0:
		dtNew = dt * math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
	default:
		dtNew = dt * r.maxScale
	}

	return yNew, k7, errNorm, dtNew, nil
}

// Integrate advances y from t0 to t1 with adaptive steps and ends exactly at
// t1. It fails with qdyn.ErrStepTooSmall if the step size underflows, and with
// qdyn.ErrExecution if the step budget is exhausted or the solution diverges.
func (r *RK45) Integrate(sys System, y Vector, t0, t1 float64) (Vector, error) {
	span := t1 - t0
	if span == 0 {
		return y.Clone(), nil
	}
	direction := math.Copysign(1, span)

	dt := math.Abs(span)
	if r.firstStep > 0 {
		dt = math.Min(dt, r.firstStep)
	}
	minStep := 1e-12 * math.Max(math.Abs(t0), math.Abs(t1))
	minStep = math.Max(minStep, 1e-14*math.Abs(span))

	t := t0
	k1, err := sys.Derive(y, t)
	if err != nil {
		return nil, err
	}

	for n := 0; n < r.maxSteps; n++ {
		remaining := math.Abs(t1 - t)
		last := dt >= remaining
		if last {
			dt = remaining
		}

		yNew, k7, errNorm, dtNew, err := r.step(sys, y, k1, t, direction*dt)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(errNorm) {
			return nil, fmt.Errorf("%w: solution diverged at t=%g", qdyn.ErrExecution, t)
		}
		dtNew = math.Abs(dtNew)

		if errNorm <= 1 {
			if !yNew.IsValid() {
				return nil, fmt.Errorf("%w: solution diverged at t=%g", qdyn.ErrExecution, t)
			}
			if last {
				return yNew, nil
			}
			t += direction * dt
			y, k1 = yNew, k7
		}

		if dtNew < minStep {
			return nil, fmt.Errorf("%w: step %g at t=%g", qdyn.ErrStepTooSmall, dtNew, t)
		}
		dt = dtNew
	}

	return nil, fmt.Errorf("%w: no convergence within %d steps", qdyn.ErrExecution, r.maxSteps)
}
