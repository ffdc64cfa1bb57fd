// Package integrators contains explicit Runge-Kutta integrators for systems of
// complex ordinary differential equations dy/dt = f(y, t).
package integrators

import (
	"math"
	"math/cmplx"
)

type Vector []complex128

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if cmplx.IsNaN(x) || cmplx.IsInf(x) {
			return false
		}
	}
	return true
}

func (v Vector) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += real(x)*real(x) + imag(x)*imag(x)
	}
	return math.Sqrt(sum)
}

// System is the right-hand side of the differential equation.
type System interface {
	Derive(y Vector, t float64) (Vector, error)
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc func(y Vector, t float64) (Vector, error)

func (f SystemFunc) Derive(y Vector, t float64) (Vector, error) { return f(y, t) }

// Integrator advances a solution from t0 to t1.
type Integrator interface {
	Integrate(sys System, y Vector, t0, t1 float64) (Vector, error)
}

// axpy returns y + dt * sum_i c[i] * k[i].
func axpy(y Vector, dt float64, c []float64, k []Vector) Vector {
	out := y.Clone()
	for j, kj := range k {
		if c[j] == 0 {
			continue
		}
		f := complex(dt*c[j], 0)
		for i, v := range kj {
			out[i] += f * v
		}
	}
	return out
}
