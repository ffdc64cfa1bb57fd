package experiment

import (
	"fmt"
	"math"

	"github.com/san-kum/wavesim/internal/config"
	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/operator"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/special"
)

// System is a Hamiltonian on its grid together with bounds of its spectrum.
// The bounds are estimated from the extreme potential and kinetic energies
// on the grid and are not tight.
type System struct {
	Grid        *grid.Grid
	Hamiltonian operator.Operator
	Emin, Emax  float64
}

type ModelFunc func(cfg *config.Config) (*System, error)

func realGenerator(f func(x float64) float64) grid.Generator {
	return func(points []float64) []complex128 {
		out := make([]complex128, len(points))
		for i, x := range points {
			out[i] = complex(f(x), 0)
		}
		return out
	}
}

// cartesian builds H = T + V on a single plane-wave DOF. A nil potential
// gives a free particle.
func cartesian(cfg *config.Config, potential func(x float64) float64) (*System, error) {
	dof, err := grid.NewPlaneWaveDof(cfg.Grid.Xmin, cfg.Grid.Xmax, cfg.Grid.N)
	if err != nil {
		return nil, err
	}
	g, err := grid.New(dof)
	if err != nil {
		return nil, err
	}

	kinetic, err := operator.CartesianKineticEnergy(g, 0, cfg.Physics.Mass)
	if err != nil {
		return nil, err
	}

	tmax := 0.0
	for _, k := range dof.FbrPoints() {
		tmax = math.Max(tmax, k*k/(2*cfg.Physics.Mass))
	}

	sys := &System{Grid: g, Hamiltonian: kinetic, Emax: tmax}
	if potential == nil {
		return sys, nil
	}

	vmin, vmax := math.Inf(1), math.Inf(-1)
	for _, x := range dof.DvrPoints() {
		v := potential(x)
		vmin = math.Min(vmin, v)
		vmax = math.Max(vmax, v)
	}

	pot, err := operator.NewPotential1D(g, 0, realGenerator(potential))
	if err != nil {
		return nil, err
	}
	h, err := operator.NewSum(kinetic, pot)
	if err != nil {
		return nil, err
	}

	sys.Hamiltonian = h
	sys.Emin = vmin
	sys.Emax = vmax + tmax
	return sys, nil
}

func harmonicModel(cfg *config.Config) (*System, error) {
	k := cfg.Physics.Mass * cfg.Physics.Omega * cfg.Physics.Omega
	return cartesian(cfg, func(x float64) float64 { return k * x * x / 2 })
}

func freeModel(cfg *config.Config) (*System, error) {
	return cartesian(cfg, nil)
}

// doubleWellModel has minima at x = +-1 separated by a barrier of the given
// height, V(x) = barrier (x^2 - 1)^2.
func doubleWellModel(cfg *config.Config) (*System, error) {
	if cfg.Physics.Barrier <= 0 {
		return nil, fmt.Errorf("%w: barrier height must be positive, got %g", qdyn.ErrInvalidValue, cfg.Physics.Barrier)
	}
	b := cfg.Physics.Barrier
	return cartesian(cfg, func(x float64) float64 {
		d := x*x - 1
		return b * d * d
	})
}

// rotorModel is a linear rigid rotor in a field along the z axis,
//
//	H = L^2 / 2I - E cos(theta).
//
// With a frequency set, E(t) is a sin^2 laser pulse, otherwise a static
// field.
func rotorModel(cfg *config.Config) (*System, error) {
	dof, err := grid.NewSphericalHarmonicsDof(cfg.Grid.Lmax, cfg.Grid.M)
	if err != nil {
		return nil, err
	}
	g, err := grid.New(dof)
	if err != nil {
		return nil, err
	}

	kinetic, err := operator.RotationalKineticEnergy(g, 0, cfg.Physics.Inertia)
	if err != nil {
		return nil, err
	}
	lmax := float64(cfg.Grid.Lmax)
	field := math.Abs(cfg.Physics.Field)
	sys := &System{
		Grid:        g,
		Hamiltonian: kinetic,
		Emin:        -field,
		Emax:        lmax*(lmax+1)/(2*cfg.Physics.Inertia) + field,
	}
	if cfg.Physics.Field == 0 {
		return sys, nil
	}

	var coupling operator.Operator
	if cfg.Physics.Frequency > 0 {
		shape, err := special.SinSquare(cfg.Physics.PulseT0, cfg.Physics.PulseWidth)
		if err != nil {
			return nil, err
		}
		laser, err := operator.LaserField(g, cfg.Physics.Field, shape, cfg.Physics.Frequency, 0)
		if err != nil {
			return nil, err
		}
		dipole, err := operator.NewPotential1D(g, 0, realGenerator(func(theta float64) float64 { return -math.Cos(theta) }))
		if err != nil {
			return nil, err
		}
		if coupling, err = operator.NewProduct(laser, dipole); err != nil {
			return nil, err
		}
	} else {
		f := cfg.Physics.Field
		if coupling, err = operator.NewPotential1D(g, 0, realGenerator(func(theta float64) float64 { return -f * math.Cos(theta) })); err != nil {
			return nil, err
		}
	}

	h, err := operator.NewSum(kinetic, coupling)
	if err != nil {
		return nil, err
	}
	sys.Hamiltonian = h
	return sys, nil
}
