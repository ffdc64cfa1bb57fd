package experiment

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/wavesim/internal/config"
	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/solver"
	"github.com/san-kum/wavesim/internal/special"
)

// Initial state kinds.
const (
	InitialGaussian   = "gaussian"
	InitialHarmonic   = "harmonic"
	InitialRandom     = "random"
	InitialEigenstate = "eigenstate"
)

// initialState returns the normalized initial wave function, or its pure
// density operator if cfg.Density is set.
func initialState(cfg *config.Config, sys *System) (*grid.State, error) {
	psi, err := initialWaveFunction(cfg, sys)
	if err != nil {
		return nil, err
	}
	if cfg.Density {
		return grid.PureDensity(psi)
	}
	return psi, nil
}

func initialWaveFunction(cfg *config.Config, sys *System) (*grid.State, error) {
	ic := cfg.Initial
	_, spherical := sys.Grid.Dof(0).(*grid.SphericalHarmonicsDof)

	switch ic.Kind {
	case InitialGaussian:
		if spherical {
			return nil, fmt.Errorf("%w: gaussian wave packets need a cartesian grid", qdyn.ErrInvalidValue)
		}
		gen, err := special.Gaussian(ic.Position, ic.Momentum, ic.Width)
		if err != nil {
			return nil, err
		}
		return normalized(grid.ProductWaveFunction(sys.Grid, []grid.Generator{gen}, true))

	case InitialHarmonic:
		if !spherical {
			return nil, fmt.Errorf("%w: spherical harmonics need an angular grid", qdyn.ErrInvalidValue)
		}
		if ic.L > cfg.Grid.Lmax {
			return nil, fmt.Errorf("%w: l=%d exceeds lmax=%d", qdyn.ErrInvalidValue, ic.L, cfg.Grid.Lmax)
		}
		gen, err := special.SphericalHarmonic(ic.L, cfg.Grid.M)
		if err != nil {
			return nil, err
		}
		return normalized(grid.ProductWaveFunction(sys.Grid, []grid.Generator{gen}, true))

	case InitialRandom:
		psi, err := grid.RandomWaveFunction(sys.Grid, rand.New(rand.NewSource(cfg.Seed)), 1)
		return normalized(psi, err)

	case InitialEigenstate:
		if ic.Level < 0 || ic.Level >= sys.Grid.Size() {
			return nil, fmt.Errorf("%w: level %d outside of [0, %d)", qdyn.ErrInvalidValue, ic.Level, sys.Grid.Size())
		}
		pairs, err := solver.Diagonalize(sys.Hamiltonian, 0)
		if err != nil {
			return nil, err
		}
		return pairs[ic.Level].State, nil
	}
	return nil, fmt.Errorf("%w: unknown initial state %q", qdyn.ErrInvalidValue, ic.Kind)
}

// normalized rejects states without norm, which ProductWaveFunction leaves
// untouched.
func normalized(psi *grid.State, err error) (*grid.State, error) {
	if err != nil {
		return nil, err
	}
	tr, err := grid.Trace(psi)
	if err != nil {
		return nil, err
	}
	if tr == 0 {
		return nil, fmt.Errorf("%w: initial state vanishes on the grid", qdyn.ErrInvalidValue)
	}
	return grid.Normalize(psi)
}
