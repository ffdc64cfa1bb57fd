package solver_test

import (
	"math"
	"math/cmplx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/wavesim/internal/expression"
	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/operator"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/solver"
	"github.com/san-kum/wavesim/internal/special"
)

var _ = Describe("ChebychevSolver", func() {
	var g *grid.Grid

	BeforeEach(func() {
		g = grid1D()
	})

	Describe("construction", func() {
		var (
			op *operator.Constant
			eq *expression.SchroedingerEquation
		)

		BeforeEach(func() {
			var err error
			op, err = operator.NewConstant(g, 1)
			Expect(err).NotTo(HaveOccurred())
			eq = expression.NewSchroedingerEquation(op)
		})

		It("rejects an empty or inverted spectrum", func() {
			for _, spec := range [][2]float64{{0, 0}, {1, 0}} {
				_, err := solver.NewChebychevSolver(eq, 1, spec[0], spec[1])
				Expect(err).To(MatchError(qdyn.ErrInvalidValue))
				_, err = solver.NewRelaxationSolver(op, 1, spec[0], spec[1])
				Expect(err).To(MatchError(qdyn.ErrInvalidValue))
			}
		})

		It("rejects time-dependent generators", func() {
			td, err := operator.NewTimeDependent(g, func(t float64) complex128 { return complex(t, 0) })
			Expect(err).NotTo(HaveOccurred())

			_, err = solver.NewChebychevSolver(expression.NewSchroedingerEquation(td), 1, 0, 1)
			Expect(err).To(MatchError(qdyn.ErrUnsupported))
			_, err = solver.NewRelaxationSolver(td, 1, 0, 1)
			Expect(err).To(MatchError(qdyn.ErrUnsupported))
		})

		It("rejects a non-positive time step or cutoff", func() {
			_, err := solver.NewChebychevSolver(eq, 0, -1, 1)
			Expect(err).To(MatchError(qdyn.ErrInvalidValue))
			_, err = solver.NewRelaxationSolver(op, -1, -1, 1)
			Expect(err).To(MatchError(qdyn.ErrInvalidValue))
			_, err = solver.NewChebychevSolver(eq, 1, -1, 1, solver.WithCutoff(0))
			Expect(err).To(MatchError(qdyn.ErrInvalidValue))
		})

		It("truncates the expansion at the first small coefficient", func() {
			s, err := solver.NewChebychevSolver(eq, 0.5, -1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Alpha()).To(BeNumerically("~", 0.5, 1e-15))
			Expect(s.Dt()).To(Equal(0.5))

			order := s.Order()
			Expect(order).To(BeNumerically(">", 2))
			Expect(2 * math.Abs(special.BesselJ(order, s.Alpha()))).To(BeNumerically("<", 1e-12))
			Expect(2 * math.Abs(special.BesselJ(order-1, s.Alpha()))).To(BeNumerically(">=", 1e-12))
			Expect(s.Coefficients()).To(HaveLen(order + 1))

			r, err := solver.NewRelaxationSolver(op, 0.5, -1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Alpha()).To(Equal(s.Alpha()))
			scaled := special.ScaledBesselI(r.Order(), r.Alpha())
			unscaled := func(n int) float64 { return 2 * scaled[n] * math.Exp(r.Alpha()) }
			Expect(unscaled(r.Order())).To(BeNumerically("<", 1e-12))
			Expect(unscaled(r.Order() - 1)).To(BeNumerically(">=", 1e-12))
		})

		It("needs a higher order for a larger alpha", func() {
			short, err := solver.NewChebychevSolver(eq, 0.5, -1, 1)
			Expect(err).NotTo(HaveOccurred())
			long, err := solver.NewChebychevSolver(eq, 50, -1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(long.Order()).To(BeNumerically(">", 50))
			Expect(long.Order()).To(BeNumerically(">", short.Order()))
		})
	})

	Describe("real-time propagation in a linear potential", func() {
		const dt = 5.0

		var (
			pot    *operator.Potential1D
			psi0   *grid.State
			psiSol *solver.ChebychevSolver
		)

		BeforeEach(func() {
			pot = linearPotential(g)
			lo, hi := potentialSpectrum(g)

			var err error
			psiSol, err = solver.NewChebychevSolver(expression.NewSchroedingerEquation(pot), dt, lo, hi)
			Expect(err).NotTo(HaveOccurred())
			psi0 = randomState(g, 17)
		})

		It("multiplies the wave function by exp(-ixt)", func() {
			psi := psi0
			for step := 0; step < 5; step++ {
				var err error
				psi, err = psiSol.Step(psi, float64(step)*dt)
				Expect(err).NotTo(HaveOccurred())
				Expect(distance(psi, evolved(psi0, phase(float64(step+1)*dt)))).To(BeNumerically("<", 1e-8))
			}
		})

		It("keeps a pure density operator pure", func() {
			points := g.Dof(0).DvrPoints()
			diff := points[len(points)-1] - points[0]
			rhoSol, err := solver.NewChebychevSolver(expression.NewCommutatorLiouvillian(pot), dt, -1.1*diff, 1.1*diff)
			Expect(err).NotTo(HaveOccurred())

			rho0, err := grid.PureDensity(psi0)
			Expect(err).NotTo(HaveOccurred())
			trace0, err := grid.Trace(rho0)
			Expect(err).NotTo(HaveOccurred())

			psi, rho := psi0, rho0
			for step := 0; step < 5; step++ {
				psi, err = psiSol.Step(psi, 0)
				Expect(err).NotTo(HaveOccurred())
				rho, err = rhoSol.Step(rho, 0)
				Expect(err).NotTo(HaveOccurred())

				want, err := grid.PureDensity(psi)
				Expect(err).NotTo(HaveOccurred())
				Expect(distance(rho, want)).To(BeNumerically("<", 1e-8))

				trace, err := grid.Trace(rho)
				Expect(err).NotTo(HaveOccurred())
				Expect(trace).To(BeNumerically("~", trace0, 1e-8))
			}
		})

		It("validates the input state", func() {
			rho := grid.UnitDensity(g)
			_, err := psiSol.Step(rho, 0)
			Expect(err).To(MatchError(qdyn.ErrBadState))

			_, err = psiSol.Step(randomState(grid1DOther(), 1), 0)
			Expect(err).To(MatchError(qdyn.ErrBadGrid))
		})
	})

	Describe("relaxation in a linear potential", func() {
		const dt = 5.0

		var relax *solver.RelaxationSolver

		BeforeEach(func() {
			lo, hi := potentialSpectrum(g)
			var err error
			relax, err = solver.NewRelaxationSolver(linearPotential(g), dt, lo, hi)
			Expect(err).NotTo(HaveOccurred())
		})

		It("damps the wave function by exp(-xt)", func() {
			psi0 := randomState(g, 23)
			psi := psi0
			for step := 0; step < 5; step++ {
				var err error
				psi, err = relax.Step(psi, float64(step)*dt)
				Expect(err).NotTo(HaveOccurred())
				Expect(distance(psi, evolved(psi0, damping(float64(step+1)*dt)))).To(BeNumerically("<", 1e-8))
			}
		})

		It("turns the unit density into exp(-Ht)", func() {
			rho := grid.UnitDensity(g)
			n := g.Size()
			points := g.Dof(0).DvrPoints()

			for step := 0; step < 5; step++ {
				var err error
				rho, err = relax.Step(rho, float64(step)*dt)
				Expect(err).NotTo(HaveOccurred())

				t := float64(step+1) * dt
				for i := 0; i < n; i++ {
					for j := 0; j < n; j++ {
						want := 0.0
						if i == j {
							want = math.Exp(-points[i] * t)
						}
						Expect(cmplx.Abs(rho.Data().At(i, j) - complex(want, 0))).To(BeNumerically("<", 1e-8))
					}
				}
			}
		})

		It("relaxes a wave packet into the ground state", func() {
			dof, err := grid.NewPlaneWaveDof(-8, 8, 64)
			Expect(err).NotTo(HaveOccurred())
			hg, err := grid.New(dof)
			Expect(err).NotTo(HaveOccurred())
			h := harmonicOscillator(hg)

			relax, err := solver.NewRelaxationSolver(h, 1, 0, 150)
			Expect(err).NotTo(HaveOccurred())

			psi := randomState(hg, 5)
			for i := 0; i < 30; i++ {
				psi, err = relax.Step(psi, 0)
				Expect(err).NotTo(HaveOccurred())
				psi, err = grid.Normalize(psi)
				Expect(err).NotTo(HaveOccurred())
			}

			energy, err := operator.ExpectationValue(h, psi)
			Expect(err).NotTo(HaveOccurred())
			Expect(real(energy)).To(BeNumerically("~", 0.5, 1e-8))
		})
	})
})

func grid1DOther() *grid.Grid {
	dof, err := grid.NewPlaneWaveDof(0, 10, 6)
	Expect(err).NotTo(HaveOccurred())
	g, err := grid.New(dof)
	Expect(err).NotTo(HaveOccurred())
	return g
}

// harmonicOscillator returns p^2/2 + x^2/2 on the first DOF of g.
func harmonicOscillator(g *grid.Grid) operator.Operator {
	kinetic, err := operator.CartesianKineticEnergy(g, 0, 1)
	Expect(err).NotTo(HaveOccurred())
	pot, err := operator.NewPotential1D(g, 0, func(x []float64) []complex128 {
		out := make([]complex128, len(x))
		for i, v := range x {
			out[i] = complex(v*v/2, 0)
		}
		return out
	})
	Expect(err).NotTo(HaveOccurred())
	h, err := operator.NewSum(kinetic, pot)
	Expect(err).NotTo(HaveOccurred())
	return h
}
