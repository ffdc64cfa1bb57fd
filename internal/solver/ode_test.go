package solver_test

import (
	"math/cmplx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/wavesim/internal/expression"
	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/operator"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/solver"
)

var _ = Describe("OdeSolver", func() {
	var (
		g    *grid.Grid
		eq   *expression.SchroedingerEquation
		psi0 *grid.State
	)

	BeforeEach(func() {
		g = grid1D()
		eq = expression.NewSchroedingerEquation(linearPotential(g))
		psi0 = randomState(g, 3)
	})

	It("rejects invalid parameters", func() {
		_, err := solver.NewOdeSolver(eq, 0)
		Expect(err).To(MatchError(qdyn.ErrInvalidValue))
		_, err = solver.NewOdeSolver(eq, 1, solver.WithMethod("euler"))
		Expect(err).To(MatchError(qdyn.ErrInvalidValue))
		_, err = solver.NewOdeSolver(eq, 1, solver.WithRtol(-1))
		Expect(err).To(MatchError(qdyn.ErrInvalidValue))
		_, err = solver.NewOdeSolver(eq, 1, solver.WithMethod(solver.MethodRK4), solver.WithSubsteps(0))
		Expect(err).To(MatchError(qdyn.ErrInvalidValue))
	})

	It("propagates adaptively within the tolerance", func() {
		s, err := solver.NewOdeSolver(eq, 1, solver.WithRtol(1e-10), solver.WithAtol(1e-10))
		Expect(err).NotTo(HaveOccurred())

		psi := psi0
		for step := 0; step < 3; step++ {
			psi, err = s.Step(psi, float64(step))
			Expect(err).NotTo(HaveOccurred())
			Expect(psi.Data().Shape()).To(Equal(psi0.Data().Shape()))
			Expect(distance(psi, evolved(psi0, phase(float64(step+1))))).To(BeNumerically("<", 1e-6))
		}
	})

	It("propagates with fixed RK4 substeps", func() {
		s, err := solver.NewOdeSolver(eq, 1, solver.WithMethod(solver.MethodRK4), solver.WithSubsteps(200))
		Expect(err).NotTo(HaveOccurred())

		psi, err := s.Step(psi0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(distance(psi, evolved(psi0, phase(1)))).To(BeNumerically("<", 1e-5))
	})

	It("handles time-dependent expressions", func() {
		td, err := operator.NewTimeDependent(g, func(t float64) complex128 { return complex(t, 0) })
		Expect(err).NotTo(HaveOccurred())
		s, err := solver.NewOdeSolver(expression.NewSchroedingerEquation(td), 2,
			solver.WithRtol(1e-10), solver.WithAtol(1e-10))
		Expect(err).NotTo(HaveOccurred())

		psi, err := s.Step(psi0, 0)
		Expect(err).NotTo(HaveOccurred())
		// dpsi/dt = -i t psi, so psi(2) = exp(-2i) psi(0)
		want := psi0.Mul(cmplx.Exp(-2i))
		Expect(distance(psi, want)).To(BeNumerically("<", 1e-6))
	})

	It("propagates density operators", func() {
		s, err := solver.NewOdeSolver(expression.NewCommutatorLiouvillian(linearPotential(g)), 1,
			solver.WithRtol(1e-10), solver.WithAtol(1e-10))
		Expect(err).NotTo(HaveOccurred())

		rho0, err := grid.PureDensity(psi0)
		Expect(err).NotTo(HaveOccurred())
		rho, err := s.Step(rho0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(rho.IsDensityOperator()).To(BeTrue())

		want, err := grid.PureDensity(evolved(psi0, phase(1)))
		Expect(err).NotTo(HaveOccurred())
		Expect(distance(rho, want)).To(BeNumerically("<", 1e-6))
	})

	It("passes state errors through", func() {
		s, err := solver.NewOdeSolver(eq, 1)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Step(grid.UnitDensity(g), 0)
		Expect(err).To(MatchError(qdyn.ErrBadState))
	})

	It("reports integrator failures as execution errors", func() {
		s, err := solver.NewOdeSolver(eq, 5, solver.WithRtol(1e-12), solver.WithAtol(1e-12), solver.WithMaxSteps(1))
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Step(psi0, 0)
		Expect(err).To(MatchError(qdyn.ErrExecution))
	})
})
