package solver_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/wavesim/internal/expression"
	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/solver"
)

var _ = Describe("Propagate", func() {
	var (
		s    solver.Solver
		psi0 *grid.State
	)

	BeforeEach(func() {
		g := grid1D()
		lo, hi := potentialSpectrum(g)
		var err error
		s, err = solver.NewChebychevSolver(expression.NewSchroedingerEquation(linearPotential(g)), 0.5, lo, hi)
		Expect(err).NotTo(HaveOccurred())
		psi0 = randomState(g, 11)
	})

	It("yields the initial state on request", func() {
		var times []float64
		var first *grid.State
		err := solver.Propagate(context.Background(), s, psi0, 1, 4, true, func(t float64, st *grid.State) error {
			if first == nil {
				first = st
			}
			times = append(times, t)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(times).To(Equal([]float64{1, 1.5, 2, 2.5, 3}))
		Expect(first).To(BeIdenticalTo(psi0))
	})

	It("matches repeated steps", func() {
		last, err := solver.Final(context.Background(), s, psi0, 0, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(distance(last, evolved(psi0, phase(1.5)))).To(BeNumerically("<", 1e-10))

		same, err := solver.Final(context.Background(), s, psi0, 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(same).To(BeIdenticalTo(psi0))
	})

	It("rejects a negative number of steps", func() {
		err := solver.Propagate(context.Background(), s, psi0, 0, -1, false, func(float64, *grid.State) error { return nil })
		Expect(err).To(MatchError(qdyn.ErrInvalidValue))
	})

	It("stops when the callback fails", func() {
		stop := errors.New("stop")
		calls := 0
		err := solver.Propagate(context.Background(), s, psi0, 0, 10, false, func(float64, *grid.State) error {
			calls++
			if calls == 2 {
				return stop
			}
			return nil
		})
		Expect(err).To(MatchError(stop))
		Expect(calls).To(Equal(2))
	})

	It("honours cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := solver.Propagate(ctx, s, psi0, 0, 10, false, func(float64, *grid.State) error {
			calls++
			cancel()
			return nil
		})
		Expect(err).To(MatchError(context.Canceled))
		Expect(calls).To(Equal(1))
	})
})
