package solver_test

import (
	"math"
	"math/cmplx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/wavesim/internal/grid"
	"github.com/san-kum/wavesim/internal/operator"
	"github.com/san-kum/wavesim/internal/qdyn"
	"github.com/san-kum/wavesim/internal/solver"
	"github.com/san-kum/wavesim/internal/tensor"
)

var _ = Describe("Diagonalize", func() {
	expectEigenpairs := func(op operator.Operator, pairs []solver.Eigenpair, t float64) {
		for i, p := range pairs {
			Expect(p.State.IsWaveFunction()).To(BeTrue())
			hpsi := op.ApplyToWaveFunction(p.State.Data(), t)
			Expect(hpsi.MaxAbsDiff(p.State.Data().Scale(complex(p.Value, 0)))).To(BeNumerically("<", 1e-9))

			for j, q := range pairs {
				want := 0.0
				if i == j {
					want = 1
				}
				Expect(cmplx.Abs(tensor.Dot(p.State.Data(), q.State.Data()) - complex(want, 0))).
					To(BeNumerically("<", 1e-10))
			}
			if i > 0 {
				Expect(p.Value).To(BeNumerically(">=", pairs[i-1].Value))
			}
		}
	}

	It("returns the grid points for a potential", func() {
		g := grid1D()
		pot := linearPotential(g)

		pairs, err := solver.Diagonalize(pot)
		Expect(err).NotTo(HaveOccurred())
		Expect(pairs).To(HaveLen(g.Size()))

		points := g.Dof(0).DvrPoints()
		for i, p := range pairs {
			Expect(p.Value).To(BeNumerically("~", points[i], 1e-12))
		}
		expectEigenpairs(pot, pairs, 0)
	})

	It("finds the harmonic oscillator levels", func() {
		dof, err := grid.NewPlaneWaveDof(-10, 10, 128)
		Expect(err).NotTo(HaveOccurred())
		g, err := grid.New(dof)
		Expect(err).NotTo(HaveOccurred())
		h := harmonicOscillator(g)

		pairs, err := solver.Diagonalize(h)
		Expect(err).NotTo(HaveOccurred())
		for n := 0; n < 5; n++ {
			Expect(pairs[n].Value).To(BeNumerically("~", float64(n)+0.5, 1e-6))
		}
		expectEigenpairs(h, pairs[:10], 0)
	})

	It("resolves degenerate plane waves", func() {
		dof, err := grid.NewPlaneWaveDof(0, 2*math.Pi, 8)
		Expect(err).NotTo(HaveOccurred())
		g, err := grid.New(dof)
		Expect(err).NotTo(HaveOccurred())
		kinetic, err := operator.CartesianKineticEnergy(g, 0, 1)
		Expect(err).NotTo(HaveOccurred())

		pairs, err := solver.Diagonalize(kinetic)
		Expect(err).NotTo(HaveOccurred())

		want := []float64{0, 0.5, 0.5, 2, 2, 4.5, 4.5, 8}
		Expect(pairs).To(HaveLen(len(want)))
		for i, p := range pairs {
			Expect(p.Value).To(BeNumerically("~", want[i], 1e-10))
		}
		expectEigenpairs(kinetic, pairs, 0)
	})

	It("evaluates time-dependent operators at the given time", func() {
		g := grid1D()
		td, err := operator.NewTimeDependent(g, func(t float64) complex128 { return complex(t, 0) })
		Expect(err).NotTo(HaveOccurred())

		_, err = solver.Diagonalize(td)
		Expect(err).To(MatchError(qdyn.ErrUnsupported))

		pairs, err := solver.Diagonalize(td, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(pairs).To(HaveLen(g.Size()))
		for _, p := range pairs {
			Expect(p.Value).To(BeNumerically("~", 2, 1e-12))
		}
		expectEigenpairs(td, pairs, 2)
	})
})
