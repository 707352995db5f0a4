package convergence_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fracsim/internal/convergence"
	"github.com/san-kum/fracsim/internal/fracdyn"
)

var _ = Describe("Convergence analysis", func() {
	var (
		params fracdyn.Parameters
		opts   convergence.Options
	)

	BeforeEach(func() {
		// pure diffusion at order 2 has a known second-order scheme
		params = fracdyn.Parameters{
			Alpha:        1.0,
			Beta:         0,
			Gamma:        0,
			FractalOrder: 2.0,
			Dt:           1e-5,
			Hurst:        0.7,
		}
		opts = convergence.DefaultOptions()
	})

	Describe("the pure-diffusion refinement study", func() {
		var report *convergence.Report

		BeforeEach(func() {
			var err error
			report, err = convergence.Run(context.Background(), params, []int{16, 32, 64, 128}, opts)
			Expect(err).NotTo(HaveOccurred())
		})

		It("produces one record per coarse mesh", func() {
			Expect(report.Records).To(HaveLen(3))
			Expect(report.FinestMesh).To(Equal(128))
		})

		It("shows monotonically decreasing errors under refinement", func() {
			for i := 1; i < len(report.Records); i++ {
				Expect(report.Records[i].L2Error).To(BeNumerically("<", report.Records[i-1].L2Error),
					"mesh %d should improve on mesh %d", report.Records[i].MeshSize, report.Records[i-1].MeshSize)
			}
		})

		It("recovers the second-order spatial rate", func() {
			Expect(report.OverallOrder).To(BeNumerically("~", 2.0, 0.5))
			for _, rec := range report.Records[1:] {
				Expect(rec.EmpiricalOrder).To(BeNumerically("~", 2.0, 0.5))
			}
		})

		It("does not truncate at a stable time step", func() {
			Expect(report.Truncated).To(BeFalse())
		})

		It("serializes to JSON without loss", func() {
			data, err := json.Marshal(report)
			Expect(err).NotTo(HaveOccurred())

			var back convergence.Report
			Expect(json.Unmarshal(data, &back)).To(Succeed())
			Expect(back.OverallOrder).To(Equal(report.OverallOrder))
			Expect(back.Records).To(Equal(report.Records))
		})
	})

	Describe("input validation", func() {
		It("rejects fewer than two mesh sizes", func() {
			_, err := convergence.Run(context.Background(), params, []int{64}, opts)
			Expect(err).To(MatchError(fracdyn.ErrInsufficientData))
		})

		It("rejects meshes below the stencil minimum", func() {
			_, err := convergence.Run(context.Background(), params, []int{2, 64}, opts)
			Expect(err).To(MatchError(fracdyn.ErrGridTooSmall))
		})

		It("rejects non-increasing mesh sequences", func() {
			_, err := convergence.Run(context.Background(), params, []int{64, 32}, opts)
			Expect(err).To(MatchError(fracdyn.ErrInvalidParameter))

			_, err = convergence.Run(context.Background(), params, []int{32, 32}, opts)
			Expect(err).To(MatchError(fracdyn.ErrInvalidParameter))
		})

		It("rejects invalid model parameters before launching runs", func() {
			bad := params
			bad.Hurst = 2
			_, err := convergence.Run(context.Background(), bad, []int{16, 32}, opts)
			Expect(err).To(MatchError(fracdyn.ErrInvalidParameter))
		})
	})

	Describe("determinism", func() {
		It("reproduces the report for a fixed seed", func() {
			a, err := convergence.Run(context.Background(), params, []int{16, 32, 64}, opts)
			Expect(err).NotTo(HaveOccurred())
			b, err := convergence.Run(context.Background(), params, []int{16, 32, 64}, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Records).To(Equal(b.Records))
			Expect(a.OverallOrder).To(Equal(b.OverallOrder))
		})
	})

	Describe("holding the diffusion number", func() {
		It("completes with dt rescaled per mesh", func() {
			held := opts
			held.HoldDiffusionNumber = true
			held.NSteps = 100

			report, err := convergence.Run(context.Background(), params, []int{16, 32, 64}, held)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Records).To(HaveLen(2))
			Expect(report.Truncated).To(BeFalse())
			for i := 1; i < len(report.Records); i++ {
				Expect(report.Records[i].L2Error).To(BeNumerically("<", report.Records[i-1].L2Error))
			}
		})
	})
})
