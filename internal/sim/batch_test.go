package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/metrics"
	"github.com/san-kum/rickersim/internal/sim"
)

func seriesValues(p dynamo.ParamSet) []float64 {
	tr, err := sim.Series(p)
	Expect(err).NotTo(HaveOccurred())
	return tr.Values
}

var _ = Describe("RunBatch", func() {
	It("matches the scalar generator for a single entry", func() {
		p := dynamo.ParamSet{R: 3.0, K: 100, N0: 50, Steps: 1000}
		b, err := sim.RunBatch(sim.BatchInput{
			R: []float64{p.R}, K: []float64{p.K}, N0: []float64{p.N0}, Steps: p.Steps,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Trajectory(0).Values).To(Equal(seriesValues(p)))
	})

	It("matches the scalar generator row by row", func() {
		in := sim.BatchInput{
			R:     []float64{0.5, 1.5, 2.3, 2.6, 3.0, 3.5},
			K:     []float64{100},
			N0:    []float64{1, 10, 50, 90, 150, 5},
			Steps: 400,
		}
		b, err := sim.RunBatch(in)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Len()).To(Equal(6))
		Expect(b.Steps()).To(Equal(400))

		rows, cols := b.Matrix().Dims()
		Expect(rows).To(Equal(6))
		Expect(cols).To(Equal(400))

		for i := 0; i < b.Len(); i++ {
			want := seriesValues(in.Params(i))
			got := b.Trajectory(i).Values
			for t := range want {
				Expect(math.Abs(got[t]-want[t])).To(BeNumerically("<=", 1e-12),
					"row %d step %d", i, t+1)
			}
		}
	})

	It("keeps the initial value in the first column", func() {
		b, err := sim.RunBatch(sim.BatchInput{
			R: []float64{2, 2}, K: []float64{10, 20}, N0: []float64{3, 4}, Steps: 5,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Matrix().At(0, 0)).To(Equal(3.0))
		Expect(b.Matrix().At(1, 0)).To(Equal(4.0))
		Expect(b.Params(1).K).To(Equal(20.0))
	})

	It("returns only the initial column for a single step", func() {
		b, err := sim.RunBatch(sim.BatchInput{
			R: []float64{1, 2}, K: []float64{0}, N0: []float64{7}, Steps: 1,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Trajectory(0).Values).To(Equal([]float64{7}))
		Expect(b.Trajectory(1).Values).To(Equal([]float64{7}))
	})

	It("returns trailing values of a row", func() {
		b, err := sim.RunBatch(sim.BatchInput{
			R: []float64{0}, K: []float64{1}, N0: []float64{0.25}, Steps: 10,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Tail(0, 3)).To(Equal([]float64{0.25, 0.25, 0.25}))
		Expect(b.Tail(0, 0)).To(BeNil())
		Expect(b.Tail(0, 50)).To(HaveLen(10))
	})

	DescribeTable("rejects malformed input",
		func(in sim.BatchInput, sentinel error) {
			_, err := sim.RunBatch(in)
			Expect(errors.Is(err, sentinel)).To(BeTrue(), "got %v", err)

			var shape *dynamo.ShapeError
			Expect(errors.As(err, &shape)).To(BeTrue())
		},
		Entry("empty", sim.BatchInput{K: []float64{1}, N0: []float64{1}, Steps: 3}, dynamo.ErrEmptyBatch),
		Entry("k length", sim.BatchInput{R: []float64{1, 2, 3}, K: []float64{1, 2}, N0: []float64{1}, Steps: 3}, dynamo.ErrShapeMismatch),
		Entry("n0 length", sim.BatchInput{R: []float64{1, 2}, K: []float64{1}, N0: []float64{1, 2, 3}, Steps: 3}, dynamo.ErrShapeMismatch),
		Entry("zero steps", sim.BatchInput{R: []float64{1}, K: []float64{1}, N0: []float64{1}, Steps: 0}, dynamo.ErrInvalidSteps),
	)
})

var _ = Describe("BatchFromParams", func() {
	It("packs equal-length sets", func() {
		ps := []dynamo.ParamSet{
			{R: 1, K: 10, N0: 2, Steps: 4},
			{R: 2, K: 20, N0: 3, Steps: 4},
		}
		in, err := sim.BatchFromParams(ps)
		Expect(err).NotTo(HaveOccurred())
		Expect(in.Params(0)).To(Equal(ps[0]))
		Expect(in.Params(1)).To(Equal(ps[1]))
	})

	It("rejects ragged lengths", func() {
		_, err := sim.BatchFromParams([]dynamo.ParamSet{
			{R: 1, K: 1, N0: 1, Steps: 4},
			{R: 1, K: 1, N0: 1, Steps: 5},
		})
		Expect(errors.Is(err, dynamo.ErrRaggedBatch)).To(BeTrue())
	})

	It("rejects an empty list", func() {
		_, err := sim.BatchFromParams(nil)
		Expect(errors.Is(err, dynamo.ErrEmptyBatch)).To(BeTrue())
	})
})

var _ = Describe("GroupBySteps", func() {
	It("groups by length in ascending order", func() {
		groups := sim.GroupBySteps([]dynamo.ParamSet{
			{Steps: 30}, {Steps: 10}, {Steps: 30}, {Steps: 20}, {Steps: 10},
		})
		Expect(groups).To(HaveLen(3))
		Expect(groups[0]).To(Equal(sim.StepGroup{Steps: 10, Indices: []int{1, 4}}))
		Expect(groups[1]).To(Equal(sim.StepGroup{Steps: 20, Indices: []int{3}}))
		Expect(groups[2]).To(Equal(sim.StepGroup{Steps: 30, Indices: []int{0, 2}}))
	})
})

var _ = Describe("Runner", func() {
	var (
		runner *sim.Runner
		ps     []dynamo.ParamSet
	)

	BeforeEach(func() {
		runner = sim.NewRunner(sim.WithWorkers(3))
		ps = []dynamo.ParamSet{
			{R: 1.5, K: 100, N0: 20, Steps: 50},
			{R: 2.3, K: 100, N0: 20, Steps: 80},
			{R: 2.6, K: 50, N0: 5, Steps: 50},
			{R: 3.0, K: 100, N0: 50, Steps: 120},
			{R: 0, K: 1, N0: 0.5, Steps: 1},
		}
	})

	It("uses the requested worker count", func() {
		Expect(runner.Workers()).To(Equal(3))
	})

	It("produces the same collection from both generators", func() {
		scalar, err := runner.Scalar(context.Background(), ps)
		Expect(err).NotTo(HaveOccurred())
		vectorized, err := runner.Vectorized(context.Background(), ps)
		Expect(err).NotTo(HaveOccurred())

		Expect(scalar.Len()).To(Equal(len(ps)))
		Expect(vectorized.Len()).To(Equal(len(ps)))

		for i, p := range ps {
			s, ok := scalar.Get(i)
			Expect(ok).To(BeTrue())
			v, ok := vectorized.Get(i)
			Expect(ok).To(BeTrue())

			Expect(s.Params).To(Equal(p))
			Expect(v.Params).To(Equal(p))
			Expect(v.Values).To(HaveLen(p.Steps))
			Expect(v.Values).To(Equal(s.Values))
		}
	})

	It("observes metrics while running scalar sets", func() {
		coll, values, err := runner.ScalarMetered(context.Background(), ps, func(p dynamo.ParamSet) ([]dynamo.Metric, error) {
			return []dynamo.Metric{metrics.NewMean(), metrics.NewBounded(p.K * 3)}, nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(HaveLen(len(ps)))

		for i, p := range ps {
			want := seriesValues(p)
			Expect(coll.Entries[i].Values).To(Equal(want))

			mean := metrics.NewMean()
			for j, v := range want {
				mean.Observe(j+1, v)
			}
			Expect(values[i]).To(HaveKeyWithValue("mean", mean.Value()))
			Expect(values[i]).To(HaveKey("bounded"))
		}
	})

	It("reports metric factory errors", func() {
		boom := errors.New("no metrics")
		_, _, err := runner.ScalarMetered(context.Background(), ps, func(dynamo.ParamSet) ([]dynamo.Metric, error) {
			return nil, boom
		})
		Expect(err).To(MatchError(boom))
	})

	It("returns an empty collection for no parameter sets", func() {
		coll, err := runner.Vectorized(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(coll.Len()).To(BeZero())

		coll, err = runner.Scalar(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(coll.Len()).To(BeZero())
	})

	It("reports invalid parameter sets", func() {
		ps[2].Steps = 0
		_, err := runner.Scalar(context.Background(), ps)
		Expect(errors.Is(err, dynamo.ErrInvalidSteps)).To(BeTrue())

		_, err = runner.Vectorized(context.Background(), ps)
		Expect(errors.Is(err, dynamo.ErrInvalidSteps)).To(BeTrue())
	})

	It("stops on a canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := runner.Scalar(ctx, ps)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())

		_, err = runner.Vectorized(ctx, ps)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})
