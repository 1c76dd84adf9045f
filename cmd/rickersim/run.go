package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/experiment"
	"github.com/san-kum/rickersim/internal/metrics"
	"github.com/san-kum/rickersim/internal/sim"
	"github.com/san-kum/rickersim/internal/storage"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "simulate one parameter set and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSourceFlags(cmd)
	addParamFlags(cmd)
	cmd.Flags().StringVar(&generator, "generator", "", "generator: scalar or vectorized (default from config)")
	cmd.Flags().StringSliceVar(&metricNames, "metrics", nil, "metrics to compute (default: all)")
	return cmd
}

func newGridCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "simulate the cross product of growth rates, capacities and initial populations",
		Args:  cobra.NoArgs,
		RunE:  runGrid,
	}
	addSourceFlags(cmd)
	addParamFlags(cmd)
	addSweepFlags(cmd)
	cmd.Flags().Float64SliceVar(&kValues, "k-values", nil, "carrying capacities (default: --k)")
	cmd.Flags().Float64SliceVar(&n0Values, "n0-values", nil, "initial populations (default: --n0)")
	cmd.Flags().StringVar(&generator, "generator", "", "generator: scalar or vectorized (default from config)")
	cmd.Flags().StringSliceVar(&metricNames, "metrics", nil, "metrics to compute")
	cmd.Flags().StringVar(&best, "best", "", "report the parameter set minimizing this metric")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(cfg.Metrics) == 0 {
		cfg.Metrics = metrics.Names()
	}

	exp, err := experiment.New(cfg, a.experiments, a.runner, a.logger)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := exp.RunSingle(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := save("run", result)
	if err != nil {
		return err
	}

	tr := result.Collection.Entries[0]
	sum := result.Summaries[0]

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("params: %s\n", tr.Params)
	fmt.Printf("final: %.6g\n", sum.Final)
	fmt.Printf("mean: %.6g  std: %.6g  min: %.6g  max: %.6g\n", sum.Mean, sum.StdDev, sum.Min, sum.Max)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics[0]))
	for name := range result.Metrics[0] {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[0][name])
	}

	return nil
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, a.experiments, a.runner, a.logger)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := exp.RunGrid(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := save("grid", result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("sets: %d (%s generator)\n\n", result.Collection.Len(), result.Generator)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SET\tR\tK\tN0\tFINAL\tMEAN\tSTD")
	for i, tr := range result.Collection.Entries {
		s := result.Summaries[i]
		fmt.Fprintf(w, "%d\t%.4g\t%.4g\t%.4g\t%.6g\t%.6g\t%.6g\n",
			i, tr.Params.R, tr.Params.K, tr.Params.N0, s.Final, s.Mean, s.StdDev)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best == "" {
		return nil
	}
	if _, err := a.experiments.Metrics([]string{best}, cfg.ParamSet()); err != nil {
		return err
	}

	p, score, err := cfg.Grid().Search(cmd.Context(), func(ctx context.Context, p dynamo.ParamSet) (float64, error) {
		ms, err := a.experiments.Metrics([]string{best}, p)
		if err != nil {
			return 0, err
		}
		res, err := sim.New(ms...).Run(ctx, p)
		if err != nil {
			return 0, err
		}
		return res.Metrics[best], nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("\nlowest %s: %.6g at %s\n", best, score, p)
	return nil
}

func save(kind string, result *experiment.Result) (string, error) {
	if err := a.store.Init(); err != nil {
		return "", err
	}
	return a.store.Save(storage.RunMetadata{
		Kind:      kind,
		Generator: result.Generator,
		Metrics:   storage.MetricValues(result.Metrics),
	}, result.Collection)
}
