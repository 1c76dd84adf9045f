package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rickersim/internal/analysis"
	"github.com/san-kum/rickersim/internal/config"
	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBifurcationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "trailing values per growth rate as (r, n) pairs",
		Args:  cobra.NoArgs,
		RunE:  runBifurcation,
	}
	addSourceFlags(cmd)
	addParamFlags(cmd)
	addSweepFlags(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write json instead of csv")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "draw the diagram instead of writing pairs")
	return cmd
}

func newLyapunovCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lyapunov",
		Short: "lyapunov exponent per growth rate as (r, lambda) pairs",
		Args:  cobra.NoArgs,
		RunE:  runLyapunov,
	}
	addSourceFlags(cmd)
	addParamFlags(cmd)
	addSweepFlags(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "write json instead of csv")
	cmd.Flags().BoolVar(&showPlot, "plot", false, "plot lambda against r instead of writing pairs")
	return cmd
}

func newDiagramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "bifurcation diagram and lyapunov exponents side by side",
		Args:  cobra.NoArgs,
		RunE:  runDiagram,
	}
	addSourceFlags(cmd)
	addParamFlags(cmd)
	addSweepFlags(cmd)
	return cmd
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRecord(); err != nil {
		return err
	}

	points, err := analysis.Bifurcation(cfg.Rates(), cfg.K, cfg.N0, cfg.Steps, cfg.Sweep.Record, cfg.Workers)
	if err != nil {
		return err
	}
	a.logger.Debug("bifurcation complete", "rates", len(points), "record", cfg.Sweep.Record)

	w, closeOut, err := output()
	if err != nil {
		return err
	}
	defer closeOut()

	switch {
	case ascii:
		_, err = fmt.Fprint(w, analysis.BifurcationToASCII(points, 100, 30))
	case asJSON:
		err = storage.WriteJSON(w, storage.NewPairsExport(analysis.Pairs(points)))
	default:
		err = storage.WritePairsCSV(w, analysis.Pairs(points))
	}
	return err
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	results, err := lyapunovSweep(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if onset, ok := analysis.ChaosOnset(results); ok {
		a.logger.Info("chaos onset", "r", onset)
	}

	w, closeOut, err := output()
	if err != nil {
		return err
	}
	defer closeOut()

	switch {
	case showPlot:
		_, err = fmt.Fprintln(w, plotExponents(results, cfg))
	case asJSON:
		err = storage.WriteJSON(w, storage.NewStabilityExport(results))
	default:
		err = storage.WriteStabilityCSV(w, results)
	}
	return err
}

// lyapunovSweep starts every orbit at n0/k on the normalized map.
func lyapunovSweep(ctx context.Context, cfg *config.Config) ([]dynamo.Stability, error) {
	start := cfg.N0 / cfg.K
	return analysis.LyapunovSweep(ctx, cfg.Rates(), start, cfg.Steps, cfg.Workers)
}

const exponentFloor = -5.0

// plottableExponents clamps exponents for asciigraph. NaN and values below
// the floor (including -Inf) are drawn at the floor.
func plottableExponents(results []dynamo.Stability) []float64 {
	data := make([]float64, len(results))
	for i, s := range results {
		if math.IsNaN(s.Exponent) || s.Exponent < exponentFloor {
			data[i] = exponentFloor
			continue
		}
		data[i] = s.Exponent
	}
	return data
}

func plotExponents(results []dynamo.Stability, cfg *config.Config) string {
	return asciigraph.Plot(plottableExponents(results),
		asciigraph.Height(12),
		asciigraph.Width(100),
		asciigraph.Caption(fmt.Sprintf("lambda for r in [%.3g, %.3g]", cfg.Sweep.RMin, cfg.Sweep.RMax)),
	)
}

func runDiagram(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRecord(); err != nil {
		return err
	}

	var (
		points  []analysis.BifurcationPoint
		results []dynamo.Stability
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		points, err = analysis.Bifurcation(cfg.Rates(), cfg.K, cfg.N0, cfg.Steps, cfg.Sweep.Record, cfg.Workers)
		return err
	})
	g.Go(func() error {
		var err error
		results, err = lyapunovSweep(ctx, cfg)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "bifurcation (k=%.4g, n0=%.4g, last %d of %d steps)\n", cfg.K, cfg.N0, cfg.Sweep.Record, cfg.Steps)
	fmt.Fprint(os.Stdout, analysis.BifurcationToASCII(points, 100, 30))
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, plotExponents(results, cfg))

	if onset, ok := analysis.ChaosOnset(results); ok {
		fmt.Fprintf(os.Stdout, "\nfirst chaotic r: %.4f\n", onset)
	} else {
		fmt.Fprintln(os.Stdout, "\nno chaotic r in range")
	}
	return nil
}
