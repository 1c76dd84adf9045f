package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rickersim/internal/analysis"
	"github.com/san-kum/rickersim/internal/metrics"
	"github.com/san-kum/rickersim/internal/storage"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a trajectory of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().IntVar(&setIndex, "set", 0, "parameter set index within the run")
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export trajectories as set,r,k,n0,step,n rows",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export trajectories as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := a.store.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tSETS\tGENERATOR\tFIRST")

	for _, run := range runs {
		first := "-"
		if len(run.Sets) > 0 {
			first = run.Sets[0].String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID,
			run.Kind,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			len(run.Sets),
			run.Generator,
			first,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	meta, err := a.store.Load(runID)
	if err != nil {
		return err
	}

	coll, err := a.store.LoadCollection(runID)
	if err != nil {
		return err
	}

	tr, ok := coll.Get(setIndex)
	if !ok {
		return fmt.Errorf("run %s has %d parameter sets, no set %d", runID, coll.Len(), setIndex)
	}
	if tr.Len() < 2 {
		return fmt.Errorf("no data to plot")
	}
	if !tr.IsFinite() {
		return fmt.Errorf("set %d contains non-finite values", setIndex)
	}

	sum := metrics.Summarize(tr.Values)
	spectrum := analysis.PowerSpectrum(tr.Values)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("set %d: %s\n", setIndex, tr.Params)
	fmt.Printf("samples: %d\n\n", tr.Len())

	fmt.Println(asciigraph.Plot(tr.Values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("n(t)"),
	))

	fmt.Printf("\nmean: %.6g  std: %.6g  min: %.6g  max: %.6g\n", sum.Mean, sum.StdDev, sum.Min, sum.Max)
	if p := analysis.DetectPeriod(tr.Tail(64), 16, 1e-6*tr.Params.K); p != analysis.Aperiodic {
		fmt.Printf("period: %d\n", p)
	} else {
		fmt.Println("period: none")
	}
	if p := spectrum.DominantPeriod(); p > 0 {
		fmt.Printf("dominant spectral period: %.3g steps\n", p)
	}

	fmt.Println("\nreturn map:")
	fmt.Print(analysis.ReturnMapToASCII(analysis.ReturnMap(tr.Values), 60, 20))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	coll, err := a.store.LoadCollection(args[0])
	if err != nil {
		return err
	}

	w, closeOut, err := output()
	if err != nil {
		return err
	}
	defer closeOut()

	return storage.WriteCollectionCSV(w, coll)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	meta, err := a.store.Load(runID)
	if err != nil {
		return err
	}
	coll, err := a.store.LoadCollection(runID)
	if err != nil {
		return err
	}

	w, closeOut, err := output()
	if err != nil {
		return err
	}
	defer closeOut()

	return storage.WriteJSON(w, storage.NewCollectionExport(meta.Generator, coll))
}
