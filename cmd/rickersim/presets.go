package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/rickersim/internal/config"
	"github.com/san-kum/rickersim/internal/tui"
	"github.com/spf13/cobra"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}
}

func newExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "interactive parameter explorer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return tui.Run(cfg.ParamSet())
		},
	}
	addSourceFlags(cmd)
	addParamFlags(cmd)
	return cmd
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tR\tK\tN0\tSTEPS\tGENERATOR\tSWEEP")

	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%d\t%s\t[%.4g, %.4g] x %d\n",
			name, cfg.R, cfg.K, cfg.N0, cfg.Steps, cfg.Generator,
			cfg.Sweep.RMin, cfg.Sweep.RMax, cfg.Sweep.RSteps,
		)
	}

	return w.Flush()
}
