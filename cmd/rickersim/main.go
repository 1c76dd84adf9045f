package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/rickersim/internal/config"
	"github.com/san-kum/rickersim/internal/experiment"
	"github.com/san-kum/rickersim/internal/logging"
	"github.com/san-kum/rickersim/internal/observability"
	"github.com/san-kum/rickersim/internal/sim"
	"github.com/san-kum/rickersim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	workers     int
	metricsFile string

	configFile string
	preset     string

	r           float64
	k           float64
	n0          float64
	steps       int
	generator   string
	metricNames []string

	rMin     float64
	rMax     float64
	rSteps   int
	kValues  []float64
	n0Values []float64
	record   int

	outPath  string
	asJSON   bool
	ascii    bool
	showPlot bool
	best     string
	setIndex int
)

// app holds the process-wide services built before any command runs.
type app struct {
	logger      *slog.Logger
	registry    *prometheus.Registry
	collector   *observability.Collector
	runner      *sim.Runner
	experiments *experiment.Registry
	store       *storage.Store
	shutdown    func(context.Context) error
}

var a *app

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)

	if a != nil {
		a.close(context.Background())
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "rickersim",
		Short:             "ricker population map simulator",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rickersim", "data directory")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		newRunCmd(),
		newGridCmd(),
		newBifurcationCmd(),
		newLyapunovCmd(),
		newDiagramCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newPresetsCmd(),
		newExploreCmd(),
		newScenarioCmd(),
		newMonteCarloCmd(),
	)

	return rootCmd
}

func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	logger, err := logging.New(env.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	shutdown, err := observability.InitTracing(cmd.Context(), env.Tracing, os.Stderr, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	reg := prometheus.NewRegistry()
	collector, err := observability.NewCollector(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	a = &app{
		logger:    logger,
		registry:  reg,
		collector: collector,
		runner: sim.NewRunner(
			sim.WithWorkers(workers),
			sim.WithLogger(logger),
			sim.WithCollector(collector),
		),
		experiments: experiment.NewRegistry(),
		store:       storage.New(dataDir, logger),
		shutdown:    shutdown,
	}
	return nil
}

func (a *app) close(ctx context.Context) {
	observability.ShutdownWithTimeout(ctx, a.shutdown, a.logger)

	if metricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(metricsFile, a.collector.Gatherer()); err != nil {
		a.logger.Warn("write metrics file failed", "path", metricsFile, "error", err)
	}
}

// output returns stdout or the file named by --out.
func output() (io.Writer, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// resolveConfig applies preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("r") {
		cfg.R = r
	}
	if flags.Changed("k") {
		cfg.K = k
	}
	if flags.Changed("n0") {
		cfg.N0 = n0
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("generator") {
		cfg.Generator = generator
	}
	if flags.Changed("metrics") {
		cfg.Metrics = metricNames
	}
	if flags.Changed("r-min") {
		cfg.Sweep.RMin = rMin
	}
	if flags.Changed("r-max") {
		cfg.Sweep.RMax = rMax
	}
	if flags.Changed("r-steps") {
		cfg.Sweep.RSteps = rSteps
	}
	if flags.Changed("k-values") {
		cfg.Sweep.K = kValues
	}
	if flags.Changed("n0-values") {
		cfg.Sweep.N0 = n0Values
	}
	if flags.Changed("record") {
		cfg.Sweep.Record = record
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&r, "r", config.DefaultR, "growth rate")
	cmd.Flags().Float64Var(&k, "k", config.DefaultK, "carrying capacity")
	cmd.Flags().Float64Var(&n0, "n0", config.DefaultN0, "initial population")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "trajectory length")
}

func addSweepFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&rMin, "r-min", config.DefaultRMin, "lowest growth rate")
	cmd.Flags().Float64Var(&rMax, "r-max", config.DefaultRMax, "highest growth rate")
	cmd.Flags().IntVar(&rSteps, "r-steps", config.DefaultRSteps, "number of growth rates")
	cmd.Flags().IntVar(&record, "record", config.DefaultRecord, "trailing values kept per growth rate")
}
