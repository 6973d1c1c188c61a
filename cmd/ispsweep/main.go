package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/ispsweep/internal/config"
	"github.com/san-kum/ispsweep/internal/equil"
	"github.com/san-kum/ispsweep/internal/optim"
	"github.com/san-kum/ispsweep/internal/perf"
	"github.com/san-kum/ispsweep/internal/report"
	"github.com/san-kum/ispsweep/internal/storage"
	"github.com/san-kum/ispsweep/internal/sweep"
	"github.com/san-kum/ispsweep/internal/thermo"
)

var (
	dataDir  string
	logLevel string
	// Sweep overrides
	configFile      string
	preset          string
	points          int
	minRatio        float64
	maxRatio        float64
	workers         int
	onError         string
	chamberPressure float64
	exitPressure    float64
	// Output
	showTable bool
	showCurve bool
	refine    bool
	save      bool
	outFile   string
)

// main registers the commands and runs the baseline sweep when no subcommand
// is given. Any error is logged and the process exits with status 1.
func main() {
	rootCmd := &cobra.Command{
		Use:           "ispsweep",
		Short:         "LH2/LOX specific impulse versus mixture ratio",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		RunE: runBaseline,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ispsweep", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a mixture ratio sweep",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().IntVar(&points, "points", config.DefaultPoints, "number of mixture ratios")
	runCmd.Flags().Float64Var(&minRatio, "min", config.DefaultMinRatio, "lowest oxidizer-to-fuel ratio")
	runCmd.Flags().Float64Var(&maxRatio, "max", config.DefaultMaxRatio, "highest oxidizer-to-fuel ratio")
	runCmd.Flags().IntVar(&workers, "workers", 1, "parallel workers")
	runCmd.Flags().StringVar(&onError, "on-error", "abort", "failed point policy (abort, skip)")
	runCmd.Flags().Float64Var(&chamberPressure, "chamber-pressure", config.DefaultChamberPressure, "chamber pressure (Pa)")
	runCmd.Flags().Float64Var(&exitPressure, "exit-pressure", config.DefaultExitPressure, "nozzle exit pressure (Pa)")
	runCmd.Flags().BoolVar(&showTable, "table", false, "print one row per point")
	runCmd.Flags().BoolVar(&showCurve, "curve", false, "print the specific impulse curve on one line")
	runCmd.Flags().BoolVar(&refine, "refine", false, "refine the optimum mixture ratio between grid points")
	runCmd.Flags().BoolVar(&save, "save", false, "store the run in the data directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	speciesCmd := &cobra.Command{
		Use:   "species",
		Short: "list the species of the built-in chemical system",
		Args:  cobra.NoArgs,
		RunE:  listSpecies,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, exportJSONCmd, presetsCmd, speciesCmd)

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("ispsweep failed")
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(lvl)
	return nil
}

// runBaseline sweeps the default configuration and prints the curve.
func runBaseline(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	_, curve, _, err := execute(ctx, config.DefaultConfig())
	if err != nil {
		return err
	}
	fmt.Println(report.FormatCurve(curve))
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(preset, configFile)
	if err != nil {
		return nil, err
	}

	// Flags override the preset or file.
	if cmd.Flags().Changed("points") {
		cfg.Sweep.Points = points
	}
	if cmd.Flags().Changed("min") {
		cfg.Sweep.Min = minRatio
	}
	if cmd.Flags().Changed("max") {
		cfg.Sweep.Max = maxRatio
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("on-error") {
		cfg.OnError = onError
	}
	if cmd.Flags().Changed("chamber-pressure") {
		cfg.ChamberPressure = chamberPressure
	}
	if cmd.Flags().Changed("exit-pressure") {
		cfg.ExitPressure = exitPressure
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// execute runs the sweep described by cfg on the built-in system and
// computes its specific impulse curve.
func execute(ctx context.Context, cfg *config.Config) (sweep.Table, perf.Curve, time.Duration, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, nil, 0, err
	}

	sys := thermo.Builtin()
	factory := func() (*sweep.Evaluator, error) {
		return sweep.NewEvaluator(sys, cfg.Setup(), equil.New(sys))
	}
	ev, err := factory()
	if err != nil {
		return nil, nil, 0, err
	}

	ratios := cfg.Ratios()
	log.WithFields(log.Fields{
		"points":  len(ratios),
		"min":     cfg.Sweep.Min,
		"max":     cfg.Sweep.Max,
		"workers": cfg.Workers,
		"policy":  policy,
	}).Info("starting sweep")

	start := time.Now()
	table, err := sweep.Run(ctx, ev, ratios, sweep.Options{
		Workers: cfg.Workers,
		OnError: policy,
		Factory: factory,
	})
	if err != nil {
		return nil, nil, 0, err
	}
	elapsed := time.Since(start)

	curve, err := perf.Compute(table, cfg.Conditions())
	if err != nil {
		return nil, nil, 0, err
	}

	log.WithFields(log.Fields{"elapsed": elapsed, "failed": table.Failed()}).Info("sweep finished")
	return table, curve, elapsed, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	table, curve, elapsed, err := execute(ctx, cfg)
	if err != nil {
		return err
	}

	summary := report.NewSummary(table, curve, cfg.Conditions())
	summary.Preset = preset

	if refine && summary.Optimum != nil {
		sys := thermo.Builtin()
		ev, err := sweep.NewEvaluator(sys, cfg.Setup(), equil.New(sys))
		if err != nil {
			return err
		}
		refined, err := optim.RefineOptimum(ctx, ev, table, curve, cfg.Conditions(), 1e-4)
		if err != nil {
			return err
		}
		summary.Refined = &refined
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(preset, cfg, table, curve, elapsed)
		if err != nil {
			return err
		}
		summary.RunID = runID
	}

	if err := report.WriteSummary(os.Stdout, summary); err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	if showTable {
		fmt.Println(report.RenderTable(table, curve))
	}
	if showCurve {
		fmt.Println(report.FormatCurve(curve))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tPOINTS\tFAILED\tPC\tBEST_OF\tBEST_ISP")

	for _, run := range runs {
		bestOF, bestIsp := "-", "-"
		if run.Optimum != nil {
			bestOF = fmt.Sprintf("%.3f", run.Optimum.OF)
			bestIsp = fmt.Sprintf("%.2f", run.Optimum.Isp)
		}
		name := run.Preset
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3gPa\t%s\t%s\n",
			run.ID,
			name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Points,
			run.Failed,
			run.Config.ChamberPressure,
			bestOF,
			bestIsp,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, curve, err := st.LoadTable(runID)
	if err != nil {
		return err
	}

	summary := report.NewSummary(table, curve, meta.Config.Conditions())
	summary.RunID = meta.ID
	summary.Preset = meta.Preset
	if err := report.WriteSummary(os.Stdout, summary); err != nil {
		return err
	}
	fmt.Printf("chamber %.4g Pa, exit %.4g Pa, o/f %.3g..%.3g\n",
		meta.Config.ChamberPressure, meta.Config.ExitPressure, meta.Config.Sweep.Min, meta.Config.Sweep.Max)
	fmt.Println(report.RenderTable(table, curve))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, curve, err := st.LoadTable(runID)
	if err != nil {
		return err
	}

	data := report.NewExportData(meta, table, curve)
	if outFile != "" {
		return report.ExportJSONFile(outFile, data)
	}
	return report.ExportJSON(os.Stdout, data)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPOINTS\tO/F\tPC\tPE")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g..%g\t%.4gPa\t%.4gPa\n",
			name, cfg.Sweep.Points, cfg.Sweep.Min, cfg.Sweep.Max, cfg.ChamberPressure, cfg.ExitPressure)
	}
	return w.Flush()
}

func listSpecies(cmd *cobra.Command, args []string) error {
	sys := thermo.Builtin()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPHASE\tMW\tCOMPOSITION\tRANGE")
	for k := 0; k < sys.NumSpecies(); k++ {
		sp := sys.Species(k)

		elems := make([]string, 0, len(sp.Composition))
		for e, n := range sp.Composition {
			elems = append(elems, fmt.Sprintf("%s:%g", e, n))
		}
		sort.Strings(elems)

		lo, hi := sp.Thermo.Range()
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%s\t%g-%g K\n",
			sp.Name, sp.Phase, sys.MolecularWeight(k), strings.Join(elems, " "), lo, hi)
	}
	return w.Flush()
}
