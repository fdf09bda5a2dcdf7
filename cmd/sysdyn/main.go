package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/sysdyn/internal/analysis"
	"github.com/san-kum/sysdyn/internal/behavior"
	"github.com/san-kum/sysdyn/internal/config"
	"github.com/san-kum/sysdyn/internal/export"
	"github.com/san-kum/sysdyn/internal/models"
	"github.com/san-kum/sysdyn/internal/sim"
	"github.com/san-kum/sysdyn/internal/storage"
	"github.com/san-kum/sysdyn/internal/sweep"
	"github.com/san-kum/sysdyn/internal/tui"
	"github.com/san-kum/sysdyn/internal/units"
	"github.com/san-kum/sysdyn/internal/viz"
)

var (
	dataDir      string
	dt           float64
	duration     float64
	configFile   string
	preset       string
	paramFlags   []string
	stockFlags   []string
	plotNames    []string
	save         bool
	skipAnalysis bool
	epsilon      float64
	threshold    float64
	workers      int
	outPath      string
	svgPath      string
	gridFlags    []string
	minimizeCol  string
	maximizeCol  string
	verbose      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sysdyn",
		Short: "stock and flow simulation lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sysdyn", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation and chart the results",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringSliceVar(&plotNames, "plot", nil, "columns to chart (default: stocks)")
	runCmd.Flags().BoolVar(&save, "save", false, "persist the run to the data directory")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		RunE:  listModels,
	}

	loopsCmd := &cobra.Command{
		Use:   "loops [model]",
		Short: "detect and classify feedback loops",
		Args:  cobra.ExactArgs(1),
		RunE:  showLoops,
	}
	addRunFlags(loopsCmd)

	linksCmd := &cobra.Command{
		Use:   "links [model]",
		Short: "estimate link polarities",
		Args:  cobra.ExactArgs(1),
		RunE:  showLinks,
	}
	addRunFlags(linksCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotNames, "plot", nil, "columns to chart (default: all)")

	exportCmd := &cobra.Command{
		Use:   "export [model]",
		Short: "run a simulation and export it as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportModel,
	}
	addRunFlags(exportCmd)
	exportCmd.Flags().StringVar(&outPath, "out", "run.json", "output path")
	exportCmd.Flags().StringVar(&svgPath, "svg", "", "also write an svg chart to this path")
	exportCmd.Flags().StringSliceVar(&plotNames, "plot", nil, "columns for the svg chart (default: stocks)")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "watch a simulation run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if names == nil {
				return fmt.Errorf("no presets for model %q", args[0])
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "grid-search parameter values against an objective",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&gridFlags, "grid", nil, "sweep range, name=from:to:steps")
	sweepCmd.Flags().StringVar(&minimizeCol, "minimize", "", "column whose final value to minimize")
	sweepCmd.Flags().StringVar(&maximizeCol, "maximize", "", "column whose final value to maximize")

	rootCmd.AddCommand(runCmd, modelsCmd, loopsCmd, linksCmd, listCmd, plotCmd, exportCmd, liveCmd, presetsCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep magnitude (default: model's own)")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration in the model's time unit")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset configuration name")
	cmd.Flags().StringArrayVar(&paramFlags, "param", nil, "parameter override, name=value")
	cmd.Flags().StringArrayVar(&stockFlags, "stock", nil, "initial stock override, name=value")
	cmd.Flags().BoolVar(&skipAnalysis, "skip-analysis", false, "skip structural analysis")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0, "perturbation size (default 1e-6)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "influence threshold (default 1e-12)")
	cmd.Flags().IntVar(&workers, "workers", 0, "perturbation workers (default: NumCPU)")
}

// resolveConfig layers preset, config file and flags, in that order of
// increasing precedence.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", preset, config.ListPresets(model))
		}
		*cfg = *p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		loaded.Model = model
		mergeOverrides(loaded, cfg)
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cfg.Duration <= 0 {
		cfg.Duration = config.DefaultDuration
	}
	cfg.Analysis.Skip = cfg.Analysis.Skip || skipAnalysis
	if cmd.Flags().Changed("epsilon") {
		cfg.Analysis.Epsilon = epsilon
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Analysis.Threshold = threshold
	}
	if cmd.Flags().Changed("workers") {
		cfg.Analysis.Workers = workers
	}

	for _, f := range paramFlags {
		name, value, err := splitOverride(f)
		if err != nil {
			return nil, err
		}
		if cfg.Parameters == nil {
			cfg.Parameters = map[string]float64{}
		}
		cfg.Parameters[name] = value
	}
	for _, f := range stockFlags {
		name, value, err := splitOverride(f)
		if err != nil {
			return nil, err
		}
		if cfg.Stocks == nil {
			cfg.Stocks = map[string]float64{}
		}
		cfg.Stocks[name] = value
	}
	return cfg, nil
}

// mergeOverrides carries preset overrides into a loaded config file
// where the file leaves them unset.
func mergeOverrides(dst, src *config.Config) {
	if dst.Parameters == nil {
		dst.Parameters = src.Parameters
	}
	if dst.Stocks == nil {
		dst.Stocks = src.Stocks
	}
	if dst.Dt == 0 {
		dst.Dt = src.Dt
	}
	if dst.Duration == 0 {
		dst.Duration = src.Duration
	}
}

func splitOverride(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("override %q is not name=value", s)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("override %q: %w", s, err)
	}
	return name, value, nil
}

func buildSimulation(cmd *cobra.Command, model string) (*sim.Simulation, *config.Config, error) {
	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return nil, nil, err
	}
	m, err := models.NewRegistry().Build(model)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Apply(m); err != nil {
		return nil, nil, err
	}
	simn, err := sim.New(m.System, sim.Config{
		Timestep: cfg.Timestep(m),
		Analysis: analysis.Options{
			Epsilon:   cfg.Analysis.Epsilon,
			Threshold: cfg.Analysis.Threshold,
			Workers:   cfg.Analysis.Workers,
		},
		SkipAnalysis: cfg.Analysis.Skip,
	})
	if err != nil {
		return nil, nil, err
	}
	return simn, cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	simn, cfg, err := buildSimulation(cmd, args[0])
	if err != nil {
		return err
	}
	if err := simn.Run(units.Raw(cfg.Duration)); err != nil {
		return err
	}

	res := simn.Results()
	names := plotNames
	if len(names) == 0 {
		names = simn.System().StockNames()
	}
	fmt.Println(viz.PlotColumns(res, names, viz.ChartOptions{}))
	fmt.Println()
	fmt.Println(viz.LoopReport(simn.Structure()))

	descs := make([]behavior.Descriptor, 0, len(res.Columns))
	for _, col := range res.Columns {
		descs = append(descs, behavior.Describe(col, res.Magnitudes(col), simn.Timestep().Magnitude(), behavior.Options{}))
	}
	fmt.Println(viz.BehaviorReport(descs))

	if save {
		dir := dataDir
		if cfg.Output.Dir != "" {
			dir = cfg.Output.Dir
		}
		st := storage.New(dir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(args[0], simn)
		if err != nil {
			return err
		}
		fmt.Println("saved run", runID)
	}
	return nil
}

func listModels(cmd *cobra.Command, args []string) error {
	reg := models.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, name := range reg.Names() {
		m, err := reg.Build(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", name, m.Description)
	}
	return w.Flush()
}

func showLoops(cmd *cobra.Command, args []string) error {
	simn, _, err := buildSimulation(cmd, args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.LoopReport(simn.Structure()))
	return nil
}

func showLinks(cmd *cobra.Command, args []string) error {
	simn, _, err := buildSimulation(cmd, args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.LinkReport(simn.Structure(), simn.System()))
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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSTEPS\tDT\tLOOPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4g %s\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.TimeUnit,
			len(run.Loops),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	_, series, err := st.LoadResults(args[0])
	if err != nil {
		return err
	}

	want := map[string]bool{}
	for _, name := range plotNames {
		want[name] = true
	}
	for _, s := range series {
		if len(want) > 0 && !want[s.Name] {
			continue
		}
		caption := s.Name
		if s.Unit != "" {
			caption = fmt.Sprintf("%s (%s)", s.Name, s.Unit)
		}
		fmt.Println(viz.PlotSeries(s.Values, caption, viz.ChartOptions{}))
		fmt.Println()
	}
	return nil
}

func exportModel(cmd *cobra.Command, args []string) error {
	simn, cfg, err := buildSimulation(cmd, args[0])
	if err != nil {
		return err
	}
	if err := simn.Run(units.Raw(cfg.Duration)); err != nil {
		return err
	}
	if err := storage.ExportJSON(outPath, args[0], simn); err != nil {
		return err
	}
	fmt.Println("exported", outPath)

	if svgPath != "" {
		names := plotNames
		if len(names) == 0 {
			names = simn.System().StockNames()
		}
		if err := export.WriteChart(svgPath, simn.Results(), names, 0, 0); err != nil {
			return err
		}
		fmt.Println("exported", svgPath)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if (minimizeCol == "") == (maximizeCol == "") {
		return fmt.Errorf("exactly one of --minimize or --maximize is required")
	}
	names, ranges, err := parseGrids(gridFlags)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	cfg.Analysis.Skip = true

	build := func(params map[string]float64) (*sim.Simulation, error) {
		m, err := models.NewRegistry().Build(args[0])
		if err != nil {
			return nil, err
		}
		if err := cfg.Apply(m); err != nil {
			return nil, err
		}
		override := &config.Config{Parameters: params}
		if err := override.Apply(m); err != nil {
			return nil, err
		}
		return sim.New(m.System, sim.Config{Timestep: cfg.Timestep(m), SkipAnalysis: true})
	}

	col := minimizeCol
	flip := 1.0
	if maximizeCol != "" {
		col, flip = maximizeCol, -1.0
	}
	objective := func(res *sim.Results) float64 {
		series := res.Magnitudes(col)
		if len(series) == 0 {
			return math.Inf(1)
		}
		return flip * series[len(series)-1]
	}

	best, score, err := sweep.New(names, ranges).Search(cmd.Context(), build, units.Raw(cfg.Duration), objective)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no grid cell produced a usable run")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMETER\tBEST VALUE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%g\n", name, best[name])
	}
	fmt.Fprintf(w, "final %s\t%g\n", col, flip*score)
	return w.Flush()
}

// parseGrids turns name=from:to:steps flags into sweep inputs.
func parseGrids(flags []string) ([]string, [][]float64, error) {
	if len(flags) == 0 {
		return nil, nil, fmt.Errorf("at least one --grid is required")
	}
	names := make([]string, 0, len(flags))
	ranges := make([][]float64, 0, len(flags))
	for _, f := range flags {
		name, spec, ok := strings.Cut(f, "=")
		if !ok {
			return nil, nil, fmt.Errorf("grid %q is not name=from:to:steps", f)
		}
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, nil, fmt.Errorf("grid %q is not name=from:to:steps", f)
		}
		from, err1 := strconv.ParseFloat(parts[0], 64)
		to, err2 := strconv.ParseFloat(parts[1], 64)
		steps, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, nil, fmt.Errorf("grid %q is not name=from:to:steps", f)
		}
		names = append(names, name)
		ranges = append(ranges, sweep.Span(from, to, steps))
	}
	return names, ranges, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	return tui.Run(args[0], func() (*sim.Simulation, error) {
		simn, _, err := buildSimulation(cmd, args[0])
		return simn, err
	})
}
