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

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/predict"
	"github.com/san-kum/gravsim/internal/store"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const defaultPreset = "two-body"

var (
	verbosity  int
	logFile    string
	configFile string
	dt         float64
	duration   float64
	seed       uint64
	integrator string
	gravity    float64
	timeScale  float64
	planetary  bool
	closure    string
	track      uint64
	every      int
	jsonOut    string
	svgOut     string
	outFile    string
	// Sweep parameters
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "2d gravity sandbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the preset picker when no command given
			return viz.RunInteractive(tuiLogger())
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log verbosity (repeat for more)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs of the terminal views to this file")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run the sandbox in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addWorldFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run headless and report metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addWorldFlags(runCmd)
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "seconds per frame")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	runCmd.Flags().Uint64Var(&track, "track", 2, "body whose distance to the primary is plotted (0 disables)")
	runCmd.Flags().IntVar(&every, "every", 1, "record every n-th frame")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "write the recorded trace as JSON (- for stdout)")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write a final SVG snapshot")

	predictCmd := &cobra.Command{
		Use:   "predict [preset]",
		Short: "predict the orbit of every body",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPredict,
	}
	addWorldFlags(predictCmd)
	predictCmd.Flags().StringVar(&closure, "closure", string(predict.ClosureHeuristic), "loop closure test (heuristic, angular)")
	predictCmd.Flags().StringVar(&svgOut, "svg", "", "write the predicted paths as SVG")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a scenario of timed commands",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same world",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "seconds per frame")
	compareCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "rerun a preset across a parameter range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "g", "parameter (g, time_scale, proximity, theta, spread)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of runs")
	sweepCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration of each run in seconds")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [preset]",
		Short: "print a preset as a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  dumpConfig,
	}
	configCmd.Flags().StringVarP(&outFile, "out", "o", "", "write to file instead of stdout")

	rootCmd.AddCommand(liveCmd, runCmd, predictCmd, scriptCmd, compareCmd, sweepCmd, presetsCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func addWorldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&integrator, "integrator", "symplectic", "integrator")
	cmd.Flags().Uint64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().Float64Var(&gravity, "g", 1, "gravitational constant")
	cmd.Flags().Float64Var(&timeScale, "time-scale", 1, "simulated seconds per real second")
	cmd.Flags().BoolVar(&planetary, "planetary", false, "every body attracts every other")
}

// stderrLogger logs to stderr for the headless commands.
func stderrLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}

// tuiLogger keeps logs off the terminal while a view owns it.
func tuiLogger() logr.Logger {
	if logFile == "" {
		return logr.Discard()
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file: %v\n", err)
		return logr.Discard()
	}
	return funcr.New(func(prefix, args string) {
		fmt.Fprintf(f, "%s %s %s\n", time.Now().Format(time.RFC3339), prefix, args)
	}, funcr.Options{Verbosity: verbosity})
}

// resolveConfig applies preset, then config file, then changed flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	name := defaultPreset
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) == 0 {
			name = configFile
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("g") {
		cfg.Params.G = gravity
	}
	if flags.Changed("time-scale") {
		cfg.Params.TimeScale = timeScale
	}
	if flags.Changed("planetary") {
		cfg.Params.PlanetaryForces = planetary
	}
	if flags.Changed("closure") {
		cfg.Predictor.Closure = predict.Closure(closure)
	}
	return cfg, name, cfg.Validate()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	return viz.RunLive(cfg, name, tuiLogger())
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	log := stderrLogger()

	s, err := cfg.Build(log)
	if err != nil {
		return err
	}
	rec := store.NewRecorder(every)
	s.AddObserver(rec)
	s.AddMetric(metrics.NewEnergy())
	s.AddMetric(metrics.NewAngularMomentumDrift())
	s.AddMetric(metrics.NewMomentumDrift())

	fmt.Printf("running %s (%d bodies, %s)...\n", name, len(s.Bodies()), s.Integrator())
	start := time.Now()

	sc := &automation.Scenario{Name: name, Dt: cfg.Dt, Duration: cfg.Duration, Track: track}
	rep, err := automation.RunScenario(cmd.Context(), sc, s, log)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d\n", rep.Frames)
	fmt.Printf("simulated: %.2fs\n", rep.SimTime)
	fmt.Println("\nmetrics:")
	printMetrics(s.Metrics())
	fmt.Printf("  escapes: %d\n", rep.Escapes)

	if len(rep.Energy) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(rep.Energy,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("total energy"),
		))
	}
	if len(rep.Distance) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(rep.Distance,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("distance of body %d to the primary", track)),
		))
		printPeriods(rep.Distance, cfg.Dt)
	}

	if jsonOut != "" {
		data := rec.Export(s, name, cfg.Dt, cfg.Duration)
		if jsonOut == "-" {
			if err := store.ExportJSONStdout(data); err != nil {
				return err
			}
		} else if err := store.ExportJSON(jsonOut, data); err != nil {
			return err
		}
	}

	if svgOut != "" {
		s.RefreshPaths()
		scene := export.Scene{Bodies: s.Bodies(), Paths: s.Paths(), Trails: trails(rec.Frames())}
		if err := os.WriteFile(svgOut, []byte(export.SceneToSVG(scene, 800, 600)), 0o644); err != nil {
			return err
		}
		fmt.Printf("\nsnapshot: %s\n", svgOut)
	}
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func printPeriods(distance []float64, dt float64) {
	if p := analysis.DominantPeriod(distance, dt); p > 0 {
		fmt.Printf("dominant period: %.3f s\n", p)
	}
	if p := analysis.CrossingPeriod(distance, dt); p > 0 {
		fmt.Printf("crossing period: %.3f s\n", p)
	}
}

func trails(frames []store.FrameSample) map[uint64][]r2.Vec {
	out := map[uint64][]r2.Vec{}
	for _, f := range frames {
		for _, b := range f.Bodies {
			out[b.ID] = append(out[b.ID], r2.Vec{X: b.X, Y: b.Y})
		}
	}
	return out
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	s, err := cfg.Build(stderrLogger())
	if err != nil {
		return err
	}

	start := time.Now()
	s.RefreshPaths()
	elapsed := time.Since(start)
	paths := s.Paths()

	fmt.Printf("predicted %s in %v (closure: %s)\n\n", name, elapsed, s.Predictor().Closure)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tREASON\tSTEPS\tPOINTS")
	for _, b := range s.Bodies()[min(1, len(s.Bodies())):] {
		res := paths[b.ID]
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\n", b.ID, b.Kind, res.Reason, res.Steps, len(res.Points))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if svgOut != "" {
		scene := export.Scene{Bodies: s.Bodies(), Paths: paths}
		if err := os.WriteFile(svgOut, []byte(export.SceneToSVG(scene, 800, 600)), 0o644); err != nil {
			return err
		}
		fmt.Printf("\nsnapshot: %s\n", svgOut)
	}
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	log := stderrLogger()
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	s, err := sc.Sandbox(log)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	rep, err := automation.RunScenario(cmd.Context(), sc, s, log)
	if err != nil {
		return err
	}

	fmt.Printf("\nframes: %d\n", rep.Frames)
	fmt.Printf("simulated: %.2fs\n", rep.SimTime)
	fmt.Printf("commands: %d applied, %d failed\n", rep.Applied, rep.Failed)
	fmt.Printf("energy drift: %.3e\n", rep.EnergyDrift)
	fmt.Printf("stability: %.3f (%d escapes)\n", rep.Stability, rep.Escapes)
	if len(rep.Distance) > 1 {
		dt := sc.Dt
		if dt <= 0 {
			dt = config.DefaultDt
		}
		printPeriods(rep.Distance, dt)
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, name, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1fs)\n\n", name, base.Dt, base.Duration)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s\n", "integrator", "energy_drift", "stability", "time_ms")
	fmt.Println(strings.Repeat("-", 54))

	for _, intName := range args[1:] {
		cfg := base.Clone()
		cfg.Integrator = intName
		s, err := cfg.Build(logr.Discard())
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", intName, err)
			continue
		}

		start := time.Now()
		rep, err := automation.RunScenario(cmd.Context(), &automation.Scenario{Dt: cfg.Dt, Duration: cfg.Duration}, s, logr.Discard())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", intName, err)
			continue
		}

		fmt.Printf("%-12s  %12.2e  %12.3f  %12.2f\n", intName, rep.EnergyDrift, rep.Stability, float64(elapsed.Microseconds())/1000)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		Base:      base,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}
	results, err := automation.RunSweep(cmd.Context(), sweep, stderrLogger())
	if err != nil {
		return err
	}

	fmt.Printf("sweep of %s over %s\n\n", sweepParam, name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tDRIFT\tSTABILITY\tESCAPES\tMIN_E\tMAX_E")
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.2e\t%.3f\t%d\t%.4g\t%.4g\n",
			r.ParamValue, r.EnergyDrift, r.Stability, r.Escapes, r.MinEnergy, r.MaxEnergy)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tPLANETARY\tINTEGRATOR")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%v\t%s\n", name, len(cfg.Bodies), cfg.Params.PlanetaryForces, cfg.Integrator)
	}
	return w.Flush()
}

func dumpConfig(cmd *cobra.Command, args []string) error {
	name := defaultPreset
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}
	if outFile != "" {
		return config.Save(outFile, cfg)
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}
