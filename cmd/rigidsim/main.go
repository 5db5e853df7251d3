package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rigidsim/internal/analysis"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/export"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/optim"
	"github.com/san-kum/rigidsim/internal/physics"
	"github.com/san-kum/rigidsim/internal/scenario"
	"github.com/san-kum/rigidsim/internal/server"
	"github.com/san-kum/rigidsim/internal/storage"
	"github.com/san-kum/rigidsim/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	dt         float64
	steps      int
	iterations int
	seed       int64
	jitter     float64
	runs       int
	parallel   int
	body       string
	column     string
	plane      string
	output     string
	xAxis      string
	knobs      []string
	metricName string
	yAxis      string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rigidsim",
		Short: "rigid body physics server and scenario lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rigidsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log server diagnostics to stderr")

	runCmd := &cobra.Command{
		Use:   "run [preset|file]",
		Short: "run a scenario and store the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().Int64Var(&seed, "seed", 0, "jitter seed")
	runCmd.Flags().Float64Var(&jitter, "jitter", 0, "random offset applied to moving bodies")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a body column of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&body, "body", "", "body to plot (default every moving body)")
	plotCmd.Flags().StringVar(&column, "column", "y", "column: x, y, z, vx..wz, speed or sleeping")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw body paths of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane")
	exportSVGCmd.Flags().StringVar(&body, "body", "", "only draw this body")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a body column",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&body, "body", "", "body to analyze (default first moving body)")
	analyzeCmd.Flags().StringVar(&column, "column", "x", "column to analyze")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of two body columns",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&body, "body", "", "body to plot (default first moving body)")
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "y", "column for the x axis")
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "vy", "column for the y axis")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset|file]",
		Short: "grid search scenario knobs for the lowest metric",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneScenario,
	}
	scenarioFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&knobs, "param", nil, "knob=v1,v2,... (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to minimize")

	benchCmd := &cobra.Command{
		Use:   "bench [preset|file]",
		Short: "run jittered copies of a scenario in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScenario,
	}
	scenarioFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 8, "number of runs")
	benchCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (default GOMAXPROCS)")
	benchCmd.Flags().Int64Var(&seed, "seed", 1, "first seed")
	benchCmd.Flags().Float64Var(&jitter, "jitter", 0.01, "random offset applied to moving bodies")

	liveCmd := &cobra.Command{
		Use:   "live [preset|file]",
		Short: "step a scenario with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScenario(cmd, args[0])
			if err != nil {
				return err
			}
			return viz.Run(cfg)
		},
	}
	scenarioFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBODIES\tAREAS\tJOINTS\tSTEPS")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", name, len(cfg.Bodies), len(cfg.Areas), len(cfg.Joints), cfg.Steps)
			}
			return w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [preset]",
		Short: "write a preset as an editable scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetPreset(args[0])
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
			}
			path := output
			if path == "" {
				path = args[0] + ".yaml"
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <preset>.yaml)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportSVGCmd, analyzeCmd, phaseCmd, tuneCmd, benchCmd, liveCmd, presetsCmd, initCmd)
	return rootCmd
}

func scenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "solver iterations")
}

// loadScenario resolves arg as a preset name, then as a file. Flags the user
// set override the loaded values.
func loadScenario(cmd *cobra.Command, arg string) (*config.Config, error) {
	cfg := config.GetPreset(arg)
	if cfg == nil {
		var err error
		cfg, err = config.Load(arg)
		if err != nil {
			return nil, fmt.Errorf("not a preset (%v) or scenario file: %w", config.ListPresets(), err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("jitter") {
		cfg.Jitter = jitter
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serverOptions() []server.Option {
	if !verbose {
		return nil
	}
	return []server.Option{server.WithLogger(log.New(os.Stderr, "rigidsim: ", log.LstdFlags))}
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args[0])
	if err != nil {
		return err
	}
	if cfg.Jitter > 0 {
		cfg = scenario.Jitter(cfg, cfg.Seed, cfg.Jitter)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	r, err := scenario.New(cfg, serverOptions()...)
	if err != nil {
		return err
	}
	defer r.Close()
	for _, m := range metrics.Default(cfg) {
		r.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s (%d steps)...\n", cfg.Name, cfg.Steps)
	result, err := r.Run(ctx)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted after %d steps\n", result.Steps)
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("area events: %d\n", len(result.Events))
	fmt.Println("\nmetrics:")
	printMetrics(os.Stdout, result.Metrics)
	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, m[name])
	}
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSTEPS\tDT\tBODIES\tDONE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%v\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			len(run.Bodies),
			run.Finished,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(traj.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(traj.Times))

	bodies := []string{body}
	if body == "" {
		bodies = movingBodies(traj)
	}
	for _, b := range bodies {
		data, err := traj.Series(b, column)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s.%s vs time", b, column)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

// movingBodies lists bodies whose position changes during the run.
func movingBodies(traj *storage.Trajectory) []string {
	var names []string
	for _, t := range traj.Tracks {
		if len(t.Positions) == 0 {
			continue
		}
		for _, p := range t.Positions[1:] {
			if p.Sub(t.Positions[0]).Len() > 1e-9 {
				names = append(names, t.Body)
				break
			}
		}
	}
	return names
}

// pickBody returns the --body flag or the first moving body of the run.
func pickBody(traj *storage.Trajectory) (string, error) {
	if body != "" {
		return body, nil
	}
	moving := movingBodies(traj)
	if len(moving) == 0 {
		return "", fmt.Errorf("no moving bodies in run")
	}
	return moving[0], nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	b, err := pickBody(traj)
	if err != nil {
		return err
	}
	data, err := traj.Series(b, column)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)

	ps, _ := analysis.PowerSpectrum(data)
	plotData := ps[:max(2, len(ps)/4)]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s.%s)", b, column)),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, err := analysis.DominantFrequency(data, meta.Dt)
	if err != nil {
		return err
	}
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	if p, err := analysis.MeanPeriod(data, meta.Dt); err == nil {
		fmt.Printf("crossing period: %.3f s\n", p)
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	traj, err := storage.New(dataDir).LoadStates(args[0])
	if err != nil {
		return err
	}
	b, err := pickBody(traj)
	if err != nil {
		return err
	}
	xs, err := traj.Series(b, xAxis)
	if err != nil {
		return err
	}
	ys, err := traj.Series(b, yAxis)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s vs %s\n\n", b, yAxis, xAxis)
	fmt.Print(analysis.NewPortrait(xs, ys).ASCII(70, 20))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func openOutput() (io.WriteCloser, error) {
	if output == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(output)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	w, err := openOutput()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.ExportJSON(w, meta, traj)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	traj, err := storage.New(dataDir).LoadStates(args[0])
	if err != nil {
		return err
	}
	var bodies []string
	if body != "" {
		bodies = []string{body}
	}
	w, err := openOutput()
	if err != nil {
		return err
	}
	defer w.Close()
	return export.WriteTrajectories(w, traj, bodies, plane, 800, 600)
}

func parseKnobs(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, arg := range specs {
		name, list, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want knob=v1,v2", arg)
		}
		var vals []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad --param %q: %w", arg, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func tuneScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args[0])
	if err != nil {
		return err
	}
	names, ranges, err := parseKnobs(knobs)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	g := optim.NewGridSearch(names, ranges)
	best, val, trials, err := g.Search(context.Background(), cfg, metrics.Default, metricName)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(append(append([]string(nil), names...), strings.ToUpper(metricName)), "\t"))
	for _, t := range trials {
		cols := make([]string, 0, len(names)+1)
		for _, n := range names {
			cols = append(cols, strconv.FormatFloat(t.Params[n], 'g', 6, 64))
		}
		if t.Err != nil {
			cols = append(cols, "error: "+t.Err.Error())
		} else {
			cols = append(cols, strconv.FormatFloat(t.Value, 'f', 6, 64))
		}
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6f\n", metricName, val)
	for _, n := range names {
		fmt.Printf("  %s = %g\n", n, best[n])
	}
	return nil
}

func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args[0])
	if err != nil {
		return err
	}

	ens := scenario.NewEnsemble(cfg, runs, seed, func() []scenario.Metric {
		return metrics.Default(cfg)
	}, serverOptions()...)
	ens.SetLimit(parallel)

	fmt.Printf("benchmarking %s: %d runs x %d steps\n", cfg.Name, runs, cfg.Steps)
	start := time.Now()
	results, err := ens.Run(context.Background())
	if err != nil {
		return err
	}
	wall := time.Since(start)

	var total time.Duration
	sums := make(map[string]float64)
	sq := make(map[string]float64)
	for _, res := range results {
		total += res.Elapsed
		for k, v := range res.Metrics {
			sums[k] += v
			sq[k] += v * v
		}
	}
	n := float64(len(results))
	perStep := total / time.Duration(max(1, runs*cfg.Steps))

	fmt.Printf("wall: %v  cpu: %v  per step: %v\n", wall, total, perStep)
	if len(results) > 0 {
		p := results[0].Profile
		fmt.Println("\nlast step of run 0:")
		for e := physics.ElapsedTime(0); e < physics.ElapsedMax; e++ {
			fmt.Printf("  %-22s %v\n", e, p.Phases[e])
		}
	}

	fmt.Println("\nmetrics (mean ± std):")
	names := make([]string, 0, len(sums))
	for k := range sums {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		mean := sums[k] / n
		std := math.Sqrt(math.Max(0, sq[k]/n-mean*mean))
		fmt.Printf("  %s: %.6f ± %.6f\n", k, mean, std)
	}
	return nil
}
