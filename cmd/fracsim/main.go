package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fracsim/internal/config"
	"github.com/san-kum/fracsim/internal/convergence"
	"github.com/san-kum/fracsim/internal/diagnostics"
	"github.com/san-kum/fracsim/internal/fracdyn"
	"github.com/san-kum/fracsim/internal/stability"
	"github.com/san-kum/fracsim/internal/storage"
	"github.com/san-kum/fracsim/internal/viz"
)

var (
	dataDir string

	alpha        float64
	beta         float64
	gamma        float64
	fractalOrder float64
	dt           float64
	hurst        float64

	nx           int
	nt           int
	nSteps       int
	domainSize   float64
	saveInterval int
	seed         int64
	blowup       float64

	methods      []string
	perturbation float64
	meshSizes    []int
	holdRatio    bool

	numRuns    int
	frameRate  int
	configFile string
	preset     string
	noSave     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fracsim",
		Short: "stability and convergence lab for a stochastic-fractional PDE",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fracsim", "data directory")

	stabilityCmd := &cobra.Command{
		Use:   "stability",
		Short: "classify a discretization as stable or unstable",
		RunE:  runStability,
	}
	addParamFlags(stabilityCmd)
	stabilityCmd.Flags().IntVar(&nx, "nx", config.DefaultNX, "grid points")
	stabilityCmd.Flags().IntVar(&nt, "nt", config.DefaultNT, "time steps")
	stabilityCmd.Flags().IntVar(&saveInterval, "save-interval", config.DefaultSaveInterval, "checkpoint interval")
	stabilityCmd.Flags().StringSliceVar(&methods, "methods", nil, "subset of linear,trajectory,energy,spectral,statistical")
	stabilityCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-6, "perturbation amplitude")
	stabilityCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	stabilityCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	stabilityCmd.Flags().BoolVar(&noSave, "no-save", false, "skip writing the run to the data directory")

	convergenceCmd := &cobra.Command{
		Use:   "convergence",
		Short: "estimate the empirical order across mesh sizes",
		RunE:  runConvergence,
	}
	addParamFlags(convergenceCmd)
	convergenceCmd.Flags().IntSliceVar(&meshSizes, "meshes", []int{16, 32, 64, 128}, "increasing mesh sizes")
	convergenceCmd.Flags().IntVar(&nSteps, "steps", config.DefaultNSteps, "time steps per mesh")
	convergenceCmd.Flags().BoolVar(&holdRatio, "hold-ratio", false, "rescale dt per mesh to hold dx^2/dt constant")
	convergenceCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	convergenceCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	convergenceCmd.Flags().BoolVar(&noSave, "no-save", false, "skip writing the run to the data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "evolve the field and print diagnostics",
		RunE:  runSimulation,
	}
	addParamFlags(runCmd)
	runCmd.Flags().IntVar(&nx, "nx", config.DefaultNX, "grid points")
	runCmd.Flags().IntVar(&nt, "nt", config.DefaultNT, "time steps")
	runCmd.Flags().IntVar(&saveInterval, "save-interval", config.DefaultSaveInterval, "checkpoint interval")
	runCmd.Flags().IntVar(&numRuns, "runs", 1, "ensemble size (independent noise seeds)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip writing the run to the data directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the field evolve in the terminal",
		RunE:  runLive,
	}
	addParamFlags(liveCmd)
	liveCmd.Flags().IntVar(&nx, "nx", config.DefaultNX, "grid points")
	liveCmd.Flags().IntVar(&nt, "nt", 20000, "time steps to prepare noise for")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum",
		Short: "evolve the field and plot its final power spectrum",
		RunE:  runSpectrum,
	}
	addParamFlags(spectrumCmd)
	spectrumCmd.Flags().IntVar(&nx, "nx", config.DefaultNX, "grid points")
	spectrumCmd.Flags().IntVar(&nt, "nt", config.DefaultNT, "time steps")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run's checkpoint series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run's report to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSONStdout(args[0])
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored run's checkpoint series to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [analysis]",
		Short: "list available presets for an analysis kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for analysis: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, name := range names {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the evolver across grid sizes",
		RunE:  benchEvolver,
	}
	addParamFlags(benchCmd)

	rootCmd.AddCommand(stabilityCmd, convergenceCmd, runCmd, liveCmd, spectrumCmd,
		listCmd, plotCmd, exportJSONCmd, exportCSVCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&alpha, "alpha", fracdyn.DefaultAlpha, "diffusion gain")
	cmd.Flags().Float64Var(&beta, "beta", fracdyn.DefaultBeta, "noise gain")
	cmd.Flags().Float64Var(&gamma, "gamma", fracdyn.DefaultGamma, "cubic damping gain")
	cmd.Flags().Float64Var(&fractalOrder, "order", fracdyn.DefaultFractalOrder, "fractional operator order")
	cmd.Flags().Float64Var(&dt, "dt", fracdyn.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&hurst, "hurst", fracdyn.DefaultHurst, "noise correlation exponent in (0,1)")
	cmd.Flags().Float64Var(&domainSize, "domain", config.DefaultDomainSize, "domain size")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	cmd.Flags().Float64Var(&blowup, "blowup", 1e6, "divergence threshold")
}

func flagParams() fracdyn.Parameters {
	return fracdyn.Parameters{
		Alpha:        alpha,
		Beta:         beta,
		Gamma:        gamma,
		FractalOrder: fractalOrder,
		Dt:           dt,
		Hurst:        hurst,
	}
}

// loadConfig resolves preset then config file; CLI flags that were set
// explicitly win over both.
func loadConfig(cmd *cobra.Command, analysis string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Analysis = analysis

	if preset != "" {
		p := config.GetPreset(analysis, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(analysis))
		}
		*cfg = *p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	apply := func(name string, fn func()) {
		if cmd.Flags().Changed(name) {
			fn()
		}
	}
	apply("alpha", func() { cfg.Params.Alpha = alpha })
	apply("beta", func() { cfg.Params.Beta = beta })
	apply("gamma", func() { cfg.Params.Gamma = gamma })
	apply("order", func() { cfg.Params.FractalOrder = fractalOrder })
	apply("dt", func() { cfg.Params.Dt = dt })
	apply("hurst", func() { cfg.Params.Hurst = hurst })
	apply("domain", func() { cfg.DomainSize = domainSize })
	apply("seed", func() { cfg.Seed = seed })
	apply("blowup", func() { cfg.BlowupThreshold = blowup })
	apply("nx", func() { cfg.NX = nx })
	apply("nt", func() { cfg.NT = nt })
	apply("steps", func() { cfg.NSteps = nSteps })
	apply("save-interval", func() { cfg.SaveInterval = saveInterval })
	apply("meshes", func() { cfg.MeshSizes = meshSizes })
	apply("hold-ratio", func() { cfg.HoldDiffusionNumber = holdRatio })
	apply("perturbation", func() { cfg.PerturbationAmplitude = perturbation })
	apply("methods", func() { cfg.Methods = methods })

	return cfg, nil
}

func runStability(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, "stability")
	if err != nil {
		return err
	}
	opts, err := cfg.StabilityOptions()
	if err != nil {
		return err
	}

	for _, w := range cfg.Params.Warnings() {
		fmt.Printf("warning: %s\n", w)
	}

	fmt.Printf("running stability analysis (nx=%d, nt=%d)...\n", opts.NX, opts.NT)
	start := time.Now()

	report, err := stability.Run(context.Background(), cfg.Params, opts)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tSTABLE\tEVIDENCE")
	for _, v := range report.Verdicts {
		fmt.Fprintf(w, "%s\t%v\t%s\n", v.Method, v.Stable, formatEvidence(v.Evidence))
	}
	w.Flush()

	fmt.Printf("\nverdict: %s (confidence %.0f%%)\n", stableWord(report.Stable), report.Confidence*100)
	if report.Truncated {
		fmt.Printf("run diverged at step %d\n", report.TruncatedStep)
	}
	for _, rec := range report.Recommendations {
		fmt.Printf("  -> %s\n", rec)
	}

	if len(report.Checkpoints) > 1 {
		amps := make([]float64, len(report.Checkpoints))
		for i, cp := range report.Checkpoints {
			amps[i] = cp.MaxAmp
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(amps,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("max amplitude over checkpoints"),
		))
	}

	if !noSave {
		return saveRun(cfg, "stability", report, &report.Stable, report.Truncated, opts.NX, report.NT)
	}
	return nil
}

func runConvergence(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, "convergence")
	if err != nil {
		return err
	}
	opts := cfg.ConvergenceOptions()

	fmt.Printf("running convergence analysis (meshes %v, steps=%d)...\n", cfg.MeshSizes, opts.NSteps)
	start := time.Now()

	report, err := convergence.Run(context.Background(), cfg.Params, cfg.MeshSizes, opts)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MESH\tL2_ERROR\tORDER")
	for i, rec := range report.Records {
		if i == 0 {
			fmt.Fprintf(w, "%d\t%.6e\t-\n", rec.MeshSize, rec.L2Error)
		} else {
			fmt.Fprintf(w, "%d\t%.6e\t%.3f\n", rec.MeshSize, rec.L2Error, rec.EmpiricalOrder)
		}
	}
	w.Flush()

	fmt.Printf("\noverall order (last pair): %.3f against mesh %d\n", report.OverallOrder, report.FinestMesh)
	if report.Truncated {
		fmt.Println("warning: at least one mesh run diverged; errors are partial")
	}

	if !noSave {
		return saveRun(cfg, "convergence", report, nil, report.Truncated, report.FinestMesh, report.NSteps)
	}
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	params := flagParams()
	if err := params.Validate(); err != nil {
		return err
	}
	for _, w := range params.Warnings() {
		fmt.Printf("warning: %s\n", w)
	}

	grid := fracdyn.NewGrid(nx, domainSize)
	psi0 := fracdyn.SineField(grid, 0.1, 1)
	cfgEvolve := fracdyn.EvolveConfig{
		SaveInterval:    saveInterval,
		BlowupThreshold: blowup,
		RetainFields:    true,
	}

	if numRuns > 1 {
		return runEnsemble(grid, params, psi0, cfgEvolve)
	}

	rng := rand.New(rand.NewSource(seed))
	noise, err := fracdyn.GenerateNoise(grid.N, nt, params.Hurst, rng)
	if err != nil {
		return err
	}

	fmt.Printf("evolving field (nx=%d, nt=%d, dt=%g)...\n", nx, nt, params.Dt)
	start := time.Now()

	trace, err := fracdyn.NewEvolver(grid, params).Evolve(context.Background(), psi0, nt, noise, cfgEvolve)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%d steps)\n", time.Since(start), trace.Steps)
	if trace.Truncated {
		fmt.Printf("diverged at step %d\n", trace.TruncatedStep)
	}

	final := trace.Final()
	summary := diagnostics.Summarize(final.Field, grid.Dx())
	fmt.Println("\nfinal diagnostics:")
	fmt.Printf("  max amplitude:    %.6f\n", summary.MaxAmplitude)
	fmt.Printf("  l2 norm:          %.6f\n", summary.L2Norm)
	fmt.Printf("  energy:           %.6f\n", summary.Energy)
	fmt.Printf("  entropy:          %.4f\n", summary.Entropy)
	fmt.Printf("  enstrophy:        %.6f\n", summary.Enstrophy)
	fmt.Printf("  spectral entropy: %.4f\n", summary.SpectralEntropy)
	fmt.Printf("  turbulence index: %.4f\n", summary.TurbulenceIndex)

	if len(trace.Checkpoints) > 1 {
		amps := make([]float64, len(trace.Checkpoints))
		for i, cp := range trace.Checkpoints {
			amps[i] = cp.MaxAmp
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(amps,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("max amplitude over checkpoints"),
		))
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta := storage.RunMetadata{
			Analysis:   "run",
			Seed:       seed,
			NX:         nx,
			Steps:      trace.Steps,
			DomainSize: domainSize,
			Params:     params,
			Truncated:  trace.Truncated,
		}
		runID, err := st.Save(meta, summary, trace)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	return nil
}

func runEnsemble(grid fracdyn.Grid, params fracdyn.Parameters, psi0 fracdyn.Field, cfgEvolve fracdyn.EvolveConfig) error {
	fmt.Printf("running ensemble of %d (seeds %d..%d)...\n", numRuns, seed, seed+int64(numRuns)-1)
	start := time.Now()

	ens := fracdyn.NewEnsemble(grid, params, numRuns, seed)
	traces, err := ens.Run(context.Background(), psi0, nt, cfgEvolve)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tMAX_AMP\tL2\tENERGY\tTRUNCATED")
	meanL2 := 0.0
	for i, trace := range traces {
		final := trace.Final()
		energy := diagnostics.Energy(final.Field, grid.Dx())
		fmt.Fprintf(w, "%d\t%d\t%.6f\t%.6f\t%.6f\t%v\n",
			seed+int64(i), trace.Steps, final.MaxAmp, final.L2Norm, energy, trace.Truncated)
		meanL2 += final.L2Norm
	}
	w.Flush()
	fmt.Printf("\nmean final l2 norm: %.6f\n", meanL2/float64(len(traces)))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	params := flagParams()
	if err := params.Validate(); err != nil {
		return err
	}

	grid := fracdyn.NewGrid(nx, domainSize)
	if err := grid.Validate(); err != nil {
		return err
	}
	psi0 := fracdyn.SineField(grid, 0.1, 1)

	rng := rand.New(rand.NewSource(seed))
	noise, err := fracdyn.GenerateNoise(grid.N, nt, params.Hurst, rng)
	if err != nil {
		return err
	}

	m := viz.NewModel(fracdyn.NewEvolver(grid, params), noise, psi0, frameRate)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	params := flagParams()
	if err := params.Validate(); err != nil {
		return err
	}

	grid := fracdyn.NewGrid(nx, domainSize)
	psi0 := fracdyn.SineField(grid, 0.1, 1)

	rng := rand.New(rand.NewSource(seed))
	noise, err := fracdyn.GenerateNoise(grid.N, nt, params.Hurst, rng)
	if err != nil {
		return err
	}

	cfgEvolve := fracdyn.DefaultEvolveConfig()
	trace, err := fracdyn.NewEvolver(grid, params).Evolve(context.Background(), psi0, nt, noise, cfgEvolve)
	if err != nil {
		return err
	}

	spectrum := diagnostics.PowerSpectrum(trace.Final().Field)
	fmt.Println(asciigraph.Plot(spectrum,
		asciigraph.Height(15),
		asciigraph.Width(70),
		asciigraph.Caption("power spectrum of final field"),
	))

	mode := diagnostics.DominantMode(spectrum)
	fmt.Printf("\ndominant mode: %d\n", mode)
	fmt.Printf("spectral entropy: %.4f\n", diagnostics.SpectralEntropy(spectrum))
	fmt.Printf("turbulence index: %.4f\n", diagnostics.TurbulenceIndex(spectrum))
	if trace.Truncated {
		fmt.Printf("note: run diverged at step %d; spectrum is of the last valid field\n", trace.TruncatedStep)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tANALYSIS\tTIME\tNX\tSTEPS\tDT\tSTABLE")
	for _, run := range runs {
		stable := "-"
		if run.Stable != nil {
			stable = strconv.FormatBool(*run.Stable)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%g\t%s\n",
			run.ID,
			run.Analysis,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.NX,
			run.Steps,
			run.Params.Dt,
			stable,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	cps, err := st.LoadCheckpoints(args[0])
	if err != nil {
		return err
	}
	if len(cps) == 0 {
		return fmt.Errorf("no checkpoint data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("analysis: %s\n", meta.Analysis)
	fmt.Printf("samples: %d\n\n", len(cps))

	series := []struct {
		caption string
		extract func(fracdyn.Checkpoint) float64
	}{
		{"max amplitude", func(cp fracdyn.Checkpoint) float64 { return cp.MaxAmp }},
		{"l2 norm", func(cp fracdyn.Checkpoint) float64 { return cp.L2Norm }},
	}
	for _, s := range series {
		data := make([]float64, len(cps))
		for i, cp := range cps {
			data[i] = s.extract(cp)
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption(s.caption),
		))
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	cps, err := storage.New(dataDir).LoadCheckpoints(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"step", "time", "max_amp", "l2_norm"}); err != nil {
		return err
	}
	for _, cp := range cps {
		row := []string{
			strconv.Itoa(cp.Step),
			strconv.FormatFloat(cp.Time, 'f', 6, 64),
			strconv.FormatFloat(cp.MaxAmp, 'g', -1, 64),
			strconv.FormatFloat(cp.L2Norm, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func benchEvolver(cmd *cobra.Command, args []string) error {
	params := flagParams()
	if err := params.Validate(); err != nil {
		return err
	}

	grids := []int{32, 64, 128, 256}
	steps := 2000

	fmt.Println("benchmarking evolver")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NX\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range grids {
		grid := fracdyn.NewGrid(n, domainSize)
		psi0 := fracdyn.SineField(grid, 0.1, 1)

		rng := rand.New(rand.NewSource(seed))
		noise, err := fracdyn.GenerateNoise(n, steps, params.Hurst, rng)
		if err != nil {
			return err
		}

		cfgEvolve := fracdyn.EvolveConfig{SaveInterval: steps, BlowupThreshold: blowup}
		start := time.Now()
		trace, err := fracdyn.NewEvolver(grid, params).Evolve(context.Background(), psi0, steps, noise, cfgEvolve)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", n, trace.Steps, elapsed, float64(trace.Steps)/elapsed.Seconds())
	}
	return w.Flush()
}

func saveRun(cfg *config.Config, analysis string, report interface{}, stable *bool, truncated bool, nxVal, steps int) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	meta := storage.RunMetadata{
		Analysis:   analysis,
		Seed:       cfg.Seed,
		NX:         nxVal,
		Steps:      steps,
		DomainSize: cfg.DomainSize,
		Params:     cfg.Params,
		Stable:     stable,
		Truncated:  truncated,
	}

	var trace *fracdyn.Trace
	if r, ok := report.(*stability.Report); ok && len(r.Checkpoints) > 0 {
		trace = &fracdyn.Trace{
			Checkpoints: r.Checkpoints,
			Steps:       steps,
			Dt:          cfg.Params.Dt,
			Truncated:   truncated,
		}
	}

	runID, err := st.Save(meta, report, trace)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func formatEvidence(ev map[string]float64) string {
	keys := make([]string, 0, len(ev))
	for k := range ev {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.4g", k, ev[k]))
	}
	return strings.Join(parts, " ")
}

func stableWord(stable bool) string {
	if stable {
		return "STABLE"
	}
	return "UNSTABLE"
}
