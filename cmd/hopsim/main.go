package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/qdynlab/hopsim/internal/analysis"
	"github.com/qdynlab/hopsim/internal/calculators"
	"github.com/qdynlab/hopsim/internal/config"
	"github.com/qdynlab/hopsim/internal/experiment"
	"github.com/qdynlab/hopsim/internal/export"
	"github.com/qdynlab/hopsim/internal/metrics"
	"github.com/qdynlab/hopsim/internal/storage"
	"github.com/qdynlab/hopsim/internal/traj"
	"github.com/qdynlab/hopsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	output     string

	modelTag int
	rep      int
	dt       float64
	steps    int
	ntraj    int
	seed     int64

	x0    float64
	k     float64
	dwell float64
	v     float64
	omega float64

	useBoltz  bool
	temp      float64
	doReverse bool

	sweepRuns int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hopsim",
		Short: "trajectory surface-hopping simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hopsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a surface-hopping trajectory ensemble",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot populations and energies of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and records to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run records to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a seed ensemble and summarize the outcomes",
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 16, "number of ensemble runs")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live population view",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	bandsCmd := &cobra.Command{
		Use:   "bands",
		Short: "exercise the Fock/band utilities on a 3x3 example",
		RunE:  runBands,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list run presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, sweepCmd, liveCmd, bandsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&output, "output", "", "step table output path")
	cmd.Flags().IntVar(&modelTag, "model", 1, "model tag (1-4)")
	cmd.Flags().IntVar(&rep, "rep", 0, "representation (0 diabatic, 1 adiabatic)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (atomic units)")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of propagation steps")
	cmd.Flags().IntVar(&ntraj, "ntraj", config.DefaultNTraj, "number of trajectories")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().Float64Var(&x0, "x0", config.DefaultX0, "well shift x0")
	cmd.Flags().Float64Var(&k, "k", config.DefaultK, "force constant k")
	cmd.Flags().Float64Var(&dwell, "D", config.DefaultD, "well offset D")
	cmd.Flags().Float64Var(&v, "V", config.DefaultV, "diabatic coupling V")
	cmd.Flags().Float64Var(&omega, "omega", config.DefaultOmega, "angular frequency (model 4)")
	cmd.Flags().BoolVar(&useBoltz, "boltz", false, "thermally weight upward hops")
	cmd.Flags().Float64Var(&temp, "temperature", 300.0, "temperature (K)")
	cmd.Flags().BoolVar(&doReverse, "do-reverse", true, "reverse momenta on frustrated hops")
}

// buildConfig layers preset, config file and flags into a run config.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override preset and file values
	if cmd.Flags().Changed("model") {
		cfg.Model = modelTag
	}
	if cmd.Flags().Changed("rep") {
		cfg.Rep = rep
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("ntraj") {
		cfg.NTraj = ntraj
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = output
	}
	if cmd.Flags().Changed("x0") {
		cfg.Params.X0 = x0
	}
	if cmd.Flags().Changed("k") {
		cfg.Params.K = k
	}
	if cmd.Flags().Changed("D") {
		cfg.Params.D = dwell
	}
	if cmd.Flags().Changed("V") {
		cfg.Params.V = v
	}
	if cmd.Flags().Changed("omega") {
		cfg.Params.Omega = omega
	}
	if cmd.Flags().Changed("boltz") {
		cfg.Hopping.UseBoltzFactor = useBoltz
	}
	if cmd.Flags().Changed("temperature") {
		cfg.Hopping.Temperature = temp
	}
	if cmd.Flags().Changed("do-reverse") {
		cfg.Hopping.DoReverse = doReverse
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner, err := traj.New(cfg)
	if err != nil {
		return err
	}
	runner.AddMetric(metrics.NewEnergyDrift())
	runner.AddMetric(metrics.NewAveragePopulation(0))
	runner.AddMetric(metrics.NewAveragePopulation(1))
	runner.AddMetric(metrics.NewHopCount())

	fmt.Printf("running model %d surface hopping (%d steps, %d trajectories)...\n", cfg.Model, cfg.Steps, cfg.NTraj)
	start := time.Now()

	result, err := runner.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.Records))
	if cfg.Output != "" {
		fmt.Printf("step table: %s\n", cfg.Output)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Output = ""
	return viz.RunLive(cfg)
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
	fmt.Fprintln(w, "ID\tMODEL\tREP\tTIME\tSTEPS\tDT\tNTRAJ")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%.3f\t%d\n",
			run.ID, run.Model, run.Rep,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps, run.Dt, run.NTraj,
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
	records, err := st.LoadRecords(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %d\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(records))

	series := []struct {
		name string
		data func(traj.Record) float64
	}{
		{"adiabatic population 0", func(r traj.Record) float64 { return r.PopAdi0 }},
		{"adiabatic population 1", func(r traj.Record) float64 { return r.PopAdi1 }},
		{"diabatic population 0", func(r traj.Record) float64 { return r.PopDia0 }},
		{"total energy", func(r traj.Record) float64 { return r.Etot }},
		{"coordinate", func(r traj.Record) float64 { return r.Q }},
	}

	for _, s := range series {
		data := make([]float64, len(records))
		for i, rec := range records {
			data[i] = s.data(rec)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadRecords(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("model: %d\n\n", meta.Model)

	data := make([]float64, len(records))
	for i, rec := range records {
		data[i] = rec.Q
	}

	ps := analysis.PowerSpectrum(data)
	if len(ps) < 8 {
		return fmt.Errorf("run too short for frequency analysis")
	}
	plotData := ps[:len(ps)/4]

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (coordinate)"),
	)
	fmt.Println(graph)
	fmt.Println()

	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(plotData); i++ {
		if plotData[i] > maxPower {
			maxPower = plotData[i]
			maxIdx = i
		}
	}

	duration := meta.Dt * float64(meta.Steps)
	if duration > 0 {
		freq := float64(maxIdx) / duration
		fmt.Printf("dominant frequency: %.5f (1/a.u. time)\n", freq)
		if freq > 0 {
			fmt.Printf("period: %.3f a.u.\n", 1.0/freq)
		}
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("running %d-seed ensemble for model %d (%d steps each)...\n", sweepRuns, cfg.Model, cfg.Steps)
	start := time.Now()

	e := experiment.NewEnsemble(cfg, sweepRuns, cfg.Seed)
	results, err := e.Run(context.Background())
	if err != nil {
		return err
	}
	s := experiment.Summarize(results)

	fmt.Printf("completed in %v\n\n", time.Since(start))
	fmt.Printf("runs:                 %d\n", s.Runs)
	fmt.Printf("final pop adi 0:      %.5f\n", s.FinalPopAdi0)
	fmt.Printf("final pop adi 1:      %.5f\n", s.FinalPopAdi1)
	fmt.Printf("final total energy:   %.5f\n", s.FinalEtot)
	fmt.Printf("ended on surface 0:   %.1f%%\n", 100*s.FracOnSurface0)
	fmt.Printf("worst energy drift:   %.2e\n", s.MaxEnergyDrift)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	records, err := st.LoadRecords(args[0])
	if err != nil {
		return err
	}
	return export.WriteCSV(os.Stdout, records)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadRecords(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(meta, records)
}

func printMatrix(name string, m *mat.Dense) {
	r, c := m.Dims()
	fmt.Printf("%s:\n", name)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			fmt.Printf("  %10.6f", m.At(i, j))
		}
		fmt.Println()
	}
}

// runBands reproduces the calculators smoke test: a 3x3 diagonal Fock
// matrix with an identity overlap, two electrons.
func runBands(cmd *cobra.Command, args []string) error {
	energies := []float64{-1.0, -0.5, -0.4}
	const (
		nel   = 2.0
		degen = 1.0
		kT    = 0.025
		etol  = 0.0001
	)

	n := len(energies)
	f := mat.NewDense(n, n, nil)
	s := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		f.Set(i, i, energies[i])
		s.Set(i, i, 1.0)
	}
	printMatrix("Fock matrix", f)

	ef, err := calculators.FermiEnergy(energies, nel, degen, kT, etol)
	if err != nil {
		return err
	}
	fmt.Printf("\nFermi energy: %.6f\n", ef)

	res, err := calculators.FockToP(f, s, nel, degen, kT, etol, calculators.PopAufbau)
	if err != nil {
		return err
	}

	fmt.Println("\nbands:")
	for _, b := range res.Bands {
		fmt.Printf("  %d: %.6f\n", b.Index, b.Energy)
	}
	fmt.Println("\noccupations (aufbau):")
	for _, o := range res.Occ {
		fmt.Printf("  %d: %.6f\n", o.Index, o.Pop)
	}

	smeared, err := calculators.PopulateBands(nel, degen, kT, etol, calculators.PopFermi, res.Bands)
	if err != nil {
		return err
	}
	fmt.Println("\noccupations (fermi smearing):")
	for _, o := range smeared {
		fmt.Printf("  %d: %.6f\n", o.Index, o.Pop)
	}

	fmt.Println()
	printMatrix("density matrix", res.P)

	fmt.Printf("\nE(ground) = %.6f\n", calculators.EnergyElec(res.P, f, f))

	ex1, err := calculators.Excite(1, 2, res.Occ)
	if err != nil {
		return err
	}
	p1 := calculators.ComputeDensityMatrix(ex1, res.C)
	fmt.Printf("E(homo->lumo) = %.6f\n", calculators.EnergyElec(p1, f, f))

	ex2, err := calculators.Excite(0, 2, res.Occ)
	if err != nil {
		return err
	}
	p2 := calculators.ComputeDensityMatrix(ex2, res.C)
	fmt.Printf("E(homo-1->lumo) = %.6f\n", calculators.EnergyElec(p2, f, f))

	return nil
}
