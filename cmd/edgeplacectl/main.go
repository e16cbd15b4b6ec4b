package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"edgeplace/internal/model"
	"edgeplace/internal/sim"
	"edgeplace/internal/stats"
	"edgeplace/internal/storage"
	"edgeplace/pkg/edgeplace"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "generate":
		return runGenerate(ctx, args[1:])
	case "run":
		return runOptimize(ctx, args[1:])
	case "baselines":
		return runBaselines(ctx, args[1:])
	case "sweep":
		return runSweep(ctx, args[1:])
	case "suite":
		return runSuite(ctx, args[1:])
	case "report":
		return runReport(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "best":
		return runBest(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf(`%s

usage: edgeplacectl <command> [flags]

commands:
  init       initialize the store backend
  reset      delete the sqlite database and run artifacts
  generate   synthesize a topology and persist it
  run        optimize placement on a topology
  baselines  score round-robin, nearest-edge, and random-super-peer strategies
  sweep      run the parameter sensitivity sweep and print the results
  suite      run the full experiment suite and write a markdown report
  report     rebuild the markdown report from a saved suite result
  runs       list persisted optimization runs
  best       show the stored best placement for a run
  history    show the generation history for a run
  export     write a run's convergence history as CSV`, msg)
}

func storeFlags(fs *flag.FlagSet) (storeKind, dbPath, runsDir *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "edgeplace.db", "sqlite database path")
	runsDir = fs.String("runs-dir", "placements", "run artifacts directory")
	return storeKind, dbPath, runsDir
}

func newClient(ctx context.Context, storeKind, dbPath, runsDir string) (*edgeplace.Client, error) {
	client, err := edgeplace.New(edgeplace.Options{StoreKind: storeKind, DBPath: dbPath, RunsDir: runsDir})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath, runsDir := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *runsDir)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	storeKind, dbPath, runsDir := storeFlags(fs)
	numPeers := fs.Int("peers", 160, "number of peers")
	seed := fs.Int64("seed", 42, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *runsDir)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	summary, err := client.Generate(ctx, edgeplace.GenerateRequest{NumPeers: *numPeers, Seed: *seed})
	if err != nil {
		return err
	}
	fmt.Printf("generated topology=%s peers=%d seed=%d\n", summary.TopologyID, summary.NumPeers, summary.Seed)
	return nil
}

func runOptimize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	storeKind, dbPath, runsDir := storeFlags(fs)
	configPath := fs.String("config", "", "JSON config file; flags override its values")
	topologyID := fs.String("topology", "", "stored topology id (generated on the fly when empty)")
	numPeers := fs.Int("peers", 0, "number of peers when generating")
	numSuperPeers := fs.Int("super-peers", 0, "super-peer budget")
	alpha := fs.Float64("alpha", 0, "delay weight")
	beta := fs.Float64("beta", 0, "load balance weight")
	popSize := fs.Int("pop", 0, "population size")
	cloneFactor := fs.Int("clone-factor", 0, "clone factor")
	mutationRate := fs.Float64("mutation-rate", 0, "mutation rate")
	generations := fs.Int("gens", 0, "generation budget")
	seed := fs.Int64("seed", 42, "random seed")
	workers := fs.Int("workers", 0, "parallel evaluation workers")
	stagnation := fs.Int("stagnation-window", 0, "early stop after N stagnant generations (0 disables)")
	quiet := fs.Bool("quiet", false, "suppress per-generation progress")
	if err := fs.Parse(args); err != nil {
		return err
	}

	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultOptimizeRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = edgeplace.OptimizeRequest{
			TopologyID:       *topologyID,
			NumPeers:         *numPeers,
			NumSuperPeers:    *numSuperPeers,
			Alpha:            *alpha,
			Beta:             *beta,
			PopulationSize:   *popSize,
			CloneFactor:      *cloneFactor,
			MutationRate:     *mutationRate,
			Generations:      *generations,
			Seed:             *seed,
			Workers:          *workers,
			StagnationWindow: *stagnation,
		}
	} else {
		overrideFromFlags(&req, setFlags, map[string]any{
			"topology":          *topologyID,
			"peers":             *numPeers,
			"super-peers":       *numSuperPeers,
			"alpha":             *alpha,
			"beta":              *beta,
			"pop":               *popSize,
			"clone-factor":      *cloneFactor,
			"mutation-rate":     *mutationRate,
			"gens":              *generations,
			"seed":              *seed,
			"workers":           *workers,
			"stagnation-window": *stagnation,
		})
	}

	if !*quiet {
		req.Progress = func(record model.GenerationRecord) {
			if record.Generation%10 == 0 {
				fmt.Printf("generation %3d | best fitness %.4f | avg delay %.2fms | imbalance %.2f\n",
					record.Generation, record.BestFitness, record.BestAvgDelay, record.BestLoadImbalance)
			}
		}
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *runsDir)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	summary, err := client.Optimize(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run=%s topology=%s artifacts=%s\n", summary.RunID, summary.TopologyID, summary.ArtifactsDir)
	fmt.Printf("best fitness=%.4f avg_delay=%.2fms imbalance=%.2f\n",
		summary.Best.Fitness, summary.Best.AvgDelay, summary.Best.LoadImbalance)
	fmt.Printf("edge loads: A=%.2fkbps B=%.2fkbps | p2p hit rate=%.1f%%\n",
		summary.Best.EdgeALoad, summary.Best.EdgeBLoad, summary.Paths.P2PHitRate*100)
	return nil
}

func runBaselines(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("baselines", flag.ContinueOnError)
	storeKind, dbPath, runsDir := storeFlags(fs)
	topologyID := fs.String("topology", "", "stored topology id (generated on the fly when empty)")
	numPeers := fs.Int("peers", 160, "number of peers when generating")
	numSuperPeers := fs.Int("super-peers", 15, "super-peer budget for the random baseline")
	seed := fs.Int64("seed", 42, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *runsDir)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	results, err := client.Baselines(ctx, edgeplace.BaselineRequest{
		TopologyID:    *topologyID,
		NumPeers:      *numPeers,
		NumSuperPeers: *numSuperPeers,
		Seed:          *seed,
	})
	if err != nil {
		return err
	}

	for _, item := range results {
		fmt.Printf("%-20s fitness=%.4f avg_delay=%.2fms imbalance=%.2f loads A=%.0f B=%.0f p2p=%.1f%%\n",
			item.Strategy, item.Solution.Fitness, item.Solution.AvgDelay, item.Solution.LoadImbalance,
			item.Solution.EdgeALoad, item.Solution.EdgeBLoad, item.Paths.P2PHitRate*100)
	}
	return nil
}

func runSuite(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("suite", flag.ContinueOnError)
	numPeers := fs.Int("peers", 160, "number of peers for the comparison scenario")
	seed := fs.Int64("seed", 42, "random seed")
	workers := fs.Int("workers", 0, "parallel evaluation workers")
	outDir := fs.String("out", "reports", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := sim.RunSuite(ctx, sim.Config{NumPeers: *numPeers, Seed: *seed, Workers: *workers})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	resultPath := filepath.Join(*outDir, "suite.json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(resultPath, append(data, '\n'), 0o644); err != nil {
		return err
	}
	reportPath := filepath.Join(*outDir, "placement_report.md")
	if err := stats.WriteReport(reportPath, result); err != nil {
		return err
	}
	fmt.Printf("suite complete: report=%s result=%s\n", reportPath, resultPath)
	return nil
}

func runReport(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	inPath := fs.String("in", filepath.Join("reports", "suite.json"), "saved suite result")
	outPath := fs.String("out", "", "output path (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		return err
	}
	var result sim.SuiteResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("decode suite result: %w", err)
	}

	if *outPath == "" {
		fmt.Print(stats.BuildReport(result))
		return nil
	}
	if err := stats.WriteReport(*outPath, result); err != nil {
		return err
	}
	fmt.Printf("report written to %s\n", *outPath)
	return nil
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	numPeers := fs.Int("peers", 160, "number of peers")
	seed := fs.Int64("seed", 42, "random seed")
	workers := fs.Int("workers", 0, "parallel evaluation workers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sensitivity, err := sim.RunSensitivity(ctx, sim.Config{NumPeers: *numPeers, Seed: *seed, Workers: *workers})
	if err != nil {
		return err
	}

	fmt.Println("alpha/beta sweep:")
	for _, point := range sensitivity.AlphaBeta {
		fmt.Printf("  alpha=%.1f beta=%.1f | avg delay %.2fms | imbalance %.2f\n",
			point.Alpha, point.Beta, point.Result.Metrics.AvgDelay, point.Result.Metrics.LoadImbalance)
	}
	fmt.Println("super-peer budget sweep:")
	for _, point := range sensitivity.SuperPeers {
		fmt.Printf("  super-peers=%d | avg delay %.2fms | p2p hit rate %.1f%%\n",
			point.NumSuperPeers, point.Result.Metrics.AvgDelay, point.Result.Paths.P2PHitRate*100)
	}
	return nil
}

func runReset(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	_, dbPath, runsDir := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.RemoveAll(filepath.Join(*runsDir, "runs")); err != nil {
		return err
	}
	fmt.Printf("reset db=%s runs-dir=%s\n", *dbPath, *runsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind, dbPath, runsDir := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *runsDir)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	records, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, record := range records {
		fmt.Printf("%s topology=%s super_peers=%d alpha=%.2f beta=%.2f fitness=%.4f\n",
			record.RunID, record.TopologyID, record.NumSuperPeers, record.Alpha, record.Beta, record.Best.Fitness)
	}
	return nil
}

func runBest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("best", flag.ContinueOnError)
	storeKind, dbPath, runsDir := storeFlags(fs)
	runID := fs.String("run-id", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return fmt.Errorf("run-id is required")
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *runsDir)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	record, ok, err := client.Best(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("run not found: %s", *runID)
	}

	fmt.Printf("run=%s fitness=%.4f avg_delay=%.2fms imbalance=%.2f\n",
		record.RunID, record.Best.Fitness, record.Best.AvgDelay, record.Best.LoadImbalance)
	fmt.Printf("super peers (%d): %v\n", len(record.Best.SuperPeers), record.Best.SuperPeers)
	edgeA, edgeB := 0, 0
	for _, edge := range record.Best.EdgeAssignments {
		if edge == "A" {
			edgeA++
		} else {
			edgeB++
		}
	}
	fmt.Printf("edge assignments: A=%d B=%d\n", edgeA, edgeB)
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	storeKind, dbPath, runsDir := storeFlags(fs)
	runID := fs.String("run-id", "", "run id")
	limit := fs.Int("limit", 0, "print at most N generations (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return fmt.Errorf("run-id is required")
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *runsDir)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	history, ok, err := client.History(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("history not found for run: %s", *runID)
	}
	if *limit > 0 && len(history) > *limit {
		history = history[len(history)-*limit:]
	}
	for _, record := range history {
		fmt.Printf("gen %3d | best=%.4f mean=%.4f delay=%.2fms imbalance=%.2f\n",
			record.Generation, record.BestFitness, record.MeanFitness, record.BestAvgDelay, record.BestLoadImbalance)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind, dbPath, runsDir := storeFlags(fs)
	runID := fs.String("run-id", "", "run id")
	outPath := fs.String("out", "", "output CSV path (default <runs-dir>/<run-id>/convergence.csv)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return fmt.Errorf("run-id is required")
	}

	client, err := newClient(ctx, *storeKind, *dbPath, *runsDir)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	history, ok, err := client.History(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("history not found for run: %s", *runID)
	}

	path := *outPath
	if path == "" {
		path = filepath.Join(*runsDir, "runs", *runID, "convergence.csv")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := stats.WriteConvergenceCSV(f, history); err != nil {
		return err
	}
	fmt.Printf("exported %s\n", path)
	return nil
}
