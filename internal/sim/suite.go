// Package sim runs the experiment suite: baseline comparison, parameter
// sensitivity sweeps, and scalability measurements, all scored through one
// shared evaluator per scenario.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"edgeplace/internal/baseline"
	"edgeplace/internal/model"
	"edgeplace/internal/placement"
	"edgeplace/internal/topology"
)

const (
	StrategyRoundRobin       = "round_robin"
	StrategyNearestEdge      = "nearest_edge"
	StrategyRandomSuperPeers = "random_super_peers"
	StrategyOptimized        = "optimized"
)

// Config holds the shared knobs for every scenario in a suite run.
type Config struct {
	NumPeers       int
	NumSuperPeers  int
	Alpha          float64
	Beta           float64
	PopulationSize int
	CloneFactor    int
	MutationRate   float64
	Generations    int
	EdgeCapacity   float64
	Seed           int64
	Workers        int
}

func (c Config) withDefaults() Config {
	if c.NumPeers <= 0 {
		c.NumPeers = 160
	}
	if c.NumSuperPeers <= 0 {
		c.NumSuperPeers = 15
	}
	if c.Alpha == 0 && c.Beta == 0 {
		c.Alpha, c.Beta = 0.7, 0.3
	}
	if c.PopulationSize <= 0 {
		c.PopulationSize = 30
	}
	if c.CloneFactor <= 0 {
		c.CloneFactor = 3
	}
	if c.MutationRate <= 0 {
		c.MutationRate = 0.1
	}
	if c.Generations <= 0 {
		c.Generations = 100
	}
	if c.EdgeCapacity <= 0 {
		c.EdgeCapacity = placement.DefaultEdgeCapacity
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return c
}

// StrategyResult is one strategy scored on one topology.
type StrategyResult struct {
	Strategy      string              `json:"strategy"`
	NumSuperPeers int                 `json:"num_super_peers"`
	Metrics       placement.Metrics   `json:"metrics"`
	Paths         placement.PathStats `json:"paths"`
	SuperPeers    []string            `json:"super_peers,omitempty"`
}

// BaselineComparison pits the three baseline strategies against the
// optimized placement on a single topology.
type BaselineComparison struct {
	NumPeers  int                      `json:"num_peers"`
	Baselines []StrategyResult         `json:"baselines"`
	Optimized StrategyResult           `json:"optimized"`
	History   []model.GenerationRecord `json:"convergence_history"`
}

// AlphaBetaPoint is one objective-weight setting in the sensitivity sweep.
type AlphaBetaPoint struct {
	Alpha  float64        `json:"alpha"`
	Beta   float64        `json:"beta"`
	Result StrategyResult `json:"result"`
}

// SuperPeerPoint is one super-peer budget in the sensitivity sweep.
type SuperPeerPoint struct {
	NumSuperPeers int            `json:"num_super_peers"`
	Result        StrategyResult `json:"result"`
}

type Sensitivity struct {
	NumPeers   int              `json:"num_peers"`
	AlphaBeta  []AlphaBetaPoint `json:"alpha_beta_tests"`
	SuperPeers []SuperPeerPoint `json:"super_peer_tests"`
}

// ScalePoint is one network size in the scalability sweep.
type ScalePoint struct {
	NumPeers       int            `json:"num_peers"`
	NumSuperPeers  int            `json:"num_super_peers"`
	ElapsedSeconds float64        `json:"elapsed_time_seconds"`
	Result         StrategyResult `json:"result"`
}

type Scalability struct {
	Sizes []ScalePoint `json:"network_sizes"`
}

// SuiteResult aggregates every scenario of one suite run.
type SuiteResult struct {
	GeneratedAtUTC string             `json:"generated_at_utc"`
	Config         Config             `json:"config"`
	Comparison     BaselineComparison `json:"baseline_comparison"`
	Sensitivity    Sensitivity        `json:"parameter_sensitivity"`
	Scalability    Scalability        `json:"scalability"`
}

// RunBaselineComparison generates one topology and scores round-robin,
// nearest-edge, random-super-peer, and the optimized placement on it.
func RunBaselineComparison(ctx context.Context, cfg Config) (BaselineComparison, error) {
	cfg = cfg.withDefaults()
	topo := topology.Generate(cfg.NumPeers, cfg.Seed)
	dist := topology.NewDistances(topo)
	evaluator := placement.NewEvaluator(cfg.Alpha, cfg.Beta)

	score := func(strategy string, sol model.Solution) StrategyResult {
		evaluator.Evaluate(&sol, topo.Peers, dist)
		return StrategyResult{
			Strategy:      strategy,
			NumSuperPeers: len(sol.SuperPeers),
			Metrics: placement.Metrics{
				Fitness:       sol.Fitness,
				AvgDelay:      sol.AvgDelay,
				LoadImbalance: sol.LoadImbalance,
				EdgeALoad:     sol.EdgeALoad,
				EdgeBLoad:     sol.EdgeBLoad,
			},
			Paths:      evaluator.PathBreakdown(sol, topo.Peers, dist, cfg.EdgeCapacity),
			SuperPeers: append([]string(nil), sol.SuperPeers...),
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	comparison := BaselineComparison{
		NumPeers: cfg.NumPeers,
		Baselines: []StrategyResult{
			score(StrategyRoundRobin, baseline.RoundRobin(topo.Peers)),
			score(StrategyNearestEdge, baseline.NearestEdge(topo.Peers)),
			score(StrategyRandomSuperPeers, baseline.RandomSuperPeers(topo.Peers, cfg.NumSuperPeers, rng)),
		},
	}

	result, err := optimize(ctx, cfg, topo)
	if err != nil {
		return BaselineComparison{}, err
	}
	comparison.Optimized = score(StrategyOptimized, result.Best)
	comparison.History = result.History
	return comparison, nil
}

// RunSensitivity sweeps the alpha/beta weighting (beta = 1-alpha) and the
// super-peer budget on a fixed topology, with a reduced generation budget.
func RunSensitivity(ctx context.Context, cfg Config) (Sensitivity, error) {
	cfg = cfg.withDefaults()
	sweepCfg := cfg
	sweepCfg.PopulationSize = 20
	sweepCfg.Generations = 50

	topo := topology.Generate(cfg.NumPeers, cfg.Seed)
	out := Sensitivity{NumPeers: cfg.NumPeers}

	for _, alpha := range []float64{0.5, 0.6, 0.7, 0.8, 0.9} {
		runCfg := sweepCfg
		runCfg.Alpha = alpha
		runCfg.Beta = 1.0 - alpha
		result, err := optimize(ctx, runCfg, topo)
		if err != nil {
			return Sensitivity{}, err
		}
		out.AlphaBeta = append(out.AlphaBeta, AlphaBetaPoint{
			Alpha:  alpha,
			Beta:   1.0 - alpha,
			Result: scoreBest(runCfg, topo, result.Best),
		})
	}

	for _, numSP := range []int{5, 10, 15, 20, 25, 30} {
		runCfg := sweepCfg
		runCfg.NumSuperPeers = numSP
		result, err := optimize(ctx, runCfg, topo)
		if err != nil {
			return Sensitivity{}, err
		}
		out.SuperPeers = append(out.SuperPeers, SuperPeerPoint{
			NumSuperPeers: numSP,
			Result:        scoreBest(runCfg, topo, result.Best),
		})
	}

	return out, nil
}

// RunScalability optimizes networks of increasing size, scaling the
// super-peer budget to 10% of the population, and times each run.
func RunScalability(ctx context.Context, cfg Config) (Scalability, error) {
	cfg = cfg.withDefaults()
	out := Scalability{}

	for _, numPeers := range []int{50, 100, 160, 200, 300} {
		runCfg := cfg
		runCfg.NumPeers = numPeers
		runCfg.Generations = 50
		runCfg.NumSuperPeers = numPeers / 10
		if runCfg.NumSuperPeers < 5 {
			runCfg.NumSuperPeers = 5
		}

		topo := topology.Generate(numPeers, cfg.Seed)
		started := time.Now()
		result, err := optimize(ctx, runCfg, topo)
		if err != nil {
			return Scalability{}, err
		}
		out.Sizes = append(out.Sizes, ScalePoint{
			NumPeers:       numPeers,
			NumSuperPeers:  runCfg.NumSuperPeers,
			ElapsedSeconds: time.Since(started).Seconds(),
			Result:         scoreBest(runCfg, topo, result.Best),
		})
	}

	return out, nil
}

// RunSuite runs every scenario and stamps the aggregate.
func RunSuite(ctx context.Context, cfg Config) (SuiteResult, error) {
	cfg = cfg.withDefaults()

	comparison, err := RunBaselineComparison(ctx, cfg)
	if err != nil {
		return SuiteResult{}, fmt.Errorf("baseline comparison: %w", err)
	}
	sensitivity, err := RunSensitivity(ctx, cfg)
	if err != nil {
		return SuiteResult{}, fmt.Errorf("parameter sensitivity: %w", err)
	}
	scalability, err := RunScalability(ctx, cfg)
	if err != nil {
		return SuiteResult{}, fmt.Errorf("scalability: %w", err)
	}

	return SuiteResult{
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Config:         cfg,
		Comparison:     comparison,
		Sensitivity:    sensitivity,
		Scalability:    scalability,
	}, nil
}

func optimize(ctx context.Context, cfg Config, topo model.Topology) (placement.Result, error) {
	engine, err := placement.NewEngine(placement.Config{
		Topology:       topo,
		NumSuperPeers:  cfg.NumSuperPeers,
		Alpha:          cfg.Alpha,
		Beta:           cfg.Beta,
		PopulationSize: cfg.PopulationSize,
		CloneFactor:    cfg.CloneFactor,
		MutationRate:   cfg.MutationRate,
		Generations:    cfg.Generations,
		Seed:           cfg.Seed,
		Workers:        cfg.Workers,
	})
	if err != nil {
		return placement.Result{}, err
	}
	return engine.Run(ctx)
}

func scoreBest(cfg Config, topo model.Topology, best model.Solution) StrategyResult {
	dist := topology.NewDistances(topo)
	evaluator := placement.NewEvaluator(cfg.Alpha, cfg.Beta)
	evaluator.Evaluate(&best, topo.Peers, dist)
	return StrategyResult{
		Strategy:      StrategyOptimized,
		NumSuperPeers: len(best.SuperPeers),
		Metrics: placement.Metrics{
			Fitness:       best.Fitness,
			AvgDelay:      best.AvgDelay,
			LoadImbalance: best.LoadImbalance,
			EdgeALoad:     best.EdgeALoad,
			EdgeBLoad:     best.EdgeBLoad,
		},
		Paths:      evaluator.PathBreakdown(best, topo.Peers, dist, cfg.EdgeCapacity),
		SuperPeers: append([]string(nil), best.SuperPeers...),
	}
}
