// Package edgeplace is the embeddable client for the placement optimizer:
// it generates topologies, runs optimizations and baselines, persists the
// results, and reads them back.
package edgeplace

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"edgeplace/internal/baseline"
	"edgeplace/internal/model"
	"edgeplace/internal/placement"
	"edgeplace/internal/stats"
	"edgeplace/internal/storage"
	"edgeplace/internal/topology"
)

const (
	defaultRunsDir = "placements"
	defaultDBPath  = "edgeplace.db"
)

type Options struct {
	StoreKind string
	DBPath    string
	RunsDir   string
}

type Client struct {
	store   storage.Store
	runsDir string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, runsDir: runsDir}, nil
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

type GenerateRequest struct {
	NumPeers int
	Seed     int64
}

type TopologySummary struct {
	TopologyID string
	NumPeers   int
	Seed       int64
}

// Generate synthesizes a topology and persists it.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (TopologySummary, error) {
	if req.NumPeers <= 0 {
		return TopologySummary{}, fmt.Errorf("peer count must be > 0")
	}
	topo := topology.Generate(req.NumPeers, req.Seed)
	topo.VersionedRecord = storage.Stamp()
	if err := c.store.SaveTopology(ctx, topo); err != nil {
		return TopologySummary{}, err
	}
	return TopologySummary{TopologyID: topo.ID, NumPeers: len(topo.Peers), Seed: topo.Seed}, nil
}

type OptimizeRequest struct {
	TopologyID     string
	NumPeers       int
	NumSuperPeers  int
	Alpha          float64
	Beta           float64
	PopulationSize int
	CloneFactor    int
	MutationRate   float64
	Generations    int
	Seed           int64
	Workers        int
	EdgeCapacity   float64

	// StagnationWindow > 0 enables early stopping; off by default.
	StagnationWindow int

	Progress func(record model.GenerationRecord)
}

func (r OptimizeRequest) withDefaults() OptimizeRequest {
	if r.NumPeers <= 0 {
		r.NumPeers = 160
	}
	if r.NumSuperPeers <= 0 {
		r.NumSuperPeers = 10
	}
	if r.Alpha == 0 && r.Beta == 0 {
		r.Alpha, r.Beta = 0.7, 0.3
	}
	if r.PopulationSize <= 0 {
		r.PopulationSize = 30
	}
	if r.CloneFactor <= 0 {
		r.CloneFactor = 3
	}
	if r.MutationRate <= 0 {
		r.MutationRate = 0.1
	}
	if r.Generations <= 0 {
		r.Generations = 100
	}
	if r.EdgeCapacity <= 0 {
		r.EdgeCapacity = placement.DefaultEdgeCapacity
	}
	return r
}

type RunSummary struct {
	RunID        string
	TopologyID   string
	ArtifactsDir string
	Best         model.Solution
	Paths        placement.PathStats
	History      []model.GenerationRecord
}

// Optimize runs the clonal-selection engine against a stored topology (or a
// freshly generated one when no TopologyID is given), persists the
// placement and history, and writes the run artifacts directory.
func (c *Client) Optimize(ctx context.Context, req OptimizeRequest) (RunSummary, error) {
	req = req.withDefaults()

	topo, err := c.resolveTopology(ctx, req.TopologyID, req.NumPeers, req.Seed)
	if err != nil {
		return RunSummary{}, err
	}

	engine, err := placement.NewEngine(placement.Config{
		Topology:         topo,
		NumSuperPeers:    req.NumSuperPeers,
		Alpha:            req.Alpha,
		Beta:             req.Beta,
		PopulationSize:   req.PopulationSize,
		CloneFactor:      req.CloneFactor,
		MutationRate:     req.MutationRate,
		Generations:      req.Generations,
		Seed:             req.Seed,
		Workers:          req.Workers,
		StagnationWindow: req.StagnationWindow,
		Progress:         req.Progress,
	})
	if err != nil {
		return RunSummary{}, err
	}

	result, err := engine.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := fmt.Sprintf("%s-%d-%d", topo.ID, req.Seed, now.Unix())

	record := model.PlacementRecord{
		VersionedRecord: storage.Stamp(),
		RunID:           runID,
		TopologyID:      topo.ID,
		Seed:            req.Seed,
		NumSuperPeers:   req.NumSuperPeers,
		Alpha:           req.Alpha,
		Beta:            req.Beta,
		Best:            result.Best,
	}
	if err := c.store.SavePlacement(ctx, record); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveHistory(ctx, runID, result.History); err != nil {
		return RunSummary{}, err
	}

	artifactsDir, err := stats.WriteRunArtifacts(c.runsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:          runID,
			TopologyID:     topo.ID,
			NumPeers:       len(topo.Peers),
			NumSuperPeers:  req.NumSuperPeers,
			Alpha:          req.Alpha,
			Beta:           req.Beta,
			PopulationSize: req.PopulationSize,
			CloneFactor:    req.CloneFactor,
			MutationRate:   req.MutationRate,
			Generations:    req.Generations,
			EdgeCapacity:   req.EdgeCapacity,
			Seed:           req.Seed,
			Workers:        req.Workers,
			CreatedAtUTC:   now.Format(time.RFC3339),
		},
		Best:    result.Best,
		History: result.History,
	})
	if err != nil {
		return RunSummary{}, err
	}

	dist := topology.NewDistances(topo)
	paths := engine.Evaluator().PathBreakdown(result.Best, topo.Peers, dist, req.EdgeCapacity)

	return RunSummary{
		RunID:        runID,
		TopologyID:   topo.ID,
		ArtifactsDir: artifactsDir,
		Best:         result.Best,
		Paths:        paths,
		History:      result.History,
	}, nil
}

type BaselineRequest struct {
	TopologyID    string
	NumPeers      int
	NumSuperPeers int
	Alpha         float64
	Beta          float64
	Seed          int64
	EdgeCapacity  float64
}

type BaselineResult struct {
	Strategy string
	Solution model.Solution
	Paths    placement.PathStats
}

// Baselines scores the three non-optimizing strategies on a topology with
// the same evaluator configuration an optimized run would use.
func (c *Client) Baselines(ctx context.Context, req BaselineRequest) ([]BaselineResult, error) {
	if req.NumPeers <= 0 {
		req.NumPeers = 160
	}
	if req.NumSuperPeers <= 0 {
		req.NumSuperPeers = 10
	}
	if req.Alpha == 0 && req.Beta == 0 {
		req.Alpha, req.Beta = 0.7, 0.3
	}

	topo, err := c.resolveTopology(ctx, req.TopologyID, req.NumPeers, req.Seed)
	if err != nil {
		return nil, err
	}

	dist := topology.NewDistances(topo)
	evaluator := placement.NewEvaluator(req.Alpha, req.Beta)
	rng := rand.New(rand.NewSource(req.Seed))

	solutions := []BaselineResult{
		{Strategy: "round_robin", Solution: baseline.RoundRobin(topo.Peers)},
		{Strategy: "nearest_edge", Solution: baseline.NearestEdge(topo.Peers)},
		{Strategy: "random_super_peers", Solution: baseline.RandomSuperPeers(topo.Peers, req.NumSuperPeers, rng)},
	}
	for i := range solutions {
		evaluator.Evaluate(&solutions[i].Solution, topo.Peers, dist)
		solutions[i].Paths = evaluator.PathBreakdown(solutions[i].Solution, topo.Peers, dist, req.EdgeCapacity)
	}
	return solutions, nil
}

// Runs lists all persisted placements.
func (c *Client) Runs(ctx context.Context) ([]model.PlacementRecord, error) {
	return c.store.ListPlacements(ctx)
}

// Best returns the stored best placement for a run.
func (c *Client) Best(ctx context.Context, runID string) (model.PlacementRecord, bool, error) {
	return c.store.GetPlacement(ctx, runID)
}

// History returns the stored generation history for a run.
func (c *Client) History(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	return c.store.GetHistory(ctx, runID)
}

func (c *Client) resolveTopology(ctx context.Context, topologyID string, numPeers int, seed int64) (model.Topology, error) {
	if topologyID != "" {
		topo, ok, err := c.store.GetTopology(ctx, topologyID)
		if err != nil {
			return model.Topology{}, err
		}
		if !ok {
			return model.Topology{}, fmt.Errorf("topology not found: %s", topologyID)
		}
		return topo, nil
	}

	topo := topology.Generate(numPeers, seed)
	topo.VersionedRecord = storage.Stamp()
	if err := c.store.SaveTopology(ctx, topo); err != nil {
		return model.Topology{}, err
	}
	return topo, nil
}
