package placement

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"edgeplace/internal/model"
	"edgeplace/internal/topology"
)

// Config parameterizes one clonal-selection run. P2POverhead, DelayCap,
// Epsilon and EdgeCapacity fall back to package defaults when zero.
type Config struct {
	Topology       model.Topology
	NumSuperPeers  int
	Alpha          float64
	Beta           float64
	PopulationSize int
	CloneFactor    int
	MutationRate   float64
	Generations    int
	Seed           int64
	Workers        int

	P2POverhead float64
	DelayCap    float64
	Epsilon     float64

	// StagnationWindow enables an optional early exit after that many
	// generations without a best-fitness improvement. Zero disables it and
	// the loop always runs the full generation budget.
	StagnationWindow int

	// Progress, when set, is invoked once per generation after the record
	// for that generation is appended.
	Progress func(record model.GenerationRecord)
}

// Result is the output of one run: the best solution ever observed and one
// record per completed generation.
type Result struct {
	Best    model.Solution           `json:"best_solution"`
	History []model.GenerationRecord `json:"history"`
}

// Engine runs clonal selection over placement solutions: evaluate, rank,
// clone the elite proportionally to fitness, mutate the clones, and refill
// with fresh random solutions for diversity.
type Engine struct {
	cfg       Config
	evaluator Evaluator
	factory   *Factory
	dist      *topology.Distances
	rng       *rand.Rand
}

func NewEngine(cfg Config) (*Engine, error) {
	if len(cfg.Topology.Peers) == 0 {
		return nil, fmt.Errorf("topology has no peers")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0")
	}
	if cfg.CloneFactor <= 0 {
		return nil, fmt.Errorf("clone factor must be > 0")
	}
	if cfg.NumSuperPeers < 0 {
		return nil, fmt.Errorf("super-peer count must be >= 0")
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("mutation rate must be in [0, 1]")
	}
	if math.IsNaN(cfg.Alpha) || math.IsInf(cfg.Alpha, 0) || math.IsNaN(cfg.Beta) || math.IsInf(cfg.Beta, 0) {
		return nil, fmt.Errorf("alpha and beta must be finite")
	}
	if cfg.StagnationWindow < 0 {
		return nil, fmt.Errorf("stagnation window must be >= 0")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	evaluator := NewEvaluator(cfg.Alpha, cfg.Beta)
	if cfg.P2POverhead > 0 {
		evaluator.P2POverhead = cfg.P2POverhead
	}
	if cfg.DelayCap > 0 {
		evaluator.DelayCap = cfg.DelayCap
	}
	if cfg.Epsilon > 0 {
		evaluator.Epsilon = cfg.Epsilon
	}

	dist := topology.NewDistances(cfg.Topology)
	rng := rand.New(rand.NewSource(cfg.Seed))
	factory, err := NewFactory(FactoryConfig{
		Peers:         cfg.Topology.Peers,
		Distances:     dist,
		Evaluator:     evaluator,
		NumSuperPeers: cfg.NumSuperPeers,
		MutationRate:  cfg.MutationRate,
		Rand:          rng,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:       cfg,
		evaluator: evaluator,
		factory:   factory,
		dist:      dist,
		rng:       rng,
	}, nil
}

// Evaluator returns the engine's configured evaluator so callers can score
// baseline solutions with the exact same objective.
func (e *Engine) Evaluator() Evaluator {
	return e.evaluator
}

func (e *Engine) Run(ctx context.Context) (Result, error) {
	population := make([]model.Solution, 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.PopulationSize; i++ {
		population = append(population, e.factory.RandomSolution())
	}

	var best model.Solution
	bestFitness := -1.0
	history := make([]model.GenerationRecord, 0, e.cfg.Generations)
	stagnantFor := 0

	for gen := 0; gen < e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		// Re-evaluate everyone; mutated clones from the previous generation
		// enter this one stale.
		e.evaluatePopulation(population)

		improved := false
		for i := range population {
			if population[i].Fitness > bestFitness {
				bestFitness = population[i].Fitness
				best = population[i].Clone()
				improved = true
			}
		}
		if improved {
			stagnantFor = 0
		} else {
			stagnantFor++
		}

		sort.Slice(population, func(i, j int) bool {
			return population[i].Fitness > population[j].Fitness
		})

		meanFitness := 0.0
		for i := range population {
			meanFitness += population[i].Fitness
		}
		meanFitness /= float64(len(population))

		record := model.GenerationRecord{
			Generation:        gen,
			BestFitness:       bestFitness,
			MeanFitness:       meanFitness,
			BestAvgDelay:      best.AvgDelay,
			BestLoadImbalance: best.LoadImbalance,
			BestEdgeALoad:     best.EdgeALoad,
			BestEdgeBLoad:     best.EdgeBLoad,
		}
		history = append(history, record)
		if e.cfg.Progress != nil {
			e.cfg.Progress(record)
		}

		if e.cfg.StagnationWindow > 0 && stagnantFor >= e.cfg.StagnationWindow {
			break
		}

		elite := e.cfg.PopulationSize / 3
		if elite < 1 {
			elite = 1
		}
		next := make([]model.Solution, 0, e.cfg.PopulationSize)
		topFitness := population[0].Fitness
		for idx := 0; idx < elite; idx++ {
			fitRatio := 1.0
			if topFitness > 0 {
				fitRatio = population[idx].Fitness / topFitness
			}
			clones := int(float64(e.cfg.CloneFactor) * fitRatio)
			if clones < 1 {
				clones = 1
			}
			for c := 0; c < clones; c++ {
				next = append(next, e.factory.Mutate(population[idx]))
			}
		}
		for len(next) < e.cfg.PopulationSize {
			next = append(next, e.factory.RandomSolution())
		}
		population = next
	}

	return Result{Best: best, History: history}, nil
}

// evaluatePopulation scores every solution, fanning out across workers when
// configured. Evaluation is pure per solution, so parallel order cannot
// change the results; best-tracking happens afterwards in index order.
func (e *Engine) evaluatePopulation(population []model.Solution) {
	workers := e.cfg.Workers
	if workers > len(population) {
		workers = len(population)
	}
	if workers <= 1 {
		for i := range population {
			e.evaluator.Evaluate(&population[i], e.cfg.Topology.Peers, e.dist)
		}
		return
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				e.evaluator.Evaluate(&population[i], e.cfg.Topology.Peers, e.dist)
			}
		}()
	}
	for i := range population {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
