package placement

import (
	"fmt"
	"math/rand"

	"edgeplace/internal/model"
	"edgeplace/internal/topology"
)

// FactoryConfig wires a Factory to one run's population and random source.
type FactoryConfig struct {
	Peers         []model.Peer
	Distances     *topology.Distances
	Evaluator     Evaluator
	NumSuperPeers int
	MutationRate  float64
	Rand          *rand.Rand
}

// Factory produces randomized initial solutions and mutated children of
// existing solutions. All stochastic choices draw from the configured
// random source, so runs are reproducible given a seed.
type Factory struct {
	cfg     FactoryConfig
	peerIDs []string
}

func NewFactory(cfg FactoryConfig) (*Factory, error) {
	if len(cfg.Peers) == 0 {
		return nil, fmt.Errorf("peer population is required")
	}
	if cfg.Distances == nil {
		return nil, fmt.Errorf("distance oracle is required")
	}
	if cfg.Rand == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if cfg.NumSuperPeers < 0 {
		return nil, fmt.Errorf("super-peer count must be >= 0")
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("mutation rate must be in [0, 1]")
	}

	peerIDs := make([]string, 0, len(cfg.Peers))
	for _, peer := range cfg.Peers {
		peerIDs = append(peerIDs, peer.ID)
	}
	return &Factory{cfg: cfg, peerIDs: peerIDs}, nil
}

// RandomSolution draws distinct super-peers uniformly without replacement,
// capped at the population size, and assigns each peer its closer edge with
// probability 0.7. The solution is evaluated before it is returned, so
// callers never see stale derived fields.
func (f *Factory) RandomSolution() model.Solution {
	count := f.cfg.NumSuperPeers
	if count > len(f.peerIDs) {
		count = len(f.peerIDs)
	}
	superPeers := make([]string, 0, count)
	for _, idx := range f.cfg.Rand.Perm(len(f.peerIDs))[:count] {
		superPeers = append(superPeers, f.peerIDs[idx])
	}

	assignments := make(map[string]model.Edge, len(f.cfg.Peers))
	for _, peer := range f.cfg.Peers {
		closer := model.EdgeA
		if peer.RTTEdgeB < peer.RTTEdgeA {
			closer = model.EdgeB
		}
		if f.cfg.Rand.Float64() < 0.7 {
			assignments[peer.ID] = closer
		} else {
			assignments[peer.ID] = closer.Other()
		}
	}

	sol := model.Solution{SuperPeers: superPeers, EdgeAssignments: assignments}
	f.cfg.Evaluator.Evaluate(&sol, f.cfg.Peers, f.cfg.Distances)
	return sol
}

// Mutate returns a mutated deep copy; the input solution is never touched.
// With probability MutationRate one super-peer slot is swapped for a peer
// outside the current list (a no-op when every peer is already a
// super-peer), and each edge assignment flips independently with
// probability MutationRate/2. The child is returned unevaluated.
func (f *Factory) Mutate(sol model.Solution) model.Solution {
	mutated := sol.Clone()
	mutated.Evaluated = false

	if f.cfg.Rand.Float64() < f.cfg.MutationRate && len(mutated.SuperPeers) > 0 {
		current := make(map[string]bool, len(mutated.SuperPeers))
		for _, id := range mutated.SuperPeers {
			current[id] = true
		}
		candidates := make([]string, 0, len(f.peerIDs)-len(mutated.SuperPeers))
		for _, id := range f.peerIDs {
			if !current[id] {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) > 0 {
			slot := f.cfg.Rand.Intn(len(mutated.SuperPeers))
			mutated.SuperPeers[slot] = candidates[f.cfg.Rand.Intn(len(candidates))]
		}
	}

	// Iterate peers in population order, not map order, to keep a fixed
	// random-draw sequence for a given seed.
	for _, id := range f.peerIDs {
		if f.cfg.Rand.Float64() < f.cfg.MutationRate*0.5 {
			mutated.EdgeAssignments[id] = mutated.EdgeAssignments[id].Other()
		}
	}

	return mutated
}
