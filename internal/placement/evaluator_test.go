package placement

import (
	"math"
	"testing"

	"edgeplace/internal/model"
	"edgeplace/internal/topology"
)

// fourPeerTopology has two peers near each edge, demand 100 each, and one
// fast P2P link from peer-3 to peer-1.
func fourPeerTopology() model.Topology {
	return model.Topology{
		ID: "test-topo",
		Peers: []model.Peer{
			{ID: "peer-1", Region: "us-east", Demand: 100, RTTEdgeA: 20, RTTEdgeB: 150},
			{ID: "peer-2", Region: "us-west", Demand: 100, RTTEdgeA: 20, RTTEdgeB: 150},
			{ID: "peer-3", Region: "eu-west", Demand: 100, RTTEdgeA: 150, RTTEdgeB: 20},
			{ID: "peer-4", Region: "eu-central", Demand: 100, RTTEdgeA: 150, RTTEdgeB: 20},
		},
		PeerRTT: map[string]float64{
			topology.PeerPairKey("peer-3", "peer-1"): 10,
		},
	}
}

func nearestEdgeSolution() model.Solution {
	return model.Solution{
		SuperPeers: []string{},
		EdgeAssignments: map[string]model.Edge{
			"peer-1": model.EdgeA,
			"peer-2": model.EdgeA,
			"peer-3": model.EdgeB,
			"peer-4": model.EdgeB,
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluateNearestEdgeBalanced(t *testing.T) {
	topo := fourPeerTopology()
	dist := topology.NewDistances(topo)
	eval := NewEvaluator(0.7, 0.3)

	sol := nearestEdgeSolution()
	metrics := eval.Evaluate(&sol, topo.Peers, dist)

	if !almostEqual(metrics.AvgDelay, 20) {
		t.Fatalf("avg delay = %v, want 20", metrics.AvgDelay)
	}
	if !almostEqual(metrics.LoadImbalance, 0) {
		t.Fatalf("imbalance = %v, want 0", metrics.LoadImbalance)
	}
	if !almostEqual(metrics.EdgeALoad, 200) || !almostEqual(metrics.EdgeBLoad, 200) {
		t.Fatalf("loads = %v/%v, want 200/200", metrics.EdgeALoad, metrics.EdgeBLoad)
	}

	wantFitness := 1.0 / (0.7*(20.0/200.0) + 1e-6)
	if !almostEqual(metrics.Fitness, wantFitness) {
		t.Fatalf("fitness = %v, want %v", metrics.Fitness, wantFitness)
	}
	if !sol.Evaluated || sol.Fitness != metrics.Fitness {
		t.Fatalf("evaluation should cache metrics on the solution")
	}
}

func TestEvaluateAllOnEdgeAPenalizesImbalance(t *testing.T) {
	topo := fourPeerTopology()
	dist := topology.NewDistances(topo)
	eval := NewEvaluator(0.7, 0.3)

	sol := model.Solution{
		SuperPeers: []string{},
		EdgeAssignments: map[string]model.Edge{
			"peer-1": model.EdgeA,
			"peer-2": model.EdgeA,
			"peer-3": model.EdgeA,
			"peer-4": model.EdgeA,
		},
	}
	metrics := eval.Evaluate(&sol, topo.Peers, dist)

	if !almostEqual(metrics.AvgDelay, 85) {
		t.Fatalf("avg delay = %v, want 85", metrics.AvgDelay)
	}
	// loads 400/0, mean 200: 0.5 * (200^2 + 200^2) = 40000, the normalization
	// maximum for total demand 400.
	if !almostEqual(metrics.LoadImbalance, 40000) {
		t.Fatalf("imbalance = %v, want 40000", metrics.LoadImbalance)
	}

	wantFitness := 1.0 / (0.7*(85.0/200.0) + 0.3*1.0 + 1e-6)
	if !almostEqual(metrics.Fitness, wantFitness) {
		t.Fatalf("fitness = %v, want %v", metrics.Fitness, wantFitness)
	}

	balanced := nearestEdgeSolution()
	balancedMetrics := eval.Evaluate(&balanced, topo.Peers, dist)
	if balancedMetrics.Fitness <= metrics.Fitness {
		t.Fatalf("balanced placement should score higher: %v <= %v", balancedMetrics.Fitness, metrics.Fitness)
	}
}

func TestEvaluateSuperPeerShortcut(t *testing.T) {
	topo := fourPeerTopology()
	dist := topology.NewDistances(topo)
	eval := NewEvaluator(1.0, 0)

	// peer-3 reaches peer-1 in 10ms; with the 5ms relay penalty it beats its
	// own 20ms edge path, shaving 5ms off that peer.
	sol := nearestEdgeSolution()
	sol.SuperPeers = []string{"peer-1"}
	metrics := eval.Evaluate(&sol, topo.Peers, dist)

	// peer-1 relays for itself at zero distance plus the penalty, so its own
	// delay drops to 5ms too.
	want := (5.0 + 20.0 + 15.0 + 20.0) / 4.0
	if !almostEqual(metrics.AvgDelay, want) {
		t.Fatalf("avg delay = %v, want %v", metrics.AvgDelay, want)
	}

	// Load still accrues to the assigned edges regardless of which path won.
	if !almostEqual(metrics.EdgeALoad, 200) || !almostEqual(metrics.EdgeBLoad, 200) {
		t.Fatalf("loads = %v/%v, want 200/200", metrics.EdgeALoad, metrics.EdgeBLoad)
	}
}

func TestEvaluateMissingAssignmentDefaultsToEdgeA(t *testing.T) {
	topo := fourPeerTopology()
	dist := topology.NewDistances(topo)
	eval := NewEvaluator(0.7, 0.3)

	sol := model.Solution{SuperPeers: []string{}, EdgeAssignments: map[string]model.Edge{}}
	metrics := eval.Evaluate(&sol, topo.Peers, dist)

	if !almostEqual(metrics.EdgeALoad, 400) || !almostEqual(metrics.EdgeBLoad, 0) {
		t.Fatalf("unassigned peers should default to edge A, loads = %v/%v", metrics.EdgeALoad, metrics.EdgeBLoad)
	}
}

func TestEvaluateEmptyPopulation(t *testing.T) {
	dist := topology.NewDistances(model.Topology{})
	eval := NewEvaluator(0.7, 0.3)

	sol := model.Solution{SuperPeers: []string{}, EdgeAssignments: map[string]model.Edge{}}
	metrics := eval.Evaluate(&sol, nil, dist)

	if metrics.AvgDelay != 0 || metrics.LoadImbalance != 0 {
		t.Fatalf("empty population should score zero delay and imbalance, got %+v", metrics)
	}
	if math.IsNaN(metrics.Fitness) || math.IsInf(metrics.Fitness, 0) {
		t.Fatalf("fitness must stay finite, got %v", metrics.Fitness)
	}
}

func TestPathBreakdown(t *testing.T) {
	topo := fourPeerTopology()
	dist := topology.NewDistances(topo)
	eval := NewEvaluator(0.7, 0.3)

	sol := nearestEdgeSolution()
	sol.SuperPeers = []string{"peer-1"}
	stats := eval.PathBreakdown(sol, topo.Peers, dist, 1000)

	// peer-1 relays for itself (0+5 < 20) and peer-3 relays through it
	// (10+5 < 20); peer-2 and peer-4 stay on their edges.
	if stats.P2PHits != 2 || stats.EdgeAHits != 1 || stats.EdgeBHits != 1 {
		t.Fatalf("hit split = %d/%d/%d, want 2/1/1", stats.P2PHits, stats.EdgeAHits, stats.EdgeBHits)
	}
	if !almostEqual(stats.P2PHitRate, 0.5) {
		t.Fatalf("p2p hit rate = %v, want 0.5", stats.P2PHitRate)
	}
	if !almostEqual(stats.EdgeAUtilization, 0.2) || !almostEqual(stats.EdgeBUtilization, 0.2) {
		t.Fatalf("utilization = %v/%v, want 0.2/0.2", stats.EdgeAUtilization, stats.EdgeBUtilization)
	}
}

func TestPathBreakdownTieGoesToEdge(t *testing.T) {
	topo := model.Topology{
		Peers: []model.Peer{
			{ID: "peer-1", Demand: 100, RTTEdgeA: 15, RTTEdgeB: 100},
			{ID: "peer-2", Demand: 100, RTTEdgeA: 15, RTTEdgeB: 100},
		},
		PeerRTT: map[string]float64{
			topology.PeerPairKey("peer-2", "peer-1"): 10,
		},
	}
	dist := topology.NewDistances(topo)
	eval := NewEvaluator(1.0, 0)

	sol := model.Solution{
		SuperPeers: []string{"peer-1"},
		EdgeAssignments: map[string]model.Edge{
			"peer-1": model.EdgeA,
			"peer-2": model.EdgeA,
		},
	}
	stats := eval.PathBreakdown(sol, topo.Peers, dist, 0)

	// peer-2's penalized relay path equals its edge path exactly (10+5 vs 15);
	// ties count as edge-served. peer-1's own relay (0+5) still wins.
	if stats.P2PHits != 1 || stats.EdgeAHits != 1 {
		t.Fatalf("hit split = %d/%d, want 1 p2p and 1 edge-A", stats.P2PHits, stats.EdgeAHits)
	}
}
