package placement

import (
	"math"

	"edgeplace/internal/model"
	"edgeplace/internal/topology"
)

const (
	// DefaultP2POverhead is the fixed latency penalty added to peer-relayed
	// paths; a super-peer path is only chosen when it beats the direct edge
	// path by more than this.
	DefaultP2POverhead = 5.0
	// DefaultDelayCap normalizes average delay into [0, 1].
	DefaultDelayCap = 200.0
	// DefaultEpsilon keeps fitness finite when the objective reaches zero.
	DefaultEpsilon = 1e-6
)

// Evaluator scores a Solution against a peer population. Alpha weighs the
// demand-weighted delay term, Beta the edge load imbalance term.
type Evaluator struct {
	Alpha       float64
	Beta        float64
	P2POverhead float64
	DelayCap    float64
	Epsilon     float64
}

func NewEvaluator(alpha, beta float64) Evaluator {
	return Evaluator{
		Alpha:       alpha,
		Beta:        beta,
		P2POverhead: DefaultP2POverhead,
		DelayCap:    DefaultDelayCap,
		Epsilon:     DefaultEpsilon,
	}
}

type Metrics struct {
	Fitness       float64 `json:"fitness"`
	AvgDelay      float64 `json:"avg_delay_ms"`
	LoadImbalance float64 `json:"load_imbalance"`
	EdgeALoad     float64 `json:"edge_a_load_kbps"`
	EdgeBLoad     float64 `json:"edge_b_load_kbps"`
}

// Evaluate computes the solution's fitness and auxiliary metrics and caches
// them on the solution. Each peer takes the cheaper of its penalized best
// super-peer path and its assigned edge path; its demand always counts
// against the assigned edge regardless of which path won, since load
// accounting models capacity planning, not delivered bytes.
func (e Evaluator) Evaluate(sol *model.Solution, peers []model.Peer, dist *topology.Distances) Metrics {
	var loadA, loadB, weightedDelay, totalDemand float64

	for _, peer := range peers {
		superDelay := math.Inf(1)
		for _, sp := range sol.SuperPeers {
			if d := dist.PeerDistance(peer.ID, sp); d < superDelay {
				superDelay = d
			}
		}

		assigned, ok := sol.EdgeAssignments[peer.ID]
		if !ok {
			assigned = model.EdgeA
		}
		edgeDelay := dist.EdgeDistance(peer.ID, assigned)
		effective := math.Min(superDelay+e.P2POverhead, edgeDelay)

		weightedDelay += effective * peer.Demand
		totalDemand += peer.Demand
		if assigned == model.EdgeA {
			loadA += peer.Demand
		} else {
			loadB += peer.Demand
		}
	}

	avgDelay := 0.0
	if totalDemand > 0 {
		avgDelay = weightedDelay / totalDemand
	}

	loadMean := (loadA + loadB) / 2
	imbalance := 0.5 * ((loadA-loadMean)*(loadA-loadMean) + (loadB-loadMean)*(loadB-loadMean))

	normDelay := avgDelay / e.DelayCap
	maxImbalance := (totalDemand / 2) * (totalDemand / 2)
	normImbalance := 0.0
	if maxImbalance > 0 {
		normImbalance = imbalance / maxImbalance
	}

	objective := e.Alpha*normDelay + e.Beta*normImbalance
	fitness := 1.0 / (objective + e.Epsilon)

	sol.Fitness = fitness
	sol.AvgDelay = avgDelay
	sol.LoadImbalance = imbalance
	sol.EdgeALoad = loadA
	sol.EdgeBLoad = loadB
	sol.Evaluated = true

	return Metrics{
		Fitness:       fitness,
		AvgDelay:      avgDelay,
		LoadImbalance: imbalance,
		EdgeALoad:     loadA,
		EdgeBLoad:     loadB,
	}
}
