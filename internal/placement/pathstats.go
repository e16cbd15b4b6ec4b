package placement

import (
	"math"

	"edgeplace/internal/model"
	"edgeplace/internal/topology"
)

// DefaultEdgeCapacity is the utilization reference for one edge server, in
// kbps. Reporting-only; fitness never reads it.
const DefaultEdgeCapacity = 10000.0

// PathStats breaks down which path each peer's effective delay came from.
// It complements Metrics for reporting; the same oracle and penalty are used
// so the numbers always agree with Evaluate.
type PathStats struct {
	P2PHits          int     `json:"p2p_hits"`
	EdgeAHits        int     `json:"edge_a_hits"`
	EdgeBHits        int     `json:"edge_b_hits"`
	P2PHitRate       float64 `json:"p2p_hit_rate"`
	EdgeAUtilization float64 `json:"edge_a_utilization"`
	EdgeBUtilization float64 `json:"edge_b_utilization"`
}

// PathBreakdown classifies every peer as P2P-served or edge-served under the
// solution. A peer counts as P2P-served only when the penalized super-peer
// path is strictly cheaper than its assigned edge path.
func (e Evaluator) PathBreakdown(sol model.Solution, peers []model.Peer, dist *topology.Distances, edgeCapacity float64) PathStats {
	if edgeCapacity <= 0 {
		edgeCapacity = DefaultEdgeCapacity
	}

	var stats PathStats
	var loadA, loadB float64
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

		if superDelay+e.P2POverhead < edgeDelay {
			stats.P2PHits++
		} else if assigned == model.EdgeA {
			stats.EdgeAHits++
		} else {
			stats.EdgeBHits++
		}

		if assigned == model.EdgeA {
			loadA += peer.Demand
		} else {
			loadB += peer.Demand
		}
	}

	if len(peers) > 0 {
		stats.P2PHitRate = float64(stats.P2PHits) / float64(len(peers))
	}
	stats.EdgeAUtilization = loadA / edgeCapacity
	stats.EdgeBUtilization = loadB / edgeCapacity
	return stats
}
