// Package baseline provides non-optimizing placement strategies used as
// comparison points for the clonal-selection engine. Baselines only build
// solutions; callers score them through the same evaluator as optimized
// runs so the comparison stays apples-to-apples.
package baseline

import (
	"math/rand"

	"edgeplace/internal/model"
)

// RoundRobin alternates edge assignments A, B, A, B over the peer list and
// selects no super-peers.
func RoundRobin(peers []model.Peer) model.Solution {
	assignments := make(map[string]model.Edge, len(peers))
	for i, peer := range peers {
		if i%2 == 0 {
			assignments[peer.ID] = model.EdgeA
		} else {
			assignments[peer.ID] = model.EdgeB
		}
	}
	return model.Solution{SuperPeers: []string{}, EdgeAssignments: assignments}
}

// NearestEdge binds every peer to its lower-latency edge, with no
// super-peers.
func NearestEdge(peers []model.Peer) model.Solution {
	assignments := make(map[string]model.Edge, len(peers))
	for _, peer := range peers {
		if peer.RTTEdgeA < peer.RTTEdgeB {
			assignments[peer.ID] = model.EdgeA
		} else {
			assignments[peer.ID] = model.EdgeB
		}
	}
	return model.Solution{SuperPeers: []string{}, EdgeAssignments: assignments}
}

// RandomSuperPeers combines a uniform super-peer sample, capped at the
// population size, with nearest-edge assignment.
func RandomSuperPeers(peers []model.Peer, numSuperPeers int, rng *rand.Rand) model.Solution {
	if numSuperPeers > len(peers) {
		numSuperPeers = len(peers)
	}
	if numSuperPeers < 0 {
		numSuperPeers = 0
	}
	superPeers := make([]string, 0, numSuperPeers)
	for _, idx := range rng.Perm(len(peers))[:numSuperPeers] {
		superPeers = append(superPeers, peers[idx].ID)
	}

	sol := NearestEdge(peers)
	sol.SuperPeers = superPeers
	return sol
}
