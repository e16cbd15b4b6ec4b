package topology

import (
	"fmt"
	"math/rand"
	"strings"

	"edgeplace/internal/model"
)

var regions = []string{
	"us-east", "us-west", "eu-west", "eu-central", "asia-pacific",
	"asia-southeast", "india", "australia", "brazil", "canada",
}

var edgeANearRegions = map[string]bool{
	"us-east": true, "us-west": true, "canada": true, "brazil": true,
}

var edgeBNearRegions = map[string]bool{
	"eu-west": true, "eu-central": true,
}

// Generate builds a synthetic peer network of the given size. Peers in the
// Americas sit close to edge A, European peers close to edge B, and the
// remaining regions lean toward B with longer tails. Pairwise latency
// follows region proximity. Deterministic for a given seed.
func Generate(numPeers int, seed int64) model.Topology {
	rng := rand.New(rand.NewSource(seed))

	topo := model.Topology{
		ID:      fmt.Sprintf("topo-%d-%d", numPeers, seed),
		Seed:    seed,
		Peers:   make([]model.Peer, 0, numPeers),
		PeerRTT: make(map[string]float64, numPeers*numPeers),
		EdgeRTT: make(map[string]float64, numPeers*2),
	}

	for i := 1; i <= numPeers; i++ {
		peerID := fmt.Sprintf("peer-%d", i)
		region := regions[rng.Intn(len(regions))]

		var rttA, rttB float64
		switch {
		case edgeANearRegions[region]:
			rttA = uniform(rng, 15, 50)
			rttB = uniform(rng, 80, 150)
		case edgeBNearRegions[region]:
			rttA = uniform(rng, 70, 120)
			rttB = uniform(rng, 20, 45)
		default:
			rttA = uniform(rng, 100, 200)
			rttB = uniform(rng, 30, 80)
		}
		rttA = max(10, rttA+uniform(rng, -5, 5))
		rttB = max(10, rttB+uniform(rng, -5, 5))

		neighbors := make([]string, 0)
		for j := 1; j <= numPeers; j++ {
			if j != i && rng.Float64() < 0.3 {
				neighbors = append(neighbors, fmt.Sprintf("peer-%d", j))
			}
		}

		topo.Peers = append(topo.Peers, model.Peer{
			ID:        peerID,
			Region:    region,
			Demand:    uniform(rng, 50, 500),
			RTTEdgeA:  rttA,
			RTTEdgeB:  rttB,
			Neighbors: neighbors,
		})
		topo.EdgeRTT[EdgeKey(peerID, model.EdgeA)] = rttA
		topo.EdgeRTT[EdgeKey(peerID, model.EdgeB)] = rttB
	}

	for _, peerI := range topo.Peers {
		for _, peerJ := range topo.Peers {
			if peerI.ID == peerJ.ID {
				continue
			}
			var rtt float64
			switch {
			case peerI.Region == peerJ.Region:
				rtt = uniform(rng, 10, 30)
			case continent(peerI.Region) == continent(peerJ.Region):
				rtt = uniform(rng, 30, 80)
			default:
				rtt = uniform(rng, 80, 200)
			}
			topo.PeerRTT[PeerPairKey(peerI.ID, peerJ.ID)] = rtt
		}
	}

	return topo
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func continent(region string) string {
	prefix, _, _ := strings.Cut(region, "-")
	return prefix
}
