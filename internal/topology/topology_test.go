package topology

import (
	"reflect"
	"testing"

	"edgeplace/internal/model"
)

func TestGenerateDeterministic(t *testing.T) {
	first := Generate(40, 7)
	second := Generate(40, 7)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed should produce identical topologies")
	}
	if first.ID != "topo-40-7" {
		t.Fatalf("unexpected topology id %q", first.ID)
	}

	other := Generate(40, 8)
	if reflect.DeepEqual(first.Peers, other.Peers) {
		t.Fatalf("different seeds should produce different peer populations")
	}
}

func TestGeneratePeerBounds(t *testing.T) {
	topo := Generate(60, 42)
	if len(topo.Peers) != 60 {
		t.Fatalf("expected 60 peers, got %d", len(topo.Peers))
	}
	for _, peer := range topo.Peers {
		if peer.Demand < 50 || peer.Demand > 500 {
			t.Fatalf("peer %s demand %v out of range", peer.ID, peer.Demand)
		}
		if peer.RTTEdgeA < 10 || peer.RTTEdgeB < 10 {
			t.Fatalf("peer %s has RTT below floor: A=%v B=%v", peer.ID, peer.RTTEdgeA, peer.RTTEdgeB)
		}
	}
}

func TestGenerateRegionBias(t *testing.T) {
	topo := Generate(200, 42)
	for _, peer := range topo.Peers {
		switch peer.Region {
		case "us-east", "us-west", "canada", "brazil":
			if peer.RTTEdgeA >= peer.RTTEdgeB {
				t.Fatalf("americas peer %s should be closer to edge A: A=%v B=%v", peer.ID, peer.RTTEdgeA, peer.RTTEdgeB)
			}
		case "eu-west", "eu-central":
			if peer.RTTEdgeB >= peer.RTTEdgeA {
				t.Fatalf("european peer %s should be closer to edge B: A=%v B=%v", peer.ID, peer.RTTEdgeA, peer.RTTEdgeB)
			}
		}
	}
}

func TestGeneratePairwiseRTTByProximity(t *testing.T) {
	topo := Generate(120, 42)
	for _, peerI := range topo.Peers {
		for _, peerJ := range topo.Peers {
			if peerI.ID == peerJ.ID {
				continue
			}
			rtt, ok := topo.PeerRTT[PeerPairKey(peerI.ID, peerJ.ID)]
			if !ok {
				t.Fatalf("missing pairwise RTT for %s->%s", peerI.ID, peerJ.ID)
			}
			switch {
			case peerI.Region == peerJ.Region:
				if rtt < 10 || rtt > 30 {
					t.Fatalf("same-region RTT %v out of [10,30]", rtt)
				}
			case continent(peerI.Region) == continent(peerJ.Region):
				if rtt < 30 || rtt > 80 {
					t.Fatalf("same-continent RTT %v out of [30,80]", rtt)
				}
			default:
				if rtt < 80 || rtt > 200 {
					t.Fatalf("cross-continent RTT %v out of [80,200]", rtt)
				}
			}
		}
	}
}

func TestDistancesPeerDistance(t *testing.T) {
	topo := model.Topology{
		Peers: []model.Peer{{ID: "peer-1"}, {ID: "peer-2"}, {ID: "peer-3"}},
		PeerRTT: map[string]float64{
			PeerPairKey("peer-1", "peer-2"): 25,
		},
	}
	dist := NewDistances(topo)

	if got := dist.PeerDistance("peer-1", "peer-1"); got != 0 {
		t.Fatalf("self distance = %v, want 0", got)
	}
	if got := dist.PeerDistance("peer-1", "peer-2"); got != 25 {
		t.Fatalf("forward lookup = %v, want 25", got)
	}
	if got := dist.PeerDistance("peer-2", "peer-1"); got != 25 {
		t.Fatalf("reverse lookup = %v, want 25", got)
	}
	if got := dist.PeerDistance("peer-1", "peer-3"); got != DefaultPeerRTT {
		t.Fatalf("unknown pair = %v, want default %v", got, DefaultPeerRTT)
	}
}

func TestDistancesEdgeDistanceFallback(t *testing.T) {
	topo := model.Topology{
		Peers: []model.Peer{{ID: "peer-1", RTTEdgeA: 33, RTTEdgeB: 77}},
		EdgeRTT: map[string]float64{
			EdgeKey("peer-1", model.EdgeA): 30,
		},
	}
	dist := NewDistances(topo)

	if got := dist.EdgeDistance("peer-1", model.EdgeA); got != 30 {
		t.Fatalf("table lookup = %v, want 30", got)
	}
	if got := dist.EdgeDistance("peer-1", model.EdgeB); got != 77 {
		t.Fatalf("peer fallback = %v, want 77", got)
	}
	if got := dist.EdgeDistance("peer-9", model.EdgeA); got != DefaultPeerRTT {
		t.Fatalf("unknown peer = %v, want default %v", got, DefaultPeerRTT)
	}
}
