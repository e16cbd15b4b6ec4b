package topology

import (
	"edgeplace/internal/model"
)

// DefaultPeerRTT is assumed for peer pairs with no measurement in either
// direction.
const DefaultPeerRTT = 100.0

// Distances answers latency lookups over one topology. Lookups never fail:
// missing data degrades to a documented default instead of an error.
type Distances struct {
	peerRTT map[string]float64
	edgeRTT map[string]float64
	peers   map[string]model.Peer
}

func NewDistances(topo model.Topology) *Distances {
	return &Distances{
		peerRTT: topo.PeerRTT,
		edgeRTT: topo.EdgeRTT,
		peers:   topo.PeerByID(),
	}
}

// PeerDistance returns the latency between two peers. The pairwise table is
// symmetric in meaning but keyed directionally, so both orderings are tried.
func (d *Distances) PeerDistance(i, j string) float64 {
	if i == j {
		return 0
	}
	if rtt, ok := d.peerRTT[PeerPairKey(i, j)]; ok {
		return rtt
	}
	if rtt, ok := d.peerRTT[PeerPairKey(j, i)]; ok {
		return rtt
	}
	return DefaultPeerRTT
}

// EdgeDistance returns the latency from a peer to an edge, falling back to
// the peer's own stored measurement when the table has no entry.
func (d *Distances) EdgeDistance(peerID string, edge model.Edge) float64 {
	if rtt, ok := d.edgeRTT[EdgeKey(peerID, edge)]; ok {
		return rtt
	}
	if peer, ok := d.peers[peerID]; ok {
		return peer.RTTToEdge(edge)
	}
	return DefaultPeerRTT
}

// PeerPairKey encodes a directed peer pair as a table key.
func PeerPairKey(i, j string) string {
	return i + "|" + j
}

// EdgeKey encodes a (peer, edge) pair as a table key.
func EdgeKey(peerID string, edge model.Edge) string {
	return peerID + "|" + string(edge)
}
