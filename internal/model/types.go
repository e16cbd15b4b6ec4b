package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Edge identifies one of the two origin edge servers.
type Edge string

const (
	EdgeA Edge = "A"
	EdgeB Edge = "B"
)

// Other returns the opposite edge label.
func (e Edge) Other() Edge {
	if e == EdgeA {
		return EdgeB
	}
	return EdgeA
}

type Peer struct {
	ID        string   `json:"id"`
	Region    string   `json:"region"`
	Demand    float64  `json:"demand_kbps"`
	RTTEdgeA  float64  `json:"rtt_to_edge_a_ms"`
	RTTEdgeB  float64  `json:"rtt_to_edge_b_ms"`
	Neighbors []string `json:"neighbors,omitempty"`
}

// RTTToEdge returns the peer's own measured latency to an edge.
func (p Peer) RTTToEdge(edge Edge) float64 {
	if edge == EdgeA {
		return p.RTTEdgeA
	}
	return p.RTTEdgeB
}

// Topology is one synthetic network: the peer population plus the latency
// tables the optimizer reads. Immutable for the duration of a run.
type Topology struct {
	VersionedRecord
	ID      string             `json:"id"`
	Seed    int64              `json:"seed"`
	Peers   []Peer             `json:"peers"`
	PeerRTT map[string]float64 `json:"peer_rtt_ms"`
	EdgeRTT map[string]float64 `json:"edge_rtt_ms"`
}

// PeerByID builds an id-keyed index over the peer population.
func (t Topology) PeerByID() map[string]Peer {
	byID := make(map[string]Peer, len(t.Peers))
	for _, peer := range t.Peers {
		byID[peer.ID] = peer
	}
	return byID
}

// Solution is one candidate placement: which peers act as super-peers and
// which edge every peer is bound to. The derived metric fields are only
// meaningful after evaluation; mutating SuperPeers or EdgeAssignments
// leaves them stale until the evaluator runs again.
type Solution struct {
	SuperPeers      []string        `json:"super_peers"`
	EdgeAssignments map[string]Edge `json:"edge_assignments"`

	Fitness       float64 `json:"fitness"`
	AvgDelay      float64 `json:"avg_delay_ms"`
	LoadImbalance float64 `json:"load_imbalance"`
	EdgeALoad     float64 `json:"edge_a_load_kbps"`
	EdgeBLoad     float64 `json:"edge_b_load_kbps"`
	Evaluated     bool    `json:"evaluated"`
}

// Clone deep-copies the super-peer list and edge-assignment map so the copy
// shares no mutable state with the original. Derived fields carry over and
// are recomputed on the next evaluation.
func (s Solution) Clone() Solution {
	cloned := s
	cloned.SuperPeers = append([]string(nil), s.SuperPeers...)
	cloned.EdgeAssignments = make(map[string]Edge, len(s.EdgeAssignments))
	for id, edge := range s.EdgeAssignments {
		cloned.EdgeAssignments[id] = edge
	}
	return cloned
}

// GenerationRecord is one immutable snapshot of the optimization loop,
// appended per generation and never mutated afterwards.
type GenerationRecord struct {
	Generation        int     `json:"generation"`
	BestFitness       float64 `json:"best_fitness"`
	MeanFitness       float64 `json:"avg_fitness"`
	BestAvgDelay      float64 `json:"best_avg_delay"`
	BestLoadImbalance float64 `json:"best_load_imbalance"`
	BestEdgeALoad     float64 `json:"best_edge_a_load"`
	BestEdgeBLoad     float64 `json:"best_edge_b_load"`
}

// PlacementRecord is the persisted output of one optimization run.
type PlacementRecord struct {
	VersionedRecord
	RunID         string             `json:"run_id"`
	TopologyID    string             `json:"topology_id"`
	Seed          int64              `json:"seed"`
	NumSuperPeers int                `json:"num_super_peers"`
	Alpha         float64            `json:"alpha"`
	Beta          float64            `json:"beta"`
	Best          Solution           `json:"best_solution"`
	History       []GenerationRecord `json:"history,omitempty"`
}
