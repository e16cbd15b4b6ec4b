package storage

import (
	"context"
	"reflect"
	"testing"

	"edgeplace/internal/model"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return store
}

func TestMemoryStoreTopologyRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	topo := model.Topology{
		VersionedRecord: Stamp(),
		ID:              "topo-10-1",
		Seed:            1,
		Peers:           []model.Peer{{ID: "peer-1", Demand: 100}},
		PeerRTT:         map[string]float64{"peer-1|peer-2": 25},
		EdgeRTT:         map[string]float64{"peer-1|A": 20},
	}
	if err := store.SaveTopology(ctx, topo); err != nil {
		t.Fatalf("SaveTopology: %v", err)
	}

	loaded, ok, err := store.GetTopology(ctx, "topo-10-1")
	if err != nil {
		t.Fatalf("GetTopology: %v", err)
	}
	if !ok {
		t.Fatalf("topology should exist")
	}
	if !reflect.DeepEqual(loaded, topo) {
		t.Fatalf("roundtrip mismatch:\ngot  %+v\nwant %+v", loaded, topo)
	}

	if _, ok, err := store.GetTopology(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing topology: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStorePlacementRoundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := model.PlacementRecord{
		VersionedRecord: Stamp(),
		RunID:           "run-b",
		TopologyID:      "topo-10-1",
		NumSuperPeers:   2,
		Alpha:           0.7,
		Beta:            0.3,
		Best: model.Solution{
			SuperPeers:      []string{"peer-1"},
			EdgeAssignments: map[string]model.Edge{"peer-1": model.EdgeA},
			Fitness:         5,
			Evaluated:       true,
		},
	}
	if err := store.SavePlacement(ctx, record); err != nil {
		t.Fatalf("SavePlacement: %v", err)
	}
	other := record
	other.RunID = "run-a"
	if err := store.SavePlacement(ctx, other); err != nil {
		t.Fatalf("SavePlacement: %v", err)
	}

	loaded, ok, err := store.GetPlacement(ctx, "run-b")
	if err != nil || !ok {
		t.Fatalf("GetPlacement: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(loaded, record) {
		t.Fatalf("roundtrip mismatch:\ngot  %+v\nwant %+v", loaded, record)
	}

	records, err := store.ListPlacements(ctx)
	if err != nil {
		t.Fatalf("ListPlacements: %v", err)
	}
	if len(records) != 2 || records[0].RunID != "run-a" || records[1].RunID != "run-b" {
		t.Fatalf("placements should sort by run id, got %+v", records)
	}
}

func TestMemoryStoreHistoryCopies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	history := []model.GenerationRecord{{Generation: 0, BestFitness: 1}, {Generation: 1, BestFitness: 2}}
	if err := store.SaveHistory(ctx, "run-1", history); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	history[0].BestFitness = 99

	loaded, ok, err := store.GetHistory(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("GetHistory: ok=%v err=%v", ok, err)
	}
	if loaded[0].BestFitness != 1 {
		t.Fatalf("saved history must not alias the caller's slice")
	}

	loaded[1].BestFitness = 99
	again, _, err := store.GetHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if again[1].BestFitness != 2 {
		t.Fatalf("returned history must not alias the stored slice")
	}

	if _, ok, err := store.GetHistory(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing history: ok=%v err=%v", ok, err)
	}
}

func TestNewStore(t *testing.T) {
	for _, kind := range []string{"", "memory"} {
		store, err := NewStore(kind, "")
		if err != nil {
			t.Fatalf("NewStore(%q): %v", kind, err)
		}
		if _, ok := store.(*MemoryStore); !ok {
			t.Fatalf("NewStore(%q) should return a memory store", kind)
		}
	}
	if _, err := NewStore("bolt", ""); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}

func TestCloseIfSupported(t *testing.T) {
	if err := CloseIfSupported(NewMemoryStore()); err != nil {
		t.Fatalf("memory store close should be a no-op, got %v", err)
	}
}
