package stats

import (
	"reflect"
	"testing"

	"edgeplace/internal/model"
)

func sampleArtifacts(runID, createdAt string) RunArtifacts {
	return RunArtifacts{
		Config: RunConfig{
			RunID:          runID,
			TopologyID:     "topo-160-42",
			NumPeers:       160,
			NumSuperPeers:  15,
			Alpha:          0.7,
			Beta:           0.3,
			PopulationSize: 30,
			CloneFactor:    3,
			MutationRate:   0.1,
			Generations:    100,
			Seed:           42,
			Workers:        1,
			CreatedAtUTC:   createdAt,
		},
		Best: model.Solution{
			SuperPeers:      []string{"peer-3", "peer-7"},
			EdgeAssignments: map[string]model.Edge{"peer-1": model.EdgeA, "peer-2": model.EdgeB},
			Fitness:         4.2,
			Evaluated:       true,
		},
		History: []model.GenerationRecord{
			{Generation: 0, BestFitness: 3.1},
			{Generation: 1, BestFitness: 4.2},
		},
	}
}

func TestWriteReadRunArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := sampleArtifacts("run-1", "2026-01-02T03:04:05Z")

	runDir, err := WriteRunArtifacts(dir, artifacts)
	if err != nil {
		t.Fatalf("WriteRunArtifacts: %v", err)
	}
	if runDir == "" {
		t.Fatalf("expected a run directory path")
	}

	loaded, ok, err := ReadRunArtifacts(dir, "run-1")
	if err != nil {
		t.Fatalf("ReadRunArtifacts: %v", err)
	}
	if !ok {
		t.Fatalf("run-1 should exist")
	}
	if !reflect.DeepEqual(loaded, artifacts) {
		t.Fatalf("roundtrip mismatch:\ngot  %+v\nwant %+v", loaded, artifacts)
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatalf("expected error for missing run id")
	}
}

func TestReadRunArtifactsMissing(t *testing.T) {
	_, ok, err := ReadRunArtifacts(t.TempDir(), "no-such-run")
	if err != nil {
		t.Fatalf("ReadRunArtifacts: %v", err)
	}
	if ok {
		t.Fatalf("missing run should report ok=false")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	for _, item := range []struct{ id, at string }{
		{"run-old", "2026-01-01T00:00:00Z"},
		{"run-new", "2026-01-03T00:00:00Z"},
		{"run-mid", "2026-01-02T00:00:00Z"},
	} {
		if _, err := WriteRunArtifacts(dir, sampleArtifacts(item.id, item.at)); err != nil {
			t.Fatalf("WriteRunArtifacts(%s): %v", item.id, err)
		}
	}

	configs, err := ListRuns(dir)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	var order []string
	for _, cfg := range configs {
		order = append(order, cfg.RunID)
	}
	want := []string{"run-new", "run-mid", "run-old"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestListRunsEmpty(t *testing.T) {
	configs, err := ListRuns(t.TempDir())
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(configs) != 0 {
		t.Fatalf("expected no runs, got %d", len(configs))
	}
}
