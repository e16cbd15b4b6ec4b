package storage

import (
	"context"

	"edgeplace/internal/model"
)

// Store persists topologies, optimized placements, and per-run generation
// histories.
type Store interface {
	Init(ctx context.Context) error
	SaveTopology(ctx context.Context, topo model.Topology) error
	GetTopology(ctx context.Context, id string) (model.Topology, bool, error)
	SavePlacement(ctx context.Context, record model.PlacementRecord) error
	GetPlacement(ctx context.Context, runID string) (model.PlacementRecord, bool, error)
	ListPlacements(ctx context.Context) ([]model.PlacementRecord, error)
	SaveHistory(ctx context.Context, runID string, history []model.GenerationRecord) error
	GetHistory(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
}
