package storage

import (
	"context"
	"sort"
	"sync"

	"edgeplace/internal/model"
)

type MemoryStore struct {
	mu         sync.RWMutex
	topologies map[string]model.Topology
	placements map[string]model.PlacementRecord
	history    map[string][]model.GenerationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topologies = make(map[string]model.Topology)
	s.placements = make(map[string]model.PlacementRecord)
	s.history = make(map[string][]model.GenerationRecord)
	return nil
}

func (s *MemoryStore) SaveTopology(_ context.Context, topo model.Topology) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topologies[topo.ID] = topo
	return nil
}

func (s *MemoryStore) GetTopology(_ context.Context, id string) (model.Topology, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topo, ok := s.topologies[id]
	return topo, ok, nil
}

func (s *MemoryStore) SavePlacement(_ context.Context, record model.PlacementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.placements[record.RunID] = record
	return nil
}

func (s *MemoryStore) GetPlacement(_ context.Context, runID string) (model.PlacementRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.placements[runID]
	return record, ok, nil
}

func (s *MemoryStore) ListPlacements(_ context.Context) ([]model.PlacementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]model.PlacementRecord, 0, len(s.placements))
	for _, record := range s.placements {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].RunID < records[j].RunID
	})
	return records, nil
}

func (s *MemoryStore) SaveHistory(_ context.Context, runID string, history []model.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationRecord, len(history))
	copy(copied, history)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetHistory(_ context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationRecord, len(history))
	copy(copied, history)
	return copied, true, nil
}
