package main

import (
	"encoding/json"
	"fmt"
	"os"

	"edgeplace/pkg/edgeplace"
)

func loadOptimizeRequestFromConfig(path string) (edgeplace.OptimizeRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return edgeplace.OptimizeRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return edgeplace.OptimizeRequest{}, err
	}

	var req edgeplace.OptimizeRequest
	if v, ok := asString(raw["topology_id"]); ok {
		req.TopologyID = v
	}
	if v, ok := asInt(raw["num_peers"]); ok {
		req.NumPeers = v
	}
	if v, ok := asInt(raw["num_super_peers"]); ok {
		req.NumSuperPeers = v
	}
	if v, ok := asFloat64(raw["alpha"]); ok {
		req.Alpha = v
	}
	if v, ok := asFloat64(raw["beta"]); ok {
		req.Beta = v
	}
	if v, ok := asInt(raw["population_size"]); ok {
		req.PopulationSize = v
	}
	if v, ok := asInt(raw["clone_factor"]); ok {
		req.CloneFactor = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		req.MutationRate = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asFloat64(raw["edge_capacity_kbps"]); ok {
		req.EdgeCapacity = v
	}
	if v, ok := asInt(raw["stagnation_window"]); ok {
		req.StagnationWindow = v
	}

	return req, nil
}

func loadOrDefaultOptimizeRequest(configPath string) (edgeplace.OptimizeRequest, error) {
	if configPath == "" {
		return edgeplace.OptimizeRequest{}, nil
	}
	req, err := loadOptimizeRequestFromConfig(configPath)
	if err != nil {
		return edgeplace.OptimizeRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func overrideFromFlags(req *edgeplace.OptimizeRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "topology":
			req.TopologyID = v.(string)
		case "peers":
			req.NumPeers = v.(int)
		case "super-peers":
			req.NumSuperPeers = v.(int)
		case "alpha":
			req.Alpha = v.(float64)
		case "beta":
			req.Beta = v.(float64)
		case "pop":
			req.PopulationSize = v.(int)
		case "clone-factor":
			req.CloneFactor = v.(int)
		case "mutation-rate":
			req.MutationRate = v.(float64)
		case "gens":
			req.Generations = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "workers":
			req.Workers = v.(int)
		case "stagnation-window":
			req.StagnationWindow = v.(int)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
