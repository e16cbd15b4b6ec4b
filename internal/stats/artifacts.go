package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"edgeplace/internal/model"
)

const runsDir = "runs"

// RunConfig echoes the parameters of one optimization run into its
// artifacts directory.
type RunConfig struct {
	RunID          string  `json:"run_id"`
	TopologyID     string  `json:"topology_id"`
	NumPeers       int     `json:"num_peers"`
	NumSuperPeers  int     `json:"num_super_peers"`
	Alpha          float64 `json:"alpha"`
	Beta           float64 `json:"beta"`
	PopulationSize int     `json:"population_size"`
	CloneFactor    int     `json:"clone_factor"`
	MutationRate   float64 `json:"mutation_rate"`
	Generations    int     `json:"generations"`
	EdgeCapacity   float64 `json:"edge_capacity_kbps"`
	Seed           int64   `json:"seed"`
	Workers        int     `json:"workers"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

// RunArtifacts is everything one run leaves on disk.
type RunArtifacts struct {
	Config  RunConfig                `json:"config"`
	Best    model.Solution           `json:"best_solution"`
	History []model.GenerationRecord `json:"history"`
}

// WriteRunArtifacts lays out runs/<runID>/{config,best,history}.json under
// baseDir and returns the run directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}
	dir := runDir(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "best.json"), artifacts.Best); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "history.json"), artifacts.History); err != nil {
		return "", err
	}
	return dir, nil
}

// ReadRunArtifacts loads one run back, reporting ok=false when the run
// directory does not exist.
func ReadRunArtifacts(baseDir, runID string) (RunArtifacts, bool, error) {
	if runID == "" {
		return RunArtifacts{}, false, fmt.Errorf("run id is required")
	}
	dir := runDir(baseDir, runID)

	var artifacts RunArtifacts
	ok, err := readJSON(filepath.Join(dir, "config.json"), &artifacts.Config)
	if err != nil || !ok {
		return RunArtifacts{}, false, err
	}
	if _, err := readJSON(filepath.Join(dir, "best.json"), &artifacts.Best); err != nil {
		return RunArtifacts{}, false, err
	}
	if _, err := readJSON(filepath.Join(dir, "history.json"), &artifacts.History); err != nil {
		return RunArtifacts{}, false, err
	}
	return artifacts, true, nil
}

// ListRuns returns the configs of all recorded runs, newest first.
func ListRuns(baseDir string) ([]RunConfig, error) {
	entries, err := os.ReadDir(filepath.Join(baseDir, runsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunConfig{}, nil
		}
		return nil, err
	}

	configs := make([]RunConfig, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var cfg RunConfig
		ok, err := readJSON(filepath.Join(baseDir, runsDir, entry.Name(), "config.json"), &cfg)
		if err != nil {
			return nil, err
		}
		if ok {
			configs = append(configs, cfg)
		}
	}
	sort.Slice(configs, func(i, j int) bool {
		if configs[i].CreatedAtUTC == configs[j].CreatedAtUTC {
			return configs[i].RunID < configs[j].RunID
		}
		return configs[i].CreatedAtUTC > configs[j].CreatedAtUTC
	})
	return configs, nil
}

func runDir(baseDir, runID string) string {
	return filepath.Join(baseDir, runsDir, runID)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
