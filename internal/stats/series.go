package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"edgeplace/internal/model"
)

// SeriesPoint is one generation's value for a single tracked metric.
type SeriesPoint struct {
	Generation int     `json:"generation"`
	Value      float64 `json:"value"`
}

func BestFitnessSeries(history []model.GenerationRecord) []SeriesPoint {
	return series(history, func(r model.GenerationRecord) float64 { return r.BestFitness })
}

func MeanFitnessSeries(history []model.GenerationRecord) []SeriesPoint {
	return series(history, func(r model.GenerationRecord) float64 { return r.MeanFitness })
}

func DelaySeries(history []model.GenerationRecord) []SeriesPoint {
	return series(history, func(r model.GenerationRecord) float64 { return r.BestAvgDelay })
}

func ImbalanceSeries(history []model.GenerationRecord) []SeriesPoint {
	return series(history, func(r model.GenerationRecord) float64 { return r.BestLoadImbalance })
}

func series(history []model.GenerationRecord, pick func(model.GenerationRecord) float64) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(history))
	for _, record := range history {
		points = append(points, SeriesPoint{Generation: record.Generation, Value: pick(record)})
	}
	return points
}

// WriteConvergenceCSV emits the full generation history as CSV for external
// charting tools, one row per generation.
func WriteConvergenceCSV(w io.Writer, history []model.GenerationRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"generation", "best_fitness", "avg_fitness",
		"best_avg_delay_ms", "best_load_imbalance",
		"best_edge_a_load_kbps", "best_edge_b_load_kbps",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, record := range history {
		row := []string{
			strconv.Itoa(record.Generation),
			formatFloat(record.BestFitness),
			formatFloat(record.MeanFitness),
			formatFloat(record.BestAvgDelay),
			formatFloat(record.BestLoadImbalance),
			formatFloat(record.BestEdgeALoad),
			formatFloat(record.BestEdgeBLoad),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush convergence csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
