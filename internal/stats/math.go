package stats

import (
	"errors"
	"math"
)

var ErrEmptySeries = errors.New("series is empty")

func Avg(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySeries
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values)), nil
}

// Std computes the population standard deviation.
func Std(values []float64) (float64, error) {
	avg, err := Avg(values)
	if err != nil {
		return 0, err
	}
	variance := 0.0
	for _, v := range values {
		variance += (v - avg) * (v - avg)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance), nil
}

// Improvement returns the percentage by which optimized improves on base,
// positive when optimized is lower. Zero base yields zero.
func Improvement(base, optimized float64) float64 {
	if base == 0 {
		return 0
	}
	return (base - optimized) / base * 100
}
