package stats

import (
	"errors"
	"math"
	"testing"
)

func TestAvg(t *testing.T) {
	got, err := Avg([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Avg: %v", err)
	}
	if got != 2.5 {
		t.Fatalf("Avg = %v, want 2.5", got)
	}

	if _, err := Avg(nil); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestStd(t *testing.T) {
	got, err := Std([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if err != nil {
		t.Fatalf("Std: %v", err)
	}
	if math.Abs(got-2) > 1e-12 {
		t.Fatalf("Std = %v, want 2", got)
	}

	constant, err := Std([]float64{3, 3, 3})
	if err != nil {
		t.Fatalf("Std: %v", err)
	}
	if constant != 0 {
		t.Fatalf("Std of constant series = %v, want 0", constant)
	}

	if _, err := Std(nil); !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestImprovement(t *testing.T) {
	if got := Improvement(100, 80); got != 20 {
		t.Fatalf("Improvement(100, 80) = %v, want 20", got)
	}
	if got := Improvement(100, 120); got != -20 {
		t.Fatalf("Improvement(100, 120) = %v, want -20", got)
	}
	if got := Improvement(0, 50); got != 0 {
		t.Fatalf("Improvement with zero base = %v, want 0", got)
	}
}
