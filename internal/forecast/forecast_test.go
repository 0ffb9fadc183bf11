package forecast

import (
	"math"
	"testing"
)

func TestSanitizeFiltersInvalid(t *testing.T) {
	in := []float64{22.1, -5, math.NaN(), 0, 23.4}
	got := Sanitize(in)
	want := []float64{22.1, 23.4}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSanitizeDropsInfinities(t *testing.T) {
	got := Sanitize([]float64{math.Inf(1), 21.0, math.Inf(-1)})
	if len(got) != 1 || got[0] != 21.0 {
		t.Fatalf("unexpected result %v", got)
	}
}

func TestSanitizeKeepsDuplicatesInOrder(t *testing.T) {
	got := Sanitize([]float64{22.0, 22.0, 21.5, 22.0})
	want := []float64{22.0, 22.0, 21.5, 22.0}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order not preserved at %d: %v", i, got)
		}
	}
}

func TestSanitizeEmpty(t *testing.T) {
	got := Sanitize(nil)
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestStepsForHorizon(t *testing.T) {
	cases := []struct {
		minutes float64
		steps   int
	}{
		{0, 0},
		{1, 12},
		{7.5, 90},
		{0.04, 0}, // rounds down below half a step
		{0.05, 1},
	}
	for _, c := range cases {
		if got := StepsForHorizon(c.minutes); got != c.steps {
			t.Fatalf("horizon %v: expected %d steps, got %d", c.minutes, c.steps, got)
		}
	}
}
