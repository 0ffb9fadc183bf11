package forecast

import (
	"math/rand"
	"testing"

	domrepo "github.com/pral10/SmartIoT/internal/domain/repository"
)

func TestAnnotateHistoryEmpty(t *testing.T) {
	e := newTestEngine()
	got, err := e.AnnotateHistory(nil, domrepo.MethodExponential, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestAnnotateHistoryInvalidHorizon(t *testing.T) {
	e := newTestEngine()
	if _, err := e.AnnotateHistory(readings(22.0), domrepo.MethodExponential, -1); err == nil {
		t.Fatalf("expected error for negative horizon")
	}
}

func TestAnnotateHistoryNoLookahead(t *testing.T) {
	// Each annotated point must match a live forecast made with only the
	// points before it. Strictly monotonic data keeps the nudge direction
	// deterministic, so the comparison is exact.
	points := readings(20.0, 20.3, 20.6, 20.9, 21.2, 21.5, 21.8)

	e := newTestEngine()
	got, err := e.AnnotateHistory(points, domrepo.MethodExponential, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(points) {
		t.Fatalf("expected %d points, got %d", len(points), len(got))
	}

	live := newTestEngine()
	for i := range points {
		want, err := live.ForecastOne(points[:i], points[i], domrepo.MethodExponential, 7.5)
		if err != nil {
			t.Fatalf("point %d: %v", i, err)
		}
		if !got[i].HasPrediction() {
			t.Fatalf("point %d: missing prediction", i)
		}
		if *got[i].PredictedTemp != want {
			t.Fatalf("point %d: annotated %v, live %v", i, *got[i].PredictedTemp, want)
		}
	}
}

func TestAnnotateHistoryKeepsExistingPredictions(t *testing.T) {
	points := readings(20.0, 20.5, 21.0, 21.5)
	owned := 19.19
	points[2].PredictedTemp = &owned

	e := newTestEngine()
	got, err := e.AnnotateHistory(points, domrepo.MethodMovingAverage, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[2].PredictedTemp != &owned {
		t.Fatalf("existing prediction was replaced: %v", got[2].PredictedTemp)
	}
	for i, p := range got {
		if !p.HasPrediction() {
			t.Fatalf("point %d left without prediction", i)
		}
	}
}

func TestAnnotateHistoryDoesNotMutateInput(t *testing.T) {
	points := readings(20.0, 20.5, 21.0)
	e := newTestEngine()
	if _, err := e.AnnotateHistory(points, domrepo.MethodExponential, 7.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range points {
		if p.PredictedTemp != nil {
			t.Fatalf("input point %d was mutated", i)
		}
	}
}

func TestAnnotateHistorySeededRunsAgree(t *testing.T) {
	// Flat data exercises the random tie-break on every point; two engines
	// with the same seed must annotate identically.
	points := readings(22.0, 22.0, 22.0, 22.0, 22.0)

	a, err := NewEngine(rand.New(rand.NewSource(11))).AnnotateHistory(points, domrepo.MethodExponential, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewEngine(rand.New(rand.NewSource(11))).AnnotateHistory(points, domrepo.MethodExponential, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a {
		if *a[i].PredictedTemp != *b[i].PredictedTemp {
			t.Fatalf("point %d: %v vs %v", i, *a[i].PredictedTemp, *b[i].PredictedTemp)
		}
	}
}
