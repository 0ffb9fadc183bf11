package forecast

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
	domrepo "github.com/pral10/SmartIoT/internal/domain/repository"
)

func reading(temp float64) models.Reading {
	return models.Reading{DeviceID: "sensor-001", Temperature: temp, Timestamp: time.Now().UTC()}
}

func readings(temps ...float64) []models.Reading {
	out := make([]models.Reading, 0, len(temps))
	for _, v := range temps {
		out = append(out, reading(v))
	}
	return out
}

func newTestEngine() *Engine {
	return NewEngine(rand.New(rand.NewSource(42)))
}

func TestForecastOneFallbackOnUnusableCurrent(t *testing.T) {
	e := newTestEngine()
	// JSON null decodes to 0, which is not a usable temperature.
	got, err := e.ForecastOne(nil, models.Reading{}, domrepo.MethodExponential, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != FallbackTemperature {
		t.Fatalf("expected fallback %v, got %v", FallbackTemperature, got)
	}

	got, err = e.ForecastOne(nil, reading(math.NaN()), domrepo.MethodMovingAverage, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != FallbackTemperature {
		t.Fatalf("expected fallback for NaN, got %v", got)
	}
}

func TestForecastOneInvalidHorizon(t *testing.T) {
	e := newTestEngine()
	for _, h := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := e.ForecastOne(nil, reading(22.0), domrepo.MethodExponential, h); err == nil {
			t.Fatalf("expected error for horizon %v", h)
		}
	}
}

func TestForecastOneUnknownMethod(t *testing.T) {
	e := newTestEngine()
	if _, err := e.ForecastOne(nil, reading(22.0), domrepo.Method("arima"), 7.5); err == nil {
		t.Fatalf("expected error for unknown method")
	}
}

func TestForecastOneMatchesExponential(t *testing.T) {
	e := newTestEngine()
	// 1 minute = 12 steps at the 5s sampling period; the linear series
	// extrapolates exactly and clears the visibility floor untouched.
	got, err := e.ForecastOne(readings(20.0, 20.5), reading(21.0), domrepo.MethodExponential, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-27.0) > 1e-9 {
		t.Fatalf("expected 27.0, got %v", got)
	}
}

func TestForecastOneSanitizesHistory(t *testing.T) {
	e := newTestEngine()
	dirty, err := e.ForecastOne(readings(20.0, -4, math.NaN(), 20.5), reading(21.0), domrepo.MethodExponential, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clean, err := e.ForecastOne(readings(20.0, 20.5), reading(21.0), domrepo.MethodExponential, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dirty != clean {
		t.Fatalf("invalid history values leaked: %v vs %v", dirty, clean)
	}
}

func TestVisibilityFloorFollowsRisingDelta(t *testing.T) {
	e := newTestEngine()
	// Two points stay below the exponential minimum, so the raw forecast
	// equals the current value and must be nudged along the rising delta.
	got, err := e.ForecastOne(readings(21.9), reading(22.0), domrepo.MethodExponential, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-22.2) > 1e-9 {
		t.Fatalf("expected nudge up to 22.2, got %v", got)
	}
}

func TestVisibilityFloorFollowsFallingDelta(t *testing.T) {
	e := newTestEngine()
	got, err := e.ForecastOne(readings(22.1), reading(22.0), domrepo.MethodExponential, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-21.8) > 1e-9 {
		t.Fatalf("expected nudge down to 21.8, got %v", got)
	}
}

func TestVisibilityFloorTieBreakIsSymmetric(t *testing.T) {
	// A flat delta picks a random direction; both outcomes are valid, and a
	// seeded source must be deterministic.
	e := NewEngine(rand.New(rand.NewSource(7)))
	got, err := e.ForecastOne(readings(22.0), reading(22.0), domrepo.MethodExponential, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(math.Abs(got-22.0)-MinVisibleDelta) > 1e-9 {
		t.Fatalf("expected exactly %v gap, got %v", MinVisibleDelta, got)
	}

	again := NewEngine(rand.New(rand.NewSource(7)))
	rep, err := again.ForecastOne(readings(22.0), reading(22.0), domrepo.MethodExponential, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep != got {
		t.Fatalf("same seed produced %v then %v", got, rep)
	}
}

func TestVisibilityFloorReclampAtRangeEdge(t *testing.T) {
	e := newTestEngine()
	// Nudging down from just above the lower bound re-clamps to 15.0 and is
	// allowed to shrink the visible gap again.
	got, err := e.ForecastOne(readings(15.1), reading(15.05), domrepo.MethodExponential, 7.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != MinTemperature {
		t.Fatalf("expected clamp at %v, got %v", MinTemperature, got)
	}
}

func TestForecastNotNudgedWhenGapIsVisible(t *testing.T) {
	e := newTestEngine()
	// mean(21.5, 22.0, 22.0, 22.25) = 21.9375 with zero steps; the gap to
	// the current 22.25 is 0.3125 >= 0.2, so the raw value passes through.
	// The exact-0.2 boundary is deliberately untested: the trigger is a
	// strict less-than and 0.2 is not representable exactly in binary.
	got, err := e.ForecastOne(readings(21.5, 22.0, 22.0), reading(22.25), domrepo.MethodMovingAverage, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-21.94) > 1e-9 {
		t.Fatalf("expected untouched mean 21.94, got %v", got)
	}
}

func TestForecastOneAlwaysInRange(t *testing.T) {
	e := newTestEngine()
	src := rand.New(rand.NewSource(99))
	for trial := 0; trial < 500; trial++ {
		n := src.Intn(40)
		hist := make([]models.Reading, 0, n)
		for i := 0; i < n; i++ {
			hist = append(hist, reading(10 + src.Float64()*30))
		}
		cur := reading(10 + src.Float64()*30)
		method := domrepo.MethodExponential
		if trial%2 == 1 {
			method = domrepo.MethodMovingAverage
		}
		got, err := e.ForecastOne(hist, cur, method, src.Float64()*30)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got < MinTemperature || got > MaxTemperature {
			t.Fatalf("trial %d: forecast %v outside [%v, %v]", trial, got, MinTemperature, MaxTemperature)
		}
		if math.Abs(got*100-math.Round(got*100)) > 1e-9 {
			t.Fatalf("trial %d: forecast %v not rounded to 2 decimals", trial, got)
		}
	}
}
