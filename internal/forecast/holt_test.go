package forecast

import (
	"math"
	"testing"
)

func TestExponentialEmptySeries(t *testing.T) {
	if got := Exponential(nil, 10); got != FallbackTemperature {
		t.Fatalf("expected fallback %v, got %v", FallbackTemperature, got)
	}
}

func TestExponentialSinglePoint(t *testing.T) {
	if got := Exponential([]float64{22.0}, 10); got != 22.0 {
		t.Fatalf("expected last value 22.0, got %v", got)
	}
}

func TestExponentialTwoPoints(t *testing.T) {
	// Below the 3-point minimum the last value is returned verbatim.
	if got := Exponential([]float64{20.0, 24.5}, 6); got != 24.5 {
		t.Fatalf("expected 24.5, got %v", got)
	}
}

func TestExponentialLinearSeries(t *testing.T) {
	// A perfectly linear series keeps level on the data and trend at the
	// slope, so the recurrence extrapolates exactly: 21.0 + 0.5*12 = 27.0.
	got := Exponential([]float64{20.0, 20.5, 21.0}, 12)
	if math.Abs(got-27.0) > 1e-9 {
		t.Fatalf("expected 27.0, got %v", got)
	}
	if got <= 21.0 {
		t.Fatalf("upward trend must extrapolate above last value, got %v", got)
	}
}

func TestExponentialZeroHorizon(t *testing.T) {
	got := Exponential([]float64{20.0, 20.5, 21.0}, 0)
	if math.Abs(got-21.0) > 1e-9 {
		t.Fatalf("zero steps should return the level, got %v", got)
	}
}

func TestExponentialRollingWindow(t *testing.T) {
	// Values older than the 20-point window must not influence the result.
	old := make([]float64, 30)
	for i := range old {
		old[i] = 34.9 // stale regime
	}
	recent := make([]float64, 20)
	for i := range recent {
		recent[i] = 20.0 + 0.1*float64(i)
	}
	full := append(old, recent...)

	if a, b := Exponential(full, 6), Exponential(recent, 6); a != b {
		t.Fatalf("window leak: full series %v, windowed %v", a, b)
	}
}

func TestExponentialClampHigh(t *testing.T) {
	series := []float64{30.0, 31.0, 32.0, 33.0, 34.0}
	if got := Exponential(series, 100); got != MaxTemperature {
		t.Fatalf("expected clamp at %v, got %v", MaxTemperature, got)
	}
}

func TestExponentialClampLow(t *testing.T) {
	series := []float64{20.0, 19.0, 18.0, 17.0, 16.0}
	if got := Exponential(series, 100); got != MinTemperature {
		t.Fatalf("expected clamp at %v, got %v", MinTemperature, got)
	}
}

func TestExponentialDeterministic(t *testing.T) {
	series := []float64{22.4, 22.1, 22.6, 22.9, 22.7, 23.0}
	a := Exponential(series, 90)
	b := Exponential(series, 90)
	if a != b {
		t.Fatalf("same input produced %v then %v", a, b)
	}
	if a < MinTemperature || a > MaxTemperature {
		t.Fatalf("forecast %v outside bounds", a)
	}
}
