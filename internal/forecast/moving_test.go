package forecast

import (
	"math"
	"testing"
)

func TestMovingAverageEmptySeries(t *testing.T) {
	if got := MovingAverage(nil, 5); got != FallbackTemperature {
		t.Fatalf("expected fallback %v, got %v", FallbackTemperature, got)
	}
}

func TestMovingAverageSinglePoint(t *testing.T) {
	if got := MovingAverage([]float64{23.7}, 5); got != 23.7 {
		t.Fatalf("expected last value 23.7, got %v", got)
	}
}

func TestMovingAverageMeanPlusTrend(t *testing.T) {
	// mean(20, 21) = 20.5, trend = (21-20)/1 = 1.0, 2 steps ahead -> 22.5.
	got := MovingAverage([]float64{20.0, 21.0}, 2)
	if math.Abs(got-22.5) > 1e-9 {
		t.Fatalf("expected 22.5, got %v", got)
	}
}

func TestMovingAverageZeroHorizon(t *testing.T) {
	got := MovingAverage([]float64{20.0, 22.0}, 0)
	if math.Abs(got-21.0) > 1e-9 {
		t.Fatalf("zero steps should return the mean, got %v", got)
	}
}

func TestMovingAverageWindows(t *testing.T) {
	// 30 points; the mean must only see the trailing 15 and the trend only
	// the trailing 5.
	series := make([]float64, 30)
	for i := range series {
		series[i] = 20.0 + 0.2*float64(i)
	}
	tail := series[len(series)-15:]
	sum := 0.0
	for _, v := range tail {
		sum += v
	}
	mean := sum / 15
	last5 := series[len(series)-5:]
	trend := (last5[4] - last5[0]) / 4

	want := mean + trend*10
	if got := MovingAverage(series, 10); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMovingAverageClamp(t *testing.T) {
	if got := MovingAverage([]float64{30.0, 34.0}, 50); got != MaxTemperature {
		t.Fatalf("expected clamp at %v, got %v", MaxTemperature, got)
	}
	if got := MovingAverage([]float64{20.0, 16.0}, 50); got != MinTemperature {
		t.Fatalf("expected clamp at %v, got %v", MinTemperature, got)
	}
}
