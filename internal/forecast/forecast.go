// Package forecast implements the causal temperature forecasting engine:
// two fixed low-order smoothing models, a dispatcher that converts time
// horizons to sample steps and enforces the output clamp, and a history
// annotator with a strict no-lookahead guarantee. Everything here is a pure
// function of its inputs; the only randomness is the visibility-floor
// tie-break, which is injected so tests can pin it down.
package forecast

import "math"

// Contract values. These are part of the forecasting contract, not tunable
// configuration: callers and charts rely on the clamp range and the
// visibility floor staying fixed.
const (
	// FallbackTemperature is returned when no usable data exists at all.
	FallbackTemperature = 22.0

	// MinTemperature and MaxTemperature bound every forecast (plausible
	// indoor operating range).
	MinTemperature = 15.0
	MaxTemperature = 35.0

	// MinVisibleDelta is the minimum gap between a forecast and the current
	// reading; anything closer is indistinguishable on the dashboard chart.
	MinVisibleDelta = 0.2

	// StepsPerMinute converts a minute horizon to sample steps at the fixed
	// 5-second sampling period.
	StepsPerMinute = 12
)

// Smoothing parameters and windows.
const (
	levelAlpha = 0.3
	trendBeta  = 0.2

	holtWindow    = 20
	holtMinPoints = 3

	meanWindow    = 15
	trendWindow   = 5
	movingMinimum = 2
)

// Sanitize filters a raw temperature sequence down to usable values: finite
// and strictly positive. Order is preserved since it encodes time; repeated
// equal values are legitimate and kept. Empty input yields empty output.
func Sanitize(raw []float64) []float64 {
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// StepsForHorizon converts a horizon in minutes to a step count at the fixed
// sampling period.
func StepsForHorizon(horizonMinutes float64) int {
	return int(math.Round(horizonMinutes * StepsPerMinute))
}

func clamp(v float64) float64 {
	if v < MinTemperature {
		return MinTemperature
	}
	if v > MaxTemperature {
		return MaxTemperature
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
