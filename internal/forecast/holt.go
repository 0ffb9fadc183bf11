package forecast

// Exponential extrapolates a sanitized temperature series (oldest first) by
// steps samples using Holt double-exponential smoothing over the trailing 20
// points. With fewer than 3 points it degrades to the last known value, or
// to the fixed fallback when the series is empty; insufficient data is a
// degraded answer, not an error.
//
// The level/trend recurrence is order-dependent and must walk the window
// strictly oldest to newest.
func Exponential(series []float64, steps int) float64 {
	if len(series) == 0 {
		return FallbackTemperature
	}
	if len(series) < holtMinPoints {
		return series[len(series)-1]
	}

	w := series
	if len(w) > holtWindow {
		w = w[len(w)-holtWindow:]
	}

	level := w[0]
	trend := 0.0
	if len(w) > 1 {
		trend = w[1] - w[0]
	}
	for i := 1; i < len(w); i++ {
		next := levelAlpha*w[i] + (1-levelAlpha)*(level+trend)
		trend = trendBeta*(next-level) + (1-trendBeta)*trend
		level = next
	}

	return clamp(level + trend*float64(steps))
}
