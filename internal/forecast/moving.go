package forecast

// MovingAverage extrapolates a sanitized temperature series (oldest first)
// by steps samples using a trailing mean plus a short-window linear trend.
// Lighter than Exponential; kept for comparison on the dashboard. Requires
// at least 2 points, otherwise it degrades to the last value or the fixed
// fallback for an empty series.
func MovingAverage(series []float64, steps int) float64 {
	if len(series) == 0 {
		return FallbackTemperature
	}
	if len(series) < movingMinimum {
		return series[len(series)-1]
	}

	w := series
	if len(w) > meanWindow {
		w = w[len(w)-meanWindow:]
	}
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	mean := sum / float64(len(w))

	t := series
	if len(t) > trendWindow {
		t = t[len(t)-trendWindow:]
	}
	trend := 0.0
	if len(t) >= 2 {
		trend = (t[len(t)-1] - t[0]) / float64(len(t)-1)
	}

	return clamp(mean + trend*float64(steps))
}
