package models

// Thresholds hold the alert limits editable from the dashboard config panel.
type Thresholds struct {
	TempHigh            float64 `json:"temp_high"`
	TempLow             float64 `json:"temp_low"`
	HumidityHigh        float64 `json:"humidity_high"`
	HumidityLow         float64 `json:"humidity_low"`
	PredictionDeviation float64 `json:"prediction_deviation"`
}

// DefaultThresholds returns the factory limits used when no stored
// configuration exists.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempHigh:            30.0,
		TempLow:             18.0,
		HumidityHigh:        60.0,
		HumidityLow:         40.0,
		PredictionDeviation: 2.0,
	}
}

// Valid reports whether the limits are internally consistent.
func (t Thresholds) Valid() bool {
	return t.TempLow < t.TempHigh && t.HumidityLow < t.HumidityHigh && t.PredictionDeviation >= 0
}
