package models

import (
	"math"
	"time"
)

// Reading is a single sensor sample as produced by a source (simulator or
// gateway) and as stored/served by the backend. Readings are immutable once
// ingested; the enrichment step only fills predicted_temp when absent.
type Reading struct {
	DeviceID      string    `json:"device_id"`
	DeviceName    string    `json:"device_name,omitempty"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	Motion        int       `json:"motion"`
	Timestamp     time.Time `json:"timestamp"`
	PredictedTemp *float64  `json:"predicted_temp,omitempty"`
	Alerts        []Alert   `json:"alerts,omitempty"`
}

// HasTemperature reports whether the reading carries a usable temperature.
// Zero, negative, NaN and infinite values are all treated as absent, never
// as a measurement. JSON null and missing fields decode to 0 and therefore
// fail this check by construction.
func (r Reading) HasTemperature() bool {
	return !math.IsNaN(r.Temperature) && !math.IsInf(r.Temperature, 0) && r.Temperature > 0
}

// HasPrediction reports whether an upstream collaborator already attached a
// forecast to this reading.
func (r Reading) HasPrediction() bool {
	return r.PredictedTemp != nil
}

// WithPrediction returns a copy of the reading with predicted_temp set.
func (r Reading) WithPrediction(v float64) Reading {
	r.PredictedTemp = &v
	return r
}
