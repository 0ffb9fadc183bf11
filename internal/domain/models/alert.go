package models

import "time"

// Alert types.
const (
	AlertTypeThreshold  = "THRESHOLD"
	AlertTypeEvent      = "EVENT"
	AlertTypePredictive = "PREDICTIVE"
)

// Alert severities.
const (
	SeverityInfo   = "INFO"
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

// Alert categories.
const (
	CategoryTemperature = "TEMPERATURE"
	CategoryHumidity    = "HUMIDITY"
	CategoryMotion      = "MOTION"
)

// Alert is a single condition raised while processing a reading.
type Alert struct {
	DeviceID  string    `json:"device_id,omitempty"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
