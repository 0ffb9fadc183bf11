package models

import "time"

// Device health statuses derived from transmission reliability.
const (
	HealthHealthy  = "HEALTHY"
	HealthDegraded = "DEGRADED"
	HealthCritical = "CRITICAL"
)

// DeviceHealth is a point-in-time snapshot of a device's reliability.
type DeviceHealth struct {
	DeviceID                   string     `json:"device_id"`
	DeviceName                 string     `json:"device_name"`
	Status                     string     `json:"status"`
	UptimeHours                float64    `json:"uptime_hours"`
	TotalReadings              int64      `json:"total_readings"`
	SuccessfulReadings         int64      `json:"successful_readings"`
	FailedReadings             int64      `json:"failed_readings"`
	ReliabilityPercent         float64    `json:"reliability_percent"`
	LastSuccessfulTransmission *time.Time `json:"last_successful_transmission,omitempty"`
	LastUpdate                 time.Time  `json:"last_update"`
}
