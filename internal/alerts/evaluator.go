// Package alerts turns readings and forecasts into dashboard alerts.
package alerts

import (
	"fmt"
	"sync"

	"github.com/pral10/SmartIoT/internal/domain/models"
)

// latch tracks which conditions already fired for one device. A condition
// raises a single alert when it first trips and stays silent until the
// reading moves back across the threshold.
type latch struct {
	highTemp     bool
	lowTemp      bool
	highHumidity bool
	lowHumidity  bool
	motion       bool
}

// Evaluator applies threshold rules to readings. Safe for concurrent use.
type Evaluator struct {
	mu      sync.Mutex
	devices map[string]*latch
}

func NewEvaluator() *Evaluator {
	return &Evaluator{devices: make(map[string]*latch)}
}

// Evaluate returns the alerts raised by the given reading and its forecast.
// Threshold and motion alerts latch per device; the predictive alert does
// not, it fires on every reading whose forecast breaches the high limit.
func (e *Evaluator) Evaluate(r models.Reading, predicted float64, t models.Thresholds) []models.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.devices[r.DeviceID]
	if !ok {
		st = &latch{}
		e.devices[r.DeviceID] = st
	}

	var out []models.Alert
	add := func(typ, severity, category, message string) {
		out = append(out, models.Alert{
			DeviceID:  r.DeviceID,
			Type:      typ,
			Severity:  severity,
			Category:  category,
			Message:   message,
			Timestamp: r.Timestamp,
		})
	}

	if r.Temperature >= t.TempHigh {
		if !st.highTemp {
			add(models.AlertTypeThreshold, models.SeverityHigh, models.CategoryTemperature,
				fmt.Sprintf("High temperature: %.2f°C (threshold: %.1f°C)", r.Temperature, t.TempHigh))
			st.highTemp = true
		}
	} else {
		st.highTemp = false
	}

	if r.Temperature <= t.TempLow {
		if !st.lowTemp {
			add(models.AlertTypeThreshold, models.SeverityMedium, models.CategoryTemperature,
				fmt.Sprintf("Low temperature: %.2f°C (threshold: %.1f°C)", r.Temperature, t.TempLow))
			st.lowTemp = true
		}
	} else {
		st.lowTemp = false
	}

	if r.Humidity < t.HumidityLow {
		if !st.lowHumidity {
			add(models.AlertTypeThreshold, models.SeverityMedium, models.CategoryHumidity,
				fmt.Sprintf("Low humidity: %.2f%% (threshold: %.1f%%)", r.Humidity, t.HumidityLow))
			st.lowHumidity = true
		}
	} else {
		st.lowHumidity = false
	}

	if r.Humidity > t.HumidityHigh {
		if !st.highHumidity {
			add(models.AlertTypeThreshold, models.SeverityMedium, models.CategoryHumidity,
				fmt.Sprintf("High humidity: %.2f%% (threshold: %.1f%%)", r.Humidity, t.HumidityHigh))
			st.highHumidity = true
		}
	} else {
		st.highHumidity = false
	}

	if r.Motion == 1 {
		if !st.motion {
			add(models.AlertTypeEvent, models.SeverityInfo, models.CategoryMotion, "Motion detected")
			st.motion = true
		}
	} else {
		st.motion = false
	}

	if predicted > t.TempHigh {
		add(models.AlertTypePredictive, models.SeverityHigh, models.CategoryTemperature,
			fmt.Sprintf("Temperature predicted to exceed threshold: %.2f°C", predicted))
	}

	return out
}

// Reset clears all latch state. Used when thresholds change so the new
// limits are evaluated fresh.
func (e *Evaluator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.devices = make(map[string]*latch)
}
