package alerts

import (
	"testing"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
)

func sample(temp, humidity float64, motion int) models.Reading {
	return models.Reading{
		DeviceID:    "sensor-001",
		Temperature: temp,
		Humidity:    humidity,
		Motion:      motion,
		Timestamp:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func find(alerts []models.Alert, category, typ string) *models.Alert {
	for i := range alerts {
		if alerts[i].Category == category && alerts[i].Type == typ {
			return &alerts[i]
		}
	}
	return nil
}

func TestEvaluateQuietReading(t *testing.T) {
	e := NewEvaluator()
	got := e.Evaluate(sample(22.0, 45.0, 0), 22.2, models.DefaultThresholds())
	if len(got) != 0 {
		t.Fatalf("expected no alerts, got %v", got)
	}
}

func TestHighTemperatureLatches(t *testing.T) {
	e := NewEvaluator()
	th := models.DefaultThresholds()

	first := e.Evaluate(sample(31.0, 45.0, 0), 22.0, th)
	a := find(first, models.CategoryTemperature, models.AlertTypeThreshold)
	if a == nil {
		t.Fatalf("expected high temperature alert, got %v", first)
	}
	if a.Severity != models.SeverityHigh {
		t.Fatalf("expected HIGH severity, got %s", a.Severity)
	}

	// Still above the limit: the latch holds, no repeat.
	second := e.Evaluate(sample(31.5, 45.0, 0), 22.0, th)
	if find(second, models.CategoryTemperature, models.AlertTypeThreshold) != nil {
		t.Fatalf("latched condition alerted again: %v", second)
	}

	// Drop below the limit to clear the latch, then trip it again.
	e.Evaluate(sample(29.0, 45.0, 0), 22.0, th)
	third := e.Evaluate(sample(30.0, 45.0, 0), 22.0, th)
	if find(third, models.CategoryTemperature, models.AlertTypeThreshold) == nil {
		t.Fatalf("cleared condition did not re-alert: %v", third)
	}
}

func TestLowTemperatureSeverity(t *testing.T) {
	e := NewEvaluator()
	got := e.Evaluate(sample(17.0, 45.0, 0), 17.2, models.DefaultThresholds())
	a := find(got, models.CategoryTemperature, models.AlertTypeThreshold)
	if a == nil {
		t.Fatalf("expected low temperature alert, got %v", got)
	}
	if a.Severity != models.SeverityMedium {
		t.Fatalf("expected MEDIUM severity, got %s", a.Severity)
	}
}

func TestHumidityBounds(t *testing.T) {
	e := NewEvaluator()
	th := models.DefaultThresholds()

	low := e.Evaluate(sample(22.0, 35.0, 0), 22.2, th)
	if find(low, models.CategoryHumidity, models.AlertTypeThreshold) == nil {
		t.Fatalf("expected low humidity alert, got %v", low)
	}

	// Exactly at the low bound clears the latch.
	cleared := e.Evaluate(sample(22.0, 40.0, 0), 22.2, th)
	if len(cleared) != 0 {
		t.Fatalf("boundary reading should not alert: %v", cleared)
	}

	high := e.Evaluate(sample(22.0, 65.0, 0), 22.2, th)
	if find(high, models.CategoryHumidity, models.AlertTypeThreshold) == nil {
		t.Fatalf("expected high humidity alert, got %v", high)
	}
}

func TestMotionEventLatches(t *testing.T) {
	e := NewEvaluator()
	th := models.DefaultThresholds()

	first := e.Evaluate(sample(22.0, 45.0, 1), 22.2, th)
	a := find(first, models.CategoryMotion, models.AlertTypeEvent)
	if a == nil || a.Severity != models.SeverityInfo || a.Message != "Motion detected" {
		t.Fatalf("unexpected motion alert: %v", first)
	}

	// Motion persisting across samples is one event, not many.
	if got := e.Evaluate(sample(22.0, 45.0, 1), 22.2, th); len(got) != 0 {
		t.Fatalf("persistent motion re-alerted: %v", got)
	}
	e.Evaluate(sample(22.0, 45.0, 0), 22.2, th)
	if got := e.Evaluate(sample(22.0, 45.0, 1), 22.2, th); find(got, models.CategoryMotion, models.AlertTypeEvent) == nil {
		t.Fatalf("new motion after a gap did not alert: %v", got)
	}
}

func TestPredictiveAlertDoesNotLatch(t *testing.T) {
	e := NewEvaluator()
	th := models.DefaultThresholds()

	for i := 0; i < 3; i++ {
		got := e.Evaluate(sample(28.0, 45.0, 0), 31.5, th)
		a := find(got, models.CategoryTemperature, models.AlertTypePredictive)
		if a == nil {
			t.Fatalf("round %d: expected predictive alert, got %v", i, got)
		}
		if a.Severity != models.SeverityHigh {
			t.Fatalf("expected HIGH severity, got %s", a.Severity)
		}
	}

	// Forecast exactly at the limit does not fire; the trigger is strict.
	if got := e.Evaluate(sample(28.0, 45.0, 0), th.TempHigh, th); find(got, models.CategoryTemperature, models.AlertTypePredictive) != nil {
		t.Fatalf("predictive alert at the boundary: %v", got)
	}
}

func TestLatchesAreIndependentPerDevice(t *testing.T) {
	e := NewEvaluator()
	th := models.DefaultThresholds()

	a := sample(31.0, 45.0, 0)
	b := sample(31.0, 45.0, 0)
	b.DeviceID = "sensor-002"

	if got := e.Evaluate(a, 22.0, th); len(got) != 1 {
		t.Fatalf("first device: expected one alert, got %v", got)
	}
	got := e.Evaluate(b, 22.0, th)
	if len(got) != 1 || got[0].DeviceID != "sensor-002" {
		t.Fatalf("second device should latch independently: %v", got)
	}
}

func TestResetClearsLatches(t *testing.T) {
	e := NewEvaluator()
	th := models.DefaultThresholds()

	e.Evaluate(sample(31.0, 45.0, 0), 22.0, th)
	e.Reset()
	got := e.Evaluate(sample(31.0, 45.0, 0), 22.0, th)
	if find(got, models.CategoryTemperature, models.AlertTypeThreshold) == nil {
		t.Fatalf("reset did not clear the latch: %v", got)
	}
}
