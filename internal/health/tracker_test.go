package health

import (
	"testing"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
)

func fixedClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

func TestSnapshotBeforeAnyReading(t *testing.T) {
	tr := NewTracker("sensor-001", "Main Sensor Unit", nil)
	got := tr.Snapshot()
	if got.Status != models.HealthHealthy {
		t.Fatalf("expected HEALTHY, got %s", got.Status)
	}
	if got.ReliabilityPercent != 100.0 {
		t.Fatalf("expected 100%% reliability, got %v", got.ReliabilityPercent)
	}
	if got.LastSuccessfulTransmission != nil {
		t.Fatalf("no transmission yet, got %v", got.LastSuccessfulTransmission)
	}
	if got.DeviceID != "sensor-001" || got.DeviceName != "Main Sensor Unit" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestStatusBands(t *testing.T) {
	cases := []struct {
		name    string
		ok, bad int
		status  string
	}{
		{"all good", 20, 0, models.HealthHealthy},
		{"exactly 95", 19, 1, models.HealthHealthy},
		{"degraded", 18, 2, models.HealthDegraded},
		{"exactly 80", 16, 4, models.HealthDegraded},
		{"critical", 10, 10, models.HealthCritical},
	}
	for _, c := range cases {
		tr := NewTracker("sensor-001", "Main Sensor Unit", nil)
		for i := 0; i < c.ok; i++ {
			tr.Record(true)
		}
		for i := 0; i < c.bad; i++ {
			tr.Record(false)
		}
		if got := tr.Snapshot(); got.Status != c.status {
			t.Fatalf("%s: expected %s, got %s (%v%%)", c.name, c.status, got.Status, got.ReliabilityPercent)
		}
	}
}

func TestCountersAndReliabilityRounding(t *testing.T) {
	tr := NewTracker("sensor-001", "Main Sensor Unit", nil)
	tr.Record(true)
	tr.Record(true)
	tr.Record(false)

	got := tr.Snapshot()
	if got.TotalReadings != 3 || got.SuccessfulReadings != 2 || got.FailedReadings != 1 {
		t.Fatalf("unexpected counters: %+v", got)
	}
	// 2/3 = 66.666..., rounded to two decimals.
	if got.ReliabilityPercent != 66.67 {
		t.Fatalf("expected 66.67, got %v", got.ReliabilityPercent)
	}
	if got.Status != models.HealthCritical {
		t.Fatalf("expected CRITICAL, got %s", got.Status)
	}
}

func TestUptimeAndLastTransmission(t *testing.T) {
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	tr := NewTracker("sensor-001", "Main Sensor Unit", fixedClock(start, 30*time.Minute))
	// Clock ticks on every call: construction at 10:30, Record at 11:00,
	// Snapshot at 11:30 gives one hour of uptime.
	tr.Record(true)

	got := tr.Snapshot()
	if got.UptimeHours != 1.0 {
		t.Fatalf("expected 1.0 uptime hours, got %v", got.UptimeHours)
	}
	if got.LastSuccessfulTransmission == nil || !got.LastSuccessfulTransmission.Equal(start.Add(time.Hour)) {
		t.Fatalf("unexpected last transmission: %v", got.LastSuccessfulTransmission)
	}
	if !got.LastUpdate.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("unexpected last update: %v", got.LastUpdate)
	}
}

func TestFailureDoesNotTouchLastTransmission(t *testing.T) {
	tr := NewTracker("sensor-001", "Main Sensor Unit", nil)
	tr.Record(true)
	first := tr.Snapshot().LastSuccessfulTransmission
	tr.Record(false)
	second := tr.Snapshot().LastSuccessfulTransmission
	if first == nil || second == nil || !second.Equal(*first) {
		t.Fatalf("failed transmission moved the marker: %v vs %v", first, second)
	}
}
