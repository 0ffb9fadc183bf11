// Package health tracks device transmission reliability.
package health

import (
	"math"
	"sync"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
)

// Tracker counts reading transmissions for one device and classifies its
// reliability. Safe for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	deviceID   string
	deviceName string
	startTime  time.Time
	total      int64
	successful int64
	failed     int64
	lastOK     *time.Time
	now        func() time.Time
}

// NewTracker starts tracking a device from now. A nil clock uses time.Now.
func NewTracker(deviceID, deviceName string, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		deviceID:   deviceID,
		deviceName: deviceName,
		startTime:  now().UTC(),
		now:        now,
	}
}

// Record registers one transmission attempt.
func (t *Tracker) Record(success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	if success {
		t.successful++
		ts := t.now().UTC()
		t.lastOK = &ts
	} else {
		t.failed++
	}
}

// Snapshot returns the current health status. A device with no attempts yet
// counts as fully reliable.
func (t *Tracker) Snapshot() models.DeviceHealth {
	t.mu.Lock()
	defer t.mu.Unlock()

	nowUTC := t.now().UTC()
	reliability := 100.0
	if t.total > 0 {
		reliability = float64(t.successful) / float64(t.total) * 100
	}

	status := models.HealthHealthy
	switch {
	case reliability < 80:
		status = models.HealthCritical
	case reliability < 95:
		status = models.HealthDegraded
	}

	var lastOK *time.Time
	if t.lastOK != nil {
		ts := *t.lastOK
		lastOK = &ts
	}

	return models.DeviceHealth{
		DeviceID:                   t.deviceID,
		DeviceName:                 t.deviceName,
		Status:                     status,
		UptimeHours:                round2(nowUTC.Sub(t.startTime).Hours()),
		TotalReadings:              t.total,
		SuccessfulReadings:         t.successful,
		FailedReadings:             t.failed,
		ReliabilityPercent:         round2(reliability),
		LastSuccessfulTransmission: lastOK,
		LastUpdate:                 nowUTC,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
