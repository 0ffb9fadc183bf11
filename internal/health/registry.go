package health

import (
	"sort"
	"sync"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
)

// Registry keeps one Tracker per device. Trackers are created lazily on the
// first attempt recorded for a device.
type Registry struct {
	mu       sync.Mutex
	trackers map[string]*Tracker
	now      func() time.Time
}

// NewRegistry creates an empty registry. A nil clock uses time.Now.
func NewRegistry(now func() time.Time) *Registry {
	return &Registry{trackers: make(map[string]*Tracker), now: now}
}

// Record registers one transmission attempt for a device.
func (r *Registry) Record(deviceID, deviceName string, success bool) {
	r.tracker(deviceID, deviceName).Record(success)
}

func (r *Registry) tracker(deviceID, deviceName string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trackers[deviceID]
	if !ok {
		t = NewTracker(deviceID, deviceName, r.now)
		r.trackers[deviceID] = t
	}
	return t
}

// Snapshots returns the current health of every tracked device, sorted by
// device id for stable output.
func (r *Registry) Snapshots() []models.DeviceHealth {
	r.mu.Lock()
	trackers := make([]*Tracker, 0, len(r.trackers))
	for _, t := range r.trackers {
		trackers = append(trackers, t)
	}
	r.mu.Unlock()

	out := make([]models.DeviceHealth, 0, len(trackers))
	for _, t := range trackers {
		out = append(out, t.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}
