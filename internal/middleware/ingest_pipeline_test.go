package middleware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
)

type fakeProc struct {
	mu    sync.Mutex
	fail  bool
	seen  []*models.Reading
	calls int
}

func (f *fakeProc) Process(_ context.Context, r *models.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return fmt.Errorf("downstream down")
	}
	f.seen = append(f.seen, r)
	return nil
}

func (f *fakeProc) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *fakeProc) processed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

type fakeMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{errors: make(map[string]int)} }

func (m *fakeMetrics) RecordReadingProcessed(string, string) {}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}
func (m *fakeMetrics) RecordTemperature(string, float64, float64) {}
func (m *fakeMetrics) RecordAlert(string, string)                 {}
func (m *fakeMetrics) RecordLatency(string, float64)              {}

func (m *fakeMetrics) errCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func sample(device string) *models.Reading {
	return &models.Reading{
		DeviceID:    device,
		DeviceName:  "Room Sensor",
		Temperature: 22.5,
		Humidity:    45.0,
		Motion:      0,
		Timestamp:   time.Now().UTC(),
	}
}

func TestProcessForwardsValidReading(t *testing.T) {
	proc := &fakeProc{}
	p := NewIngestPipeline(proc, newFakeMetrics())

	if err := p.Process(context.Background(), sample("esp32-01")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := proc.processed(); got != 1 {
		t.Fatalf("processed = %d, want 1", got)
	}
}

func TestProcessRejectsInvalidReadings(t *testing.T) {
	proc := &fakeProc{}
	m := newFakeMetrics()
	p := NewIngestPipeline(proc, m)

	bad := []*models.Reading{
		nil,
		func() *models.Reading { r := sample(""); return r }(),
		func() *models.Reading { r := sample("esp32-01"); r.Timestamp = time.Time{}; return r }(),
		func() *models.Reading { r := sample("esp32-01"); r.Temperature = math.NaN(); return r }(),
		func() *models.Reading { r := sample("esp32-01"); r.Temperature = math.Inf(1); return r }(),
		func() *models.Reading { r := sample("esp32-01"); r.Humidity = 150; return r }(),
		func() *models.Reading { r := sample("esp32-01"); r.Humidity = -1; return r }(),
		func() *models.Reading { r := sample("esp32-01"); r.Motion = 2; return r }(),
	}
	for i, r := range bad {
		if err := p.Process(context.Background(), r); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if got := proc.processed(); got != 0 {
		t.Fatalf("processed = %d, want 0", got)
	}
	if got := m.errCount("pipeline_validate"); got != len(bad) {
		t.Fatalf("pipeline_validate errors = %d, want %d", got, len(bad))
	}
}

func TestProcessThrottlesPerDevice(t *testing.T) {
	proc := &fakeProc{}
	m := newFakeMetrics()
	p := NewIngestPipeline(proc, m, WithMaxRPS(1))

	// Two readings inside the same second: second one is dropped silently.
	if err := p.Process(context.Background(), sample("esp32-01")); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := p.Process(context.Background(), sample("esp32-01")); err != nil {
		t.Fatalf("throttled reading should not error, got %v", err)
	}
	if got := proc.processed(); got != 1 {
		t.Fatalf("processed = %d, want 1", got)
	}
	if got := m.errCount("pipeline_throttle"); got != 1 {
		t.Fatalf("pipeline_throttle = %d, want 1", got)
	}

	// A different device is not throttled.
	if err := p.Process(context.Background(), sample("esp32-02")); err != nil {
		t.Fatalf("other device: %v", err)
	}
	if got := proc.processed(); got != 2 {
		t.Fatalf("processed = %d, want 2", got)
	}
}

func TestProcessBuffersOnDownstreamFailure(t *testing.T) {
	proc := &fakeProc{}
	proc.setFail(true)
	m := newFakeMetrics()
	p := NewIngestPipeline(proc, m, WithBufferSize(10))

	if err := p.Process(context.Background(), sample("esp32-01")); err == nil {
		t.Fatalf("expected downstream error")
	}
	if got := m.errCount("pipeline_process"); got != 1 {
		t.Fatalf("pipeline_process = %d, want 1", got)
	}

	// Downstream recovers; the flusher delivers the buffered reading.
	proc.setFail(false)
	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for proc.processed() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("buffered reading never flushed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
