package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
)

// fakeStore is an in-memory ReadingStore for tests.
type fakeStore struct {
	mu        sync.Mutex
	readings  map[string][]models.Reading
	alerts    []models.Alert
	failStore bool
	failQuery bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{readings: make(map[string][]models.Reading)}
}

func (s *fakeStore) seed(device string, rs ...models.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[device] = append(s.readings[device], rs...)
}

func (s *fakeStore) Init(context.Context) error { return nil }

func (s *fakeStore) Store(_ context.Context, r *models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failStore {
		return fmt.Errorf("store down")
	}
	s.readings[r.DeviceID] = append(s.readings[r.DeviceID], *r)
	return nil
}

func (s *fakeStore) StoreBatch(ctx context.Context, rs []*models.Reading) error {
	for _, r := range rs {
		if err := s.Store(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStore) Latest(_ context.Context, device string, n int) ([]models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failQuery {
		return nil, fmt.Errorf("query down")
	}
	all := s.readings[device]
	if len(all) > n {
		all = all[len(all)-n:]
	}
	out := make([]models.Reading, len(all))
	copy(out, all)
	return out, nil
}

func (s *fakeStore) Query(_ context.Context, device string, from, to time.Time, limit int) ([]models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failQuery {
		return nil, fmt.Errorf("query down")
	}
	var out []models.Reading
	for _, r := range s.readings[device] {
		if r.Timestamp.Before(from) || r.Timestamp.After(to) {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) StoreAlerts(_ context.Context, alerts []models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failStore {
		return fmt.Errorf("store down")
	}
	s.alerts = append(s.alerts, alerts...)
	return nil
}

func (s *fakeStore) QueryAlerts(_ context.Context, device string, n int) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Alert
	for i := len(s.alerts) - 1; i >= 0 && len(out) < n; i-- {
		if s.alerts[i].DeviceID == device {
			out = append(out, s.alerts[i])
		}
	}
	return out, nil
}

func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

func (s *fakeStore) storedAlerts() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

func (s *fakeStore) stored(device string) []models.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Reading, len(s.readings[device]))
	copy(out, s.readings[device])
	return out
}

// fakeMetrics counts recorded errors by kind.
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

// fakeQueue records published messages.
type fakeQueue struct {
	mu       sync.Mutex
	messages []interface{}
	fail     bool
}

func (q *fakeQueue) PublishMessage(_ context.Context, _ string, payload interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fail {
		return fmt.Errorf("queue down")
	}
	q.messages = append(q.messages, payload)
	return nil
}

func (q *fakeQueue) published() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

func readingAt(device string, temp float64, ts time.Time) models.Reading {
	return models.Reading{
		DeviceID:    device,
		DeviceName:  "Living Room",
		Temperature: temp,
		Humidity:    45.0,
		Timestamp:   ts,
	}
}
