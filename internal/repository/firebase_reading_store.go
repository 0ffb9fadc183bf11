package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
	"github.com/pral10/SmartIoT/internal/domain/repository"
	xhttp "github.com/pral10/SmartIoT/pkg/http"
)

// FirebaseReadingStore implements ReadingStore against the Firebase Realtime
// Database REST API. Readings land under /sensors, alerts under /alerts and
// health snapshots under /device_health/{id}. Writes retry a few times with a
// fixed delay; reads use limitToLast server-side filtering.
type FirebaseReadingStore struct {
	client     *xhttp.Client
	baseURL    string
	maxRetries int
	retryDelay time.Duration
}

// NewFirebaseReadingStore creates a Firebase-backed store.
func NewFirebaseReadingStore(client *xhttp.Client, baseURL string, maxRetries int, retryDelay time.Duration) *FirebaseReadingStore {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &FirebaseReadingStore{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

func (s *FirebaseReadingStore) Init(context.Context) error {
	return nil // Firebase paths are created on first write
}

// fbReading is the wire form: flat JSON with an RFC3339 timestamp string.
type fbReading struct {
	DeviceID      string   `json:"device_id"`
	DeviceName    string   `json:"device_name,omitempty"`
	Temperature   float64  `json:"temperature"`
	Humidity      float64  `json:"humidity"`
	Motion        int      `json:"motion"`
	Timestamp     string   `json:"timestamp"`
	PredictedTemp *float64 `json:"predicted_temp,omitempty"`
}

func toWire(r *models.Reading) fbReading {
	return fbReading{
		DeviceID:      r.DeviceID,
		DeviceName:    r.DeviceName,
		Temperature:   r.Temperature,
		Humidity:      r.Humidity,
		Motion:        r.Motion,
		Timestamp:     r.Timestamp.UTC().Format(time.RFC3339),
		PredictedTemp: r.PredictedTemp,
	}
}

func fromWire(w fbReading) models.Reading {
	ts, err := time.Parse(time.RFC3339, w.Timestamp)
	if err != nil {
		ts = time.Time{}
	}
	return models.Reading{
		DeviceID:      w.DeviceID,
		DeviceName:    w.DeviceName,
		Temperature:   w.Temperature,
		Humidity:      w.Humidity,
		Motion:        w.Motion,
		Timestamp:     ts.UTC(),
		PredictedTemp: w.PredictedTemp,
	}
}

func (s *FirebaseReadingStore) Store(ctx context.Context, r *models.Reading) error {
	return s.withRetry(ctx, func() error {
		return s.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    s.baseURL + "/sensors.json",
			Body:   toWire(r),
		}, nil)
	})
}

func (s *FirebaseReadingStore) StoreBatch(ctx context.Context, readings []*models.Reading) error {
	for _, r := range readings {
		if r == nil {
			continue
		}
		if err := s.Store(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (s *FirebaseReadingStore) Latest(ctx context.Context, deviceID string, n int) ([]models.Reading, error) {
	// Over-fetch because /sensors holds all devices; filter client-side.
	var raw map[string]fbReading
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + "/sensors.json",
		QueryParams: map[string][]string{
			"orderBy":     {`"timestamp"`},
			"limitToLast": {strconv.Itoa(n * 4)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("firebase latest: %w", err)
	}

	readings := make([]models.Reading, 0, len(raw))
	for _, w := range raw {
		if w.DeviceID != deviceID {
			continue
		}
		readings = append(readings, fromWire(w))
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].Timestamp.Before(readings[j].Timestamp) })
	if len(readings) > n {
		readings = readings[len(readings)-n:]
	}
	return readings, nil
}

func (s *FirebaseReadingStore) Query(ctx context.Context, deviceID string, from, to time.Time, limit int) ([]models.Reading, error) {
	var raw map[string]fbReading
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + "/sensors.json",
		QueryParams: map[string][]string{
			"orderBy": {`"timestamp"`},
			"startAt": {`"` + from.UTC().Format(time.RFC3339) + `"`},
			"endAt":   {`"` + to.UTC().Format(time.RFC3339) + `"`},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("firebase query: %w", err)
	}

	readings := make([]models.Reading, 0, len(raw))
	for _, w := range raw {
		if w.DeviceID != deviceID {
			continue
		}
		readings = append(readings, fromWire(w))
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].Timestamp.Before(readings[j].Timestamp) })
	if limit > 0 && len(readings) > limit {
		readings = readings[:limit]
	}
	return readings, nil
}

func (s *FirebaseReadingStore) StoreAlerts(ctx context.Context, alerts []models.Alert) error {
	for _, a := range alerts {
		a := a
		err := s.withRetry(ctx, func() error {
			return s.client.SendAndParse(ctx, &xhttp.RequestOptions{
				Method: xhttp.MethodPost,
				URL:    s.baseURL + "/alerts.json",
				Body:   a,
			}, nil)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *FirebaseReadingStore) QueryAlerts(ctx context.Context, deviceID string, n int) ([]models.Alert, error) {
	var raw map[string]models.Alert
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + "/alerts.json",
		QueryParams: map[string][]string{
			"orderBy":     {`"timestamp"`},
			"limitToLast": {strconv.Itoa(n * 4)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("firebase alerts: %w", err)
	}

	alerts := make([]models.Alert, 0, len(raw))
	for _, a := range raw {
		if a.DeviceID != deviceID {
			continue
		}
		alerts = append(alerts, a)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Timestamp.After(alerts[j].Timestamp) })
	if len(alerts) > n {
		alerts = alerts[:n]
	}
	return alerts, nil
}

// PublishHealth writes a device health snapshot to /device_health/{id}.
func (s *FirebaseReadingStore) PublishHealth(ctx context.Context, h models.DeviceHealth) error {
	return s.withRetry(ctx, func() error {
		return s.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPut,
			URL:    fmt.Sprintf("%s/device_health/%s.json", s.baseURL, h.DeviceID),
			Body:   h,
		}, nil)
	})
}

func (s *FirebaseReadingStore) Health(ctx context.Context) error {
	// Shallow read of the root confirms the database answers.
	return s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         s.baseURL + "/.json",
		QueryParams: map[string][]string{"shallow": {"true"}},
	}, nil)
}

func (s *FirebaseReadingStore) Close() error { return nil }

func (s *FirebaseReadingStore) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
	return fmt.Errorf("firebase write after %d attempts: %w", s.maxRetries, err)
}

var _ repository.ReadingStore = (*FirebaseReadingStore)(nil)
