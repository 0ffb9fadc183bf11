package repository

import (
	"context"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
)

// SensorStream is a live source of readings: the synthetic simulator or a
// WebSocket gateway fronting real devices.
type SensorStream interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Reading, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher pushes readings onto the ingest bus.
type Publisher interface {
	Publish(ctx context.Context, r *models.Reading) error
	PublishBatch(ctx context.Context, readings []*models.Reading) error
	Close() error
}

// ReadingStore persists and serves sensor readings and alerts.
type ReadingStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, r *models.Reading) error
	StoreBatch(ctx context.Context, readings []*models.Reading) error
	// Latest returns up to n most recent readings for a device, oldest first.
	Latest(ctx context.Context, deviceID string, n int) ([]models.Reading, error)
	// Query returns readings in [from, to], oldest first, capped at limit.
	Query(ctx context.Context, deviceID string, from, to time.Time, limit int) ([]models.Reading, error)
	StoreAlerts(ctx context.Context, alerts []models.Alert) error
	QueryAlerts(ctx context.Context, deviceID string, n int) ([]models.Alert, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordReadingProcessed(backend, deviceID string)
	RecordError(kind string)
	RecordTemperature(deviceID string, actual, predicted float64)
	RecordAlert(deviceID, category string)
	RecordLatency(op string, seconds float64)
}
