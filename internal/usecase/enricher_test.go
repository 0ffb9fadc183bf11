package usecase

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/pral10/SmartIoT/internal/alerts"
	drepo "github.com/pral10/SmartIoT/internal/domain/repository"
	"github.com/pral10/SmartIoT/internal/forecast"
	"github.com/pral10/SmartIoT/internal/health"
	"github.com/pral10/SmartIoT/pkg/queue"
)

func newTestEnricher(store *fakeStore, q *fakeQueue) (*ReadingEnricher, *health.Registry) {
	engine := forecast.NewEngine(rand.New(rand.NewSource(42)))
	evaluator := alerts.NewEvaluator()
	thresholds := NewThresholdService(nil, 0, evaluator)
	registry := health.NewRegistry(nil)
	metrics := newFakeMetrics()
	proc := NewReadingProcessor(nil, store, metrics, "clickhouse", 0, 0)

	e := NewReadingEnricher(store, engine, evaluator, thresholds, registry, queueOrNil(q), metrics, proc,
		drepo.MethodExponential, 7.5, 20)
	return e, registry
}

// queueOrNil avoids a typed-nil interface when no queue is wired.
func queueOrNil(q *fakeQueue) queue.QueueService {
	if q == nil {
		return nil
	}
	return q
}

func TestEnricherFillsPredictionAndStores(t *testing.T) {
	store := newFakeStore()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		store.seed("esp32-01", readingAt("esp32-01", 22.0, base.Add(time.Duration(i)*5*time.Second)))
	}

	e, _ := newTestEnricher(store, nil)
	r := readingAt("esp32-01", 22.5, base.Add(30*time.Second))

	if err := e.Process(context.Background(), &r); err != nil {
		t.Fatalf("process: %v", err)
	}
	if r.PredictedTemp == nil {
		t.Fatalf("prediction not filled")
	}
	if *r.PredictedTemp < 15.0 || *r.PredictedTemp > 35.0 {
		t.Fatalf("prediction %v out of range", *r.PredictedTemp)
	}

	stored := store.stored("esp32-01")
	if len(stored) != 6 {
		t.Fatalf("stored readings = %d, want 6", len(stored))
	}
	last := stored[len(stored)-1]
	if last.PredictedTemp == nil || *last.PredictedTemp != *r.PredictedTemp {
		t.Fatalf("stored reading missing the computed prediction")
	}
}

func TestEnricherKeepsUpstreamPrediction(t *testing.T) {
	store := newFakeStore()
	e, _ := newTestEnricher(store, nil)

	upstream := 25.5
	r := readingAt("esp32-01", 22.0, time.Now().UTC())
	r.PredictedTemp = &upstream

	if err := e.Process(context.Background(), &r); err != nil {
		t.Fatalf("process: %v", err)
	}
	if *r.PredictedTemp != upstream {
		t.Fatalf("upstream prediction overwritten: got %v, want %v", *r.PredictedTemp, upstream)
	}
}

func TestEnricherDispatchesAlertsToQueue(t *testing.T) {
	store := newFakeStore()
	q := &fakeQueue{}
	e, _ := newTestEnricher(store, q)

	r := readingAt("esp32-01", 35.0, time.Now().UTC()) // above default temp_high 30
	if err := e.Process(context.Background(), &r); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(r.Alerts) == 0 {
		t.Fatalf("expected a high temperature alert")
	}
	if r.Alerts[0].DeviceID != "esp32-01" {
		t.Fatalf("alert missing device id: %+v", r.Alerts[0])
	}
	if q.published() != 1 {
		t.Fatalf("queue messages = %d, want 1", q.published())
	}
	if got := store.storedAlerts(); len(got) != 0 {
		t.Fatalf("alerts stored synchronously despite queue, got %d", len(got))
	}
}

func TestEnricherStoresAlertsWithoutQueue(t *testing.T) {
	store := newFakeStore()
	e, _ := newTestEnricher(store, nil)

	r := readingAt("esp32-01", 35.0, time.Now().UTC())
	if err := e.Process(context.Background(), &r); err != nil {
		t.Fatalf("process: %v", err)
	}
	if got := store.storedAlerts(); len(got) == 0 {
		t.Fatalf("expected alerts persisted through the store")
	}
}

func TestEnricherRecordsHealthOnBackendFailure(t *testing.T) {
	store := newFakeStore()
	e, registry := newTestEnricher(store, nil)

	r := readingAt("esp32-01", 22.0, time.Now().UTC())
	if err := e.Process(context.Background(), &r); err != nil {
		t.Fatalf("first process: %v", err)
	}

	store.mu.Lock()
	store.failStore = true
	store.mu.Unlock()

	r2 := readingAt("esp32-01", 22.1, time.Now().UTC())
	if err := e.Process(context.Background(), &r2); err == nil {
		t.Fatalf("expected backend error")
	}

	snaps := registry.Snapshots()
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %d, want 1", len(snaps))
	}
	if snaps[0].TotalReadings != 2 || snaps[0].FailedReadings != 1 {
		t.Fatalf("health counts = %d total / %d failed, want 2 / 1",
			snaps[0].TotalReadings, snaps[0].FailedReadings)
	}
}
