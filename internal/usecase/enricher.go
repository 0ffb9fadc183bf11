package usecase

import (
	"context"
	"time"

	"github.com/pral10/SmartIoT/internal/alerts"
	"github.com/pral10/SmartIoT/internal/domain/models"
	drepo "github.com/pral10/SmartIoT/internal/domain/repository"
	"github.com/pral10/SmartIoT/internal/forecast"
	"github.com/pral10/SmartIoT/internal/health"
	"github.com/pral10/SmartIoT/pkg/queue"
)

// AlertJobType is the queue message type carrying alerts to persist.
const AlertJobType = "alerts.persist"

// ReadingEnricher attaches a forecast, alerts and health accounting to each
// incoming reading before it is routed to the backend.
//
// A reading that already carries predicted_temp keeps it: the enricher only
// fills gaps, it never overwrites an upstream forecast.
type ReadingEnricher struct {
	store      drepo.ReadingStore
	engine     *forecast.Engine
	evaluator  *alerts.Evaluator
	thresholds *ThresholdService
	registry   *health.Registry
	queue      queue.QueueService
	metrics    drepo.Metrics
	proc       *ReadingProcessor

	method       drepo.Method
	horizon      float64
	historyDepth int
}

// NewReadingEnricher creates the enricher. The queue is optional; without it
// alerts are persisted synchronously through the store.
func NewReadingEnricher(
	store drepo.ReadingStore,
	engine *forecast.Engine,
	evaluator *alerts.Evaluator,
	thresholds *ThresholdService,
	registry *health.Registry,
	q queue.QueueService,
	metrics drepo.Metrics,
	proc *ReadingProcessor,
	method drepo.Method,
	horizonMinutes float64,
	historyDepth int,
) *ReadingEnricher {
	if historyDepth <= 0 {
		historyDepth = 20
	}
	return &ReadingEnricher{
		store:        store,
		engine:       engine,
		evaluator:    evaluator,
		thresholds:   thresholds,
		registry:     registry,
		queue:        q,
		metrics:      metrics,
		proc:         proc,
		method:       method,
		horizon:      horizonMinutes,
		historyDepth: historyDepth,
	}
}

// Process enriches the reading and forwards it to the backend processor.
// The device health attempt is recorded against the backend write outcome.
func (e *ReadingEnricher) Process(ctx context.Context, r *models.Reading) error {
	start := time.Now()

	history, err := e.store.Latest(ctx, r.DeviceID, e.historyDepth)
	if err != nil {
		// a cold or unreachable store degrades to a history-free forecast
		e.metrics.RecordError("enrich_history")
		history = nil
	}

	if !r.HasPrediction() {
		pred, ferr := e.engine.ForecastOne(history, *r, e.method, e.horizon)
		if ferr != nil {
			e.metrics.RecordError("enrich_forecast")
			return ferr
		}
		r.PredictedTemp = &pred
	}
	e.metrics.RecordTemperature(r.DeviceID, r.Temperature, *r.PredictedTemp)

	th := e.thresholds.Get(ctx)
	raised := e.evaluator.Evaluate(*r, *r.PredictedTemp, th)
	for i := range raised {
		raised[i].DeviceID = r.DeviceID
		e.metrics.RecordAlert(r.DeviceID, raised[i].Category)
	}
	r.Alerts = raised
	e.dispatchAlerts(ctx, raised)

	err = e.proc.Process(ctx, r)
	e.registry.Record(r.DeviceID, r.DeviceName, err == nil)
	if err != nil {
		return err
	}

	e.metrics.RecordLatency("enrich", time.Since(start).Seconds())
	return nil
}

func (e *ReadingEnricher) dispatchAlerts(ctx context.Context, raised []models.Alert) {
	if len(raised) == 0 {
		return
	}
	if e.queue != nil {
		if err := e.queue.PublishMessage(ctx, AlertJobType, raised); err == nil {
			return
		}
		e.metrics.RecordError("alert_enqueue")
	}
	if err := e.store.StoreAlerts(ctx, raised); err != nil {
		e.metrics.RecordError("alert_store")
	}
}
