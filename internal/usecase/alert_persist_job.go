package usecase

import (
	"context"
	"fmt"

	"github.com/pral10/SmartIoT/internal/domain/models"
	drepo "github.com/pral10/SmartIoT/internal/domain/repository"
	"github.com/pral10/SmartIoT/pkg/queue"
)

// AlertPersistJob drains queued alerts into the alerts table.
type AlertPersistJob struct {
	store   drepo.ReadingStore
	metrics drepo.Metrics
}

func NewAlertPersistJob(store drepo.ReadingStore, metrics drepo.Metrics) *AlertPersistJob {
	return &AlertPersistJob{store: store, metrics: metrics}
}

func (j *AlertPersistJob) Name() string { return "alert-persist" }
func (j *AlertPersistJob) Type() string { return AlertJobType }

func (j *AlertPersistJob) Handle(ctx context.Context, payload interface{}) error {
	batch, err := queue.ParsePayload[[]models.Alert](payload)
	if err != nil {
		j.metrics.RecordError("alert_job_payload")
		return fmt.Errorf("alert payload: %w", err)
	}
	if batch == nil || len(*batch) == 0 {
		return nil
	}
	if err := j.store.StoreAlerts(ctx, *batch); err != nil {
		j.metrics.RecordError("alert_job_store")
		return fmt.Errorf("store alerts: %w", err)
	}
	return nil
}

var _ queue.Job = (*AlertPersistJob)(nil)
