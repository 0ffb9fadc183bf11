package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
	drepo "github.com/pral10/SmartIoT/internal/domain/repository"
	pkgkafka "github.com/pral10/SmartIoT/pkg/kafka"
)

// KafkaReadingsHandler consumes the readings topic and writes to storage.
type KafkaReadingsHandler struct {
	topic   string
	store   drepo.ReadingStore
	metrics drepo.Metrics
}

func NewKafkaReadingsHandler(topic string, store drepo.ReadingStore, metrics drepo.Metrics) *KafkaReadingsHandler {
	return &KafkaReadingsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaReadingsHandler) Topic() string { return h.topic }

func (h *KafkaReadingsHandler) Handle(ctx context.Context, b []byte) error {
	var r models.Reading
	if err := json.Unmarshal(b, &r); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if r.DeviceID == "" || r.Timestamp.IsZero() {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("reading missing device_id or timestamp")
	}
	// E2E latency from reading time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(r.Timestamp).Seconds())

	start := time.Now()
	err := h.store.Store(ctx, &r)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordReadingProcessed("clickhouse", r.DeviceID)

	if len(r.Alerts) > 0 {
		for i := range r.Alerts {
			r.Alerts[i].DeviceID = r.DeviceID
		}
		if err := h.store.StoreAlerts(ctx, r.Alerts); err != nil {
			h.metrics.RecordError("consumer_alerts")
		}
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaReadingsHandler)(nil)
