package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
)

func TestKafkaHandlerStoresReading(t *testing.T) {
	store := newFakeStore()
	m := newFakeMetrics()
	h := NewKafkaReadingsHandler("smartiot.readings", store, m)

	if got := h.Topic(); got != "smartiot.readings" {
		t.Fatalf("Topic() = %q", got)
	}

	r := readingAt("esp32-01", 22.5, time.Now().UTC())
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := h.Handle(context.Background(), b); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	stored := store.stored("esp32-01")
	if len(stored) != 1 {
		t.Fatalf("stored %d readings, want 1", len(stored))
	}
	if stored[0].Temperature != 22.5 {
		t.Fatalf("stored temperature = %v, want 22.5", stored[0].Temperature)
	}
}

func TestKafkaHandlerRejectsBadMessages(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		kind    string
	}{
		{"not json", []byte("{nope"), "consumer_unmarshal"},
		{"missing device", mustJSON(t, models.Reading{Temperature: 21, Timestamp: time.Now()}), "consumer_invalid"},
		{"zero timestamp", mustJSON(t, models.Reading{DeviceID: "esp32-01", Temperature: 21}), "consumer_invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			m := newFakeMetrics()
			h := NewKafkaReadingsHandler("smartiot.readings", store, m)

			if err := h.Handle(context.Background(), tt.payload); err == nil {
				t.Fatal("Handle() error = nil, want error")
			}
			if m.errors[tt.kind] != 1 {
				t.Fatalf("errors[%s] = %d, want 1", tt.kind, m.errors[tt.kind])
			}
			if len(store.stored("esp32-01")) != 0 {
				t.Fatal("bad message must not be stored")
			}
		})
	}
}

func TestKafkaHandlerStoresEmbeddedAlerts(t *testing.T) {
	store := newFakeStore()
	m := newFakeMetrics()
	h := NewKafkaReadingsHandler("smartiot.readings", store, m)

	r := readingAt("esp32-01", 35.0, time.Now().UTC())
	r.Alerts = []models.Alert{{
		Type:      models.AlertTypeThreshold,
		Severity:  models.SeverityHigh,
		Category:  models.CategoryTemperature,
		Message:   "high temperature",
		Timestamp: r.Timestamp,
	}}
	if err := h.Handle(context.Background(), mustJSON(t, r)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	alerts := store.storedAlerts()
	if len(alerts) != 1 {
		t.Fatalf("stored %d alerts, want 1", len(alerts))
	}
	if alerts[0].DeviceID != "esp32-01" {
		t.Fatalf("alert device = %q, want esp32-01", alerts[0].DeviceID)
	}
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
