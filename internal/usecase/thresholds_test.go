package usecase

import (
	"context"
	"testing"

	"github.com/pral10/SmartIoT/internal/alerts"
	"github.com/pral10/SmartIoT/internal/domain/models"
	pkgcache "github.com/pral10/SmartIoT/pkg/cache"
)

func TestThresholdsDefaults(t *testing.T) {
	s := NewThresholdService(nil, 0, nil)
	got := s.Get(context.Background())
	want := models.DefaultThresholds()
	if got != want {
		t.Fatalf("defaults = %+v, want %+v", got, want)
	}
}

func TestThresholdsUpdateRejectsInvalid(t *testing.T) {
	s := NewThresholdService(nil, 0, nil)
	bad := models.Thresholds{TempHigh: 18, TempLow: 30, HumidityHigh: 60, HumidityLow: 40, PredictionDeviation: 2}
	if err := s.Update(context.Background(), bad); err == nil {
		t.Fatalf("expected validation error")
	}
	if got := s.Get(context.Background()); got != models.DefaultThresholds() {
		t.Fatalf("invalid update changed limits: %+v", got)
	}
}

func TestThresholdsUpdatePersistsAndResetsLatches(t *testing.T) {
	c := pkgcache.NewMemoryCache()
	defer c.Close()
	ev := alerts.NewEvaluator()

	// latch a high temperature alert under the defaults
	hot := models.Reading{DeviceID: "esp32-01", Temperature: 35.0, Humidity: 45.0}
	if got := ev.Evaluate(hot, 25.0, models.DefaultThresholds()); len(got) == 0 {
		t.Fatalf("expected initial alert")
	}
	if got := ev.Evaluate(hot, 25.0, models.DefaultThresholds()); len(got) != 0 {
		t.Fatalf("latch did not hold: %+v", got)
	}

	s := NewThresholdService(c, 0, ev)
	updated := models.Thresholds{TempHigh: 32, TempLow: 16, HumidityHigh: 70, HumidityLow: 30, PredictionDeviation: 3}
	if err := s.Update(context.Background(), updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.Get(context.Background()); got != updated {
		t.Fatalf("limits = %+v, want %+v", got, updated)
	}

	// the update cleared latched state: 35 > 32 alerts again
	if got := ev.Evaluate(hot, 25.0, updated); len(got) == 0 {
		t.Fatalf("latches not reset on update")
	}

	// a fresh service loads the persisted limits from the cache
	s2 := NewThresholdService(c, 0, nil)
	if got := s2.Get(context.Background()); got != updated {
		t.Fatalf("reloaded limits = %+v, want %+v", got, updated)
	}
}
