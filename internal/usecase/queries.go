package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
	drepo "github.com/pral10/SmartIoT/internal/domain/repository"
	"github.com/pral10/SmartIoT/internal/forecast"
	svccache "github.com/pral10/SmartIoT/internal/service/cache"
	xhttp "github.com/pral10/SmartIoT/pkg/http"
)

// QueryService serves the read side of the dashboard API.
type QueryService struct {
	store        drepo.ReadingStore
	engine       *forecast.Engine
	bytes        svccache.BytesCache
	historyTTL   time.Duration
	historyDepth int
	metrics      drepo.Metrics
}

// NewQueryService creates the read-side service. The byte cache is optional
// and only shortcuts the annotated history endpoint.
func NewQueryService(
	store drepo.ReadingStore,
	engine *forecast.Engine,
	bytes svccache.BytesCache,
	historyTTL time.Duration,
	historyDepth int,
	metrics drepo.Metrics,
) *QueryService {
	if historyTTL <= 0 {
		historyTTL = 5 * time.Second
	}
	if historyDepth <= 0 {
		historyDepth = 20
	}
	return &QueryService{
		store:        store,
		engine:       engine,
		bytes:        bytes,
		historyTTL:   historyTTL,
		historyDepth: historyDepth,
		metrics:      metrics,
	}
}

// Latest returns up to n most recent readings for a device, oldest first.
func (s *QueryService) Latest(ctx context.Context, device string, n int) ([]models.Reading, error) {
	readings, err := s.store.Latest(ctx, device, n)
	if err != nil {
		s.metrics.RecordError("query_latest")
		return nil, fmt.Errorf("latest readings: %w", err)
	}
	return readings, nil
}

// AnnotatedHistory returns the last n readings with predicted_temp filled at
// every point, each forecast computed only from the readings before it.
// Responses are cached for a few seconds keyed by the full parameter set.
func (s *QueryService) AnnotatedHistory(ctx context.Context, device string, n int, method drepo.Method, horizonMinutes float64) ([]models.Reading, error) {
	key := fmt.Sprintf("history:%s:%d:%s:%s", device, n, method,
		strconv.FormatFloat(horizonMinutes, 'f', -1, 64))

	if s.bytes != nil {
		if b, ok, err := s.bytes.GetBytes(key); err == nil && ok {
			var cached []models.Reading
			if err := json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
		}
	}

	readings, err := s.store.Latest(ctx, device, n)
	if err != nil {
		s.metrics.RecordError("query_history")
		return nil, fmt.Errorf("history readings: %w", err)
	}

	annotated, err := s.engine.AnnotateHistory(readings, method, horizonMinutes)
	if err != nil {
		return nil, err
	}

	if s.bytes != nil {
		if b, err := json.Marshal(annotated); err == nil {
			_ = s.bytes.SetBytes(key, b, s.historyTTL)
		}
	}
	return annotated, nil
}

// Forecast computes the forward temperature estimate for the latest reading.
func (s *QueryService) Forecast(ctx context.Context, device string, method drepo.Method, horizonMinutes float64) (*models.ForecastResponse, error) {
	readings, err := s.store.Latest(ctx, device, s.historyDepth+1)
	if err != nil {
		s.metrics.RecordError("query_forecast")
		return nil, fmt.Errorf("forecast readings: %w", err)
	}
	if len(readings) == 0 {
		return nil, xhttp.NotFoundError("no readings for device " + device)
	}

	current := readings[len(readings)-1]
	history := readings[:len(readings)-1]

	predicted, err := s.engine.ForecastOne(history, current, method, horizonMinutes)
	if err != nil {
		return nil, err
	}

	return &models.ForecastResponse{
		Device:               device,
		Method:               string(method),
		HorizonMinutes:       horizonMinutes,
		CurrentTemperature:   current.Temperature,
		PredictedTemperature: predicted,
	}, nil
}

// RecentAlerts returns up to n most recent alerts for a device.
func (s *QueryService) RecentAlerts(ctx context.Context, device string, n int) ([]models.Alert, error) {
	alerts, err := s.store.QueryAlerts(ctx, device, n)
	if err != nil {
		s.metrics.RecordError("query_alerts")
		return nil, fmt.Errorf("recent alerts: %w", err)
	}
	return alerts, nil
}

// ExportCSV streams readings in [from, to] as CSV. Returns the row count.
func (s *QueryService) ExportCSV(ctx context.Context, w io.Writer, device string, from, to time.Time, limit int) (int, error) {
	readings, err := s.store.Query(ctx, device, from, to, limit)
	if err != nil {
		s.metrics.RecordError("query_export")
		return 0, fmt.Errorf("export readings: %w", err)
	}

	cw := csv.NewWriter(w)
	header := []string{"device_id", "timestamp", "temperature", "humidity", "motion", "predicted_temp"}
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	for _, r := range readings {
		predicted := ""
		if r.PredictedTemp != nil {
			predicted = strconv.FormatFloat(*r.PredictedTemp, 'f', 2, 64)
		}
		row := []string{
			r.DeviceID,
			r.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(r.Temperature, 'f', 2, 64),
			strconv.FormatFloat(r.Humidity, 'f', 2, 64),
			strconv.Itoa(r.Motion),
			predicted,
		}
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}
	return len(readings), nil
}
