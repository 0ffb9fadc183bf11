package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	readingsProcessed *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	temperature       *prometheus.GaugeVec
	predictedTemp     *prometheus.GaugeVec
	alertsTotal       *prometheus.CounterVec
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		readingsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartiot_readings_processed_total",
				Help: "Total number of readings written to a backend",
			},
			[]string{"backend", "device_id"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartiot_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		temperature: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "smartiot_temperature_celsius",
				Help: "Last observed temperature for a device",
			},
			[]string{"device_id"},
		),
		predictedTemp: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "smartiot_predicted_temperature_celsius",
				Help: "Last forecast temperature for a device",
			},
			[]string{"device_id"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartiot_alerts_total",
				Help: "Total number of alerts raised",
			},
			[]string{"device_id", "category"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartiot_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordReadingProcessed records a reading written to a backend.
func (r *Recorder) RecordReadingProcessed(backend, deviceID string) {
	r.readingsProcessed.WithLabelValues(backend, deviceID).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordTemperature records the observed and forecast temperature for a device.
func (r *Recorder) RecordTemperature(deviceID string, actual, predicted float64) {
	r.temperature.WithLabelValues(deviceID).Set(actual)
	r.predictedTemp.WithLabelValues(deviceID).Set(predicted)
}

// RecordAlert records a raised alert.
func (r *Recorder) RecordAlert(deviceID, category string) {
	r.alertsTotal.WithLabelValues(deviceID, category).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
