package forecast

import (
	"github.com/pral10/SmartIoT/internal/domain/models"
	domrepo "github.com/pral10/SmartIoT/internal/domain/repository"
)

// AnnotateHistory fills predicted_temp for every point of a historical
// series, for charting. The forecast at index i is computed from points[0..i]
// only, never from later data, so the annotated line is exactly what a live
// forecaster would have drawn at each moment.
//
// Points that already carry a forecast are passed through untouched: the
// engine only fills gaps, it never recomputes an upstream decision.
func (e *Engine) AnnotateHistory(points []models.Reading, method domrepo.Method, horizonMinutes float64) ([]models.Reading, error) {
	if err := validateArgs(method, horizonMinutes); err != nil {
		return nil, err
	}

	out := make([]models.Reading, len(points))
	for i, p := range points {
		if p.HasPrediction() {
			out[i] = p
			continue
		}
		out[i] = p.WithPrediction(e.forecastOne(points[:i], p, method, horizonMinutes))
	}
	return out, nil
}
