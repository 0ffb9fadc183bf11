package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
	domrepo "github.com/pral10/SmartIoT/internal/domain/repository"
)

// Engine is the single entry point for per-reading forecasts. It holds no
// state between calls besides the random source used for the visibility
// tie-break, so one engine is safely shared across requests.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine. A nil rng gets a time-seeded source; tests
// pass a seeded one to force both tie-break directions.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng}
}

// ForecastOne produces the forward temperature estimate for the current
// reading given its trailing history (oldest first).
//
// Data-quality problems never fail: an unusable current temperature returns
// the fixed fallback, invalid history values are dropped by the sanitizer.
// A negative or non-finite horizon and an unknown method are caller bugs and
// return an error.
func (e *Engine) ForecastOne(history []models.Reading, current models.Reading, method domrepo.Method, horizonMinutes float64) (float64, error) {
	if err := validateArgs(method, horizonMinutes); err != nil {
		return 0, err
	}
	return e.forecastOne(history, current, method, horizonMinutes), nil
}

func (e *Engine) forecastOne(history []models.Reading, current models.Reading, method domrepo.Method, horizonMinutes float64) float64 {
	if !current.HasTemperature() {
		return FallbackTemperature
	}

	steps := StepsForHorizon(horizonMinutes)

	temps := make([]float64, 0, len(history))
	for _, h := range history {
		temps = append(temps, h.Temperature)
	}
	// The current point is always part of the working series: the forecast
	// is "as of now".
	series := append(Sanitize(temps), current.Temperature)
	if len(series) == 0 {
		return current.Temperature
	}

	var out float64
	switch method {
	case domrepo.MethodMovingAverage:
		out = MovingAverage(series, steps)
	default:
		out = Exponential(series, steps)
	}

	out = e.visibilityFloor(out, current.Temperature, series)
	return round2(out)
}

// visibilityFloor pushes a forecast that sits within MinVisibleDelta of the
// current reading out to exactly that gap, so the predicted line stays
// distinguishable on the chart. Direction follows the last observed delta;
// a flat or unknown delta picks a random direction. The result is
// re-clamped, which at the range edges can shrink the gap again.
func (e *Engine) visibilityFloor(forecast, current float64, series []float64) float64 {
	if math.Abs(forecast-current) >= MinVisibleDelta {
		return forecast
	}

	up := false
	if n := len(series); n >= 2 {
		switch delta := series[n-1] - series[n-2]; {
		case delta > 0:
			up = true
		case delta < 0:
			up = false
		default:
			up = e.coin()
		}
	} else {
		up = e.coin()
	}

	if up {
		forecast = current + MinVisibleDelta
	} else {
		forecast = current - MinVisibleDelta
	}
	return clamp(forecast)
}

func (e *Engine) coin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(2) == 0
}

func validateArgs(method domrepo.Method, horizonMinutes float64) error {
	if math.IsNaN(horizonMinutes) || math.IsInf(horizonMinutes, 0) || horizonMinutes < 0 {
		return fmt.Errorf("forecast: invalid horizon %v", horizonMinutes)
	}
	if !domrepo.IsValidMethod(method) {
		return fmt.Errorf("forecast: unknown method %q", method)
	}
	return nil
}
