// Package simulator provides a synthetic sensor stream for development and
// demos. Readings drift around a slow-moving environmental baseline so the
// forecaster has real trends to learn, not a pure random walk.
package simulator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
	drepo "github.com/pral10/SmartIoT/internal/domain/repository"
)

const (
	envDriftMax   = 0.02
	envTempMin    = 18.0
	envTempMax    = 28.0
	tempNoiseMax  = 0.3
	tempMin       = 15.0
	tempMax       = 35.0
	humidityStep  = 0.8
	humidityMin   = 30.0
	humidityMax   = 70.0
	motionChance  = 0.08
	motionHoldMin = 2
	motionHoldMax = 5

	startTemp     = 22.0
	startHumidity = 45.0
)

// Simulator implements a SensorStream that fabricates readings on a fixed
// interval.
type Simulator struct {
	deviceID   string
	deviceName string
	interval   time.Duration

	mu             sync.Mutex
	rng            *rand.Rand
	envTemp        float64
	lastHumidity   float64
	motionState    int
	motionCooldown int
	connected      bool
}

// New creates a simulator for one device. Seed 0 means time-seeded.
func New(deviceID, deviceName string, interval time.Duration, seed int64) drepo.SensorStream {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		deviceID:     deviceID,
		deviceName:   deviceName,
		interval:     interval,
		rng:          rand.New(rand.NewSource(seed)),
		envTemp:      startTemp,
		lastHumidity: startHumidity,
	}
}

// Connect marks the stream live. There is no transport to open.
func (s *Simulator) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

// Read emits one synthetic reading per interval until the context ends.
func (s *Simulator) Read(ctx context.Context) (<-chan *models.Reading, <-chan error) {
	readings := make(chan *models.Reading, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(readings)
		defer close(errs)

		if !s.IsConnected() {
			errs <- fmt.Errorf("simulator not connected")
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r := s.next()
				select {
				case readings <- r:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return readings, errs
}

// next advances the sensor state one step and builds a reading.
func (s *Simulator) next() *models.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The baseline creeps slowly, simulating day/night cycles and HVAC.
	s.envTemp += s.uniform(-envDriftMax, envDriftMax)
	s.envTemp = clampf(s.envTemp, envTempMin, envTempMax)

	temp := round2(clampf(s.envTemp+s.uniform(-tempNoiseMax, tempNoiseMax), tempMin, tempMax))
	humidity := round2(clampf(s.lastHumidity+s.uniform(-humidityStep, humidityStep), humidityMin, humidityMax))

	// Motion triggers rarely and then persists for a few samples.
	switch {
	case s.motionCooldown > 0:
		s.motionState = 1
		s.motionCooldown--
	case s.rng.Float64() < motionChance:
		s.motionState = 1
		s.motionCooldown = motionHoldMin + s.rng.Intn(motionHoldMax-motionHoldMin+1)
	default:
		s.motionState = 0
	}

	s.lastHumidity = humidity

	return &models.Reading{
		DeviceID:    s.deviceID,
		DeviceName:  s.deviceName,
		Temperature: temp,
		Humidity:    humidity,
		Motion:      s.motionState,
		Timestamp:   time.Now().UTC(),
	}
}

// Reconnect resets nothing; the generator state survives so the series stays
// continuous.
func (s *Simulator) Reconnect(ctx context.Context) error {
	return s.Connect(ctx)
}

func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *Simulator) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func clampf(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
