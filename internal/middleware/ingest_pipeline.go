package middleware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/pral10/SmartIoT/internal/domain/models"
	domrepo "github.com/pral10/SmartIoT/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, r *models.Reading) error
}

// IngestPipeline sits between the sensor source and the backend.
// It validates, throttles per device, and buffers when downstream is unavailable.
type IngestPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.Reading
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-device last accepted time
}

type PipelineOption func(*IngestPipeline)

// WithMaxRPS sets the max readings per second per device.
func WithMaxRPS(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewIngestPipeline creates a new pipeline.
func NewIngestPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   20,   // default throttle per device
		bufSize:  1000, // default buffer
		bufCh:    make(chan *models.Reading, 1000),
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.Reading, p.bufSize)
	}
	return p
}

// Start launches background flushing of buffered readings.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case r := <-p.bufCh:
				if r == nil {
					continue
				}
				if err := p.proc.Process(ctx, r); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- r:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards a reading downstream, buffering on errors.
func (p *IngestPipeline) Process(ctx context.Context, r *models.Reading) error {
	start := time.Now()
	if err := validateReading(r); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(r.DeviceID, start) {
		// throttled; record and drop silently
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, r); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- r:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateReading(r *models.Reading) error {
	if r == nil {
		return fmt.Errorf("reading nil")
	}
	if r.DeviceID == "" {
		return fmt.Errorf("device id empty")
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("timestamp invalid")
	}
	if math.IsNaN(r.Temperature) || math.IsInf(r.Temperature, 0) {
		return fmt.Errorf("temperature not finite")
	}
	if r.Humidity < 0 || r.Humidity > 100 {
		return fmt.Errorf("humidity out of range")
	}
	if r.Motion != 0 && r.Motion != 1 {
		return fmt.Errorf("motion must be 0 or 1")
	}
	return nil
}

func (p *IngestPipeline) allow(deviceID string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	// simple throttle: ensure at most maxRPS per second
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[deviceID]
	if last.IsZero() {
		p.lastSeen[deviceID] = now
		return true
	}
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[deviceID] = now
	return true
}
