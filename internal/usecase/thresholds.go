package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pral10/SmartIoT/internal/alerts"
	"github.com/pral10/SmartIoT/internal/domain/models"
	pkgcache "github.com/pral10/SmartIoT/pkg/cache"
)

const thresholdsCacheKey = "config:thresholds"

// ThresholdService serves and updates the alert limits backing the dashboard
// config panel. The in-memory copy is authoritative for evaluation; the cache
// is write-through persistence so limits survive restarts when Redis is on.
type ThresholdService struct {
	mu        sync.RWMutex
	current   models.Thresholds
	cache     pkgcache.Service
	cacheTTL  time.Duration
	evaluator *alerts.Evaluator
}

// NewThresholdService creates the service with factory defaults, then loads
// any persisted limits from the cache. A nil cache keeps limits in memory only.
func NewThresholdService(c pkgcache.Service, ttl time.Duration, ev *alerts.Evaluator) *ThresholdService {
	s := &ThresholdService{
		current:   models.DefaultThresholds(),
		cache:     c,
		cacheTTL:  ttl,
		evaluator: ev,
	}
	if c != nil {
		var stored models.Thresholds
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.Get(ctx, thresholdsCacheKey, &stored); err == nil && stored.Valid() {
			s.current = stored
		}
	}
	return s
}

// Get returns the active thresholds.
func (s *ThresholdService) Get(_ context.Context) models.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces the active thresholds. Latched alert state is reset so the
// new limits are re-evaluated from scratch on the next reading.
func (s *ThresholdService) Update(ctx context.Context, t models.Thresholds) error {
	if !t.Valid() {
		return fmt.Errorf("thresholds: low limits must be below high limits")
	}

	s.mu.Lock()
	s.current = t
	s.mu.Unlock()

	if s.evaluator != nil {
		s.evaluator.Reset()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, thresholdsCacheKey, t, s.cacheTTL); err != nil {
			return fmt.Errorf("persist thresholds: %w", err)
		}
	}
	return nil
}
