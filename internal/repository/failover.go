package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"lockwise/internal/domain"
	"lockwise/internal/models"

	"github.com/rs/zerolog"
)

// FailoverAvailabilityCache prefers the primary (Redis) cache and falls
// back to the in-memory cache when the primary errors. After a failure
// the primary is retried at most once per retryAfter window.
type FailoverAvailabilityCache struct {
	primary  domain.AvailabilityCache
	fallback domain.AvailabilityCache
	logger   *zerolog.Logger

	primaryDown atomic.Bool
	retryAfter  time.Duration

	mu        sync.Mutex
	downSince time.Time
}

func NewFailoverAvailabilityCache(primary, fallback domain.AvailabilityCache, logger *zerolog.Logger) *FailoverAvailabilityCache {
	return &FailoverAvailabilityCache{
		primary:    primary,
		fallback:   fallback,
		logger:     logger,
		retryAfter: time.Minute,
	}
}

func (f *FailoverAvailabilityCache) usePrimary() bool {
	if f.primary == nil {
		return false
	}
	if !f.primaryDown.Load() {
		return true
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.downSince) >= f.retryAfter {
		f.primaryDown.Store(false)
		return true
	}
	return false
}

func (f *FailoverAvailabilityCache) markDown(err error) {
	f.mu.Lock()
	f.downSince = time.Now()
	f.mu.Unlock()

	if !f.primaryDown.Swap(true) && f.logger != nil {
		f.logger.Warn().Err(err).Msg("availability cache primary unavailable, using in-memory fallback")
	}
}

func (f *FailoverAvailabilityCache) GetSlots(ctx context.Context, serviceID int64, date time.Time) ([]models.SlotAvailability, error) {
	if f.usePrimary() {
		slots, err := f.primary.GetSlots(ctx, serviceID, date)
		if err == nil {
			return slots, nil
		}
		f.markDown(err)
	}
	return f.fallback.GetSlots(ctx, serviceID, date)
}

func (f *FailoverAvailabilityCache) SetSlots(ctx context.Context, serviceID int64, date time.Time, slots []models.SlotAvailability) error {
	if f.usePrimary() {
		if err := f.primary.SetSlots(ctx, serviceID, date, slots); err == nil {
			return nil
		} else {
			f.markDown(err)
		}
	}
	return f.fallback.SetSlots(ctx, serviceID, date, slots)
}

func (f *FailoverAvailabilityCache) Invalidate(ctx context.Context, serviceID int64, date time.Time) error {
	// Invalidate both sides so a stale grid never survives a failover flip.
	var primaryErr error
	if f.primary != nil {
		primaryErr = f.primary.Invalidate(ctx, serviceID, date)
		if primaryErr != nil {
			f.markDown(primaryErr)
		}
	}
	if err := f.fallback.Invalidate(ctx, serviceID, date); err != nil {
		return err
	}
	if f.primaryDown.Load() {
		return nil
	}
	return primaryErr
}
