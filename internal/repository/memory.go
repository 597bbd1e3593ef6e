package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lockwise/internal/models"
)

type memoryEntry struct {
	slots     []models.SlotAvailability
	expiresAt time.Time
}

// MemoryAvailabilityCache is a process-local cache used when Redis is
// unavailable. Entries expire lazily on read.
type MemoryAvailabilityCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewMemoryAvailabilityCache(ttl time.Duration) *MemoryAvailabilityCache {
	if ttl <= 0 {
		ttl = time.Duration(models.AvailabilityCacheTTL) * time.Second
	}
	return &MemoryAvailabilityCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func memoryKey(serviceID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", serviceID, date.Format("2006-01-02"))
}

func (c *MemoryAvailabilityCache) GetSlots(_ context.Context, serviceID int64, date time.Time) ([]models.SlotAvailability, error) {
	key := memoryKey(serviceID, date)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}

	out := make([]models.SlotAvailability, len(entry.slots))
	copy(out, entry.slots)
	return out, nil
}

func (c *MemoryAvailabilityCache) SetSlots(_ context.Context, serviceID int64, date time.Time, slots []models.SlotAvailability) error {
	stored := make([]models.SlotAvailability, len(slots))
	copy(stored, slots)

	c.mu.Lock()
	c.entries[memoryKey(serviceID, date)] = memoryEntry{
		slots:     stored,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemoryAvailabilityCache) Invalidate(_ context.Context, serviceID int64, date time.Time) error {
	c.mu.Lock()
	delete(c.entries, memoryKey(serviceID, date))
	c.mu.Unlock()
	return nil
}
