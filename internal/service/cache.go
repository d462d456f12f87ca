package service

import (
	"sync"
	"time"

	"netinv/internal/domain"
)

// ResultCache holds the latest published snapshot. Exactly one entry is
// ever held and replacement is copy/swap: a reader that obtained the
// previous snapshot keeps a valid, fully merged value. Staleness is
// surfaced as an age, never acted on here.
type ResultCache struct {
	mu       sync.RWMutex
	snapshot *domain.Snapshot
	now      func() time.Time
}

// NewResultCache creates an empty cache
func NewResultCache() *ResultCache {
	return &ResultCache{now: time.Now}
}

// Get returns the held snapshot and its age in seconds. The snapshot is
// nil if no scan has ever succeeded.
func (c *ResultCache) Get() (*domain.Snapshot, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return nil, 0
	}
	age := int(c.now().Sub(c.snapshot.TakenAt).Seconds())
	if age < 0 {
		age = 0
	}
	return c.snapshot, age
}

// Set atomically replaces the held snapshot
func (c *ResultCache) Set(snapshot *domain.Snapshot) {
	c.mu.Lock()
	c.snapshot = snapshot
	c.mu.Unlock()
}
