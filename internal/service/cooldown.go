package service

import (
	"sync"
	"time"
)

// Cooldown enforces the minimum wall-clock interval between scans. The
// window is global, not per-source: the slowest backend sets the pace for
// the whole aggregate scan.
type Cooldown struct {
	mu       sync.Mutex
	window   time.Duration
	lastScan time.Time
	now      func() time.Time
}

// NewCooldown creates a cooldown policy with the given window
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{window: window, now: time.Now}
}

// CanScan reports whether a new scan is allowed
func (c *Cooldown) CanScan() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastScan.IsZero() {
		return true
	}
	return c.now().Sub(c.lastScan) >= c.window
}

// Remaining returns whole seconds until the next scan is allowed, zero
// when one is allowed now.
func (c *Cooldown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastScan.IsZero() {
		return 0
	}
	left := c.window - c.now().Sub(c.lastScan)
	if left <= 0 {
		return 0
	}
	return int(left.Seconds())
}

// Record sets the last-scan time
func (c *Cooldown) Record(at time.Time) {
	c.mu.Lock()
	c.lastScan = at
	c.mu.Unlock()
}

// LastScan returns the last recorded scan time, zero if none
func (c *Cooldown) LastScan() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastScan
}

// WindowSeconds returns the configured window in whole seconds
func (c *Cooldown) WindowSeconds() int {
	return int(c.window.Seconds())
}
