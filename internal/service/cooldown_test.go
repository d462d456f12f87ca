package service

import (
	"testing"
	"time"
)

func TestCooldown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	c := NewCooldown(300 * time.Second)
	c.now = clock

	t.Run("allows scan when none recorded", func(t *testing.T) {
		if !c.CanScan() {
			t.Error("expected CanScan before any scan")
		}
		if c.Remaining() != 0 {
			t.Errorf("expected no remaining time, got %d", c.Remaining())
		}
	})

	t.Run("blocks within the window", func(t *testing.T) {
		c.Record(now)
		now = now.Add(10 * time.Second)

		if c.CanScan() {
			t.Error("expected scan blocked 10s after record")
		}
		if got := c.Remaining(); got != 290 {
			t.Errorf("expected 290 seconds remaining, got %d", got)
		}
	})

	t.Run("reopens after the window", func(t *testing.T) {
		now = now.Add(290 * time.Second)
		if !c.CanScan() {
			t.Error("expected scan allowed at window boundary")
		}
		if c.Remaining() != 0 {
			t.Errorf("expected no remaining time, got %d", c.Remaining())
		}
	})

	t.Run("window seconds", func(t *testing.T) {
		if c.WindowSeconds() != 300 {
			t.Errorf("unexpected window: %d", c.WindowSeconds())
		}
	})
}
